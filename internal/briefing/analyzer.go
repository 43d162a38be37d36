package briefing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// ErrDisabled is returned when no API key is configured.
var ErrDisabled = errors.New("briefing: no API key configured")

// ErrMalformedAnswer is returned when the model's answer holds no usable JSON.
var ErrMalformedAnswer = errors.New("briefing: model returned malformed JSON")

// Analysis is what the model extracted from one message.
type Analysis struct {
	Todos   []string `json:"todos"`
	Notices []string `json:"notices"`
}

// Analyzer turns free text into structured work items.
type Analyzer interface {
	Analyze(ctx context.Context, text string) (Analysis, error)
	Brief(ctx context.Context, prompt string) (string, error)
}

// TextGenerator produces a completion for a prompt.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeneratorFactory builds a TextGenerator for an API key.
type GeneratorFactory func(ctx context.Context, apiKey string) (TextGenerator, error)

// KeySource returns the API key currently in effect; empty means disabled.
type KeySource func(ctx context.Context) (string, error)

type analyzer struct {
	keys    KeySource
	factory GeneratorFactory
	timeout time.Duration

	mu  sync.Mutex
	key string
	gen TextGenerator
}

// NewAnalyzer creates an Analyzer that builds its generator lazily and
// rebuilds it whenever the key returned by keys changes.
func NewAnalyzer(keys KeySource, factory GeneratorFactory, timeout time.Duration) Analyzer {
	return &analyzer{keys: keys, factory: factory, timeout: timeout}
}

func (a *analyzer) generator(ctx context.Context) (TextGenerator, error) {
	key, err := a.keys(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read API key: %w", err)
	}
	if key == "" {
		return nil, ErrDisabled
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.gen != nil && a.key == key {
		return a.gen, nil
	}
	if c, ok := a.gen.(io.Closer); ok {
		c.Close()
	}
	gen, err := a.factory(ctx, key)
	if err != nil {
		a.gen, a.key = nil, ""
		return nil, err
	}
	a.gen, a.key = gen, key
	return gen, nil
}

func (a *analyzer) generate(ctx context.Context, prompt string) (string, error) {
	gen, err := a.generator(ctx)
	if err != nil {
		return "", err
	}
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}
	return gen.Generate(ctx, prompt)
}

func (a *analyzer) Analyze(ctx context.Context, text string) (Analysis, error) {
	answer, err := a.generate(ctx, AnalysisPrompt(text))
	if err != nil {
		return Analysis{}, err
	}
	return ParseAnalysis(answer)
}

func (a *analyzer) Brief(ctx context.Context, prompt string) (string, error) {
	answer, err := a.generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(answer), nil
}

// AnalysisPrompt asks the model to split a message into to-dos and notices.
func AnalysisPrompt(text string) string {
	var b strings.Builder
	b.WriteString("You help a homeroom teacher triage messenger messages.\n")
	b.WriteString("Extract the concrete tasks the teacher must do (todos) and the information ")
	b.WriteString("they only need to know (notices). Answer in the language of the message.\n")
	b.WriteString(`Reply with JSON only: {"todos": ["..."], "notices": ["..."]}`)
	b.WriteString("\n\nMessage:\n")
	b.WriteString(text)
	return b.String()
}

// ParseAnalysis extracts the JSON object from a model answer, tolerating
// markdown fences and surrounding prose.
func ParseAnalysis(answer string) (Analysis, error) {
	raw := extractJSON(answer)
	if raw == "" {
		return Analysis{}, ErrMalformedAnswer
	}
	var a Analysis
	if err := json.Unmarshal([]byte(raw), &a); err != nil {
		return Analysis{}, fmt.Errorf("%w: %v", ErrMalformedAnswer, err)
	}
	a.Todos = compact(a.Todos)
	a.Notices = compact(a.Notices)
	return a, nil
}

func extractJSON(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end < start {
		return ""
	}
	return s[start : end+1]
}

func compact(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
