package classroom

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"classroom-backend/config"
	"classroom-backend/internal/briefing"
	"classroom-backend/internal/model"
	"classroom-backend/internal/seating"
	"classroom-backend/internal/store"
)

var (
	ErrStudentNotFound = errors.New("student not found")
	ErrEntryNotFound   = errors.New("attendance entry not found")
	ErrNotEligible     = errors.New("student is not eligible for this attendance category")
	ErrUnknownCategory = errors.New("unknown attendance category")
	ErrInvalidInput    = errors.New("invalid input")
	ErrEmptyText       = errors.New("text must not be empty")
	ErrTodoNotFound    = errors.New("to-do not found")
	ErrMessageNotFound = errors.New("message not found")
)

// Service is the application layer: it reads state from the store, runs the
// seating engine and writes every change back explicitly.
type Service struct {
	store    store.Store
	engine   *seating.Engine
	analyzer briefing.Analyzer
	pool     *briefing.WorkerPool
	cfg      *config.Config
	validate *validator.Validate
	logger   *zap.Logger
	now      func() time.Time
	newID    func() string

	// mu serialises operations spanning more than one key.
	mu sync.Mutex
}

// Option customises a Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator replaces the UUID generator used for new entries.
func WithIDGenerator(fn func() string) Option {
	return func(s *Service) { s.newID = fn }
}

// NewService wires the service. analyzer may be nil, in which case messages
// stay pending and briefings are unavailable.
func NewService(st store.Store, engine *seating.Engine, analyzer briefing.Analyzer, cfg *config.Config, opts ...Option) *Service {
	s := &Service{
		store:    st,
		engine:   engine,
		analyzer: analyzer,
		cfg:      cfg,
		validate: validator.New(),
		logger:   zap.NewNop(),
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if analyzer != nil {
		s.pool = briefing.NewWorkerPool(cfg.WorkerPool.Size, cfg.Logs.MessageLimit, analyzer, s, s.logger.Named("analysis"))
	}
	return s
}

// Start launches the analysis workers and requeues messages still pending
// from a previous run.
func (s *Service) Start(ctx context.Context) error {
	if s.pool == nil {
		return nil
	}
	s.pool.Start(ctx)

	messages, err := s.Messages(ctx)
	if err != nil {
		return err
	}
	requeued := 0
	for _, m := range messages {
		if m.Status == model.MessagePending && s.pool.Dispatch(briefing.Job{MessageID: m.ID, Text: m.Original}) {
			requeued++
		}
	}
	if requeued > 0 {
		s.logger.Info("Requeued pending messages", zap.Int("count", requeued))
	}
	return nil
}

// APIKeySource returns the Gemini key stored in st, falling back to the
// configured one.
func APIKeySource(st store.Store, fallback string) briefing.KeySource {
	return func(ctx context.Context) (string, error) {
		var key string
		if _, err := store.GetJSON(ctx, st, store.KeyAPIKey, &key); err != nil && !errors.Is(err, store.ErrCorrupt) {
			return "", err
		}
		if key = strings.TrimSpace(key); key != "" {
			return key, nil
		}
		return fallback, nil
	}
}

// readSetting decodes key into v. A missing or corrupt value leaves v at the
// caller's default.
func (s *Service) readSetting(ctx context.Context, key string, v any) error {
	_, err := store.GetJSON(ctx, s.store, key, v)
	if errors.Is(err, store.ErrCorrupt) {
		s.logger.Warn("Ignoring corrupt stored value", zap.String("key", key), zap.Error(err))
		return nil
	}
	return err
}

func (s *Service) invalid(err error) error {
	return fmt.Errorf("%w: %v", ErrInvalidInput, err)
}

func (s *Service) today() string {
	return s.now().UTC().Format(dateLayout)
}
