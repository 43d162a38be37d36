package classroom

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"classroom-backend/internal/briefing"
	"classroom-backend/internal/model"
	"classroom-backend/internal/store"
)

// briefingNotices is how many recent analyzed messages feed a briefing.
const briefingNotices = 10

// LastBriefing returns the most recently generated briefing, or "".
func (s *Service) LastBriefing(ctx context.Context) (string, error) {
	var text string
	if err := s.readSetting(ctx, store.KeyLastBriefing, &text); err != nil {
		return "", err
	}
	return text, nil
}

// GenerateBriefing asks the model for a daily summary of the open to-dos and
// recent notices, then stores it as the last briefing.
func (s *Service) GenerateBriefing(ctx context.Context) (string, error) {
	if s.analyzer == nil {
		return "", briefing.ErrDisabled
	}
	admin, err := s.AdminInfo(ctx)
	if err != nil {
		return "", err
	}
	todos, err := s.Todos(ctx)
	if err != nil {
		return "", err
	}
	messages, err := s.Messages(ctx)
	if err != nil {
		return "", err
	}

	text, err := s.analyzer.Brief(ctx, briefingPrompt(s.today(), admin, todos, messages))
	if err != nil {
		return "", err
	}
	if err := store.SetJSON(ctx, s.store, store.KeyLastBriefing, text); err != nil {
		return "", err
	}
	s.logger.Info("Briefing generated", zap.Int("length", len(text)))
	return text, nil
}

func briefingPrompt(today string, admin model.AdminInfo, todos []model.TodoItem, messages []model.MessageEntry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Today is %s. Write a short morning briefing", today)
	if admin.Name != "" {
		fmt.Fprintf(&b, " for %s", admin.Name)
		if admin.Homeroom != "" {
			fmt.Fprintf(&b, " (homeroom %s)", admin.Homeroom)
		}
	}
	b.WriteString(". Group it into what to do today and what to keep in mind. Use plain text.\n\nOpen to-dos:\n")

	open := 0
	for _, t := range todos {
		if !t.Completed {
			fmt.Fprintf(&b, "- %s\n", t.Text)
			open++
		}
	}
	if open == 0 {
		b.WriteString("- none\n")
	}

	b.WriteString("\nRecent notices:\n")
	seen := 0
	for _, m := range messages {
		if m.Status != model.MessageAnalyzed || seen == briefingNotices {
			continue
		}
		seen++
		for _, n := range m.Notices {
			fmt.Fprintf(&b, "- %s (%s)\n", n, m.Date.Format(dateLayout))
		}
	}
	if seen == 0 {
		b.WriteString("- none\n")
	}
	return b.String()
}
