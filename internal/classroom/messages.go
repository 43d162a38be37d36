package classroom

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"classroom-backend/internal/briefing"
	"classroom-backend/internal/model"
	"classroom-backend/internal/store"
)

// Messages returns the message log, newest first.
func (s *Service) Messages(ctx context.Context) ([]model.MessageEntry, error) {
	messages := []model.MessageEntry{}
	if _, err := store.GetJSON(ctx, s.store, store.KeyMessages, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

// AddMessage logs a received message and queues it for analysis.
func (s *Service) AddMessage(ctx context.Context, sender, text string) (model.MessageEntry, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.MessageEntry{}, ErrEmptyText
	}
	entry := model.MessageEntry{
		ID:       s.newID(),
		Date:     s.now().UTC(),
		Sender:   strings.TrimSpace(sender),
		Original: text,
		Todos:    []string{},
		Notices:  []string{},
		Status:   model.MessagePending,
	}
	err := store.UpdateJSON(ctx, s.store, store.KeyMessages, func(log *[]model.MessageEntry, _ bool) error {
		*log = capFront(append([]model.MessageEntry{entry}, *log...), s.cfg.Logs.MessageLimit)
		return nil
	})
	if err != nil {
		return model.MessageEntry{}, err
	}

	if s.pool != nil {
		s.pool.Dispatch(briefing.Job{MessageID: entry.ID, Text: entry.Original})
	}
	return entry, nil
}

// DeleteMessage removes message id from the log.
func (s *Service) DeleteMessage(ctx context.Context, id string) error {
	return store.UpdateJSON(ctx, s.store, store.KeyMessages, func(log *[]model.MessageEntry, _ bool) error {
		for i := range *log {
			if (*log)[i].ID == id {
				*log = append((*log)[:i], (*log)[i+1:]...)
				return nil
			}
		}
		return ErrMessageNotFound
	})
}

// ApplyAnalysis stores the to-dos and notices extracted from message id.
func (s *Service) ApplyAnalysis(ctx context.Context, id string, a briefing.Analysis) error {
	return s.modifyMessage(ctx, id, func(m *model.MessageEntry) {
		m.Todos = nonNil(a.Todos)
		m.Notices = nonNil(a.Notices)
		m.Status = model.MessageAnalyzed
	})
}

// MarkAnalysisFailed flags message id so it is not requeued on restart.
func (s *Service) MarkAnalysisFailed(ctx context.Context, id string, cause error) error {
	s.logger.Warn("Message analysis failed", zap.String("message_id", id), zap.Error(cause))
	return s.modifyMessage(ctx, id, func(m *model.MessageEntry) {
		m.Status = model.MessageFailed
	})
}

func (s *Service) modifyMessage(ctx context.Context, id string, fn func(m *model.MessageEntry)) error {
	return store.UpdateJSON(ctx, s.store, store.KeyMessages, func(log *[]model.MessageEntry, _ bool) error {
		for i := range *log {
			if (*log)[i].ID == id {
				fn(&(*log)[i])
				return nil
			}
		}
		return ErrMessageNotFound
	})
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
