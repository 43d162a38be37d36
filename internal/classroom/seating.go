package classroom

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"classroom-backend/internal/model"
	"classroom-backend/internal/seating"
	"classroom-backend/internal/store"
)

// GenerateRequest carries the constraint text fields of a generation run.
// Randomize defaults to true.
type GenerateRequest struct {
	Columns      int    `json:"columns" binding:"omitempty,min=1,max=50"`
	Pins         string `json:"pins"`
	Priority     string `json:"priority"`
	Incompatible string `json:"incompatible"`
	Randomize    *bool  `json:"randomize"`
}

// GenerateResult is a generated chart. It is not saved until SaveSeating.
type GenerateResult struct {
	*seating.Result
	Columns int `json:"columns"`
}

// SaveResult reports where an assignment was stored.
type SaveResult struct {
	Date        string `json:"date"`
	Overwritten bool   `json:"overwritten"`
}

// Columns returns the stored column count, or the configured default when
// none is stored or the stored one is out of range.
func (s *Service) Columns(ctx context.Context) (int, error) {
	columns := 0
	if err := s.readSetting(ctx, store.KeySeatingColumns, &columns); err != nil {
		return 0, err
	}
	if !seating.ValidColumns(columns) {
		columns = s.cfg.Seating.DefaultColumns
	}
	return columns, nil
}

// SetColumns stores the column count used when a request does not name one.
func (s *Service) SetColumns(ctx context.Context, columns int) error {
	if !seating.ValidColumns(columns) {
		return seating.ErrInvalidColumns
	}
	return store.SetJSON(ctx, s.store, store.KeySeatingColumns, columns)
}

// GenerateSeating runs the engine over the stored roster, using the most
// recent saved chart to keep students off their previous seats.
func (s *Service) GenerateSeating(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	students, err := s.students(ctx)
	if err != nil {
		return nil, err
	}
	columns, err := s.resolveColumns(ctx, req.Columns)
	if err != nil {
		return nil, err
	}
	history, err := s.SeatingHistory(ctx)
	if err != nil {
		return nil, err
	}

	randomize := req.Randomize == nil || *req.Randomize
	result, err := s.engine.Generate(seating.Request{
		Roster:       students,
		Columns:      columns,
		Pins:         seating.ParsePins(req.Pins),
		Priority:     seating.ParsePriority(req.Priority),
		Incompatible: seating.ParseIncompatible(req.Incompatible),
		Prior:        history.Latest(),
		Randomize:    randomize,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Seating generated",
		zap.Int("students", len(students)),
		zap.Int("columns", columns),
		zap.Bool("randomize", randomize),
		zap.Int("passes", result.Passes),
		zap.Int("warnings", len(result.Warnings)))
	return &GenerateResult{Result: result, Columns: columns}, nil
}

// SaveSeating stores assignment as today's history entry, replacing an entry
// already saved today.
func (s *Service) SaveSeating(ctx context.Context, assignment map[string]int) (SaveResult, error) {
	if len(assignment) == 0 {
		return SaveResult{}, fmt.Errorf("%w: empty assignment", ErrInvalidInput)
	}
	for name, seat := range assignment {
		if name == "" || seat < 1 {
			return SaveResult{}, fmt.Errorf("%w: bad seat %q:%d", ErrInvalidInput, name, seat)
		}
	}

	res := SaveResult{Date: s.today()}
	entry := model.HistoryEntry{Date: res.Date, History: assignment}
	err := store.UpdateJSON(ctx, s.store, store.KeySeatingHistory, func(h *seating.History, _ bool) error {
		*h, res.Overwritten = h.Upsert(entry, s.cfg.Seating.HistoryLimit)
		return nil
	})
	if err != nil {
		return SaveResult{}, err
	}
	s.logger.Info("Seating saved", zap.String("date", res.Date), zap.Bool("overwritten", res.Overwritten))
	return res, nil
}

// SeatingHistory returns the saved charts, most recent first.
func (s *Service) SeatingHistory(ctx context.Context) (seating.History, error) {
	history := seating.History{}
	if _, err := store.GetJSON(ctx, s.store, store.KeySeatingHistory, &history); err != nil {
		return nil, err
	}
	return history, nil
}

// LoadSeating rebuilds the chart saved for date against the current roster.
func (s *Service) LoadSeating(ctx context.Context, date string, columns int) (seating.Grid, error) {
	students, err := s.students(ctx)
	if err != nil {
		return nil, err
	}
	columns, err = s.resolveColumns(ctx, columns)
	if err != nil {
		return nil, err
	}
	history, err := s.SeatingHistory(ctx)
	if err != nil {
		return nil, err
	}
	return s.engine.LoadFromHistory(date, students, columns, history)
}

func (s *Service) resolveColumns(ctx context.Context, requested int) (int, error) {
	if requested != 0 {
		if !seating.ValidColumns(requested) {
			return 0, seating.ErrInvalidColumns
		}
		return requested, nil
	}
	return s.Columns(ctx)
}
