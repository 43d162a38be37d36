package classroom

import (
	"context"

	"go.uber.org/zap"

	"classroom-backend/internal/model"
	"classroom-backend/internal/roster"
	"classroom-backend/internal/store"
)

// ImportRoster replaces the stored roster. Seating history is kept.
func (s *Service) ImportRoster(ctx context.Context, r roster.Roster) error {
	if len(r.Students) == 0 {
		return roster.ErrNoStudents
	}
	for i := range r.Students {
		if r.Students[i].Attendance.MenstrualLog == nil {
			r.Students[i].Attendance = model.EmptyAttendance()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := store.SetJSON(ctx, s.store, store.KeyStudents, r.Students); err != nil {
		return err
	}
	if err := store.SetJSON(ctx, s.store, store.KeyGrade, r.Grade); err != nil {
		return err
	}
	if err := store.SetJSON(ctx, s.store, store.KeyClassNum, r.Class); err != nil {
		return err
	}
	s.logger.Info("Roster imported",
		zap.Int("students", len(r.Students)),
		zap.String("grade", r.Grade),
		zap.String("class", r.Class))
	return nil
}

// Roster returns the stored roster; an empty one when nothing was imported.
func (s *Service) Roster(ctx context.Context) (roster.Roster, error) {
	r := roster.Roster{Students: []model.Student{}}
	if _, err := store.GetJSON(ctx, s.store, store.KeyStudents, &r.Students); err != nil {
		return roster.Roster{}, err
	}
	if err := s.readSetting(ctx, store.KeyGrade, &r.Grade); err != nil {
		return roster.Roster{}, err
	}
	if err := s.readSetting(ctx, store.KeyClassNum, &r.Class); err != nil {
		return roster.Roster{}, err
	}
	return r, nil
}

func (s *Service) students(ctx context.Context) ([]model.Student, error) {
	var students []model.Student
	if _, err := store.GetJSON(ctx, s.store, store.KeyStudents, &students); err != nil {
		return nil, err
	}
	return students, nil
}
