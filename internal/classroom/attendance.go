package classroom

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"classroom-backend/internal/model"
	"classroom-backend/internal/store"
)

const dateLayout = "2006-01-02"

// Attendance categories as used in request paths.
const (
	CategoryMenstrual     = "menstrual"
	CategoryDomestic      = "domestic"
	CategoryInternational = "international"
)

// CategoryUsage sums one category for the current period. Menstrual leave is
// counted per calendar month, experiential leave per calendar year.
type CategoryUsage struct {
	Used      int                     `json:"used"`
	Limit     int                     `json:"limit"`
	Remaining int                     `json:"remaining"`
	Exceeded  bool                    `json:"exceeded"`
	Entries   []model.AttendanceEntry `json:"entries"`
}

// AttendanceSummary is a student's attendance usage against the limits.
type AttendanceSummary struct {
	Number           int            `json:"number"`
	Name             string         `json:"name"`
	Menstrual        *CategoryUsage `json:"menstrual,omitempty"`
	ExpDomestic      CategoryUsage  `json:"expDomestic"`
	ExpInternational CategoryUsage  `json:"expInternational"`
}

// AddAttendance logs a new entry for student number.
func (s *Service) AddAttendance(ctx context.Context, number int, category string, entry model.AttendanceEntry) (model.AttendanceEntry, error) {
	if err := normalizeEntry(&entry, category); err != nil {
		return model.AttendanceEntry{}, err
	}
	entry.ID = s.newID()

	err := s.updateStudent(ctx, number, func(st *model.Student) error {
		if err := checkEligible(st, category); err != nil {
			return err
		}
		log, err := categoryLog(st, category)
		if err != nil {
			return err
		}
		*log = append(*log, entry)
		return nil
	})
	if err != nil {
		return model.AttendanceEntry{}, err
	}
	s.logger.Info("Attendance logged", zap.Int("number", number), zap.String("category", category), zap.String("id", entry.ID))
	return entry, nil
}

// UpdateAttendance replaces entry id in the student's category log.
func (s *Service) UpdateAttendance(ctx context.Context, number int, category, id string, entry model.AttendanceEntry) (model.AttendanceEntry, error) {
	if err := normalizeEntry(&entry, category); err != nil {
		return model.AttendanceEntry{}, err
	}
	entry.ID = id

	err := s.updateStudent(ctx, number, func(st *model.Student) error {
		if err := checkEligible(st, category); err != nil {
			return err
		}
		log, err := categoryLog(st, category)
		if err != nil {
			return err
		}
		for i := range *log {
			if (*log)[i].ID == id {
				(*log)[i] = entry
				return nil
			}
		}
		return ErrEntryNotFound
	})
	if err != nil {
		return model.AttendanceEntry{}, err
	}
	return entry, nil
}

// DeleteAttendance removes entry id from the student's category log.
func (s *Service) DeleteAttendance(ctx context.Context, number int, category, id string) error {
	return s.updateStudent(ctx, number, func(st *model.Student) error {
		log, err := categoryLog(st, category)
		if err != nil {
			return err
		}
		for i := range *log {
			if (*log)[i].ID == id {
				*log = append((*log)[:i], (*log)[i+1:]...)
				return nil
			}
		}
		return ErrEntryNotFound
	})
}

// AttendanceSummary reports the days used by student number in the current
// month (menstrual) and year (experiential).
func (s *Service) AttendanceSummary(ctx context.Context, number int) (AttendanceSummary, error) {
	students, err := s.students(ctx)
	if err != nil {
		return AttendanceSummary{}, err
	}
	st, ok := findStudent(students, number)
	if !ok {
		return AttendanceSummary{}, ErrStudentNotFound
	}
	limits, err := s.AttendanceSettings(ctx)
	if err != nil {
		return AttendanceSummary{}, err
	}

	now := s.now()
	month := now.Format("2006-01")
	year := now.Format("2006")
	summary := AttendanceSummary{
		Number:           st.Number,
		Name:             st.Name,
		ExpDomestic:      usage(st.Attendance.ExpDomesticLog, year, limits.ExpDomesticLimit),
		ExpInternational: usage(st.Attendance.ExpInternationalLog, year, limits.ExpInternationalLimit),
	}
	if st.IsFemale() {
		m := usage(st.Attendance.MenstrualLog, month, limits.MenstrualLimit)
		summary.Menstrual = &m
	}
	return summary, nil
}

func (s *Service) updateStudent(ctx context.Context, number int, fn func(st *model.Student) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return store.UpdateJSON(ctx, s.store, store.KeyStudents, func(students *[]model.Student, _ bool) error {
		for i := range *students {
			if (*students)[i].Number == number {
				ensureLogs(&(*students)[i])
				return fn(&(*students)[i])
			}
		}
		return ErrStudentNotFound
	})
}

func findStudent(students []model.Student, number int) (model.Student, bool) {
	for _, st := range students {
		if st.Number == number {
			return st, true
		}
	}
	return model.Student{}, false
}

func ensureLogs(st *model.Student) {
	if st.Attendance.MenstrualLog == nil {
		st.Attendance.MenstrualLog = []model.AttendanceEntry{}
	}
	if st.Attendance.ExpDomesticLog == nil {
		st.Attendance.ExpDomesticLog = []model.AttendanceEntry{}
	}
	if st.Attendance.ExpInternationalLog == nil {
		st.Attendance.ExpInternationalLog = []model.AttendanceEntry{}
	}
}

// checkEligible rejects menstrual leave for students not recorded as female.
func checkEligible(st *model.Student, category string) error {
	if category == CategoryMenstrual && !st.IsFemale() {
		return ErrNotEligible
	}
	return nil
}

func categoryLog(st *model.Student, category string) (*[]model.AttendanceEntry, error) {
	switch category {
	case CategoryMenstrual:
		return &st.Attendance.MenstrualLog, nil
	case CategoryDomestic:
		return &st.Attendance.ExpDomesticLog, nil
	case CategoryInternational:
		return &st.Attendance.ExpInternationalLog, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, category)
}

func normalizeEntry(e *model.AttendanceEntry, category string) error {
	switch category {
	case CategoryMenstrual:
		e.Type = ""
	case CategoryDomestic, CategoryInternational:
		e.Type = category
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}

	e.StartDate = strings.TrimSpace(e.StartDate)
	e.EndDate = strings.TrimSpace(e.EndDate)
	e.Reason = strings.TrimSpace(e.Reason)
	start, err := time.Parse(dateLayout, e.StartDate)
	if err != nil {
		return fmt.Errorf("%w: start date %q", ErrInvalidInput, e.StartDate)
	}
	if e.EndDate != "" {
		end, err := time.Parse(dateLayout, e.EndDate)
		if err != nil || end.Before(start) {
			return fmt.Errorf("%w: end date %q", ErrInvalidInput, e.EndDate)
		}
	}
	if e.Days < 0 {
		return fmt.Errorf("%w: negative days", ErrInvalidInput)
	}
	return nil
}

// entryDays is Days when set, otherwise the inclusive date span.
func entryDays(e model.AttendanceEntry) int {
	if e.Days > 0 {
		return e.Days
	}
	start, err := time.Parse(dateLayout, e.StartDate)
	if err != nil {
		return 0
	}
	end := start
	if t, err := time.Parse(dateLayout, e.EndDate); err == nil && !t.Before(start) {
		end = t
	}
	return int(end.Sub(start).Hours()/24) + 1
}

// usage sums the entries whose start date begins with period.
func usage(entries []model.AttendanceEntry, period string, limit int) CategoryUsage {
	u := CategoryUsage{Limit: limit, Entries: []model.AttendanceEntry{}}
	for _, e := range entries {
		if !strings.HasPrefix(e.StartDate, period) {
			continue
		}
		u.Used += entryDays(e)
		u.Entries = append(u.Entries, e)
	}
	u.Remaining = max(limit-u.Used, 0)
	u.Exceeded = u.Used > limit
	return u
}
