package roster

import (
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"classroom-backend/internal/model"
)

// Column layout of a roster row: grade, class, number, name, ..., gender, ...
const (
	colGrade  = 0
	colClass  = 1
	colNumber = 2
	colName   = 3
	colGender = 5
	minFields = 6
)

// ErrNoStudents is returned when a file yields no acceptable rows.
var ErrNoStudents = errors.New("roster: no students found")

// Roster is an imported class list.
type Roster struct {
	Grade    string          `json:"grade"`
	Class    string          `json:"classNum"`
	Students []model.Student `json:"students"`
}

// ParseCSV parses comma-separated roster text. The first row is a header and
// is always skipped; a row is accepted when it has a name and a gender.
func ParseCSV(text string) (Roster, error) {
	text = strings.TrimSpace(strings.TrimPrefix(text, "\ufeff"))

	reader := csv.NewReader(strings.NewReader(text))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return Roster{}, fmt.Errorf("roster: read csv: %w", err)
	}
	return fromRows(rows)
}

func fromRows(rows [][]string) (Roster, error) {
	var r Roster
	for i, row := range rows {
		if i == 0 || len(row) < minFields {
			continue
		}
		name := strings.TrimSpace(row[colName])
		gender := strings.TrimSpace(row[colGender])
		if name == "" || gender == "" {
			continue
		}
		if r.Grade == "" {
			r.Grade = strings.TrimSpace(row[colGrade])
		}
		if r.Class == "" {
			r.Class = strings.TrimSpace(row[colClass])
		}
		r.Students = append(r.Students, model.Student{
			Number:     leadingInt(row[colNumber]),
			Name:       name,
			Gender:     gender,
			Attendance: model.EmptyAttendance(),
		})
	}
	if len(r.Students) == 0 {
		return Roster{}, ErrNoStudents
	}
	return r, nil
}

// leadingInt parses the leading digits of s ("12번" -> 12); 0 when there are none.
func leadingInt(s string) int {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}
