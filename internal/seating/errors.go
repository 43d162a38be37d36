package seating

import "errors"

// MaxColumns bounds the width of a seating grid.
const MaxColumns = 50

// ValidColumns reports whether columns is a usable grid width.
func ValidColumns(columns int) bool {
	return columns >= 1 && columns <= MaxColumns
}

var (
	// ErrEmptyRoster is returned when a seating is requested for an empty roster.
	ErrEmptyRoster = errors.New("seating: roster is empty")
	// ErrInvalidColumns is returned when the column count is outside
	// [1, MaxColumns].
	ErrInvalidColumns = errors.New("seating: columns must be between 1 and 50")
	// ErrHistoryNotFound is returned when no history entry matches a date.
	ErrHistoryNotFound = errors.New("seating: history entry not found")
)
