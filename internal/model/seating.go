package model

// HistoryEntry is a saved seating assignment: student name to 1-based seat.
type HistoryEntry struct {
	Date    string         `json:"date"`
	History map[string]int `json:"history"`
}
