package model

import "time"

// Message analysis states.
const (
	MessagePending  = "pending"
	MessageAnalyzed = "analyzed"
	MessageFailed   = "failed"
)

// MessageEntry is a logged messenger text together with the to-dos and
// notices extracted from it.
type MessageEntry struct {
	ID       string    `json:"id"`
	Date     time.Time `json:"date"`
	Sender   string    `json:"sender"`
	Original string    `json:"original"`
	Todos    []string  `json:"todos"`
	Notices  []string  `json:"notices"`
	Status   string    `json:"status"`
}
