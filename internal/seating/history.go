package seating

import "classroom-backend/internal/model"

// History is a list of saved assignments, most recent first.
type History []model.HistoryEntry

// Find returns the entry saved for date.
func (h History) Find(date string) (model.HistoryEntry, bool) {
	for _, e := range h {
		if e.Date == date {
			return e, true
		}
	}
	return model.HistoryEntry{}, false
}

// Latest returns the assignment of the most recent entry, or nil.
func (h History) Latest() map[string]int {
	if len(h) == 0 {
		return nil
	}
	return h[0].History
}

// Upsert returns a new history with entry stored: an entry for the same date
// is replaced in place, otherwise entry is prepended. Entries beyond limit are
// dropped from the oldest end; limit <= 0 means unbounded.
func (h History) Upsert(entry model.HistoryEntry, limit int) (out History, overwritten bool) {
	out = make(History, 0, len(h)+1)
	for i, e := range h {
		if e.Date == entry.Date {
			out = append(out, h[:i]...)
			out = append(out, entry)
			out = append(out, h[i+1:]...)
			overwritten = true
			break
		}
	}
	if !overwritten {
		out = append(out, entry)
		out = append(out, h...)
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, overwritten
}
