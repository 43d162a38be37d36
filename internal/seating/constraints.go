package seating

import (
	"strconv"
	"strings"
)

// Pin forces the student called Name into the 1-based Seat.
type Pin struct {
	Seat int    `json:"seat"`
	Name string `json:"name"`
}

// PriorityEntry is a single front-row request or, when Pair is set, a request
// to seat First and Second side by side.
type PriorityEntry struct {
	First  string `json:"first"`
	Second string `json:"second,omitempty"`
	Pair   bool   `json:"pair"`
}

// Pair is an unordered pair of names that must not be seated next to each other.
type Pair [2]string

// ParsePins parses "seat:name" chunks separated by commas, e.g. "1:Kim, 7:Lee".
// Malformed chunks, non-positive seats and empty names are dropped.
func ParsePins(input string) []Pin {
	var pins []Pin
	for _, chunk := range splitChunks(input) {
		parts := strings.Split(chunk, ":")
		if len(parts) != 2 {
			continue
		}
		seat, err := strconv.Atoi(strings.TrimSpace(parts[0]))
		name := strings.TrimSpace(parts[1])
		if err != nil || seat <= 0 || name == "" {
			continue
		}
		pins = append(pins, Pin{Seat: seat, Name: name})
	}
	return pins
}

// ParsePriority parses comma-separated names; a chunk containing ';' is a pair,
// e.g. "Kim, Lee;Park".
func ParsePriority(input string) []PriorityEntry {
	var entries []PriorityEntry
	for _, chunk := range splitChunks(input) {
		if !strings.Contains(chunk, ";") {
			entries = append(entries, PriorityEntry{First: chunk})
			continue
		}
		names := splitNames(chunk)
		if names[0] == "" {
			continue
		}
		entries = append(entries, PriorityEntry{First: names[0], Second: names[1], Pair: true})
	}
	return entries
}

// ParseIncompatible parses "a;b" chunks separated by commas. Chunks naming
// fewer than two students are ignored.
func ParseIncompatible(input string) []Pair {
	var pairs []Pair
	for _, chunk := range splitChunks(input) {
		names := splitNames(chunk)
		if names[0] == "" || names[1] == "" {
			continue
		}
		pairs = append(pairs, Pair{names[0], names[1]})
	}
	return pairs
}

func splitChunks(input string) []string {
	if strings.TrimSpace(input) == "" {
		return nil
	}
	var chunks []string
	for _, chunk := range strings.Split(input, ",") {
		if chunk = strings.TrimSpace(chunk); chunk != "" {
			chunks = append(chunks, chunk)
		}
	}
	return chunks
}

// splitNames returns the first two ';'-separated names of chunk, trimmed.
// Missing names are empty strings.
func splitNames(chunk string) [2]string {
	var names [2]string
	for i, part := range strings.SplitN(chunk, ";", 3) {
		if i > 1 {
			break
		}
		names[i] = strings.TrimSpace(part)
	}
	return names
}
