package seating

import (
	"fmt"
	"sort"

	"classroom-backend/internal/model"
)

const (
	defaultPriorityRows = 2
	defaultMaxPasses    = 100
)

// WarningKind classifies a non-fatal issue raised during generation.
type WarningKind string

const (
	WarnPinSkipped          WarningKind = "pin_skipped"
	WarnPrioritySkipped     WarningKind = "priority_skipped"
	WarnConflictsUnresolved WarningKind = "conflicts_unresolved"
)

// Warning is a best-effort failure: the seating is still usable but a
// constraint could not be honoured.
type Warning struct {
	Kind    WarningKind `json:"kind"`
	Message string      `json:"message"`
}

// Request holds the inputs of a single generation run.
type Request struct {
	Roster       []model.Student
	Columns      int
	Pins         []Pin
	Priority     []PriorityEntry
	Incompatible []Pair
	// Prior is the assignment of the most recent history entry.
	Prior     map[string]int
	Randomize bool
}

// Result is the outcome of a generation run.
type Result struct {
	Grid       Grid           `json:"grid"`
	Assignment map[string]int `json:"assignment"`
	Warnings   []Warning      `json:"warnings"`
	// Passes is the number of conflict-resolution scans performed.
	Passes int `json:"passes"`
}

// HasWarning reports whether the result carries a warning of the given kind.
func (r *Result) HasWarning(kind WarningKind) bool {
	for _, w := range r.Warnings {
		if w.Kind == kind {
			return true
		}
	}
	return false
}

// Options configures an Engine.
type Options struct {
	PriorityRows int
	MaxPasses    int
	Random       Random
}

// Engine generates seating charts. It holds no per-call state and is safe for
// concurrent use as long as its Random is.
type Engine struct {
	priorityRows int
	maxPasses    int
	rand         Random
}

// NewEngine creates an Engine, filling unset options with defaults.
func NewEngine(opts Options) *Engine {
	if opts.PriorityRows <= 0 {
		opts.PriorityRows = defaultPriorityRows
	}
	if opts.MaxPasses <= 0 {
		opts.MaxPasses = defaultMaxPasses
	}
	if opts.Random == nil {
		opts.Random = NewTimeRandom()
	}
	return &Engine{
		priorityRows: opts.PriorityRows,
		maxPasses:    opts.MaxPasses,
		rand:         opts.Random,
	}
}

// run is the mutable state of one Generate call.
type run struct {
	grid     Grid
	cols     int
	students []*model.Student
	placed   []bool
	warnings []Warning
}

func (r *run) warn(kind WarningKind, format string, args ...any) {
	r.warnings = append(r.warnings, Warning{Kind: kind, Message: fmt.Sprintf(format, args...)})
}

// find returns the roster index of the first unplaced student called name,
// skipping index exclude, or -1.
func (r *run) find(name string, exclude int) int {
	for i, s := range r.students {
		if i != exclude && !r.placed[i] && s.Name == name {
			return i
		}
	}
	return -1
}

func (r *run) seat(i, row, col int) {
	r.grid[row][col] = r.students[i]
	r.placed[i] = true
}

// Generate builds a seating chart in four phases: fixed pins, front-row
// priority, bulk fill and incompatible-pair repair.
func (e *Engine) Generate(req Request) (*Result, error) {
	if len(req.Roster) == 0 {
		return nil, ErrEmptyRoster
	}
	if !ValidColumns(req.Columns) {
		return nil, ErrInvalidColumns
	}

	students := make([]*model.Student, len(req.Roster))
	for i := range req.Roster {
		s := req.Roster[i]
		students[i] = &s
	}
	r := &run{
		grid:     NewGrid(len(students), req.Columns),
		cols:     req.Columns,
		students: students,
		placed:   make([]bool, len(students)),
	}

	e.placePins(r, req.Pins)
	e.placePriority(r, req.Priority)
	e.placeRemaining(r, req.Prior, req.Randomize)

	passes := 0
	if len(req.Incompatible) > 0 {
		var resolved bool
		passes, resolved = e.resolveConflicts(r.grid, req.Incompatible)
		if !resolved {
			conflicts := r.grid.Conflicts(req.Incompatible)
			r.warn(WarnConflictsUnresolved, "%d incompatible pair(s) still adjacent after %d passes; adjust manually", len(conflicts), passes)
		}
	}

	return &Result{
		Grid:       r.grid,
		Assignment: r.grid.Assignment(),
		Warnings:   r.warnings,
		Passes:     passes,
	}, nil
}

func (e *Engine) placePins(r *run, pins []Pin) {
	for _, pin := range pins {
		if pin.Seat < 1 || pin.Name == "" {
			r.warn(WarnPinSkipped, "pin %d:%q is malformed", pin.Seat, pin.Name)
			continue
		}
		row, col := Position(pin.Seat, r.cols)
		if !r.grid.Contains(row, col) {
			r.warn(WarnPinSkipped, "seat %d for %s is out of range", pin.Seat, pin.Name)
			continue
		}
		if r.grid[row][col] != nil {
			r.warn(WarnPinSkipped, "seat %d is already taken; %s not pinned", pin.Seat, pin.Name)
			continue
		}
		i := r.find(pin.Name, -1)
		if i < 0 {
			r.warn(WarnPinSkipped, "no unplaced student named %s for seat %d", pin.Name, pin.Seat)
			continue
		}
		r.seat(i, row, col)
	}
}

func (e *Engine) placePriority(r *run, entries []PriorityEntry) {
	maxRow := min(e.priorityRows, r.grid.Rows())
	for _, entry := range entries {
		if entry.Pair {
			if !e.placePair(r, entry.First, entry.Second, maxRow) {
				r.warn(WarnPrioritySkipped, "could not seat %s and %s together in the front rows", entry.First, entry.Second)
			}
			continue
		}
		if !e.placeSingle(r, entry.First, maxRow) {
			r.warn(WarnPrioritySkipped, "could not seat %s in the front rows", entry.First)
		}
	}
}

func (e *Engine) placePair(r *run, first, second string, maxRow int) bool {
	i := r.find(first, -1)
	if i < 0 {
		return false
	}
	j := r.find(second, i)
	if j < 0 {
		return false
	}
	for row := 0; row < maxRow; row++ {
		for col := 0; col < r.cols-1; col++ {
			if r.grid[row][col] == nil && r.grid[row][col+1] == nil {
				r.seat(i, row, col)
				r.seat(j, row, col+1)
				return true
			}
		}
	}
	return false
}

func (e *Engine) placeSingle(r *run, name string, maxRow int) bool {
	i := r.find(name, -1)
	if i < 0 {
		return false
	}
	for row := 0; row < maxRow; row++ {
		for col := 0; col < r.cols; col++ {
			if r.grid[row][col] == nil {
				r.seat(i, row, col)
				return true
			}
		}
	}
	return false
}

// placeRemaining fills the empty cells row-major. In random mode a student is
// kept off the seat they held in prior whenever another candidate is left.
func (e *Engine) placeRemaining(r *run, prior map[string]int, randomize bool) {
	var remaining []int
	for i := range r.students {
		if !r.placed[i] {
			remaining = append(remaining, i)
		}
	}
	if randomize {
		e.rand.Shuffle(len(remaining), func(a, b int) {
			remaining[a], remaining[b] = remaining[b], remaining[a]
		})
	} else {
		sort.SliceStable(remaining, func(a, b int) bool {
			return r.students[remaining[a]].Number < r.students[remaining[b]].Number
		})
	}

	for row := range r.grid {
		for col := range r.grid[row] {
			if len(remaining) == 0 {
				return
			}
			if r.grid[row][col] != nil {
				continue
			}
			pick := 0
			if randomize {
				seat := SeatNumber(row, col, r.cols)
				for k, i := range remaining {
					if prev, ok := prior[r.students[i].Name]; !ok || prev != seat {
						pick = k
						break
					}
				}
			}
			r.seat(remaining[pick], row, col)
			remaining = append(remaining[:pick], remaining[pick+1:]...)
		}
	}
}

// resolveConflicts runs full scans, swapping any student next to an enemy with
// a random cell, until a scan finds nothing or the pass budget runs out. The
// swap may move a satisfied student into a new conflict, so it is not
// guaranteed to converge.
func (e *Engine) resolveConflicts(grid Grid, pairs []Pair) (passes int, resolved bool) {
	enemies := enemyIndex(pairs)
	for passes < e.maxPasses {
		passes++
		conflict := false
		for row := range grid {
			for col := range grid[row] {
				current := grid[row][col]
				if current == nil {
					continue
				}
				names := enemies[current.Name]
				if len(names) == 0 {
					continue
				}
				if grid.hasEnemyNeighbor(row, col, names) {
					conflict = true
					e.swapRandom(grid, row, col)
				}
			}
		}
		if !conflict {
			return passes, true
		}
	}
	return passes, len(grid.Conflicts(pairs)) == 0
}

func (e *Engine) swapRandom(grid Grid, row, col int) {
	r2 := e.rand.Intn(grid.Rows())
	c2 := e.rand.Intn(grid.Columns())
	grid[row][col], grid[r2][c2] = grid[r2][c2], grid[row][col]
}

// LoadFromHistory rebuilds the grid saved for date against the current
// roster. Names no longer on the roster and seats outside the grid are
// skipped.
func (e *Engine) LoadFromHistory(date string, roster []model.Student, columns int, history History) (Grid, error) {
	if !ValidColumns(columns) {
		return nil, ErrInvalidColumns
	}
	entry, ok := history.Find(date)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrHistoryNotFound, date)
	}

	grid := NewGrid(len(roster), columns)
	names := make([]string, 0, len(entry.History))
	for name := range entry.History {
		names = append(names, name)
	}
	sort.Slice(names, func(a, b int) bool {
		return entry.History[names[a]] < entry.History[names[b]]
	})

	placed := make([]bool, len(roster))
	for _, name := range names {
		row, col := Position(entry.History[name], columns)
		if entry.History[name] < 1 || !grid.Contains(row, col) || grid[row][col] != nil {
			continue
		}
		for i := range roster {
			if !placed[i] && roster[i].Name == name {
				s := roster[i]
				grid[row][col] = &s
				placed[i] = true
				break
			}
		}
	}
	return grid, nil
}
