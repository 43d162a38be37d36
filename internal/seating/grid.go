package seating

import "classroom-backend/internal/model"

// Grid is a rows x columns seat matrix; nil cells are empty seats.
type Grid [][]*model.Student

var neighborOffsets = [8][2]int{
	{-1, -1}, {-1, 0}, {-1, 1},
	{0, -1}, {0, 1},
	{1, -1}, {1, 0}, {1, 1},
}

// NewGrid returns an empty grid sized for count students in columns columns.
func NewGrid(count, columns int) Grid {
	if count <= 0 || columns <= 0 {
		return Grid{}
	}
	rows := rowsFor(count, columns)
	grid := make(Grid, rows)
	for r := range grid {
		grid[r] = make([]*model.Student, columns)
	}
	return grid
}

// rowsFor is ceil(count/columns) without overflowing for large columns.
func rowsFor(count, columns int) int {
	if count <= 0 || columns <= 0 {
		return 0
	}
	return (count-1)/columns + 1
}

// Rows returns the number of rows.
func (g Grid) Rows() int {
	return len(g)
}

// Columns returns the number of columns, or 0 for an empty grid.
func (g Grid) Columns() int {
	if len(g) == 0 {
		return 0
	}
	return len(g[0])
}

// SeatNumber converts a cell position to its 1-based, row-major seat number.
func SeatNumber(row, col, columns int) int {
	return row*columns + col + 1
}

// Position converts a 1-based seat number to a cell position.
func Position(seat, columns int) (row, col int) {
	idx := seat - 1
	return idx / columns, idx % columns
}

// Contains reports whether (row, col) lies inside the grid.
func (g Grid) Contains(row, col int) bool {
	return row >= 0 && row < g.Rows() && col >= 0 && col < g.Columns()
}

// Assignment maps every seated student's name to its seat number.
func (g Grid) Assignment() map[string]int {
	out := make(map[string]int)
	cols := g.Columns()
	for r, row := range g {
		for c, s := range row {
			if s != nil {
				out[s.Name] = SeatNumber(r, c, cols)
			}
		}
	}
	return out
}

// Count returns the number of occupied cells.
func (g Grid) Count() int {
	n := 0
	for _, row := range g {
		for _, s := range row {
			if s != nil {
				n++
			}
		}
	}
	return n
}

// hasEnemyNeighbor reports whether any of the 8 cells around (row, col) holds
// a student whose name is in enemies.
func (g Grid) hasEnemyNeighbor(row, col int, enemies []string) bool {
	for _, d := range neighborOffsets {
		nr, nc := row+d[0], col+d[1]
		if !g.Contains(nr, nc) {
			continue
		}
		neighbor := g[nr][nc]
		if neighbor == nil {
			continue
		}
		for _, name := range enemies {
			if neighbor.Name == name {
				return true
			}
		}
	}
	return false
}

// Conflicts lists the incompatible pairs that currently sit next to each other.
func (g Grid) Conflicts(pairs []Pair) []Pair {
	enemies := enemyIndex(pairs)
	seen := make(map[Pair]bool)
	var out []Pair
	for r, row := range g {
		for c, s := range row {
			if s == nil {
				continue
			}
			for _, d := range neighborOffsets {
				nr, nc := r+d[0], c+d[1]
				if !g.Contains(nr, nc) || g[nr][nc] == nil {
					continue
				}
				other := g[nr][nc].Name
				for _, enemy := range enemies[s.Name] {
					if enemy != other {
						continue
					}
					p := Pair{s.Name, other}
					if other < s.Name {
						p = Pair{other, s.Name}
					}
					if !seen[p] {
						seen[p] = true
						out = append(out, p)
					}
				}
			}
		}
	}
	return out
}

// enemyIndex maps each name to the names it must not sit next to.
func enemyIndex(pairs []Pair) map[string][]string {
	enemies := make(map[string][]string)
	for _, p := range pairs {
		if p[0] == "" || p[1] == "" {
			continue
		}
		enemies[p[0]] = append(enemies[p[0]], p[1])
		enemies[p[1]] = append(enemies[p[1]], p[0])
	}
	return enemies
}
