package roster

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// ParseXLSX parses the first worksheet of an Excel workbook with the same
// column layout and rules as ParseCSV.
func ParseXLSX(r io.Reader) (Roster, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return Roster{}, fmt.Errorf("roster: open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return Roster{}, ErrNoStudents
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return Roster{}, fmt.Errorf("roster: read sheet %q: %w", sheets[0], err)
	}
	return fromRows(rows)
}
