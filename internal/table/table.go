package table

import (
	"errors"
	"fmt"
	"strings"
)

// Separator delimits columns in output files.
const Separator = "\t"

var (
	// ErrColumnCount is returned when a row does not match the header width.
	ErrColumnCount = errors.New("row width does not match header")

	// YearSpendingHeader is the header of chart-derived tables.
	YearSpendingHeader = []string{"state", "year", "spending"}

	// ProgramSpendingHeader is the header of program-table-derived tables.
	ProgramSpendingHeader = []string{"state", "program", "spending"}
)

// Row is an ordered list of cells; the first cell is the region.
type Row []string

// Table is a header plus rows of the same width.
type Table struct {
	Header []string
	Rows   []Row
}

// New creates an empty table with the given header.
func New(header []string) *Table {
	return &Table{Header: append([]string(nil), header...)}
}

// Append adds a row after checking its width.
func (t *Table) Append(row Row) error {
	if len(row) != len(t.Header) {
		return fmt.Errorf("%w: got %d cells, want %d (%s)",
			ErrColumnCount, len(row), len(t.Header), strings.Join(row, "|"))
	}
	t.Rows = append(t.Rows, row)
	return nil
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// String renders the table as it is written to disk.
func (t *Table) String() string {
	var b strings.Builder
	b.WriteString(strings.Join(t.Header, Separator))
	b.WriteByte('\n')
	for _, row := range t.Rows {
		b.WriteString(strings.Join(row, Separator))
		b.WriteByte('\n')
	}
	return b.String()
}
