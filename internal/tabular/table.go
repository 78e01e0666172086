// Package tabular holds the minimal in-memory table the pipeline operates on.
// The serving layer parses whatever delimited source it received into a Table;
// nothing below that layer touches files.
package tabular

import (
	"encoding/csv"
	"fmt"
	"io"
)

// Table is an ordered, column-named grid of string cells.
type Table struct {
	Columns []string
	Rows    [][]string
}

// New creates an empty table with the given column set.
func New(columns ...string) *Table {
	return &Table{Columns: append([]string(nil), columns...)}
}

// NumRows returns the number of data rows.
func (t *Table) NumRows() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// ColumnIndex returns the position of the named column, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// HasColumn reports whether the named column exists.
func (t *Table) HasColumn(name string) bool {
	return t.ColumnIndex(name) >= 0
}

// AppendRow adds a row, padding or truncating to the column count.
func (t *Table) AppendRow(cells ...string) {
	row := make([]string, len(t.Columns))
	copy(row, cells)
	t.Rows = append(t.Rows, row)
}

// Cell returns the value at (row, column index); empty string out of range.
func (t *Table) Cell(row, col int) string {
	if row < 0 || row >= len(t.Rows) || col < 0 || col >= len(t.Rows[row]) {
		return ""
	}
	return t.Rows[row][col]
}

// Column returns a copy of the named column's values.
func (t *Table) Column(name string) ([]string, bool) {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return nil, false
	}
	values := make([]string, t.NumRows())
	for i := range t.Rows {
		values[i] = t.Cell(i, idx)
	}
	return values, true
}

// AddConstantColumn appends a new column filled with the same value on every row.
func (t *Table) AddConstantColumn(name, value string) {
	t.Columns = append(t.Columns, name)
	for i := range t.Rows {
		t.Rows[i] = append(t.Rows[i], value)
	}
}

// Clone returns a deep copy so callers can transform a table without
// mutating the original.
func (t *Table) Clone() *Table {
	if t == nil {
		return nil
	}
	out := &Table{Columns: append([]string(nil), t.Columns...)}
	out.Rows = make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		out.Rows[i] = append([]string(nil), row...)
	}
	return out
}

// FromCSV reads a header-first CSV stream into a Table. Ragged rows are
// padded or truncated to the header width rather than rejected, since real
// access-log exports are rarely clean.
func FromCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("csv input has no header row")
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	table := New(header...)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row %d: %w", table.NumRows()+2, err)
		}
		table.AppendRow(record...)
	}
	return table, nil
}
