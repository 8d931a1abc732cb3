// pkg/dataset/table.go
package dataset

import (
	"errors"
	"fmt"
	"sync"

	"github.com/loggrid/corrector/pkg/model"
)

// Table is an in-memory tabular dataset of rows by named columns.
// Cell values are stored rendered as strings; typed columns reject
// writes that cannot be coerced to the declared type.
//
// The table is a single shared mutable resource: callers must not
// mutate it concurrently with an active correction run. Only the
// selection scope carries its own lock, because scope release may
// happen from a different goroutine than the one that acquired it.
type Table struct {
	columns []Column
	byName  map[string]int
	rows    [][]string

	scopeMu sync.Mutex
	scope   map[model.CellCoord]bool
}

var (
	// ErrColumnNotFound is returned when a column name is unknown
	ErrColumnNotFound = errors.New("column not found")
	// ErrRowOutOfRange is returned when a row index is out of bounds
	ErrRowOutOfRange = errors.New("row index out of range")
)

// NewTable creates an empty table with the given column definitions.
func NewTable(columns []Column) (*Table, error) {
	if len(columns) == 0 {
		return nil, errors.New("table requires at least one column")
	}

	byName := make(map[string]int, len(columns))
	for i, col := range columns {
		if col.Name == "" {
			return nil, fmt.Errorf("column %d has an empty name", i)
		}
		if _, dup := byName[col.Name]; dup {
			return nil, fmt.Errorf("duplicate column name %q", col.Name)
		}
		byName[col.Name] = i
	}

	return &Table{
		columns: columns,
		byName:  byName,
	}, nil
}

// AppendRow adds a row of rendered values. Every value must be
// coercible to its column's declared type.
func (t *Table) AppendRow(values []string) error {
	if len(values) != len(t.columns) {
		return fmt.Errorf("row has %d values, table has %d columns", len(values), len(t.columns))
	}

	row := make([]string, len(values))
	for i, value := range values {
		if err := t.columns[i].Type.Check(value); err != nil {
			return fmt.Errorf("column %s: %w", t.columns[i].Name, err)
		}
		row[i] = value
	}

	t.rows = append(t.rows, row)
	return nil
}

// Get returns the rendered value of the cell at (row, column name).
func (t *Table) Get(row int, column string) (string, error) {
	idx, ok := t.byName[column]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrColumnNotFound, column)
	}
	if row < 0 || row >= len(t.rows) {
		return "", fmt.Errorf("%w: %d", ErrRowOutOfRange, row)
	}
	return t.rows[row][idx], nil
}

// GetByIndex returns the rendered value of the cell at (row, column index).
func (t *Table) GetByIndex(row, column int) (string, error) {
	if column < 0 || column >= len(t.columns) {
		return "", fmt.Errorf("%w: index %d", ErrColumnNotFound, column)
	}
	if row < 0 || row >= len(t.rows) {
		return "", fmt.Errorf("%w: %d", ErrRowOutOfRange, row)
	}
	return t.rows[row][column], nil
}

// Set writes a value into the cell at (row, column name). The write
// fails if the value cannot be coerced to the column's declared type;
// the cell is left unchanged in that case.
func (t *Table) Set(row int, column, value string) error {
	idx, ok := t.byName[column]
	if !ok {
		return fmt.Errorf("%w: %s", ErrColumnNotFound, column)
	}
	if row < 0 || row >= len(t.rows) {
		return fmt.Errorf("%w: %d", ErrRowOutOfRange, row)
	}
	if err := t.columns[idx].Type.Check(value); err != nil {
		return fmt.Errorf("column %s: %w", column, err)
	}

	t.rows[row][idx] = value
	return nil
}

// ColumnIndex returns the index of a column by name.
func (t *Table) ColumnIndex(name string) (int, bool) {
	idx, ok := t.byName[name]
	return idx, ok
}

// ColumnNames returns the ordered column names.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.columns))
	for i, col := range t.columns {
		names[i] = col.Name
	}
	return names
}

// Columns returns a copy of the column definitions.
func (t *Table) Columns() []Column {
	out := make([]Column, len(t.columns))
	copy(out, t.columns)
	return out
}

// RowCount returns the number of rows.
func (t *Table) RowCount() int {
	return len(t.rows)
}

// ColumnCount returns the number of columns.
func (t *Table) ColumnCount() int {
	return len(t.columns)
}

// IsEmpty reports whether the table has no rows.
func (t *Table) IsEmpty() bool {
	return len(t.rows) == 0
}

// Row returns a copy of one row's rendered values.
func (t *Table) Row(row int) ([]string, error) {
	if row < 0 || row >= len(t.rows) {
		return nil, fmt.Errorf("%w: %d", ErrRowOutOfRange, row)
	}
	out := make([]string, len(t.rows[row]))
	copy(out, t.rows[row])
	return out, nil
}
