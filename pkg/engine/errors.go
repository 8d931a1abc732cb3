// pkg/engine/errors.go
package engine

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrRunAborted signals that the dataset or rule source became
// unreadable and the whole run was abandoned. Any active selection
// scope is still released before the error surfaces.
var ErrRunAborted = errors.New("correction run aborted")

// CellErrorCategory classifies per-cell failures during a pass.
type CellErrorCategory int

const (
	// CategoryWarning is informational and never affects the pass
	CategoryWarning CellErrorCategory = iota
	// CategoryApply means a cell rejected the written value
	CategoryApply
	// CategoryLookup means a referenced rule could not be resolved
	CategoryLookup
	// CategorySystem means an unexpected engine failure on one cell
	CategorySystem
)

// String returns a string representation of the error category
func (c CellErrorCategory) String() string {
	switch c {
	case CategoryWarning:
		return "Warning"
	case CategoryApply:
		return "Apply"
	case CategoryLookup:
		return "Lookup"
	case CategorySystem:
		return "System"
	default:
		return fmt.Sprintf("Unknown(%d)", c)
	}
}

// CellError records a single per-cell failure. Per-cell errors are
// collected and never abort the pass; the pass continues with the
// next cell.
type CellError struct {
	Category  CellErrorCategory
	Row       int
	Column    string
	Value     string
	Err       error
	Message   string
	Timestamp time.Time
}

// NewCellError creates a cell error record with the current timestamp
func NewCellError(err error, category CellErrorCategory) CellError {
	record := CellError{
		Category:  category,
		Err:       err,
		Timestamp: time.Now(),
		Row:       -1,
	}
	if err != nil {
		record.Message = err.Error()
	}
	return record
}

// WithCell adds cell information to the error record
func (e CellError) WithCell(row int, column, value string) CellError {
	e.Row = row
	e.Column = column
	e.Value = value
	return e
}

// Error implements the error interface
func (e CellError) Error() string {
	return e.String()
}

// Unwrap exposes the underlying cause for errors.Is checks
func (e CellError) Unwrap() error {
	return e.Err
}

// String returns a formatted error message
func (e CellError) String() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("[%s] ", e.Category))

	if e.Row >= 0 {
		sb.WriteString(fmt.Sprintf("Row: %d ", e.Row))
	}
	if e.Column != "" {
		sb.WriteString(fmt.Sprintf("Column: %s ", e.Column))
		if e.Value != "" {
			sb.WriteString(fmt.Sprintf("Value: %q ", e.Value))
		}
	}
	if e.Err != nil {
		sb.WriteString(fmt.Sprintf("Error: %s", e.Err.Error()))
	} else if e.Message != "" {
		sb.WriteString(fmt.Sprintf("Error: %s", e.Message))
	}

	return sb.String()
}
