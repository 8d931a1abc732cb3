// pkg/state/validation.go
package state

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/loggrid/corrector/pkg/dataset"
	"github.com/loggrid/corrector/pkg/model"
)

// ValidationList is the allowed-values list used by the validation
// collaborator. Unlike rule matching, which is always case-sensitive,
// the list's comparison mode is configurable.
type ValidationList struct {
	caseSensitive bool
	values        map[string]bool
	// Original spellings in load order, first occurrence wins, so the
	// list round-trips through the text format unchanged.
	ordered []string
}

// NewValidationList creates a list from allowed values, dropping
// duplicates under the chosen comparison mode.
func NewValidationList(values []string, caseSensitive bool) *ValidationList {
	list := &ValidationList{
		caseSensitive: caseSensitive,
		values:        make(map[string]bool, len(values)),
	}
	for _, value := range values {
		key := list.key(value)
		if list.values[key] {
			continue
		}
		list.values[key] = true
		list.ordered = append(list.ordered, value)
	}
	return list
}

// ReadValidationList parses an allowed-values list from
// newline-delimited text: one entry per line, blank lines and
// surrounding whitespace ignored, entries de-duplicated on load.
func ReadValidationList(r io.Reader, caseSensitive bool) (*ValidationList, error) {
	scanner := bufio.NewScanner(r)

	var values []string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		values = append(values, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read validation list: %w", err)
	}

	return NewValidationList(values, caseSensitive), nil
}

// LoadValidationList reads an allowed-values file from disk.
func LoadValidationList(path string, caseSensitive bool) (*ValidationList, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open validation list: %w", err)
	}
	defer f.Close()

	return ReadValidationList(f, caseSensitive)
}

// WriteTo writes the list as newline-delimited text, one entry per
// line in load order with the original spellings.
func (l *ValidationList) WriteTo(w io.Writer) error {
	writer := bufio.NewWriter(w)
	for _, value := range l.ordered {
		if _, err := writer.WriteString(value + "\n"); err != nil {
			return fmt.Errorf("failed to write validation entry: %w", err)
		}
	}
	return writer.Flush()
}

// Values returns the allowed values in load order with their original
// spellings.
func (l *ValidationList) Values() []string {
	out := make([]string, len(l.ordered))
	copy(out, l.ordered)
	return out
}

// Contains reports whether a value is allowed.
func (l *ValidationList) Contains(value string) bool {
	return l.values[l.key(value)]
}

// Len returns the number of distinct allowed values.
func (l *ValidationList) Len() int {
	return len(l.values)
}

// key normalizes a value under the comparison mode
func (l *ValidationList) key(value string) string {
	if l.caseSensitive {
		return value
	}
	return strings.ToLower(value)
}

// ValidateColumns checks the named columns of a table against the
// list and returns one outcome per checked cell: Valid when the value
// is allowed, Invalid with error details otherwise. Empty columns
// argument means every column.
func ValidateColumns(table *dataset.Table, list *ValidationList, columns ...string) (map[model.CellCoord]ValidationOutcome, error) {
	if len(columns) == 0 {
		columns = table.ColumnNames()
	}

	outcomes := make(map[model.CellCoord]ValidationOutcome)
	for _, column := range columns {
		if _, ok := table.ColumnIndex(column); !ok {
			return nil, fmt.Errorf("%w: %s", dataset.ErrColumnNotFound, column)
		}

		for row := 0; row < table.RowCount(); row++ {
			value, err := table.Get(row, column)
			if err != nil {
				return nil, err
			}

			coord := model.CellCoord{Row: row, Column: column}
			if list.Contains(value) {
				outcomes[coord] = ValidationOutcome{Status: model.StatusValid}
			} else {
				outcomes[coord] = ValidationOutcome{
					Status:       model.StatusInvalid,
					ErrorDetails: fmt.Sprintf("value %q is not in the allowed list", value),
				}
			}
		}
	}

	return outcomes, nil
}
