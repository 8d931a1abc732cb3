// pkg/dataset/column.go
package dataset

import (
	"fmt"
	"strconv"
	"strings"
)

// ColumnType declares what values a column accepts. Values are always
// stored rendered as strings; the type only constrains writes.
type ColumnType int

const (
	// TypeString accepts any value
	TypeString ColumnType = iota
	// TypeInt accepts base-10 integers
	TypeInt
	// TypeFloat accepts decimal numbers
	TypeFloat
	// TypeBool accepts common boolean spellings
	TypeBool
)

// String returns a string representation of the column type
func (ct ColumnType) String() string {
	switch ct {
	case TypeString:
		return "String"
	case TypeInt:
		return "Int"
	case TypeFloat:
		return "Float"
	case TypeBool:
		return "Bool"
	default:
		return fmt.Sprintf("Unknown(%d)", ct)
	}
}

// Column describes one named, typed column of a table.
type Column struct {
	Name string
	Type ColumnType
}

// StringColumns builds an all-string column set from names, the shape
// produced by CSV import.
func StringColumns(names []string) []Column {
	columns := make([]Column, len(names))
	for i, name := range names {
		columns[i] = Column{Name: name, Type: TypeString}
	}
	return columns
}

// Check reports whether a rendered value is acceptable for the type.
func (ct ColumnType) Check(value string) error {
	switch ct {
	case TypeString:
		return nil
	case TypeInt:
		_, err := parseInt(value)
		return err
	case TypeFloat:
		_, err := parseFloat(value)
		return err
	case TypeBool:
		_, err := parseBool(value)
		return err
	default:
		return fmt.Errorf("unknown column type %d", ct)
	}
}

// parseInt attempts to read a rendered value as an int64
func parseInt(value string) (int64, error) {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return 0, fmt.Errorf("empty value is not an integer")
	}
	n, err := strconv.ParseInt(cleaned, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("cannot parse %q as integer", value)
	}
	return n, nil
}

// parseFloat attempts to read a rendered value as a float64
func parseFloat(value string) (float64, error) {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return 0, fmt.Errorf("empty value is not a number")
	}
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("cannot parse %q as number", value)
	}
	return f, nil
}

// parseBool attempts to read a rendered value as a bool
func parseBool(value string) (bool, error) {
	cleaned := strings.TrimSpace(strings.ToLower(value))
	switch cleaned {
	case "true", "t", "yes", "y", "1":
		return true, nil
	case "false", "f", "no", "n", "0":
		return false, nil
	default:
		return false, fmt.Errorf("cannot parse %q as boolean", value)
	}
}
