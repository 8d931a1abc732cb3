// pkg/dataset/csv.go
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
)

// ReadCSV builds a table from CSV content. The first record is the
// header; every column is typed as string, matching how imported game
// logs arrive before any typing is declared.
func ReadCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("csv input is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}

	table, err := NewTable(StringColumns(header))
	if err != nil {
		return nil, err
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv record: %w", err)
		}
		if err := table.AppendRow(record); err != nil {
			return nil, err
		}
	}

	return table, nil
}

// LoadCSV reads a table from a CSV file on disk.
func LoadCSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open csv file: %w", err)
	}
	defer f.Close()

	return ReadCSV(f)
}

// WriteCSV writes the table, header first, as CSV.
func (t *Table) WriteCSV(w io.Writer) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(t.ColumnNames()); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, row := range t.rows {
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write csv record: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// SaveCSV writes the table to a CSV file on disk.
func (t *Table) SaveCSV(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create csv file: %w", err)
	}
	defer f.Close()

	return t.WriteCSV(f)
}
