// pkg/dataset/loader.go
package dataset

import (
	"context"
	"fmt"
	"time"

	"github.com/loggrid/corrector/pkg/connector"
)

// LoadFromSQL runs a query against a source database and materializes
// the result set as an in-memory table. All columns are typed as
// string; values are rendered the same way the engine renders them
// for rule matching.
func LoadFromSQL(
	ctx context.Context,
	conn connector.DatabaseConnector,
	query string,
	timeout time.Duration,
) (*Table, error) {
	rows, err := conn.QueryWithTimeout(ctx, query, timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to query source: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read source columns: %w", err)
	}

	table, err := NewTable(StringColumns(columns))
	if err != nil {
		return nil, err
	}

	values := make([]interface{}, len(columns))
	scanArgs := make([]interface{}, len(columns))
	for i := range values {
		scanArgs[i] = &values[i]
	}

	for rows.Next() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if err := rows.Scan(scanArgs...); err != nil {
			return nil, fmt.Errorf("failed to scan source row: %w", err)
		}

		record := make([]string, len(values))
		for i, value := range values {
			record[i] = renderValue(value)
		}
		if err := table.AppendRow(record); err != nil {
			return nil, err
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating source rows: %w", err)
	}

	return table, nil
}

// renderValue converts a scanned database value to its string form
func renderValue(v interface{}) string {
	if v == nil {
		return ""
	}

	switch val := v.(type) {
	case string:
		return val
	case []byte:
		return string(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
