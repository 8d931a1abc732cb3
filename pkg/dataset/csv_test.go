// pkg/dataset/csv_test.go
package dataset

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCSV(t *testing.T) {
	t.Run("reads header and rows", func(t *testing.T) {
		input := "Player,Reward\nalice,100\nbob,Sliver Key\n"

		table, err := ReadCSV(strings.NewReader(input))
		require.NoError(t, err)

		assert.Equal(t, []string{"Player", "Reward"}, table.ColumnNames())
		assert.Equal(t, 2, table.RowCount())

		value, err := table.Get(1, "Reward")
		require.NoError(t, err)
		assert.Equal(t, "Sliver Key", value)
	})

	t.Run("rejects empty input", func(t *testing.T) {
		_, err := ReadCSV(strings.NewReader(""))
		assert.Error(t, err)
	})

	t.Run("rejects ragged rows", func(t *testing.T) {
		_, err := ReadCSV(strings.NewReader("A,B\nonly-one\n"))
		assert.Error(t, err)
	})
}

func TestWriteCSV(t *testing.T) {
	table := newGameLogTable(t)

	var buf bytes.Buffer
	require.NoError(t, table.WriteCSV(&buf))

	reread, err := ReadCSV(&buf)
	require.NoError(t, err)

	assert.Equal(t, table.ColumnNames(), reread.ColumnNames())
	assert.Equal(t, table.RowCount(), reread.RowCount())

	value, err := reread.Get(1, "Reward")
	require.NoError(t, err)
	assert.Equal(t, "Sliver Key", value)
}

func TestLoadSaveCSV(t *testing.T) {
	table := newGameLogTable(t)
	path := filepath.Join(t.TempDir(), "log.csv")

	require.NoError(t, table.SaveCSV(path))

	loaded, err := LoadCSV(path)
	require.NoError(t, err)
	assert.Equal(t, table.RowCount(), loaded.RowCount())

	_, err = LoadCSV(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}
