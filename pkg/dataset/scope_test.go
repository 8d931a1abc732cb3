// pkg/dataset/scope_test.go
package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loggrid/corrector/pkg/model"
)

func TestAcquireScope(t *testing.T) {
	table := newGameLogTable(t)
	selection := []model.CellCoord{{Row: 0, Column: "Reward"}}

	scope, err := table.AcquireScope(selection)
	require.NoError(t, err)
	assert.True(t, table.Scoped())

	t.Run("second scope is rejected", func(t *testing.T) {
		_, err := table.AcquireScope(selection)
		assert.ErrorIs(t, err, ErrScopeActive)
	})

	t.Run("visible coords are the selection only", func(t *testing.T) {
		assert.Equal(t, selection, table.VisibleCoords())
	})

	scope.Release()
	assert.False(t, table.Scoped())

	t.Run("release restores full visibility", func(t *testing.T) {
		assert.Len(t, table.VisibleCoords(), table.RowCount()*table.ColumnCount())
	})

	t.Run("release is idempotent", func(t *testing.T) {
		scope.Release()
		scope.Release()
		assert.False(t, table.Scoped())
	})

	t.Run("table can be scoped again after release", func(t *testing.T) {
		again, err := table.AcquireScope(selection)
		require.NoError(t, err)
		again.Release()
	})
}

func TestReleaseNilScope(t *testing.T) {
	var scope *Scope
	assert.NotPanics(t, func() { scope.Release() })
}

func TestVisibleCoordsRowMajor(t *testing.T) {
	table := newGameLogTable(t)

	coords := table.VisibleCoords()
	require.Len(t, coords, 6)

	assert.Equal(t, model.CellCoord{Row: 0, Column: "Player"}, coords[0])
	assert.Equal(t, model.CellCoord{Row: 0, Column: "Reward"}, coords[1])
	assert.Equal(t, model.CellCoord{Row: 0, Column: "Score"}, coords[2])
	assert.Equal(t, model.CellCoord{Row: 1, Column: "Player"}, coords[3])
}
