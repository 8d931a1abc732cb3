// pkg/engine/scanner_test.go
package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/loggrid/corrector/pkg/history"
	"github.com/loggrid/corrector/pkg/model"
	"github.com/loggrid/corrector/pkg/rules"
	"github.com/loggrid/corrector/pkg/state"
)

func newScannerFixture(t *testing.T, ruleSeeds ...model.CorrectionRule) (*Scanner, *state.Manager) {
	t.Helper()

	store := rules.NewMemoryStore()
	for _, rule := range ruleSeeds {
		_, err := store.Add(rule)
		require.NoError(t, err)
	}

	states := state.NewManager(nil, zap.NewNop())
	scanner, err := NewScanner(store, states, zap.NewNop())
	require.NoError(t, err)
	return scanner, states
}

func TestNewScanner(t *testing.T) {
	_, err := NewScanner(nil, nil, zap.NewNop())
	assert.Error(t, err)

	_, err = NewScanner(rules.NewMemoryStore(), nil, nil)
	assert.Error(t, err)
}

func TestScannerSuggestions(t *testing.T) {
	table := newRewardTable(t, "100", "200")
	scanner, _ := newScannerFixture(t,
		model.NewCorrectionRule("100", "100 Gold", ""),
		model.NewCorrectionRule("100", "100 Silver", "Reward"))

	suggestions, err := scanner.Suggestions(table)
	require.NoError(t, err)

	// Only the "100" cell matches; cells without a match are absent.
	require.Len(t, suggestions, 1)

	coord := model.CellCoord{Row: 0, Column: "Reward"}
	cellSuggestions := suggestions[coord]
	require.Len(t, cellSuggestions, 2)
	assert.Equal(t, "100 Gold", cellSuggestions[0].CorrectedValue, "priority order is preserved")
}

func TestScannerSuggestionsEmptyTable(t *testing.T) {
	scanner, _ := newScannerFixture(t, model.NewCorrectionRule("100", "100 Gold", ""))

	suggestions, err := scanner.Suggestions(nil)
	require.NoError(t, err)
	assert.Empty(t, suggestions)
}

func TestScannerRespectsScope(t *testing.T) {
	table := newRewardTable(t, "100", "100")
	scanner, _ := newScannerFixture(t, model.NewCorrectionRule("100", "100 Gold", ""))

	scope, err := table.AcquireScope([]model.CellCoord{{Row: 0, Column: "Reward"}})
	require.NoError(t, err)
	defer scope.Release()

	suggestions, err := scanner.Suggestions(table)
	require.NoError(t, err)
	assert.Len(t, suggestions, 1)
}

func TestScannerRefresh(t *testing.T) {
	table := newRewardTable(t, "100")
	scanner, states := newScannerFixture(t, model.NewCorrectionRule("100", "100 Gold", ""))

	coord := model.CellCoord{Row: 0, Column: "Reward"}
	states.ApplyValidation(map[model.CellCoord]state.ValidationOutcome{
		coord: {Status: model.StatusInvalid, ErrorDetails: "value not allowed"},
	})

	updated, err := scanner.Refresh(table)
	require.NoError(t, err)
	require.Len(t, updated, 1)

	cellState := states.Get(coord)
	assert.Equal(t, model.StatusCorrectable, cellState.Status)
	assert.Equal(t, "value not allowed", cellState.ErrorDetails)
	assert.True(t, cellState.IsCorrectable())
	assert.True(t, cellState.IsInvalid(), "the validation outcome survives the merge")
}

func TestOnlyInvalidRunAfterRefresh(t *testing.T) {
	table := newRewardTable(t, "100")
	store := rules.NewMemoryStore()
	_, err := store.Add(model.NewCorrectionRule("100", "100 Gold", ""))
	require.NoError(t, err)

	states := state.NewManager(nil, zap.NewNop())
	coord := model.CellCoord{Row: 0, Column: "Reward"}
	states.ApplyValidation(map[model.CellCoord]state.ValidationOutcome{
		coord: {Status: model.StatusInvalid, ErrorDetails: "value not allowed"},
	})

	// Marking the cell correctable must not hide it from an
	// only-invalid run.
	scanner, err := NewScanner(store, states, zap.NewNop())
	require.NoError(t, err)
	_, err = scanner.Refresh(table)
	require.NoError(t, err)

	validity := func(c model.CellCoord) model.ValidationStatus {
		return states.Get(c).Validation
	}
	applier, err := NewApplier(history.NewRecorder(), validity, zap.NewNop())
	require.NoError(t, err)
	runner, err := NewRunner(table, store, applier, zap.NewNop())
	require.NoError(t, err)

	stats, err := runner.Run(context.Background(), RunOptions{OnlyInvalid: true, Recursive: true}, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.TotalCorrections)
	value, err := table.Get(0, "Reward")
	require.NoError(t, err)
	assert.Equal(t, "100 Gold", value)
}

func TestScannerRemainingCorrectable(t *testing.T) {
	table := newRewardTable(t, "100", "100", "done")
	scanner, _ := newScannerFixture(t, model.NewCorrectionRule("100", "100 Gold", ""))

	remaining, err := scanner.RemainingCorrectable(table)
	require.NoError(t, err)
	assert.Equal(t, 2, remaining)
}

func TestScannerFailsWhenRulesUnreadable(t *testing.T) {
	table := newRewardTable(t, "100")

	scanner, err := NewScanner(failingStore{}, nil, zap.NewNop())
	require.NoError(t, err)

	_, err = scanner.Suggestions(table)
	assert.Error(t, err)
}
