// pkg/engine/applier_test.go
package engine

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/loggrid/corrector/pkg/dataset"
	"github.com/loggrid/corrector/pkg/history"
	"github.com/loggrid/corrector/pkg/model"
	"github.com/loggrid/corrector/pkg/rules"
)

func newRewardTable(t *testing.T, rewards ...string) *dataset.Table {
	t.Helper()

	table, err := dataset.NewTable(dataset.StringColumns([]string{"Player", "Reward"}))
	require.NoError(t, err)
	for i, reward := range rewards {
		require.NoError(t, table.AppendRow([]string{"player" + string(rune('a'+i)), reward}))
	}
	return table
}

func newTestApplier(t *testing.T, validity ValidityFunc) (*Applier, *history.Recorder) {
	t.Helper()

	recorder := history.NewRecorder()
	applier, err := NewApplier(recorder, validity, zap.NewNop())
	require.NoError(t, err)
	return applier, recorder
}

func TestNewApplier(t *testing.T) {
	_, err := NewApplier(nil, nil, zap.NewNop())
	assert.Error(t, err)

	_, err = NewApplier(history.NewRecorder(), nil, nil)
	assert.Error(t, err)
}

func TestApplyPass(t *testing.T) {
	t.Run("applies first matching rule per cell", func(t *testing.T) {
		table := newRewardTable(t, "100", "100")
		applier, recorder := newTestApplier(t, nil)

		enabled := []model.CorrectionRule{
			model.NewCorrectionRule("100", "100 Gold", ""),
			model.NewCorrectionRule("100", "100 Silver", ""),
		}

		result := applier.ApplyPass(table, table.VisibleCoords(), enabled, false)

		assert.Equal(t, 2, result.Stats.TotalCorrections)
		assert.Equal(t, 2, result.Stats.CorrectedRows)
		assert.Equal(t, 2, result.Stats.CorrectedCells)
		assert.Empty(t, result.Errors)

		for row := 0; row < 2; row++ {
			value, err := table.Get(row, "Reward")
			require.NoError(t, err)
			assert.Equal(t, "100 Gold", value, "lower order rule wins")
		}
		assert.Equal(t, 2, recorder.Len())
	})

	t.Run("one rule application per cell per pass", func(t *testing.T) {
		table := newRewardTable(t, "A")
		applier, _ := newTestApplier(t, nil)

		enabled := []model.CorrectionRule{
			model.NewCorrectionRule("A", "B", ""),
			model.NewCorrectionRule("B", "C", ""),
		}

		result := applier.ApplyPass(table, table.VisibleCoords(), enabled, false)

		assert.Equal(t, 1, result.Stats.TotalCorrections)
		value, err := table.Get(0, "Reward")
		require.NoError(t, err)
		assert.Equal(t, "B", value, "chained rule waits for the next pass")
	})

	t.Run("empty rule set applies nothing", func(t *testing.T) {
		table := newRewardTable(t, "100")
		applier, _ := newTestApplier(t, nil)

		result := applier.ApplyPass(table, table.VisibleCoords(), nil, false)
		assert.True(t, result.Stats.IsZero())
	})

	t.Run("only invalid skips cells not flagged invalid", func(t *testing.T) {
		table := newRewardTable(t, "100", "100")
		invalidCell := model.CellCoord{Row: 1, Column: "Reward"}

		validity := func(coord model.CellCoord) model.ValidationStatus {
			if coord == invalidCell {
				return model.StatusInvalid
			}
			return model.StatusValid
		}
		applier, _ := newTestApplier(t, validity)

		enabled := []model.CorrectionRule{model.NewCorrectionRule("100", "100 Gold", "")}
		result := applier.ApplyPass(table, table.VisibleCoords(), enabled, true)

		assert.Equal(t, 1, result.Stats.TotalCorrections)

		untouched, err := table.Get(0, "Reward")
		require.NoError(t, err)
		assert.Equal(t, "100", untouched)

		corrected, err := table.Get(1, "Reward")
		require.NoError(t, err)
		assert.Equal(t, "100 Gold", corrected)
	})

	t.Run("only invalid without a validity source fails the pass", func(t *testing.T) {
		table := newRewardTable(t, "100")
		applier, _ := newTestApplier(t, nil)

		result := applier.ApplyPass(table, table.VisibleCoords(), []model.CorrectionRule{
			model.NewCorrectionRule("100", "100 Gold", ""),
		}, true)

		require.Len(t, result.Errors, 1)
		assert.Equal(t, CategorySystem, result.Errors[0].Category)
		assert.True(t, result.Stats.IsZero())
	})

	t.Run("rejected write is recorded and the pass continues", func(t *testing.T) {
		table, err := dataset.NewTable([]dataset.Column{
			{Name: "Reward", Type: dataset.TypeString},
			{Name: "Score", Type: dataset.TypeInt},
		})
		require.NoError(t, err)
		require.NoError(t, table.AppendRow([]string{"100", "100"}))

		applier, recorder := newTestApplier(t, nil)

		// The general rule matches both cells, but the replacement is
		// not an integer so the Score column rejects it.
		enabled := []model.CorrectionRule{model.NewCorrectionRule("100", "100 Gold", "")}
		result := applier.ApplyPass(table, table.VisibleCoords(), enabled, false)

		require.Len(t, result.Errors, 1)
		assert.Equal(t, CategoryApply, result.Errors[0].Category)
		assert.Equal(t, "Score", result.Errors[0].Column)

		assert.Equal(t, 1, result.Stats.TotalCorrections)
		assert.Equal(t, 1, recorder.Len())

		score, err := table.Get(0, "Score")
		require.NoError(t, err)
		assert.Equal(t, "100", score, "failed write leaves the cell unchanged")
	})

	t.Run("applies a chosen rule to a single cell", func(t *testing.T) {
		table := newRewardTable(t, "100")
		applier, recorder := newTestApplier(t, nil)

		store := rules.NewMemoryStore()
		rule, err := store.Add(model.NewCorrectionRule("100", "100 Gold", ""))
		require.NoError(t, err)

		coord := model.CellCoord{Row: 0, Column: "Reward"}
		record, err := applier.ApplyRule(table, store, coord, rule.ID)
		require.NoError(t, err)

		assert.Equal(t, "100", record.OldValue)
		assert.Equal(t, "100 Gold", record.NewValue)
		assert.True(t, recorder.IsCorrected(coord))

		value, err := table.Get(0, "Reward")
		require.NoError(t, err)
		assert.Equal(t, "100 Gold", value)
	})

	t.Run("unknown rule id is a lookup error", func(t *testing.T) {
		table := newRewardTable(t, "100")
		applier, _ := newTestApplier(t, nil)

		coord := model.CellCoord{Row: 0, Column: "Reward"}
		_, err := applier.ApplyRule(table, rules.NewMemoryStore(), coord, uuid.New())

		require.Error(t, err)
		assert.ErrorIs(t, err, rules.ErrRuleNotFound)

		var cellErr CellError
		require.ErrorAs(t, err, &cellErr)
		assert.Equal(t, CategoryLookup, cellErr.Category)
	})

	t.Run("rejected single write is an apply error", func(t *testing.T) {
		table, err := dataset.NewTable([]dataset.Column{{Name: "Score", Type: dataset.TypeInt}})
		require.NoError(t, err)
		require.NoError(t, table.AppendRow([]string{"100"}))

		applier, _ := newTestApplier(t, nil)

		store := rules.NewMemoryStore()
		rule, err := store.Add(model.NewCorrectionRule("100", "100 Gold", ""))
		require.NoError(t, err)

		_, err = applier.ApplyRule(table, store, model.CellCoord{Row: 0, Column: "Score"}, rule.ID)

		var cellErr CellError
		require.ErrorAs(t, err, &cellErr)
		assert.Equal(t, CategoryApply, cellErr.Category)
	})

	t.Run("category rule leaves other columns alone", func(t *testing.T) {
		table, err := dataset.NewTable(dataset.StringColumns([]string{"Player", "Reward"}))
		require.NoError(t, err)
		require.NoError(t, table.AppendRow([]string{"100", "100"}))

		applier, _ := newTestApplier(t, nil)

		enabled := []model.CorrectionRule{model.NewCorrectionRule("100", "100 Gold", "Reward")}
		result := applier.ApplyPass(table, table.VisibleCoords(), enabled, false)

		assert.Equal(t, 1, result.Stats.TotalCorrections)

		player, err := table.Get(0, "Player")
		require.NoError(t, err)
		assert.Equal(t, "100", player)

		reward, err := table.Get(0, "Reward")
		require.NoError(t, err)
		assert.Equal(t, "100 Gold", reward)
	})
}
