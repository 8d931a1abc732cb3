// pkg/rules/store_test.go
package rules

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loggrid/corrector/pkg/model"
)

func seedStore(t *testing.T) (*MemoryStore, []model.CorrectionRule) {
	t.Helper()

	store := NewMemoryStore()
	seeds := []model.CorrectionRule{
		model.NewCorrectionRule("100", "100 Gold", "Reward"),
		model.NewCorrectionRule("Sliver", "Silver", ""),
		model.NewCorrectionRule("hp", "HP", "Stat"),
	}

	added := make([]model.CorrectionRule, 0, len(seeds))
	for _, rule := range seeds {
		stored, err := store.Add(rule)
		require.NoError(t, err)
		added = append(added, stored)
	}
	return store, added
}

func TestMemoryStoreAdd(t *testing.T) {
	store, added := seedStore(t)

	assert.Equal(t, 3, store.Len())
	for i, rule := range added {
		assert.Equal(t, i, rule.Order)
	}
}

func TestMemoryStoreList(t *testing.T) {
	store, _ := seedStore(t)

	t.Run("empty filter returns all in order", func(t *testing.T) {
		listed, err := store.List(Filter{})
		require.NoError(t, err)
		require.Len(t, listed, 3)
		assert.Equal(t, "100", listed[0].FromValue)
		assert.Equal(t, "hp", listed[2].FromValue)
	})

	t.Run("category filter", func(t *testing.T) {
		listed, err := store.List(Filter{Category: "Reward"})
		require.NoError(t, err)
		require.Len(t, listed, 1)
		assert.Equal(t, "100", listed[0].FromValue)
	})

	t.Run("enabled filter", func(t *testing.T) {
		listed, err := store.List(EnabledOnly())
		require.NoError(t, err)
		assert.Len(t, listed, 3)
	})

	t.Run("search filter", func(t *testing.T) {
		listed, err := store.List(Filter{Search: "silver"})
		require.NoError(t, err)
		require.Len(t, listed, 1)
		assert.Equal(t, "Sliver", listed[0].FromValue)
	})
}

func TestMemoryStoreGet(t *testing.T) {
	store, added := seedStore(t)

	rule, err := store.Get(added[1].ID)
	require.NoError(t, err)
	assert.Equal(t, "Sliver", rule.FromValue)

	_, err = store.Get(uuid.New())
	assert.ErrorIs(t, err, ErrRuleNotFound)
}

func TestMemoryStoreUpdate(t *testing.T) {
	store, added := seedStore(t)

	changed := added[0]
	changed.ToValue = "100 Gold Coins"
	changed.Enabled = false
	changed.Order = 99 // Stores ignore caller-supplied order.
	require.NoError(t, store.Update(changed))

	got, err := store.Get(changed.ID)
	require.NoError(t, err)
	assert.Equal(t, "100 Gold Coins", got.ToValue)
	assert.False(t, got.Enabled)
	assert.Equal(t, 0, got.Order)

	missing := model.NewCorrectionRule("x", "y", "")
	assert.ErrorIs(t, store.Update(missing), ErrRuleNotFound)
}

func TestMemoryStoreDelete(t *testing.T) {
	store, added := seedStore(t)

	require.NoError(t, store.Delete(added[0].ID))

	listed, err := store.List(Filter{})
	require.NoError(t, err)
	require.Len(t, listed, 2)

	// Remaining rules are renumbered densely.
	assert.Equal(t, 0, listed[0].Order)
	assert.Equal(t, 1, listed[1].Order)

	assert.ErrorIs(t, store.Delete(added[0].ID), ErrRuleNotFound)
}

func TestMemoryStoreReorder(t *testing.T) {
	store, added := seedStore(t)

	t.Run("moves rule to front", func(t *testing.T) {
		require.NoError(t, store.Reorder(added[2].ID, 0))

		listed, err := store.List(Filter{})
		require.NoError(t, err)
		assert.Equal(t, "hp", listed[0].FromValue)
		assert.Equal(t, 0, listed[0].Order)
		assert.Equal(t, "100", listed[1].FromValue)
	})

	t.Run("clamps positions beyond the end", func(t *testing.T) {
		require.NoError(t, store.Reorder(added[2].ID, 500))

		listed, err := store.List(Filter{})
		require.NoError(t, err)
		assert.Equal(t, "hp", listed[2].FromValue)
		assert.Equal(t, 2, listed[2].Order)
	})

	t.Run("unknown rule", func(t *testing.T) {
		assert.ErrorIs(t, store.Reorder(uuid.New(), 0), ErrRuleNotFound)
	})
}
