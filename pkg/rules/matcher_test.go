// pkg/rules/matcher_test.go
package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loggrid/corrector/pkg/model"
)

func matcherRules() []model.CorrectionRule {
	first := model.NewCorrectionRule("100", "100 Gold", "")
	second := model.NewCorrectionRule("100", "100 Silver", "Reward")
	disabled := model.NewCorrectionRule("100", "100 Copper", "")
	disabled.Enabled = false
	return []model.CorrectionRule{first, second, disabled}
}

func TestApplicableRules(t *testing.T) {
	enabled := matcherRules()

	t.Run("returns matches in priority order", func(t *testing.T) {
		matched := ApplicableRules("100", "Reward", enabled)
		require.Len(t, matched, 2)
		assert.Equal(t, "100 Gold", matched[0].ToValue)
		assert.Equal(t, "100 Silver", matched[1].ToValue)
	})

	t.Run("category restricts column", func(t *testing.T) {
		matched := ApplicableRules("100", "Score", enabled)
		require.Len(t, matched, 1)
		assert.Equal(t, "100 Gold", matched[0].ToValue)
	})

	t.Run("no match returns empty", func(t *testing.T) {
		assert.Empty(t, ApplicableRules("999", "Reward", enabled))
	})
}

func TestFirstApplicable(t *testing.T) {
	enabled := matcherRules()

	rule, ok := FirstApplicable("100", "Reward", enabled)
	require.True(t, ok)
	assert.Equal(t, "100 Gold", rule.ToValue)

	_, ok = FirstApplicable("999", "Reward", enabled)
	assert.False(t, ok)
}

func TestSuggestions(t *testing.T) {
	enabled := matcherRules()

	suggestions := Suggestions("100", "Reward", enabled)
	require.Len(t, suggestions, 2)
	assert.Equal(t, "100 Gold", suggestions[0].CorrectedValue)
	assert.Equal(t, enabled[0].ID, suggestions[0].RuleID)
	assert.NotEmpty(t, suggestions[0].Description)

	assert.Nil(t, Suggestions("999", "Reward", enabled))
}
