// pkg/model/state_test.go
package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationStatusString(t *testing.T) {
	assert.Equal(t, "Normal", StatusNormal.String())
	assert.Equal(t, "Valid", StatusValid.String())
	assert.Equal(t, "Invalid", StatusInvalid.String())
	assert.Equal(t, "Correctable", StatusCorrectable.String())
	assert.Equal(t, "Unknown(42)", ValidationStatus(42).String())
}

func TestCellCoordString(t *testing.T) {
	coord := CellCoord{Row: 3, Column: "Reward"}
	assert.Equal(t, "3/Reward", coord.String())
}

func TestCellFullStateClone(t *testing.T) {
	original := &CellFullState{
		Status:       StatusInvalid,
		ErrorDetails: "bad value",
		Suggestions: []CorrectionSuggestion{
			{CorrectedValue: "100 Gold"},
		},
	}

	clone := original.Clone()
	require.Equal(t, original, clone)

	// Mutating the clone must not leak back into the original.
	clone.Suggestions[0].CorrectedValue = "changed"
	assert.Equal(t, "100 Gold", original.Suggestions[0].CorrectedValue)
}

func TestCellFullStateMergeSuggestions(t *testing.T) {
	t.Run("preserves validation details", func(t *testing.T) {
		invalid := NewCellFullState().MergeValidation(StatusInvalid, "value not allowed")

		merged := invalid.MergeSuggestions([]CorrectionSuggestion{
			{CorrectedValue: "100 Gold"},
		})

		assert.Equal(t, StatusCorrectable, merged.Status)
		assert.Equal(t, "value not allowed", merged.ErrorDetails)
		assert.True(t, merged.IsCorrectable())
		assert.Equal(t, StatusInvalid, merged.Validation, "the validation outcome is kept alongside the display status")
		assert.True(t, merged.IsInvalid())
	})

	t.Run("is idempotent", func(t *testing.T) {
		suggestions := []CorrectionSuggestion{{CorrectedValue: "100 Gold"}}

		once := NewCellFullState().MergeSuggestions(suggestions)
		twice := once.MergeSuggestions(suggestions)

		assert.Equal(t, once, twice)
	})
}

func TestCellFullStateMergeValidation(t *testing.T) {
	correctable := NewCellFullState().MergeSuggestions([]CorrectionSuggestion{
		{CorrectedValue: "100 Gold"},
	})

	validated := correctable.MergeValidation(StatusInvalid, "value not allowed")

	assert.Equal(t, StatusInvalid, validated.Status)
	assert.Equal(t, StatusInvalid, validated.Validation)
	assert.Equal(t, "value not allowed", validated.ErrorDetails)
	assert.True(t, validated.IsCorrectable(), "suggestions must survive validation updates")
}
