// pkg/model/state.go
package model

import (
	"fmt"

	"github.com/google/uuid"
)

// ValidationStatus classifies a cell for display purposes.
type ValidationStatus int

const (
	// StatusNormal means the cell has not been classified yet
	StatusNormal ValidationStatus = iota
	// StatusValid means validation accepted the cell value
	StatusValid
	// StatusInvalid means validation rejected the cell value
	StatusInvalid
	// StatusCorrectable means at least one enabled rule matches the cell
	StatusCorrectable
)

// String returns a string representation of the validation status
func (s ValidationStatus) String() string {
	switch s {
	case StatusNormal:
		return "Normal"
	case StatusValid:
		return "Valid"
	case StatusInvalid:
		return "Invalid"
	case StatusCorrectable:
		return "Correctable"
	default:
		return fmt.Sprintf("Unknown(%d)", s)
	}
}

// CellCoord addresses one cell by row index and column name.
type CellCoord struct {
	Row    int
	Column string
}

// String returns the coordinate in "row/column" form.
func (c CellCoord) String() string {
	return fmt.Sprintf("%d/%s", c.Row, c.Column)
}

// CorrectionSuggestion is one candidate correction for a cell.
type CorrectionSuggestion struct {
	CorrectedValue string
	RuleID         uuid.UUID
	Description    string
}

// CellFullState is the merged validation + correction classification of
// one cell. Validation facts (Validation, ErrorDetails) and correction
// facts (Suggestions) are orthogonal: a correction update must never
// erase previously recorded validation information, so a cell can be
// invalid and correctable at the same time. Status is the display
// classification derived from both merges; Validation holds the raw
// validation outcome and survives correction-availability updates.
type CellFullState struct {
	Status       ValidationStatus
	Validation   ValidationStatus
	ErrorDetails string
	Suggestions  []CorrectionSuggestion
}

// NewCellFullState returns the default state for a cell that has not
// been classified yet.
func NewCellFullState() *CellFullState {
	return &CellFullState{Status: StatusNormal, Validation: StatusNormal}
}

// Clone returns a deep copy of the state.
func (s *CellFullState) Clone() *CellFullState {
	out := &CellFullState{
		Status:       s.Status,
		Validation:   s.Validation,
		ErrorDetails: s.ErrorDetails,
	}
	if len(s.Suggestions) > 0 {
		out.Suggestions = make([]CorrectionSuggestion, len(s.Suggestions))
		copy(out.Suggestions, s.Suggestions)
	}
	return out
}

// MergeSuggestions returns a copy of the state marked correctable with
// the given suggestions. The recorded validation outcome and
// ErrorDetails are carried over unchanged.
func (s *CellFullState) MergeSuggestions(suggestions []CorrectionSuggestion) *CellFullState {
	out := s.Clone()
	out.Status = StatusCorrectable
	out.Suggestions = make([]CorrectionSuggestion, len(suggestions))
	copy(out.Suggestions, suggestions)
	return out
}

// MergeValidation returns a copy of the state updated with a validation
// outcome. Correction suggestions already attached are kept.
func (s *CellFullState) MergeValidation(status ValidationStatus, details string) *CellFullState {
	out := s.Clone()
	out.Status = status
	out.Validation = status
	out.ErrorDetails = details
	return out
}

// IsCorrectable reports whether the cell currently has suggestions.
func (s *CellFullState) IsCorrectable() bool {
	return len(s.Suggestions) > 0
}

// IsInvalid reports whether validation rejected the cell, regardless
// of any correction availability merged in since.
func (s *CellFullState) IsInvalid() bool {
	return s.Validation == StatusInvalid
}
