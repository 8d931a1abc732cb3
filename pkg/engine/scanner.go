// pkg/engine/scanner.go
package engine

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/loggrid/corrector/pkg/dataset"
	"github.com/loggrid/corrector/pkg/model"
	"github.com/loggrid/corrector/pkg/rules"
	"github.com/loggrid/corrector/pkg/state"
)

// Scanner sweeps a dataset against the enabled rules without changing
// any cell. It produces the correction availability view that the
// state manager reconciles into per-cell states, and answers how much
// correctable work remains after a run.
type Scanner struct {
	store  rules.Store
	states *state.Manager
	logger *zap.Logger
}

// NewScanner creates a scanner backed by a rule store. The state
// manager is optional; without one the scanner only reports.
func NewScanner(store rules.Store, states *state.Manager, logger *zap.Logger) (*Scanner, error) {
	if store == nil {
		return nil, errors.New("rule store cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	return &Scanner{
		store:  store,
		states: states,
		logger: logger.Named("scanner"),
	}, nil
}

// Suggestions computes the applicable corrections for every visible
// cell. Cells with no matching rule are absent from the result.
func (s *Scanner) Suggestions(table *dataset.Table) (map[model.CellCoord][]model.CorrectionSuggestion, error) {
	if table == nil || table.IsEmpty() {
		return map[model.CellCoord][]model.CorrectionSuggestion{}, nil
	}

	enabled, err := s.store.List(rules.EnabledOnly())
	if err != nil {
		return nil, fmt.Errorf("failed to read rules: %w", err)
	}

	out := make(map[model.CellCoord][]model.CorrectionSuggestion)
	for _, coord := range table.VisibleCoords() {
		value, err := table.Get(coord.Row, coord.Column)
		if err != nil {
			s.logger.Warn("Skipping unreadable cell",
				zap.Int("row", coord.Row),
				zap.String("column", coord.Column),
				zap.Error(err))
			continue
		}

		suggestions := rules.Suggestions(value, coord.Column, enabled)
		if len(suggestions) > 0 {
			out[coord] = suggestions
		}
	}

	s.logger.Debug("Scanned dataset for corrections",
		zap.Int("correctableCells", len(out)))

	return out, nil
}

// Refresh recomputes suggestions for the dataset and merges them into
// the state manager. Returns the updated cell states.
func (s *Scanner) Refresh(table *dataset.Table) (map[model.CellCoord]*model.CellFullState, error) {
	suggestions, err := s.Suggestions(table)
	if err != nil {
		return nil, err
	}
	if s.states == nil {
		return map[model.CellCoord]*model.CellFullState{}, nil
	}
	return s.states.MergeCorrectionAvailability(suggestions), nil
}

// RemainingCorrectable counts the visible cells that still have at
// least one applicable rule. After a converged recursive run this is
// zero unless the rule set cycles.
func (s *Scanner) RemainingCorrectable(table *dataset.Table) (int, error) {
	suggestions, err := s.Suggestions(table)
	if err != nil {
		return 0, err
	}
	return len(suggestions), nil
}
