// pkg/state/manager.go
package state

import (
	"sync"

	"go.uber.org/zap"

	"github.com/loggrid/corrector/pkg/model"
)

// Sink receives bulk per-cell state updates, keyed by coordinate. The
// renderer side of the application implements this; updates may arrive
// from the run goroutine, so implementations marshal to their own
// execution context as needed.
type Sink interface {
	ApplyCellStates(states map[model.CellCoord]*model.CellFullState)
}

// Manager owns the authoritative CellFullState for every observed
// cell. It reconciles two independently computed classifications:
// validation outcomes and correction availability. Neither update
// path may destroy the facts recorded by the other.
type Manager struct {
	mu     sync.RWMutex
	cells  map[model.CellCoord]*model.CellFullState
	sink   Sink
	logger *zap.Logger
}

// NewManager creates a state manager pushing updates to the given
// sink. A nil sink is allowed; states are then only queryable.
func NewManager(sink Sink, logger *zap.Logger) *Manager {
	return &Manager{
		cells:  make(map[model.CellCoord]*model.CellFullState),
		sink:   sink,
		logger: logger.Named("cell-state"),
	}
}

// Get returns a copy of the state for a cell, defaulting to an empty
// normal state for cells never observed.
func (m *Manager) Get(coord model.CellCoord) *model.CellFullState {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if existing, ok := m.cells[coord]; ok {
		return existing.Clone()
	}
	return model.NewCellFullState()
}

// ValidationOutcome is one validation fact for a cell.
type ValidationOutcome struct {
	Status       model.ValidationStatus
	ErrorDetails string
}

// ApplyValidation records validation outcomes. Correction suggestions
// already attached to a cell are preserved.
func (m *Manager) ApplyValidation(outcomes map[model.CellCoord]ValidationOutcome) {
	if len(outcomes) == 0 {
		return
	}

	updated := make(map[model.CellCoord]*model.CellFullState, len(outcomes))

	m.mu.Lock()
	for coord, outcome := range outcomes {
		existing, ok := m.cells[coord]
		if !ok {
			existing = model.NewCellFullState()
		}
		next := existing.MergeValidation(outcome.Status, outcome.ErrorDetails)
		m.cells[coord] = next
		updated[coord] = next.Clone()
	}
	m.mu.Unlock()

	m.logger.Debug("Applied validation outcomes", zap.Int("cells", len(updated)))
	m.push(updated)
}

// MergeCorrectionAvailability reconciles correction suggestions into
// the per-cell states. For each entry the cell becomes Correctable and
// carries the suggestions; any recorded ErrorDetails is kept
// unchanged. Cells with an empty suggestion list are skipped: this
// pass never removes correctability, a caller refreshes it by
// re-running the full scan. Merging the same input twice yields the
// same states.
func (m *Manager) MergeCorrectionAvailability(suggestions map[model.CellCoord][]model.CorrectionSuggestion) map[model.CellCoord]*model.CellFullState {
	updated := make(map[model.CellCoord]*model.CellFullState, len(suggestions))

	m.mu.Lock()
	for coord, cellSuggestions := range suggestions {
		if len(cellSuggestions) == 0 {
			continue
		}

		existing, ok := m.cells[coord]
		if !ok {
			existing = model.NewCellFullState()
		}
		next := existing.MergeSuggestions(cellSuggestions)
		m.cells[coord] = next
		updated[coord] = next.Clone()
	}
	m.mu.Unlock()

	m.logger.Debug("Merged correction availability", zap.Int("cells", len(updated)))
	m.push(updated)
	return updated
}

// States returns a copy of every tracked cell state.
func (m *Manager) States() map[model.CellCoord]*model.CellFullState {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[model.CellCoord]*model.CellFullState, len(m.cells))
	for coord, cellState := range m.cells {
		out[coord] = cellState.Clone()
	}
	return out
}

// push forwards a bulk update to the sink, when one is attached
func (m *Manager) push(updated map[model.CellCoord]*model.CellFullState) {
	if m.sink == nil || len(updated) == 0 {
		return
	}
	m.sink.ApplyCellStates(updated)
}
