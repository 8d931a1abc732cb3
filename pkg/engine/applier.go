// pkg/engine/applier.go
package engine

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/loggrid/corrector/pkg/dataset"
	"github.com/loggrid/corrector/pkg/history"
	"github.com/loggrid/corrector/pkg/model"
	"github.com/loggrid/corrector/pkg/rules"
)

// ValidityFunc reports the validation status of a cell. The runner
// wires this to the cell-state manager; tests substitute their own.
type ValidityFunc func(coord model.CellCoord) model.ValidationStatus

// PassResult is the outcome of one applier pass over the considered
// cells.
type PassResult struct {
	Stats   model.PassStats
	Records []model.CorrectionRecord
	Errors  []CellError
}

// Applier executes a single correction pass. Each considered cell
// receives at most one rule application per pass: the first matching
// rule in priority order. Dataset cells are mutated in place and the
// history log is extended per applied correction.
type Applier struct {
	recorder *history.Recorder
	validity ValidityFunc
	logger   *zap.Logger
}

// NewApplier creates an applier appending to the given history
// recorder. validity may be nil when only-invalid scoping is unused.
func NewApplier(recorder *history.Recorder, validity ValidityFunc, logger *zap.Logger) (*Applier, error) {
	if recorder == nil {
		return nil, errors.New("history recorder cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	return &Applier{
		recorder: recorder,
		validity: validity,
		logger:   logger.Named("applier"),
	}, nil
}

// ApplyRule applies one specific rule to one cell, the path taken when
// a caller accepts a single suggestion rather than running a pass.
// Returns the correction record on success. Failures come back as a
// CellError: Lookup when the rule id cannot be resolved, Apply when
// the cell rejects the replacement value.
func (a *Applier) ApplyRule(table *dataset.Table, store rules.Store, coord model.CellCoord, ruleID uuid.UUID) (model.CorrectionRecord, error) {
	rule, err := store.Get(ruleID)
	if err != nil {
		return model.CorrectionRecord{}, NewCellError(err, CategoryLookup).
			WithCell(coord.Row, coord.Column, "")
	}

	value, err := table.Get(coord.Row, coord.Column)
	if err != nil {
		return model.CorrectionRecord{}, NewCellError(err, CategorySystem).
			WithCell(coord.Row, coord.Column, "")
	}

	if err := table.Set(coord.Row, coord.Column, rule.ToValue); err != nil {
		return model.CorrectionRecord{}, NewCellError(err, CategoryApply).
			WithCell(coord.Row, coord.Column, value)
	}

	record := model.NewCorrectionRecord(coord, value, rule)
	a.recorder.Append(record)

	a.logger.Debug("Applied single correction",
		zap.Int("row", coord.Row),
		zap.String("column", coord.Column),
		zap.String("from", value),
		zap.String("to", rule.ToValue))

	return record, nil
}

// ApplyPass sweeps the considered cells once, applying the first
// applicable rule to each. A failure on one cell is recorded and the
// pass continues with the next cell.
func (a *Applier) ApplyPass(
	table *dataset.Table,
	coords []model.CellCoord,
	enabled []model.CorrectionRule,
	onlyInvalid bool,
) PassResult {
	var result PassResult

	if len(enabled) == 0 || len(coords) == 0 {
		return result
	}
	if onlyInvalid && a.validity == nil {
		result.Errors = append(result.Errors, NewCellError(
			errors.New("only-invalid pass requested without a validity source"),
			CategorySystem))
		return result
	}

	touchedRows := make(map[int]bool)
	touchedCells := make(map[model.CellCoord]bool)

	for _, coord := range coords {
		if onlyInvalid && a.validity(coord) != model.StatusInvalid {
			continue
		}

		value, err := table.Get(coord.Row, coord.Column)
		if err != nil {
			result.Errors = append(result.Errors,
				NewCellError(err, CategorySystem).WithCell(coord.Row, coord.Column, ""))
			continue
		}

		rule, ok := rules.FirstApplicable(value, coord.Column, enabled)
		if !ok {
			continue
		}

		if err := table.Set(coord.Row, coord.Column, rule.ToValue); err != nil {
			cellErr := NewCellError(
				fmt.Errorf("failed to apply rule: %w", err),
				CategoryApply).WithCell(coord.Row, coord.Column, value)
			result.Errors = append(result.Errors, cellErr)

			a.logger.Warn("Cell rejected correction",
				zap.Int("row", coord.Row),
				zap.String("column", coord.Column),
				zap.String("value", value),
				zap.String("replacement", rule.ToValue),
				zap.Error(err))
			continue
		}

		record := model.NewCorrectionRecord(coord, value, rule)
		a.recorder.Append(record)
		result.Records = append(result.Records, record)

		result.Stats.TotalCorrections++
		touchedRows[coord.Row] = true
		touchedCells[coord] = true

		a.logger.Debug("Applied correction",
			zap.Int("row", coord.Row),
			zap.String("column", coord.Column),
			zap.String("from", value),
			zap.String("to", rule.ToValue))
	}

	result.Stats.CorrectedRows = len(touchedRows)
	result.Stats.CorrectedCells = len(touchedCells)

	return result
}
