// pkg/engine/runner.go
package engine

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/loggrid/corrector/pkg/dataset"
	"github.com/loggrid/corrector/pkg/model"
	"github.com/loggrid/corrector/pkg/rules"
)

// MaxIterations bounds the convergence loop. Rule sets are not
// guaranteed acyclic (a rule turning "A" into "B" can coexist with
// "B" into "A"), so termination must not depend on rule authoring
// discipline.
const MaxIterations = 10

// RunOptions configure one correction run.
type RunOptions struct {
	// OnlyInvalid restricts corrections to cells currently flagged
	// invalid by validation.
	OnlyInvalid bool

	// Recursive repeats passes until convergence; false performs
	// exactly one pass.
	Recursive bool

	// SelectedOnly restricts the run to the Selection coordinate set.
	SelectedOnly bool
	Selection    []model.CellCoord
}

// ProgressFunc receives percentage progress updates during a run.
type ProgressFunc func(percent int)

// Runner drives the applier to a fixpoint over a dataset. One Runner
// serves one dataset; a run executes on the calling goroutine, the
// Task wrapper moves it off the interactive path.
type Runner struct {
	table   *dataset.Table
	store   rules.Store
	applier *Applier
	metrics *RunMetrics
	logger  *zap.Logger
}

// NewRunner creates a runner for one dataset and rule store.
func NewRunner(table *dataset.Table, store rules.Store, applier *Applier, logger *zap.Logger) (*Runner, error) {
	if table == nil {
		return nil, errors.New("dataset table cannot be nil")
	}
	if store == nil {
		return nil, errors.New("rule store cannot be nil")
	}
	if applier == nil {
		return nil, errors.New("applier cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	return &Runner{
		table:   table,
		store:   store,
		applier: applier,
		metrics: NewRunMetrics(logger),
		logger:  logger.Named("runner"),
	}, nil
}

// Metrics returns the run metrics collector.
func (r *Runner) Metrics() *RunMetrics {
	return r.metrics
}

// Table returns the dataset this runner operates on.
func (r *Runner) Table() *dataset.Table {
	return r.table
}

// Run executes a bounded fixpoint iteration of correction passes.
//
// The loop stops when a pass applies nothing, when the run is
// non-recursive, when the dataset fingerprint stops changing, or at
// MaxIterations. Hitting the cap is not an error: the returned stats
// carry Iterations == MaxIterations.
//
// Cancellation is cooperative and checked between passes. On every
// exit path, including failure and cancellation, an acquired
// selection scope is released so full dataset visibility is restored.
func (r *Runner) Run(ctx context.Context, opts RunOptions, progress ProgressFunc) (*model.CorrectionStats, error) {
	if progress == nil {
		progress = func(int) {}
	}

	if opts.SelectedOnly {
		scope, err := r.table.AcquireScope(opts.Selection)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrRunAborted, err)
		}
		defer scope.Release()
	}

	r.logger.Info("Starting correction run",
		zap.Bool("onlyInvalid", opts.OnlyInvalid),
		zap.Bool("recursive", opts.Recursive),
		zap.Bool("selectedOnly", opts.SelectedOnly),
		zap.Int("rows", r.table.RowCount()))

	stats := model.NewCorrectionStats()
	iterations := 0
	fingerprint := r.table.Fingerprint()

	for pass := 0; pass < MaxIterations; pass++ {
		// A stop request lands between passes, never mid-pass.
		if ctx.Err() != nil {
			r.logger.Warn("Run stopped between passes", zap.Int("pass", pass))
			break
		}

		// Each pass reads a fresh snapshot of the enabled rules.
		enabled, err := r.store.List(rules.EnabledOnly())
		if err != nil {
			return nil, fmt.Errorf("%w: failed to read rules: %v", ErrRunAborted, err)
		}

		result := r.applier.ApplyPass(r.table, r.table.VisibleCoords(), enabled, opts.OnlyInvalid)
		r.metrics.RecordPass(pass, result)

		stats.MergePass(result.Stats)
		progress(min(90, 90*(pass+1)/MaxIterations))

		if result.Stats.IsZero() {
			r.logger.Debug("Pass applied nothing, run converged", zap.Int("pass", pass))
			break
		}
		// Iterations counts the passes that changed something; the
		// trailing zero pass that proves convergence is not one of them.
		iterations++

		if !opts.Recursive {
			break
		}

		// A rule set can report corrections without changing the
		// observable content, or oscillate with no net effect. The
		// fingerprint check catches both.
		next := r.table.Fingerprint()
		if next == fingerprint {
			r.logger.Debug("Dataset content unchanged, stopping", zap.Int("pass", pass))
			break
		}
		fingerprint = next
	}

	progress(100)
	stats.Complete(iterations)

	r.logger.Info("Correction run finished",
		zap.Int("totalCorrections", stats.TotalCorrections),
		zap.Int("correctedRows", stats.CorrectedRows),
		zap.Int("correctedCells", stats.CorrectedCells),
		zap.Int("iterations", stats.Iterations),
		zap.Duration("duration", stats.Duration))

	return stats, nil
}
