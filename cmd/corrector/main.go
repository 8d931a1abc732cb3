// cmd/corrector/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"github.com/loggrid/corrector/pkg/config"
	"github.com/loggrid/corrector/pkg/connector"
	"github.com/loggrid/corrector/pkg/dataset"
	"github.com/loggrid/corrector/pkg/engine"
	"github.com/loggrid/corrector/pkg/history"
	"github.com/loggrid/corrector/pkg/model"
	"github.com/loggrid/corrector/pkg/rules"
	"github.com/loggrid/corrector/pkg/state"
)

func main() {
	var (
		dataPath        = flag.String("data", "", "path to the game log CSV to correct")
		sourceQuery     = flag.String("source-query", "", "Snowflake query to load the dataset from instead of a CSV")
		rulesPath       = flag.String("rules", "", "path to the correction rules file")
		rulesFromDB     = flag.Bool("rules-db", false, "load correction rules from Postgres instead of a file")
		validationPath  = flag.String("validation", "", "path to a validation value list (optional)")
		validateColumns = flag.String("validate-columns", "", "comma-separated columns to validate against the list")
		onlyInvalid     = flag.Bool("only-invalid", false, "correct only cells that failed validation")
		once            = flag.Bool("once", false, "run a single pass instead of iterating to convergence")
		outPath         = flag.String("out", "", "path to write the corrected CSV (optional)")
		persistHistory  = flag.Bool("persist-history", false, "record applied corrections in Postgres")
		report          = flag.Bool("report", false, "print the run metrics report")
	)
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := cfg.Logger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger, runFlags{
		dataPath:        *dataPath,
		sourceQuery:     *sourceQuery,
		rulesPath:       *rulesPath,
		rulesFromDB:     *rulesFromDB,
		validationPath:  *validationPath,
		validateColumns: *validateColumns,
		onlyInvalid:     *onlyInvalid,
		once:            *once,
		outPath:         *outPath,
		persistHistory:  *persistHistory,
		report:          *report,
	}); err != nil {
		logger.Error("Run failed", zap.Error(err))
		os.Exit(1)
	}
}

type runFlags struct {
	dataPath        string
	sourceQuery     string
	rulesPath       string
	rulesFromDB     bool
	validationPath  string
	validateColumns string
	onlyInvalid     bool
	once            bool
	outPath         string
	persistHistory  bool
	report          bool
}

func run(cfg *config.Config, logger *zap.Logger, flags runFlags) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	factory := connector.NewFactory(cfg, logger)

	table, err := loadTable(ctx, cfg, factory, flags)
	if err != nil {
		return err
	}
	logger.Info("Loaded dataset",
		zap.Int("rows", table.RowCount()),
		zap.Int("columns", table.ColumnCount()))

	store, cleanup, err := loadRuleStore(ctx, factory, flags, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	recorder := history.NewRecorder()
	states := state.NewManager(state.NewLoggingSink(logger), logger)

	if flags.validationPath != "" {
		if err := validate(table, states, cfg, flags); err != nil {
			return err
		}
	}

	// The validation outcome, not the merged display status: a cell
	// flagged invalid stays eligible after the reconciler marks it
	// correctable.
	validity := func(coord model.CellCoord) model.ValidationStatus {
		return states.Get(coord).Validation
	}

	applier, err := engine.NewApplier(recorder, validity, logger)
	if err != nil {
		return err
	}
	runner, err := engine.NewRunner(table, store, applier, logger)
	if err != nil {
		return err
	}

	scanner, err := engine.NewScanner(store, states, logger)
	if err != nil {
		return err
	}

	stats, err := executeRun(ctx, runner, engine.RunOptions{
		OnlyInvalid: flags.onlyInvalid || cfg.Engine.OnlyInvalid,
		Recursive:   !flags.once && cfg.Engine.Recursive,
	}, logger)
	if err != nil {
		return err
	}

	// Push post-run cell-state deltas to the reconciler and count what
	// the enabled rules could still correct.
	if _, err := scanner.Refresh(table); err != nil {
		return err
	}
	remaining, err := scanner.RemainingCorrectable(table)
	if err != nil {
		return err
	}

	fmt.Printf("corrected %d cells in %d rows (%d corrections, %d passes, %s)\n",
		stats.CorrectedCells, stats.CorrectedRows,
		stats.TotalCorrections, stats.Iterations, stats.Duration)
	fmt.Printf("%d correctable cells remaining\n", remaining)

	if flags.report {
		fmt.Println(runner.Metrics().Report())
	}

	if flags.outPath != "" {
		if err := table.SaveCSV(flags.outPath); err != nil {
			return fmt.Errorf("failed to write corrected dataset: %w", err)
		}
		logger.Info("Wrote corrected dataset", zap.String("path", flags.outPath))
	}

	if flags.persistHistory && recorder.Len() > 0 {
		if err := persistHistory(ctx, factory, recorder, logger); err != nil {
			return err
		}
	}

	return nil
}

// loadTable materializes the dataset from either a CSV file or a
// Snowflake query.
func loadTable(ctx context.Context, cfg *config.Config, factory *connector.Factory, flags runFlags) (*dataset.Table, error) {
	switch {
	case flags.dataPath != "" && flags.sourceQuery != "":
		return nil, fmt.Errorf("-data and -source-query are mutually exclusive")

	case flags.dataPath != "":
		table, err := dataset.LoadCSV(flags.dataPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load dataset: %w", err)
		}
		return table, nil

	case flags.sourceQuery != "":
		conn, err := factory.CreateSnowflakeConnector(ctx)
		if err != nil {
			return nil, err
		}
		defer conn.Close()
		return dataset.LoadFromSQL(ctx, conn, flags.sourceQuery, cfg.Engine.QueryTimeout)

	default:
		return nil, fmt.Errorf("either -data or -source-query is required")
	}
}

func loadRuleStore(ctx context.Context, factory *connector.Factory, flags runFlags, logger *zap.Logger) (rules.Store, func(), error) {
	noop := func() {}

	if flags.rulesFromDB {
		conn, err := factory.CreatePostgresConnector(ctx)
		if err != nil {
			return nil, noop, err
		}
		store, err := rules.NewSQLStore(conn, logger)
		if err != nil {
			conn.Close()
			return nil, noop, err
		}
		return store, func() { conn.Close() }, nil
	}

	if flags.rulesPath == "" {
		return nil, noop, fmt.Errorf("either -rules or -rules-db is required")
	}

	store, err := rules.LoadRulesFile(flags.rulesPath)
	if err != nil {
		return nil, noop, fmt.Errorf("failed to load rules: %w", err)
	}
	return store, noop, nil
}

func validate(table *dataset.Table, states *state.Manager, cfg *config.Config, flags runFlags) error {
	list, err := state.LoadValidationList(flags.validationPath, cfg.Engine.CaseSensitiveValidation)
	if err != nil {
		return fmt.Errorf("failed to load validation list: %w", err)
	}

	columns := table.ColumnNames()
	if flags.validateColumns != "" {
		columns = nil
		for _, name := range strings.Split(flags.validateColumns, ",") {
			if trimmed := strings.TrimSpace(name); trimmed != "" {
				columns = append(columns, trimmed)
			}
		}
	}

	outcomes, err := state.ValidateColumns(table, list, columns...)
	if err != nil {
		return err
	}
	states.ApplyValidation(outcomes)
	return nil
}

// executeRun starts the correction task and consumes its events until
// the terminal one arrives.
func executeRun(ctx context.Context, runner *engine.Runner, opts engine.RunOptions, logger *zap.Logger) (*model.CorrectionStats, error) {
	coordinator := engine.NewCoordinator(logger)
	task, err := coordinator.Start(ctx, runner, opts)
	if err != nil {
		return nil, err
	}

	var stats *model.CorrectionStats
	for event := range task.Events() {
		switch event.Kind {
		case engine.EventProgress:
			logger.Debug("Progress", zap.Int("percent", event.Progress))
		case engine.EventCompleted:
			stats = event.Stats
		case engine.EventFailed:
			return nil, event.Err
		}
	}

	if stats == nil {
		return nil, fmt.Errorf("task finished without a result")
	}
	return stats, nil
}

func persistHistory(ctx context.Context, factory *connector.Factory, recorder *history.Recorder, logger *zap.Logger) error {
	conn, err := factory.CreatePostgresConnector(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	store, err := history.NewSQLStore(conn, logger)
	if err != nil {
		return err
	}
	if err := store.Persist(recorder.All()); err != nil {
		return fmt.Errorf("failed to persist correction history: %w", err)
	}

	logger.Info("Persisted correction history", zap.Int("records", recorder.Len()))
	return nil
}
