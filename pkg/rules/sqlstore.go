// pkg/rules/sqlstore.go
package rules

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/loggrid/corrector/pkg/connector"
	"github.com/loggrid/corrector/pkg/model"
)

// SQLStore persists correction rules in PostgreSQL. It implements the
// same Store contract as MemoryStore; the engine does not care which
// one it is handed.
type SQLStore struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// ruleRow is the database shape of a rule
type ruleRow struct {
	ID        string `db:"id"`
	FromValue string `db:"from_value"`
	ToValue   string `db:"to_value"`
	Category  string `db:"category"`
	Enabled   bool   `db:"enabled"`
	RuleOrder int    `db:"rule_order"`
}

// NewSQLStore creates a rule store backed by PostgreSQL and ensures
// the rules table exists.
func NewSQLStore(conn connector.DatabaseConnector, logger *zap.Logger) (*SQLStore, error) {
	if conn == nil {
		return nil, errors.New("database connector cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	store := &SQLStore{
		db:     sqlx.NewDb(conn.DB(), "pgx"),
		logger: logger.Named("rule-store"),
	}

	if err := store.setupRulesTable(); err != nil {
		return nil, fmt.Errorf("failed to setup rules table: %w", err)
	}

	return store, nil
}

// setupRulesTable ensures the correction_rules table exists
func (s *SQLStore) setupRulesTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	createTableSQL := `
		CREATE TABLE IF NOT EXISTS public.correction_rules (
			id UUID PRIMARY KEY,
			from_value TEXT NOT NULL,
			to_value TEXT NOT NULL,
			category TEXT NOT NULL DEFAULT '',
			enabled BOOLEAN NOT NULL DEFAULT TRUE,
			rule_order INTEGER NOT NULL
		)
	`
	if _, err := s.db.ExecContext(ctx, createTableSQL); err != nil {
		return fmt.Errorf("failed to create rules table: %w", err)
	}

	s.logger.Info("Ensured correction_rules table exists")
	return nil
}

// List returns rules passing the filter, in priority order.
func (s *SQLStore) List(filter Filter) ([]model.CorrectionRule, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var stored []ruleRow
	err := s.db.SelectContext(ctx, &stored,
		`SELECT id, from_value, to_value, category, enabled, rule_order
		 FROM public.correction_rules ORDER BY rule_order`)
	if err != nil {
		return nil, fmt.Errorf("failed to list rules: %w", err)
	}

	out := make([]model.CorrectionRule, 0, len(stored))
	for _, row := range stored {
		rule, err := row.toModel()
		if err != nil {
			return nil, err
		}
		// Filtering stays in one place rather than being duplicated
		// in SQL; rule sets are small.
		if filter.Matches(rule) {
			out = append(out, rule)
		}
	}
	return out, nil
}

// Get retrieves one rule by ID.
func (s *SQLStore) Get(id uuid.UUID) (model.CorrectionRule, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var row ruleRow
	err := s.db.GetContext(ctx, &row,
		`SELECT id, from_value, to_value, category, enabled, rule_order
		 FROM public.correction_rules WHERE id = $1`, id.String())
	if errors.Is(err, sql.ErrNoRows) {
		return model.CorrectionRule{}, fmt.Errorf("%w: %s", ErrRuleNotFound, id)
	}
	if err != nil {
		return model.CorrectionRule{}, fmt.Errorf("failed to get rule: %w", err)
	}

	return row.toModel()
}

// Add appends a rule at the end of the priority order.
func (s *SQLStore) Add(rule model.CorrectionRule) (model.CorrectionRule, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := s.db.GetContext(ctx, &rule.Order,
		`SELECT COALESCE(MAX(rule_order) + 1, 0) FROM public.correction_rules`)
	if err != nil {
		return model.CorrectionRule{}, fmt.Errorf("failed to assign rule order: %w", err)
	}

	_, err = s.db.NamedExecContext(ctx,
		`INSERT INTO public.correction_rules (id, from_value, to_value, category, enabled, rule_order)
		 VALUES (:id, :from_value, :to_value, :category, :enabled, :rule_order)`,
		fromModel(rule))
	if err != nil {
		return model.CorrectionRule{}, fmt.Errorf("failed to insert rule: %w", err)
	}

	s.logger.Debug("Added rule", zap.String("id", rule.ID.String()), zap.Int("order", rule.Order))
	return rule, nil
}

// Update replaces the rule with the same ID, keeping its order.
func (s *SQLStore) Update(rule model.CorrectionRule) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := s.db.ExecContext(ctx,
		`UPDATE public.correction_rules
		 SET from_value = $2, to_value = $3, category = $4, enabled = $5
		 WHERE id = $1`,
		rule.ID.String(), rule.FromValue, rule.ToValue, rule.Category, rule.Enabled)
	if err != nil {
		return fmt.Errorf("failed to update rule: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrRuleNotFound, rule.ID)
	}
	return nil
}

// Delete removes a rule and renumbers the remaining order densely.
func (s *SQLStore) Delete(id uuid.UUID) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`DELETE FROM public.correction_rules WHERE id = $1`, id.String())
	if err != nil {
		return fmt.Errorf("failed to delete rule: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrRuleNotFound, id)
	}

	if err := renumberTx(ctx, tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit delete: %w", err)
	}
	return nil
}

// Reorder moves a rule to a new position in the priority order.
func (s *SQLStore) Reorder(id uuid.UUID, newOrder int) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var ids []string
	if err := tx.SelectContext(ctx, &ids,
		`SELECT id FROM public.correction_rules ORDER BY rule_order`); err != nil {
		return fmt.Errorf("failed to read rule order: %w", err)
	}

	from := -1
	for i, existing := range ids {
		if existing == id.String() {
			from = i
			break
		}
	}
	if from == -1 {
		return fmt.Errorf("%w: %s", ErrRuleNotFound, id)
	}

	if newOrder < 0 {
		newOrder = 0
	}
	if newOrder >= len(ids) {
		newOrder = len(ids) - 1
	}

	moved := ids[from]
	ids = append(ids[:from], ids[from+1:]...)
	ids = append(ids[:newOrder], append([]string{moved}, ids[newOrder:]...)...)

	for i, ruleID := range ids {
		if _, err := tx.ExecContext(ctx,
			`UPDATE public.correction_rules SET rule_order = $2 WHERE id = $1`,
			ruleID, i); err != nil {
			return fmt.Errorf("failed to renumber rule: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit reorder: %w", err)
	}
	return nil
}

// renumberTx reassigns dense order values inside a transaction
func renumberTx(ctx context.Context, tx *sqlx.Tx) error {
	var ids []string
	if err := tx.SelectContext(ctx, &ids,
		`SELECT id FROM public.correction_rules ORDER BY rule_order`); err != nil {
		return fmt.Errorf("failed to read rule order: %w", err)
	}

	for i, ruleID := range ids {
		if _, err := tx.ExecContext(ctx,
			`UPDATE public.correction_rules SET rule_order = $2 WHERE id = $1`,
			ruleID, i); err != nil {
			return fmt.Errorf("failed to renumber rule: %w", err)
		}
	}
	return nil
}

// toModel converts a database row to the domain type
func (r ruleRow) toModel() (model.CorrectionRule, error) {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return model.CorrectionRule{}, fmt.Errorf("invalid rule id %q: %w", r.ID, err)
	}
	return model.CorrectionRule{
		ID:        id,
		FromValue: r.FromValue,
		ToValue:   r.ToValue,
		Category:  r.Category,
		Enabled:   r.Enabled,
		Order:     r.RuleOrder,
	}, nil
}

// fromModel converts a domain rule to its database shape
func fromModel(rule model.CorrectionRule) ruleRow {
	return ruleRow{
		ID:        rule.ID.String(),
		FromValue: rule.FromValue,
		ToValue:   rule.ToValue,
		Category:  rule.Category,
		Enabled:   rule.Enabled,
		RuleOrder: rule.Order,
	}
}
