// pkg/history/sqlstore.go
package history

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/loggrid/corrector/pkg/connector"
	"github.com/loggrid/corrector/pkg/model"
)

// SQLStore persists correction records to PostgreSQL so the audit
// trail survives the session. Persistence is write-behind: the
// in-memory Recorder stays authoritative during a run and batches are
// flushed afterwards.
type SQLStore struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// recordRow is the database shape of a correction record
type recordRow struct {
	ID          string    `db:"id"`
	RowIndex    int       `db:"row_index"`
	ColumnName  string    `db:"column_name"`
	OldValue    string    `db:"old_value"`
	NewValue    string    `db:"new_value"`
	RuleID      string    `db:"rule_id"`
	Description string    `db:"description"`
	AppliedAt   time.Time `db:"applied_at"`
}

// NewSQLStore creates a history store backed by PostgreSQL and ensures
// the tracking table exists.
func NewSQLStore(conn connector.DatabaseConnector, logger *zap.Logger) (*SQLStore, error) {
	if conn == nil {
		return nil, errors.New("database connector cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	store := &SQLStore{
		db:     sqlx.NewDb(conn.DB(), "pgx"),
		logger: logger.Named("history-store"),
	}

	if err := store.setupHistoryTable(); err != nil {
		return nil, fmt.Errorf("failed to setup history table: %w", err)
	}

	return store, nil
}

// setupHistoryTable ensures the correction_history tracking table exists
func (s *SQLStore) setupHistoryTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	createTableSQL := `
		CREATE TABLE IF NOT EXISTS public.correction_history (
			id UUID PRIMARY KEY,
			row_index INTEGER NOT NULL,
			column_name TEXT NOT NULL,
			old_value TEXT NOT NULL,
			new_value TEXT NOT NULL,
			rule_id UUID NOT NULL,
			description TEXT NOT NULL,
			applied_at TIMESTAMP WITH TIME ZONE NOT NULL
		)
	`
	if _, err := s.db.ExecContext(ctx, createTableSQL); err != nil {
		return fmt.Errorf("failed to create tracking table: %w", err)
	}

	s.logger.Info("Ensured correction_history table exists")
	return nil
}

// Persist batch inserts correction records inside one transaction.
func (s *SQLStore) Persist(records []model.CorrectionRecord) error {
	if len(records) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareNamedContext(ctx, `
		INSERT INTO public.correction_history
		(id, row_index, column_name, old_value, new_value, rule_id, description, applied_at)
		VALUES (:id, :row_index, :column_name, :old_value, :new_value, :rule_id, :description, :applied_at)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, record := range records {
		if _, err := stmt.ExecContext(ctx, recordRow{
			ID:          record.ID.String(),
			RowIndex:    record.Row,
			ColumnName:  record.Column,
			OldValue:    record.OldValue,
			NewValue:    record.NewValue,
			RuleID:      record.RuleID.String(),
			Description: record.Description,
			AppliedAt:   record.AppliedAt,
		}); err != nil {
			return fmt.Errorf("failed to insert correction record: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Info("Persisted correction records", zap.Int("count", len(records)))
	return nil
}
