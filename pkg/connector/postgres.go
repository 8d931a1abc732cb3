// pkg/connector/postgres.go
package connector

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v4/stdlib"
	"go.uber.org/zap"

	"github.com/loggrid/corrector/pkg/config"
)

// PostgresConnector implements DatabaseConnector for PostgreSQL, the
// backing store for persisted rules and correction history.
type PostgresConnector struct {
	db     *sql.DB
	logger *zap.Logger
	cfg    *config.PostgresConfig
}

// NewPostgresConnector creates and initializes a new PostgreSQL connector
func NewPostgresConnector(ctx context.Context, cfg *config.PostgresConfig, logger *zap.Logger) (*PostgresConnector, error) {
	logger = logger.Named("postgres-connector")

	logger.Info("Connecting to PostgreSQL",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("database", cfg.Database),
		zap.String("user", cfg.User))

	db, err := sql.Open("pgx", cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize PostgreSQL connection: %w", err)
	}

	ApplyConnectionSettings(
		db,
		cfg.MaxOpenConns,
		cfg.MaxIdleConns,
		cfg.ConnMaxLifetime,
		cfg.ConnMaxIdleTime,
	)

	if cfg.StatementTimeout > 0 {
		_, err = db.ExecContext(
			ctx,
			fmt.Sprintf("SET statement_timeout = %d", cfg.StatementTimeout.Milliseconds()),
		)
		if err != nil {
			logger.Warn("Failed to set statement timeout", zap.Error(err))
		}
	}

	if err := PingWithTimeout(ctx, db, 10*time.Second); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	connector := &PostgresConnector{
		db:     db,
		logger: logger,
		cfg:    cfg,
	}

	LogConnectionStats(logger, cfg.Database, db)
	return connector, nil
}

// DB returns the underlying database connection
func (c *PostgresConnector) DB() *sql.DB {
	return c.db
}

// Validate verifies the PostgreSQL connection and access rights
func (c *PostgresConnector) Validate() error {
	var database, user string
	err := c.db.QueryRow("SELECT current_database(), current_user").Scan(&database, &user)
	if err != nil {
		return fmt.Errorf("failed to verify PostgreSQL access: %w", err)
	}

	c.logger.Info("Connected to PostgreSQL",
		zap.String("database", database),
		zap.String("user", user))

	if database != c.cfg.Database {
		return fmt.Errorf("connected to wrong database: %s (expected: %s)",
			database, c.cfg.Database)
	}

	return nil
}

// Close closes the database connection
func (c *PostgresConnector) Close() error {
	c.logger.Info("Closing PostgreSQL connection")
	LogConnectionStats(c.logger, c.cfg.Database, c.db)
	return c.db.Close()
}

// QueryWithTimeout executes a query with a timeout
func (c *PostgresConnector) QueryWithTimeout(
	ctx context.Context,
	query string,
	timeout time.Duration,
	args ...interface{},
) (*sql.Rows, error) {
	queryCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return c.db.QueryContext(queryCtx, query, args...)
}

// ExecWithTimeout executes a statement with a timeout
func (c *PostgresConnector) ExecWithTimeout(
	ctx context.Context,
	query string,
	timeout time.Duration,
	args ...interface{},
) (sql.Result, error) {
	queryCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return c.db.ExecContext(queryCtx, query, args...)
}
