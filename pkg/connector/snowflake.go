// pkg/connector/snowflake.go
package connector

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sf "github.com/snowflakedb/gosnowflake"
	"go.uber.org/zap"

	"github.com/loggrid/corrector/pkg/config"
)

// SnowflakeConnector implements DatabaseConnector for Snowflake. It is
// read-only in practice: the corrector uses it to pull exported
// game-log tables into an in-memory dataset.
type SnowflakeConnector struct {
	db     *sql.DB
	logger *zap.Logger
	cfg    *config.SnowflakeConfig
}

// NewSnowflakeConnector creates a new Snowflake connection
func NewSnowflakeConnector(ctx context.Context, cfg *config.SnowflakeConfig, logger *zap.Logger) (*SnowflakeConnector, error) {
	logger = logger.Named("snowflake-connector")

	sfConfig := &sf.Config{
		Account:       cfg.Account,
		User:          cfg.User,
		Password:      cfg.Password,
		Database:      cfg.Database,
		Warehouse:     cfg.Warehouse,
		Role:          cfg.Role,
		Authenticator: cfg.Authenticator,
	}

	// Log connection attempt (without credentials)
	logger.Info("Connecting to Snowflake",
		zap.String("account", cfg.Account),
		zap.String("user", cfg.User),
		zap.String("database", cfg.Database),
		zap.String("warehouse", cfg.Warehouse))

	dsn, err := sf.DSN(sfConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to build Snowflake DSN: %w", err)
	}

	db, err := sql.Open("snowflake", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Snowflake connection: %w", err)
	}

	ApplyConnectionSettings(
		db,
		cfg.MaxOpenConns,
		cfg.MaxIdleConns,
		cfg.ConnMaxLifetime,
		cfg.ConnMaxIdleTime,
	)

	if cfg.QueryTimeout > 0 {
		_, err = db.ExecContext(
			ctx,
			fmt.Sprintf("ALTER SESSION SET STATEMENT_TIMEOUT_IN_SECONDS = %d",
				int(cfg.QueryTimeout.Seconds())),
		)
		if err != nil {
			logger.Warn("Failed to set statement timeout", zap.Error(err))
		}
	}

	if err := PingWithTimeout(ctx, db, 10*time.Second); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to Snowflake: %w", err)
	}

	connector := &SnowflakeConnector{
		db:     db,
		logger: logger,
		cfg:    cfg,
	}

	LogConnectionStats(logger, cfg.Database, db)
	return connector, nil
}

// DB returns the underlying database connection
func (c *SnowflakeConnector) DB() *sql.DB {
	return c.db
}

// Validate verifies the Snowflake connection and access rights
func (c *SnowflakeConnector) Validate() error {
	var role, database, warehouse string
	err := c.db.QueryRow("SELECT CURRENT_ROLE(), CURRENT_DATABASE(), CURRENT_WAREHOUSE()").Scan(
		&role, &database, &warehouse)
	if err != nil {
		return fmt.Errorf("failed to verify Snowflake access: %w", err)
	}

	c.logger.Info("Connected to Snowflake",
		zap.String("role", role),
		zap.String("database", database),
		zap.String("warehouse", warehouse))

	if database != c.cfg.Database {
		return fmt.Errorf("connected to wrong database: %s (expected: %s)",
			database, c.cfg.Database)
	}

	return nil
}

// Close closes the database connection
func (c *SnowflakeConnector) Close() error {
	c.logger.Info("Closing Snowflake connection")
	LogConnectionStats(c.logger, c.cfg.Database, c.db)
	return c.db.Close()
}

// QueryWithTimeout executes a query with a timeout
func (c *SnowflakeConnector) QueryWithTimeout(
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
func (c *SnowflakeConnector) ExecWithTimeout(
	ctx context.Context,
	query string,
	timeout time.Duration,
	args ...interface{},
) (sql.Result, error) {
	queryCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return c.db.ExecContext(queryCtx, query, args...)
}
