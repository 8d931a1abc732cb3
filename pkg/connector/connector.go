// pkg/connector/connector.go
package connector

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// DatabaseConnector is the interface shared by the game-log import
// source and the persistence database.
type DatabaseConnector interface {
	// DB returns the underlying database connection
	DB() *sql.DB

	// Validate verifies the connection and permissions
	Validate() error

	// Close closes the connection and releases resources
	Close() error

	// QueryWithTimeout executes a query with a timeout
	QueryWithTimeout(ctx context.Context, query string, timeout time.Duration, args ...interface{}) (*sql.Rows, error)

	// ExecWithTimeout executes a statement with a timeout
	ExecWithTimeout(ctx context.Context, query string, timeout time.Duration, args ...interface{}) (sql.Result, error)
}

// PingWithTimeout attempts to ping a database with a timeout
func PingWithTimeout(ctx context.Context, db *sql.DB, timeout time.Duration) error {
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		return fmt.Errorf("ping failed after %v: %w", timeout, err)
	}
	return nil
}

// ApplyConnectionSettings configures database connection pool settings
func ApplyConnectionSettings(db *sql.DB, maxOpen, maxIdle int, maxLifetime, maxIdleTime time.Duration) {
	if maxOpen > 0 {
		db.SetMaxOpenConns(maxOpen)
	}
	if maxIdle > 0 {
		db.SetMaxIdleConns(maxIdle)
	}
	if maxLifetime > 0 {
		db.SetConnMaxLifetime(maxLifetime)
	}
	if maxIdleTime > 0 {
		db.SetConnMaxIdleTime(maxIdleTime)
	}
}

// LogConnectionStats logs connection pool statistics
func LogConnectionStats(logger *zap.Logger, name string, db *sql.DB) {
	stats := db.Stats()
	logger.Debug("Connection pool stats",
		zap.String("database", name),
		zap.Int("open_connections", stats.OpenConnections),
		zap.Int("in_use", stats.InUse),
		zap.Int("idle", stats.Idle),
		zap.Int("max_open", stats.MaxOpenConnections),
	)
}
