// pkg/connector/factory.go
package connector

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/loggrid/corrector/pkg/config"
)

// Factory creates database connectors from loaded configuration.
type Factory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewFactory creates a new connector factory
func NewFactory(cfg *config.Config, logger *zap.Logger) *Factory {
	return &Factory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreatePostgresConnector creates the persistence connector. Fails if
// Postgres is not configured.
func (f *Factory) CreatePostgresConnector(ctx context.Context) (*PostgresConnector, error) {
	if f.cfg.Postgres == nil {
		return nil, fmt.Errorf("postgres is not configured")
	}

	f.logger.Info("Creating PostgreSQL connector")
	connector, err := NewPostgresConnector(ctx, f.cfg.Postgres, f.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create PostgreSQL connector: %w", err)
	}

	return connector, nil
}

// CreateSnowflakeConnector creates the game-log import connector.
// Fails if Snowflake is not configured.
func (f *Factory) CreateSnowflakeConnector(ctx context.Context) (*SnowflakeConnector, error) {
	if f.cfg.Snowflake == nil {
		return nil, fmt.Errorf("snowflake is not configured")
	}

	f.logger.Info("Creating Snowflake connector")
	connector, err := NewSnowflakeConnector(ctx, f.cfg.Snowflake, f.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create Snowflake connector: %w", err)
	}

	return connector, nil
}
