// pkg/config/config.go
package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the application configuration
type Config struct {
	// Optional database connections. Nil when the corresponding
	// environment variables are absent: the engine then runs purely
	// in memory with file-based rules and history.
	Postgres  *PostgresConfig
	Snowflake *SnowflakeConfig

	// Engine settings
	Engine EngineConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// EngineConfig holds default run options for the correction engine.
type EngineConfig struct {
	OnlyInvalid             bool
	Recursive               bool
	CaseSensitiveValidation bool
	QueryTimeout            time.Duration
}

// LoadConfig loads configuration from a .env file (when present) and
// environment variables.
func LoadConfig() (*Config, error) {
	// A missing .env file is fine; explicit environment wins anyway.
	_ = godotenv.Load()

	cfg := &Config{
		Engine: EngineConfig{
			OnlyInvalid:             getEnvAsBool("ENGINE_ONLY_INVALID", false),
			Recursive:               getEnvAsBool("ENGINE_RECURSIVE", true),
			CaseSensitiveValidation: getEnvAsBool("ENGINE_CASE_SENSITIVE_VALIDATION", true),
			QueryTimeout:            time.Duration(getEnvAsInt("ENGINE_QUERY_TIMEOUT_SECONDS", 60)) * time.Second,
		},
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	// Database configurations are optional
	if os.Getenv("POSTGRES_USER") != "" {
		pgConfig, err := LoadPostgresConfig()
		if err != nil {
			return nil, errors.New("failed to load PostgreSQL configuration: " + err.Error())
		}
		cfg.Postgres = pgConfig
	}

	if os.Getenv("SNOWFLAKE_USER") != "" {
		snowConfig, err := LoadSnowflakeConfig()
		if err != nil {
			return nil, errors.New("failed to load Snowflake configuration: " + err.Error())
		}
		cfg.Snowflake = snowConfig
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures the configuration is usable
func (c *Config) Validate() error {
	if c.Engine.QueryTimeout <= 0 {
		return errors.New("engine query timeout must be positive")
	}

	switch c.LogFormat {
	case "json", "console":
	default:
		return errors.New("log format must be json or console")
	}

	return nil
}

// Helper functions for environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
