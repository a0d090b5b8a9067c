// Package config defines the top-level configuration for the fund ledger
// backend and provides validation helpers.
package config

import (
	"fmt"
)

// Config is the root configuration structure. Fields are populated from a
// TOML file and then optionally overridden by FUNDLEDGER_* environment
// variables.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Oracle   OracleConfig   `toml:"oracle"`
	LogLevel string         `toml:"log_level"`
}

// ServerConfig holds the HTTP API parameters.
type ServerConfig struct {
	Port   int    `toml:"port"`
	APIKey string `toml:"api_key"` // empty disables authentication
}

// DatabaseConfig holds PostgreSQL connection parameters. When DSN is set it
// wins over the individual fields.
type DatabaseConfig struct {
	DSN      string `toml:"dsn"`
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	Name     string `toml:"name"`
	SSLMode  string `toml:"ssl_mode"`
}

// ConnString returns the lib/pq connection string for the configured
// database.
func (d DatabaseConfig) ConnString() string {
	if d.DSN != "" {
		return d.DSN
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// OracleConfig holds the market quote endpoint parameters.
type OracleConfig struct {
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Defaults returns the built-in configuration used when no file or
// environment overrides are present.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Port: 8080,
		},
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "postgres",
			Password: "postgres",
			Name:     "fundledger",
			SSLMode:  "disable",
		},
		Oracle: OracleConfig{
			BaseURL:        "https://query1.finance.yahoo.com",
			TimeoutSeconds: 10,
		},
		LogLevel: "info",
	}
}

// Validate checks the configuration for values the server cannot start
// with.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: invalid server port %d", c.Server.Port)
	}
	if c.Database.DSN == "" && c.Database.Name == "" {
		return fmt.Errorf("config: database name or dsn is required")
	}
	if c.Oracle.BaseURL == "" {
		return fmt.Errorf("config: oracle base_url is required")
	}
	if c.Oracle.TimeoutSeconds <= 0 {
		return fmt.Errorf("config: oracle timeout_seconds must be positive")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: unknown log_level %q", c.LogLevel)
	}
	return nil
}
