package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load builds the configuration in three layers: built-in defaults, an
// optional TOML file, and FUNDLEDGER_* environment variables. A .env file in
// the working directory is loaded into the environment first when present.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Defaults()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: reading %s: %w", path, err)
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	setInt("FUNDLEDGER_SERVER_PORT", &cfg.Server.Port)
	setStr("FUNDLEDGER_API_KEY", &cfg.Server.APIKey)

	setStr("FUNDLEDGER_DB_DSN", &cfg.Database.DSN)
	setStr("FUNDLEDGER_DB_HOST", &cfg.Database.Host)
	setInt("FUNDLEDGER_DB_PORT", &cfg.Database.Port)
	setStr("FUNDLEDGER_DB_USER", &cfg.Database.User)
	setStr("FUNDLEDGER_DB_PASSWORD", &cfg.Database.Password)
	setStr("FUNDLEDGER_DB_NAME", &cfg.Database.Name)
	setStr("FUNDLEDGER_DB_SSLMODE", &cfg.Database.SSLMode)

	setStr("FUNDLEDGER_ORACLE_BASE_URL", &cfg.Oracle.BaseURL)
	setInt("FUNDLEDGER_ORACLE_TIMEOUT_SECONDS", &cfg.Oracle.TimeoutSeconds)

	setStr("FUNDLEDGER_LOG_LEVEL", &cfg.LogLevel)
}

func setStr(key string, dst *string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}

func setInt(key string, dst *int) {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
