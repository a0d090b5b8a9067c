package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWhenNoFile(t *testing.T) {
	cfg, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "https://query1.finance.yahoo.com", cfg.Oracle.BaseURL)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
log_level = "debug"

[server]
port = 9090
api_key = "secret"

[database]
host = "db.internal"
name = "funds"

[oracle]
base_url = "http://quotes.internal"
timeout_seconds = 5
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "secret", cfg.Server.APIKey)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "funds", cfg.Database.Name)
	assert.Equal(t, "http://quotes.internal", cfg.Oracle.BaseURL)
	assert.Equal(t, 5, cfg.Oracle.TimeoutSeconds)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[server]\nport = 9090\n"), 0o600))

	t.Setenv("FUNDLEDGER_SERVER_PORT", "7070")
	t.Setenv("FUNDLEDGER_DB_PASSWORD", "hunter2")

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "hunter2", cfg.Database.Password)
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	t.Setenv("FUNDLEDGER_SERVER_PORT", "-1")

	_, err := Load("")

	assert.Error(t, err)
}

func TestLoad_RejectsUnknownLogLevel(t *testing.T) {
	t.Setenv("FUNDLEDGER_LOG_LEVEL", "loud")

	_, err := Load("")

	assert.Error(t, err)
}

func TestConnString_PrefersDSN(t *testing.T) {
	d := DatabaseConfig{DSN: "postgres://u:p@h/db", Host: "ignored"}

	assert.Equal(t, "postgres://u:p@h/db", d.ConnString())
}

func TestConnString_BuildsFromFields(t *testing.T) {
	d := DatabaseConfig{Host: "h", Port: 5432, User: "u", Password: "p", Name: "db", SSLMode: "disable"}

	assert.Equal(t, "host=h port=5432 user=u password=p dbname=db sslmode=disable", d.ConnString())
}
