package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsAreValid(t *testing.T) {
	cfg := Defaults()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 15*time.Second, cfg.GetTimeout())
	assert.Equal(t, 90*time.Second, cfg.GetIdleConnectionTimeout())
	assert.Equal(t, time.Duration(0), cfg.GetBatchDeadline())
	assert.Equal(t, 5*time.Second, cfg.GetCommandTimeout())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"empty user agent", func(c *Config) { c.HTTP.UserAgent = "" }, "http.user_agent"},
		{"zero timeout", func(c *Config) { c.HTTP.TimeoutMS = 0 }, "http.timeout_ms"},
		{"zero body cap", func(c *Config) { c.HTTP.MaxBodyBytes = 0 }, "http.max_body_bytes"},
		{"zero concurrency", func(c *Config) { c.Batch.Concurrency = 0 }, "batch.concurrency"},
		{"negative deadline", func(c *Config) { c.Batch.DeadlineS = -1 }, "batch.deadline_s"},
		{"bad driver", func(c *Config) { c.Storage.Driver = "oracle" }, "storage.driver"},
		{"bad table", func(c *Config) { c.Storage.Table = "results; DROP TABLE x" }, "storage.table"},
		{"numeric table", func(c *Config) { c.Storage.Table = "1results" }, "storage.table"},
		{"no log level", func(c *Config) { c.Observability.LogLevel = "" }, "observability.log_level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv(SettingsEnv, "")
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
}

func TestLoadConfigOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	content := `
http:
  user_agent: test-agent
  timeout_ms: 2500
batch:
  concurrency: 2
storage:
  driver: mssql
  dsn: sqlserver://localhost
observability:
  log_level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "test-agent", cfg.HTTP.UserAgent)
	assert.Equal(t, 2500*time.Millisecond, cfg.GetTimeout())
	assert.Equal(t, 2, cfg.Batch.Concurrency)
	assert.Equal(t, "mssql", cfg.Storage.Driver)
	assert.Equal(t, "debug", cfg.Observability.LogLevel)
	// untouched keys keep their defaults
	assert.Equal(t, Defaults().HTTP.MaxBodyBytes, cfg.HTTP.MaxBodyBytes)
	assert.Equal(t, "scalper_results", cfg.Storage.Table)
}

func TestLoadConfigFromEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("batch:\n  concurrency: 3\n"), 0o644))
	t.Setenv(SettingsEnv, path)

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Batch.Concurrency)
}

func TestLoadConfigEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
}

func TestLoadConfigErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadConfig(filepath.Join(dir, "missing.yaml"))
	assert.ErrorContains(t, err, "failed to open config file")

	unknown := filepath.Join(dir, "unknown.yaml")
	require.NoError(t, os.WriteFile(unknown, []byte("http:\n  retries: 3\n"), 0o644))
	_, err = LoadConfig(unknown)
	assert.ErrorContains(t, err, "failed to parse config")

	invalid := filepath.Join(dir, "invalid.yaml")
	require.NoError(t, os.WriteFile(invalid, []byte("batch:\n  concurrency: -1\n"), 0o644))
	_, err = LoadConfig(invalid)
	assert.ErrorContains(t, err, "config validation error")
}
