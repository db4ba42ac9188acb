package config

import (
	"fmt"
	"time"
)

// Config описывает настройки приложения (YAML). Ресурсы и селекторы лежат отдельно, см. resources.go.
type Config struct {
	HTTP          HttpConfig          `yaml:"http"`
	Batch         BatchConfig         `yaml:"batch"`
	Render        RenderConfig        `yaml:"render"`
	Storage       StorageConfig       `yaml:"storage"`
	Observability ObservabilityConfig `yaml:"observability"`
}

type HttpConfig struct {
	UserAgent                 string `yaml:"user_agent"`
	AcceptLanguage            string `yaml:"accept_language"`
	TimeoutMS                 int    `yaml:"timeout_ms"`
	MaxBodyBytes              int64  `yaml:"max_body_bytes"`
	MaxIdleConnections        int    `yaml:"max_idle_connections"`
	MaxIdleConnectionsPerHost int    `yaml:"max_idle_connections_per_host"`
	IdleConnectionTimeoutS    int    `yaml:"idle_connection_timeout_s"`
}

type BatchConfig struct {
	Concurrency int `yaml:"concurrency"`
	DeadlineS   int `yaml:"deadline_s"`
}

type RenderConfig struct {
	MaxCellChars int `yaml:"max_cell_chars"`
}

type StorageConfig struct {
	Driver           string `yaml:"driver"`
	DSN              string `yaml:"dsn"`
	Table            string `yaml:"table"`
	CommandTimeoutMS int    `yaml:"command_timeout_ms"`
}

type ObservabilityConfig struct {
	LogPath       string `yaml:"log_path"`
	LogLevel      string `yaml:"log_level"`
	LogMaxSizeMB  int    `yaml:"log_max_size_mb"`
	LogMaxBackups int    `yaml:"log_max_backups"`
	LogMaxAgeDays int    `yaml:"log_max_age_days"`
	DisableColors bool   `yaml:"disable_colors"`
}

// Defaults возвращает настройки, с которыми работает CLI без файла настроек.
func Defaults() *Config {
	return &Config{
		HTTP: HttpConfig{
			UserAgent:                 "scalper/1.0 (+https://github.com/scalper)",
			AcceptLanguage:            "en-US,en;q=0.9",
			TimeoutMS:                 15000,
			MaxBodyBytes:              10 << 20,
			MaxIdleConnections:        100,
			MaxIdleConnectionsPerHost: 10,
			IdleConnectionTimeoutS:    90,
		},
		Batch: BatchConfig{
			Concurrency: 8,
		},
		Render: RenderConfig{
			MaxCellChars: 80,
		},
		Storage: StorageConfig{
			Driver:           "sqlite",
			DSN:              "scalper.db",
			Table:            "scalper_results",
			CommandTimeoutMS: 5000,
		},
		Observability: ObservabilityConfig{
			LogLevel:      "info",
			LogMaxSizeMB:  10,
			LogMaxBackups: 3,
			LogMaxAgeDays: 28,
		},
	}
}

// Validation
func (c *Config) Validate() error {
	if c.HTTP.UserAgent == "" {
		return fmt.Errorf("http.user_agent is required")
	}
	if c.HTTP.TimeoutMS <= 0 {
		return fmt.Errorf("http.timeout_ms must be > 0")
	}
	if c.HTTP.MaxBodyBytes <= 0 {
		return fmt.Errorf("http.max_body_bytes must be > 0")
	}
	if c.HTTP.MaxIdleConnections < 0 || c.HTTP.MaxIdleConnectionsPerHost < 0 {
		return fmt.Errorf("http.max_idle_connections* must be >= 0")
	}
	if c.HTTP.IdleConnectionTimeoutS < 0 {
		return fmt.Errorf("http.idle_connection_timeout_s must be >= 0")
	}
	if c.Batch.Concurrency <= 0 {
		return fmt.Errorf("batch.concurrency must be > 0")
	}
	if c.Batch.DeadlineS < 0 {
		return fmt.Errorf("batch.deadline_s must be >= 0")
	}
	if c.Render.MaxCellChars < 0 {
		return fmt.Errorf("render.max_cell_chars must be >= 0")
	}
	switch c.Storage.Driver {
	case "sqlite", "mssql", "postgres":
	default:
		return fmt.Errorf("storage.driver must be 'sqlite', 'mssql' or 'postgres'")
	}
	if c.Storage.Table == "" || !isIdentifier(c.Storage.Table) {
		return fmt.Errorf("storage.table must be a plain identifier")
	}
	if c.Storage.CommandTimeoutMS <= 0 {
		return fmt.Errorf("storage.command_timeout_ms must be > 0")
	}
	if c.Observability.LogLevel == "" {
		return fmt.Errorf("observability.log_level is required")
	}
	if c.Observability.LogMaxSizeMB < 0 || c.Observability.LogMaxBackups < 0 || c.Observability.LogMaxAgeDays < 0 {
		return fmt.Errorf("observability.log_max_* must be >= 0")
	}
	return nil
}

func isIdentifier(s string) bool {
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

// Getters
func (c *Config) GetTimeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutMS) * time.Millisecond
}

func (c *Config) GetIdleConnectionTimeout() time.Duration {
	return time.Duration(c.HTTP.IdleConnectionTimeoutS) * time.Second
}

func (c *Config) GetBatchDeadline() time.Duration {
	return time.Duration(c.Batch.DeadlineS) * time.Second
}

func (c *Config) GetCommandTimeout() time.Duration {
	return time.Duration(c.Storage.CommandTimeoutMS) * time.Millisecond
}
