package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// SettingsEnv хранит имя переменной окружения с путём к файлу настроек.
const SettingsEnv = "SCALPER_SETTINGS"

// LoadConfig читает YAML поверх значений по умолчанию. Без пути возвращает значения по умолчанию.
func LoadConfig(filePath string) (*Config, error) {
	cfg := Defaults()
	if filePath == "" {
		filePath = os.Getenv(SettingsEnv)
	}
	if filePath == "" {
		return cfg, nil
	}

	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation error: %w", err)
	}

	return cfg, nil
}
