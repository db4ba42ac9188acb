package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"scalper/internal/scraper"
)

// Format задаёт формат файла с описанием ресурсов.
type Format string

const (
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(name, ".")) {
	case "toml":
		return FormatTOML, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported config format: %q", name)
	}
}

// FormatFromPath определяет формат по расширению файла.
func FormatFromPath(filePath string) (Format, error) {
	ext := filepath.Ext(filePath)
	if ext == "" {
		return "", fmt.Errorf("config file %s has no extension", filePath)
	}
	return ParseFormat(ext)
}

// LoadResources загружает и валидирует конфигурацию ресурсов.
func LoadResources(filePath string) (*scraper.Configuration, error) {
	if filePath == "" {
		return nil, fmt.Errorf("resources file path is empty")
	}

	format, err := FormatFromPath(filePath)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read resources file: %w", err)
	}

	cfg, err := DecodeResources(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filePath, err)
	}

	if err := ValidateResources(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func DecodeResources(data []byte, format Format) (*scraper.Configuration, error) {
	var cfg scraper.Configuration

	switch format {
	case FormatTOML:
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&cfg); err != nil {
			return nil, fmt.Errorf("failed to parse TOML: %w", err)
		}
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&cfg); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format: %q", format)
	}

	return &cfg, nil
}

func EncodeResources(cfg *scraper.Configuration, format Format) ([]byte, error) {
	switch format {
	case FormatTOML:
		return toml.Marshal(cfg)
	case FormatJSON:
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	case FormatYAML:
		return yaml.Marshal(cfg)
	default:
		return nil, fmt.Errorf("unsupported config format: %q", format)
	}
}

// SaveResources валидирует конфигурацию и пишет её в файл, формат берётся из расширения.
func SaveResources(filePath string, cfg *scraper.Configuration, overwrite bool) error {
	if err := ValidateResources(cfg); err != nil {
		return err
	}

	format, err := FormatFromPath(filePath)
	if err != nil {
		return err
	}

	data, err := EncodeResources(cfg, format)
	if err != nil {
		return fmt.Errorf("failed to encode resources: %w", err)
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !overwrite {
		flags |= os.O_EXCL
	}
	file, err := os.OpenFile(filePath, flags, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("config file %s already exists", filePath)
		}
		return fmt.Errorf("failed to create config file: %w", err)
	}

	if _, err := file.Write(data); err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return file.Close()
}

// ValidateResources проверяет конфигурацию до любых сетевых запросов.
func ValidateResources(cfg *scraper.Configuration) error {
	if cfg == nil || len(cfg.Resources) == 0 {
		return scraper.NewConfigError(-1, scraper.ErrEmptyConfiguration, "")
	}

	for i, res := range cfg.Resources {
		if err := ValidateURLTemplate(res.URL); err != nil {
			return scraper.NewConfigError(i, scraper.ErrInvalidResource, err.Error())
		}
		if len(res.Selectors) == 0 {
			return scraper.NewConfigError(i, scraper.ErrInvalidResource, "no selectors")
		}

		seen := make(map[string]bool, len(res.Selectors))
		for _, s := range res.Selectors {
			if strings.TrimSpace(s.Name) == "" {
				return scraper.NewConfigError(i, scraper.ErrInvalidResource, "selector name is empty")
			}
			if seen[s.Name] {
				return scraper.NewConfigError(i, scraper.ErrDuplicateSelector, s.Name)
			}
			seen[s.Name] = true

			if err := scraper.ValidateSelector(s.Selector); err != nil {
				return scraper.NewConfigError(i, scraper.ErrInvalidSelector, fmt.Sprintf("%s = %q", s.Name, s.Selector))
			}
		}
	}

	return nil
}

// ValidateURLTemplate проверяет шаблон так, будто плейсхолдер уже подставлен.
func ValidateURLTemplate(template string) error {
	if strings.TrimSpace(template) == "" {
		return fmt.Errorf("url is empty")
	}

	u, err := url.Parse(strings.ReplaceAll(template, scraper.Placeholder, "param"))
	if err != nil {
		return fmt.Errorf("invalid url %q: %w", template, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("url %q must use http or https", template)
	}
	if u.Host == "" {
		return fmt.Errorf("url %q has no host", template)
	}
	return nil
}
