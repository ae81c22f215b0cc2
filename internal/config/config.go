// Package config provides centralized configuration management.
//
// Configuration can be loaded from:
//  1. YAML file (environment variables expanded with ${VAR} syntax)
//  2. Environment variables (fallback)
//
// Flags parsed in cmd take precedence over both.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"ar-reconciliation/internal/domain"
)

// Config represents the entire application configuration.
type Config struct {
	Settings     SettingsConfig     `yaml:"settings"`
	Dictionaries DictionariesConfig `yaml:"dictionaries"`
	Mappings     MappingsConfig     `yaml:"mappings"`
	Logging      LoggingConfig      `yaml:"logging"`
	Export       ExportConfig       `yaml:"export"`
}

// SettingsConfig holds the reconciliation engine settings.
type SettingsConfig struct {
	Threshold     float64 `yaml:"threshold"`
	Tolerance     float64 `yaml:"tolerance"`
	AllowVariance bool    `yaml:"allow_variance"`
	Grouping      bool    `yaml:"grouping"`
	DateWindow    int     `yaml:"date_window"`
	UseCustomer   bool    `yaml:"use_customer"`
}

// ToDomain converts the file representation into engine settings.
func (s SettingsConfig) ToDomain() domain.Settings {
	return domain.Settings{
		Threshold:     s.Threshold,
		Tolerance:     decimal.NewFromFloat(s.Tolerance),
		AllowVariance: s.AllowVariance,
		Grouping:      s.Grouping,
		DateWindow:    s.DateWindow,
		UseCustomer:   s.UseCustomer,
	}
}

// DictionariesConfig holds extra header synonyms merged into the built-in
// dictionaries, keyed by semantic field name.
type DictionariesConfig struct {
	Ledger      map[string][]string `yaml:"ledger"`
	Transaction map[string][]string `yaml:"transaction"`
}

// MappingsConfig holds explicit field-to-column overrides, the manual mapping
// resolution step for datasets whose headers defeat synonym detection.
type MappingsConfig struct {
	Ledger      map[string]string `yaml:"ledger"`
	Transaction map[string]string `yaml:"transaction"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ExportConfig holds report export configuration.
type ExportConfig struct {
	Path string `yaml:"path"`
}

// Default returns the configuration used when no file is supplied.
func Default() *Config {
	defaults := domain.DefaultSettings()
	return &Config{
		Settings: SettingsConfig{
			Threshold:     defaults.Threshold,
			Tolerance:     defaults.Tolerance.InexactFloat64(),
			AllowVariance: defaults.AllowVariance,
			Grouping:      defaults.Grouping,
			DateWindow:    defaults.DateWindow,
			UseCustomer:   defaults.UseCustomer,
		},
		Logging: LoggingConfig{Level: "info", Format: "text"},
	}
}

// Load reads and parses the config file, applying values over the defaults
// so omitted fields keep their default settings.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	// Expand environment variables (e.g. ${RECON_EXPORT_PATH})
	expanded := os.ExpandEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrEnv loads the config file at path, or falls back to defaults plus
// environment overrides when path is empty.
func LoadOrEnv(path string) (*Config, error) {
	if path != "" {
		return Load(path)
	}

	cfg := Default()
	if v := os.Getenv("RECON_THRESHOLD"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid RECON_THRESHOLD %q: %w", v, err)
		}
		cfg.Settings.Threshold = f
	}
	if v := os.Getenv("RECON_TOLERANCE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid RECON_TOLERANCE %q: %w", v, err)
		}
		cfg.Settings.Tolerance = f
	}
	if v := os.Getenv("RECON_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("RECON_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("RECON_EXPORT_PATH"); v != "" {
		cfg.Export.Path = v
	}
	return cfg, nil
}
