package app

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/vk/rootloader/internal/locale"
)

// EnvPrefix prefixes every environment variable read by ConfigFromEnv.
const EnvPrefix = "ROOTLOADER_"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	// DataPath is the host data root holding the baseline tables.
	DataPath string `env:"DATA_PATH"`
	// BudsPath holds one directory per bud.
	BudsPath string `env:"BUDS_PATH" envDefault:"buds"`
	// OutputPath receives the replacement tables.
	OutputPath string `env:"OUTPUT_PATH"`

	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`

	Strict bool `env:"STRICT"`
	DryRun bool `env:"DRY_RUN"`

	// Languages maps language keys to tags, "0=en,1=ja". Empty means the
	// host's default table.
	Languages    string `env:"LANGUAGES"`
	OtelEndpoint string `env:"OTEL_ENDPOINT"`
}

// ConfigFromEnv reads a Config from ROOTLOADER_* environment variables.
// Command line flags override the result before it goes to NewConfig.
func ConfigFromEnv() (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.DataPath == "" {
		return nil, errors.New("DataPath is a required configuration field and cannot be empty")
	}
	if cfg.BudsPath == "" {
		return nil, errors.New("BudsPath is a required configuration field and cannot be empty")
	}
	if cfg.OutputPath == "" && !cfg.DryRun {
		return nil, errors.New("OutputPath is required unless DryRun is set")
	}

	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("invalid log format %q: must be 'text' or 'json'", cfg.LogFormat)
	}
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	if !slices.Contains([]string{"debug", "info", "warn", "error"}, cfg.LogLevel) {
		return nil, fmt.Errorf("invalid log level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.LogLevel)
	}
	if _, err := cfg.languageTable(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) languageTable() (*locale.Table, error) {
	if strings.TrimSpace(c.Languages) == "" {
		return locale.Default, nil
	}
	t, err := locale.ParseTable(c.Languages)
	if err != nil {
		return nil, fmt.Errorf("invalid languages: %w", err)
	}
	return t, nil
}
