// Package config loads runtime settings from YAML with environment
// overrides. Every field has a default so a missing config file is not
// an error.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ProviderConfig holds per-provider backend settings.
type ProviderConfig struct {
	APIKey      string  `yaml:"api_key,omitempty"`
	BaseURL     string  `yaml:"base_url,omitempty"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int64   `yaml:"max_tokens"`
}

// BusConfig holds message bus settings.
type BusConfig struct {
	AskTimeout   time.Duration `yaml:"ask_timeout"`
	HistoryLimit int           `yaml:"history_limit"`
	// MailboxSize caps pending messages per agent. Zero means unbounded.
	MailboxSize int `yaml:"mailbox_size"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// Config is the top-level runtime configuration.
type Config struct {
	Bus       BusConfig                 `yaml:"bus"`
	Logging   LoggingConfig             `yaml:"logging"`
	Providers map[string]ProviderConfig `yaml:"providers,omitempty"`
}

// Defaults returns a Config with sensible defaults.
func Defaults() *Config {
	return &Config{
		Bus: BusConfig{
			AskTimeout:   30 * time.Second,
			HistoryLimit: 1000,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads a YAML config file and applies env var overrides. A missing
// file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnvOverrides(cfg)
			if err := Validate(cfg); err != nil {
				return nil, err
			}
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges after all overrides are applied.
func Validate(cfg *Config) error {
	if cfg.Bus.AskTimeout < 0 {
		return fmt.Errorf("bus.ask_timeout must not be negative")
	}
	if cfg.Bus.HistoryLimit < 0 {
		return fmt.Errorf("bus.history_limit must not be negative")
	}
	if cfg.Bus.MailboxSize < 0 {
		return fmt.Errorf("bus.mailbox_size must not be negative")
	}
	switch cfg.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", cfg.Logging.Format)
	}
	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", cfg.Logging.Level)
	}
	return nil
}

// applyEnvOverrides maps AGENTSCRIPT_* environment variables onto cfg.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("AGENTSCRIPT_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("AGENTSCRIPT_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("AGENTSCRIPT_ASK_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Bus.AskTimeout = d
		}
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		p := cfg.Providers["openai"]
		p.APIKey = v
		setProvider(cfg, "openai", p)
	}
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
		p := cfg.Providers["anthropic"]
		p.APIKey = v
		setProvider(cfg, "anthropic", p)
	}
}

func setProvider(cfg *Config, name string, p ProviderConfig) {
	if cfg.Providers == nil {
		cfg.Providers = map[string]ProviderConfig{}
	}
	cfg.Providers[name] = p
}
