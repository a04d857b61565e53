// Package config loads the agentloop CLI configuration from a YAML file and
// the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Supported provider names.
const (
	ProviderOpenAI     = "openai"
	ProviderAnthropic  = "anthropic"
	ProviderOpenRouter = "openrouter"
)

const (
	DefaultProvider = ProviderOpenAI
	DefaultModel    = "gpt-4o-mini"
	DefaultMaxTurns = 20
)

// Config is the CLI configuration. Zero values mean "use the default".
type Config struct {
	Provider       string  `yaml:"provider"`
	Model          string  `yaml:"model"`
	BaseURL        string  `yaml:"base_url"`
	Temperature    float64 `yaml:"temperature"`
	MaxTurns       int     `yaml:"max_turns"`
	Instructions   string  `yaml:"instructions"`
	DebugPath      string  `yaml:"debug_path"`
	LogLevel       string  `yaml:"log_level"`
	Timezone       string  `yaml:"timezone"`
	ResponseFormat string  `yaml:"response_format"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Provider: DefaultProvider,
		Model:    DefaultModel,
		MaxTurns: DefaultMaxTurns,
		LogLevel: "warn",
		Timezone: "Local",
	}
}

// Load reads path on top of the defaults and applies environment overrides.
// An empty path or a missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("config: parse %s: %w", path, err)
			}
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv("AGENTLOOP_PROVIDER")); v != "" {
		c.Provider = v
	}
	if v := strings.TrimSpace(os.Getenv("AGENTLOOP_MODEL")); v != "" {
		c.Model = v
	}
	if v := strings.TrimSpace(os.Getenv("AGENTLOOP_LOG_LEVEL")); v != "" {
		c.LogLevel = v
	}
}

// Validate checks the configuration for values the CLI cannot use.
func (c *Config) Validate() error {
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	switch c.Provider {
	case ProviderOpenAI, ProviderAnthropic, ProviderOpenRouter:
	default:
		return fmt.Errorf("config: unknown provider %q", c.Provider)
	}
	if c.Model == "" {
		return errors.New("config: model is required")
	}
	if c.MaxTurns < 0 {
		return fmt.Errorf("config: max_turns must not be negative, got %d", c.MaxTurns)
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("config: temperature %v out of range [0, 2]", c.Temperature)
	}
	switch c.ResponseFormat {
	case "", "json_schema", "json_object":
	default:
		return fmt.Errorf("config: unknown response_format %q", c.ResponseFormat)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("config: log_level: %w", err)
	}
	return level, nil
}

// Location loads Timezone; "" and "Local" mean the host zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config: timezone: %w", err)
	}
	return loc, nil
}
