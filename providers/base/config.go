package base

import (
	"os"

	"github.com/joho/godotenv"
)

func init() {
	// Auto-load .env file if it exists (silent fail)
	_ = godotenv.Load()
}

// LoadEnv loads environment variables from specified .env files.
// If no files are specified, it loads from .env in the current directory.
func LoadEnv(filenames ...string) error {
	return godotenv.Load(filenames...)
}

// Config contains common configuration for all providers.
type Config struct {
	APIKey  string
	BaseURL string

	// DebugPath writes JSONL debug records (request/response/error) when set.
	DebugPath string

	MaxOutputTokens *int
	// MaxRetries overrides the SDK retry count. Nil means no retries.
	MaxRetries *int

	ExtraHeaders map[string]string
	ExtraBody    map[string]any
}

// Retries returns the effective SDK retry count.
func (c Config) Retries() int {
	if c.MaxRetries == nil || *c.MaxRetries < 0 {
		return 0
	}
	return *c.MaxRetries
}

// ApplyEnvDefaults applies environment variable defaults if config values are empty.
func ApplyEnvDefaults(cfg *Config, apiKeyEnv, baseURLEnv string) {
	if cfg.APIKey == "" && apiKeyEnv != "" {
		cfg.APIKey = os.Getenv(apiKeyEnv)
	}
	if cfg.BaseURL == "" && baseURLEnv != "" {
		cfg.BaseURL = os.Getenv(baseURLEnv)
	}
}
