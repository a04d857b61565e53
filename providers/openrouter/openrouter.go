package openrouter

import (
	"os"

	"github.com/inspirepan/agent"
	"github.com/inspirepan/agent/providers/base"
	cc "github.com/inspirepan/agent/providers/chatcompletion"
)

const defaultBaseURL = "https://openrouter.ai/api/v1"

// ReasoningEffort defines the effort level for reasoning models.
type ReasoningEffort string

const (
	ReasoningEffortHigh    ReasoningEffort = "high"
	ReasoningEffortMedium  ReasoningEffort = "medium"
	ReasoningEffortLow     ReasoningEffort = "low"
	ReasoningEffortMinimal ReasoningEffort = "minimal"
	ReasoningEffortNone    ReasoningEffort = "none"
)

// ProviderSortStrategy defines the sorting strategy for provider routing.
type ProviderSortStrategy string

const (
	ProviderSortPrice      ProviderSortStrategy = "price"
	ProviderSortThroughput ProviderSortStrategy = "throughput"
	ProviderSortLatency    ProviderSortStrategy = "latency"
)

// ProviderRouting configures OpenRouter's provider routing preferences.
type ProviderRouting struct {
	Order  []string             // Preferred provider order
	Only   []string             // Only use these providers
	Ignore []string             // Ignore these providers
	Sort   ProviderSortStrategy // Sorting strategy when order is not specified
}

// Config configures OpenRouter API provider.
type Config struct {
	base.Config

	ReasoningEffort ReasoningEffort
	ProviderRouting *ProviderRouting
	ResponseFormat  cc.ResponseFormat
}

// Option is a functional option for this provider.
type Option func(*Config)

// WithAPIKey sets the API key.
func WithAPIKey(key string) Option {
	return func(c *Config) { c.APIKey = key }
}

// WithBaseURL overrides https://openrouter.ai/api/v1.
func WithBaseURL(url string) Option {
	return func(c *Config) { c.BaseURL = url }
}

// WithMaxOutputTokens sets the max output tokens.
func WithMaxOutputTokens(n int) Option {
	return func(c *Config) { c.MaxOutputTokens = &n }
}

// WithDebug enables JSONL debug logging to the specified file path.
func WithDebug(path string) Option {
	return func(c *Config) { c.DebugPath = path }
}

// WithResponseFormat selects json_schema (default) or json_object.
func WithResponseFormat(f cc.ResponseFormat) Option {
	return func(c *Config) { c.ResponseFormat = f }
}

// WithReasoningEffort sets the reasoning effort level for reasoning models.
func WithReasoningEffort(effort ReasoningEffort) Option {
	return func(c *Config) { c.ReasoningEffort = effort }
}

// WithProviderSorting sets the provider sorting strategy.
func WithProviderSorting(strategy ProviderSortStrategy) Option {
	return func(c *Config) {
		if c.ProviderRouting == nil {
			c.ProviderRouting = &ProviderRouting{}
		}
		c.ProviderRouting.Sort = strategy
	}
}

// WithProviderOnly restricts to only use the specified providers.
func WithProviderOnly(providers ...string) Option {
	return func(c *Config) {
		if c.ProviderRouting == nil {
			c.ProviderRouting = &ProviderRouting{}
		}
		c.ProviderRouting.Only = providers
	}
}

// WithProviderOrder sets the preferred provider order.
func WithProviderOrder(providers ...string) Option {
	return func(c *Config) {
		if c.ProviderRouting == nil {
			c.ProviderRouting = &ProviderRouting{}
		}
		c.ProviderRouting.Order = providers
	}
}

// WithProviderIgnore sets providers to ignore.
func WithProviderIgnore(providers ...string) Option {
	return func(c *Config) {
		if c.ProviderRouting == nil {
			c.ProviderRouting = &ProviderRouting{}
		}
		c.ProviderRouting.Ignore = providers
	}
}

// New creates a Provider using the OpenRouter chat completions endpoint.
// It reads OPENROUTER_API_KEY from environment if not explicitly set.
func New(model string, opts ...Option) agent.Provider {
	cfg := Config{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("OPENROUTER_API_KEY")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	return cc.New(model, chatOptions(cfg)...)
}

func chatOptions(cfg Config) []cc.Option {
	opts := []cc.Option{
		cc.WithAPIKey(cfg.APIKey),
		cc.WithBaseURL(cfg.BaseURL),
		cc.WithDebug(cfg.DebugPath),
	}
	if cfg.MaxOutputTokens != nil {
		opts = append(opts, cc.WithMaxOutputTokens(*cfg.MaxOutputTokens))
	}
	if cfg.ResponseFormat != "" {
		opts = append(opts, cc.WithResponseFormat(cfg.ResponseFormat))
	}
	for k, v := range cfg.ExtraHeaders {
		opts = append(opts, cc.WithExtraHeader(k, v))
	}

	if cfg.ReasoningEffort != "" {
		opts = append(opts, cc.WithExtraBody("reasoning", map[string]any{
			"effort": string(cfg.ReasoningEffort),
		}))
	}

	if cfg.ProviderRouting != nil {
		provider := make(map[string]any)
		if len(cfg.ProviderRouting.Order) > 0 {
			provider["order"] = cfg.ProviderRouting.Order
		}
		if len(cfg.ProviderRouting.Only) > 0 {
			provider["only"] = cfg.ProviderRouting.Only
		}
		if len(cfg.ProviderRouting.Ignore) > 0 {
			provider["ignore"] = cfg.ProviderRouting.Ignore
		}
		if cfg.ProviderRouting.Sort != "" {
			provider["sort"] = string(cfg.ProviderRouting.Sort)
		}
		if len(provider) > 0 {
			// structured output needs a provider that honours response_format
			provider["require_parameters"] = true
			opts = append(opts, cc.WithExtraBody("provider", provider))
		}
	}

	for k, v := range cfg.ExtraBody {
		opts = append(opts, cc.WithExtraBody(k, v))
	}
	return opts
}
