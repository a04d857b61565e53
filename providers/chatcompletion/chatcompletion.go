package chatcompletion

import (
	"context"
	"errors"
	"fmt"

	"github.com/inspirepan/agent"
	"github.com/inspirepan/agent/providers/base"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// ResponseFormat selects how the step shape is enforced.
type ResponseFormat string

const (
	// FormatJSONSchema sends the strict JSON Schema of the shape (structured output).
	FormatJSONSchema ResponseFormat = "json_schema"
	// FormatJSONObject asks for any JSON object and describes the shape in the prompt.
	// Useful for OpenAI-compatible endpoints without structured output.
	FormatJSONObject ResponseFormat = "json_object"
)

// Config configures OpenAI Chat Completions API provider.
type Config struct {
	base.Config

	ResponseFormat ResponseFormat
}

// Option is a functional option for this provider.
type Option func(*Config)

// WithAPIKey sets the API key.
func WithAPIKey(key string) Option {
	return func(c *Config) { c.APIKey = key }
}

// WithBaseURL sets a custom base URL.
func WithBaseURL(url string) Option {
	return func(c *Config) { c.BaseURL = url }
}

// WithMaxOutputTokens sets the max output tokens.
func WithMaxOutputTokens(n int) Option {
	return func(c *Config) { c.MaxOutputTokens = &n }
}

// WithMaxRetries lets the SDK retry failed requests n times.
func WithMaxRetries(n int) Option {
	return func(c *Config) { c.MaxRetries = &n }
}

// WithDebug enables JSONL debug logging to the specified file path.
func WithDebug(path string) Option {
	return func(c *Config) { c.DebugPath = path }
}

// WithResponseFormat overrides the default FormatJSONSchema.
func WithResponseFormat(f ResponseFormat) Option {
	return func(c *Config) { c.ResponseFormat = f }
}

// WithExtraHeader adds a custom header to requests.
func WithExtraHeader(key, value string) Option {
	return func(c *Config) {
		if c.ExtraHeaders == nil {
			c.ExtraHeaders = make(map[string]string)
		}
		c.ExtraHeaders[key] = value
	}
}

// WithExtraBody adds a custom field to the request body.
func WithExtraBody(key string, value any) Option {
	return func(c *Config) {
		if c.ExtraBody == nil {
			c.ExtraBody = make(map[string]any)
		}
		c.ExtraBody[key] = value
	}
}

// New creates a Provider using OpenAI Chat Completions API.
// It reads OPENAI_API_KEY and OPENAI_BASE_URL from environment if not explicitly set.
func New(model string, opts ...Option) agent.Provider {
	cfg := Config{ResponseFormat: FormatJSONSchema}
	for _, opt := range opts {
		opt(&cfg)
	}
	base.ApplyEnvDefaults(&cfg.Config, "OPENAI_API_KEY", "OPENAI_BASE_URL")

	clientOpts := []option.RequestOption{option.WithMaxRetries(cfg.Retries())}
	if cfg.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(cfg.APIKey))
	}
	if cfg.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(cfg.BaseURL))
	}
	for k, v := range cfg.ExtraHeaders {
		clientOpts = append(clientOpts, option.WithHeader(k, v))
	}
	for k, v := range cfg.ExtraBody {
		clientOpts = append(clientOpts, option.WithJSONSet(k, v))
	}
	client := openai.NewClient(clientOpts...)
	return &provider{model: model, cfg: cfg, client: client}
}

type provider struct {
	model  string
	cfg    Config
	client openai.Client
}

func (p *provider) Complete(ctx context.Context, req agent.CompletionRequest) (string, error) {
	params := BuildParams(req, p.cfg.ResponseFormat)
	params.Model = p.model
	if p.cfg.MaxOutputTokens != nil {
		params.MaxTokens = openai.Int(int64(*p.cfg.MaxOutputTokens))
	}

	debug, err := base.NewDebugLogger(p.cfg.DebugPath, "chatcompletion", p.model)
	if err != nil {
		return "", err
	}
	defer debug.Close()
	_ = debug.Record("request", params)

	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		_ = debug.Record("error", err.Error())
		return "", err
	}
	_ = debug.Record("response", resp.RawJSON())

	if len(resp.Choices) == 0 {
		return "", errors.New("chatcompletion: response has no choices")
	}
	msg := resp.Choices[0].Message
	if msg.Refusal != "" {
		return "", fmt.Errorf("chatcompletion: model refused: %s", msg.Refusal)
	}
	return msg.Content, nil
}
