package anthropic

import (
	"context"
	"errors"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/inspirepan/agent"
	"github.com/inspirepan/agent/providers/base"
)

const defaultMaxOutputTokens = 4096

// continuePrompt closes a transcript that ends on an assistant turn, which the
// Messages API would otherwise treat as a prefill to extend.
const continuePrompt = "Continue with the next step."

// Config configures Anthropic Messages API provider.
type Config struct {
	base.Config
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

// WithExtraHeader adds a custom header to requests.
func WithExtraHeader(key, value string) Option {
	return func(c *Config) {
		if c.ExtraHeaders == nil {
			c.ExtraHeaders = make(map[string]string)
		}
		c.ExtraHeaders[key] = value
	}
}

// New creates a Provider using Anthropic Messages API.
// It reads ANTHROPIC_API_KEY and ANTHROPIC_BASE_URL from environment if not explicitly set.
// The step shape is enforced through the system prompt.
func New(model string, opts ...Option) agent.Provider {
	cfg := Config{}
	for _, opt := range opts {
		opt(&cfg)
	}
	base.ApplyEnvDefaults(&cfg.Config, "ANTHROPIC_API_KEY", "ANTHROPIC_BASE_URL")

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
	client := anthropic.NewClient(clientOpts...)
	return &provider{model: model, cfg: cfg, client: client}
}

type provider struct {
	model  string
	cfg    Config
	client anthropic.Client
}

func (p *provider) Complete(ctx context.Context, req agent.CompletionRequest) (string, error) {
	params := BuildParams(req)
	params.Model = anthropic.Model(p.model)
	params.MaxTokens = defaultMaxOutputTokens
	if p.cfg.MaxOutputTokens != nil {
		params.MaxTokens = int64(*p.cfg.MaxOutputTokens)
	}

	debug, err := base.NewDebugLogger(p.cfg.DebugPath, "anthropic", p.model)
	if err != nil {
		return "", err
	}
	defer debug.Close()
	_ = debug.Record("request", params)

	msg, err := p.client.Messages.New(ctx, params)
	if err != nil {
		_ = debug.Record("error", err.Error())
		return "", err
	}
	_ = debug.Record("response", msg.RawJSON())

	var text strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return "", errors.New("anthropic: response has no text content")
	}
	return StripCodeFence(text.String()), nil
}

// BuildParams converts an agent request to Messages API params. System
// messages become the system block followed by the shape instructions;
// consecutive messages of the same role are merged and the request always
// ends on a user turn.
func BuildParams(req agent.CompletionRequest) anthropic.MessageNewParams {
	params := anthropic.MessageNewParams{
		Temperature: anthropic.Float(req.Temperature),
	}

	var system []string
	var role agent.Role
	var pending []string
	flush := func() {
		if len(pending) == 0 {
			return
		}
		block := anthropic.NewTextBlock(strings.Join(pending, "\n\n"))
		if role == agent.RoleAssistant {
			params.Messages = append(params.Messages, anthropic.NewAssistantMessage(block))
		} else {
			params.Messages = append(params.Messages, anthropic.NewUserMessage(block))
		}
		pending = nil
	}

	for _, msg := range req.Messages {
		if msg.Role == agent.RoleSystem {
			system = append(system, msg.Content)
			continue
		}
		if msg.Role != role {
			flush()
			role = msg.Role
		}
		pending = append(pending, msg.Content)
	}
	if role == agent.RoleAssistant {
		flush()
		role = agent.RoleUser
		pending = append(pending, continuePrompt)
	}
	flush()

	system = append(system, agent.ShapeInstructions(req.Shape))
	params.System = []anthropic.TextBlockParam{{Text: strings.Join(system, "\n\n")}}
	return params
}

// StripCodeFence removes a Markdown code fence wrapped around the whole reply.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") || !strings.HasSuffix(s, "```") || len(s) < 6 {
		return s
	}
	s = strings.TrimSuffix(strings.TrimPrefix(s, "```"), "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 && !strings.Contains(s[:i], "{") {
		s = s[i+1:]
	}
	return strings.TrimSpace(s)
}
