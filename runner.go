package agent

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/google/uuid"
)

// Config holds the loop settings applied by Option.
type Config struct {
	Temperature float64
	// MaxTurns bounds the number of model calls per run. Zero means unbounded.
	MaxTurns     int
	Template     string
	Contributors []Contributor
	Logger       *slog.Logger
}

// Option is a functional option for Agent.
type Option func(*Config)

// WithTemperature sets the sampling temperature sent with every model call.
func WithTemperature(t float64) Option {
	return func(c *Config) { c.Temperature = t }
}

// WithMaxTurns stops a run with ErrMaxTurnsExceeded after n model calls
// without a final answer. n <= 0 leaves the loop unbounded.
func WithMaxTurns(n int) Option {
	return func(c *Config) { c.MaxTurns = n }
}

// WithTemplate replaces DefaultTemplate.
func WithTemplate(template string) Option {
	return func(c *Config) { c.Template = template }
}

// WithContributors appends system prompt contributors.
func WithContributors(cs ...Contributor) Option {
	return func(c *Config) { c.Contributors = append(c.Contributors, cs...) }
}

// WithInstructions appends fixed caller instructions to the system prompt.
func WithInstructions(text string) Option {
	return func(c *Config) { c.Contributors = append(c.Contributors, StaticInstructions(text)) }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) { c.Logger = l }
}

// Agent runs tasks against a provider with a fixed tool registry.
type Agent struct {
	provider Provider
	registry *Registry
	cfg      Config
}

// New creates an Agent. A nil registry is replaced by an empty one.
func New(provider Provider, reg *Registry, opts ...Option) (*Agent, error) {
	if provider == nil {
		return nil, ErrNoProvider
	}
	cfg := Config{Template: DefaultTemplate}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if reg == nil {
		reg, _ = NewRegistry()
	}
	return &Agent{provider: provider, registry: reg, cfg: cfg}, nil
}

// Registry returns the tool registry the agent invokes.
func (a *Agent) Registry() *Registry { return a.registry }

// Stream assembles the system prompt and returns a lazy stream over the run.
// Each call to Next performs at most one model turn.
func (a *Agent) Stream(ctx context.Context, task string, dep any) (*RunStream, error) {
	system, err := AssemblePrompt(ctx, a.cfg.Template, a.registry, a.cfg.Contributors, dep)
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	logger := a.cfg.Logger.With("run_id", runID)
	logger.Info("task", "task", task, "tools", a.registry.Len())

	return &RunStream{
		id:     runID,
		agent:  a,
		conv:   NewConversation(system, task),
		dep:    dep,
		logger: logger,
	}, nil
}

// Run executes task until the model produces a final answer and returns it.
func (a *Agent) Run(ctx context.Context, task string, dep any) (string, error) {
	stream, err := a.Stream(ctx, task, dep)
	if err != nil {
		return "", err
	}
	for {
		_, err := stream.Next(ctx)
		if err == nil {
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}
		return "", err
	}
	return stream.Result()
}
