package agent

import "context"

// CompletionRequest is the provider-agnostic input of one model call.
type CompletionRequest struct {
	// Messages is the full transcript, system prompt first.
	Messages    []Message
	Shape       Shape
	Temperature float64
}

// Provider performs one blocking request/response round trip and returns the
// raw text expected to decode into req.Shape.
type Provider interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context, req CompletionRequest) (string, error)

func (f ProviderFunc) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	return f(ctx, req)
}
