package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

// Invoke decodes paramsJSON, checks it against the tool's declared parameters,
// fills defaults and runs the tool. dep reaches the tool only when its spec
// requires context. Every failure is returned as a *ToolInvocationError.
func (r *Registry) Invoke(ctx context.Context, name, paramsJSON string, dep any) (string, error) {
	r.mu.RLock()
	tool, ok := r.tools[name]
	spec := r.specs[name]
	logger := r.logger
	r.mu.RUnlock()

	if !ok {
		return "", &ToolInvocationError{Tool: name, Err: ErrToolNotFound}
	}

	args, err := decodeArgs(paramsJSON)
	if err != nil {
		return "", &ToolInvocationError{Tool: name, Err: fmt.Errorf("malformed parameters: %w", err)}
	}
	if err := bindArgs(spec, args); err != nil {
		return "", &ToolInvocationError{Tool: name, Err: err}
	}

	var injected any
	if spec.RequiresContext {
		injected = dep
	}

	start := time.Now()
	res, err := tool.Execute(ctx, args, injected)
	logger.Debug("tool executed",
		"tool", name,
		"duration_ms", time.Since(start).Milliseconds(),
		"is_error", err != nil,
	)
	if err != nil {
		return "", &ToolInvocationError{Tool: name, Err: err}
	}
	return formatResult(res), nil
}

func decodeArgs(paramsJSON string) (Args, error) {
	trimmed := strings.TrimSpace(paramsJSON)
	if trimmed == "" {
		return Args{}, nil
	}

	dec := json.NewDecoder(strings.NewReader(trimmed))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, errors.New("trailing data after JSON object")
	}
	switch v := raw.(type) {
	case map[string]any:
		return Args(v), nil
	case nil:
		return Args{}, nil
	default:
		return nil, fmt.Errorf("expected JSON object, got %T", raw)
	}
}

func bindArgs(spec ToolSpec, args Args) error {
	declared := make(map[string]struct{}, len(spec.Params))
	for _, p := range spec.Params {
		declared[p.Name] = struct{}{}
		if _, present := args[p.Name]; present {
			continue
		}
		if p.Required {
			return fmt.Errorf("missing required parameter %q", p.Name)
		}
		args[p.Name] = p.Default
	}
	for name := range args {
		if _, ok := declared[name]; !ok {
			return fmt.Errorf("unexpected parameter %q", name)
		}
	}
	return nil
}

// formatResult converts a tool return value to the text placed in the transcript.
func formatResult(v any) string {
	switch r := v.(type) {
	case nil:
		return "null"
	case string:
		return r
	case []byte:
		return string(r)
	case json.RawMessage:
		return string(bytes.TrimSpace(r))
	case error:
		return r.Error()
	case fmt.Stringer:
		return r.String()
	}
	return fmt.Sprint(v)
}
