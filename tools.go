package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
)

// contextParam is the parameter name that marks a tool as needing the run dependency.
const contextParam = "ctx"

// Param declares one named tool parameter.
type Param struct {
	Name     string
	Type     string
	Default  any
	Required bool
}

// ToolSpec is the declarative tool descriptor advertised to the model.
type ToolSpec struct {
	Name    string
	Doc     string
	Params  []Param
	Returns string
	// RequiresContext makes Invoke pass the run dependency to Execute.
	RequiresContext bool
}

// Tool is an executable tool.
type Tool interface {
	Spec() ToolSpec
	Execute(ctx context.Context, args Args, dep any) (any, error)
}

// ToolFunc is the function form of Tool.Execute.
type ToolFunc func(ctx context.Context, args Args, dep any) (any, error)

// NewTool binds a spec to a function.
func NewTool(spec ToolSpec, fn ToolFunc) Tool {
	return funcTool{spec: spec, fn: fn}
}

type funcTool struct {
	spec ToolSpec
	fn   ToolFunc
}

func (t funcTool) Spec() ToolSpec { return t.spec }

func (t funcTool) Execute(ctx context.Context, args Args, dep any) (any, error) {
	if t.fn == nil {
		return nil, fmt.Errorf("tool %q has no function", t.spec.Name)
	}
	return t.fn(ctx, args, dep)
}

// Args holds decoded call parameters. Numbers arrive as json.Number.
type Args map[string]any

func (a Args) String(name string) (string, error) {
	v, ok := a[name]
	if !ok {
		return "", fmt.Errorf("missing argument %q", name)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("argument %q: expected string, got %T", name, v)
	}
	return s, nil
}

func (a Args) Int(name string) (int64, error) {
	v, ok := a[name]
	if !ok {
		return 0, fmt.Errorf("missing argument %q", name)
	}
	switch n := v.(type) {
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, fmt.Errorf("argument %q: %w", name, err)
		}
		return i, nil
	case int:
		return int64(n), nil
	case int64:
		return n, nil
	case float64:
		if n != float64(int64(n)) {
			return 0, fmt.Errorf("argument %q: %v is not an integer", name, n)
		}
		return int64(n), nil
	case string:
		i, err := strconv.ParseInt(n, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("argument %q: %w", name, err)
		}
		return i, nil
	default:
		return 0, fmt.Errorf("argument %q: expected integer, got %T", name, v)
	}
}

func (a Args) Float(name string) (float64, error) {
	v, ok := a[name]
	if !ok {
		return 0, fmt.Errorf("missing argument %q", name)
	}
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, fmt.Errorf("argument %q: %w", name, err)
		}
		return f, nil
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("argument %q: expected number, got %T", name, v)
	}
}

func (a Args) Bool(name string) (bool, error) {
	v, ok := a[name]
	if !ok {
		return false, fmt.Errorf("missing argument %q", name)
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("argument %q: expected bool, got %T", name, v)
	}
	return b, nil
}

// Decode re-encodes the arguments into a struct tagged for encoding/json.
func (a Args) Decode(into any) error {
	data, err := json.Marshal(a)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, into)
}
