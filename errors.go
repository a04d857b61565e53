package agent

import (
	"errors"
	"fmt"
)

var (
	ErrNoProvider       = errors.New("agent: provider is required")
	ErrNoRegistry       = errors.New("agent: registry is required")
	ErrToolNotFound     = errors.New("agent: tool not found")
	ErrDuplicateTool    = errors.New("agent: tool already registered")
	ErrMaxTurnsExceeded = errors.New("agent: max turns exceeded")
	ErrRunIncomplete    = errors.New("agent: run has not produced a final answer")
)

// DecodeError reports model output that does not match the requested step shape.
type DecodeError struct {
	Shape  Shape
	Field  string
	Reason string
	Raw    string
}

func (e *DecodeError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("agent: decode %s: %s", e.Shape, e.Reason)
	}
	return fmt.Sprintf("agent: decode %s: field %q: %s", e.Shape, e.Field, e.Reason)
}

// ToolInvocationError wraps every failure raised while resolving or running a tool.
type ToolInvocationError struct {
	Tool string
	Err  error
}

func (e *ToolInvocationError) Error() string {
	return fmt.Sprintf("agent: invoke %q: %v", e.Tool, e.Err)
}

func (e *ToolInvocationError) Unwrap() error { return e.Err }
