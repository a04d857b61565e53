package agent

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Registry maps tool names to tools in registration order.
type Registry struct {
	mu     sync.RWMutex
	order  []string
	tools  map[string]Tool
	specs  map[string]ToolSpec
	logger *slog.Logger
}

func NewRegistry(tools ...Tool) (*Registry, error) {
	r := &Registry{
		tools:  make(map[string]Tool),
		specs:  make(map[string]ToolSpec),
		logger: slog.Default(),
	}
	for _, t := range tools {
		if err := r.Register(t); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// SetLogger replaces the logger used for invocation records.
func (r *Registry) SetLogger(l *slog.Logger) {
	if l == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logger = l
}

// Register adds a tool. A parameter named "ctx" is treated as the dependency
// slot: it sets RequiresContext and is dropped from the advertised parameters.
func (r *Registry) Register(tool Tool) error {
	if tool == nil {
		return fmt.Errorf("agent: tool is nil")
	}
	spec := normalizeSpec(tool.Spec())
	if spec.Name == "" {
		return fmt.Errorf("agent: tool name is empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[spec.Name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateTool, spec.Name)
	}
	r.order = append(r.order, spec.Name)
	r.tools[spec.Name] = tool
	r.specs[spec.Name] = spec
	return nil
}

func normalizeSpec(spec ToolSpec) ToolSpec {
	params := make([]Param, 0, len(spec.Params))
	for _, p := range spec.Params {
		if p.Name == contextParam {
			spec.RequiresContext = true
			continue
		}
		if p.Type == "" {
			p.Type = "any"
		}
		params = append(params, p)
	}
	spec.Params = params
	if spec.Returns == "" {
		spec.Returns = "any"
	}
	return spec
}

// Spec returns the normalized descriptor of a registered tool.
func (r *Registry) Spec(name string) (ToolSpec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	spec, ok := r.specs[name]
	return spec, ok
}

// Specs returns all descriptors in registration order.
func (r *Registry) Specs() []ToolSpec {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]ToolSpec, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.specs[name])
	}
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

type paramDescriptor struct {
	Type     string `json:"type"`
	Default  any    `json:"default"`
	Required bool   `json:"required"`
}

// toolDescriptor keeps parameters in declaration order.
type toolDescriptor struct {
	Name            string                                          `json:"name"`
	Doc             *string                                         `json:"doc"`
	Parameters      *orderedmap.OrderedMap[string, paramDescriptor] `json:"parameters"`
	ReturnType      string                                          `json:"return_type"`
	RequiresContext bool                                            `json:"requires_context"`
}

// Describe renders the tool catalog as the JSON array embedded in the system prompt.
func (r *Registry) Describe() (string, error) {
	specs := r.Specs()
	descs := make([]toolDescriptor, 0, len(specs))
	for _, spec := range specs {
		d := toolDescriptor{
			Name:            spec.Name,
			Parameters:      orderedmap.New[string, paramDescriptor](),
			ReturnType:      spec.Returns,
			RequiresContext: spec.RequiresContext,
		}
		if spec.Doc != "" {
			doc := spec.Doc
			d.Doc = &doc
		}
		for _, p := range spec.Params {
			d.Parameters.Set(p.Name, paramDescriptor{Type: p.Type, Default: p.Default, Required: p.Required})
		}
		descs = append(descs, d)
	}
	data, err := json.MarshalIndent(descs, "", "    ")
	if err != nil {
		return "", fmt.Errorf("agent: describe tools: %w", err)
	}
	return string(data), nil
}
