package chat

import (
	"fmt"

	"github.com/soyeahso/valet/internal/openai"
)

// Registry maps tool names to instances. A registry is owned by one chat
// session and is read-only once the session starts running.
type Registry struct {
	names []string
	tools map[string]openai.Tool
}

// NewRegistry creates an empty tool registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]openai.Tool)}
}

// Register adds a tool. Tool names must be unique within a registry.
func (r *Registry) Register(t openai.Tool) error {
	name := t.Name()
	if _, ok := r.tools[name]; ok {
		return fmt.Errorf("tool already registered: %s", name)
	}
	r.names = append(r.names, name)
	r.tools[name] = t
	return nil
}

// Get returns a tool by exact name.
func (r *Registry) Get(name string) (openai.Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// Definitions returns wire-ready schemas in registration order.
func (r *Registry) Definitions() []openai.ToolDefinition {
	if len(r.names) == 0 {
		return nil
	}
	defs := make([]openai.ToolDefinition, 0, len(r.names))
	for _, name := range r.names {
		defs = append(defs, r.tools[name].Definition())
	}
	return defs
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	return len(r.tools)
}
