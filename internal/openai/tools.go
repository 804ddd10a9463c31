package openai

import "context"

// Tool is a capability the model can invoke during a conversation.
// Implementations live outside this package; the wire layer needs only
// the name, the schema, and a way to run the tool.
type Tool interface {
	// Name returns the tool's unique function name.
	Name() string

	// Definition returns the wire-ready schema advertised to the model.
	Definition() ToolDefinition

	// Invoke runs the tool with the raw JSON argument text produced by
	// the model and returns the result text to feed back.
	Invoke(ctx context.Context, args string) (string, error)
}

// ToolDefinition is the schema entry sent in a completion request's
// "tools" list.
type ToolDefinition struct {
	Type     string      `json:"type"` // always "function"
	Function FunctionDef `json:"function"`
}

// FunctionDef describes a callable function to the model.
type FunctionDef struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Parameters  Parameters `json:"parameters"`
	Strict      bool       `json:"strict"`
}

// Parameters is the JSON Schema object describing a function's arguments.
type Parameters struct {
	Type                 string              `json:"type"`
	Properties           map[string]Property `json:"properties"`
	Required             []string            `json:"required"`
	AdditionalProperties bool                `json:"additionalProperties"`
}

// Property describes one argument field.
type Property struct {
	Type        string   `json:"type"`
	Description string   `json:"description"`
	Enum        []string `json:"enum,omitempty"`
}

// NewFunctionDefinition wraps a function schema in the "function" tool type.
func NewFunctionDefinition(fn FunctionDef) ToolDefinition {
	return ToolDefinition{Type: "function", Function: fn}
}

// Definitions collects the wire-ready schemas for a set of tools,
// preserving order.
func Definitions(tools []Tool) []ToolDefinition {
	if len(tools) == 0 {
		return nil
	}
	defs := make([]ToolDefinition, 0, len(tools))
	for _, t := range tools {
		defs = append(defs, t.Definition())
	}
	return defs
}
