package openai

// Role identifies the author of a conversation message.
type Role string

// Roles as they appear on the wire.
const (
	RoleSystem    Role = "system"
	RoleAssistant Role = "assistant"
	RoleUser      Role = "user"
	RoleTool      Role = "tool"
)

// FunctionCallFn is the function portion of a tool call: the target
// function name and its arguments as opaque JSON text.
type FunctionCallFn struct {
	Arguments string `json:"arguments"`
	Name      string `json:"name"`
}

// FunctionCall is a single tool invocation requested by the model.
type FunctionCall struct {
	Function FunctionCallFn `json:"function"`
	ID       string         `json:"id"`
	Type     string         `json:"type"`
}

// Message is a single turn in a conversation. A message carries either
// text content or a set of tool call requests, never both; use the
// constructors below rather than building one by hand. Optional fields
// are omitted entirely from the wire form when unset, never sent as null.
type Message struct {
	Role       Role           `json:"role"`
	Content    *string        `json:"content,omitempty"`
	ToolCallID string         `json:"tool_call_id,omitempty"`
	ToolCalls  []FunctionCall `json:"tool_calls,omitempty"`
}

// NewMessage creates a content-bearing message for the given role.
func NewMessage(role Role, content string) Message {
	return Message{Role: role, Content: &content}
}

// NewToolCallRequest creates the assistant message that echoes the tool
// calls requested by the model, as required before tool results can be
// fed back into the conversation.
func NewToolCallRequest(calls []FunctionCall) Message {
	return Message{Role: RoleAssistant, ToolCalls: calls}
}

// NewToolCallResponse creates the tool-role message carrying a tool's
// result, correlated to the originating request by toolCallID.
func NewToolCallResponse(content, toolCallID string) Message {
	return Message{Role: RoleTool, Content: &content, ToolCallID: toolCallID}
}

// Text returns the message content, or "" when the message carries none.
func (m Message) Text() string {
	if m.Content == nil {
		return ""
	}
	return *m.Content
}
