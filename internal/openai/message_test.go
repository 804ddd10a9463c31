package openai

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessage_New(t *testing.T) {
	data, err := json.Marshal(NewMessage(RoleUser, "Hello world"))
	require.NoError(t, err)
	assert.Equal(t, `{"role":"user","content":"Hello world"}`, string(data))

	data, err = json.Marshal(NewMessage(RoleAssistant, "I can help!"))
	require.NoError(t, err)
	assert.Equal(t, `{"role":"assistant","content":"I can help!"}`, string(data))
}

func TestMessage_EmptyContentIsNotOmitted(t *testing.T) {
	// An empty string is still content; only an absent field is dropped.
	data, err := json.Marshal(NewMessage(RoleAssistant, ""))
	require.NoError(t, err)
	assert.Equal(t, `{"role":"assistant","content":""}`, string(data))
}

func TestMessage_NewToolCallRequest(t *testing.T) {
	msg := NewToolCallRequest([]FunctionCall{{
		Function: FunctionCallFn{
			Arguments: `{"query":"books"}`,
			Name:      "search_notes",
		},
		ID:   "call_test123",
		Type: "function",
	}})

	data, err := json.Marshal(msg)
	require.NoError(t, err)
	assert.Equal(t,
		`{"role":"assistant","tool_calls":[{"function":{"arguments":"{\"query\":\"books\"}","name":"search_notes"},"id":"call_test123","type":"function"}]}`,
		string(data))
}

func TestMessage_NewToolCallResponse(t *testing.T) {
	msg := NewToolCallResponse("Found 3 books", "call_test123")

	data, err := json.Marshal(msg)
	require.NoError(t, err)
	assert.Equal(t,
		`{"role":"tool","content":"Found 3 books","tool_call_id":"call_test123"}`,
		string(data))
}

func TestMessage_Text(t *testing.T) {
	assert.Equal(t, "hi", NewMessage(RoleUser, "hi").Text())
	assert.Equal(t, "", NewToolCallRequest(nil).Text())
}

func TestMessage_RoundTrip(t *testing.T) {
	original := NewToolCallResponse("result", "call_1")
	data, err := json.Marshal(original)
	require.NoError(t, err)

	var decoded Message
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, RoleTool, decoded.Role)
	assert.Equal(t, "result", decoded.Text())
	assert.Equal(t, "call_1", decoded.ToolCallID)
	assert.Nil(t, decoded.ToolCalls)
}

func TestFunctionCall_Deserialization(t *testing.T) {
	raw := `{
		"function": {"arguments":"{\"query\":\"books\"}","name":"search_notes"},
		"id":"call_test123",
		"type":"function"
	}`
	var fc FunctionCall
	require.NoError(t, json.Unmarshal([]byte(raw), &fc))
	assert.Equal(t, "call_test123", fc.ID)
	assert.Equal(t, "function", fc.Type)
	assert.Equal(t, "search_notes", fc.Function.Name)
	assert.Equal(t, `{"query":"books"}`, fc.Function.Arguments)
}

func TestToolDefinition_Serialization(t *testing.T) {
	def := NewFunctionDefinition(FunctionDef{
		Name:        "search_notes",
		Description: "Search through notes",
		Parameters: Parameters{
			Type: "object",
			Properties: map[string]Property{
				"query": {Type: "string", Description: "Search query"},
			},
			Required: []string{"query"},
		},
		Strict: true,
	})

	data, err := json.Marshal(def)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "function", decoded["type"])

	fn := decoded["function"].(map[string]any)
	assert.Equal(t, "search_notes", fn["name"])
	assert.Equal(t, true, fn["strict"])

	params := fn["parameters"].(map[string]any)
	assert.Equal(t, "object", params["type"])
	assert.Equal(t, []any{"query"}, params["required"])
	assert.Equal(t, false, params["additionalProperties"])
}
