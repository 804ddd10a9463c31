package openai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soyeahso/valet/internal/logging"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "test-key", "test-model", logging.Nop())
}

func TestComplete_Content(t *testing.T) {
	var gotBody completionPayload
	var gotAuth string

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")

		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, &gotBody))

		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"Hello there!"}}]}`))
	})

	turn, err := client.Complete(context.Background(),
		[]Message{NewMessage(RoleUser, "Hi")}, nil)
	require.NoError(t, err)

	require.NotNil(t, turn.Content)
	assert.Equal(t, "Hello there!", *turn.Content)
	assert.Empty(t, turn.ToolCalls)

	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "test-model", gotBody.Model)
	require.Len(t, gotBody.Messages, 1)
	assert.Equal(t, RoleUser, gotBody.Messages[0].Role)
	assert.False(t, gotBody.Stream)
}

func TestComplete_ToolCalls(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[{"message":{
			"role":"assistant",
			"tool_calls":[
				{"id":"call_1","type":"function","function":{"name":"search_notes","arguments":"{\"query\":\"books\"}"}},
				{"id":"call_2","type":"function","function":{"name":"memory","arguments":"{}"}}
			]
		}}]}`))
	})

	turn, err := client.Complete(context.Background(),
		[]Message{NewMessage(RoleUser, "find my books")}, nil)
	require.NoError(t, err)

	assert.Nil(t, turn.Content)
	require.Len(t, turn.ToolCalls, 2)
	assert.Equal(t, "call_1", turn.ToolCalls[0].ID)
	assert.Equal(t, "search_notes", turn.ToolCalls[0].Function.Name)
	assert.Equal(t, `{"query":"books"}`, turn.ToolCalls[0].Function.Arguments)
	assert.Equal(t, "call_2", turn.ToolCalls[1].ID)
}

func TestComplete_SendsToolDefinitions(t *testing.T) {
	var gotTools int
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var payload completionPayload
		require.NoError(t, json.Unmarshal(raw, &payload))
		gotTools = len(payload.Tools)
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"ok"}}]}`))
	})

	defs := []ToolDefinition{NewFunctionDefinition(FunctionDef{Name: "search_notes"})}
	_, err := client.Complete(context.Background(), nil, defs)
	require.NoError(t, err)
	assert.Equal(t, 1, gotTools)
}

func TestComplete_APIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"invalid api key"}`))
	})

	_, err := client.Complete(context.Background(), nil, nil)
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Code)
	assert.Contains(t, apiErr.Body, "invalid api key")
}

func TestComplete_MalformedBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json at all`))
	})

	_, err := client.Complete(context.Background(), nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed response body")
}

func TestComplete_MissingMessage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	})

	_, err := client.Complete(context.Background(), nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing choices[0].message")
}

func TestComplete_ToolCallMissingName(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[{"message":{
			"role":"assistant",
			"tool_calls":[{"id":"call_1","type":"function","function":{"arguments":"{}"}}]
		}}]}`))
	})

	_, err := client.Complete(context.Background(), nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tool call missing name")
}

func TestComplete_EmptyMessage(t *testing.T) {
	// A message with neither content nor tool calls is not a wire error.
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant"}}]}`))
	})

	turn, err := client.Complete(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Nil(t, turn.Content)
	assert.Empty(t, turn.ToolCalls)
}

func TestNewClient_TrimsTrailingSlash(t *testing.T) {
	client := NewClient("http://localhost:1234/", "", "m", logging.Nop())
	assert.Equal(t, "http://localhost:1234", client.hostname)
}
