// Package openai implements the OpenAI-compatible chat completion wire
// protocol: the message model, the tool (function calling) contract, and
// buffered plus streaming completion clients. It is deliberately a direct
// HTTP implementation rather than an SDK wrapper so it works against any
// compatible endpoint, local or commercial.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/soyeahso/valet/internal/logging"
)

// Request timeouts are generous because model generation can take minutes.
const (
	completeTimeout = 10 * time.Minute
	streamTimeout   = 5 * time.Minute
)

// APIError is a non-success response from the completion endpoint.
type APIError struct {
	Code int
	Body string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (%d): %s", e.Code, e.Body)
}

// Turn is the decision-relevant slice of a completion response: the first
// choice's message. It carries either the assistant's text content or the
// ordered tool calls the model wants executed.
type Turn struct {
	Content   *string
	ToolCalls []FunctionCall
}

// Client talks to an OpenAI-compatible chat completion endpoint.
type Client struct {
	hostname string
	apiKey   string
	model    string
	http     *http.Client
	stream   *http.Client
	log      *logging.Logger
}

// NewClient creates a completion client for the given endpoint.
// hostname is the API base, e.g. "https://api.openai.com".
func NewClient(hostname, apiKey, model string, log *logging.Logger) *Client {
	return &Client{
		hostname: strings.TrimSuffix(hostname, "/"),
		apiKey:   apiKey,
		model:    model,
		http:     &http.Client{Timeout: completeTimeout},
		stream:   &http.Client{Timeout: streamTimeout},
		log:      log.Sub("openai"),
	}
}

// Model returns the configured model identifier.
func (c *Client) Model() string {
	return c.model
}

// completionPayload is the request body for /v1/chat/completions.
type completionPayload struct {
	Model         string           `json:"model"`
	Messages      []Message        `json:"messages"`
	Tools         []ToolDefinition `json:"tools,omitempty"`
	Stream        bool             `json:"stream,omitempty"`
	StreamOptions *streamOptions   `json:"stream_options,omitempty"`
}

type streamOptions struct {
	IncludeUsage bool `json:"include_usage"`
}

// Complete performs one buffered request/response exchange. It returns the
// first choice's message; tool calls are not resolved here. Transport
// failures and non-success statuses are returned as-is with no retry.
func (c *Client) Complete(ctx context.Context, messages []Message, tools []ToolDefinition) (*Turn, error) {
	body, err := c.do(ctx, c.http, completionPayload{
		Model:    c.model,
		Messages: messages,
		Tools:    tools,
	})
	if err != nil {
		return nil, err
	}
	defer body.Close()

	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	return parseTurn(raw)
}

// do sends a completion request and returns the response body after the
// status has been checked.
func (c *Client) do(ctx context.Context, client *http.Client, payload completionPayload) (io.ReadCloser, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	url := c.hostname + "/v1/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	c.log.Debug().
		Str("model", payload.Model).
		Int("messages", len(payload.Messages)).
		Int("tools", len(payload.Tools)).
		Bool("stream", payload.Stream).
		Msg("sending completion request")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, &APIError{Code: resp.StatusCode, Body: string(raw)}
	}

	return resp.Body, nil
}

// parseTurn extracts choices[0].message from a buffered response body.
// Tool call entries are validated strictly: a call missing its id, name,
// or arguments is a hard error rather than a silently defaulted value.
func parseTurn(raw []byte) (*Turn, error) {
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("malformed response body: %s", raw)
	}

	msg := gjson.GetBytes(raw, "choices.0.message")
	if !msg.Exists() {
		return nil, fmt.Errorf("response missing choices[0].message: %s", raw)
	}

	if tcs := msg.Get("tool_calls"); tcs.IsArray() {
		var calls []FunctionCall
		for _, tc := range tcs.Array() {
			call, err := parseToolCall(tc)
			if err != nil {
				return nil, err
			}
			calls = append(calls, call)
		}
		if len(calls) > 0 {
			return &Turn{ToolCalls: calls}, nil
		}
	}

	if content := msg.Get("content"); content.Type == gjson.String {
		s := content.String()
		return &Turn{Content: &s}, nil
	}

	// Neither content nor tool calls; the caller decides whether that
	// is acceptable.
	return &Turn{}, nil
}

// parseToolCall validates and extracts one tool_calls entry.
func parseToolCall(tc gjson.Result) (FunctionCall, error) {
	id := tc.Get("id")
	if !id.Exists() {
		return FunctionCall{}, fmt.Errorf("tool call missing id: %s", tc.Raw)
	}
	name := tc.Get("function.name")
	if !name.Exists() {
		return FunctionCall{}, fmt.Errorf("tool call missing name: %s", tc.Raw)
	}
	args := tc.Get("function.arguments")
	if !args.Exists() {
		return FunctionCall{}, fmt.Errorf("tool call missing arguments: %s", tc.Raw)
	}

	return FunctionCall{
		ID:   id.String(),
		Type: "function",
		Function: FunctionCallFn{
			Name:      name.String(),
			Arguments: args.String(),
		},
	}, nil
}
