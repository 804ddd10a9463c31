// Package chat implements the conversation orchestration loop: it drives
// repeated completion turns against an LLM endpoint, resolving requested
// tool calls between turns until the model produces a final textual
// answer, and optionally records completed turns through a store.
package chat

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/soyeahso/valet/internal/logging"
	"github.com/soyeahso/valet/internal/openai"
)

// ErrNoToolsConfigured is returned when the model requests tool calls but
// the session has no tools registered. That is a contract violation, not
// a recoverable condition.
var ErrNoToolsConfigured = errors.New("received tool calls but no tools were configured")

// ErrNoFinalMessage is returned when a terminal response carries neither
// content nor tool calls.
var ErrNoFinalMessage = errors.New("no final message received")

// Completer is the completion client the loop drives. Implemented by
// openai.Client; tests substitute scripted fakes.
type Completer interface {
	Complete(ctx context.Context, messages []openai.Message, tools []openai.ToolDefinition) (*openai.Turn, error)
	CompleteStream(ctx context.Context, messages []openai.Message, tools []openai.ToolDefinition, sink openai.StreamHandler) (*openai.Turn, error)
}

// Store records completed turns. Implementations own their concurrency
// safety; the loop only ever appends, and only after a turn succeeds.
type Store interface {
	// EnsureSession creates the session row with its tag set if it does
	// not already exist. Idempotent.
	EnsureSession(ctx context.Context, sessionID string, tags []string) error

	// AppendMessage appends one message to a session's ordered log.
	AppendMessage(ctx context.Context, sessionID string, msg openai.Message) error
}

// Chat is one conversation session: a transcript, an optional tool set,
// optional persistence, and an optional streaming sink. A Chat must be
// driven by a single caller at a time; independent sessions are fully
// concurrent.
//
// Use New with options to compose the session shape. The persistence
// triple (store, session id, tags) and the streaming pair (flag, sink)
// are each set by a single option so they cannot be half-configured.
type Chat struct {
	client     Completer
	tools      *Registry
	transcript *Transcript
	store      Store
	sessionID  string
	tags       []string
	streaming  bool
	sink       openai.StreamHandler
	log        *logging.Logger
}

// Option configures a Chat at construction time.
type Option func(*Chat)

// WithTools attaches a tool registry to the session.
func WithTools(reg *Registry) Option {
	return func(c *Chat) { c.tools = reg }
}

// WithTranscript seeds the session with prior conversation history.
func WithTranscript(msgs []openai.Message) Option {
	return func(c *Chat) { c.transcript = NewTranscript(msgs) }
}

// WithPersistence records completed turns through st under the given
// session id and tag set. An empty id gets a generated one.
func WithPersistence(st Store, sessionID string, tags []string) Option {
	return func(c *Chat) {
		if sessionID == "" {
			sessionID = uuid.New().String()
		}
		if tags == nil {
			tags = []string{}
		}
		c.store = st
		c.sessionID = sessionID
		c.tags = tags
	}
}

// WithStreaming switches the session to the incremental wire client and
// forwards raw event payloads to sink.
func WithStreaming(sink openai.StreamHandler) Option {
	return func(c *Chat) {
		c.streaming = true
		c.sink = sink
	}
}

// New creates a chat session.
func New(client Completer, log *logging.Logger, opts ...Option) *Chat {
	c := &Chat{
		client:     client,
		transcript: NewTranscript(nil),
		log:        log.Sub("chat"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SessionID returns the persistence session id, or "" for an ephemeral
// session.
func (c *Chat) SessionID() string {
	return c.sessionID
}

// Transcript returns a copy of the permanent transcript.
func (c *Chat) Transcript() []openai.Message {
	return c.transcript.Messages()
}

// Send runs the next turn of the conversation: it submits msg together
// with the transcript, resolves any tool calls the model requests, and
// repeats until the model answers with text. It returns every message
// generated during the turn in order: tool call request echoes, tool
// responses, and the final assistant message.
//
// The permanent transcript is only updated, and the turn only persisted,
// after the whole loop succeeds; any failure leaves the session exactly
// as it was before the call.
func (c *Chat) Send(ctx context.Context, msg openai.Message) ([]openai.Message, error) {
	working := append(c.transcript.Messages(), msg)
	var generated []openai.Message

	turn, err := c.complete(ctx, working)
	if err != nil {
		return nil, err
	}

	// Tool calls have to be resolved for the chat to proceed. The model
	// alone decides how many rounds that takes.
	for len(turn.ToolCalls) > 0 {
		if c.tools == nil || c.tools.Len() == 0 {
			return nil, ErrNoToolsConfigured
		}

		c.log.Info().Int("toolCalls", len(turn.ToolCalls)).Msg("executing tool calls")
		pairs, err := c.executeCalls(ctx, turn.ToolCalls)
		if err != nil {
			return nil, err
		}
		generated = append(generated, pairs...)
		working = append(working, pairs...)

		// Provide the tool results back to the chat.
		turn, err = c.complete(ctx, working)
		if err != nil {
			return nil, err
		}
	}

	if turn.Content == nil {
		return nil, ErrNoFinalMessage
	}
	generated = append(generated, openai.NewMessage(openai.RoleAssistant, *turn.Content))

	if err := c.commit(ctx, msg, generated); err != nil {
		return nil, err
	}

	return generated, nil
}

// complete invokes the buffered or streaming client per the session
// configuration.
func (c *Chat) complete(ctx context.Context, working []openai.Message) (*openai.Turn, error) {
	var defs []openai.ToolDefinition
	if c.tools != nil {
		defs = c.tools.Definitions()
	}

	if c.streaming {
		turn, err := c.client.CompleteStream(ctx, working, defs, c.sink)
		if err != nil {
			return nil, fmt.Errorf("streaming completion: %w", err)
		}
		return turn, nil
	}

	turn, err := c.client.Complete(ctx, working, defs)
	if err != nil {
		return nil, fmt.Errorf("completion: %w", err)
	}
	return turn, nil
}

// commit folds a completed turn into the permanent transcript and, when
// persistence is configured, stores the session row and every new
// message in order.
func (c *Chat) commit(ctx context.Context, msg openai.Message, generated []openai.Message) error {
	if c.store != nil {
		// Ensuring the session on every turn rather than at session
		// construction keeps sessions that never produced a message,
		// e.g. a chat that failed on its first turn, out of the store.
		if err := c.store.EnsureSession(ctx, c.sessionID, c.tags); err != nil {
			return fmt.Errorf("ensuring session: %w", err)
		}
		if err := c.store.AppendMessage(ctx, c.sessionID, msg); err != nil {
			return fmt.Errorf("storing user message: %w", err)
		}
		for _, m := range generated {
			if err := c.store.AppendMessage(ctx, c.sessionID, m); err != nil {
				return fmt.Errorf("storing message: %w", err)
			}
		}
	}

	c.transcript.Append(msg)
	c.transcript.Append(generated...)
	return nil
}
