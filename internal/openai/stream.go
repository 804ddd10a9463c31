package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// StreamHandler receives each raw SSE data payload (the text after
// "data: ", including the terminal "[DONE]") as it is extracted from the
// stream. It is a best-effort observability channel: payloads are
// forwarded before parsing, so a handler sees frames even when a later
// frame aborts the exchange.
type StreamHandler func(data string)

// completionChunk is one parsed streaming event payload.
type completionChunk struct {
	Choices []chunkChoice `json:"choices"`
}

type chunkChoice struct {
	Delta        chunkDelta `json:"delta"`
	FinishReason string     `json:"finish_reason"`
}

// chunkDelta is the incremental fragment carried by a streaming event.
// Exactly one of the field groups is populated: content text, reasoning
// text, tool call sub-deltas, or nothing at all (a stop marker).
type chunkDelta struct {
	Content   *string         `json:"content"`
	Reasoning *string         `json:"reasoning"`
	ToolCalls []toolCallChunk `json:"tool_calls"`
}

// toolCallChunk is one tool-call sub-delta. The first chunk for an index
// carries the id, name, and an initial argument fragment; subsequent
// chunks for the same index carry only more argument text.
type toolCallChunk struct {
	ID       string          `json:"id"`
	Index    int             `json:"index"`
	Type     string          `json:"type"`
	Function toolCallChunkFn `json:"function"`
}

type toolCallChunkFn struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// streamAccumulator merges delta fragments into final values over the
// life of one streaming exchange. Tool calls are keyed by the wire's
// position index; indices start at zero and are contiguous within one
// stream, so a dense slice is enough.
type streamAccumulator struct {
	content   strings.Builder
	reasoning strings.Builder
	calls     []*FunctionCall
}

func (a *streamAccumulator) initCall(idx int, id, name, args string) {
	for len(a.calls) <= idx {
		a.calls = append(a.calls, nil)
	}
	a.calls[idx] = &FunctionCall{
		ID:   id,
		Type: "function",
		Function: FunctionCallFn{
			Name:      name,
			Arguments: args,
		},
	}
}

// appendArgs concatenates an argument fragment onto the call at idx.
// Fragments for an index that was never initialized are dropped.
func (a *streamAccumulator) appendArgs(idx int, args string) {
	if idx < 0 || idx >= len(a.calls) || a.calls[idx] == nil {
		return
	}
	a.calls[idx].Function.Arguments += args
}

// turn assembles the final result: tool calls in index order when any
// were seen, otherwise the accumulated content (possibly empty).
func (a *streamAccumulator) turn() *Turn {
	var calls []FunctionCall
	for _, c := range a.calls {
		if c != nil {
			calls = append(calls, *c)
		}
	}
	if len(calls) > 0 {
		return &Turn{ToolCalls: calls}
	}
	s := a.content.String()
	return &Turn{Content: &s}
}

// CompleteStream performs one streaming request/response exchange and
// reassembles the incremental events into the same Turn shape Complete
// returns. Every extracted frame is forwarded verbatim to sink before it
// is parsed; a frame that fails parsing aborts the whole exchange.
func (c *Client) CompleteStream(ctx context.Context, messages []Message, tools []ToolDefinition, sink StreamHandler) (*Turn, error) {
	body, err := c.do(ctx, c.stream, completionPayload{
		Model:         c.model,
		Messages:      messages,
		Tools:         tools,
		Stream:        true,
		StreamOptions: &streamOptions{IncludeUsage: true},
	})
	if err != nil {
		return nil, err
	}
	defer body.Close()

	accum := &streamAccumulator{}
	if err := c.decodeStream(body, sink, accum); err != nil {
		return nil, err
	}

	if accum.reasoning.Len() > 0 {
		c.log.Debug().Int("bytes", accum.reasoning.Len()).Msg("model reasoning discarded from result")
	}

	return accum.turn(), nil
}

// decodeStream reads the event stream until termination, feeding frames
// to the sink and deltas to the accumulator. Event frames are delimited
// by a blank line but arrive fragmented at arbitrary byte boundaries, so
// a persistent buffer holds the incomplete trailing fragment between
// reads.
func (c *Client) decodeStream(r io.Reader, sink StreamHandler, accum *streamAccumulator) error {
	var buffer string
	chunk := make([]byte, 4096)

	for {
		n, readErr := r.Read(chunk)
		buffer += string(chunk[:n])

		// Extract every complete frame currently in the buffer.
		for {
			end := strings.Index(buffer, "\n\n")
			if end < 0 {
				break
			}
			frame := strings.TrimSpace(buffer[:end])
			buffer = buffer[end+2:]

			if frame == "" {
				continue
			}
			if !strings.HasPrefix(frame, "data: ") {
				continue
			}
			data := strings.TrimSpace(frame[6:])
			if data == "" {
				continue
			}

			// Forward the raw payload regardless of what parsing
			// does with it.
			if sink != nil {
				sink(data)
			}

			if data == "[DONE]" {
				return nil
			}

			done, err := c.decodeFrame(data, accum)
			if err != nil {
				return err
			}
			if done {
				return nil
			}
		}

		if readErr == io.EOF {
			return nil
		}
		if readErr != nil {
			return fmt.Errorf("reading stream: %w", readErr)
		}
	}
}

// decodeFrame applies one parsed event to the accumulator. It reports
// whether the frame terminated the stream: a stop delta does, and so does
// any delta arriving alongside a non-empty finish_reason, in which case
// that delta's text is discarded.
func (c *Client) decodeFrame(data string, accum *streamAccumulator) (bool, error) {
	var chunk completionChunk
	if err := json.Unmarshal([]byte(data), &chunk); err != nil {
		c.log.Error().Err(err).Str("data", data).Msg("parsing completion chunk failed")
		return false, fmt.Errorf("parsing completion chunk: %w", err)
	}
	if len(chunk.Choices) == 0 {
		return false, fmt.Errorf("completion chunk missing choices: %s", data)
	}

	choice := chunk.Choices[0]
	finished := choice.FinishReason != ""

	switch delta := choice.Delta; {
	case delta.Content != nil:
		if finished {
			return true, nil
		}
		accum.content.WriteString(*delta.Content)
	case delta.Reasoning != nil:
		if finished {
			return true, nil
		}
		accum.reasoning.WriteString(*delta.Reasoning)
	case len(delta.ToolCalls) > 0:
		if finished {
			return true, nil
		}
		for _, tc := range delta.ToolCalls {
			if tc.ID != "" {
				accum.initCall(tc.Index, tc.ID, tc.Function.Name, tc.Function.Arguments)
			} else {
				accum.appendArgs(tc.Index, tc.Function.Arguments)
			}
		}
	default:
		// No payload at all marks the turn boundary.
		return true, nil
	}

	return false, nil
}
