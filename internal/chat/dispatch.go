package chat

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/soyeahso/valet/internal/openai"
)

// executeCalls resolves and runs a batch of requested tool calls. Calls
// execute concurrently, but the output pairs, a request-echo message and
// a tool-response message per call, come back in input order regardless
// of completion order. An unregistered tool name or any invocation
// failure aborts the whole batch with no partial results.
func (c *Chat) executeCalls(ctx context.Context, calls []openai.FunctionCall) ([]openai.Message, error) {
	// Resolve everything up front so a bad name fails before any tool
	// runs.
	tools := make([]openai.Tool, len(calls))
	for i, call := range calls {
		if call.ID == "" {
			return nil, fmt.Errorf("tool call missing id: %+v", call)
		}
		name := call.Function.Name
		if name == "" {
			return nil, fmt.Errorf("tool call missing name: %+v", call)
		}
		tool, ok := c.tools.Get(name)
		if !ok {
			return nil, fmt.Errorf("received tool call for unregistered tool: %s", name)
		}
		tools[i] = tool
	}

	results := make([]string, len(calls))
	g, gctx := errgroup.WithContext(ctx)
	for i, call := range calls {
		c.log.Debug().
			Str("tool", call.Function.Name).
			Str("args", call.Function.Arguments).
			Msg("executing tool call")
		g.Go(func() error {
			out, err := tools[i].Invoke(gctx, call.Function.Arguments)
			if err != nil {
				return fmt.Errorf("tool %s: %w", call.Function.Name, err)
			}
			results[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	msgs := make([]openai.Message, 0, 2*len(calls))
	for i, call := range calls {
		msgs = append(msgs,
			openai.NewToolCallRequest([]openai.FunctionCall{call}),
			openai.NewToolCallResponse(results[i], call.ID),
		)
	}
	return msgs, nil
}
