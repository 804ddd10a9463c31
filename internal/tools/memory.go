// Package tools provides the built-in capabilities the assistant can
// invoke: persistent memory, note search, and task lookups. Every tool
// satisfies openai.Tool; argument parsing stays inside each tool so the
// orchestration loop only ever sees opaque JSON text.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/soyeahso/valet/internal/openai"
)

const (
	memoryMaxWords = 2000
	memoryFilename = "MEMORY.md"
)

// MemoryTool reads and writes a single persistent memory file in the
// workspace, surviving across sessions.
type MemoryTool struct {
	workspace string
}

// NewMemoryTool creates a memory tool storing under the given workspace
// directory.
func NewMemoryTool(workspace string) *MemoryTool {
	return &MemoryTool{workspace: workspace}
}

// Name implements openai.Tool.
func (t *MemoryTool) Name() string { return "memory" }

// Definition implements openai.Tool.
func (t *MemoryTool) Definition() openai.ToolDefinition {
	return openai.NewFunctionDefinition(openai.FunctionDef{
		Name: t.Name(),
		Description: "Read from or write to persistent memory that persists across sessions. " +
			"Use this when you learn something important about the user, their preferences, " +
			"or context that should be remembered for future conversations. " +
			"IMPORTANT: Keep memory concise and under 2000 words.",
		Parameters: openai.Parameters{
			Type: "object",
			Properties: map[string]openai.Property{
				"operation": {
					Type:        "string",
					Description: "Whether to read the current memory or overwrite it.",
					Enum:        []string{"read", "write"},
				},
				"content": {
					Type: "string",
					Description: "The content to write (required for 'write' operation). " +
						"Keep it concise and under 2000 words total.",
				},
			},
			Required: []string{"operation"},
		},
	})
}

type memoryArgs struct {
	Operation string  `json:"operation"`
	Content   *string `json:"content"`
}

// Invoke implements openai.Tool.
func (t *MemoryTool) Invoke(_ context.Context, args string) (string, error) {
	var a memoryArgs
	if err := json.Unmarshal([]byte(args), &a); err != nil {
		return "", fmt.Errorf("parsing memory args: %w", err)
	}

	path := filepath.Join(t.workspace, memoryFilename)

	switch a.Operation {
	case "read":
		data, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			return "No memory yet", nil
		}
		if err != nil {
			return "", fmt.Errorf("reading memory: %w", err)
		}
		return string(data), nil

	case "write":
		if a.Content == nil {
			return "", fmt.Errorf("content is required for write operation")
		}
		words := len(strings.Fields(*a.Content))
		if words > memoryMaxWords {
			return "", fmt.Errorf("memory exceeds %d words (currently %d), condense it", memoryMaxWords, words)
		}
		if err := os.MkdirAll(t.workspace, 0o700); err != nil {
			return "", fmt.Errorf("creating workspace: %w", err)
		}
		if err := os.WriteFile(path, []byte(*a.Content), 0o600); err != nil {
			return "", fmt.Errorf("writing memory: %w", err)
		}
		return fmt.Sprintf("Memory saved (%d words). Current memory:\n\n%s", words, *a.Content), nil

	default:
		return "", fmt.Errorf("unknown memory operation: %q", a.Operation)
	}
}
