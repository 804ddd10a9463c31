package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/soyeahso/valet/internal/openai"
	"github.com/soyeahso/valet/internal/store"
)

// NoteSearchTool finds notes the user has written via full-text search.
type NoteSearchTool struct {
	notes *store.NoteStore
}

// NewNoteSearchTool creates a note search tool over the given index.
func NewNoteSearchTool(notes *store.NoteStore) *NoteSearchTool {
	return &NoteSearchTool{notes: notes}
}

// Name implements openai.Tool.
func (t *NoteSearchTool) Name() string { return "search_notes" }

// Definition implements openai.Tool.
func (t *NoteSearchTool) Definition() openai.ToolDefinition {
	return openai.NewFunctionDefinition(openai.FunctionDef{
		Name:        t.Name(),
		Description: "Find notes the user has written about a topic.",
		Parameters: openai.Parameters{
			Type: "object",
			Properties: map[string]openai.Property{
				"query": {
					Type: "string",
					Description: "The query to use for searching notes. " +
						"Should be short and optimized for search.",
				},
			},
			Required: []string{"query"},
		},
		Strict: true,
	})
}

type noteSearchArgs struct {
	Query string `json:"query"`
}

// Invoke implements openai.Tool.
func (t *NoteSearchTool) Invoke(ctx context.Context, args string) (string, error) {
	var a noteSearchArgs
	if err := json.Unmarshal([]byte(args), &a); err != nil {
		return "", fmt.Errorf("parsing note search args: %w", err)
	}
	if strings.TrimSpace(a.Query) == "" {
		return "", fmt.Errorf("query is required")
	}

	notes, err := t.notes.Search(ctx, a.Query)
	if err != nil {
		return "", err
	}
	return renderNotes(notes), nil
}

// renderNotes formats notes for the model: one markdown section per note.
func renderNotes(notes []store.Note) string {
	if len(notes) == 0 {
		return "No results found"
	}
	sections := make([]string, 0, len(notes))
	for _, n := range notes {
		sections = append(sections, fmt.Sprintf("## %s\n%s\n%s", n.Title, n.ID, n.Body))
	}
	return strings.Join(sections, "\n\n")
}
