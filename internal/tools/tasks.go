package tools

import (
	"context"
	"time"

	"github.com/soyeahso/valet/internal/openai"
	"github.com/soyeahso/valet/internal/store"
)

// TasksDueTodayTool lists open tasks that are due or overdue today.
type TasksDueTodayTool struct {
	notes *store.NoteStore
	now   func() time.Time
}

// NewTasksDueTodayTool creates the task lookup tool over the given index.
func NewTasksDueTodayTool(notes *store.NoteStore) *TasksDueTodayTool {
	return &TasksDueTodayTool{notes: notes, now: time.Now}
}

// Name implements openai.Tool.
func (t *TasksDueTodayTool) Name() string { return "tasks_due_today" }

// Definition implements openai.Tool.
func (t *TasksDueTodayTool) Definition() openai.ToolDefinition {
	return openai.NewFunctionDefinition(openai.FunctionDef{
		Name:        t.Name(),
		Description: "Get a list of tasks that are due today, excluding done and canceled tasks.",
		Parameters: openai.Parameters{
			Type:       "object",
			Properties: map[string]openai.Property{},
			Required:   []string{},
		},
		Strict: true,
	})
}

// Invoke implements openai.Tool. The argument text is ignored; the tool
// takes no parameters.
func (t *TasksDueTodayTool) Invoke(ctx context.Context, _ string) (string, error) {
	notes, err := t.notes.DueBy(ctx, t.now())
	if err != nil {
		return "", err
	}
	return renderNotes(notes), nil
}
