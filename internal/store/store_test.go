package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soyeahso/valet/internal/logging"
	"github.com/soyeahso/valet/internal/openai"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(":memory:", logging.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMigrations_Applied(t *testing.T) {
	db := testDB(t)

	for _, m := range migrations {
		applied, err := db.isMigrationApplied(m.Version)
		require.NoError(t, err)
		assert.True(t, applied, "migration %d not applied", m.Version)
	}
}

func TestMigrations_Idempotent(t *testing.T) {
	db := testDB(t)
	require.NoError(t, db.migrate())
	require.NoError(t, db.migrate())
}

func TestSchema_TablesExist(t *testing.T) {
	db := testDB(t)

	for _, table := range []string{"sessions", "tags", "session_tags", "messages", "notes", "notes_fts"} {
		var count int
		err := db.sql.QueryRow(
			"SELECT COUNT(*) FROM sqlite_master WHERE name = ?", table,
		).Scan(&count)
		require.NoError(t, err)
		assert.Equal(t, 1, count, "table %s missing", table)
	}
}

// --- Chat store tests ---

func TestChatStore_EnsureSessionIdempotent(t *testing.T) {
	ctx := context.Background()
	s := NewChatStore(testDB(t))

	require.NoError(t, s.EnsureSession(ctx, "s1", []string{"cli", "daily"}))
	require.NoError(t, s.EnsureSession(ctx, "s1", []string{"cli", "daily"}))

	sessions, err := s.Sessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "s1", sessions[0].ID)
	assert.ElementsMatch(t, []string{"cli", "daily"}, sessions[0].Tags)
}

func TestChatStore_TagNormalization(t *testing.T) {
	ctx := context.Background()
	s := NewChatStore(testDB(t))

	require.NoError(t, s.EnsureSession(ctx, "s1", []string{" CLI ", "cli", ""}))

	sessions, err := s.Sessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, []string{"cli"}, sessions[0].Tags)
}

func TestChatStore_MessageRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewChatStore(testDB(t))
	require.NoError(t, s.EnsureSession(ctx, "s1", nil))

	request := openai.NewToolCallRequest([]openai.FunctionCall{{
		ID:   "call_1",
		Type: "function",
		Function: openai.FunctionCallFn{
			Name:      "search_notes",
			Arguments: `{"query":"books"}`,
		},
	}})
	stored := []openai.Message{
		openai.NewMessage(openai.RoleUser, "find my books"),
		request,
		openai.NewToolCallResponse("Found 3 books", "call_1"),
		openai.NewMessage(openai.RoleAssistant, "You have three."),
	}
	for _, msg := range stored {
		require.NoError(t, s.AppendMessage(ctx, "s1", msg))
	}

	loaded, err := s.Messages(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, loaded, 4)

	assert.Equal(t, openai.RoleUser, loaded[0].Role)
	assert.Equal(t, "find my books", loaded[0].Text())

	assert.Equal(t, openai.RoleAssistant, loaded[1].Role)
	assert.Nil(t, loaded[1].Content)
	require.Len(t, loaded[1].ToolCalls, 1)
	assert.Equal(t, "call_1", loaded[1].ToolCalls[0].ID)
	assert.Equal(t, `{"query":"books"}`, loaded[1].ToolCalls[0].Function.Arguments)

	assert.Equal(t, openai.RoleTool, loaded[2].Role)
	assert.Equal(t, "call_1", loaded[2].ToolCallID)
	assert.Equal(t, "Found 3 books", loaded[2].Text())

	assert.Equal(t, "You have three.", loaded[3].Text())
}

func TestChatStore_MessagesScopedToSession(t *testing.T) {
	ctx := context.Background()
	s := NewChatStore(testDB(t))
	require.NoError(t, s.EnsureSession(ctx, "s1", nil))
	require.NoError(t, s.EnsureSession(ctx, "s2", nil))

	require.NoError(t, s.AppendMessage(ctx, "s1", openai.NewMessage(openai.RoleUser, "one")))
	require.NoError(t, s.AppendMessage(ctx, "s2", openai.NewMessage(openai.RoleUser, "two")))

	msgs, err := s.Messages(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "one", msgs[0].Text())
}

func TestChatStore_SessionsCountMessages(t *testing.T) {
	ctx := context.Background()
	s := NewChatStore(testDB(t))
	require.NoError(t, s.EnsureSession(ctx, "s1", nil))
	require.NoError(t, s.AppendMessage(ctx, "s1", openai.NewMessage(openai.RoleUser, "hi")))
	require.NoError(t, s.AppendMessage(ctx, "s1", openai.NewMessage(openai.RoleAssistant, "hello")))

	sessions, err := s.Sessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, 2, sessions[0].Messages)
}

// --- Note store tests ---

func TestNoteStore_AddGeneratesID(t *testing.T) {
	ctx := context.Background()
	s := NewNoteStore(testDB(t))

	id, err := s.Add(ctx, Note{Title: "groceries", Body: "milk and eggs"})
	require.NoError(t, err)
	assert.NotEmpty(t, id)
}

func TestNoteStore_Search(t *testing.T) {
	ctx := context.Background()
	s := NewNoteStore(testDB(t))

	_, err := s.Add(ctx, Note{Title: "reading list", Body: "three books about sailing"})
	require.NoError(t, err)
	_, err = s.Add(ctx, Note{Title: "groceries", Body: "milk and eggs"})
	require.NoError(t, err)

	notes, err := s.Search(ctx, "books")
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "reading list", notes[0].Title)

	notes, err = s.Search(ctx, "bicycle")
	require.NoError(t, err)
	assert.Empty(t, notes)
}

func TestNoteStore_DueBy(t *testing.T) {
	ctx := context.Background()
	s := NewNoteStore(testDB(t))

	day := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	add := func(title, status, deadline string) {
		t.Helper()
		_, err := s.Add(ctx, Note{Title: title, Status: status, Deadline: deadline})
		require.NoError(t, err)
	}
	add("overdue", "open", "2026-03-10")
	add("today", "open", "2026-03-15")
	add("future", "open", "2026-04-01")
	add("finished", "done", "2026-03-10")
	add("dropped", "canceled", "2026-03-10")
	add("no deadline", "open", "")

	notes, err := s.DueBy(ctx, day)
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, "overdue", notes[0].Title)
	assert.Equal(t, "today", notes[1].Title)
}

// --- In-memory chat store tests ---

func TestMemoryChatStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryChatStore()

	require.NoError(t, s.EnsureSession(ctx, "s1", []string{"cli"}))
	require.NoError(t, s.EnsureSession(ctx, "s1", []string{"ignored"}))
	require.NoError(t, s.AppendMessage(ctx, "s1", openai.NewMessage(openai.RoleUser, "hi")))
	require.NoError(t, s.AppendMessage(ctx, "s1", openai.NewMessage(openai.RoleAssistant, "hello")))

	msgs, err := s.Messages(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "hi", msgs[0].Text())

	sessions, err := s.Sessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, []string{"cli"}, sessions[0].Tags)
	assert.Equal(t, 2, sessions[0].Messages)
}
