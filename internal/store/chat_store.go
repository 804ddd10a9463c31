package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/soyeahso/valet/internal/openai"
)

// SessionInfo summarizes one stored chat session.
type SessionInfo struct {
	ID        string
	Tags      []string
	Messages  int
	CreatedAt time.Time
}

// ChatStore persists chat sessions and their message logs. It implements
// chat.Store.
type ChatStore struct {
	db *DB
}

// NewChatStore creates a chat store using the given database.
func NewChatStore(db *DB) *ChatStore {
	return &ChatStore{db: db}
}

// EnsureSession creates the session row and its tag set if they do not
// already exist. Tag names are normalized to lowercase. All writes happen
// in one transaction so the tag set is never partially recorded.
func (s *ChatStore) EnsureSession(ctx context.Context, sessionID string, tags []string) error {
	tx, err := s.db.sql.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin ensure session: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO sessions (id) VALUES (?)`, sessionID,
	); err != nil {
		return fmt.Errorf("inserting session: %w", err)
	}

	for _, tag := range tags {
		name := strings.ToLower(strings.TrimSpace(tag))
		if name == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO tags (name) VALUES (?)`, name,
		); err != nil {
			return fmt.Errorf("inserting tag %q: %w", name, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO session_tags (session_id, tag_id)
			 SELECT ?, id FROM tags WHERE name = ?`, sessionID, name,
		); err != nil {
			return fmt.Errorf("linking tag %q: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit ensure session: %w", err)
	}
	return nil
}

// AppendMessage appends one message to a session's ordered log.
func (s *ChatStore) AppendMessage(ctx context.Context, sessionID string, msg openai.Message) error {
	var content sql.NullString
	if msg.Content != nil {
		content = sql.NullString{String: *msg.Content, Valid: true}
	}
	var toolCallID sql.NullString
	if msg.ToolCallID != "" {
		toolCallID = sql.NullString{String: msg.ToolCallID, Valid: true}
	}
	var toolCalls sql.NullString
	if len(msg.ToolCalls) > 0 {
		data, err := json.Marshal(msg.ToolCalls)
		if err != nil {
			return fmt.Errorf("marshaling tool calls: %w", err)
		}
		toolCalls = sql.NullString{String: string(data), Valid: true}
	}

	if _, err := s.db.sql.ExecContext(ctx,
		`INSERT INTO messages (session_id, role, content, tool_call_id, tool_calls)
		 VALUES (?, ?, ?, ?, ?)`,
		sessionID, string(msg.Role), content, toolCallID, toolCalls,
	); err != nil {
		return fmt.Errorf("appending message: %w", err)
	}
	return nil
}

// Messages returns a session's messages in conversation order.
func (s *ChatStore) Messages(ctx context.Context, sessionID string) ([]openai.Message, error) {
	rows, err := s.db.sql.QueryContext(ctx,
		`SELECT role, content, tool_call_id, tool_calls
		 FROM messages WHERE session_id = ? ORDER BY id`, sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("loading messages: %w", err)
	}
	defer rows.Close()

	var msgs []openai.Message
	for rows.Next() {
		var (
			role       string
			content    sql.NullString
			toolCallID sql.NullString
			toolCalls  sql.NullString
		)
		if err := rows.Scan(&role, &content, &toolCallID, &toolCalls); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}

		msg := openai.Message{Role: openai.Role(role)}
		if content.Valid {
			msg.Content = &content.String
		}
		if toolCallID.Valid {
			msg.ToolCallID = toolCallID.String
		}
		if toolCalls.Valid && toolCalls.String != "" {
			if err := json.Unmarshal([]byte(toolCalls.String), &msg.ToolCalls); err != nil {
				return nil, fmt.Errorf("unmarshaling tool calls: %w", err)
			}
		}
		msgs = append(msgs, msg)
	}
	return msgs, rows.Err()
}

// Sessions lists stored sessions, most recent first.
func (s *ChatStore) Sessions(ctx context.Context) ([]SessionInfo, error) {
	rows, err := s.db.sql.QueryContext(ctx, `
		SELECT s.id, s.created_at,
		       (SELECT COUNT(*) FROM messages m WHERE m.session_id = s.id),
		       COALESCE((SELECT GROUP_CONCAT(t.name) FROM session_tags st
		                 JOIN tags t ON t.id = st.tag_id
		                 WHERE st.session_id = s.id), '')
		FROM sessions s ORDER BY s.created_at DESC, s.id`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	defer rows.Close()

	var infos []SessionInfo
	for rows.Next() {
		var (
			info      SessionInfo
			createdAt string
			tagCSV    string
		)
		if err := rows.Scan(&info.ID, &createdAt, &info.Messages, &tagCSV); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		info.CreatedAt, _ = time.Parse(time.DateTime, createdAt)
		if tagCSV != "" {
			info.Tags = strings.Split(tagCSV, ",")
		}
		infos = append(infos, info)
	}
	return infos, rows.Err()
}
