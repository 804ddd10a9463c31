package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Note is one entry in the local notes index.
type Note struct {
	ID       string
	Title    string
	Body     string
	Status   string // freeform, e.g. "done", "canceled"
	Deadline string // YYYY-MM-DD, "" when the note has no deadline
}

// NoteStore indexes notes for full-text search and deadline queries.
type NoteStore struct {
	db *DB
}

// NewNoteStore creates a note store using the given database.
func NewNoteStore(db *DB) *NoteStore {
	return &NoteStore{db: db}
}

// Add inserts a note, generating an id when none is set.
func (s *NoteStore) Add(ctx context.Context, n Note) (string, error) {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if _, err := s.db.sql.ExecContext(ctx,
		`INSERT INTO notes (id, title, body, status, deadline) VALUES (?, ?, ?, ?, ?)`,
		n.ID, n.Title, n.Body, n.Status, n.Deadline,
	); err != nil {
		return "", fmt.Errorf("inserting note: %w", err)
	}
	return n.ID, nil
}

// Search runs a full-text query over note titles and bodies, best match
// first.
func (s *NoteStore) Search(ctx context.Context, query string) ([]Note, error) {
	rows, err := s.db.sql.QueryContext(ctx, `
		SELECT n.id, n.title, n.body, n.status, n.deadline
		FROM notes_fts f
		JOIN notes n ON n.rowid = f.rowid
		WHERE notes_fts MATCH ?
		ORDER BY rank`, query,
	)
	if err != nil {
		return nil, fmt.Errorf("searching notes: %w", err)
	}
	defer rows.Close()
	return scanNotes(rows)
}

// DueBy returns open notes whose deadline falls on or before the given
// day. Done and canceled notes are excluded.
func (s *NoteStore) DueBy(ctx context.Context, day time.Time) ([]Note, error) {
	rows, err := s.db.sql.QueryContext(ctx, `
		SELECT id, title, body, status, deadline
		FROM notes
		WHERE deadline != '' AND deadline <= ?
		  AND status NOT IN ('done', 'canceled')
		ORDER BY deadline, id`, day.Format(time.DateOnly),
	)
	if err != nil {
		return nil, fmt.Errorf("querying due notes: %w", err)
	}
	defer rows.Close()
	return scanNotes(rows)
}

type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanNotes(rows rowScanner) ([]Note, error) {
	var notes []Note
	for rows.Next() {
		var n Note
		if err := rows.Scan(&n.ID, &n.Title, &n.Body, &n.Status, &n.Deadline); err != nil {
			return nil, fmt.Errorf("scanning note: %w", err)
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}
