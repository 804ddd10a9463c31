package store

// migration represents a single schema migration.
type migration struct {
	Version int
	Name    string
	SQL     string
}

// migrations is the ordered list of all schema migrations.
var migrations = []migration{
	{
		Version: 1,
		Name:    "create sessions, tags and messages",
		SQL: `
			CREATE TABLE sessions (
				id          TEXT PRIMARY KEY,
				created_at  TEXT NOT NULL DEFAULT (datetime('now'))
			);

			CREATE TABLE tags (
				id    INTEGER PRIMARY KEY AUTOINCREMENT,
				name  TEXT NOT NULL UNIQUE
			);

			CREATE TABLE session_tags (
				session_id  TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
				tag_id      INTEGER NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
				PRIMARY KEY (session_id, tag_id)
			);

			CREATE TABLE messages (
				id            INTEGER PRIMARY KEY AUTOINCREMENT,
				session_id    TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
				role          TEXT NOT NULL,
				content       TEXT,
				tool_call_id  TEXT,
				tool_calls    TEXT,
				created_at    TEXT NOT NULL DEFAULT (datetime('now'))
			);

			CREATE INDEX idx_messages_session ON messages (session_id, id);
		`,
	},
	{
		Version: 2,
		Name:    "create notes with FTS5",
		SQL: `
			CREATE TABLE notes (
				id          TEXT PRIMARY KEY,
				title       TEXT NOT NULL,
				body        TEXT NOT NULL,
				status      TEXT NOT NULL DEFAULT '',
				deadline    TEXT NOT NULL DEFAULT '',
				created_at  TEXT NOT NULL DEFAULT (datetime('now'))
			);

			CREATE INDEX idx_notes_deadline ON notes (deadline);

			CREATE VIRTUAL TABLE notes_fts USING fts5(
				title,
				body,
				content='notes',
				content_rowid='rowid'
			);

			CREATE TRIGGER notes_ai AFTER INSERT ON notes BEGIN
				INSERT INTO notes_fts(rowid, title, body)
				VALUES (new.rowid, new.title, new.body);
			END;

			CREATE TRIGGER notes_ad AFTER DELETE ON notes BEGIN
				INSERT INTO notes_fts(notes_fts, rowid, title, body)
				VALUES ('delete', old.rowid, old.title, old.body);
			END;

			CREATE TRIGGER notes_au AFTER UPDATE ON notes BEGIN
				INSERT INTO notes_fts(notes_fts, rowid, title, body)
				VALUES ('delete', old.rowid, old.title, old.body);
				INSERT INTO notes_fts(rowid, title, body)
				VALUES (new.rowid, new.title, new.body);
			END;
		`,
	},
}
