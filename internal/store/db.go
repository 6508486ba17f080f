package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Store wraps the SQLite database holding the knowledge base.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates the knowledge base database.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s := &Store{db: db, path: dbPath}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the underlying connection for read-only callers (MCP tools).
func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS transcripts (
		id TEXT PRIMARY KEY,
		source_file TEXT NOT NULL,
		full_text TEXT NOT NULL,
		language TEXT DEFAULT '',
		duration_seconds REAL DEFAULT 0,
		recording_date TEXT DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_transcripts_source ON transcripts(source_file);

	CREATE TABLE IF NOT EXISTS contacts (
		id TEXT PRIMARY KEY,
		first_name TEXT NOT NULL,
		last_name TEXT DEFAULT '',
		email TEXT DEFAULT '',
		company TEXT DEFAULT '',
		job_title TEXT DEFAULT '',
		location TEXT DEFAULT '',
		notes TEXT DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_contacts_first ON contacts(first_name COLLATE NOCASE);
	CREATE INDEX IF NOT EXISTS idx_contacts_last ON contacts(last_name COLLATE NOCASE);

	CREATE TABLE IF NOT EXISTS meetings (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		date TEXT NOT NULL,
		location TEXT DEFAULT '',
		person_name TEXT DEFAULT '',
		contact_id TEXT DEFAULT '',
		summary TEXT DEFAULT '',
		topics TEXT DEFAULT '[]',
		people_mentioned TEXT DEFAULT '[]',
		follow_ups TEXT DEFAULT '[]',
		transcript_id TEXT DEFAULT '',
		source_file TEXT DEFAULT '',
		duration_seconds INTEGER DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_meetings_date ON meetings(date);
	CREATE INDEX IF NOT EXISTS idx_meetings_contact ON meetings(contact_id);
	CREATE INDEX IF NOT EXISTS idx_meetings_transcript ON meetings(transcript_id);

	CREATE TABLE IF NOT EXISTS journals (
		id TEXT PRIMARY KEY,
		date TEXT NOT NULL UNIQUE,
		title TEXT DEFAULT '',
		summary TEXT DEFAULT '',
		mood TEXT DEFAULT '',
		effort TEXT DEFAULT '',
		sports TEXT DEFAULT '[]',
		key_events TEXT DEFAULT '[]',
		accomplishments TEXT DEFAULT '[]',
		challenges TEXT DEFAULT '[]',
		gratitude TEXT DEFAULT '[]',
		tomorrow_focus TEXT DEFAULT '[]',
		sections TEXT DEFAULT '[]',
		content TEXT DEFAULT '',
		transcript_id TEXT DEFAULT '',
		source_file TEXT DEFAULT '',
		duration_seconds INTEGER DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_journals_transcript ON journals(transcript_id);

	CREATE TABLE IF NOT EXISTS reflections (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		date TEXT DEFAULT '',
		topic_key TEXT DEFAULT '',
		tags TEXT DEFAULT '[]',
		sections TEXT DEFAULT '[]',
		content TEXT DEFAULT '',
		transcript_id TEXT DEFAULT '',
		source_file TEXT DEFAULT '',
		duration_seconds INTEGER DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_reflections_topic_key ON reflections(topic_key);
	CREATE INDEX IF NOT EXISTS idx_reflections_transcript ON reflections(transcript_id);

	CREATE TABLE IF NOT EXISTS tasks (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT DEFAULT '',
		status TEXT DEFAULT 'pending',
		priority TEXT DEFAULT 'medium',
		due_date TEXT DEFAULT '',
		origin_type TEXT DEFAULT '',
		origin_id TEXT DEFAULT '',
		contact_id TEXT DEFAULT '',
		transcript_id TEXT DEFAULT '',
		deleted INTEGER DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status);
	CREATE INDEX IF NOT EXISTS idx_tasks_due ON tasks(due_date);
	CREATE INDEX IF NOT EXISTS idx_tasks_transcript ON tasks(transcript_id);

	-- Populated by external sync jobs; read-only here
	CREATE TABLE IF NOT EXISTS calendar_events (
		id TEXT PRIMARY KEY,
		summary TEXT DEFAULT '',
		start_time DATETIME NOT NULL,
		attendees TEXT DEFAULT '[]'
	);

	CREATE INDEX IF NOT EXISTS idx_calendar_start ON calendar_events(start_time);

	CREATE TABLE IF NOT EXISTS emails (
		id TEXT PRIMARY KEY,
		contact_id TEXT DEFAULT '',
		subject TEXT DEFAULT '',
		sender TEXT DEFAULT '',
		date TEXT DEFAULT '',
		snippet TEXT DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_emails_contact ON emails(contact_id);

	CREATE TABLE IF NOT EXISTS applications (
		id TEXT PRIMARY KEY,
		name TEXT DEFAULT '',
		company TEXT DEFAULT '',
		position TEXT DEFAULT '',
		status TEXT DEFAULT '',
		stage TEXT DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS record_embeddings (
		record_type TEXT NOT NULL,
		record_id TEXT NOT NULL,
		text TEXT NOT NULL,
		embedding BLOB,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (record_type, record_id)
	);

	CREATE TABLE IF NOT EXISTS pipeline_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		transcript_id TEXT NOT NULL,
		stage TEXT NOT NULL,
		detail TEXT DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_pipeline_events_transcript ON pipeline_events(transcript_id);

	INSERT OR IGNORE INTO schema_version (version) VALUES (1);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return err
	}
	return nil
}

func newID() string {
	return uuid.NewString()
}

// marshalJSON encodes a slice column, mapping nil to "[]".
func marshalJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil || string(b) == "null" {
		return "[]"
	}
	return string(b)
}

// unmarshalJSON decodes a slice column, tolerating empty and malformed text.
func unmarshalJSON[T any](raw string) []T {
	if raw == "" {
		return []T{}
	}
	var out []T
	if err := json.Unmarshal([]byte(raw), &out); err != nil || out == nil {
		return []T{}
	}
	return out
}
