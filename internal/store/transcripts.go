package store

import (
	"database/sql"
	"fmt"
	"time"
)

// CreateTranscript inserts the raw transcript row.
func (s *Store) CreateTranscript(t *Transcript) (*Transcript, error) {
	if t.ID == "" {
		t.ID = newID()
	}
	t.CreatedAt = time.Now().UTC()
	_, err := s.db.Exec(`
		INSERT INTO transcripts (id, source_file, full_text, language, duration_seconds, recording_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.SourceFile, t.FullText, t.Language, t.DurationSeconds, t.RecordingDate, t.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create transcript: %w", err)
	}
	return t, nil
}

// GetTranscript returns one transcript by ID, or nil when absent.
func (s *Store) GetTranscript(id string) (*Transcript, error) {
	var t Transcript
	err := s.db.QueryRow(`
		SELECT id, source_file, full_text, language, duration_seconds, recording_date, created_at
		FROM transcripts WHERE id = ?`, id).
		Scan(&t.ID, &t.SourceFile, &t.FullText, &t.Language, &t.DurationSeconds, &t.RecordingDate, &t.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query transcript: %w", err)
	}
	return &t, nil
}

// TranscriptBySourceFile finds a transcript ingested from the given file.
func (s *Store) TranscriptBySourceFile(sourceFile string) (*Transcript, error) {
	var t Transcript
	err := s.db.QueryRow(`
		SELECT id, source_file, full_text, language, duration_seconds, recording_date, created_at
		FROM transcripts WHERE source_file = ? ORDER BY created_at DESC LIMIT 1`, sourceFile).
		Scan(&t.ID, &t.SourceFile, &t.FullText, &t.Language, &t.DurationSeconds, &t.RecordingDate, &t.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query transcript: %w", err)
	}
	return &t, nil
}

// RecordsForTranscript lists every record previously created from the
// transcript. Any hit means the transcript was already processed.
func (s *Store) RecordsForTranscript(transcriptID string) (*LinkedRecords, error) {
	lr := &LinkedRecords{}

	queries := []struct {
		sql  string
		dest *[]string
	}{
		{`SELECT id FROM meetings WHERE transcript_id = ?`, &lr.MeetingIDs},
		{`SELECT id FROM reflections WHERE transcript_id = ?`, &lr.ReflectionIDs},
		{`SELECT id FROM journals WHERE transcript_id = ?`, &lr.JournalIDs},
		{`SELECT id FROM tasks WHERE transcript_id = ? AND deleted = 0`, &lr.TaskIDs},
	}
	for _, q := range queries {
		rows, err := s.db.Query(q.sql, transcriptID)
		if err != nil {
			return nil, fmt.Errorf("failed to query linked records: %w", err)
		}
		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return nil, fmt.Errorf("failed to scan linked record: %w", err)
			}
			*q.dest = append(*q.dest, id)
		}
		rows.Close()
	}

	lr.AlreadyProcessed = len(lr.MeetingIDs)+len(lr.ReflectionIDs)+len(lr.JournalIDs)+len(lr.TaskIDs) > 0
	return lr, nil
}

// LogPipelineEvent appends to the per-transcript processing audit log.
func (s *Store) LogPipelineEvent(transcriptID, stage, detail string) error {
	_, err := s.db.Exec(`
		INSERT INTO pipeline_events (transcript_id, stage, detail) VALUES (?, ?, ?)`,
		transcriptID, stage, detail)
	if err != nil {
		return fmt.Errorf("failed to log pipeline event: %w", err)
	}
	return nil
}
