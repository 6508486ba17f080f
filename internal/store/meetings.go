package store

import (
	"database/sql"
	"fmt"
	"time"
)

// CreateMeeting inserts a meeting row.
func (s *Store) CreateMeeting(m *Meeting) (*Meeting, error) {
	if m.ID == "" {
		m.ID = newID()
	}
	m.CreatedAt = time.Now().UTC()
	_, err := s.db.Exec(`
		INSERT INTO meetings (id, title, date, location, person_name, contact_id, summary,
			topics, people_mentioned, follow_ups, transcript_id, source_file, duration_seconds, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.Title, m.Date, m.Location, m.PersonName, m.ContactID, m.Summary,
		marshalJSON(m.Topics), marshalJSON(m.PeopleMentioned), marshalJSON(m.FollowUps),
		m.TranscriptID, m.SourceFile, m.DurationSeconds, m.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create meeting: %w", err)
	}
	return m, nil
}

// GetMeeting returns one meeting by ID, or nil when absent.
func (s *Store) GetMeeting(id string) (*Meeting, error) {
	rows, err := s.db.Query(meetingSelect+` WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query meeting: %w", err)
	}
	defer rows.Close()
	list, err := scanMeetings(rows)
	if err != nil || len(list) == 0 {
		return nil, err
	}
	return list[0], nil
}

// RecentMeetingsWithContact returns the newest meetings linked to the
// contact, newest first.
func (s *Store) RecentMeetingsWithContact(contactID string, limit int) ([]*Meeting, error) {
	rows, err := s.db.Query(meetingSelect+`
		WHERE contact_id = ? ORDER BY date DESC, created_at DESC LIMIT ?`, contactID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query meetings: %w", err)
	}
	defer rows.Close()
	return scanMeetings(rows)
}

// RecentMeetings returns the newest meetings overall, newest first.
func (s *Store) RecentMeetings(limit int) ([]*Meeting, error) {
	rows, err := s.db.Query(meetingSelect+` ORDER BY date DESC, created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query meetings: %w", err)
	}
	defer rows.Close()
	return scanMeetings(rows)
}

const meetingSelect = `
	SELECT id, title, date, location, person_name, contact_id, summary,
		topics, people_mentioned, follow_ups, transcript_id, source_file, duration_seconds, created_at
	FROM meetings`

func scanMeetings(rows *sql.Rows) ([]*Meeting, error) {
	var out []*Meeting
	for rows.Next() {
		var m Meeting
		var topics, people, followUps string
		if err := rows.Scan(&m.ID, &m.Title, &m.Date, &m.Location, &m.PersonName, &m.ContactID,
			&m.Summary, &topics, &people, &followUps, &m.TranscriptID, &m.SourceFile,
			&m.DurationSeconds, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan meeting: %w", err)
		}
		m.Topics = unmarshalJSON[Topic](topics)
		m.PeopleMentioned = unmarshalJSON[string](people)
		m.FollowUps = unmarshalJSON[FollowUp](followUps)
		out = append(out, &m)
	}
	return out, nil
}
