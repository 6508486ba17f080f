package store

import (
	"database/sql"
	"fmt"
	"time"
)

// JournalByDate returns the journal entry for the ISO date, or nil.
func (s *Store) JournalByDate(date string) (*Journal, error) {
	rows, err := s.db.Query(journalSelect+` WHERE date = ?`, date)
	if err != nil {
		return nil, fmt.Errorf("failed to query journal: %w", err)
	}
	defer rows.Close()
	list, err := scanJournals(rows)
	if err != nil || len(list) == 0 {
		return nil, err
	}
	return list[0], nil
}

// GetJournal returns one journal by ID, or nil when absent.
func (s *Store) GetJournal(id string) (*Journal, error) {
	rows, err := s.db.Query(journalSelect+` WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query journal: %w", err)
	}
	defer rows.Close()
	list, err := scanJournals(rows)
	if err != nil || len(list) == 0 {
		return nil, err
	}
	return list[0], nil
}

// RecentJournals returns the newest journal entries, newest first.
func (s *Store) RecentJournals(limit int) ([]*Journal, error) {
	rows, err := s.db.Query(journalSelect+` ORDER BY date DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query journals: %w", err)
	}
	defer rows.Close()
	return scanJournals(rows)
}

// CreateOrUpdateJournal upserts the single entry for j.Date. On update
// existing non-empty scalars win and list fields take the union, so a
// reprocessed memo never erases what an earlier one wrote.
func (s *Store) CreateOrUpdateJournal(j *Journal) (*Journal, bool, error) {
	existing, err := s.JournalByDate(j.Date)
	if err != nil {
		return nil, false, err
	}
	now := time.Now().UTC()

	if existing == nil {
		if j.ID == "" {
			j.ID = newID()
		}
		j.CreatedAt = now
		j.UpdatedAt = now
		_, err := s.db.Exec(`
			INSERT INTO journals (id, date, title, summary, mood, effort, sports, key_events,
				accomplishments, challenges, gratitude, tomorrow_focus, sections, content,
				transcript_id, source_file, duration_seconds, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			j.ID, j.Date, j.Title, j.Summary, j.Mood, j.Effort,
			marshalJSON(j.Sports), marshalJSON(j.KeyEvents), marshalJSON(j.Accomplishments),
			marshalJSON(j.Challenges), marshalJSON(j.Gratitude), marshalJSON(j.TomorrowFocus),
			marshalJSON(j.Sections), j.Content, j.TranscriptID, j.SourceFile, j.DurationSeconds,
			now, now)
		if err != nil {
			return nil, false, fmt.Errorf("failed to create journal: %w", err)
		}
		return j, true, nil
	}

	merged := mergeJournal(existing, j)
	merged.UpdatedAt = now
	_, err = s.db.Exec(`
		UPDATE journals SET title = ?, summary = ?, mood = ?, effort = ?, sports = ?,
			key_events = ?, accomplishments = ?, challenges = ?, gratitude = ?,
			tomorrow_focus = ?, sections = ?, content = ?, updated_at = ?
		WHERE id = ?`,
		merged.Title, merged.Summary, merged.Mood, merged.Effort,
		marshalJSON(merged.Sports), marshalJSON(merged.KeyEvents), marshalJSON(merged.Accomplishments),
		marshalJSON(merged.Challenges), marshalJSON(merged.Gratitude), marshalJSON(merged.TomorrowFocus),
		marshalJSON(merged.Sections), merged.Content, merged.UpdatedAt, merged.ID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to update journal: %w", err)
	}
	return merged, false, nil
}

// mergeJournal folds incoming into existing: scalars keep their stored
// value unless empty, lists take the union preserving order, sections
// and content are appended.
func mergeJournal(existing, incoming *Journal) *Journal {
	out := *existing

	if out.Title == "" {
		out.Title = incoming.Title
	}
	if incoming.Summary != "" {
		if out.Summary == "" {
			out.Summary = incoming.Summary
		} else if out.Summary != incoming.Summary {
			out.Summary = out.Summary + " " + incoming.Summary
		}
	}
	if out.Mood == "" {
		out.Mood = incoming.Mood
	}
	if out.Effort == "" {
		out.Effort = incoming.Effort
	}

	out.Sports = unionStrings(out.Sports, incoming.Sports)
	out.KeyEvents = unionStrings(out.KeyEvents, incoming.KeyEvents)
	out.Accomplishments = unionStrings(out.Accomplishments, incoming.Accomplishments)
	out.Challenges = unionStrings(out.Challenges, incoming.Challenges)
	out.Gratitude = unionStrings(out.Gratitude, incoming.Gratitude)
	out.TomorrowFocus = unionStrings(out.TomorrowFocus, incoming.TomorrowFocus)

	out.Sections = append(out.Sections, incoming.Sections...)
	if incoming.Content != "" {
		if out.Content == "" {
			out.Content = incoming.Content
		} else {
			out.Content = out.Content + "\n\n" + incoming.Content
		}
	}
	return &out
}

// unionStrings appends items of b not already present in a (exact match).
func unionStrings(a, b []string) []string {
	seen := make(map[string]bool, len(a))
	for _, v := range a {
		seen[v] = true
	}
	out := append([]string{}, a...)
	for _, v := range b {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

const journalSelect = `
	SELECT id, date, title, summary, mood, effort, sports, key_events,
		accomplishments, challenges, gratitude, tomorrow_focus, sections, content,
		transcript_id, source_file, duration_seconds, created_at, updated_at
	FROM journals`

func scanJournals(rows *sql.Rows) ([]*Journal, error) {
	var out []*Journal
	for rows.Next() {
		var j Journal
		var sports, keyEvents, accomplishments, challenges, gratitude, tomorrowFocus, sections string
		if err := rows.Scan(&j.ID, &j.Date, &j.Title, &j.Summary, &j.Mood, &j.Effort,
			&sports, &keyEvents, &accomplishments, &challenges, &gratitude, &tomorrowFocus,
			&sections, &j.Content, &j.TranscriptID, &j.SourceFile, &j.DurationSeconds,
			&j.CreatedAt, &j.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan journal: %w", err)
		}
		j.Sports = unmarshalJSON[string](sports)
		j.KeyEvents = unmarshalJSON[string](keyEvents)
		j.Accomplishments = unmarshalJSON[string](accomplishments)
		j.Challenges = unmarshalJSON[string](challenges)
		j.Gratitude = unmarshalJSON[string](gratitude)
		j.TomorrowFocus = unmarshalJSON[string](tomorrowFocus)
		j.Sections = unmarshalJSON[Section](sections)
		out = append(out, &j)
	}
	return out, nil
}
