package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// ExistingReflectionTopics lists every reflection as a slim reference
// so the analyzer can target appends at existing topics.
func (s *Store) ExistingReflectionTopics() ([]TopicRef, error) {
	rows, err := s.db.Query(`SELECT id, topic_key, title FROM reflections ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query reflection topics: %w", err)
	}
	defer rows.Close()

	var out []TopicRef
	for rows.Next() {
		var r TopicRef
		if err := rows.Scan(&r.ID, &r.TopicKey, &r.Title); err != nil {
			return nil, fmt.Errorf("failed to scan reflection topic: %w", err)
		}
		out = append(out, r)
	}
	return out, nil
}

// GetReflection returns one reflection by ID, or nil when absent.
func (s *Store) GetReflection(id string) (*Reflection, error) {
	rows, err := s.db.Query(reflectionSelect+` WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query reflection: %w", err)
	}
	defer rows.Close()
	list, err := scanReflections(rows)
	if err != nil || len(list) == 0 {
		return nil, err
	}
	return list[0], nil
}

// RecentReflections returns the most recently updated reflections.
func (s *Store) RecentReflections(limit int) ([]*Reflection, error) {
	rows, err := s.db.Query(reflectionSelect+` ORDER BY updated_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query reflections: %w", err)
	}
	defer rows.Close()
	return scanReflections(rows)
}

// FindSimilarReflection is the heuristic fallback used when the
// analyzer did not name an append target. Match order: exact topic_key,
// then title substring, then any shared tag. Topic keys containing
// digits never fuzzy-match so numbered series stay separate entries.
func (s *Store) FindSimilarReflection(topicKey, title string, tags []string) (*Reflection, error) {
	topicKey = strings.ToLower(strings.TrimSpace(topicKey))

	if topicKey != "" {
		rows, err := s.db.Query(reflectionSelect+` WHERE LOWER(topic_key) = ?`, topicKey)
		if err != nil {
			return nil, fmt.Errorf("failed to query reflections: %w", err)
		}
		exact, err := scanReflections(rows)
		rows.Close()
		if err != nil {
			return nil, err
		}
		if len(exact) > 0 {
			return exact[0], nil
		}
	}

	if containsDigit(topicKey) {
		return nil, nil
	}

	all, err := s.RecentReflections(200)
	if err != nil {
		return nil, err
	}

	titleLower := strings.ToLower(strings.TrimSpace(title))
	if titleLower != "" {
		for _, r := range all {
			if containsDigit(strings.ToLower(r.TopicKey)) {
				continue
			}
			existing := strings.ToLower(r.Title)
			if existing != "" && (strings.Contains(existing, titleLower) || strings.Contains(titleLower, existing)) {
				return r, nil
			}
		}
	}

	if len(tags) > 0 {
		want := make(map[string]bool, len(tags))
		for _, t := range tags {
			want[strings.ToLower(strings.TrimSpace(t))] = true
		}
		for _, r := range all {
			if containsDigit(strings.ToLower(r.TopicKey)) {
				continue
			}
			for _, t := range r.Tags {
				if want[strings.ToLower(strings.TrimSpace(t))] {
					return r, nil
				}
			}
		}
	}

	return nil, nil
}

// CreateReflection inserts a new reflection, stamping the content with
// an entry header.
func (s *Store) CreateReflection(r *Reflection) (*Reflection, error) {
	if r.ID == "" {
		r.ID = newID()
	}
	now := time.Now().UTC()
	r.CreatedAt = now
	r.UpdatedAt = now
	if r.Date == "" {
		r.Date = now.Format("2006-01-02")
	}
	if r.Content != "" && !strings.HasPrefix(r.Content, "### Entry:") {
		r.Content = fmt.Sprintf("### Entry: %s\n\n%s", r.Date, r.Content)
	}
	_, err := s.db.Exec(`
		INSERT INTO reflections (id, title, date, topic_key, tags, sections, content,
			transcript_id, source_file, duration_seconds, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Title, r.Date, r.TopicKey, marshalJSON(r.Tags), marshalJSON(r.Sections),
		r.Content, r.TranscriptID, r.SourceFile, r.DurationSeconds, now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create reflection: %w", err)
	}
	return r, nil
}

// AppendToReflection adds new material to an existing reflection under
// a dated update divider, merging tags and sections.
func (s *Store) AppendToReflection(id string, incoming *Reflection) (*Reflection, error) {
	existing, err := s.GetReflection(id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, fmt.Errorf("reflection %s not found", id)
	}

	now := time.Now().UTC()
	date := incoming.Date
	if date == "" {
		date = now.Format("2006-01-02")
	}

	if incoming.Content != "" {
		divider := fmt.Sprintf("\n\n---\n\n### Update: %s\n\n", date)
		existing.Content = existing.Content + divider + incoming.Content
	}
	existing.Tags = unionStringsFold(existing.Tags, incoming.Tags)
	existing.Sections = append(existing.Sections, incoming.Sections...)
	existing.UpdatedAt = now

	_, err = s.db.Exec(`
		UPDATE reflections SET tags = ?, sections = ?, content = ?, updated_at = ? WHERE id = ?`,
		marshalJSON(existing.Tags), marshalJSON(existing.Sections), existing.Content,
		existing.UpdatedAt, existing.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to append to reflection: %w", err)
	}
	return existing, nil
}

// unionStringsFold appends items of b not already in a, case-insensitively.
func unionStringsFold(a, b []string) []string {
	seen := make(map[string]bool, len(a))
	for _, v := range a {
		seen[strings.ToLower(strings.TrimSpace(v))] = true
	}
	out := append([]string{}, a...)
	for _, v := range b {
		key := strings.ToLower(strings.TrimSpace(v))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, v)
	}
	return out
}

func containsDigit(s string) bool {
	for _, r := range s {
		if r >= '0' && r <= '9' {
			return true
		}
	}
	return false
}

const reflectionSelect = `
	SELECT id, title, date, topic_key, tags, sections, content,
		transcript_id, source_file, duration_seconds, created_at, updated_at
	FROM reflections`

func scanReflections(rows *sql.Rows) ([]*Reflection, error) {
	var out []*Reflection
	for rows.Next() {
		var r Reflection
		var tags, sections string
		if err := rows.Scan(&r.ID, &r.Title, &r.Date, &r.TopicKey, &tags, &sections,
			&r.Content, &r.TranscriptID, &r.SourceFile, &r.DurationSeconds,
			&r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan reflection: %w", err)
		}
		r.Tags = unmarshalJSON[string](tags)
		r.Sections = unmarshalJSON[Section](sections)
		out = append(out, &r)
	}
	return out, nil
}
