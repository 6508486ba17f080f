package analyze

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/avogt/scribe/internal/store"
)

// Decode parses raw model output into an Analysis and normalizes it.
func Decode(data []byte) (*Analysis, error) {
	var a Analysis
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("failed to decode analysis: %w", err)
	}
	Normalize(&a)
	return &a, nil
}

// Normalize enforces the analysis schema in place: every list non-nil,
// strings trimmed, enums coerced, and entries missing required fields
// dropped. Safe to apply repeatedly; it runs both after decoding and
// after consolidation.
func Normalize(a *Analysis) {
	a.Summary = strings.TrimSpace(a.Summary)
	a.Tags = cleanList(a.Tags)

	journals := a.Journals[:0]
	for i := range a.Journals {
		j := a.Journals[i]
		normalizeJournal(&j)
		if j.Summary == "" && j.Content == "" && len(j.Sections) == 0 {
			continue
		}
		journals = append(journals, j)
	}
	a.Journals = ensureJournals(journals)

	meetings := a.Meetings[:0]
	for i := range a.Meetings {
		m := a.Meetings[i]
		m.PersonName = strings.TrimSpace(m.PersonName)
		m.Title = strings.TrimSpace(m.Title)
		m.Summary = strings.TrimSpace(m.Summary)
		if m.Summary == "" && len(m.Topics) == 0 {
			continue
		}
		if m.Title == "" {
			name := m.PersonName
			if name == "" {
				name = "unknown"
			}
			m.Title = "Conversation with " + name
		}
		m.Topics = cleanTopics(m.Topics)
		m.PeopleMentioned = cleanList(m.PeopleMentioned)
		if m.FollowUps == nil {
			m.FollowUps = []store.FollowUp{}
		}
		meetings = append(meetings, m)
	}
	a.Meetings = ensureMeetings(meetings)

	reflections := a.Reflections[:0]
	for i := range a.Reflections {
		r := a.Reflections[i]
		r.Title = strings.TrimSpace(r.Title)
		r.TopicKey = strings.TrimSpace(r.TopicKey)
		r.Content = strings.TrimSpace(r.Content)
		if r.Title == "" && r.Content == "" {
			continue
		}
		if r.Title == "" {
			r.Title = r.TopicKey
		}
		r.Tags = cleanList(r.Tags)
		if r.Sections == nil {
			r.Sections = []store.Section{}
		}
		reflections = append(reflections, r)
	}
	a.Reflections = ensureReflections(reflections)

	tasks := a.Tasks[:0]
	for i := range a.Tasks {
		t := a.Tasks[i]
		t.Title = strings.TrimSpace(t.Title)
		if t.Title == "" {
			continue
		}
		switch t.Priority {
		case "high", "medium", "low":
		default:
			t.Priority = "medium"
		}
		tasks = append(tasks, t)
	}
	a.Tasks = ensureTasks(tasks)

	updates := a.CRMUpdates[:0]
	for i := range a.CRMUpdates {
		u := a.CRMUpdates[i]
		u.ContactName = strings.TrimSpace(u.ContactName)
		if u.ContactName == "" {
			continue
		}
		if u.Company == "" && u.Position == "" && u.Location == "" && u.PersonalNotes == "" {
			continue
		}
		updates = append(updates, u)
	}
	a.CRMUpdates = ensureCRM(updates)

	if !validCategory(a.PrimaryCategory) {
		a.PrimaryCategory = inferCategory(a)
	}
}

func normalizeJournal(j *JournalEntry) {
	j.Summary = strings.TrimSpace(j.Summary)
	j.Sports = cleanList(j.Sports)
	j.KeyEvents = cleanList(j.KeyEvents)
	j.Accomplishments = cleanList(j.Accomplishments)
	j.Challenges = cleanList(j.Challenges)
	j.Gratitude = cleanList(j.Gratitude)
	j.TomorrowFocus = cleanList(j.TomorrowFocus)
	if j.Sections == nil {
		j.Sections = []store.Section{}
	}
}

func validCategory(c string) bool {
	switch c {
	case CategoryJournal, CategoryMeeting, CategoryReflection, CategoryTaskPlanning, CategoryOther:
		return true
	}
	return false
}

// inferCategory recomputes the category from content, highest
// precedence first.
func inferCategory(a *Analysis) string {
	switch {
	case len(a.Journals) > 0:
		return CategoryJournal
	case len(a.Meetings) > 0:
		return CategoryMeeting
	case len(a.Reflections) > 0:
		return CategoryReflection
	case len(a.Tasks) > 0:
		return CategoryTaskPlanning
	default:
		return CategoryOther
	}
}

func cleanList(in []string) []string {
	out := []string{}
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func cleanTopics(in []store.Topic) []store.Topic {
	out := []store.Topic{}
	for _, t := range in {
		t.Topic = strings.TrimSpace(t.Topic)
		if t.Topic == "" {
			continue
		}
		if t.Details == nil {
			t.Details = []string{}
		}
		out = append(out, t)
	}
	return out
}

func ensureJournals(in []JournalEntry) []JournalEntry {
	if in == nil {
		return []JournalEntry{}
	}
	return in
}

func ensureMeetings(in []MeetingEntry) []MeetingEntry {
	if in == nil {
		return []MeetingEntry{}
	}
	return in
}

func ensureReflections(in []ReflectionEntry) []ReflectionEntry {
	if in == nil {
		return []ReflectionEntry{}
	}
	return in
}

func ensureTasks(in []TaskEntry) []TaskEntry {
	if in == nil {
		return []TaskEntry{}
	}
	return in
}

func ensureCRM(in []CRMUpdate) []CRMUpdate {
	if in == nil {
		return []CRMUpdate{}
	}
	return in
}
