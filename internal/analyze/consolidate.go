package analyze

import "strings"

// Consolidate merges meetings that refer to the same person into one
// entry per counterpart. Models frequently split a single conversation
// into several meeting objects; persisting those separately would
// scatter one chat across the database. Pure and idempotent: running it
// on already-consolidated input changes nothing.
func Consolidate(a *Analysis) {
	if len(a.Meetings) < 2 {
		return
	}

	byPerson := make(map[string]int)
	merged := []MeetingEntry{}

	for _, m := range a.Meetings {
		key := strings.ToLower(strings.TrimSpace(m.PersonName))
		if key == "" {
			key = "unknown"
		}
		idx, seen := byPerson[key]
		if !seen {
			byPerson[key] = len(merged)
			merged = append(merged, m)
			continue
		}
		merged[idx] = mergeMeetings(merged[idx], m)
	}

	a.Meetings = merged
}

func mergeMeetings(base, extra MeetingEntry) MeetingEntry {
	if extra.Summary != "" && extra.Summary != base.Summary {
		if base.Summary == "" {
			base.Summary = extra.Summary
		} else {
			base.Summary = base.Summary + " " + extra.Summary
		}
	}

	seen := make(map[string]bool, len(base.Topics))
	for _, t := range base.Topics {
		seen[strings.ToLower(strings.TrimSpace(t.Topic))] = true
	}
	for _, t := range extra.Topics {
		key := strings.ToLower(strings.TrimSpace(t.Topic))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		base.Topics = append(base.Topics, t)
	}

	people := make(map[string]bool, len(base.PeopleMentioned))
	for _, p := range base.PeopleMentioned {
		people[strings.ToLower(strings.TrimSpace(p))] = true
	}
	for _, p := range extra.PeopleMentioned {
		key := strings.ToLower(strings.TrimSpace(p))
		if key == "" || people[key] {
			continue
		}
		people[key] = true
		base.PeopleMentioned = append(base.PeopleMentioned, p)
	}

	// Follow-ups are conversational reminders; duplicates are harmless
	// and context-bearing, so they concatenate as-is.
	base.FollowUps = append(base.FollowUps, extra.FollowUps...)

	if base.Date == "" {
		base.Date = extra.Date
	}
	if base.Location == "" {
		base.Location = extra.Location
	}
	return base
}
