package analyze

import (
	"reflect"
	"testing"

	"github.com/avogt/scribe/internal/store"
)

func TestConsolidate_MergesSamePerson(t *testing.T) {
	a := &Analysis{Meetings: []MeetingEntry{
		{
			PersonName: "Sarah Chen", Summary: "Talked about the migration.",
			Topics:          []store.Topic{{Topic: "Migration", Details: []string{"cutover friday"}}},
			PeopleMentioned: []string{"Marcus"},
			FollowUps:       []store.FollowUp{{Topic: "vacation", Context: "ask how Portugal was"}},
		},
		{
			PersonName: "sarah chen ", Summary: "Also discussed hiring.",
			Topics:          []store.Topic{{Topic: "migration"}, {Topic: "Hiring"}},
			PeopleMentioned: []string{"marcus", "Priya"},
			FollowUps:       []store.FollowUp{{Topic: "vacation", Context: "ask how Portugal was"}},
		},
		{PersonName: "Marcus Webb", Summary: "Quick sync on budget."},
	}}

	Consolidate(a)

	if len(a.Meetings) != 2 {
		t.Fatalf("Expected 2 meetings after consolidation, got %d", len(a.Meetings))
	}
	m := a.Meetings[0]
	if m.Summary != "Talked about the migration. Also discussed hiring." {
		t.Errorf("Expected summaries joined with a space, got %q", m.Summary)
	}
	if len(m.Topics) != 2 {
		t.Errorf("Expected topics deduped case-insensitively to 2, got %v", m.Topics)
	}
	if len(m.PeopleMentioned) != 2 {
		t.Errorf("Expected people_mentioned union of 2, got %v", m.PeopleMentioned)
	}
	if len(m.FollowUps) != 2 {
		t.Errorf("Expected follow-ups concatenated without dedup, got %d", len(m.FollowUps))
	}
}

func TestConsolidate_EmptyNamesGroupAsUnknown(t *testing.T) {
	a := &Analysis{Meetings: []MeetingEntry{
		{PersonName: "", Summary: "First fragment."},
		{PersonName: "  ", Summary: "Second fragment."},
	}}
	Consolidate(a)
	if len(a.Meetings) != 1 {
		t.Fatalf("Expected unnamed meetings merged, got %d", len(a.Meetings))
	}
}

func TestConsolidate_Idempotent(t *testing.T) {
	a := &Analysis{Meetings: []MeetingEntry{
		{PersonName: "Sarah", Summary: "One.", Topics: []store.Topic{{Topic: "x"}}},
		{PersonName: "Sarah", Summary: "Two."},
		{PersonName: "Marcus", Summary: "Three."},
	}}
	Consolidate(a)
	once := make([]MeetingEntry, len(a.Meetings))
	copy(once, a.Meetings)

	Consolidate(a)
	if !reflect.DeepEqual(once, a.Meetings) {
		t.Errorf("Expected consolidation to be a fixed point, got %+v vs %+v", once, a.Meetings)
	}
}
