package analyze

import "testing"

func TestDecode_EmptyObjectYieldsCompleteSchema(t *testing.T) {
	a, err := Decode([]byte(`{}`))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if a.Tags == nil || a.Journals == nil || a.Meetings == nil || a.Reflections == nil || a.Tasks == nil || a.CRMUpdates == nil {
		t.Error("Expected all list fields non-nil")
	}
	if a.PrimaryCategory != CategoryOther {
		t.Errorf("Expected empty analysis categorized as other, got %s", a.PrimaryCategory)
	}
}

func TestDecode_MalformedJSON(t *testing.T) {
	if _, err := Decode([]byte("not json")); err == nil {
		t.Error("Expected error for malformed JSON")
	}
}

func TestNormalize_CategoryRecomputedByPrecedence(t *testing.T) {
	a := &Analysis{
		PrimaryCategory: "banana",
		Journals:        []JournalEntry{{Summary: "A day."}},
		Meetings:        []MeetingEntry{{PersonName: "Sarah", Summary: "Chat."}},
	}
	Normalize(a)
	if a.PrimaryCategory != CategoryJournal {
		t.Errorf("Expected journal to outrank meeting, got %s", a.PrimaryCategory)
	}

	b := &Analysis{
		PrimaryCategory: "",
		Tasks:           []TaskEntry{{Title: "Do thing"}},
	}
	Normalize(b)
	if b.PrimaryCategory != CategoryTaskPlanning {
		t.Errorf("Expected task_planning, got %s", b.PrimaryCategory)
	}
}

func TestNormalize_ValidCategoryKept(t *testing.T) {
	a := &Analysis{
		PrimaryCategory: CategoryReflection,
		Tasks:           []TaskEntry{{Title: "Do thing"}},
	}
	Normalize(a)
	if a.PrimaryCategory != CategoryReflection {
		t.Errorf("Expected explicit valid category preserved, got %s", a.PrimaryCategory)
	}
}

func TestNormalize_DropsEmptyEntries(t *testing.T) {
	a := &Analysis{
		Meetings: []MeetingEntry{
			{PersonName: "Sarah"}, // no summary, no topics
			{PersonName: "Marcus", Summary: "Real content."},
		},
		Tasks: []TaskEntry{
			{Title: "   "},
			{Title: "Send deck", Priority: "urgent"},
		},
		CRMUpdates: []CRMUpdate{
			{ContactName: "Sarah"}, // nothing to update
			{ContactName: "Marcus", Company: "Acme"},
		},
	}
	Normalize(a)
	if len(a.Meetings) != 1 {
		t.Errorf("Expected content-free meeting dropped, got %d", len(a.Meetings))
	}
	if len(a.Tasks) != 1 {
		t.Errorf("Expected blank task dropped, got %d", len(a.Tasks))
	}
	if a.Tasks[0].Priority != "medium" {
		t.Errorf("Expected unknown priority coerced to medium, got %s", a.Tasks[0].Priority)
	}
	if len(a.CRMUpdates) != 1 {
		t.Errorf("Expected empty CRM update dropped, got %d", len(a.CRMUpdates))
	}
}

func TestNormalize_EmptyJournalDropped(t *testing.T) {
	a := &Analysis{Journals: []JournalEntry{
		{Date: "2026-08-25"},
		{Date: "2026-08-26", Summary: "A real day."},
	}}
	Normalize(a)
	if len(a.Journals) != 1 || a.Journals[0].Date != "2026-08-26" {
		t.Errorf("Expected content-free journal dropped, got %+v", a.Journals)
	}
}

func TestNormalize_MeetingTitleDefault(t *testing.T) {
	a := &Analysis{Meetings: []MeetingEntry{{PersonName: "Sarah", Summary: "Chat."}}}
	Normalize(a)
	if a.Meetings[0].Title != "Conversation with Sarah" {
		t.Errorf("Expected default title, got %q", a.Meetings[0].Title)
	}
}
