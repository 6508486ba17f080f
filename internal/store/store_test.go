package store

import (
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "scribe.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestFindContactByName_ExactFullName(t *testing.T) {
	s := openTestStore(t)

	s.CreateContact(&Contact{FirstName: "Sarah", LastName: "Chen"})
	s.CreateContact(&Contact{FirstName: "Sarah", LastName: "Miller"})

	match, err := s.FindContactByName("sarah chen")
	if err != nil {
		t.Fatalf("FindContactByName failed: %v", err)
	}
	if match.Contact == nil {
		t.Fatal("Expected exact match, got none")
	}
	if match.Contact.LastName != "Chen" {
		t.Errorf("Expected Chen, got %s", match.Contact.LastName)
	}
	if len(match.Suggestions) != 0 {
		t.Errorf("Expected no suggestions alongside a match, got %d", len(match.Suggestions))
	}
}

func TestFindContactByName_UniqueFirstName(t *testing.T) {
	s := openTestStore(t)

	s.CreateContact(&Contact{FirstName: "Alinta", LastName: "Vogt"})
	s.CreateContact(&Contact{FirstName: "Marcus", LastName: "Webb"})

	match, err := s.FindContactByName("Alinta")
	if err != nil {
		t.Fatalf("FindContactByName failed: %v", err)
	}
	if match.Contact == nil || match.Contact.LastName != "Vogt" {
		t.Fatalf("Expected unique first-name match on Vogt, got %+v", match)
	}
}

func TestFindContactByName_AmbiguousFirstName(t *testing.T) {
	s := openTestStore(t)

	s.CreateContact(&Contact{FirstName: "Sarah", LastName: "Chen"})
	s.CreateContact(&Contact{FirstName: "Sarah", LastName: "Miller"})

	match, err := s.FindContactByName("Sarah")
	if err != nil {
		t.Fatalf("FindContactByName failed: %v", err)
	}
	if match.Contact != nil {
		t.Error("Expected no direct match for ambiguous first name")
	}
	if len(match.Suggestions) != 2 {
		t.Errorf("Expected 2 suggestions, got %d", len(match.Suggestions))
	}
}

func TestFindContactByName_SubstringSuggestions(t *testing.T) {
	s := openTestStore(t)

	s.CreateContact(&Contact{FirstName: "Robert", LastName: "Smith"})
	s.CreateContact(&Contact{FirstName: "Anna", LastName: "Roberts"})
	s.CreateContact(&Contact{FirstName: "Marcus", LastName: "Webb"})

	match, err := s.FindContactByName("Rob")
	if err != nil {
		t.Fatalf("FindContactByName failed: %v", err)
	}
	if match.Contact != nil {
		t.Error("Expected no confident match on a partial name")
	}
	if len(match.Suggestions) != 2 {
		t.Fatalf("Expected Robert and Roberts as suggestions, got %+v", match.Suggestions)
	}
}

func TestFindContactByName_Unknown(t *testing.T) {
	s := openTestStore(t)

	match, err := s.FindContactByName("Nobody Here")
	if err != nil {
		t.Fatalf("FindContactByName failed: %v", err)
	}
	if match.Contact != nil || len(match.Suggestions) != 0 {
		t.Errorf("Expected empty result, got %+v", match)
	}
}

func TestUpdateContactFields_MergePolicy(t *testing.T) {
	s := openTestStore(t)

	c, _ := s.CreateContact(&Contact{
		FirstName: "Jonas", LastName: "Berg",
		Company: "Acme", Location: "Berlin", Notes: "[2026-01-10] Met at conference",
	})

	now := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	updated, err := s.UpdateContactFields(c.ID, ContactUpdate{
		Company:  "Acme Industries GmbH",
		Location: "Hamburg",
		Notes:    "Prefers email over calls",
	}, now)
	if err != nil {
		t.Fatalf("UpdateContactFields failed: %v", err)
	}

	if updated.Company != "Acme Industries GmbH" {
		t.Errorf("Expected longer company to win, got %s", updated.Company)
	}
	if updated.Location != "Berlin" {
		t.Errorf("Expected existing location preserved, got %s", updated.Location)
	}
	if !strings.Contains(updated.Notes, "[2026-08-26] Prefers email over calls") {
		t.Errorf("Expected date-stamped note appended, got %q", updated.Notes)
	}
	if !strings.Contains(updated.Notes, "Met at conference") {
		t.Error("Expected earlier notes preserved")
	}

	// Appending the same note again is a no-op
	again, err := s.UpdateContactFields(c.ID, ContactUpdate{Notes: "Prefers email over calls"}, now)
	if err != nil {
		t.Fatalf("UpdateContactFields failed: %v", err)
	}
	if strings.Count(again.Notes, "Prefers email") != 1 {
		t.Errorf("Expected note deduped, got %q", again.Notes)
	}

	// Shorter company never overwrites
	short, _ := s.UpdateContactFields(c.ID, ContactUpdate{Company: "Acme"}, now)
	if short.Company != "Acme Industries GmbH" {
		t.Errorf("Expected shorter company ignored, got %s", short.Company)
	}
}

func TestCreateOrUpdateJournal_MergePreservesExisting(t *testing.T) {
	s := openTestStore(t)

	first, created, err := s.CreateOrUpdateJournal(&Journal{
		Date: "2026-08-25", Summary: "Morning run and deep work.",
		Mood: "energized", KeyEvents: []string{"10k run"},
	})
	if err != nil {
		t.Fatalf("CreateOrUpdateJournal failed: %v", err)
	}
	if !created {
		t.Fatal("Expected first call to create")
	}

	second, created, err := s.CreateOrUpdateJournal(&Journal{
		Date: "2026-08-25", Summary: "Evening review went well.",
		Mood: "tired", KeyEvents: []string{"10k run", "team dinner"},
	})
	if err != nil {
		t.Fatalf("CreateOrUpdateJournal failed: %v", err)
	}
	if created {
		t.Fatal("Expected second call to update, not create")
	}
	if second.ID != first.ID {
		t.Errorf("Expected same journal row, got %s vs %s", second.ID, first.ID)
	}
	if second.Mood != "energized" {
		t.Errorf("Expected existing mood preserved, got %s", second.Mood)
	}
	if !strings.Contains(second.Summary, "Morning run") || !strings.Contains(second.Summary, "Evening review") {
		t.Errorf("Expected summaries joined, got %q", second.Summary)
	}
	if len(second.KeyEvents) != 2 {
		t.Errorf("Expected key events deduped to 2, got %v", second.KeyEvents)
	}
}

func TestCreateTasks_TitleDedup(t *testing.T) {
	s := openTestStore(t)

	created, err := s.CreateTasks([]*Task{
		{Title: "Send deck to Alinta"},
		{Title: "Send deck to Alinta"},
		{Title: "  "},
		{Title: "Book flights"},
	})
	if err != nil {
		t.Fatalf("CreateTasks failed: %v", err)
	}
	if len(created) != 3 {
		t.Fatalf("Expected 3 tasks returned, got %d", len(created))
	}
	if created[0].ID != created[1].ID {
		t.Errorf("Expected duplicate title to return the existing task, got %s vs %s",
			created[0].ID, created[1].ID)
	}

	// A second call with the same title hands back the same ID
	// instead of dropping the task.
	repeat, err := s.CreateTasks([]*Task{{Title: "Send deck to Alinta"}})
	if err != nil {
		t.Fatalf("CreateTasks failed: %v", err)
	}
	if len(repeat) != 1 || repeat[0].ID != created[0].ID {
		t.Fatalf("Expected existing task ID %s back, got %+v", created[0].ID, repeat)
	}

	open, _ := s.OpenTasks(10)
	if len(open) != 2 {
		t.Errorf("Expected 2 stored tasks, got %d", len(open))
	}

	// A deleted task frees its title
	if err := s.DeleteTask(created[0].ID); err != nil {
		t.Fatalf("DeleteTask failed: %v", err)
	}
	again, err := s.CreateTasks([]*Task{{Title: "Send deck to Alinta"}})
	if err != nil {
		t.Fatalf("CreateTasks failed: %v", err)
	}
	if len(again) != 1 || again[0].ID == created[0].ID {
		t.Errorf("Expected a fresh task after delete, got %+v", again)
	}
}

func TestReflectionAppend_Divider(t *testing.T) {
	s := openTestStore(t)

	r, err := s.CreateReflection(&Reflection{
		Title: "Career direction", TopicKey: "career-direction",
		Date: "2026-08-01", Content: "Thinking about moving into infra work.",
		Tags: []string{"career"},
	})
	if err != nil {
		t.Fatalf("CreateReflection failed: %v", err)
	}
	if !strings.HasPrefix(r.Content, "### Entry: 2026-08-01") {
		t.Errorf("Expected entry header, got %q", r.Content)
	}

	updated, err := s.AppendToReflection(r.ID, &Reflection{
		Date: "2026-08-25", Content: "Talked to two platform teams.",
		Tags: []string{"Career", "networking"},
	})
	if err != nil {
		t.Fatalf("AppendToReflection failed: %v", err)
	}
	if !strings.Contains(updated.Content, "### Update: 2026-08-25") {
		t.Errorf("Expected update divider, got %q", updated.Content)
	}
	if len(updated.Tags) != 2 {
		t.Errorf("Expected tags merged case-insensitively to 2, got %v", updated.Tags)
	}
}

func TestFindSimilarReflection_NumberedTopicsStaySeparate(t *testing.T) {
	s := openTestStore(t)

	s.CreateReflection(&Reflection{Title: "Week 33 review", TopicKey: "week-33-review"})

	// Exact key still matches
	hit, err := s.FindSimilarReflection("week-33-review", "", nil)
	if err != nil {
		t.Fatalf("FindSimilarReflection failed: %v", err)
	}
	if hit == nil {
		t.Fatal("Expected exact topic_key match")
	}

	// A different numbered key must not fuzzy-match the existing one
	miss, err := s.FindSimilarReflection("week-34-review", "Week 34 review", nil)
	if err != nil {
		t.Fatalf("FindSimilarReflection failed: %v", err)
	}
	if miss != nil {
		t.Errorf("Expected no fuzzy match for numbered topic, got %s", miss.Title)
	}
}

func TestFindSimilarReflection_TitleAndTags(t *testing.T) {
	s := openTestStore(t)

	s.CreateReflection(&Reflection{
		Title: "Health and training", TopicKey: "health-training",
		Tags: []string{"health", "running"},
	})

	byTitle, err := s.FindSimilarReflection("fitness", "training", nil)
	if err != nil {
		t.Fatalf("FindSimilarReflection failed: %v", err)
	}
	if byTitle == nil {
		t.Error("Expected title substring match")
	}

	byTag, err := s.FindSimilarReflection("something-else", "unrelated", []string{"Running"})
	if err != nil {
		t.Fatalf("FindSimilarReflection failed: %v", err)
	}
	if byTag == nil {
		t.Error("Expected tag overlap match")
	}
}

func TestRecordsForTranscript(t *testing.T) {
	s := openTestStore(t)

	tr, err := s.CreateTranscript(&Transcript{SourceFile: "memo.txt", FullText: "hello"})
	if err != nil {
		t.Fatalf("CreateTranscript failed: %v", err)
	}

	lr, err := s.RecordsForTranscript(tr.ID)
	if err != nil {
		t.Fatalf("RecordsForTranscript failed: %v", err)
	}
	if lr.AlreadyProcessed {
		t.Error("Expected fresh transcript to be unprocessed")
	}

	s.CreateMeeting(&Meeting{Title: "Coffee with Alinta", Date: "2026-08-25", TranscriptID: tr.ID})
	s.CreateTask(&Task{Title: "Send deck", TranscriptID: tr.ID})

	lr, err = s.RecordsForTranscript(tr.ID)
	if err != nil {
		t.Fatalf("RecordsForTranscript failed: %v", err)
	}
	if !lr.AlreadyProcessed {
		t.Error("Expected transcript flagged as processed")
	}
	if len(lr.MeetingIDs) != 1 || len(lr.TaskIDs) != 1 {
		t.Errorf("Expected 1 meeting and 1 task, got %d/%d", len(lr.MeetingIDs), len(lr.TaskIDs))
	}
}
