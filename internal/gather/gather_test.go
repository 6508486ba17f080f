package gather

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/avogt/scribe/internal/store"
)

type fakeRepo struct {
	contacts []*store.Contact
	emails   []*store.Email
	journals []*store.Journal
	apps     []*store.Application
	appCalls int
}

func (f *fakeRepo) AllContacts() ([]*store.Contact, error) { return f.contacts, nil }
func (f *fakeRepo) FindContactByName(name string) (*store.ContactMatch, error) {
	for _, c := range f.contacts {
		if strings.EqualFold(c.FirstName, strings.Fields(name)[0]) {
			return &store.ContactMatch{Contact: c}, nil
		}
	}
	return &store.ContactMatch{}, nil
}
func (f *fakeRepo) RecentMeetingsWithContact(string, int) ([]*store.Meeting, error) {
	return nil, nil
}
func (f *fakeRepo) RecentMeetings(int) ([]*store.Meeting, error)  { return nil, nil }
func (f *fakeRepo) RecentJournals(int) ([]*store.Journal, error)  { return f.journals, nil }
func (f *fakeRepo) ExistingReflectionTopics() ([]store.TopicRef, error) {
	return []store.TopicRef{{ID: "r1", TopicKey: "career-direction", Title: "Career direction"}}, nil
}
func (f *fakeRepo) OpenTasks(int) ([]*store.Task, error) { return nil, nil }
func (f *fakeRepo) CalendarEventsAround(string, int, int) ([]*store.CalendarEvent, error) {
	return nil, nil
}
func (f *fakeRepo) RecentEmailsForContact(string, int) ([]*store.Email, error) {
	return f.emails, nil
}
func (f *fakeRepo) ActiveApplications(int) ([]*store.Application, error) {
	f.appCalls++
	return f.apps, nil
}

type fakeModel struct {
	response string
	err      error
	calls    int
}

func (m *fakeModel) Invoke(ctx context.Context, prompt, model string, maxTokens int) (string, error) {
	m.calls++
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

func longTranscript() string {
	return strings.Repeat("Today I spoke with Alinta about the migration plan and we agreed on next steps. ", 10)
}

func TestExtractEntities_ShortTranscriptSkipsModel(t *testing.T) {
	model := &fakeModel{response: `{"people":["X"]}`}
	ents := ExtractEntities(context.Background(), model, "test-model", "Quick note about lunch with Alinta tomorrow")
	if model.calls != 0 {
		t.Errorf("Expected no model call for short transcript, got %d", model.calls)
	}
	if !ents.UsedFallback {
		t.Error("Expected fallback extraction for short transcript")
	}
	found := false
	for _, p := range ents.People {
		if p == "Alinta" {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected Alinta extracted, got %v", ents.People)
	}
}

func TestExtractEntities_ModelFailureFallsBack(t *testing.T) {
	model := &fakeModel{err: errors.New("api down")}
	ents := ExtractEntities(context.Background(), model, "test-model", longTranscript())
	if model.calls != 1 {
		t.Errorf("Expected one model attempt, got %d", model.calls)
	}
	if !ents.UsedFallback {
		t.Error("Expected fallback after model failure")
	}
}

func TestExtractEntities_FencedJSON(t *testing.T) {
	model := &fakeModel{response: "```json\n{\"people\":[\"Sarah Chen\",\"sarah chen\"],\"topics\":[\" migration \"],\"is_journal\":false}\n```"}
	ents := ExtractEntities(context.Background(), model, "test-model", longTranscript())
	if ents.UsedFallback {
		t.Fatal("Expected model result to be used")
	}
	if len(ents.People) != 1 {
		t.Errorf("Expected case-insensitive dedup to 1 person, got %v", ents.People)
	}
	if len(ents.Topics) != 1 || ents.Topics[0] != "migration" {
		t.Errorf("Expected trimmed topic, got %v", ents.Topics)
	}
}

func TestGather_BudgetTrimsLowPriorityFirst(t *testing.T) {
	var emails []*store.Email
	for i := 0; i < 6; i++ {
		emails = append(emails, &store.Email{
			Subject: strings.Repeat("quarterly planning update ", 3),
			Sender:  "a@b.c", Date: "2026-08-20",
			Snippet: "Sharing the latest numbers ahead of the review.",
		})
	}
	repo := &fakeRepo{
		contacts: []*store.Contact{{ID: "c1", FirstName: "Alinta", LastName: "Vogt"}},
		emails:   emails,
		journals: []*store.Journal{
			{Date: "2026-08-24", Summary: "Short day summary."},
		},
	}
	model := &fakeModel{response: `{"people":["Alinta"],"topics":[],"companies":[]}`}

	g := New(repo, model, "test-model", 600)
	pkg := g.Gather(context.Background(), longTranscript(), "2026-08-25")

	if pkg.Size() > 600 {
		t.Errorf("Expected package within budget, got %d chars", pkg.Size())
	}
	if pkg.Contacts == "" {
		t.Error("Expected contacts never trimmed")
	}
	trimmed := pkg.Sections[CategoryEmails]
	if strings.Count(trimmed, "\n")+1 >= len(emails) {
		t.Error("Expected email entries dropped before higher priority sections")
	}
	// Trimming drops whole entries, never partial lines.
	for _, line := range strings.Split(trimmed, "\n") {
		if line != "" && !strings.HasSuffix(line, "review.") {
			t.Errorf("Expected only complete email entries, got %q", line)
		}
	}
	if pkg.Sections[CategoryJournals] == "" {
		t.Error("Expected journal section to survive trimming")
	}
}

func TestGather_ApplicationsKeywordGated(t *testing.T) {
	repo := &fakeRepo{
		apps: []*store.Application{{Company: "Initech", Position: "Staff Engineer", Status: "active", Stage: "onsite"}},
	}
	model := &fakeModel{err: errors.New("model down")}

	g := New(repo, model, "test-model", 100_000)
	pkg := g.Gather(context.Background(), longTranscript(), "2026-08-25")
	if repo.appCalls != 0 || pkg.Sections[CategoryApplications] != "" {
		t.Error("Expected no application lookup for a memo without job keywords")
	}

	pkg = g.Gather(context.Background(),
		"Reflecting on yesterday's interview with Initech and whether the new role fits.", "2026-08-25")
	if repo.appCalls != 1 {
		t.Errorf("Expected one application lookup for a job memo, got %d", repo.appCalls)
	}
	if !strings.Contains(pkg.Sections[CategoryApplications], "Initech") {
		t.Errorf("Expected application section populated, got %q", pkg.Sections[CategoryApplications])
	}
}

func TestGather_ResolvesPeople(t *testing.T) {
	repo := &fakeRepo{
		contacts: []*store.Contact{{ID: "c1", FirstName: "Alinta", LastName: "Vogt"}},
	}
	model := &fakeModel{response: `{"people":["Alinta"],"topics":["migration"]}`}

	g := New(repo, model, "test-model", 100_000)
	pkg := g.Gather(context.Background(), longTranscript(), "2026-08-25")

	match, ok := pkg.PersonMatches["Alinta"]
	if !ok || match.Contact == nil || match.Contact.ID != "c1" {
		t.Fatalf("Expected Alinta resolved to c1, got %+v", match)
	}
	if len(pkg.Topics) != 1 || pkg.Topics[0].TopicKey != "career-direction" {
		t.Errorf("Expected reflection topics loaded, got %v", pkg.Topics)
	}
}

func TestPackageRender(t *testing.T) {
	pkg := &Package{
		Contacts: "- Alinta Vogt",
		Sections: map[Category]string{
			CategoryMeetings: "- Coffee (2026-08-20, with Alinta): caught up",
			CategoryEmails:   "- Deck review from a@b.c",
		},
	}
	out := pkg.Render()
	if !strings.Contains(out, "## Known contacts") {
		t.Error("Expected contacts heading")
	}
	meetIdx := strings.Index(out, "## Recent meetings")
	emailIdx := strings.Index(out, "## Recent emails")
	if meetIdx < 0 || emailIdx < 0 || meetIdx > emailIdx {
		t.Errorf("Expected meetings rendered before emails, got:\n%s", out)
	}
}
