package gather

import (
	"context"
	"fmt"
	"strings"

	"github.com/avogt/scribe/internal/llm"
	"github.com/avogt/scribe/internal/logging"
	"github.com/avogt/scribe/internal/store"
)

// Per-category row caps keep any single source from flooding the
// context package before the budget trim even runs.
const (
	maxMeetingsPerPerson = 3
	maxRecentMeetings    = 5
	maxJournals          = 5
	maxOpenTasks         = 25
	maxCalendarEvents    = 15
	maxEmailsPerContact  = 5
	maxApplications      = 10
	calendarWindowDays   = 3
)

// Repo is the slice of the store the gatherer reads.
type Repo interface {
	AllContacts() ([]*store.Contact, error)
	FindContactByName(name string) (*store.ContactMatch, error)
	RecentMeetingsWithContact(contactID string, limit int) ([]*store.Meeting, error)
	RecentMeetings(limit int) ([]*store.Meeting, error)
	RecentJournals(limit int) ([]*store.Journal, error)
	ExistingReflectionTopics() ([]store.TopicRef, error)
	OpenTasks(limit int) ([]*store.Task, error)
	CalendarEventsAround(date string, days, limit int) ([]*store.CalendarEvent, error)
	RecentEmailsForContact(contactID string, limit int) ([]*store.Email, error)
	ActiveApplications(limit int) ([]*store.Application, error)
}

// Gatherer assembles the Stage-2 context package.
type Gatherer struct {
	repo        Repo
	model       llm.Model
	modelName   string
	budgetChars int
}

func New(repo Repo, model llm.Model, modelName string, budgetChars int) *Gatherer {
	return &Gatherer{repo: repo, model: model, modelName: modelName, budgetChars: budgetChars}
}

// Gather runs entity extraction and fans out to every repository,
// then trims the result to the character budget. Individual source
// failures degrade to missing sections rather than failing the run.
func (g *Gatherer) Gather(ctx context.Context, transcript, recordingDate string) *Package {
	ents := ExtractEntities(ctx, g.model, g.modelName, transcript)
	logging.Info("gather", "extracted %d people, %d topics, %d companies (fallback=%v)",
		len(ents.People), len(ents.Topics), len(ents.Companies), ents.UsedFallback)

	pkg := &Package{
		Entities:      ents,
		Sections:      make(map[Category]string),
		PersonMatches: make(map[string]*store.ContactMatch),
	}

	if contacts, err := g.repo.AllContacts(); err == nil {
		pkg.KnownContacts = contacts
		pkg.Contacts = renderContacts(contacts)
	} else {
		logging.Warn("gather", "contact load failed: %v", err)
	}

	g.resolvePeople(pkg)
	g.gatherMeetings(pkg)
	g.gatherTasks(pkg)
	g.gatherJournals(pkg)
	g.gatherCalendar(pkg, recordingDate)
	g.gatherReflections(pkg)
	if mentionsJobSearch(transcript) {
		g.gatherApplications(pkg)
	}
	g.gatherEmails(pkg)

	g.trim(pkg)
	return pkg
}

// resolvePeople matches extracted names against the CRM up front so
// both the prompt and the router can use the outcome.
func (g *Gatherer) resolvePeople(pkg *Package) {
	for _, name := range pkg.Entities.People {
		match, err := g.repo.FindContactByName(name)
		if err != nil {
			logging.Warn("gather", "contact lookup for %q failed: %v", name, err)
			continue
		}
		pkg.PersonMatches[name] = match
	}
}

func (g *Gatherer) gatherMeetings(pkg *Package) {
	var b strings.Builder

	seen := map[string]bool{}
	for name, match := range pkg.PersonMatches {
		if match.Contact == nil {
			continue
		}
		meetings, err := g.repo.RecentMeetingsWithContact(match.Contact.ID, maxMeetingsPerPerson)
		if err != nil {
			logging.Warn("gather", "meeting history for %q failed: %v", name, err)
			continue
		}
		for _, m := range meetings {
			if seen[m.ID] {
				continue
			}
			seen[m.ID] = true
			fmt.Fprintf(&b, "- %s (%s, with %s): %s\n", m.Title, m.Date, m.PersonName, m.Summary)
		}
	}

	recent, err := g.repo.RecentMeetings(maxRecentMeetings)
	if err != nil {
		logging.Warn("gather", "recent meetings failed: %v", err)
	}
	for _, m := range recent {
		if seen[m.ID] {
			continue
		}
		seen[m.ID] = true
		fmt.Fprintf(&b, "- %s (%s, with %s): %s\n", m.Title, m.Date, m.PersonName, m.Summary)
	}

	pkg.Sections[CategoryMeetings] = strings.TrimSpace(b.String())
}

func (g *Gatherer) gatherTasks(pkg *Package) {
	tasks, err := g.repo.OpenTasks(maxOpenTasks)
	if err != nil {
		logging.Warn("gather", "open tasks failed: %v", err)
		return
	}
	var b strings.Builder
	for _, t := range tasks {
		if t.DueDate != "" {
			fmt.Fprintf(&b, "- %s (due %s)\n", t.Title, t.DueDate)
		} else {
			fmt.Fprintf(&b, "- %s\n", t.Title)
		}
	}
	pkg.Sections[CategoryTasks] = strings.TrimSpace(b.String())
}

func (g *Gatherer) gatherJournals(pkg *Package) {
	journals, err := g.repo.RecentJournals(maxJournals)
	if err != nil {
		logging.Warn("gather", "recent journals failed: %v", err)
		return
	}
	var b strings.Builder
	for _, j := range journals {
		fmt.Fprintf(&b, "- %s: %s\n", j.Date, j.Summary)
	}
	pkg.Sections[CategoryJournals] = strings.TrimSpace(b.String())
}

func (g *Gatherer) gatherCalendar(pkg *Package, recordingDate string) {
	events, err := g.repo.CalendarEventsAround(recordingDate, calendarWindowDays, maxCalendarEvents)
	if err != nil {
		logging.Warn("gather", "calendar lookup failed: %v", err)
		return
	}
	var b strings.Builder
	for _, e := range events {
		line := fmt.Sprintf("- %s %s", e.StartTime.Format("2006-01-02 15:04"), e.Summary)
		if len(e.Attendees) > 0 {
			line += " (with " + strings.Join(e.Attendees, ", ") + ")"
		}
		b.WriteString(line + "\n")
	}
	pkg.Sections[CategoryCalendar] = strings.TrimSpace(b.String())
}

func (g *Gatherer) gatherReflections(pkg *Package) {
	topics, err := g.repo.ExistingReflectionTopics()
	if err != nil {
		logging.Warn("gather", "reflection topics failed: %v", err)
		return
	}
	pkg.Topics = topics
	var b strings.Builder
	for _, t := range topics {
		fmt.Fprintf(&b, "- [%s] %s (%s)\n", t.ID, t.Title, t.TopicKey)
	}
	pkg.Sections[CategoryReflections] = strings.TrimSpace(b.String())
}

// Application context is only worth the tokens when the memo is about
// the job search.
var jobKeywords = []string{"job", "application", "interview", "role", "position", "applied"}

func mentionsJobSearch(transcript string) bool {
	lower := strings.ToLower(transcript)
	for _, kw := range jobKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func (g *Gatherer) gatherApplications(pkg *Package) {
	apps, err := g.repo.ActiveApplications(maxApplications)
	if err != nil {
		logging.Warn("gather", "applications failed: %v", err)
		return
	}
	var b strings.Builder
	for _, a := range apps {
		fmt.Fprintf(&b, "- %s at %s (%s, stage: %s)\n", a.Position, a.Company, a.Status, a.Stage)
	}
	pkg.Sections[CategoryApplications] = strings.TrimSpace(b.String())
}

func (g *Gatherer) gatherEmails(pkg *Package) {
	var b strings.Builder
	for name, match := range pkg.PersonMatches {
		if match.Contact == nil {
			continue
		}
		emails, err := g.repo.RecentEmailsForContact(match.Contact.ID, maxEmailsPerContact)
		if err != nil {
			logging.Warn("gather", "emails for %q failed: %v", name, err)
			continue
		}
		for _, e := range emails {
			fmt.Fprintf(&b, "- %s from %s (%s): %s\n", e.Subject, e.Sender, e.Date, e.Snippet)
		}
	}
	pkg.Sections[CategoryEmails] = strings.TrimSpace(b.String())
}

// trim halves sections lowest priority first until the package fits the
// budget, dropping whole entries rather than cutting mid-line. Contacts
// are never touched.
func (g *Gatherer) trim(pkg *Package) {
	if g.budgetChars <= 0 || pkg.Size() <= g.budgetChars {
		return
	}
	before := pkg.Size()

	for rounds := 0; rounds < 10 && pkg.Size() > g.budgetChars; rounds++ {
		for _, cat := range trimOrder {
			text := pkg.Sections[cat]
			if len(text) == 0 {
				continue
			}
			pkg.Sections[cat] = halveEntries(text)
			if pkg.Size() <= g.budgetChars {
				break
			}
		}
	}
	logging.Info("gather", "trimmed context from %d to %d chars (budget %d)",
		before, pkg.Size(), g.budgetChars)
}

// halveEntries keeps the leading half of a section's lines. Sections
// are one entry per line, so trailing entries drop whole. A single
// remaining line drops entirely so every round makes progress.
func halveEntries(text string) string {
	lines := strings.Split(text, "\n")
	if len(lines) <= 1 {
		return ""
	}
	return strings.Join(lines[:len(lines)/2], "\n")
}

func renderContacts(contacts []*store.Contact) string {
	var b strings.Builder
	for _, c := range contacts {
		line := "- " + c.FullName()
		var extra []string
		if c.Company != "" {
			extra = append(extra, c.Company)
		}
		if c.JobTitle != "" {
			extra = append(extra, c.JobTitle)
		}
		if len(extra) > 0 {
			line += " (" + strings.Join(extra, ", ") + ")"
		}
		b.WriteString(line + "\n")
	}
	return strings.TrimSpace(b.String())
}
