package gather

import (
	"strings"

	"github.com/avogt/scribe/internal/store"
)

// Entities is the Stage-1 extraction result: who and what the memo
// talks about, before any database lookups happen.
type Entities struct {
	People      []string `json:"people"`
	Topics      []string `json:"topics"`
	Companies   []string `json:"companies"`
	IsJournal   bool     `json:"is_journal"`
	UsedFallback bool    `json:"-"`
}

// Category identifies one block of gathered context. Ordering matters:
// when the package is over budget, blocks are trimmed lowest priority
// first.
type Category string

const (
	CategoryEmails       Category = "emails"
	CategoryApplications Category = "applications"
	CategoryReflections  Category = "reflections"
	CategoryCalendar     Category = "calendar"
	CategoryJournals     Category = "journals"
	CategoryTasks        Category = "tasks"
	CategoryMeetings     Category = "meetings"
)

// trimOrder lists categories from first-trimmed to last-trimmed.
var trimOrder = []Category{
	CategoryEmails,
	CategoryApplications,
	CategoryReflections,
	CategoryCalendar,
	CategoryJournals,
	CategoryTasks,
	CategoryMeetings,
}

// Package is the assembled context handed to Stage 2. Contacts are
// exempt from budget trimming; the analyzer needs the full roster to
// resolve names.
type Package struct {
	Entities Entities
	Contacts string
	Sections map[Category]string

	// Structured extras the prompt builder uses directly.
	Topics        []store.TopicRef
	KnownContacts []*store.Contact
	PersonMatches map[string]*store.ContactMatch
}

// Size returns the character count of all text blocks.
func (p *Package) Size() int {
	n := len(p.Contacts)
	for _, s := range p.Sections {
		n += len(s)
	}
	return n
}

// Render flattens the package into one prompt-ready context string.
func (p *Package) Render() string {
	var b strings.Builder
	if p.Contacts != "" {
		b.WriteString("## Known contacts\n")
		b.WriteString(p.Contacts)
		b.WriteString("\n\n")
	}
	headings := map[Category]string{
		CategoryMeetings:     "## Recent meetings",
		CategoryTasks:        "## Open tasks",
		CategoryJournals:     "## Recent journal entries",
		CategoryCalendar:     "## Calendar around the recording date",
		CategoryReflections:  "## Ongoing reflection topics",
		CategoryApplications: "## Active job applications",
		CategoryEmails:       "## Recent emails",
	}
	// Highest priority first in the rendered output.
	for i := len(trimOrder) - 1; i >= 0; i-- {
		cat := trimOrder[i]
		if text := p.Sections[cat]; text != "" {
			b.WriteString(headings[cat])
			b.WriteString("\n")
			b.WriteString(text)
			b.WriteString("\n\n")
		}
	}
	return strings.TrimSpace(b.String())
}
