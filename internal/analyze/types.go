package analyze

import "github.com/avogt/scribe/internal/store"

// Category values, highest precedence first.
const (
	CategoryJournal      = "journal"
	CategoryMeeting      = "meeting"
	CategoryReflection   = "reflection"
	CategoryTaskPlanning = "task_planning"
	CategoryOther        = "other"
)

// Analysis is the Stage-2 output: everything the model pulled out of
// one transcript, ready for the persistence router.
type Analysis struct {
	PrimaryCategory string            `json:"primary_category"`
	Summary         string            `json:"summary"`
	Tags            []string          `json:"tags"`
	Journals        []JournalEntry    `json:"journals"`
	Meetings        []MeetingEntry    `json:"meetings"`
	Reflections     []ReflectionEntry `json:"reflections"`
	Tasks           []TaskEntry       `json:"tasks"`
	CRMUpdates      []CRMUpdate       `json:"crm_updates"`
}

// JournalEntry is the daily-journal portion of an analysis.
type JournalEntry struct {
	Date            string          `json:"date"`
	Title           string          `json:"title"`
	Summary         string          `json:"summary"`
	Mood            string          `json:"mood"`
	Effort          string          `json:"effort"`
	Sports          []string        `json:"sports"`
	KeyEvents       []string        `json:"key_events"`
	Accomplishments []string        `json:"accomplishments"`
	Challenges      []string        `json:"challenges"`
	Gratitude       []string        `json:"gratitude"`
	TomorrowFocus   []string        `json:"tomorrow_focus"`
	Sections        []store.Section `json:"sections"`
	Content         string          `json:"content"`
}

// MeetingEntry describes one conversation with one person.
type MeetingEntry struct {
	Title           string           `json:"title"`
	Date            string           `json:"date"`
	Location        string           `json:"location"`
	PersonName      string           `json:"person_name"`
	Summary         string           `json:"summary"`
	Topics          []store.Topic    `json:"topics"`
	PeopleMentioned []string         `json:"people_mentioned"`
	FollowUps       []store.FollowUp `json:"follow_ups"`
}

// ReflectionEntry is new material for a long-lived topic. AppendToID
// targets an existing reflection when the model recognized one.
type ReflectionEntry struct {
	Title      string          `json:"title"`
	TopicKey   string          `json:"topic_key"`
	Tags       []string        `json:"tags"`
	Sections   []store.Section `json:"sections"`
	Content    string          `json:"content"`
	AppendToID string          `json:"append_to_id,omitempty"`
}

// TaskEntry is an action item heard in the memo.
type TaskEntry struct {
	Title         string `json:"title"`
	Description   string `json:"description"`
	Priority      string `json:"priority"`
	DueDate       string `json:"due_date"`
	RelatedPerson string `json:"related_person,omitempty"`
}

// CRMUpdate carries new facts about a person for the contact record.
type CRMUpdate struct {
	ContactName   string `json:"contact_name"`
	Company       string `json:"company"`
	Position      string `json:"position"`
	Location      string `json:"location"`
	PersonalNotes string `json:"personal_notes"`
}

// FallbackTag marks analyses produced without a working model.
const FallbackTag = "failed-analysis"
