package store

import "time"

// Section is a heading + content block inside journals and reflections.
type Section struct {
	Heading string `json:"heading"`
	Content string `json:"content"`
}

// Topic is one discussed subject within a meeting.
type Topic struct {
	Topic   string   `json:"topic"`
	Details []string `json:"details"`
}

// FollowUp is a conversational reminder for the next meeting with a
// person (not an action item).
type FollowUp struct {
	Topic   string `json:"topic"`
	Context string `json:"context"`
	Date    string `json:"date_if_known,omitempty"`
}

// Contact is a CRM person record.
type Contact struct {
	ID        string
	FirstName string
	LastName  string
	Email     string
	Company   string
	JobTitle  string
	Location  string
	Notes     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// FullName returns "First Last" with missing parts dropped.
func (c *Contact) FullName() string {
	if c.LastName == "" {
		return c.FirstName
	}
	if c.FirstName == "" {
		return c.LastName
	}
	return c.FirstName + " " + c.LastName
}

// ContactUpdate carries field-level CRM changes. Empty strings mean
// "no change"; merge policy is applied by UpdateContactFields.
type ContactUpdate struct {
	Company  string
	JobTitle string
	Location string
	Notes    string
}

// Transcript is the immutable input record for one voice memo.
type Transcript struct {
	ID              string
	SourceFile      string
	FullText        string
	Language        string
	DurationSeconds float64
	RecordingDate   string // ISO date, may be empty
	CreatedAt       time.Time
}

// Meeting is one conversation with a single counterpart.
type Meeting struct {
	ID              string
	Title           string
	Date            string // ISO date
	Location        string
	PersonName      string // raw name as heard, always preserved
	ContactID       string // resolved link, empty when unmatched
	Summary         string
	Topics          []Topic
	PeopleMentioned []string
	FollowUps       []FollowUp
	TranscriptID    string
	SourceFile      string
	DurationSeconds int
	CreatedAt       time.Time
}

// Journal is the daily entry; at most one row exists per date.
type Journal struct {
	ID              string
	Date            string // ISO date, unique
	Title           string
	Summary         string
	Mood            string
	Effort          string
	Sports          []string
	KeyEvents       []string
	Accomplishments []string
	Challenges      []string
	Gratitude       []string
	TomorrowFocus   []string
	Sections        []Section
	Content         string
	TranscriptID    string
	SourceFile      string
	DurationSeconds int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Reflection is a long-lived topic-centric note that receives appends.
type Reflection struct {
	ID              string
	Title           string
	Date            string
	TopicKey        string
	Tags            []string
	Sections        []Section
	Content         string
	TranscriptID    string
	SourceFile      string
	DurationSeconds int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// TopicRef is the slim reflection listing handed to Stage 2 so the
// model can emit append_to_id.
type TopicRef struct {
	ID       string `json:"id"`
	TopicKey string `json:"topic_key"`
	Title    string `json:"title"`
}

// Task is an action item. Title is the dedup key.
type Task struct {
	ID          string
	Title       string
	Description string
	Status      string // pending | completed
	Priority    string // high | medium | low
	DueDate     string // ISO date or empty
	OriginType  string // meeting | journal | reflection
	OriginID    string
	ContactID   string
	TranscriptID string
	CreatedAt   time.Time
}

// CalendarEvent is a read-only row populated by external sync jobs,
// consumed by Stage-1 context gathering.
type CalendarEvent struct {
	ID        string
	Summary   string
	StartTime time.Time
	Attendees []string
}

// Email is a read-only row populated by external sync jobs.
type Email struct {
	ID        string
	ContactID string
	Subject   string
	Sender    string
	Date      string
	Snippet   string
}

// Application is a job application tracked by external sync jobs.
type Application struct {
	ID       string
	Name     string
	Company  string
	Position string
	Status   string
	Stage    string
}

// LinkedRecords lists everything created from one transcript; used by
// the idempotency guard.
type LinkedRecords struct {
	AlreadyProcessed bool
	MeetingIDs       []string
	ReflectionIDs    []string
	JournalIDs       []string
	TaskIDs          []string
}

const (
	TaskStatusPending   = "pending"
	TaskStatusCompleted = "completed"
)
