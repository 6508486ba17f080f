package analyze

import (
	"fmt"
	"strings"
)

// Word-count tiers. Short memos get pushed toward a single record;
// long ones get permission to produce everything they contain.
const (
	tierTinyWords   = 50
	tierShortWords  = 200
	tierMediumWords = 800
	tierLongWords   = 2000
)

func tierGuidance(wordCount int) string {
	switch {
	case wordCount < tierTinyWords:
		return "This is a very short memo, likely a single thought, task, or quick note. " +
			"Produce at most one record. Do not invent detail that is not in the text."
	case wordCount < tierShortWords:
		return "This is a short memo. Keep the analysis tight: one or two records, " +
			"short summaries, only clearly stated tasks."
	case wordCount < tierMediumWords:
		return "This is a medium-length memo. Capture each distinct conversation, " +
			"topic, and action item, but do not pad summaries."
	case wordCount < tierLongWords:
		return "This is a detailed memo. Extract every meeting, reflection topic, and " +
			"task. Use topic lists with details rather than one long summary."
	default:
		return "This is a long recording covering multiple subjects. Work through it " +
			"systematically: separate each conversation and theme into its own record, " +
			"keep summaries comprehensive, and collect every action item."
	}
}

const analysisSchema = `Return ONLY a JSON object with this exact shape (no markdown, no prose):
{
  "primary_category": "journal" | "meeting" | "reflection" | "task_planning" | "other",
  "summary": "one-paragraph summary of the whole memo",
  "tags": ["short-kebab-case-tags"],
  "journals": [{
    "date": "YYYY-MM-DD",
    "title": "...",
    "summary": "...",
    "mood": "...",
    "effort": "...",
    "sports": [], "key_events": [], "accomplishments": [],
    "challenges": [], "gratitude": [], "tomorrow_focus": [],
    "sections": [{"heading": "...", "content": "..."}],
    "content": "full journal text in markdown"
  }],
  "meetings": [{
    "title": "...", "date": "YYYY-MM-DD", "location": "",
    "person_name": "name of the ONE person this conversation was with",
    "summary": "...",
    "topics": [{"topic": "...", "details": ["..."]}],
    "people_mentioned": ["others referenced but not present"],
    "follow_ups": [{"topic": "...", "context": "...", "date_if_known": ""}]
  }],
  "reflections": [{
    "title": "...", "topic_key": "stable-kebab-case-key",
    "tags": [], "sections": [], "content": "markdown body",
    "append_to_id": "id of an existing reflection topic this continues, else omit"
  }],
  "tasks": [{
    "title": "imperative action", "description": "",
    "priority": "high" | "medium" | "low",
    "due_date": "YYYY-MM-DD or natural language like 'tomorrow', or empty",
    "related_person": ""
  }],
  "crm_updates": [{
    "contact_name": "...", "company": "", "position": "",
    "location": "", "personal_notes": "new personal facts learned"
  }]
}

Rules:
- One journal object per calendar date the memo covers; usually one,
  and the list stays empty for non-journal memos.
- One meeting object per person actually spoken with. Do not split a
  single conversation into multiple meetings.
- Use append_to_id only with an id from the reflection topic list.
- Tasks must be things the speaker committed to doing, not vague ideas.
- crm_updates only for genuinely new facts about a person.`

// PersonContext is a pre-confirmed counterpart identity supplied by
// the caller. The analyzer trusts it over names inferred from the
// transcript.
type PersonContext struct {
	Name               string
	ContactID          string
	Email              string
	LastMeetingSummary string
}

func (p *PersonContext) render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "The speaker confirmed this memo concerns %s.", p.Name)
	if p.Email != "" {
		fmt.Fprintf(&b, " Email: %s.", p.Email)
	}
	if p.LastMeetingSummary != "" {
		fmt.Fprintf(&b, "\nLast meeting with them: %s", p.LastMeetingSummary)
	}
	b.WriteString("\nUse this identity for the meeting's person_name; trust it over any name you infer from the transcript.")
	return b.String()
}

// BuildPrompt assembles the Stage-2 analysis prompt.
func BuildPrompt(transcript, recordingDate, userProfile, contextBlock string, person *PersonContext) string {
	words := len(strings.Fields(transcript))

	var b strings.Builder
	b.WriteString("You analyze voice memo transcripts for a personal knowledge base.\n\n")
	if userProfile != "" {
		b.WriteString("About the speaker:\n")
		b.WriteString(userProfile)
		b.WriteString("\n\n")
	}
	fmt.Fprintf(&b, "Recording date: %s\n\n", recordingDate)
	if person != nil && person.Name != "" {
		b.WriteString("# Confirmed conversation partner\n\n")
		b.WriteString(person.render())
		b.WriteString("\n\n")
	}
	if contextBlock != "" {
		b.WriteString("# Context from the knowledge base\n\n")
		b.WriteString(contextBlock)
		b.WriteString("\n\n")
	}
	b.WriteString("# Guidance\n\n")
	b.WriteString(tierGuidance(words))
	b.WriteString("\n\n# Output format\n\n")
	b.WriteString(analysisSchema)
	b.WriteString("\n\n# Transcript\n\n")
	b.WriteString(transcript)
	return b.String()
}
