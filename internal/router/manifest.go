package router

// Statuses reported in the manifest.
const (
	StatusSuccess          = "success"
	StatusAlreadyProcessed = "already_processed"
)

// ContactMatchInfo records how one spoken name resolved against the CRM.
type ContactMatchInfo struct {
	ContactID   string   `json:"contact_id,omitempty"`
	ContactName string   `json:"contact_name,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// CRMResult partitions the outcome of applying CRM updates.
type CRMResult struct {
	Updated  []string `json:"updated"`
	NotFound []string `json:"not_found"`
	Errors   []string `json:"errors"`
}

// Manifest summarizes everything one pipeline run did. It is the
// payload for notifications and the one-shot CLI output.
type Manifest struct {
	TranscriptID    string                      `json:"transcript_id"`
	Status          string                      `json:"status"`
	PrimaryCategory string                      `json:"primary_category,omitempty"`
	Summary         string                      `json:"summary,omitempty"`
	JournalIDs      []string                    `json:"journal_ids"`
	MeetingIDs      []string                    `json:"meeting_ids"`
	ReflectionIDs   []string                    `json:"reflection_ids"`
	AppendedIDs     []string                    `json:"appended_reflection_ids"`
	TaskIDs         []string                    `json:"task_ids"`
	ContactMatches  map[string]ContactMatchInfo `json:"contact_matches,omitempty"`
	CRM             CRMResult                   `json:"crm"`
	Warnings        []string                    `json:"warnings,omitempty"`
}

func newManifest(transcriptID string) *Manifest {
	return &Manifest{
		TranscriptID:   transcriptID,
		Status:         StatusSuccess,
		JournalIDs:     []string{},
		MeetingIDs:     []string{},
		ReflectionIDs:  []string{},
		AppendedIDs:    []string{},
		TaskIDs:        []string{},
		ContactMatches: map[string]ContactMatchInfo{},
		CRM:            CRMResult{Updated: []string{}, NotFound: []string{}, Errors: []string{}},
	}
}
