package notify

import (
	"strings"
	"testing"

	"github.com/avogt/scribe/internal/router"
)

func TestFormatManifest(t *testing.T) {
	m := &router.Manifest{
		TranscriptID:    "t1",
		Status:          router.StatusSuccess,
		PrimaryCategory: "meeting",
		Summary:         "Coffee with Alinta.",
		MeetingIDs:      []string{"m1"},
		TaskIDs:         []string{"task1", "task2"},
		ContactMatches: map[string]router.ContactMatchInfo{
			"Sarah": {Suggestions: []string{"Sarah Chen", "Sarah Miller"}},
		},
		CRM: router.CRMResult{NotFound: []string{"Unknown Person"}},
	}

	out := FormatManifest(m)
	for _, want := range []string{"meeting", "Coffee with Alinta.", "1 meetings", "2 tasks",
		"Sarah Chen, Sarah Miller", "Unknown Person"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in message, got:\n%s", want, out)
		}
	}
}

func TestFormatManifest_AlreadyProcessed(t *testing.T) {
	m := &router.Manifest{TranscriptID: "t1", Status: router.StatusAlreadyProcessed}
	out := FormatManifest(m)
	if !strings.Contains(out, "already processed") {
		t.Errorf("Expected skip message, got %q", out)
	}
}
