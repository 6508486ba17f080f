package embedding

import (
	"path/filepath"
	"testing"

	"github.com/avogt/scribe/internal/router"
	"github.com/avogt/scribe/internal/store"
)

// hashEmbedder produces deterministic vectors without a running Ollama.
type hashEmbedder struct{}

func (hashEmbedder) Embed(text string) ([]float64, error) {
	vec := make([]float64, 8)
	for i, r := range text {
		vec[i%8] += float64(r)
	}
	return vec, nil
}

func TestIndexerFireAndSearch(t *testing.T) {
	s, err := store.Open(filepath.Join(t.TempDir(), "scribe.db"))
	if err != nil {
		t.Fatalf("store.Open failed: %v", err)
	}
	defer s.Close()

	meeting, _ := s.CreateMeeting(&store.Meeting{
		Title: "Coffee with Alinta", Date: "2026-08-25",
		PersonName: "Alinta", Summary: "Fundraising deck discussion",
	})

	ix := NewIndexer(s, hashEmbedder{})
	ix.Fire(&router.Manifest{
		TranscriptID: "t1",
		MeetingIDs:   []string{meeting.ID},
	})

	results, err := ix.Search("Coffee with Alinta Alinta Fundraising deck discussion", 5)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("Expected 1 result, got %d", len(results))
	}
	if results[0].RecordID != meeting.ID || results[0].RecordType != "meeting" {
		t.Errorf("Unexpected hit %+v", results[0])
	}
}

func TestCosineSimilarity(t *testing.T) {
	a := []float64{1, 0}
	if got := CosineSimilarity(a, a); got < 0.999 {
		t.Errorf("Expected identical vectors to score 1, got %f", got)
	}
	if got := CosineSimilarity(a, []float64{0, 1}); got != 0 {
		t.Errorf("Expected orthogonal vectors to score 0, got %f", got)
	}
	if got := CosineSimilarity(a, []float64{1, 0, 0}); got != 0 {
		t.Errorf("Expected dimension mismatch to score 0, got %f", got)
	}
}
