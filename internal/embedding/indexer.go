package embedding

import (
	"fmt"
	"sort"
	"strings"

	"github.com/avogt/scribe/internal/logging"
	"github.com/avogt/scribe/internal/router"
	"github.com/avogt/scribe/internal/store"
)

// Embedder is what the indexer needs from the vector backend.
type Embedder interface {
	Embed(text string) ([]float64, error)
}

// Repo is the slice of the store the indexer touches.
type Repo interface {
	GetJournal(id string) (*store.Journal, error)
	GetMeeting(id string) (*store.Meeting, error)
	GetReflection(id string) (*store.Reflection, error)
	SaveEmbedding(recordType, recordID, text string, embedding []float64) error
	AllEmbeddings() ([]*store.RecordEmbedding, error)
}

// Indexer embeds newly created records so memos become searchable by
// meaning. Runs as a pipeline hook after each successful run.
type Indexer struct {
	repo     Repo
	embedder Embedder
}

func NewIndexer(repo Repo, embedder Embedder) *Indexer {
	return &Indexer{repo: repo, embedder: embedder}
}

func (ix *Indexer) Name() string { return "embedding-indexer" }

// Fire indexes every record the manifest reports. Failures are logged
// per record; one bad embed doesn't stop the rest.
func (ix *Indexer) Fire(m *router.Manifest) {
	count := 0
	for _, id := range m.JournalIDs {
		if j, err := ix.repo.GetJournal(id); err == nil && j != nil {
			count += ix.index("journal", j.ID, j.Title+" "+j.Summary)
		}
	}
	for _, id := range m.MeetingIDs {
		if me, err := ix.repo.GetMeeting(id); err == nil && me != nil {
			count += ix.index("meeting", me.ID, me.Title+" "+me.PersonName+" "+me.Summary)
		}
	}
	for _, id := range append(m.ReflectionIDs, m.AppendedIDs...) {
		if r, err := ix.repo.GetReflection(id); err == nil && r != nil {
			count += ix.index("reflection", r.ID, r.Title+" "+r.Content)
		}
	}
	if count > 0 {
		logging.Info("embedding", "indexed %d records for transcript %s", count, m.TranscriptID)
	}
}

func (ix *Indexer) index(recordType, id, text string) int {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0
	}
	vec, err := ix.embedder.Embed(text)
	if err != nil {
		logging.Warn("embedding", "embed %s %s failed: %v", recordType, id, err)
		return 0
	}
	if err := ix.repo.SaveEmbedding(recordType, id, text, vec); err != nil {
		logging.Warn("embedding", "save %s %s failed: %v", recordType, id, err)
		return 0
	}
	return 1
}

// SearchResult is one semantic search hit.
type SearchResult struct {
	RecordType string  `json:"record_type"`
	RecordID   string  `json:"record_id"`
	Text       string  `json:"text"`
	Score      float64 `json:"score"`
}

// Search ranks indexed records by cosine similarity to the query.
func (ix *Indexer) Search(query string, limit int) ([]SearchResult, error) {
	qvec, err := ix.embedder.Embed(query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	all, err := ix.repo.AllEmbeddings()
	if err != nil {
		return nil, err
	}

	var results []SearchResult
	for _, e := range all {
		score := CosineSimilarity(qvec, e.Embedding)
		if score <= 0 {
			continue
		}
		results = append(results, SearchResult{
			RecordType: e.RecordType,
			RecordID:   e.RecordID,
			Text:       e.Text,
			Score:      score,
		})
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}
