package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/avogt/scribe/internal/analyze"
	"github.com/avogt/scribe/internal/gather"
	"github.com/avogt/scribe/internal/logging"
	"github.com/avogt/scribe/internal/router"
	"github.com/avogt/scribe/internal/store"
)

// Hook receives the manifest after a successful run. Hooks are
// fire-and-forget; a failing hook never fails the pipeline.
type Hook interface {
	Name() string
	Fire(m *router.Manifest)
}

// Options carries per-memo metadata alongside the transcript text.
type Options struct {
	RecordingDate   string
	Language        string
	DurationSeconds float64
	// UserNotes are instructions the speaker attached to the memo.
	// They outrank anything inferred from the transcript itself.
	UserNotes string
	// PersonContext names a pre-confirmed conversation partner the
	// analyzer should trust over its own inference.
	PersonContext *analyze.PersonContext
}

// Pipeline wires the two analysis stages and the persistence router
// behind a single entry point.
type Pipeline struct {
	store    *store.Store
	gatherer *gather.Gatherer
	analyzer *analyze.Analyzer
	router   *router.Router
	hooks    []Hook
}

func New(s *store.Store, g *gather.Gatherer, a *analyze.Analyzer, r *router.Router, hooks ...Hook) *Pipeline {
	return &Pipeline{store: s, gatherer: g, analyzer: a, router: r, hooks: hooks}
}

// ProcessText ingests one transcript and routes everything it contains
// into the knowledge base. Reprocessing a source file whose transcript
// already produced records short-circuits with already_processed.
func (p *Pipeline) ProcessText(ctx context.Context, sourceFile, text string, opts Options) (*router.Manifest, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("empty transcript from %s", sourceFile)
	}

	tr, err := p.store.TranscriptBySourceFile(sourceFile)
	if err != nil {
		return nil, err
	}
	if tr == nil {
		tr, err = p.store.CreateTranscript(&store.Transcript{
			SourceFile:      sourceFile,
			FullText:        text,
			Language:        opts.Language,
			DurationSeconds: opts.DurationSeconds,
			RecordingDate:   opts.RecordingDate,
		})
		if err != nil {
			return nil, err
		}
	}

	return p.ProcessTranscript(ctx, tr, opts.UserNotes, opts.PersonContext)
}

// ProcessTranscript runs the pipeline for an already-stored transcript.
func (p *Pipeline) ProcessTranscript(ctx context.Context, tr *store.Transcript, userNotes string, person *analyze.PersonContext) (*router.Manifest, error) {
	linked, err := p.store.RecordsForTranscript(tr.ID)
	if err != nil {
		return nil, err
	}
	if linked.AlreadyProcessed {
		logging.Info("pipeline", "transcript %s already processed, skipping", tr.ID)
		return alreadyProcessedManifest(tr.ID, linked), nil
	}

	recordingDate := tr.RecordingDate
	if recordingDate == "" {
		recordingDate = tr.CreatedAt.Format("2006-01-02")
	}

	p.logEvent(tr.ID, "gather", "")
	pkg := p.gatherer.Gather(ctx, tr.FullText, recordingDate)

	analysisText := tr.FullText
	if userNotes = strings.TrimSpace(userNotes); userNotes != "" {
		analysisText = fmt.Sprintf(
			"Instructions from the speaker about this memo (follow these over anything inferred):\n%s\n\n%s",
			userNotes, analysisText)
	}

	p.logEvent(tr.ID, "analyze", fmt.Sprintf("context=%d chars", pkg.Size()))
	analysis := p.analyzer.Analyze(ctx, analysisText, recordingDate, pkg.Render(), person)

	p.logEvent(tr.ID, "persist", "category="+analysis.PrimaryCategory)
	manifest, err := p.router.Persist(analysis, tr)
	if err != nil {
		p.logEvent(tr.ID, "persist-failed", err.Error())
		return manifest, err
	}

	p.logEvent(tr.ID, "done", fmt.Sprintf("journals=%d meetings=%d reflections=%d tasks=%d",
		len(manifest.JournalIDs), len(manifest.MeetingIDs),
		len(manifest.ReflectionIDs)+len(manifest.AppendedIDs), len(manifest.TaskIDs)))

	for _, h := range p.hooks {
		go func(h Hook) {
			defer func() {
				if r := recover(); r != nil {
					logging.Warn("pipeline", "hook %s panicked: %v", h.Name(), r)
				}
			}()
			h.Fire(manifest)
		}(h)
	}

	return manifest, nil
}

func (p *Pipeline) logEvent(transcriptID, stage, detail string) {
	if err := p.store.LogPipelineEvent(transcriptID, stage, detail); err != nil {
		logging.Debug("pipeline", "event log failed: %v", err)
	}
}

func alreadyProcessedManifest(transcriptID string, linked *store.LinkedRecords) *router.Manifest {
	return &router.Manifest{
		TranscriptID:   transcriptID,
		Status:         router.StatusAlreadyProcessed,
		JournalIDs:     linked.JournalIDs,
		MeetingIDs:     linked.MeetingIDs,
		ReflectionIDs:  linked.ReflectionIDs,
		AppendedIDs:    []string{},
		TaskIDs:        linked.TaskIDs,
		ContactMatches: map[string]router.ContactMatchInfo{},
		CRM:            router.CRMResult{Updated: []string{}, NotFound: []string{}, Errors: []string{}},
	}
}
