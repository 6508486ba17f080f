package analyze

import (
	"context"
	"strings"

	"github.com/avogt/scribe/internal/llm"
	"github.com/avogt/scribe/internal/logging"
	"github.com/avogt/scribe/internal/store"
)

// Analyzer runs Stage 2: one prompt through a ladder of model
// candidates, normalized and consolidated into a final Analysis.
type Analyzer struct {
	model              llm.Model
	candidates         []string
	userProfile        string
	maxTranscriptChars int
}

func New(model llm.Model, candidates []string, userProfile string, maxTranscriptChars int) *Analyzer {
	return &Analyzer{
		model:              model,
		candidates:         candidates,
		userProfile:        userProfile,
		maxTranscriptChars: maxTranscriptChars,
	}
}

// Analyze produces an Analysis for the transcript. The candidate ladder
// is tried in order; when every model fails, a minimal fallback
// analysis tagged for later review comes back instead of an error, so
// the transcript itself is never lost.
func (a *Analyzer) Analyze(ctx context.Context, transcript, recordingDate, contextBlock string, person *PersonContext) *Analysis {
	transcript = TruncateTranscript(transcript, a.maxTranscriptChars)
	prompt := BuildPrompt(transcript, recordingDate, a.userProfile, contextBlock, person)
	maxTokens := responseBudget(transcript)

	var lastErr error
	for _, candidate := range a.candidates {
		resp, err := a.model.Invoke(ctx, prompt, candidate, maxTokens)
		if err != nil {
			logging.Warn("analyze", "model %s failed: %v", candidate, err)
			lastErr = err
			continue
		}
		analysis, err := Decode([]byte(llm.StripFences(resp)))
		if err != nil {
			logging.Warn("analyze", "model %s returned invalid JSON: %v", candidate, err)
			lastErr = err
			continue
		}
		Consolidate(analysis)
		Normalize(analysis)
		resolveDueDates(analysis, recordingDate)
		logging.Info("analyze", "model %s: category=%s meetings=%d reflections=%d tasks=%d",
			candidate, analysis.PrimaryCategory, len(analysis.Meetings),
			len(analysis.Reflections), len(analysis.Tasks))
		return analysis
	}

	logging.Warn("analyze", "all %d model candidates failed, using fallback analysis: %v",
		len(a.candidates), lastErr)
	return fallbackAnalysis(transcript)
}

// responseBudget scales the output token allowance with input size.
func responseBudget(transcript string) int {
	switch n := len(transcript); {
	case n < 2_000:
		return 2000
	case n < 20_000:
		return 4000
	default:
		return 8000
	}
}

func resolveDueDates(a *Analysis, recordingDate string) {
	for i := range a.Tasks {
		a.Tasks[i].DueDate = ResolveDueDate(a.Tasks[i].DueDate, recordingDate)
	}
}

// fallbackAnalysis wraps the transcript in a single tagged reflection
// when no model answered, so the memo still lands in the knowledge base
// as a record the owner can find and recategorize later.
func fallbackAnalysis(transcript string) *Analysis {
	transcript = strings.TrimSpace(transcript)

	title := transcript
	if i := strings.Index(title, "."); i > 0 {
		title = title[:i]
	}
	title = strings.TrimSpace(title)
	if len(title) > 60 {
		title = title[:60]
	}
	if title == "" {
		title = "Unreviewed memo"
	}

	body := transcript
	if len(body) > 2000 {
		body = body[:2000] + "..."
	}

	const note = "Automatic analysis failed. Review and categorize this entry manually."
	a := &Analysis{
		PrimaryCategory: CategoryReflection,
		Summary:         note,
		Tags:            []string{FallbackTag},
		Reflections: []ReflectionEntry{{
			Title:    title,
			Tags:     []string{FallbackTag},
			Sections: []store.Section{{Heading: "Raw Transcript", Content: body}},
			Content:  note,
		}},
	}
	Normalize(a)
	return a
}
