package gather

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/avogt/scribe/internal/llm"
	"github.com/avogt/scribe/internal/logging"
)

const entityPrompt = `Extract the entities mentioned in this voice memo transcript.

Return ONLY a JSON object, no prose:
{
  "people": ["names of people mentioned or met"],
  "topics": ["subjects discussed, ongoing themes"],
  "companies": ["companies or organizations mentioned"],
  "is_journal": true/false (does this sound like a daily journal entry?)
}

Transcript:
%s`

// minWordsForModel is the threshold below which the model call is
// skipped entirely; very short memos don't need one.
const minWordsForModel = 50

// ExtractEntities runs Stage-1 entity extraction. Short transcripts and
// model failures fall back to local NER so the pipeline never stalls on
// this step.
func ExtractEntities(ctx context.Context, model llm.Model, modelName, transcript string) Entities {
	if wordCount(transcript) < minWordsForModel {
		logging.Debug("gather", "transcript under %d words, using local extraction", minWordsForModel)
		return fallbackExtract(transcript)
	}

	resp, err := model.Invoke(ctx, fmt.Sprintf(entityPrompt, transcript), modelName, 1000)
	if err != nil {
		logging.Warn("gather", "entity extraction model failed, falling back: %v", err)
		return fallbackExtract(transcript)
	}

	var ents Entities
	if err := json.Unmarshal([]byte(llm.StripFences(resp)), &ents); err != nil {
		logging.Warn("gather", "entity extraction returned malformed JSON, falling back: %v", err)
		return fallbackExtract(transcript)
	}
	return normalizeEntities(ents)
}

// normalizeEntities trims, drops empties, and dedups case-insensitively
// while keeping first-seen casing and order.
func normalizeEntities(e Entities) Entities {
	e.People = dedupeFold(e.People)
	e.Topics = dedupeFold(e.Topics)
	e.Companies = dedupeFold(e.Companies)
	return e
}

func dedupeFold(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := []string{}
	for _, v := range in {
		v = strings.TrimSpace(v)
		key := strings.ToLower(v)
		if v == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, v)
	}
	return out
}

func wordCount(s string) int {
	return len(strings.Fields(s))
}
