package gather

import (
	"strings"
	"unicode"

	"github.com/tsawler/prose/v3"
)

// fallbackExtract derives entities without a model call: prose NER for
// people and organizations, plus a capitalized-word heuristic for names
// the tagger misses in loose spoken text.
func fallbackExtract(text string) Entities {
	ents := Entities{
		People:    []string{},
		Topics:    []string{},
		Companies: []string{},
		UsedFallback: true,
	}

	if doc, err := prose.NewDocument(text); err == nil {
		for _, ent := range doc.Entities() {
			switch strings.ToUpper(ent.Label) {
			case "PERSON":
				ents.People = append(ents.People, ent.Text)
			case "ORG":
				ents.Companies = append(ents.Companies, ent.Text)
			case "GPE", "EVENT", "PRODUCT", "WORK_OF_ART":
				ents.Topics = append(ents.Topics, ent.Text)
			}
		}
	}

	ents.People = append(ents.People, capitalizedNames(text)...)
	ents.IsJournal = looksLikeJournal(text)
	return normalizeEntities(ents)
}

var skipWords = map[string]bool{
	"I": true, "The": true, "A": true, "An": true, "This": true, "That": true,
	"It": true, "Is": true, "Are": true, "Was": true, "Were": true,
	"He": true, "She": true, "They": true, "We": true, "You": true,
	"My": true, "Your": true, "His": true, "Her": true, "Its": true,
	"What": true, "When": true, "Where": true, "Who": true, "Why": true, "How": true,
	"But": true, "And": true, "Or": true, "So": true, "If": true, "Then": true,
	"Today": true, "Tomorrow": true, "Yesterday": true, "Monday": true,
	"Tuesday": true, "Wednesday": true, "Thursday": true, "Friday": true,
	"Saturday": true, "Sunday": true, "January": true, "February": true,
	"March": true, "April": true, "May": true, "June": true, "July": true,
	"August": true, "September": true, "October": true, "November": true,
	"December": true,
}

// capitalizedNames finds mid-sentence capitalized words likely to be
// proper names in transcribed speech.
func capitalizedNames(text string) []string {
	var names []string
	words := strings.Fields(text)
	for i, word := range words {
		clean := strings.Trim(word, ".,!?;:'\"()[]{}")
		if clean == "" || skipWords[clean] {
			continue
		}
		runes := []rune(clean)
		if len(runes) < 2 || !unicode.IsUpper(runes[0]) || !unicode.IsLower(runes[1]) {
			continue
		}
		// Skip likely sentence starts
		if i == 0 || strings.HasSuffix(words[i-1], ".") ||
			strings.HasSuffix(words[i-1], "!") || strings.HasSuffix(words[i-1], "?") {
			continue
		}
		names = append(names, clean)
	}
	return names
}

var journalMarkers = []string{
	"today i", "this morning", "this evening", "tonight",
	"grateful for", "tomorrow i want", "tomorrow i need",
	"went for a run", "woke up",
}

func looksLikeJournal(text string) bool {
	lower := strings.ToLower(text)
	for _, m := range journalMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}
