package analyze

import (
	"fmt"
	"strings"
)

// TruncateTranscript caps a transcript at maxChars, keeping the first
// and last 40% and dropping the middle. Openings carry the setting and
// endings carry the conclusions and action items; the middle is the
// most expendable part of a rambling memo. The splice marker tells the
// model how much is missing.
func TruncateTranscript(text string, maxChars int) string {
	if maxChars <= 0 || len(text) <= maxChars {
		return text
	}

	keep := maxChars * 40 / 100
	head := text[:keep]
	tail := text[len(text)-keep:]

	// Cut on word boundaries where possible.
	if i := strings.LastIndex(head, " "); i > 0 {
		head = head[:i]
	}
	if i := strings.Index(tail, " "); i >= 0 && i < len(tail)-1 {
		tail = tail[i+1:]
	}

	omitted := len(text) - len(head) - len(tail)
	marker := fmt.Sprintf("\n\n[... %d characters omitted from the middle of the transcript ...]\n\n", omitted)
	return head + marker + tail
}
