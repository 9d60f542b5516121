package citations

import (
	"fmt"
	"regexp"
	"strings"

	"docbot/internal/rag/schema"
)

// markerPattern matches citation markers of the form [chunk:<id>] emitted
// by the generation prompt. Marker parsing from free-form model output is
// best-effort; text without well-formed markers simply yields no citations.
var markerPattern = regexp.MustCompile(`\[chunk:([^\[\]\s]+)\]`)

// Resolve parses citation markers out of generated text and validates each
// against the retrieval context that was supplied to the generation call —
// never against the whole index, since the model must not be trusted to
// cite material it was not given. Verified markers are rewritten to
// numbered footnote references; markers that do not resolve are recorded
// as unverified and stripped from the text.
func Resolve(candidateText string, rc *schema.RetrievalContext) (string, []schema.Citation, []schema.UnverifiedCitation) {
	var citations []schema.Citation
	var unverified []schema.UnverifiedCitation

	// Footnote number per chunk id, assigned in order of first appearance.
	footnotes := make(map[string]int)
	unverifiedSeen := make(map[string]bool)

	cleaned := markerPattern.ReplaceAllStringFunc(candidateText, func(marker string) string {
		chunkID := markerPattern.FindStringSubmatch(marker)[1]

		chunk, ok := rc.Lookup(chunkID)
		if !ok {
			if !unverifiedSeen[chunkID] {
				unverifiedSeen[chunkID] = true
				unverified = append(unverified, schema.UnverifiedCitation{Marker: marker, ChunkID: chunkID})
			}
			return ""
		}

		n, ok := footnotes[chunkID]
		if !ok {
			n = len(footnotes) + 1
			footnotes[chunkID] = n
			citations = append(citations, schema.Citation{
				Marker:     marker,
				ChunkID:    chunkID,
				DocumentID: chunk.DocumentID,
				Excerpt:    excerpt(chunk.Text, 200),
			})
		}
		return fmt.Sprintf("[%d]", n)
	})

	return tidy(cleaned), citations, unverified
}

// excerpt shortens chunk text for display in a citation.
func excerpt(text string, max int) string {
	text = strings.TrimSpace(text)
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max]) + "…"
}

// tidy collapses the whitespace gaps left behind by stripped markers.
func tidy(text string) string {
	text = strings.ReplaceAll(text, "  ", " ")
	text = strings.ReplaceAll(text, " .", ".")
	text = strings.ReplaceAll(text, " ,", ",")
	return strings.TrimSpace(text)
}
