package citations

import (
	"strings"
	"testing"

	"docbot/internal/rag/schema"
)

func testContext(ids ...string) *schema.RetrievalContext {
	rc := &schema.RetrievalContext{}
	for _, id := range ids {
		rc.Chunks = append(rc.Chunks, schema.ScoredChunk{
			Chunk: schema.Chunk{
				ID:         id,
				DocumentID: "doc-1",
				Text:       "The warranty period is 24 months.",
			},
			Score: 0.9,
		})
	}
	return rc
}

func TestResolve_VerifiedMarkerBecomesFootnote(t *testing.T) {
	rc := testContext("doc-1:0")

	cleaned, citations, unverified := Resolve("The warranty lasts 24 months [chunk:doc-1:0].", rc)

	if cleaned != "The warranty lasts 24 months [1]." {
		t.Errorf("unexpected cleaned text: %q", cleaned)
	}
	if len(citations) != 1 {
		t.Fatalf("expected 1 citation, got %d", len(citations))
	}
	if citations[0].ChunkID != "doc-1:0" || citations[0].DocumentID != "doc-1" {
		t.Errorf("unexpected citation: %+v", citations[0])
	}
	if citations[0].Excerpt == "" {
		t.Error("citation excerpt is empty")
	}
	if len(unverified) != 0 {
		t.Errorf("expected no unverified citations, got %d", len(unverified))
	}
}

func TestResolve_UnknownMarkerIsStrippedAndRecorded(t *testing.T) {
	rc := testContext("doc-1:0")

	cleaned, citations, unverified := Resolve("See [chunk:doc-9:7] for details.", rc)

	if strings.Contains(cleaned, "chunk:") {
		t.Errorf("unverified marker not stripped: %q", cleaned)
	}
	if len(citations) != 0 {
		t.Errorf("expected no verified citations, got %d", len(citations))
	}
	if len(unverified) != 1 {
		t.Fatalf("expected 1 unverified citation, got %d", len(unverified))
	}
	if unverified[0].ChunkID != "doc-9:7" {
		t.Errorf("unexpected unverified chunk id: %q", unverified[0].ChunkID)
	}
}

func TestResolve_RepeatedMarkerReusesFootnoteNumber(t *testing.T) {
	rc := testContext("doc-1:0", "doc-1:1")

	text := "First [chunk:doc-1:1], then [chunk:doc-1:0], then again [chunk:doc-1:1]."
	cleaned, citations, _ := Resolve(text, rc)

	if cleaned != "First [1], then [2], then again [1]." {
		t.Errorf("unexpected cleaned text: %q", cleaned)
	}
	if len(citations) != 2 {
		t.Errorf("expected 2 citations for 3 markers, got %d", len(citations))
	}
	if citations[0].ChunkID != "doc-1:1" {
		t.Errorf("footnote order should follow first appearance, got %q first", citations[0].ChunkID)
	}
}

func TestResolve_DuplicateUnverifiedRecordedOnce(t *testing.T) {
	rc := testContext("doc-1:0")

	_, _, unverified := Resolve("[chunk:ghost:1] and again [chunk:ghost:1]", rc)
	if len(unverified) != 1 {
		t.Errorf("expected duplicate unverified marker recorded once, got %d", len(unverified))
	}
}

func TestResolve_TextWithoutMarkers(t *testing.T) {
	rc := testContext("doc-1:0")

	text := "No relevant information was found."
	cleaned, citations, unverified := Resolve(text, rc)

	if cleaned != text {
		t.Errorf("text without markers changed: %q", cleaned)
	}
	if len(citations) != 0 || len(unverified) != 0 {
		t.Errorf("expected no citations, got %d verified, %d unverified", len(citations), len(unverified))
	}
}

func TestResolve_NilContextVerifiesNothing(t *testing.T) {
	cleaned, citations, unverified := Resolve("Answer [chunk:doc-1:0].", nil)

	if strings.Contains(cleaned, "chunk:") {
		t.Errorf("marker not stripped: %q", cleaned)
	}
	if len(citations) != 0 {
		t.Errorf("nil context must verify nothing, got %d citations", len(citations))
	}
	if len(unverified) != 1 {
		t.Errorf("expected 1 unverified citation, got %d", len(unverified))
	}
}

func TestExcerpt_TruncatesLongText(t *testing.T) {
	long := strings.Repeat("é", 300)
	got := excerpt(long, 200)
	if runes := []rune(got); len(runes) != 201 {
		t.Errorf("expected 200 runes plus ellipsis, got %d runes", len(runes))
	}
	if !strings.HasSuffix(got, "…") {
		t.Errorf("truncated excerpt should end with ellipsis: %q", got[len(got)-10:])
	}
}
