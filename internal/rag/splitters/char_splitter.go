package splitters

import (
	"fmt"

	"docbot/internal/rag/schema"
)

// CharSplitter cuts extracted text into fixed-size, overlapping chunks.
// Splitting is deterministic: the same text and parameters always yield the
// same chunk boundaries and ids.
type CharSplitter struct {
	// MaxChars and OverlapChars are counted in runes so multi-byte text is
	// never cut mid-character.
	MaxChars     int
	OverlapChars int
}

// NewCharSplitter validates the chunking parameters. Overlap must be
// strictly smaller than the chunk size or the splitter could not advance.
func NewCharSplitter(maxChars, overlapChars int) (*CharSplitter, error) {
	if maxChars <= 0 || overlapChars < 0 || overlapChars >= maxChars {
		return nil, &schema.InvalidChunkConfigError{MaxChars: maxChars, OverlapChars: overlapChars}
	}
	return &CharSplitter{MaxChars: maxChars, OverlapChars: overlapChars}, nil
}

// Split chunks every segment of one document. Chunk ids are documentID:seq
// with seq increasing monotonically across segments, so re-splitting the
// same document reproduces the same ids and re-ingestion overwrites rather
// than appends.
func (s *CharSplitter) Split(documentID, filename string, segments []schema.Segment) []schema.Chunk {
	var chunks []schema.Chunk
	seq := 0

	for _, seg := range segments {
		runes := []rune(seg.Text)
		if len(runes) == 0 {
			continue
		}

		step := s.MaxChars - s.OverlapChars
		prevEnd := 0
		for start := 0; start < len(runes); start += step {
			end := start + s.MaxChars
			if end > len(runes) {
				end = len(runes)
			}

			overlap := 0
			if start > 0 && prevEnd > start {
				overlap = prevEnd - start
			}

			chunks = append(chunks, schema.Chunk{
				ID:         ChunkID(documentID, seq),
				DocumentID: documentID,
				Seq:        seq,
				Text:       string(runes[start:end]),
				Start:      start,
				End:        end,
				Overlap:    overlap,
				Provenance: seg.Provenance,
				Filename:   filename,
			})
			seq++
			prevEnd = end

			if end == len(runes) {
				break
			}
		}
	}

	return chunks
}

// ChunkID derives the stable id for the seq-th chunk of a document.
func ChunkID(documentID string, seq int) string {
	return fmt.Sprintf("%s:%d", documentID, seq)
}
