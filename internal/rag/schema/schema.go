package schema

import "time"

// Document describes one uploaded file. It is created on upload and never
// mutated afterwards; chunks reference it by ID.
type Document struct {
	ID          string    `json:"id" bson:"_id"`
	Filename    string    `json:"filename" bson:"filename"`
	MimeType    string    `json:"mime_type" bson:"mime_type"`
	Size        int64     `json:"size" bson:"size"`
	StoragePath string    `json:"storage_path,omitempty" bson:"storage_path,omitempty"`
	UploadedAt  time.Time `json:"uploaded_at" bson:"uploaded_at"`
}

// Segment is one unit of extracted text together with where in the source
// file it came from (a page number, a sheet name, a row range).
type Segment struct {
	Text       string
	Provenance string
}

// Chunk is a contiguous slice of a document's extracted text, sized for
// embedding and retrieval. Chunks are immutable once created; re-ingesting a
// document replaces all of its chunks.
type Chunk struct {
	// ID is DocumentID + ":" + Seq, so identical text in different documents
	// never collides and re-splitting the same document reproduces the ids.
	ID         string `json:"id"`
	DocumentID string `json:"document_id"`
	Seq        int    `json:"seq"`
	Text       string `json:"text"`
	// Start and End are rune offsets into the segment this chunk was cut
	// from. Overlap is the number of leading runes shared with the previous
	// chunk of the same segment.
	Start      int    `json:"start"`
	End        int    `json:"end"`
	Overlap    int    `json:"overlap"`
	Provenance string `json:"provenance,omitempty"`
	Filename   string `json:"filename"`
}

// ChunkMeta is the metadata bag persisted next to a vector in the index.
// The excerpt text lives here so retrieval does not need a second lookup.
type ChunkMeta struct {
	DocumentID string `json:"document_id"`
	Filename   string `json:"filename"`
	Provenance string `json:"provenance,omitempty"`
	Text       string `json:"text"`
}

// IndexEntry pairs a chunk's embedding with its metadata for upsert into the
// vector index. Keyed by ChunkID; upserting the same id overwrites.
type IndexEntry struct {
	ChunkID string
	Vector  []float32
	Meta    ChunkMeta
}

// Match is one vector index search hit.
type Match struct {
	ChunkID string
	Score   float32
	Meta    ChunkMeta
}

// ScoredChunk is a chunk selected for a retrieval context together with its
// similarity score.
type ScoredChunk struct {
	Chunk Chunk   `json:"chunk"`
	Score float32 `json:"score"`
}

// RetrievalContext is the ordered set of chunks grounding one query. Scores
// are non-increasing and every chunk id appears at most once.
type RetrievalContext struct {
	Chunks []ScoredChunk `json:"chunks"`
}

// Empty reports whether no grounding material was retrieved.
func (rc *RetrievalContext) Empty() bool {
	return rc == nil || len(rc.Chunks) == 0
}

// Contains reports whether the context holds the given chunk id.
func (rc *RetrievalContext) Contains(chunkID string) bool {
	if rc == nil {
		return false
	}
	for _, sc := range rc.Chunks {
		if sc.Chunk.ID == chunkID {
			return true
		}
	}
	return false
}

// Lookup returns the chunk with the given id, if present in the context.
func (rc *RetrievalContext) Lookup(chunkID string) (Chunk, bool) {
	if rc == nil {
		return Chunk{}, false
	}
	for _, sc := range rc.Chunks {
		if sc.Chunk.ID == chunkID {
			return sc.Chunk, true
		}
	}
	return Chunk{}, false
}

// Citation links a marker found in generated text back to a concrete chunk
// of a concrete document.
type Citation struct {
	Marker     string `json:"marker"`
	ChunkID    string `json:"chunk_id"`
	DocumentID string `json:"document_id"`
	Excerpt    string `json:"excerpt"`
}

// UnverifiedCitation is a marker that did not resolve to a chunk inside the
// retrieval context supplied to the generation call. It is recorded, never
// silently dropped, and never included in the verified citation set.
type UnverifiedCitation struct {
	Marker  string `json:"marker"`
	ChunkID string `json:"chunk_id"`
}

// Candidate is one generated answer at a specific sampling temperature.
// A non-empty Error marks the candidate as failed; the other fields are
// then empty.
type Candidate struct {
	Temperature float32              `json:"temperature"`
	Answer      string               `json:"answer"`
	Reasoning   string               `json:"reasoning,omitempty"`
	Citations   []Citation           `json:"citations"`
	Unverified  []UnverifiedCitation `json:"unverified_citations,omitempty"`
	Error       string               `json:"error,omitempty"`
}

// Failed reports whether this candidate's generation call failed.
func (c Candidate) Failed() bool {
	return c.Error != ""
}

// Ingestion outcome per file.
const (
	StatusOK                = "ok"
	StatusUnsupportedFormat = "unsupported_format"
	StatusCorruptDocument   = "corrupt_document"
	StatusEmbeddingFailed   = "embedding_failed"
	StatusIndexFailed       = "index_failed"
	StatusStoreFailed       = "store_failed"
)

// FileResult records the outcome of ingesting one uploaded file.
type FileResult struct {
	Filename   string `json:"filename"`
	DocumentID string `json:"document_id,omitempty"`
	Status     string `json:"status"`
	Chunks     int    `json:"chunks,omitempty"`
	Error      string `json:"error,omitempty"`
}

// IngestReport lists every submitted file's outcome, in submission order.
// One file's failure never removes the others from the report.
type IngestReport struct {
	Files []FileResult `json:"files"`
}

// Succeeded counts the files that ingested cleanly.
func (r *IngestReport) Succeeded() int {
	n := 0
	for _, f := range r.Files {
		if f.Status == StatusOK {
			n++
		}
	}
	return n
}
