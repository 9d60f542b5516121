package interfaces

import (
	"context"

	"docbot/internal/rag/schema"
)

// Loader extracts plain text from the raw bytes of one uploaded file,
// producing segments with provenance (page number, sheet name, row range).
type Loader interface {
	Load(ctx context.Context, filename string, data []byte) ([]schema.Segment, error)
}

// EmbeddingModel converts a batch of texts into fixed-dimension vectors.
// The result has the same length and order as the input.
type EmbeddingModel interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	// ModelID identifies the embedding model; vectors from different models
	// must never be mixed inside one index.
	ModelID() string
}

// VectorIndex stores chunk embeddings and answers top-k similarity queries.
type VectorIndex interface {
	// Upsert is idempotent by chunk id, last write wins.
	Upsert(ctx context.Context, entries []schema.IndexEntry) error
	// Query returns up to topK matches in descending score order. An empty
	// index yields an empty slice, not an error.
	Query(ctx context.Context, vector []float32, topK int) ([]schema.Match, error)
	// DeleteByDocument removes every chunk belonging to the document. It is
	// issued before re-upserting so repeated uploads never leak stale chunks.
	DeleteByDocument(ctx context.Context, documentID string) error
}

// LLM generates text for a prompt at the given sampling temperature. Calls
// at different temperatures must be independent of each other.
type LLM interface {
	Generate(ctx context.Context, prompt string, temperature float32) (string, error)
}

// DocStore persists document records so uploads can be listed later.
type DocStore interface {
	Put(ctx context.Context, doc *schema.Document) error
	List(ctx context.Context) ([]*schema.Document, error)
	Delete(ctx context.Context, documentID string) error
}

// BlobStore keeps the raw bytes of uploaded files.
type BlobStore interface {
	// Put stores the object and returns its storage path.
	Put(ctx context.Context, key string, contentType string, data []byte) (string, error)
	Get(ctx context.Context, key string) ([]byte, error)
}
