package vectorstore

import (
	"context"
	"math"
	"sort"
	"sync"

	"docbot/internal/rag/interfaces"
	"docbot/internal/rag/schema"
)

// MemoryIndex is a thread-safe, in-memory VectorIndex using exact cosine
// similarity. It backs tests and single-process deployments that have no
// Milvus available.
type MemoryIndex struct {
	mu      sync.RWMutex
	entries map[string]schema.IndexEntry
}

// NewMemoryIndex creates an empty in-memory index.
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{entries: make(map[string]schema.IndexEntry)}
}

// Upsert stores entries keyed by chunk id, overwriting existing ids.
func (s *MemoryIndex) Upsert(ctx context.Context, entries []schema.IndexEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range entries {
		s.entries[e.ChunkID] = e
	}
	return nil
}

// Query scans all entries and returns the topK most similar in descending
// score order. An empty index yields an empty result.
func (s *MemoryIndex) Query(ctx context.Context, vector []float32, topK int) ([]schema.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if topK <= 0 || len(s.entries) == 0 {
		return nil, nil
	}

	matches := make([]schema.Match, 0, len(s.entries))
	for _, e := range s.entries {
		matches = append(matches, schema.Match{
			ChunkID: e.ChunkID,
			Score:   cosineSimilarity(vector, e.Vector),
			Meta:    e.Meta,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

// DeleteByDocument removes every chunk of the given document.
func (s *MemoryIndex) DeleteByDocument(ctx context.Context, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, e := range s.entries {
		if e.Meta.DocumentID == documentID {
			delete(s.entries, id)
		}
	}
	return nil
}

// Len reports the number of stored entries.
func (s *MemoryIndex) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func cosineSimilarity(a, b []float32) float32 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}

var _ interfaces.VectorIndex = (*MemoryIndex)(nil)
