package docstore

import (
	"context"
	"sort"
	"sync"

	"docbot/internal/rag/interfaces"
	"docbot/internal/rag/schema"
)

// MemoryDocStore is a thread-safe, in-memory DocStore for tests and
// deployments without MongoDB.
type MemoryDocStore struct {
	mu   sync.RWMutex
	docs map[string]*schema.Document
}

// NewMemoryDocStore creates an empty in-memory document store.
func NewMemoryDocStore() *MemoryDocStore {
	return &MemoryDocStore{docs: make(map[string]*schema.Document)}
}

// Put inserts or replaces the record for a document id.
func (s *MemoryDocStore) Put(ctx context.Context, doc *schema.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copy := *doc
	s.docs[doc.ID] = &copy
	return nil
}

// List returns every stored document record, newest first.
func (s *MemoryDocStore) List(ctx context.Context) ([]*schema.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := make([]*schema.Document, 0, len(s.docs))
	for _, doc := range s.docs {
		copy := *doc
		docs = append(docs, &copy)
	}
	sort.Slice(docs, func(i, j int) bool {
		return docs[i].UploadedAt.After(docs[j].UploadedAt)
	})
	return docs, nil
}

// Delete removes the record for a document id.
func (s *MemoryDocStore) Delete(ctx context.Context, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.docs, documentID)
	return nil
}

var _ interfaces.DocStore = (*MemoryDocStore)(nil)
