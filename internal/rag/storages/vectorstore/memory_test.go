package vectorstore

import (
	"context"
	"testing"

	"docbot/internal/rag/schema"
)

func entry(chunkID, docID string, vector []float32) schema.IndexEntry {
	return schema.IndexEntry{
		ChunkID: chunkID,
		Vector:  vector,
		Meta:    schema.ChunkMeta{DocumentID: docID, Filename: docID + ".txt", Text: "text of " + chunkID},
	}
}

func TestMemoryIndex_QueryOrdersByScore(t *testing.T) {
	ctx := context.Background()
	idx := NewMemoryIndex()

	err := idx.Upsert(ctx, []schema.IndexEntry{
		entry("a:0", "a", []float32{1, 0, 0}),
		entry("a:1", "a", []float32{0.7, 0.7, 0}),
		entry("a:2", "a", []float32{0, 1, 0}),
	})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	matches, err := idx.Query(ctx, []float32{1, 0, 0}, 3)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(matches) != 3 {
		t.Fatalf("expected 3 matches, got %d", len(matches))
	}
	if matches[0].ChunkID != "a:0" {
		t.Errorf("expected exact match first, got %q", matches[0].ChunkID)
	}
	for i := 1; i < len(matches); i++ {
		if matches[i].Score > matches[i-1].Score {
			t.Errorf("scores not descending at %d: %f > %f", i, matches[i].Score, matches[i-1].Score)
		}
	}
}

func TestMemoryIndex_QueryRespectsTopK(t *testing.T) {
	ctx := context.Background()
	idx := NewMemoryIndex()

	for _, e := range []schema.IndexEntry{
		entry("a:0", "a", []float32{1, 0}),
		entry("a:1", "a", []float32{0, 1}),
		entry("a:2", "a", []float32{1, 1}),
	} {
		if err := idx.Upsert(ctx, []schema.IndexEntry{e}); err != nil {
			t.Fatalf("Upsert: %v", err)
		}
	}

	matches, err := idx.Query(ctx, []float32{1, 0}, 2)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(matches) != 2 {
		t.Errorf("expected 2 matches with topK=2, got %d", len(matches))
	}
}

func TestMemoryIndex_EmptyIndexYieldsNoMatches(t *testing.T) {
	idx := NewMemoryIndex()

	matches, err := idx.Query(context.Background(), []float32{1, 0}, 5)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("expected no matches from empty index, got %d", len(matches))
	}
}

func TestMemoryIndex_UpsertOverwritesSameID(t *testing.T) {
	ctx := context.Background()
	idx := NewMemoryIndex()

	if err := idx.Upsert(ctx, []schema.IndexEntry{entry("a:0", "a", []float32{1, 0})}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := idx.Upsert(ctx, []schema.IndexEntry{entry("a:0", "a", []float32{0, 1})}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	if idx.Len() != 1 {
		t.Fatalf("expected 1 entry after re-upsert, got %d", idx.Len())
	}

	matches, err := idx.Query(ctx, []float32{0, 1}, 1)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if matches[0].Score < 0.99 {
		t.Errorf("old vector survived re-upsert, score %f", matches[0].Score)
	}
}

func TestMemoryIndex_DeleteByDocument(t *testing.T) {
	ctx := context.Background()
	idx := NewMemoryIndex()

	err := idx.Upsert(ctx, []schema.IndexEntry{
		entry("a:0", "a", []float32{1, 0}),
		entry("a:1", "a", []float32{0, 1}),
		entry("b:0", "b", []float32{1, 1}),
	})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	if err := idx.DeleteByDocument(ctx, "a"); err != nil {
		t.Fatalf("DeleteByDocument: %v", err)
	}
	if idx.Len() != 1 {
		t.Fatalf("expected 1 entry left, got %d", idx.Len())
	}

	matches, err := idx.Query(ctx, []float32{1, 0}, 10)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	for _, m := range matches {
		if m.Meta.DocumentID == "a" {
			t.Errorf("deleted document still present: %q", m.ChunkID)
		}
	}
}

func TestCosineSimilarity(t *testing.T) {
	cases := []struct {
		name string
		a, b []float32
		want float32
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"zero vector", []float32{0, 0}, []float32{1, 0}, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := cosineSimilarity(tc.a, tc.b)
			if diff := got - tc.want; diff > 1e-6 || diff < -1e-6 {
				t.Errorf("cosineSimilarity(%v, %v) = %f, want %f", tc.a, tc.b, got, tc.want)
			}
		})
	}
}
