package pipeline

import (
	"context"
	"fmt"
	"time"

	"docbot/internal/rag/interfaces"
	"docbot/internal/rag/schema"
	"docbot/pkg/logger"
	"docbot/pkg/retry"
)

// RetrievalEngine turns a query into a bounded retrieval context: embed the
// query, search the index, filter, deduplicate and truncate to budget.
type RetrievalEngine struct {
	embedder interfaces.EmbeddingModel
	index    interfaces.VectorIndex

	// minScore drops matches scoring strictly below it. The zero value
	// keeps every non-negative cosine score, i.e. all of the top-k.
	minScore    float32
	callTimeout time.Duration
	retryPolicy retry.Policy
	log         *logger.Logger
}

// NewRetrievalEngine creates a retrieval engine.
func NewRetrievalEngine(
	embedder interfaces.EmbeddingModel,
	index interfaces.VectorIndex,
	minScore float32,
	callTimeout time.Duration,
	retryPolicy retry.Policy,
	log *logger.Logger,
) *RetrievalEngine {
	return &RetrievalEngine{
		embedder:    embedder,
		index:       index,
		minScore:    minScore,
		callTimeout: callTimeout,
		retryPolicy: retryPolicy,
		log:         log,
	}
}

// Retrieve assembles the context for one query. An empty index or zero
// qualifying matches yield an empty context, not an error; downstream
// generation treats that as "no grounding available".
func (e *RetrievalEngine) Retrieve(ctx context.Context, queryText string, k, maxContextChars int) (*schema.RetrievalContext, error) {
	var vector []float32
	err := retry.Do(ctx, e.retryPolicy, func(ctx context.Context) error {
		callCtx, cancel := context.WithTimeout(ctx, e.callTimeout)
		defer cancel()

		vectors, embedErr := e.embedder.Embed(callCtx, []string{queryText})
		if embedErr != nil {
			return embedErr
		}
		if len(vectors) != 1 {
			return fmt.Errorf("expected 1 query vector, got %d", len(vectors))
		}
		vector = vectors[0]
		return nil
	})
	if err != nil {
		return nil, &schema.EmbeddingProviderError{BatchStart: 0, Err: err}
	}

	var matches []schema.Match
	err = retry.Do(ctx, e.retryPolicy, func(ctx context.Context) error {
		callCtx, cancel := context.WithTimeout(ctx, e.callTimeout)
		defer cancel()

		var queryErr error
		matches, queryErr = e.index.Query(callCtx, vector, k)
		return queryErr
	})
	if err != nil {
		return nil, &schema.VectorIndexError{Op: "search", Err: err}
	}

	rc := &schema.RetrievalContext{}
	seen := make(map[string]bool)
	total := 0
	for _, m := range matches {
		if m.Score < e.minScore {
			continue
		}
		// The same chunk can come back under more than one alias.
		if seen[m.ChunkID] {
			continue
		}
		// Truncate, respecting score order, once the next chunk would
		// exceed the character budget.
		if maxContextChars > 0 && total+len(m.Meta.Text) > maxContextChars {
			break
		}

		seen[m.ChunkID] = true
		total += len(m.Meta.Text)
		rc.Chunks = append(rc.Chunks, schema.ScoredChunk{
			Chunk: schema.Chunk{
				ID:         m.ChunkID,
				DocumentID: m.Meta.DocumentID,
				Text:       m.Meta.Text,
				Provenance: m.Meta.Provenance,
				Filename:   m.Meta.Filename,
			},
			Score: m.Score,
		})
	}

	e.log.WithPayload(map[string]interface{}{
		"matches":  len(matches),
		"selected": len(rc.Chunks),
	}).Debug("Assembled retrieval context")
	return rc, nil
}
