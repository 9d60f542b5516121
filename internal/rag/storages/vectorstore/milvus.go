package vectorstore

import (
	"context"
	"fmt"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"docbot/internal/rag/interfaces"
	"docbot/internal/rag/schema"
	"docbot/pkg/logger"
)

// Milvus collection fields.
const (
	FieldID         = "id"
	FieldEmbedding  = "embedding"
	FieldDocumentID = "document_id"
	FieldFileName   = "file_name"
	FieldProvenance = "provenance"
	FieldText       = "text"
)

const (
	maxVarCharLength = 65535
	idVarCharLength  = 128
)

// MilvusIndex implements the VectorIndex interface on top of a Milvus
// collection. Scores use the COSINE metric, so higher is more similar.
type MilvusIndex struct {
	log        *logger.Logger
	client     client.Client
	collection string
	dim        int
}

// NewMilvusIndex connects to Milvus and makes sure the collection exists
// and is loaded. dim must match the embedding model's output dimension for
// the life of the collection.
func NewMilvusIndex(ctx context.Context, address, collection string, dim int, log *logger.Logger) (*MilvusIndex, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("embedding dimension must be positive, got %d", dim)
	}

	c, err := client.NewClient(ctx, client.Config{Address: address})
	if err != nil {
		return nil, &schema.VectorIndexError{Op: "connect", Err: err}
	}

	idx := &MilvusIndex{log: log, client: c, collection: collection, dim: dim}
	if err := idx.ensureCollection(ctx); err != nil {
		return nil, err
	}
	return idx, nil
}

// ensureCollection creates and loads the collection on first use.
func (s *MilvusIndex) ensureCollection(ctx context.Context) error {
	has, err := s.client.HasCollection(ctx, s.collection)
	if err != nil {
		return &schema.VectorIndexError{Op: "has_collection", Err: err}
	}

	if !has {
		s.log.Info(fmt.Sprintf("Creating Milvus collection %q (dim=%d)", s.collection, s.dim))
		collSchema := entity.NewSchema().
			WithName(s.collection).
			WithDescription("document chunk embeddings").
			WithField(entity.NewField().WithName(FieldID).WithDataType(entity.FieldTypeVarChar).
				WithMaxLength(idVarCharLength).WithIsPrimaryKey(true)).
			WithField(entity.NewField().WithName(FieldEmbedding).WithDataType(entity.FieldTypeFloatVector).
				WithDim(int64(s.dim))).
			WithField(entity.NewField().WithName(FieldDocumentID).WithDataType(entity.FieldTypeVarChar).
				WithMaxLength(idVarCharLength)).
			WithField(entity.NewField().WithName(FieldFileName).WithDataType(entity.FieldTypeVarChar).
				WithMaxLength(1024)).
			WithField(entity.NewField().WithName(FieldProvenance).WithDataType(entity.FieldTypeVarChar).
				WithMaxLength(256)).
			WithField(entity.NewField().WithName(FieldText).WithDataType(entity.FieldTypeVarChar).
				WithMaxLength(maxVarCharLength))

		if err := s.client.CreateCollection(ctx, collSchema, 1); err != nil {
			return &schema.VectorIndexError{Op: "create_collection", Err: err}
		}

		index, err := entity.NewIndexIvfFlat(entity.COSINE, 128)
		if err != nil {
			return &schema.VectorIndexError{Op: "create_index", Err: err}
		}
		if err := s.client.CreateIndex(ctx, s.collection, FieldEmbedding, index, false); err != nil {
			return &schema.VectorIndexError{Op: "create_index", Err: err}
		}
	}

	if err := s.client.LoadCollection(ctx, s.collection, false); err != nil {
		return &schema.VectorIndexError{Op: "load_collection", Err: err}
	}
	return nil
}

// Upsert writes index entries keyed by chunk id; an existing id is
// overwritten.
func (s *MilvusIndex) Upsert(ctx context.Context, entries []schema.IndexEntry) error {
	if len(entries) == 0 {
		return nil
	}

	ids := make([]string, len(entries))
	vectors := make([][]float32, len(entries))
	docIDs := make([]string, len(entries))
	fileNames := make([]string, len(entries))
	provenances := make([]string, len(entries))
	texts := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.ChunkID
		vectors[i] = e.Vector
		docIDs[i] = e.Meta.DocumentID
		fileNames[i] = e.Meta.Filename
		provenances[i] = e.Meta.Provenance
		texts[i] = e.Meta.Text
	}

	_, err := s.client.Upsert(ctx, s.collection, "",
		entity.NewColumnVarChar(FieldID, ids),
		entity.NewColumnFloatVector(FieldEmbedding, s.dim, vectors),
		entity.NewColumnVarChar(FieldDocumentID, docIDs),
		entity.NewColumnVarChar(FieldFileName, fileNames),
		entity.NewColumnVarChar(FieldProvenance, provenances),
		entity.NewColumnVarChar(FieldText, texts),
	)
	if err != nil {
		return &schema.VectorIndexError{Op: "upsert", Err: err}
	}

	s.log.Debug(fmt.Sprintf("Upserted %d entries into collection %q", len(entries), s.collection))
	return nil
}

// Query runs a top-k similarity search. An empty collection returns an
// empty result, not an error.
func (s *MilvusIndex) Query(ctx context.Context, vector []float32, topK int) ([]schema.Match, error) {
	if topK <= 0 {
		return nil, nil
	}

	searchParams, err := entity.NewIndexIvfFlatSearchParam(10)
	if err != nil {
		return nil, &schema.VectorIndexError{Op: "search", Err: err}
	}

	outputFields := []string{FieldID, FieldDocumentID, FieldFileName, FieldProvenance, FieldText}
	results, err := s.client.Search(
		ctx, s.collection, nil, "", outputFields,
		[]entity.Vector{entity.FloatVector(vector)},
		FieldEmbedding, entity.COSINE, topK, searchParams,
	)
	if err != nil {
		return nil, &schema.VectorIndexError{Op: "search", Err: err}
	}

	var matches []schema.Match
	for _, res := range results {
		ids := varCharColumn(res.Fields, FieldID)
		docIDs := varCharColumn(res.Fields, FieldDocumentID)
		fileNames := varCharColumn(res.Fields, FieldFileName)
		provenances := varCharColumn(res.Fields, FieldProvenance)
		texts := varCharColumn(res.Fields, FieldText)
		if ids == nil {
			continue
		}

		for i := 0; i < res.ResultCount; i++ {
			m := schema.Match{ChunkID: ids[i], Score: res.Scores[i]}
			if docIDs != nil {
				m.Meta.DocumentID = docIDs[i]
			}
			if fileNames != nil {
				m.Meta.Filename = fileNames[i]
			}
			if provenances != nil {
				m.Meta.Provenance = provenances[i]
			}
			if texts != nil {
				m.Meta.Text = texts[i]
			}
			matches = append(matches, m)
		}
	}

	return matches, nil
}

// DeleteByDocument removes every chunk of the given document.
func (s *MilvusIndex) DeleteByDocument(ctx context.Context, documentID string) error {
	expr := fmt.Sprintf(`%s == "%s"`, FieldDocumentID, documentID)
	if err := s.client.Delete(ctx, s.collection, "", expr); err != nil {
		return &schema.VectorIndexError{Op: "delete", Err: err}
	}
	return nil
}

// Close releases the underlying Milvus connection.
func (s *MilvusIndex) Close() error {
	return s.client.Close()
}

func varCharColumn(fields []entity.Column, name string) []string {
	for _, field := range fields {
		if field.Name() != name {
			continue
		}
		if col, ok := field.(*entity.ColumnVarChar); ok {
			return col.Data()
		}
	}
	return nil
}

var _ interfaces.VectorIndex = (*MilvusIndex)(nil)
