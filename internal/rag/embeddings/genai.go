package embeddings

import (
	"context"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"docbot/internal/rag/interfaces"
)

// GenaiModel is an embedding client for the Google GenAI API.
type GenaiModel struct {
	model     *genai.EmbeddingModel
	modelName string
}

// NewGenaiModel creates a GenAI embedding client for the given model.
func NewGenaiModel(ctx context.Context, apiKey, modelName string) (*GenaiModel, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	return &GenaiModel{
		model:     client.EmbeddingModel(modelName),
		modelName: modelName,
	}, nil
}

// Embed generates embedding vectors for a batch of texts using the GenAI
// batch endpoint. The result preserves input order.
func (m *GenaiModel) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	batch := m.model.NewBatch()
	for _, text := range texts {
		batch.AddContent(genai.Text(text))
	}

	res, err := m.model.BatchEmbedContents(ctx, batch)
	if err != nil {
		return nil, err
	}

	vectors := make([][]float32, 0, len(res.Embeddings))
	for _, emb := range res.Embeddings {
		vectors = append(vectors, emb.Values)
	}
	return vectors, nil
}

// ModelID returns the embedding model identifier.
func (m *GenaiModel) ModelID() string {
	return m.modelName
}

var _ interfaces.EmbeddingModel = (*GenaiModel)(nil)
