package embeddings

import (
	"context"
	"fmt"

	"docbot/internal/config"
	"docbot/internal/rag/interfaces"
)

// New is a factory that builds the embedding client selected by the
// configuration.
func New(ctx context.Context, cfg config.EmbeddingConfig) (interfaces.EmbeddingModel, error) {
	switch cfg.Provider {
	case "gemini":
		return NewGenaiModel(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
	case "openai":
		return NewOpenAIModel(cfg.OpenAI.APIKey, cfg.OpenAI.Model, cfg.OpenAI.BaseURL), nil
	case "ollama":
		return NewOllamaModel(cfg.Ollama.Model, cfg.Ollama.Address)
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Provider)
	}
}
