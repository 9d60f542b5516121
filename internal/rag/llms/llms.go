package llms

import (
	"context"
	"fmt"

	"docbot/internal/config"
	"docbot/internal/rag/interfaces"
)

// New is a factory that builds the generation client selected by the
// configuration.
func New(ctx context.Context, cfg config.LLMConfig) (interfaces.LLM, error) {
	switch cfg.Provider {
	case "gemini":
		return NewGemini(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
	case "openai":
		return NewOpenAI(cfg.OpenAI.APIKey, cfg.OpenAI.Model, cfg.OpenAI.BaseURL), nil
	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", cfg.Provider)
	}
}
