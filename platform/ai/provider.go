package ai

import (
	"context"
	"fmt"

	"consulting_leads_backend/platform/ai/openai"
	"consulting_leads_backend/platform/config"

	"google.golang.org/adk/model"
)

// NewCompleter builds the configured provider. It returns (nil, nil) when no
// provider key is set; callers treat a nil Completer as "AI disabled" and use
// their deterministic paths.
func NewCompleter(ctx context.Context, cfg config.AIConfig) (Completer, error) {
	if !cfg.IsAIEnabled() {
		return nil, nil
	}

	var llm model.LLM
	switch cfg.GetAIProvider() {
	case "openai":
		llm = openai.NewModel(openai.Config{
			APIKey:  cfg.GetOpenAIAPIKey(),
			BaseURL: cfg.GetOpenAIBaseURL(),
			Model:   cfg.GetAIModel(),
		})
	case "gemini", "":
		gemini, err := NewGeminiModel(ctx, cfg.GetGeminiAPIKey(), cfg.GetAIModel())
		if err != nil {
			return nil, fmt.Errorf("gemini model: %w", err)
		}
		llm = gemini
	default:
		return nil, fmt.Errorf("unknown AI provider %q", cfg.GetAIProvider())
	}

	return NewLLMCompleter(llm, cfg.GetAITimeout()), nil
}
