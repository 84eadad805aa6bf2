package llm

import (
	"context"
	"fmt"
	"strings"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// New builds the model for the named provider.
func New(ctx context.Context, provider string, gemini GeminiConfig, oa OpenAIConfig) (Model, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "", ProviderGemini:
		return NewGemini(ctx, gemini)
	case ProviderOpenAI:
		if strings.TrimSpace(oa.APIKey) == "" {
			return nil, fmt.Errorf("openai API key is required")
		}
		return NewOpenAI(oa), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", provider)
	}
}
