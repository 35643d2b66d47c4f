package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/stackable-labs/stackable-backend/config"
)

// Provider is a single-shot text completion backend.
// Callers send the whole prompt every time; no session is kept.
type Provider interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}

func NewProvider(ctx context.Context, cfg config.LLMConfig) (Provider, error) {
	switch strings.ToLower(cfg.Provider) {
	case config.LLMProviderGemini:
		return NewGeminiProvider(ctx, cfg)
	case config.LLMProviderOpenAI:
		return NewOpenAIProvider(cfg), nil
	case config.LLMProviderAnthropic:
		return NewAnthropicProvider(cfg), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}
