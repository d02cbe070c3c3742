package llm

import (
	"context"
	"fmt"

	"github.com/sandevgo/tuskrelay/internal/core"
	"github.com/sandevgo/tuskrelay/pkg/log"
)

// NewProvider creates the appropriate AIProvider based on configuration.
func NewProvider(ctx context.Context, cfg core.ProviderConfig) (core.AIProvider, error) {
	log.FromCtx(ctx).Info().
		Str("provider", cfg.GetProvider()).
		Str("model", cfg.GetModel()).
		Msg("starting llm provider")

	key, model, timeout := cfg.GetAPIKey(), cfg.GetModel(), cfg.GetTimeout()

	switch cfg.GetProvider() {
	case "openai":
		return NewOpenAI(key, model, timeout), nil
	case "anthropic":
		return NewAnthropic(key, model, timeout), nil
	case "openrouter":
		return NewOpenRouter(key, model, timeout), nil
	case "ollama":
		return NewOllama(cfg.GetBaseURL(), key, model, timeout), nil
	case "custom":
		if cfg.GetBaseURL() == "" {
			return nil, fmt.Errorf("custom provider requires LLM_BASE_URL")
		}
		return NewCustomOpenAI(cfg.GetBaseURL(), key, model, timeout), nil
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.GetProvider())
	}
}

// requiresKey reports whether the provider refuses requests without a key.
func requiresKey(provider string) bool {
	return provider != "ollama"
}
