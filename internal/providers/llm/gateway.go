package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/sandevgo/tuskrelay/internal/core"
	"github.com/sandevgo/tuskrelay/pkg/log"
)

// Gateway normalizes provider results: every failure becomes
// core.ErrUpstream and blank replies become core.FallbackReply. Other
// replies pass through unchanged.
type Gateway struct {
	provider   core.AIProvider
	configured bool
}

func NewGateway(provider core.AIProvider, cfg core.ProviderConfig) *Gateway {
	return &Gateway{
		provider:   provider,
		configured: cfg.GetAPIKey() != "" || !requiresKey(cfg.GetProvider()),
	}
}

func (g *Gateway) Complete(ctx context.Context, messages []core.Message) (string, error) {
	if !g.configured {
		return "", fmt.Errorf("%w: provider api key is missing", core.ErrNotConfigured)
	}

	msg, err := g.provider.Chat(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("%w: %w", core.ErrUpstream, err)
	}

	if strings.TrimSpace(msg.Content) == "" {
		log.FromCtx(ctx).Warn().Msg("provider returned an empty reply, using fallback")
		return core.FallbackReply, nil
	}
	return msg.Content, nil
}
