package config

import (
	"context"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/tuskrelay/pkg/log"
)

// ProviderConfig describes the completion provider. The API key is
// optional at startup; requests fail with a configuration error until it
// is set.
type ProviderConfig struct {
	Provider string        `env:"LLM_PROVIDER" envDefault:"openai"`
	APIKey   string        `env:"LLM_API_KEY"`
	BaseURL  string        `env:"LLM_BASE_URL"`
	Model    string        `env:"LLM_MODEL" envDefault:"gpt-4o-mini"`
	Timeout  time.Duration `env:"LLM_TIMEOUT" envDefault:"60s"`
}

func ParseProviderConfig() (*ProviderConfig, error) {
	c := &ProviderConfig{}
	if err := env.Parse(c); err != nil {
		return nil, err
	}
	return c, nil
}

func NewProviderConfig(ctx context.Context) *ProviderConfig {
	c, err := ParseProviderConfig()
	if err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Provider config")
	}
	return c
}

func (c ProviderConfig) GetProvider() string       { return c.Provider }
func (c ProviderConfig) GetModel() string          { return c.Model }
func (c ProviderConfig) GetAPIKey() string         { return c.APIKey }
func (c ProviderConfig) GetBaseURL() string        { return c.BaseURL }
func (c ProviderConfig) GetTimeout() time.Duration { return c.Timeout }
