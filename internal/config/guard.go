package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/tuskrelay/pkg/log"
)

// DefaultAllowedOrigins apply when ALLOWED_ORIGINS is unset or empty.
var DefaultAllowedOrigins = []string{
	"https://tuskrelay.dev",
	"https://www.tuskrelay.dev",
}

type GuardConfig struct {
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:","`
	WidgetToken    string   `env:"WIDGET_TOKEN"`

	RateLimitRequests int           `env:"RATE_LIMIT_REQUESTS" envDefault:"20"`
	RateLimitWindow   time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"60s"`

	// Proxies allowed to set X-Forwarded-For / X-Real-IP. Loopback only by
	// default; add the load balancer's range when it is not on this host.
	TrustedProxies []string `env:"TRUSTED_PROXIES" envSeparator:"," envDefault:"127.0.0.1/32,::1/128"`
}

func ParseGuardConfig() (*GuardConfig, error) {
	c := &GuardConfig{}
	if err := env.Parse(c); err != nil {
		return nil, err
	}

	c.AllowedOrigins = cleanList(c.AllowedOrigins)
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = append([]string(nil), DefaultAllowedOrigins...)
	}
	c.TrustedProxies = cleanList(c.TrustedProxies)

	if c.RateLimitRequests <= 0 {
		return nil, fmt.Errorf("invalid rate limit: %d", c.RateLimitRequests)
	}
	if c.RateLimitWindow <= 0 {
		return nil, fmt.Errorf("invalid rate limit window: %s", c.RateLimitWindow)
	}
	return c, nil
}

func NewGuardConfig(ctx context.Context) *GuardConfig {
	c, err := ParseGuardConfig()
	if err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Guard config")
	}
	return c
}

func cleanList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
