// Package guard decides whether an inbound chat request is admitted.
// Checks run in a fixed order and stop at the first failure: origin,
// widget token, rate limit, payload.
package guard

import (
	"fmt"

	"github.com/sandevgo/tuskrelay/internal/core"
)

type Guard struct {
	origins *AllowList
	token   string
	limiter *RateLimiter
}

func NewGuard(origins *AllowList, token string, limiter *RateLimiter) *Guard {
	return &Guard{
		origins: origins,
		token:   token,
		limiter: limiter,
	}
}

// Admit runs the header checks. Only requests that pass the origin and
// token checks count toward the client's rate budget.
func (g *Guard) Admit(origin, token, client string) error {
	if !g.origins.Allowed(origin) {
		if origin == "" {
			return fmt.Errorf("%w: missing Origin header", core.ErrOriginNotAllowed)
		}
		return fmt.Errorf("%w: %q", core.ErrOriginNotAllowed, origin)
	}

	if err := checkToken(token, g.token); err != nil {
		return err
	}

	if ok, wait := g.limiter.Allow(client); !ok {
		return &RateLimitError{Client: client, RetryAfter: wait}
	}
	return nil
}

func (g *Guard) Origins() *AllowList {
	return g.origins
}
