package guard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sandevgo/tuskrelay/internal/core"
	"github.com/sandevgo/tuskrelay/pkg/log"
)

// RateLimitError is returned when a client exhausted its budget.
type RateLimitError struct {
	Client     string
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s: client %s, retry after %s", core.ErrRateLimited, e.Client, e.RetryAfter)
}

func (e *RateLimitError) Unwrap() error {
	return core.ErrRateLimited
}

// RateLimiter admits at most limit requests per client within any window,
// keeping a log of admission times per client address.
type RateLimiter struct {
	mu       sync.Mutex
	requests map[string][]time.Time
	limit    int
	window   time.Duration
	now      func() time.Time
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		requests: make(map[string][]time.Time),
		limit:    limit,
		window:   window,
		now:      time.Now,
	}
}

func (rl *RateLimiter) Limit() int {
	return rl.limit
}

func (rl *RateLimiter) Window() time.Duration {
	return rl.window
}

// Allow counts one request for client. When the budget is exhausted it
// returns false and the time until the oldest admission leaves the window.
func (rl *RateLimiter) Allow(client string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	valid := inWindow(rl.requests[client], now.Add(-rl.window))

	if len(valid) >= rl.limit {
		rl.requests[client] = valid
		return false, valid[0].Add(rl.window).Sub(now)
	}

	rl.requests[client] = append(valid, now)
	return true, 0
}

// inWindow drops timestamps at or before windowStart. Timestamps are
// appended in order, so the survivors form a suffix.
func inWindow(timestamps []time.Time, windowStart time.Time) []time.Time {
	for i, ts := range timestamps {
		if ts.After(windowStart) {
			return timestamps[i:]
		}
	}
	return nil
}

// Sweep drops clients without any request inside the current window.
func (rl *RateLimiter) Sweep() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	windowStart := rl.now().Add(-rl.window)
	removed := 0
	for client, timestamps := range rl.requests {
		valid := inWindow(timestamps, windowStart)
		if len(valid) == 0 {
			delete(rl.requests, client)
			removed++
			continue
		}
		rl.requests[client] = valid
	}
	return removed
}

func (rl *RateLimiter) Start(ctx context.Context) error {
	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := rl.Sweep(); n > 0 {
				log.FromCtx(ctx).Debug().Int("clients", n).Msg("evicted idle rate limit entries")
			}
		}
	}
}

func (rl *RateLimiter) Shutdown(ctx context.Context) error {
	return nil
}
