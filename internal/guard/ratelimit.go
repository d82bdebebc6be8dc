package guard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bingoo/platform/internal/domain"
)

// RateLimiter implements a sliding window rate limiter keyed by caller.
type RateLimiter struct {
	mu      sync.Mutex
	windows map[string][]time.Time
	limit   int
	window  time.Duration
	now     func() time.Time
}

// NewRateLimiter creates a rate limiter with the given limit per window.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		windows: make(map[string][]time.Time),
		limit:   limit,
		window:  window,
		now:     time.Now,
	}
}

// Check returns a GuardResult indicating whether the key is within rate limits.
// Allowed calls are counted; rejected calls are not.
func (rl *RateLimiter) Check(_ context.Context, key string) domain.GuardResult {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	cutoff := now.Add(-rl.window)

	entries := rl.windows[key]
	valid := entries[:0]
	for _, t := range entries {
		if t.After(cutoff) {
			valid = append(valid, t)
		}
	}

	if len(valid) >= rl.limit {
		rl.windows[key] = valid
		return domain.GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("rate limit exceeded: %d/%s", rl.limit, rl.window),
			Guard:   "rate_limiter",
		}
	}

	rl.windows[key] = append(valid, now)
	return domain.GuardResult{Allowed: true}
}

// Sweep drops keys with no hits inside the window.
func (rl *RateLimiter) Sweep() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-rl.window)
	for key, entries := range rl.windows {
		if len(entries) == 0 || !entries[len(entries)-1].After(cutoff) {
			delete(rl.windows, key)
		}
	}
}
