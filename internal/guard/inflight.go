package guard

import (
	"sync"

	"github.com/bingoo/platform/internal/domain"
)

// InFlightGuard rejects a second concurrent operation on the same key within
// this process, e.g. two capture calls for one pending deposit.
type InFlightGuard struct {
	mu   sync.Mutex
	busy map[string]struct{}
}

// NewInFlightGuard creates an empty guard.
func NewInFlightGuard() *InFlightGuard {
	return &InFlightGuard{busy: make(map[string]struct{})}
}

// Acquire marks key busy. The caller must Release it when Allowed is true.
func (g *InFlightGuard) Acquire(key string) domain.GuardResult {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.busy[key]; ok {
		return domain.GuardResult{
			Allowed: false,
			Reason:  "operation already in progress",
			Guard:   "in_flight",
		}
	}
	g.busy[key] = struct{}{}
	return domain.GuardResult{Allowed: true}
}

// Release frees key.
func (g *InFlightGuard) Release(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.busy, key)
}
