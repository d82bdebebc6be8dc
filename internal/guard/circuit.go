package guard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bingoo/platform/internal/domain"
)

// CircuitState represents the state of a circuit breaker.
type CircuitState int

const (
	CircuitClosed CircuitState = iota
	CircuitOpen
	CircuitHalfOpen
)

func (s CircuitState) String() string {
	switch s {
	case CircuitOpen:
		return "open"
	case CircuitHalfOpen:
		return "half_open"
	default:
		return "closed"
	}
}

// CircuitBreaker guards calls to external providers, one circuit per key.
type CircuitBreaker struct {
	mu            sync.Mutex
	circuits      map[string]*circuit
	failThreshold int
	resetTimeout  time.Duration
	halfOpenMax   int
	now           func() time.Time
}

type circuit struct {
	state       CircuitState
	failures    int
	probes      int
	lastFailure time.Time
}

// NewCircuitBreaker creates a circuit breaker with configurable thresholds.
func NewCircuitBreaker(failThreshold int, resetTimeout time.Duration) *CircuitBreaker {
	return &CircuitBreaker{
		circuits:      make(map[string]*circuit),
		failThreshold: failThreshold,
		resetTimeout:  resetTimeout,
		halfOpenMax:   1,
		now:           time.Now,
	}
}

// Check returns whether the circuit for the given key allows a request.
// In half-open state only halfOpenMax probes are let through until one reports back.
func (cb *CircuitBreaker) Check(_ context.Context, key string) domain.GuardResult {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	c := cb.get(key)
	switch c.state {
	case CircuitOpen:
		elapsed := cb.now().Sub(c.lastFailure)
		if elapsed <= cb.resetTimeout {
			return domain.GuardResult{
				Reason: fmt.Sprintf("circuit open for %s, resets in %s", key, (cb.resetTimeout - elapsed).Round(time.Second)),
				Guard:  "circuit_breaker",
			}
		}
		c.state = CircuitHalfOpen
		c.probes = 0
		fallthrough
	case CircuitHalfOpen:
		if c.probes >= cb.halfOpenMax {
			return domain.GuardResult{Reason: "circuit half-open, probe in flight", Guard: "circuit_breaker"}
		}
		c.probes++
		return domain.GuardResult{Allowed: true}
	default:
		return domain.GuardResult{Allowed: true}
	}
}

// RecordSuccess closes the circuit for key.
func (cb *CircuitBreaker) RecordSuccess(key string) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	c := cb.get(key)
	c.state = CircuitClosed
	c.failures = 0
	c.probes = 0
}

// RecordFailure counts a failure; a failed half-open probe reopens immediately.
func (cb *CircuitBreaker) RecordFailure(key string) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	c := cb.get(key)
	c.failures++
	c.lastFailure = cb.now()
	if c.state == CircuitHalfOpen || c.failures >= cb.failThreshold {
		c.state = CircuitOpen
	}
}

// State returns the current state for key.
func (cb *CircuitBreaker) State(key string) CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.get(key).state
}

// Execute runs fn if the circuit allows it and records the outcome.
// A rejected call returns INTERNAL_ERROR without invoking fn.
func (cb *CircuitBreaker) Execute(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	if res := cb.Check(ctx, key); !res.Allowed {
		return domain.ErrInternal("payment provider unavailable", fmt.Errorf("%s", res.Reason))
	}
	if err := fn(ctx); err != nil {
		cb.RecordFailure(key)
		return err
	}
	cb.RecordSuccess(key)
	return nil
}

func (cb *CircuitBreaker) get(key string) *circuit {
	c, ok := cb.circuits[key]
	if !ok {
		c = &circuit{state: CircuitClosed}
		cb.circuits[key] = c
	}
	return c
}
