package projection

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrNotFound is returned for missing or expired keys.
var ErrNotFound = errors.New("projection not found")

// Store is the interface for projection persistence.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// InMemoryStore is an in-process projection store with per-key expiry.
type InMemoryStore struct {
	mu   sync.Mutex
	data map[string]entry
	now  func() time.Time
}

type entry struct {
	value     []byte
	expiresAt time.Time
}

// NewInMemoryStore creates a new in-memory projection store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{data: make(map[string]entry), now: time.Now}
}

func (s *InMemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.data[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if !e.expiresAt.IsZero() && s.now().After(e.expiresAt) {
		delete(s.data, key)
		return nil, fmt.Errorf("%w: %s expired", ErrNotFound, key)
	}
	return e.value, nil
}

func (s *InMemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var exp time.Time
	if ttl > 0 {
		exp = s.now().Add(ttl)
	}
	s.data[key] = entry{value: value, expiresAt: exp}
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

// Sweep drops expired keys.
func (s *InMemoryStore) Sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for k, e := range s.data {
		if !e.expiresAt.IsZero() && now.After(e.expiresAt) {
			delete(s.data, k)
		}
	}
}

// SetJSON is a convenience helper to serialize and store a value.
func SetJSON(ctx context.Context, store Store, key string, v interface{}, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal projection: %w", err)
	}
	return store.Set(ctx, key, data, ttl)
}

// GetJSON is a convenience helper to retrieve and deserialize a value.
func GetJSON(ctx context.Context, store Store, key string, dest interface{}) error {
	data, err := store.Get(ctx, key)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}
