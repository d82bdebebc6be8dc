package projection

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryStore_SetAndGet(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	err := store.Set(ctx, "k1", []byte("hello"), 0)
	require.NoError(t, err)

	val, err := store.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), val)
}

func TestInMemoryStore_KeyNotFound(t *testing.T) {
	store := NewInMemoryStore()

	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInMemoryStore_Delete(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	_ = store.Set(ctx, "k1", []byte("data"), 0)
	_ = store.Delete(ctx, "k1")

	_, err := store.Get(ctx, "k1")
	assert.Error(t, err)
}

func TestInMemoryStore_TTLExpiry(t *testing.T) {
	store := NewInMemoryStore()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	_ = store.Set(ctx, "k1", []byte("data"), time.Minute)
	now = now.Add(2 * time.Minute)

	_, err := store.Get(ctx, "k1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInMemoryStore_Sweep(t *testing.T) {
	store := NewInMemoryStore()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	_ = store.Set(ctx, "short", []byte("a"), time.Second)
	_ = store.Set(ctx, "forever", []byte("b"), 0)
	now = now.Add(time.Minute)
	store.Sweep()

	assert.Len(t, store.data, 1)
	_, err := store.Get(ctx, "forever")
	assert.NoError(t, err)
}

func TestFraudCheck_RoundTrip(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()
	userID := uuid.New()

	none, err := LastFraudCheck(ctx, store, userID)
	require.NoError(t, err)
	assert.Nil(t, none)

	require.NoError(t, RecordFraudCheck(ctx, store, FraudCheck{UserID: userID, Alerts: 2}, time.Minute))

	got, err := LastFraudCheck(ctx, store, userID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, userID, got.UserID)
	assert.Equal(t, 2, got.Alerts)
	assert.False(t, got.EvaluatedAt.IsZero())
}

func TestFraudCheck_Forget(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()
	userID := uuid.New()

	_ = RecordFraudCheck(ctx, store, FraudCheck{UserID: userID}, time.Minute)
	require.NoError(t, ForgetFraudCheck(ctx, store, userID))

	got, err := LastFraudCheck(ctx, store, userID)
	require.NoError(t, err)
	assert.Nil(t, got)
}
