package sdk

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func TestKey(t *testing.T) {
	args := map[string]any{"user_id": "u1", "amount": 999}

	key := Key("mock-payment", "create_payment_intent", args)
	assert.Len(t, key, 32)

	// Same inputs give the same key.
	assert.Equal(t, key, Key("mock-payment", "create_payment_intent", args))

	// Argument insertion order does not matter.
	reordered := map[string]any{"amount": 999, "user_id": "u1"}
	assert.Equal(t, key, Key("mock-payment", "create_payment_intent", reordered))
}

func TestKeyDiffersByInput(t *testing.T) {
	base := Key("mock-payment", "create_payment_intent", map[string]any{"amount": 999})

	assert.NotEqual(t, base, Key("stripe", "create_payment_intent", map[string]any{"amount": 999}))
	assert.NotEqual(t, base, Key("mock-payment", "refund", map[string]any{"amount": 999}))
	assert.NotEqual(t, base, Key("mock-payment", "create_payment_intent", map[string]any{"amount": 1000}))
}

func TestExecuteRunsOnce(t *testing.T) {
	store, err := NewMemoryStore(16)
	require.NoError(t, err)
	svc := NewIdempotencyService(store, time.Hour, testLogger())

	calls := 0
	fn := func(ctx context.Context) (map[string]any, error) {
		calls++
		return map[string]any{"transaction_id": "txn_1"}, nil
	}

	result, reused, err := svc.Execute(context.Background(), "key-1", fn)
	require.NoError(t, err)
	assert.False(t, reused)
	assert.Equal(t, "txn_1", result["transaction_id"])
	assert.Equal(t, 1, calls)

	result, reused, err = svc.Execute(context.Background(), "key-1", fn)
	require.NoError(t, err)
	assert.True(t, reused)
	assert.Equal(t, "txn_1", result["transaction_id"])
	assert.Equal(t, 1, calls, "second execution must reuse the recorded result")
}

func TestExecuteDoesNotRecordFailures(t *testing.T) {
	store, err := NewMemoryStore(16)
	require.NoError(t, err)
	svc := NewIdempotencyService(store, time.Hour, testLogger())

	boom := errors.New("provider down")
	calls := 0
	_, _, err = svc.Execute(context.Background(), "key-1", func(ctx context.Context) (map[string]any, error) {
		calls++
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)

	// A failed attempt leaves no record, so the retry runs again.
	result, reused, err := svc.Execute(context.Background(), "key-1", func(ctx context.Context) (map[string]any, error) {
		calls++
		return map[string]any{"ok": true}, nil
	})
	require.NoError(t, err)
	assert.False(t, reused)
	assert.Equal(t, true, result["ok"])
	assert.Equal(t, 2, calls)
}

func TestForget(t *testing.T) {
	store, err := NewMemoryStore(16)
	require.NoError(t, err)
	svc := NewIdempotencyService(store, time.Hour, testLogger())

	calls := 0
	fn := func(ctx context.Context) (map[string]any, error) {
		calls++
		return map[string]any{}, nil
	}

	_, _, err = svc.Execute(context.Background(), "key-1", fn)
	require.NoError(t, err)
	require.NoError(t, svc.Forget(context.Background(), "key-1"))

	_, reused, err := svc.Execute(context.Background(), "key-1", fn)
	require.NoError(t, err)
	assert.False(t, reused)
	assert.Equal(t, 2, calls)
}

func TestNewIdempotencyServiceDefaultTTL(t *testing.T) {
	store, err := NewMemoryStore(16)
	require.NoError(t, err)

	svc := NewIdempotencyService(store, 0, testLogger())
	assert.Equal(t, DefaultIdempotencyTTL, svc.ttl)
}

func TestMemoryStoreExpiry(t *testing.T) {
	store, err := NewMemoryStore(16)
	require.NoError(t, err)

	now := time.Now()
	store.now = func() time.Time { return now }

	ctx := context.Background()
	require.NoError(t, store.Store(ctx, "key-1", map[string]any{"ok": true}, time.Minute))

	_, ok, err := store.Check(ctx, "key-1")
	require.NoError(t, err)
	assert.True(t, ok)

	now = now.Add(2 * time.Minute)
	_, ok, err = store.Check(ctx, "key-1")
	require.NoError(t, err)
	assert.False(t, ok, "expired record must read as a miss")
	assert.Equal(t, 0, store.Len(), "expired record is evicted on read")
}

func TestMemoryStoreEviction(t *testing.T) {
	store, err := NewMemoryStore(2)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, store.Store(ctx, "a", map[string]any{}, time.Hour))
	require.NoError(t, store.Store(ctx, "b", map[string]any{}, time.Hour))
	require.NoError(t, store.Store(ctx, "c", map[string]any{}, time.Hour))

	// Oldest entry is evicted by the LRU bound.
	_, ok, err := store.Check(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 2, store.Len())
}

func TestMemoryStoreDelete(t *testing.T) {
	store, err := NewMemoryStore(16)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, store.Store(ctx, "key-1", map[string]any{}, time.Hour))
	require.NoError(t, store.Delete(ctx, "key-1"))
	require.NoError(t, store.Delete(ctx, "never-existed"))

	_, ok, err := store.Check(ctx, "key-1")
	require.NoError(t, err)
	assert.False(t, ok)
}
