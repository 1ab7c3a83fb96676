package identity

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMiniredisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client, "mslu_"), mr
}

func TestRedisStore_RoundTrip(t *testing.T) {
	store, mr := newMiniredisStore(t)
	ctx := context.Background()

	_, ok, err := store.Get(ctx, "lead_id")
	require.NoError(t, err)
	assert.False(t, ok, "missing key reports absent, not error")

	require.NoError(t, store.Set(ctx, "lead_id", "lead-123", time.Hour))

	v, ok, err := store.Get(ctx, "lead_id")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "lead-123", v)

	// Keys are namespaced under the configured prefix.
	assert.True(t, mr.Exists("mslu_lead_id"))

	require.NoError(t, store.Clear(ctx, "lead_id"))
	_, ok, err = store.Get(ctx, "lead_id")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStore_TTLExpiry(t *testing.T) {
	store, mr := newMiniredisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "session_id", "sess-1", 30*time.Minute))
	mr.FastForward(31 * time.Minute)

	_, ok, err := store.Get(ctx, "session_id")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestManager_OverRedisStore(t *testing.T) {
	store, _ := newMiniredisStore(t)
	m, _ := newTestManager(t, store)
	ctx := context.Background()

	id := m.EnsureLeadID(ctx)
	assert.Equal(t, id, m.EnsureLeadID(ctx))
	assert.Equal(t, 0, m.SessionCount(ctx))

	m.EnsureSession(ctx)
	assert.Equal(t, 1, m.SessionCount(ctx))
	assert.False(t, m.IsReturning(ctx))
}
