package storage

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadpipe/internal/models"
)

func newTestStore(t *testing.T) (*LeadStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewLeadStore(client, time.Hour), mr
}

func TestLeadStore_SaveAndGet(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	rec := &models.LeadRecord{
		LeadID:          "lead-1",
		Name:            "Amanda",
		Email:           "amanda@example.com",
		AmandaScore:     85,
		AmandaScoreTier: "high",
	}
	require.NoError(t, store.Save(ctx, rec))

	got, err := store.Get(ctx, "lead-1")
	require.NoError(t, err)
	assert.Equal(t, rec, got)
}

func TestLeadStore_MissingLead(t *testing.T) {
	store, _ := newTestStore(t)
	_, err := store.Get(context.Background(), "absent")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLeadStore_TTLExpiry(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &models.LeadRecord{LeadID: "lead-1"}))
	mr.FastForward(2 * time.Hour)

	_, err := store.Get(ctx, "lead-1")
	assert.ErrorIs(t, err, ErrNotFound)
}
