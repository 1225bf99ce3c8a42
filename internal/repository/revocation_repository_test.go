package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/strategy-hub/internal/auth"
)

func newRevocationTest(t *testing.T) (*RevocationRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRevocationRepository(rdb, "auth:revoked:", 200*time.Millisecond), mr
}

func TestRevocationRepository_RevokeAndLookup(t *testing.T) {
	store, mr := newRevocationTest(t)
	ctx := context.Background()

	revoked, err := store.IsRevoked(ctx, "token-a")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, store.Revoke(ctx, "token-a", 10*time.Minute))
	require.NoError(t, store.Revoke(ctx, "token-a", 10*time.Minute), "revoke is an idempotent upsert")

	revoked, err = store.IsRevoked(ctx, "token-a")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = store.IsRevoked(ctx, "token-b")
	require.NoError(t, err)
	assert.False(t, revoked)

	key := store.key("token-a")
	assert.NotContains(t, key, "token-a")
	assert.Equal(t, 10*time.Minute, mr.TTL(key))
}

func TestRevocationRepository_EntriesExpire(t *testing.T) {
	store, mr := newRevocationTest(t)
	ctx := context.Background()

	require.NoError(t, store.Revoke(ctx, "short-lived", 30*time.Second))
	mr.FastForward(31 * time.Second)

	revoked, err := store.IsRevoked(ctx, "short-lived")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestRevocationRepository_NonPositiveTTLIsNoop(t *testing.T) {
	store, mr := newRevocationTest(t)
	ctx := context.Background()

	require.NoError(t, store.Revoke(ctx, "already-expired", 0))
	require.NoError(t, store.Revoke(ctx, "already-expired", -time.Second))
	assert.Empty(t, mr.Keys())
}

func TestRevocationRepository_BackendFailure(t *testing.T) {
	store, mr := newRevocationTest(t)
	ctx := context.Background()

	mr.SetError("LOADING dataset in memory")
	revoked, err := store.IsRevoked(ctx, "token")
	assert.False(t, revoked)
	assert.ErrorIs(t, err, auth.ErrRevocationStoreUnavailable)

	err = store.Revoke(ctx, "token", time.Minute)
	assert.ErrorIs(t, err, auth.ErrRevocationStoreUnavailable)
}

func TestRevocationRepository_StoreDown(t *testing.T) {
	store, mr := newRevocationTest(t)
	mr.Close()

	revoked, err := store.IsRevoked(context.Background(), "token")
	assert.False(t, revoked)
	assert.ErrorIs(t, err, auth.ErrRevocationStoreUnavailable)
}
