package repository

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/strategy-hub/internal/auth"
)

// RevocationRepository is a Redis-backed auth.RevocationStore. Entries are
// keyed by the SHA-256 of the token and expire with it.
type RevocationRepository struct {
	client  redis.UniversalClient
	prefix  string
	timeout time.Duration
}

var _ auth.RevocationStore = (*RevocationRepository)(nil)

// NewRevocationRepository builds the store. Every call is bounded by timeout.
func NewRevocationRepository(client redis.UniversalClient, prefix string, timeout time.Duration) *RevocationRepository {
	return &RevocationRepository{client: client, prefix: prefix, timeout: timeout}
}

// Revoke records token for the remaining part of its lifetime. Repeated
// calls overwrite the entry; a non-positive remaining lifetime is a no-op.
func (r *RevocationRepository) Revoke(ctx context.Context, token string, remaining time.Duration) error {
	if remaining <= 0 {
		return nil
	}
	ctx, cancel := r.bound(ctx)
	defer cancel()

	if err := r.client.Set(ctx, r.key(token), "1", remaining).Err(); err != nil {
		return fmt.Errorf("%w: revoke: %v", auth.ErrRevocationStoreUnavailable, err)
	}
	return nil
}

// IsRevoked reports whether token has an active revocation entry.
func (r *RevocationRepository) IsRevoked(ctx context.Context, token string) (bool, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	n, err := r.client.Exists(ctx, r.key(token)).Result()
	if err != nil {
		return false, fmt.Errorf("%w: lookup: %v", auth.ErrRevocationStoreUnavailable, err)
	}
	return n > 0, nil
}

func (r *RevocationRepository) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.timeout)
}

func (r *RevocationRepository) key(token string) string {
	sum := sha256.Sum256([]byte(token))
	return r.prefix + hex.EncodeToString(sum[:])
}
