package auth

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrTokenRevoked marks a token found in the revocation store.
	ErrTokenRevoked = errors.New("token revoked")
	// ErrRevocationStoreUnavailable wraps backend failures of a RevocationStore.
	ErrRevocationStoreUnavailable = errors.New("revocation store unavailable")
)

// RevocationStore records tokens that must be rejected before they expire.
//
// IsRevoked distinguishes a backend failure (non-nil error) from a negative
// answer. Callers in this package treat failures as "not revoked".
type RevocationStore interface {
	Revoke(ctx context.Context, token string, remaining time.Duration) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// RoleResolver looks up the capability labels of a real subject.
type RoleResolver interface {
	ResolveRoles(ctx context.Context, subjectID int64) ([]Role, error)
}
