package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeRevocations struct {
	mu      sync.Mutex
	revoked map[string]time.Duration
	err     error
	panics  bool
}

func newFakeRevocations() *fakeRevocations {
	return &fakeRevocations{revoked: map[string]time.Duration{}}
}

func (f *fakeRevocations) Revoke(_ context.Context, token string, remaining time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.revoked[token] = remaining
	return nil
}

func (f *fakeRevocations) IsRevoked(_ context.Context, token string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.panics {
		panic("backend exploded")
	}
	if f.err != nil {
		return false, f.err
	}
	_, ok := f.revoked[token]
	return ok, nil
}

type fakeRoles map[int64][]Role

func (f fakeRoles) ResolveRoles(_ context.Context, subjectID int64) ([]Role, error) {
	roles, ok := f[subjectID]
	if !ok {
		return nil, errors.New("subject not found")
	}
	return roles, nil
}

// identityProbe reports the identity the authenticator attached, if any.
func identityProbe(c *fiber.Ctx) error {
	identity, ok := IdentityFromCtx(c)
	if !ok {
		return c.JSON(fiber.Map{"anonymous": true})
	}
	fromCtx, _ := IdentityFromContext(c.UserContext())
	return c.JSON(fiber.Map{
		"anonymous":  false,
		"subject_id": identity.SubjectID,
		"roles":      identity.Roles,
		"same":       fromCtx == identity,
	})
}

type probeResult struct {
	Anonymous bool   `json:"anonymous"`
	SubjectID int64  `json:"subject_id"`
	Roles     []Role `json:"roles"`
	Same      bool   `json:"same"`
}

func runProbe(t *testing.T, m *Authenticator, header string) probeResult {
	t.Helper()
	app := fiber.New()
	app.Use(m.Handle)
	app.Get("/probe", identityProbe)

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out probeResult
	require.NoError(t, decodeJSON(resp, &out))
	return out
}

func TestAuthenticator_NoCredentialIsAnonymous(t *testing.T) {
	m := NewAuthenticator(AuthenticatorDependencies{
		Tokens:      newTestAuthority(t, time.Hour, 2*time.Hour),
		Revocations: newFakeRevocations(),
	})

	assert.True(t, runProbe(t, m, "").Anonymous)
	assert.True(t, runProbe(t, m, "Basic dXNlcjpwYXNz").Anonymous)
	assert.True(t, runProbe(t, m, "Bearer ").Anonymous)
}

func TestAuthenticator_ValidTokenEstablishesIdentity(t *testing.T) {
	authority := newTestAuthority(t, time.Hour, 2*time.Hour)
	m := NewAuthenticator(AuthenticatorDependencies{Tokens: authority, Revocations: newFakeRevocations()})

	token, _, err := authority.IssueAccessToken(21, "lee", "lee@example.com")
	require.NoError(t, err)

	got := runProbe(t, m, "Bearer "+token)
	assert.False(t, got.Anonymous)
	assert.Equal(t, int64(21), got.SubjectID)
	assert.Equal(t, []Role{RoleUser}, got.Roles)
	assert.True(t, got.Same)
}

func TestAuthenticator_GuestGetsOnlyGuestLabel(t *testing.T) {
	authority := newTestAuthority(t, time.Hour, 2*time.Hour)
	m := NewAuthenticator(AuthenticatorDependencies{
		Tokens:      authority,
		Revocations: newFakeRevocations(),
		Roles:       fakeRoles{GuestSubjectID: {RoleAdmin}},
	})

	token, _, err := authority.IssueGuestToken()
	require.NoError(t, err)

	got := runProbe(t, m, "Bearer "+token)
	assert.Equal(t, GuestSubjectID, got.SubjectID)
	assert.Equal(t, []Role{RoleGuest}, got.Roles)
}

func TestAuthenticator_RolesFromResolver(t *testing.T) {
	authority := newTestAuthority(t, time.Hour, 2*time.Hour)
	m := NewAuthenticator(AuthenticatorDependencies{
		Tokens:      authority,
		Revocations: newFakeRevocations(),
		Roles:       fakeRoles{1: {RoleUser, RoleAdmin, RoleGuest}},
	})

	admin, _, err := authority.IssueAccessToken(1, "root", "root@example.com")
	require.NoError(t, err)
	unknown, _, err := authority.IssueAccessToken(2, "anon", "anon@example.com")
	require.NoError(t, err)

	assert.Equal(t, []Role{RoleUser, RoleAdmin}, runProbe(t, m, "Bearer "+admin).Roles)
	assert.Equal(t, []Role{RoleUser}, runProbe(t, m, "Bearer "+unknown).Roles, "resolver failure keeps the default label")
}

func TestAuthenticator_RevokedTokenIsAnonymous(t *testing.T) {
	authority := newTestAuthority(t, time.Hour, 2*time.Hour)
	store := newFakeRevocations()
	m := NewAuthenticator(AuthenticatorDependencies{Tokens: authority, Revocations: store})

	token, _, err := authority.IssueAccessToken(4, "rev", "rev@example.com")
	require.NoError(t, err)
	require.True(t, authority.Validate(token, KindAccess))
	require.NoError(t, store.Revoke(context.Background(), token, time.Hour))

	assert.True(t, runProbe(t, m, "Bearer "+token).Anonymous)
}

func TestAuthenticator_StoreFailureFailsOpen(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	authority := newTestAuthority(t, time.Hour, 2*time.Hour)
	store := newFakeRevocations()
	store.err = context.DeadlineExceeded
	m := NewAuthenticator(AuthenticatorDependencies{Tokens: authority, Revocations: store, Logger: zap.New(core)})

	token, _, err := authority.IssueAccessToken(8, "open", "open@example.com")
	require.NoError(t, err)

	got := runProbe(t, m, "Bearer "+token)
	assert.False(t, got.Anonymous)
	assert.Equal(t, int64(8), got.SubjectID)
	assert.Equal(t, 1, logs.FilterMessageSnippet("revocation check failed").Len())
}

func TestAuthenticator_PanicIsAnonymous(t *testing.T) {
	authority := newTestAuthority(t, time.Hour, 2*time.Hour)
	store := newFakeRevocations()
	store.panics = true
	m := NewAuthenticator(AuthenticatorDependencies{Tokens: authority, Revocations: store})

	token, _, err := authority.IssueAccessToken(8, "p", "p@example.com")
	require.NoError(t, err)

	assert.True(t, runProbe(t, m, "Bearer "+token).Anonymous)
}

func TestAuthenticator_InvalidTokensAreAnonymous(t *testing.T) {
	authority := newTestAuthority(t, time.Hour, 2*time.Hour)
	m := NewAuthenticator(AuthenticatorDependencies{Tokens: authority, Revocations: newFakeRevocations()})

	refresh, _, err := authority.IssueRefreshToken(3)
	require.NoError(t, err)
	expired, _, err := newTestAuthority(t, -time.Minute, time.Hour).IssueAccessToken(3, "e", "e@example.com")
	require.NoError(t, err)

	for name, token := range map[string]string{"refresh": refresh, "expired": expired, "garbage": "abc.def.ghi"} {
		t.Run(name, func(t *testing.T) {
			assert.True(t, runProbe(t, m, "Bearer "+token).Anonymous)
		})
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		token  string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"bearer abc", "abc", true},
		{"  Bearer   abc  ", "abc", true},
		{"Bearer", "", false},
		{"Token abc", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		token, ok := BearerToken(tt.header)
		assert.Equal(t, tt.ok, ok, tt.header)
		assert.Equal(t, tt.token, token, tt.header)
	}
}
