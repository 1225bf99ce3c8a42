package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuthority(t *testing.T, accessTTL, refreshTTL time.Duration) *Authority {
	t.Helper()
	return NewAuthority(newTestCodec(t, "authority-secret", WithClock(fixedClock)), accessTTL, refreshTTL, nil)
}

func TestAuthority_IssueAccessToken(t *testing.T) {
	a := newTestAuthority(t, 15*time.Minute, 24*time.Hour)

	token, exp, err := a.IssueAccessToken(9, "mira", "mira@example.com")
	require.NoError(t, err)
	assert.Equal(t, fixedNow.Add(15*time.Minute), exp)

	claims, err := a.Decode(token, KindAccess)
	require.NoError(t, err)
	assert.Equal(t, int64(9), claims.SubjectID)
	assert.Equal(t, "mira", claims.Name)
	assert.Equal(t, "mira@example.com", claims.Contact)
	assert.Equal(t, KindAccess, claims.Kind)
	assert.NotEmpty(t, claims.ID)
}

func TestAuthority_KindsAreNotInterchangeable(t *testing.T) {
	a := newTestAuthority(t, time.Minute, time.Hour)

	access, _, err := a.IssueAccessToken(1, "a", "a@example.com")
	require.NoError(t, err)
	refresh, _, err := a.IssueRefreshToken(1)
	require.NoError(t, err)

	assert.True(t, a.Validate(access, KindAccess))
	assert.False(t, a.Validate(access, KindRefresh))
	assert.True(t, a.Validate(refresh, KindRefresh))
	assert.False(t, a.Validate(refresh, KindAccess))

	_, err = a.Decode(refresh, KindAccess)
	assert.ErrorIs(t, err, ErrTokenKindMismatch)
}

func TestAuthority_ValidateRejectsExpired(t *testing.T) {
	for _, ttl := range []time.Duration{0, -time.Second, -time.Hour} {
		a := newTestAuthority(t, ttl, time.Hour)
		token, _, err := a.IssueAccessToken(3, "x", "x@example.com")
		require.NoError(t, err)
		assert.False(t, a.Validate(token, KindAccess), "ttl %s", ttl)
	}
}

func TestAuthority_ValidateRejectsForeignSecret(t *testing.T) {
	a := newTestAuthority(t, time.Hour, 2*time.Hour)
	foreign := NewAuthority(newTestCodec(t, "another-secret", WithClock(fixedClock)), time.Hour, 2*time.Hour, nil)

	token, _, err := foreign.IssueAccessToken(5, "same", "same@example.com")
	require.NoError(t, err)

	assert.False(t, a.Validate(token, KindAccess))
	_, err = a.Decode(token, KindAccess)
	assert.ErrorIs(t, err, ErrTokenSignatureInvalid)
}

func TestAuthority_Extractors(t *testing.T) {
	a := newTestAuthority(t, time.Hour, 2*time.Hour)
	token, _, err := a.IssueAccessToken(11, "kai", "kai@example.com")
	require.NoError(t, err)

	id, ok := a.ExtractSubjectID(token)
	assert.True(t, ok)
	assert.Equal(t, int64(11), id)

	name, ok := a.ExtractName(token)
	assert.True(t, ok)
	assert.Equal(t, "kai", name)

	contact, ok := a.ExtractContact(token)
	assert.True(t, ok)
	assert.Equal(t, "kai@example.com", contact)

	_, ok = a.ExtractSubjectID("broken")
	assert.False(t, ok)
	_, ok = a.ExtractName("")
	assert.False(t, ok)
	_, ok = a.ExtractContact("a.b.c")
	assert.False(t, ok)
}

func TestAuthority_GuestToken(t *testing.T) {
	a := newTestAuthority(t, time.Hour, 2*time.Hour)
	token, _, err := a.IssueGuestToken()
	require.NoError(t, err)

	claims, err := a.Decode(token, KindAccess)
	require.NoError(t, err)
	assert.True(t, claims.IsGuest())
}

func TestAuthority_RemainingTTL(t *testing.T) {
	a := newTestAuthority(t, 30*time.Minute, time.Hour)
	token, _, err := a.IssueAccessToken(1, "n", "n@example.com")
	require.NoError(t, err)

	remaining, ok := a.RemainingTTL(token)
	assert.True(t, ok)
	assert.Equal(t, 30*time.Minute, remaining)

	expired := newTestAuthority(t, -time.Minute, time.Hour)
	stale, _, err := expired.IssueAccessToken(1, "n", "n@example.com")
	require.NoError(t, err)
	_, ok = expired.RemainingTTL(stale)
	assert.False(t, ok)
}

func TestAuthority_KindOf(t *testing.T) {
	a := newTestAuthority(t, time.Hour, 2*time.Hour)
	access, _, err := a.IssueAccessToken(1, "n", "n@example.com")
	require.NoError(t, err)
	refresh, _, err := a.IssueRefreshToken(1)
	require.NoError(t, err)

	kind, ok := a.KindOf(access)
	assert.True(t, ok)
	assert.Equal(t, KindAccess, kind)

	kind, ok = a.KindOf(refresh)
	assert.True(t, ok)
	assert.Equal(t, KindRefresh, kind)

	_, ok = a.KindOf("garbage")
	assert.False(t, ok)
}
