package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("AUTH_JWT_SECRET", "test-secret")
	t.Setenv("AUTH_ACCESS_TOKEN_TTL_MINUTES", "15")
	t.Setenv("AUTH_REFRESH_TOKEN_TTL_MINUTES", "10080")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "strategy-hub", cfg.App.Name)
	assert.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
	assert.Equal(t, 15*time.Minute, cfg.Auth.AccessTTL())
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.RefreshTTL())
	assert.Equal(t, 250*time.Millisecond, cfg.Redis.OperationTimeout())
	assert.Equal(t, "auth:revoked:", cfg.Redis.RevokedKeyPrefix)
	assert.True(t, cfg.Auth.GuestAccessEnabled)
}

func TestLoad_MissingRequired(t *testing.T) {
	for _, key := range []string{"AUTH_JWT_SECRET", "AUTH_ACCESS_TOKEN_TTL_MINUTES", "AUTH_REFRESH_TOKEN_TTL_MINUTES"} {
		t.Run(key, func(t *testing.T) {
			setRequired(t)
			t.Setenv(key, "")

			_, err := Load()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMissingRequired)
			assert.Contains(t, err.Error(), key)
		})
	}
}

func TestLoad_InvalidTTL(t *testing.T) {
	setRequired(t)
	t.Setenv("AUTH_ACCESS_TOKEN_TTL_MINUTES", "abc")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AUTH_ACCESS_TOKEN_TTL_MINUTES")
}

func TestAuthConfig_Validate(t *testing.T) {
	cfg := AuthConfig{JWTSecret: "s", AccessTokenTTLMinutes: 60, RefreshTokenTTLMinutes: 30}
	assert.Error(t, cfg.Validate(), "refresh must outlive access")

	cfg.RefreshTokenTTLMinutes = 120
	assert.NoError(t, cfg.Validate())

	cfg.AccessTokenTTLMinutes = 0
	assert.Error(t, cfg.Validate())
}
