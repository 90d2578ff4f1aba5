package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const goodSecret = "0123456789abcdef0123456789abcdef"

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", goodSecret)
	t.Setenv("DATABASE_URL", "postgres://localhost/rolegate")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, 24*time.Hour, cfg.AccessTokenTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.RefreshTokenTTL)
	assert.False(t, cfg.RequireVerifiedEmail)
}

func TestLoad_ShortSecretRejected(t *testing.T) {
	t.Setenv("JWT_SECRET", "too-short")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", goodSecret)
	t.Setenv("JWT_ACCESS_TTL_HOURS", "2")
	t.Setenv("JWT_REFRESH_TTL_DAYS", "30")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("REQUIRE_VERIFIED_EMAIL", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 2*time.Hour, cfg.AccessTokenTTL)
	assert.Equal(t, 30*24*time.Hour, cfg.RefreshTokenTTL)
	assert.Equal(t, "9090", cfg.HTTPPort)
	assert.True(t, cfg.RequireVerifiedEmail)
}

func TestLoad_BadBcryptCost(t *testing.T) {
	t.Setenv("JWT_SECRET", goodSecret)
	t.Setenv("BCRYPT_COST", "99")

	_, err := Load()
	assert.Error(t, err)
}
