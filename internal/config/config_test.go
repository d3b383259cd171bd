package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "")
	t.Setenv("AUTH_ACCESS_TOKEN_TTL_MINUTES", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 30*time.Minute, cfg.Auth.AccessTokenTTL())
	assert.Equal(t, "access_token", cfg.Auth.CookieName)
	assert.Equal(t, 25, cfg.Ticket.DescriptionMinLen)
	assert.Equal(t, 250, cfg.Ticket.DescriptionMaxLen)
	assert.Equal(t, "0.0.0.0:8000", cfg.App.Addr())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("AUTH_ACCESS_TOKEN_TTL_MINUTES", "5")
	t.Setenv("REDIS_ACCOUNT_CACHE_TTL_SECONDS", "10")
	t.Setenv("HTTP_REQUEST_TIMEOUT_SECONDS", "0")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5*time.Minute, cfg.Auth.AccessTokenTTL())
	assert.Equal(t, 10*time.Second, cfg.Redis.CacheTTL())
	assert.Zero(t, cfg.App.RequestTimeout())
}

func TestLoadRejectsBadRedisDB(t *testing.T) {
	t.Setenv("REDIS_DB", "abc")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Auth:   AuthConfig{JWTSecret: "s", AccessTokenTTLMinutes: 30},
			Ticket: TicketConfig{DescriptionMinLen: 25, DescriptionMaxLen: 250},
		}
	}

	assert.NoError(t, base().Validate())

	noSecret := base()
	noSecret.Auth.JWTSecret = ""
	assert.Error(t, noSecret.Validate())

	badTTL := base()
	badTTL.Auth.AccessTokenTTLMinutes = 0
	assert.Error(t, badTTL.Validate())

	inverted := base()
	inverted.Ticket.DescriptionMinLen = 300
	assert.Error(t, inverted.Validate())
}
