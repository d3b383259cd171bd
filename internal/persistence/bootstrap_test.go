package persistence

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/support-portal/internal/config"
)

func TestNewPostgresWithoutDSNIsDisabled(t *testing.T) {
	pg, err := NewPostgres(context.Background(), config.PostgresConfig{}, zap.NewNop())
	require.NoError(t, err)

	assert.False(t, pg.Enabled())
	assert.Nil(t, pg.PoolHandle())
	assert.Error(t, pg.Ping(context.Background()))
	pg.Close()
}

func TestNewPostgresRejectsMalformedDSN(t *testing.T) {
	_, err := NewPostgres(context.Background(), config.PostgresConfig{DSN: "postgres://localhost:notaport/portal"}, zap.NewNop())
	assert.Error(t, err)
}

func TestNewRedis(t *testing.T) {
	ctx := context.Background()

	disabled := NewRedis(ctx, config.RedisConfig{}, zap.NewNop())
	assert.False(t, disabled.Enabled())
	assert.Error(t, disabled.Ping(ctx))
	disabled.Close()

	mr := miniredis.RunT(t)
	enabled := NewRedis(ctx, config.RedisConfig{Enabled: true, Addr: mr.Addr()}, zap.NewNop())
	t.Cleanup(enabled.Close)
	assert.True(t, enabled.Enabled())
	assert.NoError(t, enabled.Ping(ctx))
}
