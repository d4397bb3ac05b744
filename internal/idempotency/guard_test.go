package idempotency

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgredis "github.com/Proton-105/relay-bot/pkg/redis"
)

func newGuard(t *testing.T) (*RedisGuard, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client, err := pkgredis.New(context.Background(), pkgredis.Config{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisGuard(client, "test", time.Hour, slog.New(slog.NewTextHandler(io.Discard, nil))), mr
}

func TestRedisGuard_ClaimsOnce(t *testing.T) {
	ctx := context.Background()
	guard, mr := newGuard(t)
	key := UpdateKey(1, 100)

	claimed, err := guard.Claim(ctx, key)
	require.NoError(t, err)
	assert.True(t, claimed)

	claimed, err = guard.Claim(ctx, key)
	require.NoError(t, err)
	assert.False(t, claimed)

	assert.True(t, mr.Exists("test:idempotency:update:1:100"))
	assert.Equal(t, time.Hour, mr.TTL("test:idempotency:update:1:100"))
}

func TestRedisGuard_ClaimExpires(t *testing.T) {
	ctx := context.Background()
	guard, mr := newGuard(t)
	key := UpdateKey(1, 100)

	_, err := guard.Claim(ctx, key)
	require.NoError(t, err)

	mr.FastForward(2 * time.Hour)

	claimed, err := guard.Claim(ctx, key)
	require.NoError(t, err)
	assert.True(t, claimed)
}

func TestRedisGuard_ScopesByBot(t *testing.T) {
	ctx := context.Background()
	guard, _ := newGuard(t)

	claimed, err := guard.Claim(ctx, UpdateKey(1, 100))
	require.NoError(t, err)
	assert.True(t, claimed)

	claimed, err = guard.Claim(ctx, UpdateKey(2, 100))
	require.NoError(t, err)
	assert.True(t, claimed)
}
