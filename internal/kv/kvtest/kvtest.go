// Package kvtest provides miniredis-backed stores for tests.
package kvtest

import (
	"context"
	"io"
	"log/slog"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"github.com/Proton-105/relay-bot/internal/kv"
	pkgredis "github.com/Proton-105/relay-bot/pkg/redis"
)

// Root is the key root used by stores built here.
const Root = "test"

// Logger discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// NewRedisStore starts a miniredis server and returns a store on top of it.
func NewRedisStore(t *testing.T) (*kv.RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client, err := pkgredis.New(context.Background(), pkgredis.Config{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	store, err := kv.NewRedisStore(client, Root, Logger())
	require.NoError(t, err)

	return store, mr
}

// NewStore returns a cached store over miniredis, as wired in production.
func NewStore(t *testing.T) (kv.Store, *miniredis.Miniredis) {
	t.Helper()

	store, mr := NewRedisStore(t)
	return kv.NewCachedStore(store), mr
}
