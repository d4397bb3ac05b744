package kv_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Proton-105/relay-bot/internal/kv"
	"github.com/Proton-105/relay-bot/internal/kv/kvtest"
)

func TestCachedStore_ColdThenWarmRead(t *testing.T) {
	backend, mr := kvtest.NewRedisStore(t)
	ctx := context.Background()
	key := kv.K("settings", int64(1), "chat_id")
	require.NoError(t, mr.Set("test:settings:1:chat_id", "-100"))

	cache := kv.NewCachedStore(backend)
	assert.Zero(t, cache.Len())

	var cold int64
	found, err := cache.Get(ctx, key, &cold)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, int64(-100), cold)
	assert.Equal(t, 1, cache.Len())

	// Changed behind the cache's back: the warm read keeps the cached value.
	require.NoError(t, mr.Set("test:settings:1:chat_id", "-200"))

	var warm int64
	found, err = cache.Get(ctx, key, &warm)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, int64(-100), warm)

	// A fresh cache reads the new value from the store.
	var fresh int64
	found, err = kv.NewCachedStore(backend).Get(ctx, key, &fresh)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, int64(-200), fresh)
}

func TestCachedStore_AbsentIsNotCached(t *testing.T) {
	backend, mr := kvtest.NewRedisStore(t)
	ctx := context.Background()
	key := kv.K("settings", int64(1), "chat_id")
	cache := kv.NewCachedStore(backend)

	var chatID int64
	found, err := cache.Get(ctx, key, &chatID)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Zero(t, cache.Len())

	require.NoError(t, mr.Set("test:settings:1:chat_id", "-100"))

	found, err = cache.Get(ctx, key, &chatID)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, int64(-100), chatID)
}

func TestCachedStore_WriteThrough(t *testing.T) {
	backend, mr := kvtest.NewRedisStore(t)
	ctx := context.Background()
	key := kv.K("settings", int64(1), "users")
	cache := kv.NewCachedStore(backend)

	require.NoError(t, cache.Set(ctx, key, []int64{1, 2}))

	raw, err := mr.Get("test:settings:1:users")
	require.NoError(t, err)
	assert.JSONEq(t, `[1,2]`, raw)

	mr.FlushAll()

	var users []int64
	found, err := cache.Get(ctx, key, &users)
	require.NoError(t, err)
	assert.True(t, found, "written value is served from cache")
	assert.Equal(t, []int64{1, 2}, users)
}

func TestCachedStore_DeleteInvalidates(t *testing.T) {
	backend, mr := kvtest.NewRedisStore(t)
	ctx := context.Background()
	key := kv.K("contact", int64(1), "banned", int64(42))
	cache := kv.NewCachedStore(backend)

	require.NoError(t, cache.Set(ctx, key, true))
	require.NoError(t, cache.Delete(ctx, key))

	assert.Zero(t, cache.Len())
	assert.False(t, mr.Exists("test:contact:1:banned:42"))

	var banned bool
	found, err := cache.Get(ctx, key, &banned)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCachedStore_DecodedValuesAreIndependent(t *testing.T) {
	backend, _ := kvtest.NewRedisStore(t)
	ctx := context.Background()
	key := kv.K("settings", int64(1), "users")
	cache := kv.NewCachedStore(backend)
	require.NoError(t, cache.Set(ctx, key, []int64{1}))

	var first []int64
	_, err := cache.Get(ctx, key, &first)
	require.NoError(t, err)
	first[0] = 99

	var second []int64
	_, err = cache.Get(ctx, key, &second)
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, second)
}

func TestCachedStore_ScanBypassesCache(t *testing.T) {
	backend, mr := kvtest.NewRedisStore(t)
	ctx := context.Background()
	cache := kv.NewCachedStore(backend)
	require.NoError(t, mr.Set("test:contact:1:banned:5", "true"))

	it := cache.Scan(ctx, kv.K("contact", int64(1), "banned"))
	require.True(t, it.Next())
	assert.Equal(t, "test:contact:1:banned:5", it.Key())
	assert.False(t, it.Next())
	assert.NoError(t, it.Err())
	assert.Zero(t, cache.Len())
}
