package contact

import (
	"context"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/relay-bot/internal/kv"
	"github.com/Proton-105/relay-bot/internal/kv/kvtest"
	"github.com/Proton-105/relay-bot/internal/platform/platformtest"
	pkgredis "github.com/Proton-105/relay-bot/pkg/redis"
)

func newLocker(t *testing.T, mr *miniredis.Miniredis, ttl time.Duration) *RedisLocker {
	t.Helper()

	client, err := pkgredis.New(context.Background(), pkgredis.Config{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisLocker(client, kvtest.Root, ttl, 5*time.Millisecond, kvtest.Logger())
}

func TestRedisLocker_LockAndRelease(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	locker := newLocker(t, mr, time.Second)

	release, err := locker.Lock(ctx, "k")
	require.NoError(t, err)
	assert.True(t, mr.Exists("test:lock:k"))

	release()
	assert.False(t, mr.Exists("test:lock:k"))
}

func TestRedisLocker_ExpiredReleaseKeepsNextHolder(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	locker := newLocker(t, mr, time.Second)

	releaseFirst, err := locker.Lock(ctx, "k")
	require.NoError(t, err)
	firstToken, err := mr.Get("test:lock:k")
	require.NoError(t, err)

	mr.FastForward(2 * time.Second)
	require.False(t, mr.Exists("test:lock:k"))

	releaseSecond, err := locker.Lock(ctx, "k")
	require.NoError(t, err)
	secondToken, err := mr.Get("test:lock:k")
	require.NoError(t, err)
	assert.NotEqual(t, firstToken, secondToken)

	releaseFirst()
	assert.True(t, mr.Exists("test:lock:k"), "stale release must not drop the current holder")

	_, err = locker.Lock(ctx, "k")
	assert.ErrorIs(t, err, ErrLockTimeout)

	releaseSecond()
	assert.False(t, mr.Exists("test:lock:k"))
}

func TestRedisLocker_TimesOutWhileHeld(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	locker := newLocker(t, mr, 50*time.Millisecond)

	release, err := locker.Lock(ctx, "k")
	require.NoError(t, err)
	defer release()

	_, err = locker.Lock(ctx, "k")
	assert.ErrorIs(t, err, ErrLockTimeout)
}

func TestRouter_SerializedFirstContact(t *testing.T) {
	ctx := context.Background()
	backing, mr := kvtest.NewRedisStore(t)
	store := kv.NewCachedStore(backing)
	client := &platformtest.Client{}
	r := New(store, client, newLocker(t, mr, time.Second), kvtest.Logger())

	client.On("CreateTopic", mock.Anything, contactChatID, mock.Anything).
		After(20*time.Millisecond).
		Return(7, nil).
		Once()

	user := &telebot.Chat{ID: userChatID, Type: telebot.ChatPrivate, FirstName: "Ann"}

	const workers = 4
	results := make([]int, workers)
	errs := make([]error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = r.ResolveTopicForUser(ctx, botID, contactChatID, user)
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, 7, results[i])
	}
	client.AssertNumberOfCalls(t, "CreateTopic", 1)
}
