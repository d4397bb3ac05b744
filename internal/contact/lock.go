package contact

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

const defaultLockPoll = 100 * time.Millisecond

// ErrLockTimeout is returned when a topic assignment lock cannot be acquired
// before the context ends.
var ErrLockTimeout = errors.New("topic assignment is locked")

// Locker serializes first-contact topic creation for one user.
type Locker interface {
	// Lock blocks until key is held or ctx ends, and returns its release func.
	Lock(ctx context.Context, key string) (release func(), err error)
}

// LockBackend is the subset of pkg/redis client methods RedisLocker needs.
type LockBackend interface {
	SetNX(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error)
	CompareAndDelete(ctx context.Context, key, value string) (bool, error)
}

// RedisLocker implements Locker with SET NX keys that expire after ttl. Each
// acquisition stores its own token, and release only deletes a key still
// holding that token.
type RedisLocker struct {
	client LockBackend
	prefix string
	ttl    time.Duration
	poll   time.Duration
	log    *slog.Logger
}

// NewRedisLocker builds a RedisLocker whose keys start with prefix.
func NewRedisLocker(client LockBackend, prefix string, ttl, poll time.Duration, log *slog.Logger) *RedisLocker {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}
	if poll <= 0 {
		poll = defaultLockPoll
	}
	if log == nil {
		log = slog.Default()
	}

	return &RedisLocker{client: client, prefix: prefix, ttl: ttl, poll: poll, log: log}
}

// Lock polls until the key is acquired. The wait is bounded by ttl so a
// crashed holder cannot block forever.
func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	lockKey := l.prefix + ":lock:" + key

	ctx, cancel := context.WithTimeout(ctx, l.ttl+l.poll)
	defer cancel()

	token := uuid.NewString()
	for {
		acquired, err := l.client.SetNX(ctx, lockKey, token, l.ttl)
		if err != nil {
			l.log.Error("failed to acquire topic lock", slog.String("key", lockKey), slog.Any("error", err))
			return nil, err
		}
		if acquired {
			return func() { l.unlock(lockKey, token) }, nil
		}

		select {
		case <-ctx.Done():
			l.log.Warn("topic lock still held", slog.String("key", lockKey))
			return nil, ErrLockTimeout
		case <-time.After(l.poll):
		}
	}
}

func (l *RedisLocker) unlock(lockKey, token string) {
	// The request context may already be cancelled; release regardless.
	released, err := l.client.CompareAndDelete(context.Background(), lockKey, token)
	if err != nil {
		l.log.Error("failed to release topic lock", slog.String("key", lockKey), slog.Any("error", err))
		return
	}
	if !released {
		l.log.Warn("topic lock expired before release", slog.String("key", lockKey))
	}
}
