// Package idempotency makes sure an update is handled at most once when the
// platform redelivers it.
package idempotency

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Guard claims update keys.
type Guard interface {
	// Claim reports whether key was claimed by this call. A false result
	// means the key was already handled or is being handled.
	Claim(ctx context.Context, key string) (bool, error)
}

// Backend is the subset of pkg/redis client methods RedisGuard needs.
type Backend interface {
	SetNX(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error)
}

// RedisGuard implements Guard on top of SET NX with a TTL.
type RedisGuard struct {
	client Backend
	prefix string
	ttl    time.Duration
	log    *slog.Logger
}

// NewRedisGuard builds a guard whose keys start with prefix.
func NewRedisGuard(client Backend, prefix string, ttl time.Duration, log *slog.Logger) *RedisGuard {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if log == nil {
		log = slog.Default()
	}

	return &RedisGuard{client: client, prefix: prefix, ttl: ttl, log: log}
}

// Claim marks key as handled.
func (g *RedisGuard) Claim(ctx context.Context, key string) (bool, error) {
	claimed, err := g.client.SetNX(ctx, g.recordKey(key), 1, g.ttl)
	if err != nil {
		g.log.Error("failed to claim idempotency key", slog.String("key", key), slog.Any("error", err))
		return false, err
	}

	return claimed, nil
}

func (g *RedisGuard) recordKey(key string) string {
	return fmt.Sprintf("%s:idempotency:%s", g.prefix, key)
}

// UpdateKey identifies one platform update of one bot.
func UpdateKey(botID int64, updateID int) string {
	return fmt.Sprintf("update:%d:%d", botID, updateID)
}
