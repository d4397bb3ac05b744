package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const scanBatch = 100

// Backend is the subset of pkg/redis client methods RedisStore relies on.
type Backend interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	ScanIter(ctx context.Context, pattern string, count int64) *redis.ScanIterator
}

// RedisStore persists JSON values in Redis under <root>:<key> without expiry.
type RedisStore struct {
	client Backend
	root   string
	log    *slog.Logger
}

// NewRedisStore initializes a Redis-backed Store rooted at root.
func NewRedisStore(client Backend, root string, log *slog.Logger) (*RedisStore, error) {
	if err := validSegment(root); err != nil {
		return nil, fmt.Errorf("store root: %w", err)
	}
	if log == nil {
		log = slog.Default()
	}

	return &RedisStore{
		client: client,
		root:   root,
		log:    log,
	}, nil
}

func (s *RedisStore) redisKey(key Key) (string, error) {
	encoded, err := key.encode()
	if err != nil {
		return "", err
	}
	return s.root + separator + encoded, nil
}

// Get returns found == false when the key is absent.
func (s *RedisStore) Get(ctx context.Context, key Key, dst any) (bool, error) {
	rk, err := s.redisKey(key)
	if err != nil {
		return false, err
	}

	data, err := s.client.Get(ctx, rk)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}

		s.log.Error("failed to get value from redis", slog.String("key", rk), slog.Any("error", err))
		return false, err
	}

	if err := json.Unmarshal([]byte(data), dst); err != nil {
		s.log.Error("failed to decode value", slog.String("key", rk), slog.Any("error", err))
		return false, fmt.Errorf("decode %s: %w", rk, err)
	}

	return true, nil
}

// Set encodes value as JSON and stores it.
func (s *RedisStore) Set(ctx context.Context, key Key, value any) error {
	rk, err := s.redisKey(key)
	if err != nil {
		return err
	}

	data, err := json.Marshal(value)
	if err != nil {
		s.log.Error("failed to encode value", slog.String("key", rk), slog.Any("error", err))
		return fmt.Errorf("encode %s: %w", rk, err)
	}

	if err := s.client.Set(ctx, rk, data, 0); err != nil {
		s.log.Error("failed to save value in redis", slog.String("key", rk), slog.Any("error", err))
		return err
	}

	return nil
}

// Delete removes the key.
func (s *RedisStore) Delete(ctx context.Context, key Key) error {
	rk, err := s.redisKey(key)
	if err != nil {
		return err
	}

	if err := s.client.Delete(ctx, rk); err != nil {
		s.log.Error("failed to delete value", slog.String("key", rk), slog.Any("error", err))
		return err
	}

	return nil
}

// Scan walks keys below prefix with SCAN; keys deleted mid-scan are skipped.
func (s *RedisStore) Scan(ctx context.Context, prefix Key) *Iterator {
	rk, err := s.redisKey(prefix)
	if err != nil {
		return failedIterator(err)
	}

	keys := s.client.ScanIter(ctx, rk+separator+"*", scanBatch)

	return newIterator(func() (string, []byte, bool, error) {
		for keys.Next(ctx) {
			key := keys.Val()

			data, err := s.client.Get(ctx, key)
			if err != nil {
				if errors.Is(err, redis.Nil) {
					continue
				}

				s.log.Error("failed to fetch scanned value", slog.String("key", key), slog.Any("error", err))
				return "", nil, false, err
			}

			return key, []byte(data), true, nil
		}

		if err := keys.Err(); err != nil {
			s.log.Error("failed to scan keys", slog.String("prefix", rk), slog.Any("error", err))
			return "", nil, false, err
		}

		return "", nil, false, nil
	})
}

// LastInt parses the trailing integer component of an encoded key.
func LastInt(encoded string) (int64, error) {
	idx := strings.LastIndex(encoded, separator)
	id, err := strconv.ParseInt(encoded[idx+1:], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q has no trailing integer", ErrInvalidKey, encoded)
	}
	return id, nil
}
