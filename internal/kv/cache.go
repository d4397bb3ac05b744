package kv

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// CachedStore keeps an in-process copy of values read or written through it.
// Reads populate the cache on first hit, writes update the cache before
// persisting. Scans always go to the backing store.
type CachedStore struct {
	next Store

	mu      sync.RWMutex
	entries map[string]json.RawMessage
}

// NewCachedStore wraps next with a read-through, write-through cache.
func NewCachedStore(next Store) *CachedStore {
	return &CachedStore{
		next:    next,
		entries: make(map[string]json.RawMessage),
	}
}

// Get serves from the cache when possible.
func (c *CachedStore) Get(ctx context.Context, key Key, dst any) (bool, error) {
	ck, err := key.encode()
	if err != nil {
		return false, err
	}

	if raw, ok := c.lookup(ck); ok {
		return true, json.Unmarshal(raw, dst)
	}

	var raw json.RawMessage
	found, err := c.next.Get(ctx, key, &raw)
	if err != nil || !found {
		return found, err
	}

	c.store(ck, raw)
	return true, json.Unmarshal(raw, dst)
}

// Set updates the cache, then persists.
func (c *CachedStore) Set(ctx context.Context, key Key, value any) error {
	ck, err := key.encode()
	if err != nil {
		return err
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", ck, err)
	}

	c.store(ck, raw)
	return c.next.Set(ctx, key, json.RawMessage(raw))
}

// Delete invalidates the cache entry, then deletes from the backing store.
func (c *CachedStore) Delete(ctx context.Context, key Key) error {
	ck, err := key.encode()
	if err != nil {
		return err
	}

	c.mu.Lock()
	delete(c.entries, ck)
	c.mu.Unlock()

	return c.next.Delete(ctx, key)
}

// Scan delegates to the backing store.
func (c *CachedStore) Scan(ctx context.Context, prefix Key) *Iterator {
	return c.next.Scan(ctx, prefix)
}

// Len reports the number of cached entries.
func (c *CachedStore) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *CachedStore) lookup(key string) (json.RawMessage, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	raw, ok := c.entries[key]
	return raw, ok
}

func (c *CachedStore) store(key string, raw json.RawMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = raw
}
