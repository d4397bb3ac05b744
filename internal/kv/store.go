package kv

import (
	"context"
	"encoding/json"
)

// Store is a point-lookup key-value store with prefix scans.
type Store interface {
	// Get decodes the value stored under key into dst. Absence is reported as
	// found == false with a nil error.
	Get(ctx context.Context, key Key, dst any) (found bool, err error)
	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key Key, value any) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key Key) error
	// Scan iterates over the values stored under keys starting with prefix.
	Scan(ctx context.Context, prefix Key) *Iterator
}

// Iterator lazily walks the results of a Scan. It is single-use.
type Iterator struct {
	next func() (key string, raw []byte, ok bool, err error)
	key  string
	raw  []byte
	err  error
	done bool
}

func newIterator(next func() (string, []byte, bool, error)) *Iterator {
	return &Iterator{next: next}
}

func failedIterator(err error) *Iterator {
	return &Iterator{err: err, done: true}
}

// Next advances to the next entry and reports whether one is available.
func (it *Iterator) Next() bool {
	if it.done {
		return false
	}

	key, raw, ok, err := it.next()
	if err != nil || !ok {
		it.err = err
		it.done = true
		it.key, it.raw = "", nil
		return false
	}

	it.key, it.raw = key, raw
	return true
}

// Key returns the encoded key of the current entry.
func (it *Iterator) Key() string {
	return it.key
}

// Decode unmarshals the current value into dst.
func (it *Iterator) Decode(dst any) error {
	return json.Unmarshal(it.raw, dst)
}

// Err returns the error that stopped the iteration, if any.
func (it *Iterator) Err() error {
	return it.err
}
