// Package kv stores small JSON values under tuple keys.
package kv

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const separator = ":"

// ErrInvalidKey is returned for keys that cannot be encoded unambiguously.
var ErrInvalidKey = errors.New("invalid key")

// Key is an ordered tuple of string segments and integers.
type Key []any

// K builds a Key from its components.
func K(parts ...any) Key {
	return Key(parts)
}

// Append returns a new key extended with parts; k is left untouched.
func (k Key) Append(parts ...any) Key {
	out := make(Key, 0, len(k)+len(parts))
	out = append(out, k...)
	return append(out, parts...)
}

// String renders the key for logs. Invalid components are rendered verbatim.
func (k Key) String() string {
	s, err := k.encode()
	if err != nil {
		return fmt.Sprint([]any(k))
	}
	return s
}

func (k Key) encode() (string, error) {
	if len(k) == 0 {
		return "", fmt.Errorf("%w: empty key", ErrInvalidKey)
	}

	parts := make([]string, len(k))
	for i, part := range k {
		switch v := part.(type) {
		case string:
			if err := validSegment(v); err != nil {
				return "", err
			}
			parts[i] = v
		case int:
			parts[i] = strconv.Itoa(v)
		case int64:
			parts[i] = strconv.FormatInt(v, 10)
		default:
			return "", fmt.Errorf("%w: unsupported component %T at %d", ErrInvalidKey, part, i)
		}
	}

	return strings.Join(parts, separator), nil
}

// validSegment rejects separators and SCAN glob metacharacters.
func validSegment(s string) error {
	if s == "" {
		return fmt.Errorf("%w: empty segment", ErrInvalidKey)
	}
	if strings.ContainsAny(s, separator+`*?[]\`) {
		return fmt.Errorf("%w: segment %q contains a reserved character", ErrInvalidKey, s)
	}
	return nil
}
