// Package kv provides a small key-value store interface used to persist
// per-chat settings. Keys are hierarchical paths such as
// Key{"chat", "group", "10001"}.
//
// Two backends are provided: Memory for tests and ephemeral runs, and Badger
// for on-disk persistence.
package kv

import (
	"context"
	"errors"
	"iter"
	"strings"
)

// ErrNotFound is returned when a key does not exist in the store.
var ErrNotFound = errors.New("kv: not found")

// ErrInvalidKey is returned when a key is empty or a segment contains the
// separator byte.
var ErrInvalidKey = errors.New("kv: invalid key")

// separator joins key segments in the encoded form. Chat identifiers are
// free-form strings, so a control byte is used instead of a printable one.
const separator byte = 0x1f

// Key is a hierarchical path represented as a slice of string segments.
type Key []string

// String returns the key joined with '/' for display.
func (k Key) String() string {
	return strings.Join(k, "/")
}

// Entry is a key-value pair returned by List.
type Entry struct {
	Key   Key
	Value []byte
}

// Store is the interface for a key-value store with path-based keys.
type Store interface {
	// Get retrieves the value for a key. Returns ErrNotFound if not present.
	Get(ctx context.Context, key Key) ([]byte, error)

	// Set stores a key-value pair, overwriting any existing value.
	Set(ctx context.Context, key Key, value []byte) error

	// Delete removes a key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key Key) error

	// List iterates over all entries strictly below prefix, in
	// lexicographic order of the encoded key.
	List(ctx context.Context, prefix Key) iter.Seq2[Entry, error]

	// Close releases any resources held by the store.
	Close() error
}

func encode(k Key) ([]byte, error) {
	if len(k) == 0 {
		return nil, ErrInvalidKey
	}
	return encodePrefix(k)
}

func encodePrefix(k Key) ([]byte, error) {
	n := 0
	for _, seg := range k {
		if strings.IndexByte(seg, separator) >= 0 {
			return nil, ErrInvalidKey
		}
		n += len(seg) + 1
	}
	buf := make([]byte, 0, n)
	for i, seg := range k {
		if i > 0 {
			buf = append(buf, separator)
		}
		buf = append(buf, seg...)
	}
	return buf, nil
}

// listPrefix returns the byte prefix matching keys strictly below k.
func listPrefix(k Key) ([]byte, error) {
	p, err := encodePrefix(k)
	if err != nil || len(k) == 0 {
		return p, err
	}
	return append(p, separator), nil
}

func decode(b []byte) Key {
	return Key(strings.Split(string(b), string(separator)))
}
