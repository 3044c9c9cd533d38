// Package trie provides a generic trie keyed by rune sequences.
//
// Keys are strings iterated by code point, so multi-byte characters such as
// "…" or "。" occupy a single level of the trie. The trie supports exact
// lookup and longest-prefix matching against a rune slice, which makes it
// suitable for recognizing multi-codepoint tokens while scanning text:
//
//	t := trie.New[int]()
//	t.SetValue("……", 1)
//	v, n, ok := t.LongestPrefix([]rune("……？"))  // v=1, n=2, ok=true
package trie

import (
	"errors"
	"fmt"
	"iter"
	"sort"
	"strings"
	"unicode/utf8"
)

// ErrInvalidKey is returned when a key is not valid UTF-8.
var ErrInvalidKey = errors.New("trie: key is not valid utf-8")

// Trie is a generic trie storing values of type T under rune-sequence keys.
//
// The zero value is not usable; create one with New. A Trie is not safe for
// concurrent mutation, but concurrent reads are safe once it is fully built.
type Trie[T any] struct {
	children map[rune]*Trie[T]
	set      bool // whether this node has a value set
	value    T    // the value stored at this node
	depth    int  // length in runes of the longest key below this node
}

// New creates a new empty Trie.
func New[T any]() *Trie[T] {
	return &Trie[T]{}
}

func (t *Trie[T]) setFunc(fn func(ptr *T, existed bool) error) error {
	if err := fn(&t.value, t.set); err != nil {
		return err
	}
	t.set = true
	return nil
}

// Set stores a value at the specified key using the provided setFunc. The
// setFunc is called with a pointer to the value and a boolean indicating
// whether a value already existed at this key. The empty key addresses the
// root node.
//
// Returns ErrInvalidKey if key is not valid UTF-8, or the error returned by
// setFunc.
func (t *Trie[T]) Set(key string, setFunc func(ptr *T, existed bool) error) error {
	if !utf8.ValidString(key) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return t.insert([]rune(key), setFunc)
}

func (t *Trie[T]) insert(key []rune, setFunc func(ptr *T, existed bool) error) error {
	if len(key) > t.depth {
		t.depth = len(key)
	}
	if len(key) == 0 {
		return t.setFunc(setFunc)
	}
	if t.children == nil {
		t.children = make(map[rune]*Trie[T])
	}
	ch, ok := t.children[key[0]]
	if !ok {
		ch = &Trie[T]{}
		t.children[key[0]] = ch
	}
	return ch.insert(key[1:], setFunc)
}

// SetValue is a convenience method that stores a value at the specified key.
// It is equivalent to Set(key, func(ptr *T, _ bool) error { *ptr = value; return nil }).
func (t *Trie[T]) SetValue(key string, value T) error {
	return t.Set(key, func(ptr *T, _ bool) error {
		*ptr = value
		return nil
	})
}

// Get retrieves a pointer to the value stored at exactly the given key.
// Returns nil and false if no value is stored there.
func (t *Trie[T]) Get(key string) (*T, bool) {
	node := t
	for _, r := range key {
		ch, ok := node.children[r]
		if !ok {
			return nil, false
		}
		node = ch
	}
	if !node.set {
		return nil, false
	}
	return &node.value, true
}

// GetValue retrieves the value stored at exactly the given key.
// Returns the value and true if found, zero value and false otherwise.
func (t *Trie[T]) GetValue(key string) (T, bool) {
	ptr, ok := t.Get(key)
	if !ok {
		var zero T
		return zero, false
	}
	return *ptr, true
}

// LongestPrefix returns the value of the longest key that is a prefix of rs,
// together with the length of that key in runes. The root value (empty key)
// is never reported.
func (t *Trie[T]) LongestPrefix(rs []rune) (value T, n int, ok bool) {
	node := t
	for i, r := range rs {
		ch, found := node.children[r]
		if !found {
			break
		}
		node = ch
		if node.set {
			value, n, ok = node.value, i+1, true
		}
	}
	return value, n, ok
}

// Prefixes iterates over every stored key that is a prefix of rs, shortest
// first, yielding the key length in runes and its value.
func (t *Trie[T]) Prefixes(rs []rune) iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		node := t
		for i, r := range rs {
			ch, ok := node.children[r]
			if !ok {
				return
			}
			node = ch
			if node.set && !yield(i+1, node.value) {
				return
			}
		}
	}
}

// MaxKeyLen returns the length in runes of the longest key stored in the trie.
func (t *Trie[T]) MaxKeyLen() int {
	return t.depth
}

// Walk calls the given function for each stored value in the trie, in
// lexicographic key order.
func (t *Trie[T]) Walk(f func(key string, value T)) {
	t.walkWithPath(nil, func(path []rune, node *Trie[T]) {
		if node.set {
			f(string(path), node.value)
		}
	})
}

func (t *Trie[T]) walkWithPath(path []rune, f func([]rune, *Trie[T])) {
	f(path, t)
	if len(t.children) == 0 {
		return
	}
	keys := make([]rune, 0, len(t.children))
	for r := range t.children {
		keys = append(keys, r)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	for _, r := range keys {
		t.children[r].walkWithPath(append(path, r), f)
	}
}

// String returns a string representation of the stored keys and values,
// one "key: value" pair per line in key order. Useful for debugging.
func (t *Trie[T]) String() string {
	var lines []string
	t.Walk(func(key string, value T) {
		lines = append(lines, fmt.Sprintf("%q: %v", key, value))
	})
	return strings.Join(lines, "\n")
}

// Len returns the number of values stored in the trie.
func (t *Trie[T]) Len() int {
	count := 0
	t.Walk(func(string, T) { count++ })
	return count
}

