// Package rhmap implements a fixed-capacity open-addressing hash map with
// Robin-Hood probing and backward-shift deletion.
//
// The table never resizes. Every occupied bucket records its probe sequence
// length (PSL), the cyclic distance from its natural slot. Insertion keeps the
// Robin-Hood ordering: for any occupied bucket whose natural slot is b and
// which sits at slot i, every slot k on the cyclic walk from b to i is occupied
// by an entry whose PSL is at least k-b. Lookups rely on that ordering to stop
// early, and deletion restores it by shifting the following cluster back one
// slot instead of leaving tombstones.
//
// A Map is not safe for concurrent mutation. Concurrent Get calls on a map that
// nobody is writing are safe.
package rhmap

import (
	"errors"
	"fmt"

	"github.com/zeebo/xxh3"
)

// Seed is mixed into every key hash.
const Seed uint64 = 0x9E3779B185EBCA87

// ErrFull is returned by Set when every bucket is occupied and the key is new.
var ErrFull = errors.New("map is full")

// HashString hashes the bytes of s.
func HashString(s string) uint64 {
	return xxh3.HashStringSeed(s, Seed)
}

// HashBytes hashes b.
func HashBytes(b []byte) uint64 {
	return xxh3.HashSeed(b, Seed)
}

// HashUint64 hashes the little-endian bytes of v.
func HashUint64(v uint64) uint64 {
	var b [8]byte
	for i := range b {
		b[i] = byte(v >> (8 * i))
	}
	return xxh3.HashSeed(b[:], Seed)
}

type bucket[K comparable, V any] struct {
	occupied bool
	base     uint64 // natural slot
	psl      uint64
	key      K
	val      V
}

// Map is a fixed-capacity Robin-Hood dictionary.
type Map[K comparable, V any] struct {
	slots []bucket[K, V]
	hash  func(K) uint64
	count int
}

// New creates a map with exactly capacity buckets using hash to place keys.
func New[K comparable, V any](capacity int, hash func(K) uint64) (*Map[K, V], error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("map capacity must be positive, got %d", capacity)
	}
	if hash == nil {
		return nil, fmt.Errorf("map hash function is required")
	}

	return &Map[K, V]{
		slots: make([]bucket[K, V], capacity),
		hash:  hash,
	}, nil
}

// NewString creates a string-keyed map hashed with HashString.
func NewString[V any](capacity int) (*Map[string, V], error) {
	return New[string, V](capacity, HashString)
}

func (m *Map[K, V]) natural(key K) uint64 {
	return m.hash(key) % uint64(len(m.slots))
}

// find returns the slot holding key, or -1.
func (m *Map[K, V]) find(key K) int {
	n := uint64(len(m.slots))
	base := m.natural(key)

	for d := uint64(0); d < n; d++ {
		i := (base + d) % n
		b := &m.slots[i]

		if !b.occupied {
			return -1
		}
		if b.key == key {
			return int(i)
		}
		// An incumbent closer to home than we would be means key was never
		// placed past this point.
		if b.psl < d {
			return -1
		}
	}

	return -1
}

// Get returns the value stored for key.
func (m *Map[K, V]) Get(key K) (V, bool) {
	if i := m.find(key); i >= 0 {
		return m.slots[i].val, true
	}

	var zero V
	return zero, false
}

// Set stores val under key, overwriting an existing value in place.
// It fails with ErrFull, leaving the table unchanged, when key is new and
// every bucket is occupied.
func (m *Map[K, V]) Set(key K, val V) error {
	if i := m.find(key); i >= 0 {
		m.slots[i].val = val
		return nil
	}

	if m.count == len(m.slots) {
		return ErrFull
	}

	n := uint64(len(m.slots))
	cand := bucket[K, V]{occupied: true, base: m.natural(key), key: key, val: val}

	// A free slot exists, so the walk lands within n steps.
	for i := cand.base; ; i = (i + 1) % n {
		b := &m.slots[i]

		if !b.occupied {
			*b = cand
			m.count++
			return nil
		}

		if b.psl < cand.psl {
			*b, cand = cand, *b
		}
		cand.psl++
	}
}

// Delete removes key and reports whether it was present.
func (m *Map[K, V]) Delete(key K) bool {
	hole := m.find(key)
	if hole < 0 {
		return false
	}

	n := len(m.slots)
	for {
		next := (hole + 1) % n
		b := &m.slots[next]

		if !b.occupied || b.psl == 0 {
			m.slots[hole] = bucket[K, V]{}
			break
		}

		m.slots[hole] = *b
		m.slots[hole].psl--
		hole = next
	}

	m.count--
	return true
}

// Len returns the number of stored keys.
func (m *Map[K, V]) Len() int {
	return m.count
}

// Cap returns the fixed number of buckets.
func (m *Map[K, V]) Cap() int {
	return len(m.slots)
}

// Full reports whether every bucket is occupied.
func (m *Map[K, V]) Full() bool {
	return m.count == len(m.slots)
}

// Range calls fn for each entry in slot order until fn returns false.
// fn must not mutate the map.
func (m *Map[K, V]) Range(fn func(key K, val V) bool) {
	for i := range m.slots {
		b := &m.slots[i]
		if !b.occupied {
			continue
		}
		if !fn(b.key, b.val) {
			return
		}
	}
}
