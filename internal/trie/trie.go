// Package trie implements a burst trie: a byte-indexed prefix tree whose
// leaves are small Robin-Hood buckets.
//
// A leaf ("bucket node") stores the unconsumed suffixes of the keys that reach
// it. When a bucket overflows it is promoted, exactly once, into an internal
// node with up to 256 children; its suffixes are redistributed by their first
// byte. Sparse key sets therefore stay flat while dense subtrees branch.
//
// A Trie is not safe for concurrent mutation. Concurrent reads of a trie that
// is not being written are safe.
package trie

import (
	"fmt"
	"strings"

	"github.com/coral-mesh/pace/internal/rhmap"
)

// DefaultBucketCapacity is the number of suffixes a bucket holds before it is promoted.
const DefaultBucketCapacity = 64

const alphabet = 256

type node struct {
	isEnd bool
	// bucket is non-nil exactly while the node is a bucket node.
	bucket   *rhmap.Map[string, struct{}]
	children *[alphabet]*node
}

// Trie is a burst trie over byte strings.
type Trie struct {
	root           *node
	bucketCapacity int
	size           int
}

// New creates a trie with DefaultBucketCapacity buckets.
func New() *Trie {
	t, _ := NewWithBucketCapacity(DefaultBucketCapacity)
	return t
}

// NewWithBucketCapacity creates a trie whose buckets hold capacity suffixes.
func NewWithBucketCapacity(capacity int) (*Trie, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("bucket capacity must be positive, got %d", capacity)
	}

	t := &Trie{bucketCapacity: capacity}
	t.root = t.newBucketNode()
	return t, nil
}

func (t *Trie) newBucketNode() *node {
	b, err := rhmap.NewString[struct{}](t.bucketCapacity)
	if err != nil {
		// Capacity is validated at construction.
		panic(err)
	}
	return &node{bucket: b}
}

// Insert adds key. Inserting a key twice is a no-op.
func (t *Trie) Insert(key string) {
	n := t.root
	depth := 0

	for {
		if n.bucket != nil {
			suffix := key[depth:]
			if _, ok := n.bucket.Get(suffix); ok {
				return
			}
			if n.bucket.Set(suffix, struct{}{}) == nil {
				t.size++
				return
			}
			t.promote(n)
			// n is internal now; retry at the same depth.
			continue
		}

		if depth == len(key) {
			if !n.isEnd {
				n.isEnd = true
				t.size++
			}
			return
		}

		n = t.child(n, key[depth])
		depth++
	}
}

// child returns the child of internal node n for byte c, creating it if absent.
func (t *Trie) child(n *node, c byte) *node {
	next := n.children[c]
	if next == nil {
		next = t.newBucketNode()
		n.children[c] = next
	}
	return next
}

// promote turns bucket node n into an internal node and moves each stored
// suffix one level down, keyed by its first byte.
func (t *Trie) promote(n *node) {
	old := n.bucket
	n.bucket = nil
	n.children = new([alphabet]*node)

	old.Range(func(suffix string, _ struct{}) bool {
		if suffix == "" {
			n.isEnd = true
			return true
		}
		// A fresh child receives at most bucketCapacity distinct suffixes
		// from a bucket of the same capacity.
		if err := t.child(n, suffix[0]).bucket.Set(suffix[1:], struct{}{}); err != nil {
			panic(fmt.Sprintf("trie: promotion lost suffix %q: %v", suffix, err))
		}
		return true
	})
}

// Contains reports whether key was inserted.
func (t *Trie) Contains(key string) bool {
	n := t.root

	for depth := 0; ; depth++ {
		if n.bucket != nil {
			_, ok := n.bucket.Get(key[depth:])
			return ok
		}
		if depth == len(key) {
			return n.isEnd
		}
		if n = n.children[key[depth]]; n == nil {
			return false
		}
	}
}

// HasPrefix reports whether some inserted key starts with prefix.
func (t *Trie) HasPrefix(prefix string) bool {
	n := t.root

	for depth := 0; ; depth++ {
		if n.bucket != nil {
			return bucketHasPrefix(n.bucket, prefix[depth:])
		}
		if depth == len(prefix) {
			return n.isEnd || hasChildren(n)
		}
		if n = n.children[prefix[depth]]; n == nil {
			return false
		}
	}
}

// MatchesPrefix reports whether some inserted key is a prefix of s.
func (t *Trie) MatchesPrefix(s string) bool {
	n := t.root

	for depth := 0; ; depth++ {
		if n.bucket != nil {
			rest := s[depth:]
			found := false
			n.bucket.Range(func(suffix string, _ struct{}) bool {
				found = strings.HasPrefix(rest, suffix)
				return !found
			})
			return found
		}
		if n.isEnd {
			return true
		}
		if depth == len(s) {
			return false
		}
		if n = n.children[s[depth]]; n == nil {
			return false
		}
	}
}

// MatchesSubstring reports whether some inserted key occurs anywhere in s.
func (t *Trie) MatchesSubstring(s string) bool {
	for i := 0; i <= len(s); i++ {
		if t.MatchesPrefix(s[i:]) {
			return true
		}
	}
	return false
}

// Len returns the number of distinct keys.
func (t *Trie) Len() int {
	return t.size
}

// Clear drops every key. The old subtree is released to the collector.
func (t *Trie) Clear() {
	t.root = t.newBucketNode()
	t.size = 0
}

func bucketHasPrefix(b *rhmap.Map[string, struct{}], prefix string) bool {
	found := false
	b.Range(func(suffix string, _ struct{}) bool {
		found = strings.HasPrefix(suffix, prefix)
		return !found
	})
	return found
}

func hasChildren(n *node) bool {
	for _, c := range n.children {
		if c != nil {
			return true
		}
	}
	return false
}
