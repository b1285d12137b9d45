package profiler

import (
	"fmt"
	"strings"

	"github.com/coral-mesh/pace/internal/sample"
	"github.com/coral-mesh/pace/internal/trie"
)

// Strategy selects how the common prefix of consecutive snapshots is found.
type Strategy string

const (
	// Lockstep compares snapshots frame by frame.
	Lockstep Strategy = "lockstep"
	// TrieStrategy serializes the previous snapshot into a scratch burst trie
	// and grows the current snapshot's prefix until the trie rejects it.
	TrieStrategy Strategy = "trie"
)

// ParseStrategy returns the strategy named s.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case Lockstep, TrieStrategy:
		return Strategy(s), nil
	default:
		return "", fmt.Errorf("unknown diff strategy %q (want %q or %q)", s, Lockstep, TrieStrategy)
	}
}

// frameTerminator follows every frame in a serialized snapshot, so "b" never
// matches a prefix of "bc".
const frameTerminator = '\x00'

// commonPrefix returns the number of leading frames prev and cur share.
func commonPrefix(prev, cur sample.Snapshot) int {
	n := min(len(prev), len(cur))
	for i := range n {
		if prev[i] != cur[i] {
			return i
		}
	}
	return n
}

// trieDiffer finds the common prefix through a burst trie.
type trieDiffer struct {
	scratch *trie.Trie
	buf     strings.Builder
}

func newTrieDiffer() *trieDiffer {
	return &trieDiffer{scratch: trie.New()}
}

func (d *trieDiffer) commonPrefix(prev, cur sample.Snapshot) int {
	if hasTerminator(prev) || hasTerminator(cur) {
		return commonPrefix(prev, cur)
	}

	d.scratch.Clear()
	d.buf.Reset()
	for _, f := range prev {
		d.buf.WriteString(f)
		d.buf.WriteByte(frameTerminator)
	}
	d.scratch.Insert(d.buf.String())

	d.buf.Reset()
	n := 0
	for _, f := range cur {
		d.buf.WriteString(f)
		d.buf.WriteByte(frameTerminator)
		if !d.scratch.HasPrefix(d.buf.String()) {
			break
		}
		n++
	}
	return n
}

func hasTerminator(s sample.Snapshot) bool {
	for _, f := range s {
		if strings.IndexByte(f, frameTerminator) >= 0 {
			return true
		}
	}
	return false
}
