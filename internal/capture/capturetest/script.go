// Package capturetest provides a scripted capture.Capturer for tests.
package capturetest

import (
	"slices"
	"sync"

	"github.com/coral-mesh/pace/internal/capture"
)

// ScriptHandle is the handle a Script hands out.
const ScriptHandle capture.Handle = "script"

// Script replays a fixed sequence of stacks, one per Capture call. Stacks are
// written root first, the way they read in a call graph, and returned
// innermost first like a real capturer. Once the sequence is exhausted every
// capture is empty and Exhausted is closed.
type Script struct {
	mu        sync.Mutex
	stacks    [][]string
	pos       int
	calls     int
	exhausted chan struct{}

	// NullHandle makes Acquire return the null handle.
	NullHandle bool
	// OnCapture, if set, runs at the start of every Capture with the zero-based call index.
	OnCapture func(call int)
}

// New creates a script that returns stacks in order.
func New(stacks ...[]string) *Script {
	s := &Script{
		stacks:    stacks,
		exhausted: make(chan struct{}),
	}
	if len(stacks) == 0 {
		close(s.exhausted)
	}
	return s
}

// Repeat returns n copies of stack.
func Repeat(n int, stack ...string) [][]string {
	out := make([][]string, n)
	for i := range out {
		out[i] = stack
	}
	return out
}

// Concat joins stack sequences.
func Concat(seqs ...[][]string) [][]string {
	var out [][]string
	for _, s := range seqs {
		out = append(out, s...)
	}
	return out
}

// Acquire implements capture.Capturer.
func (s *Script) Acquire() capture.Handle {
	if s.NullHandle {
		return ""
	}
	return ScriptHandle
}

// Capture implements capture.Capturer. skip and maxFrames are honoured; flags are ignored.
func (s *Script) Capture(h capture.Handle, skip, maxFrames int, _ capture.Flags) []capture.Frame {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.OnCapture != nil {
		s.OnCapture(s.calls)
	}
	s.calls++

	if h != ScriptHandle || s.pos >= len(s.stacks) {
		return []capture.Frame{}
	}

	stack := slices.Clone(s.stacks[s.pos])
	s.pos++
	if s.pos == len(s.stacks) {
		close(s.exhausted)
	}

	slices.Reverse(stack)
	frames := make([]capture.Frame, len(stack))
	for i, name := range stack {
		frames[i] = capture.Frame{Function: name}
	}
	return capture.Filter(frames, skip, maxFrames, capture.None, "")
}

// Exhausted is closed once every scripted stack has been returned.
func (s *Script) Exhausted() <-chan struct{} {
	return s.exhausted
}

// Calls returns the number of Capture calls so far.
func (s *Script) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}
