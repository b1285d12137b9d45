// Package workload provides CPU-bound targets with a known call shape for
// pace demo and for exercising the capturer in tests.
package workload

import (
	"fmt"
	"runtime"
	"slices"
	"strings"
	"time"
)

// Target is a function pace can profile.
type Target func()

var registry = map[string]func(time.Duration) Target{
	"nested":      Nested,
	"alternating": Alternating,
	"recursive":   Recursive,
}

// Names returns the registered workload names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Get returns the workload called name, running for about d.
func Get(name string, d time.Duration) (Target, error) {
	build, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown workload %q (available: %s)", name, strings.Join(Names(), ", "))
	}
	if d <= 0 {
		return nil, fmt.Errorf("workload duration must be positive, got %s", d)
	}
	return build(d), nil
}

// Nested spends all of d in top -> mid -> leaf.
func Nested(d time.Duration) Target {
	return func() { top(time.Now().Add(d)) }
}

// Alternating switches between two sibling branches every tenth of d.
func Alternating(d time.Duration) Target {
	return func() {
		deadline := time.Now().Add(d)
		slice := max(d/10, time.Millisecond)
		for i := 0; time.Now().Before(deadline); i++ {
			until := minTime(time.Now().Add(slice), deadline)
			if i%2 == 0 {
				branchA(until)
			} else {
				branchB(until)
			}
		}
	}
}

// Recursive descends to depths 1 through 4 in turn, spinning at the bottom.
func Recursive(d time.Duration) Target {
	return func() {
		deadline := time.Now().Add(d)
		slice := max(d/8, time.Millisecond)
		for depth := 1; time.Now().Before(deadline); depth = depth%4 + 1 {
			recurse(depth, minTime(time.Now().Add(slice), deadline))
		}
	}
}

//go:noinline
func top(until time.Time) {
	mid(until)
}

//go:noinline
func mid(until time.Time) {
	leaf(until)
}

//go:noinline
func leaf(until time.Time) {
	spin(until)
}

//go:noinline
func branchA(until time.Time) {
	spin(until)
}

//go:noinline
func branchB(until time.Time) {
	spin(until)
}

//go:noinline
func recurse(depth int, until time.Time) {
	if depth <= 1 {
		spin(until)
		return
	}
	recurse(depth-1, until)
}

// spin burns CPU until the deadline, yielding periodically.
//
//go:noinline
func spin(until time.Time) uint64 {
	var x uint64
	for time.Now().Before(until) {
		x++
		if x&0xFFFF == 0 {
			runtime.Gosched()
		}
	}
	return x
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
