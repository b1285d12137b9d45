// Package sample defines the records that flow from the scanner to the profiler.
package sample

import "fmt"

// Snapshot is one sampled call stack, root first: index 0 is the outermost
// caller and the last element is the leaf. Snapshots are not modified after
// they are queued.
type Snapshot []string

// Frame is a timestamped snapshot.
type Frame struct {
	// Timestamp is seconds since the start of the run.
	Timestamp float64
	Snapshot  Snapshot
}

// EventKind distinguishes span boundaries.
type EventKind uint8

const (
	// Start opens a span.
	Start EventKind = iota + 1
	// End closes the most recently opened span.
	End
)

func (k EventKind) String() string {
	switch k {
	case Start:
		return "START"
	case End:
		return "END"
	default:
		return fmt.Sprintf("EventKind(%d)", uint8(k))
	}
}

// Event is a span boundary produced by diffing consecutive snapshots.
type Event struct {
	Kind      EventKind
	Timestamp float64
	Name      string
}

func (e Event) String() string {
	return fmt.Sprintf("%s %s", e.Kind, e.Name)
}
