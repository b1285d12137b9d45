// Package queue implements a fixed-capacity FIFO ring buffer.
//
// The queue never grows and never overwrites: a push into a full queue fails
// with ErrFull and leaves the contents untouched. It is not safe for
// concurrent use; callers own a queue from a single goroutine.
package queue

import (
	"errors"
	"fmt"
)

var (
	// ErrFull is returned by Push when the queue holds Cap() items.
	ErrFull = errors.New("queue is full")
	// ErrEmpty is returned by Pop and Peek when the queue holds no items.
	ErrEmpty = errors.New("queue is empty")
)

// Queue is a bounded FIFO backed by a power-of-two ring.
//
// head and tail only ever increase; slots are addressed by masking them with
// Cap()-1, so Size() is always tail-head.
type Queue[T any] struct {
	data []T
	mask uint64
	head uint64
	tail uint64
}

// New creates a queue holding at most capacity items.
// Capacity must be a positive power of two.
func New[T any](capacity int) (*Queue[T], error) {
	if capacity <= 0 || capacity&(capacity-1) != 0 {
		return nil, fmt.Errorf("queue capacity must be a positive power of two, got %d", capacity)
	}

	return &Queue[T]{
		data: make([]T, capacity),
		mask: uint64(capacity - 1),
	}, nil
}

// Push appends item at the tail.
func (q *Queue[T]) Push(item T) error {
	if q.tail-q.head > q.mask {
		return ErrFull
	}

	q.data[q.tail&q.mask] = item
	q.tail++

	return nil
}

// Pop removes and returns the item at the head.
func (q *Queue[T]) Pop() (T, error) {
	var zero T
	if q.head == q.tail {
		return zero, ErrEmpty
	}

	slot := q.head & q.mask
	item := q.data[slot]
	// Release the reference so popped snapshots can be collected.
	q.data[slot] = zero
	q.head++

	return item, nil
}

// Peek returns the item at the head without removing it.
func (q *Queue[T]) Peek() (T, error) {
	if q.head == q.tail {
		var zero T
		return zero, ErrEmpty
	}

	return q.data[q.head&q.mask], nil
}

// Size returns the number of queued items.
func (q *Queue[T]) Size() int {
	return int(q.tail - q.head)
}

// Empty reports whether the queue holds no items.
func (q *Queue[T]) Empty() bool {
	return q.head == q.tail
}

// Cap returns the fixed capacity.
func (q *Queue[T]) Cap() int {
	return len(q.data)
}
