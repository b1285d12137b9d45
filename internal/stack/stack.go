// Package stack implements a fixed-capacity LIFO.
package stack

import (
	"errors"
	"fmt"
)

var (
	// ErrFull is returned by Push when the stack holds Cap() items.
	ErrFull = errors.New("stack is full")
	// ErrEmpty is returned by Pop and Peek when the stack holds no items.
	ErrEmpty = errors.New("stack is empty")
)

// Stack is a bounded LIFO. It is not safe for concurrent use.
type Stack[T any] struct {
	data []T
	size int
}

// New creates a stack holding at most capacity items.
func New[T any](capacity int) (*Stack[T], error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("stack capacity must be positive, got %d", capacity)
	}

	return &Stack[T]{data: make([]T, capacity)}, nil
}

// Push places item on top.
func (s *Stack[T]) Push(item T) error {
	if s.size == len(s.data) {
		return ErrFull
	}

	s.data[s.size] = item
	s.size++

	return nil
}

// Peek returns the top item without removing it.
func (s *Stack[T]) Peek() (T, error) {
	if s.size == 0 {
		var zero T
		return zero, ErrEmpty
	}

	return s.data[s.size-1], nil
}

// Pop removes and returns the top item.
func (s *Stack[T]) Pop() (T, error) {
	var zero T
	if s.size == 0 {
		return zero, ErrEmpty
	}

	s.size--
	item := s.data[s.size]
	s.data[s.size] = zero

	return item, nil
}

// Empty reports whether the stack holds no items.
func (s *Stack[T]) Empty() bool {
	return s.size == 0
}

// Size returns the number of items on the stack.
func (s *Stack[T]) Size() int {
	return s.size
}

// Cap returns the fixed capacity.
func (s *Stack[T]) Cap() int {
	return len(s.data)
}

// Each calls fn for every item from bottom to top.
func (s *Stack[T]) Each(fn func(T)) {
	for i := 0; i < s.size; i++ {
		fn(s.data[i])
	}
}
