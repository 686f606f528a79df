// Package buffer provides fixed-capacity, index-addressed field storage.
//
// A Buffer holds one field (positions, velocities, a scalar channel) for
// every element of a simulation, addressed by the element index. Capacity is
// fixed at creation; elements are never individually allocated or freed.
package buffer

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCapacity is returned by New for capacities <= 0.
	ErrInvalidCapacity = errors.New("invalid capacity")

	// ErrIndexOutOfRange is returned by Get/Set for indices outside [0, capacity).
	ErrIndexOutOfRange = errors.New("index out of range")
)

// Buffer is fixed-length storage for one field across all elements.
type Buffer[T any] struct {
	data []T
}

// New allocates a buffer for capacity elements, zero-initialized.
func New[T any](capacity int) (*Buffer[T], error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: capacity must be > 0, got %d", ErrInvalidCapacity, capacity)
	}
	return &Buffer[T]{data: make([]T, capacity)}, nil
}

// Len returns the fixed capacity.
func (b *Buffer[T]) Len() int {
	return len(b.data)
}

// Get returns the element at index i.
func (b *Buffer[T]) Get(i int) (T, error) {
	if i < 0 || i >= len(b.data) {
		var zero T
		return zero, fmt.Errorf("%w: index %d, capacity %d", ErrIndexOutOfRange, i, len(b.data))
	}
	return b.data[i], nil
}

// Set writes the element at index i.
func (b *Buffer[T]) Set(i int, v T) error {
	if i < 0 || i >= len(b.data) {
		return fmt.Errorf("%w: index %d, capacity %d", ErrIndexOutOfRange, i, len(b.data))
	}
	b.data[i] = v
	return nil
}

// Data exposes the backing slice for pass loops. Pass code stays in range by
// loop construction; the checked Get/Set accessors are the external contract.
func (b *Buffer[T]) Data() []T {
	return b.data
}

// CopyFrom copies src's contents into b. Both buffers must have the same
// capacity; used to snapshot pass inputs before a parallel update.
func (b *Buffer[T]) CopyFrom(src *Buffer[T]) error {
	if len(src.data) != len(b.data) {
		return fmt.Errorf("%w: source capacity %d, destination %d", ErrInvalidCapacity, len(src.data), len(b.data))
	}
	copy(b.data, src.data)
	return nil
}

// Clone returns an independent buffer with the same contents. Writes to the
// clone never affect the original.
func (b *Buffer[T]) Clone() *Buffer[T] {
	data := make([]T, len(b.data))
	copy(data, b.data)
	return &Buffer[T]{data: data}
}
