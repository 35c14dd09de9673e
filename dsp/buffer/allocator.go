package buffer

import (
	"errors"
	"fmt"
)

// Errors returned by allocators.
var (
	// ErrAllocationFailure is wrapped by every allocator error.
	ErrAllocationFailure = errors.New("buffer: allocation failed")

	// ErrPoolExhausted is returned when a fixed-capacity allocator cannot
	// satisfy a request.
	ErrPoolExhausted = fmt.Errorf("%w: pool exhausted", ErrAllocationFailure)
)

// Allocator acquires and releases sample buffers.
//
// Allocate returns a zeroed slice of exactly n samples. Deallocate hands a
// slice previously returned by Allocate back to the allocator; callers must
// not use it afterwards.
type Allocator interface {
	Allocate(n int) ([]float64, error)
	Deallocate(buf []float64)
}

// Heap allocates from the Go heap.
type Heap struct{}

var _ Allocator = Heap{}

// Allocate returns a new zeroed slice.
func (Heap) Allocate(n int) ([]float64, error) {
	if n < 0 {
		return nil, invalidSize(n)
	}
	return make([]float64, n), nil
}

// Deallocate is a no-op; the garbage collector reclaims the slice.
func (Heap) Deallocate([]float64) {}

func invalidSize(n int) error {
	return fmt.Errorf("%w: invalid size %d", ErrAllocationFailure, n)
}
