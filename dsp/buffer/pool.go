package buffer

import (
	"math/bits"
	"sync"
)

const poolClasses = 32

// Pool provides sync.Pool-based buffer reuse to reduce GC pressure when
// processors are created and destroyed repeatedly. Buffers are grouped in
// power-of-two size classes, which matches the ring sizes delay lines ask
// for.
//
// Pool is safe for concurrent use but may allocate, so it is not suitable
// for construction on a real-time thread.
type Pool struct {
	classes [poolClasses]sync.Pool
}

var _ Allocator = (*Pool)(nil)

// NewPool returns a Pool ready for use.
func NewPool() *Pool {
	return &Pool{}
}

// Allocate returns a zeroed buffer with the requested length.
func (p *Pool) Allocate(n int) ([]float64, error) {
	if n < 0 {
		return nil, invalidSize(n)
	}
	if n == 0 {
		return []float64{}, nil
	}

	class := sizeClass(n)
	if class >= poolClasses {
		return nil, invalidSize(n)
	}

	if v := p.classes[class].Get(); v != nil {
		buf := (*v.(*[]float64))[:n]
		clear(buf)
		return buf, nil
	}

	return make([]float64, n, 1<<class), nil
}

// Deallocate returns buf to its size class for reuse.
func (p *Pool) Deallocate(buf []float64) {
	c := cap(buf)
	if c == 0 || c&(c-1) != 0 {
		// Not one of ours; let the GC have it.
		return
	}

	class := bits.TrailingZeros(uint(c))
	if class >= poolClasses {
		return
	}

	buf = buf[:c]
	p.classes[class].Put(&buf)
}

// sizeClass returns the exponent of the smallest power of two >= n.
func sizeClass(n int) int {
	if n <= 1 {
		return 0
	}
	return bits.Len(uint(n - 1))
}
