package buffer

import "fmt"

// Arena is a real-time-safe allocator backed by a single slab reserved up
// front. Allocate carves consecutive zeroed regions from the slab and never
// calls into the Go heap; when the slab cannot fit a request it fails with
// ErrPoolExhausted. The slab rewinds once every outstanding region has been
// released.
//
// An Arena has a single owner and is not safe for concurrent use.
type Arena struct {
	slab   []float64
	offset int
	live   int

	locked bool
	unmap  func() error
}

var _ Allocator = (*Arena)(nil)

// NewArena reserves a slab of capacity samples.
func NewArena(capacity int) (*Arena, error) {
	if capacity < 0 {
		return nil, fmt.Errorf("arena capacity must be >= 0: %d", capacity)
	}
	return &Arena{slab: make([]float64, capacity)}, nil
}

// Allocate returns a zeroed region of n samples from the slab.
func (a *Arena) Allocate(n int) ([]float64, error) {
	if n < 0 {
		return nil, invalidSize(n)
	}
	if n == 0 {
		return []float64{}, nil
	}
	if n > len(a.slab)-a.offset {
		return nil, fmt.Errorf("%w: requested %d samples, %d available",
			ErrPoolExhausted, n, len(a.slab)-a.offset)
	}

	buf := a.slab[a.offset : a.offset+n : a.offset+n]
	clear(buf)
	a.offset += n
	a.live++

	return buf, nil
}

// Deallocate releases a region. Releasing the most recent region returns
// its samples immediately; other regions are reclaimed when the arena
// becomes empty.
func (a *Arena) Deallocate(buf []float64) {
	if a.live == 0 || cap(buf) == 0 {
		return
	}

	a.live--
	if a.live == 0 {
		a.offset = 0
		return
	}

	if end := a.offset - cap(buf); end >= 0 && &a.slab[end] == &buf[:1][0] {
		a.offset = end
	}
}

// Cap returns the slab size in samples.
func (a *Arena) Cap() int {
	return len(a.slab)
}

// Available returns the number of samples that can still be allocated.
func (a *Arena) Available() int {
	return len(a.slab) - a.offset
}

// Live returns the number of outstanding regions.
func (a *Arena) Live() int {
	return a.live
}

// Locked reports whether the slab is pinned in physical memory.
func (a *Arena) Locked() bool {
	return a.locked
}

// Close drops the slab and returns mapped memory to the operating system.
// Regions handed out by the arena must not be used afterwards.
func (a *Arena) Close() error {
	var err error
	if a.unmap != nil {
		err = a.unmap()
		a.unmap = nil
	}

	a.slab = nil
	a.offset = 0
	a.live = 0
	a.locked = false

	return err
}
