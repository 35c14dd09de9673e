//go:build unix

package buffer

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// NewLockedArena maps an anonymous slab of capacity samples outside the Go
// heap and locks it into RAM, so ring reads on the audio thread never page
// fault. If the lock is refused, typically by RLIMIT_MEMLOCK, the mapping is
// kept with every page touched once and Locked reports false.
//
// Close unmaps the slab.
func NewLockedArena(capacity int) (*Arena, error) {
	if capacity < 0 {
		return nil, fmt.Errorf("arena capacity must be >= 0: %d", capacity)
	}
	if capacity == 0 {
		return NewArena(0)
	}

	size := capacity * int(unsafe.Sizeof(float64(0)))
	mem, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("%w: mmap %d bytes: %v", ErrAllocationFailure, size, err)
	}

	a := &Arena{
		slab:  unsafe.Slice((*float64)(unsafe.Pointer(&mem[0])), capacity),
		unmap: func() error { return unix.Munmap(mem) },
	}

	if unix.Mlock(mem) == nil {
		a.locked = true
		a.unmap = func() error {
			_ = unix.Munlock(mem)
			return unix.Munmap(mem)
		}
	} else {
		clear(a.slab)
	}

	return a, nil
}
