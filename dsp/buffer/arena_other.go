//go:build !unix

package buffer

// NewLockedArena returns a heap-backed arena on platforms without mlock.
// Locked always reports false.
func NewLockedArena(capacity int) (*Arena, error) {
	return NewArena(capacity)
}
