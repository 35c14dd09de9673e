// Package buffer provides the allocator capability used by processors that
// own sample memory.
//
// Processors acquire all of their ring buffers through an [Allocator] once,
// at construction, and return them on Close. Three implementations are
// provided:
//   - Heap: plain Go heap allocation. Never fails, not real-time safe.
//   - Pool: sync.Pool-backed power-of-two size classes that recycle released
//     buffers across processors. Not real-time safe.
//   - Arena: one preallocated slab carved into sub-slices. Fails with
//     ErrPoolExhausted instead of touching the Go heap, which makes it safe
//     to construct processors from a real-time thread. NewLockedArena maps
//     the slab outside the Go heap and locks it into RAM where the platform
//     allows.
package buffer
