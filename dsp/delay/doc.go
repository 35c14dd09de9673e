// Package delay provides the ring-buffer delay line family used by
// reverberators.
//
// A [Line] is one ring buffer whose length is a power of two, so read
// positions wrap with a bit mask. Its [Kind] selects the read/write policy:
//
//   - KindDelay: plain integer delay.
//   - KindAllpass: first-order Schroeder allpass around an integer delay.
//   - KindVariableAllpass: Schroeder allpass whose delay is modulated per
//     sample and resolved with 4-point interpolation.
//
// Lines take their memory from a [buffer.Allocator] at construction and
// never allocate while processing.
package delay
