// Package interp provides the 4-point fractional interpolation kernels used
// by modulated delay lines.
//
// Both kernels read the same window (xm1, x0, x1, x2) and interpolate
// between x0 and x1:
//
//   - [Linear4]:  straight line between x0 and x1; the outer points are
//     ignored. Cheap and bit-compatible with legacy linear renders.
//   - [Hermite4]: 4-point cubic Hermite (Catmull-Rom). The default.
//
// [Mode] selects a kernel at construction time.
package interp
