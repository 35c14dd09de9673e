// Package modulation provides control-rate modulation sources.
//
// Included sources:
//   - RandomLFO: LCG-driven random-walk quadrature oscillator.
package modulation
