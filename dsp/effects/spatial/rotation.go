package spatial

import "math"

// Rotation mixes a stereo pair through the orthonormal matrix
//
//	| cos -sin |
//	| sin  cos |
//
// It preserves the summed energy of both channels, which makes it safe to
// place inside a feedback loop. The zero value silences its input; use
// [NewRotation].
type Rotation struct {
	angle    float64
	cos, sin float64
}

// NewRotation returns a rotation by angle radians.
func NewRotation(angle float64) Rotation {
	s, c := math.Sincos(angle)
	return Rotation{angle: angle, cos: c, sin: s}
}

// Angle returns the rotation angle in radians.
func (r Rotation) Angle() float64 { return r.angle }

// Process rotates one stereo sample.
func (r Rotation) Process(left, right float64) (float64, float64) {
	return r.cos*left - r.sin*right, r.sin*left + r.cos*right
}

// ProcessBlock rotates left and right in place over min(len(left), len(right)) samples.
func (r Rotation) ProcessBlock(left, right []float64) {
	n := min(len(left), len(right))
	for i := range n {
		left[i], right[i] = r.Process(left[i], right[i])
	}
}
