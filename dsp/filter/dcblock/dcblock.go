// Package dcblock provides a single-pole DC blocking filter.
package dcblock

import (
	"math"

	"github.com/cwbudde/nhhall/dsp/core"
)

const (
	// DefaultCutoff is the corner frequency used by the reverb input stage.
	DefaultCutoff = 10.0

	minPole = 0.9
	maxPole = 0.9999
)

// DCBlocker removes the DC component of a signal using
// y[n] = x[n] - x[n-1] + R*y[n-1].
type DCBlocker struct {
	r      float64
	x1, y1 float64
}

// New returns a DC blocker whose pole is derived from cutoffHz as
// R = 1 - 2*pi*cutoff/sampleRate, clamped to [0.9, 0.9999].
func New(sampleRate, cutoffHz float64) *DCBlocker {
	d := &DCBlocker{}
	d.SetCutoff(sampleRate, cutoffHz)
	return d
}

// SetCutoff recomputes the pole without touching the filter state.
func (d *DCBlocker) SetCutoff(sampleRate, cutoffHz float64) {
	r := maxPole
	if sampleRate > 0 && core.IsFinite(sampleRate) && cutoffHz > 0 && core.IsFinite(cutoffHz) {
		r = 1 - 2*math.Pi*cutoffHz/sampleRate
	}
	d.r = core.Clamp(r, minPole, maxPole)
}

// Pole returns the feedback coefficient R.
func (d *DCBlocker) Pole() float64 {
	return d.r
}

// ProcessSample filters one sample.
func (d *DCBlocker) ProcessSample(x float64) float64 {
	y := x - d.x1 + d.r*d.y1
	d.x1 = x
	d.y1 = core.FlushDenormals(y)
	return y
}

// ProcessBlock filters buf in place.
func (d *DCBlocker) ProcessBlock(buf []float64) {
	for i, x := range buf {
		buf[i] = d.ProcessSample(x)
	}
}

// Reset clears the filter memory.
func (d *DCBlocker) Reset() {
	d.x1 = 0
	d.y1 = 0
}
