package modulation

import (
	"fmt"
	"math"

	"github.com/cwbudde/nhhall/dsp/core"
)

const (
	defaultLFOFrequency = 1.0
	minLFOFrequency     = 1e-3

	// maxLFOFrequencyRatio bounds the rate relative to the sample rate.
	maxLFOFrequencyRatio = 0.25

	lcgMultiplier = 1664525
	lcgIncrement  = 1013904223
)

// RandomLFO is a quadrature oscillator whose phase follows a smoothed random
// walk. The walk is made of linear segments: on each segment boundary an
// LCG draws a new segment length in [0.5, 1.5] periods and a new phase
// increment in (-1, 1) cycles per period. Output is (sin(phase), cos(phase)),
// so both channels stay continuous and bounded by 1.
//
// Each instance is deterministic for a given seed. This source is real-time
// safe and not thread-safe.
type RandomLFO struct {
	sampleRate float64
	frequency  float64
	seed       uint32

	state     uint32
	phase     float64
	increment float64
	countdown int
}

// NewRandomLFO creates a random-walk LFO at frequencyHz seeded with seed.
func NewRandomLFO(sampleRate, frequencyHz float64, seed uint32) (*RandomLFO, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("random lfo sample rate must be > 0 and finite: %f", sampleRate)
	}

	l := &RandomLFO{
		sampleRate: sampleRate,
		seed:       seed,
	}
	l.SetFrequency(frequencyHz)
	l.Reset()

	return l, nil
}

// SetFrequency sets the walk rate in Hz. The rate is clamped to
// [0.001, sampleRate/4]; non-finite values select 1 Hz. The current
// segment finishes at its old rate.
func (l *RandomLFO) SetFrequency(hz float64) {
	l.frequency = core.ClampFinite(hz, minLFOFrequency, maxLFOFrequencyRatio*l.sampleRate, defaultLFOFrequency)
}

// Frequency returns the walk rate in Hz.
func (l *RandomLFO) Frequency() float64 { return l.frequency }

// Seed returns the LCG seed used by Reset.
func (l *RandomLFO) Seed() uint32 { return l.seed }

// Reset restores the generator to its seed with zero phase.
func (l *RandomLFO) Reset() {
	l.state = l.seed
	l.phase = 0
	l.increment = 0
	l.countdown = 0
}

// Process advances one sample and returns the modulation pair.
func (l *RandomLFO) Process() (sin, cos float64) {
	if l.countdown <= 0 {
		l.nextSegment()
	}
	l.countdown--

	l.phase += l.increment
	if l.phase >= math.Pi {
		l.phase -= 2 * math.Pi
	} else if l.phase < -math.Pi {
		l.phase += 2 * math.Pi
	}

	return math.Sincos(l.phase)
}

// ProcessBlock fills sinOut and cosOut with consecutive modulation pairs.
// It processes min(len(sinOut), len(cosOut)) samples.
func (l *RandomLFO) ProcessBlock(sinOut, cosOut []float64) {
	n := min(len(sinOut), len(cosOut))
	for i := range n {
		sinOut[i], cosOut[i] = l.Process()
	}
}

func (l *RandomLFO) nextSegment() {
	period := l.sampleRate / l.frequency

	l.countdown = max(int(math.Round((0.5+l.uniform())*period)), 1)
	l.increment = (2*l.uniform() - 1) * 2 * math.Pi / period
}

// uniform returns the next LCG draw mapped to [0, 1).
func (l *RandomLFO) uniform() float64 {
	l.state = l.state*lcgMultiplier + lcgIncrement
	return float64(l.state) / (1 << 32)
}
