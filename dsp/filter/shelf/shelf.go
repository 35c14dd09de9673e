// Package shelf provides stateful low and high shelving filters that
// redesign their coefficients only when the frequency or gain changes.
package shelf

import (
	"math"

	"github.com/cwbudde/nhhall/dsp/core"
	"github.com/cwbudde/nhhall/dsp/filter/biquad"
	"github.com/cwbudde/nhhall/dsp/filter/design"
)

const (
	defaultFrequency = 1000.0
	maxFrequencyRate = 0.49
	minFrequency     = 1e-3

	// changeEpsilon absorbs the rounding of interpolated parameter ramps.
	changeEpsilon = 1e-12
)

type designer func(freq, gainDB, q, sampleRate float64) biquad.Coefficients

type filter struct {
	section    biquad.Section
	sampleRate float64
	freq       float64
	gainDB     float64
	design     designer
}

func newFilter(sampleRate float64, d designer) filter {
	f := filter{
		sampleRate: sampleRate,
		freq:       defaultFrequency,
		design:     d,
	}
	f.section.SetCoefficients(biquad.Identity())
	return f
}

// setFrequencyAndGain reports whether the coefficients were redesigned.
func (f *filter) setFrequencyAndGain(freq, gainDB float64) bool {
	freq = core.ClampFinite(freq, minFrequency, maxFrequencyRate*f.sampleRate, defaultFrequency)
	if math.IsNaN(gainDB) || math.IsInf(gainDB, 0) {
		gainDB = 0
	}
	if core.NearlyEqual(freq, f.freq, changeEpsilon) && core.NearlyEqual(gainDB, f.gainDB, changeEpsilon) {
		return false
	}

	f.freq = freq
	f.gainDB = gainDB
	if gainDB == 0 {
		f.section.SetCoefficients(biquad.Identity())
		return true
	}

	c := f.design(freq, gainDB, 1/math.Sqrt2, f.sampleRate)
	if c == (biquad.Coefficients{}) {
		c = biquad.Identity()
	}
	f.section.SetCoefficients(c)
	return true
}

// LowShelf attenuates or boosts content below its corner frequency.
type LowShelf struct {
	filter
}

// NewLowShelf returns a flat low shelf for the given sample rate.
func NewLowShelf(sampleRate float64) *LowShelf {
	return &LowShelf{filter: newFilter(sampleRate, design.LowShelf)}
}

// HighShelf attenuates or boosts content above its corner frequency.
type HighShelf struct {
	filter
}

// NewHighShelf returns a flat high shelf for the given sample rate.
func NewHighShelf(sampleRate float64) *HighShelf {
	return &HighShelf{filter: newFilter(sampleRate, design.HighShelf)}
}

// SetFrequencyAndGain sets the corner frequency (Hz) and shelf gain (dB).
// The frequency is clamped to (0, 0.49*sampleRate). Non-finite gains are
// treated as 0 dB. It reports whether the coefficients changed.
func (f *filter) SetFrequencyAndGain(freq, gainDB float64) bool {
	return f.setFrequencyAndGain(freq, gainDB)
}

// ProcessSample filters one sample.
func (f *filter) ProcessSample(x float64) float64 {
	return f.section.ProcessSample(x)
}

// Reset clears the filter state and keeps the current design.
func (f *filter) Reset() {
	f.section.Reset()
}

// FlushDenormals zeroes vanishing state values.
func (f *filter) FlushDenormals() {
	f.section.FlushDenormals()
}

// Frequency returns the current corner frequency in Hz.
func (f *filter) Frequency() float64 { return f.freq }

// GainDB returns the current shelf gain in dB.
func (f *filter) GainDB() float64 { return f.gainDB }

// Coefficients returns the active biquad coefficients.
func (f *filter) Coefficients() biquad.Coefficients {
	return f.section.Coefficients
}
