package design

import (
	"math"

	"github.com/cwbudde/nhhall/dsp/core"
	"github.com/cwbudde/nhhall/dsp/filter/biquad"
)

const defaultQ = 1 / math.Sqrt2

// LowShelf designs a low-shelf biquad with gain in dB.
func LowShelf(freq, gainDB, q, sampleRate float64) biquad.Coefficients {
	w0, ok := normalizedW0(freq, sampleRate)
	if !ok {
		return biquad.Coefficients{}
	}

	alpha := math.Sin(w0) / (2 * normalizedQ(q))
	return lowShelf(w0, gainDB, alpha)
}

// HighShelf designs a high-shelf biquad with gain in dB.
func HighShelf(freq, gainDB, q, sampleRate float64) biquad.Coefficients {
	w0, ok := normalizedW0(freq, sampleRate)
	if !ok {
		return biquad.Coefficients{}
	}

	alpha := math.Sin(w0) / (2 * normalizedQ(q))
	return highShelf(w0, gainDB, alpha)
}

// LowShelfSlope designs a low-shelf biquad parameterised by shelf slope S.
// S = 1 is the steepest slope without overshoot and equals q = 1/sqrt(2).
func LowShelfSlope(freq, gainDB, slope, sampleRate float64) biquad.Coefficients {
	w0, ok := normalizedW0(freq, sampleRate)
	if !ok {
		return biquad.Coefficients{}
	}

	return lowShelf(w0, gainDB, slopeAlpha(w0, gainDB, slope))
}

// HighShelfSlope designs a high-shelf biquad parameterised by shelf slope S.
func HighShelfSlope(freq, gainDB, slope, sampleRate float64) biquad.Coefficients {
	w0, ok := normalizedW0(freq, sampleRate)
	if !ok {
		return biquad.Coefficients{}
	}

	return highShelf(w0, gainDB, slopeAlpha(w0, gainDB, slope))
}

func lowShelf(w0, gainDB, alpha float64) biquad.Coefficients {
	cw := math.Cos(w0)
	a := shelfAmplitude(gainDB)
	beta := 2 * math.Sqrt(a) * alpha

	b0 := a * ((a + 1) - (a-1)*cw + beta)
	b1 := 2 * a * ((a - 1) - (a+1)*cw)
	b2 := a * ((a + 1) - (a-1)*cw - beta)
	a0 := (a + 1) + (a-1)*cw + beta
	a1 := -2 * ((a - 1) + (a+1)*cw)
	a2 := (a + 1) + (a-1)*cw - beta

	return normalizeBiquad(b0, b1, b2, a0, a1, a2)
}

func highShelf(w0, gainDB, alpha float64) biquad.Coefficients {
	cw := math.Cos(w0)
	a := shelfAmplitude(gainDB)
	beta := 2 * math.Sqrt(a) * alpha

	b0 := a * ((a + 1) + (a-1)*cw + beta)
	b1 := -2 * a * ((a - 1) + (a+1)*cw)
	b2 := a * ((a + 1) + (a-1)*cw - beta)
	a0 := (a + 1) - (a-1)*cw + beta
	a1 := 2 * ((a - 1) - (a+1)*cw)
	a2 := (a + 1) - (a-1)*cw - beta

	return normalizeBiquad(b0, b1, b2, a0, a1, a2)
}

// shelfAmplitude returns the RBJ A = 10^(gainDB/40), the square root of the
// linear shelf gain.
func shelfAmplitude(gainDB float64) float64 {
	return core.DBToLinear(gainDB / 2)
}

// slopeAlpha follows the RBJ cookbook:
// alpha = sin(w0)/2 * sqrt((A + 1/A)*(1/S - 1) + 2).
func slopeAlpha(w0, gainDB, slope float64) float64 {
	if slope <= 0 || math.IsNaN(slope) || math.IsInf(slope, 0) {
		slope = 1
	}
	a := shelfAmplitude(gainDB)
	arg := (a+1/a)*(1/slope-1) + 2
	if arg < 0 {
		arg = 0
	}

	return math.Sin(w0) / 2 * math.Sqrt(arg)
}

func normalizedW0(freq, sampleRate float64) (float64, bool) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return 0, false
	}

	nyquist := sampleRate / 2
	if freq <= 0 || freq >= nyquist || math.IsNaN(freq) || math.IsInf(freq, 0) {
		return 0, false
	}

	return 2 * math.Pi * freq / sampleRate, true
}

func normalizedQ(q float64) float64 {
	if q <= 0 || math.IsNaN(q) || math.IsInf(q, 0) {
		return defaultQ
	}

	return q
}

func normalizeBiquad(b0, b1, b2, a0, a1, a2 float64) biquad.Coefficients {
	if a0 == 0 || math.IsNaN(a0) || math.IsInf(a0, 0) {
		return biquad.Coefficients{}
	}

	return biquad.Coefficients{
		B0: b0 / a0,
		B1: b1 / a0,
		B2: b2 / a0,
		A1: a1 / a0,
		A2: a2 / a0,
	}
}
