package decay

import (
	"errors"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/nhhall/dsp/core"
)

// Errors returned by decay analysis functions.
var (
	ErrEmptyIR           = errors.New("decay: impulse response is empty")
	ErrInvalidSampleRate = errors.New("decay: sample rate must be positive")
	ErrInvalidBlockSize  = errors.New("decay: block size must be positive")
	ErrLengthMismatch    = errors.New("decay: channel lengths differ")
	ErrNoDecay           = errors.New("decay: insufficient decay")
	ErrInvalidBand       = errors.New("decay: invalid frequency band")
)

// Metrics holds impulse response decay results.
type Metrics struct {
	RT60       float64 // reverberation time in seconds (T30, falling back to T20)
	EDT        float64 // early decay time in seconds (0 to -10 dB)
	T20        float64 // RT from -5 to -25 dB slope
	T30        float64 // RT from -5 to -35 dB slope
	C80        float64 // clarity at 80ms in dB
	CenterTime float64 // energy centroid in seconds
	PeakIndex  int     // sample index of IR peak (absolute maximum)
}

// Analyzer computes decay metrics at a fixed sample rate.
type Analyzer struct {
	SampleRate float64
}

// NewAnalyzer creates an analyzer with the given sample rate.
func NewAnalyzer(sampleRate float64) *Analyzer {
	return &Analyzer{SampleRate: sampleRate}
}

// Analyze computes all metrics from an impulse response. Metrics are taken
// from the absolute peak onward.
func (a *Analyzer) Analyze(ir []float64) (Metrics, error) {
	if len(ir) == 0 {
		return Metrics{}, ErrEmptyIR
	}

	if a.SampleRate <= 0 {
		return Metrics{}, ErrInvalidSampleRate
	}

	peakIdx := findPeak(ir)
	irFromPeak := ir[peakIdx:]
	schroeder := schroederIntegral(irFromPeak)

	m := Metrics{
		PeakIndex:  peakIdx,
		EDT:        a.reverbTime(schroeder, 0, -10),
		T20:        a.reverbTime(schroeder, -5, -25),
		T30:        a.reverbTime(schroeder, -5, -35),
		C80:        a.clarity(irFromPeak, 80),
		CenterTime: a.centerTime(irFromPeak),
	}

	m.RT60 = m.T30
	if m.RT60 <= 0 {
		m.RT60 = m.T20
	}

	if m.RT60 <= 0 {
		return m, ErrNoDecay
	}

	return m, nil
}

// Schroeder returns the Schroeder backward integral of the squared IR in dB
// relative to its total energy:
//
//	S(t) = 10*log10( ∫_t^∞ h²(τ) dτ / ∫_0^∞ h²(τ) dτ )
func Schroeder(ir []float64) ([]float64, error) {
	if len(ir) == 0 {
		return nil, ErrEmptyIR
	}

	return schroederIntegral(ir), nil
}

func schroederIntegral(ir []float64) []float64 {
	n := len(ir)
	result := make([]float64, n)

	var cumSum float64
	for i := n - 1; i >= 0; i-- {
		cumSum += ir[i] * ir[i]
		result[i] = cumSum
	}

	totalEnergy := result[0]
	if totalEnergy <= 0 {
		return result
	}

	for i := range result {
		result[i] = max(core.LinearPowerToDB(result[i]/totalEnergy), -200)
	}

	return result
}

// reverbTime fits a line to the Schroeder curve between startDB and endDB
// and extrapolates it to -60 dB. It returns 0 when the curve never reaches
// endDB.
func (a *Analyzer) reverbTime(schroeder []float64, startDB, endDB float64) float64 {
	startIdx := -1
	endIdx := -1

	for i, v := range schroeder {
		if startIdx < 0 && v <= startDB {
			startIdx = i
		}

		if startIdx >= 0 && v <= endDB {
			endIdx = i
			break
		}
	}

	if startIdx < 0 || endIdx <= startIdx {
		return 0
	}

	n := endIdx - startIdx + 1

	var sumX, sumY, sumXX, sumXY float64
	for i := startIdx; i <= endIdx; i++ {
		x := float64(i - startIdx)
		y := schroeder[i]
		sumX += x
		sumY += y
		sumXX += x * x
		sumXY += x * y
	}

	nf := float64(n)
	denom := nf*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}

	// dB per sample
	slope := (nf*sumXY - sumX*sumY) / denom
	if slope >= 0 {
		return 0
	}

	return -60 / (slope * a.SampleRate)
}

func (a *Analyzer) clarity(ir []float64, timeMs float64) float64 {
	boundary := int(math.Round(timeMs * 0.001 * a.SampleRate))
	if boundary >= len(ir) {
		return math.Inf(1)
	}

	var early, late float64
	for i, v := range ir {
		if i < boundary {
			early += v * v
		} else {
			late += v * v
		}
	}

	switch {
	case late <= 0:
		return math.Inf(1)
	case early <= 0:
		return math.Inf(-1)
	}

	return core.LinearPowerToDB(early / late)
}

func (a *Analyzer) centerTime(ir []float64) float64 {
	var numerator, denominator float64
	for i, v := range ir {
		e := v * v
		numerator += float64(i) / a.SampleRate * e
		denominator += e
	}

	if denominator <= 0 {
		return 0
	}

	return numerator / denominator
}

func findPeak(ir []float64) int {
	peakIdx := 0
	peakVal := 0.0

	for i, v := range ir {
		if av := math.Abs(v); av > peakVal {
			peakVal = av
			peakIdx = i
		}
	}

	return peakIdx
}

// Envelope returns the mean power (L²+R²)/2 of each complete block of
// blockSize samples. A nil right channel analyses left as mono.
func (a *Analyzer) Envelope(left, right []float64, blockSize int) ([]float64, error) {
	if blockSize <= 0 {
		return nil, ErrInvalidBlockSize
	}

	if len(left) == 0 {
		return nil, ErrEmptyIR
	}

	if right == nil {
		right = left
	} else if len(right) != len(left) {
		return nil, ErrLengthMismatch
	}

	blocks := len(left) / blockSize
	if blocks == 0 {
		return nil, ErrEmptyIR
	}

	n := blocks * blockSize
	power := make([]float64, n)
	vecmath.Power(power, left[:n], right[:n])

	norm := 1 / float64(2*blockSize)
	env := make([]float64, blocks)
	for b := range env {
		sum := 0.0
		for _, p := range power[b*blockSize : (b+1)*blockSize] {
			sum += p
		}
		env[b] = sum * norm
	}

	return env, nil
}

// Smooth returns the trailing moving average of env over width entries.
func Smooth(env []float64, width int) []float64 {
	out := make([]float64, len(env))
	if width <= 1 {
		copy(out, env)
		return out
	}

	sum := 0.0
	for i, v := range env {
		sum += v
		if i >= width {
			sum -= env[i-width]
		}
		out[i] = sum / float64(min(i+1, width))
	}

	return out
}

// ThresholdTime returns the time in seconds after which env stays below
// threshold. It returns 0 when env never reaches threshold and ErrNoDecay
// when the last block is still at or above it.
func (a *Analyzer) ThresholdTime(env []float64, blockSize int, threshold float64) (float64, error) {
	if a.SampleRate <= 0 {
		return 0, ErrInvalidSampleRate
	}

	if blockSize <= 0 {
		return 0, ErrInvalidBlockSize
	}

	if len(env) == 0 {
		return 0, ErrEmptyIR
	}

	last := -1
	for i, v := range env {
		if v >= threshold {
			last = i
		}
	}

	if last == len(env)-1 {
		return 0, ErrNoDecay
	}

	return float64((last+1)*blockSize) / a.SampleRate, nil
}

// BandEnergy returns the energy of ir between lowHz and highHz. The IR is
// zero-padded to a power of two and transformed with a forward FFT; by
// Parseval's theorem the energies of all bands add up to the IR energy.
func (a *Analyzer) BandEnergy(ir []float64, lowHz, highHz float64) (float64, error) {
	if len(ir) == 0 {
		return 0, ErrEmptyIR
	}

	if a.SampleRate <= 0 {
		return 0, ErrInvalidSampleRate
	}

	nyquist := a.SampleRate / 2
	if math.IsNaN(lowHz) || math.IsNaN(highHz) || lowHz < 0 || highHz <= lowHz || lowHz > nyquist {
		return 0, ErrInvalidBand
	}

	size := 1
	for size < len(ir) {
		size <<= 1
	}

	plan, err := algofft.NewPlan64(size)
	if err != nil {
		return 0, err
	}

	spectrum := make([]complex128, size)
	for i, v := range ir {
		spectrum[i] = complex(v, 0)
	}

	err = plan.Forward(spectrum, spectrum)
	if err != nil {
		return 0, err
	}

	half := size/2 + 1
	re := make([]float64, half)
	im := make([]float64, half)
	for k := range half {
		re[k] = real(spectrum[k])
		im[k] = imag(spectrum[k])
	}

	power := make([]float64, half)
	vecmath.Power(power, re, im)

	binHz := a.SampleRate / float64(size)
	energy := 0.0
	for k, p := range power {
		f := float64(k) * binHz
		if f < lowHz || f > highHz {
			continue
		}

		// Interior bins stand for their negative-frequency mirror too.
		if k == 0 || k == size/2 {
			energy += p
		} else {
			energy += 2 * p
		}
	}

	return energy / float64(size), nil
}
