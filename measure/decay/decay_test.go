package decay

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/cwbudde/nhhall/internal/testutil"
)

// makeExponentialDecay generates a synthetic IR with known RT60.
// h(t) = exp(-6.908 * t / rt60) where 6.908 = ln(10^3) ensures -60 dB at rt60.
func makeExponentialDecay(sampleRate, rt60, durationSec float64) []float64 {
	n := int(sampleRate * durationSec)
	ir := make([]float64, n)
	decayRate := 6.9078 / rt60
	for i := range ir {
		ir[i] = math.Exp(-decayRate * float64(i) / sampleRate)
	}
	return ir
}

func TestAnalyze_ExponentialDecay(t *testing.T) {
	const sampleRate = 48000.0
	rt60 := 1.0
	ir := makeExponentialDecay(sampleRate, rt60, 3.0)

	m, err := NewAnalyzer(sampleRate).Analyze(ir)
	if err != nil {
		t.Fatal(err)
	}

	for name, got := range map[string]float64{"RT60": m.RT60, "T20": m.T20, "T30": m.T30, "EDT": m.EDT} {
		if math.Abs(got-rt60) > 0.05*rt60 {
			t.Errorf("%s = %.3f, want %.3f (±5%%)", name, got, rt60)
		}
	}

	if m.PeakIndex != 0 {
		t.Errorf("PeakIndex = %d, want 0", m.PeakIndex)
	}

	if m.CenterTime <= 0 || m.CenterTime > rt60 {
		t.Errorf("CenterTime = %.3f, expected in (0, %.3f]", m.CenterTime, rt60)
	}

	if m.C80 <= 0 {
		t.Errorf("C80 = %.2f dB, a 1 s decay should favour the first 80 ms", m.C80)
	}
}

func TestAnalyze_StartsAtPeak(t *testing.T) {
	ir := append(make([]float64, 480), makeExponentialDecay(48000, 0.5, 2)...)

	m, err := NewAnalyzer(48000).Analyze(ir)
	if err != nil {
		t.Fatal(err)
	}
	if m.PeakIndex != 480 {
		t.Fatalf("PeakIndex = %d, want 480", m.PeakIndex)
	}
	if math.Abs(m.RT60-0.5) > 0.025 {
		t.Fatalf("RT60 = %.3f, want 0.5", m.RT60)
	}
}

func TestAnalyze_Errors(t *testing.T) {
	tests := []struct {
		name       string
		sampleRate float64
		ir         []float64
		want       error
	}{
		{"empty", 48000, nil, ErrEmptyIR},
		{"sample rate", 0, []float64{1, 0.5}, ErrInvalidSampleRate},
		{"single impulse", 48000, testutil.Impulse(64, 0), ErrNoDecay},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewAnalyzer(tt.sampleRate).Analyze(tt.ir)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Analyze() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestSchroeder_MonotonicFromZero(t *testing.T) {
	s, err := Schroeder(testutil.DeterministicNoise(3, 1, 2048))
	if err != nil {
		t.Fatal(err)
	}
	if s[0] != 0 {
		t.Fatalf("S(0) = %v dB, want 0", s[0])
	}
	for i := 1; i < len(s); i++ {
		if s[i] > s[i-1] {
			t.Fatalf("S rises at %d: %v > %v", i, s[i], s[i-1])
		}
	}

	if _, err := Schroeder(nil); !errors.Is(err, ErrEmptyIR) {
		t.Fatalf("Schroeder(nil) error = %v", err)
	}
}

func TestEnvelope(t *testing.T) {
	a := NewAnalyzer(48000)

	mono := make([]float64, 130)
	for i := range mono {
		mono[i] = 0.5
	}
	env, err := a.Envelope(mono, nil, 64)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]float64{0.25, 0.25}, env); diff != "" {
		t.Fatalf("mono envelope mismatch (-want +got):\n%s", diff)
	}

	left := make([]float64, 128)
	right := make([]float64, 128)
	for i := range left {
		left[i] = 1
	}
	env, err = a.Envelope(left, right, 128)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]float64{0.5}, env); diff != "" {
		t.Fatalf("stereo envelope mismatch (-want +got):\n%s", diff)
	}

	if _, err := a.Envelope(left, right[:64], 64); !errors.Is(err, ErrLengthMismatch) {
		t.Fatalf("length mismatch error = %v", err)
	}
	if _, err := a.Envelope(left, right, 0); !errors.Is(err, ErrInvalidBlockSize) {
		t.Fatalf("block size error = %v", err)
	}
	if _, err := a.Envelope(left[:10], nil, 64); !errors.Is(err, ErrEmptyIR) {
		t.Fatalf("short input error = %v", err)
	}
}

func TestSmooth(t *testing.T) {
	got := Smooth([]float64{1, 2, 3, 4}, 2)
	if diff := cmp.Diff([]float64{1, 1.5, 2.5, 3.5}, got); diff != "" {
		t.Fatalf("Smooth mismatch (-want +got):\n%s", diff)
	}

	in := []float64{4, 2}
	got = Smooth(in, 1)
	got[0] = 0
	if in[0] != 4 {
		t.Fatal("Smooth must not alias its input")
	}
}

func TestThresholdTime(t *testing.T) {
	a := NewAnalyzer(48000)

	env := []float64{1, 0.5, 1e-7, 2e-6, 1e-8, 0}
	got, err := a.ThresholdTime(env, 64, 1e-6)
	if err != nil {
		t.Fatal(err)
	}
	if want := 4 * 64 / 48000.0; got != want {
		t.Fatalf("ThresholdTime = %v, want %v", got, want)
	}

	got, err = a.ThresholdTime([]float64{1e-9, 0}, 64, 1e-6)
	if err != nil || got != 0 {
		t.Fatalf("quiet envelope: got %v, %v; want 0, nil", got, err)
	}

	if _, err := a.ThresholdTime([]float64{0, 1}, 64, 1e-6); !errors.Is(err, ErrNoDecay) {
		t.Fatalf("undecayed envelope error = %v", err)
	}
	if _, err := NewAnalyzer(0).ThresholdTime(env, 64, 1e-6); !errors.Is(err, ErrInvalidSampleRate) {
		t.Fatalf("sample rate error = %v", err)
	}
}

func TestThresholdTime_ExponentialDecay(t *testing.T) {
	const (
		sampleRate = 48000.0
		blockSize  = 64
		rt60       = 0.5
	)
	a := NewAnalyzer(sampleRate)
	ir := makeExponentialDecay(sampleRate, rt60, 2)

	env, err := a.Envelope(ir, nil, blockSize)
	if err != nil {
		t.Fatal(err)
	}

	// Unit amplitude decays to 1e-6 power exactly at rt60.
	got, err := a.ThresholdTime(env, blockSize, 1e-6)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(got-rt60) > 2*blockSize/sampleRate {
		t.Fatalf("ThresholdTime = %v, want %v", got, rt60)
	}
}

func TestBandEnergy(t *testing.T) {
	const sampleRate = 48000.0
	a := NewAnalyzer(sampleRate)

	// 750 Hz is bin 64 of a 4096-point FFT at 48 kHz.
	sine := testutil.DeterministicSine(750, sampleRate, 1, 4096)
	total := testutil.Energy(sine)

	in, err := a.BandEnergy(sine, 700, 800)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(in-total) > 1e-9*total {
		t.Fatalf("in-band energy = %v, want %v", in, total)
	}

	out, err := a.BandEnergy(sine, 2000, 4000)
	if err != nil {
		t.Fatal(err)
	}
	if out > 1e-9*total {
		t.Fatalf("out-of-band energy = %v, want ~0", out)
	}
}

func TestBandEnergy_Parseval(t *testing.T) {
	a := NewAnalyzer(44100)
	noise := testutil.DeterministicNoise(11, 1, 1000)

	all, err := a.BandEnergy(noise, 0, 22050)
	if err != nil {
		t.Fatal(err)
	}
	if want := testutil.Energy(noise); math.Abs(all-want) > 1e-9*want {
		t.Fatalf("full-band energy = %v, want %v", all, want)
	}
}

func TestBandEnergy_Errors(t *testing.T) {
	a := NewAnalyzer(48000)
	ir := []float64{1, 0.5}

	for _, band := range [][2]float64{{-1, 100}, {200, 100}, {100, 100}, {30000, 40000}, {math.NaN(), 1}} {
		if _, err := a.BandEnergy(ir, band[0], band[1]); !errors.Is(err, ErrInvalidBand) {
			t.Fatalf("band %v: error = %v, want ErrInvalidBand", band, err)
		}
	}
	if _, err := a.BandEnergy(nil, 0, 100); !errors.Is(err, ErrEmptyIR) {
		t.Fatalf("empty IR error = %v", err)
	}
}
