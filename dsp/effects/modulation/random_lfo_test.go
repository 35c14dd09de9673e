package modulation

import (
	"math"
	"testing"
)

func TestNewRandomLFO_Validation(t *testing.T) {
	for _, sr := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		if _, err := NewRandomLFO(sr, 1, 1); err == nil {
			t.Fatalf("expected error for sample rate %v", sr)
		}
	}

	l, err := NewRandomLFO(48000, math.NaN(), 1)
	if err != nil {
		t.Fatalf("NewRandomLFO() error = %v", err)
	}
	if l.Frequency() != defaultLFOFrequency {
		t.Fatalf("frequency = %v, want %v", l.Frequency(), defaultLFOFrequency)
	}

	l.SetFrequency(1e6)
	if want := 0.25 * 48000; l.Frequency() != want {
		t.Fatalf("frequency = %v, want %v", l.Frequency(), want)
	}
}

func TestRandomLFO_UnitCircle(t *testing.T) {
	l, _ := NewRandomLFO(48000, 5, 12345)
	for i := range 100000 {
		s, c := l.Process()
		if r := s*s + c*c; math.Abs(r-1) > 1e-12 {
			t.Fatalf("sample %d: sin^2+cos^2 = %v", i, r)
		}
	}
}

func TestRandomLFO_BoundedSlope(t *testing.T) {
	const (
		sr   = 48000.0
		freq = 2.0
	)
	l, _ := NewRandomLFO(sr, freq, 7)

	// The phase moves at most one cycle per period, so each channel moves at
	// most 2*pi*freq/sr per sample.
	maxStep := 2 * math.Pi * freq / sr
	ps, pc := l.Process()
	for i := range 200000 {
		s, c := l.Process()
		if math.Abs(s-ps) > maxStep+1e-12 || math.Abs(c-pc) > maxStep+1e-12 {
			t.Fatalf("sample %d: step (%v, %v) exceeds %v", i, s-ps, c-pc, maxStep)
		}
		ps, pc = s, c
	}
}

func TestRandomLFO_SeedDeterminism(t *testing.T) {
	a, _ := NewRandomLFO(44100, 0.5, 99)
	b, _ := NewRandomLFO(44100, 0.5, 99)
	c, _ := NewRandomLFO(44100, 0.5, 100)

	differs := false
	for i := range 50000 {
		as, ac := a.Process()
		bs, bc := b.Process()
		cs, _ := c.Process()
		if as != bs || ac != bc {
			t.Fatalf("sample %d: same seed diverged", i)
		}
		if as != cs {
			differs = true
		}
	}
	if !differs {
		t.Fatal("different seeds produced identical output")
	}
}

func TestRandomLFO_Reset(t *testing.T) {
	l, _ := NewRandomLFO(48000, 3, 42)
	first := make([]float64, 1000)
	second := make([]float64, 1000)
	cos := make([]float64, 1000)

	l.ProcessBlock(first, cos)
	l.Reset()
	l.ProcessBlock(second, cos)

	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("sample %d after Reset: %v, want %v", i, second[i], first[i])
		}
	}
}

func TestRandomLFO_Wanders(t *testing.T) {
	l, _ := NewRandomLFO(48000, 10, 2024)

	lo, hi := 1.0, -1.0
	for range 48000 * 4 {
		s, _ := l.Process()
		lo = min(lo, s)
		hi = max(hi, s)
	}
	if hi-lo < 0.5 {
		t.Fatalf("sin range [%v, %v] too narrow for a 10 Hz walk", lo, hi)
	}
}

func TestRandomLFO_ZeroAlloc(t *testing.T) {
	l, _ := NewRandomLFO(48000, 1, 1)
	allocs := testing.AllocsPerRun(1000, func() {
		l.Process()
	})
	if allocs != 0 {
		t.Fatalf("Process allocated %v times", allocs)
	}
}
