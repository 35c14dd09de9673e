package biquad

import (
	"math"
	"testing"
)

const eps = 1e-12

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestProcessSample_Identity(t *testing.T) {
	s := NewSection(Identity())
	for i, x := range []float64{1, 0, -1, 0.5, 0.25} {
		if y := s.ProcessSample(x); y != x {
			t.Fatalf("sample %d: got %v, want %v", i, y, x)
		}
	}
}

func TestProcessSample_DFIIT(t *testing.T) {
	// Hand-traced with x = [1, 0, 0, 0]:
	// n=0: y=0.25, d0=0.55, d1=0.24
	// n=1: y=0.55, d0=0.35, d1=-0.022
	// n=2: y=0.35, d0=0.048, d1=-0.014
	// n=3: y=0.048
	c := Coefficients{B0: 0.25, B1: 0.5, B2: 0.25, A1: -0.2, A2: 0.04}
	s := NewSection(c)

	want := []float64{0.25, 0.55, 0.35, 0.048}
	for i, w := range want {
		var x float64
		if i == 0 {
			x = 1
		}
		if y := s.ProcessSample(x); !almostEqual(y, w, eps) {
			t.Fatalf("n=%d: got %v, want %v", i, y, w)
		}
	}
}

func TestProcessBlock_MatchesSample(t *testing.T) {
	c := Coefficients{B0: 0.2, B1: 0.3, B2: 0.1, A1: -0.5, A2: 0.2}
	a := NewSection(c)
	b := NewSection(c)

	buf := make([]float64, 64)
	for i := range buf {
		buf[i] = math.Sin(float64(i) * 0.3)
	}

	want := make([]float64, len(buf))
	for i, x := range buf {
		want[i] = a.ProcessSample(x)
	}

	b.ProcessBlock(buf)
	for i := range buf {
		if !almostEqual(buf[i], want[i], eps) {
			t.Fatalf("index %d: block %v, sample %v", i, buf[i], want[i])
		}
	}
	if a.State() != b.State() {
		t.Fatalf("state mismatch: %v vs %v", a.State(), b.State())
	}
}

func TestSetCoefficientsKeepsState(t *testing.T) {
	s := NewSection(Coefficients{B0: 0.5, B1: 0.5})
	s.ProcessSample(1)
	before := s.State()

	s.SetCoefficients(Identity())
	if s.State() != before {
		t.Fatalf("state changed on retune: %v -> %v", before, s.State())
	}
}

func TestResetAndState(t *testing.T) {
	s := NewSection(Coefficients{B0: 1, B1: 1, A1: -0.5})
	s.ProcessSample(1)
	saved := s.State()
	if saved == [2]float64{} {
		t.Fatal("state should be non-zero after input")
	}

	s.Reset()
	if s.State() != [2]float64{} {
		t.Fatalf("state after Reset = %v", s.State())
	}

	s.SetState(saved)
	if s.State() != saved {
		t.Fatalf("SetState = %v, want %v", s.State(), saved)
	}
}

func TestFlushDenormals(t *testing.T) {
	s := NewSection(Identity())
	s.SetState([2]float64{1e-310, 0.5})
	s.FlushDenormals()
	if s.State() != [2]float64{0, 0.5} {
		t.Fatalf("state = %v, want [0 0.5]", s.State())
	}
}
