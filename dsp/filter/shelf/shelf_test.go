package shelf

import (
	"math"
	"testing"

	"github.com/cwbudde/nhhall/dsp/filter/biquad"
	"github.com/cwbudde/nhhall/dsp/filter/design"
	"github.com/cwbudde/nhhall/internal/testutil"
)

func TestNewShelvesAreFlat(t *testing.T) {
	ls := NewLowShelf(48000)
	hs := NewHighShelf(48000)
	for i, x := range testutil.DeterministicNoise(1, 0.5, 32) {
		if y := ls.ProcessSample(x); y != x {
			t.Fatalf("low shelf sample %d: got %v, want %v", i, y, x)
		}
		if y := hs.ProcessSample(x); y != x {
			t.Fatalf("high shelf sample %d: got %v, want %v", i, y, x)
		}
	}
}

func TestSetFrequencyAndGain_RedesignsOnlyOnChange(t *testing.T) {
	ls := NewLowShelf(48000)
	if !ls.SetFrequencyAndGain(200, -6) {
		t.Fatal("first change should redesign")
	}
	if ls.SetFrequencyAndGain(200, -6) {
		t.Fatal("identical parameters should not redesign")
	}
	if !ls.SetFrequencyAndGain(250, -6) {
		t.Fatal("frequency change should redesign")
	}
	if !ls.SetFrequencyAndGain(250, -3) {
		t.Fatal("gain change should redesign")
	}

	want := design.LowShelf(250, -3, 1/math.Sqrt2, 48000)
	if ls.Coefficients() != want {
		t.Fatalf("coefficients = %#v, want %#v", ls.Coefficients(), want)
	}
}

func TestSetFrequencyAndGain_Clamps(t *testing.T) {
	hs := NewHighShelf(48000)
	hs.SetFrequencyAndGain(30000, -6)
	if got, want := hs.Frequency(), 0.49*48000; got != want {
		t.Fatalf("frequency = %v, want %v", got, want)
	}
	if hs.Coefficients() == (biquad.Coefficients{}) {
		t.Fatal("clamped design should be valid")
	}

	hs.SetFrequencyAndGain(math.NaN(), math.Inf(1))
	if hs.Frequency() != defaultFrequency || hs.GainDB() != 0 {
		t.Fatalf("non-finite input: freq=%v gain=%v", hs.Frequency(), hs.GainDB())
	}
	if hs.Coefficients() != biquad.Identity() {
		t.Fatalf("0 dB shelf should be identity, got %#v", hs.Coefficients())
	}
}

func TestLowShelf_AttenuatesLowBand(t *testing.T) {
	const sr = 48000.0
	ls := NewLowShelf(sr)
	ls.SetFrequencyAndGain(200, 20*math.Log10(0.5))

	low := testutil.DeterministicSine(50, sr, 1, 48000)
	high := testutil.DeterministicSine(8000, sr, 1, 48000)
	for i := range low {
		low[i] = ls.ProcessSample(low[i])
	}
	ls.Reset()
	for i := range high {
		high[i] = ls.ProcessSample(high[i])
	}

	// Skip the transient; the tail holds a whole number of cycles.
	lowRMS := math.Sqrt(testutil.Energy(low[24000:]) / 24000)
	highRMS := math.Sqrt(testutil.Energy(high[24000:]) / 24000)
	if math.Abs(lowRMS-0.5/math.Sqrt2) > 0.02 {
		t.Fatalf("50 Hz RMS = %v, want ~%v", lowRMS, 0.5/math.Sqrt2)
	}
	if math.Abs(highRMS-1/math.Sqrt2) > 0.01 {
		t.Fatalf("8 kHz RMS = %v, want ~%v", highRMS, 1/math.Sqrt2)
	}
}

func TestSetFrequencyAndGain_KeepsState(t *testing.T) {
	hs := NewHighShelf(44100)
	hs.SetFrequencyAndGain(4000, -6)
	hs.ProcessSample(1)
	before := hs.section.State()

	hs.SetFrequencyAndGain(5000, -6)
	if hs.section.State() != before {
		t.Fatal("retuning should keep filter memory")
	}
	hs.Reset()
	if hs.section.State() != [2]float64{} {
		t.Fatal("Reset should clear filter memory")
	}
}
