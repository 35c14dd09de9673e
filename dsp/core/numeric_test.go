package core

import (
	"math"
	"testing"
)

func TestClamp(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		min      float64
		max      float64
		expected float64
	}{
		{name: "inside", value: 0.5, min: 0, max: 1, expected: 0.5},
		{name: "below", value: -1, min: 0, max: 1, expected: 0},
		{name: "above", value: 2, min: 0, max: 1, expected: 1},
		{name: "swapped", value: 2, min: 1, max: 0, expected: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Clamp(tt.value, tt.min, tt.max)
			if got != tt.expected {
				t.Fatalf("Clamp() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestClampFinite(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		want  float64
	}{
		{name: "nan uses fallback", value: math.NaN(), want: 1},
		{name: "+inf saturates", value: math.Inf(1), want: 100},
		{name: "-inf saturates", value: math.Inf(-1), want: 0.01},
		{name: "inside", value: 3, want: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClampFinite(tt.value, 0.01, 100, 1); got != tt.want {
				t.Fatalf("ClampFinite() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsFinite(t *testing.T) {
	if !IsFinite(1) {
		t.Fatal("1 should be finite")
	}
	if IsFinite(math.NaN()) || IsFinite(math.Inf(1)) || IsFinite(math.Inf(-1)) {
		t.Fatal("NaN and Inf should not be finite")
	}
}

func TestNearlyEqual(t *testing.T) {
	if !NearlyEqual(1.0, 1.0+1e-13, 1e-12) {
		t.Fatal("expected values to be nearly equal")
	}
	if NearlyEqual(1.0, 1.1, 1e-3) {
		t.Fatal("expected values to differ")
	}
}

func TestDBConversions(t *testing.T) {
	linear := DBToLinear(-6)
	db := LinearToDB(linear)
	if !NearlyEqual(db, -6, 1e-10) {
		t.Fatalf("LinearToDB(DBToLinear(-6)) = %v, want -6", db)
	}
	if !math.IsInf(LinearToDB(0), -1) {
		t.Fatal("expected -Inf for zero")
	}
	if !math.IsNaN(LinearToDB(-1)) {
		t.Fatal("expected NaN for negative amplitude")
	}
	if got := LinearPowerToDB(1e-6); !NearlyEqual(got, -60, 1e-10) {
		t.Fatalf("LinearPowerToDB(1e-6) = %v, want -60", got)
	}
}

func TestFlushDenormals(t *testing.T) {
	if got := FlushDenormals(1e-310); got != 0 {
		t.Fatalf("FlushDenormals(1e-310) = %v, want 0", got)
	}
	if got := FlushDenormals(-1e-31); got != 0 {
		t.Fatalf("FlushDenormals(-1e-31) = %v, want 0", got)
	}
	if got := FlushDenormals(1e-20); got != 1e-20 {
		t.Fatalf("FlushDenormals(1e-20) = %v, want unchanged", got)
	}
}
