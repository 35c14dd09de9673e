package interp

import "fmt"

// Mode selects a 4-point interpolation kernel.
type Mode uint8

const (
	// Hermite is 4-point cubic Hermite interpolation.
	Hermite Mode = iota
	// Linear is 2-point linear interpolation over the inner pair.
	Linear
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case Hermite:
		return "hermite"
	case Linear:
		return "linear"
	default:
		return fmt.Sprintf("Mode(%d)", uint8(m))
	}
}

// ParseMode returns the Mode named s ("hermite", "cubic" or "linear").
func ParseMode(s string) (Mode, error) {
	switch s {
	case "hermite", "cubic":
		return Hermite, nil
	case "linear":
		return Linear, nil
	default:
		return 0, fmt.Errorf("unknown interpolation mode %q", s)
	}
}

// Interpolate evaluates the kernel selected by m at fraction t in [0,1).
func (m Mode) Interpolate(t, xm1, x0, x1, x2 float64) float64 {
	if m == Linear {
		return Linear4(t, xm1, x0, x1, x2)
	}
	return Hermite4(t, xm1, x0, x1, x2)
}

// Linear4 interpolates linearly from x0 to x1. xm1 and x2 are accepted so
// that both kernels share one call shape.
func Linear4(t, _, x0, x1, _ float64) float64 {
	return x0 + t*(x1-x0)
}

// Hermite4 computes cubic 4-point interpolation.
// It interpolates from x0 to x1 using neighbor points xm1 and x2.
func Hermite4(t, xm1, x0, x1, x2 float64) float64 {
	c0 := x0
	c1 := 0.5 * (x1 - xm1)
	c2 := xm1 - 2.5*x0 + 2*x1 - 0.5*x2
	c3 := 0.5*(x2-xm1) + 1.5*(x0-x1)
	return ((c3*t+c2)*t+c1)*t + c0
}
