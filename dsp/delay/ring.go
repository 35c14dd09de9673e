package delay

import "math"

// interpWindow is the number of extra samples a variable line reserves for
// its 4-point interpolation window.
const interpWindow = 4

// NextPowerOfTwo returns the smallest power of two >= n. It returns 1 for
// n <= 1.
func NextPowerOfTwo(n int) int {
	result := 1
	for result < n {
		result <<= 1
	}
	return result
}

// Capacity returns the ring length needed to hold a delay of seconds at
// sampleRate: the smallest power of two >= ceil(seconds*sampleRate).
func Capacity(sampleRate, seconds float64) int {
	return NextPowerOfTwo(int(math.Ceil(seconds * sampleRate)))
}

// VariableCapacity returns the ring length of a variable allpass whose read
// position may reach maxSeconds.
func VariableCapacity(sampleRate, maxSeconds float64) int {
	return NextPowerOfTwo(int(math.Ceil(maxSeconds*sampleRate)) + interpWindow)
}

func delaySamples(sampleRate, seconds float64) int {
	return max(int(math.Round(seconds*sampleRate)), 1)
}
