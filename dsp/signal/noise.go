// Package signal provides deterministic excitation sources for measuring
// processors.
package signal

import (
	"fmt"
	"math"
	"math/rand"
)

// Noise is a streaming white-noise source with values in
// [-amplitude, amplitude]. Blocks filled after Reset repeat the sequence.
type Noise struct {
	rng       *rand.Rand
	seed      int64
	amplitude float64
}

// NewNoise creates a noise source seeded with seed.
func NewNoise(seed int64, amplitude float64) (*Noise, error) {
	if amplitude < 0 || math.IsNaN(amplitude) || math.IsInf(amplitude, 0) {
		return nil, fmt.Errorf("noise amplitude must be >= 0 and finite: %f", amplitude)
	}

	return &Noise{
		rng:       rand.New(rand.NewSource(seed)),
		seed:      seed,
		amplitude: amplitude,
	}, nil
}

// Fill overwrites dst with the next len(dst) samples.
func (n *Noise) Fill(dst []float64) {
	for i := range dst {
		dst[i] = (n.rng.Float64()*2 - 1) * n.amplitude
	}
}

// Reset restarts the sequence from the seed.
func (n *Noise) Reset() {
	n.rng.Seed(n.seed)
}

// Seed returns the seed used by Reset.
func (n *Noise) Seed() int64 { return n.seed }

// Amplitude returns the peak amplitude.
func (n *Noise) Amplitude() float64 { return n.amplitude }
