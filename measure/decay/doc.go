// Package decay measures how reverberant signals die away.
//
// It combines ISO 3382 style impulse response metrics derived from the
// Schroeder backward integral (EDT, T20, T30, C80, center time) with the
// block-power envelope analysis used to verify real-time reverbs: the
// time after which the output stays below an absolute power threshold,
// and the energy a response carries inside a frequency band.
//
// # Usage
//
//	analyzer := decay.NewAnalyzer(48000)
//	env, _ := analyzer.Envelope(left, right, 64)
//	t, _ := analyzer.ThresholdTime(decay.Smooth(env, 75), 64, 1e-6)
//	metrics, _ := analyzer.Analyze(left)
//	fmt.Printf("below -60 dB after %.2f s, T30 = %.2f s\n", t, metrics.T30)
package decay
