package reverb

import "github.com/cwbudde/nhhall/dsp/delay"

// Delay times in seconds. Left and right use different lengths so the two
// channels decorrelate.
var (
	earlyAllpassTimes = [2][2]float64{
		{0.0057, 0.0089},
		{0.0063, 0.0097},
	}

	// Per channel: delay, allpass, delay, allpass.
	earlyCascadeTimes = [2][4]float64{
		{0.0113, 0.0037, 0.0079, 0.0043},
		{0.0131, 0.0041, 0.0067, 0.0053},
	}

	lateVariableTimes = [lateChains]float64{0.0071, 0.0083, 0.0067, 0.0091}
	lateAllpassTimes  = [lateChains]float64{0.0031, 0.0047, 0.0037, 0.0053}
	lateDelayTimes    = [lateChains]float64{0.0721, 0.1773, 0.0959, 0.1535}

	// Output taps into the late delays, seconds behind the latest write.
	directTapTimes = [2]float64{0.00031, 0.00053}
)

const (
	lateChains = 4

	// averageLateDelay is the mean of lateDelayTimes.
	averageLateDelay = 0.1247

	// maxModulationExcursion is the variable allpass swing at depth 1.
	maxModulationExcursion = 0.001

	crossTapTime = 0.00043

	earlyRotation    = 0.2
	cascadeRotation  = 0.4
	feedbackRotation = 0.6
)

// MemoryRequirement returns the number of samples a Hall allocates at
// sampleRate. An arena of this size holds every ring.
func MemoryRequirement(sampleRate float64) int {
	if sampleRate <= 0 {
		return 0
	}

	total := 0
	for ch := range 2 {
		for _, s := range earlyAllpassTimes[ch] {
			total += delay.Capacity(sampleRate, s)
		}
		for _, s := range earlyCascadeTimes[ch] {
			total += delay.Capacity(sampleRate, s)
		}
	}

	for i := range lateChains {
		total += delay.VariableCapacity(sampleRate, lateVariableTimes[i]+maxModulationExcursion)
		total += delay.Capacity(sampleRate, lateAllpassTimes[i])
		total += delay.Capacity(sampleRate, lateDelayTimes[i])
	}

	return total
}
