package reverb

import "sync/atomic"

// Controller drives a Hall from a host. Set may be called from any
// goroutine; ProcessBlock runs on the audio goroutine and never blocks or
// allocates.
//
// Input is processed in control blocks of the Hall's block size. When the
// parameters changed since the previous control block, the loop gain ramps
// linearly from the old to the new target across the block, and the shelf
// and stereo parameters are interpolated per sample.
type Controller struct {
	hall    *Hall
	pending atomic.Pointer[Params]

	current Params
	k       float64
	gains   []float64
}

// NewController applies params to h and returns a controller for it.
func NewController(h *Hall, params Params) *Controller {
	h.Apply(params)

	return &Controller{
		hall:    h,
		current: h.Params(),
		k:       h.FeedbackGain(),
		gains:   make([]float64, h.BlockSize()),
	}
}

// Set schedules params for the next control block. Later calls replace
// earlier ones that have not been picked up yet.
func (c *Controller) Set(params Params) {
	p := params.Clamped(c.hall.SampleRate())
	c.pending.Store(&p)
}

// Params returns the parameters in effect after the last control block.
// It must be called from the audio goroutine.
func (c *Controller) Params() Params { return c.current }

// Hall returns the controlled Hall.
func (c *Controller) Hall() *Hall { return c.hall }

// ProcessBlock renders min(len(inL), len(inR), len(outL), len(outR))
// samples.
func (c *Controller) ProcessBlock(inL, inR, outL, outR []float64) {
	n := min(len(inL), len(inR), len(outL), len(outR))
	size := len(c.gains)

	for start := 0; start < n; start += size {
		end := min(start+size, n)
		c.processControlBlock(inL[start:end], inR[start:end], outL[start:end], outR[start:end])
	}
}

func (c *Controller) processControlBlock(inL, inR, outL, outR []float64) {
	n := len(outL)

	p := c.pending.Swap(nil)
	if p == nil || *p == c.current {
		c.hall.ProcessStereoBlock(inL, inR, outL, outR)
		return
	}

	from, to := c.current, *p
	target := FeedbackGain(to.RT60)
	gains := c.gains[:n]
	rampInto(gains, c.k, target)

	shelves := from.LowFreq != to.LowFreq || from.LowRatio != to.LowRatio ||
		from.HiFreq != to.HiFreq || from.HiRatio != to.HiRatio
	stereo := from.Stereo != to.Stereo

	h := c.hall
	for i := range n {
		h.SetFeedbackGain(gains[i])

		if shelves || stereo {
			t := float64(i+1) / float64(n)
			if shelves {
				h.SetLowShelfParameters(lerp(from.LowFreq, to.LowFreq, t), lerp(from.LowRatio, to.LowRatio, t))
				h.SetHiShelfParameters(lerp(from.HiFreq, to.HiFreq, t), lerp(from.HiRatio, to.HiRatio, t))
			}
			if stereo {
				h.SetStereo(lerp(from.Stereo, to.Stereo, t))
			}
		}

		outL[i], outR[i] = h.Process(inL[i], inR[i])
	}

	h.Apply(to)
	c.current = to
	c.k = h.FeedbackGain()
}

// rampInto fills dst with a linear ramp that ends exactly on to.
func rampInto(dst []float64, from, to float64) {
	n := float64(len(dst))
	for i := range dst {
		dst[i] = from + (to-from)*float64(i+1)/n
	}
	if len(dst) > 0 {
		dst[len(dst)-1] = to
	}
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
