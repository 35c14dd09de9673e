package reverb

import "github.com/cwbudde/nhhall/dsp/core"

// Process renders one stereo sample.
func (h *Hall) Process(left, right float64) (float64, float64) {
	if h.muted {
		return 0, 0
	}

	left = h.dc[0].ProcessSample(left)
	right = h.dc[1].ProcessSample(right)

	// Early reflections: two allpasses per channel, rotate, then a
	// delay/allpass cascade rotated again and mixed in at half weight.
	l := h.earlyAllpass[0][1].Process(h.earlyAllpass[0][0].Process(left))
	r := h.earlyAllpass[1][1].Process(h.earlyAllpass[1][0].Process(right))
	l, r = h.earlyRot.Process(l, r)
	earlyL, earlyR := l, r

	l, r = h.cascadeRot.Process(h.cascade(0, l), h.cascade(1, r))
	earlyL += 0.5 * l
	earlyR += 0.5 * r

	// Late tank: two chains in series per channel, closed by a rotation.
	// Each delay is scaled by k once; parallel chains would double the
	// loop gain.
	sin, cos := h.lfo.Process()
	depth := h.modDepth * maxModulationExcursion

	l = h.chain(0, earlyL+h.feedback[0], sin*depth)
	l = h.chain(1, l, cos*depth)
	r = h.chain(2, earlyR+h.feedback[1], -sin*depth)
	r = h.chain(3, r, -cos*depth)

	l, r = h.feedbackRot.Process(l, r)
	h.feedback[0] = core.FlushDenormals(l)
	h.feedback[1] = core.FlushDenormals(r)

	cross := 0.5 * h.stereo
	outL := 0.5*earlyL +
		h.lateDelay[0].Tap(directTapTimes[0], 0.5) +
		h.lateDelay[1].Tap(directTapTimes[1], 0.5) +
		h.lateDelay[2].Tap(crossTapTime, cross)
	outR := 0.5*earlyR +
		h.lateDelay[2].Tap(directTapTimes[0], 0.5) +
		h.lateDelay[3].Tap(directTapTimes[1], 0.5) -
		h.lateDelay[0].Tap(crossTapTime, cross)

	return outL, outR
}

func (h *Hall) cascade(ch int, x float64) float64 {
	c := &h.earlyCascade[ch]
	return c[3].Process(c[2].Process(c[1].Process(c[0].Process(x))))
}

func (h *Hall) chain(i int, x, offset float64) float64 {
	x = h.lateVariable[i].ProcessModulated(x, offset)
	x = h.lateAllpass[i].Process(x)
	x = h.lateDelay[i].Process(h.k * x)
	x = h.lowShelf[i].ProcessSample(x)
	x = h.hiShelf[i].ProcessSample(x)

	h.lowShelf[i].FlushDenormals()
	h.hiShelf[i].FlushDenormals()

	return x
}

// ProcessBlock renders a mono input into a stereo pair. It processes
// min(len(in), len(outL), len(outR)) samples; in may alias either output.
func (h *Hall) ProcessBlock(in, outL, outR []float64) {
	n := min(len(in), len(outL), len(outR))
	if h.muted {
		clear(outL[:n])
		clear(outR[:n])
		return
	}

	for i := range n {
		x := in[i]
		outL[i], outR[i] = h.Process(x, x)
	}
}

// ProcessStereoBlock renders a stereo input. It processes the shortest of
// the four lengths; inputs may alias outputs.
func (h *Hall) ProcessStereoBlock(inL, inR, outL, outR []float64) {
	n := min(len(inL), len(inR), len(outL), len(outR))
	if h.muted {
		clear(outL[:n])
		clear(outR[:n])
		return
	}

	for i := range n {
		outL[i], outR[i] = h.Process(inL[i], inR[i])
	}
}

// ImpulseResponse resets the Hall, renders n samples of its response to a
// unit impulse on both inputs, and resets it again.
func (h *Hall) ImpulseResponse(n int) (left, right []float64) {
	if n <= 0 {
		return nil, nil
	}

	left = make([]float64, n)
	right = make([]float64, n)
	if h.muted {
		return left, right
	}

	h.Reset()
	left[0], right[0] = h.Process(1, 1)
	for i := 1; i < n; i++ {
		left[i], right[i] = h.Process(0, 0)
	}
	h.Reset()

	return left, right
}
