package reverb

import (
	"fmt"
	"math"

	"gopkg.in/Sirupsen/logrus.v0"

	"github.com/cwbudde/nhhall/dsp/buffer"
	"github.com/cwbudde/nhhall/dsp/core"
	"github.com/cwbudde/nhhall/dsp/delay"
	"github.com/cwbudde/nhhall/dsp/effects/modulation"
	"github.com/cwbudde/nhhall/dsp/effects/spatial"
	"github.com/cwbudde/nhhall/dsp/filter/dcblock"
	"github.com/cwbudde/nhhall/dsp/filter/shelf"
	"github.com/cwbudde/nhhall/dsp/interp"
)

const (
	defaultRT60           = 1.0
	defaultLowFreq        = 200.0
	defaultLowRatio       = 0.5
	defaultHiFreq         = 4000.0
	defaultHiRatio        = 0.5
	defaultStereo         = 0.5
	defaultEarlyDiffusion = 0.5
	defaultLateDiffusion  = 0.5
	defaultModRate        = 0.2
	defaultModDepth       = 0.3
	defaultSeed           = 1

	minRT60 = 0.01
	maxRT60 = 100.0

	minShelfRatio     = 0.01
	maxShelfRatio     = 1.0
	minShelfFreq      = 10.0
	maxShelfFreqRatio = 0.45

	maxDiffusion = 0.9

	minModRate = 0.01
	maxModRate = 10.0

	maxFeedbackGain = 0.999
)

// Option mutates hall construction parameters.
type Option func(*hallConfig) error

type hallConfig struct {
	core.ProcessorConfig

	alloc buffer.Allocator
	mode  interp.Mode
	log   *logrus.Entry
	seed  uint32
}

func defaultHallConfig(sampleRate float64) hallConfig {
	return hallConfig{
		ProcessorConfig: core.ApplyProcessorOptions(core.WithSampleRate(sampleRate)),
		alloc:           buffer.Heap{},
		mode:            interp.Hermite,
		log:             logrus.NewEntry(logrus.StandardLogger()),
		seed:            defaultSeed,
	}
}

// WithBlockSize sets the control block size used by [Controller].
func WithBlockSize(n int) Option {
	return func(cfg *hallConfig) error {
		if n <= 0 {
			return fmt.Errorf("hall block size must be > 0: %d", n)
		}

		core.WithBlockSize(n)(&cfg.ProcessorConfig)

		return nil
	}
}

// WithAllocator sets the allocator that supplies every ring buffer.
// The default is the Go heap.
func WithAllocator(alloc buffer.Allocator) Option {
	return func(cfg *hallConfig) error {
		if alloc == nil {
			return fmt.Errorf("hall allocator must not be nil")
		}

		cfg.alloc = alloc

		return nil
	}
}

// WithInterpolation selects the fractional-delay interpolation of the
// modulated allpasses. The default is [interp.Hermite]; [interp.Linear]
// reproduces the legacy renders.
func WithInterpolation(mode interp.Mode) Option {
	return func(cfg *hallConfig) error {
		if mode != interp.Hermite && mode != interp.Linear {
			return fmt.Errorf("hall interpolation mode not supported: %s", mode)
		}

		cfg.mode = mode

		return nil
	}
}

// WithLogger sets the entry construction warnings are written to.
func WithLogger(log *logrus.Entry) Option {
	return func(cfg *hallConfig) error {
		if log == nil {
			return fmt.Errorf("hall logger must not be nil")
		}

		cfg.log = log

		return nil
	}
}

// WithSeed seeds the random-walk modulation.
func WithSeed(seed uint32) Option {
	return func(cfg *hallConfig) error {
		cfg.seed = seed
		return nil
	}
}

// Hall is a stereo feedback-delay-network hall reverb.
//
// Parameters are set with plain setters that clamp out-of-range values.
// Changing RT60 or the shelves between blocks is audible as a step; hosts
// that need smooth automation drive the Hall through a [Controller].
//
// This processor is stereo, real-time safe after construction, and not
// thread-safe.
type Hall struct {
	sampleRate float64
	blockSize  int
	alloc      buffer.Allocator
	muted      bool

	dc [2]*dcblock.DCBlocker

	earlyAllpass [2][2]*delay.Line
	earlyCascade [2][4]*delay.Line

	lateVariable [lateChains]*delay.Line
	lateAllpass  [lateChains]*delay.Line
	lateDelay    [lateChains]*delay.Line
	lowShelf     [lateChains]*shelf.LowShelf
	hiShelf      [lateChains]*shelf.HighShelf

	lfo *modulation.RandomLFO

	earlyRot    spatial.Rotation
	cascadeRot  spatial.Rotation
	feedbackRot spatial.Rotation

	feedback [2]float64

	k                 float64
	rt60              float64
	lowFreq, lowRatio float64
	hiFreq, hiRatio   float64
	stereo            float64
	earlyDiffusion    float64
	lateDiffusion     float64
	modRate, modDepth float64
}

// NewHall creates a Hall for sampleRate with default parameters.
//
// An invalid sample rate or option returns a nil Hall. If the allocator
// cannot supply the rings, NewHall returns a muted Hall and an error
// wrapping [buffer.ErrAllocationFailure]; the muted Hall is safe to process
// and outputs silence.
func NewHall(sampleRate float64, opts ...Option) (*Hall, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("hall sample rate must be > 0 and finite: %f", sampleRate)
	}

	cfg := defaultHallConfig(sampleRate)

	for _, opt := range opts {
		if opt == nil {
			continue
		}

		err := opt(&cfg)
		if err != nil {
			return nil, err
		}
	}

	lfo, err := modulation.NewRandomLFO(sampleRate, defaultModRate, cfg.seed)
	if err != nil {
		return nil, err
	}

	h := &Hall{
		sampleRate:     cfg.SampleRate,
		blockSize:      cfg.BlockSize,
		alloc:          cfg.alloc,
		lfo:            lfo,
		earlyRot:       spatial.NewRotation(earlyRotation),
		cascadeRot:     spatial.NewRotation(cascadeRotation),
		feedbackRot:    spatial.NewRotation(feedbackRotation),
		earlyDiffusion: defaultEarlyDiffusion,
		lateDiffusion:  defaultLateDiffusion,
		modRate:        defaultModRate,
		modDepth:       defaultModDepth,
	}

	for ch := range h.dc {
		h.dc[ch] = dcblock.New(sampleRate, dcblock.DefaultCutoff)
	}

	for i := range lateChains {
		h.lowShelf[i] = shelf.NewLowShelf(sampleRate)
		h.hiShelf[i] = shelf.NewHighShelf(sampleRate)
	}

	h.Apply(DefaultParams())

	err = h.allocate(cfg.mode)
	if err != nil {
		h.release()
		h.muted = true

		cfg.log.WithFields(logrus.Fields{
			"sample_rate":      sampleRate,
			"required_samples": MemoryRequirement(sampleRate),
			"error":            err,
		}).Warn("hall: ring allocation failed, output muted")

		return h, fmt.Errorf("hall: %w", err)
	}

	return h, nil
}

func (h *Hall) allocate(mode interp.Mode) error {
	var err error

	sr := h.sampleRate
	for ch := range 2 {
		for i, s := range earlyAllpassTimes[ch] {
			h.earlyAllpass[ch][i], err = delay.NewAllpass(sr, s, h.earlyDiffusion, h.alloc)
			if err != nil {
				return err
			}
		}

		for i, s := range earlyCascadeTimes[ch] {
			if i%2 == 0 {
				h.earlyCascade[ch][i], err = delay.NewDelay(sr, s, h.alloc)
			} else {
				h.earlyCascade[ch][i], err = delay.NewAllpass(sr, s, h.earlyDiffusion, h.alloc)
			}
			if err != nil {
				return err
			}
		}
	}

	for i := range lateChains {
		base := lateVariableTimes[i]
		h.lateVariable[i], err = delay.NewVariableAllpass(sr, base, base+maxModulationExcursion, h.lateDiffusion, mode, h.alloc)
		if err != nil {
			return err
		}

		h.lateAllpass[i], err = delay.NewAllpass(sr, lateAllpassTimes[i], h.lateDiffusion, h.alloc)
		if err != nil {
			return err
		}

		h.lateDelay[i], err = delay.NewDelay(sr, lateDelayTimes[i], h.alloc)
		if err != nil {
			return err
		}
	}

	return nil
}

// lines calls fn for every allocated line.
func (h *Hall) lines(fn func(*delay.Line)) {
	visit := func(l *delay.Line) {
		if l != nil {
			fn(l)
		}
	}

	for ch := range 2 {
		for _, l := range h.earlyAllpass[ch] {
			visit(l)
		}
		for _, l := range h.earlyCascade[ch] {
			visit(l)
		}
	}

	for i := range lateChains {
		visit(h.lateVariable[i])
		visit(h.lateAllpass[i])
		visit(h.lateDelay[i])
	}
}

func (h *Hall) release() {
	h.lines(func(l *delay.Line) {
		l.Release(h.alloc)
	})
}

// Close releases every ring to the allocator. The Hall is muted afterwards.
func (h *Hall) Close() {
	if h.muted {
		return
	}

	h.release()
	h.muted = true
}

// Reset clears all delay, filter, modulation and feedback state.
// Parameters are kept.
func (h *Hall) Reset() {
	h.lines(func(l *delay.Line) {
		l.Reset()
	})

	for ch := range h.dc {
		h.dc[ch].Reset()
	}

	for i := range lateChains {
		h.lowShelf[i].Reset()
		h.hiShelf[i].Reset()
	}

	h.lfo.Reset()
	h.feedback = [2]float64{}
}

// FeedbackGain returns the per-chain loop gain for a decay time of rt60
// seconds: 0.001^(averageLateDelay/rt60). rt60 is clamped to [0.01, 100];
// NaN selects 1 s.
func FeedbackGain(rt60 float64) float64 {
	rt60 = core.ClampFinite(rt60, minRT60, maxRT60, defaultRT60)
	return math.Pow(0.001, averageLateDelay/rt60)
}

// SetRT60 sets the decay time to -60 dB in seconds and recomputes the loop
// gain.
func (h *Hall) SetRT60(seconds float64) {
	h.rt60 = core.ClampFinite(seconds, minRT60, maxRT60, defaultRT60)
	h.k = FeedbackGain(h.rt60)
}

// SetFeedbackGain overrides the loop gain directly, e.g. with a ramp
// toward [FeedbackGain]. The gain is clamped to [0, 0.999]. RT60 keeps the
// last requested value.
func (h *Hall) SetFeedbackGain(k float64) {
	h.k = core.ClampFinite(k, 0, maxFeedbackGain, h.k)
}

// SetLowShelfParameters sets the low shelf corner (Hz) and the gain ratio
// applied below it per loop pass. The frequency is clamped to
// [10, 0.45*sampleRate] and the ratio to [0.01, 1].
func (h *Hall) SetLowShelfParameters(freq, ratio float64) {
	h.lowFreq = h.clampShelfFreq(freq, defaultLowFreq)
	h.lowRatio = core.ClampFinite(ratio, minShelfRatio, maxShelfRatio, defaultLowRatio)

	gainDB := core.LinearToDB(h.lowRatio)
	for _, s := range h.lowShelf {
		s.SetFrequencyAndGain(h.lowFreq, gainDB)
	}
}

// SetHiShelfParameters sets the high shelf corner (Hz) and the gain ratio
// applied above it per loop pass, clamped like the low shelf.
func (h *Hall) SetHiShelfParameters(freq, ratio float64) {
	h.hiFreq = h.clampShelfFreq(freq, defaultHiFreq)
	h.hiRatio = core.ClampFinite(ratio, minShelfRatio, maxShelfRatio, defaultHiRatio)

	gainDB := core.LinearToDB(h.hiRatio)
	for _, s := range h.hiShelf {
		s.SetFrequencyAndGain(h.hiFreq, gainDB)
	}
}

func (h *Hall) clampShelfFreq(freq, fallback float64) float64 {
	return core.ClampFinite(freq, minShelfFreq, maxShelfFreqRatio*h.sampleRate, fallback)
}

// SetStereo sets the cross-channel tap weight in [0, 1].
func (h *Hall) SetStereo(v float64) {
	h.stereo = core.ClampFinite(v, 0, 1, defaultStereo)
}

// SetEarlyDiffusion sets the early allpass coefficient in [0, 0.9].
func (h *Hall) SetEarlyDiffusion(v float64) {
	h.earlyDiffusion = core.ClampFinite(v, 0, maxDiffusion, defaultEarlyDiffusion)

	for ch := range 2 {
		for _, l := range h.earlyAllpass[ch] {
			if l != nil {
				l.SetCoefficient(h.earlyDiffusion)
			}
		}
		for _, l := range h.earlyCascade[ch] {
			if l != nil && l.Kind() == delay.KindAllpass {
				l.SetCoefficient(h.earlyDiffusion)
			}
		}
	}
}

// SetLateDiffusion sets the late tank allpass coefficient in [0, 0.9].
func (h *Hall) SetLateDiffusion(v float64) {
	h.lateDiffusion = core.ClampFinite(v, 0, maxDiffusion, defaultLateDiffusion)

	for i := range lateChains {
		if h.lateVariable[i] != nil {
			h.lateVariable[i].SetCoefficient(h.lateDiffusion)
		}
		if h.lateAllpass[i] != nil {
			h.lateAllpass[i].SetCoefficient(h.lateDiffusion)
		}
	}
}

// SetModulation sets the random-walk rate in [0.01, 10] Hz and the depth in
// [0, 1]. Depth 1 swings the late allpasses by 1 ms.
func (h *Hall) SetModulation(rateHz, depth float64) {
	h.modRate = core.ClampFinite(rateHz, minModRate, maxModRate, defaultModRate)
	h.modDepth = core.ClampFinite(depth, 0, 1, defaultModDepth)
	h.lfo.SetFrequency(h.modRate)
}

// RT60 returns the decay time in seconds.
func (h *Hall) RT60() float64 { return h.rt60 }

// FeedbackGain returns the current loop gain.
func (h *Hall) FeedbackGain() float64 { return h.k }

// LowShelfParameters returns the low shelf frequency and ratio.
func (h *Hall) LowShelfParameters() (freq, ratio float64) { return h.lowFreq, h.lowRatio }

// HiShelfParameters returns the high shelf frequency and ratio.
func (h *Hall) HiShelfParameters() (freq, ratio float64) { return h.hiFreq, h.hiRatio }

// Stereo returns the cross-channel tap weight.
func (h *Hall) Stereo() float64 { return h.stereo }

// EarlyDiffusion returns the early allpass coefficient.
func (h *Hall) EarlyDiffusion() float64 { return h.earlyDiffusion }

// LateDiffusion returns the late allpass coefficient.
func (h *Hall) LateDiffusion() float64 { return h.lateDiffusion }

// Modulation returns the modulation rate in Hz and depth.
func (h *Hall) Modulation() (rateHz, depth float64) { return h.modRate, h.modDepth }

// Muted reports whether the Hall outputs silence because its rings were
// never allocated or have been released.
func (h *Hall) Muted() bool { return h.muted }

// SampleRate returns the sample rate in Hz.
func (h *Hall) SampleRate() float64 { return h.sampleRate }

// BlockSize returns the control block size.
func (h *Hall) BlockSize() int { return h.blockSize }
