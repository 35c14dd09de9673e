package delay

import (
	"fmt"
	"math"

	"github.com/cwbudde/nhhall/dsp/buffer"
	"github.com/cwbudde/nhhall/dsp/core"
	"github.com/cwbudde/nhhall/dsp/interp"
)

// maxCoefficient bounds |k| so allpass recursions stay stable.
const maxCoefficient = 0.999

// Kind is the read/write policy of a Line.
type Kind uint8

const (
	KindDelay Kind = iota
	KindAllpass
	KindVariableAllpass
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindDelay:
		return "delay"
	case KindAllpass:
		return "allpass"
	case KindVariableAllpass:
		return "variable-allpass"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Line is a circular delay line with a fixed power-of-two length.
type Line struct {
	kind   Kind
	buffer []float64
	mask   int
	cursor int

	sampleRate float64
	delay      int     // integer delay in samples (fixed kinds)
	k          float64 // allpass coefficient

	baseDelay float64 // seconds (variable kind)
	minPos    float64 // samples
	maxPos    float64 // samples
	mode      interp.Mode
}

// NewDelay returns a plain delay of seconds.
func NewDelay(sampleRate, seconds float64, alloc buffer.Allocator) (*Line, error) {
	if err := validate(sampleRate, seconds); err != nil {
		return nil, err
	}

	l := &Line{
		kind:       KindDelay,
		sampleRate: sampleRate,
		delay:      delaySamples(sampleRate, seconds),
	}
	if err := l.allocate(Capacity(sampleRate, seconds), alloc); err != nil {
		return nil, err
	}

	return l, nil
}

// NewAllpass returns a Schroeder allpass with delay seconds and feedback
// coefficient k.
func NewAllpass(sampleRate, seconds, k float64, alloc buffer.Allocator) (*Line, error) {
	if err := validate(sampleRate, seconds); err != nil {
		return nil, err
	}

	l := &Line{
		kind:       KindAllpass,
		sampleRate: sampleRate,
		delay:      delaySamples(sampleRate, seconds),
	}
	l.SetCoefficient(k)

	if err := l.allocate(Capacity(sampleRate, seconds), alloc); err != nil {
		return nil, err
	}

	return l, nil
}

// NewVariableAllpass returns a Schroeder allpass whose delay is
// baseSeconds plus a per-sample offset. The ring is sized so the read
// position may reach maxSeconds.
func NewVariableAllpass(sampleRate, baseSeconds, maxSeconds, k float64, mode interp.Mode, alloc buffer.Allocator) (*Line, error) {
	if err := validate(sampleRate, baseSeconds); err != nil {
		return nil, err
	}

	if maxSeconds < baseSeconds || !core.IsFinite(maxSeconds) {
		return nil, fmt.Errorf("variable allpass max delay must be >= base delay: %f < %f", maxSeconds, baseSeconds)
	}

	l := &Line{
		kind:       KindVariableAllpass,
		sampleRate: sampleRate,
		baseDelay:  baseSeconds,
		minPos:     2,
		maxPos:     math.Max(2, maxSeconds*sampleRate),
		mode:       mode,
	}
	l.delay = delaySamples(sampleRate, baseSeconds)
	l.SetCoefficient(k)

	if err := l.allocate(VariableCapacity(sampleRate, maxSeconds), alloc); err != nil {
		return nil, err
	}

	return l, nil
}

func validate(sampleRate, seconds float64) error {
	if sampleRate <= 0 || !core.IsFinite(sampleRate) {
		return fmt.Errorf("delay sample rate must be > 0: %f", sampleRate)
	}

	if seconds <= 0 || !core.IsFinite(seconds) {
		return fmt.Errorf("delay time must be > 0: %f", seconds)
	}

	return nil
}

func (l *Line) allocate(size int, alloc buffer.Allocator) error {
	if alloc == nil {
		alloc = buffer.Heap{}
	}

	buf, err := alloc.Allocate(size)
	if err != nil {
		return fmt.Errorf("delay %s of %d samples: %w", l.kind, size, err)
	}

	l.buffer = buf
	l.mask = size - 1

	return nil
}

// Kind returns the line's read/write policy.
func (l *Line) Kind() Kind { return l.kind }

// Len returns the ring length in samples.
func (l *Line) Len() int { return len(l.buffer) }

// DelaySamples returns the integer delay in samples. For variable lines it
// is the rounded base delay.
func (l *Line) DelaySamples() int { return l.delay }

// Coefficient returns the allpass coefficient.
func (l *Line) Coefficient() float64 { return l.k }

// SetCoefficient sets the allpass coefficient, clamped to |k| < 1.
func (l *Line) SetCoefficient(k float64) {
	l.k = core.ClampFinite(k, -maxCoefficient, maxCoefficient, 0)
}

// Process advances the line by one sample.
//
// Variable allpasses are processed at their base delay.
func (l *Line) Process(x float64) float64 {
	switch l.kind {
	case KindAllpass:
		return l.processAllpass(x)
	case KindVariableAllpass:
		return l.ProcessModulated(x, 0)
	default:
		return l.processDelay(x)
	}
}

func (l *Line) processDelay(x float64) float64 {
	if len(l.buffer) == 0 {
		return 0
	}

	out := l.buffer[(l.cursor-l.delay)&l.mask]
	l.buffer[l.cursor] = x
	l.cursor = (l.cursor + 1) & l.mask

	return out
}

func (l *Line) processAllpass(x float64) float64 {
	if len(l.buffer) == 0 {
		return 0
	}

	delayed := l.buffer[(l.cursor-l.delay)&l.mask]
	v := x + l.k*delayed
	l.buffer[l.cursor] = v
	l.cursor = (l.cursor + 1) & l.mask

	return delayed - l.k*v
}

// ProcessModulated advances a variable allpass by one sample with its read
// position at baseDelay+offsetSeconds behind the write cursor.
//
// The caller keeps the offset inside the configured maximum delay; the read
// position is clamped to the ring's interpolation-safe range so an
// out-of-range offset never touches unwritten memory. Fixed kinds ignore
// the offset.
func (l *Line) ProcessModulated(x, offsetSeconds float64) float64 {
	if l.kind != KindVariableAllpass {
		return l.Process(x)
	}

	if len(l.buffer) == 0 {
		return 0
	}

	pos := (l.baseDelay + offsetSeconds) * l.sampleRate
	if pos < l.minPos {
		pos = l.minPos
	} else if pos > l.maxPos {
		pos = l.maxPos
	}

	p := int(pos)
	t := pos - float64(p)

	xm1 := l.buffer[(l.cursor-p+1)&l.mask]
	x0 := l.buffer[(l.cursor-p)&l.mask]
	x1 := l.buffer[(l.cursor-p-1)&l.mask]
	x2 := l.buffer[(l.cursor-p-2)&l.mask]
	delayed := l.mode.Interpolate(t, xm1, x0, x1, x2)

	v := x + l.k*delayed
	l.buffer[l.cursor] = v
	l.cursor = (l.cursor + 1) & l.mask

	return delayed - l.k*v
}

// Tap reads the line seconds behind the most recent write, scaled by gain,
// without advancing it. A tap of one sample returns the last value written.
func (l *Line) Tap(seconds, gain float64) float64 {
	if len(l.buffer) == 0 {
		return 0
	}

	n := int(math.Round(seconds * l.sampleRate))
	if n < 1 {
		n = 1
	} else if n > len(l.buffer) {
		n = len(l.buffer)
	}

	return gain * l.buffer[(l.cursor-n)&l.mask]
}

// Reset clears line state.
func (l *Line) Reset() {
	clear(l.buffer)
	l.cursor = 0
}

// Release returns the ring to alloc. The line produces silence afterwards.
func (l *Line) Release(alloc buffer.Allocator) {
	if l.buffer == nil {
		return
	}

	if alloc == nil {
		alloc = buffer.Heap{}
	}

	alloc.Deallocate(l.buffer)
	l.buffer = nil
	l.mask = 0
	l.cursor = 0
}
