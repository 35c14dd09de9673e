// Package reverb provides the NHHall stereo hall reverb.
//
// [Hall] is a feedback delay network: a diffuse early-reflection cluster of
// eight fixed allpasses and four delays feeds a late tank of four modulated
// delay/allpass/shelf chains closed by a stereo rotation. The decay time is
// set as RT60 and converted to a loop gain by [FeedbackGain].
//
// Hall itself is single-threaded and allocation-free after construction.
// [Controller] adds the host-side obligations: a goroutine-safe parameter
// hand-off and per-sample ramping of changed parameters across a block.
//
// All ring buffers come from a [buffer.Allocator]. When the allocator cannot
// supply them, NewHall returns a muted Hall together with an error wrapping
// [buffer.ErrAllocationFailure]; a muted Hall outputs silence.
package reverb
