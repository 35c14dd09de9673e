package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"text/tabwriter"

	"github.com/go-faster/jx"
	"golang.org/x/sync/errgroup"
	"gopkg.in/Sirupsen/logrus.v0"

	"github.com/cwbudde/nhhall/internal/config"
	"github.com/cwbudde/nhhall/measure/decay"
)

type RT60Cmd struct {
	RT60    []float64 `name:"rt60" help:"Decay times in seconds. Defaults to measure.rt60." placeholder:"S,..."`
	Seconds float64   `help:"Impulse response length in seconds. Defaults to measure.seconds."`
	Jobs    int       `short:"j" help:"Concurrent renders (0 uses GOMAXPROCS)." default:"0"`
	JSON    bool      `name:"json" help:"Emit JSON instead of a table."`
}

// decayResult is the measurement of one impulse response.
type decayResult struct {
	RT60 float64
	Gain float64

	// Threshold is the time after which the smoothed power envelope stays
	// below the configured threshold. Decayed is false when it never does.
	Threshold float64
	Decayed   bool

	T30 float64
}

func (c *RT60Cmd) Run(g *Globals) error {
	cfg, log, err := g.load()
	if err != nil {
		return err
	}

	if len(c.RT60) > 0 {
		cfg.Measure.RT60s = c.RT60
	}
	if c.Seconds > 0 {
		cfg.Measure.Seconds = c.Seconds
	}

	results, err := measureAll(context.Background(), cfg, log, c.Jobs)
	if err != nil {
		return err
	}

	if c.JSON {
		return writeJSON(os.Stdout, results)
	}

	return writeTable(os.Stdout, results)
}

// measureAll renders one Hall per decay time, jobs at a time. Results keep
// the order of cfg.Measure.RT60s.
func measureAll(ctx context.Context, cfg config.Config, log *logrus.Entry, jobs int) ([]decayResult, error) {
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	results := make([]decayResult, len(cfg.Measure.RT60s))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)

	for i, rt60 := range cfg.Measure.RT60s {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			r, err := measure(cfg, log.WithField("rt60", rt60), rt60)
			if err != nil {
				return fmt.Errorf("rt60 %g: %w", rt60, err)
			}

			results[i] = r

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

func measure(cfg config.Config, log *logrus.Entry, rt60 float64) (decayResult, error) {
	h, release, err := cfg.NewHall(log)
	defer release()
	if err != nil {
		return decayResult{}, err
	}

	h.SetRT60(rt60)

	sr := cfg.Engine.SampleRate
	m := cfg.Measure
	left, right := h.ImpulseResponse(int(m.Seconds * sr))

	a := decay.NewAnalyzer(sr)

	env, err := a.Envelope(left, right, m.BlockSize)
	if err != nil {
		return decayResult{}, err
	}

	hold := max(int(m.HoldSeconds*sr/float64(m.BlockSize)), 1)
	res := decayResult{RT60: h.RT60(), Gain: h.FeedbackGain(), Decayed: true}

	res.Threshold, err = a.ThresholdTime(decay.Smooth(env, hold), m.BlockSize, m.Threshold)
	if errors.Is(err, decay.ErrNoDecay) {
		res.Decayed = false
	} else if err != nil {
		return decayResult{}, err
	}

	metrics, err := a.Analyze(left)
	if err != nil && !errors.Is(err, decay.ErrNoDecay) {
		return decayResult{}, err
	}
	res.T30 = metrics.T30

	log.WithFields(logrus.Fields{
		"gain":      res.Gain,
		"threshold": res.Threshold,
		"t30":       res.T30,
	}).Debug("impulse response measured")

	return res, nil
}

func writeTable(w io.Writer, results []decayResult) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "RT60 [s]\tGain\tThreshold [s]\tT30 [s]\n")
	fmt.Fprintf(tw, "--------\t----\t-------------\t-------\n")

	for _, r := range results {
		threshold := fmt.Sprintf("%.3f", r.Threshold)
		if !r.Decayed {
			threshold = "never"
		}
		fmt.Fprintf(tw, "%.3f\t%.4f\t%s\t%.3f\n", r.RT60, r.Gain, threshold, r.T30)
	}

	return tw.Flush()
}

func writeJSON(w io.Writer, results []decayResult) error {
	var e jx.Encoder
	e.SetIdent(2)

	e.ArrStart()
	for _, r := range results {
		e.ObjStart()
		e.FieldStart("rt60")
		e.Float64(r.RT60)
		e.FieldStart("gain")
		e.Float64(r.Gain)
		e.FieldStart("decayed")
		e.Bool(r.Decayed)
		if r.Decayed {
			e.FieldStart("threshold")
			e.Float64(r.Threshold)
		}
		e.FieldStart("t30")
		e.Float64(r.T30)
		e.ObjEnd()
	}
	e.ArrEnd()

	_, err := w.Write(append(e.Bytes(), '\n'))

	return err
}
