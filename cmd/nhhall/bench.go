package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"gopkg.in/Sirupsen/logrus.v0"

	"github.com/cwbudde/nhhall/dsp/effects/reverb"
	"github.com/cwbudde/nhhall/dsp/signal"
	"github.com/cwbudde/nhhall/internal/config"
)

type BenchCmd struct {
	Seconds    float64 `help:"Seconds of audio rendered per block size." default:"60"`
	BlockSizes []int   `name:"block-size" help:"Block sizes to time." default:"1,16,64,256,1024"`
	Automate   bool    `help:"Render through a Controller that changes RT60 every block."`
}

type benchResult struct {
	BlockSize int
	Elapsed   time.Duration
	Realtime  float64
}

func (c *BenchCmd) Run(g *Globals) error {
	cfg, log, err := g.load()
	if err != nil {
		return err
	}

	results := make([]benchResult, 0, len(c.BlockSizes))
	for _, size := range c.BlockSizes {
		if size <= 0 {
			return fmt.Errorf("block size must be > 0: %d", size)
		}

		r, err := bench(cfg, log, size, c.Seconds, c.Automate)
		if err != nil {
			return err
		}
		results = append(results, r)
	}

	return writeBench(os.Stdout, results)
}

// bench renders seconds of white noise in blocks of size and reports the
// wall time against the audio duration.
func bench(cfg config.Config, log *logrus.Entry, size int, seconds float64, automate bool) (benchResult, error) {
	cfg.Engine.BlockSize = size

	h, release, err := cfg.NewHall(log)
	defer release()
	if err != nil {
		return benchResult{}, err
	}

	var ctrl *reverb.Controller
	if automate {
		ctrl = reverb.NewController(h, cfg.Params)
	}

	in := make([]float64, size)
	outL := make([]float64, size)
	outR := make([]float64, size)
	noise, err := signal.NewNoise(1, 1)
	if err != nil {
		return benchResult{}, err
	}

	blocks := int(seconds * cfg.Engine.SampleRate / float64(size))
	params := cfg.Params

	var elapsed time.Duration
	for b := range blocks {
		noise.Fill(in)

		if ctrl != nil {
			params.RT60 = 0.5 + float64(b%8)*0.5
			ctrl.Set(params)
		}

		start := time.Now()
		if ctrl != nil {
			ctrl.ProcessBlock(in, in, outL, outR)
		} else {
			h.ProcessBlock(in, outL, outR)
		}
		elapsed += time.Since(start)
	}

	audio := float64(blocks*size) / cfg.Engine.SampleRate
	r := benchResult{BlockSize: size, Elapsed: elapsed}
	if elapsed > 0 {
		r.Realtime = audio / elapsed.Seconds()
	}

	log.WithFields(logrus.Fields{
		"block_size": size,
		"blocks":     blocks,
		"elapsed":    elapsed,
	}).Debug("bench finished")

	return r, nil
}

func writeBench(w io.Writer, results []benchResult) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Block\tElapsed\tRealtime\n")
	fmt.Fprintf(tw, "-----\t-------\t--------\n")

	for _, r := range results {
		fmt.Fprintf(tw, "%d\t%s\t%.1fx\n", r.BlockSize, r.Elapsed.Round(time.Microsecond), r.Realtime)
	}

	return tw.Flush()
}
