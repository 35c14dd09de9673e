// Command nhhall measures and benchmarks the NHHall reverb.
//
// Usage:
//
//	nhhall [flags] <command> [args]
//
// Commands:
//
//	rt60         render impulse responses and report their decay
//	bench        time block processing against real time
//	params       print the parameter registration table
//	dump-config  print the effective configuration as TOML
//
// Examples:
//
//	nhhall rt60 --rt60 0.5,1,2
//	nhhall --config hall.toml rt60 --json
//	nhhall bench --block-size 1,64,512
package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/alecthomas/kong"
	"gopkg.in/Sirupsen/logrus.v0"

	"github.com/cwbudde/nhhall/dsp/effects/reverb"
	"github.com/cwbudde/nhhall/internal/config"
)

// Globals are the flags shared by every command.
type Globals struct {
	Config     string  `name:"config" help:"TOML configuration file." type:"existingfile" placeholder:"FILE"`
	SampleRate float64 `name:"sample-rate" help:"Override engine.sample_rate." placeholder:"HZ"`
	Verbose    bool    `short:"v" help:"Enable debug logging."`
}

type CLI struct {
	Globals

	RT60       RT60Cmd       `cmd:"" name:"rt60" help:"Render impulse responses and report their decay."`
	Bench      BenchCmd      `cmd:"" help:"Time block processing against real time."`
	Params     ParamsCmd     `cmd:"" help:"Print the parameter registration table."`
	DumpConfig DumpConfigCmd `cmd:"" name:"dump-config" help:"Print the effective configuration as TOML."`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("nhhall"),
		kong.Description("NHHall stereo FDN reverb tools."),
		kong.UsageOnError())

	err := ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
}

// load returns the effective configuration and the root log entry.
func (g *Globals) load() (config.Config, *logrus.Entry, error) {
	logger := logrus.New()
	logger.Out = os.Stderr
	if g.Verbose {
		logger.Level = logrus.DebugLevel
	}
	log := logrus.NewEntry(logger)

	cfg, err := config.Load(g.Config)
	if err != nil {
		return config.Config{}, nil, err
	}

	if g.SampleRate != 0 {
		cfg.Engine.SampleRate = g.SampleRate
		if err := cfg.Validate(); err != nil {
			return config.Config{}, nil, err
		}
	}

	log.WithFields(logrus.Fields{
		"config":        g.Config,
		"sample_rate":   cfg.Engine.SampleRate,
		"block_size":    cfg.Engine.BlockSize,
		"interpolation": cfg.Engine.Interpolation,
	}).Debug("configuration loaded")

	return cfg, log, nil
}

type ParamsCmd struct{}

func (ParamsCmd) Run() error {
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Name\tUnit\tDefault\tMin\tMax\n")
	fmt.Fprintf(tw, "----\t----\t-------\t---\t---\n")

	for _, p := range reverb.ParamSpecs() {
		unit := p.Unit
		if unit == "" {
			unit = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%g\t%g\t%g\n", p.Name, unit, p.Default, p.Min, p.Max)
	}

	return tw.Flush()
}

type DumpConfigCmd struct{}

func (DumpConfigCmd) Run(g *Globals) error {
	cfg, _, err := g.load()
	if err != nil {
		return err
	}

	return cfg.Encode(os.Stdout)
}
