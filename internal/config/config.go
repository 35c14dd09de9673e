// Package config loads the nhhall command configuration from TOML.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/Sirupsen/logrus.v0"

	"github.com/cwbudde/nhhall/dsp/buffer"
	"github.com/cwbudde/nhhall/dsp/core"
	"github.com/cwbudde/nhhall/dsp/effects/reverb"
	"github.com/cwbudde/nhhall/dsp/interp"
)

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("config: invalid value")

// Allocator kinds.
const (
	AllocatorHeap   = "heap"
	AllocatorPool   = "pool"
	AllocatorArena  = "arena"
	AllocatorLocked = "locked"
)

// pool recycles ring memory across the Halls a process builds.
var pool = buffer.NewPool()

type Config struct {
	Engine  Engine        `toml:"engine"`
	Params  reverb.Params `toml:"params"`
	Measure Measure       `toml:"measure"`
}

// Engine holds the construction settings of each Hall.
type Engine struct {
	SampleRate    float64 `toml:"sample_rate"`
	BlockSize     int     `toml:"block_size"`
	Interpolation string  `toml:"interpolation"`
	Seed          uint32  `toml:"seed"`

	// Allocator is one of "heap", "pool", "arena" or "locked". The arena
	// kinds give every Hall its own slab of ArenaSamples samples, sized to
	// fit the Hall exactly when ArenaSamples is 0; "locked" also pins the
	// slab into RAM. An undersized arena yields a muted Hall.
	Allocator    string `toml:"allocator"`
	ArenaSamples int    `toml:"arena_samples"`
}

// Measure configures the rt60 command.
type Measure struct {
	RT60s       []float64 `toml:"rt60"`
	Seconds     float64   `toml:"seconds"`
	Threshold   float64   `toml:"threshold"`
	HoldSeconds float64   `toml:"hold_seconds"`
	BlockSize   int       `toml:"block_size"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Engine: Engine{
			SampleRate:    48000,
			BlockSize:     64,
			Interpolation: interp.Hermite.String(),
			Seed:          1,
			Allocator:     AllocatorHeap,
		},
		Params: reverb.DefaultParams(),
		Measure: Measure{
			RT60s:       []float64{0.5, 1, 2, 4},
			Seconds:     20,
			Threshold:   1e-6,
			HoldSeconds: 0.1,
			BlockSize:   64,
		},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer f.Close()

	cfg, err := Decode(f)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}

	return cfg, nil
}

// Decode reads TOML from r over the defaults and validates the result.
// Unknown keys are rejected.
func Decode(r io.Reader) (Config, error) {
	cfg := Default()

	md, err := toml.NewDecoder(r).Decode(&cfg)
	if err != nil {
		return Config{}, err
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}

		return Config{}, fmt.Errorf("%w: unknown keys %s", ErrInvalid, strings.Join(keys, ", "))
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks the engine and measurement settings and clamps Params to
// the ranges the Hall accepts.
func (c *Config) Validate() error {
	e := &c.Engine
	if e.SampleRate <= 0 || !core.IsFinite(e.SampleRate) {
		return fmt.Errorf("%w: engine.sample_rate must be > 0: %v", ErrInvalid, e.SampleRate)
	}
	if e.BlockSize <= 0 {
		return fmt.Errorf("%w: engine.block_size must be > 0: %d", ErrInvalid, e.BlockSize)
	}
	if _, err := interp.ParseMode(e.Interpolation); err != nil {
		return fmt.Errorf("%w: engine.interpolation: %v", ErrInvalid, err)
	}
	switch e.Allocator {
	case AllocatorHeap, AllocatorPool, AllocatorArena, AllocatorLocked:
	default:
		return fmt.Errorf("%w: engine.allocator must be heap, pool, arena or locked: %q", ErrInvalid, e.Allocator)
	}
	if e.ArenaSamples < 0 {
		return fmt.Errorf("%w: engine.arena_samples must be >= 0: %d", ErrInvalid, e.ArenaSamples)
	}

	m := &c.Measure
	if len(m.RT60s) == 0 {
		return fmt.Errorf("%w: measure.rt60 must not be empty", ErrInvalid)
	}
	for _, v := range m.RT60s {
		if v <= 0 {
			return fmt.Errorf("%w: measure.rt60 values must be > 0: %v", ErrInvalid, v)
		}
	}
	if m.Seconds <= 0 || m.Threshold <= 0 || m.HoldSeconds < 0 || m.BlockSize <= 0 {
		return fmt.Errorf("%w: measure seconds, threshold and block_size must be > 0", ErrInvalid)
	}

	c.Params = c.Params.Clamped(e.SampleRate)

	return nil
}

// Encode writes c as TOML.
func (c Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

// NewHall builds a Hall from the engine settings and applies Params.
// release closes the Hall and frees its arena; it is never nil. A muted
// Hall is returned together with the allocation error.
func (c Config) NewHall(log *logrus.Entry) (h *reverb.Hall, release func(), err error) {
	release = func() {}

	mode, err := interp.ParseMode(c.Engine.Interpolation)
	if err != nil {
		return nil, release, err
	}

	opts := []reverb.Option{
		reverb.WithBlockSize(c.Engine.BlockSize),
		reverb.WithInterpolation(mode),
		reverb.WithSeed(c.Engine.Seed),
		reverb.WithLogger(log),
	}

	var arena *buffer.Arena

	switch c.Engine.Allocator {
	case AllocatorPool:
		opts = append(opts, reverb.WithAllocator(pool))
	case AllocatorArena, AllocatorLocked:
		size := c.Engine.ArenaSamples
		if size == 0 {
			size = reverb.MemoryRequirement(c.Engine.SampleRate)
		}

		if c.Engine.Allocator == AllocatorLocked {
			arena, err = buffer.NewLockedArena(size)
		} else {
			arena, err = buffer.NewArena(size)
		}
		if err != nil {
			return nil, release, err
		}

		if c.Engine.Allocator == AllocatorLocked && !arena.Locked() {
			log.WithField("samples", size).Warn("config: arena could not be locked into memory")
		}

		opts = append(opts, reverb.WithAllocator(arena))
	}

	h, err = reverb.NewHall(c.Engine.SampleRate, opts...)
	if h == nil {
		if arena != nil {
			_ = arena.Close()
		}
		return nil, release, err
	}

	h.Apply(c.Params)

	release = func() {
		h.Close()
		if arena != nil {
			_ = arena.Close()
		}
	}

	return h, release, err
}
