package reverb

import "github.com/cwbudde/nhhall/dsp/core"

// Params is the host-facing parameter set of a Hall.
type Params struct {
	RT60     float64 `toml:"rt60"`
	LowFreq  float64 `toml:"low_freq"`
	LowRatio float64 `toml:"low_ratio"`
	HiFreq   float64 `toml:"hi_freq"`
	HiRatio  float64 `toml:"hi_ratio"`
	Stereo   float64 `toml:"stereo"`
}

// DefaultParams returns the registration defaults.
func DefaultParams() Params {
	return Params{
		RT60:     defaultRT60,
		LowFreq:  defaultLowFreq,
		LowRatio: defaultLowRatio,
		HiFreq:   defaultHiFreq,
		HiRatio:  defaultHiRatio,
		Stereo:   defaultStereo,
	}
}

// Clamped returns p with every field clamped the way the Hall setters clamp
// it at sampleRate. NaN fields take their default and infinities saturate
// to the nearest bound.
func (p Params) Clamped(sampleRate float64) Params {
	maxFreq := maxShelfFreqRatio * sampleRate

	return Params{
		RT60:     core.ClampFinite(p.RT60, minRT60, maxRT60, defaultRT60),
		LowFreq:  core.ClampFinite(p.LowFreq, minShelfFreq, maxFreq, defaultLowFreq),
		LowRatio: core.ClampFinite(p.LowRatio, minShelfRatio, maxShelfRatio, defaultLowRatio),
		HiFreq:   core.ClampFinite(p.HiFreq, minShelfFreq, maxFreq, defaultHiFreq),
		HiRatio:  core.ClampFinite(p.HiRatio, minShelfRatio, maxShelfRatio, defaultHiRatio),
		Stereo:   core.ClampFinite(p.Stereo, 0, 1, defaultStereo),
	}
}

// ParamSpec describes one host-registered parameter.
type ParamSpec struct {
	Name    string
	Unit    string
	Default float64
	Min     float64
	Max     float64
}

// ParamSpecs returns the parameter registration table. Frequency maxima are
// nominal; the Hall further limits them to 0.45 times its sample rate.
func ParamSpecs() []ParamSpec {
	return []ParamSpec{
		{Name: "rt60", Unit: "s", Default: defaultRT60, Min: minRT60, Max: maxRT60},
		{Name: "lowFreq", Unit: "Hz", Default: defaultLowFreq, Min: minShelfFreq, Max: 20000},
		{Name: "lowRatio", Default: defaultLowRatio, Min: minShelfRatio, Max: maxShelfRatio},
		{Name: "hiFreq", Unit: "Hz", Default: defaultHiFreq, Min: minShelfFreq, Max: 20000},
		{Name: "hiRatio", Default: defaultHiRatio, Min: minShelfRatio, Max: maxShelfRatio},
		{Name: "stereo", Default: defaultStereo, Min: 0, Max: 1},
	}
}

// Apply sets every parameter in p.
func (h *Hall) Apply(p Params) {
	h.SetRT60(p.RT60)
	h.SetLowShelfParameters(p.LowFreq, p.LowRatio)
	h.SetHiShelfParameters(p.HiFreq, p.HiRatio)
	h.SetStereo(p.Stereo)
}

// Params returns the current parameters.
func (h *Hall) Params() Params {
	return Params{
		RT60:     h.rt60,
		LowFreq:  h.lowFreq,
		LowRatio: h.lowRatio,
		HiFreq:   h.hiFreq,
		HiRatio:  h.hiRatio,
		Stereo:   h.stereo,
	}
}
