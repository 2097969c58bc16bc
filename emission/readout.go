package emission

import (
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// A Station identifies which end of the link a readout pulse serves.
// The two stations draw their readout polarization from different
// measurement-angle sets.
type Station int

const (
	StationAlice Station = iota
	StationBob
)

// Readout measurement angle sets, in degrees.
var (
	aliceAngles = []float64{-22.5, 22.5, -45, 0}
	bobAngles   = []float64{22.5, -22.5}
)

// A ReadoutPulse is one state-verification pulse.
type ReadoutPulse struct {
	Wavelength   float64 // nm
	Power        float64 // noise applied
	Duration     float64 // seconds
	Polarization float64 // linear polarization angle, degrees
}

// ReadoutOpts packages together the arguments necessary to construct a
// ReadoutLaser.
type ReadoutOpts struct {
	// Wavelength is the readout fluorescence wavelength in nm (795 for
	// the Rb87 D1 line).
	Wavelength float64

	// Power is the nominal readout power.
	Power float64

	// PulseDuration is the readout pulse length in seconds.
	PulseDuration float64

	// NoiseLevel is the fractional power fluctuation, e.g. 0.1 for
	// ±10%. Must be non-negative.
	NoiseLevel float64

	// Rand provides the angle selection and noise randomness. Must be
	// non-nil.
	Rand *rand.Rand
}

// A ReadoutLaser produces the 795 nm verification pulses used to read
// out the atomic state after an entanglement attempt.
type ReadoutLaser struct {
	opts  ReadoutOpts
	noise distuv.Normal
}

// NewReadoutLaser returns a ReadoutLaser configured per opts, or a
// *ConfigError if the options are nonsensical.
func NewReadoutLaser(opts ReadoutOpts) (*ReadoutLaser, error) {
	if opts.NoiseLevel < 0 {
		return nil, &ConfigError{"noise level", "must be non-negative"}
	}
	if opts.Rand == nil {
		return nil, &ConfigError{"rand", "must be non-nil"}
	}
	return &ReadoutLaser{
		opts:  opts,
		noise: distuv.Normal{Mu: 0, Sigma: opts.NoiseLevel * opts.Power, Src: opts.Rand},
	}, nil
}

// SelectPolarization draws a readout polarization angle, in degrees,
// from the station's measurement set. Unknown stations use Alice's
// set.
func (r *ReadoutLaser) SelectPolarization(s Station) float64 {
	angles := aliceAngles
	if s == StationBob {
		angles = bobAngles
	}
	return angles[r.opts.Rand.Intn(len(angles))]
}

// Emit fires one readout pulse for station s, with power noise applied
// and a freshly drawn polarization angle.
func (r *ReadoutLaser) Emit(s Station) ReadoutPulse {
	return ReadoutPulse{
		Wavelength:   r.opts.Wavelength,
		Power:        r.opts.Power + r.noise.Rand(),
		Duration:     r.opts.PulseDuration,
		Polarization: r.SelectPolarization(s),
	}
}
