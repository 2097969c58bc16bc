// Package emission models the photon source end of the link: a pulsed
// excitation laser, the Rb87 atom it drives, and the readout laser used
// for state verification.
package emission

import (
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/atomlink/herald/photon"
)

// A ConfigError reports an emission option outside its allowed range.
type ConfigError struct {
	Param  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("emission config: %s %s", e.Param, e.Reason)
}

// A Pulse is one excitation pulse as delivered at the atom, after
// alignment losses and shot-to-shot noise.
type Pulse struct {
	Power        float64 // watts, noise and alignment applied
	Wavelength   float64 // nm
	Duration     float64 // seconds
	Shape        string
	Detuning     float64 // offset from resonance
	Polarization photon.Polarization
	Seq          int // running pulse count
}

// LaserOpts packages together the arguments necessary to construct a
// Laser.
type LaserOpts struct {
	// Power is the nominal pulse power in watts.
	Power float64

	// Wavelength is the central wavelength in nm (780 for the Rb87 D2
	// line).
	Wavelength float64

	// PulseDuration is the pulse length in seconds.
	PulseDuration float64

	// Shape names the pulse envelope, e.g. "gaussian". Defaults to
	// "gaussian".
	Shape string

	// NoiseLevel is the standard deviation of the Gaussian
	// perturbation applied to the pulse power, and scales the
	// polarization-flip probability. Must be non-negative.
	NoiseLevel float64

	// Detuning is the offset from atomic resonance.
	Detuning float64

	// AlignmentEfficiency, in [0, 1], scales delivered power for beam
	// misalignment.
	AlignmentEfficiency float64

	// Polarization is the nominal pulse polarization.
	Polarization photon.Polarization

	// Rand provides the noise randomness. Must be non-nil.
	Rand *rand.Rand
}

// A Laser produces excitation pulses with shot-to-shot noise.
type Laser struct {
	opts  LaserOpts
	noise distuv.Normal
	seq   int
}

// NewLaser returns a Laser configured per opts, or a *ConfigError if
// the options are nonsensical.
func NewLaser(opts LaserOpts) (*Laser, error) {
	if opts.NoiseLevel < 0 {
		return nil, &ConfigError{"noise level", "must be non-negative"}
	}
	if opts.AlignmentEfficiency < 0 || opts.AlignmentEfficiency > 1 {
		return nil, &ConfigError{"alignment efficiency", "must be in [0, 1]"}
	}
	if opts.Rand == nil {
		return nil, &ConfigError{"rand", "must be non-nil"}
	}
	if opts.Shape == "" {
		opts.Shape = "gaussian"
	}
	return &Laser{
		opts:  opts,
		noise: distuv.Normal{Mu: 0, Sigma: opts.NoiseLevel, Src: opts.Rand},
	}, nil
}

// Emit fires one pulse. Delivered power fluctuates with the configured
// noise and is scaled by the alignment efficiency; with probability
// 0.05 * NoiseLevel the circular polarization flips handedness (pi
// polarization is unaffected).
func (l *Laser) Emit() Pulse {
	l.seq++
	power := (l.opts.Power + l.noise.Rand()) * l.opts.AlignmentEfficiency

	pol := l.opts.Polarization
	if l.opts.Rand.Float64() < 0.05*l.opts.NoiseLevel {
		switch pol {
		case photon.SigmaPlus:
			pol = photon.SigmaMinus
		case photon.SigmaMinus:
			pol = photon.SigmaPlus
		}
	}

	return Pulse{
		Power:        power,
		Wavelength:   l.opts.Wavelength,
		Duration:     l.opts.PulseDuration,
		Shape:        l.opts.Shape,
		Detuning:     l.opts.Detuning,
		Polarization: pol,
		Seq:          l.seq,
	}
}
