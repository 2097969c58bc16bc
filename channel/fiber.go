// Package channel models the optical path between the atom and the
// detector: high-NA collection optics and a lossy, dispersive fiber.
package channel

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"

	"github.com/atomlink/herald/photon"
)

// A ConfigError reports a channel option outside its allowed range.
type ConfigError struct {
	Param  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("channel config: %s %s", e.Param, e.Reason)
}

// FiberOpts packages together the arguments necessary to construct a
// Fiber.
type FiberOpts struct {
	// Length is the fiber length in meters.
	Length float64

	// AttenuationDBPerKm is the attenuation in dB/km (about 4 at
	// 780 nm in standard single-mode fiber).
	AttenuationDBPerKm float64

	// DispersionPsPerNmKm is the chromatic dispersion in ps/(nm·km).
	// 0 disables pulse broadening.
	DispersionPsPerNmKm float64

	// GroupVelocity is the propagation speed in the fiber, m/s.
	// Defaults to 2e8.
	GroupVelocity float64

	// Rand provides the transmission-loss randomness. Must be non-nil.
	Rand *rand.Rand
}

// A Fiber propagates photons over a lossy, dispersive single-mode
// fiber.
type Fiber struct {
	length        float64
	attenPerM     float64 // dB/m
	dispPerNmM    float64 // ps/(nm·m)
	groupVelocity float64
	rng           *rand.Rand
}

// NewFiber returns a Fiber configured per opts, or a *ConfigError if
// the options are nonsensical.
func NewFiber(opts FiberOpts) (*Fiber, error) {
	if opts.Length < 0 {
		return nil, &ConfigError{"length", "must be non-negative"}
	}
	if opts.AttenuationDBPerKm < 0 {
		return nil, &ConfigError{"attenuation", "must be non-negative"}
	}
	if opts.GroupVelocity < 0 {
		return nil, &ConfigError{"group velocity", "must be non-negative"}
	}
	if opts.Rand == nil {
		return nil, &ConfigError{"rand", "must be non-nil"}
	}
	v := opts.GroupVelocity
	if v == 0 {
		v = 2e8
	}
	return &Fiber{
		length:        opts.Length,
		attenPerM:     opts.AttenuationDBPerKm / 1000,
		dispPerNmM:    opts.DispersionPsPerNmKm / 1000,
		groupVelocity: v,
		rng:           opts.Rand,
	}, nil
}

// Transmission returns the probability that a photon survives the
// whole fiber: 10^(−aL/10) for total loss aL in dB.
func (f *Fiber) Transmission() float64 {
	return math.Pow(10, -f.attenPerM*f.length/10)
}

// Delay returns the propagation delay through the fiber, in seconds.
func (f *Fiber) Delay() float64 {
	return f.length / f.groupVelocity
}

// Propagate runs one photon through the fiber starting at simulation
// time now, stamping Transmitted and, on survival, the arrival time.
// Photons carrying a pulse and spectral width get their pulse width
// broadened by chromatic dispersion:
//
//	w' = sqrt(w² + (D·L·Δλ)²)
//
// with the dispersion term converted from ps to seconds. Lost photons
// keep whatever arrival time they had.
func (f *Fiber) Propagate(p *photon.Event, now float64) *photon.Event {
	if f.rng.Float64() >= f.Transmission() {
		p.Transmitted = false
		return p
	}
	p.Transmitted = true
	p.ArrivalTime = now + f.Delay()
	if p.PulseWidth > 0 && p.SpectralWidth > 0 {
		broadening := f.dispPerNmM * f.length * p.SpectralWidth * 1e-12
		p.PulseWidth = math.Sqrt(p.PulseWidth*p.PulseWidth + broadening*broadening)
	}
	return p
}
