package channel

import (
	"math"

	"golang.org/x/exp/rand"

	"github.com/atomlink/herald/photon"
)

// CollectorOpts packages together the arguments necessary to construct
// a Collector.
type CollectorOpts struct {
	// NumericalAperture of the collection optics. Must satisfy
	// 0 < NA/n <= 1.
	NumericalAperture float64

	// RefractiveIndex of the surrounding medium. Defaults to 1 (air).
	RefractiveIndex float64

	// ExtraEfficiency multiplies the geometric collection efficiency
	// to account for coupling and reflection losses. The product must
	// land in [0, 1].
	ExtraEfficiency float64

	// Rand provides the collection randomness. Must be non-nil.
	Rand *rand.Rand
}

// A Collector models high-NA collection optics capturing photons
// emitted into the full solid angle.
type Collector struct {
	efficiency float64
	rng        *rand.Rand
}

// NewCollector returns a Collector configured per opts, or a
// *ConfigError if the options are nonsensical. The geometric
// collection efficiency is the captured fraction of the full solid
// angle,
//
//	η = (1 − cos θ)/2,  θ = asin(NA/n)
//
// scaled by ExtraEfficiency.
func NewCollector(opts CollectorOpts) (*Collector, error) {
	n := opts.RefractiveIndex
	if n == 0 {
		n = 1
	}
	if n < 0 {
		return nil, &ConfigError{"refractive index", "must be positive"}
	}
	if opts.NumericalAperture <= 0 || opts.NumericalAperture/n > 1 {
		return nil, &ConfigError{"numerical aperture", "NA/n must be in (0, 1]"}
	}
	if opts.ExtraEfficiency < 0 {
		return nil, &ConfigError{"extra efficiency", "must be non-negative"}
	}
	if opts.Rand == nil {
		return nil, &ConfigError{"rand", "must be non-nil"}
	}
	theta := math.Asin(opts.NumericalAperture / n)
	eta := (1 - math.Cos(theta)) / 2 * opts.ExtraEfficiency
	if eta > 1 {
		return nil, &ConfigError{"extra efficiency", "total collection efficiency exceeds 1"}
	}
	return &Collector{efficiency: eta, rng: opts.Rand}, nil
}

// Efficiency returns the total collection efficiency in [0, 1].
func (c *Collector) Efficiency() float64 { return c.efficiency }

// Collect attempts to capture one emitted photon, stamping Collected
// with the outcome.
func (c *Collector) Collect(p *photon.Event) *photon.Event {
	p.Collected = c.rng.Float64() < c.efficiency
	return p
}
