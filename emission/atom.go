package emission

import (
	"errors"
	"math"

	"golang.org/x/exp/rand"

	"github.com/atomlink/herald/photon"
)

// Physical constants for the Rabi-frequency estimate.
const (
	hbar     = 1.055e-34 // J·s
	dipole   = 3e-29     // C·m, transition dipole moment
	epsilon0 = 8.85e-12  // F/m
	cLight   = 3e8       // m/s

	beamWaist = 10e-6 // m, excitation beam radius at the atom
)

// Rb87 D2 line.
const (
	d2Wavelength  = 780.0           // nm
	d2Frequency   = cLight / 780e-9 // Hz
	detuningScale = 0.1             // sensitivity of excitation to detuning
)

// ErrNotExcited is returned by Decay when the atom has no excited-state
// population to decay from.
var ErrNotExcited = errors.New("emission: atom not excited")

// An Atom is a single trapped Rb87 atom prepared in 5S1/2, F=1, mF=0.
// Excitation drives it to 5P3/2, and spontaneous decay brings it back
// to F=1, mF=±1, emitting one sigma-polarized photon. An Atom is not
// safe for concurrent use.
type Atom struct {
	// Lifetime is the excited-state lifetime in seconds. Informational
	// for now; decay is assumed prompt on the pulse timescale.
	Lifetime float64

	rng     *rand.Rand
	state   photon.AtomTag
	excited bool
	// pulsePol is the polarization of the pulse that excited the atom;
	// it biases the decay branching ratios.
	pulsePol photon.Polarization
}

// AtomOpts packages together the arguments necessary to construct an
// Atom.
type AtomOpts struct {
	// Lifetime is the excited-state lifetime in seconds. Defaults to
	// 26 ns, the Rb87 5P3/2 value.
	Lifetime float64

	// Rand provides the excitation and branching randomness. Must be
	// non-nil.
	Rand *rand.Rand
}

// NewAtom returns an Atom in its ground state, or a *ConfigError if
// the options are nonsensical.
func NewAtom(opts AtomOpts) (*Atom, error) {
	if opts.Lifetime < 0 {
		return nil, &ConfigError{"lifetime", "must be non-negative"}
	}
	if opts.Rand == nil {
		return nil, &ConfigError{"rand", "must be non-nil"}
	}
	lifetime := opts.Lifetime
	if lifetime == 0 {
		lifetime = 26e-9
	}
	return &Atom{
		Lifetime: lifetime,
		rng:      opts.Rand,
		state:    photon.AtomTag{F: 1, MF: 0},
	}, nil
}

// State returns the atom's current hyperfine ground-state tag.
func (a *Atom) State() photon.AtomTag { return a.state }

// Excited reports whether the atom currently holds excited-state
// population.
func (a *Atom) Excited() bool { return a.excited }

// RabiFrequency estimates the Rabi frequency, in rad/s, driven by a
// pulse of the given power focused to the configured beam waist.
// Non-positive power yields 0.
func RabiFrequency(power float64) float64 {
	if power <= 0 {
		return 0
	}
	area := math.Pi * beamWaist * beamWaist
	intensity := power / area
	e0 := math.Sqrt(2 * intensity / (epsilon0 * cLight))
	return dipole * e0 / hbar
}

// Excite attempts to drive the atom with one pulse. The excitation
// probability is
//
//	P = sin²(Ωτ/2) · exp(−|Δ|/0.1)
//
// with Ω the Rabi frequency, τ the pulse duration and Δ the detuning.
// It returns the computed probability and whether the Monte-Carlo draw
// excited the atom.
func (a *Atom) Excite(p Pulse) (prob float64, excited bool) {
	omega := RabiFrequency(p.Power)
	theta := omega * p.Duration
	s := math.Sin(theta / 2)
	prob = s * s * math.Exp(-math.Abs(p.Detuning)/detuningScale)

	if a.rng.Float64() < prob {
		a.excited = true
		a.pulsePol = p.Polarization
		return prob, true
	}
	return prob, false
}

// Decay simulates spontaneous emission at simulation time now. The
// decay branch follows the exciting pulse's polarization: sigma+ pulses
// branch 0.8/0.2 toward mF=+1, sigma- pulses the reverse, anything
// else 0.5/0.5. The emitted photon carries the branch's sigma
// polarization and the atom's final-state tag; its arrival time is
// unset until a propagation stage stamps one.
//
// Decay returns ErrNotExcited if the atom holds no excited population.
func (a *Atom) Decay(now float64) (*photon.Event, error) {
	if !a.excited {
		return nil, ErrNotExcited
	}

	var ratioPlus float64
	switch a.pulsePol {
	case photon.SigmaPlus:
		ratioPlus = 0.8
	case photon.SigmaMinus:
		ratioPlus = 0.2
	default:
		ratioPlus = 0.5
	}

	finalMF := -1
	pol := photon.SigmaMinus
	if a.rng.Float64() < ratioPlus {
		finalMF = +1
		pol = photon.SigmaPlus
	}

	a.excited = false
	a.state = photon.AtomTag{F: 1, MF: finalMF}

	p := photon.New()
	p.EmissionTime = now
	p.Wavelength = d2Wavelength
	p.Frequency = d2Frequency
	p.Polarization = pol
	p.Direction = [3]float64{0, 0, 1}
	p.OriginatingAtom = a.state
	p.EmissionProbability = 1.0
	return p, nil
}

// Reset returns the atom to its initial ground state, discarding any
// excited population.
func (a *Atom) Reset() {
	a.state = photon.AtomTag{F: 1, MF: 0}
	a.excited = false
	a.pulsePol = photon.PolarizationUnknown
}
