// Package photon models polarization-encoded single photons as they
// move through an emission/collection/propagation pipeline.
package photon

import "math"

// A Polarization labels the polarization state a photon was emitted or
// prepared in. Circular states carry a definite handedness; sigma
// states are circular states referred to the atomic quantization axis.
type Polarization int

const (
	// PolarizationUnknown marks a photon whose polarization was never
	// set, e.g. a bare timing-only event.
	PolarizationUnknown Polarization = iota

	// SigmaPlus and SigmaMinus are the circular polarizations emitted
	// on sigma+ and sigma- atomic decay transitions.
	SigmaPlus
	SigmaMinus

	// LeftCircular and RightCircular are lab-frame circular states.
	LeftCircular
	RightCircular

	// LinearH and LinearV are linear states already expressed in the
	// measurement basis.
	LinearH
	LinearV
)

// String returns the conventional short label for p.
func (p Polarization) String() string {
	switch p {
	case SigmaPlus:
		return "sigma+"
	case SigmaMinus:
		return "sigma-"
	case LeftCircular:
		return "L"
	case RightCircular:
		return "R"
	case LinearH:
		return "H"
	case LinearV:
		return "V"
	}
	return "unknown"
}

// A LinearState holds a photon's amplitudes projected onto the linear
// H/V measurement basis.
type LinearState struct {
	H, V complex128
}

// Probabilities returns the squared-modulus detection probabilities for
// the H and V ports. Squared moduli are computed as re^2 + im^2.
func (l LinearState) Probabilities() (pH, pV float64) {
	pH = real(l.H)*real(l.H) + imag(l.H)*imag(l.H)
	pV = real(l.V)*real(l.V) + imag(l.V)*imag(l.V)
	return pH, pV
}

// An AtomTag identifies the hyperfine ground state an emitting atom was
// left in. It travels with the photon as opaque provenance metadata.
type AtomTag struct {
	F  int
	MF int
}

// An Event is a single photon record flowing through the link. Pipeline
// stages enrich an Event by stamping additional fields; no stage ever
// clears a field another stage set.
//
// ArrivalTime uses NaN as the "not yet stamped" sentinel: only a
// propagation stage gives a photon an arrival time, and downstream
// consumers treat a NaN arrival as missing timing data rather than an
// error.
type Event struct {
	// Timing, in seconds on the shared simulation clock.
	EmissionTime float64
	ArrivalTime  float64

	// Physical attributes fixed at emission.
	Wavelength          float64 // nm
	Frequency           float64 // Hz
	Polarization        Polarization
	Direction           [3]float64
	OriginatingAtom     AtomTag
	EmissionProbability float64

	// Pulse envelope, optional; zero means unspecified.
	PulseWidth    float64 // seconds
	SpectralWidth float64 // nm

	// Linear is the H/V projection of Polarization, stamped by
	// Linearize. Nil until a basis transformation has run.
	Linear *LinearState

	// Flags stamped by the channel stages.
	Transmitted bool
	Collected   bool

	// EffectiveState tags a merged two-photon record with the Bell
	// state it was projected onto. Empty for ordinary photons.
	EffectiveState string
}

// New returns an Event with no arrival time stamped. All other fields
// start at their zero values.
func New() *Event {
	return &Event{ArrivalTime: math.NaN(), EmissionTime: math.NaN()}
}

// HasArrival reports whether a propagation stage has stamped an arrival
// time on e.
func (e *Event) HasArrival() bool {
	return !math.IsNaN(e.ArrivalTime)
}

// Linearize projects e's circular polarization onto the linear H/V
// basis and stamps the result on e.Linear:
//
//	|L> = (|H> + i|V>)/sqrt(2)
//	|R> = (|H> - i|V>)/sqrt(2)
//
// Sigma states transform like their lab-frame circular counterparts
// (sigma+ as L, sigma- as R). Photons already linear pass through with
// unit amplitude in their own port. An already-stamped Linear state or
// an unknown polarization is left untouched.
func (e *Event) Linearize() {
	if e.Linear != nil {
		return
	}
	const invRoot2 = 1 / math.Sqrt2
	switch e.Polarization {
	case LeftCircular, SigmaPlus:
		e.Linear = &LinearState{
			H: complex(invRoot2, 0),
			V: complex(0, invRoot2),
		}
	case RightCircular, SigmaMinus:
		e.Linear = &LinearState{
			H: complex(invRoot2, 0),
			V: complex(0, -invRoot2),
		}
	case LinearH:
		e.Linear = &LinearState{H: 1}
	case LinearV:
		e.Linear = &LinearState{V: 1}
	}
}
