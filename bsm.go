// Package herald implements the stochastic detection-and-coincidence
// core of a heralded entanglement link: coincidence checking between
// two photon timestamps, Bell-state outcome selection, and the
// measurement orchestration that ties them together with an optional
// single-photon-detector gate.
package herald

import (
	"math"

	"github.com/atomlink/herald/photon"
	"github.com/atomlink/herald/spd"
)

// A Result is the outcome of one Bell-state measurement. TimeDiff is
// the absolute arrival-time difference of the two input photons, or
// NaN when either timestamp was missing. Downstream consumers must
// treat a Result as a read-only snapshot.
type Result struct {
	Success  bool
	State    BellState
	TimeDiff float64
}

// Opts packages together the arguments necessary to construct a BSM.
type Opts struct {
	// CoincidenceWindow is the maximum allowed arrival-time difference,
	// in seconds, for two photons to be measured jointly. Must be
	// non-negative.
	CoincidenceWindow float64

	// Selector chooses the Bell-state outcome for a coincident pair.
	// Must be non-nil.
	Selector StateSelector

	// Detector, if non-nil, layers a detection gate on top of state
	// selection: the coincident pair is merged into one effective
	// photon and success additionally requires the detector to
	// register it. This reproduces the simplified measurement model;
	// leave nil for the interference-only realistic model.
	//
	// The detector is reset before each gate trial, so it should be
	// dedicated to this BSM rather than shared with a heralding path.
	Detector *spd.Detector

	// KeepStateOnDetectionFailure keeps the selected Bell state on the
	// result (with Success false) when the detection gate fails. The
	// default collapses such results to Inconclusive, discarding the
	// ambiguous/antisymmetric distinction.
	KeepStateOnDetectionFailure bool
}

// A BSM performs Bell-state measurements over photon pairs. It holds
// no state between calls: each Measure consumes fresh randomness and
// may return a different result for identical inputs. Callers needing
// reproducibility must seed the random sources injected into the
// selector and detector.
type BSM struct {
	window    float64
	selector  StateSelector
	detector  *spd.Detector
	keepState bool
}

// New returns a BSM configured per opts, or a *ConfigError if the
// options are nonsensical.
func New(opts Opts) (*BSM, error) {
	if opts.CoincidenceWindow < 0 || math.IsNaN(opts.CoincidenceWindow) {
		return nil, &ConfigError{"coincidence window", "must be non-negative"}
	}
	if opts.Selector == nil {
		return nil, &ConfigError{"selector", "must be non-nil"}
	}
	return &BSM{
		window:    opts.CoincidenceWindow,
		selector:  opts.Selector,
		detector:  opts.Detector,
		keepState: opts.KeepStateOnDetectionFailure,
	}, nil
}

// Measure performs one Bell-state measurement over p1 and p2.
//
// Photons outside the coincidence window (or missing a timestamp)
// resolve inconclusive, carrying whatever time difference could be
// computed. Coincident photons go to the selector and, when a detector
// gate is configured, the merged effective photon must additionally
// register on the detector for the measurement to succeed.
func (b *BSM) Measure(p1, p2 *photon.Event) Result {
	ok, diff := Coincident(p1.ArrivalTime, p2.ArrivalTime, b.window)
	res := Result{State: Inconclusive, TimeDiff: diff}
	if !ok {
		return res
	}

	state, conclusive := b.selector.Select(p1, p2)
	if !conclusive {
		return res
	}
	if b.detector == nil {
		res.Success = true
		res.State = state
		return res
	}

	eff := mergeEffective(p1, p2, state)
	b.detector.Reset()
	det := b.detector.Detect(eff, eff.ArrivalTime)
	if det.Detected {
		res.Success = true
		res.State = state
	} else if b.keepState {
		res.State = state
	}
	return res
}

// mergeEffective folds a coincident pair into one effective photon
// representing the joint state projected onto the selected Bell state.
// Shared physical attributes come from the first photon; the arrival
// time is the arithmetic mean of both.
func mergeEffective(p1, p2 *photon.Event, state BellState) *photon.Event {
	eff := photon.New()
	eff.Wavelength = p1.Wavelength
	eff.Frequency = p1.Frequency
	eff.OriginatingAtom = p1.OriginatingAtom
	eff.EmissionProbability = p1.EmissionProbability
	eff.EffectiveState = state.String()
	eff.ArrivalTime = (p1.ArrivalTime + p2.ArrivalTime) / 2
	return eff
}
