// Package spd models a noisy, dead-time-limited single-photon
// detector: detection-efficiency and dark-count Bernoulli trials,
// Gaussian timing jitter, and an availability window enforced between
// successive detections.
package spd

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/atomlink/herald/photon"
)

// darkCountWindow is the implicit resolution window over which a single
// dark-count trial is evaluated.
const darkCountWindow = 1e-9 // seconds

// An EventType classifies what, if anything, a detection attempt
// registered.
type EventType int

const (
	// EventNone means the detector registered nothing: it was either
	// blocked by dead time or both Bernoulli trials failed.
	EventNone EventType = iota

	// EventPhoton means an incident photon was registered.
	EventPhoton

	// EventDarkCount means a false count fired with no incident photon
	// behind it.
	EventDarkCount
)

// String returns the wire-friendly label for t.
func (t EventType) String() string {
	switch t {
	case EventPhoton:
		return "photon"
	case EventDarkCount:
		return "dark_count"
	}
	return "none"
}

// An Event is the outcome of a single detection attempt. Time is NaN
// unless Detected is true. Photon is non-nil only for EventPhoton.
type Event struct {
	Detected bool
	Time     float64
	Type     EventType
	Photon   *photon.Event
}

// A ConfigError reports a detector option outside its physical range.
type ConfigError struct {
	Param  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("spd config: %s %s", e.Param, e.Reason)
}

// Opts packages together the arguments necessary to construct a
// Detector.
type Opts struct {
	// DetectionEfficiency is the probability, in [0, 1], that an
	// incident photon registers.
	DetectionEfficiency float64

	// DarkCountRate is the false-count rate in counts per second.
	// Must be non-negative.
	DarkCountRate float64

	// TimingJitter is the standard deviation, in seconds, of the
	// zero-mean Gaussian perturbation applied to every registered
	// timestamp. Must be non-negative.
	TimingJitter float64

	// DeadTime is the interval, in seconds, after a registered event
	// during which the detector is blocked. Defaults to 0.
	DeadTime float64

	// Rand provides the randomness consumed by detection trials and
	// jitter draws. Must be non-nil; seed it for reproducible runs.
	Rand *rand.Rand
}

// A Detector is a single-photon detector with persistent dead-time
// state. A Detector is not safe for concurrent use: callers must
// serialize access or use one instance per detection channel.
type Detector struct {
	efficiency float64
	darkRate   float64
	deadTime   float64
	rng        *rand.Rand
	jitter     distuv.Normal

	// last is the timestamp of the most recent registered event, or
	// -Inf if the detector has never fired (or was reset). Because
	// jitter perturbs timestamps, last is only non-decreasing in
	// expectation; slight backward jumps are tolerated.
	last float64
}

// New returns a Detector configured per opts, or a *ConfigError if the
// options are nonsensical.
func New(opts Opts) (*Detector, error) {
	if opts.DetectionEfficiency < 0 || opts.DetectionEfficiency > 1 {
		return nil, &ConfigError{"detection efficiency", "must be in [0, 1]"}
	}
	if opts.DarkCountRate < 0 {
		return nil, &ConfigError{"dark count rate", "must be non-negative"}
	}
	if opts.TimingJitter < 0 {
		return nil, &ConfigError{"timing jitter", "must be non-negative"}
	}
	if opts.DeadTime < 0 {
		return nil, &ConfigError{"dead time", "must be non-negative"}
	}
	if opts.Rand == nil {
		return nil, &ConfigError{"rand", "must be non-nil"}
	}
	return &Detector{
		efficiency: opts.DetectionEfficiency,
		darkRate:   opts.DarkCountRate,
		deadTime:   opts.DeadTime,
		rng:        opts.Rand,
		jitter:     distuv.Normal{Mu: 0, Sigma: opts.TimingJitter, Src: opts.Rand},
		last:       math.Inf(-1),
	}, nil
}

// Available reports whether the detector is outside its dead-time
// window at currentTime. It is a pure query with no side effects.
func (d *Detector) Available(currentTime float64) bool {
	return currentTime-d.last >= d.deadTime
}

// Detect attempts to register the photon p arriving at arrivalTime.
//
// A blocked detector returns the empty event without consuming any
// randomness. Otherwise one efficiency trial runs and, on failure, one
// dark-count trial over a 1 ns resolution window. Registered events
// carry a jitter-perturbed timestamp, and dead time is anchored on that
// jittered timestamp rather than the true arrival time, so under large
// jitter the effective dead-time window can be slightly shorter or
// longer than configured.
func (d *Detector) Detect(p *photon.Event, arrivalTime float64) Event {
	if !d.Available(arrivalTime) {
		return Event{Time: math.NaN()}
	}
	if d.rng.Float64() < d.efficiency {
		t := arrivalTime + d.jitter.Rand()
		d.last = t
		return Event{Detected: true, Time: t, Type: EventPhoton, Photon: p}
	}
	if d.rng.Float64() < d.darkRate*darkCountWindow {
		t := arrivalTime + d.jitter.Rand()
		d.last = t
		return Event{Detected: true, Time: t, Type: EventDarkCount}
	}
	return Event{Time: math.NaN()}
}

// DarkCountTrial runs one independent dark-count trial at currentTime,
// decoupled from any photon arrival and not gated by Available. A
// successful trial registers like any other event and starts dead time.
func (d *Detector) DarkCountTrial(currentTime float64) Event {
	if d.rng.Float64() < d.darkRate*darkCountWindow {
		t := currentTime + d.jitter.Rand()
		d.last = t
		return Event{Detected: true, Time: t, Type: EventDarkCount}
	}
	return Event{Time: math.NaN()}
}

// Reset clears the detector's dead-time state, as between independent
// Monte-Carlo trials. After a Reset the detector is available at any
// time.
func (d *Detector) Reset() {
	d.last = math.Inf(-1)
}
