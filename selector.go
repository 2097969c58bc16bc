package herald

import (
	"math"

	"golang.org/x/exp/rand"

	"github.com/atomlink/herald/photon"
)

// weightTolerance bounds how far a weight map's sum may drift from 1
// before construction fails.
const weightTolerance = 1e-9

// A StateSelector chooses a Bell-state outcome for a coincident photon
// pair. The second return value reports whether a state could be
// assigned at all; selectors modeling imperfect interference return
// (Inconclusive, false) when the draw fails.
type StateSelector interface {
	Select(p1, p2 *photon.Event) (BellState, bool)
}

// A FourStateSelector draws unconditionally from the full four-state
// outcome space and collapses symmetric draws into AmbiguousSymmetric,
// since a linear-optical apparatus cannot tell the symmetric states
// apart. It is the selector behind the simplified measurement model.
type FourStateSelector struct {
	// cumulative selection thresholds over states, in order.
	states []BellState
	cum    []float64
	rng    *rand.Rand
}

// FourStateOpts configures a FourStateSelector.
type FourStateOpts struct {
	// Weights maps each of the four Bell states to its selection
	// probability. Nil means uniform. If provided, every key must be
	// one of the four states, every weight non-negative, and the
	// weights must sum to 1.
	Weights map[BellState]float64

	// Rand provides the selection randomness. Must be non-nil.
	Rand *rand.Rand
}

// NewFourStateSelector returns a selector configured per opts, or a
// *ConfigError if the weight map is invalid.
func NewFourStateSelector(opts FourStateOpts) (*FourStateSelector, error) {
	if opts.Rand == nil {
		return nil, &ConfigError{"rand", "must be non-nil"}
	}
	states := []BellState{PsiMinus, PsiPlus, PhiPlus, PhiMinus}
	weights := opts.Weights
	if weights == nil {
		weights = map[BellState]float64{
			PsiMinus: 0.25, PsiPlus: 0.25, PhiPlus: 0.25, PhiMinus: 0.25,
		}
	}
	if len(weights) != len(states) {
		return nil, &ConfigError{"weights", "must cover exactly the four Bell states"}
	}
	sum := 0.0
	cum := make([]float64, 0, len(states))
	for _, s := range states {
		w, ok := weights[s]
		if !ok {
			return nil, &ConfigError{"weights", "missing weight for " + s.String()}
		}
		if w < 0 {
			return nil, &ConfigError{"weights", "negative weight for " + s.String()}
		}
		sum += w
		cum = append(cum, sum)
	}
	if math.Abs(sum-1) > weightTolerance {
		return nil, &ConfigError{"weights", "must sum to 1"}
	}
	return &FourStateSelector{states: states, cum: cum, rng: opts.Rand}, nil
}

// Select draws one of the four Bell states by weight. Symmetric draws
// are reported as AmbiguousSymmetric. The draw is always conclusive.
func (s *FourStateSelector) Select(_, _ *photon.Event) (BellState, bool) {
	u := s.rng.Float64()
	chosen := s.states[len(s.states)-1]
	for i, c := range s.cum {
		if u < c {
			chosen = s.states[i]
			break
		}
	}
	if !chosen.Antisymmetric() {
		return AmbiguousSymmetric, true
	}
	return chosen, true
}

// An InterferenceSelector models two-photon interference on a 50/50
// beam splitter. Both photons are projected into the linear H/V basis,
// then a single Bernoulli draw against the configured visibility
// decides whether the interference was ideal enough to yield a valid
// projection; if so, the outcome is a uniform pick between the two
// distinguishable antisymmetric states. It is the selector behind the
// realistic measurement model.
type InterferenceSelector struct {
	visibility float64
	rng        *rand.Rand
}

// InterferenceOpts configures an InterferenceSelector.
type InterferenceOpts struct {
	// Visibility, in [0, 1], is the probability that the two photons
	// interfere ideally. 1 models perfectly indistinguishable photons.
	Visibility float64

	// Rand provides the gate and selection randomness. Must be
	// non-nil.
	Rand *rand.Rand
}

// NewInterferenceSelector returns a selector configured per opts, or a
// *ConfigError if the options are out of range.
func NewInterferenceSelector(opts InterferenceOpts) (*InterferenceSelector, error) {
	if opts.Visibility < 0 || opts.Visibility > 1 {
		return nil, &ConfigError{"interference visibility", "must be in [0, 1]"}
	}
	if opts.Rand == nil {
		return nil, &ConfigError{"rand", "must be non-nil"}
	}
	return &InterferenceSelector{visibility: opts.Visibility, rng: opts.Rand}, nil
}

// Select projects both photons into the linear basis and runs the
// visibility-gated interference draw. On failure no state can be
// assigned and the measurement is inconclusive.
func (s *InterferenceSelector) Select(p1, p2 *photon.Event) (BellState, bool) {
	p1.Linearize()
	p2.Linearize()
	if s.rng.Float64() >= s.visibility {
		return Inconclusive, false
	}
	if s.rng.Float64() < 0.5 {
		return PsiMinus, true
	}
	return PsiPlus, true
}
