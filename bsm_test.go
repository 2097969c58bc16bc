package herald

import (
	"math"
	"testing"

	"golang.org/x/exp/rand"

	"github.com/atomlink/herald/photon"
	"github.com/atomlink/herald/spd"
)

// testPair returns the canonical test photons: arrivals 1 ns and
// 1.2 ns, opposite circular polarizations.
func testPair() (*photon.Event, *photon.Event) {
	p1, p2 := photon.New(), photon.New()
	p1.ArrivalTime = 1e-9
	p1.Polarization = photon.LeftCircular
	p1.Wavelength = 780
	p1.Frequency = 3e8 / 780e-9
	p1.EmissionProbability = 1
	p1.OriginatingAtom = photon.AtomTag{F: 1, MF: 1}
	p2.ArrivalTime = 1.2e-9
	p2.Polarization = photon.RightCircular
	p2.Wavelength = 780
	return p1, p2
}

func newRealistic(t *testing.T, window, visibility float64) *BSM {
	t.Helper()
	sel, err := NewInterferenceSelector(InterferenceOpts{
		Visibility: visibility,
		Rand:       rand.New(rand.NewSource(42)),
	})
	if err != nil {
		t.Fatalf("Building selector: %v", err)
	}
	b, err := New(Opts{CoincidenceWindow: window, Selector: sel})
	if err != nil {
		t.Fatalf("Building BSM: %v", err)
	}
	return b
}

func newSimplified(t *testing.T, window, gateEfficiency float64, keep bool) *BSM {
	t.Helper()
	sel, err := NewFourStateSelector(FourStateOpts{Rand: rand.New(rand.NewSource(43))})
	if err != nil {
		t.Fatalf("Building selector: %v", err)
	}
	gate, err := spd.New(spd.Opts{
		DetectionEfficiency: gateEfficiency,
		Rand:                rand.New(rand.NewSource(44)),
	})
	if err != nil {
		t.Fatalf("Building gate detector: %v", err)
	}
	b, err := New(Opts{
		CoincidenceWindow:           window,
		Selector:                    sel,
		Detector:                    gate,
		KeepStateOnDetectionFailure: keep,
	})
	if err != nil {
		t.Fatalf("Building BSM: %v", err)
	}
	return b
}

func TestNewValidation(t *testing.T) {
	sel, err := NewFourStateSelector(FourStateOpts{Rand: rand.New(rand.NewSource(1))})
	if err != nil {
		t.Fatalf("Building selector: %v", err)
	}
	if _, err := New(Opts{CoincidenceWindow: -1e-9, Selector: sel}); err == nil {
		t.Error("negative window: expected config error, got nil")
	}
	if _, err := New(Opts{CoincidenceWindow: 1e-9}); err == nil {
		t.Error("nil selector: expected config error, got nil")
	}
}

func TestRealisticCoincidentSuccess(t *testing.T) {
	b := newRealistic(t, 0.5e-9, 1.0)
	for i := 0; i < 100; i++ {
		p1, p2 := testPair()
		res := b.Measure(p1, p2)
		if !res.Success {
			t.Fatalf("measurement failed with perfect visibility: %+v", res)
		}
		if !res.State.Antisymmetric() {
			t.Fatalf("state = %v, want Ψ⁻ or Ψ⁺", res.State)
		}
		if math.Abs(res.TimeDiff-0.2e-9) > 1e-18 {
			t.Fatalf("time difference = %v, want 0.2e-9", res.TimeDiff)
		}
	}
}

func TestNonCoincidentInconclusive(t *testing.T) {
	b := newRealistic(t, 0.1e-9, 1.0)
	p1, p2 := testPair()
	res := b.Measure(p1, p2)
	if res.Success {
		t.Fatal("measurement succeeded outside the coincidence window")
	}
	if res.State != Inconclusive {
		t.Errorf("state = %v, want Inconclusive", res.State)
	}
	if math.Abs(res.TimeDiff-0.2e-9) > 1e-18 {
		t.Errorf("time difference = %v, want 0.2e-9", res.TimeDiff)
	}
}

func TestMissingArrivalTime(t *testing.T) {
	b := newRealistic(t, 0.5e-9, 1.0)
	p1, p2 := testPair()
	p2.ArrivalTime = math.NaN()
	res := b.Measure(p1, p2)
	if res.Success || res.State != Inconclusive {
		t.Fatalf("measurement with missing timestamp: %+v", res)
	}
	if !math.IsNaN(res.TimeDiff) {
		t.Errorf("time difference = %v, want NaN", res.TimeDiff)
	}
}

func TestZeroVisibilityInconclusive(t *testing.T) {
	b := newRealistic(t, 0.5e-9, 0)
	for i := 0; i < 100; i++ {
		p1, p2 := testPair()
		res := b.Measure(p1, p2)
		if res.Success || res.State != Inconclusive {
			t.Fatalf("zero-visibility measurement: %+v", res)
		}
		if math.Abs(res.TimeDiff-0.2e-9) > 1e-18 {
			t.Fatalf("time difference = %v, want 0.2e-9", res.TimeDiff)
		}
	}
}

func TestSimplifiedDetectionGate(t *testing.T) {
	// A perfect gate detector never vetoes; the outcome distribution is
	// the selector's.
	b := newSimplified(t, 0.5e-9, 1, false)
	sawLabel := map[BellState]bool{}
	for i := 0; i < 1000; i++ {
		p1, p2 := testPair()
		res := b.Measure(p1, p2)
		if !res.Success {
			t.Fatalf("measurement failed with perfect gate: %+v", res)
		}
		sawLabel[res.State] = true
	}
	for _, s := range []BellState{PsiMinus, PsiPlus, AmbiguousSymmetric} {
		if !sawLabel[s] {
			t.Errorf("1000 trials never produced %v", s)
		}
	}

	// A dead gate detector vetoes everything, collapsing to
	// Inconclusive by default.
	b = newSimplified(t, 0.5e-9, 0, false)
	for i := 0; i < 100; i++ {
		p1, p2 := testPair()
		res := b.Measure(p1, p2)
		if res.Success {
			t.Fatalf("measurement succeeded through a dead gate: %+v", res)
		}
		if res.State != Inconclusive {
			t.Fatalf("state = %v, want Inconclusive", res.State)
		}
	}
}

func TestKeepStateOnDetectionFailure(t *testing.T) {
	b := newSimplified(t, 0.5e-9, 0, true)
	sawLabel := false
	for i := 0; i < 200; i++ {
		p1, p2 := testPair()
		res := b.Measure(p1, p2)
		if res.Success {
			t.Fatalf("measurement succeeded through a dead gate: %+v", res)
		}
		if res.State != Inconclusive {
			sawLabel = true
			if res.State != AmbiguousSymmetric && !res.State.Antisymmetric() {
				t.Fatalf("kept state = %v, not a selector outcome", res.State)
			}
		}
	}
	if !sawLabel {
		t.Error("KeepStateOnDetectionFailure never preserved a selected state")
	}
}

func TestSimplifiedGateIsStatelessAcrossCalls(t *testing.T) {
	// The gate detector carries a dead time far longer than the gap
	// between measurements; the embedded reset must keep successive
	// calls independent.
	sel, err := NewFourStateSelector(FourStateOpts{Rand: rand.New(rand.NewSource(45))})
	if err != nil {
		t.Fatalf("Building selector: %v", err)
	}
	gate, err := spd.New(spd.Opts{
		DetectionEfficiency: 1,
		DeadTime:            math.Inf(1),
		Rand:                rand.New(rand.NewSource(46)),
	})
	if err != nil {
		t.Fatalf("Building gate detector: %v", err)
	}
	b, err := New(Opts{CoincidenceWindow: 0.5e-9, Selector: sel, Detector: gate})
	if err != nil {
		t.Fatalf("Building BSM: %v", err)
	}
	for i := 0; i < 10; i++ {
		p1, p2 := testPair()
		if res := b.Measure(p1, p2); !res.Success {
			t.Fatalf("call %d failed: gate state leaked across measurements: %+v", i, res)
		}
	}
}

func TestMergeEffective(t *testing.T) {
	p1, p2 := testPair()
	eff := mergeEffective(p1, p2, PsiPlus)
	if eff.ArrivalTime != 1.1e-9 {
		t.Errorf("effective arrival = %v, want mean 1.1e-9", eff.ArrivalTime)
	}
	if eff.Wavelength != p1.Wavelength || eff.Frequency != p1.Frequency {
		t.Error("effective photon did not copy shared attributes from the first input")
	}
	if eff.OriginatingAtom != p1.OriginatingAtom {
		t.Errorf("effective atom tag = %+v, want %+v", eff.OriginatingAtom, p1.OriginatingAtom)
	}
	if eff.EffectiveState != PsiPlus.String() {
		t.Errorf("effective state tag = %q, want %q", eff.EffectiveState, PsiPlus.String())
	}
}

func TestBellStateLabels(t *testing.T) {
	tcs := []struct {
		state BellState
		want  string
	}{
		{PsiMinus, "Ψ⁻"},
		{PsiPlus, "Ψ⁺"},
		{PhiPlus, "Φ⁺"},
		{PhiMinus, "Φ⁻"},
		{AmbiguousSymmetric, "Ambiguous_Symmetric"},
		{Inconclusive, "Inconclusive"},
	}
	for _, tc := range tcs {
		if got := tc.state.String(); got != tc.want {
			t.Errorf("String(%d) = %q, want %q", tc.state, got, tc.want)
		}
	}
}
