package photon

import (
	"math"
	"testing"
)

func TestNewHasNoArrival(t *testing.T) {
	p := New()
	if p.HasArrival() {
		t.Errorf("fresh event has arrival time %v", p.ArrivalTime)
	}
	p.ArrivalTime = 1e-9
	if !p.HasArrival() {
		t.Error("stamped event reports no arrival")
	}
}

func TestLinearize(t *testing.T) {
	const invRoot2 = 1 / math.Sqrt2
	tcs := []struct {
		name string
		pol  Polarization
		want LinearState
	}{
		{"left circular", LeftCircular, LinearState{H: complex(invRoot2, 0), V: complex(0, invRoot2)}},
		{"sigma plus", SigmaPlus, LinearState{H: complex(invRoot2, 0), V: complex(0, invRoot2)}},
		{"right circular", RightCircular, LinearState{H: complex(invRoot2, 0), V: complex(0, -invRoot2)}},
		{"sigma minus", SigmaMinus, LinearState{H: complex(invRoot2, 0), V: complex(0, -invRoot2)}},
		{"linear H", LinearH, LinearState{H: 1}},
		{"linear V", LinearV, LinearState{V: 1}},
	}
	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			p := New()
			p.Polarization = tc.pol
			p.Linearize()
			if p.Linear == nil {
				t.Fatal("Linearize left no projection")
			}
			if *p.Linear != tc.want {
				t.Errorf("projection = %+v, want %+v", *p.Linear, tc.want)
			}
		})
	}
}

func TestLinearizeUnknownLeavesNil(t *testing.T) {
	p := New()
	p.Linearize()
	if p.Linear != nil {
		t.Errorf("unknown polarization projected to %+v", *p.Linear)
	}
}

func TestLinearizeIdempotent(t *testing.T) {
	p := New()
	p.Polarization = LeftCircular
	p.Linearize()
	first := p.Linear
	p.Polarization = RightCircular
	p.Linearize()
	if p.Linear != first {
		t.Error("Linearize replaced an existing projection")
	}
}

func TestProbabilities(t *testing.T) {
	for _, pol := range []Polarization{LeftCircular, RightCircular, SigmaPlus, SigmaMinus} {
		p := New()
		p.Polarization = pol
		p.Linearize()
		pH, pV := p.Linear.Probabilities()
		if math.Abs(pH-0.5) > 1e-12 || math.Abs(pV-0.5) > 1e-12 {
			t.Errorf("%v: (pH, pV) = (%v, %v), want (0.5, 0.5)", pol, pH, pV)
		}
		if math.Abs(pH+pV-1) > 1e-12 {
			t.Errorf("%v: probabilities sum to %v", pol, pH+pV)
		}
	}
}

func TestPolarizationLabels(t *testing.T) {
	tcs := []struct {
		pol  Polarization
		want string
	}{
		{SigmaPlus, "sigma+"},
		{SigmaMinus, "sigma-"},
		{LeftCircular, "L"},
		{RightCircular, "R"},
		{LinearH, "H"},
		{LinearV, "V"},
		{PolarizationUnknown, "unknown"},
	}
	for _, tc := range tcs {
		if got := tc.pol.String(); got != tc.want {
			t.Errorf("String(%d) = %q, want %q", tc.pol, got, tc.want)
		}
	}
}
