// sweep.go runs a full heralded-link Monte-Carlo experiment for each
// entry in the cartesian product of a collection of tuning parameters,
// e.g. detection efficiency and coincidence window, and outputs a CSV
// of relevant statistics for each combination, e.g. heralding rates and
// Bell-state measurement outcomes.
package main

import (
	"fmt"
	"log"
	"math"
	"os"
	"strings"
	"text/template"

	flag "github.com/spf13/pflag"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat"
	"gopkg.in/yaml.v3"

	"github.com/atomlink/herald"
	"github.com/atomlink/herald/channel"
	"github.com/atomlink/herald/emission"
	"github.com/atomlink/herald/photon"
	"github.com/atomlink/herald/spd"
)

var (
	trials = flag.IntSlice("trials", []int{10000},
		"The number of excitation attempts per parameter combination.")
	efficiency = flag.Float64Slice("efficiency", []float64{0.6},
		"The detection efficiency of the heralding detectors.")
	darkRate = flag.Float64Slice("darkRate", []float64{100},
		"The dark count rate of the heralding detectors, counts/s.")
	jitter = flag.Float64Slice("jitter", []float64{50e-12},
		"The detector timing jitter standard deviation, seconds.")
	deadTime = flag.Float64Slice("deadTime", []float64{1e-6},
		"The detector dead time, seconds.")
	window = flag.Float64Slice("window", []float64{0.5e-9},
		"The BSM coincidence window, seconds.")
	visibility = flag.Float64Slice("visibility", []float64{0.9},
		"The two-photon interference visibility (realistic mode).")
	fiberLen = flag.Float64Slice("fiberLen", []float64{700},
		"The fiber length per arm, meters.")

	mode = flag.String("mode", "realistic",
		"BSM model: 'realistic' (interference-gated) or 'simplified' (detection-gated).")
	configPath = flag.String("config", "",
		"Optional YAML file with fixed link parameters.")
	seed = flag.Uint64("seed", 42, "Base seed for all random sources.")
)

var (
	inputs = []string{"trials", "efficiency", "darkRate", "jitter", "deadTime",
		"window", "visibility", "fiberLen"}
	columns = []string{"Trials", "Efficiency", "DarkRate", "Jitter", "DeadTime",
		"Window", "Visibility", "FiberLen", "HeraldsA", "HeraldsB", "Pairs",
		"Successes", "PsiMinus", "PsiPlus", "Ambiguous", "MeanDiff", "StdDiff"}
)

// An Experiment packages together the result of sweeping a single
// parameterization for easy formatting.
type Experiment struct {
	// Fields corresponding to experiment parameters
	Trials     int
	Efficiency float64
	DarkRate   float64
	Jitter     float64
	DeadTime   float64
	Window     float64
	Visibility float64
	FiberLen   float64

	// Fields corresponding to experiment results
	HeraldsA  int
	HeraldsB  int
	Pairs     int
	Successes int
	PsiMinus  int
	PsiPlus   int
	Ambiguous int
	MeanDiff  float64
	StdDiff   float64
}

// A linkConfig holds the fixed link parameters not worth sweeping,
// loadable from a YAML file.
type linkConfig struct {
	Laser struct {
		Power               float64 `yaml:"power"`
		Wavelength          float64 `yaml:"wavelength"`
		PulseDuration       float64 `yaml:"pulse_duration"`
		NoiseLevel          float64 `yaml:"noise_level"`
		Detuning            float64 `yaml:"detuning"`
		AlignmentEfficiency float64 `yaml:"alignment_efficiency"`
	} `yaml:"laser"`
	Collector struct {
		NumericalAperture float64 `yaml:"numerical_aperture"`
		RefractiveIndex   float64 `yaml:"refractive_index"`
		ExtraEfficiency   float64 `yaml:"extra_efficiency"`
	} `yaml:"collector"`
	Fiber struct {
		AttenuationDBPerKm  float64 `yaml:"attenuation_db_per_km"`
		DispersionPsPerNmKm float64 `yaml:"dispersion_ps_per_nm_km"`
		GroupVelocity       float64 `yaml:"group_velocity"`
	} `yaml:"fiber"`
}

func defaultConfig() linkConfig {
	var c linkConfig
	c.Laser.Power = 0.44e-3
	c.Laser.Wavelength = 780
	c.Laser.PulseDuration = 1.1e-6
	c.Laser.NoiseLevel = 0.1
	c.Laser.AlignmentEfficiency = 0.95
	c.Collector.NumericalAperture = 0.7
	c.Collector.RefractiveIndex = 1.0
	c.Collector.ExtraEfficiency = 1.0
	c.Fiber.AttenuationDBPerKm = 4
	c.Fiber.DispersionPsPerNmKm = 17
	c.Fiber.GroupVelocity = 2e8
	return c
}

func loadConfig(path string) (linkConfig, error) {
	c := defaultConfig()
	if path == "" {
		return c, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return c, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("parse yaml: %w", err)
	}
	return c, nil
}

func main() {
	flag.Parse()
	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("Loading config: %v", err)
	}
	fmt.Println(header())
	tmpl := template.Must(template.New("line").Parse(lineTmpl()))
	var args [][]interface{}
	for _, inp := range inputs {
		args = append(args, lookupInput(inp))
	}
	applyCartesian(func(args []interface{}) {
		exp := &Experiment{
			Trials:     args[inpIndex("trials")].(int),
			Efficiency: args[inpIndex("efficiency")].(float64),
			DarkRate:   args[inpIndex("darkRate")].(float64),
			Jitter:     args[inpIndex("jitter")].(float64),
			DeadTime:   args[inpIndex("deadTime")].(float64),
			Window:     args[inpIndex("window")].(float64),
			Visibility: args[inpIndex("visibility")].(float64),
			FiberLen:   args[inpIndex("fiberLen")].(float64),
		}
		if err := sweep(exp, cfg); err != nil {
			log.Printf("Sweeping %v: %v", exp, err)
		}
		if err := tmpl.Execute(os.Stdout, exp); err != nil {
			log.Fatalf("BUG: could not fill in line template: %v", err)
		}
	}, args)
}

// An arm is one emission-to-detection chain of the link.
type arm struct {
	laser     *emission.Laser
	atom      *emission.Atom
	collector *channel.Collector
	fiber     *channel.Fiber
	detector  *spd.Detector
}

func buildArm(exp *Experiment, cfg linkConfig, rng *rand.Rand) (*arm, error) {
	laser, err := emission.NewLaser(emission.LaserOpts{
		Power:               cfg.Laser.Power,
		Wavelength:          cfg.Laser.Wavelength,
		PulseDuration:       cfg.Laser.PulseDuration,
		NoiseLevel:          cfg.Laser.NoiseLevel,
		Detuning:            cfg.Laser.Detuning,
		AlignmentEfficiency: cfg.Laser.AlignmentEfficiency,
		Polarization:        photon.SigmaPlus,
		Rand:                rng,
	})
	if err != nil {
		return nil, err
	}
	atom, err := emission.NewAtom(emission.AtomOpts{Rand: rng})
	if err != nil {
		return nil, err
	}
	collector, err := channel.NewCollector(channel.CollectorOpts{
		NumericalAperture: cfg.Collector.NumericalAperture,
		RefractiveIndex:   cfg.Collector.RefractiveIndex,
		ExtraEfficiency:   cfg.Collector.ExtraEfficiency,
		Rand:              rng,
	})
	if err != nil {
		return nil, err
	}
	fiber, err := channel.NewFiber(channel.FiberOpts{
		Length:              exp.FiberLen,
		AttenuationDBPerKm:  cfg.Fiber.AttenuationDBPerKm,
		DispersionPsPerNmKm: cfg.Fiber.DispersionPsPerNmKm,
		GroupVelocity:       cfg.Fiber.GroupVelocity,
		Rand:                rng,
	})
	if err != nil {
		return nil, err
	}
	detector, err := spd.New(spd.Opts{
		DetectionEfficiency: exp.Efficiency,
		DarkCountRate:       exp.DarkRate,
		TimingJitter:        exp.Jitter,
		DeadTime:            exp.DeadTime,
		Rand:                rng,
	})
	if err != nil {
		return nil, err
	}
	return &arm{laser, atom, collector, fiber, detector}, nil
}

// attempt runs one excitation attempt on the arm at simulation time
// now, returning the heralded photon or nil.
func (a *arm) attempt(now float64) *photon.Event {
	pulse := a.laser.Emit()
	if _, excited := a.atom.Excite(pulse); !excited {
		return nil
	}
	p, err := a.atom.Decay(now + pulse.Duration)
	if err != nil {
		return nil
	}
	if !a.collector.Collect(p).Collected {
		return nil
	}
	if !a.fiber.Propagate(p, p.EmissionTime).Transmitted {
		return nil
	}
	det := a.detector.Detect(p, p.ArrivalTime)
	if !det.Detected || det.Type != spd.EventPhoton {
		return nil
	}
	return p
}

func buildBSM(exp *Experiment, rng *rand.Rand) (*herald.BSM, error) {
	switch *mode {
	case "realistic":
		sel, err := herald.NewInterferenceSelector(herald.InterferenceOpts{
			Visibility: exp.Visibility,
			Rand:       rng,
		})
		if err != nil {
			return nil, err
		}
		return herald.New(herald.Opts{
			CoincidenceWindow: exp.Window,
			Selector:          sel,
		})
	case "simplified":
		sel, err := herald.NewFourStateSelector(herald.FourStateOpts{Rand: rng})
		if err != nil {
			return nil, err
		}
		gate, err := spd.New(spd.Opts{
			DetectionEfficiency: exp.Efficiency,
			DarkCountRate:       exp.DarkRate,
			TimingJitter:        exp.Jitter,
			DeadTime:            exp.DeadTime,
			Rand:                rng,
		})
		if err != nil {
			return nil, err
		}
		return herald.New(herald.Opts{
			CoincidenceWindow: exp.Window,
			Selector:          sel,
			Detector:          gate,
		})
	}
	return nil, fmt.Errorf("unknown mode %q", *mode)
}

func sweep(exp *Experiment, cfg linkConfig) error {
	armA, err := buildArm(exp, cfg, rand.New(rand.NewSource(*seed)))
	if err != nil {
		return err
	}
	armB, err := buildArm(exp, cfg, rand.New(rand.NewSource(*seed+1)))
	if err != nil {
		return err
	}
	bsm, err := buildBSM(exp, rand.New(rand.NewSource(*seed+2)))
	if err != nil {
		return err
	}

	var diffs []float64
	// One excitation attempt per repetition period on each arm; atoms
	// and heralding detectors are decoupled between attempts.
	const period = 10e-6
	for i := 0; i < exp.Trials; i++ {
		now := float64(i) * period
		pa := armA.attempt(now)
		pb := armB.attempt(now)
		armA.atom.Reset()
		armB.atom.Reset()
		armA.detector.Reset()
		armB.detector.Reset()
		if pa != nil {
			exp.HeraldsA++
		}
		if pb != nil {
			exp.HeraldsB++
		}
		if pa == nil || pb == nil {
			continue
		}
		exp.Pairs++
		res := bsm.Measure(pa, pb)
		if !math.IsNaN(res.TimeDiff) {
			diffs = append(diffs, res.TimeDiff)
		}
		if !res.Success {
			continue
		}
		exp.Successes++
		switch res.State {
		case herald.PsiMinus:
			exp.PsiMinus++
		case herald.PsiPlus:
			exp.PsiPlus++
		case herald.AmbiguousSymmetric:
			exp.Ambiguous++
		}
	}
	if len(diffs) > 0 {
		exp.MeanDiff = stat.Mean(diffs, nil)
		exp.StdDiff = stat.StdDev(diffs, nil)
	}
	return nil
}

func header() string {
	return strings.Join(columns, ", ")
}

func lineTmpl() string {
	var els []string
	for _, c := range columns {
		els = append(els, "{{."+c+"}}")
	}
	return strings.Join(els, ", ") + "\n"
}

func inpIndex(v string) int {
	for i, inp := range inputs {
		if inp == v {
			return i
		}
	}
	return -1
}

func lookupInput(name string) []interface{} {
	var r []interface{}
	if v, err := flag.CommandLine.GetIntSlice(name); err == nil {
		for _, val := range v {
			r = append(r, val)
		}
	} else if v, err := flag.CommandLine.GetFloat64Slice(name); err == nil {
		for _, val := range v {
			r = append(r, val)
		}
	} else {
		log.Fatalf("Unknown type for input %s", name)
	}
	return r
}

func applyCartesian(f func([]interface{}), args [][]interface{}) {
	for i := range args {
		if len(args[i]) == 1 {
			continue
		}
		l := make([][]interface{}, len(args))
		r := make([][]interface{}, len(args))
		copy(l, args)
		copy(r, args)
		l[i] = args[i][:1]
		r[i] = args[i][1:]
		applyCartesian(f, l)
		applyCartesian(f, r)
		return
	}
	x := make([]interface{}, 0, len(args))
	for _, a := range args {
		x = append(x, a[0])
	}
	f(x)
}
