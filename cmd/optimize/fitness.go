package main

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/stigmergy/config"
	"github.com/pthm-cable/stigmergy/sim"
	"github.com/pthm-cable/stigmergy/telemetry"
)

// Scenario describes the scripted run every evaluation replays: a cursor
// circles the field centre with the primary pointer held, laying a trail,
// while every ant seeks the cursor.
type Scenario struct {
	Ants         int
	Radius       float64 // world units
	AngularSpeed float64 // radians per second
	Ticks        int32
	StatsWindow  float64 // seconds
}

// DefaultScenario returns the scenario used by the CLI.
func DefaultScenario() Scenario {
	return Scenario{
		Ants:         40,
		Radius:       150,
		AngularSpeed: 0.6,
		Ticks:        3600,
		StatsWindow:  2,
	}
}

// cursorAt returns the scripted cursor position at time t.
func (sc Scenario) cursorAt(center r2.Vec, t float64) r2.Vec {
	a := sc.AngularSpeed * t
	return r2.Add(center, r2.Vec{X: sc.Radius * math.Cos(a), Y: sc.Radius * math.Sin(a)})
}

// Fitness weights.
const (
	trailInvisiblePenalty = 1.0 // final field max below full display alpha
	coverageLimit         = 0.5 // fraction of cells above zero before saturation penalty
	coveragePenaltyScale  = 2.0
	warmupWindows         = 1 // windows skipped while ants catch the cursor
)

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params     *ParamVector
	scenario   Scenario
	seeds      []int64
	baseConfig *config.Config

	mu          sync.Mutex
	lastQuality float64 // tracking score from most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, scenario Scenario, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:     params,
		scenario:   scenario,
		seeds:      seeds,
		baseConfig: baseCfg,
	}
}

// LastQuality returns the tracking score from the most recent evaluation.
func (fe *FitnessEvaluator) LastQuality() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastQuality
}

// runResult holds the results from a single simulation run.
type runResult struct {
	windows []telemetry.WindowStats
	err     error
}

// Evaluate computes fitness for a parameter vector (lower = better).
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	results := make([]float64, len(fe.seeds))
	qualities := make([]float64, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			r := fe.runSimulation(x, s, nil)
			if r.err != nil {
				results[idx] = math.Inf(1)
				return
			}
			results[idx] = computeFitness(r.windows, fe.scenario.Radius)
			qualities[idx] = trackingScore(r.windows, fe.scenario.Radius)
		}(i, seed)
	}
	wg.Wait()

	fe.mu.Lock()
	fe.lastQuality = stat.Mean(qualities, nil)
	fe.mu.Unlock()

	return stat.Mean(results, nil)
}

// runSimulation executes one scripted headless run. output may be nil.
func (fe *FitnessEvaluator) runSimulation(x []float64, seed int64, output *telemetry.OutputManager) runResult {
	cfg := fe.copyConfig()
	fe.params.ApplyToConfig(cfg, x)
	cfg.Ants.Count = fe.scenario.Ants
	cfg.Ants.SeekCursor = true
	cfg.Telemetry.StatsWindow = fe.scenario.StatsWindow

	var result runResult
	s, err := sim.New(cfg, sim.Options{
		Seed:   seed,
		Output: output,
		StatsCallback: func(ws telemetry.WindowStats) {
			result.windows = append(result.windows, ws)
		},
	})
	if err != nil {
		result.err = err
		return result
	}
	defer s.Close()

	b := s.Field().Bounds()
	center := r2.Scale(0.5, r2.Add(b.Min, b.Max))
	dt := cfg.Physics.DT

	s.ReportPointerPressed(sim.PointerPrimary, true)
	for s.Tick() < fe.scenario.Ticks {
		s.ReportCursorWorldPosition(fe.scenario.cursorAt(center, s.SimTime()))
		s.Step(dt)
	}
	return result
}

// copyConfig creates a copy of the base config. Config holds only values,
// so a struct copy is deep.
func (fe *FitnessEvaluator) copyConfig() *config.Config {
	cfg := *fe.baseConfig
	return &cfg
}

// trackingScore maps mean ant-to-cursor distance after warmup into [0, 1],
// 1 meaning ants sit on the cursor.
func trackingScore(windows []telemetry.WindowStats, radius float64) float64 {
	if len(windows) <= warmupWindows {
		return 0
	}
	dists := make([]float64, 0, len(windows)-warmupWindows)
	for _, w := range windows[warmupWindows:] {
		dists = append(dists, w.MeanTargetDistance)
	}
	return math.Exp(-stat.Mean(dists, nil) / radius)
}

// computeFitness calculates the scalar fitness (lower = better): negative
// tracking score plus penalties for an invisible or saturated trail.
func computeFitness(windows []telemetry.WindowStats, radius float64) float64 {
	if len(windows) == 0 {
		return math.Inf(1)
	}
	fitness := -trackingScore(windows, radius)

	last := windows[len(windows)-1]
	if last.FieldMax < 1 {
		fitness += trailInvisiblePenalty
	}
	if last.FieldCoverage > coverageLimit {
		fitness += (last.FieldCoverage - coverageLimit) * coveragePenaltyScale
	}
	return fitness
}
