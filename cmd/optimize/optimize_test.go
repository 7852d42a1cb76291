package main

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/stigmergy/config"
	"github.com/pthm-cable/stigmergy/telemetry"
)

func init() {
	config.MustInit("")
}

func TestParamRoundtrip(t *testing.T) {
	pv := NewParamVector()
	def := pv.DefaultVector()

	back := pv.Denormalize(pv.Normalize(def))
	for i := range def {
		if math.Abs(back[i]-def[i]) > 1e-9 {
			t.Errorf("%s: %f -> %f", pv.Specs[i].Name, def[i], back[i])
		}
	}

	for i, v := range pv.Normalize(def) {
		if v < 0 || v > 1 {
			t.Errorf("default %s outside bounds (normalized %f)", pv.Specs[i].Name, v)
		}
	}
}

func TestApplyAndExtract(t *testing.T) {
	pv := NewParamVector()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}

	values := []float64{120, 300, 8, 3, 0.05, 0.02, 10}
	pv.ApplyToConfig(cfg, values)

	if cfg.Ants.RightAntenna.Y != -3 || cfg.Ants.LeftAntenna.Y != 3 {
		t.Errorf("antennae not mirrored: %+v %+v", cfg.Ants.LeftAntenna, cfg.Ants.RightAntenna)
	}
	got := pv.ExtractFromConfig(cfg)
	for i := range values {
		if got[i] != values[i] {
			t.Errorf("%s = %f, want %f", pv.Specs[i].Name, got[i], values[i])
		}
	}
}

func TestApplyClamps(t *testing.T) {
	pv := NewParamVector()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}

	pv.ApplyToConfig(cfg, []float64{-5, 1e6, 1, 1, -1, 2, 5})
	if cfg.Ants.MaxSpeed != 40 || cfg.Ants.MaxForce != 1000 {
		t.Errorf("limits not clamped: speed=%f force=%f", cfg.Ants.MaxSpeed, cfg.Ants.MaxForce)
	}
	if cfg.Field.DiffusionRate != 0 || cfg.Field.DecayRate != 0.2 {
		t.Errorf("rates not clamped: %f %f", cfg.Field.DiffusionRate, cfg.Field.DecayRate)
	}
}

func TestComputeFitness(t *testing.T) {
	good := []telemetry.WindowStats{
		{MeanTargetDistance: 200}, // warmup, ignored
		{MeanTargetDistance: 0, FieldMax: 2, FieldCoverage: 0.1},
	}
	if got := computeFitness(good, 100); math.Abs(got-(-1)) > 1e-12 {
		t.Errorf("perfect tracking fitness = %f, want -1", got)
	}

	faint := []telemetry.WindowStats{{}, {MeanTargetDistance: 0, FieldMax: 0.5}}
	if got := computeFitness(faint, 100); math.Abs(got-0) > 1e-12 {
		t.Errorf("invisible trail fitness = %f, want 0", got)
	}

	saturated := []telemetry.WindowStats{{}, {MeanTargetDistance: 0, FieldMax: 2, FieldCoverage: 0.75}}
	if got := computeFitness(saturated, 100); math.Abs(got-(-0.5)) > 1e-12 {
		t.Errorf("saturated trail fitness = %f, want -0.5", got)
	}

	if !math.IsInf(computeFitness(nil, 100), 1) {
		t.Error("empty run should be infinitely bad")
	}
}

func TestTrackingScoreOrdersDistance(t *testing.T) {
	near := []telemetry.WindowStats{{}, {MeanTargetDistance: 10}}
	far := []telemetry.WindowStats{{}, {MeanTargetDistance: 100}}
	if trackingScore(near, 100) <= trackingScore(far, 100) {
		t.Error("closer tracking should score higher")
	}
	if trackingScore(near[:1], 100) != 0 {
		t.Error("warmup-only run should score 0")
	}
}

func TestScenarioCursor(t *testing.T) {
	sc := Scenario{Radius: 10, AngularSpeed: math.Pi / 2}
	p := sc.cursorAt(r2.Vec{X: 5, Y: 5}, 1)
	if math.Abs(p.X-5) > 1e-9 || math.Abs(p.Y-15) > 1e-9 {
		t.Errorf("cursor at t=1 = %v, want (5,15)", p)
	}
}

func TestRunSimulationCollectsWindows(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	pv := NewParamVector()
	sc := Scenario{Ants: 5, Radius: 50, AngularSpeed: 1, Ticks: 120, StatsWindow: 0.5}
	fe := NewFitnessEvaluator(pv, sc, []int64{1}, cfg)

	r := fe.runSimulation(pv.DefaultVector(), 1, nil)
	if r.err != nil {
		t.Fatal(r.err)
	}
	// 120 ticks at 60Hz is 2s: four half-second windows
	if len(r.windows) != 4 {
		t.Fatalf("windows = %d, want 4", len(r.windows))
	}
	last := r.windows[len(r.windows)-1]
	if last.Deposits == 0 || last.FieldTotal <= 0 {
		t.Errorf("scripted pointer laid no trail: %+v", last)
	}
	if last.Seeking != 5 {
		t.Errorf("seeking = %d, want 5", last.Seeking)
	}

	// Base config is untouched
	if cfg.Ants.Count != 1 {
		t.Errorf("base config mutated: count=%d", cfg.Ants.Count)
	}
}
