// Package sim runs the headless pheromone/ant simulation: input boundary,
// tick pipeline, spawning, and telemetry hooks. It has no rendering
// dependencies.
package sim

import (
	"fmt"
	"math/rand"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/stigmergy/components"
	"github.com/pthm-cable/stigmergy/config"
	"github.com/pthm-cable/stigmergy/systems"
	"github.com/pthm-cable/stigmergy/telemetry"
)

// Options configures optional simulation features.
type Options struct {
	Seed      int64                    // RNG seed for spawn scatter
	Output    *telemetry.OutputManager // nil disables CSV output
	LogStats  bool                     // log window stats via slog
	Telemetry bool                     // collect window stats even without output or logging

	// StatsCallback, if set, receives every flushed window and enables telemetry
	StatsCallback func(telemetry.WindowStats)
}

// Simulation owns the ECS world and the pheromone field.
// Step, spawning, and queries must run on one goroutine; Report* methods may
// be called from any goroutine.
type Simulation struct {
	cfg *config.Config
	rng *rand.Rand

	world *ecs.World
	field *systems.PheromoneField

	steering   *systems.SteeringSystem
	kinematics *systems.KinematicsSystem

	// Entity creation and lookups
	antMapper *ecs.Map7[
		components.Position,
		components.Velocity,
		components.Acceleration,
		components.Rotation,
		components.Capabilities,
		components.Sensors,
		components.Target,
	]
	antMap       *ecs.Map[components.Ant]
	targetMap    *ecs.Map[components.Target]
	antFilter    *ecs.Filter6[components.Ant, components.Position, components.Velocity, components.Rotation, components.Sensors, components.Target]
	targetFilter *ecs.Filter1[components.Target]
	entities     map[uint32]ecs.Entity
	nextID       uint32

	// Input state
	inputs      inputQueue
	cursor      r2.Vec
	cursorValid bool
	pointerDown [numPointerButtons]bool

	// Clock
	tick    int32
	simTime float64

	// Telemetry
	collector *telemetry.Collector
	bookmarks *telemetry.BookmarkDetector
	perf      *telemetry.PerfCollector
	output    *telemetry.OutputManager
	logStats  bool
	onStats   func(telemetry.WindowStats)
	lastStats telemetry.WindowStats
	hasStats  bool

	// Scratch buffers for sampling
	speeds    []float64
	distances []float64
	signals   []float64
}

// New creates a simulation from cfg and spawns cfg.Ants.Count ants.
// cfg is resolved first, so fields edited after loading take effect.
func New(cfg *config.Config, opts Options) (*Simulation, error) {
	if err := cfg.Resolve(); err != nil {
		return nil, err
	}

	field, err := systems.NewPheromoneFieldFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating pheromone field: %w", err)
	}

	world := ecs.NewWorld()
	s := &Simulation{
		cfg:        cfg,
		rng:        rand.New(rand.NewSource(opts.Seed)),
		world:      world,
		field:      field,
		steering:   systems.NewSteeringSystem(world, cfg.Steering.ParallelThreshold),
		kinematics: systems.NewKinematicsSystem(world),
		antMapper: ecs.NewMap7[
			components.Position,
			components.Velocity,
			components.Acceleration,
			components.Rotation,
			components.Capabilities,
			components.Sensors,
			components.Target,
		](world),
		antMap:       ecs.NewMap[components.Ant](world),
		targetMap:    ecs.NewMap[components.Target](world),
		antFilter:    ecs.NewFilter6[components.Ant, components.Position, components.Velocity, components.Rotation, components.Sensors, components.Target](world),
		targetFilter: ecs.NewFilter1[components.Target](world),
		entities:     make(map[uint32]ecs.Entity),
		perf:         telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		output:       opts.Output,
		logStats:     opts.LogStats,
		onStats:      opts.StatsCallback,
	}

	if opts.Telemetry || opts.LogStats || opts.Output != nil || opts.StatsCallback != nil {
		s.collector = telemetry.NewCollector(cfg.Telemetry.StatsWindow, cfg.Physics.DT)
		s.bookmarks = telemetry.NewBookmarkDetector(10)
	}

	s.spawnInitialAnts()
	return s, nil
}

// Step advances the simulation by dt seconds. Order: queued input and
// deposits, one field update, steering against the updated field, then
// kinematics.
func (s *Simulation) Step(dt float64) {
	s.perf.StartTick()

	s.perf.StartPhase(telemetry.PhaseInput)
	s.applyInputs()

	s.perf.StartPhase(telemetry.PhaseField)
	s.field.Update()
	s.record(telemetry.NewFieldUpdateEvent(s.tick))

	s.perf.StartPhase(telemetry.PhaseSteering)
	s.steering.Update(s.field)

	s.perf.StartPhase(telemetry.PhaseKinematics)
	s.kinematics.Update(dt)

	s.tick++
	s.simTime += dt

	s.perf.StartPhase(telemetry.PhaseTelemetry)
	s.flushTelemetry()

	s.perf.EndTick()
}

// Field returns the pheromone field for read-only presentation.
func (s *Simulation) Field() *systems.PheromoneField {
	return s.field
}

// Config returns the configuration the simulation was built with.
func (s *Simulation) Config() *config.Config {
	return s.cfg
}

// Tick returns the number of completed steps.
func (s *Simulation) Tick() int32 {
	return s.tick
}

// SimTime returns the accumulated simulated seconds.
func (s *Simulation) SimTime() float64 {
	return s.simTime
}

// Perf returns the tick timing collector.
func (s *Simulation) Perf() *telemetry.PerfCollector {
	return s.perf
}

// LastStats returns the most recent flushed window, if any.
func (s *Simulation) LastStats() (telemetry.WindowStats, bool) {
	return s.lastStats, s.hasStats
}

// ResetField clears every cell.
func (s *Simulation) ResetField() {
	s.field.Reset()
}

// Close stops background workers.
func (s *Simulation) Close() {
	s.steering.Close()
}
