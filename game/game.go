// Package game drives a simulation from a raylib window or a headless loop,
// and feeds stream clients.
package game

import (
	"fmt"
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/stigmergy/camera"
	"github.com/pthm-cable/stigmergy/config"
	"github.com/pthm-cable/stigmergy/renderer"
	"github.com/pthm-cable/stigmergy/sim"
	"github.com/pthm-cable/stigmergy/stream"
	"github.com/pthm-cable/stigmergy/telemetry"
	"github.com/pthm-cable/stigmergy/ui"
)

// Options configures game creation.
type Options struct {
	Seed           int64
	LogStats       bool
	OutputDir      string
	Headless       bool
	StepsPerUpdate int
}

// Game holds the simulation and everything that presents it.
type Game struct {
	cfg    *config.Config
	sim    *sim.Simulation
	output *telemetry.OutputManager

	// Rendering (nil in headless mode)
	camera      *camera.Camera
	background  *renderer.BackgroundRenderer
	heatmap     *renderer.HeatmapRenderer
	antRenderer *renderer.AntRenderer
	hud         *ui.HUD
	overlays    *ui.OverlayRegistry
	controls    *ui.ControlsPanel
	perfPanel   *ui.PerfPanel
	tuningPanel *ui.FieldTuningPanel
	tuning      ui.FieldTuning
	renderPerf  *RenderPerf
	antViews    []sim.AntView

	// Streaming
	stream        *stream.Server
	frames        *stream.FrameBuilder
	frameInterval int32

	// State
	paused         bool
	headless       bool
	stepsPerUpdate int

	// Input
	panning      bool
	pointerDown  [2]bool
	cursorInView bool

	// Window dimensions
	screenWidth, screenHeight float32
}

// NewGameWithOptions creates a game. In graphical mode the raylib window
// must already be open.
func NewGameWithOptions(cfg *config.Config, opts Options) (*Game, error) {
	var output *telemetry.OutputManager
	if opts.OutputDir != "" {
		var err error
		output, err = telemetry.NewOutputManager(opts.OutputDir)
		if err != nil {
			return nil, fmt.Errorf("creating output: %w", err)
		}
		if err := output.WriteConfig(cfg); err != nil {
			slog.Error("failed to write config snapshot", "error", err)
		}
	}

	s, err := sim.New(cfg, sim.Options{
		Seed:     opts.Seed,
		Output:   output,
		LogStats: opts.LogStats,
	})
	if err != nil {
		if output != nil {
			output.Close()
		}
		return nil, err
	}

	steps := opts.StepsPerUpdate
	if steps < 1 {
		steps = 1
	}

	g := &Game{
		cfg:            cfg,
		sim:            s,
		output:         output,
		headless:       opts.Headless,
		stepsPerUpdate: steps,
		screenWidth:    float32(cfg.Screen.Width),
		screenHeight:   float32(cfg.Screen.Height),
		tuning: ui.FieldTuning{
			DiffusionRate: cfg.Field.DiffusionRate,
			DecayRate:     cfg.Field.DecayRate,
			DepositAmount: cfg.Field.DepositAmount,
		},
	}

	if !opts.Headless {
		g.camera = camera.NewFromConfig(cfg)
		g.background = renderer.NewBackgroundRenderer(235, 228, 210)
		g.heatmap = renderer.NewHeatmapRenderer()
		g.antRenderer = renderer.NewAntRenderer()
		g.hud = ui.NewHUD()
		g.overlays = ui.NewOverlayRegistry()
		g.controls = ui.NewControlsPanel(10, 120, 200)
		g.perfPanel = ui.NewPerfPanel(int32(g.screenWidth)-230, 10, 220)
		g.tuningPanel = ui.NewFieldTuningPanel(int32(g.screenWidth)-330, int32(g.screenHeight)-230, 320)
		g.renderPerf = NewRenderPerf(cfg.Telemetry.PerfCollectorWindow)
	}

	slog.Info("game created",
		"seed", opts.Seed,
		"ants", s.AntCount(),
		"field_mode", s.Field().Policy().Name(),
		"headless", opts.Headless,
	)

	return g, nil
}

// AttachStream starts broadcasting frames to srv every
// cfg.Stream.FrameInterval ticks.
func (g *Game) AttachStream(srv *stream.Server) {
	g.stream = srv
	g.frames = stream.NewFrameBuilder(g.cfg.Stream.FieldFrames)
	g.frameInterval = int32(max(g.cfg.Stream.FrameInterval, 1))
}

// Update handles input and advances the simulation (graphical mode).
func (g *Game) Update() {
	g.handleInput()

	// Reports queue while paused and apply on the first step after resuming
	if g.paused {
		return
	}

	dt := float64(rl.GetFrameTime())
	if g.cfg.Physics.MaxDT > 0 && dt > g.cfg.Physics.MaxDT {
		dt = g.cfg.Physics.MaxDT
	}
	for i := 0; i < g.stepsPerUpdate; i++ {
		g.sim.Step(dt)
		g.publishFrame()
	}
}

// UpdateHeadless advances the simulation by stepsPerUpdate fixed steps.
func (g *Game) UpdateHeadless() {
	for i := 0; i < g.stepsPerUpdate; i++ {
		g.sim.Step(g.cfg.Physics.DT)
		g.publishFrame()
	}
}

// Tick returns the current simulation tick.
func (g *Game) Tick() int32 {
	return g.sim.Tick()
}

// Sim returns the underlying simulation.
func (g *Game) Sim() *sim.Simulation {
	return g.sim
}

// Unload releases GPU resources and closes outputs.
func (g *Game) Unload() {
	if g.heatmap != nil {
		g.heatmap.Unload()
	}
	g.sim.Close()
	if g.output != nil {
		if err := g.output.Close(); err != nil {
			slog.Error("failed to close output", "error", err)
		}
	}
}
