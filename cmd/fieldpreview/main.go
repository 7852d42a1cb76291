// Pheromone field preview tool - paint trails and tune diffusion with sliders.
//
// Usage: go run ./cmd/fieldpreview [-config file.yaml]
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/stigmergy/camera"
	"github.com/pthm-cable/stigmergy/config"
	"github.com/pthm-cable/stigmergy/renderer"
	"github.com/pthm-cable/stigmergy/systems"
	"github.com/pthm-cable/stigmergy/ui"
)

const (
	windowWidth  = 1000
	windowHeight = 720
	previewSize  = 640
	panelX       = previewSize + 20
	panelWidth   = windowWidth - previewSize - 30
)

func main() {
	configPath := flag.String("config", "", "Path to config YAML file (empty = use defaults)")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	field, err := systems.NewPheromoneFieldFromConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to create field: %v", err)
	}

	rl.InitWindow(windowWidth, windowHeight, "Pheromone Field Preview")
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	// Fit the whole field into the preview square
	b := field.Bounds()
	cam := camera.New(previewSize, previewSize)
	cam.MinZoom = 0.01
	cam.MaxZoom = 100
	cam.Center = r2.Scale(0.5, r2.Add(b.Min, b.Max))
	cam.SetZoom(previewSize / max(b.Max.X-b.Min.X, b.Max.Y-b.Min.Y))

	heatmap := renderer.NewHeatmapRenderer()
	heatmap.Init(field.GridSize())
	defer heatmap.Unload()
	background := renderer.NewBackgroundRenderer(20, 20, 24)

	tuning := ui.FieldTuning{
		DiffusionRate: cfg.Field.DiffusionRate,
		DecayRate:     cfg.Field.DecayRate,
		DepositAmount: cfg.Field.DepositAmount,
	}
	panel := ui.NewFieldTuningPanel(panelX, 10, panelWidth)

	running := true
	stamp := field.Policy().Name() == config.FieldModeStamp
	var ticks int

	for !rl.WindowShouldClose() {
		if rl.IsKeyPressed(rl.KeySpace) {
			running = !running
		}

		// Paint while the left button is held inside the preview
		m := rl.GetMousePosition()
		if p, ok := cam.CursorToWorld(float64(m.X), float64(m.Y)); ok && rl.IsMouseButtonDown(rl.MouseButtonLeft) {
			field.Deposit(p, tuning.DepositAmount)
		}

		step := running
		if !running && rl.IsKeyPressed(rl.KeyN) {
			step = true
		}
		if step {
			field.Update()
			ticks++
		}
		heatmap.Update(field)

		rl.BeginDrawing()
		rl.ClearBackground(rl.RayWhite)

		rl.BeginScissorMode(0, 0, previewSize, previewSize)
		background.Draw(cam, b)
		heatmap.Draw(field, cam)
		rl.EndScissorMode()
		rl.DrawRectangleLines(0, 0, previewSize, previewSize, rl.DarkGray)

		statsY := int32(previewSize + 15)
		rl.DrawText(fmt.Sprintf("Total: %.2f  Max: %.3f  Tick: %d", field.Total(), field.Max(), ticks), 15, statsY, 16, rl.DarkGray)
		rl.DrawText(fmt.Sprintf("Mode: %s  [Space] run/pause  [N] step  LMB paint", field.Policy().Name()), 15, statsY+22, 16, rl.DarkGray)

		action := panel.Draw(&tuning)
		if action.Changed && !stamp {
			field.SetPolicy(systems.DiffusePolicy{DiffusionRate: tuning.DiffusionRate, DecayRate: tuning.DecayRate})
		}
		if action.ClearField {
			field.Reset()
			ticks = 0
		}
		if action.CopyYAML {
			rl.SetClipboardText(tuning.YAML())
			slog.Info("copied field config to clipboard")
		}

		// Mode switch below the tuning panel
		modeY := panel.Bounds().Y + panel.Bounds().Height + 10
		if gui.Button(rl.Rectangle{X: panelX, Y: modeY, Width: 120, Height: 30}, toggleText(stamp, "Diffuse", "Stamp")) {
			stamp = !stamp
			if stamp {
				field.SetPolicy(systems.StampPolicy{Value: cfg.Field.StampValue})
			} else {
				field.SetPolicy(systems.DiffusePolicy{DiffusionRate: tuning.DiffusionRate, DecayRate: tuning.DecayRate})
			}
		}

		rl.DrawText("Current Values (YAML):", panelX, int32(modeY)+45, 14, rl.DarkGray)
		rl.DrawText(tuning.YAML(), panelX, int32(modeY)+65, 14, rl.Gray)

		rl.EndDrawing()
	}
}

func toggleText(cond bool, ifTrue, ifFalse string) string {
	if cond {
		return ifTrue
	}
	return ifFalse
}
