package game

import (
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/stigmergy/systems"
	"github.com/pthm-cable/stigmergy/ui"
)

const controlsLegend = "[LMB] deposit  [RMB] retarget  [MMB/arrows] pan  [wheel] zoom  [Space] pause  [</>] speed  [C] clear  [Tab] overlays"

// Draw renders the game state.
func (g *Game) Draw() {
	g.sim.Perf().RecordFrame()

	field := g.sim.Field()

	rl.BeginDrawing()

	g.renderPerf.Time(PassBackground, func() {
		g.background.GridSpacing = 0
		if g.overlays.IsEnabled(ui.OverlayGrid) {
			g.background.GridSpacing = 100
		}
		g.background.Draw(g.camera, field.Bounds())
	})

	g.renderPerf.Time(PassHeatmap, func() {
		if g.overlays.IsEnabled(ui.OverlayHeatmap) {
			g.heatmap.Update(field)
			g.heatmap.Draw(field, g.camera)
		}
	})

	g.renderPerf.Time(PassAnts, func() {
		g.antViews = g.sim.AppendAnts(g.antViews[:0])
		g.antRenderer.ShowAntennae = g.overlays.IsEnabled(ui.OverlayAntennae)
		g.antRenderer.ShowTargets = g.overlays.IsEnabled(ui.OverlayTargets)
		g.antRenderer.Draw(g.antViews, g.camera)
	})

	g.renderPerf.Time(PassUI, g.drawUI)

	rl.EndDrawing()
}

// drawUI renders the HUD and enabled panels.
func (g *Game) drawUI() {
	field := g.sim.Field()
	cursor, cursorValid := g.sim.CursorWorldPosition()

	data := ui.HUDData{
		Title:          "Stigmergy",
		Ants:           len(g.antViews),
		Tick:           g.sim.Tick(),
		SimTime:        g.sim.SimTime(),
		StepsPerUpdate: g.stepsPerUpdate,
		FPS:            rl.GetFPS(),
		Paused:         g.paused,
		FieldMode:      field.Policy().Name(),
		FieldTotal:     field.Total(),
		FieldMax:       field.Max(),
		CursorX:        cursor.X,
		CursorY:        cursor.Y,
		CursorValid:    cursorValid,
	}
	if g.stream != nil {
		data.StreamClients = g.stream.ClientCount()
	}
	g.hud.Draw(data)
	g.hud.DrawControls(int32(g.screenHeight), controlsLegend)

	g.controls.Draw(g.overlays)

	if g.overlays.IsEnabled(ui.OverlayPerf) {
		g.perfPanel.Draw(g.sim.Perf().Stats(), g.renderPerf.Averages(), RenderPasses)
	}

	if g.overlays.IsEnabled(ui.OverlayTuning) {
		g.drawTuning()
	}
}

// drawTuning draws the tuning panel and applies its edits.
func (g *Game) drawTuning() {
	action := g.tuningPanel.Draw(&g.tuning)

	if action.Changed {
		g.cfg.Field.DepositAmount = g.tuning.DepositAmount
		g.cfg.Field.DiffusionRate = g.tuning.DiffusionRate
		g.cfg.Field.DecayRate = g.tuning.DecayRate
		// Rates only apply to the diffuse policy; stamp mode keeps its policy
		if _, ok := g.sim.Field().Policy().(systems.DiffusePolicy); ok {
			g.sim.Field().SetPolicy(systems.DiffusePolicy{
				DiffusionRate: g.tuning.DiffusionRate,
				DecayRate:     g.tuning.DecayRate,
			})
		}
	}
	if action.ClearField {
		g.sim.ResetField()
	}
	if action.CopyYAML {
		rl.SetClipboardText(g.tuning.YAML())
		slog.Info("field tuning copied", "diffusion_rate", g.tuning.DiffusionRate, "decay_rate", g.tuning.DecayRate, "deposit_amount", g.tuning.DepositAmount)
	}
}
