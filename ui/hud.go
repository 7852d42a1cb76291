package ui

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/stigmergy/telemetry"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title          string
	Ants           int
	Tick           int32
	SimTime        float64
	StepsPerUpdate int
	FPS            int32
	Paused         bool
	FieldMode      string
	FieldTotal     float64
	FieldMax       float64
	CursorX        float64
	CursorY        float64
	CursorValid    bool
	StreamClients  int
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{
		renderer: NewRenderer(),
	}
}

// Draw renders the HUD.
func (h *HUD) Draw(data HUDData) {
	rl.DrawText(data.Title, 10, 10, 20, rl.DarkGray)

	rl.DrawText(
		fmt.Sprintf("Ants: %d | Tick: %d | t=%.1fs | Speed: %dx | FPS: %d", data.Ants, data.Tick, data.SimTime, data.StepsPerUpdate, data.FPS),
		10, 35, 16, rl.Gray,
	)

	rl.DrawText(
		fmt.Sprintf("Field (%s): total %.2f | max %.3f", data.FieldMode, data.FieldTotal, data.FieldMax),
		10, 55, 16, rl.Gray,
	)

	cursor := "Cursor: -"
	if data.CursorValid {
		cursor = fmt.Sprintf("Cursor: (%.1f, %.1f)", data.CursorX, data.CursorY)
	}
	if data.StreamClients > 0 {
		cursor += fmt.Sprintf(" | Stream clients: %d", data.StreamClients)
	}
	rl.DrawText(cursor, 10, 75, 16, rl.Gray)

	if data.Paused {
		rl.DrawText("PAUSED", 10, 95, 16, rl.Orange)
	}
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// PerfPanel renders tick phase and render timings.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y, width int32) *PerfPanel {
	return &PerfPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the panel. renderNames lists render passes in display order.
func (p *PerfPanel) Draw(stats telemetry.PerfStats, renderAvg map[string]time.Duration, renderNames []string) {
	r := p.renderer
	padding := r.Theme.Padding
	lines := int32(len(telemetry.Phases)+len(renderNames)) + 5
	r.DrawPanel(p.x, p.y, p.width, lines*r.Theme.LineHeight+padding*2)

	x := p.x + padding
	y := p.y + padding

	y = r.DrawSectionHeader(x, y, "Tick")
	y = r.DrawLabelValue(x, y, "avg", stats.AvgTickDuration.Round(time.Microsecond).String())
	y = r.DrawLabelValue(x, y, "ticks/s", fmt.Sprintf("%.0f", stats.TicksPerSecond))
	for _, phase := range telemetry.Phases {
		y = r.DrawBar(x, y, phase.String(), float32(stats.PhasePct[phase]/100), p.width-padding*2)
	}

	y = r.DrawSectionHeader(x, y+4, "Render")
	for _, name := range renderNames {
		y = r.DrawLabelValue(x, y, name, renderAvg[name].Round(time.Microsecond).String())
	}
}
