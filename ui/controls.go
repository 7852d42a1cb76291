package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// ControlsPanel renders the overlay toggle legend.
type ControlsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	visible  bool
}

// NewControlsPanel creates a new controls panel.
func NewControlsPanel(x, y, width int32) *ControlsPanel {
	return &ControlsPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// IsVisible returns whether the panel is shown.
func (c *ControlsPanel) IsVisible() bool {
	return c.visible
}

// Toggle switches panel visibility.
func (c *ControlsPanel) Toggle() bool {
	c.visible = !c.visible
	return c.visible
}

// Draw renders the controls panel and returns the Y below it.
func (c *ControlsPanel) Draw(overlays *OverlayRegistry) int32 {
	if !c.visible {
		return c.y
	}

	r := c.renderer
	padding := r.Theme.Padding
	lineHeight := r.Theme.LineHeight

	categories := overlays.Categories()
	totalItems := 0
	for _, cat := range categories {
		totalItems += len(overlays.ByCategory(cat)) + 1 // +1 for category header
	}
	panelHeight := int32(totalItems)*lineHeight + padding*3 + lineHeight

	r.DrawPanel(c.x, c.y, c.width, panelHeight)

	y := c.y + padding

	rl.DrawText("Overlays", c.x+padding, y, 16, rl.White)
	y += lineHeight + 4

	for _, category := range categories {
		rl.DrawText(categoryLabel(category), c.x+padding, y, r.Theme.HeaderFontSize, r.Theme.SectionHeader)
		y += lineHeight

		for _, desc := range overlays.ByCategory(category) {
			c.drawToggle(c.x+padding, y, desc, overlays.IsEnabled(desc.ID), c.width-padding*2)
			y += lineHeight
		}

		y += 4
	}

	return c.y + panelHeight
}

// drawToggle draws a single overlay toggle line.
func (c *ControlsPanel) drawToggle(x, y int32, desc OverlayDescriptor, enabled bool, width int32) {
	r := c.renderer

	statusColor := rl.Color{R: 80, G: 80, B: 80, A: 255}
	if enabled {
		statusColor = rl.Color{R: 100, G: 200, B: 100, A: 255}
	}
	rl.DrawRectangle(x, y+2, 8, 8, statusColor)

	nameColor := r.Theme.LabelColor
	if enabled {
		nameColor = rl.White
	}
	rl.DrawText(desc.Name, x+14, y, r.Theme.FontSize, nameColor)

	if desc.KeyLabel != "" {
		keyText := fmt.Sprintf("[%s]", desc.KeyLabel)
		keyWidth := rl.MeasureText(keyText, r.Theme.FontSize)
		rl.DrawText(keyText, x+width-keyWidth, y, r.Theme.FontSize, rl.Color{R: 150, G: 150, B: 150, A: 255})
	}
}

// categoryLabel returns a display label for a category.
func categoryLabel(cat string) string {
	switch cat {
	case "visual":
		return "Visual"
	case "debug":
		return "Debug"
	default:
		return cat
	}
}

// FieldTuning holds the live-editable field parameters.
type FieldTuning struct {
	DiffusionRate float64
	DecayRate     float64
	DepositAmount float64
}

// YAML renders t as a field config fragment.
func (t FieldTuning) YAML() string {
	return fmt.Sprintf("field:\n  diffusion_rate: %.4f\n  decay_rate: %.4f\n  deposit_amount: %.2f\n",
		t.DiffusionRate, t.DecayRate, t.DepositAmount)
}

// TuningAction reports what the user did in the tuning panel this frame.
type TuningAction struct {
	Changed    bool // a slider moved
	ClearField bool
	CopyYAML   bool
}

// FieldTuningPanel draws raygui sliders for the field parameters.
type FieldTuningPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32

	// Slider ranges
	MaxRate    float32
	MaxDeposit float32
}

// NewFieldTuningPanel creates a tuning panel.
func NewFieldTuningPanel(x, y, width int32) *FieldTuningPanel {
	return &FieldTuningPanel{
		renderer:   NewRenderer(),
		x:          x,
		y:          y,
		width:      width,
		MaxRate:    0.2,
		MaxDeposit: 50,
	}
}

// SetPosition updates the panel position.
func (p *FieldTuningPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

const tuningPanelHeight = 210

// Bounds returns the screen rectangle the panel occupies.
func (p *FieldTuningPanel) Bounds() rl.Rectangle {
	return rl.Rectangle{X: float32(p.x), Y: float32(p.y), Width: float32(p.width), Height: tuningPanelHeight}
}

// Draw renders the sliders, writing edits back into t.
func (p *FieldTuningPanel) Draw(t *FieldTuning) TuningAction {
	r := p.renderer
	padding := r.Theme.Padding
	r.DrawPanel(p.x, p.y, p.width, tuningPanelHeight)

	var action TuningAction
	x := float32(p.x + padding)
	y := float32(p.y + padding)
	sliderW := float32(p.width - padding*2 - 60)

	rl.DrawText("Field Tuning", int32(x), int32(y), 16, rl.White)
	y += 26

	slider := func(label string, value *float64, min, max float32, format string) {
		rl.DrawText(label, int32(x), int32(y), r.Theme.FontSize, r.Theme.LabelColor)
		y += 14
		v := gui.SliderBar(rl.Rectangle{X: x, Y: y, Width: sliderW, Height: 16}, "", "", float32(*value), min, max)
		rl.DrawText(fmt.Sprintf(format, *value), int32(x+sliderW+8), int32(y+2), r.Theme.FontSize, r.Theme.ValueColor)
		if v != float32(*value) {
			*value = float64(v)
			action.Changed = true
		}
		y += 26
	}

	slider("Diffusion rate", &t.DiffusionRate, 0, p.MaxRate, "%.4f")
	slider("Decay rate", &t.DecayRate, 0, p.MaxRate, "%.4f")
	slider("Deposit amount", &t.DepositAmount, 0.1, p.MaxDeposit, "%.2f")

	if gui.Button(rl.Rectangle{X: x, Y: y, Width: 110, Height: 26}, "Clear Field") {
		action.ClearField = true
	}
	if gui.Button(rl.Rectangle{X: x + 120, Y: y, Width: 110, Height: 26}, "Copy YAML") {
		action.CopyYAML = true
	}
	return action
}
