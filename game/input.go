package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/stigmergy/sim"
	"github.com/pthm-cable/stigmergy/ui"
)

// handleInput processes keyboard and mouse input.
func (g *Game) handleInput() {
	g.handleResize()

	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	if rl.IsKeyPressed(rl.KeySpace) {
		g.paused = !g.paused
	}

	// Steps-per-update control with < > keys (comma and period)
	if rl.IsKeyPressed(rl.KeyComma) && g.stepsPerUpdate > 1 {
		g.stepsPerUpdate--
	}
	if rl.IsKeyPressed(rl.KeyPeriod) && g.stepsPerUpdate < 10 {
		g.stepsPerUpdate++
	}

	if rl.IsKeyPressed(rl.KeyC) {
		g.sim.ResetField()
	}
	if rl.IsKeyPressed(rl.KeyTab) {
		g.controls.Toggle()
	}
	if key := rl.GetKeyPressed(); key != 0 {
		g.overlays.HandleKeyPress(key)
	}

	g.handleCameraInput()
	g.handlePointer()
}

// handleResize checks for window resize and propagates new dimensions.
func (g *Game) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w := float32(rl.GetScreenWidth())
	h := float32(rl.GetScreenHeight())
	if w == g.screenWidth && h == g.screenHeight {
		return
	}
	g.screenWidth = w
	g.screenHeight = h

	g.camera.Resize(float64(w), float64(h))
	g.perfPanel.SetPosition(int32(w)-230, 10)
	g.tuningPanel.SetPosition(int32(w)-330, int32(h)-230)
}

// handleCameraInput processes camera pan/zoom controls.
func (g *Game) handleCameraInput() {
	// Arrow keys pan a fixed number of pixels per frame
	const panPixels = 8.0
	if rl.IsKeyDown(rl.KeyRight) {
		g.camera.Pan(-panPixels, 0)
	}
	if rl.IsKeyDown(rl.KeyLeft) {
		g.camera.Pan(panPixels, 0)
	}
	if rl.IsKeyDown(rl.KeyDown) {
		g.camera.Pan(0, -panPixels)
	}
	if rl.IsKeyDown(rl.KeyUp) {
		g.camera.Pan(0, panPixels)
	}

	// Middle-drag pans with the pointer
	if rl.IsMouseButtonDown(rl.MouseButtonMiddle) {
		d := rl.GetMouseDelta()
		g.camera.Pan(float64(d.X), float64(d.Y))
	}

	// Zoom toward the cursor with the wheel
	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		m := rl.GetMousePosition()
		g.camera.ZoomAt(1+float64(wheel)*0.1, float64(m.X), float64(m.Y))
	}

	if rl.IsKeyPressed(rl.KeyEqual) || rl.IsKeyPressed(rl.KeyKpAdd) {
		g.camera.ZoomBy(1.25)
	}
	if rl.IsKeyPressed(rl.KeyMinus) || rl.IsKeyPressed(rl.KeyKpSubtract) {
		g.camera.ZoomBy(0.8)
	}

	if rl.IsKeyPressed(rl.KeyHome) {
		g.camera.Reset()
	}
}

// handlePointer converts the mouse into simulation cursor and pointer reports.
func (g *Game) handlePointer() {
	m := rl.GetMousePosition()
	p, ok := g.camera.CursorToWorld(float64(m.X), float64(m.Y))

	// The tuning panel owns clicks over it
	if ok && g.overlays.IsEnabled(ui.OverlayTuning) && rl.CheckCollisionPointRec(m, g.tuningPanel.Bounds()) {
		ok = false
	}

	if ok {
		g.sim.ReportCursorWorldPosition(p)
		g.cursorInView = true
	} else if g.cursorInView {
		g.sim.ClearCursor()
		g.cursorInView = false
	}

	buttons := [2]struct {
		mouse   rl.MouseButton
		pointer sim.PointerButton
	}{
		{rl.MouseButtonLeft, sim.PointerPrimary},
		{rl.MouseButtonRight, sim.PointerSecondary},
	}
	for i, b := range buttons {
		down := ok && rl.IsMouseButtonDown(b.mouse)
		if down != g.pointerDown[i] {
			g.sim.ReportPointerPressed(b.pointer, down)
			g.pointerDown[i] = down
		}
	}
}
