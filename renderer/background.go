package renderer

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/stigmergy/camera"
)

// BackgroundRenderer clears the frame and draws a world grid with the field
// outline.
type BackgroundRenderer struct {
	baseColor    rl.Color
	gridColor    rl.Color
	outlineColor rl.Color

	// GridSpacing is the world distance between grid lines; 0 disables the grid
	GridSpacing float64
}

// NewBackgroundRenderer creates a new background renderer.
func NewBackgroundRenderer(baseR, baseG, baseB uint8) *BackgroundRenderer {
	return &BackgroundRenderer{
		baseColor:    rl.Color{R: baseR, G: baseG, B: baseB, A: 255},
		gridColor:    rl.Color{R: 0, G: 0, B: 0, A: 18},
		outlineColor: rl.Color{R: 0, G: 0, B: 0, A: 90},
		GridSpacing:  100,
	}
}

// Draw fills the screen and draws grid lines plus the outline of fieldBounds.
func (b *BackgroundRenderer) Draw(cam *camera.Camera, fieldBounds r2.Box) {
	rl.ClearBackground(b.baseColor)

	// Skip the grid when lines would be closer than a few pixels
	if b.GridSpacing > 0 && b.GridSpacing*cam.Zoom >= 8 {
		view := cam.VisibleWorldBounds()
		for x := math.Floor(view.Min.X/b.GridSpacing) * b.GridSpacing; x <= view.Max.X; x += b.GridSpacing {
			sx, _ := cam.WorldToScreen(r2.Vec{X: x})
			rl.DrawLine(int32(sx), 0, int32(sx), int32(cam.ViewportH), b.gridColor)
		}
		for y := math.Floor(view.Min.Y/b.GridSpacing) * b.GridSpacing; y <= view.Max.Y; y += b.GridSpacing {
			_, sy := cam.WorldToScreen(r2.Vec{Y: y})
			rl.DrawLine(0, int32(sy), int32(cam.ViewportW), int32(sy), b.gridColor)
		}
	}

	x, y, w, h := cam.WorldRectToScreen(fieldBounds)
	rl.DrawRectangleLinesEx(rl.Rectangle{X: float32(x), Y: float32(y), Width: float32(w), Height: float32(h)}, 1, b.outlineColor)
}
