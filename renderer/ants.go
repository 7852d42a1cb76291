package renderer

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/stigmergy/camera"
	"github.com/pthm-cable/stigmergy/sim"
)

var (
	antBodyColor    = rl.Color{R: 40, G: 30, B: 25, A: 255}
	antAntennaColor = rl.Color{R: 90, G: 70, B: 60, A: 255}
	antTargetColor  = rl.Color{R: 220, G: 180, B: 40, A: 160}
)

// AntRenderer draws ants as oriented ellipses with antenna lines.
type AntRenderer struct {
	ShowAntennae bool
	// ShowTargets draws a line from each seeking ant to its target
	ShowTargets bool
}

// NewAntRenderer creates a new ant renderer.
func NewAntRenderer() *AntRenderer {
	return &AntRenderer{ShowAntennae: true}
}

// Draw renders all visible ants.
func (r *AntRenderer) Draw(ants []sim.AntView, cam *camera.Camera) {
	for i := range ants {
		a := &ants[i]
		if !cam.IsVisible(a.Position, a.Size*2) {
			continue
		}

		if r.ShowTargets && a.TargetActive {
			drawWorldLine(cam, a.Position, a.Target, 1, antTargetColor)
		}

		if r.ShowAntennae {
			drawWorldLine(cam, a.Position, a.LeftAntenna, 1, antAntennaColor)
			drawWorldLine(cam, a.Position, a.RightAntenna, 1, antAntennaColor)
		}
		drawEllipse(cam, a.Position, a.Heading, a.Size, a.Size*0.5, antBodyColor)
	}
}

// drawWorldLine draws a line between two world points.
func drawWorldLine(cam *camera.Camera, from, to r2.Vec, thick float32, color rl.Color) {
	x1, y1 := cam.WorldToScreen(from)
	x2, y2 := cam.WorldToScreen(to)
	rl.DrawLineEx(
		rl.Vector2{X: float32(x1), Y: float32(y1)},
		rl.Vector2{X: float32(x2), Y: float32(y2)},
		thick, color,
	)
}

const ellipseSegments = 12

// drawEllipse draws a filled ellipse with semi-axes (a, b) rotated to heading.
// raylib's DrawEllipse is axis-aligned, so the outline is built as a fan.
func drawEllipse(cam *camera.Camera, center r2.Vec, heading, a, b float64, color rl.Color) {
	cx, cy := cam.WorldToScreen(center)
	c := rl.Vector2{X: float32(cx), Y: float32(cy)}

	var points [ellipseSegments + 1]rl.Vector2
	for i := 0; i <= ellipseSegments; i++ {
		t := 2 * math.Pi * float64(i) / ellipseSegments
		local := r2.Vec{X: a * math.Cos(t), Y: b * math.Sin(t)}
		sx, sy := cam.WorldToScreen(r2.Add(center, r2.Rotate(local, heading, r2.Vec{})))
		points[i] = rl.Vector2{X: float32(sx), Y: float32(sy)}
	}
	// The y flip reverses world winding; raylib wants counter-clockwise on screen
	for i := 0; i < ellipseSegments; i++ {
		rl.DrawTriangle(c, points[i+1], points[i], color)
	}
}
