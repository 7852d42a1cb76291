package renderer

import (
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/stigmergy/camera"
	"github.com/pthm-cable/stigmergy/systems"
)

// HeatmapRenderer draws the pheromone field as a texture stretched over the
// field's world bounds.
type HeatmapRenderer struct {
	tex        rl.Texture2D
	texW, texH int
	pixels     []color.RGBA

	initialized bool
}

// NewHeatmapRenderer creates a new heatmap renderer.
func NewHeatmapRenderer() *HeatmapRenderer {
	return &HeatmapRenderer{}
}

// Init allocates the texture (must be called after raylib window is created).
func (r *HeatmapRenderer) Init(gridW, gridH int) {
	if r.initialized {
		return
	}

	r.texW = gridW
	r.texH = gridH
	r.pixels = make([]color.RGBA, gridW*gridH)

	img := rl.GenImageColor(gridW, gridH, rl.Blank)
	r.tex = rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)

	// Nearest filtering keeps cells crisp when zoomed in
	rl.SetTextureFilter(r.tex, rl.FilterPoint)
	rl.SetTextureWrap(r.tex, rl.WrapClamp)

	r.initialized = true
}

// Update uploads the current field to the texture. Rows are flipped since
// image y grows downward.
func (r *HeatmapRenderer) Update(f *systems.PheromoneField) {
	w, h := f.GridSize()
	if !r.initialized {
		r.Init(w, h)
	}
	if w != r.texW || h != r.texH {
		return
	}
	systems.FillHeatmapFlipped(f, r.pixels)
	rl.UpdateTexture(r.tex, r.pixels)
}

// Draw renders the texture over the field bounds.
func (r *HeatmapRenderer) Draw(f *systems.PheromoneField, cam *camera.Camera) {
	if !r.initialized {
		return
	}
	x, y, w, h := cam.WorldRectToScreen(f.Bounds())
	src := rl.Rectangle{Width: float32(r.texW), Height: float32(r.texH)}
	dst := rl.Rectangle{X: float32(x), Y: float32(y), Width: float32(w), Height: float32(h)}
	rl.DrawTexturePro(r.tex, src, dst, rl.Vector2{}, 0, rl.White)
}

// Unload frees GPU resources.
func (r *HeatmapRenderer) Unload() {
	if !r.initialized {
		return
	}
	rl.UnloadTexture(r.tex)
	r.initialized = false
}
