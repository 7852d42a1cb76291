// Package camera maps between a y-up world and y-down screen coordinates.
package camera

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/stigmergy/config"
)

// Camera controls the viewport into the simulation world.
// The world origin sits at the viewport centre at rest, with world +Y
// pointing up the screen.
type Camera struct {
	// Center is the world point shown at the viewport centre
	Center r2.Vec

	// Zoom level (1.0 = one world unit per pixel)
	Zoom float64

	// Viewport dimensions (screen size)
	ViewportW, ViewportH float64

	// Zoom constraints
	MinZoom, MaxZoom float64

	// Zoom restored by Reset
	defaultZoom float64
}

// New creates a camera centred on the world origin.
func New(viewportW, viewportH float64) *Camera {
	return &Camera{
		Zoom:        1.0,
		ViewportW:   viewportW,
		ViewportH:   viewportH,
		MinZoom:     0.25,
		MaxZoom:     8.0,
		defaultZoom: 1.0,
	}
}

// NewFromConfig creates a camera sized to the screen with configured zoom limits.
func NewFromConfig(cfg *config.Config) *Camera {
	c := New(float64(cfg.Screen.Width), float64(cfg.Screen.Height))
	c.MinZoom = cfg.Camera.MinZoom
	c.MaxZoom = cfg.Camera.MaxZoom
	c.SetZoom(cfg.Camera.Zoom)
	c.defaultZoom = c.Zoom
	return c
}

// WorldToScreen converts a world point to screen pixels.
func (c *Camera) WorldToScreen(p r2.Vec) (sx, sy float64) {
	sx = c.ViewportW/2 + (p.X-c.Center.X)*c.Zoom
	sy = c.ViewportH/2 - (p.Y-c.Center.Y)*c.Zoom
	return sx, sy
}

// ScreenToWorld converts screen pixels to a world point.
func (c *Camera) ScreenToWorld(sx, sy float64) r2.Vec {
	return r2.Vec{
		X: c.Center.X + (sx-c.ViewportW/2)/c.Zoom,
		Y: c.Center.Y - (sy-c.ViewportH/2)/c.Zoom,
	}
}

// WorldRectToScreen returns the screen rectangle (top-left corner and size)
// covering the world box b.
func (c *Camera) WorldRectToScreen(b r2.Box) (x, y, w, h float64) {
	x, y = c.WorldToScreen(r2.Vec{X: b.Min.X, Y: b.Max.Y})
	w = (b.Max.X - b.Min.X) * c.Zoom
	h = (b.Max.Y - b.Min.Y) * c.Zoom
	return x, y, w, h
}

// CursorToWorld converts a cursor position to a world point. ok is false
// when the cursor lies outside the viewport.
func (c *Camera) CursorToWorld(sx, sy float64) (p r2.Vec, ok bool) {
	if sx < 0 || sy < 0 || sx >= c.ViewportW || sy >= c.ViewportH {
		return r2.Vec{}, false
	}
	return c.ScreenToWorld(sx, sy), true
}

// IsVisible returns true if a circle at p with the given radius could be on
// screen (conservative check for culling).
func (c *Camera) IsVisible(p r2.Vec, radius float64) bool {
	b := c.VisibleWorldBounds()
	return p.X+radius >= b.Min.X && p.X-radius <= b.Max.X &&
		p.Y+radius >= b.Min.Y && p.Y-radius <= b.Max.Y
}

// VisibleWorldBounds returns the world rectangle covered by the viewport.
func (c *Camera) VisibleWorldBounds() r2.Box {
	half := r2.Vec{X: c.ViewportW / (2 * c.Zoom), Y: c.ViewportH / (2 * c.Zoom)}
	return r2.Box{Min: r2.Sub(c.Center, half), Max: r2.Add(c.Center, half)}
}

// Resize updates viewport dimensions.
func (c *Camera) Resize(viewportW, viewportH float64) {
	c.ViewportW = viewportW
	c.ViewportH = viewportH
}

// Pan drags the view by a screen-space delta: content follows the pointer.
func (c *Camera) Pan(dx, dy float64) {
	c.Center.X -= dx / c.Zoom
	c.Center.Y += dy / c.Zoom
}

// SetZoom sets the zoom level, clamped to min/max.
func (c *Camera) SetZoom(zoom float64) {
	c.Zoom = clamp(zoom, c.MinZoom, c.MaxZoom)
}

// ZoomBy multiplies the current zoom by the given factor.
func (c *Camera) ZoomBy(factor float64) {
	c.SetZoom(c.Zoom * factor)
}

// ZoomAt zooms by factor while keeping the world point under (sx, sy) fixed.
func (c *Camera) ZoomAt(factor, sx, sy float64) {
	anchor := c.ScreenToWorld(sx, sy)
	c.ZoomBy(factor)
	after := c.ScreenToWorld(sx, sy)
	c.Center = r2.Add(c.Center, r2.Sub(anchor, after))
}

// Reset returns the camera to the world origin and default zoom.
func (c *Camera) Reset() {
	c.Center = r2.Vec{}
	c.SetZoom(c.defaultZoom)
}

// clamp restricts a value to a range.
func clamp(x, min, max float64) float64 {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}
