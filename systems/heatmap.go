package systems

import "image/color"

// HeatmapColor is the trail colour; alpha carries intensity.
var HeatmapColor = color.RGBA{R: 122, G: 1, B: 119}

// HeatmapAlpha maps a cell value to display alpha, clamping to [0,1].
func HeatmapAlpha(v float64) uint8 {
	return uint8(clamp01(v) * 255)
}

// heatmapPixel returns the display colour of one cell. Empty cells are
// fully transparent.
func heatmapPixel(v float64) color.RGBA {
	a := HeatmapAlpha(v)
	if a == 0 && v <= 0 {
		return color.RGBA{}
	}
	c := HeatmapColor
	c.A = a
	return c
}

// FillHeatmap writes one RGBA pixel per cell into pixels (row-major, same
// layout as the grid). pixels must hold at least W*H entries.
func FillHeatmap(f *PheromoneField, pixels []color.RGBA) {
	for i, v := range f.cells {
		pixels[i] = heatmapPixel(v)
	}
}

// FillHeatmapFlipped is FillHeatmap with rows reversed, for image space where
// y grows downward while the grid's y grows upward.
func FillHeatmapFlipped(f *PheromoneField, pixels []color.RGBA) {
	for y := 0; y < f.H; y++ {
		src := f.cells[y*f.W : (y+1)*f.W]
		dst := pixels[(f.H-1-y)*f.W : (f.H-y)*f.W]
		for x, v := range src {
			dst[x] = heatmapPixel(v)
		}
	}
}
