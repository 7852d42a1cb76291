package systems

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/stigmergy/config"
)

// FieldSampler is the read-only view of a scalar field used during steering.
type FieldSampler interface {
	Sample(p r2.Vec) float64
}

// FieldPolicy decides how deposits are written and what a per-tick update does.
type FieldPolicy interface {
	// Deposit writes amount into the cell value v and returns the new value.
	Deposit(v, amount float64) float64
	// Update applies the per-tick transform to the whole field.
	Update(f *PheromoneField)
	// Name returns the config mode name.
	Name() string
}

// DiffusePolicy accumulates deposits and blurs + decays the grid every update.
type DiffusePolicy struct {
	DiffusionRate float64
	DecayRate     float64
}

// Deposit adds amount (negative amounts subtract).
func (p DiffusePolicy) Deposit(v, amount float64) float64 { return v + amount }

// Update diffuses and decays the field.
func (p DiffusePolicy) Update(f *PheromoneField) { f.Diffuse(p.DiffusionRate, p.DecayRate) }

// Name returns "diffuse".
func (p DiffusePolicy) Name() string { return config.FieldModeDiffuse }

// StampPolicy overwrites the cell with a fixed value and never decays.
type StampPolicy struct {
	Value float64
}

// Deposit ignores amount and returns the stamp value.
func (p StampPolicy) Deposit(_, _ float64) float64 { return p.Value }

// Update is a no-op.
func (p StampPolicy) Update(*PheromoneField) {}

// Name returns "stamp".
func (p StampPolicy) Name() string { return config.FieldModeStamp }

// PolicyFromConfig returns the field policy selected by cfg.Field.Mode.
func PolicyFromConfig(cfg *config.Config) (FieldPolicy, error) {
	switch cfg.Field.Mode {
	case config.FieldModeDiffuse:
		return DiffusePolicy{DiffusionRate: cfg.Field.DiffusionRate, DecayRate: cfg.Field.DecayRate}, nil
	case config.FieldModeStamp:
		return StampPolicy{Value: cfg.Field.StampValue}, nil
	default:
		return nil, fmt.Errorf("unknown field mode %q", cfg.Field.Mode)
	}
}

// PheromoneField is a dense row-major scalar grid anchored in world space.
// Stored values are unbounded; only display readback clamps them.
type PheromoneField struct {
	W, H int

	cellSize float64
	origin   r2.Vec // world position of the (0,0) cell corner
	policy   FieldPolicy

	cells []float64
	// Scratch buffer for diffusion (read-old/write-new)
	tmp []float64
}

// NewPheromoneField creates a zeroed w*h grid.
func NewPheromoneField(w, h int, cellSize float64, origin r2.Vec, policy FieldPolicy) (*PheromoneField, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("pheromone field %dx%d: dimensions must be positive", w, h)
	}
	if cellSize <= 0 || math.IsNaN(cellSize) || math.IsInf(cellSize, 0) {
		return nil, fmt.Errorf("pheromone field cell size %v: must be positive and finite", cellSize)
	}
	if policy == nil {
		policy = DiffusePolicy{}
	}
	return &PheromoneField{
		W: w, H: h,
		cellSize: cellSize,
		origin:   origin,
		policy:   policy,
		cells:    make([]float64, w*h),
		tmp:      make([]float64, w*h),
	}, nil
}

// NewPheromoneFieldFromConfig creates the field described by cfg.Field.
func NewPheromoneFieldFromConfig(cfg *config.Config) (*PheromoneField, error) {
	policy, err := PolicyFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	return NewPheromoneField(cfg.Field.Width, cfg.Field.Height, cfg.Field.CellSize, cfg.Derived.FieldOrigin, policy)
}

// CellAt maps a world point to cell coordinates. ok is false outside the grid.
func (f *PheromoneField) CellAt(p r2.Vec) (x, y int, ok bool) {
	fx := math.Floor((p.X - f.origin.X) / f.cellSize)
	fy := math.Floor((p.Y - f.origin.Y) / f.cellSize)
	// Comparing as floats also rejects NaN and values beyond int range
	if !(fx >= 0 && fx < float64(f.W) && fy >= 0 && fy < float64(f.H)) {
		return 0, 0, false
	}
	return int(fx), int(fy), true
}

// Deposit writes amount into the cell containing p according to the policy.
// Points outside the grid are ignored.
func (f *PheromoneField) Deposit(p r2.Vec, amount float64) {
	x, y, ok := f.CellAt(p)
	if !ok {
		return
	}
	i := y*f.W + x
	f.cells[i] = f.policy.Deposit(f.cells[i], amount)
}

// Sample returns the value of the cell containing p, or 0 outside the grid.
func (f *PheromoneField) Sample(p r2.Vec) float64 {
	x, y, ok := f.CellAt(p)
	if !ok {
		return 0
	}
	return f.cells[y*f.W+x]
}

// Value returns the cell at (x, y), or 0 when out of range.
func (f *PheromoneField) Value(x, y int) float64 {
	if x < 0 || x >= f.W || y < 0 || y >= f.H {
		return 0
	}
	return f.cells[y*f.W+x]
}

// Update applies the policy's per-tick transform. Call at most once per tick.
func (f *PheromoneField) Update() {
	f.policy.Update(f)
}

// Diffuse replaces every cell with the unweighted mean of its in-bounds 3x3
// neighbourhood, then scales by (1-decayRate)*(1-diffusionRate).
// Rates outside [0,1] are applied as given.
func (f *PheromoneField) Diffuse(diffusionRate, decayRate float64) {
	w, h := f.W, f.H
	src := f.cells
	dst := f.tmp
	keep := (1 - decayRate) * (1 - diffusionRate)

	for y := 0; y < h; y++ {
		y0 := max(y-1, 0)
		y1 := min(y+1, h-1)
		for x := 0; x < w; x++ {
			x0 := max(x-1, 0)
			x1 := min(x+1, w-1)

			var sum float64
			for ny := y0; ny <= y1; ny++ {
				row := src[ny*w : ny*w+w]
				for nx := x0; nx <= x1; nx++ {
					sum += row[nx]
				}
			}
			count := float64((y1 - y0 + 1) * (x1 - x0 + 1))
			dst[y*w+x] = sum / count * keep
		}
	}

	// Swap buffers
	f.cells, f.tmp = dst, src
}

// Reset zeroes every cell.
func (f *PheromoneField) Reset() {
	clear(f.cells)
}

// Total returns the sum of all cells.
func (f *PheromoneField) Total() float64 {
	return floats.Sum(f.cells)
}

// Max returns the largest cell value.
func (f *PheromoneField) Max() float64 {
	return floats.Max(f.cells)
}

// Values returns the grid for visualization. Callers must not modify it.
func (f *PheromoneField) Values() []float64 {
	return f.cells
}

// GridSize returns the grid dimensions.
func (f *PheromoneField) GridSize() (int, int) {
	return f.W, f.H
}

// CellSize returns the world size of one cell edge.
func (f *PheromoneField) CellSize() float64 { return f.cellSize }

// Origin returns the world position of the (0,0) cell corner.
func (f *PheromoneField) Origin() r2.Vec { return f.origin }

// Bounds returns the world-space rectangle covered by the grid.
func (f *PheromoneField) Bounds() r2.Box {
	return r2.Box{
		Min: f.origin,
		Max: r2.Add(f.origin, r2.Vec{X: float64(f.W) * f.cellSize, Y: float64(f.H) * f.cellSize}),
	}
}

// CellCenter returns the world position of the centre of cell (x, y).
func (f *PheromoneField) CellCenter(x, y int) r2.Vec {
	return r2.Vec{
		X: f.origin.X + (float64(x)+0.5)*f.cellSize,
		Y: f.origin.Y + (float64(y)+0.5)*f.cellSize,
	}
}

// Policy returns the active field policy.
func (f *PheromoneField) Policy() FieldPolicy { return f.policy }

// SetPolicy swaps the update policy. Cell values are kept. A nil policy is ignored.
func (f *PheromoneField) SetPolicy(p FieldPolicy) {
	if p != nil {
		f.policy = p
	}
}
