package systems

import (
	"image/color"
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/stigmergy/config"
)

func init() {
	// Initialize config for tests
	config.MustInit("")
}

func newTestField(t testing.TB, w, h int, cellSize float64, policy FieldPolicy) *PheromoneField {
	t.Helper()
	f, err := NewPheromoneField(w, h, cellSize, r2.Vec{}, policy)
	if err != nil {
		t.Fatalf("NewPheromoneField: %v", err)
	}
	return f
}

func TestPheromoneFieldCreation(t *testing.T) {
	f := newTestField(t, 64, 32, 2, DiffusePolicy{})

	w, h := f.GridSize()
	if w != 64 || h != 32 {
		t.Errorf("expected grid size 64x32, got %dx%d", w, h)
	}
	if len(f.Values()) != 64*32 {
		t.Errorf("expected %d cells, got %d", 64*32, len(f.Values()))
	}
	if f.Total() != 0 {
		t.Errorf("expected empty field, total=%f", f.Total())
	}
}

func TestPheromoneFieldRejectsBadDimensions(t *testing.T) {
	tests := []struct {
		name     string
		w, h     int
		cellSize float64
	}{
		{"zero width", 0, 10, 1},
		{"negative height", 10, -1, 1},
		{"zero cell size", 10, 10, 0},
		{"negative cell size", 10, 10, -2},
		{"nan cell size", 10, 10, math.NaN()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewPheromoneField(tt.w, tt.h, tt.cellSize, r2.Vec{}, nil); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestPheromoneFieldFromConfig(t *testing.T) {
	cfg := config.Cfg()
	f, err := NewPheromoneFieldFromConfig(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if f.Policy().Name() != cfg.Field.Mode {
		t.Errorf("expected policy %q, got %q", cfg.Field.Mode, f.Policy().Name())
	}
	if f.CellSize() != cfg.Field.CellSize {
		t.Errorf("expected cell size %v, got %v", cfg.Field.CellSize, f.CellSize())
	}
}

func TestDepositSampleScenario(t *testing.T) {
	f := newTestField(t, 10, 10, 1, DiffusePolicy{})

	f.Deposit(r2.Vec{X: 3.2, Y: 4.9}, 5.0)

	if v := f.Value(3, 4); v != 5.0 {
		t.Errorf("expected cell (3,4)=5.0, got %f", v)
	}
	if v := f.Sample(r2.Vec{X: 3.9, Y: 4.1}); v != 5.0 {
		t.Errorf("expected sample in same cell = 5.0, got %f", v)
	}
	if v := f.Sample(r2.Vec{X: 10.0, Y: 4.0}); v != 0 {
		t.Errorf("expected out-of-bounds sample 0, got %f", v)
	}
}

func TestDepositAccumulates(t *testing.T) {
	f := newTestField(t, 8, 8, 4, DiffusePolicy{})
	p := r2.Vec{X: 13, Y: 9}

	for i := 0; i < 3; i++ {
		before := f.Sample(p)
		f.Deposit(p, 1.5)
		if got := f.Sample(p); math.Abs(got-(before+1.5)) > 1e-12 {
			t.Fatalf("deposit %d: expected %f, got %f", i, before+1.5, got)
		}
	}

	// Negative amounts subtract
	f.Deposit(p, -2)
	if got := f.Sample(p); math.Abs(got-2.5) > 1e-12 {
		t.Errorf("expected 2.5 after negative deposit, got %f", got)
	}
}

func TestCoarseCellMapping(t *testing.T) {
	f := newTestField(t, 200, 200, 4, DiffusePolicy{})

	x, y, ok := f.CellAt(r2.Vec{X: 7.99, Y: 4})
	if !ok || x != 1 || y != 1 {
		t.Errorf("expected cell (1,1), got (%d,%d) ok=%v", x, y, ok)
	}
	if _, _, ok := f.CellAt(r2.Vec{X: 800, Y: 10}); ok {
		t.Error("expected x=800 to be out of bounds")
	}
	if _, _, ok := f.CellAt(r2.Vec{X: -0.01, Y: 10}); ok {
		t.Error("expected negative x to be out of bounds")
	}
}

func TestOutOfBoundsInvariance(t *testing.T) {
	f := newTestField(t, 10, 10, 1, DiffusePolicy{})
	f.Deposit(r2.Vec{X: 5, Y: 5}, 2)
	before := append([]float64(nil), f.Values()...)

	points := []r2.Vec{
		{X: -1, Y: 5},
		{X: 10, Y: 5},
		{X: 5, Y: 10},
		{X: 5, Y: -0.0001},
		{X: 1e300, Y: 1e300},
		{X: math.Inf(-1), Y: 0},
		{X: math.NaN(), Y: math.NaN()},
	}
	for _, p := range points {
		f.Deposit(p, 100)
		if v := f.Sample(p); v != 0 {
			t.Errorf("sample at %v: expected 0, got %f", p, v)
		}
	}

	for i, v := range f.Values() {
		if v != before[i] {
			t.Fatalf("cell %d changed from %f to %f", i, before[i], v)
		}
	}
}

func TestDiffuseUsesLocalMean(t *testing.T) {
	f := newTestField(t, 3, 3, 1, DiffusePolicy{})
	// Single corner cell
	f.Deposit(r2.Vec{X: 0.5, Y: 0.5}, 4)

	f.Diffuse(0, 0)

	// Corner (0,0) averages 4 in-bounds cells
	if got := f.Value(0, 0); math.Abs(got-1.0) > 1e-12 {
		t.Errorf("corner: expected 1.0, got %f", got)
	}
	// Edge (1,0) averages 6 in-bounds cells
	if got := f.Value(1, 0); math.Abs(got-4.0/6.0) > 1e-12 {
		t.Errorf("edge: expected %f, got %f", 4.0/6.0, got)
	}
	// Centre averages 9 cells
	if got := f.Value(1, 1); math.Abs(got-4.0/9.0) > 1e-12 {
		t.Errorf("centre: expected %f, got %f", 4.0/9.0, got)
	}
	// Far corner does not touch (0,0)
	if got := f.Value(2, 2); got != 0 {
		t.Errorf("far corner: expected 0, got %f", got)
	}
}

func TestDiffuseReadsSnapshot(t *testing.T) {
	// A row of equal values must stay uniform; in-place updates would skew it
	f := newTestField(t, 5, 1, 1, DiffusePolicy{})
	for x := 0; x < 5; x++ {
		f.Deposit(r2.Vec{X: float64(x) + 0.5, Y: 0.5}, 1)
	}

	f.Diffuse(0, 0)

	for x := 0; x < 5; x++ {
		if got := f.Value(x, 0); math.Abs(got-1) > 1e-12 {
			t.Errorf("cell %d: expected 1, got %f", x, got)
		}
	}
}

func TestDiffuseAppliesRates(t *testing.T) {
	f := newTestField(t, 4, 4, 1, DiffusePolicy{})
	for i := range f.cells {
		f.cells[i] = 2
	}

	f.Diffuse(0.1, 0.2)

	want := 2 * 0.8 * 0.9
	for i, v := range f.Values() {
		if math.Abs(v-want) > 1e-12 {
			t.Fatalf("cell %d: expected %f, got %f", i, want, v)
		}
	}
}

func TestDecayMonotonicity(t *testing.T) {
	const decay, diffusion = 0.05, 0.02
	f := newTestField(t, 9, 9, 1, DiffusePolicy{DiffusionRate: diffusion, DecayRate: decay})
	f.Deposit(r2.Vec{X: 4.5, Y: 4.5}, 10)

	before := append([]float64(nil), f.Values()...)
	f.Update()

	for y := 0; y < 9; y++ {
		for x := 0; x < 9; x++ {
			// Largest neighbourhood mean possible before decay
			var bound float64
			for ny := max(y-1, 0); ny <= min(y+1, 8); ny++ {
				for nx := max(x-1, 0); nx <= min(x+1, 8); nx++ {
					bound = math.Max(bound, before[ny*9+nx])
				}
			}
			if got := f.Value(x, y); got > bound+1e-12 {
				t.Errorf("cell (%d,%d)=%f exceeds neighbourhood max %f", x, y, got, bound)
			}
		}
	}

	// Isolated peak strictly decreases
	if got := f.Value(4, 4); got >= before[4*9+4] {
		t.Errorf("peak did not decrease: before=%f after=%f", before[4*9+4], got)
	}
}

func TestUpdateDoesNotIncreaseTotalAwayFromEdges(t *testing.T) {
	// Every cell two or more steps from the border has a full 3x3 of full
	// neighbourhoods, so diffusion there only redistributes mass. Mass
	// spreads one cell per update: deposits at least 12 cells in keep the
	// bound exact for 10 updates.
	const rates = (1 - 0.03) * (1 - 0.01)
	f := newTestField(t, 40, 40, 1, DiffusePolicy{DiffusionRate: 0.01, DecayRate: 0.03})
	for i := 0; i < 40; i++ {
		f.Deposit(r2.Vec{X: float64(12+i%16) + 0.5, Y: float64(12+i*7%16) + 0.5}, float64(i%5+1))
	}

	prev := f.Total()
	for step := 0; step < 10; step++ {
		f.Update()
		total := f.Total()
		if total > prev+1e-9 {
			t.Fatalf("step %d: total increased from %f to %f", step, prev, total)
		}
		if want := prev * rates; math.Abs(total-want) > 1e-9*prev {
			t.Fatalf("step %d: total %f, want %f", step, total, want)
		}
		prev = total
	}
}

func TestDiffuseEdgeGain(t *testing.T) {
	// The in-bounds mean divides border cells by fewer neighbours, so mass
	// next to an edge is over-counted and mass in a corner is under-counted.
	tests := []struct {
		name string
		p    r2.Vec
		want float64
	}{
		{"next to corner", r2.Vec{X: 1.5, Y: 1.5}, 1.0/4 + 4.0/6 + 4.0/9},
		{"corner", r2.Vec{X: 0.5, Y: 0.5}, 1.0/4 + 2.0/6 + 1.0/9},
		{"interior", r2.Vec{X: 10.5, Y: 10.5}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTestField(t, 20, 20, 1, DiffusePolicy{})
			f.Deposit(tt.p, 1)
			f.Update()
			if got := f.Total(); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("total after update = %f, want %f", got, tt.want)
			}
		})
	}

	// Small rates do not hide the gain
	f := newTestField(t, 20, 20, 1, DiffusePolicy{DiffusionRate: 0.01, DecayRate: 0.03})
	f.Deposit(r2.Vec{X: 1.5, Y: 1.5}, 1)
	f.Update()
	if got := f.Total(); got <= 1 {
		t.Errorf("expected total above 1 next to an edge, got %f", got)
	}
}

func TestStampPolicy(t *testing.T) {
	f := newTestField(t, 64, 64, 1, StampPolicy{Value: 1})
	p := r2.Vec{X: 10.5, Y: 20.5}

	f.Deposit(p, 5)
	f.Deposit(p, 5)
	if got := f.Sample(p); got != 1 {
		t.Errorf("expected stamped value 1, got %f", got)
	}

	// No decay in stamp mode
	for i := 0; i < 10; i++ {
		f.Update()
	}
	if got := f.Sample(p); got != 1 {
		t.Errorf("expected stamp to persist, got %f", got)
	}
	if got := f.Total(); got != 1 {
		t.Errorf("expected total 1, got %f", got)
	}
}

func TestSetPolicyKeepsCells(t *testing.T) {
	f := newTestField(t, 8, 8, 1, StampPolicy{Value: 1})
	p := r2.Vec{X: 4.5, Y: 4.5}
	f.Deposit(p, 1)

	f.SetPolicy(DiffusePolicy{DecayRate: 0.5})
	if f.Sample(p) != 1 {
		t.Fatalf("swapping policy changed cells")
	}
	if f.Policy().Name() != config.FieldModeDiffuse {
		t.Errorf("policy = %s", f.Policy().Name())
	}

	f.Update()
	if got := f.Total(); math.Abs(got-0.5) > 1e-12 {
		t.Errorf("expected decayed total 0.5, got %f", got)
	}

	f.SetPolicy(nil)
	if f.Policy() == nil {
		t.Error("nil policy replaced the active one")
	}
}

func TestFieldOriginOffset(t *testing.T) {
	// 64x64 grid of 6-unit cells centred on the world origin
	f, err := NewPheromoneField(64, 64, 6, r2.Vec{X: -192, Y: -192}, StampPolicy{Value: 1})
	if err != nil {
		t.Fatal(err)
	}

	x, y, ok := f.CellAt(r2.Vec{})
	if !ok || x != 32 || y != 32 {
		t.Errorf("expected origin in cell (32,32), got (%d,%d) ok=%v", x, y, ok)
	}
	c := f.CellCenter(32, 32)
	if c.X != 3 || c.Y != 3 {
		t.Errorf("expected cell centre (3,3), got %v", c)
	}
	b := f.Bounds()
	if b.Min.X != -192 || b.Max.X != 192 {
		t.Errorf("unexpected bounds %v", b)
	}
}

func TestReset(t *testing.T) {
	f := newTestField(t, 4, 4, 1, DiffusePolicy{})
	f.Deposit(r2.Vec{X: 1, Y: 1}, 3)
	f.Reset()
	if f.Total() != 0 {
		t.Errorf("expected empty field after reset, total=%f", f.Total())
	}
}

func TestFillHeatmap(t *testing.T) {
	f := newTestField(t, 3, 1, 1, DiffusePolicy{})
	f.Deposit(r2.Vec{X: 1.5, Y: 0.5}, 0.5)
	f.Deposit(r2.Vec{X: 2.5, Y: 0.5}, 7) // stored above 1, clamped for display

	pixels := make([]color.RGBA, 3)
	FillHeatmap(f, pixels)

	if pixels[0] != (color.RGBA{}) {
		t.Errorf("expected transparent empty cell, got %v", pixels[0])
	}
	if pixels[1].R != 122 || pixels[1].G != 1 || pixels[1].B != 119 || pixels[1].A != 127 {
		t.Errorf("unexpected half-strength pixel %v", pixels[1])
	}
	if pixels[2].A != 255 {
		t.Errorf("expected saturated alpha, got %d", pixels[2].A)
	}
	if f.Value(2, 0) != 7 {
		t.Errorf("display clamp must not modify stored value, got %f", f.Value(2, 0))
	}
}

func TestFillHeatmapFlipped(t *testing.T) {
	f := newTestField(t, 2, 2, 1, DiffusePolicy{})
	f.Deposit(r2.Vec{X: 0.5, Y: 0.5}, 1) // bottom-left in grid space

	pixels := make([]color.RGBA, 4)
	FillHeatmapFlipped(f, pixels)

	// Bottom-left grid cell lands in the last image row
	if pixels[2].A != 255 {
		t.Errorf("expected pixel 2 opaque, got %v", pixels[2])
	}
	if pixels[0].A != 0 {
		t.Errorf("expected pixel 0 transparent, got %v", pixels[0])
	}
}
