package telemetry

import (
	"log/slog"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"
)

// Phase identifies one stage of the simulation step.
type Phase uint8

// Tick phases in execution order.
const (
	PhaseInput Phase = iota
	PhaseField
	PhaseSteering
	PhaseKinematics
	PhaseTelemetry

	NumPhases
)

var phaseNames = [NumPhases]string{"input", "field", "steering", "kinematics", "telemetry"}

func (p Phase) String() string {
	if p >= NumPhases {
		return "unknown"
	}
	return phaseNames[p]
}

// Phases lists the tick phases in execution order.
var Phases = []Phase{PhaseInput, PhaseField, PhaseSteering, PhaseKinematics, PhaseTelemetry}

// DurationWindow is a fixed-size rolling window of durations.
type DurationWindow struct {
	buf  []time.Duration
	next int
	n    int
}

// NewDurationWindow creates a window holding the last size samples.
func NewDurationWindow(size int) *DurationWindow {
	if size < 1 {
		size = 1
	}
	return &DurationWindow{buf: make([]time.Duration, size)}
}

// Add records d, evicting the oldest sample once full.
func (w *DurationWindow) Add(d time.Duration) {
	w.buf[w.next] = d
	w.next = (w.next + 1) % len(w.buf)
	if w.n < len(w.buf) {
		w.n++
	}
}

// Len returns the number of samples held.
func (w *DurationWindow) Len() int { return w.n }

// Mean returns the average sample, or 0 when empty.
func (w *DurationWindow) Mean() time.Duration {
	if w.n == 0 {
		return 0
	}
	var total time.Duration
	for _, d := range w.buf[:w.n] {
		total += d
	}
	return total / time.Duration(w.n)
}

// MinMax returns the smallest and largest samples.
func (w *DurationWindow) MinMax() (lo, hi time.Duration) {
	for i, d := range w.buf[:w.n] {
		if i == 0 || d < lo {
			lo = d
		}
		if d > hi {
			hi = d
		}
	}
	return lo, hi
}

// Quantile returns the p-quantile (empirical CDF) of the samples.
func (w *DurationWindow) Quantile(p float64) time.Duration {
	if w.n == 0 {
		return 0
	}
	sorted := make([]float64, w.n)
	for i, d := range w.buf[:w.n] {
		sorted[i] = float64(d)
	}
	sort.Float64s(sorted)
	return time.Duration(stat.Quantile(p, stat.Empirical, sorted, nil))
}

// PerfCollector tracks tick and phase timings over a rolling window.
// Recording a tick does not allocate.
type PerfCollector struct {
	ticks  *DurationWindow
	phases [NumPhases]*DurationWindow

	current    [NumPhases]time.Duration
	tickStart  time.Time
	phaseStart time.Time
	inPhase    bool
	lastPhase  Phase

	// Frame timing (for graphics mode)
	lastFrameTime time.Time
	frameDuration time.Duration
}

// NewPerfCollector creates a collector averaging over windowSize ticks
// (e.g. 60 for one second at 60 ticks per second).
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	p := &PerfCollector{ticks: NewDurationWindow(windowSize)}
	for i := range p.phases {
		p.phases[i] = NewDurationWindow(windowSize)
	}
	return p
}

// StartTick begins timing a new simulation tick.
func (p *PerfCollector) StartTick() {
	p.tickStart = time.Now()
	p.current = [NumPhases]time.Duration{}
	p.inPhase = false
}

// StartPhase ends the running phase, if any, and starts timing phase.
func (p *PerfCollector) StartPhase(phase Phase) {
	now := time.Now()
	p.endPhase(now)
	p.phaseStart = now
	p.lastPhase = phase
	p.inPhase = phase < NumPhases
}

func (p *PerfCollector) endPhase(now time.Time) {
	if p.inPhase {
		p.current[p.lastPhase] += now.Sub(p.phaseStart)
	}
}

// EndTick finishes timing the current tick and records the sample.
func (p *PerfCollector) EndTick() {
	now := time.Now()
	p.endPhase(now)
	p.inPhase = false

	p.ticks.Add(now.Sub(p.tickStart))
	for i, d := range p.current {
		p.phases[i].Add(d)
	}
}

// RecordFrame records frame timing for graphics mode.
func (p *PerfCollector) RecordFrame() {
	now := time.Now()
	if !p.lastFrameTime.IsZero() {
		p.frameDuration = now.Sub(p.lastFrameTime)
	}
	p.lastFrameTime = now
}

// PerfStats holds aggregated performance statistics.
type PerfStats struct {
	// Tick timing
	AvgTickDuration time.Duration
	MinTickDuration time.Duration
	MaxTickDuration time.Duration
	P90TickDuration time.Duration

	// Per-phase average duration and share of the average tick, indexed by Phase
	PhaseAvg [NumPhases]time.Duration
	PhasePct [NumPhases]float64

	// Throughput
	TicksPerSecond float64

	// Frame timing (graphics mode)
	FrameDuration time.Duration
	FPS           float64
}

// Stats computes aggregated statistics over the current window.
func (p *PerfCollector) Stats() PerfStats {
	stats := PerfStats{FrameDuration: p.frameDuration}
	if p.frameDuration > 0 {
		stats.FPS = float64(time.Second) / float64(p.frameDuration)
	}
	if p.ticks.Len() == 0 {
		return stats
	}

	stats.AvgTickDuration = p.ticks.Mean()
	stats.MinTickDuration, stats.MaxTickDuration = p.ticks.MinMax()
	stats.P90TickDuration = p.ticks.Quantile(0.9)

	for i, w := range p.phases {
		stats.PhaseAvg[i] = w.Mean()
		if stats.AvgTickDuration > 0 {
			stats.PhasePct[i] = float64(stats.PhaseAvg[i]) / float64(stats.AvgTickDuration) * 100
		}
	}
	if stats.AvgTickDuration > 0 {
		stats.TicksPerSecond = float64(time.Second) / float64(stats.AvgTickDuration)
	}
	return stats
}

// LogStats logs performance statistics.
func (s PerfStats) LogStats() {
	attrs := []any{
		"avg_tick_us", s.AvgTickDuration.Microseconds(),
		"p90_tick_us", s.P90TickDuration.Microseconds(),
		"max_tick_us", s.MaxTickDuration.Microseconds(),
		"ticks_per_sec", int(s.TicksPerSecond),
	}

	if s.FPS > 0 {
		attrs = append(attrs, "fps", int(s.FPS))
	}

	for _, phase := range Phases {
		if pct := s.PhasePct[phase]; pct > 0.1 {
			attrs = append(attrs, phase.String()+"_pct", int(pct*10)/10.0)
		}
	}

	slog.Info("perf", attrs...)
}

// LogValue implements slog.LogValuer for structured logging.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_tick_us", s.AvgTickDuration.Microseconds()),
		slog.Int64("min_tick_us", s.MinTickDuration.Microseconds()),
		slog.Int64("max_tick_us", s.MaxTickDuration.Microseconds()),
		slog.Int64("p90_tick_us", s.P90TickDuration.Microseconds()),
		slog.Float64("ticks_per_sec", s.TicksPerSecond),
	}

	if s.FPS > 0 {
		attrs = append(attrs, slog.Float64("fps", s.FPS))
	}

	for _, phase := range Phases {
		attrs = append(attrs, slog.Float64(phase.String()+"_pct", s.PhasePct[phase]))
	}

	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is a flat struct for CSV export of performance stats.
type PerfStatsCSV struct {
	WindowEnd     int32   `csv:"window_end"`
	AvgTickUS     int64   `csv:"avg_tick_us"`
	MinTickUS     int64   `csv:"min_tick_us"`
	MaxTickUS     int64   `csv:"max_tick_us"`
	P90TickUS     int64   `csv:"p90_tick_us"`
	TicksPerSec   float64 `csv:"ticks_per_sec"`
	FPS           float64 `csv:"fps"`
	InputPct      float64 `csv:"input_pct"`
	FieldPct      float64 `csv:"field_pct"`
	SteeringPct   float64 `csv:"steering_pct"`
	KinematicsPct float64 `csv:"kinematics_pct"`
	TelemetryPct  float64 `csv:"telemetry_pct"`
}

// ToCSV converts PerfStats to a flat CSV-friendly struct.
func (s PerfStats) ToCSV(windowEnd int32) PerfStatsCSV {
	return PerfStatsCSV{
		WindowEnd:     windowEnd,
		AvgTickUS:     s.AvgTickDuration.Microseconds(),
		MinTickUS:     s.MinTickDuration.Microseconds(),
		MaxTickUS:     s.MaxTickDuration.Microseconds(),
		P90TickUS:     s.P90TickDuration.Microseconds(),
		TicksPerSec:   s.TicksPerSecond,
		FPS:           s.FPS,
		InputPct:      s.PhasePct[PhaseInput],
		FieldPct:      s.PhasePct[PhaseField],
		SteeringPct:   s.PhasePct[PhaseSteering],
		KinematicsPct: s.PhasePct[PhaseKinematics],
		TelemetryPct:  s.PhasePct[PhaseTelemetry],
	}
}
