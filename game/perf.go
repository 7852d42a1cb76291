package game

import (
	"time"

	"github.com/pthm-cable/stigmergy/telemetry"
)

// Render passes timed each frame, in draw order.
const (
	PassBackground = "background"
	PassHeatmap    = "heatmap"
	PassAnts       = "ants"
	PassUI         = "ui"
)

// RenderPasses lists render passes in draw order.
var RenderPasses = []string{PassBackground, PassHeatmap, PassAnts, PassUI}

// RenderPerf tracks a rolling window of durations per render pass.
type RenderPerf struct {
	passes     map[string]*telemetry.DurationWindow
	maxSamples int
}

// NewRenderPerf creates a tracker keeping maxSamples per pass.
func NewRenderPerf(maxSamples int) *RenderPerf {
	if maxSamples <= 0 {
		maxSamples = 120 // ~2 seconds of samples at 60fps
	}
	return &RenderPerf{
		passes:     make(map[string]*telemetry.DurationWindow),
		maxSamples: maxSamples,
	}
}

// Record adds a duration sample for the named pass.
func (p *RenderPerf) Record(name string, d time.Duration) {
	w, ok := p.passes[name]
	if !ok {
		w = telemetry.NewDurationWindow(p.maxSamples)
		p.passes[name] = w
	}
	w.Add(d)
}

// Time runs fn and records its duration under name.
func (p *RenderPerf) Time(name string, fn func()) {
	start := time.Now()
	fn()
	p.Record(name, time.Since(start))
}

// Avg returns the average duration for the named pass.
func (p *RenderPerf) Avg(name string) time.Duration {
	if w, ok := p.passes[name]; ok {
		return w.Mean()
	}
	return 0
}

// Averages returns the average of every known pass.
func (p *RenderPerf) Averages() map[string]time.Duration {
	out := make(map[string]time.Duration, len(p.passes))
	for name, w := range p.passes {
		out[name] = w.Mean()
	}
	return out
}

// Total returns the sum of all average durations.
func (p *RenderPerf) Total() time.Duration {
	var total time.Duration
	for _, w := range p.passes {
		total += w.Mean()
	}
	return total
}
