package telemetry

import "math"

// Collector accumulates events within time windows and produces WindowStats.
type Collector struct {
	windowDurationSec   float64
	windowDurationTicks int32

	// Current window tracking
	windowStartTick int32

	// Event counters for current window
	deposits     int
	depositTotal float64
	fieldUpdates int
	spawns       int
	despawns     int
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: nominal seconds per tick, used only to size the window in ticks
func NewCollector(windowDurationSec, dt float64) *Collector {
	var ticksPerWindow int32 = 1
	if dt > 0 {
		ticksPerWindow = int32(math.Round(windowDurationSec / dt))
	}
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}

	return &Collector{
		windowDurationSec:   windowDurationSec,
		windowDurationTicks: ticksPerWindow,
	}
}

// Record counts an event in the current window.
func (c *Collector) Record(ev Event) {
	switch ev.Type {
	case EventDeposit:
		c.deposits++
		c.depositTotal += ev.Amount
	case EventFieldUpdate:
		c.fieldUpdates++
	case EventSpawn:
		c.spawns++
	case EventDespawn:
		c.despawns++
	}
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// SwarmSample is the state sampled at window end.
type SwarmSample struct {
	SimTime float64 // accumulated simulated seconds; steps may vary in dt

	Speeds          []float64 // per-ant speed
	TargetDistances []float64 // per-ant distance to target, active targets only
	AntennaSignals  []float64 // per-ant mean of left and right readings

	FieldTotal    float64
	FieldMax      float64
	FieldCoverage float64 // fraction of cells above zero
}

// Flush produces a WindowStats and resets counters for the next window.
func (c *Collector) Flush(currentTick int32, sample SwarmSample) WindowStats {
	speedMean, speedStd, speedP10, speedP50, speedP90 := ComputeDistribution(sample.Speeds)
	targetMean, _, _, _, _ := ComputeDistribution(sample.TargetDistances)
	signalMean, _, _, _, _ := ComputeDistribution(sample.AntennaSignals)

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      sample.SimTime,

		AntCount: len(sample.Speeds),
		Spawns:   c.spawns,
		Despawns: c.despawns,

		Deposits:     c.deposits,
		DepositTotal: c.depositTotal,
		FieldUpdates: c.fieldUpdates,

		FieldTotal:    sample.FieldTotal,
		FieldMax:      sample.FieldMax,
		FieldCoverage: sample.FieldCoverage,

		SpeedMean: speedMean,
		SpeedStd:  speedStd,
		SpeedP10:  speedP10,
		SpeedP50:  speedP50,
		SpeedP90:  speedP90,

		Seeking:            len(sample.TargetDistances),
		MeanTargetDistance: targetMean,
		MeanAntennaSignal:  signalMean,
	}

	// Reset for next window
	c.windowStartTick = currentTick
	c.deposits = 0
	c.depositTotal = 0
	c.fieldUpdates = 0
	c.spawns = 0
	c.despawns = 0

	return stats
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int32 {
	return c.windowDurationTicks
}
