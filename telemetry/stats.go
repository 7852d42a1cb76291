package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartTick int32   `csv:"-"`
	WindowEndTick   int32   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// Population at window end and changes during the window
	AntCount int `csv:"ants"`
	Spawns   int `csv:"spawns"`
	Despawns int `csv:"despawns"`

	// Field writes during the window
	Deposits     int     `csv:"deposits"`
	DepositTotal float64 `csv:"deposit_total"`
	FieldUpdates int     `csv:"field_updates"`

	// Field state at window end
	FieldTotal    float64 `csv:"field_total"`
	FieldMax      float64 `csv:"field_max"`
	FieldCoverage float64 `csv:"field_coverage"`

	// Speed distribution (sampled at window end)
	SpeedMean float64 `csv:"speed_mean"`
	SpeedStd  float64 `csv:"speed_std"`
	SpeedP10  float64 `csv:"speed_p10"`
	SpeedP50  float64 `csv:"speed_p50"`
	SpeedP90  float64 `csv:"speed_p90"`

	// Trail following
	Seeking            int     `csv:"seeking"`
	MeanTargetDistance float64 `csv:"target_dist_mean"`
	MeanAntennaSignal  float64 `csv:"antenna_signal_mean"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeDistribution calculates mean, sample standard deviation, and
// percentiles. Standard deviation is 0 for fewer than two values.
func ComputeDistribution(values []float64) (mean, std, p10, p50, p90 float64) {
	n := len(values)
	if n == 0 {
		return 0, 0, 0, 0, 0
	}

	mean = stat.Mean(values, nil)
	if n > 1 {
		std = stat.StdDev(values, nil)
	}

	// Sort for percentiles
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	p10 = Percentile(sorted, 0.10)
	p50 = Percentile(sorted, 0.50)
	p90 = Percentile(sorted, 0.90)

	return mean, std, p10, p50, p90
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("ants", s.AntCount),
		slog.Int("spawns", s.Spawns),
		slog.Int("despawns", s.Despawns),
		slog.Int("deposits", s.Deposits),
		slog.Float64("deposit_total", s.DepositTotal),
		slog.Int("field_updates", s.FieldUpdates),
		slog.Float64("field_total", s.FieldTotal),
		slog.Float64("field_max", s.FieldMax),
		slog.Float64("field_coverage", s.FieldCoverage),
		slog.Float64("speed_mean", s.SpeedMean),
		slog.Float64("speed_std", s.SpeedStd),
		slog.Float64("speed_p10", s.SpeedP10),
		slog.Float64("speed_p50", s.SpeedP50),
		slog.Float64("speed_p90", s.SpeedP90),
		slog.Int("seeking", s.Seeking),
		slog.Float64("target_dist_mean", s.MeanTargetDistance),
		slog.Float64("antenna_signal_mean", s.MeanAntennaSignal),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"sim_time", s.SimTimeSec,
		"ants", s.AntCount,
		"deposits", s.Deposits,
		"deposit_total", s.DepositTotal,
		"field_updates", s.FieldUpdates,
		"field_total", s.FieldTotal,
		"field_max", s.FieldMax,
		"field_coverage", s.FieldCoverage,
		"speed_mean", s.SpeedMean,
		"speed_p50", s.SpeedP50,
		"seeking", s.Seeking,
		"target_dist_mean", s.MeanTargetDistance,
		"antenna_signal_mean", s.MeanAntennaSignal,
	)
}
