package sim

import (
	"log/slog"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/stigmergy/systems"
	"github.com/pthm-cable/stigmergy/telemetry"
)

// record forwards an event to the collector when telemetry is enabled.
func (s *Simulation) record(ev telemetry.Event) {
	if s.collector != nil {
		s.collector.Record(ev)
	}
}

// flushTelemetry emits window stats, bookmarks, and perf once per window.
func (s *Simulation) flushTelemetry() {
	if s.collector == nil || !s.collector.ShouldFlush(s.tick) {
		return
	}

	stats := s.collector.Flush(s.tick, s.sampleSwarm())
	s.lastStats = stats
	s.hasStats = true

	if s.onStats != nil {
		s.onStats(stats)
	}
	if s.logStats {
		stats.LogStats()
	}
	if err := s.output.WriteTelemetry(stats); err != nil {
		slog.Error("failed to write telemetry", "error", err)
	}

	for _, b := range s.bookmarks.Check(stats) {
		if s.logStats {
			b.LogBookmark()
		}
		if err := s.output.WriteBookmark(b); err != nil {
			slog.Error("failed to write bookmark", "error", err)
		}
	}

	perfStats := s.perf.Stats()
	if s.logStats {
		perfStats.LogStats()
	}
	if err := s.output.WritePerf(perfStats, s.tick); err != nil {
		slog.Error("failed to write perf", "error", err)
	}
}

// sampleSwarm gathers per-ant distributions and field aggregates.
func (s *Simulation) sampleSwarm() telemetry.SwarmSample {
	s.speeds = s.speeds[:0]
	s.distances = s.distances[:0]
	s.signals = s.signals[:0]

	query := s.antFilter.Query()
	for query.Next() {
		_, pos, vel, rot, sensors, target := query.Get()
		s.speeds = append(s.speeds, r2.Norm(vel.Vec))
		if target.Active {
			s.distances = append(s.distances, r2.Norm(r2.Sub(target.Point, pos.Vec)))
		}
		reading := systems.ReadAntennae(s.field, pos.Vec, rot.Heading, *sensors)
		s.signals = append(s.signals, (reading.Left+reading.Right)/2)
	}

	values := s.field.Values()
	var covered int
	for _, v := range values {
		if v > 0 {
			covered++
		}
	}

	return telemetry.SwarmSample{
		SimTime:         s.simTime,
		Speeds:          s.speeds,
		TargetDistances: s.distances,
		AntennaSignals:  s.signals,
		FieldTotal:      s.field.Total(),
		FieldMax:        s.field.Max(),
		FieldCoverage:   float64(covered) / float64(len(values)),
	}
}
