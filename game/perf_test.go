package game

import (
	"testing"
	"time"
)

func TestRenderPerfWindow(t *testing.T) {
	p := NewRenderPerf(3)
	for _, ms := range []int{10, 20, 30, 40} {
		p.Record(PassHeatmap, time.Duration(ms)*time.Millisecond)
	}

	// Oldest sample dropped: avg of 20, 30, 40
	if got := p.Avg(PassHeatmap); got != 30*time.Millisecond {
		t.Errorf("Avg = %v, want 30ms", got)
	}
	if got := p.Avg(PassAnts); got != 0 {
		t.Errorf("unknown pass avg = %v", got)
	}

	p.Record(PassAnts, 6*time.Millisecond)
	if got := p.Total(); got != 36*time.Millisecond {
		t.Errorf("Total = %v, want 36ms", got)
	}
	avgs := p.Averages()
	if len(avgs) != 2 || avgs[PassAnts] != 6*time.Millisecond {
		t.Errorf("Averages = %v", avgs)
	}
}

func TestRenderPerfTime(t *testing.T) {
	p := NewRenderPerf(0)
	called := false
	p.Time(PassUI, func() { called = true })
	if !called {
		t.Fatal("fn not run")
	}
	if w := p.passes[PassUI]; w == nil || w.Len() != 1 {
		t.Error("expected one ui sample")
	}
}

func TestShouldPublish(t *testing.T) {
	tests := []struct {
		tick, interval int32
		want           bool
	}{
		{0, 2, true},
		{1, 2, false},
		{4, 2, true},
		{3, 1, true},
		{5, 0, false},
	}
	for _, tt := range tests {
		if got := shouldPublish(tt.tick, tt.interval); got != tt.want {
			t.Errorf("shouldPublish(%d, %d) = %v, want %v", tt.tick, tt.interval, got, tt.want)
		}
	}
}
