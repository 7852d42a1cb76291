package telemetry

import (
	"testing"
)

func hasBookmark(bookmarks []Bookmark, typ BookmarkType) bool {
	for _, bm := range bookmarks {
		if bm.Type == typ {
			return true
		}
	}
	return false
}

func TestBookmarkDetector_TrailFormed(t *testing.T) {
	bd := NewBookmarkDetector(10)

	if got := bd.Check(WindowStats{WindowEndTick: 600, FieldMax: 0.4}); hasBookmark(got, BookmarkTrailFormed) {
		t.Error("unexpected trail_formed below threshold")
	}

	got := bd.Check(WindowStats{WindowEndTick: 1200, FieldMax: 1.5, FieldCoverage: 0.02})
	if !hasBookmark(got, BookmarkTrailFormed) {
		t.Fatal("expected trail_formed bookmark")
	}

	// Stays quiet while the trail persists
	if got := bd.Check(WindowStats{WindowEndTick: 1800, FieldMax: 2}); hasBookmark(got, BookmarkTrailFormed) {
		t.Error("trail_formed should trigger once per crossing")
	}

	// Re-arms after dropping below
	bd.Check(WindowStats{WindowEndTick: 2400, FieldMax: 0.1})
	if got := bd.Check(WindowStats{WindowEndTick: 3000, FieldMax: 1}); !hasBookmark(got, BookmarkTrailFormed) {
		t.Error("expected trail_formed after re-crossing")
	}
}

func TestBookmarkDetector_TrailFaded(t *testing.T) {
	bd := NewBookmarkDetector(10)

	for i := 0; i < 3; i++ {
		bd.Check(WindowStats{WindowEndTick: int32(i * 600), FieldTotal: 100})
	}

	if got := bd.Check(WindowStats{WindowEndTick: 1800, FieldTotal: 50}); hasBookmark(got, BookmarkTrailFaded) {
		t.Error("unexpected trail_faded at half of peak")
	}

	got := bd.Check(WindowStats{WindowEndTick: 2400, FieldTotal: 5})
	if !hasBookmark(got, BookmarkTrailFaded) {
		t.Fatal("expected trail_faded bookmark")
	}

	// Peak resets, so the next low window is quiet
	if got := bd.Check(WindowStats{WindowEndTick: 3000, FieldTotal: 4}); hasBookmark(got, BookmarkTrailFaded) {
		t.Error("trail_faded should not repeat without a new peak")
	}
}

func TestBookmarkDetector_SwarmConverged(t *testing.T) {
	bd := NewBookmarkDetector(10)

	for i := 0; i < 4; i++ {
		bd.Check(WindowStats{
			WindowEndTick:      int32(i * 600),
			Seeking:            10,
			MeanTargetDistance: 200,
		})
	}

	got := bd.Check(WindowStats{
		WindowEndTick:      2400,
		Seeking:            10,
		MeanTargetDistance: 20,
	})
	if !hasBookmark(got, BookmarkSwarmConverged) {
		t.Fatal("expected swarm_converged bookmark")
	}

	// Already converged last window: no repeat
	got = bd.Check(WindowStats{
		WindowEndTick:      3000,
		Seeking:            10,
		MeanTargetDistance: 10,
	})
	if hasBookmark(got, BookmarkSwarmConverged) {
		t.Error("swarm_converged should trigger on the crossing only")
	}
}

func TestBookmarkDetector_SteadyCruise(t *testing.T) {
	bd := NewBookmarkDetector(10)

	var triggered int
	for i := 0; i < 12; i++ {
		got := bd.Check(WindowStats{
			WindowEndTick: int32(i * 600),
			AntCount:      50,
			SpeedMean:     150 + float64(i%2),
		})
		if hasBookmark(got, BookmarkSteadyCruise) {
			triggered++
		}
	}

	if triggered != 1 {
		t.Errorf("steady_cruise triggered %d times, want 1", triggered)
	}
}

func TestBookmarkDetector_NoAnts(t *testing.T) {
	bd := NewBookmarkDetector(10)
	for i := 0; i < 10; i++ {
		if got := bd.Check(WindowStats{WindowEndTick: int32(i * 600)}); len(got) != 0 {
			t.Errorf("window %d: unexpected bookmarks %v", i, got)
		}
	}
}

func TestBookmarkDetector_HistoryOrder(t *testing.T) {
	bd := NewBookmarkDetector(5)
	for i := 0; i < 7; i++ {
		bd.Check(WindowStats{WindowEndTick: int32(i)})
	}

	history := bd.getHistory()
	if len(history) != 5 {
		t.Fatalf("history length = %d, want 5", len(history))
	}
	for i, h := range history {
		if h.WindowEndTick != int32(i+2) {
			t.Errorf("history[%d] = tick %d, want %d", i, h.WindowEndTick, i+2)
		}
	}
}
