package telemetry

import (
	"fmt"
	"log/slog"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkTrailFormed    BookmarkType = "trail_formed"
	BookmarkTrailFaded     BookmarkType = "trail_faded"
	BookmarkSwarmConverged BookmarkType = "swarm_converged"
	BookmarkSteadyCruise   BookmarkType = "steady_cruise"
)

// Detection thresholds.
const (
	trailFormedMax      = 1.0  // field max that counts as a saturated trail cell
	trailFadedFraction  = 0.1  // field total below this share of the recent peak
	convergedFraction   = 0.25 // target distance below this share of the rolling mean
	steadyCruiseWindows = 5
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Tick        int32        `csv:"tick"`
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"tick", b.Tick,
		"description", b.Description,
	)
}

// BookmarkDetector detects interesting moments in the simulation.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	// State tracking
	trailActive        bool    // field max is at or above trailFormedMax
	recentFieldPeak    float64 // peak field total since the last fade
	steadyWindowsCount int     // consecutive windows with stable speed
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < 5 {
		historySize = 5 // minimum for steady cruise detection
	}
	return &BookmarkDetector{
		history:     make([]WindowStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark

	if b := bd.checkTrailFormed(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if b := bd.checkTrailFaded(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if b := bd.checkSwarmConverged(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if b := bd.checkSteadyCruise(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	bd.addToHistory(stats)

	if stats.FieldTotal > bd.recentFieldPeak {
		bd.recentFieldPeak = stats.FieldTotal
	}

	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats WindowStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

// getHistory returns stored windows, oldest first.
func (bd *BookmarkDetector) getHistory() []WindowStats {
	if !bd.historyFull {
		return bd.history[:bd.historyIdx]
	}
	ordered := make([]WindowStats, 0, bd.historySize)
	ordered = append(ordered, bd.history[bd.historyIdx:]...)
	return append(ordered, bd.history[:bd.historyIdx]...)
}

func (bd *BookmarkDetector) checkTrailFormed(stats WindowStats) *Bookmark {
	if stats.FieldMax < trailFormedMax {
		bd.trailActive = false
		return nil
	}
	if bd.trailActive {
		return nil
	}
	bd.trailActive = true
	return &Bookmark{
		Type:        BookmarkTrailFormed,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("Field max reached %.2f with %.1f%% coverage", stats.FieldMax, stats.FieldCoverage*100),
	}
}

func (bd *BookmarkDetector) checkTrailFaded(stats WindowStats) *Bookmark {
	if bd.recentFieldPeak <= 0 {
		return nil
	}
	if stats.FieldTotal >= bd.recentFieldPeak*trailFadedFraction {
		return nil
	}

	// Reset peak after a fade
	oldPeak := bd.recentFieldPeak
	bd.recentFieldPeak = 0

	return &Bookmark{
		Type:        BookmarkTrailFaded,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("Field total fell from peak %.2f to %.2f", oldPeak, stats.FieldTotal),
	}
}

func (bd *BookmarkDetector) checkSwarmConverged(stats WindowStats) *Bookmark {
	if stats.Seeking == 0 {
		return nil
	}
	history := bd.getHistory()
	if len(history) < 3 {
		return nil
	}

	var sum float64
	var n int
	for _, h := range history {
		if h.Seeking > 0 {
			sum += h.MeanTargetDistance
			n++
		}
	}
	if n == 0 {
		return nil
	}
	avg := sum / float64(n)
	if avg == 0 {
		return nil
	}

	// Trigger on the crossing only
	prev := history[len(history)-1]
	if prev.Seeking > 0 && prev.MeanTargetDistance < avg*convergedFraction {
		return nil
	}
	if stats.MeanTargetDistance < avg*convergedFraction {
		return &Bookmark{
			Type:        BookmarkSwarmConverged,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Mean target distance %.2f is %.0f%% of rolling average (%.2f)", stats.MeanTargetDistance, stats.MeanTargetDistance/avg*100, avg),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkSteadyCruise(stats WindowStats) *Bookmark {
	if stats.AntCount == 0 || stats.SpeedMean == 0 {
		bd.steadyWindowsCount = 0
		return nil
	}

	history := bd.getHistory()
	if len(history) < 4 {
		return nil
	}

	// Check variance in recent windows
	recent := history[len(history)-4:]
	var sum float64
	for _, h := range recent {
		sum += h.SpeedMean
	}
	mean := sum / 4

	var variance float64
	for _, h := range recent {
		d := h.SpeedMean - mean
		variance += d * d
	}
	variance /= 4

	// CV^2 < 0.01 means CV < 0.1
	if mean > 0 && variance/(mean*mean) < 0.01 {
		bd.steadyWindowsCount++
	} else {
		bd.steadyWindowsCount = 0
	}

	if bd.steadyWindowsCount == steadyCruiseWindows {
		return &Bookmark{
			Type:        BookmarkSteadyCruise,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Mean speed steady near %.1f over %d windows", mean, steadyCruiseWindows),
		}
	}
	return nil
}
