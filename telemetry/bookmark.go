package telemetry

import (
	"fmt"
	"log/slog"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkFirstPublish       BookmarkType = "first_publish"
	BookmarkConcentrationSpike BookmarkType = "concentration_spike"
	BookmarkFieldCollapse      BookmarkType = "field_collapse"
	BookmarkStableField        BookmarkType = "stable_field"
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Frame       int32        `csv:"frame"`
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"frame", b.Frame,
		"description", b.Description,
	)
}

// BookmarkDetector detects notable changes in the density field between
// stats windows.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	published          bool // a field has been published at least once
	healthy            bool // the last published window had a non-degenerate field
	stableWindowsCount int  // consecutive windows with a steady mean density
}

// stableWindows is the run of steady windows that triggers BookmarkStableField.
const stableWindows = 5

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < stableWindows {
		historySize = stableWindows
	}
	return &BookmarkDetector{
		history:     make([]WindowStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark

	// First publish: inputs became ready
	if !bd.published && stats.FramesPublished > 0 {
		bd.published = true
		bookmarks = append(bookmarks, Bookmark{
			Type:        BookmarkFirstPublish,
			Frame:       stats.WindowEndFrame,
			Description: fmt.Sprintf("First field published after %d skipped frames", stats.FramesSkipped),
		})
	}

	if b := bd.checkFieldCollapse(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	if bd.historyFull || bd.historyIdx > 0 {
		// Concentration spike: raw peak > 2x rolling average
		if b := bd.checkConcentrationSpike(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}

		if b := bd.checkStableField(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
	}

	if stats.FramesPublished > 0 {
		bd.addToHistory(stats)
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

func (bd *BookmarkDetector) getHistory() []WindowStats {
	if bd.historyFull {
		return bd.history
	}
	return bd.history[:bd.historyIdx]
}

// checkFieldCollapse fires when every frame in a window was degenerate after a
// window that carried a real field.
func (bd *BookmarkDetector) checkFieldCollapse(stats WindowStats) *Bookmark {
	if stats.FramesPublished == 0 {
		return nil
	}
	collapsed := stats.FramesDegenerate == stats.FramesPublished
	wasHealthy := bd.healthy
	bd.healthy = !collapsed

	if collapsed && wasHealthy {
		return &Bookmark{
			Type:        BookmarkFieldCollapse,
			Frame:       stats.WindowEndFrame,
			Description: fmt.Sprintf("All %d frames degenerate with %d particles", stats.FramesPublished, stats.Particles),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkConcentrationSpike(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 || stats.FramesPublished == 0 {
		return nil
	}

	var total float64
	for _, h := range history {
		total += h.RawMaxMean
	}
	avg := total / float64(len(history))
	if avg == 0 {
		return nil
	}

	if stats.RawMaxMean > avg*2.0 {
		return &Bookmark{
			Type:        BookmarkConcentrationSpike,
			Frame:       stats.WindowEndFrame,
			Description: fmt.Sprintf("Raw peak %.2f is %.1fx average (%.2f)", stats.RawMaxMean, stats.RawMaxMean/avg, avg),
		}
	}
	return nil
}

// checkStableField fires once when the mean density has held steady for
// stableWindows consecutive windows.
func (bd *BookmarkDetector) checkStableField(stats WindowStats) *Bookmark {
	if stats.FramesPublished == 0 || stats.FramesDegenerate == stats.FramesPublished {
		bd.stableWindowsCount = 0
		return nil
	}

	history := bd.getHistory()
	if len(history) < 4 {
		return nil
	}

	recent := append([]WindowStats{stats}, history[len(history)-3:]...)
	var sum float64
	for _, h := range recent {
		sum += h.DensityMean
	}
	mean := sum / float64(len(recent))

	var variance float64
	for _, h := range recent {
		d := h.DensityMean - mean
		variance += d * d
	}
	variance /= float64(len(recent))

	if mean > 0 && variance/(mean*mean) < 0.0025 { // CV < 5%
		bd.stableWindowsCount++
	} else {
		bd.stableWindowsCount = 0
	}

	if bd.stableWindowsCount == stableWindows { // trigger exactly once per run
		return &Bookmark{
			Type:        BookmarkStableField,
			Frame:       stats.WindowEndFrame,
			Description: fmt.Sprintf("Mean density steady at %.3f over %d windows", mean, stableWindows),
		}
	}
	return nil
}
