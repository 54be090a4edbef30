package telemetry

import "github.com/pthm-cable/tubedensity/density"

// Collector accumulates frame outcomes within windows and produces WindowStats.
type Collector struct {
	windowFrames int32
	dt           float64

	windowStartFrame int32

	// Counters for current window
	published  int
	skipped    int
	degenerate int
	rawMaxSum  float64
	rawMaxPeak float64
	particles  int
	vertices   int
}

// NewCollector creates a new stats collector.
// windowFrames: frames per window; dt: seconds per frame.
func NewCollector(windowFrames int, dt float64) *Collector {
	if windowFrames < 1 {
		windowFrames = 1
	}
	return &Collector{
		windowFrames: int32(windowFrames),
		dt:           dt,
	}
}

// RecordPublished records a frame whose field reached the sink.
func (c *Collector) RecordPublished(res density.Result) {
	c.published++
	if res.Degenerate() {
		c.degenerate++
	}
	c.rawMaxSum += res.RawMax
	if res.RawMax > c.rawMaxPeak {
		c.rawMaxPeak = res.RawMax
	}
	c.particles = res.Particles
	c.vertices = res.Vertices
}

// RecordSkipped records a frame skipped for missing input.
func (c *Collector) RecordSkipped() {
	c.skipped++
}

// ShouldFlush returns true if enough frames have passed to flush the window.
func (c *Collector) ShouldFlush(frame int32) bool {
	return frame-c.windowStartFrame >= c.windowFrames
}

// Flush produces a WindowStats from the counters and the last published
// field, then resets for the next window.
func (c *Collector) Flush(frame int32, field []float64, bandwidth float64) WindowStats {
	var rawMaxMean float64
	if c.published > 0 {
		rawMaxMean = c.rawMaxSum / float64(c.published)
	}
	fs := ComputeFieldStats(field)

	stats := WindowStats{
		WindowStartFrame: c.windowStartFrame,
		WindowEndFrame:   frame,
		SimTimeSec:       float64(frame) * c.dt,

		FramesPublished:  c.published,
		FramesSkipped:    c.skipped,
		FramesDegenerate: c.degenerate,

		Particles: c.particles,
		Vertices:  c.vertices,
		Bandwidth: bandwidth,

		RawMaxMean: rawMaxMean,
		RawMaxPeak: c.rawMaxPeak,

		DensityMean: fs.Mean,
		DensityStd:  fs.Std,
		DensityMin:  fs.Min,
		DensityP10:  fs.P10,
		DensityP50:  fs.P50,
		DensityP90:  fs.P90,
		HotFraction: fs.HotFraction,
	}

	c.windowStartFrame = frame
	c.published = 0
	c.skipped = 0
	c.degenerate = 0
	c.rawMaxSum = 0
	c.rawMaxPeak = 0

	return stats
}

// WindowFrames returns the number of frames per window.
func (c *Collector) WindowFrames() int32 {
	return c.windowFrames
}
