package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a window of frames.
type WindowStats struct {
	WindowStartFrame int32   `csv:"-"`
	WindowEndFrame   int32   `csv:"window_end"`
	SimTimeSec       float64 `csv:"sim_time"`

	// Frame outcomes during window
	FramesPublished  int `csv:"published"`
	FramesSkipped    int `csv:"skipped"`
	FramesDegenerate int `csv:"degenerate"`

	// Inputs at window end
	Particles int     `csv:"particles"`
	Vertices  int     `csv:"vertices"`
	Bandwidth float64 `csv:"bandwidth"`

	// Raw kernel sums over published frames
	RawMaxMean float64 `csv:"raw_max_mean"`
	RawMaxPeak float64 `csv:"raw_max_peak"`

	// Distribution of the last published field
	DensityMean float64 `csv:"density_mean"`
	DensityStd  float64 `csv:"density_std"`
	DensityMin  float64 `csv:"density_min"`
	DensityP10  float64 `csv:"density_p10"`
	DensityP50  float64 `csv:"density_p50"`
	DensityP90  float64 `csv:"density_p90"`
	HotFraction float64 `csv:"hot_fraction"` // Share of vertices at >= HotThreshold
}

// HotThreshold is the density at which a vertex counts as hot.
const HotThreshold = 0.9

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

// FieldStats summarises a density field.
type FieldStats struct {
	Mean, Std     float64
	Min           float64
	P10, P50, P90 float64
	HotFraction   float64
}

// ComputeFieldStats calculates the distribution of a density field.
func ComputeFieldStats(values []float64) FieldStats {
	n := len(values)
	if n == 0 {
		return FieldStats{}
	}

	mean, std := stat.PopMeanStdDev(values, nil)

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	hot := n - sort.SearchFloat64s(sorted, HotThreshold)

	return FieldStats{
		Mean:        mean,
		Std:         std,
		Min:         floats.Min(values),
		P10:         Percentile(sorted, 0.10),
		P50:         Percentile(sorted, 0.50),
		P90:         Percentile(sorted, 0.90),
		HotFraction: float64(hot) / float64(n),
	}
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartFrame)),
		slog.Int("window_end", int(s.WindowEndFrame)),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("published", s.FramesPublished),
		slog.Int("skipped", s.FramesSkipped),
		slog.Int("degenerate", s.FramesDegenerate),
		slog.Int("particles", s.Particles),
		slog.Int("vertices", s.Vertices),
		slog.Float64("bandwidth", s.Bandwidth),
		slog.Float64("raw_max_mean", s.RawMaxMean),
		slog.Float64("raw_max_peak", s.RawMaxPeak),
		slog.Float64("density_mean", s.DensityMean),
		slog.Float64("density_std", s.DensityStd),
		slog.Float64("density_p50", s.DensityP50),
		slog.Float64("hot_fraction", s.HotFraction),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats", "window", s)
}
