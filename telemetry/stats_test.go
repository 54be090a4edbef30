package telemetry

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/tubedensity/config"
	"github.com/pthm-cable/tubedensity/density"
)

func TestPercentile(t *testing.T) {
	tests := []struct {
		name   string
		sorted []float64
		p      float64
		want   float64
	}{
		{"empty slice", []float64{}, 0.5, 0},
		{"single element", []float64{5.0}, 0.5, 5.0},
		{"p0", []float64{1, 2, 3, 4, 5}, 0.0, 1.0},
		{"p100", []float64{1, 2, 3, 4, 5}, 1.0, 5.0},
		{"p50 odd", []float64{1, 2, 3, 4, 5}, 0.5, 3.0},
		{"p50 even", []float64{1, 2, 3, 4}, 0.5, 2.5},
		{"p10", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.1, 1.9},
		{"p90", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.9, 9.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Percentile(tt.sorted, tt.p)
			if math.Abs(got-tt.want) > 0.001 {
				t.Errorf("Percentile(%v, %v) = %v, want %v", tt.sorted, tt.p, got, tt.want)
			}
		})
	}
}

func TestComputeFieldStats(t *testing.T) {
	values := []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0}
	fs := ComputeFieldStats(values)

	if math.Abs(fs.Mean-0.55) > 1e-9 {
		t.Errorf("mean = %v, want 0.55", fs.Mean)
	}
	if math.Abs(fs.P10-0.19) > 0.01 {
		t.Errorf("p10 = %v, want ~0.19", fs.P10)
	}
	if math.Abs(fs.P90-0.91) > 0.01 {
		t.Errorf("p90 = %v, want ~0.91", fs.P90)
	}
	if fs.Min != 0.1 {
		t.Errorf("min = %v, want 0.1", fs.Min)
	}
	// 0.9 and 1.0 are hot
	if math.Abs(fs.HotFraction-0.2) > 1e-12 {
		t.Errorf("hot fraction = %v, want 0.2", fs.HotFraction)
	}
	// Population std of 0.1..1.0
	if math.Abs(fs.Std-0.28723) > 1e-4 {
		t.Errorf("std = %v, want ~0.2872", fs.Std)
	}
}

func TestComputeFieldStatsEmpty(t *testing.T) {
	if fs := ComputeFieldStats(nil); fs != (FieldStats{}) {
		t.Errorf("expected zero stats for empty field, got %+v", fs)
	}
}

func TestCollectorFlush(t *testing.T) {
	c := NewCollector(4, 0.5)

	c.RecordSkipped()
	c.RecordPublished(density.Result{Particles: 10, Vertices: 3, RawMax: 2})
	c.RecordPublished(density.Result{Particles: 10, Vertices: 3, RawMax: 4})
	c.RecordPublished(density.Result{Particles: 10, Vertices: 3, RawMax: 0})

	if c.ShouldFlush(3) {
		t.Error("should not flush before window end")
	}
	if !c.ShouldFlush(4) {
		t.Error("should flush at window end")
	}

	s := c.Flush(4, []float64{0, 0.5, 1}, 1.5)

	if s.FramesPublished != 3 || s.FramesSkipped != 1 || s.FramesDegenerate != 1 {
		t.Errorf("unexpected counts %+v", s)
	}
	if s.RawMaxMean != 2 || s.RawMaxPeak != 4 {
		t.Errorf("raw max mean/peak = %v/%v, want 2/4", s.RawMaxMean, s.RawMaxPeak)
	}
	if s.SimTimeSec != 2 {
		t.Errorf("sim time = %v, want 2", s.SimTimeSec)
	}
	if s.Particles != 10 || s.Vertices != 3 || s.Bandwidth != 1.5 {
		t.Errorf("inputs not carried: %+v", s)
	}
	if math.Abs(s.DensityMean-0.5) > 1e-12 {
		t.Errorf("density mean = %v, want 0.5", s.DensityMean)
	}

	// Window reset
	if c.ShouldFlush(7) {
		t.Error("window start not advanced")
	}
	next := c.Flush(8, nil, 1.5)
	if next.FramesPublished != 0 || next.WindowStartFrame != 4 {
		t.Errorf("counters not reset: %+v", next)
	}
}

func TestOutputManagerDisabled(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil || om != nil {
		t.Fatalf("expected nil manager for empty dir, got %v, %v", om, err)
	}
	// Nil manager methods are no-ops
	if err := om.WriteStats(WindowStats{}); err != nil {
		t.Error(err)
	}
	if err := om.Close(); err != nil {
		t.Error(err)
	}
}

func TestOutputManagerWritesCSV(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatal(err)
	}

	for i := int32(1); i <= 3; i++ {
		if err := om.WriteStats(WindowStats{WindowEndFrame: i * 24, FramesPublished: 24}); err != nil {
			t.Fatal(err)
		}
	}
	if err := om.WritePerf(PerfStats{PhasePct: map[string]float64{}}, 24); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	if err := om.WriteConfig(cfg); err != nil {
		t.Fatal(err)
	}
	if err := om.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "frames.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(string(data), "window_end"); n != 1 {
		t.Errorf("expected a single header row, found %d", n)
	}

	var rows []WindowStats
	if err := gocsv.UnmarshalBytes(data, &rows); err != nil {
		t.Fatalf("reading frames.csv: %v", err)
	}
	if len(rows) != 3 || rows[2].WindowEndFrame != 72 {
		t.Errorf("unexpected rows %+v", rows)
	}

	if _, err := os.Stat(filepath.Join(dir, "config.yaml")); err != nil {
		t.Errorf("config snapshot missing: %v", err)
	}
}
