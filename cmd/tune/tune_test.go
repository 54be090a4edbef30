package main

import (
	"math"
	"testing"

	"github.com/pthm-cable/tubedensity/config"
	"github.com/pthm-cable/tubedensity/telemetry"
)

func TestParamVectorRoundTrip(t *testing.T) {
	pv := NewParamVector()
	raw := pv.DefaultVector()

	back := pv.Denormalize(pv.Normalize(raw))
	for i := range raw {
		if math.Abs(back[i]-raw[i]) > 1e-12 {
			t.Errorf("%s: %v -> %v", pv.Specs[i].Name, raw[i], back[i])
		}
	}
}

func TestParamVectorClamp(t *testing.T) {
	pv := NewParamVector()
	got := pv.Clamp([]float64{-5, 99})
	if got[0] != pv.Specs[0].Min || got[1] != pv.Specs[1].Max {
		t.Errorf("Clamp = %v", got)
	}
}

func TestApplyToConfig(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	pv := NewParamVector()

	if err := pv.ApplyToConfig(cfg, []float64{2.25, 0.1}); err != nil {
		t.Fatal(err)
	}
	if cfg.Derived.Bandwidth != 2.25 || cfg.Physics.Turbulence != 0.1 {
		t.Errorf("config not updated: h=%v turb=%v", cfg.Derived.Bandwidth, cfg.Physics.Turbulence)
	}
	if got := pv.ExtractFromConfig(cfg); got[0] != 2.25 || got[1] != 0.1 {
		t.Errorf("ExtractFromConfig = %v", got)
	}
}

func TestScore(t *testing.T) {
	o := NewObjective(NewParamVector(), 0, nil, nil, 0.2)

	windows := []telemetry.WindowStats{
		{FramesPublished: 0, FramesSkipped: 24}, // warmup
		{FramesPublished: 24, HotFraction: 0.2, DensityStd: 0.3},
		{FramesPublished: 24, HotFraction: 0.2, DensityStd: 0.1},
	}
	sc := o.score(windows)
	if math.Abs(sc.HotFraction-0.2) > 1e-12 || math.Abs(sc.Contrast-0.2) > 1e-12 {
		t.Errorf("unexpected averages %+v", sc)
	}
	if want := -contrastWeight * 0.2; math.Abs(sc.Cost-want) > 1e-12 {
		t.Errorf("cost = %v, want %v", sc.Cost, want)
	}

	// Missing the target costs more than hitting it
	off := o.score([]telemetry.WindowStats{
		{},
		{FramesPublished: 24, HotFraction: 0.6, DensityStd: 0.2},
	})
	if off.Cost <= sc.Cost {
		t.Errorf("off-target cost %v should exceed on-target %v", off.Cost, sc.Cost)
	}
}

func TestScoreRejectsEmptyRuns(t *testing.T) {
	o := NewObjective(NewParamVector(), 0, nil, nil, 0.1)

	if sc := o.score(nil); sc.Cost != failedCost {
		t.Errorf("no windows: cost %v", sc.Cost)
	}
	degenerate := []telemetry.WindowStats{
		{},
		{FramesPublished: 10, FramesDegenerate: 10},
	}
	if sc := o.score(degenerate); sc.Cost != failedCost {
		t.Errorf("degenerate windows: cost %v", sc.Cost)
	}
}

func TestEvaluateRunsScenes(t *testing.T) {
	base, err := config.Parse([]byte(`
particles:
  count: 40
  emit_rate: 0
cylinder:
  segments: 8
  subdivision: 0
telemetry:
  stats_window: 4
`))
	if err != nil {
		t.Fatal(err)
	}

	o := NewObjective(NewParamVector(), 12, []int64{1, 2}, base, 0.1)
	cost := o.Evaluate([]float64{1.5, 0.5})
	if cost == failedCost {
		t.Fatal("evaluation produced no usable windows")
	}
	if last := o.Last(); last.Published == 0 || last.Contrast < 0 {
		t.Errorf("unexpected score %+v", last)
	}
	if base.Derived.Bandwidth != 1.5 || base.Physics.Turbulence != 0.8 {
		t.Error("Evaluate mutated the base config")
	}
}
