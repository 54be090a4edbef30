package main

import (
	"sync"

	"github.com/pthm-cable/tubedensity/config"
	"github.com/pthm-cable/tubedensity/scene"
	"github.com/pthm-cable/tubedensity/telemetry"
)

// Objective runs headless scenes and scores the resulting density fields.
type Objective struct {
	params    *ParamVector
	frames    int
	seeds     []int64
	base      *config.Config
	targetHot float64 // Desired fraction of vertices at density >= telemetry.HotThreshold

	mu   sync.Mutex
	last Score
}

// Score is the per-evaluation breakdown, averaged over seeds.
type Score struct {
	Cost        float64
	HotFraction float64
	Contrast    float64 // Mean density standard deviation across vertices
	Published   int
}

// warmupWindows are ignored while the emitter fills the tube.
const warmupWindows = 1

// contrastWeight trades hot-fraction accuracy against field contrast.
const contrastWeight = 0.5

// NewObjective creates a new objective.
func NewObjective(params *ParamVector, frames int, seeds []int64, base *config.Config, targetHot float64) *Objective {
	return &Objective{
		params:    params,
		frames:    frames,
		seeds:     seeds,
		base:      base,
		targetHot: targetHot,
	}
}

// Last returns the score of the most recent Evaluate call.
func (o *Objective) Last() Score {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.last
}

// Evaluate scores a raw parameter vector (lower = better). All seeds run in
// parallel.
func (o *Objective) Evaluate(x []float64) float64 {
	results := make([]Score, len(o.seeds))
	var wg sync.WaitGroup

	for i, seed := range o.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			results[idx] = o.score(o.run(x, s))
		}(i, seed)
	}
	wg.Wait()

	var avg Score
	for _, r := range results {
		avg.Cost += r.Cost
		avg.HotFraction += r.HotFraction
		avg.Contrast += r.Contrast
		avg.Published += r.Published
	}
	n := float64(len(results))
	if n > 0 {
		avg.Cost /= n
		avg.HotFraction /= n
		avg.Contrast /= n
	}

	o.mu.Lock()
	o.last = avg
	o.mu.Unlock()

	return avg.Cost
}

// run executes a single headless scene and returns its stats windows.
func (o *Objective) run(x []float64, seed int64) []telemetry.WindowStats {
	cfg := *o.base
	if err := o.params.ApplyToConfig(&cfg, x); err != nil {
		return nil
	}

	var windows []telemetry.WindowStats
	s, err := scene.New(&cfg, scene.Options{
		Seed: seed,
		StatsCallback: func(ws telemetry.WindowStats) {
			windows = append(windows, ws)
		},
	})
	if err != nil {
		return nil
	}
	defer s.Unload()

	for s.Frame() < o.frames {
		if err := s.Update(); err != nil {
			break
		}
	}
	return windows
}

// failedCost is returned for runs that never publish a usable field.
const failedCost = 1e6

// score reduces stats windows to a cost.
func (o *Objective) score(windows []telemetry.WindowStats) Score {
	if len(windows) <= warmupWindows {
		return Score{Cost: failedCost}
	}

	var sc Score
	var n int
	for _, w := range windows[warmupWindows:] {
		if w.FramesPublished == 0 || w.FramesDegenerate == w.FramesPublished {
			continue
		}
		sc.HotFraction += w.HotFraction
		sc.Contrast += w.DensityStd
		sc.Published += w.FramesPublished
		n++
	}
	if n == 0 {
		return Score{Cost: failedCost}
	}
	sc.HotFraction /= float64(n)
	sc.Contrast /= float64(n)

	miss := sc.HotFraction - o.targetHot
	if o.targetHot > 0 {
		miss /= o.targetHot
	}
	sc.Cost = miss*miss - contrastWeight*sc.Contrast
	return sc
}
