package density

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
)

const tol = 1e-12

func randomCloud(rng *rand.Rand, n int, scale float64) []r3.Vec {
	pts := make([]r3.Vec, n)
	for i := range pts {
		pts[i] = r3.Vec{
			X: (rng.Float64()*2 - 1) * scale,
			Y: (rng.Float64()*2 - 1) * scale,
			Z: (rng.Float64()*2 - 1) * scale,
		}
	}
	return pts
}

func TestSingleParticleScenario(t *testing.T) {
	k := Gaussian{H: 1.5}
	particles := ParticleSet{{}}
	vertex := r3.Vec{X: 3}

	raw := RawDensity(k, vertex, particles)
	if math.Abs(raw-math.Exp(-2)) > tol {
		t.Errorf("raw = %g, want exp(-2) = %g", raw, math.Exp(-2))
	}

	field := Evaluate(k, particles, []r3.Vec{vertex})
	if len(field) != 1 || field[0] != 1.0 {
		t.Errorf("single vertex field = %v, want [1]", field)
	}
}

func TestTwoParticleOrdering(t *testing.T) {
	k := Gaussian{H: 1.5}
	particles := ParticleSet{{}, {Z: 10}}
	vertices := []r3.Vec{{}, {Z: 5}}

	rawOrigin := RawDensity(k, vertices[0], particles)
	rawMid := RawDensity(k, vertices[1], particles)
	if rawOrigin <= rawMid {
		t.Fatalf("expected origin raw %g > midpoint raw %g", rawOrigin, rawMid)
	}

	field := Evaluate(k, particles, vertices)
	if field[0] != 1.0 {
		t.Errorf("origin vertex should hold the maximum, got %g", field[0])
	}
	if field[1] >= field[0] {
		t.Errorf("ordering lost after normalization: %v", field)
	}
	if want := rawMid / rawOrigin; math.Abs(field[1]-want) > tol {
		t.Errorf("midpoint = %g, want %g", field[1], want)
	}
}

func TestFieldBoundsAndPeak(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	k := Gaussian{H: 1.5}

	for trial := 0; trial < 20; trial++ {
		n := 1 + rng.Intn(200)
		m := 1 + rng.Intn(100)
		particles := ParticleSet(randomCloud(rng, n, 5))
		vertices := randomCloud(rng, m, 5)

		field := Evaluate(k, particles, vertices)
		if len(field) != m {
			t.Fatalf("trial %d: got %d values, want %d", trial, len(field), m)
		}

		peaks := 0
		for i, v := range field {
			if v < 0 || v > 1 || math.IsNaN(v) {
				t.Fatalf("trial %d: value %d = %g outside [0,1]", trial, i, v)
			}
			if v == 1.0 {
				peaks++
			}
		}
		if peaks == 0 {
			t.Errorf("trial %d: no vertex reached exactly 1.0 (max %g)", trial, floats.Max(field))
		}
	}
}

func TestNoParticlesGivesZeroField(t *testing.T) {
	vertices := []r3.Vec{{X: 1}, {Y: 2}, {Z: 3}}
	field := Evaluate(Gaussian{H: 1.5}, nil, vertices)

	if len(field) != 3 {
		t.Fatalf("expected 3 values, got %d", len(field))
	}
	for i, v := range field {
		if v != 0 {
			t.Errorf("value %d = %g, want 0", i, v)
		}
	}
}

func TestOutOfReachParticlesGiveZeroField(t *testing.T) {
	// exp underflows to exactly zero this far away
	particles := ParticleSet{{X: 1e6}}
	vertices := []r3.Vec{{}, {X: 1}}

	e := NewEvaluator(Gaussian{H: 0.5}, Options{Threshold: -1})
	defer e.Close()

	field, res := e.Evaluate(particles, vertices, nil)
	if !res.Degenerate() {
		t.Errorf("expected degenerate result, raw max %g", res.RawMax)
	}
	for i, v := range field {
		if v != 0 || math.IsNaN(v) {
			t.Errorf("value %d = %g, want 0", i, v)
		}
	}
}

func TestEmptyMeshGivesEmptyField(t *testing.T) {
	field := Evaluate(Gaussian{H: 1}, ParticleSet{{}}, nil)
	if len(field) != 0 {
		t.Errorf("expected empty field, got %v", field)
	}
}

func TestMonotonicInDistance(t *testing.T) {
	for _, k := range []Kernel{Gaussian{H: 1.5}, Exponential{Rate: 2}} {
		vertex := r3.Vec{}
		others := ParticleSet{{X: 1, Y: 1}, {Z: -2}}

		prev := math.Inf(1)
		for d := 0.0; d <= 10; d += 0.25 {
			particles := append(ParticleSet{{X: d}}, others...)
			raw := RawDensity(k, vertex, particles)
			if raw > prev {
				t.Errorf("%T: raw density rose from %g to %g at distance %g", k, prev, raw, d)
			}
			prev = raw
		}
	}
}

func TestParticleOrderIndependence(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	particles := ParticleSet(randomCloud(rng, 300, 4))
	vertices := randomCloud(rng, 80, 4)
	k := Gaussian{H: 1.5}

	before := Evaluate(k, particles, vertices)

	swapped := append(ParticleSet(nil), particles...)
	swapped[3], swapped[250] = swapped[250], swapped[3]
	after := Evaluate(k, swapped, vertices)

	for i := range before {
		if math.Abs(before[i]-after[i]) > 1e-12 {
			t.Errorf("vertex %d: %g vs %g after swapping particles", i, before[i], after[i])
		}
	}
}

func TestDeterministic(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	particles := ParticleSet(randomCloud(rng, 500, 4))
	vertices := randomCloud(rng, 200, 4)
	k := Gaussian{H: 1.2}

	a := Evaluate(k, particles, vertices)
	b := Evaluate(k, particles, vertices)
	if !floats.Equal(a, b) {
		t.Error("repeated evaluation differs")
	}
}

func TestParallelMatchesSequential(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	particles := ParticleSet(randomCloud(rng, 1000, 5))
	vertices := randomCloud(rng, 640, 5)
	k := Gaussian{H: 1.5}

	seq := NewEvaluator(k, Options{Threshold: -1})
	defer seq.Close()
	par := NewEvaluator(k, Options{Threshold: 1, Workers: 4})
	defer par.Close()

	want, wantRes := seq.Evaluate(particles, vertices, nil)

	var got DensityField
	var gotRes Result
	// Reuse the output buffer across frames like the driver does
	for frame := 0; frame < 3; frame++ {
		got, gotRes = par.Evaluate(particles, vertices, got)
	}

	if !gotRes.Parallel {
		t.Error("expected parallel evaluation")
	}
	if wantRes.Parallel {
		t.Error("expected sequential evaluation")
	}
	if gotRes.RawMax != wantRes.RawMax || gotRes.RawMin != wantRes.RawMin {
		t.Errorf("raw range differs: parallel [%g, %g], sequential [%g, %g]",
			gotRes.RawMin, gotRes.RawMax, wantRes.RawMin, wantRes.RawMax)
	}
	if !floats.Equal(got, want) {
		t.Error("parallel field differs from sequential field")
	}
}

func TestParallelWithFewerVerticesThanWorkers(t *testing.T) {
	e := NewEvaluator(Gaussian{H: 1}, Options{Threshold: 1, Workers: 8})
	defer e.Close()

	field, res := e.Evaluate(ParticleSet{{}}, []r3.Vec{{X: 1}, {X: 2}, {X: 3}}, nil)
	if res.Vertices != 3 || len(field) != 3 {
		t.Fatalf("expected 3 values, got %d", len(field))
	}
	if field[0] != 1.0 {
		t.Errorf("nearest vertex should be 1.0, got %g", field[0])
	}
	if !(field[0] > field[1] && field[1] > field[2]) {
		t.Errorf("expected decreasing field, got %v", field)
	}
}

func TestGaussianFastPathMatchesRawDensity(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	particles := ParticleSet(randomCloud(rng, 100, 3))
	v := r3.Vec{X: 0.5, Y: -0.25, Z: 1}
	g := Gaussian{H: 0.8}

	slow := RawDensity(g, v, particles)
	fast := gaussianRaw(1/(2*g.H*g.H), v, particles)
	if math.Abs(slow-fast) > 1e-9*slow {
		t.Errorf("fast path %g differs from RawDensity %g", fast, slow)
	}
}

func TestExponentialKernel(t *testing.T) {
	k := Exponential{Rate: 2}
	if got := k.Weight(9); math.Abs(got-math.Exp(-6)) > tol {
		t.Errorf("Weight(9) = %g, want exp(-6)", got)
	}
	if k.Weight(0) != 1 {
		t.Errorf("Weight(0) = %g, want 1", k.Weight(0))
	}
}

func TestSetKernelSwitchesPath(t *testing.T) {
	particles := ParticleSet{{}}
	vertices := []r3.Vec{{X: 1}, {X: 2}}

	e := NewEvaluator(Gaussian{H: 1}, Options{Threshold: -1})
	defer e.Close()
	_, gRes := e.Evaluate(particles, vertices, nil)

	e.SetKernel(Exponential{Rate: 2})
	_, xRes := e.Evaluate(particles, vertices, nil)

	if math.Abs(gRes.RawMax-math.Exp(-0.5)) > tol {
		t.Errorf("gaussian raw max = %g, want exp(-0.5)", gRes.RawMax)
	}
	if math.Abs(xRes.RawMax-math.Exp(-2)) > tol {
		t.Errorf("exponential raw max = %g, want exp(-2)", xRes.RawMax)
	}
}

func TestNewKernel(t *testing.T) {
	k, err := NewKernel("gaussian", 1.5, 0)
	if err != nil || k != (Gaussian{H: 1.5}) {
		t.Errorf("NewKernel gaussian = %v, %v", k, err)
	}
	k, err = NewKernel("exponential", 0, 2)
	if err != nil || k != (Exponential{Rate: 2}) {
		t.Errorf("NewKernel exponential = %v, %v", k, err)
	}
	if _, err := NewKernel("gaussian", 0, 0); err == nil {
		t.Error("expected error for zero bandwidth")
	}
	if _, err := NewKernel("box", 1, 1); err == nil {
		t.Error("expected error for unknown kernel")
	}
}

// fixedSource returns a copy of its points, or err when set.
type fixedSource struct {
	points []r3.Vec
	err    error
	calls  int
}

func (s *fixedSource) Positions(dst []r3.Vec) ([]r3.Vec, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return append(dst, s.points...), nil
}

func TestSamplerExactCount(t *testing.T) {
	src := &fixedSource{points: []r3.Vec{{X: 1}, {Y: 2}, {Z: 3}}}
	s := NewSampler(3)

	set, err := s.Sample(src)
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	if len(set) != 3 || set[1] != (r3.Vec{Y: 2}) {
		t.Errorf("unexpected set %v", set)
	}

	// Sampling must not alias the source's storage
	set[0].X = 99
	if src.points[0].X != 1 {
		t.Error("sampler buffer aliases the source")
	}
}

func TestSamplerRejectsWrongCount(t *testing.T) {
	for _, n := range []int{2, 4} {
		src := &fixedSource{points: make([]r3.Vec, n)}
		s := NewSampler(3)

		set, err := s.Sample(src)
		if set != nil {
			t.Errorf("count %d: expected no set on mismatch", n)
		}
		var sm *ShapeMismatchError
		if !errors.As(err, &sm) {
			t.Fatalf("count %d: expected ShapeMismatchError, got %v", n, err)
		}
		if sm.Want != 3 || sm.Got != n || sm.Input != "particles" {
			t.Errorf("unexpected mismatch details %+v", sm)
		}
		if !errors.Is(err, ErrShapeMismatch) {
			t.Error("mismatch should match ErrShapeMismatch")
		}
		if IsMissingInput(err) {
			t.Error("mismatch must not be treated as missing input")
		}
	}
}

func TestSamplerMissingInput(t *testing.T) {
	s := NewSampler(3)

	_, err := s.Sample(&fixedSource{err: ErrNotReady})
	if !IsMissingInput(err) {
		t.Errorf("expected missing input for not-ready source, got %v", err)
	}

	_, err = s.Sample(nil)
	if !IsMissingInput(err) {
		t.Errorf("expected missing input for nil source, got %v", err)
	}
}

func TestSamplerZeroParticles(t *testing.T) {
	s := NewSampler(0)
	set, err := s.Sample(&fixedSource{})
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	if len(set) != 0 {
		t.Errorf("expected empty set, got %d", len(set))
	}
}

func BenchmarkEvaluateSequential(b *testing.B) {
	rng := rand.New(rand.NewSource(1))
	particles := ParticleSet(randomCloud(rng, 1000, 5))
	vertices := randomCloud(rng, 640, 5)
	e := NewEvaluator(Gaussian{H: 1.5}, Options{Threshold: -1})
	defer e.Close()

	var field DensityField
	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		field, _ = e.Evaluate(particles, vertices, field)
	}
}

func BenchmarkEvaluateParallel(b *testing.B) {
	rng := rand.New(rand.NewSource(1))
	particles := ParticleSet(randomCloud(rng, 1000, 5))
	vertices := randomCloud(rng, 640, 5)
	e := NewEvaluator(Gaussian{H: 1.5}, Options{})
	defer e.Close()

	var field DensityField
	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		field, _ = e.Evaluate(particles, vertices, field)
	}
}
