package density

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// defaultParallelThreshold is the minimum vertex count to use the worker pool.
// Below this, single-threaded is faster due to goroutine overhead.
const defaultParallelThreshold = 64

// Options configures an Evaluator.
type Options struct {
	// Threshold is the vertex count at which evaluation moves to the worker
	// pool. Zero uses the default; a negative value disables the pool.
	Threshold int
	// Workers is the pool size. Zero uses GOMAXPROCS.
	Workers int
}

// Result summarises one evaluation.
type Result struct {
	Particles int
	Vertices  int
	RawMin    float64
	RawMax    float64
	Parallel  bool
}

// Degenerate reports whether normalization was skipped because every raw sum was zero.
func (r Result) Degenerate() bool {
	return r.Vertices > 0 && r.RawMax == 0
}

// Evaluator computes density fields. It holds no frame-to-frame state apart
// from its worker pool; every call is an independent computation.
// Evaluate must not be called concurrently with itself or SetKernel.
type Evaluator struct {
	kernel    Kernel
	inv2h2    float64 // set when kernel is Gaussian
	gaussian  bool
	threshold int
	pool      *workerPool
}

// NewEvaluator creates an evaluator for kernel k.
func NewEvaluator(k Kernel, opts Options) *Evaluator {
	threshold := opts.Threshold
	if threshold == 0 {
		threshold = defaultParallelThreshold
	}
	e := &Evaluator{
		threshold: threshold,
		pool:      newWorkerPool(opts.Workers),
	}
	e.SetKernel(k)
	return e
}

// SetKernel swaps the kernel used by subsequent evaluations.
func (e *Evaluator) SetKernel(k Kernel) {
	e.kernel = k
	if g, ok := k.(Gaussian); ok {
		e.gaussian = true
		e.inv2h2 = 1 / (2 * g.H * g.H)
	} else {
		e.gaussian = false
		e.inv2h2 = 0
	}
}

// Kernel returns the current kernel.
func (e *Evaluator) Kernel() Kernel {
	return e.kernel
}

// Evaluate writes the normalized density of every vertex into dst (grown as
// needed) and returns it.
//
// Pass one accumulates the raw kernel sum per vertex and the maximum; pass
// two divides by that maximum. When every raw sum is zero (no particles, or
// all of them out of reach) the field is all zeros.
func (e *Evaluator) Evaluate(particles ParticleSet, vertices []r3.Vec, dst DensityField) (DensityField, Result) {
	m := len(vertices)
	if cap(dst) < m {
		dst = make(DensityField, m)
	}
	dst = dst[:m]

	res := Result{Particles: len(particles), Vertices: m}
	if m == 0 {
		return dst, res
	}

	// Pass one: raw sums
	if e.threshold > 0 && m >= e.threshold && e.pool.numWorkers > 1 {
		res.RawMin, res.RawMax = e.pool.run(e, particles, vertices, dst)
		res.Parallel = true
	} else {
		res.RawMin, res.RawMax = e.computeChunk(particles, vertices, dst, 0, m)
	}

	// Pass two: normalize
	normalize(dst, res.RawMax)
	return dst, res
}

// Close stops the worker pool. The evaluator must not be used afterwards.
func (e *Evaluator) Close() {
	e.pool.stop()
}

// computeChunk fills dst[i0:i1] with raw sums and returns their min and max.
func (e *Evaluator) computeChunk(particles ParticleSet, vertices []r3.Vec, dst DensityField, i0, i1 int) (lo, hi float64) {
	lo = math.Inf(1)
	for i := i0; i < i1; i++ {
		var raw float64
		if e.gaussian {
			raw = gaussianRaw(e.inv2h2, vertices[i], particles)
		} else {
			raw = RawDensity(e.kernel, vertices[i], particles)
		}
		dst[i] = raw
		if raw > hi {
			hi = raw
		}
		if raw < lo {
			lo = raw
		}
	}
	return lo, hi
}

// normalize divides every value by peak, or zeroes the field if peak is zero.
// Division (rather than scaling by 1/peak) keeps the maximum at exactly 1.
func normalize(field DensityField, peak float64) {
	if peak <= 0 || math.IsNaN(peak) {
		for i := range field {
			field[i] = 0
		}
		return
	}
	for i := range field {
		field[i] /= peak
	}
}

// Evaluate is a single-threaded convenience wrapper around Evaluator.
func Evaluate(k Kernel, particles ParticleSet, vertices []r3.Vec) DensityField {
	e := &Evaluator{threshold: -1, pool: &workerPool{numWorkers: 1}}
	e.SetKernel(k)
	field, _ := e.Evaluate(particles, vertices, nil)
	return field
}
