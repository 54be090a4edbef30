// Package frame runs the per-frame density update: sample particles, read
// and remap vertices, evaluate the field, publish it.
package frame

import (
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/tubedensity/density"
	"github.com/pthm-cable/tubedensity/geom"
	"github.com/pthm-cable/tubedensity/telemetry"
)

// ErrReentrant is returned when Step is called while another Step is running.
var ErrReentrant = errors.New("frame: step already in progress")

// Outcome describes what happened in one Step.
type Outcome struct {
	Frame     int
	Published bool
	Skipped   error // Missing-input reason when the frame was skipped
	Result    density.Result
}

// Driver owns the per-frame buffers and wires the collaborators together.
type Driver struct {
	particles density.ParticleSource
	vertices  density.VertexSource
	sink      density.AttributeSink
	remap     geom.Remap

	sampler   *density.Sampler
	evaluator *density.Evaluator
	perf      *telemetry.PerfCollector

	// Reused storage; never read across frames
	localVerts []r3.Vec
	worldVerts []r3.Vec
	field      density.DensityField

	vertexCount int // M seen on the first evaluated frame, -1 before
	running     atomic.Bool
}

// Config wires a Driver.
type Config struct {
	Particles density.ParticleSource
	Vertices  density.VertexSource
	Sink      density.AttributeSink
	Remap     geom.Remap
	Count     int // N
	Evaluator *density.Evaluator
	Perf      *telemetry.PerfCollector // optional
}

// NewDriver creates a driver.
func NewDriver(cfg Config) *Driver {
	return &Driver{
		particles:   cfg.Particles,
		vertices:    cfg.Vertices,
		sink:        cfg.Sink,
		remap:       cfg.Remap,
		sampler:     density.NewSampler(cfg.Count),
		evaluator:   cfg.Evaluator,
		perf:        cfg.Perf,
		vertexCount: -1,
	}
}

// Step runs one frame. Missing inputs skip the frame and return a nil
// error; shape mismatches are returned and mean the loop must stop.
// The remap is applied exactly once, to a fresh copy of the mesh vertices.
func (d *Driver) Step(frame int) (Outcome, error) {
	if !d.running.CompareAndSwap(false, true) {
		return Outcome{Frame: frame}, ErrReentrant
	}
	defer d.running.Store(false)

	out := Outcome{Frame: frame}

	d.perf.StartPhase(telemetry.PhaseSample)
	if d.vertices == nil {
		return d.skip(out, fmt.Errorf("%w: no surface mesh", density.ErrMissingInput))
	}
	particles, err := d.sampler.Sample(d.particles)
	if err != nil {
		if density.IsMissingInput(err) {
			return d.skip(out, err)
		}
		return out, err
	}

	m := d.vertices.VertexCount()
	d.localVerts, err = d.vertices.VertexPositions(d.localVerts)
	if err != nil {
		if density.IsMissingInput(err) {
			return d.skip(out, err)
		}
		return out, fmt.Errorf("reading vertices: %w", err)
	}
	if len(d.localVerts) != m {
		return out, &density.ShapeMismatchError{Input: "vertices", Want: m, Got: len(d.localVerts)}
	}
	if d.vertexCount >= 0 && m != d.vertexCount {
		return out, &density.ShapeMismatchError{Input: "vertices", Want: d.vertexCount, Got: m}
	}
	d.vertexCount = m

	d.perf.StartPhase(telemetry.PhaseRemap)
	d.worldVerts = d.remap.ApplyAll(d.worldVerts, d.localVerts)

	d.perf.StartPhase(telemetry.PhaseEvaluate)
	d.field, out.Result = d.evaluator.Evaluate(particles, d.worldVerts, d.field)

	d.perf.StartPhase(telemetry.PhasePublish)
	if d.sink != nil {
		if err := d.sink.Publish(d.field); err != nil {
			return out, fmt.Errorf("publishing density: %w", err)
		}
	}
	out.Published = true
	return out, nil
}

func (d *Driver) skip(out Outcome, reason error) (Outcome, error) {
	out.Skipped = reason
	slog.Debug("frame skipped", "frame", out.Frame, "reason", reason)
	return out, nil
}

// Field returns the last evaluated field. It is overwritten by the next Step.
func (d *Driver) Field() density.DensityField {
	return d.field
}

// WorldVertices returns the last remapped vertices.
func (d *Driver) WorldVertices() []r3.Vec {
	return d.worldVerts
}

// SetKernel changes the density kernel for subsequent frames.
func (d *Driver) SetKernel(k density.Kernel) {
	d.evaluator.SetKernel(k)
}

// Kernel returns the current density kernel.
func (d *Driver) Kernel() density.Kernel {
	return d.evaluator.Kernel()
}
