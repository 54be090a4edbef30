// Package scene assembles the tube, the particle simulation and the density
// driver into one runnable unit.
package scene

import (
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/tubedensity/components"
	"github.com/pthm-cable/tubedensity/config"
	"github.com/pthm-cable/tubedensity/density"
	"github.com/pthm-cable/tubedensity/frame"
	"github.com/pthm-cable/tubedensity/geom"
	"github.com/pthm-cable/tubedensity/shading"
	"github.com/pthm-cable/tubedensity/systems"
	"github.com/pthm-cable/tubedensity/telemetry"
)

// AttributeName is the per-vertex attribute the material reads.
const AttributeName = "density"

// Options configures scene creation.
type Options struct {
	Seed          int64
	LogStats      bool
	OutputDir     string
	StatsCallback func(telemetry.WindowStats) // Called on each stats flush (optional)
}

// Scene holds the complete simulation state.
type Scene struct {
	cfg   *config.Config
	world *ecs.World
	rng   *rand.Rand

	emitter *systems.EmitterSystem
	physics *systems.PhysicsSystem

	particles *systems.ParticleSource
	mesh      *systems.MeshSource
	attr      *shading.Attribute
	evaluator *density.Evaluator
	driver    *frame.Driver
	remap     geom.Remap

	// Render-side particle query
	posFilter *ecs.Filter2[components.Position, components.Particle]

	// Telemetry
	collector     *telemetry.Collector
	perfCollector *telemetry.PerfCollector
	bookmarks     *telemetry.BookmarkDetector
	outputManager *telemetry.OutputManager
	logStats      bool
	statsCallback func(telemetry.WindowStats)

	frame     int
	bandwidth float64
	last      frame.Outcome
}

// New creates a scene from cfg.
func New(cfg *config.Config, opts Options) (*Scene, error) {
	remap, err := geom.ParseRemap(cfg.Frame.Remap)
	if err != nil {
		return nil, err
	}

	// Mesh lives in its local frame; the driver remaps it each frame
	mesh, err := geom.SubdividedCylinderWall(
		cfg.Cylinder.Radius, cfg.Cylinder.Height,
		cfg.Cylinder.Segments, cfg.Cylinder.Rings, cfg.Cylinder.Subdivision,
	)
	if err != nil {
		return nil, fmt.Errorf("building cylinder: %w", err)
	}

	kernel, err := density.NewKernel(cfg.Kernel.Type, cfg.Derived.Bandwidth, cfg.Kernel.Rate)
	if err != nil {
		return nil, err
	}

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	if err := om.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config snapshot", "error", err)
	}

	world := ecs.NewWorld()
	rng := rand.New(rand.NewSource(opts.Seed))

	s := &Scene{
		cfg:           cfg,
		world:         world,
		rng:           rng,
		remap:         remap,
		mesh:          systems.NewMeshSource(mesh),
		attr:          shading.NewAttribute(AttributeName, mesh.VertexCount()),
		posFilter:     ecs.NewFilter2[components.Position, components.Particle](world),
		collector:     telemetry.NewCollector(cfg.Telemetry.StatsWindow, cfg.Physics.DT),
		perfCollector: telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		bookmarks:     telemetry.NewBookmarkDetector(10),
		outputManager: om,
		logStats:      opts.LogStats,
		statsCallback: opts.StatsCallback,
		bandwidth:     cfg.Derived.Bandwidth,
	}

	s.emitter = systems.NewEmitterSystem(world, systems.EmitterConfig{
		Count:        cfg.Particles.Count,
		Rate:         cfg.Particles.EmitRate,
		Lifetime:     int32(cfg.Particles.Lifetime),
		PlaneX:       cfg.Derived.EmitterX,
		HalfSize:     cfg.Cylinder.Radius,
		NormalFactor: cfg.Particles.NormalFactor,
		Jitter:       cfg.Physics.Jitter,
	}, rng)

	turb := systems.NewTurbulence(opts.Seed, cfg.Physics.Turbulence, cfg.Physics.TurbulenceScale, cfg.Physics.TurbulenceSpeed)
	s.physics = systems.NewPhysicsSystem(world, systems.Tube{
		Radius: cfg.Cylinder.Radius,
		Length: cfg.Cylinder.Height,
		WrapX:  cfg.Derived.EmitterX,
	}, systems.PhysicsConfig{
		DT:          cfg.Physics.DT,
		Wind:        r3.Vec{X: cfg.Physics.Wind.X, Y: cfg.Physics.Wind.Y, Z: cfg.Physics.Wind.Z},
		Speed:       cfg.Physics.Speed,
		Jitter:      cfg.Physics.Jitter,
		Drag:        cfg.Physics.Drag,
		Restitution: cfg.Physics.Restitution,
	}, turb, rng)

	s.particles = systems.NewParticleSource(world, s.emitter)
	s.evaluator = density.NewEvaluator(kernel, density.Options{
		Threshold: cfg.Parallel.Threshold,
		Workers:   cfg.Parallel.Workers,
	})
	s.driver = frame.NewDriver(frame.Config{
		Particles: s.particles,
		Vertices:  s.mesh,
		Sink:      s.attr,
		Remap:     remap,
		Count:     cfg.Particles.Count,
		Evaluator: s.evaluator,
		Perf:      s.perfCollector,
	})

	slog.Info("scene created",
		"particles", cfg.Particles.Count,
		"vertices", mesh.VertexCount(),
		"kernel", cfg.Kernel.Type,
		"bandwidth", s.bandwidth,
		"remap", remap.String(),
	)

	return s, nil
}

// Update advances the simulation by one frame and refreshes the density
// attribute. A returned error means the loop must stop.
func (s *Scene) Update() error {
	s.perfCollector.StartStep()
	s.frame++

	s.perfCollector.StartPhase(telemetry.PhaseSimulate)
	s.emitter.Update()
	s.physics.Update()

	out, err := s.driver.Step(s.frame)
	if err != nil {
		s.perfCollector.EndStep()
		return err
	}
	s.last = out

	s.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	if out.Published {
		s.collector.RecordPublished(out.Result)
	} else {
		s.collector.RecordSkipped()
	}
	s.flushTelemetry()

	s.perfCollector.EndStep()
	return nil
}

// flushTelemetry checks if the stats window should be flushed.
func (s *Scene) flushTelemetry() {
	frameNum := int32(s.frame)
	if !s.collector.ShouldFlush(frameNum) {
		return
	}

	stats := s.collector.Flush(frameNum, s.driver.Field(), s.bandwidth)
	perfStats := s.perfCollector.Stats()

	if s.statsCallback != nil {
		s.statsCallback(stats)
	}

	if s.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if err := s.outputManager.WriteStats(stats); err != nil {
		slog.Error("failed to write stats", "error", err)
	}
	if err := s.outputManager.WritePerf(perfStats, stats.WindowEndFrame); err != nil {
		slog.Error("failed to write perf", "error", err)
	}

	marks := s.bookmarks.Check(stats)
	for _, b := range marks {
		b.LogBookmark()
	}
	if err := s.outputManager.WriteBookmarks(marks); err != nil {
		slog.Error("failed to write bookmarks", "error", err)
	}
}

// Frame returns the number of frames run so far.
func (s *Scene) Frame() int {
	return s.frame
}

// LastOutcome returns what happened in the most recent frame.
func (s *Scene) LastOutcome() frame.Outcome {
	return s.last
}

// Density returns the published density attribute.
func (s *Scene) Density() *shading.Attribute {
	return s.attr
}

// Mesh returns the tube mesh in its local frame.
func (s *Scene) Mesh() *geom.Mesh {
	return s.mesh.Mesh()
}

// WorldVertices returns the tube vertices in the particle frame, as used by
// the last evaluated frame. Before the first evaluation it is computed from
// the local mesh.
func (s *Scene) WorldVertices() []r3.Vec {
	if v := s.driver.WorldVertices(); len(v) > 0 {
		return v
	}
	return s.remap.ApplyAll(nil, s.Mesh().Vertices)
}

// Remap returns the mesh-to-particle coordinate remap.
func (s *Scene) Remap() geom.Remap {
	return s.remap
}

// Particles appends the current particle positions to dst.
// Unlike the density sampler it also returns partially emitted sets.
func (s *Scene) Particles(dst []r3.Vec) []r3.Vec {
	dst = dst[:0]
	query := s.posFilter.Query()
	for query.Next() {
		pos, _ := query.Get()
		dst = append(dst, pos.Vec())
	}
	return dst
}

// Ready reports whether all particles have been emitted.
func (s *Scene) Ready() bool {
	return s.emitter.Ready()
}

// Bandwidth returns the current Gaussian bandwidth.
func (s *Scene) Bandwidth() float64 {
	return s.bandwidth
}

// SetBandwidth switches to a Gaussian kernel with bandwidth h from the next
// frame on. Non-positive values are ignored.
func (s *Scene) SetBandwidth(h float64) {
	if h <= 0 || h == s.bandwidth {
		return
	}
	s.bandwidth = h
	s.driver.SetKernel(density.Gaussian{H: h})
}

// Perf returns the performance collector.
func (s *Scene) Perf() *telemetry.PerfCollector {
	return s.perfCollector
}

// DetachParticles simulates deleting the particle emitter from the scene.
func (s *Scene) DetachParticles() {
	s.particles.Detach()
}

// DetachMesh simulates deleting the tube object from the scene.
func (s *Scene) DetachMesh() {
	s.mesh.Detach()
}

// Unload stops the workers and closes output files.
func (s *Scene) Unload() {
	s.evaluator.Close()
	if err := s.outputManager.Close(); err != nil {
		slog.Error("failed to close output", "error", err)
	}
}
