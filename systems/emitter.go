// Package systems contains ECS systems for the particle simulation.
package systems

import (
	"math/rand"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/tubedensity/components"
)

// EmitterConfig describes a square emitter plane facing +X.
type EmitterConfig struct {
	Count        int     // Total particles (N)
	Rate         int     // Births per frame until Count is reached (0 = all at once)
	Lifetime     int32   // Frames before a particle is re-emitted
	PlaneX       float64 // Plane position along the tube axis
	HalfSize     float64 // Half the side length of the plane
	NormalFactor float64 // Initial speed along +X
	Jitter       float64 // Random initial velocity half-width
}

// EmitterSystem spawns exactly Count particles and re-emits expired ones
// in their existing slot, so the particle count never exceeds Count and
// indices stay stable once born.
type EmitterSystem struct {
	cfg    EmitterConfig
	rng    *rand.Rand
	mapper *ecs.Map3[components.Position, components.Velocity, components.Particle]
	filter *ecs.Filter3[components.Position, components.Velocity, components.Particle]
	born   int
}

// NewEmitterSystem creates a new emitter system.
func NewEmitterSystem(w *ecs.World, cfg EmitterConfig, rng *rand.Rand) *EmitterSystem {
	if cfg.Lifetime < 1 {
		cfg.Lifetime = 1
	}
	return &EmitterSystem{
		cfg:    cfg,
		rng:    rng,
		mapper: ecs.NewMap3[components.Position, components.Velocity, components.Particle](w),
		filter: ecs.NewFilter3[components.Position, components.Velocity, components.Particle](w),
	}
}

// Update re-emits expired particles, then spawns this frame's births.
func (s *EmitterSystem) Update() {
	query := s.filter.Query()
	for query.Next() {
		pos, vel, p := query.Get()
		if p.Age < p.Lifetime {
			continue
		}
		s.emit(pos, vel)
		p.Age = 0
		p.Emitted++
	}

	births := s.cfg.Count - s.born
	if s.cfg.Rate > 0 && births > s.cfg.Rate {
		births = s.cfg.Rate
	}
	for i := 0; i < births; i++ {
		var pos components.Position
		var vel components.Velocity
		s.emit(&pos, &vel)
		p := components.Particle{
			Index:    s.born,
			Lifetime: s.cfg.Lifetime,
			Emitted:  1,
		}
		s.mapper.NewEntity(&pos, &vel, &p)
		s.born++
	}
}

// emit places a particle on the plane with its initial velocity.
func (s *EmitterSystem) emit(pos *components.Position, vel *components.Velocity) {
	h := s.cfg.HalfSize
	pos.Set(r3.Vec{
		X: s.cfg.PlaneX,
		Y: (s.rng.Float64()*2 - 1) * h,
		Z: (s.rng.Float64()*2 - 1) * h,
	})
	j := s.cfg.Jitter
	vel.Set(r3.Vec{
		X: s.cfg.NormalFactor + (s.rng.Float64()*2-1)*j,
		Y: (s.rng.Float64()*2 - 1) * j,
		Z: (s.rng.Float64()*2 - 1) * j,
	})
}

// Born returns how many particles exist.
func (s *EmitterSystem) Born() int {
	return s.born
}

// Count returns the configured particle count N.
func (s *EmitterSystem) Count() int {
	return s.cfg.Count
}

// Ready reports whether every particle has been born.
func (s *EmitterSystem) Ready() bool {
	return s.born >= s.cfg.Count
}
