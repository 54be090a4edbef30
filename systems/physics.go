package systems

import (
	"math"
	"math/rand"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/tubedensity/components"
)

// Tube is the collision volume: an open cylinder along the world X axis.
type Tube struct {
	Radius float64
	Length float64
	WrapX  float64 // Particles past +Length/2 reappear here
}

// PhysicsConfig holds particle motion parameters.
type PhysicsConfig struct {
	DT          float64
	Wind        r3.Vec
	Speed       float64
	Jitter      float64
	Drag        float64
	Restitution float64
}

// PhysicsSystem advances particle positions one frame at a time.
type PhysicsSystem struct {
	filter     ecs.Filter3[components.Position, components.Velocity, components.Particle]
	tube       Tube
	cfg        PhysicsConfig
	turbulence *Turbulence
	rng        *rand.Rand
	time       float64
}

// NewPhysicsSystem creates a new physics system.
func NewPhysicsSystem(w *ecs.World, tube Tube, cfg PhysicsConfig, turb *Turbulence, rng *rand.Rand) *PhysicsSystem {
	return &PhysicsSystem{
		filter:     *ecs.NewFilter3[components.Position, components.Velocity, components.Particle](w),
		tube:       tube,
		cfg:        cfg,
		turbulence: turb,
		rng:        rng,
	}
}

// Update runs the physics system.
func (s *PhysicsSystem) Update() {
	dt := s.cfg.DT
	wind := r3.Scale(s.cfg.Speed, s.cfg.Wind)
	damping := math.Max(0, 1-s.cfg.Drag*dt)

	query := s.filter.Query()
	for query.Next() {
		pos, vel, p := query.Get()

		x := pos.Vec()
		v := vel.Vec()

		acc := wind
		if j := s.cfg.Jitter; j > 0 {
			acc = r3.Add(acc, r3.Vec{
				X: (s.rng.Float64()*2 - 1) * j,
				Y: (s.rng.Float64()*2 - 1) * j,
				Z: (s.rng.Float64()*2 - 1) * j,
			})
		}
		acc = r3.Add(acc, s.turbulence.At(x, s.time))

		v = r3.Scale(damping, r3.Add(v, r3.Scale(dt, acc)))
		x = r3.Add(x, r3.Scale(dt, v))

		x, v = s.tube.collide(x, v, s.cfg.Restitution)

		pos.Set(x)
		vel.Set(v)
		p.Age++
	}

	s.time += dt
}

// Time returns the simulated time in seconds.
func (s *PhysicsSystem) Time() float64 {
	return s.time
}

// collide keeps a particle inside the tube wall while it is within the
// tube's length and wraps it to the near end once it leaves the far end.
func (t Tube) collide(x, v r3.Vec, restitution float64) (r3.Vec, r3.Vec) {
	half := t.Length / 2

	if x.X > half {
		x.X = t.WrapX
		return x, v
	}

	if x.X < -half {
		return x, v
	}

	r := math.Hypot(x.Y, x.Z)
	if r <= t.Radius || r == 0 {
		return x, v
	}

	// Outward unit normal in the YZ plane
	ny, nz := x.Y/r, x.Z/r
	x.Y = ny * t.Radius
	x.Z = nz * t.Radius

	radial := v.Y*ny + v.Z*nz
	if radial > 0 {
		v.Y -= (1 + restitution) * radial * ny
		v.Z -= (1 + restitution) * radial * nz
	}
	return x, v
}
