package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r3"
)

// ParticleRenderer renders the simulated particles.
type ParticleRenderer struct {
	Color  rl.Color
	Radius float32 // 0 draws points instead of spheres
}

// NewParticleRenderer creates a new particle renderer.
func NewParticleRenderer() *ParticleRenderer {
	return &ParticleRenderer{
		Color:  rl.Color{R: 255, G: 230, B: 120, A: 200},
		Radius: 0.05,
	}
}

// Draw renders all particles. Must be called between BeginMode3D and EndMode3D.
func (r *ParticleRenderer) Draw(particles []r3.Vec) {
	for _, p := range particles {
		v := toVector3(p)
		if r.Radius <= 0 {
			rl.DrawPoint3D(v, r.Color)
			continue
		}
		rl.DrawSphereEx(v, r.Radius, 4, 4, r.Color)
	}
}

// DrawEmitter outlines the square emitter plane at x = planeX, facing +X.
func (r *ParticleRenderer) DrawEmitter(planeX, halfSize float64) {
	corners := [4]r3.Vec{
		{X: planeX, Y: -halfSize, Z: -halfSize},
		{X: planeX, Y: halfSize, Z: -halfSize},
		{X: planeX, Y: halfSize, Z: halfSize},
		{X: planeX, Y: -halfSize, Z: halfSize},
	}
	col := rl.Color{R: 200, G: 200, B: 200, A: 120}
	for i := range corners {
		rl.DrawLine3D(toVector3(corners[i]), toVector3(corners[(i+1)%4]), col)
	}
}
