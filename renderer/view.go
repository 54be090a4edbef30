// Package renderer draws the tube and its particles with raylib.
package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/tubedensity/camera"
)

// View wraps a raylib 3D camera driven by an orbit camera.
type View struct {
	orbit *camera.Orbit
	cam   rl.Camera3D
}

// NewView creates a perspective view for orbit.
func NewView(orbit *camera.Orbit) *View {
	return &View{
		orbit: orbit,
		cam: rl.Camera3D{
			Up:         rl.NewVector3(0, 1, 0),
			Fovy:       39.6, // 50mm lens on a 36mm sensor, vertical
			Projection: rl.CameraPerspective,
		},
	}
}

// Begin syncs the raylib camera with the orbit and enters 3D mode.
func (v *View) Begin() {
	pos := v.orbit.Position()
	v.cam.Position = rl.NewVector3(float32(pos.X), float32(pos.Y), float32(pos.Z))
	t := v.orbit.Target
	v.cam.Target = rl.NewVector3(float32(t.X), float32(t.Y), float32(t.Z))
	rl.BeginMode3D(v.cam)
}

// End leaves 3D mode.
func (v *View) End() {
	rl.EndMode3D()
}

// Orbit returns the orbit camera.
func (v *View) Orbit() *camera.Orbit {
	return v.orbit
}
