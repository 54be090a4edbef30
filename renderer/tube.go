package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/tubedensity/camera"
	"github.com/pthm-cable/tubedensity/geom"
	"github.com/pthm-cable/tubedensity/shading"
)

// TubeRenderer draws the tube wall colored by the density attribute.
type TubeRenderer struct {
	ramp     shading.ColorRamp
	mapping  shading.MapRange
	values   []float64
	colors   []rl.Color
	points   []rl.Vector3
	wireCol  rl.Color
	showWire bool
}

// NewTubeRenderer creates a tube renderer using the density ramp.
func NewTubeRenderer() *TubeRenderer {
	return &TubeRenderer{
		ramp:    shading.DensityRamp,
		mapping: shading.UnitRange,
		wireCol: rl.Color{R: 255, G: 255, B: 255, A: 40},
	}
}

// SetWireframe toggles the triangle outline overlay.
func (r *TubeRenderer) SetWireframe(on bool) {
	r.showWire = on
}

// Wireframe reports whether the outline overlay is drawn.
func (r *TubeRenderer) Wireframe() bool {
	return r.showWire
}

// Draw renders the wall triangles. world holds the vertices in the particle
// frame; attr supplies one density value per vertex. Must be called between
// BeginMode3D and EndMode3D.
func (r *TubeRenderer) Draw(mesh *geom.Mesh, world []r3.Vec, attr *shading.Attribute) {
	if mesh == nil || len(world) != len(mesh.Vertices) {
		return
	}

	r.values = attr.Snapshot(r.values)
	if cap(r.colors) < len(world) {
		r.colors = make([]rl.Color, len(world))
		r.points = make([]rl.Vector3, len(world))
	}
	r.colors = r.colors[:len(world)]
	r.points = r.points[:len(world)]

	for i, v := range world {
		r.points[i] = toVector3(v)
		d := 0.0
		if i < len(r.values) {
			d = r.values[i]
		}
		r.colors[i] = rl.Color(r.ramp.Shade(r.mapping, d))
	}

	// Both faces are visible from inside the open tube
	rl.DisableBackfaceCulling()
	for _, tri := range mesh.Triangles {
		a, b, c := tri[0], tri[1], tri[2]
		rl.DrawTriangle3D(r.points[a], r.points[b], r.points[c], averageColor(r.colors[a], r.colors[b], r.colors[c]))
	}
	rl.EnableBackfaceCulling()

	if r.showWire {
		for _, tri := range mesh.Triangles {
			a, b, c := r.points[tri[0]], r.points[tri[1]], r.points[tri[2]]
			rl.DrawLine3D(a, b, r.wireCol)
			rl.DrawLine3D(b, c, r.wireCol)
			rl.DrawLine3D(c, a, r.wireCol)
		}
	}
}

// averageColor blends three vertex colors into a flat face color.
func averageColor(a, b, c rl.Color) rl.Color {
	return rl.Color{
		R: uint8((uint16(a.R) + uint16(b.R) + uint16(c.R)) / 3),
		G: uint8((uint16(a.G) + uint16(b.G) + uint16(c.G)) / 3),
		B: uint8((uint16(a.B) + uint16(b.B) + uint16(c.B)) / 3),
		A: uint8((uint16(a.A) + uint16(b.A) + uint16(c.A)) / 3),
	}
}

// toVector3 converts a scene point to raylib's Y-up frame.
func toVector3(p r3.Vec) rl.Vector3 {
	q := camera.ZUpToYUp(p)
	return rl.NewVector3(float32(q.X), float32(q.Y), float32(q.Z))
}
