package geom

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Mesh is an indexed triangle surface. Vertex order is fixed once built.
type Mesh struct {
	Vertices  []r3.Vec
	Triangles [][3]int

	// Segments and Rings describe the wall grid: vertex (ring, seg) lives at
	// index ring*Segments + seg.
	Segments int
	Rings    int
	Radius   float64
	Height   float64
}

// CylinderWall builds the side wall of a cylinder centered on the origin
// with its axis along local +Z. The end caps are not generated, so the
// surface is an open tube.
func CylinderWall(radius, height float64, segments, rings int) (*Mesh, error) {
	if radius <= 0 || height <= 0 {
		return nil, fmt.Errorf("cylinder: radius and height must be positive")
	}
	if segments < 3 {
		return nil, fmt.Errorf("cylinder: need at least 3 segments, got %d", segments)
	}
	if rings < 2 {
		return nil, fmt.Errorf("cylinder: need at least 2 rings, got %d", rings)
	}

	m := &Mesh{
		Vertices:  make([]r3.Vec, 0, segments*rings),
		Triangles: make([][3]int, 0, 2*segments*(rings-1)),
		Segments:  segments,
		Rings:     rings,
		Radius:    radius,
		Height:    height,
	}

	for r := 0; r < rings; r++ {
		z := -height/2 + height*float64(r)/float64(rings-1)
		for s := 0; s < segments; s++ {
			theta := 2 * math.Pi * float64(s) / float64(segments)
			m.Vertices = append(m.Vertices, r3.Vec{
				X: radius * math.Cos(theta),
				Y: radius * math.Sin(theta),
				Z: z,
			})
		}
	}

	for r := 0; r < rings-1; r++ {
		for s := 0; s < segments; s++ {
			next := (s + 1) % segments
			a := r*segments + s
			b := r*segments + next
			c := (r+1)*segments + s
			d := (r+1)*segments + next
			m.Triangles = append(m.Triangles, [3]int{a, b, d}, [3]int{a, d, c})
		}
	}

	return m, nil
}

// SubdividedCylinderWall builds a wall whose resolution is doubled levels
// times in both directions. Vertices stay exactly on the cylinder surface.
func SubdividedCylinderWall(radius, height float64, segments, rings, levels int) (*Mesh, error) {
	if levels < 0 {
		return nil, fmt.Errorf("cylinder: negative subdivision level %d", levels)
	}
	scale := 1 << levels
	return CylinderWall(radius, height, segments*scale, (rings-1)*scale+1)
}

// VertexCount returns M.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// Transformed returns a copy of the mesh with every vertex mapped through r.
func (m *Mesh) Transformed(r Remap) *Mesh {
	out := *m
	out.Vertices = r.ApplyAll(nil, m.Vertices)
	return &out
}

// Bounds returns the axis-aligned bounding box of the mesh.
func (m *Mesh) Bounds() r3.Box {
	if len(m.Vertices) == 0 {
		return r3.Box{}
	}
	b := r3.Box{Min: m.Vertices[0], Max: m.Vertices[0]}
	for _, v := range m.Vertices[1:] {
		b.Min.X = math.Min(b.Min.X, v.X)
		b.Min.Y = math.Min(b.Min.Y, v.Y)
		b.Min.Z = math.Min(b.Min.Z, v.Z)
		b.Max.X = math.Max(b.Max.X, v.X)
		b.Max.Y = math.Max(b.Max.Y, v.Y)
		b.Max.Z = math.Max(b.Max.Z, v.Z)
	}
	return b
}
