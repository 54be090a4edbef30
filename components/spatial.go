package components

import "gonum.org/v1/gonum/spatial/r3"

// Position represents a particle's world position.
type Position struct {
	X, Y, Z float64
}

// Vec returns the position as an r3 vector.
func (p Position) Vec() r3.Vec {
	return r3.Vec{X: p.X, Y: p.Y, Z: p.Z}
}

// Set stores v.
func (p *Position) Set(v r3.Vec) {
	p.X, p.Y, p.Z = v.X, v.Y, v.Z
}

// Velocity represents a particle's velocity in world units per second.
type Velocity struct {
	X, Y, Z float64
}

// Vec returns the velocity as an r3 vector.
func (v Velocity) Vec() r3.Vec {
	return r3.Vec{X: v.X, Y: v.Y, Z: v.Z}
}

// Set stores u.
func (v *Velocity) Set(u r3.Vec) {
	v.X, v.Y, v.Z = u.X, u.Y, u.Z
}
