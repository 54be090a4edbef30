// Package camera provides an orbit camera for viewing the tube.
package camera

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// maxPitch keeps the camera off the poles so the up vector stays valid.
const maxPitch = math.Pi/2 - 0.01

// Orbit circles a target point. Coordinates are Y-up, as the renderer uses.
type Orbit struct {
	// Target is the point the camera looks at
	Target r3.Vec

	// Yaw around +Y and pitch above the XZ plane, in radians
	Yaw, Pitch float64

	// Distance from target
	Distance float64

	// Distance constraints
	MinDistance, MaxDistance float64

	home orbitState
}

// orbitState is the state Reset returns to.
type orbitState struct {
	Yaw, Pitch, Distance float64
}

// New creates an orbit camera at eye looking at target.
func New(eye, target r3.Vec) *Orbit {
	d := r3.Sub(eye, target)
	dist := r3.Norm(d)
	c := &Orbit{
		Target:      target,
		Distance:    dist,
		MinDistance: dist / 8,
		MaxDistance: dist * 4,
	}
	if dist > 0 {
		c.Yaw = math.Atan2(d.X, d.Z)
		c.Pitch = clamp(math.Asin(d.Y/dist), -maxPitch, maxPitch)
	}
	c.home = orbitState{Yaw: c.Yaw, Pitch: c.Pitch, Distance: c.Distance}
	return c
}

// Position returns the eye position.
func (c *Orbit) Position() r3.Vec {
	cp := math.Cos(c.Pitch)
	return r3.Add(c.Target, r3.Scale(c.Distance, r3.Vec{
		X: cp * math.Sin(c.Yaw),
		Y: math.Sin(c.Pitch),
		Z: cp * math.Cos(c.Yaw),
	}))
}

// Rotate turns the camera around the target.
func (c *Orbit) Rotate(dYaw, dPitch float64) {
	c.Yaw = math.Remainder(c.Yaw+dYaw, 2*math.Pi)
	c.Pitch = clamp(c.Pitch+dPitch, -maxPitch, maxPitch)
}

// SetDistance sets the orbit radius, clamped to min/max.
func (c *Orbit) SetDistance(d float64) {
	c.Distance = clamp(d, c.MinDistance, c.MaxDistance)
}

// ZoomBy divides the distance by factor; factors above 1 move closer.
func (c *Orbit) ZoomBy(factor float64) {
	if factor <= 0 {
		return
	}
	c.SetDistance(c.Distance / factor)
}

// Reset returns the camera to where it was created.
func (c *Orbit) Reset() {
	c.Yaw = c.home.Yaw
	c.Pitch = c.home.Pitch
	c.Distance = c.home.Distance
}

// clamp restricts a value to a range.
func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// ZUpToYUp converts a point from the Z-up scene frame to the Y-up view frame.
func ZUpToYUp(p r3.Vec) r3.Vec {
	return r3.Vec{X: p.X, Y: p.Z, Z: -p.Y}
}
