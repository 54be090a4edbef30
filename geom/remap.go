// Package geom holds coordinate-frame transforms and mesh construction for the tube.
package geom

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// Remap converts points from the mesh's local frame into the particle frame.
type Remap uint8

const (
	// RemapNone leaves points untouched.
	RemapNone Remap = iota
	// RemapRotY90 undoes a 90° rotation of the mesh about +Y:
	// (x, y, z) -> (z, y, -x).
	RemapRotY90
)

// ParseRemap maps a config name to a Remap.
func ParseRemap(name string) (Remap, error) {
	switch name {
	case "", "none":
		return RemapNone, nil
	case "rot_y_90":
		return RemapRotY90, nil
	}
	return RemapNone, fmt.Errorf("unknown remap %q", name)
}

// String returns the config name of the remap.
func (r Remap) String() string {
	switch r {
	case RemapNone:
		return "none"
	case RemapRotY90:
		return "rot_y_90"
	}
	return fmt.Sprintf("Remap(%d)", uint8(r))
}

// Apply maps a single point.
func (r Remap) Apply(p r3.Vec) r3.Vec {
	switch r {
	case RemapRotY90:
		return r3.Vec{X: p.Z, Y: p.Y, Z: -p.X}
	}
	return p
}

// ApplyAll maps every point of src into dst and returns dst resized to len(src).
// src is never modified, so calling it once per frame on the raw mesh
// vertices cannot compound the rotation.
func (r Remap) ApplyAll(dst, src []r3.Vec) []r3.Vec {
	if cap(dst) < len(src) {
		dst = make([]r3.Vec, len(src))
	}
	dst = dst[:len(src)]
	for i, p := range src {
		dst[i] = r.Apply(p)
	}
	return dst
}
