package systems

import (
	"github.com/ojrac/opensimplex-go"
	"gonum.org/v1/gonum/spatial/r3"
)

// Turbulence is a time-varying coherent noise acceleration field.
type Turbulence struct {
	noise    opensimplex.Noise
	strength float64
	scale    float64
	speed    float64
}

// NewTurbulence creates a noise field. A zero strength disables it.
func NewTurbulence(seed int64, strength, scale, speed float64) *Turbulence {
	return &Turbulence{
		noise:    opensimplex.New(seed),
		strength: strength,
		scale:    scale,
		speed:    speed,
	}
}

// Enabled reports whether the field contributes anything.
func (t *Turbulence) Enabled() bool {
	return t != nil && t.strength != 0
}

// At returns the acceleration at p and simulation time sec.
// Each component samples the same 4D noise at a different offset.
func (t *Turbulence) At(p r3.Vec, sec float64) r3.Vec {
	if !t.Enabled() {
		return r3.Vec{}
	}
	x, y, z := p.X*t.scale, p.Y*t.scale, p.Z*t.scale
	w := sec * t.speed
	return r3.Vec{
		X: t.strength * t.noise.Eval4(x, y, z, w),
		Y: t.strength * t.noise.Eval4(x+31.7, y, z, w),
		Z: t.strength * t.noise.Eval4(x, y+47.3, z, w),
	}
}
