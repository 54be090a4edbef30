// Package density evaluates a kernel density estimate of particle proximity
// on the vertices of a surface mesh, once per frame.
package density

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Kernel is a radial basis: the influence of a particle at squared distance dist2.
// Implementations must be non-negative and non-increasing in dist2.
type Kernel interface {
	Weight(dist2 float64) float64
}

// Gaussian is the canonical kernel exp(-d²/(2h²)) with bandwidth H.
type Gaussian struct {
	H float64
}

// Weight implements Kernel.
func (g Gaussian) Weight(dist2 float64) float64 {
	return math.Exp(-dist2 / (2 * g.H * g.H))
}

// Exponential is the un-normalized exp(-rate·d) form used by early versions
// of the tube script (rate 2.0). Its values are not comparable to Gaussian.
type Exponential struct {
	Rate float64
}

// Weight implements Kernel.
func (e Exponential) Weight(dist2 float64) float64 {
	return math.Exp(-e.Rate * math.Sqrt(dist2))
}

// NewKernel builds a kernel from its config name.
func NewKernel(kind string, bandwidth, rate float64) (Kernel, error) {
	switch kind {
	case "gaussian":
		if bandwidth <= 0 {
			return nil, fmt.Errorf("gaussian kernel needs positive bandwidth, got %g", bandwidth)
		}
		return Gaussian{H: bandwidth}, nil
	case "exponential":
		if rate <= 0 {
			return nil, fmt.Errorf("exponential kernel needs positive rate, got %g", rate)
		}
		return Exponential{Rate: rate}, nil
	}
	return nil, fmt.Errorf("unknown kernel %q", kind)
}

// RawDensity sums the kernel influence of every particle at v.
// Particles are visited in index order so the sum is reproducible.
func RawDensity(k Kernel, v r3.Vec, particles ParticleSet) float64 {
	var sum float64
	for _, p := range particles {
		sum += k.Weight(r3.Norm2(r3.Sub(v, p)))
	}
	return sum
}

// gaussianRaw is RawDensity specialised for Gaussian to skip the interface
// call in the inner loop.
func gaussianRaw(inv2h2 float64, v r3.Vec, particles ParticleSet) float64 {
	var sum float64
	for _, p := range particles {
		dx := v.X - p.X
		dy := v.Y - p.Y
		dz := v.Z - p.Z
		sum += math.Exp(-(dx*dx + dy*dy + dz*dz) * inv2h2)
	}
	return sum
}
