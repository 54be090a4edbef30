package density

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// ParticleSet is an ordered sequence of particle positions, index-aligned
// with the source's iteration order.
type ParticleSet []r3.Vec

// DensityField holds one normalized value per mesh vertex.
type DensityField []float64

// ParticleSource supplies the current particle positions.
// Positions appends to dst[:0] and returns the filled slice. A source that
// is not available returns an error wrapping ErrMissingInput.
type ParticleSource interface {
	Positions(dst []r3.Vec) ([]r3.Vec, error)
}

// VertexSource supplies surface vertex positions.
type VertexSource interface {
	VertexCount() int
	VertexPositions(dst []r3.Vec) ([]r3.Vec, error)
}

// AttributeSink consumes a published density field.
type AttributeSink interface {
	Publish(values []float64) error
}

// Sampler reads exactly N particle positions into a buffer it owns.
type Sampler struct {
	n   int
	buf []r3.Vec
}

// NewSampler creates a sampler for a fixed particle count n.
func NewSampler(n int) *Sampler {
	return &Sampler{n: n, buf: make([]r3.Vec, 0, n)}
}

// Count returns the configured particle count N.
func (s *Sampler) Count() int {
	return s.n
}

// Sample reads the source into the sampler's buffer. The returned set is
// valid until the next call. On error no set is returned, so a caller can
// never evaluate a partially read frame.
func (s *Sampler) Sample(src ParticleSource) (ParticleSet, error) {
	if src == nil {
		return nil, fmt.Errorf("%w: no particle source", ErrMissingInput)
	}
	got, err := src.Positions(s.buf[:0])
	if err != nil {
		return nil, fmt.Errorf("sampling particles: %w", err)
	}
	// Keep the grown buffer for the next frame even when rejecting this one
	if cap(got) > cap(s.buf) {
		s.buf = got[:0]
	}
	if len(got) != s.n {
		return nil, &ShapeMismatchError{Input: "particles", Want: s.n, Got: len(got)}
	}
	return ParticleSet(got), nil
}
