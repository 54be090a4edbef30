package systems

import (
	"fmt"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/tubedensity/components"
	"github.com/pthm-cable/tubedensity/density"
	"github.com/pthm-cable/tubedensity/geom"
)

// ParticleSource exposes the ECS particles to the density sampler.
// It only reads components.
type ParticleSource struct {
	filter   ecs.Filter2[components.Position, components.Particle]
	emitter  *EmitterSystem
	detached bool
}

// NewParticleSource creates a source over the emitter's particles.
func NewParticleSource(w *ecs.World, emitter *EmitterSystem) *ParticleSource {
	return &ParticleSource{
		filter:  *ecs.NewFilter2[components.Position, components.Particle](w),
		emitter: emitter,
	}
}

// Positions writes every particle position into its slot.
// It reports density.ErrNotReady until the emitter has born all particles.
func (s *ParticleSource) Positions(dst []r3.Vec) ([]r3.Vec, error) {
	if s.detached || s.emitter == nil {
		return nil, fmt.Errorf("%w: particle emitter removed", density.ErrMissingInput)
	}
	if !s.emitter.Ready() {
		return nil, density.ErrNotReady
	}

	n := s.emitter.Born()
	if cap(dst) < n {
		dst = make([]r3.Vec, n)
	}
	dst = dst[:n]

	seen := 0
	query := s.filter.Query()
	for query.Next() {
		pos, p := query.Get()
		if p.Index < 0 || p.Index >= n {
			continue
		}
		dst[p.Index] = pos.Vec()
		seen++
	}

	// Short reads surface as a shape mismatch in the sampler
	return dst[:seen], nil
}

// Detach makes the source unavailable, as if the emitter object were deleted.
func (s *ParticleSource) Detach() {
	s.detached = true
}

// MeshSource exposes mesh vertices in the mesh's local frame.
type MeshSource struct {
	mesh     *geom.Mesh
	detached bool
}

// NewMeshSource creates a vertex source over m.
func NewMeshSource(m *geom.Mesh) *MeshSource {
	return &MeshSource{mesh: m}
}

// VertexCount returns M, or 0 when detached.
func (s *MeshSource) VertexCount() int {
	if s.detached || s.mesh == nil {
		return 0
	}
	return s.mesh.VertexCount()
}

// VertexPositions copies the vertices into dst.
func (s *MeshSource) VertexPositions(dst []r3.Vec) ([]r3.Vec, error) {
	if s.detached || s.mesh == nil {
		return nil, fmt.Errorf("%w: surface mesh removed", density.ErrMissingInput)
	}
	return append(dst[:0], s.mesh.Vertices...), nil
}

// Mesh returns the underlying mesh.
func (s *MeshSource) Mesh() *geom.Mesh {
	return s.mesh
}

// Replace swaps the mesh, e.g. after re-subdividing it.
func (s *MeshSource) Replace(m *geom.Mesh) {
	s.mesh = m
}

// Detach makes the source unavailable, as if the mesh object were deleted.
func (s *MeshSource) Detach() {
	s.detached = true
}
