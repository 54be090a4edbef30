package geom

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestRemapRotY90(t *testing.T) {
	p := r3.Vec{X: 1, Y: 2, Z: 3}
	got := RemapRotY90.Apply(p)
	want := r3.Vec{X: 3, Y: 2, Z: -1}
	if got != want {
		t.Errorf("RemapRotY90(%v) = %v, want %v", p, got, want)
	}

	// Applying twice is a 180° turn, not the identity
	twice := RemapRotY90.Apply(got)
	if twice != (r3.Vec{X: -1, Y: 2, Z: -3}) {
		t.Errorf("double remap = %v, want (-1, 2, -3)", twice)
	}
}

func TestRemapNoneIsIdentity(t *testing.T) {
	p := r3.Vec{X: -4, Y: 0.5, Z: 9}
	if got := RemapNone.Apply(p); got != p {
		t.Errorf("RemapNone changed point: %v -> %v", p, got)
	}
}

func TestRemapPreservesDistance(t *testing.T) {
	a := r3.Vec{X: 1, Y: -2, Z: 0.25}
	b := r3.Vec{X: -3, Y: 4, Z: 5}
	before := r3.Norm(r3.Sub(a, b))
	after := r3.Norm(r3.Sub(RemapRotY90.Apply(a), RemapRotY90.Apply(b)))
	if math.Abs(before-after) > 1e-12 {
		t.Errorf("remap changed distance: %g -> %g", before, after)
	}
}

func TestApplyAllDoesNotTouchSource(t *testing.T) {
	src := []r3.Vec{{X: 1}, {Y: 1}, {Z: 1}}
	orig := append([]r3.Vec(nil), src...)

	dst := RemapRotY90.ApplyAll(nil, src)
	// Second call with the same source yields the same result
	dst2 := RemapRotY90.ApplyAll(make([]r3.Vec, 0, 8), src)

	for i := range src {
		if src[i] != orig[i] {
			t.Errorf("source vertex %d mutated: %v", i, src[i])
		}
		if dst[i] != dst2[i] {
			t.Errorf("vertex %d: repeated remap differs %v vs %v", i, dst[i], dst2[i])
		}
	}
	if dst[0] != (r3.Vec{X: 0, Y: 0, Z: -1}) {
		t.Errorf("expected (1,0,0) -> (0,0,-1), got %v", dst[0])
	}
}

func TestParseRemap(t *testing.T) {
	for _, name := range []string{"none", "rot_y_90"} {
		r, err := ParseRemap(name)
		if err != nil {
			t.Fatalf("ParseRemap(%q): %v", name, err)
		}
		if r.String() != name {
			t.Errorf("round trip %q -> %q", name, r.String())
		}
	}
	if _, err := ParseRemap("rot_z_45"); err == nil {
		t.Error("expected error for unknown remap")
	}
}

func TestCylinderWallShape(t *testing.T) {
	m, err := CylinderWall(3, 15, 32, 2)
	if err != nil {
		t.Fatal(err)
	}

	if m.VertexCount() != 64 {
		t.Errorf("expected 64 vertices, got %d", m.VertexCount())
	}
	if len(m.Triangles) != 64 {
		t.Errorf("expected 64 triangles, got %d", len(m.Triangles))
	}

	for i, v := range m.Vertices {
		r := math.Hypot(v.X, v.Y)
		if math.Abs(r-3) > 1e-9 {
			t.Errorf("vertex %d radius %g, want 3", i, r)
		}
		if v.Z < -7.5-1e-9 || v.Z > 7.5+1e-9 {
			t.Errorf("vertex %d z=%g out of [-7.5, 7.5]", i, v.Z)
		}
	}

	for i, tri := range m.Triangles {
		for _, idx := range tri {
			if idx < 0 || idx >= m.VertexCount() {
				t.Fatalf("triangle %d references vertex %d", i, idx)
			}
		}
	}
}

func TestSubdividedCylinderWall(t *testing.T) {
	m, err := SubdividedCylinderWall(3, 15, 32, 2, 2)
	if err != nil {
		t.Fatal(err)
	}
	if m.Segments != 128 || m.Rings != 5 {
		t.Errorf("expected 128x5, got %dx%d", m.Segments, m.Rings)
	}
	if m.VertexCount() != 640 {
		t.Errorf("expected 640 vertices, got %d", m.VertexCount())
	}
}

func TestCylinderWallRejectsBadInput(t *testing.T) {
	if _, err := CylinderWall(0, 1, 8, 2); err == nil {
		t.Error("expected error for zero radius")
	}
	if _, err := CylinderWall(1, 1, 2, 2); err == nil {
		t.Error("expected error for 2 segments")
	}
	if _, err := CylinderWall(1, 1, 8, 1); err == nil {
		t.Error("expected error for a single ring")
	}
}

func TestTransformedMeshAlignsAxisWithX(t *testing.T) {
	m, err := CylinderWall(3, 15, 16, 2)
	if err != nil {
		t.Fatal(err)
	}
	world := m.Transformed(RemapRotY90)
	b := world.Bounds()

	if math.Abs(b.Min.X+7.5) > 1e-9 || math.Abs(b.Max.X-7.5) > 1e-9 {
		t.Errorf("expected tube axis along X in [-7.5, 7.5], got [%g, %g]", b.Min.X, b.Max.X)
	}
	// Original mesh keeps its local frame
	if m.Bounds().Max.Z < 7.5-1e-9 {
		t.Error("source mesh was modified by Transformed")
	}
}
