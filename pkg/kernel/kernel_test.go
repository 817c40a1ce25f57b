package kernel

import (
	"errors"
	"math"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// --- Mesh helper method tests ---

func TestMeshVertexCount(t *testing.T) {
	tests := []struct {
		name     string
		vertices []float32
		want     int
	}{
		{"empty", nil, 0},
		{"one vertex", []float32{1, 2, 3}, 1},
		{"four vertices", []float32{0, 0, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0}, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Mesh{Vertices: tt.vertices}
			if got := m.VertexCount(); got != tt.want {
				t.Errorf("VertexCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMeshTriangleCount(t *testing.T) {
	tests := []struct {
		name    string
		indices []uint32
		want    int
	}{
		{"empty", nil, 0},
		{"one triangle", []uint32{0, 1, 2}, 1},
		{"two triangles", []uint32{0, 1, 2, 2, 3, 0}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Mesh{Indices: tt.indices}
			if got := m.TriangleCount(); got != tt.want {
				t.Errorf("TriangleCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMeshIsEmpty(t *testing.T) {
	t.Run("empty mesh", func(t *testing.T) {
		m := &Mesh{}
		if !m.IsEmpty() {
			t.Error("IsEmpty() = false for empty mesh, want true")
		}
	})
	t.Run("non-empty mesh", func(t *testing.T) {
		m := &Mesh{Vertices: []float32{1, 2, 3}}
		if m.IsEmpty() {
			t.Error("IsEmpty() = true for non-empty mesh, want false")
		}
	})
}

// --- Interface check with a recording kernel ---

type boxSolid struct {
	min, max [3]float64
}

func (s *boxSolid) BoundingBox() (min, max [3]float64) { return s.min, s.max }

// boxKernel tracks bounding boxes only, which is enough to check how
// callers compose slabs.
type boxKernel struct{}

func (boxKernel) Slab(outline [][2]float64, thickness float64) (Solid, error) {
	if len(outline) < 3 || thickness <= 0 {
		return nil, errBadSlab
	}
	s := &boxSolid{min: [3]float64{outline[0][0], outline[0][1], 0}, max: [3]float64{outline[0][0], outline[0][1], thickness}}
	for _, p := range outline[1:] {
		for i := 0; i < 2; i++ {
			s.min[i] = math.Min(s.min[i], p[i])
			s.max[i] = math.Max(s.max[i], p[i])
		}
	}
	return s, nil
}

func (boxKernel) Union(a, b Solid) Solid {
	amin, amax := a.BoundingBox()
	bmin, bmax := b.BoundingBox()
	u := &boxSolid{}
	for i := range u.min {
		u.min[i] = math.Min(amin[i], bmin[i])
		u.max[i] = math.Max(amax[i], bmax[i])
	}
	return u
}

func (boxKernel) Translate(s Solid, x, y, z float64) Solid {
	min, max := s.BoundingBox()
	d := [3]float64{x, y, z}
	for i := range d {
		min[i] += d[i]
		max[i] += d[i]
	}
	return &boxSolid{min: min, max: max}
}

func (boxKernel) ToMesh(Solid) (*Mesh, error) { return &Mesh{}, nil }

var errBadSlab = errors.New("bad slab")

var _ Kernel = boxKernel{}

func TestKernelComposition(t *testing.T) {
	var k Kernel = boxKernel{}
	if _, err := k.Slab([][2]float64{{0, 0}, {1, 0}}, 1); err == nil {
		t.Error("expected an error for a two point outline")
	}

	a, err := k.Slab([][2]float64{{0, 0}, {2, 0}, {2, 1}}, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	b := k.Translate(a, 0, 0, 1)
	min, max := k.Union(a, b).BoundingBox()
	if min != [3]float64{0, 0, 0} || max != [3]float64{2, 1, 1.5} {
		t.Errorf("union spans %v to %v", min, max)
	}

	m, err := k.ToMesh(b)
	if err != nil || m == nil || !m.IsEmpty() {
		t.Errorf("ToMesh() = %v, %v", m, err)
	}
}

// --- Mesh builder tests ---

func TestPolygonMeshWinding(t *testing.T) {
	// Clockwise when seen from +z.
	cw := []v3.Vec{{X: -1, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: -1}, {X: -1, Y: -1}}

	tests := []struct {
		name   string
		normal v3.Vec
	}{
		{"up", v3.Vec{Z: 1}},
		{"down", v3.Vec{Z: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := PolygonMesh("f", cw, tt.normal)
			if m.TriangleCount() != 2 {
				t.Fatalf("TriangleCount() = %d, want 2", m.TriangleCount())
			}
			for i := 0; i < m.TriangleCount(); i++ {
				a, b, c := m.Triangle(i)
				n := b.Sub(a).Cross(c.Sub(a))
				if n.Dot(tt.normal) <= 0 {
					t.Errorf("triangle %d faces %v, want %v", i, n, tt.normal)
				}
			}
			if len(m.Normals) != len(m.Vertices) {
				t.Errorf("normals %d != vertices %d", len(m.Normals), len(m.Vertices))
			}
		})
	}
}

func TestPolygonMeshDegenerate(t *testing.T) {
	m := PolygonMesh("x", []v3.Vec{{X: 1}, {X: 2}}, v3.Vec{Z: 1})
	if !m.IsEmpty() {
		t.Error("two points should give an empty mesh")
	}
}

func TestQuadMesh(t *testing.T) {
	m := QuadMesh("wall", v3.Vec{}, v3.Vec{X: 1}, v3.Vec{X: 1, Z: 1}, v3.Vec{Z: 1})
	if m.TriangleCount() != 2 || m.VertexCount() != 4 {
		t.Fatalf("got %d triangles, %d vertices", m.TriangleCount(), m.VertexCount())
	}
	if m.PartName != "wall" {
		t.Errorf("PartName = %q", m.PartName)
	}
	if got := m.Vertex(2); got != (v3.Vec{X: 1, Z: 1}) {
		t.Errorf("Vertex(2) = %v", got)
	}
}
