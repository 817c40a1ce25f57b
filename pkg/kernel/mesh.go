package kernel

import (
	"github.com/chazu/crease/pkg/geom"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Mesh is a triangle mesh suitable for rendering.
// All arrays are flat: vertices has 3 floats per vertex (x,y,z),
// normals has 3 floats per vertex, indices has 3 uint32s per triangle.
type Mesh struct {
	Vertices []float32 `json:"vertices"` // [x0,y0,z0, x1,y1,z1, ...]
	Normals  []float32 `json:"normals"`  // [nx0,ny0,nz0, ...]
	Indices  []uint32  `json:"indices"`  // [i0,i1,i2, ...] triangles
	PartName string    `json:"partName"` // which facet or connector this came from
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

// Vertex returns vertex i.
func (m *Mesh) Vertex(i int) v3.Vec {
	return v3.Vec{X: float64(m.Vertices[3*i]), Y: float64(m.Vertices[3*i+1]), Z: float64(m.Vertices[3*i+2])}
}

// Triangle returns the corners of triangle i.
func (m *Mesh) Triangle(i int) (a, b, c v3.Vec) {
	return m.Vertex(int(m.Indices[3*i])), m.Vertex(int(m.Indices[3*i+1])), m.Vertex(int(m.Indices[3*i+2]))
}

// PolygonMesh fan-triangulates a convex polygon. Triangles are wound so
// their geometric normal agrees with normal; every vertex carries normal.
func PolygonMesh(name string, poly []v3.Vec, normal v3.Vec) *Mesh {
	m := &Mesh{PartName: name}
	if len(poly) < 3 {
		return m
	}
	for _, p := range poly {
		m.Vertices = append(m.Vertices, float32(p.X), float32(p.Y), float32(p.Z))
		m.Normals = append(m.Normals, float32(normal.X), float32(normal.Y), float32(normal.Z))
	}
	flip := geom.PolygonNormal(poly).Dot(normal) < 0
	for i := 1; i+1 < len(poly); i++ {
		if flip {
			m.Indices = append(m.Indices, 0, uint32(i+1), uint32(i))
		} else {
			m.Indices = append(m.Indices, 0, uint32(i), uint32(i+1))
		}
	}
	return m
}

// QuadMesh builds a two-triangle mesh for corners a,b,c,d in loop order.
func QuadMesh(name string, a, b, c, d v3.Vec) *Mesh {
	quad := []v3.Vec{a, b, c, d}
	return PolygonMesh(name, quad, geom.PolygonNormal(quad))
}
