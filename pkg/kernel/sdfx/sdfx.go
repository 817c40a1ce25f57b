// Package sdfx is the kernel.Kernel backed by github.com/deadsy/sdfx. Facet
// outlines become sdf.Polygon2D extrusions and are meshed with uniform
// marching cubes.
package sdfx

import (
	"fmt"
	"math"

	"github.com/chazu/crease/pkg/kernel"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

var _ kernel.Kernel = (*Kernel)(nil)

// defaultMeshCells is the marching cubes resolution along the longest axis.
const defaultMeshCells = 200

type sdfxSolid struct {
	s sdf.SDF3
}

func (s *sdfxSolid) BoundingBox() (min, max [3]float64) {
	bb := s.s.BoundingBox()
	min = [3]float64{bb.Min.X, bb.Min.Y, bb.Min.Z}
	max = [3]float64{bb.Max.X, bb.Max.Y, bb.Max.Z}
	return min, max
}

// Kernel meshes solids at a fixed cell count.
type Kernel struct {
	cells int
}

// New returns a kernel at the default resolution.
func New() *Kernel {
	return &Kernel{cells: defaultMeshCells}
}

// NewWithCells returns a kernel meshing with the given number of marching
// cubes cells along the longest bounding box axis.
func NewWithCells(cells int) *Kernel {
	if cells <= 0 {
		cells = defaultMeshCells
	}
	return &Kernel{cells: cells}
}

func unwrap(s kernel.Solid) sdf.SDF3 {
	return s.(*sdfxSolid).s
}

func wrap(s sdf.SDF3) kernel.Solid {
	return &sdfxSolid{s: s}
}

// Slab extrudes the outline to the given thickness. sdf.Extrude3D centres
// the solid on z=0, so it is shifted up to sit on the XY plane.
func (k *Kernel) Slab(outline [][2]float64, thickness float64) (kernel.Solid, error) {
	if thickness <= 0 {
		return nil, fmt.Errorf("sdfx: slab thickness must be positive, got %g", thickness)
	}
	pts := make([]v2.Vec, len(outline))
	for i, p := range outline {
		pts[i] = v2.Vec{X: p[0], Y: p[1]}
	}
	s2, err := sdf.Polygon2D(pts)
	if err != nil {
		return nil, fmt.Errorf("sdfx: slab outline: %w", err)
	}
	s3 := sdf.Extrude3D(s2, thickness)
	return wrap(sdf.Transform3D(s3, sdf.Translate3d(v3.Vec{Z: thickness / 2}))), nil
}

func (k *Kernel) Union(a, b kernel.Solid) kernel.Solid {
	return wrap(sdf.Union3D(unwrap(a), unwrap(b)))
}

// Translate moves a solid by (x, y, z).
func (k *Kernel) Translate(s kernel.Solid, x, y, z float64) kernel.Solid {
	m := sdf.Translate3d(v3.Vec{X: x, Y: y, Z: z})
	return wrap(sdf.Transform3D(unwrap(s), m))
}

// ToMesh meshes a solid with marching cubes. Corners shared by triangles
// with the same facing are welded, so each flat face of a slab is one
// indexed patch; degenerate triangles are dropped.
func (k *Kernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	tris := render.ToTriangles(unwrap(s), render.NewMarchingCubesUniform(k.cells))

	m := &kernel.Mesh{}
	welded := make(map[weldKey]uint32, len(tris))
	for _, tri := range tris {
		if tri[1].Sub(tri[0]).Cross(tri[2].Sub(tri[0])).Length() < weldTolerance {
			continue
		}
		n := tri.Normal()
		for _, v := range tri {
			key := weldKey{quantize(v), quantize(n)}
			idx, ok := welded[key]
			if !ok {
				idx = uint32(m.VertexCount())
				welded[key] = idx
				m.Vertices = append(m.Vertices, float32(v.X), float32(v.Y), float32(v.Z))
				m.Normals = append(m.Normals, float32(n.X), float32(n.Y), float32(n.Z))
			}
			m.Indices = append(m.Indices, idx)
		}
	}
	return m, nil
}

const weldTolerance = 1e-6

type weldKey struct {
	pos, normal [3]int64
}

func quantize(v v3.Vec) [3]int64 {
	return [3]int64{
		int64(math.Round(v.X / weldTolerance)),
		int64(math.Round(v.Y / weldTolerance)),
		int64(math.Round(v.Z / weldTolerance)),
	}
}
