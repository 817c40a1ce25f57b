package geom

import (
	"fmt"
	"math"

	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
)

// Centroid returns the vertex average of a polygon.
func Centroid(poly []v2.Vec) v2.Vec {
	var c v2.Vec
	if len(poly) == 0 {
		return c
	}
	for _, p := range poly {
		c = c.Add(p)
	}
	return c.MulScalar(1 / float64(len(poly)))
}

// Shrink scales every vertex toward the centroid. factor 1 returns a copy of
// the input, factor 0 collapses the polygon to its centroid.
func Shrink(poly []v2.Vec, factor float64) []v2.Vec {
	c := Centroid(poly)
	out := make([]v2.Vec, len(poly))
	for i, p := range poly {
		out[i] = c.Add(p.Sub(c).MulScalar(factor))
	}
	return out
}

// SignedArea is positive for counter-clockwise polygons.
func SignedArea(poly []v2.Vec) float64 {
	var a float64
	for i := range poly {
		j := (i + 1) % len(poly)
		a += Cross2(poly[i], poly[j])
	}
	return a / 2
}

// IsConvex reports whether the polygon is convex (either winding). Collinear
// vertices are allowed.
func IsConvex(poly []v2.Vec) bool {
	n := len(poly)
	if n < 3 {
		return false
	}
	sign := 0.0
	for i := 0; i < n; i++ {
		a, b, c := poly[i], poly[(i+1)%n], poly[(i+2)%n]
		z := Cross2(b.Sub(a), c.Sub(b))
		if math.Abs(z) < Epsilon {
			continue
		}
		if sign == 0 {
			sign = math.Copysign(1, z)
		} else if math.Copysign(1, z) != sign {
			return false
		}
	}
	return sign != 0
}

// Edge returns the endpoints of edge i, running from vertex i to vertex i+1.
func Edge(poly []v2.Vec, i int) (v2.Vec, v2.Vec) {
	return poly[i], poly[(i+1)%len(poly)]
}

// ClosestEdge projects p onto every edge of poly and returns the nearest
// projected point together with its edge index.
func ClosestEdge(poly []v2.Vec, p v2.Vec) (v2.Vec, int) {
	best, bestIdx, bestD := v2.Vec{}, -1, math.Inf(1)
	for i := range poly {
		a, b := Edge(poly, i)
		q, _ := ClosestPointOnSegment(p, a, b)
		if d := Dist2(p, q); d < bestD {
			best, bestIdx, bestD = q, i, d
		}
	}
	return best, bestIdx
}

// Polygon is a closed planar region backed by an sdfx signed distance field.
type Polygon struct {
	Vertices []v2.Vec
	sdf      sdf.SDF2
}

// NewPolygon builds a polygon region from at least three vertices.
func NewPolygon(vertices []v2.Vec) (*Polygon, error) {
	if len(vertices) < 3 {
		return nil, fmt.Errorf("geom: polygon needs 3 vertices, got %d", len(vertices))
	}
	s, err := sdf.Polygon2D(vertices)
	if err != nil {
		return nil, fmt.Errorf("geom: polygon: %w", err)
	}
	return &Polygon{Vertices: vertices, sdf: s}, nil
}

// Distance is the signed distance from p to the boundary, negative inside.
func (p *Polygon) Distance(q v2.Vec) float64 {
	return p.sdf.Evaluate(q)
}

// Contains reports whether q is inside or within tol of the boundary.
func (p *Polygon) Contains(q v2.Vec, tol float64) bool {
	return p.Distance(q) <= tol
}

// Crossing intersects the line through origin along dir with the polygon
// boundary and returns the two extreme crossing points. ok is false when the
// line misses the polygon or only touches a vertex.
func (p *Polygon) Crossing(origin, dir v2.Vec) (a, b v2.Vec, ok bool) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for i := range p.Vertices {
		s0, s1 := Edge(p.Vertices, i)
		t, _, hit := LineSegment(origin, dir, s0, s1)
		if !hit {
			continue
		}
		lo = math.Min(lo, t)
		hi = math.Max(hi, t)
	}
	if hi-lo < Epsilon {
		return a, b, false
	}
	return origin.Add(dir.MulScalar(lo)), origin.Add(dir.MulScalar(hi)), true
}

// Extent returns the largest projection of any vertex onto dir measured from
// origin.
func Extent(poly []v2.Vec, origin, dir v2.Vec) float64 {
	m := math.Inf(-1)
	for _, v := range poly {
		m = math.Max(m, v.Sub(origin).Dot(dir))
	}
	return m
}
