package scene

import (
	"sort"

	"github.com/chazu/crease/pkg/geom"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Hit is one ray/surface intersection.
type Hit struct {
	Surface  *Surface // nil for hits on helper planes
	Point    v3.Vec   // world space
	Normal   v3.Vec   // world face normal, flipped to face the ray origin
	Distance float64
}

// Intersect tests the ray against the surface polygon in world space.
// Hidden surfaces are never hit.
func (s *Surface) Intersect(r geom.Ray) (Hit, bool) {
	if !s.Shown() || len(s.Points) < 3 {
		return Hit{}, false
	}
	pts := s.WorldPoints()
	best, found := 0.0, false
	for i := 1; i+1 < len(pts); i++ {
		if t, ok := r.IntersectTriangle(pts[0], pts[i], pts[i+1]); ok && (!found || t < best) {
			best, found = t, true
		}
	}
	if !found {
		return Hit{}, false
	}
	return Hit{
		Surface:  s,
		Point:    r.At(best),
		Normal:   FaceViewer(s.WorldNormal(), r.Dir),
		Distance: best,
	}, true
}

// Raycast intersects the ray with every surface and returns the hits sorted
// nearest first.
func Raycast(r geom.Ray, surfaces []*Surface) []Hit {
	var hits []Hit
	for _, s := range surfaces {
		if h, ok := s.Intersect(r); ok {
			hits = append(hits, h)
		}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Distance < hits[j].Distance
	})
	return hits
}

// RaycastPlane intersects the ray with an unbounded plane.
func RaycastPlane(r geom.Ray, p geom.Plane) (Hit, bool) {
	t, ok := r.IntersectPlane(p)
	if !ok {
		return Hit{}, false
	}
	return Hit{Point: r.At(t), Normal: FaceViewer(p.Normal, r.Dir), Distance: t}, true
}

// FaceViewer flips n if needed so it points against dir.
func FaceViewer(n, dir v3.Vec) v3.Vec {
	if n.Dot(dir) > 0 {
		return n.MulScalar(-1)
	}
	return n
}
