package fold

import (
	"math"

	"github.com/chazu/crease/pkg/geom"
	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// degenerate is the squared drag length below which a frame has no usable
// crease direction.
const degenerate = 1e-10

// Gesture is the state of one fold, from press to release. Points are in
// the prime object's frame, which is also world space.
type Gesture struct {
	InitialFacet int
	InitialEdge  int
	Sign         float64 // +1 when the viewer sees the facet front
	FacetNormal  v3.Vec
	TouchNormal  v3.Vec

	From v3.Vec // anchor on the facet boundary
	Mid  v3.Vec
	To   v3.Vec // clamped drag point

	Active         map[int]bool
	PointObstacles []v2.Vec
	EdgeObstacles  [][2]v2.Vec

	FoldHeight int       // layer steps the flap is lifted by
	Crease     [2]v3.Vec // crease endpoints on the facet boundary
	Valid      bool      // a non-degenerate frame has been applied
}

// Lift returns the vector the flap is raised by.
func (g *Gesture) Lift(thickness float64) v3.Vec {
	return g.FacetNormal.MulScalar(g.Sign * thickness * float64(g.FoldHeight))
}

// clampPointObstacles limits the drag distance t along unit direction u so
// the drag point never travels past an obstacle lying ahead of the anchor:
// each obstacle defines a circle around from through itself and the first
// circle the drag segment crosses wins.
func clampPointObstacles(from, u v2.Vec, t float64, obstacles []v2.Vec) float64 {
	end := from.Add(u.MulScalar(t))
	best := t
	for _, o := range obstacles {
		rel := o.Sub(from)
		r := rel.Length()
		if r < geom.Epsilon || rel.Dot(u) <= 0 {
			continue
		}
		if ts := geom.SegmentCircle(from, end, from, r); len(ts) > 0 {
			best = math.Min(best, ts[0]*t)
		}
	}
	return best
}

// clampEdgeObstacles keeps both endpoints of every obstacle edge on the
// stationary side of the crease. The crease is the perpendicular bisector of
// from and the drag point, so an endpoint p stays put while the drag point
// is no farther from p than from is: a circle around p through from. Each
// circle gives a feasible parameter interval along the drag line and the
// intervals are intersected. ok is false when only t=0 survives.
func clampEdgeObstacles(from, u v2.Vec, t float64, edges [][2]v2.Vec) (float64, bool) {
	feasible := geom.Interval{Lo: 0, Hi: t}
	for _, e := range edges {
		for _, p := range e {
			r := geom.Dist2(p, from)
			if r < geom.Epsilon {
				continue
			}
			iv, ok := geom.LineCircle(from, u, p, r)
			if !ok {
				return 0, false
			}
			feasible = feasible.Intersect(iv)
		}
	}
	if feasible.Empty() || feasible.Hi < geom.Epsilon {
		return 0, false
	}
	return feasible.Clamp(t), true
}

// clampToFacet keeps the crease inside the facet: the crease sits halfway
// along the drag, so the drag may reach at most twice the facet's extent in
// the drag direction.
func clampToFacet(from, u v2.Vec, t float64, outline []v2.Vec) (float64, bool) {
	ext := geom.Extent(outline, from, u)
	if ext < geom.Epsilon {
		return 0, false
	}
	return math.Min(t, 2*ext*(1-1e-6)), true
}

// clampTarget applies the point, edge and facet clamps to a raw drag point.
// A raw point on the anchor is returned unchanged; ok is false when no
// feasible target exists and the previous target should be kept.
func clampTarget(from, raw v2.Vec, points []v2.Vec, edges [][2]v2.Vec, outline []v2.Vec) (v2.Vec, bool) {
	d := raw.Sub(from)
	t := d.Length()
	if t*t < degenerate {
		return from, true
	}
	u := d.MulScalar(1 / t)

	t = clampPointObstacles(from, u, t, points)
	t, ok := clampEdgeObstacles(from, u, t, edges)
	if !ok {
		return from, false
	}
	if t, ok = clampToFacet(from, u, t, outline); !ok || t < geom.Epsilon {
		return from, false
	}
	return from.Add(u.MulScalar(t)), true
}

// mirrorMatrix rotates the flap half a turn about the crease line through
// mid and raises it by lift along sign*facetNormal. dir is the unit drag
// direction in the facet plane. Folding the folded flap back, whose facet
// normal and sign are both flipped, yields the same matrix, so applying it
// twice is the identity.
func mirrorMatrix(mid, dir, facetNormal v3.Vec, sign, lift float64) sdf.M44 {
	n := facetNormal.MulScalar(sign)
	axis := dir.Cross(n).Normalize()
	rot := sdf.Translate3d(mid).
		Mul(sdf.Rotate3d(axis, math.Pi)).
		Mul(sdf.Translate3d(mid.MulScalar(-1)))
	return sdf.Translate3d(n.MulScalar(lift)).Mul(rot)
}

// wallQuad is the crease wall: the crease segment swept by lift.
func wallQuad(crease [2]v3.Vec, lift v3.Vec) []v3.Vec {
	return []v3.Vec{crease[0], crease[1], crease[1].Add(lift), crease[0].Add(lift)}
}

// foldHeight counts the layers between the facet and the outermost sheet in
// the lift direction, plus one so the flap clears that sheet.
func foldHeight(layer, lo, hi int, up bool) int {
	if up {
		return hi - layer + 1
	}
	return layer - lo + 1
}
