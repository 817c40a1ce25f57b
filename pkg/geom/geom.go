// Package geom holds the small planar and spatial helpers used by the fold
// engine: clamped projections, parametric circle intervals, line/segment
// intersection and convex polygon utilities. Vectors are the sdfx vector
// types so results flow straight into sdf matrices and solids.
package geom

import (
	"math"

	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Epsilon is the tolerance used for degenerate lengths and parameters.
const Epsilon = 1e-9

// Cross2 returns the z component of the 3D cross product of a and b.
func Cross2(a, b v2.Vec) float64 {
	return a.X*b.Y - a.Y*b.X
}

// Perp returns a rotated 90 degrees counter-clockwise.
func Perp(a v2.Vec) v2.Vec {
	return v2.Vec{X: -a.Y, Y: a.X}
}

// Lerp2 returns a + (b-a)*t.
func Lerp2(a, b v2.Vec, t float64) v2.Vec {
	return a.Add(b.Sub(a).MulScalar(t))
}

// Dist2 returns the distance between a and b.
func Dist2(a, b v2.Vec) float64 {
	return b.Sub(a).Length()
}

// XY drops the z component.
func XY(p v3.Vec) v2.Vec {
	return v2.Vec{X: p.X, Y: p.Y}
}

// Lift places p at height z.
func Lift(p v2.Vec, z float64) v3.Vec {
	return v3.Vec{X: p.X, Y: p.Y, Z: z}
}

// ClosestPointOnSegment projects p onto segment ab, clamped to the segment.
// It returns the projected point and its parameter t in [0,1].
func ClosestPointOnSegment(p, a, b v2.Vec) (v2.Vec, float64) {
	ab := b.Sub(a)
	l2 := ab.Dot(ab)
	if l2 < Epsilon {
		return a, 0
	}
	t := p.Sub(a).Dot(ab) / l2
	t = math.Max(0, math.Min(1, t))
	return a.Add(ab.MulScalar(t)), t
}

// Interval is a closed parameter range [Lo, Hi]. An interval with Lo > Hi is
// empty.
type Interval struct {
	Lo, Hi float64
}

// Empty reports whether the interval contains no values.
func (iv Interval) Empty() bool {
	return iv.Lo > iv.Hi
}

// Intersect returns the overlap of two intervals.
func (iv Interval) Intersect(o Interval) Interval {
	return Interval{Lo: math.Max(iv.Lo, o.Lo), Hi: math.Min(iv.Hi, o.Hi)}
}

// Contains reports whether t lies inside the interval.
func (iv Interval) Contains(t float64) bool {
	return !iv.Empty() && t >= iv.Lo && t <= iv.Hi
}

// Clamp returns t limited to the interval. The interval must not be empty.
func (iv Interval) Clamp(t float64) float64 {
	return math.Max(iv.Lo, math.Min(iv.Hi, t))
}

// LineCircle solves |origin + t*dir - center| = r for t and returns the
// parameter range inside the circle. ok is false when the line misses.
func LineCircle(origin, dir, center v2.Vec, r float64) (Interval, bool) {
	a := dir.Dot(dir)
	if a < Epsilon {
		return Interval{Lo: 1, Hi: 0}, false
	}
	oc := origin.Sub(center)
	b := 2 * oc.Dot(dir)
	c := oc.Dot(oc) - r*r
	disc := b*b - 4*a*c
	if disc < 0 {
		return Interval{Lo: 1, Hi: 0}, false
	}
	sq := math.Sqrt(disc)
	return Interval{Lo: (-b - sq) / (2 * a), Hi: (-b + sq) / (2 * a)}, true
}

// SegmentCircle returns the parameters in [0,1], ascending, at which segment
// ab crosses the circle of radius r around center.
func SegmentCircle(a, b, center v2.Vec, r float64) []float64 {
	iv, ok := LineCircle(a, b.Sub(a), center, r)
	if !ok {
		return nil
	}
	var ts []float64
	for _, t := range []float64{iv.Lo, iv.Hi} {
		if t >= 0 && t <= 1 {
			if len(ts) == 1 && math.Abs(ts[0]-t) < Epsilon {
				continue
			}
			ts = append(ts, t)
		}
	}
	return ts
}

// LineSegment intersects the infinite line origin + t*dir with segment ab.
// It returns the line parameter t and the segment parameter u in [0,1].
func LineSegment(origin, dir, a, b v2.Vec) (t, u float64, ok bool) {
	ab := b.Sub(a)
	denom := Cross2(dir, ab)
	if math.Abs(denom) < Epsilon {
		return 0, 0, false
	}
	ao := a.Sub(origin)
	t = Cross2(ao, ab) / denom
	u = Cross2(ao, dir) / denom
	if u < -Epsilon || u > 1+Epsilon {
		return 0, 0, false
	}
	return t, math.Max(0, math.Min(1, u)), true
}
