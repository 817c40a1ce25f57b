package geom

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Ray is a half line. Dir does not need to be unit length, but distances
// reported by the intersection helpers are in units of Dir.
type Ray struct {
	Origin v3.Vec
	Dir    v3.Vec
}

// At returns the point at parameter t.
func (r Ray) At(t float64) v3.Vec {
	return r.Origin.Add(r.Dir.MulScalar(t))
}

// Transform maps the ray through m. The direction is transformed as the
// difference of two transformed points so m may contain translation.
func (r Ray) Transform(m sdf.M44) Ray {
	o := m.MulPosition(r.Origin)
	e := m.MulPosition(r.Origin.Add(r.Dir))
	return Ray{Origin: o, Dir: e.Sub(o)}
}

// IntersectTriangle implements the Möller–Trumbore test. It returns the ray
// parameter of the hit; hits behind the origin are rejected.
func (r Ray) IntersectTriangle(a, b, c v3.Vec) (float64, bool) {
	e1 := b.Sub(a)
	e2 := c.Sub(a)
	h := r.Dir.Cross(e2)
	det := e1.Dot(h)
	if math.Abs(det) < Epsilon {
		return 0, false
	}
	inv := 1 / det
	s := r.Origin.Sub(a)
	u := inv * s.Dot(h)
	if u < -Epsilon || u > 1+Epsilon {
		return 0, false
	}
	q := s.Cross(e1)
	v := inv * r.Dir.Dot(q)
	if v < -Epsilon || u+v > 1+Epsilon {
		return 0, false
	}
	t := inv * e2.Dot(q)
	if t <= Epsilon {
		return 0, false
	}
	return t, true
}

// IntersectPlane returns the ray parameter where the ray meets the plane.
func (r Ray) IntersectPlane(p Plane) (float64, bool) {
	denom := p.Normal.Dot(r.Dir)
	if math.Abs(denom) < Epsilon {
		return 0, false
	}
	t := -(p.Normal.Dot(r.Origin) + p.Constant) / denom
	if t <= Epsilon {
		return 0, false
	}
	return t, true
}

// Plane is the set of points p with Normal·p + Constant = 0. Points with a
// positive signed distance are on the front side.
type Plane struct {
	Normal   v3.Vec
	Constant float64
}

// PlaneFromPoint returns the plane with the given unit normal through p.
func PlaneFromPoint(normal, p v3.Vec) Plane {
	return Plane{Normal: normal, Constant: -normal.Dot(p)}
}

// Distance is the signed distance of p from the plane.
func (p Plane) Distance(q v3.Vec) float64 {
	return p.Normal.Dot(q) + p.Constant
}

// Negate flips the plane so front and back swap.
func (p Plane) Negate() Plane {
	return Plane{Normal: p.Normal.MulScalar(-1), Constant: -p.Constant}
}

// ClipPolygon keeps the part of a convex polygon on the front side of the
// plane (Sutherland–Hodgman).
func ClipPolygon(poly []v3.Vec, p Plane) []v3.Vec {
	if len(poly) == 0 {
		return nil
	}
	out := make([]v3.Vec, 0, len(poly)+1)
	prev := poly[len(poly)-1]
	dPrev := p.Distance(prev)
	for _, cur := range poly {
		dCur := p.Distance(cur)
		if dCur >= 0 {
			if dPrev < 0 {
				out = append(out, crossing(prev, cur, dPrev, dCur))
			}
			out = append(out, cur)
		} else if dPrev >= 0 {
			out = append(out, crossing(prev, cur, dPrev, dCur))
		}
		prev, dPrev = cur, dCur
	}
	return out
}

// ClipPolyline keeps the parts of an open or closed polyline on the front
// side of the plane, returned as separate runs.
func ClipPolyline(line []v3.Vec, closed bool, p Plane) [][]v3.Vec {
	n := len(line)
	segs := n - 1
	if closed {
		segs = n
	}
	var runs [][]v3.Vec
	var run []v3.Vec
	flush := func() {
		if len(run) > 1 {
			runs = append(runs, run)
		}
		run = nil
	}
	for i := 0; i < segs; i++ {
		a, b := line[i], line[(i+1)%n]
		da, db := p.Distance(a), p.Distance(b)
		switch {
		case da >= 0 && db >= 0:
			if len(run) == 0 {
				run = append(run, a)
			}
			run = append(run, b)
		case da >= 0:
			if len(run) == 0 {
				run = append(run, a)
			}
			run = append(run, crossing(a, b, da, db))
			flush()
		case db >= 0:
			flush()
			run = append(run, crossing(a, b, da, db), b)
		default:
			flush()
		}
	}
	flush()
	return runs
}

func crossing(a, b v3.Vec, da, db float64) v3.Vec {
	t := da / (da - db)
	return a.Add(b.Sub(a).MulScalar(t))
}

// PolygonNormal returns the unit normal of a planar polygon by Newell's
// method. The zero vector is returned for degenerate input.
func PolygonNormal(poly []v3.Vec) v3.Vec {
	var n v3.Vec
	for i := range poly {
		a, b := poly[i], poly[(i+1)%len(poly)]
		n.X += (a.Y - b.Y) * (a.Z + b.Z)
		n.Y += (a.Z - b.Z) * (a.X + b.X)
		n.Z += (a.X - b.X) * (a.Y + b.Y)
	}
	if n.Length() < Epsilon {
		return v3.Vec{}
	}
	return n.Normalize()
}
