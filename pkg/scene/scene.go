// Package scene is the minimal rendering substrate the fold engine draws
// into: rigid groups of flat surfaces and outlines, shared clip-plane sets,
// a perspective camera with orbit controls, and ray casting. It does not
// rasterize anything itself; a Renderer turns a Scene into pixels.
package scene

import (
	"fmt"
	"math"

	"github.com/chazu/crease/pkg/geom"
	"github.com/chazu/crease/pkg/kernel"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Kind tags what a surface represents so renderers can style it.
type Kind int

const (
	KindFacet Kind = iota
	KindConnector
	KindCrease
)

func (k Kind) String() string {
	switch k {
	case KindFacet:
		return "facet"
	case KindConnector:
		return "connector"
	case KindCrease:
		return "crease"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ClipSet is a list of planes shared by reference between surfaces. Moving a
// plane moves the clip of every surface holding the set. Planes are
// evaluated in the owning group's local frame; the front side is kept.
type ClipSet []*geom.Plane

// Keeps reports whether p survives every plane.
func (c ClipSet) Keeps(p v3.Vec) bool {
	for _, pl := range c {
		if pl.Distance(p) < 0 {
			return false
		}
	}
	return true
}

// Polygon clips a convex polygon by every plane.
func (c ClipSet) Polygon(poly []v3.Vec) []v3.Vec {
	for _, pl := range c {
		poly = geom.ClipPolygon(poly, *pl)
		if len(poly) == 0 {
			return nil
		}
	}
	return poly
}

// Polyline clips a polyline by every plane and returns the surviving runs.
func (c ClipSet) Polyline(line []v3.Vec, closed bool) [][]v3.Vec {
	runs := [][]v3.Vec{line}
	for i, pl := range c {
		isClosed := closed && i == 0
		var next [][]v3.Vec
		for _, r := range runs {
			next = append(next, geom.ClipPolyline(r, isClosed, *pl)...)
		}
		runs = next
	}
	if len(c) == 0 && closed && len(line) > 0 {
		return [][]v3.Vec{append(append([]v3.Vec{}, line...), line[0])}
	}
	return runs
}

// ClipPair is one plane and its negation, used to split geometry into the
// two sides of a crease.
type ClipPair struct {
	Front *geom.Plane
	Back  *geom.Plane
}

// NewClipPair returns a disabled pair.
func NewClipPair() ClipPair {
	c := ClipPair{Front: &geom.Plane{Normal: v3.Vec{X: 1}}, Back: &geom.Plane{Normal: v3.Vec{X: -1}}}
	c.Disable(0)
	return c
}

// Set moves Front to p and Back to its negation.
func (c ClipPair) Set(p geom.Plane) {
	*c.Front = p
	*c.Back = p.Negate()
}

// Disable pushes both constants past radius so that no point within radius
// of the origin is clipped by either plane. Normals are kept.
func (c ClipPair) Disable(radius float64) {
	c.Front.Constant = radius + 1
	c.Back.Constant = radius + 1
}

// Disabled reports whether neither plane clips anything within radius.
func (c ClipPair) Disabled(radius float64) bool {
	return c.Front.Constant > radius && c.Back.Constant > radius
}

// Surface is a flat convex polygon with its triangle mesh.
type Surface struct {
	Name    string
	Kind    Kind
	Index   int      // facet or edge index within the owning Thing
	Points  []v3.Vec // convex loop in the group's local frame
	Normal  v3.Vec   // local front normal
	Mesh    *kernel.Mesh
	Visible bool
	Clip    ClipSet
	group   *Group
}

// NewSurface builds a visible surface and its fan mesh.
func NewSurface(name string, kind Kind, index int, points []v3.Vec, normal v3.Vec) *Surface {
	return &Surface{
		Name:    name,
		Kind:    kind,
		Index:   index,
		Points:  points,
		Normal:  normal,
		Mesh:    kernel.PolygonMesh(name, points, normal),
		Visible: true,
	}
}

// Group returns the owning group, or nil.
func (s *Surface) Group() *Group {
	return s.group
}

// Matrix returns the local-to-world transform.
func (s *Surface) Matrix() sdf.M44 {
	if s.group == nil {
		return sdf.Identity3d()
	}
	return s.group.Matrix
}

// Shown reports whether the surface and its group are visible.
func (s *Surface) Shown() bool {
	return s.Visible && (s.group == nil || s.group.Visible)
}

// WorldPoints returns the polygon in world space.
func (s *Surface) WorldPoints() []v3.Vec {
	return transformAll(s.Matrix(), s.Points)
}

// WorldNormal returns the front normal in world space. Group transforms are
// rigid so a normal maps like a point difference.
func (s *Surface) WorldNormal() v3.Vec {
	return transformDir(s.Matrix(), s.Normal)
}

// ClippedWorldPoints clips the local polygon by the surface's ClipSet and
// returns what remains in world space.
func (s *Surface) ClippedWorldPoints() []v3.Vec {
	return transformAll(s.Matrix(), s.Clip.Polygon(s.Points))
}

// Line is a polyline, usually a facet outline.
type Line struct {
	Name    string
	Points  []v3.Vec
	Closed  bool
	Visible bool
	Clip    ClipSet
	group   *Group
}

// Matrix returns the local-to-world transform.
func (l *Line) Matrix() sdf.M44 {
	if l.group == nil {
		return sdf.Identity3d()
	}
	return l.group.Matrix
}

// Shown reports whether the line and its group are visible.
func (l *Line) Shown() bool {
	return l.Visible && (l.group == nil || l.group.Visible)
}

// ClippedWorldRuns clips the line and returns the surviving runs in world
// space.
func (l *Line) ClippedWorldRuns() [][]v3.Vec {
	runs := l.Clip.Polyline(l.Points, l.Closed)
	m := l.Matrix()
	for i, r := range runs {
		runs[i] = transformAll(m, r)
	}
	return runs
}

// Group applies one rigid transform to a set of surfaces and lines.
type Group struct {
	Name     string
	Matrix   sdf.M44
	Visible  bool
	Surfaces []*Surface
	Lines    []*Line
}

// NewGroup returns a visible group with an identity transform.
func NewGroup(name string) *Group {
	return &Group{Name: name, Matrix: sdf.Identity3d(), Visible: true}
}

// AddSurface attaches s to the group.
func (g *Group) AddSurface(s *Surface) {
	s.group = g
	g.Surfaces = append(g.Surfaces, s)
}

// RemoveSurface detaches s. It is a no-op if s is not in the group.
func (g *Group) RemoveSurface(s *Surface) {
	for i, x := range g.Surfaces {
		if x == s {
			g.Surfaces = append(g.Surfaces[:i], g.Surfaces[i+1:]...)
			s.group = nil
			return
		}
	}
}

// AddLine attaches l to the group.
func (g *Group) AddLine(l *Line) {
	l.group = g
	g.Lines = append(g.Lines, l)
}

// Bounds returns the world-space bounding box of every surface point.
func (g *Group) Bounds() (min, max v3.Vec, ok bool) {
	min = v3.Vec{X: math.Inf(1), Y: math.Inf(1), Z: math.Inf(1)}
	max = v3.Vec{X: math.Inf(-1), Y: math.Inf(-1), Z: math.Inf(-1)}
	for _, s := range g.Surfaces {
		for _, p := range s.WorldPoints() {
			min = v3.Vec{X: math.Min(min.X, p.X), Y: math.Min(min.Y, p.Y), Z: math.Min(min.Z, p.Z)}
			max = v3.Vec{X: math.Max(max.X, p.X), Y: math.Max(max.Y, p.Y), Z: math.Max(max.Z, p.Z)}
			ok = true
		}
	}
	return min, max, ok
}

// Radius returns the largest distance of any local surface point from the
// local origin. Plane constants beyond it clip nothing.
func (g *Group) Radius() float64 {
	r := 0.0
	for _, s := range g.Surfaces {
		for _, p := range s.Points {
			r = math.Max(r, p.Length())
		}
	}
	return r
}

// Scene is everything a Renderer draws for one frame.
type Scene struct {
	Camera *Camera
	groups []*Group
}

// New returns an empty scene viewed through cam.
func New(cam *Camera) *Scene {
	return &Scene{Camera: cam}
}

// Add appends g unless it is already present.
func (sc *Scene) Add(g *Group) {
	for _, x := range sc.groups {
		if x == g {
			return
		}
	}
	sc.groups = append(sc.groups, g)
}

// Remove drops g from the scene.
func (sc *Scene) Remove(g *Group) {
	for i, x := range sc.groups {
		if x == g {
			sc.groups = append(sc.groups[:i], sc.groups[i+1:]...)
			return
		}
	}
}

// Groups returns the groups in draw order.
func (sc *Scene) Groups() []*Group {
	return sc.groups
}

// Renderer draws a scene. Implementations are called once per frame from
// the host's render loop.
type Renderer interface {
	Render(sc *Scene) error
}

// RendererFunc adapts a function to the Renderer interface.
type RendererFunc func(sc *Scene) error

// Render calls f(sc).
func (f RendererFunc) Render(sc *Scene) error {
	return f(sc)
}

func transformAll(m sdf.M44, pts []v3.Vec) []v3.Vec {
	out := make([]v3.Vec, len(pts))
	for i, p := range pts {
		out[i] = m.MulPosition(p)
	}
	return out
}

func transformDir(m sdf.M44, d v3.Vec) v3.Vec {
	return m.MulPosition(d).Sub(m.MulPosition(v3.Vec{}))
}
