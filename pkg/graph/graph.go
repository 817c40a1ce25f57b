// Package graph turns a template into renderable runtime geometry. Build
// produces a Thing: one surface and outline per facet, one connector quad
// per physical link, and the group that moves them together. The engine
// builds three Things from the same template (the prime object and two fold
// previews), so building is idempotent and never touches the template.
package graph

import (
	"fmt"

	"github.com/chazu/crease/pkg/geom"
	"github.com/chazu/crease/pkg/scene"
	"github.com/chazu/crease/pkg/template"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Variant selects the clip plane and default visibility of a Thing.
type Variant int

const (
	Prime Variant = iota // interactive object, front clip plane
	Copy                 // mirrored flap preview, back clip plane
	Copy2                // unclipped preview of the facets that stay put
)

func (v Variant) String() string {
	switch v {
	case Prime:
		return "prime"
	case Copy:
		return "copy"
	case Copy2:
		return "copy2"
	default:
		return fmt.Sprintf("Variant(%d)", int(v))
	}
}

// Options controls runtime geometry.
type Options struct {
	LayerThickness float64
}

// DefaultLayerThickness is used when Options.LayerThickness is not positive.
const DefaultLayerThickness = 0.02

// Facet is the runtime form of one FacetTemplate.
type Facet struct {
	Index     int
	Ref       template.FacetRef
	Vertices2 []v2.Vec // template space
	Outline2  []v2.Vec // stack plane, placement applied
	Vertices3 []v3.Vec // thing-local space, z = layer * thickness
	Normal    v3.Vec   // front normal, -z for mirrored placements
	Surface   *scene.Surface
	Outline   *scene.Line
}

// Z returns the height of the facet plane.
func (f *Facet) Z() float64 {
	return f.Vertices3[0].Z
}

// SetVisible shows or hides the facet surface and outline together.
func (f *Facet) SetVisible(on bool) {
	f.Surface.Visible = on
	f.Outline.Visible = on
}

// Edge is a connector wall between two linked facet edges.
type Edge struct {
	Index   int
	Facets  [2]int // source, target facet index
	Sides   [2]int // edge index within source, target
	Link    template.Link
	Corners [4]v3.Vec // source a0, a1, then target corners above a1, a0
	Height  float64
	Surface *scene.Surface
}

// Thing is a complete runtime instantiation of a template.
type Thing struct {
	Variant  Variant
	Template *template.Template
	Graph    *Graph
	Options  Options
	Group    *scene.Group
	Facets   []*Facet
	Edges    []*Edge

	bySurface map[*scene.Surface]*Facet
}

// Build instantiates t. The clip pair is shared by reference: prime surfaces
// hold the front plane, copy surfaces the back plane and copy2 surfaces
// neither. Copy and Copy2 start hidden. A malformed template is an error.
func Build(t *template.Template, opts Options, clip scene.ClipPair, variant Variant) (*Thing, error) {
	g, err := Index(t)
	if err != nil {
		return nil, err
	}
	if opts.LayerThickness <= 0 {
		opts.LayerThickness = DefaultLayerThickness
	}

	var clipSet scene.ClipSet
	switch variant {
	case Prime:
		clipSet = scene.ClipSet{clip.Front}
	case Copy:
		clipSet = scene.ClipSet{clip.Back}
	}

	th := &Thing{
		Variant:   variant,
		Template:  t,
		Graph:     g,
		Options:   opts,
		Group:     scene.NewGroup(fmt.Sprintf("%s/%s", t.Name, variant)),
		bySurface: make(map[*scene.Surface]*Facet),
	}
	th.Group.Visible = variant == Prime

	for i := 0; i < g.FacetCount(); i++ {
		ref := g.Ref(i)
		ft, _ := t.Facet(ref)
		f := buildFacet(i, ref, ft, opts.LayerThickness)
		f.Surface.Clip = clipSet
		f.Outline.Clip = clipSet
		th.Group.AddSurface(f.Surface)
		th.Group.AddLine(f.Outline)
		th.Facets = append(th.Facets, f)
		th.bySurface[f.Surface] = f
	}

	for ci, e := range g.edges {
		edge := buildEdge(ci, e, th.Facets)
		edge.Surface.Clip = clipSet
		th.Group.AddSurface(edge.Surface)
		th.Edges = append(th.Edges, edge)
	}
	return th, nil
}

func buildFacet(i int, ref template.FacetRef, ft *template.FacetTemplate, thickness float64) *Facet {
	z := float64(ref.Layer) * thickness
	outline := ft.World()
	pts := make([]v3.Vec, len(outline))
	for j, p := range outline {
		pts[j] = geom.Lift(p, z)
	}
	normal := v3.Vec{Z: 1}
	if ft.Placement.Mirrored() {
		normal = v3.Vec{Z: -1}
	}
	name := ref.String()
	return &Facet{
		Index:     i,
		Ref:       ref,
		Vertices2: append([]v2.Vec(nil), ft.Vertices...),
		Outline2:  outline,
		Vertices3: pts,
		Normal:    normal,
		Surface:   scene.NewSurface(name, scene.KindFacet, i, pts, normal),
		Outline:   &scene.Line{Name: name, Points: pts, Closed: true, Visible: true},
	}
}

// buildEdge spans the source edge and the target edge. Each target corner is
// paired with the nearer source corner so the quad never self-intersects,
// whichever direction the two facets traverse the shared boundary.
func buildEdge(ci int, e edgeEntry, facets []*Facet) *Edge {
	src, dst := facets[e.facets[0]], facets[e.facets[1]]
	a0, a1 := geom.Edge(src.Outline2, e.sides[0])
	b0, b1 := geom.Edge(dst.Outline2, e.sides[1])
	if geom.Dist2(a0, b0)+geom.Dist2(a1, b1) > geom.Dist2(a0, b1)+geom.Dist2(a1, b0) {
		b0, b1 = b1, b0
	}
	z0, z1 := src.Z(), dst.Z()
	corners := [4]v3.Vec{geom.Lift(a0, z0), geom.Lift(a1, z0), geom.Lift(b1, z1), geom.Lift(b0, z1)}
	name := fmt.Sprintf("E%d", ci)
	return &Edge{
		Index:   ci,
		Facets:  e.facets,
		Sides:   e.sides,
		Link:    e.link,
		Corners: corners,
		Height:  z1 - z0,
		Surface: scene.NewSurface(name, scene.KindConnector, ci, corners[:], geom.PolygonNormal(corners[:])),
	}
}

// FacetOf maps a surface of this Thing back to its facet.
func (t *Thing) FacetOf(s *scene.Surface) (*Facet, bool) {
	f, ok := t.bySurface[s]
	return f, ok
}

// Surfaces returns the facet surfaces, the pickable part of a Thing.
func (t *Thing) Surfaces() []*scene.Surface {
	out := make([]*scene.Surface, len(t.Facets))
	for i, f := range t.Facets {
		out[i] = f.Surface
	}
	return out
}

// SetVisible shows or hides the whole Thing.
func (t *Thing) SetVisible(on bool) {
	t.Group.Visible = on
}

// ShowAll makes every facet and edge visible.
func (t *Thing) ShowAll() {
	for _, f := range t.Facets {
		f.SetVisible(true)
	}
	for _, e := range t.Edges {
		e.Surface.Visible = true
	}
}

// ShowPartition shows the facets whose membership in active equals side and
// the edges whose two facets both do, and hides everything else.
func (t *Thing) ShowPartition(active map[int]bool, side bool) {
	for _, f := range t.Facets {
		f.SetVisible(active[f.Index] == side)
	}
	for _, e := range t.Edges {
		e.Surface.Visible = active[e.Facets[0]] == side && active[e.Facets[1]] == side
	}
}
