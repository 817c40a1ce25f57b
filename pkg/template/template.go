// Package template defines the layered paper model that every fold starts
// from. A Template is an ordered stack of layers, each layer an ordered list
// of convex facets. Facets refer to each other through per-edge Links that
// encode where the paper continues, possibly on another layer.
//
// Templates are plain values: the facet-graph builder and the fold engine
// only ever read them.
package template

import (
	"fmt"
	"math"

	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
)

// Link points from one facet edge to the matching edge of another facet.
// The target lives in layer sourceLayer+LayerOffset.
//
//	LayerOffset == 0  same-layer crease, zero-height wall
//	LayerOffset  > 0  connector wall spanning that many layers
//	LayerOffset  < 0  no physical wall; the opposite link declares it
type Link struct {
	LayerOffset int `json:"layerOffset"`
	Facet       int `json:"facet"`
	Edge        int `json:"edge"`
}

// Placement positions a facet in the stack plane. The magnitude of Rotation
// is the angle in radians; a set sign bit (including -0) flips the facet so
// its front faces down the stack.
type Placement struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Rotation float64 `json:"rotation"`
}

// Mirrored reports whether the placement flips the facet.
func (p Placement) Mirrored() bool {
	return math.Signbit(p.Rotation)
}

// Matrix returns the 2D transform T(x,y)·R(|rot|)·S(1,±1).
func (p Placement) Matrix() sdf.M33 {
	m := sdf.Translate2d(v2.Vec{X: p.X, Y: p.Y}).Mul(sdf.Rotate2d(math.Abs(p.Rotation)))
	if p.Mirrored() {
		m = m.Mul(sdf.Scale2d(v2.Vec{X: 1, Y: -1}))
	}
	return m
}

// Apply maps template-space vertices into the stack plane.
func (p Placement) Apply(vs []v2.Vec) []v2.Vec {
	m := p.Matrix()
	out := make([]v2.Vec, len(vs))
	for i, v := range vs {
		out[i] = m.MulPosition(v)
	}
	return out
}

// FacetTemplate is one convex polygon of paper. Links has one slot per edge;
// edge i runs from Vertices[i] to Vertices[(i+1)%n]. A nil slot is a free
// edge.
type FacetTemplate struct {
	Vertices  []v2.Vec  `json:"vertices"`
	Links     []*Link   `json:"links"`
	Placement Placement `json:"placement"`
}

// EdgeCount returns the number of boundary edges.
func (f *FacetTemplate) EdgeCount() int {
	return len(f.Vertices)
}

// World returns the facet outline in the stack plane.
func (f *FacetTemplate) World() []v2.Vec {
	return f.Placement.Apply(f.Vertices)
}

// Layer is one sheet of the stack.
type Layer []FacetTemplate

// Template is the complete layered structure.
type Template struct {
	Name   string  `json:"name"`
	Layers []Layer `json:"layers"`
}

// FacetRef addresses a facet by layer and position within the layer.
type FacetRef struct {
	Layer int `json:"layer"`
	Index int `json:"index"`
}

func (r FacetRef) String() string {
	return fmt.Sprintf("L%dF%d", r.Layer, r.Index)
}

// Facet returns the facet at ref.
func (t *Template) Facet(ref FacetRef) (*FacetTemplate, bool) {
	if ref.Layer < 0 || ref.Layer >= len(t.Layers) {
		return nil, false
	}
	l := t.Layers[ref.Layer]
	if ref.Index < 0 || ref.Index >= len(l) {
		return nil, false
	}
	return &l[ref.Index], true
}

// FacetCount returns the number of facets across all layers.
func (t *Template) FacetCount() int {
	n := 0
	for _, l := range t.Layers {
		n += len(l)
	}
	return n
}

// Refs lists every facet in stack order: layer by layer, then by index.
// This order defines the flattened facet index used at runtime.
func (t *Template) Refs() []FacetRef {
	refs := make([]FacetRef, 0, t.FacetCount())
	for li, l := range t.Layers {
		for fi := range l {
			refs = append(refs, FacetRef{Layer: li, Index: fi})
		}
	}
	return refs
}

// Target resolves a link declared on a facet of layer src.
func (t *Template) Target(src int, l *Link) (*FacetTemplate, FacetRef, bool) {
	ref := FacetRef{Layer: src + l.LayerOffset, Index: l.Facet}
	f, ok := t.Facet(ref)
	if !ok || l.Edge < 0 || l.Edge >= f.EdgeCount() {
		return nil, ref, false
	}
	return f, ref, true
}
