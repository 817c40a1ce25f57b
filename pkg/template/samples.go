package template

import (
	"math"

	v2 "github.com/deadsy/sdfx/vec/v2"
)

// Letter is a single US-letter sheet, 8.5 by 11, centred on the origin.
// Edge 0 is the top edge.
func Letter() *Template {
	return &Template{
		Name: "letter",
		Layers: []Layer{{
			{Vertices: rect(8.5, 11), Links: make([]*Link, 4)},
		}},
	}
}

// Booklet is two stacked sheets bound along their left edges by a one-layer
// connector.
func Booklet() *Template {
	return &Template{
		Name: "booklet",
		Layers: []Layer{
			{{Vertices: rect(6, 8), Links: []*Link{nil, nil, nil, {LayerOffset: 1, Facet: 0, Edge: 3}}}},
			{{Vertices: rect(6, 8), Links: []*Link{nil, nil, nil, {LayerOffset: -1, Facet: 0, Edge: 3}}}},
		},
	}
}

// TriFold is one strip of three panels lying flat on a single layer and
// joined by two same-layer creases.
func TriFold() *Template {
	p := rect(4, 9)
	return &Template{
		Name: "trifold",
		Layers: []Layer{{
			{Vertices: p, Links: []*Link{nil, {Facet: 1, Edge: 3}, nil, nil}, Placement: Placement{X: -4}},
			{Vertices: p, Links: []*Link{nil, {Facet: 2, Edge: 3}, nil, {Facet: 0, Edge: 1}}},
			{Vertices: p, Links: []*Link{nil, nil, nil, {Facet: 1, Edge: 1}}, Placement: Placement{X: 4}},
		}},
	}
}

// ZFold is a strip folded into three stacked panels. The middle panel is
// flipped, so it is placed with a mirrored basis that swaps its left and
// right edges in the stack plane.
func ZFold() *Template {
	p := rect(4, 6)
	return &Template{
		Name: "zfold",
		Layers: []Layer{
			{{Vertices: p, Links: []*Link{nil, {LayerOffset: 1, Facet: 0, Edge: 3}, nil, nil}}},
			{{Vertices: p, Links: []*Link{nil, {LayerOffset: 1, Facet: 0, Edge: 3}, nil, {LayerOffset: -1, Facet: 0, Edge: 1}},
				Placement: Placement{Rotation: math.Copysign(math.Pi, -1)}}},
			{{Vertices: p, Links: []*Link{nil, nil, nil, {LayerOffset: -1, Facet: 0, Edge: 1}}}},
		},
	}
}

// rect returns a w by h rectangle centred on the origin. Edges run top,
// right, bottom, left.
func rect(w, h float64) []v2.Vec {
	x, y := w/2, h/2
	return []v2.Vec{{X: -x, Y: y}, {X: x, Y: y}, {X: x, Y: -y}, {X: -x, Y: -y}}
}
