package graph

import (
	"fmt"

	"github.com/chazu/crease/pkg/template"
)

// Neighbor is one entry of a facet's adjacency list.
type Neighbor struct {
	Edge        int // boundary edge index within the facet
	Facet       int // flattened index of the facet across the link
	Connector   int // index into Graph edges / Thing.Edges
	LayerOffset int // layer distance to the neighbour, signed from this facet
}

// Graph holds the lookup tables derived from a template: facet index to
// template ref and back, edge index to facet pair, and per-facet adjacency.
// It is built once per template and never changes.
type Graph struct {
	refs  []template.FacetRef
	index map[template.FacetRef]int
	edges []edgeEntry
	adj   [][]Neighbor
}

type edgeEntry struct {
	facets [2]int // source, target
	sides  [2]int // edge index within source, target
	link   template.Link
}

// Index validates the template and builds its lookup tables. Links with a
// negative layer offset are skipped. A same-layer crease declared from both
// sides is registered once, from the side with the lower facet index.
func Index(t *template.Template) (*Graph, error) {
	if err := template.Check(t); err != nil {
		return nil, fmt.Errorf("graph: %w", err)
	}

	g := &Graph{
		refs:  t.Refs(),
		index: make(map[template.FacetRef]int),
	}
	for i, ref := range g.refs {
		g.index[ref] = i
	}
	g.adj = make([][]Neighbor, len(g.refs))

	seen := make(map[[2]int]bool)
	for src, ref := range g.refs {
		f, _ := t.Facet(ref)
		for ei, link := range f.Links {
			if link == nil || link.LayerOffset < 0 {
				continue
			}
			_, tref, ok := t.Target(ref.Layer, link)
			if !ok {
				return nil, fmt.Errorf("graph: facet %s edge %d: unresolved link", ref, ei)
			}
			dst := g.index[tref]
			if seen[[2]int{src, ei}] {
				continue
			}
			seen[[2]int{src, ei}] = true
			seen[[2]int{dst, link.Edge}] = true

			ci := len(g.edges)
			g.edges = append(g.edges, edgeEntry{
				facets: [2]int{src, dst},
				sides:  [2]int{ei, link.Edge},
				link:   *link,
			})
			g.adj[src] = append(g.adj[src], Neighbor{Edge: ei, Facet: dst, Connector: ci, LayerOffset: link.LayerOffset})
			g.adj[dst] = append(g.adj[dst], Neighbor{Edge: link.Edge, Facet: src, Connector: ci, LayerOffset: -link.LayerOffset})
		}
	}
	return g, nil
}

// FacetCount returns the number of facets.
func (g *Graph) FacetCount() int {
	return len(g.refs)
}

// Ref maps a facet index to its template coordinate.
func (g *Graph) Ref(i int) template.FacetRef {
	return g.refs[i]
}

// FacetIndex maps a template coordinate to a facet index.
func (g *Graph) FacetIndex(ref template.FacetRef) (int, bool) {
	i, ok := g.index[ref]
	return i, ok
}

// EdgeCount returns the number of connector edges.
func (g *Graph) EdgeCount() int {
	return len(g.edges)
}

// EdgeFacets returns the source and target facet of edge e.
func (g *Graph) EdgeFacets(e int) [2]int {
	return g.edges[e].facets
}

// Neighbors returns the adjacency list of facet i.
func (g *Graph) Neighbors(i int) []Neighbor {
	return g.adj[i]
}

// Reach flood-fills from start across links accepted by follow and returns
// the reached facets in breadth-first order, start first.
func (g *Graph) Reach(start int, follow func(Neighbor) bool) []int {
	visited := map[int]bool{start: true}
	order := []int{start}
	for q := 0; q < len(order); q++ {
		for _, n := range g.adj[order[q]] {
			if visited[n.Facet] || (follow != nil && !follow(n)) {
				continue
			}
			visited[n.Facet] = true
			order = append(order, n.Facet)
		}
	}
	return order
}

// LayerRange returns the lowest and highest layer holding a facet.
func (g *Graph) LayerRange() (lo, hi int) {
	if len(g.refs) == 0 {
		return 0, 0
	}
	lo, hi = g.refs[0].Layer, g.refs[0].Layer
	for _, r := range g.refs {
		lo = min(lo, r.Layer)
		hi = max(hi, r.Layer)
	}
	return lo, hi
}
