// Package tessellate turns a flat template into printable geometry using a
// geometry kernel. One mesh is produced per facet: its placed outline
// extruded to a thin slab and lifted to its layer height.
package tessellate

import (
	"fmt"

	"github.com/chazu/crease/pkg/graph"
	"github.com/chazu/crease/pkg/kernel"
	"github.com/chazu/crease/pkg/template"
)

// DefaultSlabRatio leaves an air gap between stacked slabs so neighbouring
// layers stay separate parts.
const DefaultSlabRatio = 0.5

// Options controls slab sizing.
type Options struct {
	LayerThickness float64
	// SlabRatio is the slab thickness as a fraction of LayerThickness.
	SlabRatio float64
	// MinSlab thickens slabs the kernel could not otherwise resolve. The
	// layer pitch grows with it so slabs never touch.
	MinSlab float64
}

func (o Options) withDefaults() Options {
	if o.LayerThickness <= 0 {
		o.LayerThickness = graph.DefaultLayerThickness
	}
	if o.SlabRatio <= 0 || o.SlabRatio > 1 {
		o.SlabRatio = DefaultSlabRatio
	}
	if o.MinSlab < 0 {
		o.MinSlab = 0
	}
	return o
}

// slab returns the slab thickness and the distance between layers.
func (o Options) slab() (thickness, pitch float64) {
	thickness = o.LayerThickness * o.SlabRatio
	if thickness >= o.MinSlab {
		return thickness, o.LayerThickness
	}
	return o.MinSlab, o.MinSlab / o.SlabRatio
}

// Tessellate produces one triangle mesh per facet of t, in stack order. The
// tessellator is read-only and never mutates the template.
func Tessellate(t *template.Template, k kernel.Kernel, opts Options) ([]*kernel.Mesh, error) {
	if t == nil {
		return nil, nil
	}
	if err := template.Check(t); err != nil {
		return nil, fmt.Errorf("tessellate: %w", err)
	}
	opts = opts.withDefaults()

	meshes := make([]*kernel.Mesh, 0, t.FacetCount())
	for _, ref := range t.Refs() {
		f, _ := t.Facet(ref)
		mesh, err := facetMesh(k, ref, f, opts)
		if err != nil {
			return nil, fmt.Errorf("tessellate: facet %v: %w", ref, err)
		}
		meshes = append(meshes, mesh)
	}
	return meshes, nil
}

// facetMesh builds the slab for one facet.
func facetMesh(k kernel.Kernel, ref template.FacetRef, f *template.FacetTemplate, opts Options) (*kernel.Mesh, error) {
	world := f.World()
	outline := make([][2]float64, len(world))
	for i, p := range world {
		outline[i] = [2]float64{p.X, p.Y}
	}

	thickness, pitch := opts.slab()
	solid, err := k.Slab(outline, thickness)
	if err != nil {
		return nil, err
	}
	if z := float64(ref.Layer) * pitch; z != 0 {
		solid = k.Translate(solid, 0, 0, z)
	}

	mesh, err := k.ToMesh(solid)
	if err != nil {
		return nil, fmt.Errorf("ToMesh failed: %w", err)
	}
	mesh.PartName = ref.String()
	return mesh, nil
}
