package tessellate_test

import (
	"math"
	"testing"

	"github.com/chazu/crease/pkg/kernel"
	"github.com/chazu/crease/pkg/kernel/sdfx"
	"github.com/chazu/crease/pkg/tessellate"
	"github.com/chazu/crease/pkg/template"
	v2 "github.com/deadsy/sdfx/vec/v2"
)

// newKernel returns a coarse sdfx kernel so tests stay quick.
func newKernel() kernel.Kernel {
	return sdfx.NewWithCells(40)
}

// zRange returns the lowest and highest vertex z of m.
func zRange(m *kernel.Mesh) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for i := 0; i < m.VertexCount(); i++ {
		z := m.Vertex(i).Z
		lo = math.Min(lo, z)
		hi = math.Max(hi, z)
	}
	return lo, hi
}

// xRange returns the lowest and highest vertex x of m.
func xRange(m *kernel.Mesh) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for i := 0; i < m.VertexCount(); i++ {
		x := m.Vertex(i).X
		lo = math.Min(lo, x)
		hi = math.Max(hi, x)
	}
	return lo, hi
}

func TestNilTemplate(t *testing.T) {
	meshes, err := tessellate.Tessellate(nil, newKernel(), tessellate.Options{})
	if err != nil || meshes != nil {
		t.Errorf("Tessellate(nil) = %v, %v", meshes, err)
	}
}

func TestOneMeshPerFacet(t *testing.T) {
	tests := []struct {
		name  string
		tmpl  *template.Template
		parts []string
	}{
		{"letter", template.Letter(), []string{"L0F0"}},
		{"booklet", template.Booklet(), []string{"L0F0", "L1F0"}},
		{"trifold", template.TriFold(), []string{"L0F0", "L0F1", "L0F2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meshes, err := tessellate.Tessellate(tt.tmpl, newKernel(), tessellate.Options{LayerThickness: 1})
			if err != nil {
				t.Fatal(err)
			}
			if len(meshes) != len(tt.parts) {
				t.Fatalf("got %d meshes, want %d", len(meshes), len(tt.parts))
			}
			for i, m := range meshes {
				if m.PartName != tt.parts[i] {
					t.Errorf("mesh %d part = %q, want %q", i, m.PartName, tt.parts[i])
				}
				if m.IsEmpty() {
					t.Errorf("mesh %s is empty", m.PartName)
				}
			}
		})
	}
}

func TestSlabsSitOnTheirLayer(t *testing.T) {
	meshes, err := tessellate.Tessellate(template.Booklet(), newKernel(), tessellate.Options{
		LayerThickness: 1,
		SlabRatio:      0.5,
	})
	if err != nil {
		t.Fatal(err)
	}
	const tol = 0.05
	for i, m := range meshes {
		lo, hi := zRange(m)
		if math.Abs(lo-float64(i)) > tol || math.Abs(hi-float64(i)-0.5) > tol {
			t.Errorf("%s spans z [%g, %g], want [%d, %g]", m.PartName, lo, hi, i, float64(i)+0.5)
		}
	}
}

func TestMinSlabWidensPitch(t *testing.T) {
	meshes, err := tessellate.Tessellate(template.Booklet(), newKernel(), tessellate.Options{
		LayerThickness: 0.02,
		SlabRatio:      0.5,
		MinSlab:        0.5,
	})
	if err != nil {
		t.Fatal(err)
	}
	const tol = 0.05
	lo, hi := zRange(meshes[1])
	if math.Abs(lo-1) > tol || math.Abs(hi-1.5) > tol {
		t.Errorf("upper slab spans z [%g, %g], want [1, 1.5]", lo, hi)
	}
}

func TestPlacementApplied(t *testing.T) {
	tmpl := &template.Template{
		Name: "shifted",
		Layers: []template.Layer{{{
			Vertices:  []v2.Vec{{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 2, Y: 2}, {X: 0, Y: 2}},
			Links:     make([]*template.Link, 4),
			Placement: template.Placement{X: 10},
		}}},
	}
	meshes, err := tessellate.Tessellate(tmpl, newKernel(), tessellate.Options{LayerThickness: 1})
	if err != nil {
		t.Fatal(err)
	}
	lo, hi := xRange(meshes[0])
	if math.Abs(lo-10) > 0.1 || math.Abs(hi-12) > 0.1 {
		t.Errorf("slab spans x [%g, %g], want [10, 12]", lo, hi)
	}
}

func TestMalformedTemplate(t *testing.T) {
	tmpl := template.Letter()
	tmpl.Layers[0][0].Links = nil
	if _, err := tessellate.Tessellate(tmpl, newKernel(), tessellate.Options{}); err == nil {
		t.Error("expected error for a facet without link slots")
	}
}

func TestTessellateDoesNotMutate(t *testing.T) {
	tmpl := template.ZFold()
	if _, err := tessellate.Tessellate(tmpl, newKernel(), tessellate.Options{LayerThickness: 1}); err != nil {
		t.Fatal(err)
	}
	fresh := template.ZFold()
	for li := range fresh.Layers {
		for fi := range fresh.Layers[li] {
			if tmpl.Layers[li][fi].Placement != fresh.Layers[li][fi].Placement {
				t.Errorf("placement of L%dF%d changed", li, fi)
			}
		}
	}
}
