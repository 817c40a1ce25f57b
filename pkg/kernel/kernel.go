// Package kernel defines the abstract solid kernel used to export folded
// paper as printable geometry, plus the flat triangle Mesh shared by the
// scene and the hosts. Implementations (sdfx) live in subpackages so the
// rest of the system never touches a backend directly.
package kernel

// Solid is an opaque handle to a geometry kernel solid.
// Implementations wrap their internal representation.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// Kernel is the abstract geometry kernel interface.
type Kernel interface {
	// Slab extrudes a closed outline in the XY plane to the given
	// thickness, spanning z in [0, thickness].
	Slab(outline [][2]float64, thickness float64) (Solid, error)

	Union(a, b Solid) Solid
	Translate(s Solid, x, y, z float64) Solid

	// Mesh output
	ToMesh(s Solid) (*Mesh, error)
}
