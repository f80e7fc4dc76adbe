// Package kernel defines the abstract geometry kernel used to author tile
// meshes. A kernel builds solids from primitives and booleans and meshes them
// inside a fixed tile volume centred on the origin.
package kernel

// Solid is a kernel-owned handle. Only the kernel that built a solid may
// consume it.
type Solid interface {
	// BoundingBox returns the axis-aligned bounds in tile space.
	BoundingBox() (min, max [3]float64)
}

// Builder constructs solids. Primitives are centred on the origin and
// cylinders run along Z. Rotate takes X, Y, Z angles in degrees, applied in
// that order.
type Builder interface {
	Box(x, y, z float64) Solid
	Cylinder(height, radius float64, segments int) Solid

	Union(a, b Solid) Solid
	Difference(a, b Solid) Solid
	Intersection(a, b Solid) Solid

	Translate(s Solid, x, y, z float64) Solid
	Rotate(s Solid, x, y, z float64) Solid
}

// Mesher turns a solid into the triangle mesh of one tile.
type Mesher interface {
	// Clip trims s to the tile volume of the given size centred on the
	// origin. The clipped solid reports the tile volume as its bounds so
	// every tile is sampled on the same lattice.
	Clip(s Solid, size [3]float64) Solid

	// ToMesh triangulates s. Faces lying on the tile volume are kept;
	// OpenFaces strips them.
	ToMesh(s Solid) (*Mesh, error)
}

// Kernel is a complete geometry backend.
type Kernel interface {
	Builder
	Mesher
}
