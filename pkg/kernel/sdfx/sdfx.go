// Package sdfx implements the kernel.Kernel interface using the
// github.com/deadsy/sdfx SDF-based CAD library.
package sdfx

import (
	"fmt"
	"math"

	"github.com/chazu/tessera/pkg/kernel"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Compile-time interface check.
var _ kernel.Kernel = (*SdfxKernel)(nil)

// DefaultMeshCells is the marching cubes resolution along the longest
// axis of the meshed solid.
const DefaultMeshCells = 48

// sdfxSolid wraps an sdf.SDF3 to implement kernel.Solid.
type sdfxSolid struct {
	s sdf.SDF3
}

// BoundingBox returns the axis-aligned bounding box.
func (s *sdfxSolid) BoundingBox() (min, max [3]float64) {
	bb := s.s.BoundingBox()
	min = [3]float64{bb.Min.X, bb.Min.Y, bb.Min.Z}
	max = [3]float64{bb.Max.X, bb.Max.Y, bb.Max.Z}
	return min, max
}

// tileClip is a solid cut to the tile volume and sampled over exactly that
// volume. Outside the tile it is the distance to the tile. Inside s and within
// band of a tile face it is the (negative) distance to the face, so every
// lattice edge crossing a face puts its vertex on the face plane, at the
// lattice position of its inner end. The cut outline then depends only on
// which lattice points lie inside s, and a solid that is symmetric on the
// lattice gets a symmetric outline.
type tileClip struct {
	solid sdf.SDF3
	tile  sdf.SDF3
	band  float64
	bb    sdf.Box3
}

func (c *tileClip) Evaluate(p v3.Vec) float64 {
	d := c.tile.Evaluate(p)
	if d >= 0 {
		return d
	}
	s := c.solid.Evaluate(p)
	if s < 0 && d > -c.band {
		return d
	}
	return math.Max(s, d)
}

func (c *tileClip) BoundingBox() sdf.Box3 {
	return c.bb
}

// SdfxKernel implements kernel.Kernel using sdfx.
type SdfxKernel struct {
	cells int
}

// New returns a new SdfxKernel meshing at DefaultMeshCells.
func New() *SdfxKernel {
	return NewWithCells(DefaultMeshCells)
}

// NewWithCells returns a kernel meshing at the given resolution.
// Non-positive values select DefaultMeshCells.
func NewWithCells(cells int) *SdfxKernel {
	if cells <= 0 {
		cells = DefaultMeshCells
	}
	return &SdfxKernel{cells: cells}
}

// MeshCells reports the marching cubes resolution.
func (k *SdfxKernel) MeshCells() int {
	return k.cells
}

// unwrap extracts the underlying sdf.SDF3 from a kernel.Solid.
func unwrap(s kernel.Solid) sdf.SDF3 {
	return s.(*sdfxSolid).s
}

// wrap creates a kernel.Solid from an sdf.SDF3.
func wrap(s sdf.SDF3) kernel.Solid {
	return &sdfxSolid{s: s}
}

// must wraps the result of an sdf constructor. Invalid dimensions are
// rejected by graph validation before they reach the kernel.
func must(s sdf.SDF3, err error) kernel.Solid {
	if err != nil {
		panic(fmt.Sprintf("sdfx: %v", err))
	}
	return wrap(s)
}

func vec(x, y, z float64) v3.Vec {
	return v3.Vec{X: x, Y: y, Z: z}
}

// Box creates a box with the given dimensions centred on the origin.
func (k *SdfxKernel) Box(x, y, z float64) kernel.Solid {
	return must(sdf.Box3D(vec(x, y, z), 0))
}

// Cylinder creates a Z-aligned cylinder centred on the origin. SDF surfaces
// are smooth, so segments is ignored; the meshing resolution decides.
func (k *SdfxKernel) Cylinder(height, radius float64, _ int) kernel.Solid {
	return must(sdf.Cylinder3D(height, radius, 0))
}

func (k *SdfxKernel) Union(a, b kernel.Solid) kernel.Solid {
	return wrap(sdf.Union3D(unwrap(a), unwrap(b)))
}

func (k *SdfxKernel) Difference(a, b kernel.Solid) kernel.Solid {
	return wrap(sdf.Difference3D(unwrap(a), unwrap(b)))
}

func (k *SdfxKernel) Intersection(a, b kernel.Solid) kernel.Solid {
	return wrap(sdf.Intersect3D(unwrap(a), unwrap(b)))
}

func (k *SdfxKernel) Translate(s kernel.Solid, x, y, z float64) kernel.Solid {
	return wrap(sdf.Transform3D(unwrap(s), sdf.Translate3d(vec(x, y, z))))
}

// Rotate turns s about X, then Y, then Z by the given degrees.
func (k *SdfxKernel) Rotate(s kernel.Solid, x, y, z float64) kernel.Solid {
	rad := func(deg float64) float64 { return deg * math.Pi / 180 }
	m := sdf.RotateZ(rad(z)).Mul(sdf.RotateY(rad(y))).Mul(sdf.RotateX(rad(x)))
	return wrap(sdf.Transform3D(unwrap(s), m))
}

// Clip intersects s with the tile volume and pins its bounds to that volume.
// The face band is three quarters of a mesh cell: marching cubes places the
// last lattice layer inside the tile at most half a cell from each face, and
// the next layer a full cell away.
func (k *SdfxKernel) Clip(s kernel.Solid, size [3]float64) kernel.Solid {
	extent := vec(size[0], size[1], size[2])
	half := extent.MulScalar(0.5)
	return wrap(&tileClip{
		solid: unwrap(s),
		tile:  unwrap(must(sdf.Box3D(extent, 0))),
		band:  0.75 * extent.MaxComponent() / float64(k.cells),
		bb:    sdf.Box3{Min: half.Neg(), Max: half},
	})
}

// ToMesh triangulates s with uniform marching cubes. Each triangle gets its
// own three vertices; consumers weld as needed. Triangles collapsed to a
// line or point, which marching cubes emits where samples are exactly zero,
// are dropped.
func (k *SdfxKernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	triangles := render.ToTriangles(unwrap(s), render.NewMarchingCubesUniform(k.cells))

	m := &kernel.Mesh{
		Vertices: make([]float32, 0, len(triangles)*9),
		Normals:  make([]float32, 0, len(triangles)*9),
		Indices:  make([]uint32, 0, len(triangles)*3),
		Mode:     kernel.Triangles,
	}
	for _, tri := range triangles {
		if tri[0] == tri[1] || tri[1] == tri[2] || tri[2] == tri[0] {
			continue
		}
		n := tri.Normal()
		for _, v := range tri {
			m.Indices = append(m.Indices, uint32(len(m.Vertices)/3))
			m.Vertices = append(m.Vertices, float32(v.X), float32(v.Y), float32(v.Z))
			m.Normals = append(m.Normals, float32(n.X), float32(n.Y), float32(n.Z))
		}
	}
	return m, nil
}
