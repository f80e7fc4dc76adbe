// Package tessellate walks a tile design graph and produces one triangle
// mesh per tile using a geometry kernel. Each solid is clipped to its tile
// cell and its cap faces stripped, so the cuts through the cell faces are
// left as open boundaries ready for matching.
package tessellate

import (
	"fmt"

	"github.com/chazu/tessera/pkg/graph"
	"github.com/chazu/tessera/pkg/kernel"
	"github.com/chazu/tessera/pkg/logger"
)

// DefaultSegments is the cylinder segment count used when a node leaves
// it unset.
const DefaultSegments = 32

// snapScale sets how close to a cell face, relative to the tile size, a
// vertex must lie to be snapped onto it.
const snapScale = 1e-4

// builder turns graph nodes into kernel solids. Shared nodes are built
// once per tessellation.
type builder struct {
	g     *graph.DesignGraph
	k     kernel.Kernel
	built map[graph.NodeID]kernel.Solid
	path  map[graph.NodeID]bool
}

// Tessellate meshes every tile of g in tile order. Empty tiles yield empty
// meshes. The tessellator is read-only and never mutates the graph.
func Tessellate(g *graph.DesignGraph, k kernel.Kernel) ([]*kernel.Mesh, error) {
	if g == nil {
		return nil, nil
	}
	size := g.Settings.TileSize
	if !size.Positive() {
		return nil, fmt.Errorf("tessellate: tile size (%g, %g, %g) must be positive", size.X, size.Y, size.Z)
	}
	extent := [3]float64{size.X, size.Y, size.Z}
	tol := snapScale * max(size.X, size.Y, size.Z)

	b := &builder{
		g:     g,
		k:     k,
		built: make(map[graph.NodeID]kernel.Solid),
		path:  make(map[graph.NodeID]bool),
	}

	tiles := g.Tiles()
	meshes := make([]*kernel.Mesh, 0, len(tiles))
	for _, tile := range tiles {
		mesh, err := b.tile(tile, extent, tol)
		if err != nil {
			return nil, fmt.Errorf("tessellate: tile %q: %w", tile.Name, err)
		}
		logger.Logger().Debug("tessellate: meshed tile", "tile", mesh.TileName, "triangles", mesh.TriangleCount())
		meshes = append(meshes, mesh)
	}
	return meshes, nil
}

func (b *builder) tile(tile *graph.Node, extent [3]float64, tol float64) (*kernel.Mesh, error) {
	name := tile.Name
	if name == "" {
		name = tile.ID.Short()
	}

	solidNode := b.g.TileSolid(tile)
	if solidNode == nil {
		return &kernel.Mesh{Mode: kernel.Triangles, TileName: name}, nil
	}

	solid, err := b.solid(solidNode)
	if err != nil {
		return nil, err
	}
	mesh, err := b.k.ToMesh(b.k.Clip(solid, extent))
	if err != nil {
		return nil, fmt.Errorf("ToMesh failed: %w", err)
	}

	mesh = kernel.OpenFaces(mesh, extent, tol)
	mesh.TileName = name
	return mesh, nil
}

// solid builds the kernel solid of n.
func (b *builder) solid(n *graph.Node) (kernel.Solid, error) {
	if s, ok := b.built[n.ID]; ok {
		return s, nil
	}
	if b.path[n.ID] {
		return nil, fmt.Errorf("node %s is part of a cycle", n.ID.Short())
	}
	b.path[n.ID] = true
	defer delete(b.path, n.ID)

	var s kernel.Solid
	var err error
	switch n.Kind {
	case graph.NodePrimitive:
		s, err = b.primitive(n)
	case graph.NodeTransform:
		s, err = b.transform(n)
	case graph.NodeBoolean:
		s, err = b.boolean(n)
	default:
		err = fmt.Errorf("node %s: %s nodes cannot be used as solids", n.ID.Short(), n.Kind)
	}
	if err != nil {
		return nil, err
	}
	b.built[n.ID] = s
	return s, nil
}

func (b *builder) primitive(n *graph.Node) (kernel.Solid, error) {
	switch d := n.Data.(type) {
	case graph.BoxData:
		return b.k.Box(d.Size.X, d.Size.Y, d.Size.Z), nil
	case graph.CylinderData:
		seg := d.Segments
		if seg == 0 {
			seg = DefaultSegments
		}
		return b.k.Cylinder(d.Height, d.Radius, seg), nil
	}
	return nil, fmt.Errorf("primitive node %s has unsupported data type %T", n.ID.Short(), n.Data)
}

// transform applies the rotation first, then the translation.
func (b *builder) transform(n *graph.Node) (kernel.Solid, error) {
	td, ok := n.Data.(graph.TransformData)
	if !ok {
		return nil, fmt.Errorf("transform node %s has unexpected data type %T", n.ID.Short(), n.Data)
	}
	children := b.g.Children(n)
	if len(children) != 1 {
		return nil, fmt.Errorf("transform node %s has %d children, want 1", n.ID.Short(), len(children))
	}

	s, err := b.solid(children[0])
	if err != nil {
		return nil, err
	}
	if r := td.Rotation; r != nil && (r.X != 0 || r.Y != 0 || r.Z != 0) {
		s = b.k.Rotate(s, r.X, r.Y, r.Z)
	}
	if t := td.Translation; t != nil && (t.X != 0 || t.Y != 0 || t.Z != 0) {
		s = b.k.Translate(s, t.X, t.Y, t.Z)
	}
	return s, nil
}

// boolean folds the children left to right with the node's operation.
func (b *builder) boolean(n *graph.Node) (kernel.Solid, error) {
	bd, ok := n.Data.(graph.BooleanData)
	if !ok {
		return nil, fmt.Errorf("boolean node %s has unexpected data type %T", n.ID.Short(), n.Data)
	}
	children := b.g.Children(n)
	if len(children) < 2 {
		return nil, fmt.Errorf("%s node %s has %d operands, want at least 2", bd.Op, n.ID.Short(), len(children))
	}

	acc, err := b.solid(children[0])
	if err != nil {
		return nil, err
	}
	for _, c := range children[1:] {
		s, err := b.solid(c)
		if err != nil {
			return nil, err
		}
		switch bd.Op {
		case graph.OpUnion:
			acc = b.k.Union(acc, s)
		case graph.OpDifference:
			acc = b.k.Difference(acc, s)
		case graph.OpIntersection:
			acc = b.k.Intersection(acc, s)
		default:
			return nil, fmt.Errorf("boolean node %s has unknown op %d", n.ID.Short(), int(bd.Op))
		}
	}
	return acc, nil
}
