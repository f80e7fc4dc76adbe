package graph

import (
	"fmt"
	"sort"
)

// DefaultTileSize is the tile size used when a script does not set one.
var DefaultTileSize = Vec3{2, 2, 2}

// Settings contains graph-wide settings.
type Settings struct {
	TileSize Vec3 `json:"tile_size"` // world size of one grid cell
}

// DesignGraph is the top-level immutable data structure produced by Lisp evaluation.
// It is never mutated in place; each evaluation produces a new graph.
type DesignGraph struct {
	Nodes     map[NodeID]*Node  `json:"nodes"`
	Roots     []NodeID          `json:"roots"`
	NameIndex map[string]NodeID `json:"name_index"`
	Settings  Settings          `json:"settings"`
	Version   uint64            `json:"version"`
}

// New creates an empty DesignGraph with default settings.
func New() *DesignGraph {
	return &DesignGraph{
		Nodes:     make(map[NodeID]*Node),
		NameIndex: make(map[string]NodeID),
		Settings:  Settings{TileSize: DefaultTileSize},
	}
}

// AddNode adds a node to the graph. It does not check for duplicates.
func (g *DesignGraph) AddNode(n *Node) {
	g.Nodes[n.ID] = n
	if n.Name != "" {
		g.NameIndex[n.Name] = n.ID
	}
}

// AddRoot registers a node ID as a root of the graph.
func (g *DesignGraph) AddRoot(id NodeID) {
	g.Roots = append(g.Roots, id)
}

// Lookup returns the node with the given user-assigned name, or nil.
func (g *DesignGraph) Lookup(name string) *Node {
	id, ok := g.NameIndex[name]
	if !ok {
		return nil
	}
	return g.Nodes[id]
}

// MustLookup returns the node with the given name, or panics.
func (g *DesignGraph) MustLookup(name string) *Node {
	n := g.Lookup(name)
	if n == nil {
		panic(fmt.Sprintf("graph: no node named %q", name))
	}
	return n
}

// Get returns the node with the given ID, or nil.
func (g *DesignGraph) Get(id NodeID) *Node {
	return g.Nodes[id]
}

// Tiles returns the tile nodes ordered by TileData.Index.
func (g *DesignGraph) Tiles() []*Node {
	var tiles []*Node
	for _, n := range g.Nodes {
		if n.Kind == NodeTile {
			tiles = append(tiles, n)
		}
	}
	sort.Slice(tiles, func(i, j int) bool {
		return tileIndex(tiles[i]) < tileIndex(tiles[j])
	})
	return tiles
}

func tileIndex(n *Node) int {
	if td, ok := n.Data.(TileData); ok {
		return td.Index
	}
	return -1
}

// TileSolid returns the solid under a tile node, or nil for an empty tile.
func (g *DesignGraph) TileSolid(tile *Node) *Node {
	if len(tile.Children) == 0 {
		return nil
	}
	return g.Nodes[tile.Children[0]]
}

// Children returns the child nodes of the given node.
func (g *DesignGraph) Children(n *Node) []*Node {
	children := make([]*Node, 0, len(n.Children))
	for _, cid := range n.Children {
		if c := g.Nodes[cid]; c != nil {
			children = append(children, c)
		}
	}
	return children
}

// NodeCount returns the total number of nodes.
func (g *DesignGraph) NodeCount() int {
	return len(g.Nodes)
}
