package tileset

import (
	"math"
	"sort"

	"github.com/chazu/tessera/pkg/kernel"
	"github.com/go-gl/mathgl/mgl64"
)

// edge is a directed edge over welded vertex indices.
type edge struct {
	from, to uint32
}

func (e edge) key() uint64 {
	return uint64(e.from)<<32 | uint64(e.to)
}

func (e edge) reverse() edge {
	return edge{from: e.to, to: e.from}
}

// boundary is the open rim of one tile mesh in normalized tile space.
type boundary struct {
	positions []mgl64.Vec3
	edges     []edge
}

// extractBoundary normalizes m to [-1,1]^3, welds coincident vertices and
// returns the directed edges whose reverse does not occur in the mesh.
func extractBoundary(entry int, m *kernel.Mesh, tileSize mgl64.Vec3, eps float64) (*boundary, error) {
	if m.Mode != kernel.Triangles {
		return nil, topologyErrorf(entry, "mesh is %s, want triangles", m.Mode)
	}
	if len(m.Vertices)%3 != 0 {
		return nil, topologyErrorf(entry, "vertex array length %d is not a multiple of 3", len(m.Vertices))
	}
	if len(m.Indices)%3 != 0 {
		return nil, topologyErrorf(entry, "index count %d is not a multiple of 3", len(m.Indices))
	}

	n := m.VertexCount()
	raw := make([]mgl64.Vec3, n)
	for i := range raw {
		p := m.Position(i)
		raw[i] = mgl64.Vec3{
			p[0] * 2 / tileSize[0],
			p[1] * 2 / tileSize[1],
			p[2] * 2 / tileSize[2],
		}
	}
	remap, welded := weld(raw, eps)

	open := make(map[uint64]edge)
	for t := 0; t < len(m.Indices); t += 3 {
		var tri [3]uint32
		for c := 0; c < 3; c++ {
			idx := m.Indices[t+c]
			if int(idx) >= n {
				return nil, topologyErrorf(entry, "index %d out of range (%d vertices)", idx, n)
			}
			tri[c] = remap[idx]
		}
		if tri[0] == tri[1] || tri[1] == tri[2] || tri[2] == tri[0] {
			continue // collapsed by welding
		}
		for c := 0; c < 3; c++ {
			e := edge{from: tri[c], to: tri[(c+1)%3]}
			if _, ok := open[e.reverse().key()]; ok {
				delete(open, e.reverse().key())
				continue
			}
			if _, ok := open[e.key()]; ok {
				return nil, topologyErrorf(entry, "edge %d->%d is shared by two triangles with the same winding", e.from, e.to)
			}
			open[e.key()] = e
		}
	}

	edges := make([]edge, 0, len(open))
	for _, e := range open {
		edges = append(edges, e)
	}
	sort.Slice(edges, func(i, j int) bool { return edges[i].key() < edges[j].key() })

	return &boundary{positions: welded, edges: edges}, nil
}

// weld merges positions closer than eps on every axis. It returns the
// mapping from raw to welded indices and the welded positions. When several
// welded points are within reach the lowest index wins, so the result only
// depends on vertex order.
func weld(raw []mgl64.Vec3, eps float64) ([]uint32, []mgl64.Vec3) {
	type cell [3]int64
	cellOf := func(p mgl64.Vec3) cell {
		return cell{
			int64(math.Floor(p[0] / eps)),
			int64(math.Floor(p[1] / eps)),
			int64(math.Floor(p[2] / eps)),
		}
	}

	grid := make(map[cell][]uint32)
	remap := make([]uint32, len(raw))
	var welded []mgl64.Vec3

	for i, p := range raw {
		c := cellOf(p)
		match := -1
		for dx := int64(-1); dx <= 1; dx++ {
			for dy := int64(-1); dy <= 1; dy++ {
				for dz := int64(-1); dz <= 1; dz++ {
					for _, w := range grid[cell{c[0] + dx, c[1] + dy, c[2] + dz}] {
						if (match < 0 || int(w) < match) && near(welded[w], p, eps) {
							match = int(w)
						}
					}
				}
			}
		}
		if match < 0 {
			match = len(welded)
			welded = append(welded, p)
			grid[c] = append(grid[c], uint32(match))
		}
		remap[i] = uint32(match)
	}
	return remap, welded
}

func near(a, b mgl64.Vec3, eps float64) bool {
	return math.Abs(a[0]-b[0]) <= eps &&
		math.Abs(a[1]-b[1]) <= eps &&
		math.Abs(a[2]-b[2]) <= eps
}

// faceEdges selects the boundary edges lying on f as a begin->end map.
// A vertex with two outgoing or two incoming edges on one face makes the
// loops ambiguous and is rejected.
func faceEdges(entry int, b *boundary, f Face, eps float64) (map[uint32]uint32, error) {
	next := make(map[uint32]uint32)
	incoming := make(map[uint32]bool)
	for _, e := range b.edges {
		if !f.contains(b.positions[e.from], eps) || !f.contains(b.positions[e.to], eps) {
			continue
		}
		if _, ok := next[e.from]; ok {
			return nil, topologyErrorf(entry, "face %s: vertex %d starts two boundary edges", f, e.from)
		}
		if incoming[e.to] {
			return nil, topologyErrorf(entry, "face %s: vertex %d ends two boundary edges", f, e.to)
		}
		next[e.from] = e.to
		incoming[e.to] = true
	}
	return next, nil
}
