package kernel

import "math"

// PrimitiveMode describes how Indices are grouped.
type PrimitiveMode int

const (
	Triangles PrimitiveMode = iota // 3 indices per triangle
	Lines                          // 2 indices per segment
	Points                         // 1 index per point
)

func (m PrimitiveMode) String() string {
	switch m {
	case Triangles:
		return "triangles"
	case Lines:
		return "lines"
	case Points:
		return "points"
	default:
		return "unknown"
	}
}

// Mesh is an indexed mesh describing one tile.
// All arrays are flat: vertices has 3 floats per vertex (x,y,z),
// normals has 3 floats per vertex, indices has 3 uint32s per triangle.
type Mesh struct {
	Vertices []float32     `json:"vertices"`
	Normals  []float32     `json:"normals"`
	Indices  []uint32      `json:"indices"`
	Mode     PrimitiveMode `json:"mode"`
	TileName string        `json:"tileName"` // which design graph tile this came from
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	if m.Mode != Triangles {
		return 0
	}
	return len(m.Indices) / 3
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

// Position returns vertex i as float64 components.
func (m *Mesh) Position(i int) [3]float64 {
	return [3]float64{
		float64(m.Vertices[3*i]),
		float64(m.Vertices[3*i+1]),
		float64(m.Vertices[3*i+2]),
	}
}

// Clone returns a deep copy of m.
func (m *Mesh) Clone() *Mesh {
	c := &Mesh{Mode: m.Mode, TileName: m.TileName}
	c.Vertices = append([]float32(nil), m.Vertices...)
	c.Normals = append([]float32(nil), m.Normals...)
	c.Indices = append([]uint32(nil), m.Indices...)
	return c
}

// OpenFaces prepares a meshed tile for boundary matching. Vertices within tol
// of a tile bound are snapped onto it, and cap triangles lying flat on a bound
// are dropped, so the cut through each tile face is left as an open boundary.
// size is the full tile extent centred on the origin. m is not modified.
//
// A flat triangle whose diagonal edge is shared with a triangle off the bound
// is a corner of the cut outline rather than part of the cap, and is kept.
// The outline is then the border of the complete cap cells, whichever way
// the mesher split the cells around it.
func OpenFaces(m *Mesh, size [3]float64, tol float64) *Mesh {
	out := m.Clone()
	half := [3]float64{size[0] / 2, size[1] / 2, size[2] / 2}

	for i := 0; i < out.VertexCount(); i++ {
		for a := 0; a < 3; a++ {
			v := float64(out.Vertices[3*i+a])
			switch {
			case math.Abs(v-half[a]) <= tol:
				out.Vertices[3*i+a] = float32(half[a])
			case math.Abs(v+half[a]) <= tol:
				out.Vertices[3*i+a] = float32(-half[a])
			}
		}
	}

	if out.Mode != Triangles {
		return out
	}

	n := len(m.Indices) / 3
	tris := make([][3]uint32, n)
	axes := make([]int, n)
	walls := make(map[segment]bool)
	for t := range tris {
		tri := [3]uint32{m.Indices[3*t], m.Indices[3*t+1], m.Indices[3*t+2]}
		tris[t] = tri
		axes[t] = boundAxis(out, tri, half)
		if axes[t] >= 0 {
			continue
		}
		for c := 0; c < 3; c++ {
			walls[newSegment(out.corner(tri[c]), out.corner(tri[(c+1)%3]))] = true
		}
	}

	kept := out.Indices[:0]
	for t, tri := range tris {
		if axes[t] >= 0 && !outlineCorner(out, tri, axes[t], walls) {
			continue
		}
		kept = append(kept, tri[0], tri[1], tri[2])
	}
	out.Indices = kept
	return out
}

// segment is an undirected edge keyed by its end positions.
type segment [2][3]float32

func newSegment(a, b [3]float32) segment {
	for i := 0; i < 3; i++ {
		if a[i] != b[i] {
			if b[i] < a[i] {
				a, b = b, a
			}
			break
		}
	}
	return segment{a, b}
}

func (m *Mesh) corner(i uint32) [3]float32 {
	return [3]float32{m.Vertices[3*i], m.Vertices[3*i+1], m.Vertices[3*i+2]}
}

// boundAxis returns the axis of the tile bound all three corners of tri lie
// on, or -1.
func boundAxis(m *Mesh, tri [3]uint32, half [3]float64) int {
	for a := 0; a < 3; a++ {
		for _, side := range [2]float32{float32(half[a]), float32(-half[a])} {
			if m.Vertices[3*tri[0]+uint32(a)] == side &&
				m.Vertices[3*tri[1]+uint32(a)] == side &&
				m.Vertices[3*tri[2]+uint32(a)] == side {
				return a
			}
		}
	}
	return -1
}

// outlineCorner reports whether a triangle flat on the bound across axis
// shares a diagonal edge, one not parallel to a tile axis, with a wall.
func outlineCorner(m *Mesh, tri [3]uint32, axis int, walls map[segment]bool) bool {
	for c := 0; c < 3; c++ {
		p, q := m.corner(tri[c]), m.corner(tri[(c+1)%3])
		diagonal := true
		for a := 0; a < 3; a++ {
			if a != axis && p[a] == q[a] {
				diagonal = false
			}
		}
		if diagonal && walls[newSegment(p, q)] {
			return true
		}
	}
	return false
}
