package tileset

import "github.com/chazu/tessera/pkg/kernel"

// quad corners per cube face, counterclockwise seen from outside.
var cubeQuads = map[Face][4][3]float32{
	PosX: {{1, -1, -1}, {1, 1, -1}, {1, 1, 1}, {1, -1, 1}},
	NegX: {{-1, -1, -1}, {-1, -1, 1}, {-1, 1, 1}, {-1, 1, -1}},
	PosY: {{-1, 1, -1}, {-1, 1, 1}, {1, 1, 1}, {1, 1, -1}},
	NegY: {{-1, -1, -1}, {1, -1, -1}, {1, -1, 1}, {-1, -1, 1}},
	PosZ: {{-1, -1, 1}, {1, -1, 1}, {1, 1, 1}, {-1, 1, 1}},
	NegZ: {{-1, -1, -1}, {-1, 1, -1}, {1, 1, -1}, {1, -1, -1}},
}

// quadMesh builds a mesh with four unshared vertices per quad, so welding
// is needed to recover the topology.
func quadMesh(name string, quads ...[4][3]float32) *kernel.Mesh {
	m := &kernel.Mesh{TileName: name}
	for _, q := range quads {
		base := uint32(m.VertexCount())
		for _, c := range q {
			m.Vertices = append(m.Vertices, c[0], c[1], c[2])
		}
		m.Indices = append(m.Indices, base, base+1, base+2, base, base+2, base+3)
	}
	return m
}

// closedCube has no boundary at all.
func closedCube() *kernel.Mesh {
	var quads [][4][3]float32
	for _, f := range Faces {
		quads = append(quads, cubeQuads[f])
	}
	return quadMesh("cube", quads...)
}

// tube is a cube without its X caps: a square hole through both X faces.
func tube() *kernel.Mesh {
	return quadMesh("tube", cubeQuads[PosY], cubeQuads[NegY], cubeQuads[PosZ], cubeQuads[NegZ])
}

// wall is a single quad in the y=0 plane spanning the tile.
func wall() *kernel.Mesh {
	return quadMesh("wall", [4][3]float32{{-1, 0, -1}, {1, 0, -1}, {1, 0, 1}, {-1, 0, 1}})
}

func scaled(m *kernel.Mesh, s float32) *kernel.Mesh {
	out := m.Clone()
	for i := range out.Vertices {
		out.Vertices[i] *= s
	}
	return out
}
