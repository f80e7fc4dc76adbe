package kernel

import (
	"slices"
	"testing"
)

func TestMeshVertexCount(t *testing.T) {
	tests := []struct {
		name     string
		vertices []float32
		want     int
	}{
		{"empty", nil, 0},
		{"one vertex", []float32{1, 2, 3}, 1},
		{"four vertices", []float32{0, 0, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0}, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Mesh{Vertices: tt.vertices}
			if got := m.VertexCount(); got != tt.want {
				t.Errorf("VertexCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMeshTriangleCount(t *testing.T) {
	tests := []struct {
		name    string
		indices []uint32
		mode    PrimitiveMode
		want    int
	}{
		{"empty", nil, Triangles, 0},
		{"one triangle", []uint32{0, 1, 2}, Triangles, 1},
		{"two triangles", []uint32{0, 1, 2, 2, 3, 0}, Triangles, 2},
		{"line list", []uint32{0, 1, 2, 3, 4, 5}, Lines, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Mesh{Indices: tt.indices, Mode: tt.mode}
			if got := m.TriangleCount(); got != tt.want {
				t.Errorf("TriangleCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMeshIsEmpty(t *testing.T) {
	t.Run("empty mesh", func(t *testing.T) {
		m := &Mesh{}
		if !m.IsEmpty() {
			t.Error("IsEmpty() = false for empty mesh, want true")
		}
	})
	t.Run("non-empty mesh", func(t *testing.T) {
		m := &Mesh{Vertices: []float32{1, 2, 3}}
		if m.IsEmpty() {
			t.Error("IsEmpty() = true for non-empty mesh, want false")
		}
	})
}

func TestMeshCloneIsDeep(t *testing.T) {
	m := &Mesh{Vertices: []float32{1, 2, 3}, Indices: []uint32{0}, TileName: "a"}
	c := m.Clone()
	c.Vertices[0] = 9
	c.Indices[0] = 7
	if m.Vertices[0] != 1 || m.Indices[0] != 0 {
		t.Error("Clone shares backing arrays with the original")
	}
	if c.TileName != "a" {
		t.Errorf("Clone TileName = %q, want %q", c.TileName, "a")
	}
	if got := c.Position(0); got != [3]float64{9, 2, 3} {
		t.Errorf("Position(0) = %v, want [9 2 3]", got)
	}
}

func TestOpenFaces(t *testing.T) {
	// Two triangles on the +X bound (slightly off) and one slanted
	// triangle touching it along an edge.
	m := &Mesh{
		Vertices: []float32{
			1.0000001, -1, -1,
			1, 1, -1,
			0.9999999, 1, 1,
			1, -1, 1,
			0, 0, 0,
		},
		Indices: []uint32{
			0, 1, 2,
			0, 2, 3,
			0, 4, 1,
		},
	}
	out := OpenFaces(m, [3]float64{2, 2, 2}, 1e-5)

	if got := out.TriangleCount(); got != 1 {
		t.Fatalf("TriangleCount() = %d, want 1", got)
	}
	if out.Indices[0] != 0 || out.Indices[1] != 4 || out.Indices[2] != 1 {
		t.Errorf("kept triangle = %v, want [0 4 1]", out.Indices)
	}
	if out.Vertices[0] != 1 || out.Vertices[6] != 1 {
		t.Errorf("vertices not snapped: %v", out.Vertices[:9])
	}
	if m.TriangleCount() != 3 {
		t.Error("OpenFaces modified its input")
	}
}

func TestOpenFacesKeepsOutlineCorners(t *testing.T) {
	// Cut face x = 2, one vertex set per triangle as marching cubes emits
	// them. Triangles 0 and 1 cap a full cell along its diagonal A-C and a
	// wall meets the cap on A-D. Triangle 2 is the flat corner B-E-C of a
	// partial cell, whose diagonal E-C is shared with the wall in triangle 3.
	tris := [][3][3]float32{
		{{2, 0, 0}, {2, 0.5, 0}, {2, 0.5, 0.5}},
		{{2, 0, 0}, {2, 0.5, 0.5}, {2, 0, 0.5}},
		{{2, 0.5, 0}, {2, 1, 0}, {2, 0.5, 0.5}},
		{{2, 1, 0}, {1.8, 0.9, 0.4}, {2, 0.5, 0.5}},
		{{2, 0, 0.5}, {1.8, -0.1, 0.3}, {2, 0, 0}},
	}
	m := &Mesh{}
	for _, tri := range tris {
		for _, p := range tri {
			m.Indices = append(m.Indices, uint32(m.VertexCount()))
			m.Vertices = append(m.Vertices, p[0], p[1], p[2])
		}
	}

	out := OpenFaces(m, [3]float64{4, 4, 4}, 1e-5)
	if want := []uint32{6, 7, 8, 9, 10, 11, 12, 13, 14}; !slices.Equal(out.Indices, want) {
		t.Errorf("kept indices = %v, want %v", out.Indices, want)
	}
}

// boundsSolid carries only its bounds.
type boundsSolid [2][3]float64

func (b boundsSolid) BoundingBox() (min, max [3]float64) { return b[0], b[1] }

func centred(x, y, z float64) boundsSolid {
	return boundsSolid{{-x / 2, -y / 2, -z / 2}, {x / 2, y / 2, z / 2}}
}

// boundsKernel tracks bounds through the builder and ignores everything else.
type boundsKernel struct{}

func (boundsKernel) Box(x, y, z float64) Solid { return centred(x, y, z) }
func (boundsKernel) Cylinder(h, r float64, _ int) Solid {
	return centred(2*r, 2*r, h)
}
func (boundsKernel) Union(a, _ Solid) Solid        { return a }
func (boundsKernel) Difference(a, _ Solid) Solid   { return a }
func (boundsKernel) Intersection(a, _ Solid) Solid { return a }

func (boundsKernel) Rotate(s Solid, _, _, _ float64) Solid { return s }

func (boundsKernel) Translate(s Solid, x, y, z float64) Solid {
	b := s.(boundsSolid)
	d := [3]float64{x, y, z}
	for a := range d {
		b[0][a] += d[a]
		b[1][a] += d[a]
	}
	return b
}

func (boundsKernel) Clip(_ Solid, size [3]float64) Solid {
	return centred(size[0], size[1], size[2])
}

func (boundsKernel) ToMesh(Solid) (*Mesh, error) { return &Mesh{}, nil }

var _ Kernel = boundsKernel{}

func TestBoundsKernel(t *testing.T) {
	var k Kernel = boundsKernel{}
	tests := []struct {
		name     string
		solid    Solid
		min, max [3]float64
	}{
		{"box", k.Box(2, 4, 6), [3]float64{-1, -2, -3}, [3]float64{1, 2, 3}},
		{"cylinder", k.Cylinder(2, 0.5, 8), [3]float64{-0.5, -0.5, -1}, [3]float64{0.5, 0.5, 1}},
		{"translated", k.Translate(k.Box(1, 1, 1), 1, 0, -1), [3]float64{0.5, -0.5, -1.5}, [3]float64{1.5, 0.5, -0.5}},
		{"clipped", k.Clip(k.Box(10, 20, 30), [3]float64{2, 2, 2}), [3]float64{-1, -1, -1}, [3]float64{1, 1, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			min, max := tt.solid.BoundingBox()
			if min != tt.min || max != tt.max {
				t.Errorf("bounds = %v..%v, want %v..%v", min, max, tt.min, tt.max)
			}
		})
	}
}
