package sdfx

import (
	"math"
	"testing"

	"github.com/chazu/tessera/pkg/kernel"
)

func TestBox(t *testing.T) {
	k := NewWithCells(16)
	mesh, err := k.ToMesh(k.Box(2, 1, 0.5))
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	if mesh.IsEmpty() {
		t.Fatal("mesh is empty")
	}
	if mesh.Mode != kernel.Triangles {
		t.Errorf("Mode = %v, want triangles", mesh.Mode)
	}
	if len(mesh.Vertices) != len(mesh.Normals) {
		t.Fatalf("vertices length %d != normals length %d", len(mesh.Vertices), len(mesh.Normals))
	}
	if len(mesh.Indices) != mesh.TriangleCount()*3 {
		t.Fatalf("indices length %d != triCount*3 %d", len(mesh.Indices), mesh.TriangleCount()*3)
	}
}

func TestNewWithCellsDefault(t *testing.T) {
	tests := []struct {
		cells int
		want  int
	}{
		{0, DefaultMeshCells},
		{-3, DefaultMeshCells},
		{24, 24},
	}
	for _, tt := range tests {
		if got := NewWithCells(tt.cells).MeshCells(); got != tt.want {
			t.Errorf("NewWithCells(%d).MeshCells() = %d, want %d", tt.cells, got, tt.want)
		}
	}
}

func TestBounds(t *testing.T) {
	k := New()
	tests := []struct {
		name     string
		solid    kernel.Solid
		min, max [3]float64
		tol      float64
	}{
		{"box", k.Box(100, 50, 25), [3]float64{-50, -25, -12.5}, [3]float64{50, 25, 12.5}, 0.01},
		{"translated", k.Translate(k.Box(10, 10, 10), 100, 200, 300), [3]float64{95, 195, 295}, [3]float64{105, 205, 305}, 0.5},
		{"yawed", k.Rotate(k.Box(100, 10, 10), 0, 0, 90), [3]float64{-5, -50, -5}, [3]float64{5, 50, 5}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			min, max := tt.solid.BoundingBox()
			for a := 0; a < 3; a++ {
				if math.Abs(min[a]-tt.min[a]) > tt.tol || math.Abs(max[a]-tt.max[a]) > tt.tol {
					t.Errorf("axis %d: bounds %g..%g, want %g..%g", a, min[a], max[a], tt.min[a], tt.max[a])
				}
			}
		})
	}
}

func TestDifference(t *testing.T) {
	k := NewWithCells(24)
	box := k.Box(2, 2, 2)
	boxMesh, err := k.ToMesh(box)
	if err != nil {
		t.Fatalf("ToMesh(box) failed: %v", err)
	}
	diffMesh, err := k.ToMesh(k.Difference(box, k.Cylinder(3, 0.5, 32)))
	if err != nil {
		t.Fatalf("ToMesh(diff) failed: %v", err)
	}
	if diffMesh.TriangleCount() <= boxMesh.TriangleCount() {
		t.Fatalf("difference (%d triangles) should have more triangles than box (%d triangles)",
			diffMesh.TriangleCount(), boxMesh.TriangleCount())
	}
}

func TestClipPinsBounds(t *testing.T) {
	k := New()
	small := k.Box(0.5, 0.5, 0.5)
	min, max := k.Clip(small, [3]float64{2, 4, 2}).BoundingBox()
	if min != [3]float64{-1, -2, -1} {
		t.Errorf("Clip min = %v, want [-1 -2 -1]", min)
	}
	if max != [3]float64{1, 2, 1} {
		t.Errorf("Clip max = %v, want [1 2 1]", max)
	}
}

func TestClipOpensTileFaces(t *testing.T) {
	k := NewWithCells(16)
	size := [3]float64{2, 2, 2}

	// A beam running through the tile along X is cut by both X faces.
	beam := k.Clip(k.Box(4, 0.5, 0.5), size)
	mesh, err := k.ToMesh(beam)
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	open := kernel.OpenFaces(mesh, size, 1e-4)
	if open.TriangleCount() == 0 {
		t.Fatal("all triangles were stripped")
	}
	if open.TriangleCount() >= mesh.TriangleCount() {
		t.Errorf("expected cap triangles to be stripped: %d >= %d",
			open.TriangleCount(), mesh.TriangleCount())
	}
	for i := 0; i < open.VertexCount(); i++ {
		p := open.Position(i)
		for a := 0; a < 3; a++ {
			if math.Abs(p[a]) > 1+1e-6 {
				t.Fatalf("vertex %d = %v lies outside the tile", i, p)
			}
		}
	}
}

func TestClipOutlineSymmetric(t *testing.T) {
	k := NewWithCells(16)
	size := [3]float64{2, 2, 2}
	rod := k.Rotate(k.Cylinder(4, 0.3, 0), 0, 90, 0)
	mesh, err := k.ToMesh(k.Clip(rod, size))
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	open := kernel.OpenFaces(mesh, size, 1e-4)

	// Edges on the +X face used by one triangle form the cut outline.
	type point [2]float32
	type segment [2]point
	key := func(p, q point) segment {
		if q[0] < p[0] || (q[0] == p[0] && q[1] < p[1]) {
			p, q = q, p
		}
		return segment{p, q}
	}
	uses := make(map[segment]int)
	at := func(i uint32) (point, bool) {
		v := open.Vertices[3*i : 3*i+3]
		return point{v[1], v[2]}, v[0] == 1
	}
	for tri := 0; tri+2 < len(open.Indices); tri += 3 {
		for c := 0; c < 3; c++ {
			p, pOn := at(open.Indices[tri+c])
			q, qOn := at(open.Indices[tri+(c+1)%3])
			if pOn && qOn {
				uses[key(p, q)]++
			}
		}
	}
	outline := make(map[segment]bool)
	for s, n := range uses {
		if n == 1 {
			outline[s] = true
		}
	}

	// The rod covers a 4x4 block of lattice points, so the outline is the
	// square around the 3x3 cap cells between them.
	if len(outline) != 12 {
		t.Fatalf("outline has %d edges, want 12: %v", len(outline), outline)
	}
	moves := map[string]func(point) point{
		"mirror Y": func(p point) point { return point{-p[0], p[1]} },
		"mirror Z": func(p point) point { return point{p[0], -p[1]} },
		"swap":     func(p point) point { return point{p[1], p[0]} },
	}
	for name, move := range moves {
		for s := range outline {
			if !outline[key(move(s[0]), move(s[1]))] {
				t.Errorf("%s: edge %v has no partner", name, s)
			}
		}
	}
	for s := range outline {
		for _, p := range s {
			for _, c := range p {
				if l := float64(c) * 16; l != math.Trunc(l) || int(l)%2 == 0 {
					t.Errorf("outline point %v is off the sampling lattice", p)
				}
			}
		}
	}
}
