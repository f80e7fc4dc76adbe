package solver

import (
	"fmt"
	"math"

	"github.com/chazu/tessera/pkg/tileset"
	"github.com/go-gl/mathgl/mgl64"
)

// Shape is the size of a placement grid in cells. Z is up; a shape with
// Z == 1 is a flat grid where every cell has at most four neighbours.
type Shape struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

// Len returns the number of cells.
func (s Shape) Len() int {
	return s.X * s.Y * s.Z
}

func (s Shape) String() string {
	return fmt.Sprintf("%dx%dx%d", s.X, s.Y, s.Z)
}

// Validate rejects shapes with a non-positive dimension.
func (s Shape) Validate() error {
	if s.X <= 0 || s.Y <= 0 || s.Z <= 0 {
		return fmt.Errorf("solver: %w: %s", ErrInvalidShape, s)
	}
	return nil
}

// Index returns the cell index of (x, y, z), x varying fastest.
func (s Shape) Index(x, y, z int) int {
	return x + s.X*(y+s.Y*z)
}

// Coord is the inverse of Index.
func (s Shape) Coord(i int) (x, y, z int) {
	return i % s.X, (i / s.X) % s.Y, i / (s.X * s.Y)
}

// Neighbor returns the cell across face f of cell i, if it is in the grid.
func (s Shape) Neighbor(i int, f tileset.Face) (int, bool) {
	c := [3]int{}
	c[0], c[1], c[2] = s.Coord(i)
	dims := [3]int{s.X, s.Y, s.Z}

	a := f.Axis()
	c[a] += f.Sign()
	if c[a] < 0 || c[a] >= dims[a] {
		return 0, false
	}
	return s.Index(c[0], c[1], c[2]), true
}

// Placement is the content of one solved cell.
type Placement struct {
	Tile        uint32 `json:"tile"`
	Orientation uint8  `json:"orientation"`
	Solved      bool   `json:"solved"`
}

// Entry returns the catalogue entry of a solved placement.
func (p Placement) Entry() int {
	return tileset.TileVariant{Tile: p.Tile, Orientation: p.Orientation}.Entry()
}

// PlacementGrid is the output of a solve. Cells left unsolved by a
// contradiction have Solved == false.
type PlacementGrid struct {
	Shape Shape       `json:"shape"`
	Cells []Placement `json:"cells"`
}

// NewPlacementGrid returns a grid of unsolved cells.
func NewPlacementGrid(shape Shape) *PlacementGrid {
	return &PlacementGrid{Shape: shape, Cells: make([]Placement, shape.Len())}
}

// At returns the placement at (x, y, z).
func (g *PlacementGrid) At(x, y, z int) Placement {
	return g.Cells[g.Shape.Index(x, y, z)]
}

// Complete reports whether every cell is solved.
func (g *PlacementGrid) Complete() bool {
	for _, c := range g.Cells {
		if !c.Solved {
			return false
		}
	}
	return true
}

// TileCounts returns how many cells hold each physical tile.
func (g *PlacementGrid) TileCounts() map[uint32]int {
	counts := make(map[uint32]int)
	for _, c := range g.Cells {
		if c.Solved {
			counts[c.Tile]++
		}
	}
	return counts
}

// Transform returns the world matrix of cell i: the tile turned by its
// orientation about +Z, then moved to the cell centre. Cell (0,0,0) is
// centred on the origin.
func (g *PlacementGrid) Transform(i int, tileSize mgl64.Vec3) mgl64.Mat4 {
	x, y, z := g.Shape.Coord(i)
	t := mgl64.Translate3D(float64(x)*tileSize[0], float64(y)*tileSize[1], float64(z)*tileSize[2])
	r := mgl64.HomogRotate3DZ(float64(g.Cells[i].Orientation) * math.Pi / 2)
	return t.Mul4(r)
}

// Verify checks every pair of solved neighbours against the catalogue.
func (g *PlacementGrid) Verify(c Catalogue) error {
	if len(g.Cells) != g.Shape.Len() {
		return fmt.Errorf("solver: grid has %d cells, shape %s needs %d", len(g.Cells), g.Shape, g.Shape.Len())
	}
	for i, p := range g.Cells {
		if !p.Solved {
			continue
		}
		if p.Entry() >= c.Len() || p.Orientation >= tileset.Orientations {
			return fmt.Errorf("solver: cell %d holds entry %d outside the catalogue", i, p.Entry())
		}
		for _, f := range tileset.Faces {
			nb, ok := g.Shape.Neighbor(i, f)
			if !ok || !g.Cells[nb].Solved {
				continue
			}
			want := tileset.FaceRef{Entry: g.Cells[nb].Entry(), Face: f.Opposite()}
			if !listed(c.Compatible(p.Entry(), f), want) {
				return fmt.Errorf("solver: cell %d face %s does not accept entry %d in cell %d", i, f, want.Entry, nb)
			}
		}
	}
	return nil
}

func listed(refs []tileset.FaceRef, r tileset.FaceRef) bool {
	for _, x := range refs {
		if x == r {
			return true
		}
	}
	return false
}
