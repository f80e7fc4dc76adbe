// Package solver fills a grid with catalogue entries so that every pair of
// neighbouring cells has matching faces.
//
// The search repeatedly commits the open cell with the fewest remaining
// candidates, drawing uniformly from them with a seeded generator, and
// filters the candidates of its open neighbours. The first neighbour left
// without candidates ends the attempt; there is no backtracking.
package solver

import (
	"math/rand"

	"github.com/chazu/tessera/pkg/logger"
	"github.com/chazu/tessera/pkg/tileset"
)

// Catalogue is the compatibility source the solver reads. *tileset.Tileset
// satisfies it.
type Catalogue interface {
	Len() int
	Compatible(entry int, f tileset.Face) []tileset.FaceRef
}

// CellState tracks a cell through one solve.
type CellState uint8

const (
	Open CellState = iota
	Committed
	Contradiction
)

func (s CellState) String() string {
	switch s {
	case Open:
		return "open"
	case Committed:
		return "committed"
	case Contradiction:
		return "contradiction"
	default:
		return "unknown"
	}
}

// Solver owns the rules derived from one catalogue and the scratch state of
// the solve in progress. A Solver is not safe for concurrent use; create
// one per goroutine.
type Solver struct {
	entries int
	words   int
	// allowed[e][f] holds the entries that may sit across face f of e.
	allowed [][tileset.FaceCount]bitset

	state []CellState
	cands []bitset
}

// New derives per-face neighbour sets from the catalogue. Only partners on
// the opposite face are kept: the neighbour across +X touches with its -X.
func New(c Catalogue) (*Solver, error) {
	n := c.Len()
	if n == 0 {
		return nil, ErrEmptyCatalogue
	}
	s := &Solver{entries: n, words: words(n)}
	s.allowed = make([][tileset.FaceCount]bitset, n)
	for e := 0; e < n; e++ {
		for _, f := range tileset.Faces {
			set := make(bitset, s.words)
			for _, r := range c.Compatible(e, f) {
				if r.Face == f.Opposite() && r.Entry < n {
					set.set(r.Entry)
				}
			}
			s.allowed[e][f] = set
		}
	}
	return s, nil
}

// Solve runs one attempt over a grid of the given shape. On a contradiction
// it returns the partially filled grid together with a *SolveFailed.
func (s *Solver) Solve(shape Shape, seed int64) (*PlacementGrid, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	s.reset(shape.Len())
	rng := rand.New(rand.NewSource(seed))
	grid := NewPlacementGrid(shape)

	for committed := 0; ; committed++ {
		cell := s.pickCell()
		if cell < 0 {
			return grid, nil
		}

		entry := s.cands[cell].nth(rng.Intn(s.cands[cell].count()))
		s.state[cell] = Committed
		v := tileset.VariantOf(entry)
		grid.Cells[cell] = Placement{Tile: v.Tile, Orientation: v.Orientation, Solved: true}

		for _, f := range tileset.Faces {
			nb, ok := shape.Neighbor(cell, f)
			if !ok || s.state[nb] != Open {
				continue
			}
			s.cands[nb].and(s.allowed[entry][f])
			if s.cands[nb].empty() {
				s.state[nb] = Contradiction
				x, y, z := shape.Coord(nb)
				return grid, &SolveFailed{CellIndex: nb, X: x, Y: y, Z: z, Committed: committed + 1}
			}
		}
	}
}

// State returns the state of cell i after the last Solve.
func (s *Solver) State(i int) CellState {
	return s.state[i]
}

func (s *Solver) reset(cells int) {
	if cap(s.state) < cells {
		s.state = make([]CellState, cells)
		s.cands = make([]bitset, cells)
		backing := make([]uint64, cells*s.words)
		for i := range s.cands {
			s.cands[i] = backing[i*s.words : (i+1)*s.words : (i+1)*s.words]
		}
	}
	s.state = s.state[:cells]
	s.cands = s.cands[:cells]
	for i := range s.state {
		s.state[i] = Open
		s.cands[i].fill(s.entries)
	}
}

// pickCell returns the open cell with the fewest candidates, lowest index
// first on ties, or -1 when no cell is open.
func (s *Solver) pickCell() int {
	best, bestCount := -1, 0
	for i, st := range s.state {
		if st != Open {
			continue
		}
		c := s.cands[i].count()
		if best < 0 || c < bestCount {
			best, bestCount = i, c
			if c == 1 {
				break
			}
		}
	}
	return best
}

// Solve is a one-shot helper around New and Solver.Solve.
func Solve(shape Shape, c Catalogue, seed int64) (*PlacementGrid, error) {
	s, err := New(c)
	if err != nil {
		return nil, err
	}
	grid, err := s.Solve(shape, seed)
	if err != nil {
		logger.Logger().Debug("solver: attempt failed", "shape", shape.String(), "seed", seed, "err", err)
	}
	return grid, err
}
