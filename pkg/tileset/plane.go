package tileset

import (
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
)

// Point is a lattice point on a tile face.
type Point struct {
	U, V int64
}

// Less orders points by U, then V.
func (p Point) Less(q Point) bool {
	if p.U != q.U {
		return p.U < q.U
	}
	return p.V < q.V
}

// Loop is an ordered boundary polyline on one face. A closed loop repeats
// its first point at the end.
type Loop []Point

// Reverse returns the loop traversed backwards.
func (l Loop) Reverse() Loop {
	r := make(Loop, len(l))
	for i, p := range l {
		r[len(l)-1-i] = p
	}
	return r
}

// Closed reports whether the loop ends where it starts.
func (l Loop) Closed() bool {
	return len(l) > 1 && l[0] == l[len(l)-1]
}

// degenerate reports whether every point of l coincides.
func (l Loop) degenerate() bool {
	for _, p := range l[1:] {
		if p != l[0] {
			return false
		}
	}
	return true
}

// compareLoops orders loops lexicographically by point, shorter first on a
// shared prefix.
func compareLoops(a, b Loop) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			if a[i].Less(b[i]) {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	}
	return 0
}

// quantize snaps a face coordinate to the lattice.
func quantize(uv mgl64.Vec2, gridSize float64) Point {
	return Point{
		U: int64(math.RoundToEven(uv[0] / gridSize)),
		V: int64(math.RoundToEven(uv[1] / gridSize)),
	}
}

// traceFace follows the begin->end map of one face into vertex chains.
// Open chains start at vertices without an incoming edge. The remaining
// edges form cycles, each started at its smallest lattice point and closed
// by repeating that vertex. The map is consumed.
func traceFace(next map[uint32]uint32, point func(uint32) Point) [][]uint32 {
	before := func(a, b uint32) bool {
		pa, pb := point(a), point(b)
		if pa != pb {
			return pa.Less(pb)
		}
		return a < b
	}

	incoming := make(map[uint32]bool, len(next))
	begins := make([]uint32, 0, len(next))
	for from, to := range next {
		incoming[to] = true
		begins = append(begins, from)
	}
	sort.Slice(begins, func(i, j int) bool { return before(begins[i], begins[j]) })

	follow := func(start uint32) []uint32 {
		chain := []uint32{start}
		cur := start
		for {
			to, ok := next[cur]
			if !ok {
				return chain
			}
			delete(next, cur)
			chain = append(chain, to)
			if to == start {
				return chain
			}
			cur = to
		}
	}

	var chains [][]uint32
	for _, v := range begins {
		if !incoming[v] {
			chains = append(chains, follow(v))
		}
	}
	for _, v := range begins {
		if _, ok := next[v]; ok {
			chains = append(chains, follow(v))
		}
	}
	return chains
}

// projectChains turns vertex chains on f into lattice loops, dropping
// chains that collapse onto a single point.
func projectChains(f Face, chains [][]uint32, positions []mgl64.Vec3, gridSize float64) ([]Loop, [][]mgl64.Vec3) {
	var loops []Loop
	var lines [][]mgl64.Vec3
	for _, chain := range chains {
		loop := make(Loop, len(chain))
		line := make([]mgl64.Vec3, len(chain))
		for i, v := range chain {
			loop[i] = quantize(f.project(positions[v]), gridSize)
			line[i] = positions[v]
		}
		if loop.degenerate() {
			continue
		}
		loops = append(loops, loop)
		lines = append(lines, line)
	}
	return loops, lines
}
