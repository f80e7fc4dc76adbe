package tileset

import "github.com/chazu/tessera/pkg/kernel"

// Orientations is the number of yaw variants per physical tile.
const Orientations = 4

// TileVariant names a catalogue entry as a physical tile and the number of
// counterclockwise quarter turns about +Z applied to it.
type TileVariant struct {
	Tile        uint32 `json:"tile"`
	Orientation uint8  `json:"orientation"`
}

// VariantOf splits a catalogue entry index.
func VariantOf(entry int) TileVariant {
	return TileVariant{Tile: uint32(entry / Orientations), Orientation: uint8(entry % Orientations)}
}

// Entry returns the catalogue index of v.
func (v TileVariant) Entry() int {
	return int(v.Tile)*Orientations + int(v.Orientation)
}

// RotateYaw returns m turned quarterTurns times counterclockwise about +Z.
// Each turn maps (x, y) to (-y, x), which is exact in floating point.
func RotateYaw(m *kernel.Mesh, quarterTurns int) *kernel.Mesh {
	out := m.Clone()
	turns := ((quarterTurns % Orientations) + Orientations) % Orientations
	for i := 0; i < turns; i++ {
		rotateXY(out.Vertices)
		rotateXY(out.Normals)
	}
	return out
}

func rotateXY(flat []float32) {
	for i := 0; i+2 < len(flat); i += 3 {
		flat[i], flat[i+1] = -flat[i+1], flat[i]
	}
}

// ExpandRotations builds a grouped catalogue from physical tiles: every
// tile is followed by its three further quarter turns.
func ExpandRotations(tiles []*kernel.Mesh) []*kernel.Mesh {
	out := make([]*kernel.Mesh, 0, len(tiles)*Orientations)
	for _, m := range tiles {
		for r := 0; r < Orientations; r++ {
			out = append(out, RotateYaw(m, r))
		}
	}
	return out
}
