package tileset

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/fnv"

	"github.com/chazu/tessera/pkg/kernel"
	"github.com/chazu/tessera/pkg/logger"
	"github.com/go-gl/mathgl/mgl64"
)

// Defaults for Options.
const (
	DefaultEpsilon  = 1e-6
	DefaultGridSize = 1e-6
)

// Options controls catalogue preprocessing.
type Options struct {
	// TileSize is the world-space extent of one tile. Meshes are centred
	// on the origin and divided by half this size.
	TileSize mgl64.Vec3
	// Epsilon is the weld distance and the plane tolerance, in normalized
	// tile space.
	Epsilon float64
	// GridSize is the lattice step boundary points are snapped to.
	GridSize float64
	// Workers bounds the number of entries processed concurrently.
	Workers int
	// VerifyRotations checks that entries 4k+1..4k+3 are the quarter
	// turns of entry 4k.
	VerifyRotations bool
}

// DefaultOptions returns options for tiles spanning [-1,1]^3.
func DefaultOptions() Options {
	return Options{
		TileSize: mgl64.Vec3{2, 2, 2},
		Epsilon:  DefaultEpsilon,
		GridSize: DefaultGridSize,
		Workers:  1,
	}
}

// Validate checks that every size and tolerance is positive.
func (o Options) Validate() error {
	for a := 0; a < 3; a++ {
		if o.TileSize[a] <= 0 {
			return fmt.Errorf("tileset: tile size %v must be positive on every axis", o.TileSize)
		}
	}
	if o.Epsilon <= 0 {
		return fmt.Errorf("tileset: epsilon %g must be positive", o.Epsilon)
	}
	if o.GridSize <= 0 {
		return fmt.Errorf("tileset: grid size %g must be positive", o.GridSize)
	}
	return nil
}

// entry is the preprocessed form of one catalogue entry.
type entry struct {
	profiles  [FaceCount]FaceProfile
	polylines [FaceCount][][]mgl64.Vec3
}

// Tileset is an immutable catalogue with its compatibility table.
type Tileset struct {
	entries []entry
	names   []string
	table   Table
}

// New preprocesses a grouped catalogue of tile meshes. Any topology error
// aborts the whole catalogue since compatibility is global.
func New(meshes []*kernel.Mesh, opts Options) (*Tileset, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if err := checkGrouping(len(meshes)); err != nil {
		return nil, err
	}

	entries := make([]entry, len(meshes))
	errs := make([]error, len(meshes))
	forEach(opts.Workers, len(meshes), func(i int) {
		entries[i], errs[i] = profileMesh(i, meshes[i], opts)
	})
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	if opts.VerifyRotations {
		if err := verifyRotations(meshes, entries, opts); err != nil {
			return nil, err
		}
	}

	names := make([]string, len(meshes)/Orientations)
	for k := range names {
		names[k] = meshes[k*Orientations].TileName
	}
	return build(entries, names), nil
}

// FromProfiles builds a catalogue from precomputed face boundaries. Loops
// are canonicalized and signatures recomputed.
func FromProfiles(profiles [][FaceCount]FaceProfile) (*Tileset, error) {
	if err := checkGrouping(len(profiles)); err != nil {
		return nil, err
	}
	entries := make([]entry, len(profiles))
	for i := range profiles {
		for _, f := range Faces {
			entries[i].profiles[f] = NewFaceProfile(f, profiles[i][f].Loops)
		}
	}
	return build(entries, make([]string, len(profiles)/Orientations)), nil
}

func checkGrouping(n int) error {
	if n == 0 {
		return fmt.Errorf("tileset: %w: catalogue is empty", ErrUngroupedCatalogue)
	}
	if n%Orientations != 0 {
		return fmt.Errorf("tileset: %w: %d entries is not a multiple of %d", ErrUngroupedCatalogue, n, Orientations)
	}
	return nil
}

func build(entries []entry, names []string) *Tileset {
	profiles := make([][FaceCount]FaceProfile, len(entries))
	for i := range entries {
		profiles[i] = entries[i].profiles
	}
	t := &Tileset{entries: entries, names: names, table: BuildCompatibility(profiles)}
	t.logSummary()
	return t
}

func (t *Tileset) logSummary() {
	log := logger.Logger()
	empty, lonely := 0, 0
	for e := range t.entries {
		for _, f := range Faces {
			if t.entries[e].profiles[f].Signature.Empty {
				empty++
			}
			if len(t.table[e][f]) == 0 {
				lonely++
				log.Debug("tileset: face has no partner", "entry", e, "face", f.String())
			}
		}
	}
	log.Debug("tileset: catalogue built",
		"entries", len(t.entries), "tiles", t.TileCount(),
		"emptyFaces", empty, "unmatchedFaces", lonely)
}

// profileMesh runs boundary extraction, projection and hashing for one mesh.
func profileMesh(i int, m *kernel.Mesh, opts Options) (entry, error) {
	var out entry
	if m == nil {
		return out, topologyErrorf(i, "mesh is nil")
	}
	b, err := extractBoundary(i, m, opts.TileSize, opts.Epsilon)
	if err != nil {
		return out, err
	}
	for _, f := range Faces {
		next, err := faceEdges(i, b, f, opts.Epsilon)
		if err != nil {
			return out, err
		}
		chains := traceFace(next, func(v uint32) Point {
			return quantize(f.project(b.positions[v]), opts.GridSize)
		})
		loops, lines := projectChains(f, chains, b.positions, opts.GridSize)
		out.profiles[f] = NewFaceProfile(f, loops)
		out.polylines[f] = lines
	}
	return out, nil
}

func verifyRotations(meshes []*kernel.Mesh, entries []entry, opts Options) error {
	for g := 0; g < len(meshes); g += Orientations {
		for r := 1; r < Orientations; r++ {
			want, err := profileMesh(g, RotateYaw(meshes[g], r), opts)
			if err != nil {
				return err
			}
			for _, f := range Faces {
				if !sameProfile(want.profiles[f], entries[g+r].profiles[f]) {
					return fmt.Errorf("tileset: %w: entry %d face %s differs from entry %d turned %d times",
						ErrUngroupedCatalogue, g+r, f, g, r)
				}
			}
		}
	}
	return nil
}

func sameProfile(a, b FaceProfile) bool {
	if a.Signature != b.Signature || len(a.Loops) != len(b.Loops) {
		return false
	}
	for i := range a.Loops {
		if compareLoops(a.Loops[i], b.Loops[i]) != 0 {
			return false
		}
	}
	return true
}

// Len returns the number of catalogue entries.
func (t *Tileset) Len() int {
	return len(t.entries)
}

// TileCount returns the number of physical tiles.
func (t *Tileset) TileCount() int {
	return len(t.entries) / Orientations
}

// TileName returns the name of a physical tile, or "" when unnamed.
func (t *Tileset) TileName(tile uint32) string {
	if int(tile) >= len(t.names) {
		return ""
	}
	return t.names[tile]
}

// Profile returns the boundary of face f of entry.
func (t *Tileset) Profile(entry int, f Face) FaceProfile {
	return t.entries[entry].profiles[f]
}

// Signature returns the signature of face f of entry.
func (t *Tileset) Signature(entry int, f Face) Signature {
	return t.entries[entry].profiles[f].Signature
}

// Compatible returns the faces that may sit across face f of entry.
func (t *Tileset) Compatible(entry int, f Face) []FaceRef {
	return t.table[entry][f]
}

// Table returns the full compatibility table. It must not be modified.
func (t *Tileset) Table() Table {
	return t.table
}

// BoundaryPolylines returns the boundary loops of entry per face as
// polylines in normalized tile space, for debug drawing. Catalogues built
// from profiles have none.
func (t *Tileset) BoundaryPolylines(entry int) [FaceCount][][]mgl64.Vec3 {
	return t.entries[entry].polylines
}

// Fingerprint is a stable digest of every face signature, identifying the
// catalogue a placement grid was solved against.
func (t *Tileset) Fingerprint() string {
	h := fnv.New64a()
	var buf [10]byte
	for e := range t.entries {
		for _, f := range Faces {
			s := t.entries[e].profiles[f].Signature
			binary.LittleEndian.PutUint64(buf[:8], s.Hash)
			buf[8] = byte(s.Symmetry)
			buf[9] = 0
			if s.Empty {
				buf[9] = 1
			}
			h.Write(buf[:])
		}
	}
	return fmt.Sprintf("%d-%016x", len(t.entries), h.Sum64())
}
