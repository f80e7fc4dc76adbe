package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"github.com/chazu/tessera/pkg/config"
	"github.com/chazu/tessera/pkg/engine"
	"github.com/chazu/tessera/pkg/graph"
	"github.com/chazu/tessera/pkg/kernel"
	"github.com/chazu/tessera/pkg/kernel/sdfx"
	"github.com/chazu/tessera/pkg/logger"
	"github.com/chazu/tessera/pkg/preview"
	"github.com/chazu/tessera/pkg/solver"
	"github.com/chazu/tessera/pkg/store"
	"github.com/chazu/tessera/pkg/tessellate"
	"github.com/chazu/tessera/pkg/tileset"
	"github.com/go-gl/mathgl/mgl64"
)

// App runs the tessera pipeline: a catalogue script is evaluated into a
// design graph, tessellated into one mesh per tile, expanded into yaw
// variants, profiled into a tileset and solved onto a grid.
type App struct {
	cfg    *config.Config
	engine *engine.Engine
	kernel kernel.Kernel
	store  *store.Store
}

// TileData summarizes one physical tile of the catalogue.
type TileData struct {
	Name       string `json:"name"`
	Index      int    `json:"index"`
	Triangles  int    `json:"triangles"`
	EmptyFaces int    `json:"emptyFaces"`
	Color      string `json:"color"`
}

// EvalErrorData is a JSON-serializable pipeline error or warning.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// EvalResult is the outcome of building a catalogue from a script.
type EvalResult struct {
	Tiles       []TileData      `json:"tiles"`
	Fingerprint string          `json:"fingerprint"`
	Errors      []EvalErrorData `json:"errors"`
	Warnings    []EvalErrorData `json:"warnings"`

	tileset  *tileset.Tileset
	tileSize mgl64.Vec3
}

// PlacementData is one solved cell with its world transform.
type PlacementData struct {
	Cell        [3]int      `json:"cell"`
	Tile        string      `json:"tile"`
	Orientation uint8       `json:"orientation"`
	Transform   [16]float64 `json:"transform"`
}

// SolveResult is the outcome of a full run.
type SolveResult struct {
	EvalResult
	Shape      solver.Shape          `json:"shape"`
	Seed       int64                 `json:"seed"`
	SolvedSeed int64                 `json:"solvedSeed"` // seed of the attempt that produced Grid
	Attempts   int                   `json:"attempts"`
	Cached     bool                  `json:"cached"`
	Complete   bool                  `json:"complete"`
	Placements []PlacementData       `json:"placements"`
	Previews   []string              `json:"previews"`
	Grid       *solver.PlacementGrid `json:"-"`
}

// NewApp creates an App with an engine, the sdfx kernel and, when
// cfg.DBPath is set, a grid store.
func NewApp(cfg *config.Config) (*App, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	eng := engine.NewEngine()
	eng.SetTileSize(vec3(cfg.TileSize))

	a := &App{
		cfg:    cfg,
		engine: eng,
		kernel: sdfx.NewWithCells(cfg.MeshCells),
	}
	if cfg.DBPath != "" {
		s, err := store.Open(cfg.DBPath)
		if err != nil {
			return nil, err
		}
		a.store = s
	}
	return a, nil
}

// Close releases the grid store, if any.
func (a *App) Close() error {
	if a.store == nil {
		return nil
	}
	return a.store.Close()
}

func vec3(v [3]float64) graph.Vec3 {
	return graph.Vec3{X: v[0], Y: v[1], Z: v[2]}
}

func errorData(msg string) EvalErrorData {
	return EvalErrorData{Message: msg}
}

// Evaluate builds the tile catalogue declared by source.
func (a *App) Evaluate(source string) EvalResult {
	result := EvalResult{
		Tiles:    []TileData{},
		Errors:   []EvalErrorData{},
		Warnings: []EvalErrorData{},
	}

	// Step 1: Evaluate and validate the script into a design graph.
	res, err := a.engine.Run(source)
	if err != nil {
		// Fatal error (panic, timeout, etc.)
		log.Printf("Evaluate fatal error: %v", err)
		result.Errors = append(result.Errors, errorData(err.Error()))
		return result
	}
	for _, w := range res.Warnings {
		result.Warnings = append(result.Warnings, EvalErrorData{Line: w.Line, Col: w.Col, Message: w.Message})
	}
	if !res.OK() {
		for _, e := range res.Errors {
			result.Errors = append(result.Errors, EvalErrorData{Line: e.Line, Col: e.Col, Message: e.Message})
		}
		return result
	}

	ts := res.Graph.Settings.TileSize
	if ts.X != ts.Y {
		result.Errors = append(result.Errors, errorData(fmt.Sprintf(
			"tile size (%g, %g, %g): X and Y must match so tiles can turn about +Z", ts.X, ts.Y, ts.Z)))
		return result
	}
	result.tileSize = ts.Vec()

	// Step 2: Tessellate every tile into an open-faced mesh.
	meshes, err := tessellate.Tessellate(res.Graph, a.kernel)
	if err != nil {
		logger.Logger().Warn("tessellation failed", "err", err)
		result.Errors = append(result.Errors, errorData("tessellation failed: "+err.Error()))
		return result
	}
	if len(meshes) == 0 {
		return result
	}

	// Step 3: Profile the yaw variants and build the compatibility table.
	opts := a.cfg.TilesetOptions()
	opts.TileSize = result.tileSize
	set, err := tileset.New(tileset.ExpandRotations(meshes), opts)
	if err != nil {
		logger.Logger().Warn("catalogue failed", "err", err)
		result.Errors = append(result.Errors, errorData("catalogue failed: "+err.Error()))
		return result
	}
	result.tileset = set
	result.Fingerprint = set.Fingerprint()

	for i, m := range meshes {
		empty := 0
		for _, f := range tileset.Faces {
			if set.Signature(i*tileset.Orientations, f).Empty {
				empty++
			}
		}
		c := preview.TileColor(uint32(i))
		result.Tiles = append(result.Tiles, TileData{
			Name:       m.TileName,
			Index:      i,
			Triangles:  m.TriangleCount(),
			EmptyFaces: empty,
			Color:      fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B),
		})
	}
	return result
}

// Solve builds the catalogue and fills the configured grid. A complete grid
// stored for the same catalogue, seed and shape is reused.
func (a *App) Solve(ctx context.Context, source string) SolveResult {
	result := SolveResult{
		EvalResult: a.Evaluate(source),
		Shape:      a.cfg.Shape,
		Seed:       a.cfg.Seed,
		Placements: []PlacementData{},
		Previews:   []string{},
	}
	if len(result.Errors) > 0 {
		return result
	}
	set := result.tileset
	if set == nil {
		result.Errors = append(result.Errors, errorData("script declares no tiles"))
		return result
	}

	grid, err := a.solve(ctx, set, &result)
	if err != nil {
		result.Errors = append(result.Errors, errorData(err.Error()))
	}
	if grid == nil {
		return result
	}
	result.Grid = grid
	result.Complete = grid.Complete()

	for i, c := range grid.Cells {
		if !c.Solved {
			continue
		}
		x, y, z := grid.Shape.Coord(i)
		result.Placements = append(result.Placements, PlacementData{
			Cell:        [3]int{x, y, z},
			Tile:        set.TileName(c.Tile),
			Orientation: c.Orientation,
			Transform:   grid.Transform(i, result.tileSize),
		})
	}

	if a.cfg.PreviewPath != "" {
		paths, err := a.writePreviews(grid, set)
		if err != nil {
			result.Errors = append(result.Errors, errorData(err.Error()))
		}
		result.Previews = append(result.Previews, paths...)
	}
	return result
}

func (a *App) solve(ctx context.Context, set *tileset.Tileset, result *SolveResult) (*solver.PlacementGrid, error) {
	log := logger.Logger()
	fp := result.Fingerprint

	if a.store != nil {
		grid, solvedSeed, err := a.store.LoadGrid(fp, result.Seed, result.Shape)
		switch {
		case err == nil && grid.Complete() && grid.Verify(set) == nil:
			result.Cached = true
			result.SolvedSeed = solvedSeed
			return grid, nil
		case err != nil && !errors.Is(err, store.ErrNotFound):
			log.Warn("stored grid unusable", "err", err)
		}
	}

	s, err := solver.New(set)
	if err != nil {
		return nil, err
	}
	res, solveErr := solver.SolveWithRetries(ctx, s, result.Shape, result.Seed, a.cfg.Attempts)
	result.Attempts = res.Attempts
	result.SolvedSeed = res.Seed
	if res.Grid == nil {
		return nil, solveErr
	}
	log.Info("grid solved", "shape", result.Shape.String(), "seed", res.Seed,
		"attempts", res.Attempts, "complete", solveErr == nil)

	if a.store != nil {
		if err := a.store.SaveGrid(fp, result.Seed, res.Seed, res.Grid); err != nil {
			return res.Grid, errors.Join(solveErr, err)
		}
	}
	return res.Grid, solveErr
}

// ErrNoStore is returned by the stored-grid operations when no database is
// configured.
var ErrNoStore = errors.New("no grid database configured")

// StoredGrids lists the grids stored for a catalogue fingerprint, most
// recently solved first.
func (a *App) StoredGrids(fingerprint string) ([]store.GridInfo, error) {
	if a.store == nil {
		return nil, ErrNoStore
	}
	return a.store.ListGrids(fingerprint)
}

// ForgetGrids deletes every grid stored for a catalogue fingerprint and
// returns how many were removed.
func (a *App) ForgetGrids(fingerprint string) (int64, error) {
	if a.store == nil {
		return 0, ErrNoStore
	}
	n, err := a.store.DeleteGrids(fingerprint)
	if err != nil {
		return 0, err
	}
	logger.Logger().Info("stored grids removed", "fingerprint", fingerprint, "count", n)
	return n, nil
}

// writePreviews renders every layer. Layer 0 goes to PreviewPath, higher
// layers get a ".z<N>" suffix before the extension.
func (a *App) writePreviews(grid *solver.PlacementGrid, set *tileset.Tileset) ([]string, error) {
	var paths []string
	for z := 0; z < grid.Shape.Z; z++ {
		path := layerPath(a.cfg.PreviewPath, z)
		opts := preview.Options{Cell: a.cfg.PreviewCell, Layer: z, Labels: true}
		if a.cfg.PreviewOutlines {
			opts.Outlines = set
		}
		if err := preview.WriteFile(path, grid, opts); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func layerPath(path string, z int) string {
	if z == 0 {
		return path
	}
	ext := filepath.Ext(path)
	return fmt.Sprintf("%s.z%d%s", strings.TrimSuffix(path, ext), z, ext)
}
