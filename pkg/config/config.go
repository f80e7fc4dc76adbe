// Package config loads and saves the tessera run configuration.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/chazu/tessera/pkg/solver"
	"github.com/chazu/tessera/pkg/tileset"
	"github.com/go-gl/mathgl/mgl64"
)

// Config holds every tunable of a tessera run.
type Config struct {
	// Catalogue
	TileSize        [3]float64 `json:"tile_size"`
	Epsilon         float64    `json:"epsilon"`
	GridSize        float64    `json:"grid_size"`
	MeshCells       int        `json:"mesh_cells"`
	Workers         int        `json:"workers"`
	VerifyRotations bool       `json:"verify_rotations"`

	// Solve
	Shape    solver.Shape `json:"shape"`
	Seed     int64        `json:"seed"`
	Attempts int          `json:"attempts"`

	// Output
	DBPath          string `json:"db_path"`
	PreviewPath     string `json:"preview_path"`
	PreviewCell     int    `json:"preview_cell"`
	PreviewOutlines bool   `json:"preview_outlines"`
	LogLevel        string `json:"log_level"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		TileSize:        [3]float64{2, 2, 2},
		Epsilon:         tileset.DefaultEpsilon,
		GridSize:        tileset.DefaultGridSize,
		MeshCells:       64,
		Workers:         4,
		VerifyRotations: false,

		Shape:    solver.Shape{X: 8, Y: 8, Z: 1},
		Seed:     1,
		Attempts: 10,

		DBPath:          "",
		PreviewPath:     "",
		PreviewCell:     32,
		PreviewOutlines: false,
		LogLevel:        "info",
	}
}

// Load reads a JSON configuration from path on top of the defaults.
// A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to path as indented JSON.
func (c *Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate rejects values no run could use.
func (c *Config) Validate() error {
	if err := c.Shape.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.Attempts <= 0 {
		return fmt.Errorf("config: attempts %d must be positive", c.Attempts)
	}
	if c.MeshCells <= 0 {
		return fmt.Errorf("config: mesh cells %d must be positive", c.MeshCells)
	}
	if err := c.TilesetOptions().Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// TilesetOptions converts the catalogue settings.
func (c *Config) TilesetOptions() tileset.Options {
	return tileset.Options{
		TileSize:        mgl64.Vec3(c.TileSize),
		Epsilon:         c.Epsilon,
		GridSize:        c.GridSize,
		Workers:         c.Workers,
		VerifyRotations: c.VerifyRotations,
	}
}
