// Package store persists solved placement grids in a SQLite database.
// Grids are keyed by the fingerprint of the catalogue they were solved
// against, the seed and the grid shape, so a changed catalogue never
// reuses a stale grid.
package store

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
	"time"

	"github.com/chazu/tessera/pkg/logger"
	"github.com/chazu/tessera/pkg/solver"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// FormatVersion is bumped whenever the encoding of GridModel.Data changes.
const FormatVersion = 1

// ErrNotFound is returned when no grid matches a key.
var ErrNotFound = errors.New("store: grid not found")

// GridModel is the database row of one solved grid.
type GridModel struct {
	ID          string `gorm:"primaryKey"` // "<fingerprint>_<seed>_<shape>"
	Fingerprint string `gorm:"index"`
	Seed        int64 // requested seed, part of the key
	SolvedSeed  int64 // seed of the attempt that produced the cells
	X, Y, Z     int
	Complete    bool
	Data        []byte // cells, gob encoded
	UpdatedAt   time.Time
}

// Metadata holds global key/value facts about the database.
type Metadata struct {
	Key   string `gorm:"primaryKey"`
	Value string
}

// GridInfo summarizes a stored grid without decoding its cells.
type GridInfo struct {
	Fingerprint string
	Seed        int64
	SolvedSeed  int64
	Shape       solver.Shape
	Complete    bool
	UpdatedAt   time.Time
}

// Store wraps the database handle.
type Store struct {
	db *gorm.DB
}

// Open opens (or creates) the database at path and migrates its tables.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}

	if err := db.AutoMigrate(&GridModel{}, &Metadata{}); err != nil {
		return nil, fmt.Errorf("store: migrate: %w", err)
	}
	if err := db.Save(&Metadata{Key: "FormatVersion", Value: fmt.Sprint(FormatVersion)}).Error; err != nil {
		return nil, fmt.Errorf("store: write metadata: %w", err)
	}

	logger.Logger().Debug("store opened", "path", path)
	return &Store{db: db}, nil
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func gridID(fingerprint string, seed int64, shape solver.Shape) string {
	return fmt.Sprintf("%s_%d_%s", fingerprint, seed, shape)
}

// SaveGrid stores g under the catalogue fingerprint and requested seed,
// replacing any grid with the same key. solvedSeed is the seed of the
// attempt that produced g. Partial grids are stored too.
func (s *Store) SaveGrid(fingerprint string, seed, solvedSeed int64, g *solver.PlacementGrid) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(g.Cells); err != nil {
		return fmt.Errorf("store: encode grid: %w", err)
	}

	id := gridID(fingerprint, seed, g.Shape)
	model := GridModel{
		ID:          id,
		Fingerprint: fingerprint,
		Seed:        seed,
		SolvedSeed:  solvedSeed,
		X:           g.Shape.X,
		Y:           g.Shape.Y,
		Z:           g.Shape.Z,
		Complete:    g.Complete(),
		Data:        buf.Bytes(),
	}

	// Upsert
	if err := s.db.Save(&model).Error; err != nil {
		return fmt.Errorf("store: save grid %s: %w", id, err)
	}
	logger.Logger().Debug("grid saved", "id", id, "complete", model.Complete)
	return nil
}

// LoadGrid returns the grid stored under the given key and the seed that
// solved it, or ErrNotFound.
func (s *Store) LoadGrid(fingerprint string, seed int64, shape solver.Shape) (*solver.PlacementGrid, int64, error) {
	id := gridID(fingerprint, seed, shape)
	var model GridModel
	err := s.db.First(&model, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, 0, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("store: load grid %s: %w", id, err)
	}

	g := &solver.PlacementGrid{Shape: shape}
	if err := gob.NewDecoder(bytes.NewReader(model.Data)).Decode(&g.Cells); err != nil {
		return nil, 0, fmt.Errorf("store: decode grid %s: %w", id, err)
	}
	if len(g.Cells) != shape.Len() {
		return nil, 0, fmt.Errorf("store: grid %s has %d cells, want %d", id, len(g.Cells), shape.Len())
	}
	return g, model.SolvedSeed, nil
}

// ListGrids returns every grid stored for a catalogue, most recent first.
func (s *Store) ListGrids(fingerprint string) ([]GridInfo, error) {
	var models []GridModel
	err := s.db.Select("fingerprint", "seed", "solved_seed", "x", "y", "z", "complete", "updated_at").
		Where("fingerprint = ?", fingerprint).
		Order("updated_at DESC").Order("seed").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("store: list grids: %w", err)
	}

	out := make([]GridInfo, len(models))
	for i, m := range models {
		out[i] = GridInfo{
			Fingerprint: m.Fingerprint,
			Seed:        m.Seed,
			SolvedSeed:  m.SolvedSeed,
			Shape:       solver.Shape{X: m.X, Y: m.Y, Z: m.Z},
			Complete:    m.Complete,
			UpdatedAt:   m.UpdatedAt,
		}
	}
	return out, nil
}

// DeleteGrids removes every grid stored for a catalogue and reports how
// many rows went.
func (s *Store) DeleteGrids(fingerprint string) (int64, error) {
	res := s.db.Where("fingerprint = ?", fingerprint).Delete(&GridModel{})
	if res.Error != nil {
		return 0, fmt.Errorf("store: delete grids: %w", res.Error)
	}
	return res.RowsAffected, nil
}
