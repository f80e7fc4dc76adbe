package store

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/chazu/tessera/pkg/solver"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "grids.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleGrid(shape solver.Shape) *solver.PlacementGrid {
	g := solver.NewPlacementGrid(shape)
	for i := range g.Cells {
		g.Cells[i] = solver.Placement{Tile: uint32(i % 3), Orientation: uint8(i % 4), Solved: true}
	}
	return g
}

func TestSaveLoadGrid(t *testing.T) {
	s := openTemp(t)
	shape := solver.Shape{X: 3, Y: 2, Z: 2}
	want := sampleGrid(shape)

	if err := s.SaveGrid("cat-a", 42, 44, want); err != nil {
		t.Fatalf("SaveGrid: %v", err)
	}
	got, solvedSeed, err := s.LoadGrid("cat-a", 42, shape)
	if err != nil {
		t.Fatalf("LoadGrid: %v", err)
	}
	if solvedSeed != 44 {
		t.Errorf("solved seed = %d, want 44", solvedSeed)
	}
	if got.Shape != shape {
		t.Errorf("shape = %s, want %s", got.Shape, shape)
	}
	if len(got.Cells) != len(want.Cells) {
		t.Fatalf("got %d cells, want %d", len(got.Cells), len(want.Cells))
	}
	for i := range want.Cells {
		if got.Cells[i] != want.Cells[i] {
			t.Errorf("cell %d = %+v, want %+v", i, got.Cells[i], want.Cells[i])
		}
	}
}

func TestSaveGridReplaces(t *testing.T) {
	s := openTemp(t)
	shape := solver.Shape{X: 2, Y: 2, Z: 1}
	g := sampleGrid(shape)
	if err := s.SaveGrid("cat", 1, 1, g); err != nil {
		t.Fatal(err)
	}

	g.Cells[0] = solver.Placement{}
	if err := s.SaveGrid("cat", 1, 1, g); err != nil {
		t.Fatal(err)
	}

	got, _, err := s.LoadGrid("cat", 1, shape)
	if err != nil {
		t.Fatal(err)
	}
	if got.Cells[0].Solved {
		t.Error("second save did not replace the first")
	}
	list, err := s.ListGrids("cat")
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 {
		t.Fatalf("ListGrids returned %d rows, want 1", len(list))
	}
	if list[0].Complete {
		t.Error("partial grid listed as complete")
	}
}

func TestLoadGridNotFound(t *testing.T) {
	s := openTemp(t)
	shape := solver.Shape{X: 2, Y: 2, Z: 1}
	if err := s.SaveGrid("cat", 1, 1, sampleGrid(shape)); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name        string
		fingerprint string
		seed        int64
		shape       solver.Shape
	}{
		{"other catalogue", "other", 1, shape},
		{"other seed", "cat", 2, shape},
		{"other shape", "cat", 1, solver.Shape{X: 2, Y: 2, Z: 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := s.LoadGrid(tt.fingerprint, tt.seed, tt.shape)
			if !errors.Is(err, ErrNotFound) {
				t.Errorf("err = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestListAndDeleteGrids(t *testing.T) {
	s := openTemp(t)
	shape := solver.Shape{X: 2, Y: 1, Z: 1}
	for seed := int64(1); seed <= 3; seed++ {
		if err := s.SaveGrid("cat", seed, seed, sampleGrid(shape)); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.SaveGrid("other", 1, 1, sampleGrid(shape)); err != nil {
		t.Fatal(err)
	}

	list, err := s.ListGrids("cat")
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 3 {
		t.Fatalf("ListGrids returned %d rows, want 3", len(list))
	}
	seen := map[int64]bool{}
	for _, info := range list {
		if info.Fingerprint != "cat" || info.Shape != shape || !info.Complete {
			t.Errorf("info = %+v", info)
		}
		if info.SolvedSeed != info.Seed {
			t.Errorf("seed %d listed as solved by %d", info.Seed, info.SolvedSeed)
		}
		seen[info.Seed] = true
	}
	if len(seen) != 3 {
		t.Errorf("seeds = %v, want 1..3", seen)
	}

	n, err := s.DeleteGrids("cat")
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Errorf("deleted %d rows, want 3", n)
	}
	if list, _ := s.ListGrids("cat"); len(list) != 0 {
		t.Errorf("%d grids left after delete", len(list))
	}
	if _, _, err := s.LoadGrid("other", 1, shape); err != nil {
		t.Errorf("unrelated grid lost: %v", err)
	}
}

func TestReopenKeepsGrids(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grids.db")
	shape := solver.Shape{X: 1, Y: 1, Z: 1}

	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.SaveGrid("cat", 5, 5, sampleGrid(shape)); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	s, err = Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if _, _, err := s.LoadGrid("cat", 5, shape); err != nil {
		t.Errorf("LoadGrid after reopen: %v", err)
	}
}
