package solver

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidShape reports a grid with a non-positive dimension.
	ErrInvalidShape = errors.New("invalid grid shape")
	// ErrEmptyCatalogue reports a catalogue without entries.
	ErrEmptyCatalogue = errors.New("empty catalogue")
)

// SolveFailed reports the cell whose candidates ran out. The compatibility
// rules stay valid; retry with another seed or widen the catalogue.
type SolveFailed struct {
	CellIndex int
	X, Y, Z   int
	Committed int // cells placed before the contradiction
}

func (e *SolveFailed) Error() string {
	return fmt.Sprintf("solver: contradiction at cell %d (%d,%d,%d) after %d placements",
		e.CellIndex, e.X, e.Y, e.Z, e.Committed)
}
