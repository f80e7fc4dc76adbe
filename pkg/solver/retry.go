package solver

import (
	"context"
	"errors"
	"fmt"

	"github.com/chazu/tessera/pkg/logger"
)

// Result is the outcome of SolveWithRetries.
type Result struct {
	Grid     *PlacementGrid
	Seed     int64 // seed of the returned grid
	Attempts int
}

// SolveWithRetries runs up to attempts solves with seeds seed, seed+1, ...
// and returns the first complete grid. When every attempt fails, Result
// holds the last partial grid and the error wraps its *SolveFailed.
func SolveWithRetries(ctx context.Context, s *Solver, shape Shape, seed int64, attempts int) (Result, error) {
	if attempts < 1 {
		attempts = 1
	}
	log := logger.Logger()

	var res Result
	var lastErr error
	for i := 0; i < attempts; i++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		res.Seed = seed + int64(i)
		res.Attempts = i + 1

		grid, err := s.Solve(shape, res.Seed)
		res.Grid = grid
		if err == nil {
			log.Debug("solver: solved", "shape", shape.String(), "seed", res.Seed, "attempts", res.Attempts)
			return res, nil
		}
		var failed *SolveFailed
		if !errors.As(err, &failed) {
			return res, err
		}
		log.Debug("solver: attempt failed", "seed", res.Seed, "cell", failed.CellIndex, "committed", failed.Committed)
		lastErr = err
	}
	return res, fmt.Errorf("solver: no solution for %s in %d attempts: %w", shape, attempts, lastErr)
}
