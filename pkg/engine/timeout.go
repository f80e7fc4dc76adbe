package engine

import (
	"fmt"
	"time"

	"github.com/chazu/tessera/pkg/graph"
)

// DefaultEvalTimeout is the limit for a single evaluation unless the engine
// was built with another one.
const DefaultEvalTimeout = 5 * time.Second

// evalResult carries one evaluation back from its goroutine.
type evalResult struct {
	graph  *graph.DesignGraph
	errors []EvalError
	err    error
}

// wait blocks until ch delivers or the engine timeout fires. A result whose
// generation is no longer current is discarded: a newer Evaluate started
// while it ran. On timeout the evaluating goroutine keeps running; its
// buffered send completes later and is dropped.
func (e *Engine) wait(ch <-chan evalResult, gen uint64) (*graph.DesignGraph, []EvalError, error) {
	timer := time.NewTimer(e.timeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		e.mu.Lock()
		current := e.generation
		e.mu.Unlock()
		if gen != current {
			return nil, nil, fmt.Errorf("engine: evaluation superseded by newer request")
		}
		return res.graph, res.errors, res.err

	case <-timer.C:
		return nil, nil, fmt.Errorf("engine: evaluation timed out after %s", e.timeout)
	}
}
