// Package engine provides the Lisp evaluation engine for Tessera.
// It wraps zygomys in a sandboxed environment and produces a tile design
// graph from catalogue scripts.
package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/chazu/tessera/pkg/graph"
	"github.com/chazu/tessera/pkg/logger"
	zygo "github.com/glycerine/zygomys/zygo"
)

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error or a runtime error in user code.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// EvalWarning represents a non-fatal warning produced during evaluation.
type EvalWarning struct {
	Line    int
	Col     int
	Message string
	NodeID  graph.NodeID
}

// EvalResult bundles the full output of an evaluation.
type EvalResult struct {
	Graph    *graph.DesignGraph
	Errors   []EvalError
	Warnings []EvalWarning
}

// OK reports whether the result holds a usable graph.
func (r EvalResult) OK() bool {
	return r.Graph != nil && len(r.Errors) == 0
}

// Engine wraps the zygomys interpreter for Tessera evaluation.
// It is safe for concurrent use; each call to Evaluate creates a fresh
// sandboxed environment for determinism.
type Engine struct {
	mu         sync.Mutex
	generation uint64
	timeout    time.Duration
	tileSize   graph.Vec3
}

// NewEngine creates an Engine with DefaultEvalTimeout.
func NewEngine() *Engine {
	return NewEngineWithTimeout(DefaultEvalTimeout)
}

// NewEngineWithTimeout creates an Engine that abandons evaluations running
// longer than d. Non-positive values select DefaultEvalTimeout.
func NewEngineWithTimeout(d time.Duration) *Engine {
	if d <= 0 {
		d = DefaultEvalTimeout
	}
	return &Engine{timeout: d, tileSize: graph.DefaultTileSize}
}

// SetTileSize changes the tile size graphs start with. Scripts may still
// override it with tile-size. Non-positive sizes are ignored.
func (e *Engine) SetTileSize(v graph.Vec3) {
	if !v.Positive() {
		return
	}
	e.mu.Lock()
	e.tileSize = v
	e.mu.Unlock()
}

// Evaluate takes Lisp source code and produces a new DesignGraph.
// Each call creates a fresh zygomys sandbox for deterministic evaluation.
//
// Return semantics:
//   - On success: returns graph + nil errors + nil error
//   - On parse/eval failure: returns nil graph + eval errors + nil error
//   - On fatal failure (timeout, panic): returns nil + nil + error
func (e *Engine) Evaluate(source string) (*graph.DesignGraph, []EvalError, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	tileSize := e.tileSize
	e.mu.Unlock()

	ch := make(chan evalResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("engine: panic during evaluation: %v", r)}
			}
		}()

		g, evalErrs, err := e.evaluate(source, tileSize)
		ch <- evalResult{graph: g, errors: evalErrs, err: err}
	}()

	return e.wait(ch, gen)
}

// Run evaluates source and validates the resulting graph. Blocking
// validation findings are reported as EvalErrors with a nil Graph;
// advisory findings become warnings.
func (e *Engine) Run(source string) (EvalResult, error) {
	g, evalErrs, err := e.Evaluate(source)
	if err != nil {
		return EvalResult{}, err
	}
	if len(evalErrs) > 0 {
		return EvalResult{Errors: evalErrs}, nil
	}

	res := EvalResult{Graph: g}
	vr := graph.ValidateAll(g)
	for _, ve := range vr.Errors {
		res.Errors = append(res.Errors, EvalError{Message: ve.Error()})
	}
	for _, w := range vr.Warnings {
		res.Warnings = append(res.Warnings, EvalWarning{Message: w.Message, NodeID: w.NodeID})
	}
	if len(res.Errors) > 0 {
		res.Graph = nil
	}
	logger.Logger().Debug("engine: evaluated script",
		"tiles", len(g.Tiles()), "nodes", g.NodeCount(),
		"errors", len(res.Errors), "warnings", len(res.Warnings))
	return res, nil
}

// evaluate performs the actual zygomys evaluation in a fresh sandbox.
func (e *Engine) evaluate(source string, tileSize graph.Vec3) (*graph.DesignGraph, []EvalError, error) {
	g := graph.New()
	g.Settings.TileSize = tileSize

	// Empty source is a valid program that produces an empty graph.
	if strings.TrimSpace(source) == "" {
		return g, nil, nil
	}

	// Sandbox mode prevents user code from accessing the filesystem or syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()
	registerBuiltins(env, g)

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return nil, parseZygomysError(err), nil
	}
	if _, err := env.Run(); err != nil {
		return nil, parseZygomysError(err), nil
	}

	return g, nil, nil
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into one or more EvalError values.
// It attempts to extract line number information from the error message.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()

	for _, re := range []*regexp.Regexp{linePattern, linePatternShort} {
		if m := re.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
		}
	}

	// Fallback: no line info available.
	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
