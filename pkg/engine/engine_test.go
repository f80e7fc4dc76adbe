package engine

import (
	"strings"
	"testing"
	"time"

	"github.com/chazu/tessera/pkg/graph"
)

func TestEvaluateWithoutTiles(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"empty", ""},
		{"whitespace", "   \n\t  \n  "},
		{"arithmetic", "(+ 1 2)"},
		{"defs", "(def x 10)\n(def y 20)\n(+ x y)"},
		{"comments", ";; tiles go here\n; later"},
	}
	eng := NewEngine()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, evalErrs, err := eng.Evaluate(tt.source)
			if err != nil {
				t.Fatalf("unexpected fatal error: %v", err)
			}
			if len(evalErrs) > 0 {
				t.Fatalf("unexpected eval errors: %v", evalErrs)
			}
			if g == nil {
				t.Fatal("expected non-nil graph")
			}
			if g.NodeCount() != 0 || len(g.Tiles()) != 0 {
				t.Errorf("expected empty graph, got %d nodes", g.NodeCount())
			}
		})
	}
}

func TestEvaluateUserErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"unmatched paren", "(+ 1 2"},
		{"unmatched paren on line 2", "(+ 1 2)\n(+ 3"},
		{"undefined symbol", "(+ 1 undefined-symbol)"},
		{"unterminated tile", `(deftile "a" (box 1 1 1)`},
	}
	eng := NewEngine()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, evalErrs, err := eng.Evaluate(tt.source)
			if err != nil {
				t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
			}
			if g != nil {
				t.Error("expected nil graph on eval error")
			}
			if len(evalErrs) == 0 {
				t.Fatal("expected at least one eval error")
			}
			e := evalErrs[0]
			if e.Message == "" {
				t.Error("eval error message should not be empty")
			}
			if e.Line < 0 {
				t.Errorf("line = %d, want >= 0", e.Line)
			}
		})
	}
}

func TestEvalErrorString(t *testing.T) {
	tests := []struct {
		err  EvalError
		want string
	}{
		{EvalError{Line: 5, Message: "something went wrong"}, "line 5: something went wrong"},
		{EvalError{Message: "no location"}, "no location"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}

func TestEvaluateDeterministic(t *testing.T) {
	eng := NewEngine()
	source := `
(deftile "post" (union (box 0.5 0.5 2) (place (cylinder :height 2 :radius 0.1) :at (vec3 0.5 0 0))))
(deftile "air")
`
	var first *graph.DesignGraph
	for i := 0; i < 5; i++ {
		g, evalErrs, err := eng.Evaluate(source)
		if err != nil {
			t.Fatalf("iteration %d: unexpected fatal error: %v", i, err)
		}
		if len(evalErrs) > 0 {
			t.Fatalf("iteration %d: unexpected eval errors: %v", i, evalErrs)
		}
		if first == nil {
			first = g
			continue
		}
		if g.NodeCount() != first.NodeCount() {
			t.Fatalf("iteration %d: %d nodes, want %d", i, g.NodeCount(), first.NodeCount())
		}
		for id := range first.Nodes {
			if g.Get(id) == nil {
				t.Errorf("iteration %d: node %s missing", i, id.Short())
			}
		}
	}
}

func TestEvaluateTimeout(t *testing.T) {
	eng := NewEngineWithTimeout(20 * time.Millisecond)
	eng.generation = 1
	ch := make(chan evalResult) // never sends

	start := time.Now()
	_, _, err := eng.wait(ch, 1)
	if err == nil {
		t.Fatal("expected timeout error, got nil")
	}
	if !strings.Contains(err.Error(), "timed out") {
		t.Errorf("expected timeout error message, got: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("wait took %s", elapsed)
	}
}

func TestEvaluateGenerationDiscardsStale(t *testing.T) {
	eng := NewEngine()
	eng.generation = 2

	ch := make(chan evalResult, 1)
	ch <- evalResult{}

	_, _, err := eng.wait(ch, 1)
	if err == nil {
		t.Fatal("expected error for stale generation")
	}
	if !strings.Contains(err.Error(), "superseded") {
		t.Errorf("expected superseded error, got: %v", err)
	}
}

func TestNewEngineWithTimeoutDefault(t *testing.T) {
	if got := NewEngineWithTimeout(0).timeout; got != DefaultEvalTimeout {
		t.Errorf("timeout = %s, want %s", got, DefaultEvalTimeout)
	}
	if got := NewEngineWithTimeout(time.Second).timeout; got != time.Second {
		t.Errorf("timeout = %s, want 1s", got)
	}
}

func TestParseZygomysError(t *testing.T) {
	tests := []struct {
		name     string
		msg      string
		wantLine int
		wantMsg  string
	}{
		{
			name:     "error on line format",
			msg:      "Error on line 5: unexpected token\n",
			wantLine: 5,
			wantMsg:  "unexpected token",
		},
		{
			name:     "no line info",
			msg:      "some generic error",
			wantLine: 0,
			wantMsg:  "some generic error",
		},
		{
			name:     "line format lowercase",
			msg:      "error on line 12: missing paren",
			wantLine: 12,
			wantMsg:  "missing paren",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := parseZygomysError(errString(tt.msg))
			if len(errs) == 0 {
				t.Fatal("expected at least one error")
			}
			e := errs[0]
			if e.Line != tt.wantLine {
				t.Errorf("line = %d, want %d", e.Line, tt.wantLine)
			}
			if !strings.Contains(e.Message, tt.wantMsg) {
				t.Errorf("message = %q, want containing %q", e.Message, tt.wantMsg)
			}
		})
	}
}

// errString is a simple error type for testing.
type errString string

func (e errString) Error() string { return string(e) }

func TestSetTileSize(t *testing.T) {
	eng := NewEngine()
	eng.SetTileSize(graph.Vec3{X: 4, Y: 4, Z: 1})
	eng.SetTileSize(graph.Vec3{X: -1, Y: 1, Z: 1})

	g, evalErrs, err := eng.Evaluate(`(deftile "slab" (box 4 4 1))`)
	if err != nil || len(evalErrs) > 0 {
		t.Fatalf("Evaluate: %v %v", err, evalErrs)
	}
	if want := (graph.Vec3{X: 4, Y: 4, Z: 1}); g.Settings.TileSize != want {
		t.Errorf("tile size = %+v, want %+v", g.Settings.TileSize, want)
	}

	g, _, _ = eng.Evaluate(`(tile-size 3 3 3)`)
	if want := (graph.Vec3{X: 3, Y: 3, Z: 3}); g.Settings.TileSize != want {
		t.Errorf("script override: tile size = %+v, want %+v", g.Settings.TileSize, want)
	}
}
