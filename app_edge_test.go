package main

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/chazu/tessera/pkg/solver"
)

// ---------------------------------------------------------------------------
// 1. Rapid evaluation: no panics when valid and invalid scripts alternate.
// ---------------------------------------------------------------------------

func TestE2ERapidEvaluationAlternating(t *testing.T) {
	// zygomys keeps global state that is not safe for concurrent sandbox
	// creation, so calls stay sequential; the engine mutex serializes them
	// in production anyway.
	app := newTestApp(t, testConfig())

	sources := []string{
		`(deftile "ok" (box 1 1 1))`,
		`(deftile "broken"`,
		``,
		`(deftile "dup") (deftile "dup")`,
		`(deftile "also-ok")`,
		`(+ 1 2)`,
		`;; just a comment`,
		`(undefined-func 1 2 3)`,
		`(deftile "last" (box 0.5 0.5 0.5))`,
	}

	for i, source := range sources {
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Errorf("iteration %d panicked on source %q: %v", i, source, r)
				}
			}()
			app.Evaluate(source)
		}()
	}

	// The engine recovers cleanly after errors.
	result := app.Evaluate(`(deftile "after")`)
	failOnErrors(t, result.Errors)
	if len(result.Tiles) != 1 || result.Tiles[0].Name != "after" {
		t.Errorf("tiles = %+v", result.Tiles)
	}
}

// ---------------------------------------------------------------------------
// 2. Comments only: no tiles, no errors.
// ---------------------------------------------------------------------------

func TestE2ECommentsOnly(t *testing.T) {
	app := newTestApp(t, testConfig())

	source := `
;; This is a comment
;; Another comment with :keyword
; And another
`
	result := app.Evaluate(source)
	failOnErrors(t, result.Errors)
	if len(result.Tiles) != 0 {
		t.Errorf("expected 0 tiles for comments-only source, got %d", len(result.Tiles))
	}
}

// ---------------------------------------------------------------------------
// 3. Palette wrapping: more tiles than colours still get one each.
// ---------------------------------------------------------------------------

func TestE2EColorPaletteWrapping(t *testing.T) {
	app := newTestApp(t, testConfig())

	var b strings.Builder
	for i := 0; i < 9; i++ {
		fmt.Fprintf(&b, "(deftile \"t%d\")\n", i)
	}
	result := app.Evaluate(b.String())
	failOnErrors(t, result.Errors)

	if len(result.Tiles) != 9 {
		t.Fatalf("expected 9 tiles, got %d", len(result.Tiles))
	}
	for _, tile := range result.Tiles {
		if tile.Color == "" {
			t.Errorf("tile %q should have a colour assigned", tile.Name)
		}
	}
	if result.Tiles[0].Color != result.Tiles[8].Color {
		t.Errorf("palette did not wrap: %s vs %s", result.Tiles[0].Color, result.Tiles[8].Color)
	}
}

// ---------------------------------------------------------------------------
// 4. Arithmetic in scripts feeds geometry.
// ---------------------------------------------------------------------------

func TestE2ENestedArithmeticDef(t *testing.T) {
	app := newTestApp(t, testConfig())

	source := `
(def half (/ 2.0 4))
(def size (* half 2))
(deftile "cube" (box size size size))
`
	result := app.Evaluate(source)
	failOnErrors(t, result.Errors)
	if len(result.Tiles) != 1 || result.Tiles[0].Triangles == 0 {
		t.Errorf("tiles = %+v, want one meshed cube", result.Tiles)
	}
	if result.Tiles[0].EmptyFaces != 6 {
		t.Errorf("floating cube has %d empty faces, want 6", result.Tiles[0].EmptyFaces)
	}
}

// ---------------------------------------------------------------------------
// 5. Single-cell and tall grids.
// ---------------------------------------------------------------------------

func TestE2EGridShapes(t *testing.T) {
	tests := []struct {
		name  string
		shape solver.Shape
	}{
		{"single cell", solver.Shape{X: 1, Y: 1, Z: 1}},
		{"column", solver.Shape{X: 1, Y: 1, Z: 5}},
		{"slab", solver.Shape{X: 6, Y: 1, Z: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			cfg.Shape = tt.shape
			app := newTestApp(t, cfg)

			result := app.Solve(context.Background(), floatingScript)
			failOnErrors(t, result.Errors)
			if !result.Complete || len(result.Placements) != tt.shape.Len() {
				t.Errorf("complete = %v, placements = %d, want %d",
					result.Complete, len(result.Placements), tt.shape.Len())
			}
		})
	}
}
