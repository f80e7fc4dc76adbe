// Command tessera fills a grid with tiles from a catalogue script so that
// every pair of neighbouring tiles meets along matching face boundaries.
//
// Usage:
//
//	tessera [flags] catalogue.tiles
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/chazu/tessera/pkg/config"
	"github.com/chazu/tessera/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

// run parses args, runs the pipeline and returns the exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("tessera", flag.ContinueOnError)
	fs.SetOutput(stderr)

	configPath := fs.String("config", "", "JSON config file (defaults apply when missing)")
	saveConfig := fs.String("save-config", "", "write the effective config to this file and exit")
	seed := fs.Int64("seed", 0, "solver seed")
	x := fs.Int("x", 0, "grid cells along X")
	y := fs.Int("y", 0, "grid cells along Y")
	z := fs.Int("z", 0, "grid cells along Z")
	attempts := fs.Int("attempts", 0, "reseeded solve attempts")
	cells := fs.Int("cells", 0, "marching-cubes cells per tile edge")
	db := fs.String("db", "", "SQLite database for solved grids")
	previewPath := fs.String("preview", "", "write a PNG preview of each layer")
	outlines := fs.Bool("outlines", false, "draw face boundaries over preview cells")
	list := fs.Bool("list", false, "list the grids stored for the catalogue and exit (needs -db)")
	forget := fs.Bool("forget", false, "delete the grids stored for the catalogue and exit (needs -db)")
	logLevel := fs.String("log-level", "", "debug, info, warn or error")
	verify := fs.Bool("verify-rotations", false, "check that generated rotations agree with their base tile")
	asJSON := fs.Bool("json", false, "print the result as JSON")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	// Flags override the config file.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "seed":
			cfg.Seed = *seed
		case "x":
			cfg.Shape.X = *x
		case "y":
			cfg.Shape.Y = *y
		case "z":
			cfg.Shape.Z = *z
		case "attempts":
			cfg.Attempts = *attempts
		case "cells":
			cfg.MeshCells = *cells
		case "db":
			cfg.DBPath = *db
		case "preview":
			cfg.PreviewPath = *previewPath
		case "outlines":
			cfg.PreviewOutlines = *outlines
		case "log-level":
			cfg.LogLevel = *logLevel
		case "verify-rotations":
			cfg.VerifyRotations = *verify
		}
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	if *saveConfig != "" {
		if err := cfg.Save(*saveConfig); err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		return 0
	}

	if (*list || *forget) && cfg.DBPath == "" {
		fmt.Fprintln(stderr, "-list and -forget need -db")
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(stderr, "usage: tessera [flags] catalogue.tiles")
		fs.PrintDefaults()
		return 2
	}
	source, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	logger.SetLogger(logger.NewText(stderr, cfg.LogLevel))

	app, err := NewApp(cfg)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	defer app.Close()

	if *list || *forget {
		return manageGrids(app, string(source), *forget, stdout, stderr)
	}

	result := app.Solve(ctx, string(source))
	if *asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
	} else {
		printSummary(stdout, result)
	}

	for _, w := range result.Warnings {
		fmt.Fprintf(stderr, "warning: %s\n", w.Message)
	}
	if printErrors(stderr, result.Errors) {
		return 1
	}
	return 0
}

// printErrors reports errs and whether there were any.
func printErrors(w io.Writer, errs []EvalErrorData) bool {
	for _, e := range errs {
		if e.Line > 0 {
			fmt.Fprintf(w, "error: line %d: %s\n", e.Line, e.Message)
		} else {
			fmt.Fprintf(w, "error: %s\n", e.Message)
		}
	}
	return len(errs) > 0
}

// manageGrids lists the stored grids of the catalogue, then deletes them
// when forget is set.
func manageGrids(app *App, source string, forget bool, stdout, stderr io.Writer) int {
	result := app.Evaluate(source)
	if printErrors(stderr, result.Errors) {
		return 1
	}

	grids, err := app.StoredGrids(result.Fingerprint)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	fmt.Fprintf(stdout, "catalogue %s: %d stored grids\n", result.Fingerprint, len(grids))
	for _, g := range grids {
		status := "complete"
		if !g.Complete {
			status = "partial"
		}
		fmt.Fprintf(stdout, "  %-8s seed %-6d solved by %-6d %-8s %s\n",
			g.Shape, g.Seed, g.SolvedSeed, status, g.UpdatedAt.Format(time.RFC3339))
	}

	if forget {
		n, err := app.ForgetGrids(result.Fingerprint)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		fmt.Fprintf(stdout, "forgot %d grids\n", n)
	}
	return 0
}

func printSummary(w io.Writer, r SolveResult) {
	fmt.Fprintf(w, "catalogue %s: %d tiles\n", r.Fingerprint, len(r.Tiles))
	for _, t := range r.Tiles {
		fmt.Fprintf(w, "  %2d %-16s %6d triangles, %d empty faces\n", t.Index, t.Name, t.Triangles, t.EmptyFaces)
	}
	if r.Grid == nil {
		return
	}

	status := "complete"
	if !r.Complete {
		status = "partial"
	}
	if r.Cached {
		status += " (stored)"
	}
	seed := fmt.Sprintf("seed %d", r.Seed)
	if r.SolvedSeed != r.Seed {
		seed += fmt.Sprintf(" (solved by seed %d)", r.SolvedSeed)
	}
	fmt.Fprintf(w, "grid %s %s: %s after %d attempts\n", r.Shape, seed, status, r.Attempts)

	counts := r.Grid.TileCounts()
	for _, t := range r.Tiles {
		fmt.Fprintf(w, "  %-16s %d cells\n", t.Name, counts[uint32(t.Index)])
	}
	for _, p := range r.Previews {
		fmt.Fprintf(w, "preview %s\n", p)
	}
}
