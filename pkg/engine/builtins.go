package engine

import (
	"fmt"
	"strings"

	"github.com/chazu/tessera/pkg/graph"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpNodeRef wraps a graph.NodeID so solids can be passed between builtins.
type sexpNodeRef struct {
	id   graph.NodeID
	kind graph.NodeKind
	name string // human-readable name for error messages
}

func (n *sexpNodeRef) SexpString(ps *zygo.PrintState) string {
	if n.name != "" {
		return fmt.Sprintf("(%s %q)", n.kind, n.name)
	}
	return fmt.Sprintf("(%s %s)", n.kind, n.id.Short())
}
func (n *sexpNodeRef) Type() *zygo.RegisteredType { return nil }

// sexpVec3 wraps a graph.Vec3.
type sexpVec3 struct {
	vec graph.Vec3
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok || !strings.HasPrefix(str.S, kwPrefix) {
		return "", false
	}
	return str.S[len(kwPrefix):], true
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	for i := 0; i < len(args); i++ {
		name, ok := isKW(args[i])
		if !ok {
			result.positional = append(result.positional, args[i])
			continue
		}
		if i+1 < len(args) {
			result.kw[name] = args[i+1]
			i++
		} else {
			result.kw[name] = zygo.SexpNull
		}
	}
	return result
}

// float reads keyword name as a number, keeping def when absent.
func (a kwArgs) float(name string, def float64) (float64, error) {
	v, ok := a.kw[name]
	if !ok {
		return def, nil
	}
	f, err := toFloat64(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return f, nil
}

// vec reads keyword name as a vec3; nil when absent.
func (a kwArgs) vec(name string) (*graph.Vec3, error) {
	v, ok := a.kw[name]
	if !ok {
		return nil, nil
	}
	vec, err := toVec3(v)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return &vec, nil
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toSolid extracts a NodeID from a reference to a solid-producing node.
func toSolid(s zygo.Sexp) (graph.NodeID, error) {
	ref, ok := s.(*sexpNodeRef)
	if !ok {
		return graph.ZeroID, fmt.Errorf("expected solid, got %T (%s)", s, s.SexpString(nil))
	}
	if ref.kind == graph.NodeTile {
		return graph.ZeroID, fmt.Errorf("expected solid, got tile %q", ref.name)
	}
	return ref.id, nil
}

// toVec3 extracts a Vec3 from a sexpVec3.
func toVec3(s zygo.Sexp) (graph.Vec3, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return graph.Vec3{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// toVec3Args accepts either a single vec3 or three numbers.
func toVec3Args(args []zygo.Sexp) (graph.Vec3, error) {
	switch len(args) {
	case 1:
		return toVec3(args[0])
	case 3:
		var c [3]float64
		for i, a := range args {
			f, err := toFloat64(a)
			if err != nil {
				return graph.Vec3{}, fmt.Errorf("%c: %w", "xyz"[i], err)
			}
			c[i] = f
		}
		return graph.Vec3{X: c[0], Y: c[1], Z: c[2]}, nil
	}
	return graph.Vec3{}, fmt.Errorf("expected a vec3 or 3 numbers, got %d arguments", len(args))
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// builder owns the graph being populated by one evaluation. Anonymous node
// paths are numbered per evaluation, so evaluating the same source twice
// yields the same node IDs.
type builder struct {
	g     *graph.DesignGraph
	seq   map[string]int
	tiles int
}

func newBuilder(g *graph.DesignGraph) *builder {
	return &builder{g: g, seq: make(map[string]int)}
}

// add stores an anonymous node under the next "<kind>/<n>" path.
func (b *builder) add(prefix string, kind graph.NodeKind, data graph.NodeData, children ...graph.NodeID) *sexpNodeRef {
	b.seq[prefix]++
	id := graph.NewNodeID(fmt.Sprintf("%s/%d", prefix, b.seq[prefix]))
	b.g.AddNode(&graph.Node{ID: id, Kind: kind, Children: children, Data: data})
	return &sexpNodeRef{id: id, kind: kind}
}

// registerBuiltins installs the Tessera DSL builtins into a zygomys
// environment. The builtins populate g during evaluation.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, g *graph.DesignGraph) {
	b := newBuilder(g)

	// -----------------------------------------------------------------------
	// (vec3 1 2 3)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}
		v, err := toVec3Args(args)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: %w", err)
		}
		return &sexpVec3{vec: v}, nil
	})

	// -----------------------------------------------------------------------
	// (tile-size (vec3 2 2 2)) or (tile-size 2 2 2)
	// -----------------------------------------------------------------------
	env.AddFunction("tile_size", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if b.tiles > 0 {
			return zygo.SexpNull, fmt.Errorf("tile-size must come before the first deftile")
		}
		v, err := toVec3Args(args)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("tile-size: %w", err)
		}
		g.Settings.TileSize = v
		return &sexpVec3{vec: v}, nil
	})

	// -----------------------------------------------------------------------
	// (box :size (vec3 2 2 0.5)) or (box 2 2 0.5)
	// -----------------------------------------------------------------------
	env.AddFunction("box", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		var size graph.Vec3
		if v, ok := pa.kw["size"]; ok {
			s, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("box: size: %w", err)
			}
			size = s
		} else {
			s, err := toVec3Args(pa.positional)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("box: %w", err)
			}
			size = s
		}
		return b.add("box", graph.NodePrimitive, graph.BoxData{PrimKind: graph.PrimBox, Size: size}), nil
	})

	// -----------------------------------------------------------------------
	// (cylinder :height 2 :radius 0.5 :segments 24)
	// -----------------------------------------------------------------------
	env.AddFunction("cylinder", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if _, ok := pa.kw["height"]; !ok {
			return zygo.SexpNull, fmt.Errorf("cylinder requires :height")
		}
		if _, ok := pa.kw["radius"]; !ok {
			return zygo.SexpNull, fmt.Errorf("cylinder requires :radius")
		}
		cd := graph.CylinderData{PrimKind: graph.PrimCylinder}
		var err error
		if cd.Height, err = pa.float("height", 0); err != nil {
			return zygo.SexpNull, fmt.Errorf("cylinder: %w", err)
		}
		if cd.Radius, err = pa.float("radius", 0); err != nil {
			return zygo.SexpNull, fmt.Errorf("cylinder: %w", err)
		}
		seg, err := pa.float("segments", 0)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("cylinder: %w", err)
		}
		cd.Segments = int(seg)
		return b.add("cylinder", graph.NodePrimitive, cd), nil
	})

	// -----------------------------------------------------------------------
	// (union a b ...), (difference a b ...), (intersection a b ...)
	// -----------------------------------------------------------------------
	for _, op := range []graph.BooleanOp{graph.OpUnion, graph.OpDifference, graph.OpIntersection} {
		env.AddFunction(op.String(), func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			if len(args) < 2 {
				return zygo.SexpNull, fmt.Errorf("%s requires at least 2 solids, got %d", op, len(args))
			}
			children := make([]graph.NodeID, len(args))
			for i, a := range args {
				id, err := toSolid(a)
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("%s: operand %d: %w", op, i+1, err)
				}
				children[i] = id
			}
			return b.add(op.String(), graph.NodeBoolean, graph.BooleanData{Op: op}, children...), nil
		})
	}

	// -----------------------------------------------------------------------
	// (place solid :at (vec3 0 0 1) :rotate (vec3 0 0 90))
	// -----------------------------------------------------------------------
	env.AddFunction("place", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("place requires exactly one solid, got %d", len(pa.positional))
		}
		child, err := toSolid(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("place: %w", err)
		}

		td := graph.TransformData{}
		if td.Translation, err = pa.vec("at"); err != nil {
			return zygo.SexpNull, fmt.Errorf("place: %w", err)
		}
		if td.Rotation, err = pa.vec("rotate"); err != nil {
			return zygo.SexpNull, fmt.Errorf("place: %w", err)
		}
		return b.add("place", graph.NodeTransform, td, child), nil
	})

	// -----------------------------------------------------------------------
	// (deftile "name" solid) or (deftile "name") for an empty tile
	// -----------------------------------------------------------------------
	env.AddFunction("deftile", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 1 || len(args) > 2 {
			return zygo.SexpNull, fmt.Errorf("deftile requires a name and an optional solid")
		}
		tileName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("deftile: name: %w", err)
		}
		if tileName == "" {
			return zygo.SexpNull, fmt.Errorf("deftile: name must not be empty")
		}
		if g.Lookup(tileName) != nil {
			return zygo.SexpNull, fmt.Errorf("deftile: tile %q already defined", tileName)
		}

		var children []graph.NodeID
		if len(args) == 2 {
			id, err := toSolid(args[1])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("deftile %q: %w", tileName, err)
			}
			children = []graph.NodeID{id}
		}

		id := graph.NewNodeID("deftile/" + tileName)
		g.AddNode(&graph.Node{
			ID:       id,
			Kind:     graph.NodeTile,
			Name:     tileName,
			Children: children,
			Data:     graph.TileData{Index: b.tiles},
		})
		g.AddRoot(id)
		b.tiles++

		return &sexpNodeRef{id: id, kind: graph.NodeTile, name: tileName}, nil
	})
}
