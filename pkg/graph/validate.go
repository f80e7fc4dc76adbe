package graph

import (
	"bytes"
	"fmt"
	"slices"
)

// ValidationSeverity indicates whether a validation finding blocks the
// pipeline or is merely informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // blocks tessellation
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	NodeID   NodeID             // which node has the problem (zero if graph-level)
	Message  string             // human-readable description
	Severity ValidationSeverity // error or warning
}

func (e ValidationError) Error() string {
	if e.NodeID.IsZero() {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] node %s: %s", e.Severity, e.NodeID.Short(), e.Message)
}

// ValidationWarning describes a non-blocking advisory finding.
type ValidationWarning struct {
	NodeID  NodeID
	Message string
}

// ValidationResult bundles errors (blocking) and warnings (advisory)
// from all validation tiers.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationWarning
}

// OK reports whether the graph can be tessellated.
func (r ValidationResult) OK() bool {
	return len(r.Errors) == 0
}

// Validate runs all Tier 1 structural validation checks on the design graph
// and returns a slice of validation errors. An empty slice means the graph is
// valid. This function is read-only and never mutates the graph.
func Validate(g *DesignGraph) []ValidationError {
	var errs []ValidationError
	errs = append(errs, validateDAG(g)...)
	errs = append(errs, validateReferences(g)...)
	errs = append(errs, validateNames(g)...)
	errs = append(errs, validateRoots(g)...)
	errs = append(errs, validateArity(g)...)
	errs = append(errs, validateTiles(g)...)
	return errs
}

// ValidateAll runs the structural and geometric tiers and returns a
// ValidationResult with separated errors and warnings.
func ValidateAll(g *DesignGraph) ValidationResult {
	tier1 := Validate(g)
	tier2Errs, tier2Warnings := validateGeometry(g)

	var result ValidationResult
	for _, e := range tier1 {
		if e.Severity == SeverityWarning {
			result.Warnings = append(result.Warnings, ValidationWarning{
				NodeID:  e.NodeID,
				Message: e.Message,
			})
		} else {
			result.Errors = append(result.Errors, e)
		}
	}

	result.Errors = append(result.Errors, tier2Errs...)
	result.Warnings = append(result.Warnings, tier2Warnings...)

	return result
}

// sortedIDs returns the node ids in byte order so findings come out in a
// stable order.
func sortedIDs(g *DesignGraph) []NodeID {
	ids := make([]NodeID, 0, len(g.Nodes))
	for id := range g.Nodes {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, func(a, b NodeID) int { return bytes.Compare(a[:], b[:]) })
	return ids
}

// validateDAG peels off nodes with no remaining parents (Kahn's algorithm).
// Whatever cannot be peeled lies on or below a cycle; one error names the
// first such node.
func validateDAG(g *DesignGraph) []ValidationError {
	parents := make(map[NodeID]int, len(g.Nodes))
	for _, n := range g.Nodes {
		for _, c := range n.Children {
			if _, ok := g.Nodes[c]; ok {
				parents[c]++
			}
		}
	}

	ids := sortedIDs(g)
	var ready []NodeID
	for _, id := range ids {
		if parents[id] == 0 {
			ready = append(ready, id)
		}
	}
	peeled := 0
	for len(ready) > 0 {
		id := ready[len(ready)-1]
		ready = ready[:len(ready)-1]
		peeled++
		for _, c := range g.Nodes[id].Children {
			if _, ok := g.Nodes[c]; !ok {
				continue
			}
			if parents[c]--; parents[c] == 0 {
				ready = append(ready, c)
			}
		}
	}
	if peeled == len(g.Nodes) {
		return nil
	}

	stuck := 0
	var first NodeID
	for _, id := range ids {
		if parents[id] > 0 {
			if stuck == 0 {
				first = id
			}
			stuck++
		}
	}
	return []ValidationError{{
		NodeID:   first,
		Message:  fmt.Sprintf("cycle detected: %d nodes reach themselves through their children", stuck),
		Severity: SeverityError,
	}}
}

// validateReferences checks that every child reference points to a node
// that exists in g.Nodes.
func validateReferences(g *DesignGraph) []ValidationError {
	var errs []ValidationError
	for _, id := range sortedIDs(g) {
		for _, c := range g.Nodes[id].Children {
			if _, ok := g.Nodes[c]; !ok {
				errs = append(errs, ValidationError{
					NodeID:   id,
					Message:  fmt.Sprintf("child reference %s does not exist", c.Short()),
					Severity: SeverityError,
				})
			}
		}
	}
	return errs
}

// validateNames checks that names are unique and that the name index only
// points at existing nodes carrying that name.
func validateNames(g *DesignGraph) []ValidationError {
	var errs []ValidationError

	names := make([]string, 0, len(g.NameIndex))
	for name := range g.NameIndex {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		id := g.NameIndex[name]
		n, ok := g.Nodes[id]
		switch {
		case !ok:
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("name index entry %q references non-existent node %s", name, id.Short()),
				Severity: SeverityError,
			})
		case n.Name != name:
			errs = append(errs, ValidationError{
				NodeID:   id,
				Message:  fmt.Sprintf("name index entry %q points at a node named %q", name, n.Name),
				Severity: SeverityError,
			})
		}
	}

	owners := make(map[string]int)
	for _, n := range g.Nodes {
		if n.Name != "" {
			owners[n.Name]++
		}
	}
	dups := make([]string, 0)
	for name, count := range owners {
		if count > 1 {
			dups = append(dups, name)
		}
	}
	slices.Sort(dups)
	for _, name := range dups {
		errs = append(errs, ValidationError{
			Message:  fmt.Sprintf("duplicate name %q assigned to %d nodes", name, owners[name]),
			Severity: SeverityError,
		})
	}
	return errs
}

// reachable marks every node below the existing roots.
func reachable(g *DesignGraph) map[NodeID]bool {
	seen := make(map[NodeID]bool, len(g.Nodes))
	var mark func(id NodeID)
	mark = func(id NodeID) {
		n, ok := g.Nodes[id]
		if !ok || seen[id] {
			return
		}
		seen[id] = true
		for _, c := range n.Children {
			mark(c)
		}
	}
	for _, r := range g.Roots {
		mark(r)
	}
	return seen
}

// validateRoots checks that every root is an existing tile node and warns
// about nodes no tile uses.
func validateRoots(g *DesignGraph) []ValidationError {
	var errs []ValidationError

	for _, rid := range g.Roots {
		n, ok := g.Nodes[rid]
		switch {
		case !ok:
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("root reference %s does not exist", rid.Short()),
				Severity: SeverityError,
			})
		case n.Kind != NodeTile:
			errs = append(errs, ValidationError{
				NodeID:   rid,
				Message:  fmt.Sprintf("root is a %s node, not a tile", n.Kind),
				Severity: SeverityError,
			})
		}
	}

	used := reachable(g)
	for _, id := range sortedIDs(g) {
		if used[id] {
			continue
		}
		label := g.Nodes[id].Name
		if label == "" {
			label = id.Short()
		}
		errs = append(errs, ValidationError{
			NodeID:   id,
			Message:  fmt.Sprintf("node %q is not used by any tile (orphan)", label),
			Severity: SeverityWarning,
		})
	}
	return errs
}

// validateArity checks child counts against node kinds: primitives are
// leaves, transforms wrap exactly one node, booleans combine at least two
// and tiles hold at most one solid.
func validateArity(g *DesignGraph) []ValidationError {
	var errs []ValidationError

	for _, node := range g.Nodes {
		n := len(node.Children)
		var msg string
		switch node.Kind {
		case NodePrimitive:
			if n != 0 {
				msg = fmt.Sprintf("primitive has %d children, want none", n)
			}
		case NodeTransform:
			if n != 1 {
				msg = fmt.Sprintf("transform has %d children, want 1", n)
			}
		case NodeBoolean:
			if n < 2 {
				msg = fmt.Sprintf("%s has %d operands, want at least 2", booleanOp(node), n)
			}
		case NodeTile:
			if n > 1 {
				msg = fmt.Sprintf("tile has %d solids, want at most 1", n)
			}
		default:
			msg = fmt.Sprintf("unknown node kind %d", int(node.Kind))
		}
		if msg != "" {
			errs = append(errs, ValidationError{NodeID: node.ID, Message: msg, Severity: SeverityError})
		}
	}

	return errs
}

func booleanOp(n *Node) BooleanOp {
	if bd, ok := n.Data.(BooleanData); ok {
		return bd.Op
	}
	return -1
}

// validateTiles checks that tile nodes are named, registered as roots, not
// nested inside other nodes, and carry distinct indices.
func validateTiles(g *DesignGraph) []ValidationError {
	var errs []ValidationError

	isRoot := make(map[NodeID]bool, len(g.Roots))
	for _, rid := range g.Roots {
		isRoot[rid] = true
	}
	referenced := make(map[NodeID]bool)
	for _, node := range g.Nodes {
		for _, c := range node.Children {
			referenced[c] = true
		}
	}

	indices := make(map[int]NodeID)
	for _, node := range g.Nodes {
		if node.Kind != NodeTile {
			continue
		}
		td, ok := node.Data.(TileData)
		if !ok {
			errs = append(errs, ValidationError{
				NodeID:   node.ID,
				Message:  fmt.Sprintf("tile carries %T, want TileData", node.Data),
				Severity: SeverityError,
			})
			continue
		}
		if node.Name == "" {
			errs = append(errs, ValidationError{NodeID: node.ID, Message: "tile has no name", Severity: SeverityError})
		}
		if !isRoot[node.ID] {
			errs = append(errs, ValidationError{
				NodeID:   node.ID,
				Message:  fmt.Sprintf("tile %q is not a root", node.Name),
				Severity: SeverityError,
			})
		}
		if referenced[node.ID] {
			errs = append(errs, ValidationError{
				NodeID:   node.ID,
				Message:  fmt.Sprintf("tile %q is used as a solid", node.Name),
				Severity: SeverityError,
			})
		}
		if other, dup := indices[td.Index]; dup {
			errs = append(errs, ValidationError{
				NodeID:   node.ID,
				Message:  fmt.Sprintf("tile index %d already used by node %s", td.Index, other.Short()),
				Severity: SeverityError,
			})
		} else {
			indices[td.Index] = node.ID
		}
	}

	return errs
}
