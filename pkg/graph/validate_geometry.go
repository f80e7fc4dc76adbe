package graph

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// ---------------------------------------------------------------------------
// Tier 2: geometric validation (errors + warnings)
// ---------------------------------------------------------------------------

// validateGeometry runs all Tier 2 geometric checks.
// Returns errors (blocking) and warnings (advisory) separately.
func validateGeometry(g *DesignGraph) ([]ValidationError, []ValidationWarning) {
	var errs []ValidationError
	errs = append(errs, validateTileSize(g)...)
	errs = append(errs, validateDimensions(g)...)

	var warnings []ValidationWarning
	if g.Settings.TileSize.Positive() {
		warnings = append(warnings, validateCellExtent(g)...)
	}
	return errs, warnings
}

// validateTileSize checks that the cell size is positive on every axis.
func validateTileSize(g *DesignGraph) []ValidationError {
	ts := g.Settings.TileSize
	if ts.Positive() {
		return nil
	}
	return []ValidationError{{
		Message:  fmt.Sprintf("tile size (%.4f, %.4f, %.4f) must be positive", ts.X, ts.Y, ts.Z),
		Severity: SeverityError,
	}}
}

// validateDimensions checks that every primitive has a positive extent.
func validateDimensions(g *DesignGraph) []ValidationError {
	var errs []ValidationError

	for _, node := range g.Nodes {
		switch d := node.Data.(type) {
		case BoxData:
			for axis, v := range [3]float64{d.Size.X, d.Size.Y, d.Size.Z} {
				if v <= 0 {
					errs = append(errs, ValidationError{
						NodeID:   node.ID,
						Message:  fmt.Sprintf("box size %c is %.4f, must be positive", "XYZ"[axis], v),
						Severity: SeverityError,
					})
				}
			}
		case CylinderData:
			if d.Height <= 0 {
				errs = append(errs, ValidationError{
					NodeID:   node.ID,
					Message:  fmt.Sprintf("cylinder height is %.4f, must be positive", d.Height),
					Severity: SeverityError,
				})
			}
			if d.Radius <= 0 {
				errs = append(errs, ValidationError{
					NodeID:   node.ID,
					Message:  fmt.Sprintf("cylinder radius is %.4f, must be positive", d.Radius),
					Severity: SeverityError,
				})
			}
			if d.Segments != 0 && d.Segments < 3 {
				errs = append(errs, ValidationError{
					NodeID:   node.ID,
					Message:  fmt.Sprintf("cylinder has %d segments, need at least 3", d.Segments),
					Severity: SeverityError,
				})
			}
		}
	}

	return errs
}

// box is an axis-aligned bounding box in tile space.
type box struct {
	min, max mgl64.Vec3
	empty    bool
}

func (b box) union(o box) box {
	switch {
	case b.empty:
		return o
	case o.empty:
		return b
	}
	for i := 0; i < 3; i++ {
		b.min[i] = min(b.min[i], o.min[i])
		b.max[i] = max(b.max[i], o.max[i])
	}
	return b
}

func (b box) intersect(o box) box {
	if b.empty || o.empty {
		return box{empty: true}
	}
	for i := 0; i < 3; i++ {
		b.min[i] = max(b.min[i], o.min[i])
		b.max[i] = min(b.max[i], o.max[i])
		if b.min[i] > b.max[i] {
			return box{empty: true}
		}
	}
	return b
}

// corners returns the bounds of a centred box of half extents h under m.
func corners(h mgl64.Vec3, m mgl64.Mat4) box {
	out := box{empty: true}
	for i := 0; i < 8; i++ {
		c := mgl64.Vec3{h[0], h[1], h[2]}
		for a := 0; a < 3; a++ {
			if i&(1<<a) != 0 {
				c[a] = -c[a]
			}
		}
		p := mgl64.TransformCoordinate(c, m)
		out = out.union(box{min: p, max: p})
	}
	return out
}

// TransformMatrix returns the matrix of a place node: rotation about X, Y
// then Z, followed by the translation.
func TransformMatrix(td TransformData) mgl64.Mat4 {
	m := mgl64.Ident4()
	if td.Translation != nil {
		m = mgl64.Translate3D(td.Translation.X, td.Translation.Y, td.Translation.Z)
	}
	if r := td.Rotation; r != nil {
		rot := mgl64.HomogRotate3DZ(mgl64.DegToRad(r.Z)).
			Mul4(mgl64.HomogRotate3DY(mgl64.DegToRad(r.Y))).
			Mul4(mgl64.HomogRotate3DX(mgl64.DegToRad(r.X)))
		m = m.Mul4(rot)
	}
	return m
}

// bounds returns a conservative bounding box of the solid rooted at id.
// Nodes already on the current path (cycles) contribute nothing.
func bounds(g *DesignGraph, id NodeID, m mgl64.Mat4, path map[NodeID]bool) box {
	n := g.Nodes[id]
	if n == nil || path[id] {
		return box{empty: true}
	}
	path[id] = true
	defer delete(path, id)

	switch d := n.Data.(type) {
	case BoxData:
		return corners(d.Size.Vec().Mul(0.5), m)
	case CylinderData:
		return corners(mgl64.Vec3{d.Radius, d.Radius, d.Height / 2}, m)
	case TransformData:
		if len(n.Children) == 0 {
			return box{empty: true}
		}
		return bounds(g, n.Children[0], m.Mul4(TransformMatrix(d)), path)
	case BooleanData:
		if len(n.Children) == 0 {
			return box{empty: true}
		}
		out := bounds(g, n.Children[0], m, path)
		if d.Op == OpDifference {
			return out
		}
		for _, c := range n.Children[1:] {
			b := bounds(g, c, m, path)
			if d.Op == OpIntersection {
				out = out.intersect(b)
			} else {
				out = out.union(b)
			}
		}
		return out
	case TileData:
		if len(n.Children) == 0 {
			return box{empty: true}
		}
		return bounds(g, n.Children[0], m, path)
	}
	return box{empty: true}
}

// validateCellExtent warns about tiles whose solid cannot contribute to any
// face: empty tiles, solids entirely outside the cell, and solids that
// touch no cell face.
func validateCellExtent(g *DesignGraph) []ValidationWarning {
	var warnings []ValidationWarning
	half := g.Settings.TileSize.Vec().Mul(0.5)
	cell := box{min: half.Mul(-1), max: half}
	const tol = 1e-9

	for _, tile := range g.Tiles() {
		if len(tile.Children) == 0 {
			warnings = append(warnings, ValidationWarning{
				NodeID:  tile.ID,
				Message: fmt.Sprintf("tile %q has no solid; every face is empty", tile.Name),
			})
			continue
		}

		b := bounds(g, tile.ID, mgl64.Ident4(), make(map[NodeID]bool))
		inside := b.intersect(cell)
		if inside.empty {
			warnings = append(warnings, ValidationWarning{
				NodeID:  tile.ID,
				Message: fmt.Sprintf("solid of tile %q lies outside its cell", tile.Name),
			})
			continue
		}

		touches := false
		for a := 0; a < 3; a++ {
			if inside.min[a] <= cell.min[a]+tol || inside.max[a] >= cell.max[a]-tol {
				touches = true
			}
		}
		if !touches {
			warnings = append(warnings, ValidationWarning{
				NodeID:  tile.ID,
				Message: fmt.Sprintf("solid of tile %q touches no cell face; it only matches empty faces", tile.Name),
			})
		}
	}

	return warnings
}
