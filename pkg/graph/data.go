package graph

// ---------------------------------------------------------------------------
// Primitives
// ---------------------------------------------------------------------------

// PrimitiveKind distinguishes between primitive shapes.
type PrimitiveKind int

const (
	PrimBox      PrimitiveKind = iota // axis-aligned box
	PrimCylinder                      // Z-aligned cylinder
)

// BoxData is a box centred on the origin.
type BoxData struct {
	PrimKind PrimitiveKind `json:"prim_kind"`
	Size     Vec3          `json:"size"`
}

func (BoxData) nodeData() {}

// CylinderData is a Z-aligned cylinder centred on the origin.
type CylinderData struct {
	PrimKind PrimitiveKind `json:"prim_kind"`
	Height   float64       `json:"height"`
	Radius   float64       `json:"radius"`
	Segments int           `json:"segments,omitempty"` // 0 = kernel default
}

func (CylinderData) nodeData() {}

// ---------------------------------------------------------------------------
// Boolean
// ---------------------------------------------------------------------------

// BooleanOp enumerates CSG operations.
type BooleanOp int

const (
	OpUnion BooleanOp = iota
	// OpDifference subtracts every later child from the first.
	OpDifference
	OpIntersection
)

func (op BooleanOp) String() string {
	switch op {
	case OpUnion:
		return "union"
	case OpDifference:
		return "difference"
	case OpIntersection:
		return "intersection"
	default:
		return "unknown"
	}
}

// BooleanData combines the node's children, in order.
type BooleanData struct {
	Op BooleanOp `json:"op"`
}

func (BooleanData) nodeData() {}

// ---------------------------------------------------------------------------
// Transform
// ---------------------------------------------------------------------------

// TransformData represents a spatial transformation applied to a child node.
// Created by the (place ...) form. Rotation is applied before translation.
type TransformData struct {
	Translation *Vec3 `json:"translation,omitempty"`
	Rotation    *Vec3 `json:"rotation,omitempty"` // Euler angles in degrees, X then Y then Z
}

func (TransformData) nodeData() {}

// ---------------------------------------------------------------------------
// Tile
// ---------------------------------------------------------------------------

// TileData marks a catalogue tile. A tile has at most one child, the solid
// filling its cell; a tile without children is empty space.
type TileData struct {
	Index int `json:"index"` // declaration order, the physical tile id
}

func (TileData) nodeData() {}
