package tileset

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Face identifies one side of the tile cube.
type Face uint8

const (
	PosX Face = iota
	PosY
	PosZ
	NegX
	NegY
	NegZ
)

// FaceCount is the number of faces on every catalogue entry.
const FaceCount = 6

// Faces lists every face in index order.
var Faces = [FaceCount]Face{PosX, PosY, PosZ, NegX, NegY, NegZ}

// Opposite returns the face on the other side of the cube.
func (f Face) Opposite() Face {
	return (f + 3) % FaceCount
}

func (f Face) String() string {
	switch f {
	case PosX:
		return "+X"
	case PosY:
		return "+Y"
	case PosZ:
		return "+Z"
	case NegX:
		return "-X"
	case NegY:
		return "-Y"
	case NegZ:
		return "-Z"
	default:
		return "?"
	}
}

// Axis returns the coordinate axis the face is perpendicular to.
func (f Face) Axis() int {
	return int(f % 3)
}

// Sign is +1 for the positive faces and -1 for the negative ones.
func (f Face) Sign() int {
	if f < NegX {
		return 1
	}
	return -1
}

// Normal returns the outward unit normal.
func (f Face) Normal() mgl64.Vec3 {
	var n mgl64.Vec3
	n[f.Axis()] = float64(f.Sign())
	return n
}

// Plane returns the homogeneous plane equation of the face in normalized
// tile space, where the tile occupies [-1,1]^3.
func (f Face) Plane() mgl64.Vec4 {
	return f.Normal().Vec4(-1)
}

// contains reports whether p lies within eps of the face plane.
func (f Face) contains(p mgl64.Vec3, eps float64) bool {
	return math.Abs(f.Plane().Dot(p.Vec4(1))) < eps
}

// planeAxes are the in-plane axes (u, v) for each face axis. Opposite faces
// share a mapping, so a point on the seam between two neighbouring tiles
// projects to the same lattice point from both sides.
var planeAxes = [3][2]int{
	{1, 2}, // X faces: (y, z)
	{0, 2}, // Y faces: (x, z)
	{0, 1}, // Z faces: (x, y)
}

// project maps a normalized point on f to [0,2]^2 face coordinates.
func (f Face) project(p mgl64.Vec3) mgl64.Vec2 {
	ax := planeAxes[f.Axis()]
	return mgl64.Vec2{p[ax[0]] + 1, p[ax[1]] + 1}
}
