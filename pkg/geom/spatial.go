package geom

import (
	"github.com/Faultbox/brushmesh/pkg/math"
)

// Axis identifies a world axis.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

// String returns the axis name.
func (a Axis) String() string {
	switch a {
	case AxisX:
		return "X"
	case AxisY:
		return "Y"
	case AxisZ:
		return "Z"
	}
	return "?"
}

// DominantAxis returns the axis with the largest absolute normal component.
// Ties resolve in the order X, Z, Y: the editor prioritises X, Y, Z in its
// Z-up space, which is X, Z, Y once converted to Y-up.
func DominantAxis(n math.Vec3) Axis {
	a := n.Abs()
	if a.X >= a.Y && a.X >= a.Z {
		return AxisX
	}
	if a.Z >= a.Y {
		return AxisZ
	}
	return AxisY
}

// Project drops the given axis, mapping p onto a 2D plane. The second
// component is the one PointInPolygon scans along.
func Project(p math.Vec3, drop Axis) math.Vec2 {
	switch drop {
	case AxisX:
		return p.ZY()
	case AxisY:
		return math.Vec2{X: p.Z, Y: p.X}
	default:
		return p.XY()
	}
}

// PointInPolygon runs an even-odd ray crossing test of p against ring after
// both are projected onto the plane that drops the given axis.
// Points exactly on an edge may land on either side.
func PointInPolygon(p math.Vec3, ring []math.Vec3, drop Axis) bool {
	pt := Project(p, drop)
	inside := false
	for i, j := 0, len(ring)-1; i < len(ring); j, i = i, i+1 {
		a := Project(ring[i], drop)
		b := Project(ring[j], drop)
		if (a.Y > pt.Y) != (b.Y > pt.Y) &&
			pt.X < (b.X-a.X)*(pt.Y-a.Y)/(b.Y-a.Y)+a.X {
			inside = !inside
		}
	}
	return inside
}

// Side is the result of classifying a point against a plane.
type Side int

const (
	SideOn Side = iota
	SideFront
	SideBack
)

// Classify reports which side of the plane p lies on, treating distances
// within eps as on the plane.
func Classify(pl Plane, p math.Vec3, eps float32) Side {
	d := pl.Normal.Dot(p) - pl.Dist
	switch {
	case d > eps:
		return SideFront
	case d < -eps:
		return SideBack
	}
	return SideOn
}

// IsAxisAligned reports whether a normal points along a world axis, i.e. no
// component magnitude falls strictly between 0.01 and 0.99.
func IsAxisAligned(n math.Vec3) bool {
	a := n.Abs()
	return !((a.X > 0.01 && a.X < 0.99) ||
		(a.Z > 0.01 && a.Z < 0.99) ||
		(a.Y > 0.01 && a.Y < 0.99))
}
