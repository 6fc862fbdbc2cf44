// Package uv projects brush face vertices into texture space.
package uv

import (
	gomath "math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/brushmesh/pkg/geom"
	"github.com/Faultbox/brushmesh/pkg/math"
)

// Basis is the texture projection of one face.
type Basis struct {
	U        geom.TextureAxis
	V        geom.TextureAxis
	Shift    math.Vec2
	Rotation float32 // Degrees
}

// BasisOf returns the projection basis stored on a face.
func BasisOf(f *geom.Face) Basis {
	return Basis{U: f.U, V: f.V, Shift: f.Shift, Rotation: f.Rotation}
}

// Projector maps world positions to UVs for one texture size.
type Projector struct {
	Width      float32
	Height     float32
	TexelScale float32
}

// New returns a projector for a texture of the given pixel size. Sizes
// below one pixel are clamped to one.
func New(width, height int, texelScale float32) Projector {
	return Projector{
		Width:      float32(max(width, 1)),
		Height:     float32(max(height, 1)),
		TexelScale: texelScale,
	}
}

// Raw returns the unshifted, unrotated axis projection of v in texels.
func Raw(v math.Vec3, b Basis) math.Vec2 {
	return math.Vec2{
		X: v.Dot(b.U.Axis.Div(b.U.Scale)),
		Y: v.Dot(b.V.Axis.Div(-b.V.Scale)),
	}
}

// Shift returns the texel shift applied before rotation.
//
// Unrotated faces shift by (x, -y). Rotated faces shift by (-x, -y), and
// from 90 degrees on the components swap to (-y, x). This mirrors the
// editor's output and is kept as is.
func (p Projector) Shift(b Basis) math.Vec2 {
	sx, sy := b.Shift.X, b.Shift.Y
	if !IsRotated(b.Rotation) {
		return math.Vec2{X: mod(sx, p.Width), Y: mod(-sy, p.Height)}
	}
	if b.Rotation >= 90 {
		return math.Vec2{X: mod(-sy, p.Height), Y: mod(sx, p.Width)}
	}
	return math.Vec2{X: mod(-sx, p.Width), Y: mod(-sy, p.Height)}
}

// Project returns the UV of world position v on a face with basis b.
func (p Projector) Project(v math.Vec3, b Basis) math.Vec2 {
	uv := Raw(v, b).Add(p.Shift(b))
	uv = uv.DivVec(math.Vec2{X: p.Width, Y: p.Height})
	uv = Rotate(uv, -b.Rotation)
	return uv.Scale(p.TexelScale)
}

// Rotate turns uv by deg degrees about the UV origin.
func Rotate(uv math.Vec2, deg float32) math.Vec2 {
	if deg == 0 {
		return uv
	}
	r := mgl32.Rotate2D(mgl32.DegToRad(deg)).Mul2x1(mgl32.Vec2{uv.X, uv.Y})
	return math.Vec2{X: r.X(), Y: r.Y()}
}

// IsRotated reports whether an angle is not a whole number of turns.
func IsRotated(deg float32) bool {
	return deg != 0 && mod(deg, 360) != 0
}

// mod is the truncated floating point remainder; the result takes the sign
// of x.
func mod(x, y float32) float32 {
	return float32(gomath.Mod(float64(x), float64(y)))
}
