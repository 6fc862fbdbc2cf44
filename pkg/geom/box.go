package geom

import (
	"github.com/Faultbox/brushmesh/pkg/math"
)

// NewBox builds an axis-aligned box brush with outward facing planes and a
// world-aligned texture basis on every face.
func NewBox(lo, hi math.Vec3, texture string) Brush {
	x0, y0, z0 := lo.X, lo.Y, lo.Z
	x1, y1, z1 := hi.X, hi.Y, hi.Z

	type side struct {
		ring []math.Vec3
		u, v math.Vec3
	}
	sides := []side{
		{ // +X
			ring: []math.Vec3{{X: x1, Y: y0, Z: z0}, {X: x1, Y: y1, Z: z0}, {X: x1, Y: y1, Z: z1}, {X: x1, Y: y0, Z: z1}},
			u:    math.Vec3{Z: 1}, v: math.Vec3{Y: -1},
		},
		{ // -X
			ring: []math.Vec3{{X: x0, Y: y0, Z: z0}, {X: x0, Y: y0, Z: z1}, {X: x0, Y: y1, Z: z1}, {X: x0, Y: y1, Z: z0}},
			u:    math.Vec3{Z: 1}, v: math.Vec3{Y: -1},
		},
		{ // +Y
			ring: []math.Vec3{{X: x0, Y: y1, Z: z0}, {X: x0, Y: y1, Z: z1}, {X: x1, Y: y1, Z: z1}, {X: x1, Y: y1, Z: z0}},
			u:    math.Vec3{X: 1}, v: math.Vec3{Z: -1},
		},
		{ // -Y
			ring: []math.Vec3{{X: x0, Y: y0, Z: z0}, {X: x1, Y: y0, Z: z0}, {X: x1, Y: y0, Z: z1}, {X: x0, Y: y0, Z: z1}},
			u:    math.Vec3{X: 1}, v: math.Vec3{Z: -1},
		},
		{ // +Z
			ring: []math.Vec3{{X: x0, Y: y0, Z: z1}, {X: x1, Y: y0, Z: z1}, {X: x1, Y: y1, Z: z1}, {X: x0, Y: y1, Z: z1}},
			u:    math.Vec3{X: 1}, v: math.Vec3{Y: -1},
		},
		{ // -Z
			ring: []math.Vec3{{X: x0, Y: y0, Z: z0}, {X: x0, Y: y1, Z: z0}, {X: x1, Y: y1, Z: z0}, {X: x1, Y: y0, Z: z0}},
			u:    math.Vec3{X: 1}, v: math.Vec3{Y: -1},
		},
	}

	b := Brush{Faces: make([]Face, len(sides))}
	for i, s := range sides {
		f := NewFace(texture, s.ring)
		f.U = TextureAxis{Axis: s.u, Scale: 1}
		f.V = TextureAxis{Axis: s.v, Scale: 1}
		b.Faces[i] = f
	}
	return b
}
