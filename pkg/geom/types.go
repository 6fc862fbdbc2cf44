// Package geom provides the brush geometry model: planes, faces, brushes
// and the spatial predicates the rest of the pipeline is built on.
package geom

import (
	"github.com/Faultbox/brushmesh/pkg/math"
)

// Plane is a unit normal plus signed distance from the origin.
// Points on the plane satisfy Normal.Dot(p) == Dist.
type Plane struct {
	Normal math.Vec3
	Dist   float32
}

// TextureAxis is one axis of a face's texture projection basis.
type TextureAxis struct {
	Axis  math.Vec3
	Scale float32
}

// Face is one planar convex polygon of a brush.
type Face struct {
	Vertices []math.Vec3 // Ring order, counter-clockwise as authored
	Plane    Plane
	Texture  string
	U        TextureAxis
	V        TextureAxis
	Shift    math.Vec2
	Rotation float32 // Degrees
}

// Brush is a convex solid bounded by its faces.
type Brush struct {
	Faces []Face
}

// Valid reports whether the face has enough vertices to form a polygon.
func (f *Face) Valid() bool {
	return len(f.Vertices) >= 3
}

// Centroid returns the vertex average of the face.
func (f *Face) Centroid() math.Vec3 {
	var c math.Vec3
	if len(f.Vertices) == 0 {
		return c
	}
	for _, v := range f.Vertices {
		c = c.Add(v)
	}
	return c.Div(float32(len(f.Vertices)))
}

// TriangleCount returns the number of fan triangles the face produces.
func (f *Face) TriangleCount() int {
	if len(f.Vertices) < 3 {
		return 0
	}
	return len(f.Vertices) - 2
}

// Centroid returns the average of every face vertex of the brush.
// Shared corners are counted once per face that references them.
func (b *Brush) Centroid() math.Vec3 {
	var c math.Vec3
	n := 0
	for i := range b.Faces {
		for _, v := range b.Faces[i].Vertices {
			c = c.Add(v)
		}
		n += len(b.Faces[i].Vertices)
	}
	if n == 0 {
		return c
	}
	return c.Div(float32(n))
}

// VertexCount returns the total number of face vertices in the brush.
func (b *Brush) VertexCount() int {
	n := 0
	for i := range b.Faces {
		n += len(b.Faces[i].Vertices)
	}
	return n
}

// PlaneFromPoints derives a plane from a vertex ring using Newell's method.
// The normal follows the right-hand rule over the ring order. Rings with
// fewer than 3 vertices or zero area yield the zero plane.
func PlaneFromPoints(ring []math.Vec3) Plane {
	if len(ring) < 3 {
		return Plane{}
	}

	var n, c math.Vec3
	for i := range ring {
		cur := ring[i]
		next := ring[(i+1)%len(ring)]
		n.X += (cur.Y - next.Y) * (cur.Z + next.Z)
		n.Y += (cur.Z - next.Z) * (cur.X + next.X)
		n.Z += (cur.X - next.X) * (cur.Y + next.Y)
		c = c.Add(cur)
	}

	n = n.Normalize()
	if n == (math.Vec3{}) {
		return Plane{}
	}
	c = c.Div(float32(len(ring)))
	return Plane{Normal: n, Dist: n.Dot(c)}
}

// NewFace builds a face from a vertex ring, deriving its plane.
func NewFace(texture string, ring []math.Vec3) Face {
	return Face{
		Vertices: ring,
		Plane:    PlaneFromPoints(ring),
		Texture:  texture,
		U:        TextureAxis{Scale: 1},
		V:        TextureAxis{Scale: 1},
	}
}
