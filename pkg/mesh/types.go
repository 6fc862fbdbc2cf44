// Package mesh assembles brush faces into triangle buffers and provides
// the post-processing passes run on them (normals, smoothing, welding,
// tangents, lightmap UVs, compression, repair).
package mesh

import (
	"github.com/Faultbox/brushmesh/pkg/math"
)

// Mesh holds flat vertex and index buffers ready for upload.
type Mesh struct {
	Name      string
	Positions []math.Vec3
	Normals   []math.Vec3
	UVs       []math.Vec2
	UV2       []math.Vec2
	Tangents  [][4]float32 // XYZ tangent, W handedness
	Indices   []uint32
	Spans     []Span // Vertex range of each source face, in order
	Bounds    Bounds
}

// Span is the contiguous vertex range contributed by one face.
type Span struct {
	Start int
	Count int
}

// Bounds holds an axis-aligned bounding box.
type Bounds struct {
	Min math.Vec3
	Max math.Vec3
}

// Center returns the midpoint of the box.
func (b Bounds) Center() math.Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Size returns the box extent on each axis.
func (b Bounds) Size() math.Vec3 {
	return b.Max.Sub(b.Min)
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Positions)
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// Empty reports whether the mesh has no drawable triangles.
func (m *Mesh) Empty() bool {
	return m == nil || len(m.Positions) == 0 || len(m.Indices) == 0
}

// RecalculateBounds recomputes Bounds from the vertex positions.
func (m *Mesh) RecalculateBounds() {
	m.Bounds = BoundsOf(m.Positions)
}

// BoundsOf returns the bounding box of a set of points; empty input yields
// the zero box.
func BoundsOf(points []math.Vec3) Bounds {
	if len(points) == 0 {
		return Bounds{}
	}
	b := Bounds{Min: points[0], Max: points[0]}
	for _, p := range points[1:] {
		b.Min = b.Min.Min(p)
		b.Max = b.Max.Max(p)
	}
	return b
}
