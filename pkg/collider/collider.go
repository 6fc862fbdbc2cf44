// Package collider builds collision geometry for brush groups and decides
// which shape each collider takes.
package collider

import (
	"fmt"

	"github.com/Faultbox/brushmesh/internal/jobs"
	"github.com/Faultbox/brushmesh/pkg/geom"
	"github.com/Faultbox/brushmesh/pkg/math"
	"github.com/Faultbox/brushmesh/pkg/mesh"
)

// Shape is the kind of collider the host engine should create.
type Shape int

const (
	ShapeBox Shape = iota
	ShapeConvex
	ShapeConcave
)

func (s Shape) String() string {
	switch s {
	case ShapeBox:
		return "box"
	case ShapeConvex:
		return "convex"
	case ShapeConcave:
		return "concave"
	default:
		return fmt.Sprintf("Shape(%d)", int(s))
	}
}

// Collider is one collision object. Box is always filled from the mesh
// bounds; for ShapeBox the host should use it instead of Mesh.
type Collider struct {
	Name      string
	Shape     Shape
	Box       mesh.Bounds
	Mesh      *mesh.Mesh // Positions and indices only
	IsConvex  bool
	IsTrigger bool
	Brushes   []int // Source brush indices
}

// Group is a set of faces destined for one collider.
type Group struct {
	Brushes []int
	Faces   []geom.FaceRef
}

// Options controls vertex transformation and face filtering.
type Options struct {
	Origin        math.Vec3
	ScalingFactor float32
	// Discard is applied to the merged concave group only. Per-brush
	// hulls keep every face so they stay closed.
	Discard mesh.Discarder
	// NameFormat receives the collider index; defaults to "collider%05d".
	NameFormat string
}

// CanBeBox reports whether a face set may be represented by its bounding
// box under the given mode. BoxOnly skips the normal test.
func CanBeBox(normals []math.Vec3, mode Mode) bool {
	if !mode.AllowsBox() {
		return false
	}
	if mode == BoxOnly {
		return true
	}
	for _, n := range normals {
		if !geom.IsAxisAligned(n) {
			return false
		}
	}
	return true
}

// Partition splits faces into collider groups: one group holding every
// face when the mode merges, otherwise one group per brush in encounter
// order.
func Partition(faces []geom.FaceRef, mode Mode, isTrigger, forceConvex bool) []Group {
	if len(faces) == 0 {
		return nil
	}

	if mode.Merges(isTrigger, forceConvex) {
		g := Group{Faces: faces}
		seen := make(map[int]bool)
		for _, ref := range faces {
			if !seen[ref.Brush] {
				seen[ref.Brush] = true
				g.Brushes = append(g.Brushes, ref.Brush)
			}
		}
		return []Group{g}
	}

	var groups []Group
	slot := make(map[int]int)
	for _, ref := range faces {
		i, ok := slot[ref.Brush]
		if !ok {
			i = len(groups)
			slot[ref.Brush] = i
			groups = append(groups, Group{Brushes: []int{ref.Brush}})
		}
		groups[i].Faces = append(groups[i].Faces, ref)
	}
	return groups
}

// Build partitions faces and builds one collider per group. Groups are
// packed in parallel; empty groups are dropped.
func Build(faces []geom.FaceRef, mode Mode, isTrigger, forceConvex bool, opts Options) []Collider {
	groups := Partition(faces, mode, isTrigger, forceConvex)
	merged := mode.Merges(isTrigger, forceConvex)
	format := opts.NameFormat
	if format == "" {
		format = "collider%05d"
	}

	var discard mesh.Discarder
	if merged {
		discard = opts.Discard
	}

	out := make([]Collider, len(groups))
	jobs.For(len(groups), jobs.ColliderBatch, func(i int) {
		kept, _ := mesh.Filter(groups[i].Faces, discard, "")
		m := pack(fmt.Sprintf(format, i), kept, opts)

		normals := make([]math.Vec3, len(kept))
		for k, ref := range kept {
			normals[k] = ref.Face.Plane.Normal
		}

		c := Collider{
			Name:      m.Name,
			Box:       m.Bounds,
			Mesh:      m,
			IsTrigger: isTrigger,
			Brushes:   groups[i].Brushes,
		}
		switch {
		case CanBeBox(normals, mode):
			c.Shape = ShapeBox
			c.IsConvex = true
		case merged:
			c.Shape = ShapeConcave
		default:
			c.Shape = ShapeConvex
			c.IsConvex = true
		}
		out[i] = c
	})

	result := out[:0]
	for _, c := range out {
		if !c.Mesh.Empty() {
			result = append(result, c)
		}
	}
	return result
}

// pack writes face positions and fan indices into a mesh.
func pack(name string, faces []geom.FaceRef, opts Options) *mesh.Mesh {
	verts, indices := mesh.Offsets(faces)
	m := &mesh.Mesh{
		Name:      name,
		Positions: make([]math.Vec3, verts[len(faces)]),
		Indices:   make([]uint32, indices[len(faces)]),
	}
	for i, ref := range faces {
		start := verts[i]
		for n, v := range ref.Face.Vertices {
			m.Positions[start+n] = v.Scale(opts.ScalingFactor).Sub(opts.Origin)
		}
		mesh.FanIndices(m.Indices[indices[i]:indices[i+1]], uint32(start), len(ref.Face.Vertices))
	}
	m.RecalculateBounds()
	return m
}
