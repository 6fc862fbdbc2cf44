package mesh

import (
	"github.com/Faultbox/brushmesh/pkg/math"
)

// Weld returns a copy of m with near-coincident vertices merged. Vertices
// are scanned in order; each one folds into the first kept vertex within
// maxDelta squared distance whose normal differs by at most maxAngleDeg.
// Indices are remapped. Face spans survive only when nothing merged.
func Weld(m *Mesh, maxDelta, maxAngleDeg float32) *Mesh {
	hasNormals := len(m.Normals) == len(m.Positions)

	remap := make([]uint32, len(m.Positions))
	kept := make([]int, 0, len(m.Positions))
	for i, p := range m.Positions {
		dup := -1
		for k, a := range kept {
			if m.Positions[a].DistanceSquared(p) > maxDelta {
				continue
			}
			if hasNormals && m.Normals[a].AngleDeg(m.Normals[i]) > maxAngleDeg {
				continue
			}
			dup = k
			break
		}
		if dup >= 0 {
			remap[i] = uint32(dup)
			continue
		}
		remap[i] = uint32(len(kept))
		kept = append(kept, i)
	}

	out := &Mesh{
		Name:      m.Name,
		Positions: make([]math.Vec3, len(kept)),
		Indices:   make([]uint32, len(m.Indices)),
		Bounds:    m.Bounds,
	}
	if hasNormals {
		out.Normals = make([]math.Vec3, len(kept))
	}
	if len(m.UVs) == len(m.Positions) {
		out.UVs = make([]math.Vec2, len(kept))
	}
	if len(m.UV2) == len(m.Positions) {
		out.UV2 = make([]math.Vec2, len(kept))
	}
	if len(m.Tangents) == len(m.Positions) {
		out.Tangents = make([][4]float32, len(kept))
	}

	for k, a := range kept {
		out.Positions[k] = m.Positions[a]
		if out.Normals != nil {
			out.Normals[k] = m.Normals[a]
		}
		if out.UVs != nil {
			out.UVs[k] = m.UVs[a]
		}
		if out.UV2 != nil {
			out.UV2[k] = m.UV2[a]
		}
		if out.Tangents != nil {
			out.Tangents[k] = m.Tangents[a]
		}
	}
	for i, idx := range m.Indices {
		out.Indices[i] = remap[idx]
	}
	if len(kept) == len(m.Positions) {
		out.Spans = append([]Span(nil), m.Spans...)
	}
	return out
}
