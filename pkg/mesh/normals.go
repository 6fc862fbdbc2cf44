package mesh

import (
	gomath "math"

	"github.com/Faultbox/brushmesh/internal/jobs"
	"github.com/Faultbox/brushmesh/pkg/math"
)

// RecalculateNormals sets every vertex normal to the normalized sum of the
// area-weighted normals of the triangles that reference it. Brush faces do
// not share vertices, so this yields flat face normals.
func (m *Mesh) RecalculateNormals() {
	normals := make([]math.Vec3, len(m.Positions))
	for t := 0; t+2 < len(m.Indices); t += 3 {
		a, b, c := m.Indices[t], m.Indices[t+1], m.Indices[t+2]
		p0, p1, p2 := m.Positions[a], m.Positions[b], m.Positions[c]
		n := p1.Sub(p0).Cross(p2.Sub(p0))
		normals[a] = normals[a].Add(n)
		normals[b] = normals[b].Add(n)
		normals[c] = normals[c].Add(n)
	}
	for i := range normals {
		normals[i] = normals[i].Normalize()
	}
	m.Normals = normals
}

// Smooth returns normals averaged over nearby vertices. For each vertex i
// the result is the normalized sum of the normals of every vertex j
// (including i) with |p_i - p_j|^2 <= maxDistance and
// dot(n_i, n_j) >= cos(angleDeg).
func Smooth(positions, normals []math.Vec3, angleDeg, maxDistance float32) []math.Vec3 {
	out := make([]math.Vec3, len(normals))
	if len(positions) != len(normals) {
		copy(out, normals)
		return out
	}

	cos := float32(gomath.Cos(float64(angleDeg) * gomath.Pi / 180))
	jobs.For(len(positions), jobs.SmoothBatch, func(i int) {
		p, n := positions[i], normals[i]
		var sum math.Vec3
		for j := range positions {
			if positions[j].DistanceSquared(p) <= maxDistance && normals[j].Dot(n) >= cos {
				sum = sum.Add(normals[j])
			}
		}
		out[i] = sum.Normalize()
	})
	return out
}

// SmoothNormals replaces the mesh normals with Smooth over its own
// positions. Normals must already be populated.
func (m *Mesh) SmoothNormals(angleDeg, maxDistance float32) {
	if len(m.Normals) != len(m.Positions) {
		m.RecalculateNormals()
	}
	m.Normals = Smooth(m.Positions, m.Normals, angleDeg, maxDistance)
}
