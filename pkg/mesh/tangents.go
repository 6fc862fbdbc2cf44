package mesh

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/brushmesh/pkg/math"
)

// RecalculateTangents derives per-vertex tangents from positions, normals
// and UVs. The tangent is orthogonalized against the normal and W holds
// the bitangent handedness (+1 or -1). Missing normals are recalculated;
// missing UVs leave the tangents unset.
func (m *Mesh) RecalculateTangents() {
	if len(m.UVs) != len(m.Positions) {
		m.Tangents = nil
		return
	}
	if len(m.Normals) != len(m.Positions) {
		m.RecalculateNormals()
	}

	tan := make([]mgl32.Vec3, len(m.Positions))
	bitan := make([]mgl32.Vec3, len(m.Positions))
	for t := 0; t+2 < len(m.Indices); t += 3 {
		a, b, c := m.Indices[t], m.Indices[t+1], m.Indices[t+2]
		p0, p1, p2 := toGL(m.Positions[a]), toGL(m.Positions[b]), toGL(m.Positions[c])
		w0, w1, w2 := m.UVs[a], m.UVs[b], m.UVs[c]

		e1, e2 := p1.Sub(p0), p2.Sub(p0)
		s1, s2 := w1.X-w0.X, w2.X-w0.X
		t1, t2 := w1.Y-w0.Y, w2.Y-w0.Y

		det := s1*t2 - s2*t1
		if det > -1e-12 && det < 1e-12 {
			continue
		}
		r := 1 / det
		sdir := e1.Mul(t2).Sub(e2.Mul(t1)).Mul(r)
		tdir := e2.Mul(s1).Sub(e1.Mul(s2)).Mul(r)
		for _, i := range [3]uint32{a, b, c} {
			tan[i] = tan[i].Add(sdir)
			bitan[i] = bitan[i].Add(tdir)
		}
	}

	m.Tangents = make([][4]float32, len(m.Positions))
	for i := range m.Positions {
		n := toGL(m.Normals[i])
		t := tan[i].Sub(n.Mul(n.Dot(tan[i])))
		if t.Len() < 1e-6 {
			t = fallbackTangent(n)
		} else {
			t = t.Normalize()
		}
		w := float32(1)
		if n.Cross(t).Dot(bitan[i]) < 0 {
			w = -1
		}
		m.Tangents[i] = [4]float32{t.X(), t.Y(), t.Z(), w}
	}
}

// fallbackTangent picks any unit vector perpendicular to n.
func fallbackTangent(n mgl32.Vec3) mgl32.Vec3 {
	ref := mgl32.Vec3{1, 0, 0}
	if n.X() > 0.9 || n.X() < -0.9 {
		ref = mgl32.Vec3{0, 1, 0}
	}
	t := ref.Sub(n.Mul(n.Dot(ref)))
	if t.Len() < 1e-6 {
		return ref
	}
	return t.Normalize()
}

func toGL(v math.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{v.X, v.Y, v.Z}
}
