package mesh

import (
	gomath "math"

	"go.uber.org/zap"

	"github.com/Faultbox/brushmesh/pkg/math"
)

// RepairReport counts the vertex attributes Repair replaced.
type RepairReport struct {
	Positions int
	Normals   int
	UVs       int
	UV2       int
	Tangents  int
}

// Total returns the number of repaired attributes.
func (r RepairReport) Total() int {
	return r.Positions + r.Normals + r.UVs + r.UV2 + r.Tangents
}

// Repair replaces every vertex attribute holding a NaN or infinite
// component with the zero vector. The pipeline never produces such values
// from finite input; this cleans up after faulty upstream data.
func (m *Mesh) Repair(log *zap.Logger) RepairReport {
	if log == nil {
		log = zap.NewNop()
	}

	var r RepairReport
	for i, p := range m.Positions {
		if !p.IsFinite() {
			log.Warn("invalid vertex position", zap.String("mesh", m.Name), zap.Int("index", i))
			m.Positions[i] = math.Vec3{}
			r.Positions++
		}
	}
	for i, n := range m.Normals {
		if !n.IsFinite() {
			log.Warn("invalid vertex normal", zap.String("mesh", m.Name), zap.Int("index", i))
			m.Normals[i] = math.Vec3{}
			r.Normals++
		}
	}
	for i, uv := range m.UVs {
		if !uv.IsFinite() {
			log.Warn("invalid uv", zap.String("mesh", m.Name), zap.Int("index", i))
			m.UVs[i] = math.Vec2{}
			r.UVs++
		}
	}
	for i, uv := range m.UV2 {
		if !uv.IsFinite() {
			log.Warn("invalid uv2", zap.String("mesh", m.Name), zap.Int("index", i))
			m.UV2[i] = math.Vec2{}
			r.UV2++
		}
	}
	for i, t := range m.Tangents {
		if !finite4(t) {
			log.Warn("invalid tangent", zap.String("mesh", m.Name), zap.Int("index", i))
			m.Tangents[i] = [4]float32{}
			r.Tangents++
		}
	}
	return r
}

func finite4(v [4]float32) bool {
	for _, c := range v {
		f := float64(c)
		if gomath.IsNaN(f) || gomath.IsInf(f, 0) {
			return false
		}
	}
	return true
}
