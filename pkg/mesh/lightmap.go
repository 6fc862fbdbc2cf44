package mesh

import (
	gomath "math"

	"github.com/Faultbox/brushmesh/pkg/geom"
	"github.com/Faultbox/brushmesh/pkg/math"
)

// DefaultLightmapMargin is the gap kept around each chart, in UV units.
const DefaultLightmapMargin = 0.004

// GenerateLightmapUVs fills UV2 with a non-overlapping lightmap layout.
// Each face span becomes one planar chart projected along the dominant axis
// of its normal; charts are laid out on a square grid with one shared
// world-to-UV scale so texel density stays uniform. A mesh without spans is
// treated as one chart.
func (m *Mesh) GenerateLightmapUVs(margin float32) {
	if len(m.Positions) == 0 {
		m.UV2 = nil
		return
	}

	spans := m.Spans
	if len(spans) == 0 {
		spans = []Span{{Start: 0, Count: len(m.Positions)}}
	}

	type chart struct {
		span     Span
		min, max math.Vec2
		points   []math.Vec2
	}
	charts := make([]chart, len(spans))
	var largest float32
	for i, s := range spans {
		ring := m.Positions[s.Start : s.Start+s.Count]
		drop := geom.DominantAxis(geom.PlaneFromPoints(ring).Normal)
		c := chart{span: s, points: make([]math.Vec2, len(ring))}
		for k, p := range ring {
			q := geom.Project(p, drop)
			c.points[k] = q
			if k == 0 {
				c.min, c.max = q, q
				continue
			}
			c.min = math.Vec2{X: min(c.min.X, q.X), Y: min(c.min.Y, q.Y)}
			c.max = math.Vec2{X: max(c.max.X, q.X), Y: max(c.max.Y, q.Y)}
		}
		size := c.max.Sub(c.min)
		largest = max(largest, size.X, size.Y)
		charts[i] = c
	}

	perRow := int(gomath.Ceil(gomath.Sqrt(float64(len(charts)))))
	cell := 1 / float32(perRow)
	inner := cell - 2*margin
	if inner <= 0 {
		inner = cell
		margin = 0
	}
	scale := float32(0)
	if largest > 0 {
		scale = inner / largest
	}

	m.UV2 = make([]math.Vec2, len(m.Positions))
	for i, c := range charts {
		origin := math.Vec2{
			X: float32(i%perRow)*cell + margin,
			Y: float32(i/perRow)*cell + margin,
		}
		for k, q := range c.points {
			m.UV2[c.span.Start+k] = origin.Add(q.Sub(c.min).Scale(scale))
		}
	}
}
