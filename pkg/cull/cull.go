package cull

import (
	"github.com/Faultbox/brushmesh/internal/jobs"
	"github.com/Faultbox/brushmesh/pkg/geom"
)

// Options tunes the coincidence and containment tests.
type Options struct {
	// DistTolerance is the maximum |dist_i + dist_n| for two planes to be
	// considered coincident.
	DistTolerance float32
	// FacingDot is the maximum normal dot product for two planes to be
	// considered opposite.
	FacingDot float32
	// Nudge moves each tested vertex toward its face centroid so faces that
	// only share an edge are not counted as contained.
	Nudge float32
}

// DefaultOptions returns the tolerances used by the map importer.
func DefaultOptions() Options {
	return Options{
		DistTolerance: 0.5,
		FacingDot:     -0.999,
		Nudge:         0.2,
	}
}

// Cull tests every face against every other face and adds the ids (slice
// positions) of hidden faces to discard. Faces already in discard are not
// tested again but still act as occluders. Returns the number of newly
// discarded faces.
func Cull(faces []*geom.Face, discard *DiscardSet, opts Options) int {
	n := len(faces)
	if n < 2 {
		return 0
	}

	// Read-only snapshot for the workers; each writes only results[i].
	planes := make([]geom.Plane, n)
	results := make([]bool, n)
	for i, f := range faces {
		planes[i] = f.Plane
		results[i] = discard.Contains(i)
	}

	jobs.For(n, jobs.CullBatch, func(i int) {
		if results[i] || !faces[i].Valid() {
			return
		}
		for other := 0; other < n; other++ {
			if other == i || !faces[other].Valid() {
				continue
			}
			if !Coincident(planes[i], planes[other], opts) {
				continue
			}
			if Contained(faces[i], faces[other], opts.Nudge) {
				results[i] = true
				return
			}
		}
	})

	added := 0
	for i, hidden := range results {
		if hidden && discard.Add(i) {
			added++
		}
	}
	return added
}

// Coincident reports whether two planes overlap with opposite facing.
func Coincident(a, b geom.Plane, opts Options) bool {
	if abs(a.Dist+b.Dist) > opts.DistTolerance {
		return false
	}
	return a.Normal.Dot(b.Normal) <= opts.FacingDot
}

// Contained reports whether every vertex of subject, nudged toward the
// subject's centroid, lies inside occluder when both are projected along
// the dominant axis of the subject's normal.
func Contained(subject, occluder *geom.Face, nudge float32) bool {
	center := subject.Centroid()
	drop := geom.DominantAxis(subject.Plane.Normal)
	for _, v := range subject.Vertices {
		p := v.Add(center.Sub(v).Normalize().Scale(nudge))
		if !geom.PointInPolygon(p, occluder.Vertices, drop) {
			return false
		}
	}
	return true
}

func abs(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
