package mesh

import (
	"strings"

	"github.com/Faultbox/brushmesh/internal/jobs"
	"github.com/Faultbox/brushmesh/pkg/geom"
	"github.com/Faultbox/brushmesh/pkg/math"
	"github.com/Faultbox/brushmesh/pkg/uv"
)

// Discarder reports whether a face id has been culled.
type Discarder interface {
	Contains(id int) bool
}

// Fragment is the geometry of one face before it is appended to a mesh.
// Indices are local to the fragment.
type Fragment struct {
	Positions []math.Vec3
	UVs       []math.Vec2
	Indices   []uint32
}

// FaceHook may rewrite a face fragment before it is appended.
type FaceHook func(ref geom.FaceRef, frag *Fragment)

// Options controls face filtering and vertex transformation.
type Options struct {
	Origin        math.Vec3
	ScalingFactor float32
	Projector     uv.Projector
	Discard       Discarder // nil keeps every face
	Material      string    // Texture filter, case-insensitive; empty keeps every texture
	Hook          FaceHook
}

// Filter returns the faces that pass the discard and material filters and
// have at least three vertices, plus the number of degenerate faces dropped.
func Filter(faces []geom.FaceRef, discard Discarder, material string) (kept []geom.FaceRef, degenerate int) {
	kept = make([]geom.FaceRef, 0, len(faces))
	for _, ref := range faces {
		if ref.Face == nil {
			continue
		}
		if discard != nil && discard.Contains(ref.ID) {
			continue
		}
		if material != "" && !strings.EqualFold(ref.Face.Texture, material) {
			continue
		}
		if !ref.Face.Valid() {
			degenerate++
			continue
		}
		kept = append(kept, ref)
	}
	return kept, degenerate
}

// Offsets returns the vertex and index prefix sums for a face list. Each
// slice has len(faces)+1 entries; the last entry is the total.
func Offsets(faces []geom.FaceRef) (verts, indices []int) {
	verts = make([]int, len(faces)+1)
	indices = make([]int, len(faces)+1)
	for i, ref := range faces {
		verts[i+1] = verts[i] + len(ref.Face.Vertices)
		indices[i+1] = indices[i] + ref.Face.TriangleCount()*3
	}
	return verts, indices
}

// FanIndices writes the fan triangulation of an n-vertex convex polygon
// whose first vertex sits at base into dst, which must hold (n-2)*3 entries.
func FanIndices(dst []uint32, base uint32, n int) {
	for t := 2; t < n; t++ {
		k := (t - 2) * 3
		dst[k] = base
		dst[k+1] = base + uint32(t-1)
		dst[k+2] = base + uint32(t)
	}
}

// Assemble packs the filtered faces into one mesh. Positions are written as
// vertex*ScalingFactor - Origin and UVs come from the projector. Normals
// are left empty.
func Assemble(name string, faces []geom.FaceRef, opts Options) *Mesh {
	kept, _ := Filter(faces, opts.Discard, opts.Material)
	if opts.Hook != nil {
		return assembleWithHook(name, kept, opts)
	}

	vertOffsets, indexOffsets := Offsets(kept)
	m := &Mesh{
		Name:      name,
		Positions: make([]math.Vec3, vertOffsets[len(kept)]),
		UVs:       make([]math.Vec2, vertOffsets[len(kept)]),
		Indices:   make([]uint32, indexOffsets[len(kept)]),
		Spans:     make([]Span, len(kept)),
	}

	jobs.For(len(kept), jobs.MeshBatch, func(i int) {
		f := kept[i].Face
		start, end := vertOffsets[i], vertOffsets[i+1]
		basis := uv.BasisOf(f)
		for n, v := range f.Vertices {
			m.Positions[start+n] = v.Scale(opts.ScalingFactor).Sub(opts.Origin)
			m.UVs[start+n] = opts.Projector.Project(v, basis)
		}
		FanIndices(m.Indices[indexOffsets[i]:indexOffsets[i+1]], uint32(start), end-start)
		m.Spans[i] = Span{Start: start, Count: end - start}
	})

	m.RecalculateBounds()
	return m
}

// assembleWithHook builds faces one at a time since hook output sizes are
// not known up front.
func assembleWithHook(name string, kept []geom.FaceRef, opts Options) *Mesh {
	m := &Mesh{Name: name}
	for _, ref := range kept {
		f := ref.Face
		frag := Fragment{
			Positions: make([]math.Vec3, len(f.Vertices)),
			UVs:       make([]math.Vec2, len(f.Vertices)),
			Indices:   make([]uint32, f.TriangleCount()*3),
		}
		basis := uv.BasisOf(f)
		for n, v := range f.Vertices {
			frag.Positions[n] = v.Scale(opts.ScalingFactor).Sub(opts.Origin)
			frag.UVs[n] = opts.Projector.Project(v, basis)
		}
		FanIndices(frag.Indices, 0, len(f.Vertices))

		opts.Hook(ref, &frag)

		base := len(m.Positions)
		uvs := frag.UVs
		if len(uvs) != len(frag.Positions) {
			uvs = make([]math.Vec2, len(frag.Positions))
			copy(uvs, frag.UVs)
		}
		m.Positions = append(m.Positions, frag.Positions...)
		m.UVs = append(m.UVs, uvs...)
		for _, idx := range frag.Indices {
			m.Indices = append(m.Indices, uint32(base)+idx)
		}
		m.Spans = append(m.Spans, Span{Start: base, Count: len(frag.Positions)})
	}
	m.RecalculateBounds()
	return m
}
