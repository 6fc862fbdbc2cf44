package mesh

import (
	gomath "math"
	"testing"

	"github.com/Faultbox/brushmesh/pkg/geom"
	"github.com/Faultbox/brushmesh/pkg/math"
	"github.com/Faultbox/brushmesh/pkg/uv"
)

type idSet map[int]bool

func (s idSet) Contains(id int) bool { return s[id] }

func near(a, b float32) bool {
	return gomath.Abs(float64(a-b)) < 1e-4
}

func unitCube(texture string) []geom.Brush {
	return []geom.Brush{geom.NewBox(math.Vec3{}, math.Vec3{X: 1, Y: 1, Z: 1}, texture)}
}

func cubeMesh(t *testing.T) *Mesh {
	t.Helper()
	brushes := unitCube("stone")
	return Assemble("cube", geom.Refs(brushes), Options{
		ScalingFactor: 1,
		Projector:     uv.New(1, 1, 1),
	})
}

func TestAssembleUnitCube(t *testing.T) {
	m := cubeMesh(t)

	if len(m.Positions) != 24 {
		t.Errorf("expected 24 vertices, got %d", len(m.Positions))
	}
	if len(m.Indices) != 36 {
		t.Errorf("expected 36 indices, got %d", len(m.Indices))
	}
	if len(m.UVs) != len(m.Positions) {
		t.Fatalf("expected %d uvs, got %d", len(m.Positions), len(m.UVs))
	}
	for i, c := range m.UVs {
		if c.X < -1e-6 || c.X > 1+1e-6 || c.Y < -1e-6 || c.Y > 1+1e-6 {
			t.Errorf("uv %d out of range: %v", i, c)
		}
	}
	for _, idx := range m.Indices {
		if int(idx) >= len(m.Positions) {
			t.Fatalf("index %d out of range", idx)
		}
	}
	if len(m.Spans) != 6 {
		t.Errorf("expected 6 spans, got %d", len(m.Spans))
	}
	if m.Bounds.Min != (math.Vec3{}) || m.Bounds.Max != (math.Vec3{X: 1, Y: 1, Z: 1}) {
		t.Errorf("unexpected bounds %+v", m.Bounds)
	}
	if m.Normals != nil {
		t.Error("assembler should not compute normals")
	}
}

func TestAssembleScaleAndOrigin(t *testing.T) {
	brushes := unitCube("stone")
	m := Assemble("cube", geom.Refs(brushes), Options{
		Origin:        math.Vec3{X: 1},
		ScalingFactor: 2,
		Projector:     uv.New(64, 64, 1),
	})

	want := Bounds{Min: math.Vec3{X: -1}, Max: math.Vec3{X: 1, Y: 2, Z: 2}}
	if m.Bounds != want {
		t.Errorf("expected bounds %+v, got %+v", want, m.Bounds)
	}
}

func TestFanIndices(t *testing.T) {
	tests := []struct {
		n    int
		want []uint32
	}{
		{3, []uint32{10, 11, 12}},
		{4, []uint32{10, 11, 12, 10, 12, 13}},
		{5, []uint32{10, 11, 12, 10, 12, 13, 10, 13, 14}},
	}
	for _, tt := range tests {
		dst := make([]uint32, (tt.n-2)*3)
		FanIndices(dst, 10, tt.n)
		for i := range tt.want {
			if dst[i] != tt.want[i] {
				t.Errorf("n=%d: expected %v, got %v", tt.n, tt.want, dst)
				break
			}
		}
	}
}

func TestFilter(t *testing.T) {
	brushes := unitCube("Stone")
	brushes[0].Faces[2].Texture = "sky"
	brushes[0].Faces[3].Vertices = brushes[0].Faces[3].Vertices[:2]
	idx := geom.NewIndex(brushes)
	refs := idx.Group(0)

	kept, degenerate := Filter(refs, idSet{0: true}, "stone")
	if degenerate != 1 {
		t.Errorf("expected 1 degenerate face, got %d", degenerate)
	}
	// 6 faces - 1 discarded - 1 sky - 1 degenerate
	if len(kept) != 3 {
		t.Fatalf("expected 3 kept faces, got %d", len(kept))
	}
	for _, ref := range kept {
		if ref.ID == 0 || ref.ID == 2 || ref.ID == 3 {
			t.Errorf("face %d should have been filtered", ref.ID)
		}
	}
}

func TestAssembleSkipsDiscarded(t *testing.T) {
	brushes := unitCube("stone")
	idx := geom.NewIndex(brushes)
	m := Assemble("cube", idx.Group(0), Options{
		ScalingFactor: 1,
		Projector:     uv.New(1, 1, 1),
		Discard:       idSet{0: true, 1: true},
	})
	if len(m.Positions) != 16 {
		t.Errorf("expected 16 vertices, got %d", len(m.Positions))
	}
	if len(m.Indices) != 24 {
		t.Errorf("expected 24 indices, got %d", len(m.Indices))
	}
}

func TestOffsets(t *testing.T) {
	brushes := unitCube("stone")
	brushes[0].Faces[0].Vertices = append(brushes[0].Faces[0].Vertices, math.Vec3{X: 1, Y: 0.5, Z: 1.5})
	verts, indices := Offsets(geom.Refs(brushes))

	if len(verts) != 7 || len(indices) != 7 {
		t.Fatalf("expected 7 offsets, got %d and %d", len(verts), len(indices))
	}
	if verts[1] != 5 || indices[1] != 9 {
		t.Errorf("expected first face 5 verts / 9 indices, got %d / %d", verts[1], indices[1])
	}
	if verts[6] != 25 || indices[6] != 39 {
		t.Errorf("expected totals 25 / 39, got %d / %d", verts[6], indices[6])
	}
}

func TestAssembleHook(t *testing.T) {
	brushes := unitCube("stone")
	brushes[0].Faces[4].Texture = "water"

	calls := 0
	hook := func(ref geom.FaceRef, frag *Fragment) {
		calls++
		if ref.Face.Texture != "water" {
			return
		}
		// Replace the quad with a single triangle.
		frag.Positions = frag.Positions[:3]
		frag.UVs = nil
		frag.Indices = []uint32{0, 1, 2}
	}

	m := Assemble("cube", geom.Refs(brushes), Options{
		ScalingFactor: 1,
		Projector:     uv.New(1, 1, 1),
		Hook:          hook,
	})
	if calls != 6 {
		t.Errorf("expected hook called 6 times, got %d", calls)
	}
	if len(m.Positions) != 23 {
		t.Errorf("expected 23 vertices, got %d", len(m.Positions))
	}
	if len(m.UVs) != len(m.Positions) {
		t.Errorf("expected uvs padded to %d, got %d", len(m.Positions), len(m.UVs))
	}
	if len(m.Indices) != 33 {
		t.Errorf("expected 33 indices, got %d", len(m.Indices))
	}
	for _, idx := range m.Indices {
		if int(idx) >= len(m.Positions) {
			t.Fatalf("index %d out of range", idx)
		}
	}
}

func TestRecalculateNormals(t *testing.T) {
	m := cubeMesh(t)
	m.RecalculateNormals()

	for i, s := range m.Spans {
		want := unitCube("stone")[0].Faces[i].Plane.Normal
		for k := s.Start; k < s.Start+s.Count; k++ {
			n := m.Normals[k]
			if !near(n.X, want.X) || !near(n.Y, want.Y) || !near(n.Z, want.Z) {
				t.Errorf("face %d vertex %d: expected normal %v, got %v", i, k, want, n)
			}
		}
	}
}

func TestSmooth(t *testing.T) {
	positions := []math.Vec3{{}, {}, {X: 10}}
	normals := []math.Vec3{{X: 1}, {Y: 1}, {Z: 1}}

	out := Smooth(positions, normals, 100, 0.01)
	d := float32(1 / gomath.Sqrt2)
	for i := 0; i < 2; i++ {
		if !near(out[i].X, d) || !near(out[i].Y, d) || !near(out[i].Z, 0) {
			t.Errorf("vertex %d: expected averaged normal, got %v", i, out[i])
		}
	}
	if out[2] != normals[2] {
		t.Errorf("isolated vertex changed: %v", out[2])
	}

	out = Smooth(positions, normals, 80, 0.01)
	for i := range normals {
		if out[i] != normals[i] {
			t.Errorf("vertex %d: expected %v outside angle, got %v", i, normals[i], out[i])
		}
	}
}

func TestSmoothNormalsCube(t *testing.T) {
	m := cubeMesh(t)
	m.RecalculateNormals()
	flat := append([]math.Vec3(nil), m.Normals...)

	m.SmoothNormals(30, 0.001)
	for i := range flat {
		if m.Normals[i] != flat[i] {
			t.Fatalf("vertex %d: 90 degree corners should stay hard", i)
		}
	}

	m.SmoothNormals(91, 0.001)
	for i, n := range m.Normals {
		if !near(n.Length(), 1) {
			t.Errorf("vertex %d: expected unit normal, got length %f", i, n.Length())
		}
		if n == flat[i] {
			t.Errorf("vertex %d: expected corner normal to be smoothed", i)
		}
	}
}

func TestWeld(t *testing.T) {
	m := cubeMesh(t)
	m.RecalculateNormals()

	hard := Weld(m, 0.0001, 10)
	if len(hard.Positions) != 24 {
		t.Errorf("expected 24 vertices with angle limit, got %d", len(hard.Positions))
	}
	if len(hard.Spans) != 6 {
		t.Errorf("expected spans kept when nothing merged, got %d", len(hard.Spans))
	}

	soft := Weld(m, 0.0001, 180)
	if len(soft.Positions) != 8 {
		t.Errorf("expected 8 vertices, got %d", len(soft.Positions))
	}
	if len(soft.Indices) != 36 {
		t.Errorf("expected 36 indices, got %d", len(soft.Indices))
	}
	if soft.Spans != nil {
		t.Error("expected spans dropped after merging")
	}
	for _, idx := range soft.Indices {
		if int(idx) >= len(soft.Positions) {
			t.Fatalf("index %d out of range", idx)
		}
	}

	again := Weld(soft, 0.0001, 180)
	if len(again.Positions) != len(soft.Positions) {
		t.Errorf("weld not idempotent: %d then %d", len(soft.Positions), len(again.Positions))
	}
	for i := range soft.Indices {
		if again.Indices[i] != soft.Indices[i] {
			t.Fatalf("weld not idempotent at index %d", i)
		}
	}
}

func TestWeldWithoutNormals(t *testing.T) {
	m := cubeMesh(t)
	out := Weld(m, 0.0001, 0)
	if len(out.Positions) != 8 {
		t.Errorf("expected angle test skipped without normals, got %d vertices", len(out.Positions))
	}
}

func TestRecalculateTangents(t *testing.T) {
	m := cubeMesh(t)
	m.RecalculateTangents()

	if len(m.Tangents) != len(m.Positions) {
		t.Fatalf("expected %d tangents, got %d", len(m.Positions), len(m.Tangents))
	}
	for i, tan := range m.Tangents {
		v := math.Vec3{X: tan[0], Y: tan[1], Z: tan[2]}
		if !near(v.Length(), 1) {
			t.Errorf("tangent %d not unit length: %v", i, v)
		}
		if !near(v.Dot(m.Normals[i]), 0) {
			t.Errorf("tangent %d not orthogonal to normal", i)
		}
		if tan[3] != 1 && tan[3] != -1 {
			t.Errorf("tangent %d: expected handedness +-1, got %f", i, tan[3])
		}
	}
}

func TestRecalculateTangentsWithoutUVs(t *testing.T) {
	m := cubeMesh(t)
	m.UVs = nil
	m.RecalculateTangents()
	if m.Tangents != nil {
		t.Error("expected no tangents without uvs")
	}
}

func TestGenerateLightmapUVs(t *testing.T) {
	m := cubeMesh(t)
	m.GenerateLightmapUVs(DefaultLightmapMargin)

	if len(m.UV2) != len(m.Positions) {
		t.Fatalf("expected %d uv2, got %d", len(m.Positions), len(m.UV2))
	}
	for i, c := range m.UV2 {
		if c.X < 0 || c.X > 1 || c.Y < 0 || c.Y > 1 {
			t.Errorf("uv2 %d out of range: %v", i, c)
		}
	}

	type rect struct{ lo, hi math.Vec2 }
	rects := make([]rect, len(m.Spans))
	for i, s := range m.Spans {
		r := rect{lo: m.UV2[s.Start], hi: m.UV2[s.Start]}
		for _, c := range m.UV2[s.Start : s.Start+s.Count] {
			r.lo = math.Vec2{X: min(r.lo.X, c.X), Y: min(r.lo.Y, c.Y)}
			r.hi = math.Vec2{X: max(r.hi.X, c.X), Y: max(r.hi.Y, c.Y)}
		}
		rects[i] = r
	}
	for i := range rects {
		for j := i + 1; j < len(rects); j++ {
			a, b := rects[i], rects[j]
			if a.lo.X < b.hi.X && b.lo.X < a.hi.X && a.lo.Y < b.hi.Y && b.lo.Y < a.hi.Y {
				t.Errorf("charts %d and %d overlap", i, j)
			}
		}
	}
}

func TestCompressionText(t *testing.T) {
	tests := []struct {
		in      string
		want    Compression
		wantErr bool
	}{
		{"off", CompressionOff, false},
		{"Low", CompressionLow, false},
		{" medium ", CompressionMedium, false},
		{"high", CompressionHigh, false},
		{"ultra", CompressionOff, true},
	}
	for _, tt := range tests {
		var c Compression
		err := c.UnmarshalText([]byte(tt.in))
		if (err != nil) != tt.wantErr {
			t.Errorf("%q: unexpected error %v", tt.in, err)
			continue
		}
		if err == nil && c != tt.want {
			t.Errorf("%q: expected %v, got %v", tt.in, tt.want, c)
		}
	}
	if CompressionHigh.String() != "high" {
		t.Errorf("expected high, got %s", CompressionHigh)
	}
}

func TestCompress(t *testing.T) {
	m := cubeMesh(t)
	m.Positions[0] = math.Vec3{X: 0.123456, Y: 0, Z: 0}
	m.RecalculateNormals()
	orig := append([]math.Vec3(nil), m.Positions...)

	m.Compress(CompressionHigh)
	for i := range orig {
		if orig[i].Distance(m.Positions[i]) > 0.01 {
			t.Errorf("vertex %d moved too far: %v -> %v", i, orig[i], m.Positions[i])
		}
	}

	once := append([]math.Vec3(nil), m.Positions...)
	m.Compress(CompressionHigh)
	for i := range once {
		if once[i].Distance(m.Positions[i]) > 1e-5 {
			t.Errorf("compression not idempotent at vertex %d", i)
		}
	}
}

func TestCompressOff(t *testing.T) {
	m := cubeMesh(t)
	m.Positions[0] = math.Vec3{X: 0.123456}
	m.Compress(CompressionOff)
	if m.Positions[0].X != 0.123456 {
		t.Errorf("expected no change, got %f", m.Positions[0].X)
	}
}

func TestRepair(t *testing.T) {
	m := cubeMesh(t)
	m.RecalculateNormals()
	nan := float32(gomath.NaN())
	inf := float32(gomath.Inf(1))
	m.Positions[3] = math.Vec3{X: nan}
	m.Normals[5] = math.Vec3{Y: inf}
	m.UVs[7] = math.Vec2{X: nan}

	r := m.Repair(nil)
	if r.Positions != 1 || r.Normals != 1 || r.UVs != 1 {
		t.Errorf("unexpected report %+v", r)
	}
	if r.Total() != 3 {
		t.Errorf("expected 3 repairs, got %d", r.Total())
	}
	if m.Positions[3] != (math.Vec3{}) || m.Normals[5] != (math.Vec3{}) || m.UVs[7] != (math.Vec2{}) {
		t.Error("expected invalid values to be zeroed")
	}

	if again := m.Repair(nil); again.Total() != 0 {
		t.Errorf("expected clean mesh, got %+v", again)
	}
}

func TestEmpty(t *testing.T) {
	var m *Mesh
	if !m.Empty() {
		t.Error("nil mesh should be empty")
	}
	if !(&Mesh{}).Empty() {
		t.Error("zero mesh should be empty")
	}
	if cubeMesh(t).Empty() {
		t.Error("cube should not be empty")
	}
}
