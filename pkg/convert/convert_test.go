package convert

import (
	"context"
	"errors"
	gomath "math"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Faultbox/brushmesh/pkg/collider"
	"github.com/Faultbox/brushmesh/pkg/entity"
	"github.com/Faultbox/brushmesh/pkg/geom"
	"github.com/Faultbox/brushmesh/pkg/math"
	"github.com/Faultbox/brushmesh/pkg/mesh"
)

func box(lo, hi math.Vec3, texture string) geom.Brush {
	return geom.NewBox(lo, hi, texture)
}

func testOptions() Options {
	opts := DefaultOptions()
	opts.ScalingFactor = 1
	opts.DefaultTexSize = 1
	return opts
}

// twoCubes returns a worldspawn with two unit cubes sharing the x=1 face.
func twoCubes() *entity.Entity {
	return &entity.Entity{
		ClassName: "worldspawn",
		Brushes: []geom.Brush{
			box(math.Vec3{}, math.Vec3{X: 1, Y: 1, Z: 1}, "stone"),
			box(math.Vec3{X: 1}, math.Vec3{X: 2, Y: 1, Z: 1}, "stone"),
		},
	}
}

func TestConvertCullsSharedFaces(t *testing.T) {
	c := New(testOptions(), nil)
	res, err := c.Convert(context.Background(), []*entity.Entity{twoCubes()})
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}

	if res.Stats.FacesCulled != 2 {
		t.Errorf("expected 2 culled faces, got %d", res.Stats.FacesCulled)
	}
	if len(res.Culled) != 2 || res.Culled[0] != 0 || res.Culled[1] != 7 {
		t.Errorf("expected culled ids [0 7], got %v", res.Culled)
	}

	er := res.Entities[0]
	if len(er.Meshes) != 1 {
		t.Fatalf("expected 1 mesh, got %d", len(er.Meshes))
	}
	m := er.Meshes[0]
	if m.VertexCount() != 40 {
		t.Errorf("expected 40 vertices, got %d", m.VertexCount())
	}
	if len(m.Indices) != 60 {
		t.Errorf("expected 60 indices, got %d", len(m.Indices))
	}
	for _, p := range m.Positions {
		if p.X == 1 && p.Y > 0 && p.Y < 1 {
			t.Errorf("vertex of a hidden face found: %v", p)
		}
	}
	if len(m.Normals) != m.VertexCount() || len(m.Tangents) != m.VertexCount() {
		t.Errorf("expected normals and tangents for every vertex")
	}
	if m.Name != "worldspawn-0000-stone" {
		t.Errorf("unexpected mesh name %s", m.Name)
	}
}

func TestConvertHiddenFaceAbsent(t *testing.T) {
	// A unit cube whose +X face is fully covered by a larger box.
	e := &entity.Entity{
		ClassName: "worldspawn",
		Brushes: []geom.Brush{
			box(math.Vec3{}, math.Vec3{X: 1, Y: 1, Z: 1}, "stone"),
			box(math.Vec3{X: 1, Y: -1, Z: -1}, math.Vec3{X: 3, Y: 2, Z: 2}, "stone"),
		},
	}
	res, err := New(testOptions(), nil).Convert(context.Background(), []*entity.Entity{e})
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	if res.Stats.FacesCulled != 1 {
		t.Fatalf("expected 1 culled face, got %d", res.Stats.FacesCulled)
	}
	m := res.Entities[0].Meshes[0]
	if m.VertexCount() != 44 {
		t.Errorf("expected 44 vertices, got %d", m.VertexCount())
	}
	for i, n := range m.Normals {
		p := m.Positions[i]
		if n.X < -0.99 && p.X == 1 {
			continue // -X face of the large box
		}
		if n.X > 0.99 && p.X == 1 {
			t.Errorf("hidden +X face of the small cube is still present at %v", p)
		}
	}
}

func TestConvertNoCull(t *testing.T) {
	opts := testOptions()
	opts.CullFaces = false
	res, err := New(opts, nil).Convert(context.Background(), []*entity.Entity{twoCubes()})
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	if res.Stats.FacesCulled != 0 {
		t.Errorf("expected no culled faces, got %d", res.Stats.FacesCulled)
	}
	if n := res.Entities[0].Meshes[0].VertexCount(); n != 48 {
		t.Errorf("expected 48 vertices, got %d", n)
	}
}

func TestConvertMaterialOrder(t *testing.T) {
	b := box(math.Vec3{}, math.Vec3{X: 1, Y: 1, Z: 1}, "wood")
	b.Faces[0].Texture = "Metal"
	b.Faces[3].Texture = "metal"
	e := &entity.Entity{ClassName: "func_wall", Brushes: []geom.Brush{b}}

	opts := testOptions()
	opts.Materials = []Material{{Texture: "metal", Width: 64, Height: 32}}
	hooked := 0
	opts.Materials[0].Hook = func(ref geom.FaceRef, frag *mesh.Fragment) { hooked++ }

	res, err := New(opts, nil).Convert(context.Background(), []*entity.Entity{e})
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	meshes := res.Entities[0].Meshes
	if len(meshes) != 2 {
		t.Fatalf("expected 2 meshes, got %d", len(meshes))
	}
	if meshes[0].Name != "func_wall-0000-Metal" || meshes[1].Name != "func_wall-0000-wood" {
		t.Errorf("unexpected mesh order %s, %s", meshes[0].Name, meshes[1].Name)
	}
	if meshes[0].VertexCount() != 8 || meshes[1].VertexCount() != 16 {
		t.Errorf("expected 8 and 16 vertices, got %d and %d", meshes[0].VertexCount(), meshes[1].VertexCount())
	}
	if hooked != 2 {
		t.Errorf("expected hook called for 2 faces, got %d", hooked)
	}
}

func TestConvertEntityKinds(t *testing.T) {
	world := twoCubes()
	trigger := &entity.Entity{
		ClassName: "trigger_once",
		Brushes:   []geom.Brush{box(math.Vec3{X: -1}, math.Vec3{Y: 1, Z: 1}, "trigger")},
	}
	illusion := &entity.Entity{
		ClassName: "func_illusionary",
		Brushes:   []geom.Brush{box(math.Vec3{Y: 5}, math.Vec3{X: 1, Y: 6, Z: 1}, "glass")},
	}

	opts := testOptions()
	opts.Classes.Nonsolids = entity.Patterns{"func_illusionary"}
	res, err := New(opts, nil).Convert(context.Background(), []*entity.Entity{world, trigger, illusion})
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}

	// The trigger touches the world at x=0 but is not indexed, so only the
	// shared faces between the two world cubes are culled.
	if res.Stats.FacesCulled != 2 {
		t.Errorf("expected 2 culled faces, got %d", res.Stats.FacesCulled)
	}

	tr := res.Entities[1]
	if tr.Kind != entity.Trigger {
		t.Errorf("expected trigger kind, got %v", tr.Kind)
	}
	if len(tr.Meshes) != 0 {
		t.Errorf("expected no trigger meshes, got %d", len(tr.Meshes))
	}
	if len(tr.Colliders) != 1 || !tr.Colliders[0].IsTrigger {
		t.Errorf("expected one trigger collider")
	}

	il := res.Entities[2]
	if il.Kind != entity.Nonsolid {
		t.Errorf("expected nonsolid kind, got %v", il.Kind)
	}
	if len(il.Meshes) != 1 || len(il.Colliders) != 0 {
		t.Errorf("expected 1 mesh and no colliders, got %d and %d", len(il.Meshes), len(il.Colliders))
	}

	if n := len(res.Entities[0].Colliders); n != 2 {
		t.Errorf("expected 2 world colliders, got %d", n)
	}
	if res.Stats.Colliders != 3 {
		t.Errorf("expected 3 colliders total, got %d", res.Stats.Colliders)
	}
}

func TestConvertMergedCollider(t *testing.T) {
	opts := testOptions()
	opts.ColliderMode = collider.MergeAllConcave
	res, err := New(opts, nil).Convert(context.Background(), []*entity.Entity{twoCubes()})
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	cols := res.Entities[0].Colliders
	if len(cols) != 1 {
		t.Fatalf("expected 1 collider, got %d", len(cols))
	}
	if cols[0].Shape != collider.ShapeConcave {
		t.Errorf("expected concave collider, got %v", cols[0].Shape)
	}
	if cols[0].Mesh.VertexCount() != 40 {
		t.Errorf("expected culled faces excluded, got %d vertices", cols[0].Mesh.VertexCount())
	}
}

func TestConvertOrigin(t *testing.T) {
	e := twoCubes()
	e.Origin = math.Vec3{X: 2, Y: 2}
	opts := testOptions()
	opts.ScalingFactor = 0.5

	res, err := New(opts, nil).Convert(context.Background(), []*entity.Entity{e})
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	b := res.Entities[0].Meshes[0].Bounds
	if b.Min != (math.Vec3{X: -1, Y: -1}) || b.Max != (math.Vec3{X: 0, Y: -0.5, Z: 0.5}) {
		t.Errorf("unexpected bounds %+v", b)
	}
}

func TestConvertSnap(t *testing.T) {
	b := box(math.Vec3{}, math.Vec3{X: 4, Y: 4, Z: 4}, "stone")
	b.Faces[0].Vertices[2] = math.Vec3{X: 4, Y: 3.99, Z: 4}
	e := &entity.Entity{ClassName: "worldspawn", Brushes: []geom.Brush{b}}

	opts := testOptions()
	opts.SnapDistance = 0.05
	res, err := New(opts, nil).Convert(context.Background(), []*entity.Entity{e})
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	if res.Stats.VerticesSnapped == 0 {
		t.Error("expected snapped vertices")
	}
	if got := e.Brushes[0].Faces[0].Vertices[2]; got != (math.Vec3{X: 4, Y: 4, Z: 4}) {
		t.Errorf("expected crack closed, got %v", got)
	}
}

func TestConvertPostProcess(t *testing.T) {
	opts := testOptions()
	opts.AddLightmapUV2 = true
	opts.Compression = mesh.CompressionLow
	opts.Weld = true
	opts.WeldDistance = 0.0001
	opts.WeldAngle = 10

	res, err := New(opts, nil).Convert(context.Background(), []*entity.Entity{twoCubes()})
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	m := res.Entities[0].Meshes[0]
	if len(m.UV2) != m.VertexCount() {
		t.Errorf("expected uv2 for every vertex, got %d", len(m.UV2))
	}
	// Coplanar neighbours on the long faces share positions and normals.
	if m.VertexCount() >= 40 {
		t.Errorf("expected welded vertices, got %d", m.VertexCount())
	}
	if res.Stats.Repaired != 0 {
		t.Errorf("expected no repairs, got %d", res.Stats.Repaired)
	}
}

func nanCube() *entity.Entity {
	b := box(math.Vec3{}, math.Vec3{X: 1, Y: 1, Z: 1}, "stone")
	b.Faces[0].U.Axis = math.Vec3{X: float32(gomath.NaN())}
	return &entity.Entity{ClassName: "worldspawn", Brushes: []geom.Brush{b}}
}

func countNaNUVs(m *mesh.Mesh) int {
	n := 0
	for _, uv := range m.UVs {
		if uv.X != uv.X || uv.Y != uv.Y {
			n++
		}
	}
	return n
}

func TestConvertKeepsNonFinite(t *testing.T) {
	res, err := New(testOptions(), nil).Convert(context.Background(), []*entity.Entity{nanCube()})
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	m := res.Entities[0].Meshes[0]
	if countNaNUVs(m) == 0 {
		t.Error("expected NaN UVs to reach the output")
	}
	if res.Stats.Repaired != 0 {
		t.Errorf("expected no repairs, got %d", res.Stats.Repaired)
	}
}

func TestConvertRepairNonFinite(t *testing.T) {
	opts := testOptions()
	opts.RepairNonFinite = true
	res, err := New(opts, nil).Convert(context.Background(), []*entity.Entity{nanCube()})
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	m := res.Entities[0].Meshes[0]
	if n := countNaNUVs(m); n != 0 {
		t.Errorf("expected NaN UVs repaired, got %d", n)
	}
	if res.Stats.Repaired == 0 {
		t.Error("expected repairs to be counted")
	}
}

func axisAligned(normals []math.Vec3) bool {
	for _, n := range normals {
		if !geom.IsAxisAligned(n) {
			return false
		}
	}
	return true
}

func TestConvertEntityProperties(t *testing.T) {
	opts := testOptions()
	opts.ColliderMode = collider.MergeAllConcave

	e := twoCubes()
	e.Properties = map[string]string{
		PropConvex:         "1",
		PropSmoothingAngle: "100",
	}
	res, err := New(opts, nil).Convert(context.Background(), []*entity.Entity{e})
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	er := res.Entities[0]
	if len(er.Colliders) != 2 {
		t.Fatalf("expected 2 per-brush colliders, got %d", len(er.Colliders))
	}
	for _, c := range er.Colliders {
		if c.Shape == collider.ShapeConcave {
			t.Errorf("expected no concave collider, got %s", c.Name)
		}
	}
	// Three faces meet at each corner at right angles, which only a
	// smoothing angle above 90 degrees blends.
	if axisAligned(er.Meshes[0].Normals) {
		t.Error("expected smoothed corner normals")
	}
}

func TestConvertMalformedProperties(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	opts := testOptions()
	opts.ColliderMode = collider.MergeAllConcave

	e := twoCubes()
	e.Properties = map[string]string{
		PropConvex:         "maybe",
		PropSmoothingAngle: "wide",
	}
	res, err := New(opts, zap.New(core)).Convert(context.Background(), []*entity.Entity{e})
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}

	if logs.Len() != 2 {
		t.Fatalf("expected 2 warnings, got %d", logs.Len())
	}
	keys := map[string]bool{}
	for _, entry := range logs.All() {
		if entry.Message != "invalid entity property" {
			t.Errorf("unexpected message %q", entry.Message)
		}
		keys[entry.ContextMap()["key"].(string)] = true
	}
	if !keys[PropConvex] || !keys[PropSmoothingAngle] {
		t.Errorf("expected warnings for both keys, got %v", keys)
	}

	er := res.Entities[0]
	if len(er.Colliders) != 1 || er.Colliders[0].Shape != collider.ShapeConcave {
		t.Errorf("expected the default merged collider")
	}
	if !axisAligned(er.Meshes[0].Normals) {
		t.Error("expected the default smoothing angle to keep cube normals flat")
	}
}

func TestConvertEmpty(t *testing.T) {
	c := New(testOptions(), nil)
	if _, err := c.Convert(context.Background(), nil); !errors.Is(err, ErrEmptyInput) {
		t.Errorf("expected ErrEmptyInput, got %v", err)
	}
	empty := &entity.Entity{ClassName: "worldspawn"}
	if _, err := c.Convert(context.Background(), []*entity.Entity{empty}); !errors.Is(err, ErrEmptyInput) {
		t.Errorf("expected ErrEmptyInput, got %v", err)
	}
}

func TestConvertCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := New(testOptions(), nil).Convert(ctx, []*entity.Entity{twoCubes()})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if res != nil {
		t.Error("expected no partial result")
	}
}

func TestConverterReuse(t *testing.T) {
	c := New(testOptions(), nil)
	for i := 0; i < 2; i++ {
		res, err := c.Convert(context.Background(), []*entity.Entity{twoCubes()})
		if err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
		if res.Stats.FacesCulled != 2 {
			t.Errorf("run %d: expected 2 culled faces, got %d", i, res.Stats.FacesCulled)
		}
	}
}
