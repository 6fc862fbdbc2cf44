// Package convert runs a full brush conversion: vertex snapping, face
// culling, per-material mesh assembly with post-processing and collider
// generation.
package convert

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/Faultbox/brushmesh/pkg/collider"
	"github.com/Faultbox/brushmesh/pkg/cull"
	"github.com/Faultbox/brushmesh/pkg/entity"
	"github.com/Faultbox/brushmesh/pkg/geom"
	"github.com/Faultbox/brushmesh/pkg/mesh"
	"github.com/Faultbox/brushmesh/pkg/uv"
)

// ErrEmptyInput is returned when there is no brush to convert.
var ErrEmptyInput = errors.New("no brushes to convert")

// minSmoothingAngle is the angle at or below which smoothing is skipped.
const minSmoothingAngle = 0.01

// Entity properties read during conversion.
const (
	// PropConvex forces per-brush convex colliders for one entity.
	PropConvex = "_convex"
	// PropSmoothingAngle overrides the smoothing angle for one entity.
	PropSmoothingAngle = "_phong_angle"
)

// Stats summarizes one conversion.
type Stats struct {
	Entities        int
	Brushes         int
	Faces           int
	FacesCulled     int
	FacesDegenerate int
	VerticesSnapped int
	Meshes          int
	Vertices        int
	Triangles       int
	Colliders       int
	Repaired        int
}

// EntityResult holds the output of one entity.
type EntityResult struct {
	Name      string
	Entity    *entity.Entity
	Kind      entity.Kind
	Meshes    []*mesh.Mesh // One per material, in first-encounter order
	Colliders []collider.Collider
}

// Result is the output of Convert.
type Result struct {
	Entities []EntityResult
	Stats    Stats
	Culled   []int // Discarded face ids, ascending
}

// Converter owns the scratch state of a conversion. It may be reused but
// runs one conversion at a time.
type Converter struct {
	mu      sync.Mutex
	opts    Options
	log     *zap.Logger
	discard *cull.DiscardSet
}

// New creates a converter. A nil log discards output.
func New(opts Options, log *zap.Logger) *Converter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Converter{
		opts:    opts,
		log:     log,
		discard: cull.NewDiscardSet(0),
	}
}

// Options returns the converter settings.
func (c *Converter) Options() Options {
	return c.opts
}

// Convert processes the entities in order. Brush vertices are snapped in
// place. ctx is checked between phases; a cancelled conversion returns no
// partial result.
func (c *Converter) Convert(ctx context.Context, entities []*entity.Entity) (*Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	res := &Result{Entities: make([]EntityResult, len(entities))}
	st := &res.Stats
	st.Entities = len(entities)
	for _, e := range entities {
		st.Brushes += len(e.Brushes)
		st.Faces += e.FaceCount()
	}
	if st.Faces == 0 {
		return nil, ErrEmptyInput
	}

	if c.opts.SnapDistance > 0 {
		for _, e := range entities {
			for b := range e.Brushes {
				st.VerticesSnapped += geom.SnapBrushVertices(&e.Brushes[b], c.opts.SnapDistance)
			}
		}
		c.log.Debug("vertices snapped", zap.Int("count", st.VerticesSnapped))
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("convert: %w", err)
	}

	// Only solid entities take part in culling.
	kinds := make([]entity.Kind, len(entities))
	var solid [][]geom.Brush
	slot := make([]int, len(entities))
	for i, e := range entities {
		kinds[i] = c.opts.Classes.Classify(e)
		slot[i] = -1
		if kinds[i] == entity.Solid {
			slot[i] = len(solid)
			solid = append(solid, e.Brushes)
		}
	}
	index := geom.NewIndex(solid...)

	c.discard.Reset(index.Len())
	if c.opts.CullFaces {
		st.FacesCulled = cull.Cull(index.Faces(), c.discard, c.opts.Cull)
		c.log.Debug("faces culled",
			zap.Int("culled", st.FacesCulled),
			zap.Int("indexed", index.Len()))
	}
	c.discard.Freeze()
	res.Culled = c.discard.IDs()
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("convert: %w", err)
	}

	for i, e := range entities {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("convert: %w", err)
		}

		var refs []geom.FaceRef
		if slot[i] >= 0 {
			refs = index.Group(slot[i])
		} else {
			refs = geom.Refs(e.Brushes)
		}

		er := EntityResult{
			Name:   fmt.Sprintf("%s-%04d", e.ClassName, i),
			Entity: e,
			Kind:   kinds[i],
		}
		props := e.Props(c.log)
		if kinds[i] != entity.Trigger {
			angle := props.Float(PropSmoothingAngle, c.opts.SmoothingAngle)
			er.Meshes = c.buildMeshes(er.Name, e, refs, angle, st)
		}
		if kinds[i] != entity.Nonsolid {
			forceConvex := props.Bool(PropConvex, false)
			er.Colliders = collider.Build(refs, c.opts.ColliderMode, kinds[i] == entity.Trigger, forceConvex, collider.Options{
				Origin:        e.Origin.Scale(c.opts.ScalingFactor),
				ScalingFactor: c.opts.ScalingFactor,
				Discard:       c.discard,
				NameFormat:    er.Name + "-collider%05d",
			})
		}

		for _, m := range er.Meshes {
			st.Meshes++
			st.Vertices += m.VertexCount()
			st.Triangles += m.TriangleCount()
		}
		st.Colliders += len(er.Colliders)
		res.Entities[i] = er
	}

	c.log.Info("conversion finished",
		zap.Int("entities", st.Entities),
		zap.Int("faces", st.Faces),
		zap.Int("culled", st.FacesCulled),
		zap.Int("meshes", st.Meshes),
		zap.Int("vertices", st.Vertices),
		zap.Int("triangles", st.Triangles),
		zap.Int("colliders", st.Colliders))
	return res, nil
}

// buildMeshes assembles one mesh per material of an entity and runs the
// configured post-processes on it.
func (c *Converter) buildMeshes(name string, e *entity.Entity, refs []geom.FaceRef, smoothing float32, st *Stats) []*mesh.Mesh {
	kept, degenerate := mesh.Filter(refs, c.discard, "")
	st.FacesDegenerate += degenerate
	if degenerate > 0 {
		c.log.Debug("degenerate faces skipped", zap.String("entity", name), zap.Int("count", degenerate))
	}

	var materials []string
	seen := make(map[string]bool)
	for _, ref := range kept {
		key := strings.ToLower(ref.Face.Texture)
		if !seen[key] {
			seen[key] = true
			materials = append(materials, ref.Face.Texture)
		}
	}

	origin := e.Origin.Scale(c.opts.ScalingFactor)
	meshes := make([]*mesh.Mesh, 0, len(materials))
	for _, texture := range materials {
		mat := c.opts.material(texture)
		m := mesh.Assemble(name+"-"+texture, kept, mesh.Options{
			Origin:        origin,
			ScalingFactor: c.opts.ScalingFactor,
			Projector:     uv.New(mat.Width, mat.Height, c.opts.TexelScale),
			Material:      texture,
			Hook:          mat.Hook,
		})
		if m.Empty() {
			continue
		}
		c.postProcess(m, smoothing, st)
		meshes = append(meshes, m)
	}
	return meshes
}

func (c *Converter) postProcess(m *mesh.Mesh, smoothing float32, st *Stats) {
	m.RecalculateNormals()
	if smoothing > minSmoothingAngle {
		m.SmoothNormals(smoothing, c.opts.SmoothingDistance)
	}
	if c.opts.AddLightmapUV2 {
		m.GenerateLightmapUVs(mesh.DefaultLightmapMargin)
	}
	if c.opts.Weld {
		*m = *mesh.Weld(m, c.opts.WeldDistance, c.opts.WeldAngle)
	}
	if c.opts.AddTangents {
		m.RecalculateTangents()
	}
	m.Compress(c.opts.Compression)
	if c.opts.RepairNonFinite {
		st.Repaired += m.Repair(c.log).Total()
	}
	m.RecalculateBounds()
}
