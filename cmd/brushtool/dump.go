package main

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/brushmesh/pkg/entity"
	"github.com/Faultbox/brushmesh/pkg/geom"
	"github.com/Faultbox/brushmesh/pkg/math"
)

// A brush dump is the YAML form of parsed map geometry:
//
//	entities:
//	  - classname: worldspawn
//	    origin: [0, 0, 0]
//	    properties: {message: "hello"}
//	    brushes:
//	      - box: {min: [0, 0, 0], max: [64, 64, 64], texture: stone}
//	      - faces:
//	          - texture: stone
//	            vertices: [[0, 0, 0], [0, 64, 0], [64, 64, 0]]
//	            u: {axis: [1, 0, 0], scale: 1}
//	            v: {axis: [0, -1, 0], scale: 1}
//	            shift: [0, 0]
//	            rotation: 0
//
// Face planes are derived from the vertex ring unless given explicitly.
type dumpFile struct {
	Entities []dumpEntity `yaml:"entities"`
}

type dumpEntity struct {
	ClassName  string            `yaml:"classname"`
	Origin     [3]float32        `yaml:"origin"`
	Properties map[string]string `yaml:"properties"`
	Brushes    []dumpBrush       `yaml:"brushes"`
}

type dumpBrush struct {
	Box   *dumpBox   `yaml:"box"`
	Faces []dumpFace `yaml:"faces"`
}

type dumpBox struct {
	Min     [3]float32 `yaml:"min"`
	Max     [3]float32 `yaml:"max"`
	Texture string     `yaml:"texture"`
}

type dumpFace struct {
	Texture  string       `yaml:"texture"`
	Vertices [][3]float32 `yaml:"vertices"`
	Plane    *dumpPlane   `yaml:"plane"`
	U        dumpAxis     `yaml:"u"`
	V        dumpAxis     `yaml:"v"`
	Shift    [2]float32   `yaml:"shift"`
	Rotation float32      `yaml:"rotation"`
}

type dumpPlane struct {
	Normal [3]float32 `yaml:"normal"`
	Dist   float32    `yaml:"dist"`
}

type dumpAxis struct {
	Axis  [3]float32 `yaml:"axis"`
	Scale float32    `yaml:"scale"`
}

var errNoEntities = errors.New("dump has no entities")

// readDump loads a brush dump and returns its entities and raw bytes.
func readDump(path string) ([]*entity.Entity, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	entities, err := parseDump(data)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return entities, data, nil
}

func parseDump(data []byte) ([]*entity.Entity, error) {
	var f dumpFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	if len(f.Entities) == 0 {
		return nil, errNoEntities
	}

	out := make([]*entity.Entity, len(f.Entities))
	for i, de := range f.Entities {
		e := &entity.Entity{
			ClassName:  de.ClassName,
			Origin:     vec3(de.Origin),
			Properties: de.Properties,
		}
		for b, db := range de.Brushes {
			brush, err := db.brush()
			if err != nil {
				return nil, fmt.Errorf("entity %d (%s) brush %d: %w", i, de.ClassName, b, err)
			}
			e.Brushes = append(e.Brushes, brush)
		}
		out[i] = e
	}
	return out, nil
}

func (db dumpBrush) brush() (geom.Brush, error) {
	if db.Box != nil {
		if len(db.Faces) > 0 {
			return geom.Brush{}, errors.New("brush has both box and faces")
		}
		return geom.NewBox(vec3(db.Box.Min), vec3(db.Box.Max), db.Box.Texture), nil
	}

	b := geom.Brush{Faces: make([]geom.Face, len(db.Faces))}
	for i, df := range db.Faces {
		ring := make([]math.Vec3, len(df.Vertices))
		for k, v := range df.Vertices {
			ring[k] = vec3(v)
		}
		f := geom.NewFace(df.Texture, ring)
		if df.Plane != nil {
			f.Plane = geom.Plane{Normal: vec3(df.Plane.Normal), Dist: df.Plane.Dist}
		}
		f.U = axis(df.U)
		f.V = axis(df.V)
		f.Shift = math.Vec2{X: df.Shift[0], Y: df.Shift[1]}
		f.Rotation = df.Rotation
		b.Faces[i] = f
	}
	return b, nil
}

// axis converts a texture axis; a missing scale means 1.
func axis(a dumpAxis) geom.TextureAxis {
	scale := a.Scale
	if scale == 0 {
		scale = 1
	}
	return geom.TextureAxis{Axis: vec3(a.Axis), Scale: scale}
}

func vec3(v [3]float32) math.Vec3 {
	return math.Vec3{X: v[0], Y: v[1], Z: v[2]}
}
