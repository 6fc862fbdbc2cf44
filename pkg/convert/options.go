package convert

import (
	"strings"

	"github.com/Faultbox/brushmesh/pkg/collider"
	"github.com/Faultbox/brushmesh/pkg/cull"
	"github.com/Faultbox/brushmesh/pkg/entity"
	"github.com/Faultbox/brushmesh/pkg/mesh"
)

// Material overrides the texture size and face processing of one texture.
type Material struct {
	Texture string
	Width   int
	Height  int
	Hook    mesh.FaceHook // Optional
}

// Options holds the conversion settings.
type Options struct {
	ScalingFactor  float32
	TexelScale     float32
	DefaultTexSize int

	SmoothingAngle    float32 // Degrees; 0.01 or less disables smoothing
	SmoothingDistance float32 // Squared distance

	AddTangents    bool
	AddLightmapUV2 bool
	Compression    mesh.Compression

	// RepairNonFinite zeroes NaN and infinite vertex attributes after
	// post-processing. Off by default so bad input stays visible.
	RepairNonFinite bool

	Weld         bool
	WeldDistance float32 // Squared distance
	WeldAngle    float32

	SnapDistance float32 // 0 disables the snapper

	CullFaces bool
	Cull      cull.Options

	ColliderMode collider.Mode
	Classes      entity.Classifier

	Materials []Material
}

// DefaultOptions returns the settings used when no config is given.
func DefaultOptions() Options {
	return Options{
		ScalingFactor:     0.03125,
		TexelScale:        1,
		DefaultTexSize:    128,
		SmoothingAngle:    80,
		SmoothingDistance: 0.1,
		AddTangents:       true,
		WeldDistance:      0.1,
		WeldAngle:         180,
		CullFaces:         true,
		Cull:              cull.DefaultOptions(),
		ColliderMode:      collider.BoxAndConvex,
		Classes: entity.Classifier{
			Triggers: entity.Patterns{"trigger_*"},
		},
	}
}

// material returns the override for texture, or one with the default size.
func (o *Options) material(texture string) Material {
	for _, m := range o.Materials {
		if strings.EqualFold(m.Texture, texture) {
			if m.Width <= 0 {
				m.Width = o.DefaultTexSize
			}
			if m.Height <= 0 {
				m.Height = o.DefaultTexSize
			}
			return m
		}
	}
	return Material{Texture: texture, Width: o.DefaultTexSize, Height: o.DefaultTexSize}
}
