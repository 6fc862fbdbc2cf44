package config

import (
	"fmt"

	"github.com/Faultbox/brushmesh/pkg/collider"
	"github.com/Faultbox/brushmesh/pkg/convert"
	"github.com/Faultbox/brushmesh/pkg/cull"
	"github.com/Faultbox/brushmesh/pkg/entity"
	"github.com/Faultbox/brushmesh/pkg/mesh"
)

// Validate checks the enumerated and pattern settings.
func (c *Config) Validate() error {
	if _, err := collider.ParseMode(c.Import.ColliderMode); err != nil {
		return fmt.Errorf("import.collider_mode: %w", err)
	}
	var comp mesh.Compression
	if err := comp.UnmarshalText([]byte(c.Import.MeshCompression)); err != nil {
		return fmt.Errorf("import.mesh_compression: %w", err)
	}
	if c.Import.ScalingFactor <= 0 {
		return fmt.Errorf("import.scaling_factor must be positive, got %v", c.Import.ScalingFactor)
	}
	if err := entity.Patterns(c.Entities.TriggerClasses).Validate(); err != nil {
		return fmt.Errorf("entities.trigger_classes: %w", err)
	}
	if err := entity.Patterns(c.Entities.NonsolidClasses).Validate(); err != nil {
		return fmt.Errorf("entities.nonsolid_classes: %w", err)
	}
	return nil
}

// ConvertOptions translates the config into converter options.
func (c *Config) ConvertOptions() (convert.Options, error) {
	if err := c.Validate(); err != nil {
		return convert.Options{}, err
	}
	mode, _ := collider.ParseMode(c.Import.ColliderMode)
	var comp mesh.Compression
	_ = comp.UnmarshalText([]byte(c.Import.MeshCompression))

	in := c.Import
	opts := convert.Options{
		ScalingFactor:     in.ScalingFactor,
		TexelScale:        in.GlobalTexelScale,
		DefaultTexSize:    in.DefaultTexSize,
		SmoothingAngle:    in.SmoothingAngle,
		SmoothingDistance: in.SmoothingDistance,
		AddTangents:       in.AddTangents,
		AddLightmapUV2:    in.AddLightmapUV2,
		Compression:       comp,
		RepairNonFinite:   in.RepairNonFinite,
		Weld:              in.Weld,
		WeldDistance:      in.WeldDistance,
		WeldAngle:         in.WeldAngle,
		SnapDistance:      in.SnapDistance,
		CullFaces:         in.CullFaces,
		Cull:              cull.DefaultOptions(),
		ColliderMode:      mode,
		Classes: entity.Classifier{
			Triggers:  c.Entities.TriggerClasses,
			Nonsolids: c.Entities.NonsolidClasses,
		},
	}
	for _, m := range c.Materials {
		opts.Materials = append(opts.Materials, convert.Material{
			Texture: m.Texture,
			Width:   m.TextureWidth,
			Height:  m.TextureHeight,
		})
	}
	return opts, nil
}
