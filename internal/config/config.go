// Package config handles converter configuration loading and management.
package config

// Config holds all converter settings.
type Config struct {
	Import    ImportConfig     `yaml:"import"`
	Materials []MaterialConfig `yaml:"materials"`
	Entities  EntitiesConfig   `yaml:"entities"`
	Cache     CacheConfig      `yaml:"cache"`
	Logging   LoggingConfig    `yaml:"logging"`
}

// ImportConfig holds the geometry conversion settings.
type ImportConfig struct {
	ScalingFactor     float32 `yaml:"scaling_factor"`
	GlobalTexelScale  float32 `yaml:"global_texel_scale"`
	DefaultTexSize    int     `yaml:"default_tex_size"`
	AddTangents       bool    `yaml:"add_tangents"`
	AddLightmapUV2    bool    `yaml:"add_lightmap_uv2"`
	ColliderMode      string  `yaml:"collider_mode"`    // box_only, box_and_convex, convex_only, merge_all_concave
	MeshCompression   string  `yaml:"mesh_compression"` // off, low, medium, high
	SmoothingAngle    float32 `yaml:"smoothing_angle"`
	SmoothingDistance float32 `yaml:"smoothing_distance"`
	SnapDistance      float32 `yaml:"snap_distance"` // 0 disables snapping
	CullFaces         bool    `yaml:"cull_faces"`
	Weld              bool    `yaml:"weld"`
	WeldDistance      float32 `yaml:"weld_distance"`
	WeldAngle         float32 `yaml:"weld_angle"`
	RepairNonFinite   bool    `yaml:"repair_non_finite"`
}

// MaterialConfig overrides the texture size used for UV projection.
type MaterialConfig struct {
	Texture       string `yaml:"texture"`
	TextureWidth  int    `yaml:"texture_width"`
	TextureHeight int    `yaml:"texture_height"`
}

// EntitiesConfig holds class name patterns for special entities.
type EntitiesConfig struct {
	TriggerClasses  []string `yaml:"trigger_classes"`
	NonsolidClasses []string `yaml:"nonsolid_classes"`
}

// CacheConfig holds the conversion cache settings.
type CacheConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"` // Empty uses the config directory
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Import: ImportConfig{
			ScalingFactor:     0.03125,
			GlobalTexelScale:  1,
			DefaultTexSize:    128,
			AddTangents:       true,
			AddLightmapUV2:    false,
			ColliderMode:      "box_and_convex",
			MeshCompression:   "off",
			SmoothingAngle:    80,
			SmoothingDistance: 0.1,
			SnapDistance:      0,
			CullFaces:         true,
			Weld:              false,
			WeldDistance:      0.1,
			WeldAngle:         180,
		},
		Entities: EntitiesConfig{
			TriggerClasses:  []string{"trigger_*"},
			NonsolidClasses: []string{"func_illusionary"},
		},
		Cache: CacheConfig{
			Enabled: false,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
