package config

import "flag"

// Flags holds the command-line overrides shared by every subcommand.
type Flags struct {
	Config       string
	Debug        bool
	Scale        float64
	ColliderMode string
	NoCull       bool
}

// RegisterFlags defines the config flags on fs.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{}
	fs.StringVar(&f.Config, "config", "", "Path to config file")
	fs.BoolVar(&f.Debug, "debug", false, "Enable debug logging")
	fs.Float64Var(&f.Scale, "scale", 0, "Override import scaling factor")
	fs.StringVar(&f.ColliderMode, "collider-mode", "", "Override collider mode")
	fs.BoolVar(&f.NoCull, "no-cull", false, "Disable hidden face culling")
	return f
}

// ConfigPath returns the explicit config path if provided via -config.
func (f *Flags) ConfigPath() string {
	if f == nil {
		return ""
	}
	return f.Config
}

// apply applies CLI flag overrides to the config.
func (f *Flags) apply(cfg *Config) {
	if f == nil {
		return
	}
	if f.Debug {
		cfg.Logging.Level = "debug"
	}
	if f.Scale > 0 {
		cfg.Import.ScalingFactor = float32(f.Scale)
	}
	if f.ColliderMode != "" {
		cfg.Import.ColliderMode = f.ColliderMode
	}
	if f.NoCull {
		cfg.Import.CullFaces = false
	}
}
