package entity

import (
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/brushmesh/pkg/math"
)

// Color is a linear RGBA color with components in [0, 1].
type Color struct {
	R, G, B, A float32
}

// Props reads typed values from an entity's properties. Values that fail
// to parse are logged and replaced by the caller's default.
type Props struct {
	class  string
	values map[string]string
	log    *zap.Logger
}

// Props returns a property reader for e. A nil log discards warnings.
func (e *Entity) Props(log *zap.Logger) Props {
	if log == nil {
		log = zap.NewNop()
	}
	return Props{class: e.ClassName, values: e.Properties, log: log}
}

// Has reports whether the key is set.
func (p Props) Has(key string) bool {
	_, ok := p.values[key]
	return ok
}

// String returns the raw value or def.
func (p Props) String(key, def string) string {
	if v, ok := p.values[key]; ok {
		return v
	}
	return def
}

// Float parses a float value. Integers are accepted.
func (p Props) Float(key string, def float32) float32 {
	v, ok := p.values[key]
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 32)
	if err != nil {
		p.mismatch(key, v, "float")
		return def
	}
	return float32(f)
}

// Int parses an integer value. Float values are truncated.
func (p Props) Int(key string, def int) int {
	v, ok := p.values[key]
	if !ok {
		return def
	}
	n, ok := parseNumber(v)
	if !ok {
		p.mismatch(key, v, "int")
		return def
	}
	return int(n)
}

// Bool parses "1"/"0" and the strconv boolean spellings.
func (p Props) Bool(key string, def bool) bool {
	v, ok := p.values[key]
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		p.mismatch(key, v, "bool")
		return def
	}
	return b
}

// Vec3 parses three space separated numbers.
func (p Props) Vec3(key string, def math.Vec3) math.Vec3 {
	v, ok := p.values[key]
	if !ok {
		return def
	}
	c, ok := parseComponents(v, 3)
	if !ok {
		p.mismatch(key, v, "vec3")
		return def
	}
	return math.Vec3{X: c[0], Y: c[1], Z: c[2]}
}

// Color parses "r g b" with 0-255 components. Components are clamped and
// alpha is always 1.
func (p Props) Color(key string, def Color) Color {
	v, ok := p.values[key]
	if !ok {
		return def
	}
	c, ok := parseComponents(v, 3)
	if !ok {
		p.mismatch(key, v, "color")
		return def
	}
	channel := func(x float32) float32 {
		return float32(min(max(int(x), 0), 255)) / 255
	}
	return Color{R: channel(c[0]), G: channel(c[1]), B: channel(c[2]), A: 1}
}

func (p Props) mismatch(key, value, want string) {
	p.log.Warn("invalid entity property",
		zap.String("class", p.class),
		zap.String("key", key),
		zap.String("value", value),
		zap.String("expected", want))
}

// parseNumber accepts integers first, then floats.
func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return float64(n), true
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f, true
	}
	return 0, false
}

func parseComponents(s string, n int) ([]float32, bool) {
	fields := strings.Fields(s)
	if len(fields) != n {
		return nil, false
	}
	out := make([]float32, n)
	for i, f := range fields {
		x, ok := parseNumber(f)
		if !ok {
			return nil, false
		}
		out[i] = float32(x)
	}
	return out, true
}
