package mesh

import (
	"fmt"
	gomath "math"
	"strings"

	"github.com/Faultbox/brushmesh/pkg/math"
)

// Compression selects how aggressively vertex attributes are quantized.
type Compression int

const (
	CompressionOff Compression = iota
	CompressionLow
	CompressionMedium
	CompressionHigh
)

var compressionNames = map[Compression]string{
	CompressionOff:    "off",
	CompressionLow:    "low",
	CompressionMedium: "medium",
	CompressionHigh:   "high",
}

// String returns the config name of the level.
func (c Compression) String() string {
	if s, ok := compressionNames[c]; ok {
		return s
	}
	return fmt.Sprintf("Compression(%d)", int(c))
}

// MarshalText implements encoding.TextMarshaler.
func (c Compression) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Compression) UnmarshalText(text []byte) error {
	name := strings.ToLower(strings.TrimSpace(string(text)))
	for level, s := range compressionNames {
		if s == name {
			*c = level
			return nil
		}
	}
	return fmt.Errorf("unknown mesh compression %q", text)
}

// bits per attribute: position, normal, uv.
var compressionBits = map[Compression][3]int{
	CompressionLow:    {16, 12, 16},
	CompressionMedium: {12, 10, 12},
	CompressionHigh:   {10, 8, 10},
}

// Compress quantizes positions, normals and UVs to the bit depth of the
// given level. Positions and UVs are quantized within their own bounds,
// normals within [-1, 1]. CompressionOff is a no-op.
func (m *Mesh) Compress(level Compression) {
	bits, ok := compressionBits[level]
	if !ok {
		return
	}

	if len(m.Positions) > 0 {
		b := BoundsOf(m.Positions)
		for i, p := range m.Positions {
			m.Positions[i] = math.Vec3{
				X: quantize(p.X, b.Min.X, b.Max.X, bits[0]),
				Y: quantize(p.Y, b.Min.Y, b.Max.Y, bits[0]),
				Z: quantize(p.Z, b.Min.Z, b.Max.Z, bits[0]),
			}
		}
		m.RecalculateBounds()
	}

	for i, n := range m.Normals {
		m.Normals[i] = math.Vec3{
			X: quantize(n.X, -1, 1, bits[1]),
			Y: quantize(n.Y, -1, 1, bits[1]),
			Z: quantize(n.Z, -1, 1, bits[1]),
		}
	}

	if len(m.UVs) > 0 {
		lo, hi := m.UVs[0], m.UVs[0]
		for _, uv := range m.UVs[1:] {
			lo = math.Vec2{X: min(lo.X, uv.X), Y: min(lo.Y, uv.Y)}
			hi = math.Vec2{X: max(hi.X, uv.X), Y: max(hi.Y, uv.Y)}
		}
		for i, uv := range m.UVs {
			m.UVs[i] = math.Vec2{
				X: quantize(uv.X, lo.X, hi.X, bits[2]),
				Y: quantize(uv.Y, lo.Y, hi.Y, bits[2]),
			}
		}
	}
}

// quantize snaps x to one of 2^bits evenly spaced values in [lo, hi].
func quantize(x, lo, hi float32, bits int) float32 {
	span := float64(hi - lo)
	if span <= 0 {
		return x
	}
	steps := float64(uint64(1)<<bits - 1)
	k := gomath.Round((float64(x-lo) / span) * steps)
	k = gomath.Max(0, gomath.Min(steps, k))
	return float32(float64(lo) + k*span/steps)
}
