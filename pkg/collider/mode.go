package collider

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidColliderMode is returned when a collider mode name is unknown.
var ErrInvalidColliderMode = errors.New("invalid collider mode")

// Mode selects which collider shapes are generated.
type Mode int

const (
	// BoxAndConvex uses a box where every face is axis aligned, a convex
	// hull otherwise.
	BoxAndConvex Mode = iota
	// BoxOnly always uses the bounding box.
	BoxOnly
	// ConvexOnly always uses a convex hull per brush.
	ConvexOnly
	// MergeAllConcave merges every solid brush into one concave mesh.
	MergeAllConcave
)

var modeNames = [...]string{
	BoxAndConvex:    "box_and_convex",
	BoxOnly:         "box_only",
	ConvexOnly:      "convex_only",
	MergeAllConcave: "merge_all_concave",
}

func (m Mode) String() string {
	if m >= 0 && int(m) < len(modeNames) {
		return modeNames[m]
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode converts a config name to a Mode. Matching ignores case and
// accepts '-' in place of '_'.
func ParseMode(s string) (Mode, error) {
	name := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	for m, n := range modeNames {
		if n == name {
			return Mode(m), nil
		}
	}
	return BoxAndConvex, fmt.Errorf("%w: %q", ErrInvalidColliderMode, s)
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// AllowsBox reports whether the mode may produce box colliders.
func (m Mode) AllowsBox() bool {
	return m == BoxOnly || m == BoxAndConvex
}

// Merges reports whether brushes are collapsed into one collider. Triggers
// and forced-convex groups never merge.
func (m Mode) Merges(isTrigger, forceConvex bool) bool {
	return m == MergeAllConcave && !isTrigger && !forceConvex
}
