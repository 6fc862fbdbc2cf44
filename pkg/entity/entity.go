// Package entity models the placed objects of a map: each entity owns a set
// of brushes that is converted as one unit.
package entity

import (
	"github.com/Faultbox/brushmesh/pkg/geom"
	"github.com/Faultbox/brushmesh/pkg/math"
)

// Entity is one brush group with its class and key/value properties.
type Entity struct {
	ClassName  string
	Origin     math.Vec3 // Map units; scaled with the geometry
	Properties map[string]string
	Brushes    []geom.Brush
}

// Kind is how an entity's brushes take part in the conversion.
type Kind int

const (
	// Solid brushes render, occlude and collide.
	Solid Kind = iota
	// Trigger brushes get convex trigger colliders only.
	Trigger
	// Nonsolid brushes render but neither occlude nor collide.
	Nonsolid
)

func (k Kind) String() string {
	switch k {
	case Trigger:
		return "trigger"
	case Nonsolid:
		return "nonsolid"
	default:
		return "solid"
	}
}

// FaceCount returns the number of faces across all brushes.
func (e *Entity) FaceCount() int {
	n := 0
	for i := range e.Brushes {
		n += len(e.Brushes[i].Faces)
	}
	return n
}

// Classifier assigns a Kind to entities by class name.
type Classifier struct {
	Triggers  Patterns
	Nonsolids Patterns
}

// Classify returns the kind of e. Trigger patterns win over nonsolid ones.
func (c Classifier) Classify(e *Entity) Kind {
	switch {
	case c.Triggers.Match(e.ClassName):
		return Trigger
	case c.Nonsolids.Match(e.ClassName):
		return Nonsolid
	default:
		return Solid
	}
}
