package geom

// FaceRef addresses one face of a brush group together with its stable id.
// ID is -1 for faces that were never indexed.
type FaceRef struct {
	ID    int
	Brush int
	Face  *Face
}

// Index assigns contiguous integer ids to every face of a set of brush
// groups, in encounter order. Ids stay valid for as long as the brush
// slices are not reallocated.
type Index struct {
	faces  []*Face
	groups [][]FaceRef
}

// NewIndex flattens the given brush groups into a face table.
func NewIndex(groups ...[]Brush) *Index {
	x := &Index{groups: make([][]FaceRef, len(groups))}
	for g, brushes := range groups {
		for b := range brushes {
			for f := range brushes[b].Faces {
				face := &brushes[b].Faces[f]
				x.groups[g] = append(x.groups[g], FaceRef{ID: len(x.faces), Brush: b, Face: face})
				x.faces = append(x.faces, face)
			}
		}
	}
	return x
}

// Len returns the number of indexed faces.
func (x *Index) Len() int {
	return len(x.faces)
}

// Faces returns the face table ordered by id.
func (x *Index) Faces() []*Face {
	return x.faces
}

// Face returns the face with the given id.
func (x *Index) Face(id int) *Face {
	return x.faces[id]
}

// Group returns the face references of one brush group.
func (x *Index) Group(g int) []FaceRef {
	if g < 0 || g >= len(x.groups) {
		return nil
	}
	return x.groups[g]
}

// Refs builds unindexed face references (ID -1) for brushes that take no
// part in culling.
func Refs(brushes []Brush) []FaceRef {
	var refs []FaceRef
	for b := range brushes {
		for f := range brushes[b].Faces {
			refs = append(refs, FaceRef{ID: -1, Brush: b, Face: &brushes[b].Faces[f]})
		}
	}
	return refs
}
