package geom

// SnapBrushVertices welds nearly coincident corners of different faces of
// one brush. Every vertex pair closer than dist moves to whichever of the two
// lies farther from the brush centroid, which closes cracks without
// shrinking the silhouette. Returns the number of vertices that moved.
func SnapBrushVertices(b *Brush, dist float32) int {
	if dist <= 0 || len(b.Faces) < 2 {
		return 0
	}

	origin := b.Centroid()
	limit := dist * dist
	moved := 0

	for i := range b.Faces {
		f1 := &b.Faces[i]
		for j := range b.Faces {
			if i == j {
				continue
			}
			f2 := &b.Faces[j]
			for a := range f1.Vertices {
				for c := range f2.Vertices {
					va, vc := f1.Vertices[a], f2.Vertices[c]
					if va == vc || va.DistanceSquared(vc) >= limit {
						continue
					}
					if va.DistanceSquared(origin) > vc.DistanceSquared(origin) {
						f2.Vertices[c] = va
					} else {
						f1.Vertices[a] = vc
					}
					moved++
				}
			}
		}
	}
	return moved
}
