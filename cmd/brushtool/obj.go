package main

import (
	"bufio"
	"fmt"
	"io"

	"github.com/Faultbox/brushmesh/pkg/mesh"
)

// writeOBJ writes meshes as Wavefront OBJ objects. Each mesh becomes one
// object whose material is named after it.
func writeOBJ(w io.Writer, meshes []*mesh.Mesh) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "# brushmesh")

	// OBJ indices are 1-based and global per attribute stream.
	vBase, tBase, nBase := 1, 1, 1
	for _, m := range meshes {
		if m.Empty() {
			continue
		}
		fmt.Fprintf(bw, "o %s\n", m.Name)
		fmt.Fprintf(bw, "usemtl %s\n", m.Name)
		for _, p := range m.Positions {
			fmt.Fprintf(bw, "v %g %g %g\n", p.X, p.Y, p.Z)
		}
		hasUV := len(m.UVs) == len(m.Positions)
		if hasUV {
			for _, uv := range m.UVs {
				fmt.Fprintf(bw, "vt %g %g\n", uv.X, uv.Y)
			}
		}
		hasNormals := len(m.Normals) == len(m.Positions)
		if hasNormals {
			for _, n := range m.Normals {
				fmt.Fprintf(bw, "vn %g %g %g\n", n.X, n.Y, n.Z)
			}
		}

		for t := 0; t+2 < len(m.Indices); t += 3 {
			bw.WriteString("f")
			for _, idx := range m.Indices[t : t+3] {
				v, vt, vn := int(idx)+vBase, int(idx)+tBase, int(idx)+nBase
				switch {
				case hasUV && hasNormals:
					fmt.Fprintf(bw, " %d/%d/%d", v, vt, vn)
				case hasUV:
					fmt.Fprintf(bw, " %d/%d", v, vt)
				case hasNormals:
					fmt.Fprintf(bw, " %d//%d", v, vn)
				default:
					fmt.Fprintf(bw, " %d", v)
				}
			}
			bw.WriteString("\n")
		}
		vBase += len(m.Positions)
		if hasUV {
			tBase += len(m.UVs)
		}
		if hasNormals {
			nBase += len(m.Normals)
		}
	}
	return bw.Flush()
}
