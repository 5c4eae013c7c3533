package main

import (
	"bufio"
	"fmt"
	"io"
)

// writeOBJ writes meshes as a Wavefront OBJ file. Each part becomes an
// object and each material group a usemtl section. OBJ indices are global
// and 1-based.
func writeOBJ(w io.Writer, meshes []MeshData) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "# csg")

	base := 1
	for _, m := range meshes {
		fmt.Fprintf(bw, "o %s\n", m.PartName)
		for i := 0; i+2 < len(m.Vertices); i += 3 {
			fmt.Fprintf(bw, "v %g %g %g\n", m.Vertices[i], m.Vertices[i+1], m.Vertices[i+2])
		}
		for i := 0; i+2 < len(m.Normals); i += 3 {
			fmt.Fprintf(bw, "vn %g %g %g\n", m.Normals[i], m.Normals[i+1], m.Normals[i+2])
		}

		if len(m.Groups) == 0 {
			writeFaces(bw, m.Indices, base)
		}
		for _, g := range m.Groups {
			if g.MaterialIndex >= 0 {
				fmt.Fprintf(bw, "usemtl material_%d\n", g.MaterialIndex)
			} else {
				fmt.Fprintln(bw, "usemtl default")
			}
			writeFaces(bw, m.Indices[g.Start:g.Start+g.Count], base)
		}
		base += len(m.Vertices) / 3
	}
	return bw.Flush()
}

func writeFaces(w io.Writer, indices []uint32, base int) {
	for i := 0; i+2 < len(indices); i += 3 {
		a, b, c := int(indices[i])+base, int(indices[i+1])+base, int(indices[i+2])+base
		fmt.Fprintf(w, "f %d//%d %d//%d %d//%d\n", a, a, b, b, c, c)
	}
}
