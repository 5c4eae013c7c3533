package kernel

import "fmt"

// Group is a contiguous range of Indices drawn with one material.
// MaterialIndex is -1 for faces that carry no material.
type Group struct {
	Start         int `json:"start"`
	Count         int `json:"count"`
	MaterialIndex int `json:"materialIndex"`
}

// Mesh is a triangle mesh suitable for rendering.
// All arrays are flat: vertices has 3 floats per vertex (x,y,z),
// normals has 3 floats per vertex, uvs 2, colors 3 (optional),
// indices has 3 uint32s per triangle.
type Mesh struct {
	Vertices []float32 `json:"vertices"`         // [x0,y0,z0, x1,y1,z1, ...]
	Normals  []float32 `json:"normals"`          // [nx0,ny0,nz0, ...]
	UVs      []float32 `json:"uvs,omitempty"`    // [u0,v0, ...]
	Colors   []float32 `json:"colors,omitempty"` // [r0,g0,b0, ...]
	Indices  []uint32  `json:"indices"`          // [i0,i1,i2, ...] triangles
	Groups   []Group   `json:"groups,omitempty"` // material ranges over Indices
	PartName string    `json:"partName"`         // which script part this came from
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

// Validate checks that the attribute arrays agree in length and that every
// index and group is in range.
func (m *Mesh) Validate() error {
	if len(m.Vertices)%3 != 0 {
		return fmt.Errorf("mesh: %d vertex floats is not a multiple of 3", len(m.Vertices))
	}
	n := m.VertexCount()
	if len(m.Normals) != len(m.Vertices) {
		return fmt.Errorf("mesh: %d normal floats for %d vertices", len(m.Normals), n)
	}
	if m.UVs != nil && len(m.UVs) != n*2 {
		return fmt.Errorf("mesh: %d uv floats for %d vertices", len(m.UVs), n)
	}
	if m.Colors != nil && len(m.Colors) != n*3 {
		return fmt.Errorf("mesh: %d color floats for %d vertices", len(m.Colors), n)
	}
	if len(m.Indices)%3 != 0 {
		return fmt.Errorf("mesh: %d indices is not a whole number of triangles", len(m.Indices))
	}
	for i, idx := range m.Indices {
		if int(idx) >= n {
			return fmt.Errorf("mesh: index %d at %d out of range (%d vertices)", idx, i, n)
		}
	}
	for i, g := range m.Groups {
		if g.Start < 0 || g.Count < 0 || g.Start+g.Count > len(m.Indices) {
			return fmt.Errorf("mesh: group %d [%d,+%d) outside %d indices", i, g.Start, g.Count, len(m.Indices))
		}
	}
	return nil
}
