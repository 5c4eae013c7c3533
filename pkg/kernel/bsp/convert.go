package bsp

import (
	"github.com/chazu/csg/pkg/csg"
	"github.com/chazu/csg/pkg/kernel"
)

// fromGeometry narrows a csg geometry to the float32 render mesh.
func fromGeometry(g *csg.Geometry) *kernel.Mesh {
	m := &kernel.Mesh{
		Vertices: narrow(g.Positions),
		Normals:  narrow(g.Normals),
		UVs:      narrow(g.UVs),
		Colors:   narrow(g.Colors),
		Indices:  g.Indices,
	}
	for _, gr := range g.Groups {
		m.Groups = append(m.Groups, kernel.Group{Start: gr.Start, Count: gr.Count, MaterialIndex: gr.MaterialIndex})
	}
	return m
}

// toGeometry widens a render mesh for import. A mesh without groups has
// every face in material 0.
func toGeometry(m *kernel.Mesh) *csg.Geometry {
	g := &csg.Geometry{
		Positions: widen(m.Vertices),
		Normals:   widen(m.Normals),
		UVs:       widen(m.UVs),
		Colors:    widen(m.Colors),
		Indices:   m.Indices,
	}
	for _, gr := range m.Groups {
		g.Groups = append(g.Groups, csg.Group{Start: gr.Start, Count: gr.Count, MaterialIndex: gr.MaterialIndex})
	}
	if len(g.Groups) == 0 {
		g.Groups = []csg.Group{{Start: 0, Count: g.TriangleCount() * 3, MaterialIndex: 0}}
	}
	return g
}

func narrow(a []float64) []float32 {
	if a == nil {
		return nil
	}
	out := make([]float32, len(a))
	for i, v := range a {
		out[i] = float32(v)
	}
	return out
}

func widen(a []float32) []float64 {
	if a == nil {
		return nil
	}
	out := make([]float64, len(a))
	for i, v := range a {
		out[i] = float64(v)
	}
	return out
}
