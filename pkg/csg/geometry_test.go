package csg

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func geometryArea(g *Geometry) float64 {
	var sum float64
	if g.Indices == nil {
		for k := 0; k+2 < g.VertexCount(); k += 3 {
			a := vectorAt(g.Positions, k*3)
			b := vectorAt(g.Positions, (k+1)*3)
			c := vectorAt(g.Positions, (k+2)*3)
			sum += b.Minus(a).Cross(c.Minus(a)).Length() / 2
		}
		return sum
	}
	for k := 0; k+2 < len(g.Indices); k += 3 {
		sum += triangleArea(g, k)
	}
	return sum
}

func materialSet(g *Geometry) []int {
	var out []int
	for _, gr := range g.Groups {
		out = append(out, gr.MaterialIndex)
	}
	return out
}

func TestGeometryRoundTrip(t *testing.T) {
	for name, g := range map[string]*Geometry{
		"box":      BoxGeometry(V(1, 2, 3), V(0.5, 1, 2)),
		"sphere":   SphereGeometry(V(0, 0, 0), 2, 12, 6),
		"cylinder": CylinderGeometry(V(0, 0, 0), V(1, 1, 0), 0.5, 10),
	} {
		t.Run(name, func(t *testing.T) {
			c, err := FromGeometry(g, NoShared)
			require.NoError(t, err)
			out := ToGeometry(c, identity)
			require.NoError(t, out.Validate())

			assert.InDelta(t, geometryArea(g), geometryArea(out), tol)
			assert.Equal(t, materialSet(g), materialSet(out))
			assertBox(t, g.Bounds, out.Bounds)
		})
	}
}

func TestFromGeometryGroupsAndOverride(t *testing.T) {
	g := BoxGeometry(V(0, 0, 0), V(1, 1, 1))

	c, err := FromGeometry(g, NoShared)
	require.NoError(t, err)
	assert.Equal(t, []Shared{0, 1, 2, 3, 4, 5}, c.Tags())

	c, err = FromGeometry(g, 7)
	require.NoError(t, err)
	assert.Equal(t, []Shared{7}, c.Tags())

	// Triangles outside every group stay untagged.
	g.Groups = g.Groups[:2]
	c, err = FromGeometry(g, NoShared)
	require.NoError(t, err)
	assert.Equal(t, []Shared{0, 1, NoShared}, c.Tags())

	out := ToGeometry(c, identity)
	require.Len(t, out.Groups, 3)
	assert.Equal(t, -1, out.Groups[2].MaterialIndex, "untagged group is emitted last")
	assert.Equal(t, 24, out.Groups[2].Count)
	assert.Equal(t, len(out.Indices), out.Groups[2].Start+out.Groups[2].Count)
}

func TestToGeometryGroupOrder(t *testing.T) {
	polys := []*Polygon{
		tri(V(0, 0, 0), V(1, 0, 0), V(0, 1, 0), 5),
		tri(V(0, 0, 1), V(1, 0, 1), V(0, 1, 1), NoShared),
		tri(V(0, 0, 2), V(1, 0, 2), V(0, 1, 2), 2),
		tri(V(0, 0, 3), V(1, 0, 3), V(0, 1, 3), 5),
	}
	g := ToGeometry(FromPolygons(polys), identity)
	assert.Equal(t, []Group{
		{Start: 0, Count: 3, MaterialIndex: 2},
		{Start: 3, Count: 6, MaterialIndex: 5},
		{Start: 9, Count: 3, MaterialIndex: -1},
	}, g.Groups)
	assert.Equal(t, 12, g.VertexCount())
	assert.Nil(t, g.Colors)
}

func TestToGeometryFanTriangulates(t *testing.T) {
	quad := NewPolygon([]Vertex{
		{Pos: V(0, 0, 0), Normal: V(0, 0, 1)},
		{Pos: V(1, 0, 0), Normal: V(0, 0, 1)},
		{Pos: V(1, 1, 0), Normal: V(0, 0, 1)},
		{Pos: V(0, 1, 0), Normal: V(0, 0, 1)},
	}, 0)
	g := ToGeometry(FromPolygons([]*Polygon{quad}), identity)
	assert.Equal(t, []uint32{0, 1, 2, 0, 2, 3}, g.Indices)
	assert.Equal(t, 4, g.VertexCount())
	assert.InDelta(t, 1.0, geometryArea(g), 1e-12)
}

func TestToGeometryAppliesInverse(t *testing.T) {
	c := Cube(V(10, 0, 0), V(0.5, 0.5, 0.5), 0)
	g := ToGeometry(c, mgl64.Translate3D(-10, 0, 0))
	assertBox(t, Box{V(-0.5, -0.5, -0.5), V(0.5, 0.5, 0.5)}, g.Bounds)
}

func TestNonIndexedGeometryWithColors(t *testing.T) {
	g := &Geometry{
		Positions: []float64{0, 0, 0, 1, 0, 0, 0, 1, 0, 0, 0, 1, 1, 0, 1, 0, 1, 1},
		Normals:   []float64{0, 0, 1, 0, 0, 1, 0, 0, 1, 0, 0, 1, 0, 0, 1, 0, 0, 1},
		Colors:    []float64{1, 0, 0, 1, 0, 0, 1, 0, 0, 0, 1, 0, 0, 1, 0, 0, 1, 0},
	}
	c, err := FromGeometry(g, NoShared)
	require.NoError(t, err)
	assert.Equal(t, 2, c.PolygonCount())
	assert.Equal(t, []Shared{NoShared}, c.Tags())

	out := ToGeometry(c, identity)
	require.Len(t, out.Colors, 18)
	assert.Equal(t, []float64{1, 0, 0}, out.Colors[:3])
	assert.Equal(t, []float64{0, 1, 0}, out.Colors[15:])
}

func TestDegenerateTrianglesAreDropped(t *testing.T) {
	g := BoxGeometry(V(0, 0, 0), V(1, 1, 1))
	nv := uint32(g.VertexCount())
	// A zero-area triangle and a collinear one.
	g.Positions = append(g.Positions, 0, 0, 0, 1, 1, 1, 2, 2, 2)
	g.Normals = append(g.Normals, 0, 0, 1, 0, 0, 1, 0, 0, 1)
	g.UVs = append(g.UVs, 0, 0, 0, 0, 0, 0)
	g.Indices = append(g.Indices, 0, 0, 0, nv, nv+1, nv+2)

	var c *CSG
	var err error
	require.NotPanics(t, func() { c, err = FromGeometry(g, NoShared) })
	require.NoError(t, err)
	assert.Equal(t, 12, c.PolygonCount())
	assert.InDelta(t, 8.0, c.Volume(), tol)
}

func TestGeometryValidate(t *testing.T) {
	valid := func() *Geometry { return BoxGeometry(V(0, 0, 0), V(1, 1, 1)) }
	tests := []struct {
		name   string
		mutate func(g *Geometry)
	}{
		{"ragged positions", func(g *Geometry) { g.Positions = g.Positions[:len(g.Positions)-1] }},
		{"missing normals", func(g *Geometry) { g.Normals = nil }},
		{"short uvs", func(g *Geometry) { g.UVs = g.UVs[:2] }},
		{"short colors", func(g *Geometry) { g.Colors = []float64{1, 1, 1} }},
		{"index out of range", func(g *Geometry) { g.Indices[4] = 1000 }},
		{"partial triangle", func(g *Geometry) { g.Indices = g.Indices[:len(g.Indices)-1] }},
		{"group past end", func(g *Geometry) { g.Groups[5].Count = 100 }},
		{"negative group", func(g *Geometry) { g.Groups[0].Start = -3 }},
	}
	require.NoError(t, valid().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := valid()
			tt.mutate(g)
			assert.ErrorIs(t, g.Validate(), ErrInvalidGeometry)
			_, err := FromGeometry(g, NoShared)
			assert.ErrorIs(t, err, ErrInvalidGeometry)
		})
	}
}

func TestApplyMatrixMirrorReversesWinding(t *testing.T) {
	g := BoxGeometry(V(0, 0, 0), V(1, 1, 1))
	m := g.ApplyMatrix(mgl64.Scale3D(1, 1, -1))
	c, err := FromGeometry(m, NoShared)
	require.NoError(t, err)
	assert.InDelta(t, 8.0, c.Volume(), tol)
	assert.Equal(t, BoxGeometry(V(0, 0, 0), V(1, 1, 1)), g, "ApplyMatrix must not modify the receiver")
}
