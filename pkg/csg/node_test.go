package csg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unitCube() *CSG {
	return Cube(V(0, 0, 0), V(0.5, 0.5, 0.5), 0)
}

func TestEmptyNodeClipsNothing(t *testing.T) {
	n := NewNode(nil)
	assert.Nil(t, n.Plane())

	in := []*Polygon{tri(V(0, 0, 0), V(1, 0, 0), V(0, 1, 0), 0)}
	out := n.ClipPolygons(in)
	assert.Equal(t, in, out)
	assert.Empty(t, n.AllPolygons())

	n.Invert()
	assert.Nil(t, n.Plane())
}

func TestNodeBuildKeepsAllPolygons(t *testing.T) {
	cube := unitCube()
	n := NewNode(cube.Clone().polygons)
	require.NotNil(t, n.Plane())
	all := n.AllPolygons()
	assert.Len(t, all, cube.PolygonCount())
	assert.InDelta(t, cube.Area(), FromPolygons(all).Area(), 1e-12)
}

func TestNodeClipPolygons(t *testing.T) {
	n := NewNode(unitCube().Clone().polygons)

	inside := tri(V(-0.1, -0.1, 0), V(0.1, -0.1, 0), V(0, 0.1, 0), 1)
	outside := tri(V(2, 2, 2), V(3, 2, 2), V(2, 3, 2), 2)
	// Half of this triangle pokes out through the +X face.
	crossing := tri(V(0, -0.2, 0), V(1, -0.2, 0), V(0, 0.2, 0), 3)

	out := n.ClipPolygons([]*Polygon{inside, outside, crossing})
	tags := map[Shared]float64{}
	for _, p := range out {
		tags[p.Shared] += p.Area()
	}
	assert.NotContains(t, tags, Shared(1))
	assert.InDelta(t, outside.Area(), tags[2], 1e-12)
	assert.InDelta(t, crossing.Area()/4, tags[3], 1e-12)
}

func TestNodeInvertTwiceRestoresTree(t *testing.T) {
	n := NewNode(unitCube().Clone().polygons)
	before := FromPolygons(n.Clone().AllPolygons())

	n.Invert()
	inverted := FromPolygons(n.AllPolygons())
	assert.InDelta(t, -before.Volume(), inverted.Volume(), 1e-12)

	n.Invert()
	after := FromPolygons(n.AllPolygons())
	assert.Equal(t, ToGeometry(before, identity), ToGeometry(after, identity))
}

func TestNodeCloneIsIndependent(t *testing.T) {
	n := NewNode(unitCube().Clone().polygons)
	c := n.Clone()
	c.Invert()
	assert.InDelta(t, 1.0, FromPolygons(n.AllPolygons()).Volume(), 1e-12)
	assert.InDelta(t, -1.0, FromPolygons(c.AllPolygons()).Volume(), 1e-12)
}

func TestNodeDeepTreeDoesNotRecurse(t *testing.T) {
	// Stacked parallel triangles produce a chain as deep as the input.
	const layers = 3000
	polys := make([]*Polygon, 0, layers)
	for i := 0; i < layers; i++ {
		z := float64(i)
		polys = append(polys, tri(V(0, 0, z), V(1, 0, z), V(0, 1, z), Shared(i)))
	}
	n := NewNode(polys)
	assert.Equal(t, layers, n.Depth())
	assert.Len(t, n.AllPolygons(), layers)

	probe := []*Polygon{tri(V(0, 0, -1), V(0, 0, layers+1), V(0.1, 0.1, 0.5), -1)}
	n.ClipTo(NewNode(probe))
	n.Invert()
	assert.Len(t, n.AllPolygons(), layers)
}
