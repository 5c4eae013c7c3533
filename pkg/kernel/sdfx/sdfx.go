// Package sdfx builds smooth shapes with the github.com/deadsy/sdfx SDF
// library and tessellates them into kernel meshes. The meshes can then be
// imported into a polygon kernel and combined with exact booleans.
package sdfx

import (
	"fmt"
	"math"

	"github.com/chazu/csg/pkg/kernel"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// DefaultCells controls marching cubes resolution along the longest axis.
const DefaultCells = 64

// Tessellate converts an SDF to a triangle mesh using marching cubes.
// Each triangle gets its own three vertices carrying the face normal.
// A non-positive cells value selects DefaultCells.
func Tessellate(s sdf.SDF3, cells int) *kernel.Mesh {
	if cells <= 0 {
		cells = DefaultCells
	}
	renderer := render.NewMarchingCubesUniform(cells)
	triangles := render.ToTriangles(s, renderer)

	numVerts := len(triangles) * 3
	vertices := make([]float32, 0, numVerts*3)
	normals := make([]float32, 0, numVerts*3)
	indices := make([]uint32, 0, numVerts)

	for _, tri := range triangles {
		n := tri.Normal()
		if math.IsNaN(n.X) || math.IsNaN(n.Y) || math.IsNaN(n.Z) {
			continue
		}
		nx, ny, nz := float32(n.X), float32(n.Y), float32(n.Z)
		for j := 0; j < 3; j++ {
			v := tri[j]
			indices = append(indices, uint32(len(vertices)/3))
			vertices = append(vertices, float32(v.X), float32(v.Y), float32(v.Z))
			normals = append(normals, nx, ny, nz)
		}
	}

	return &kernel.Mesh{
		Vertices: vertices,
		Normals:  normals,
		Indices:  indices,
	}
}

// RoundedBox tessellates a box with rounded edges. Like kernel boxes, the
// result has its minimum corner at the origin.
func RoundedBox(x, y, z, round float64, cells int) (*kernel.Mesh, error) {
	s, err := sdf.Box3D(v3.Vec{X: x, Y: y, Z: z}, round)
	if err != nil {
		return nil, fmt.Errorf("sdfx: rounded box: %w", err)
	}
	s = sdf.Transform3D(s, sdf.Translate3d(v3.Vec{X: x / 2, Y: y / 2, Z: z / 2}))
	return Tessellate(s, cells), nil
}

// Capsule tessellates a cylinder with hemispherical ends, centred at the
// origin along the Z axis. The height includes both caps.
func Capsule(height, radius float64, cells int) (*kernel.Mesh, error) {
	if height < 2*radius {
		return nil, fmt.Errorf("sdfx: capsule height %g is less than its diameter %g", height, 2*radius)
	}
	s, err := sdf.Cylinder3D(height, radius, radius)
	if err != nil {
		return nil, fmt.Errorf("sdfx: capsule: %w", err)
	}
	return Tessellate(s, cells), nil
}
