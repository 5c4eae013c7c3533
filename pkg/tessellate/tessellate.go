// Package tessellate turns an evaluated scene into triangle meshes using a
// geometry kernel. One mesh is produced per part.
package tessellate

import (
	"fmt"
	"math"

	"github.com/chazu/csg/pkg/engine"
	"github.com/chazu/csg/pkg/kernel"
)

// Tessellate produces one mesh per scene part, in part order, with
// PartName set. Parts whose solid is empty yield an empty mesh so that
// callers can report them. The scene is not modified.
func Tessellate(s *engine.Scene, k kernel.Kernel) ([]*kernel.Mesh, error) {
	if s == nil {
		return nil, nil
	}

	meshes := make([]*kernel.Mesh, 0, len(s.Parts))
	for _, p := range s.Parts {
		mesh, err := k.ToMesh(p.Solid)
		if err != nil {
			return nil, fmt.Errorf("tessellate: ToMesh failed for part %q: %w", p.Name, err)
		}
		mesh.PartName = p.Name
		meshes = append(meshes, mesh)
	}
	return meshes, nil
}

// Bounds returns the axis-aligned box enclosing every vertex of meshes.
// ok is false when there are no vertices.
func Bounds(meshes []*kernel.Mesh) (min, max [3]float64, ok bool) {
	for i := 0; i < 3; i++ {
		min[i] = math.Inf(1)
		max[i] = math.Inf(-1)
	}
	for _, m := range meshes {
		for i := 0; i+2 < len(m.Vertices); i += 3 {
			ok = true
			for j := 0; j < 3; j++ {
				v := float64(m.Vertices[i+j])
				min[j] = math.Min(min[j], v)
				max[j] = math.Max(max[j], v)
			}
		}
	}
	if !ok {
		return [3]float64{}, [3]float64{}, false
	}
	return min, max, true
}
