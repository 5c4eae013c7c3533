package tessellate_test

import (
	"testing"

	"github.com/chazu/csg/pkg/engine"
	"github.com/chazu/csg/pkg/kernel"
	"github.com/chazu/csg/pkg/kernel/bsp"
	"github.com/chazu/csg/pkg/tessellate"
)

// newKernel returns a fresh bsp kernel for testing.
func newKernel() kernel.Kernel {
	return bsp.New(bsp.WithCylinderSlices(12))
}

func TestSingleBox(t *testing.T) {
	k := newKernel()
	scene := &engine.Scene{Parts: []engine.Part{{Name: "shelf", Solid: k.Box(600, 300, 18)}}}

	meshes, err := tessellate.Tessellate(scene, k)
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	if len(meshes) != 1 {
		t.Fatalf("expected 1 mesh, got %d", len(meshes))
	}

	m := meshes[0]
	if m.IsEmpty() {
		t.Fatal("mesh should not be empty")
	}
	if m.PartName != "shelf" {
		t.Errorf("expected PartName %q, got %q", "shelf", m.PartName)
	}
	if m.TriangleCount() != 12 {
		t.Errorf("expected 12 triangles, got %d", m.TriangleCount())
	}
}

func TestPartOrderAndBounds(t *testing.T) {
	k := newKernel()
	scene := &engine.Scene{Parts: []engine.Part{
		{Name: "a", Solid: k.Box(1, 1, 1)},
		{Name: "b", Solid: k.Translate(k.Cylinder(2, 0.5, 0), 5, 0, 0)},
	}}

	meshes, err := tessellate.Tessellate(scene, k)
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	if len(meshes) != 2 || meshes[0].PartName != "a" || meshes[1].PartName != "b" {
		t.Fatalf("unexpected meshes: %d", len(meshes))
	}

	min, max, ok := tessellate.Bounds(meshes)
	if !ok {
		t.Fatal("expected bounds")
	}
	if abs(min[0]) > 1e-5 || abs(max[0]-5.5) > 1e-5 {
		t.Errorf("x extent = %f..%f, want 0..5.5", min[0], max[0])
	}
	if abs(min[2]+1) > 1e-5 || abs(max[2]-1) > 1e-5 {
		t.Errorf("z extent = %f..%f, want -1..1", min[2], max[2])
	}
}

func TestEmptyPart(t *testing.T) {
	k := newKernel()
	hollow := k.Intersection(k.Box(1, 1, 1), k.Translate(k.Box(1, 1, 1), 3, 0, 0))
	scene := &engine.Scene{Parts: []engine.Part{{Name: "nothing", Solid: hollow}}}

	meshes, err := tessellate.Tessellate(scene, k)
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	if len(meshes) != 1 || !meshes[0].IsEmpty() || meshes[0].PartName != "nothing" {
		t.Fatalf("expected one empty named mesh, got %+v", meshes)
	}
	if _, _, ok := tessellate.Bounds(meshes); ok {
		t.Error("bounds of empty meshes should not be ok")
	}
}

func TestNilScene(t *testing.T) {
	meshes, err := tessellate.Tessellate(nil, newKernel())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(meshes) != 0 {
		t.Errorf("expected no meshes, got %d", len(meshes))
	}
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
