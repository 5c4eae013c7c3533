package bsp

import (
	"math"
	"testing"

	"github.com/chazu/csg/pkg/kernel"
	"github.com/chazu/csg/pkg/kernel/sdfx"
)

const eps = 1e-6

func volume(s kernel.Solid) float64 {
	return Unwrap(s).Volume()
}

func checkBounds(t *testing.T, s kernel.Solid, wantMin, wantMax [3]float64) {
	t.Helper()
	min, max := s.BoundingBox()
	for i := 0; i < 3; i++ {
		if math.Abs(min[i]-wantMin[i]) > eps || math.Abs(max[i]-wantMax[i]) > eps {
			t.Fatalf("bounds = %v..%v, want %v..%v", min, max, wantMin, wantMax)
		}
	}
}

func TestBox(t *testing.T) {
	k := New()
	box := k.Box(100, 50, 25)
	checkBounds(t, box, [3]float64{0, 0, 0}, [3]float64{100, 50, 25})
	if v := volume(box); math.Abs(v-125000) > 1e-3 {
		t.Fatalf("volume = %f, want 125000", v)
	}

	mesh, err := k.ToMesh(box)
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	if got := mesh.TriangleCount(); got != 12 {
		t.Fatalf("triangle count = %d, want 12", got)
	}
	if len(mesh.Vertices) != len(mesh.Normals) {
		t.Fatalf("vertices length %d != normals length %d", len(mesh.Vertices), len(mesh.Normals))
	}
}

func TestCylinderDefaults(t *testing.T) {
	k := New(WithCylinderSlices(8))
	cyl := k.Cylinder(10, 2, 0)
	checkBounds(t, cyl, [3]float64{-2, -2, -5}, [3]float64{2, 2, 5})

	mesh, err := k.ToMesh(cyl)
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	// 8 side quads plus two 8-triangle caps.
	if got := mesh.TriangleCount(); got != 32 {
		t.Fatalf("triangle count = %d, want 32", got)
	}
}

func TestSphereDetail(t *testing.T) {
	coarse := New(WithSphereDetail(8, 4)).Sphere(1)
	fine := New(WithSphereDetail(32, 16)).Sphere(1)
	want := 4.0 / 3.0 * math.Pi
	if math.Abs(volume(fine)-want) >= math.Abs(volume(coarse)-want) {
		t.Fatalf("finer sphere is not closer to %f: coarse %f, fine %f", want, volume(coarse), volume(fine))
	}
}

func TestBooleans(t *testing.T) {
	k := New()
	a := k.Box(1, 1, 1)
	b := k.Translate(k.Box(1, 1, 1), 0.5, 0, 0)

	tests := []struct {
		name    string
		solid   kernel.Solid
		volume  float64
		wantMin [3]float64
		wantMax [3]float64
	}{
		{"union", k.Union(a, b), 1.5, [3]float64{0, 0, 0}, [3]float64{1.5, 1, 1}},
		{"difference", k.Difference(a, b), 0.5, [3]float64{0, 0, 0}, [3]float64{0.5, 1, 1}},
		{"intersection", k.Intersection(a, b), 0.5, [3]float64{0.5, 0, 0}, [3]float64{1, 1, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if v := volume(tt.solid); math.Abs(v-tt.volume) > eps {
				t.Fatalf("volume = %f, want %f", v, tt.volume)
			}
			checkBounds(t, tt.solid, tt.wantMin, tt.wantMax)
		})
	}
}

func TestDisjointIntersectionIsEmpty(t *testing.T) {
	k := New()
	a := k.Box(1, 1, 1)
	b := k.Translate(k.Box(1, 1, 1), 5, 0, 0)
	mesh, err := k.ToMesh(k.Intersection(a, b))
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	if !mesh.IsEmpty() {
		t.Fatalf("expected empty mesh, got %d triangles", mesh.TriangleCount())
	}
	min, max := k.Intersection(a, b).BoundingBox()
	if min != ([3]float64{}) || max != ([3]float64{}) {
		t.Fatalf("empty solid bounds = %v..%v, want zero", min, max)
	}
}

func TestRotateAndScale(t *testing.T) {
	k := New()
	box := k.Box(2, 1, 1)

	r := k.Rotate(box, 0, 0, 90)
	checkBounds(t, r, [3]float64{-1, 0, 0}, [3]float64{0, 2, 1})

	s := k.Scale(box, 2, 3, 4)
	if v := volume(s); math.Abs(v-48) > eps {
		t.Fatalf("scaled volume = %f, want 48", v)
	}

	m := k.Scale(box, -1, 1, 1)
	checkBounds(t, m, [3]float64{-2, 0, 0}, [3]float64{0, 1, 1})
	if v := volume(m); math.Abs(v-2) > eps {
		t.Fatalf("mirrored volume = %f, want 2 (inside out?)", v)
	}
}

func TestMaterialGroups(t *testing.T) {
	k := New()
	a := k.Material(k.Box(1, 1, 1), 2)
	b := k.Material(k.Translate(k.Box(1, 1, 1), 0.5, 0.5, 0.5), 0)
	mesh, err := k.ToMesh(k.Union(a, b))
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	if len(mesh.Groups) != 2 {
		t.Fatalf("groups = %+v, want 2", mesh.Groups)
	}
	if mesh.Groups[0].MaterialIndex != 0 || mesh.Groups[1].MaterialIndex != 2 {
		t.Fatalf("group materials = %d, %d; want 0, 2", mesh.Groups[0].MaterialIndex, mesh.Groups[1].MaterialIndex)
	}
	if mesh.Groups[1].Start != mesh.Groups[0].Count {
		t.Fatalf("groups are not contiguous: %+v", mesh.Groups)
	}
	if end := mesh.Groups[1].Start + mesh.Groups[1].Count; end != len(mesh.Indices) {
		t.Fatalf("groups cover %d of %d indices", end, len(mesh.Indices))
	}
}

func TestImportRoundTrip(t *testing.T) {
	k := New()
	orig := k.Material(k.Difference(k.Box(2, 2, 2), k.Translate(k.Box(1, 1, 1), 1, 1, 1)), 3)
	mesh, err := k.ToMesh(orig)
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}

	imported, err := k.Import(mesh)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if v := volume(imported); math.Abs(v-7) > 1e-4 {
		t.Fatalf("imported volume = %f, want 7", v)
	}
	tags := Unwrap(imported).Tags()
	if len(tags) != 1 || tags[0] != 3 {
		t.Fatalf("imported tags = %v, want [3]", tags)
	}
}

func TestImportWithoutGroups(t *testing.T) {
	k := New()
	mesh, err := k.ToMesh(k.Box(1, 1, 1))
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	mesh.Groups = nil

	s, err := k.Import(mesh)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	tags := Unwrap(s).Tags()
	if len(tags) != 1 || tags[0] != 0 {
		t.Fatalf("tags = %v, want [0]", tags)
	}
}

func TestImportInvalid(t *testing.T) {
	k := New()
	bad := &kernel.Mesh{
		Vertices: []float32{0, 0, 0, 1, 0, 0, 0, 1, 0},
		Normals:  []float32{0, 0, 1, 0, 0, 1, 0, 0, 1},
		Indices:  []uint32{0, 1, 7},
	}
	if _, err := k.Import(bad); err == nil {
		t.Fatal("expected error for out-of-range index")
	}
}

func TestImportTessellatedCapsule(t *testing.T) {
	k := New()
	mesh, err := sdfx.Capsule(4, 0.5, 16)
	if err != nil {
		t.Fatalf("Capsule failed: %v", err)
	}
	capsule, err := k.Import(mesh)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}

	block := k.Translate(k.Box(2, 2, 2), -1, -1, -1)
	cut := k.Difference(block, capsule)
	if v := volume(cut); v >= 8 || v <= 6 {
		t.Fatalf("volume after drilling = %f, want between 6 and 8", v)
	}
	checkBounds(t, cut, [3]float64{-1, -1, -1}, [3]float64{1, 1, 1})
}
