// Package bsp implements the kernel.Kernel interface with the BSP tree
// boolean engine in github.com/chazu/csg/pkg/csg.
//
// Unlike sampled backends, results are exact polygon meshes: faces keep
// their material index through any sequence of booleans, and ToMesh
// returns one mesh group per material.
package bsp

import (
	"fmt"

	"github.com/chazu/csg/pkg/csg"
	"github.com/chazu/csg/pkg/kernel"
	"github.com/go-gl/mathgl/mgl64"
)

// Compile-time interface checks.
var _ kernel.Kernel = (*BSPKernel)(nil)
var _ kernel.Solid = (*bspSolid)(nil)

// Default tessellation of curved primitives.
const (
	DefaultSphereSlices   = 24
	DefaultSphereStacks   = 12
	DefaultCylinderSlices = 32
)

// bspSolid wraps a *csg.CSG to implement kernel.Solid.
type bspSolid struct {
	c *csg.CSG
}

// BoundingBox returns the axis-aligned bounding box. An empty solid
// reports a zero box.
func (s *bspSolid) BoundingBox() (min, max [3]float64) {
	b := s.c.Bounds()
	if b.IsEmpty() {
		return min, max
	}
	min = [3]float64{b.Min.X, b.Min.Y, b.Min.Z}
	max = [3]float64{b.Max.X, b.Max.Y, b.Max.Z}
	return min, max
}

// Option configures a BSPKernel.
type Option func(*BSPKernel)

// WithSphereDetail sets the number of slices around and stacks between the
// poles used for spheres.
func WithSphereDetail(slices, stacks int) Option {
	return func(k *BSPKernel) {
		k.sphereSlices, k.sphereStacks = slices, stacks
	}
}

// WithCylinderSlices sets the number of sides used for cylinders when the
// caller passes a non-positive segment count.
func WithCylinderSlices(n int) Option {
	return func(k *BSPKernel) {
		k.cylinderSlices = n
	}
}

// BSPKernel implements kernel.Kernel on top of csg.CSG. It holds only
// configuration, so one kernel may be shared by concurrent callers as long
// as they do not share solids being combined.
type BSPKernel struct {
	sphereSlices   int
	sphereStacks   int
	cylinderSlices int
}

// New returns a BSPKernel.
func New(opts ...Option) *BSPKernel {
	k := &BSPKernel{
		sphereSlices:   DefaultSphereSlices,
		sphereStacks:   DefaultSphereStacks,
		cylinderSlices: DefaultCylinderSlices,
	}
	for _, opt := range opts {
		opt(k)
	}
	return k
}

// Wrap returns c as a kernel.Solid.
func Wrap(c *csg.CSG) kernel.Solid {
	return &bspSolid{c: c}
}

// Unwrap returns the CSG behind a solid created by this package.
func Unwrap(s kernel.Solid) *csg.CSG {
	return s.(*bspSolid).c
}

// Box creates a box with the given dimensions and its minimum corner at the
// origin, so that translations place the corner.
func (k *BSPKernel) Box(x, y, z float64) kernel.Solid {
	half := csg.V(x/2, y/2, z/2)
	return Wrap(csg.Cube(half, half, 0))
}

// Cylinder creates a cylinder along the Z axis centred at the origin.
func (k *BSPKernel) Cylinder(height, radius float64, segments int) kernel.Solid {
	if segments <= 0 {
		segments = k.cylinderSlices
	}
	return Wrap(csg.Cylinder(csg.V(0, 0, -height/2), csg.V(0, 0, height/2), radius, segments, 0))
}

// Sphere creates a sphere centred at the origin.
func (k *BSPKernel) Sphere(radius float64) kernel.Solid {
	return Wrap(csg.Sphere(csg.V(0, 0, 0), radius, k.sphereSlices, k.sphereStacks, 0))
}

// Union returns the boolean union of two solids.
func (k *BSPKernel) Union(a, b kernel.Solid) kernel.Solid {
	return Wrap(Unwrap(a).Union(Unwrap(b)))
}

// Difference returns the boolean difference (a minus b).
func (k *BSPKernel) Difference(a, b kernel.Solid) kernel.Solid {
	return Wrap(Unwrap(a).Subtract(Unwrap(b)))
}

// Intersection returns the boolean intersection of two solids.
func (k *BSPKernel) Intersection(a, b kernel.Solid) kernel.Solid {
	return Wrap(Unwrap(a).Intersect(Unwrap(b)))
}

// Translate moves the solid by (x, y, z).
func (k *BSPKernel) Translate(s kernel.Solid, x, y, z float64) kernel.Solid {
	return Wrap(Unwrap(s).Transform(mgl64.Translate3D(x, y, z)))
}

// Rotate rotates the solid by Euler angles (in degrees) around the X, Y, Z
// axes, applied in that order.
func (k *BSPKernel) Rotate(s kernel.Solid, x, y, z float64) kernel.Solid {
	return Wrap(Unwrap(s).Transform(csg.EulerMatrix(x, y, z)))
}

// Scale scales the solid about the origin. Negative factors mirror it.
func (k *BSPKernel) Scale(s kernel.Solid, x, y, z float64) kernel.Solid {
	return Wrap(Unwrap(s).Transform(mgl64.Scale3D(x, y, z)))
}

// Material tags every face of s with the material index.
func (k *BSPKernel) Material(s kernel.Solid, index int) kernel.Solid {
	return Wrap(Unwrap(s).SetShared(csg.Shared(index)))
}

// Import converts a triangle mesh into a solid. Mesh groups become face
// materials; degenerate triangles are dropped.
func (k *BSPKernel) Import(m *kernel.Mesh) (kernel.Solid, error) {
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("bsp: import: %w", err)
	}
	c, err := csg.FromGeometry(toGeometry(m), csg.NoShared)
	if err != nil {
		return nil, fmt.Errorf("bsp: import: %w", err)
	}
	return Wrap(c), nil
}

// ToMesh extracts the triangle mesh of the solid in world space, with one
// group per material index in ascending order and untagged faces last.
func (k *BSPKernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	g := csg.ToGeometry(Unwrap(s), mgl64.Ident4())
	if g.IsEmpty() {
		return &kernel.Mesh{}, nil
	}
	mesh := fromGeometry(g)
	if err := mesh.Validate(); err != nil {
		return nil, fmt.Errorf("bsp: produced invalid mesh: %w", err)
	}
	return mesh, nil
}
