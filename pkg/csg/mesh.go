package csg

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Mesh is a geometry placed in the world by a position, rotation and scale,
// the shape in which host scenes hand meshes to the engine.
type Mesh struct {
	Geometry  *Geometry
	Position  mgl64.Vec3
	Rotation  mgl64.Quat
	Scale     mgl64.Vec3
	Materials []string // indexed by Group.MaterialIndex
}

// NewMesh returns a mesh with an identity transform.
func NewMesh(g *Geometry, materials ...string) *Mesh {
	return &Mesh{
		Geometry:  g,
		Rotation:  mgl64.QuatIdent(),
		Scale:     mgl64.Vec3{1, 1, 1},
		Materials: materials,
	}
}

// Matrix returns the local-to-world transform T·R·S.
func (m *Mesh) Matrix() mgl64.Mat4 {
	t := mgl64.Translate3D(m.Position[0], m.Position[1], m.Position[2])
	s := mgl64.Scale3D(m.Scale[0], m.Scale[1], m.Scale[2])
	return t.Mul4(m.Rotation.Normalize().Mat4()).Mul4(s)
}

// SetMatrix decomposes a translation·rotation·scale matrix into the mesh's
// position, rotation and scale. A negative determinant is folded into the
// X scale.
func (m *Mesh) SetMatrix(mat mgl64.Mat4) {
	m.Position = mat.Col(3).Vec3()
	sx := mat.Col(0).Vec3().Len()
	sy := mat.Col(1).Vec3().Len()
	sz := mat.Col(2).Vec3().Len()
	if mat.Det() < 0 {
		sx = -sx
	}
	m.Scale = mgl64.Vec3{sx, sy, sz}

	rot := mgl64.Ident4()
	for col, s := range [3]float64{sx, sy, sz} {
		if s == 0 {
			continue
		}
		c := mat.Col(col).Vec3().Mul(1 / s)
		rot.SetCol(col, c.Vec4(0))
	}
	m.Rotation = mgl64.Mat4ToQuat(rot).Normalize()
}

// FromMesh converts a mesh into a solid in world space. Groups on the
// mesh's geometry become polygon tags.
func FromMesh(m *Mesh) (*CSG, error) {
	if m.Geometry == nil {
		return nil, fmt.Errorf("%w: mesh has no geometry", ErrInvalidGeometry)
	}
	if err := m.Geometry.Validate(); err != nil {
		return nil, err
	}
	return FromGeometry(m.Geometry.ApplyMatrix(m.Matrix()), NoShared)
}

// ToMesh converts c into a mesh whose local transform is transform. The
// geometry is expressed in that local space, so rendering the mesh places
// it back where c is in world space.
func ToMesh(c *CSG, transform mgl64.Mat4, materials ...string) *Mesh {
	m := NewMesh(nil, materials...)
	m.SetMatrix(transform)
	inv := transform.Inv()
	if transform.Det() == 0 {
		inv = mgl64.Ident4()
	}
	m.Geometry = ToGeometry(c, inv)
	return m
}

// VectorFromMgl converts a host vector.
func VectorFromMgl(v mgl64.Vec3) Vector {
	return Vector{v[0], v[1], v[2]}
}

// Mgl converts a to the host vector type.
func (a Vector) Mgl() mgl64.Vec3 {
	return mgl64.Vec3{a.X, a.Y, a.Z}
}

// EulerMatrix returns the rotation by x, y and z degrees about the X, Y
// and Z axes, applied in that order.
func EulerMatrix(x, y, z float64) mgl64.Mat4 {
	rx := mgl64.HomogRotate3DX(x * math.Pi / 180)
	ry := mgl64.HomogRotate3DY(y * math.Pi / 180)
	rz := mgl64.HomogRotate3DZ(z * math.Pi / 180)
	return rz.Mul4(ry).Mul4(rx)
}
