package csg

import "math"

// Vector is a 3-component vector used for positions, normals, texture
// coordinates (Z unused) and RGB colors.
type Vector struct {
	X, Y, Z float64
}

// V returns the vector (x, y, z).
func V(x, y, z float64) Vector {
	return Vector{X: x, Y: y, Z: z}
}

func (a Vector) Plus(b Vector) Vector {
	return Vector{a.X + b.X, a.Y + b.Y, a.Z + b.Z}
}

func (a Vector) Minus(b Vector) Vector {
	return Vector{a.X - b.X, a.Y - b.Y, a.Z - b.Z}
}

func (a Vector) Times(s float64) Vector {
	return Vector{a.X * s, a.Y * s, a.Z * s}
}

func (a Vector) DividedBy(s float64) Vector {
	return Vector{a.X / s, a.Y / s, a.Z / s}
}

func (a Vector) Negated() Vector {
	return Vector{-a.X, -a.Y, -a.Z}
}

func (a Vector) Dot(b Vector) float64 {
	return a.X*b.X + a.Y*b.Y + a.Z*b.Z
}

func (a Vector) Cross(b Vector) Vector {
	return Vector{
		a.Y*b.Z - a.Z*b.Y,
		a.Z*b.X - a.X*b.Z,
		a.X*b.Y - a.Y*b.X,
	}
}

func (a Vector) Length() float64 {
	return math.Sqrt(a.Dot(a))
}

// Unit returns a scaled to length 1. A zero vector yields NaN components,
// which PlaneFromPoints relies on to flag degenerate triangles.
func (a Vector) Unit() Vector {
	return a.DividedBy(a.Length())
}

// Lerp returns the point a fraction t of the way from a to b.
func (a Vector) Lerp(b Vector, t float64) Vector {
	return a.Plus(b.Minus(a).Times(t))
}

// IsFinite reports whether no component is NaN or infinite.
func (a Vector) IsFinite() bool {
	return isFinite(a.X) && isFinite(a.Y) && isFinite(a.Z)
}

// ApproxEqual reports whether every component of a is within tol of b.
func (a Vector) ApproxEqual(b Vector, tol float64) bool {
	return math.Abs(a.X-b.X) <= tol && math.Abs(a.Y-b.Y) <= tol && math.Abs(a.Z-b.Z) <= tol
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
