package csg

import "math"

// Box is an axis-aligned bounding box.
type Box struct {
	Min, Max Vector
}

// EmptyBox returns a box that contains nothing; extending it by a point
// yields a box around that point.
func EmptyBox() Box {
	inf := math.Inf(1)
	return Box{Min: Vector{inf, inf, inf}, Max: Vector{-inf, -inf, -inf}}
}

// IsEmpty reports whether b contains no points.
func (b Box) IsEmpty() bool {
	return b.Max.X < b.Min.X || b.Max.Y < b.Min.Y || b.Max.Z < b.Min.Z
}

// Extend returns the smallest box containing b and v.
func (b Box) Extend(v Vector) Box {
	return Box{
		Min: Vector{math.Min(b.Min.X, v.X), math.Min(b.Min.Y, v.Y), math.Min(b.Min.Z, v.Z)},
		Max: Vector{math.Max(b.Max.X, v.X), math.Max(b.Max.Y, v.Y), math.Max(b.Max.Z, v.Z)},
	}
}

// Size returns the extent of b on each axis, zero when b is empty.
func (b Box) Size() Vector {
	if b.IsEmpty() {
		return Vector{}
	}
	return b.Max.Minus(b.Min)
}

// Center returns the midpoint of b.
func (b Box) Center() Vector {
	return b.Min.Plus(b.Max).Times(0.5)
}

// Intersects reports whether b and o overlap (touching counts).
func (b Box) Intersects(o Box) bool {
	return !b.IsEmpty() && !o.IsEmpty() &&
		b.Min.X <= o.Max.X && o.Min.X <= b.Max.X &&
		b.Min.Y <= o.Max.Y && o.Min.Y <= b.Max.Y &&
		b.Min.Z <= o.Max.Z && o.Min.Z <= b.Max.Z
}

// Bounds returns the bounding box of c's vertices.
func (c *CSG) Bounds() Box {
	b := EmptyBox()
	for _, p := range c.polygons {
		for _, v := range p.Vertices {
			b = b.Extend(v.Pos)
		}
	}
	return b
}

// Volume returns the signed volume enclosed by c. It is positive for a
// closed, outward facing solid and negative for an inverted one.
func (c *CSG) Volume() float64 {
	var sum float64
	for _, p := range c.polygons {
		a := p.Vertices[0].Pos
		for i := 2; i < len(p.Vertices); i++ {
			sum += a.Dot(p.Vertices[i-1].Pos.Cross(p.Vertices[i].Pos))
		}
	}
	return sum / 6
}

// Area returns the total surface area of c.
func (c *CSG) Area() float64 {
	var sum float64
	for _, p := range c.polygons {
		sum += p.Area()
	}
	return sum
}
