package csg

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// CSG is a solid represented by the polygons of its boundary. Boolean
// operations never modify their operands.
type CSG struct {
	polygons []*Polygon
}

// FromPolygons returns a solid bounded by polygons. The solid takes
// ownership of the slice and the polygons in it.
func FromPolygons(polygons []*Polygon) *CSG {
	return &CSG{polygons: polygons}
}

// Clone returns a deep copy of c.
func (c *CSG) Clone() *CSG {
	return &CSG{polygons: clonePolygons(c.polygons)}
}

// Polygons returns the boundary polygons. The returned slice is a copy but
// the polygons are shared with c; clone them before mutating.
func (c *CSG) Polygons() []*Polygon {
	out := make([]*Polygon, len(c.polygons))
	copy(out, c.polygons)
	return out
}

// PolygonCount returns the number of boundary polygons.
func (c *CSG) PolygonCount() int {
	return len(c.polygons)
}

// IsEmpty reports whether c has no polygons.
func (c *CSG) IsEmpty() bool {
	return len(c.polygons) == 0
}

// Union returns a solid representing space in either c or other.
//
//	A.clipTo(B); B.clipTo(A); B.invert(); B.clipTo(A); B.invert()
//
// removes the parts of A inside B and the parts of B inside A, keeping the
// parts of B coplanar with A only where they face away from A. The
// remaining polygons of B are then merged into A.
func (c *CSG) Union(other *CSG) *CSG {
	switch {
	case c.IsEmpty():
		return other.Clone()
	case other.IsEmpty():
		return c.Clone()
	}
	a := NewNode(c.Clone().polygons)
	b := NewNode(other.Clone().polygons)
	a.ClipTo(b)
	b.ClipTo(a)
	b.Invert()
	b.ClipTo(a)
	b.Invert()
	a.Build(b.AllPolygons())
	return FromPolygons(a.AllPolygons())
}

// Subtract returns a solid representing space in c but not in other. It is
// the union algorithm run on the complement of c, complemented again.
func (c *CSG) Subtract(other *CSG) *CSG {
	switch {
	case c.IsEmpty():
		return &CSG{}
	case other.IsEmpty():
		return c.Clone()
	}
	a := NewNode(c.Clone().polygons)
	b := NewNode(other.Clone().polygons)
	a.Invert()
	a.ClipTo(b)
	b.ClipTo(a)
	b.Invert()
	b.ClipTo(a)
	b.Invert()
	a.Build(b.AllPolygons())
	a.Invert()
	return FromPolygons(a.AllPolygons())
}

// Intersect returns a solid representing space in both c and other.
func (c *CSG) Intersect(other *CSG) *CSG {
	if c.IsEmpty() || other.IsEmpty() {
		return &CSG{}
	}
	a := NewNode(c.Clone().polygons)
	b := NewNode(other.Clone().polygons)
	a.Invert()
	b.ClipTo(a)
	b.Invert()
	a.ClipTo(b)
	b.ClipTo(a)
	a.Build(b.AllPolygons())
	a.Invert()
	return FromPolygons(a.AllPolygons())
}

// Inverse returns a solid with solid and empty space switched. No tree is
// built; every polygon is cloned and flipped.
func (c *CSG) Inverse() *CSG {
	out := c.Clone()
	for _, p := range out.polygons {
		p.Flip()
	}
	return out
}

// SetShared returns a copy of c with every polygon tagged shared.
func (c *CSG) SetShared(shared Shared) *CSG {
	out := c.Clone()
	for _, p := range out.polygons {
		p.Shared = shared
	}
	return out
}

// Transform returns a copy of c with positions transformed by m and
// normals by its normal matrix. A mirroring transform (negative
// determinant) also reverses the winding of every polygon so the solid
// stays outward facing. A singular m (a zero scale factor) flattens the
// solid to no volume and yields an empty CSG; any single polygon the
// transform degenerates is dropped, as on import.
func (c *CSG) Transform(m mgl64.Mat4) *CSG {
	det := m.Det()
	if det == 0 || math.IsNaN(det) {
		return &CSG{}
	}
	normalMatrix := mgl64.Mat4Normal(m)
	mirror := det < 0
	out := &CSG{polygons: make([]*Polygon, 0, len(c.polygons))}
	for _, p := range c.polygons {
		n := len(p.Vertices)
		vs := make([]Vertex, n)
		for i, v := range p.Vertices {
			v.Pos = transformPoint(m, v.Pos)
			v.Normal = transformNormal(normalMatrix, v.Normal)
			if mirror {
				vs[n-1-i] = v
			} else {
				vs[i] = v
			}
		}
		np := NewPolygon(vs, p.Shared)
		if !np.Plane.Valid() {
			continue
		}
		out.polygons = append(out.polygons, np)
	}
	return out
}

// Translate returns a copy of c moved by d.
func (c *CSG) Translate(d Vector) *CSG {
	return c.Transform(mgl64.Translate3D(d.X, d.Y, d.Z))
}

// Tags returns the distinct tags present in c, in ascending order with
// NoShared (if present) last.
func (c *CSG) Tags() []Shared {
	seen := make(map[Shared]bool)
	for _, p := range c.polygons {
		seen[p.Shared] = true
	}
	return orderedTags(seen)
}
