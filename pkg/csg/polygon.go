package csg

import "fmt"

// Shared is the opaque tag carried by every polygon through splitting and
// boolean operations. The engine never interprets it; geometry import and
// export use it as a material index.
type Shared int

// NoShared marks a polygon that does not belong to any material group.
const NoShared Shared = -1

// Polygon is a convex, planar list of vertices. Plane is derived from the
// first three vertices whenever a polygon is constructed or cloned.
type Polygon struct {
	Vertices []Vertex
	Shared   Shared
	Plane    Plane
}

// NewPolygon returns a polygon over vertices. It panics when given fewer
// than three vertices, which indicates a bug in the caller rather than bad
// input geometry. The vertices slice is owned by the polygon afterwards.
func NewPolygon(vertices []Vertex, shared Shared) *Polygon {
	if len(vertices) < 3 {
		panic(fmt.Sprintf("csg: polygon needs at least 3 vertices, got %d", len(vertices)))
	}
	return &Polygon{
		Vertices: vertices,
		Shared:   shared,
		Plane:    PlaneFromPoints(vertices[0].Pos, vertices[1].Pos, vertices[2].Pos),
	}
}

// Clone returns a deep copy of p with the same tag.
func (p *Polygon) Clone() *Polygon {
	vs := make([]Vertex, len(p.Vertices))
	copy(vs, p.Vertices)
	return NewPolygon(vs, p.Shared)
}

// Flip reverses the winding and every vertex normal in place, so p describes
// the same surface facing the other way.
func (p *Polygon) Flip() {
	vs := p.Vertices
	for i, j := 0, len(vs)-1; i < j; i, j = i+1, j-1 {
		vs[i], vs[j] = vs[j], vs[i]
	}
	for i := range vs {
		vs[i] = vs[i].Flipped()
	}
	p.Plane.Flip()
}

// Flipped returns a flipped copy of p, leaving p untouched.
func (p *Polygon) Flipped() *Polygon {
	c := p.Clone()
	c.Flip()
	return c
}

// Area returns the area of the polygon, fan triangulated from vertex 0.
func (p *Polygon) Area() float64 {
	var sum Vector
	a := p.Vertices[0].Pos
	for i := 2; i < len(p.Vertices); i++ {
		b := p.Vertices[i-1].Pos
		c := p.Vertices[i].Pos
		sum = sum.Plus(b.Minus(a).Cross(c.Minus(a)))
	}
	return sum.Length() / 2
}
