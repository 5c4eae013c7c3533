package csg

// Epsilon is the tolerance used when classifying a point against a plane.
// Points closer than Epsilon to a plane are treated as lying on it.
const Epsilon = 1e-5

// Point and polygon classification bits.
const (
	coplanar = 0
	front    = 1
	back     = 2
	spanning = front | back
)

// Plane is an oriented plane: the set of points p with Normal·p == W.
type Plane struct {
	Normal Vector
	W      float64
}

// PlaneFromPoints returns the plane through a, b and c, oriented so that
// a, b, c wind counter-clockwise when viewed from the front. Collinear
// points produce a plane with a non-finite normal; check Valid.
func PlaneFromPoints(a, b, c Vector) Plane {
	n := b.Minus(a).Cross(c.Minus(a)).Unit()
	return Plane{Normal: n, W: n.Dot(a)}
}

// Valid reports whether the plane has a finite normal.
func (p Plane) Valid() bool {
	return p.Normal.IsFinite() && isFinite(p.W)
}

// Flip reverses the orientation of the plane in place.
func (p *Plane) Flip() {
	p.Normal = p.Normal.Negated()
	p.W = -p.W
}

// Flipped returns a copy of p with the opposite orientation.
func (p Plane) Flipped() Plane {
	p.Flip()
	return p
}

// Distance returns the signed distance from v to the plane.
func (p Plane) Distance(v Vector) float64 {
	return p.Normal.Dot(v) - p.W
}

func (p Plane) classify(v Vector) int {
	d := p.Distance(v)
	switch {
	case d < -Epsilon:
		return back
	case d > Epsilon:
		return front
	}
	return coplanar
}

// SplitPolygon splits polygon by p if needed, then appends the polygon or
// its fragments to the appropriate list. Coplanar polygons go into either
// coplanarFront or coplanarBack depending on their orientation with respect
// to p. Polygons in front of or behind p go into front or back.
// The caller may pass the same list for several arguments.
func (p Plane) SplitPolygon(polygon *Polygon, frontList, backList, coplanarFront, coplanarBack *[]*Polygon) {
	polygonType := 0
	types := make([]int, len(polygon.Vertices))
	for i, v := range polygon.Vertices {
		t := p.classify(v.Pos)
		polygonType |= t
		types[i] = t
	}

	switch polygonType {
	case coplanar:
		if p.Normal.Dot(polygon.Plane.Normal) > 0 {
			*coplanarFront = append(*coplanarFront, polygon)
		} else {
			*coplanarBack = append(*coplanarBack, polygon)
		}
	case front:
		*frontList = append(*frontList, polygon)
	case back:
		*backList = append(*backList, polygon)
	case spanning:
		n := len(polygon.Vertices)
		f := make([]Vertex, 0, n+1)
		b := make([]Vertex, 0, n+1)
		for i := 0; i < n; i++ {
			j := (i + 1) % n
			ti, tj := types[i], types[j]
			vi, vj := polygon.Vertices[i], polygon.Vertices[j]
			if ti != back {
				f = append(f, vi)
			}
			if ti != front {
				// Coplanar vertices land in both fragments; value copies
				// keep the fragments from aliasing each other.
				b = append(b, vi)
			}
			if ti|tj == spanning {
				t := (p.W - p.Normal.Dot(vi.Pos)) / p.Normal.Dot(vj.Pos.Minus(vi.Pos))
				v := vi.Interpolate(vj, t)
				f = append(f, v)
				b = append(b, v)
			}
		}
		if len(f) >= 3 {
			*frontList = append(*frontList, NewPolygon(f, polygon.Shared))
		}
		if len(b) >= 3 {
			*backList = append(*backList, NewPolygon(b, polygon.Shared))
		}
	}
}
