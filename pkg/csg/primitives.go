package csg

import "math"

// boxFaces lists each face's outward normal and the two in-plane axes
// spanning it, ordered +X, -X, +Y, -Y, +Z, -Z. u×v equals the normal so
// corners generated in (u, v) order wind counter-clockwise from outside.
var boxFaces = [6]struct{ n, u, v Vector }{
	{Vector{1, 0, 0}, Vector{0, 1, 0}, Vector{0, 0, 1}},
	{Vector{-1, 0, 0}, Vector{0, 0, 1}, Vector{0, 1, 0}},
	{Vector{0, 1, 0}, Vector{0, 0, 1}, Vector{1, 0, 0}},
	{Vector{0, -1, 0}, Vector{1, 0, 0}, Vector{0, 0, 1}},
	{Vector{0, 0, 1}, Vector{1, 0, 0}, Vector{0, 1, 0}},
	{Vector{0, 0, -1}, Vector{0, 1, 0}, Vector{1, 0, 0}},
}

// BoxGeometry returns an axis-aligned box spanning center±halfSize. Each
// face is two triangles in its own group; the groups' material indices are
// 0 through 5 in +X, -X, +Y, -Y, +Z, -Z order.
func BoxGeometry(center, halfSize Vector) *Geometry {
	g := &Geometry{}
	for f, face := range boxFaces {
		base := uint32(g.VertexCount())
		start := len(g.Indices)
		for _, c := range [4][2]float64{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}} {
			local := face.n.Plus(face.u.Times(c[0])).Plus(face.v.Times(c[1]))
			p := center.Plus(Vector{local.X * halfSize.X, local.Y * halfSize.Y, local.Z * halfSize.Z})
			g.Positions = append(g.Positions, p.X, p.Y, p.Z)
			g.Normals = append(g.Normals, face.n.X, face.n.Y, face.n.Z)
			g.UVs = append(g.UVs, (c[0]+1)/2, (c[1]+1)/2)
		}
		g.Indices = append(g.Indices, base, base+1, base+2, base, base+2, base+3)
		g.Groups = append(g.Groups, Group{Start: start, Count: 6, MaterialIndex: f})
	}
	g.ComputeBounds()
	return g
}

// SphereGeometry returns a UV sphere with slices divisions around the Y
// axis and stacks from pole to pole, as a single group with material 0.
func SphereGeometry(center Vector, radius float64, slices, stacks int) *Geometry {
	slices = max(slices, 3)
	stacks = max(stacks, 2)
	g := &Geometry{}
	for j := 0; j <= stacks; j++ {
		phi := float64(j) / float64(stacks) * math.Pi
		for i := 0; i <= slices; i++ {
			theta := float64(i) / float64(slices) * 2 * math.Pi
			n := Vector{math.Cos(theta) * math.Sin(phi), math.Cos(phi), math.Sin(theta) * math.Sin(phi)}
			p := center.Plus(n.Times(radius))
			g.Positions = append(g.Positions, p.X, p.Y, p.Z)
			g.Normals = append(g.Normals, n.X, n.Y, n.Z)
			g.UVs = append(g.UVs, float64(i)/float64(slices), 1-float64(j)/float64(stacks))
		}
	}
	row := uint32(slices + 1)
	for j := 0; j < stacks; j++ {
		for i := 0; i < slices; i++ {
			a := uint32(j)*row + uint32(i)
			b := a + 1
			c := a + row
			d := c + 1
			// The triangles touching the poles would be degenerate.
			if j != 0 {
				g.Indices = append(g.Indices, a, b, c)
			}
			if j != stacks-1 {
				g.Indices = append(g.Indices, b, d, c)
			}
		}
	}
	g.Groups = []Group{{Start: 0, Count: len(g.Indices), MaterialIndex: 0}}
	g.ComputeBounds()
	return g
}

// CylinderGeometry returns a closed cylinder from start to end. Groups:
// material 0 for the side, 1 for the cap at start, 2 for the cap at end.
func CylinderGeometry(start, end Vector, radius float64, slices int) *Geometry {
	slices = max(slices, 3)
	ray := end.Minus(start)
	axisZ := ray.Unit()
	isY := math.Abs(axisZ.Y) > 0.5
	axisX := Vector{b2f(isY), b2f(!isY), 0}.Cross(axisZ).Unit()
	axisY := axisX.Cross(axisZ).Unit()

	g := &Geometry{}
	point := func(stack, slice float64) (Vector, Vector) {
		angle := slice * 2 * math.Pi
		out := axisX.Times(math.Cos(angle)).Plus(axisY.Times(math.Sin(angle)))
		return start.Plus(ray.Times(stack)).Plus(out.Times(radius)), out
	}
	add := func(p, n Vector, u, v float64) uint32 {
		idx := uint32(g.VertexCount())
		g.Positions = append(g.Positions, p.X, p.Y, p.Z)
		g.Normals = append(g.Normals, n.X, n.Y, n.Z)
		g.UVs = append(g.UVs, u, v)
		return idx
	}

	// Side.
	for i := 0; i <= slices; i++ {
		t := float64(i) / float64(slices)
		p0, n := point(0, t)
		p1, _ := point(1, t)
		add(p0, n, t, 0)
		add(p1, n, t, 1)
	}
	for i := 0; i < slices; i++ {
		a := uint32(i * 2)
		g.Indices = append(g.Indices, a, a+1, a+3, a, a+3, a+2)
	}
	g.Groups = append(g.Groups, Group{Start: 0, Count: len(g.Indices), MaterialIndex: 0})

	// Caps.
	for capIndex, c := range []struct {
		stack  float64
		normal Vector
	}{{0, axisZ.Negated()}, {1, axisZ}} {
		startIdx := len(g.Indices)
		center := add(start.Plus(ray.Times(c.stack)), c.normal, 0.5, 0.5)
		first := uint32(g.VertexCount())
		for i := 0; i < slices; i++ {
			t := float64(i) / float64(slices)
			p, out := point(c.stack, t)
			add(p, c.normal, 0.5+out.Dot(axisX)/2, 0.5+out.Dot(axisY)/2)
		}
		for i := 0; i < slices; i++ {
			a := first + uint32(i)
			b := first + uint32((i+1)%slices)
			if c.stack == 0 {
				g.Indices = append(g.Indices, center, a, b)
			} else {
				g.Indices = append(g.Indices, center, b, a)
			}
		}
		g.Groups = append(g.Groups, Group{Start: startIdx, Count: len(g.Indices) - startIdx, MaterialIndex: capIndex + 1})
	}
	g.ComputeBounds()
	return g
}

// Cube returns a box solid spanning center±halfSize with every face tagged
// shared.
func Cube(center, halfSize Vector, shared Shared) *CSG {
	return mustFromGeometry(BoxGeometry(center, halfSize), shared)
}

// Sphere returns a sphere solid with every face tagged shared.
func Sphere(center Vector, radius float64, slices, stacks int, shared Shared) *CSG {
	return mustFromGeometry(SphereGeometry(center, radius, slices, stacks), shared)
}

// Cylinder returns a cylinder solid with every face tagged shared.
func Cylinder(start, end Vector, radius float64, slices int, shared Shared) *CSG {
	return mustFromGeometry(CylinderGeometry(start, end, radius, slices), shared)
}

// mustFromGeometry is for generated geometry, which is valid by
// construction.
func mustFromGeometry(g *Geometry, shared Shared) *CSG {
	c, err := FromGeometry(g, shared)
	if err != nil {
		panic(err)
	}
	return c
}

func b2f(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
