package csg

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/go-gl/mathgl/mgl64"
)

// ErrInvalidGeometry is returned when a Geometry's attribute arrays do not
// describe a triangle mesh.
var ErrInvalidGeometry = errors.New("csg: invalid geometry")

// Group is a contiguous range of the index buffer (or of the vertex list
// for non-indexed geometry) drawn with one material.
type Group struct {
	Start         int `json:"start"`
	Count         int `json:"count"`
	MaterialIndex int `json:"materialIndex"`
}

// Geometry is an indexed triangle mesh. Positions and Normals hold three
// floats per vertex, UVs two and Colors three. UVs, Colors and Indices are
// optional; without Indices vertices are consumed in triples.
type Geometry struct {
	Positions []float64 `json:"positions"`
	Normals   []float64 `json:"normals"`
	UVs       []float64 `json:"uvs,omitempty"`
	Colors    []float64 `json:"colors,omitempty"`
	Indices   []uint32  `json:"indices,omitempty"`
	Groups    []Group   `json:"groups,omitempty"`
	Bounds    Box       `json:"-"`
}

// VertexCount returns the number of vertices.
func (g *Geometry) VertexCount() int {
	return len(g.Positions) / 3
}

// TriangleCount returns the number of triangles.
func (g *Geometry) TriangleCount() int {
	if g.Indices != nil {
		return len(g.Indices) / 3
	}
	return g.VertexCount() / 3
}

// IsEmpty reports whether the geometry has no triangles.
func (g *Geometry) IsEmpty() bool {
	return g.TriangleCount() == 0
}

// Validate checks that attribute lengths agree with each other and that
// indices and groups stay in range.
func (g *Geometry) Validate() error {
	if len(g.Positions)%3 != 0 {
		return fmt.Errorf("%w: %d position floats is not a multiple of 3", ErrInvalidGeometry, len(g.Positions))
	}
	nv := g.VertexCount()
	if len(g.Normals) != nv*3 {
		return fmt.Errorf("%w: %d normal floats for %d vertices", ErrInvalidGeometry, len(g.Normals), nv)
	}
	if g.UVs != nil && len(g.UVs) != nv*2 {
		return fmt.Errorf("%w: %d uv floats for %d vertices", ErrInvalidGeometry, len(g.UVs), nv)
	}
	if g.Colors != nil && len(g.Colors) != nv*3 {
		return fmt.Errorf("%w: %d color floats for %d vertices", ErrInvalidGeometry, len(g.Colors), nv)
	}
	n := nv
	if g.Indices != nil {
		n = len(g.Indices)
		for i, idx := range g.Indices {
			if int(idx) >= nv {
				return fmt.Errorf("%w: index %d at %d out of range (%d vertices)", ErrInvalidGeometry, idx, i, nv)
			}
		}
	}
	if n%3 != 0 {
		return fmt.Errorf("%w: %d elements is not a whole number of triangles", ErrInvalidGeometry, n)
	}
	for i, gr := range g.Groups {
		if gr.Start < 0 || gr.Count < 0 || gr.Start+gr.Count > n {
			return fmt.Errorf("%w: group %d [%d,+%d) outside [0,%d)", ErrInvalidGeometry, i, gr.Start, gr.Count, n)
		}
	}
	return nil
}

// Clone returns a deep copy of g.
func (g *Geometry) Clone() *Geometry {
	return &Geometry{
		Positions: slices.Clone(g.Positions),
		Normals:   slices.Clone(g.Normals),
		UVs:       slices.Clone(g.UVs),
		Colors:    slices.Clone(g.Colors),
		Indices:   slices.Clone(g.Indices),
		Groups:    slices.Clone(g.Groups),
		Bounds:    g.Bounds,
	}
}

// ApplyMatrix returns a copy of g with positions transformed by m and
// normals by its normal matrix. Mirroring transforms reverse triangle
// winding; non-indexed geometry gains an index buffer for this.
func (g *Geometry) ApplyMatrix(m mgl64.Mat4) *Geometry {
	out := g.Clone()
	nm := mgl64.Mat4Normal(m)
	for i := 0; i+2 < len(out.Positions); i += 3 {
		p := transformPoint(m, vectorAt(out.Positions, i))
		out.Positions[i], out.Positions[i+1], out.Positions[i+2] = p.X, p.Y, p.Z
		n := transformNormal(nm, vectorAt(out.Normals, i))
		out.Normals[i], out.Normals[i+1], out.Normals[i+2] = n.X, n.Y, n.Z
	}
	if m.Det() < 0 {
		if out.Indices == nil {
			out.Indices = make([]uint32, out.VertexCount())
			for i := range out.Indices {
				out.Indices[i] = uint32(i)
			}
		}
		for i := 0; i+2 < len(out.Indices); i += 3 {
			out.Indices[i+1], out.Indices[i+2] = out.Indices[i+2], out.Indices[i+1]
		}
	}
	out.ComputeBounds()
	return out
}

// ComputeBounds recomputes Bounds from Positions.
func (g *Geometry) ComputeBounds() {
	b := EmptyBox()
	for i := 0; i+2 < len(g.Positions); i += 3 {
		b = b.Extend(vectorAt(g.Positions, i))
	}
	g.Bounds = b
}

// FromGeometry decomposes g into polygons. When override is NoShared and
// g has groups, each triangle is tagged with the material index of the
// group containing it (triangles outside every group stay untagged);
// otherwise every polygon is tagged override. Degenerate triangles, whose
// plane normal is not finite, are dropped.
func FromGeometry(g *Geometry, override Shared) (*CSG, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	index := func(k int) int {
		if g.Indices != nil {
			return int(g.Indices[k])
		}
		return k
	}
	vertex := func(i int) Vertex {
		v := Vertex{
			Pos:    vectorAt(g.Positions, i*3),
			Normal: vectorAt(g.Normals, i*3),
		}
		if g.UVs != nil {
			v.UV = Vector{X: g.UVs[i*2], Y: g.UVs[i*2+1]}
		}
		if g.Colors != nil {
			v.Color = vectorAt(g.Colors, i*3)
			v.HasColor = true
		}
		return v
	}

	ntri := g.TriangleCount()
	polygons := make([]*Polygon, 0, ntri)
	for t := 0; t < ntri; t++ {
		k := t * 3
		shared := override
		if shared == NoShared {
			for _, gr := range g.Groups {
				if k >= gr.Start && k < gr.Start+gr.Count {
					shared = Shared(gr.MaterialIndex)
					break
				}
			}
		}
		p := NewPolygon([]Vertex{vertex(index(k)), vertex(index(k + 1)), vertex(index(k + 2))}, shared)
		if !p.Plane.Valid() {
			continue
		}
		polygons = append(polygons, p)
	}
	return FromPolygons(polygons), nil
}

// ToGeometry encodes c as an indexed triangle mesh. Each polygon's vertices
// are written once and fan triangulated from its first vertex. Polygons are
// bucketed by tag: one group per tag in ascending order, then one group for
// untagged polygons (MaterialIndex -1). Positions and normals are
// transformed by inverse, which expresses the result in the local space of
// the mesh it will be attached to; pass mgl64.Ident4() to keep world space.
// Colors are emitted only when some polygon carries them; uncolored
// vertices are then written white.
func ToGeometry(c *CSG, inverse mgl64.Mat4) *Geometry {
	nm := mgl64.Mat4Normal(inverse)
	mirror := inverse.Det() < 0

	colored := false
	nv := 0
	for _, p := range c.polygons {
		nv += len(p.Vertices)
		for _, v := range p.Vertices {
			colored = colored || v.HasColor
		}
	}

	g := &Geometry{
		Positions: make([]float64, 0, nv*3),
		Normals:   make([]float64, 0, nv*3),
		UVs:       make([]float64, 0, nv*2),
	}
	if colored {
		g.Colors = make([]float64, 0, nv*3)
	}

	buckets := make(map[Shared][]uint32)
	for _, p := range c.polygons {
		if len(p.Vertices) < 3 {
			panic(fmt.Sprintf("csg: polygon with %d vertices reached triangulation", len(p.Vertices)))
		}
		base := uint32(g.VertexCount())
		for _, v := range p.Vertices {
			pos := transformPoint(inverse, v.Pos)
			n := transformNormal(nm, v.Normal)
			g.Positions = append(g.Positions, pos.X, pos.Y, pos.Z)
			g.Normals = append(g.Normals, n.X, n.Y, n.Z)
			g.UVs = append(g.UVs, v.UV.X, v.UV.Y)
			if colored {
				col := Vector{1, 1, 1}
				if v.HasColor {
					col = v.Color
				}
				g.Colors = append(g.Colors, col.X, col.Y, col.Z)
			}
		}
		idx := buckets[p.Shared]
		for j := 2; j < len(p.Vertices); j++ {
			i1, i2 := base+uint32(j-1), base+uint32(j)
			if mirror {
				i1, i2 = i2, i1
			}
			idx = append(idx, base, i1, i2)
		}
		buckets[p.Shared] = idx
	}

	seen := make(map[Shared]bool, len(buckets))
	for tag := range buckets {
		seen[tag] = true
	}
	for _, tag := range orderedTags(seen) {
		idx := buckets[tag]
		g.Groups = append(g.Groups, Group{Start: len(g.Indices), Count: len(idx), MaterialIndex: int(tag)})
		g.Indices = append(g.Indices, idx...)
	}
	if g.Indices == nil {
		g.Indices = []uint32{}
	}
	g.ComputeBounds()
	return g
}

// orderedTags returns the keys of seen in ascending order with NoShared
// last.
func orderedTags(seen map[Shared]bool) []Shared {
	tags := make([]Shared, 0, len(seen))
	for tag := range seen {
		if tag != NoShared {
			tags = append(tags, tag)
		}
	}
	slices.Sort(tags)
	if seen[NoShared] {
		tags = append(tags, NoShared)
	}
	return tags
}

func vectorAt(a []float64, i int) Vector {
	return Vector{a[i], a[i+1], a[i+2]}
}

func transformPoint(m mgl64.Mat4, v Vector) Vector {
	return VectorFromMgl(mgl64.TransformCoordinate(v.Mgl(), m))
}

// transformNormal applies a normal matrix and renormalizes. Zero normals
// stay zero.
func transformNormal(nm mgl64.Mat3, v Vector) Vector {
	n := VectorFromMgl(nm.Mul3x1(v.Mgl()))
	if l := n.Length(); l > 0 && !math.IsInf(l, 0) {
		return n.DividedBy(l)
	}
	return n
}
