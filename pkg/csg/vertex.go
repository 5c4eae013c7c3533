package csg

// Vertex is a polygon corner. Normal is not renormalized after
// interpolation; consumers that need unit normals renormalize on output.
type Vertex struct {
	Pos    Vector
	Normal Vector
	UV     Vector // Z is unused
	Color  Vector // RGB, meaningful only when HasColor is set
	// HasColor marks vertices imported from meshes with a color attribute.
	HasColor bool
}

// NewVertex returns an uncolored vertex.
func NewVertex(pos, normal, uv Vector) Vertex {
	return Vertex{Pos: pos, Normal: normal, UV: uv}
}

// Flipped returns a copy of v with its normal reversed.
func (v Vertex) Flipped() Vertex {
	v.Normal = v.Normal.Negated()
	return v
}

// Interpolate returns the vertex a fraction t of the way from v to other.
// All attributes are interpolated by the same t; the result carries a
// color only when both endpoints do.
func (v Vertex) Interpolate(other Vertex, t float64) Vertex {
	out := Vertex{
		Pos:    v.Pos.Lerp(other.Pos, t),
		Normal: v.Normal.Lerp(other.Normal, t),
		UV:     v.UV.Lerp(other.UV, t),
	}
	if v.HasColor && other.HasColor {
		out.Color = v.Color.Lerp(other.Color, t)
		out.HasColor = true
	}
	return out
}
