package csg

// Node is a node in a BSP tree. The tree as a whole represents a solid:
// the region behind every plane on the path to a missing back child is
// inside, everything else is outside. Polygons stored at a node lie on its
// plane.
//
// Front and back children are owned exclusively by their parent. All
// traversals use explicit work stacks instead of recursion so that badly
// balanced trees cannot exhaust the goroutine stack.
type Node struct {
	plane    *Plane
	front    *Node
	back     *Node
	polygons []*Polygon
}

// NewNode builds a BSP tree from polygons. A nil or empty list yields an
// empty tree, which clips nothing.
func NewNode(polygons []*Polygon) *Node {
	n := &Node{}
	n.Build(polygons)
	return n
}

// Plane returns the splitting plane, or nil for an empty tree.
func (n *Node) Plane() *Plane {
	return n.plane
}

// Clone returns a deep copy of the tree.
func (n *Node) Clone() *Node {
	root := &Node{}
	type pair struct{ src, dst *Node }
	stack := []pair{{n, root}}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if p.src.plane != nil {
			pl := *p.src.plane
			p.dst.plane = &pl
		}
		p.dst.polygons = clonePolygons(p.src.polygons)
		if p.src.front != nil {
			p.dst.front = &Node{}
			stack = append(stack, pair{p.src.front, p.dst.front})
		}
		if p.src.back != nil {
			p.dst.back = &Node{}
			stack = append(stack, pair{p.src.back, p.dst.back})
		}
	}
	return root
}

// Invert converts solid space to empty space and empty space to solid
// space.
func (n *Node) Invert() {
	n.walk(func(node *Node) {
		for _, p := range node.polygons {
			p.Flip()
		}
		if node.plane != nil {
			node.plane.Flip()
		}
		node.front, node.back = node.back, node.front
	})
}

// ClipPolygons removes the parts of polygons that are inside the solid
// described by this tree and returns what remains. Input polygons may be
// split; the input slice itself is not modified.
func (n *Node) ClipPolygons(polygons []*Polygon) []*Polygon {
	if n.plane == nil {
		out := make([]*Polygon, len(polygons))
		copy(out, polygons)
		return out
	}

	type task struct {
		node     *Node // nil means the polygons survive as they are
		polygons []*Polygon
	}
	var out []*Polygon
	stack := []task{{n, polygons}}
	for len(stack) > 0 {
		t := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if t.node == nil || t.node.plane == nil {
			out = append(out, t.polygons...)
			continue
		}

		var f, b []*Polygon
		for _, p := range t.polygons {
			t.node.plane.SplitPolygon(p, &f, &b, &f, &b)
		}
		// Back fragments with no back child are inside the solid and are
		// dropped. Front is pushed last so it is emitted first.
		if t.node.back != nil && len(b) > 0 {
			stack = append(stack, task{t.node.back, b})
		}
		if len(f) > 0 {
			stack = append(stack, task{t.node.front, f})
		}
	}
	return out
}

// ClipTo removes every polygon in this tree that is inside the solid
// described by other.
func (n *Node) ClipTo(other *Node) {
	n.walk(func(node *Node) {
		node.polygons = other.ClipPolygons(node.polygons)
	})
}

// AllPolygons returns every polygon in the tree, depth first with front
// subtrees before back subtrees.
func (n *Node) AllPolygons() []*Polygon {
	var out []*Polygon
	stack := []*Node{n}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out = append(out, node.polygons...)
		if node.back != nil {
			stack = append(stack, node.back)
		}
		if node.front != nil {
			stack = append(stack, node.front)
		}
	}
	return out
}

// Build adds polygons to the tree. When called on an existing tree the new
// polygons are filtered down to the bottom of the tree and become new
// nodes there. Each set of polygons is partitioned using the plane of its
// first polygon; no heuristic is used to pick a good split.
func (n *Node) Build(polygons []*Polygon) {
	type task struct {
		node     *Node
		polygons []*Polygon
	}
	stack := []task{{n, polygons}}
	for len(stack) > 0 {
		t := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if len(t.polygons) == 0 {
			continue
		}
		node := t.node
		if node.plane == nil {
			pl := t.polygons[0].Plane
			node.plane = &pl
		}
		var f, b []*Polygon
		for _, p := range t.polygons {
			node.plane.SplitPolygon(p, &f, &b, &node.polygons, &node.polygons)
		}
		if len(f) > 0 {
			if node.front == nil {
				node.front = &Node{}
			}
			stack = append(stack, task{node.front, f})
		}
		if len(b) > 0 {
			if node.back == nil {
				node.back = &Node{}
			}
			stack = append(stack, task{node.back, b})
		}
	}
}

// Depth returns the number of levels in the tree.
func (n *Node) Depth() int {
	type item struct {
		node  *Node
		depth int
	}
	max := 0
	stack := []item{{n, 1}}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if it.depth > max {
			max = it.depth
		}
		if it.node.front != nil {
			stack = append(stack, item{it.node.front, it.depth + 1})
		}
		if it.node.back != nil {
			stack = append(stack, item{it.node.back, it.depth + 1})
		}
	}
	return max
}

// walk visits every node of the tree once. Children are read after fn
// returns, so fn may swap them.
func (n *Node) walk(fn func(*Node)) {
	stack := []*Node{n}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		fn(node)
		if node.front != nil {
			stack = append(stack, node.front)
		}
		if node.back != nil {
			stack = append(stack, node.back)
		}
	}
}

func clonePolygons(polygons []*Polygon) []*Polygon {
	if polygons == nil {
		return nil
	}
	out := make([]*Polygon, len(polygons))
	for i, p := range polygons {
		out[i] = p.Clone()
	}
	return out
}
