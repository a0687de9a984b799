package diagram

import "math"

// quad is a Barnes–Hut quadtree cell. A leaf holds at most one node; an
// internal cell may still hold a node when another node landed on
// (almost) the same spot.
type quad struct {
	leaf  bool
	point *Node
	x, y  float64
	nodes [4]*quad

	charge      float64
	pointCharge float64
	cx, cy      float64
}

type quadBounds struct {
	x1, y1, x2, y2 float64
}

// buildQuadtree indexes nodes over their square bounding extent.
func buildQuadtree(nodes []*Node) (*quad, quadBounds) {
	b := quadBounds{math.Inf(1), math.Inf(1), math.Inf(-1), math.Inf(-1)}
	for _, n := range nodes {
		b.x1 = math.Min(b.x1, n.X)
		b.y1 = math.Min(b.y1, n.Y)
		b.x2 = math.Max(b.x2, n.X)
		b.y2 = math.Max(b.y2, n.Y)
	}
	// squarify
	dx, dy := b.x2-b.x1, b.y2-b.y1
	if dx > dy {
		b.y2 = b.y1 + dx
	} else {
		b.x2 = b.x1 + dy
	}

	root := &quad{leaf: true}
	for _, n := range nodes {
		root.insert(n, n.X, n.Y, b.x1, b.y1, b.x2, b.y2)
	}
	return root, b
}

func (q *quad) insert(n *Node, x, y, x1, y1, x2, y2 float64) {
	if math.IsNaN(x) || math.IsNaN(y) {
		return
	}
	if !q.leaf {
		q.insertChild(n, x, y, x1, y1, x2, y2)
		return
	}
	if q.point == nil {
		q.point, q.x, q.y = n, x, y
		return
	}
	// a coincident point stays on this cell and the new one goes below it,
	// avoiding unbounded recursion
	if math.Abs(q.x-x)+math.Abs(q.y-y) < .01 {
		q.insertChild(n, x, y, x1, y1, x2, y2)
		return
	}
	old, ox, oy := q.point, q.x, q.y
	q.point = nil
	q.insertChild(old, ox, oy, x1, y1, x2, y2)
	q.insertChild(n, x, y, x1, y1, x2, y2)
}

func (q *quad) insertChild(n *Node, x, y, x1, y1, x2, y2 float64) {
	xm, ym := (x1+x2)*.5, (y1+y2)*.5
	right, below := x >= xm, y >= ym
	i := 0
	if below {
		i |= 2
	}
	if right {
		i |= 1
	}
	q.leaf = false
	child := q.nodes[i]
	if child == nil {
		child = &quad{leaf: true}
		q.nodes[i] = child
	}
	if right {
		x1 = xm
	} else {
		x2 = xm
	}
	if below {
		y1 = ym
	} else {
		y2 = ym
	}
	child.insert(n, x, y, x1, y1, x2, y2)
}

// visit walks the tree pre-order; children are skipped when fn returns
// true.
func (q *quad) visit(fn func(q *quad, x1, y1, x2, y2 float64) bool, x1, y1, x2, y2 float64) {
	if fn(q, x1, y1, x2, y2) {
		return
	}
	sx, sy := (x1+x2)*.5, (y1+y2)*.5
	if c := q.nodes[0]; c != nil {
		c.visit(fn, x1, y1, sx, sy)
	}
	if c := q.nodes[1]; c != nil {
		c.visit(fn, sx, y1, x2, sy)
	}
	if c := q.nodes[2]; c != nil {
		c.visit(fn, x1, sy, sx, y2)
	}
	if c := q.nodes[3]; c != nil {
		c.visit(fn, sx, sy, x2, y2)
	}
}
