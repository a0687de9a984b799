package diagram

// Node is a state circle. X/Y are live coordinates mutated by the layout;
// PX/PY hold the previous position used by the Verlet integrator.
type Node struct {
	Label  string
	X, Y   float64
	PX, PY float64
	Fixed  bool // pinned: excluded from simulation-driven movement

	Handle   any  // opaque host render handle
	Selected bool // selection marker drawn by hosts

	index  int
	weight int
	placed bool
}

// NewNode returns an unplaced node; the layout assigns its first position.
func NewNode(label string) *Node {
	return &Node{Label: label}
}

// Index is the node's position in its diagram's node list.
func (n *Node) Index() int { return n.index }

// Pos returns the current center.
func (n *Node) Pos() Vec { return Vec{n.X, n.Y} }

// Place sets the position and marks the node as placed so the layout keeps
// it on start.
func (n *Node) Place(x, y float64) {
	n.X, n.Y = x, y
	n.PX, n.PY = x, y
	n.placed = true
}

// Edge is a directed transition group between two nodes, one label per
// parallel transition.
type Edge struct {
	Source, Target *Node
	Labels         []string

	Handle   any
	Selected bool

	shape      Shape
	path       func() segment
	refresh    func()
	placements []LabelPlacement
	reversed   bool
	d          string

	labelUpdates int
}

// NewEdge returns an edge; its shape and geometry are bound when a diagram
// is built around it.
func NewEdge(source, target *Node, labels ...string) *Edge {
	return &Edge{Source: source, Target: target, Labels: labels}
}

// Shape returns the classification made when the diagram was built.
func (e *Edge) Shape() Shape { return e.shape }

// Path evaluates the edge's SVG path data against the current node
// positions. It is empty when the endpoints of a straight edge coincide.
func (e *Edge) Path() string {
	if e.path == nil {
		return ""
	}
	return e.path().svg()
}

// PathData returns the path computed by the most recent tick.
func (e *Edge) PathData() string { return e.d }

// Points samples the current geometry as a polyline in drawing order.
// Reversed arcs are drawn from target to source.
func (e *Edge) Points(n int) []Vec {
	if e.path == nil {
		return nil
	}
	return e.path().sample(n)
}

// RefreshLabels updates label placement for the current positions.
func (e *Edge) RefreshLabels() {
	if e.refresh != nil {
		e.refresh()
	}
}

// Placements returns the current placement of each label.
func (e *Edge) Placements() []LabelPlacement { return e.placements }

// Reversed reports whether an arc is currently drawn target to source, in
// which case its arrowhead sits at the path start.
func (e *Edge) Reversed() bool { return e.reversed }
