// Package diagram lays out and draws a state machine as a force-directed
// graph: circles for states, labeled paths for transitions.
package diagram

import (
	"math"
	"sort"
	"strconv"

	"github.com/Bubbleman532/turing-sandbox/pkg/machine"
)

// DefaultNodeRadius is the state circle radius in user units.
const DefaultNodeRadius = 20

// Target draws a diagram after each tick.
type Target interface {
	Draw(d *Diagram)
}

// Options configures a Diagram.
type Options struct {
	NodeRadius float64
	Layout     LayoutOptions
}

// NodeSet is the node collection a diagram is built from. Its keys name
// nodes in position tables.
type NodeSet struct {
	nodes []*Node
	keys  []string
}

// NodeList keys nodes by their index.
func NodeList(nodes ...*Node) NodeSet {
	keys := make([]string, len(nodes))
	for i := range nodes {
		keys[i] = strconv.Itoa(i)
	}
	return NodeSet{nodes: nodes, keys: keys}
}

// NodeMap keys nodes by map key, ordered by key.
func NodeMap(m map[string]*Node) NodeSet {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	nodes := make([]*Node, len(keys))
	for i, k := range keys {
		nodes[i] = m[k]
	}
	return NodeSet{nodes: nodes, keys: keys}
}

// KeyedNodes keys nodes by label, keeping their order.
func KeyedNodes(nodes ...*Node) NodeSet {
	keys := make([]string, len(nodes))
	for i, n := range nodes {
		keys[i] = n.Label
	}
	return NodeSet{nodes: nodes, keys: keys}
}

// Len returns the number of nodes.
func (s NodeSet) Len() int { return len(s.nodes) }

// Diagram is one laid-out instance of a graph. It is rebuilt wholesale
// whenever the graph's adjacency changes.
type Diagram struct {
	Nodes []*Node
	Edges []*Edge

	set    NodeSet
	byKey  map[string]*Node
	target Target
	index  *AdjacencyIndex
	layout *Layout
	radius float64
}

// New classifies every edge, binds its geometry, and starts the layout.
// target may be nil.
func New(target Target, nodes NodeSet, edges []*Edge, opts Options) *Diagram {
	if opts.NodeRadius <= 0 {
		opts.NodeRadius = DefaultNodeRadius
	}
	d := &Diagram{
		Nodes:  nodes.nodes,
		Edges:  edges,
		set:    nodes,
		byKey:  make(map[string]*Node, len(nodes.nodes)),
		target: target,
		radius: opts.NodeRadius,
	}
	for i, n := range nodes.nodes {
		n.index = i
		d.byKey[nodes.keys[i]] = n
	}

	d.index = NewAdjacencyIndex(edges)
	for _, e := range edges {
		e.shape = d.index.ShapeFor(e)
		e.path = pathFor(d.radius, e.shape, e)
		e.bindLabels()
	}

	d.layout = NewLayout(d.Nodes, edges, opts.Layout)
	d.layout.OnTick(d.tick)
	d.layout.Start()
	return d
}

// FromMachine builds a diagram with one node per state, keyed by state
// name, and one edge per connected state pair.
func FromMachine(def *machine.Definition, target Target, opts Options) *Diagram {
	names := def.StateNames()
	nodes := make([]*Node, len(names))
	byName := make(map[string]*Node, len(names))
	for i, name := range names {
		nodes[i] = NewNode(name)
		byName[name] = nodes[i]
	}
	var edges []*Edge
	for _, spec := range def.Edges() {
		from, to := byName[spec.From], byName[spec.To]
		if from == nil || to == nil {
			continue
		}
		edges = append(edges, NewEdge(from, to, spec.Labels...))
	}
	return New(target, KeyedNodes(nodes...), edges, opts)
}

// tick keeps nodes on the canvas, then updates edge geometry and labels.
func (d *Diagram) tick() {
	w, h := d.layout.opts.Width, d.layout.opts.Height
	allFixed := true
	for _, n := range d.Nodes {
		if n.Fixed {
			continue
		}
		allFixed = false
		n.X = limitRange(d.radius, w-d.radius, n.X)
		n.Y = limitRange(d.radius, h-d.radius, n.Y)
	}
	for _, e := range d.Edges {
		e.d = e.Path()
		e.RefreshLabels()
	}
	// nothing is left to simulate once every node is pinned
	if allFixed {
		d.layout.Stop()
	}
	if d.target != nil {
		d.target.Draw(d)
	}
}

// Layout returns the simulation, for hosts that resume or stop it.
func (d *Diagram) Layout() *Layout { return d.layout }

// Adjacency returns the index edges were classified with.
func (d *Diagram) Adjacency() *AdjacencyIndex { return d.index }

// Radius returns the node radius.
func (d *Diagram) Radius() float64 { return d.radius }

// Size returns the canvas size.
func (d *Diagram) Size() (w, h float64) {
	return d.layout.opts.Width, d.layout.opts.Height
}

// Node returns the node with the given label, or nil.
func (d *Diagram) Node(label string) *Node {
	for _, n := range d.Nodes {
		if n.Label == label {
			return n
		}
	}
	return nil
}

// NodeAt returns the topmost node whose circle contains p, or nil.
func (d *Diagram) NodeAt(p Vec) *Node {
	for i := len(d.Nodes) - 1; i >= 0; i-- {
		if p.Sub(d.Nodes[i].Pos()).Norm() <= d.radius {
			return d.Nodes[i]
		}
	}
	return nil
}

// EdgeAt returns the edge whose path passes closest to p within tol, or nil.
func (d *Diagram) EdgeAt(p Vec, tol float64) *Edge {
	var best *Edge
	bestDist := math.Inf(1)
	for _, e := range d.Edges {
		pts := e.Points(24)
		if len(pts) < 2 {
			continue
		}
		if dist := distToPolyline(p, pts); dist <= tol && dist < bestDist {
			best, bestDist = e, dist
		}
	}
	return best
}

// DragStart pins n and wakes the layout.
func (d *Diagram) DragStart(n *Node) { d.layout.DragStart(n) }

// DragMove moves n to p, kept on the canvas.
func (d *Diagram) DragMove(n *Node, p Vec) {
	w, h := d.Size()
	p.X = limitRange(d.radius, w-d.radius, p.X)
	p.Y = limitRange(d.radius, h-d.radius, p.Y)
	d.layout.DragMove(n, p)
}

// DragEnd leaves n pinned where it was dropped.
func (d *Diagram) DragEnd(n *Node) { d.layout.DragEnd(n) }
