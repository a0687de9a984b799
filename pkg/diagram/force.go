package diagram

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// LayoutOptions configures the force simulation.
type LayoutOptions struct {
	Width, Height float64
	LinkDistance  float64
	LinkStrength  float64
	Charge        float64 // negative repels
	Gravity       float64
	Theta         float64 // Barnes–Hut accuracy
	Friction      float64
	Seed          int64 // initial placement and jitter
}

// DefaultLayoutOptions returns the settings the editor uses.
func DefaultLayoutOptions() LayoutOptions {
	return LayoutOptions{
		Width:        800,
		Height:       500,
		LinkDistance: 140,
		LinkStrength: 1,
		Charge:       -500,
		Gravity:      0.05,
		Theta:        0.1,
		Friction:     0.9,
		Seed:         1,
	}
}

func (o LayoutOptions) withDefaults() LayoutOptions {
	def := DefaultLayoutOptions()
	if o.Width <= 0 {
		o.Width = def.Width
	}
	if o.Height <= 0 {
		o.Height = def.Height
	}
	if o.LinkDistance == 0 {
		o.LinkDistance = def.LinkDistance
	}
	if o.LinkStrength == 0 {
		o.LinkStrength = def.LinkStrength
	}
	if o.Charge == 0 {
		o.Charge = def.Charge
	}
	if o.Gravity == 0 {
		o.Gravity = def.Gravity
	}
	if o.Theta == 0 {
		o.Theta = def.Theta
	}
	if o.Friction == 0 {
		o.Friction = def.Friction
	}
	return o
}

const (
	resumeAlpha = 0.1
	alphaDecay  = 0.99
	alphaMin    = 0.005
)

// Layout is a velocity-Verlet force simulation over a diagram's nodes:
// link springs toward a rest length, many-body repulsion approximated with
// a quadtree, and weak gravity toward the canvas center.
//
// A Layout is not safe for concurrent use. Ticks never overlap; hosts drive
// them from their event loop or through Run.
type Layout struct {
	opts      LayoutOptions
	nodes     []*Node
	links     []*Edge
	alpha     float64
	rng       *rand.Rand
	listeners []func()
	ticks     int
}

// NewLayout creates a stopped simulation. Call Start to place nodes and
// begin.
func NewLayout(nodes []*Node, links []*Edge, opts LayoutOptions) *Layout {
	opts = opts.withDefaults()
	return &Layout{
		opts:  opts,
		nodes: nodes,
		links: links,
		rng:   rand.New(rand.NewSource(opts.Seed)),
	}
}

// Options returns the effective settings.
func (l *Layout) Options() LayoutOptions { return l.opts }

// Start computes node degrees, gives unplaced nodes a pseudo-random
// position inside the canvas, and resumes.
func (l *Layout) Start() {
	for i, n := range l.nodes {
		n.index = i
		n.weight = 0
	}
	for _, e := range l.links {
		e.Source.weight++
		e.Target.weight++
	}
	for _, n := range l.nodes {
		if n.placed {
			continue
		}
		n.X = l.rng.Float64() * l.opts.Width
		n.Y = l.rng.Float64() * l.opts.Height
		n.PX, n.PY = n.X, n.Y
		n.placed = true
	}
	l.Resume()
}

// Resume reheats the simulation.
func (l *Layout) Resume() { l.alpha = resumeAlpha }

// Stop halts the simulation; a later Resume continues it.
func (l *Layout) Stop() { l.alpha = 0 }

// Alpha returns the current cooling parameter; zero when stopped.
func (l *Layout) Alpha() float64 { return l.alpha }

// Running reports whether further ticks would move anything.
func (l *Layout) Running() bool { return l.alpha > 0 }

// Ticks returns how many ticks have run.
func (l *Layout) Ticks() int { return l.ticks }

// OnTick registers fn to run after each tick's forces are applied.
// Listeners run in registration order.
func (l *Layout) OnTick(fn func()) {
	l.listeners = append(l.listeners, fn)
}

// Tick advances the simulation by one step. It reports true once the
// simulation has cooled and stopped.
func (l *Layout) Tick() bool {
	if l.alpha <= 0 {
		return true
	}
	if l.alpha *= alphaDecay; l.alpha < alphaMin {
		l.alpha = 0
		return true
	}
	l.applyLinks()
	l.applyGravity()
	l.applyCharge()
	l.integrate()
	l.ticks++
	for _, fn := range l.listeners {
		fn()
	}
	return !l.Running()
}

// Run ticks every interval until the simulation stops or ctx is done.
func (l *Layout) Run(ctx context.Context, interval time.Duration) error {
	t := time.NewTicker(interval)
	defer t.Stop()
	for l.Running() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			l.Tick()
		}
	}
	return nil
}

// Settle ticks synchronously until the simulation stops or max ticks have
// run, and returns the number of ticks taken.
func (l *Layout) Settle(max int) int {
	start := l.ticks
	for l.ticks-start < max && !l.Tick() {
	}
	return l.ticks - start
}

// DragStart pins n so forces no longer move it.
func (l *Layout) DragStart(n *Node) {
	n.Fixed = true
	l.Resume()
}

// DragMove moves a dragged node to p.
func (l *Layout) DragMove(n *Node, p Vec) {
	n.X, n.Y = p.X, p.Y
	n.PX, n.PY = p.X, p.Y
	l.Resume()
}

// DragEnd releases the pointer; the node stays pinned.
func (l *Layout) DragEnd(n *Node) {
	n.Fixed = true
}

// applyLinks relaxes each link toward its rest length, moving the
// lower-degree end further.
func (l *Layout) applyLinks() {
	for _, e := range l.links {
		s, t := e.Source, e.Target
		x, y := t.X-s.X, t.Y-s.Y
		d2 := x*x + y*y
		if d2 == 0 {
			continue
		}
		d := math.Sqrt(d2)
		k := l.alpha * l.opts.LinkStrength * (d - l.opts.LinkDistance) / d
		x *= k
		y *= k
		w := 0.5
		if s.weight+t.weight > 0 {
			w = float64(s.weight) / float64(s.weight+t.weight)
		}
		t.X -= x * w
		t.Y -= y * w
		s.X += x * (1 - w)
		s.Y += y * (1 - w)
	}
}

func (l *Layout) applyGravity() {
	k := l.alpha * l.opts.Gravity
	if k == 0 {
		return
	}
	cx, cy := l.opts.Width/2, l.opts.Height/2
	for _, n := range l.nodes {
		n.X += (cx - n.X) * k
		n.Y += (cy - n.Y) * k
	}
}

func (l *Layout) applyCharge() {
	if l.opts.Charge == 0 || len(l.nodes) == 0 {
		return
	}
	root, b := buildQuadtree(l.nodes)
	l.accumulate(root)
	theta2 := l.opts.Theta * l.opts.Theta
	for _, n := range l.nodes {
		if n.Fixed {
			continue
		}
		root.visit(repulse(n, theta2), b.x1, b.y1, b.x2, b.y2)
	}
}

// accumulate computes each cell's total charge and charge-weighted center.
func (l *Layout) accumulate(q *quad) {
	var cx, cy float64
	q.charge = 0
	if !q.leaf {
		for _, c := range q.nodes {
			if c == nil {
				continue
			}
			l.accumulate(c)
			q.charge += c.charge
			cx += c.charge * c.cx
			cy += c.charge * c.cy
		}
	}
	if p := q.point; p != nil {
		// jitter a point sharing its cell so coincident nodes separate
		if !q.leaf {
			p.X += l.rng.Float64() - .5
			p.Y += l.rng.Float64() - .5
		}
		k := l.alpha * l.opts.Charge
		q.pointCharge = k
		q.charge += k
		cx += k * p.X
		cy += k * p.Y
	}
	q.cx = cx / q.charge
	q.cy = cy / q.charge
}

// repulse applies the charge of distant cells in aggregate. It adjusts the
// previous position, which the integrator turns into velocity.
func repulse(n *Node, theta2 float64) func(q *quad, x1, y1, x2, y2 float64) bool {
	return func(q *quad, x1, _, x2, _ float64) bool {
		if q.point != n {
			dx, dy := q.cx-n.X, q.cy-n.Y
			dw := x2 - x1
			dn := dx*dx + dy*dy
			if dw*dw/theta2 < dn {
				k := q.charge / dn
				n.PX -= dx * k
				n.PY -= dy * k
				return true
			}
			if q.point != nil && dn != 0 {
				k := q.pointCharge / dn
				n.PX -= dx * k
				n.PY -= dy * k
			}
		}
		return q.charge == 0
	}
}

func (l *Layout) integrate() {
	f := l.opts.Friction
	for _, n := range l.nodes {
		if n.Fixed {
			n.X, n.Y = n.PX, n.PY
			continue
		}
		px, py := n.PX, n.PY
		n.PX, n.PY = n.X, n.Y
		n.X -= (px - n.X) * f
		n.Y -= (py - n.Y) * f
	}
}
