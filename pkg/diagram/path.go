package diagram

import (
	"math"
	"strconv"
	"strings"
)

type segKind int

const (
	segNone segKind = iota
	segLine
	segArc
	segLoop
)

// segment is one evaluated edge path. It renders to SVG path data and can
// be sampled for raster and terminal output.
type segment struct {
	kind     segKind
	from, to Vec
	rel      Vec // relative end offset of a loop
	rx, ry   float64
	rot      float64 // degrees
	large    bool
	sweep    bool
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func flag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func (s segment) svg() string {
	var sb strings.Builder
	switch s.kind {
	case segLine:
		sb.WriteString("M " + num(s.from.X) + " " + num(s.from.Y))
		sb.WriteString(" L " + num(s.to.X) + " " + num(s.to.Y))
	case segArc:
		sb.WriteString("M " + num(s.from.X) + " " + num(s.from.Y))
		sb.WriteString(" A " + num(s.rx) + " " + num(s.ry) + " " + num(s.rot) + " ")
		sb.WriteString(flag(s.large) + "," + flag(s.sweep) + " ")
		sb.WriteString(num(s.to.X) + " " + num(s.to.Y))
	case segLoop:
		sb.WriteString("M " + num(s.from.X) + "," + num(s.from.Y))
		sb.WriteString(" a " + num(s.rx) + "," + num(s.ry) + " " + num(s.rot) + " ")
		sb.WriteString(flag(s.large) + "," + flag(s.sweep) + " ")
		sb.WriteString(num(s.rel.X) + "," + num(s.rel.Y))
	}
	return sb.String()
}

func (s segment) sample(n int) []Vec {
	if n < 1 {
		n = 1
	}
	switch s.kind {
	case segLine:
		return []Vec{s.from, s.to}
	case segArc, segLoop:
		return arcPoints(s.from, s.to, s.rx, s.ry, s.rot, s.large, s.sweep, n)
	}
	return nil
}

// Self-loop geometry: starts at the top of the node (90°) and ends slightly
// above the right (15°), as an elliptical arc rotated 45°.
const (
	loopRX    = 19
	loopRY    = 27
	loopRot   = 45
	loopEndAt = -15 // degrees
)

// Arc geometry: endpoints sit 45° off the center line, half of a 90°
// separation on each side, so opposite edges don't overlap.
const (
	arcSeparation  = -math.Pi / 2 / 2
	arcRadiusScale = 6.0 / 5.0
)

// pathFor creates the function that computes an edge's geometry each tick.
// The closures read node coordinates at call time.
func pathFor(nodeRadius float64, shape Shape, e *Edge) func() segment {
	switch shape {
	case ShapeLoop:
		endOffset := Polar(nodeRadius, deg(loopEndAt))
		rel := Vec{endOffset.X, endOffset.Y + nodeRadius}
		return func() segment {
			return loopSegment(e.Source.Pos(), nodeRadius, rel)
		}
	case ShapeArc:
		return func() segment {
			p1 := e.Source.Pos()
			p2 := e.Target.Pos()
			offset := p2.Sub(p1)
			radius := arcRadiusScale * offset.Norm()
			angle := offset.Angle()
			source := p1.Add(Polar(nodeRadius, angle+arcSeparation))
			target := p2.Add(Polar(nodeRadius, angle+math.Pi-arcSeparation))
			if p1.X <= p2.X {
				return segment{kind: segArc, from: source, to: target, rx: radius, ry: radius, sweep: true}
			}
			// swap ends and sweep, not radius or angle, so the curve stays
			// continuous as the nodes cross
			return segment{kind: segArc, from: target, to: source, rx: radius, ry: radius, sweep: false}
		}
	default:
		return func() segment {
			p1 := e.Source.Pos()
			p2 := e.Target.Pos()
			offset := p2.Sub(p1)
			// bounding can make node centers coincide
			if offset.IsZero() {
				return segment{kind: segNone}
			}
			// only the destination reserves room for the arrowhead
			target := p2.Sub(offset.Unit().Scale(nodeRadius))
			return segment{kind: segLine, from: p1, to: target}
		}
	}
}

func loopSegment(center Vec, nodeRadius float64, rel Vec) segment {
	start := Vec{center.X, center.Y - nodeRadius}
	return segment{
		kind:  segLoop,
		from:  start,
		to:    start.Add(rel),
		rel:   rel,
		rx:    loopRX,
		ry:    loopRY,
		rot:   loopRot,
		large: true,
		sweep: true,
	}
}

// LoopPath returns the self-loop path for a node at center, used for the
// connect-mode preview over the origin node.
func LoopPath(center Vec, nodeRadius float64) string {
	endOffset := Polar(nodeRadius, deg(loopEndAt))
	return loopSegment(center, nodeRadius, Vec{endOffset.X, endOffset.Y + nodeRadius}).svg()
}

// LinePath returns straight path data from a to b, used for the connect-mode
// preview line.
func LinePath(a, b Vec) string {
	return "M" + num(a.X) + "," + num(a.Y) + "L" + num(b.X) + "," + num(b.Y)
}

// arcPoints samples an SVG elliptical arc from p1 to p2 using the
// endpoint-to-center conversion of the SVG implementation notes.
func arcPoints(p1, p2 Vec, rx, ry, rotDeg float64, large, sweep bool, n int) []Vec {
	if p1 == p2 {
		return nil
	}
	rx, ry = math.Abs(rx), math.Abs(ry)
	if rx == 0 || ry == 0 {
		return []Vec{p1, p2}
	}
	phi := deg(rotDeg)
	cosP, sinP := math.Cos(phi), math.Sin(phi)

	dx2 := (p1.X - p2.X) / 2
	dy2 := (p1.Y - p2.Y) / 2
	x1p := cosP*dx2 + sinP*dy2
	y1p := -sinP*dx2 + cosP*dy2

	// scale radii up when they cannot span the endpoints
	if lambda := x1p*x1p/(rx*rx) + y1p*y1p/(ry*ry); lambda > 1 {
		s := math.Sqrt(lambda)
		rx *= s
		ry *= s
	}

	numer := rx*rx*ry*ry - rx*rx*y1p*y1p - ry*ry*x1p*x1p
	denom := rx*rx*y1p*y1p + ry*ry*x1p*x1p
	coef := 0.0
	if numer > 0 && denom > 0 {
		coef = math.Sqrt(numer / denom)
	}
	if large == sweep {
		coef = -coef
	}
	cxp := coef * rx * y1p / ry
	cyp := coef * -ry * x1p / rx

	cx := cosP*cxp - sinP*cyp + (p1.X+p2.X)/2
	cy := sinP*cxp + cosP*cyp + (p1.Y+p2.Y)/2

	u := Vec{(x1p - cxp) / rx, (y1p - cyp) / ry}
	v := Vec{(-x1p - cxp) / rx, (-y1p - cyp) / ry}
	theta1 := angleBetween(Vec{1, 0}, u)
	dtheta := angleBetween(u, v)
	if !sweep && dtheta > 0 {
		dtheta -= 2 * math.Pi
	} else if sweep && dtheta < 0 {
		dtheta += 2 * math.Pi
	}

	pts := make([]Vec, 0, n+1)
	for i := 0; i <= n; i++ {
		t := theta1 + dtheta*float64(i)/float64(n)
		ct, st := math.Cos(t), math.Sin(t)
		pts = append(pts, Vec{
			X: cosP*rx*ct - sinP*ry*st + cx,
			Y: sinP*rx*ct + cosP*ry*st + cy,
		})
	}
	// pin the ends exactly
	pts[0], pts[n] = p1, p2
	return pts
}

func angleBetween(u, v Vec) float64 {
	return math.Atan2(u.X*v.Y-u.Y*v.X, u.X*v.X+u.Y*v.Y)
}
