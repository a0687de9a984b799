package diagram

import "math"

// LabelPlacement is the text placement of one edge label relative to its
// path. Dy is in em; Rotate180 turns the label about its own center;
// Translate is in user units.
type LabelPlacement struct {
	Text      string
	Dy        float64
	Rotate180 bool
	Translate Vec
}

func labelAbove(i int) float64 { return -1.1 * float64(i+1) }
func labelBelow(i int) float64 { return 0.6 + 1.1*float64(i+1) }

type flipState int

const (
	flipUnknown flipState = iota
	flipOff
	flipOn
)

// bindLabels sets the initial placement and the per-tick refresh for e.
//
// Label positioning varies by shape to keep per-tick work small:
// straight edges use a fixed dy and only rotate when upside-down; loops
// have fixed geometry, so a fixed translate set once suffices; arcs bend
// with node movement but are shallow enough that switching between two
// fixed dy values looks right.
func (e *Edge) bindLabels() {
	e.placements = make([]LabelPlacement, len(e.Labels))
	for i, text := range e.Labels {
		e.placements[i].Text = text
	}
	switch e.shape {
	case ShapeStraight:
		for i := range e.placements {
			e.placements[i].Dy = labelAbove(i)
		}
		e.refresh = func() {
			// flip labels that would read upside-down
			flip := e.Target.X < e.Source.X
			for i := range e.placements {
				e.placements[i].Rotate180 = flip
			}
			e.labelUpdates++
		}
	case ShapeArc:
		var flipped flipState
		e.refresh = func() {
			shouldFlip := e.Target.X < e.Source.X
			want := flipOff
			if shouldFlip {
				want = flipOn
			}
			if want == flipped {
				return
			}
			e.reversed = shouldFlip
			for i := range e.placements {
				if shouldFlip {
					e.placements[i].Dy = labelBelow(i)
				} else {
					e.placements[i].Dy = labelAbove(i)
				}
			}
			flipped = want
			e.labelUpdates++
		}
	case ShapeLoop:
		for i := range e.placements {
			k := 8 * float64(i+1)
			e.placements[i].Translate = Vec{k, -k}
		}
		e.refresh = func() {}
	}
}

// LabelPosition returns an anchor for label i for hosts that draw
// horizontal text instead of text on a path: the path midpoint pushed along
// the path normal by the label's dy at the given em size, plus its
// translate.
func (e *Edge) LabelPosition(i int, em float64) (Vec, bool) {
	if i < 0 || i >= len(e.placements) {
		return Vec{}, false
	}
	pts := e.Points(24)
	if len(pts) < 2 {
		return Vec{}, false
	}
	mid, dir := midpoint(pts)
	p := e.placements[i]
	// text "down" for a path heading along dir
	down := Vec{-dir.Y, dir.X}
	return mid.Add(down.Scale(p.Dy * em)).Add(p.Translate), true
}

// midpoint returns the point halfway along a polyline and the unit
// direction there.
func midpoint(pts []Vec) (Vec, Vec) {
	total := 0.0
	for i := 1; i < len(pts); i++ {
		total += pts[i].Sub(pts[i-1]).Norm()
	}
	half := total / 2
	for i := 1; i < len(pts); i++ {
		seg := pts[i].Sub(pts[i-1])
		l := seg.Norm()
		if l == 0 {
			continue
		}
		if half <= l {
			return pts[i-1].Add(seg.Scale(half / l)), seg.Scale(1 / l)
		}
		half -= l
	}
	last := pts[len(pts)-1].Sub(pts[len(pts)-2])
	if last.IsZero() {
		return pts[len(pts)-1], Vec{1, 0}
	}
	return pts[len(pts)-1], last.Unit()
}

// distToPolyline returns the distance from p to the nearest polyline
// segment.
func distToPolyline(p Vec, pts []Vec) float64 {
	best := math.Inf(1)
	for i := 1; i < len(pts); i++ {
		a, b := pts[i-1], pts[i]
		ab := b.Sub(a)
		t := 0.0
		if l := ab.NormSq(); l > 0 {
			t = limitRange(0, 1, p.Sub(a).X*ab.X/l+p.Sub(a).Y*ab.Y/l)
		}
		if d := p.Sub(a.Add(ab.Scale(t))).Norm(); d < best {
			best = d
		}
	}
	return best
}
