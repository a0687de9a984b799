package diagram

// PositionEntry is the saved placement of one node.
type PositionEntry struct {
	X     float64 `json:"x" yaml:"x"`
	Y     float64 `json:"y" yaml:"y"`
	PX    float64 `json:"px" yaml:"px"`
	PY    float64 `json:"py" yaml:"py"`
	Fixed bool    `json:"fixed" yaml:"fixed"`
}

// PositionTable maps node keys to placements.
type PositionTable map[string]PositionEntry

// Positions captures the placement of every node.
func (d *Diagram) Positions() PositionTable {
	t := make(PositionTable, len(d.Nodes))
	for i, n := range d.set.nodes {
		t[d.set.keys[i]] = PositionEntry{X: n.X, Y: n.Y, PX: n.PX, PY: n.PY, Fixed: n.Fixed}
	}
	return t
}

// SetPositions restores placements onto the current nodes in place, then
// wakes the layout once. Unknown keys are ignored; nodes without an entry
// keep their placement.
func (d *Diagram) SetPositions(t PositionTable) {
	for key, p := range t {
		n, ok := d.byKey[key]
		if !ok {
			continue
		}
		n.X, n.Y = p.X, p.Y
		n.PX, n.PY = p.PX, p.PY
		n.Fixed = p.Fixed
		n.placed = true
	}
	d.layout.Resume()
}
