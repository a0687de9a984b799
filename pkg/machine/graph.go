package machine

import "strings"

// EdgeSpec groups the transitions between one ordered pair of states.
type EdgeSpec struct {
	From, To string
	Labels   []string // one per read key, in table order
}

// Edges groups the table's transitions by (from, to) pair in order of first
// appearance. Transitions into states missing from the table are skipped;
// Validate reports them.
func (d *Definition) Edges() []EdgeSpec {
	var edges []EdgeSpec
	index := make(map[[2]string]int)
	for _, s := range d.Table {
		for _, t := range s.Transitions {
			to := t.Target(s.Name)
			if !d.HasState(to) {
				continue
			}
			key := [2]string{s.Name, to}
			i, ok := index[key]
			if !ok {
				i = len(edges)
				index[key] = i
				edges = append(edges, EdgeSpec{From: s.Name, To: to})
			}
			edges[i].Labels = append(edges[i].Labels, t.Label())
		}
	}
	return edges
}

// ParseLabel splits an edge label produced by Transition.Label back into
// its read key, optional write symbol and move.
func ParseLabel(label string) (read, write string, hasWrite bool, move Direction) {
	read, rest, _ := strings.Cut(label, "→")
	if i := strings.LastIndex(rest, ","); i >= 0 {
		return read, rest[:i], true, Direction(rest[i+1:])
	}
	return read, "", false, Direction(rest)
}
