package diagram

// Shape classifies how an edge is drawn.
type Shape int

const (
	ShapeLoop     Shape = iota // self-loop: a->a
	ShapeArc                   // curved arc: a->b when b->a exists
	ShapeStraight              // straight edge: a->b when b->a does not exist
)

func (s Shape) String() string {
	switch s {
	case ShapeLoop:
		return "loop"
	case ShapeArc:
		return "arc"
	case ShapeStraight:
		return "straight"
	}
	return "unknown"
}

type nodePair struct {
	from, to *Node
}

// AdjacencyIndex counts directed edges per ordered node pair.
// Pairs are keyed by node identity, not label, so transiently duplicated
// labels never merge counts.
type AdjacencyIndex struct {
	counts map[nodePair]int
}

// NewAdjacencyIndex builds the index in one pass over edges.
func NewAdjacencyIndex(edges []*Edge) *AdjacencyIndex {
	idx := &AdjacencyIndex{counts: make(map[nodePair]int, len(edges))}
	for _, e := range edges {
		idx.counts[nodePair{e.Source, e.Target}]++
	}
	return idx
}

// Count returns the number of edges from -> to.
func (a *AdjacencyIndex) Count(from, to *Node) int {
	return a.counts[nodePair{from, to}]
}

// ShapeFor classifies e against the snapshot the index was built from.
func (a *AdjacencyIndex) ShapeFor(e *Edge) Shape {
	switch {
	case e.Source == e.Target:
		return ShapeLoop
	case a.Count(e.Target, e.Source) > 0:
		return ShapeArc
	default:
		return ShapeStraight
	}
}
