package diagram

import (
	"fmt"
	"testing"
)

func edgeKey(e *Edge) string {
	return e.Source.Label + "->" + e.Target.Label
}

func TestShapeClassification(t *testing.T) {
	a, b, c := NewNode("a"), NewNode("b"), NewNode("c")

	tests := []struct {
		name  string
		edges []*Edge
		want  map[string]Shape
	}{
		{
			name:  "single edge is straight",
			edges: []*Edge{NewEdge(a, b)},
			want:  map[string]Shape{"a->b": ShapeStraight},
		},
		{
			name:  "mirrored pair is arc both ways",
			edges: []*Edge{NewEdge(a, b), NewEdge(b, a)},
			want:  map[string]Shape{"a->b": ShapeArc, "b->a": ShapeArc},
		},
		{
			name:  "self loop",
			edges: []*Edge{NewEdge(a, a)},
			want:  map[string]Shape{"a->a": ShapeLoop},
		},
		{
			// a self loop is its own mirror
			name:  "duplicated self loop stays loop",
			edges: []*Edge{NewEdge(a, a), NewEdge(a, a)},
			want:  map[string]Shape{"a->a": ShapeLoop},
		},
		{
			name: "mixed",
			edges: []*Edge{
				NewEdge(a, b), NewEdge(b, c), NewEdge(c, b), NewEdge(c, c), NewEdge(c, a),
			},
			want: map[string]Shape{
				"a->b": ShapeStraight,
				"b->c": ShapeArc,
				"c->b": ShapeArc,
				"c->c": ShapeLoop,
				"c->a": ShapeStraight,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx := NewAdjacencyIndex(tt.edges)
			for _, e := range tt.edges {
				if got := idx.ShapeFor(e); got != tt.want[edgeKey(e)] {
					t.Errorf("%s: expected %v, got %v", edgeKey(e), tt.want[edgeKey(e)], got)
				}
			}
		})
	}
}

func TestShapeClassificationOrderIndependent(t *testing.T) {
	nodes := []*Node{NewNode("a"), NewNode("b"), NewNode("c"), NewNode("d")}
	pairs := [][2]int{{0, 1}, {1, 0}, {1, 2}, {2, 2}, {2, 3}, {3, 0}, {0, 3}, {1, 3}}

	classify := func(order []int) map[string]Shape {
		edges := make([]*Edge, len(order))
		for i, k := range order {
			p := pairs[k]
			edges[i] = NewEdge(nodes[p[0]], nodes[p[1]])
		}
		idx := NewAdjacencyIndex(edges)
		out := make(map[string]Shape)
		for _, e := range edges {
			out[edgeKey(e)] = idx.ShapeFor(e)
		}
		return out
	}

	base := classify([]int{0, 1, 2, 3, 4, 5, 6, 7})
	orders := [][]int{
		{7, 6, 5, 4, 3, 2, 1, 0},
		{3, 0, 6, 1, 7, 2, 5, 4},
		{1, 3, 5, 7, 0, 2, 4, 6},
	}
	for i, order := range orders {
		t.Run(fmt.Sprint(i), func(t *testing.T) {
			got := classify(order)
			for k, want := range base {
				if got[k] != want {
					t.Errorf("%s: expected %v, got %v", k, want, got[k])
				}
			}
		})
	}

	// symmetry: an arc's reverse, when present, is an arc too
	for k, s := range base {
		if s != ShapeArc {
			continue
		}
		from, to := k[:1], k[len(k)-1:]
		if rev, ok := base[to+"->"+from]; ok && rev != ShapeArc {
			t.Errorf("%s is arc but reverse is %v", k, rev)
		}
	}
}

func TestAdjacencyKeysByIdentity(t *testing.T) {
	// two distinct nodes with the same label, as during an in-flight rename
	a1, a2 := NewNode("a"), NewNode("a")
	edges := []*Edge{NewEdge(a1, a2)}
	idx := NewAdjacencyIndex(edges)

	if got := idx.ShapeFor(edges[0]); got != ShapeStraight {
		t.Errorf("Expected straight, got %v", got)
	}
	if idx.Count(a2, a1) != 0 {
		t.Errorf("Expected no reverse count")
	}
	if idx.Count(a1, a2) != 1 {
		t.Errorf("Expected count 1, got %d", idx.Count(a1, a2))
	}
}
