package diagram

import (
	"reflect"
	"testing"
)

func TestNodeMapKeys(t *testing.T) {
	a, b, c := NewNode("a"), NewNode("b"), NewNode("c")
	d := New(nil, NodeMap(map[string]*Node{"z": a, "m": b, "q": c}), nil, Options{})

	// map collections are ordered by key
	if d.Nodes[0] != b || d.Nodes[1] != c || d.Nodes[2] != a {
		t.Errorf("Expected nodes ordered m, q, z; got %s %s %s", d.Nodes[0].Label, d.Nodes[1].Label, d.Nodes[2].Label)
	}
	var keys []string
	for k := range d.Positions() {
		keys = append(keys, k)
	}
	if len(keys) != 3 {
		t.Fatalf("Expected 3 position keys, got %v", keys)
	}
	if _, ok := d.Positions()["z"]; !ok {
		t.Errorf("Expected map keys in table, got %v", keys)
	}
	if a.Index() != 2 {
		t.Errorf("Expected index 2 for key z, got %d", a.Index())
	}
}

func TestNodeSetLen(t *testing.T) {
	tests := []struct {
		name string
		set  NodeSet
		want int
	}{
		{"list", NodeList(NewNode("a"), NewNode("b")), 2},
		{"map", NodeMap(map[string]*Node{"x": NewNode("x")}), 1},
		{"keyed", KeyedNodes(), 0},
	}
	for _, tt := range tests {
		if got := tt.set.Len(); got != tt.want {
			t.Errorf("%s: expected %d, got %d", tt.name, tt.want, got)
		}
	}
}

func TestHitTesting(t *testing.T) {
	a, b := NewNode("a"), NewNode("b")
	a.Place(100, 100)
	b.Place(300, 100)
	e := NewEdge(a, b, "1→R")
	d := New(nil, KeyedNodes(a, b), []*Edge{e}, Options{})

	nodeTests := []struct {
		p    Vec
		want *Node
	}{
		{Vec{100, 100}, a},
		{Vec{115, 110}, a},
		{Vec{300, 119}, b},
		{Vec{200, 100}, nil},
	}
	for _, tt := range nodeTests {
		if got := d.NodeAt(tt.p); got != tt.want {
			t.Errorf("NodeAt(%v): expected %v, got %v", tt.p, tt.want, got)
		}
	}

	if got := d.EdgeAt(Vec{200, 102}, 5); got != e {
		t.Errorf("Expected edge under (200, 102)")
	}
	if got := d.EdgeAt(Vec{200, 150}, 5); got != nil {
		t.Errorf("Expected no edge under (200, 150)")
	}
}

func TestFromMachineKeysByState(t *testing.T) {
	def := mustParse(t, twoStates)
	d := FromMachine(def, nil, Options{})

	var keys []string
	for _, n := range d.Nodes {
		keys = append(keys, n.Label)
	}
	if !reflect.DeepEqual(keys, []string{"A", "B"}) {
		t.Errorf("Expected nodes in table order, got %v", keys)
	}
	if _, ok := d.Positions()["B"]; !ok {
		t.Errorf("Expected state names as position keys")
	}
}
