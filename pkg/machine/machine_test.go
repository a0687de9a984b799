package machine

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

const binaryIncrement = `name: binary increment
input: '1011'
blank: ' '
start state: right
table:
  right:
    [1,0]: R
    ' ': {L: carry}
  carry:
    1: {write: 0, L}
    [0, ' ']: {write: 1, L: done}
  done:
`

func mustParse(t *testing.T, text string) *Definition {
	t.Helper()
	d, err := Parse(text)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return d
}

func TestParse(t *testing.T) {
	d := mustParse(t, binaryIncrement)

	if d.StartState != "right" {
		t.Errorf("Expected start state right, got %q", d.StartState)
	}
	if d.Input != "1011" || d.Blank != " " {
		t.Errorf("Expected input 1011 and blank space, got %q and %q", d.Input, d.Blank)
	}
	if got := d.StateNames(); !reflect.DeepEqual(got, []string{"right", "carry", "done"}) {
		t.Errorf("Expected table order kept, got %v", got)
	}

	tr, err := d.Transition("carry", "0, ")
	if err != nil {
		t.Fatalf("Transition failed: %v", err)
	}
	if tr.Write == nil || *tr.Write != "1" || tr.Move != Left || tr.Next != "done" {
		t.Errorf("Unexpected transition %+v", tr)
	}

	tr, _ = d.Transition("carry", "1")
	if tr.Next != "" || tr.Target("carry") != "carry" {
		t.Errorf("Expected same-state transition, got next %q", tr.Next)
	}

	if err := d.Validate(); err != nil {
		t.Errorf("Expected valid definition, got %v", err)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		text string
		path string
	}{
		{"not yaml", "table: [", ""},
		{"top level list", "- a\n- b\n", ""},
		{"table not mapping", "table: [a]\n", "table"},
		{"bad move", "table:\n  a:\n    1: X\n", "table.a.1"},
		{"both moves", "table:\n  a:\n    1: {L: a, R: a}\n", "table.a.1"},
		{"no move", "table:\n  a:\n    1: {write: 0}\n", "table.a.1"},
		{"unknown key", "table:\n  a:\n    1: {jump: b, L}\n", "table.a.1"},
		{"duplicate read", "table:\n  a:\n    1: L\n    [1]: R\n", "table.a.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.text)
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("Expected ParseError, got %v", err)
			}
			if pe.Path != tt.path {
				t.Errorf("Expected path %q, got %q", tt.path, pe.Path)
			}
		})
	}
}

func TestSerializeRoundTrip(t *testing.T) {
	d := mustParse(t, binaryIncrement)
	out, err := d.Serialize()
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}

	// unknown keys survive, in document order
	if !strings.HasPrefix(out, "name: binary increment\n") {
		t.Errorf("Expected unknown key first, got:\n%s", out)
	}
	if !strings.Contains(out, "input: '1011'") {
		t.Errorf("Expected input quoting kept, got:\n%s", out)
	}

	again := mustParse(t, out)
	if !reflect.DeepEqual(again.StateNames(), d.StateNames()) {
		t.Errorf("Expected states %v, got %v", d.StateNames(), again.StateNames())
	}
	if !reflect.DeepEqual(again.Edges(), d.Edges()) {
		t.Errorf("Expected edges %v, got %v", d.Edges(), again.Edges())
	}
}

func TestSerializeWildcard(t *testing.T) {
	d := New("a")
	d.AddState("a")
	d.SetTransition("a", Transition{Read: Wildcard, Move: Right, Next: "a"})
	out, err := d.Serialize()
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}
	if !strings.Contains(out, `'*': {R: a}`) && !strings.Contains(out, `"*": {R: a}`) {
		t.Errorf("Expected quoted wildcard key, got:\n%s", out)
	}
	back := mustParse(t, out)
	if _, err := back.Transition("a", Wildcard); err != nil {
		t.Errorf("Expected wildcard to read back: %v", err)
	}
}

func TestSerializeNullLikeStrings(t *testing.T) {
	for _, v := range []string{"null", "Null", "NULL", "~"} {
		t.Run(v, func(t *testing.T) {
			d := New("a")
			d.AddState("a")
			d.AddState(v)
			w := v
			d.SetTransition("a", Transition{Read: "0", Move: Right, Next: v})
			d.SetTransition("a", Transition{Read: v, Write: &w, Move: Left})
			d.SetTransition(v, Transition{Read: "1", Move: Left, Next: "a"})
			out, err := d.Serialize()
			if err != nil {
				t.Fatalf("Serialize failed: %v", err)
			}

			back := mustParse(t, out)
			if got := back.StateNames(); !reflect.DeepEqual(got, []string{"a", v}) {
				t.Fatalf("Expected states [a %s], got %v\n%s", v, got, out)
			}
			tr, err := back.Transition("a", "0")
			if err != nil {
				t.Fatalf("Transition a/0: %v", err)
			}
			if tr.Next != v {
				t.Errorf("Expected next state %q, got %q\n%s", v, tr.Next, out)
			}
			tr, err = back.Transition("a", v)
			if err != nil {
				t.Fatalf("Expected read key %q to survive: %v\n%s", v, err, out)
			}
			if tr.Write == nil || *tr.Write != v {
				t.Errorf("Expected write %q, got %v\n%s", v, tr.Write, out)
			}
			if err := back.Validate(); err != nil {
				t.Errorf("Expected valid machine, got %v", err)
			}
		})
	}
}

func TestSerializeEmptyStrings(t *testing.T) {
	d := New("a")
	d.AddState("a")
	empty := ""
	d.SetTransition("a", Transition{Read: "", Write: &empty, Move: Right})
	out, err := d.Serialize()
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}

	back := mustParse(t, out)
	tr, err := back.Transition("a", "")
	if err != nil {
		t.Fatalf("Expected empty read key to survive: %v\n%s", err, out)
	}
	// an empty write still differs from no write at all
	if tr.Write == nil || *tr.Write != "" {
		t.Errorf("Expected empty write, got %v\n%s", tr.Write, out)
	}
}

func TestEdges(t *testing.T) {
	d := mustParse(t, binaryIncrement)
	want := []EdgeSpec{
		{From: "right", To: "right", Labels: []string{"1,0→R"}},
		{From: "right", To: "carry", Labels: []string{" →L"}},
		{From: "carry", To: "carry", Labels: []string{"1→0,L"}},
		{From: "carry", To: "done", Labels: []string{"0, →1,L"}},
	}
	if got := d.Edges(); !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestEdgesGroupParallel(t *testing.T) {
	d := New("a")
	d.AddState("a")
	d.AddState("b")
	d.SetTransition("a", Transition{Read: "0", Move: Right, Next: "b"})
	d.SetTransition("a", Transition{Read: "1", Move: Left, Next: "b"})
	d.SetTransition("a", Transition{Read: "2", Move: Left, Next: "missing"})

	edges := d.Edges()
	if len(edges) != 1 {
		t.Fatalf("Expected 1 edge, got %d", len(edges))
	}
	if !reflect.DeepEqual(edges[0].Labels, []string{"0→R", "1→L"}) {
		t.Errorf("Unexpected labels %v", edges[0].Labels)
	}
}

func TestParseLabel(t *testing.T) {
	tests := []struct {
		label    string
		read     string
		write    string
		hasWrite bool
		move     Direction
	}{
		{"1→R", "1", "", false, Right},
		{"1,0→L", "1,0", "", false, Left},
		{"1→0,L", "1", "0", true, Left},
		{"0, →1,L", "0, ", "1", true, Left},
		{"*→R", "*", "", false, Right},
		{"a→,,R", "a", ",", true, Right},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			read, write, hasWrite, move := ParseLabel(tt.label)
			if read != tt.read || write != tt.write || hasWrite != tt.hasWrite || move != tt.move {
				t.Errorf("Expected (%q, %q, %v, %s), got (%q, %q, %v, %s)",
					tt.read, tt.write, tt.hasWrite, tt.move, read, write, hasWrite, move)
			}
		})
	}
}

func TestRenameState(t *testing.T) {
	d := mustParse(t, binaryIncrement)
	if err := d.RenameState("carry", "right"); err == nil {
		t.Errorf("Expected rename onto existing state to fail")
	}
	if err := d.RenameState("nope", "x"); err == nil {
		t.Errorf("Expected rename of missing state to fail")
	}

	if err := d.RenameState("right", "scan"); err != nil {
		t.Fatalf("RenameState failed: %v", err)
	}
	if d.StartState != "scan" {
		t.Errorf("Expected start state to follow rename, got %q", d.StartState)
	}
	if got := d.StateNames(); !reflect.DeepEqual(got, []string{"scan", "carry", "done"}) {
		t.Errorf("Expected position kept, got %v", got)
	}
	tr, _ := d.Transition("scan", " ")
	if tr.Next != "carry" {
		t.Errorf("Expected outgoing transition kept, got %q", tr.Next)
	}
}

func TestDeleteStateCascades(t *testing.T) {
	d := mustParse(t, binaryIncrement)
	d.DeleteState("carry")

	if d.HasState("carry") {
		t.Errorf("Expected carry removed")
	}
	if _, err := d.Transition("right", " "); err == nil {
		t.Errorf("Expected transition into carry removed")
	}
	if _, err := d.Transition("right", "1,0"); err != nil {
		t.Errorf("Expected self loop kept: %v", err)
	}
}

func TestSetTransitionReplaces(t *testing.T) {
	d := New("a")
	d.SetTransition("a", Transition{Read: "1", Move: Right})
	d.SetTransition("a", Transition{Read: "1", Move: Left, Next: "b"})

	s := d.State("a")
	if len(s.Transitions) != 1 {
		t.Fatalf("Expected replacement, got %d transitions", len(s.Transitions))
	}
	if s.Transitions[0].Move != Left {
		t.Errorf("Expected L, got %s", s.Transitions[0].Move)
	}
}

func TestCloneIsDeep(t *testing.T) {
	d := mustParse(t, binaryIncrement)
	c := d.Clone()

	tr, _ := c.Transition("carry", "1")
	*tr.Write = "x"
	c.DeleteState("done")

	orig, _ := d.Transition("carry", "1")
	if *orig.Write != "0" {
		t.Errorf("Expected original write untouched, got %q", *orig.Write)
	}
	if !d.HasState("done") {
		t.Errorf("Expected original table untouched")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		text string
		ok   bool
	}{
		{"valid", binaryIncrement, true},
		{"no start", "table:\n  a:\n", false},
		{"empty table", "start state: a\ntable:\n", false},
		{"start missing", "start state: b\ntable:\n  a:\n", false},
		{"dangling next", "start state: a\ntable:\n  a:\n    1: {R: b}\n", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := mustParse(t, tt.text).Validate()
			if (err == nil) != tt.ok {
				t.Errorf("Expected ok=%v, got %v", tt.ok, err)
			}
		})
	}
}

func TestNextStateName(t *testing.T) {
	d := New("")
	d.AddState("State2")
	d.AddState("x")
	// two states: State3 is first free
	if got := d.NextStateName(); got != "State3" {
		t.Errorf("Expected State3, got %s", got)
	}
	d.AddState("State3")
	if got := d.NextStateName(); got != "State4" {
		t.Errorf("Expected State4, got %s", got)
	}
}
