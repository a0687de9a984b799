package machine

import (
	"reflect"
	"testing"
)

// Run with: go test -fuzz=FuzzParse -fuzztime=30s ./pkg/machine/
func FuzzParse(f *testing.F) {
	f.Add(binaryIncrement)
	f.Add("table:\n  a:\n")
	f.Add("start state: a\ntable:\n  a:\n    '*': {R: a}\n")
	f.Add("start state: a\ntable:\n  a:\n    [0, ' ']: {write: 1, L: b}\n  b:\n")

	// Edge cases
	f.Add("")
	f.Add("[]")
	f.Add("table: 3")
	f.Add("table:\n  a:\n    1: {X: a}\n")
	f.Add("table:\n  a:\n    1: {L: a, R: a}\n")
	f.Add("start state: [a]\n")

	f.Fuzz(func(t *testing.T, text string) {
		d, err := Parse(text)
		if err != nil {
			return
		}

		// a parsed definition serializes and reads back the same states
		out, err := d.Serialize()
		if err != nil {
			return
		}
		again, err := Parse(out)
		if err != nil {
			t.Fatalf("serialized definition does not parse: %v\n%s", err, out)
		}
		if !reflect.DeepEqual(d.StateNames(), again.StateNames()) {
			t.Errorf("states changed across serialize: %v vs %v", d.StateNames(), again.StateNames())
		}

		_ = d.Edges()
		_ = d.Validate()
		_ = d.Clone()
	})
}

// FuzzRunner runs arbitrary inputs through a fixed machine.
func FuzzRunner(f *testing.F) {
	f.Add(binaryIncrement, "1011")
	f.Add(binaryIncrement, "")
	f.Add(binaryIncrement, "xyz")
	f.Add("start state: a\ntable:\n  a:\n    '*': {write: x, L}\n", "ab")

	f.Fuzz(func(t *testing.T, text, input string) {
		d, err := Parse(text)
		if err != nil || d.Validate() != nil {
			return
		}
		r, err := NewRunnerInput(d, input)
		if err != nil {
			return
		}

		// Should not panic
		_ = r.Run(200)
		_ = r.Status()
		_ = r.Tape().Contents()
		if r.Steps() > 200 {
			t.Errorf("ran %d steps past the limit", r.Steps())
		}

		r.Reset(input)
		if r.Steps() != 0 || r.Halted() {
			t.Error("Reset did not clear the run")
		}
	})
}
