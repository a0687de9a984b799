// Package machine provides the Turing machine definition model behind the
// state diagram: an order-preserving state table read from and written back
// to YAML.
package machine

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Direction is the head movement of a transition.
type Direction string

const (
	Left  Direction = "L"
	Right Direction = "R"
)

// Wildcard is the read key written by connect-mode transitions.
const Wildcard = "*"

// Top-level keys of a definition document.
const (
	KeyInput      = "input"
	KeyBlank      = "blank"
	KeyStartState = "start state"
	KeyTable      = "table"
)

// Transition is one entry of a state's table, keyed by its read symbols.
type Transition struct {
	Read  string    // read-symbol set, symbols joined with ","
	Write *string   // nil when the symbol under the head is kept
	Move  Direction // exactly one move per transition
	Next  string    // "" means stay in the same state
}

// Symbols splits the read-symbol set.
func (t *Transition) Symbols() []string {
	return strings.Split(t.Read, ",")
}

// Target returns the next state, resolving "same state" against from.
func (t *Transition) Target(from string) string {
	if t.Next == "" {
		return from
	}
	return t.Next
}

// Label renders the transition the way edges display it: read→write,move
// or read→move.
func (t *Transition) Label() string {
	if t.Write != nil {
		return t.Read + "→" + *t.Write + "," + string(t.Move)
	}
	return t.Read + "→" + string(t.Move)
}

func (t *Transition) clone() *Transition {
	c := *t
	if t.Write != nil {
		w := *t.Write
		c.Write = &w
	}
	return &c
}

// State is a named row of the table.
type State struct {
	Name        string
	Transitions []*Transition
}

// Transition returns the entry for the exact read key, or nil.
func (s *State) Transition(read string) *Transition {
	for _, t := range s.Transitions {
		if t.Read == read {
			return t
		}
	}
	return nil
}

// Definition is a parsed machine document.
type Definition struct {
	Input      string
	Blank      string
	StartState string
	Table      []*State

	// document order of top-level keys and the raw nodes of keys this
	// package does not interpret
	order []string
	raw   map[string]*yaml.Node
	// set when the table key is present in the source document
	hasTable bool
}

// New returns an empty definition with the given start state.
func New(start string) *Definition {
	return &Definition{
		StartState: start,
		raw:        make(map[string]*yaml.Node),
	}
}

// State returns the named state, or nil.
func (d *Definition) State(name string) *State {
	for _, s := range d.Table {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// HasState reports whether the table has an entry for name.
func (d *Definition) HasState(name string) bool {
	return d.State(name) != nil
}

// StateNames returns the table keys in document order.
func (d *Definition) StateNames() []string {
	names := make([]string, len(d.Table))
	for i, s := range d.Table {
		names[i] = s.Name
	}
	return names
}

// AddState appends an empty state. Adding an existing state is a no-op.
func (d *Definition) AddState(name string) *State {
	if s := d.State(name); s != nil {
		return s
	}
	s := &State{Name: name}
	d.Table = append(d.Table, s)
	return s
}

// NextStateName returns the first free "State<N>" name, counting from the
// number of states plus one.
func (d *Definition) NextStateName() string {
	for i := len(d.Table) + 1; ; i++ {
		name := fmt.Sprintf("State%d", i)
		if !d.HasState(name) {
			return name
		}
	}
}

// RenameState renames the table entry in place, updates the start state
// and retargets every transition whose next state is old.
func (d *Definition) RenameState(old, new string) error {
	s := d.State(old)
	if s == nil {
		return fmt.Errorf("state %q not in table", old)
	}
	if d.HasState(new) {
		return fmt.Errorf("state %q already exists", new)
	}
	s.Name = new
	if d.StartState == old {
		d.StartState = new
	}
	for _, st := range d.Table {
		for _, t := range st.Transitions {
			if t.Next == old {
				t.Next = new
			}
		}
	}
	return nil
}

// DeleteState removes the entry for name and every transition, in any
// state, whose next state is name.
func (d *Definition) DeleteState(name string) {
	kept := d.Table[:0]
	for _, s := range d.Table {
		if s.Name != name {
			kept = append(kept, s)
		}
	}
	d.Table = kept
	for _, s := range d.Table {
		ts := s.Transitions[:0]
		for _, t := range s.Transitions {
			if t.Next != name {
				ts = append(ts, t)
			}
		}
		s.Transitions = ts
	}
}

// SetTransition adds the transition under from, replacing any entry with
// the same read key. The source state is created if missing.
func (d *Definition) SetTransition(from string, t Transition) {
	s := d.AddState(from)
	for i, cur := range s.Transitions {
		if cur.Read == t.Read {
			s.Transitions[i] = &t
			return
		}
	}
	s.Transitions = append(s.Transitions, &t)
}

// DeleteTransition removes the entry keyed by read under from.
func (d *Definition) DeleteTransition(from, read string) {
	s := d.State(from)
	if s == nil {
		return
	}
	for i, t := range s.Transitions {
		if t.Read == read {
			s.Transitions = append(s.Transitions[:i], s.Transitions[i+1:]...)
			return
		}
	}
}

// Transition looks up the entry keyed by read under from.
func (d *Definition) Transition(from, read string) (*Transition, error) {
	s := d.State(from)
	if s == nil {
		return nil, fmt.Errorf("state %q not in table", from)
	}
	t := s.Transition(read)
	if t == nil {
		return nil, fmt.Errorf("state %q has no transition for %q", from, read)
	}
	return t, nil
}

// Clone returns a deep copy.
func (d *Definition) Clone() *Definition {
	c := &Definition{
		Input:      d.Input,
		Blank:      d.Blank,
		StartState: d.StartState,
		order:      append([]string(nil), d.order...),
		raw:        make(map[string]*yaml.Node, len(d.raw)),
		hasTable:   d.hasTable,
	}
	for k, n := range d.raw {
		c.raw[k] = n
	}
	for _, s := range d.Table {
		cs := &State{Name: s.Name}
		for _, t := range s.Transitions {
			cs.Transitions = append(cs.Transitions, t.clone())
		}
		c.Table = append(c.Table, cs)
	}
	return c
}

// Validate checks that the definition is well-formed enough to run.
func (d *Definition) Validate() error {
	if d.StartState == "" {
		return fmt.Errorf("definition has no %q", KeyStartState)
	}
	if len(d.Table) == 0 {
		return fmt.Errorf("definition has an empty table")
	}
	if !d.HasState(d.StartState) {
		return fmt.Errorf("start state %q not in table", d.StartState)
	}
	for _, s := range d.Table {
		for _, t := range s.Transitions {
			if t.Move != Left && t.Move != Right {
				return fmt.Errorf("state %q, symbol %q: invalid move %q", s.Name, t.Read, t.Move)
			}
			if t.Next != "" && !d.HasState(t.Next) {
				return fmt.Errorf("state %q, symbol %q: next state %q not in table", s.Name, t.Read, t.Next)
			}
		}
	}
	return nil
}

// String returns a short summary.
func (d *Definition) String() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Machine: start %q\n", d.StartState))
	sb.WriteString(fmt.Sprintf("  Input: %q\n", d.Input))
	sb.WriteString(fmt.Sprintf("  Blank: %q\n", d.Blank))
	sb.WriteString(fmt.Sprintf("  States: %v\n", d.StateNames()))
	n := 0
	for _, s := range d.Table {
		n += len(s.Transitions)
	}
	sb.WriteString(fmt.Sprintf("  Transitions: %d\n", n))
	return sb.String()
}
