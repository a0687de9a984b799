package editor

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Bubbleman532/turing-sandbox/pkg/machine"
)

// ValidationError is an edit rejected before anything was written.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func reject(msg string) error { return &ValidationError{Msg: msg} }

// Alert texts shown for rejected edits.
const (
	msgDeleteStartState = "Change the start state before trying to delete this node"
	msgDuplicateState   = "A node with that name exists already."
	msgReadConflict     = "One or more entered read symbol(s) appear(s) in another transition"
)

// commit parses the buffer, applies mutate to the parsed copy and writes
// the result back, then signals a reload. A ValidationError from mutate is
// alerted and returned with the buffer untouched. If writing the buffer
// fails, the previous text is put back.
func (s *Session) commit(reason string, mutate func(def *machine.Definition) error) error {
	prev := s.buf.Text()
	parsed, err := machine.Parse(prev)
	if err != nil {
		return err
	}
	// parsed keeps the pre-edit machine for the commit log
	def := parsed.Clone()
	if err := mutate(def); err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			s.log.Info("Edit rejected", "reason", reason, "error", verr.Msg)
			s.panel.Alert(verr.Msg)
		}
		return err
	}
	text, err := def.Serialize()
	if err != nil {
		return fmt.Errorf("serialize machine: %w", err)
	}
	if err := s.buf.SetText(text); err != nil {
		if rerr := s.buf.SetText(prev); rerr != nil {
			return fmt.Errorf("write buffer: %w (restore failed: %v)", err, rerr)
		}
		return fmt.Errorf("write buffer: %w", err)
	}
	s.log.Debug("Committed edit", "reason", reason, "states_before", len(parsed.Table), "states_after", len(def.Table))
	return s.signal(reason)
}

func (s *Session) signal(reason string) error {
	if s.reload == nil {
		return nil
	}
	if err := s.reload.Signal(reason); err != nil {
		return fmt.Errorf("signal reload: %w", err)
	}
	return nil
}

// Connect adds or overwrites the wildcard transition from one state to
// another.
func (s *Session) Connect(from, to string) error {
	err := s.commit("new link", func(def *machine.Definition) error {
		def.SetTransition(from, machine.Transition{
			Read: machine.Wildcard,
			Move: machine.Left,
			Next: to,
		})
		return nil
	})
	if err != nil {
		return err
	}
	s.disableEditing()
	return nil
}

// AddNode appends an empty state with the next free default name.
func (s *Session) AddNode() error {
	err := s.commit("node", func(def *machine.Definition) error {
		name := def.NextStateName()
		def.AddState(name)
		s.log.Debug("Adding state", "name", name)
		return nil
	})
	if err != nil {
		return err
	}
	s.disableEditing()
	return nil
}

// DeleteNode removes the selected state and every transition into it. The
// start state cannot be deleted.
func (s *Session) DeleteNode() error {
	n := s.selectedNode
	if n == nil {
		return nil
	}
	err := s.commit("deleted a node", func(def *machine.Definition) error {
		if def.StartState == n.Label {
			return reject(msgDeleteStartState)
		}
		def.DeleteState(n.Label)
		return nil
	})
	if err != nil {
		return err
	}
	s.disableEditing()
	return nil
}

// DeleteEdge removes the selected edge's transition from its source state.
func (s *Session) DeleteEdge() error {
	e := s.selectedEdge
	if e == nil || len(e.Labels) == 0 {
		return nil
	}
	read, _, _, _ := machine.ParseLabel(e.Labels[0])
	err := s.commit("delete link", func(def *machine.Definition) error {
		def.DeleteTransition(e.Source.Label, read)
		return nil
	})
	if err != nil {
		return err
	}
	s.disableEditing()
	return nil
}

// CommitLabel renames the selected state to the label field's value.
func (s *Session) CommitLabel() error {
	n := s.selectedNode
	if n == nil {
		return nil
	}
	name := s.panel.Value(FieldNodeLabel)
	if name == n.Label {
		return nil
	}
	return s.commit("node name change", func(def *machine.Definition) error {
		if def.HasState(name) {
			return reject(msgDuplicateState)
		}
		return def.RenameState(n.Label, name)
	})
}

// CommitStartState makes the selected state the start state.
func (s *Session) CommitStartState() error {
	n := s.selectedNode
	if n == nil {
		return nil
	}
	label := s.panel.Value(FieldNodeLabel)
	if label == "" {
		label = n.Label
	}
	s.panel.SetEnabled(FieldStartState, false)
	s.panel.SetChecked(FieldStartState, true)
	return s.commit("start state", func(def *machine.Definition) error {
		def.StartState = label
		return nil
	})
}

// edgeKey returns the selected edge's source state and the read key and
// write symbol of its first transition.
func (s *Session) edgeKey() (from, read, write string, hasWrite bool, ok bool) {
	e := s.selectedEdge
	if e == nil || len(e.Labels) == 0 {
		return "", "", "", false, false
	}
	read, write, hasWrite, _ = machine.ParseLabel(e.Labels[0])
	return e.Source.Label, read, write, hasWrite, true
}

// CommitRead re-keys the selected transition with the read field's
// symbols. It is rejected when an entered symbol occurs in another read
// key of the same state.
func (s *Session) CommitRead() error {
	from, old, _, _, ok := s.edgeKey()
	if !ok {
		return nil
	}
	read := s.panel.Value(FieldRead)
	if read == old {
		return nil
	}
	return s.commit("transition changed", func(def *machine.Definition) error {
		st := def.State(from)
		if st == nil {
			return fmt.Errorf("state %q not in table", from)
		}
		if readConflict(st, old, read) {
			return reject(msgReadConflict)
		}
		t, err := def.Transition(from, old)
		if err != nil {
			return err
		}
		t.Read = read
		return nil
	})
}

// readConflict reports whether any symbol in read is contained in a read
// key of st without being contained in the key being replaced. Containment
// is by substring, so "1" also conflicts with a key "10".
func readConflict(st *machine.State, old, read string) bool {
	for _, t := range st.Transitions {
		for _, sym := range strings.Split(read, ",") {
			if strings.Contains(t.Read, sym) && !strings.Contains(old, sym) {
				return true
			}
		}
	}
	return false
}

// CommitWrite sets the selected transition's write symbol from the write
// field, removing it when the field is empty.
func (s *Session) CommitWrite() error {
	from, read, write, hasWrite, ok := s.edgeKey()
	if !ok {
		return nil
	}
	value := s.panel.Value(FieldWrite)
	if hasWrite && value == write {
		return nil
	}
	if !hasWrite && value == "" {
		return nil
	}
	return s.commit("transition write changed", func(def *machine.Definition) error {
		t, err := def.Transition(from, read)
		if err != nil {
			return err
		}
		if value == "" {
			t.Write = nil
		} else {
			t.Write = &value
		}
		return nil
	})
}

// SetMove changes the selected transition's head movement, keeping its
// next state.
func (s *Session) SetMove(dir machine.Direction) error {
	from, read, _, _, ok := s.edgeKey()
	if !ok {
		return nil
	}
	if _, _, _, cur := machine.ParseLabel(s.selectedEdge.Labels[0]); cur == dir {
		return nil
	}
	s.panel.SetEnabled(FieldMoveL, dir != machine.Left)
	s.panel.SetEnabled(FieldMoveR, dir == machine.Left)
	return s.commit("head movement changed", func(def *machine.Definition) error {
		t, err := def.Transition(from, read)
		if err != nil {
			return err
		}
		t.Move = dir
		return nil
	})
}
