// Package editor turns pointer and keyboard input on a state diagram into
// edits of the machine definition text.
//
// A Session owns the interaction state of one diagram view. Every committed
// edit parses the buffer, mutates the parsed definition, writes the
// serialized result back and signals a reload; the host then rebuilds the
// diagram and calls Attach so the selection carries over.
package editor

import (
	"log/slog"

	"github.com/Bubbleman532/turing-sandbox/pkg/diagram"
	"github.com/Bubbleman532/turing-sandbox/pkg/machine"
)

// State is the interaction state of a Session.
type State int

const (
	Idle State = iota
	NodeSelected
	EdgeSelected
	Dragging       // pointer held on a node, moving it or drawing a connection
	LinkingModifierHeld
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case NodeSelected:
		return "node selected"
	case EdgeSelected:
		return "edge selected"
	case Dragging:
		return "dragging"
	case LinkingModifierHeld:
		return "linking"
	}
	return "unknown"
}

// Key is a keyboard key the session reacts to.
type Key int

const (
	KeyNone Key = iota
	KeyCtrl     // the connect-mode modifier
	KeyDelete
	KeyOther
)

// Options configures a Session.
type Options struct {
	// EdgeTolerance is how far from a path a pointer still hits the edge.
	EdgeTolerance float64
	Logger        *slog.Logger
}

// Session tracks selection and pointer state for one diagram view.
// It is not safe for concurrent use.
type Session struct {
	buf    Buffer
	panel  EditPanel
	reload ReloadSignal
	log    *slog.Logger
	tol    float64

	d *diagram.Diagram

	selectedNode *diagram.Node
	selectedEdge *diagram.Edge

	mousedownNode *diagram.Node
	mousedownEdge *diagram.Edge
	dragNode      *diagram.Node // node being moved, never set in connect mode
	overNode      bool
	overEdge      bool
	overSameNode  bool
	pointerInside bool
	lastKey       Key
	preview       string
}

// NewSession returns an idle session writing to buf.
func NewSession(buf Buffer, panel EditPanel, reload ReloadSignal, opts Options) *Session {
	if opts.EdgeTolerance <= 0 {
		opts.EdgeTolerance = 6
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	s := &Session{
		buf:    buf,
		panel:  panel,
		reload: reload,
		log:    opts.Logger,
		tol:    opts.EdgeTolerance,
	}
	s.disableEditing()
	return s
}

// Attach points the session at a freshly built diagram and restores the
// selection recorded in the panel.
func (s *Session) Attach(d *diagram.Diagram) {
	prev := s.selectedEdge
	s.d = d
	s.selectedNode = nil
	s.selectedEdge = nil
	s.resetMouseVars()
	s.dragNode = nil
	s.overNode, s.overEdge = false, false
	s.restore(prev)
}

// Diagram returns the attached diagram.
func (s *Session) Diagram() *diagram.Diagram { return s.d }

// restore reselects the node named in the label field, or else the edge
// whose first label matches the transition fields and whose endpoints
// match the previously selected edge.
func (s *Session) restore(prev *diagram.Edge) {
	if s.d == nil {
		return
	}
	if label := s.panel.Value(FieldNodeLabel); label != "" {
		if n := s.d.Node(label); n != nil {
			s.selectedNode = n
			n.Selected = true
		}
		return
	}
	read := s.panel.Value(FieldRead)
	if read == "" || prev == nil {
		return
	}
	t := machine.Transition{Read: read, Move: machine.Right}
	if !s.panel.Enabled(FieldMoveL) {
		t.Move = machine.Left
	}
	if w := s.panel.Value(FieldWrite); w != "" {
		t.Write = &w
	}
	want := t.Label()
	for _, e := range s.d.Edges {
		if len(e.Labels) == 0 || e.Labels[0] != want {
			continue
		}
		if e.Source.Label == prev.Source.Label && e.Target.Label == prev.Target.Label {
			s.selectedEdge = e
			e.Selected = true
			return
		}
	}
}

// State reports the current interaction state.
func (s *Session) State() State {
	switch {
	case s.mousedownNode != nil:
		return Dragging
	case s.lastKey == KeyCtrl:
		return LinkingModifierHeld
	case s.selectedNode != nil:
		return NodeSelected
	case s.selectedEdge != nil:
		return EdgeSelected
	}
	return Idle
}

// SelectedNode returns the selected node, or nil.
func (s *Session) SelectedNode() *diagram.Node { return s.selectedNode }

// SelectedEdge returns the selected edge, or nil.
func (s *Session) SelectedEdge() *diagram.Edge { return s.selectedEdge }

// DragFrom returns the node the pointer went down on, or nil.
func (s *Session) DragFrom() *diagram.Node { return s.mousedownNode }

// Preview returns the connect-mode preview path, or "" when hidden.
func (s *Session) Preview() string { return s.preview }

func (s *Session) resetMouseVars() {
	s.mousedownNode = nil
	s.mousedownEdge = nil
	s.overSameNode = false
}

func (s *Session) selectNode(n *diagram.Node) {
	if s.selectedNode != nil {
		s.selectedNode.Selected = false
	}
	s.selectedNode = n
	n.Selected = true

	s.panel.SetEnabled(FieldNodeLabel, true)
	s.panel.SetEnabled(FieldDeleteNode, true)
	isStart := s.isStartState(n.Label)
	s.panel.SetEnabled(FieldStartState, !isStart)
	s.panel.SetValue(FieldNodeLabel, n.Label)
	s.panel.SetChecked(FieldStartState, isStart)

	s.disableEdgeEditing()
	s.panel.SetVisible(GroupEdgeControls, false)
	s.panel.SetVisible(GroupNodeControls, true)
}

func (s *Session) isStartState(label string) bool {
	def, err := machine.Parse(s.buf.Text())
	if err != nil {
		s.log.Warn("Cannot read start state", "error", err)
		return false
	}
	return def.StartState == label
}

func (s *Session) selectEdge(e *diagram.Edge) {
	if s.selectedEdge != nil {
		s.selectedEdge.Selected = false
	}
	s.selectedEdge = e
	if s.selectedNode != nil {
		s.selectedNode.Selected = false
	}
	s.selectedNode = nil
	e.Selected = true

	for _, f := range []Field{FieldRead, FieldWrite, FieldMoveL, FieldMoveR, FieldDeleteEdge} {
		s.panel.SetEnabled(f, true)
	}
	var label string
	if len(e.Labels) > 0 {
		label = e.Labels[0]
	}
	read, write, _, move := machine.ParseLabel(label)
	s.panel.SetValue(FieldRead, read)
	s.panel.SetValue(FieldWrite, write)
	// the button for the current direction is the disabled one
	s.panel.SetEnabled(FieldMoveL, move != machine.Left)
	s.panel.SetEnabled(FieldMoveR, move == machine.Left)

	s.disableNodeEditing()
	s.panel.SetVisible(GroupNodeControls, false)
	s.panel.SetVisible(GroupEdgeControls, true)
}

func (s *Session) disableNodeEditing() {
	s.panel.SetEnabled(FieldNodeLabel, false)
	s.panel.SetValue(FieldNodeLabel, "")
	s.panel.SetEnabled(FieldStartState, false)
	s.panel.SetChecked(FieldStartState, false)
	s.panel.SetEnabled(FieldDeleteNode, false)
	if s.selectedNode != nil {
		s.selectedNode.Selected = false
	}
	s.selectedNode = nil
}

func (s *Session) disableEdgeEditing() {
	for _, f := range []Field{FieldRead, FieldWrite} {
		s.panel.SetEnabled(f, false)
		s.panel.SetValue(f, "")
	}
	for _, f := range []Field{FieldMoveL, FieldMoveR, FieldDeleteEdge} {
		s.panel.SetEnabled(f, false)
	}
	if s.selectedEdge != nil {
		s.selectedEdge.Selected = false
	}
	s.selectedEdge = nil
}

func (s *Session) disableEditing() {
	s.disableNodeEditing()
	s.disableEdgeEditing()
	s.panel.SetVisible(GroupEdgeControls, false)
}
