package editor

import "github.com/Bubbleman532/turing-sandbox/pkg/diagram"

func (s *Session) modifierHeld(ctrl bool) bool {
	return ctrl || s.lastKey == KeyCtrl
}

// PointerDown handles a button press at p. ctrl reports whether the
// connect modifier is held.
//
// Without the modifier a node press selects the node and starts dragging
// it; with the modifier it starts a connection preview instead. An edge
// press selects the edge. A press on empty canvas clears the selection.
func (s *Session) PointerDown(p diagram.Vec, ctrl bool) error {
	if s.d == nil {
		return nil
	}
	linking := s.modifierHeld(ctrl)

	if n := s.d.NodeAt(p); n != nil {
		s.mousedownNode = n
		s.hover(n)
		if linking {
			s.preview = diagram.LinePath(n.Pos(), n.Pos())
		} else {
			s.dragNode = n
			s.d.DragStart(n)
			if n == s.selectedNode {
				return nil
			}
			s.selectNode(n)
		}
		s.d.Layout().Resume()
		return nil
	}

	if e := s.d.EdgeAt(p, s.tol); e != nil && !linking {
		s.mousedownEdge = e
		s.selectEdge(e)
		s.d.Layout().Resume()
		return nil
	}

	// empty canvas
	if s.selectedNode != nil || s.selectedEdge != nil {
		s.disableEditing()
		s.resetMouseVars()
		return s.signal("reload")
	}
	return nil
}

// PointerMove tracks hovering, moves a dragged node and updates the
// connection preview.
func (s *Session) PointerMove(p diagram.Vec) {
	if s.d == nil {
		return
	}
	s.hover(s.d.NodeAt(p))
	s.overEdge = !s.overNode && s.d.EdgeAt(p, s.tol) != nil

	if s.dragNode != nil {
		s.d.DragMove(s.dragNode, p)
		return
	}
	if s.mousedownNode == nil {
		return
	}
	from := s.mousedownNode
	if s.overSameNode {
		s.preview = diagram.LoopPath(from.Pos(), s.d.Radius())
	} else {
		s.preview = diagram.LinePath(from.Pos(), p)
	}
}

// hover records the node under the pointer. Coming back over the node a
// connection started from arms the self-loop preview.
func (s *Session) hover(n *diagram.Node) {
	s.overNode = n != nil
	if s.mousedownNode == nil {
		s.overSameNode = false
		return
	}
	s.overSameNode = n == s.mousedownNode && s.dragNode == nil && s.preview != ""
}

// PointerUp ends a drag. In connect mode, releasing over a node commits a
// wildcard transition from the node the press started on.
func (s *Session) PointerUp(p diagram.Vec, ctrl bool) error {
	if s.d == nil {
		return nil
	}
	var err error
	if from := s.mousedownNode; from != nil {
		linking := s.preview != ""
		s.preview = ""
		if to := s.d.NodeAt(p); to != nil && linking && s.modifierHeld(ctrl) {
			err = s.Connect(from.Label, to.Label)
		}
		s.d.Layout().Resume()
	}
	if s.dragNode != nil {
		s.d.DragEnd(s.dragNode)
		s.dragNode = nil
	}
	s.resetMouseVars()
	return err
}

// DoubleClick adds a state when it lands on empty canvas without the
// modifier.
func (s *Session) DoubleClick(p diagram.Vec, ctrl bool) error {
	if ctrl {
		return nil
	}
	if s.d != nil && (s.d.NodeAt(p) != nil || s.d.EdgeAt(p, s.tol) != nil) {
		return nil
	}
	return s.AddNode()
}

// PointerEnter marks the pointer as over the canvas.
func (s *Session) PointerEnter() { s.pointerInside = true }

// PointerLeave marks the pointer as off the canvas; Delete is ignored
// there.
func (s *Session) PointerLeave() {
	s.pointerInside = false
	s.overNode, s.overEdge = false, false
}

// KeyDown handles a key press. Only one key is tracked at a time; presses
// while another key is down are ignored. The modifier arms connect mode;
// Delete removes the selection while the pointer is over the canvas.
func (s *Session) KeyDown(k Key) error {
	if s.lastKey != KeyNone {
		return nil
	}
	s.lastKey = k
	if k == KeyCtrl {
		return nil
	}
	if s.selectedNode == nil && s.selectedEdge == nil {
		return nil
	}
	if !s.pointerInside {
		return nil
	}
	if k == KeyDelete {
		if s.selectedNode != nil {
			return s.DeleteNode()
		}
		return s.DeleteEdge()
	}
	return nil
}

// KeyUp releases the tracked key. Releasing the modifier restores
// dragging.
func (s *Session) KeyUp(k Key) {
	s.lastKey = KeyNone
}
