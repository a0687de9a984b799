package main

import (
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/Bubbleman532/turing-sandbox/pkg/diagram"
	"github.com/Bubbleman532/turing-sandbox/pkg/editor"
	"github.com/Bubbleman532/turing-sandbox/pkg/machine"
)

// canvasSize returns the cells available to the diagram: everything left
// of the sidebar and above the help and status bars.
func (ed *Editor) canvasSize() (int, int) {
	w, h := ed.screen.Size()
	return max(w-ed.sidebarWidth, 1), max(h-2, 1)
}

// grid maps between screen cells and diagram units.
type grid struct {
	cols, rows int
	w, h       float64
}

func (ed *Editor) grid() grid {
	cols, rows := ed.canvasSize()
	w, h := ed.d.Size()
	return grid{cols: cols, rows: rows, w: w, h: h}
}

// toDiagram returns the diagram point at the center of a cell.
func (g grid) toDiagram(x, y int) diagram.Vec {
	return diagram.Vec{
		X: (float64(x) + 0.5) * g.w / float64(g.cols),
		Y: (float64(y) + 0.5) * g.h / float64(g.rows),
	}
}

// toCell returns the cell containing a diagram point.
func (g grid) toCell(p diagram.Vec) (int, int) {
	return int(p.X * float64(g.cols) / g.w), int(p.Y * float64(g.rows) / g.h)
}

// cellHeight is the height of one row in diagram units.
func (g grid) cellHeight() float64 { return g.h / float64(g.rows) }

func (ed *Editor) handleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyCtrlC:
		return true
	case tcell.KeyEscape:
		ed.focused = false
		ed.clearMessage()
		return false
	case tcell.KeyTab:
		ed.cycleFocus(1)
		return false
	case tcell.KeyBacktab:
		ed.cycleFocus(-1)
		return false
	}

	if ed.focused {
		ed.handleFieldKey(ev)
		return false
	}

	switch ev.Key() {
	case tcell.KeyDelete, tcell.KeyBackspace, tcell.KeyBackspace2:
		ed.pressKey(editor.KeyDelete)
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			return true
		case 'c':
			ed.toggleLinkMode()
		case 'r':
			ed.rereadFile()
		case 'n':
			ed.report(ed.session.AddNode())
		default:
			ed.pressKey(editor.KeyOther)
		}
	}
	return false
}

// pressKey sends a press and release. Terminals report no key-up, so a
// key is held for the length of its event. While the connect modifier is
// latched other keys are ignored, as they would be while it is held.
func (ed *Editor) pressKey(k editor.Key) {
	if ed.linkMode {
		return
	}
	ed.report(ed.session.KeyDown(k))
	ed.session.KeyUp(k)
}

// toggleLinkMode latches the connect modifier. Terminals do not report
// modifier keys on their own, so the key press stands in for holding it.
func (ed *Editor) toggleLinkMode() {
	if ed.linkMode {
		ed.session.KeyUp(editor.KeyCtrl)
		ed.linkMode = false
		ed.showMessage("Connect mode off", MsgInfo)
		return
	}
	ed.report(ed.session.KeyDown(editor.KeyCtrl))
	ed.linkMode = true
	ed.showMessage("Connect mode: drag from one state to another", MsgInfo)
}

// rereadFile picks up edits made to the file by another program.
func (ed *Editor) rereadFile() {
	changed, err := ed.buf.reread()
	if err != nil {
		ed.showMessage(err.Error(), MsgError)
		return
	}
	if !changed {
		ed.showMessage("File unchanged", MsgInfo)
		return
	}
	ed.rebuild("reload")
	ed.showMessage("Reloaded "+ed.buf.path, MsgSuccess)
}

// handleFieldKey edits or activates the focused sidebar control.
func (ed *Editor) handleFieldKey(ev *tcell.EventKey) {
	f := ed.focus
	if textField(f) {
		v := ed.panel.Value(f)
		switch ev.Key() {
		case tcell.KeyRune:
			ed.panel.SetValue(f, v+string(ev.Rune()))
			return
		case tcell.KeyBackspace, tcell.KeyBackspace2:
			if r := []rune(v); len(r) > 0 {
				ed.panel.SetValue(f, string(r[:len(r)-1]))
			}
			return
		}
	}
	if ev.Key() == tcell.KeyEnter || (ev.Key() == tcell.KeyRune && ev.Rune() == ' ') {
		ed.activate(f)
	}
}

// activate commits a text field or presses a button.
func (ed *Editor) activate(f editor.Field) {
	var err error
	switch f {
	case editor.FieldNodeLabel:
		err = ed.session.CommitLabel()
	case editor.FieldRead:
		err = ed.session.CommitRead()
	case editor.FieldWrite:
		err = ed.session.CommitWrite()
	case editor.FieldStartState:
		err = ed.session.CommitStartState()
	case editor.FieldMoveL:
		err = ed.session.SetMove(machine.Left)
	case editor.FieldMoveR:
		err = ed.session.SetMove(machine.Right)
	case editor.FieldDeleteNode:
		err = ed.session.DeleteNode()
	case editor.FieldDeleteEdge:
		err = ed.session.DeleteEdge()
	}
	ed.report(err)
	ed.clampFocus()
}

func (ed *Editor) cycleFocus(step int) {
	fields := ed.panel.focusable()
	if len(fields) == 0 {
		ed.focused = false
		return
	}
	if !ed.focused {
		ed.focused = true
		ed.focus = fields[0]
		return
	}
	i := indexOf(fields, ed.focus)
	ed.focus = fields[(i+step+len(fields))%len(fields)]
}

// clampFocus drops focus from a control that was disabled or hidden.
func (ed *Editor) clampFocus() {
	if ed.focused && indexOf(ed.panel.focusable(), ed.focus) < 0 {
		ed.focused = false
	}
}

func indexOf(fields []editor.Field, f editor.Field) int {
	for i, g := range fields {
		if g == f {
			return i
		}
	}
	return -1
}

func (ed *Editor) handleMouse(ev *tcell.EventMouse) {
	x, y := ev.Position()
	g := ed.grid()
	inCanvas := x < g.cols && y < g.rows

	if inCanvas != ed.pointerInside {
		ed.pointerInside = inCanvas
		if inCanvas {
			ed.session.PointerEnter()
		} else {
			ed.session.PointerLeave()
		}
	}

	down := ev.Buttons()&tcell.Button1 != 0
	ctrl := ev.Modifiers()&tcell.ModCtrl != 0

	if !inCanvas {
		if down && !ed.leftDown {
			ed.clickSidebar(y)
		}
		if !down && ed.leftDown {
			// released off the canvas: end the gesture at the edge
			ed.leftDown = false
			ed.report(ed.session.PointerUp(ed.pointer, ctrl))
		}
		return
	}

	p := g.toDiagram(x, y)
	ed.pointer = p

	switch {
	case down && !ed.leftDown:
		ed.leftDown = true
		ed.focused = false
		ed.report(ed.session.PointerDown(p, ctrl))
	case down:
		ed.session.PointerMove(p)
	case ed.leftDown:
		ed.leftDown = false
		ed.report(ed.session.PointerUp(p, ctrl))
		ed.checkDoubleClick(x, y, p, ctrl)
	default:
		ed.session.PointerMove(p)
	}
}

// checkDoubleClick fires when two releases land on the same cell in
// quick succession.
func (ed *Editor) checkDoubleClick(x, y int, p diagram.Vec, ctrl bool) {
	now := time.Now().UnixMilli()
	if now-ed.lastClickTime < doubleClickMs && x == ed.lastClickX && y == ed.lastClickY {
		ed.lastClickTime = 0
		ed.report(ed.session.DoubleClick(p, ctrl || ed.linkMode))
		return
	}
	ed.lastClickTime = now
	ed.lastClickX, ed.lastClickY = x, y
}

// clickSidebar focuses or presses the control on the clicked row.
func (ed *Editor) clickSidebar(y int) {
	for _, r := range ed.sidebarRows() {
		if r.y != y {
			continue
		}
		if !ed.panel.Enabled(r.field) {
			return
		}
		ed.focused = true
		ed.focus = r.field
		if !textField(r.field) {
			ed.activate(r.field)
		}
		return
	}
}

// sidebarRow places a form control on screen.
type sidebarRow struct {
	field editor.Field
	y     int
}

// sidebarFormTop is the first screen row of the form.
const sidebarFormTop = 4

func (ed *Editor) sidebarRows() []sidebarRow {
	var rows []sidebarRow
	y := sidebarFormTop
	for _, r := range panelRows {
		if !ed.panel.Visible(r.group) {
			continue
		}
		rows = append(rows, sidebarRow{field: r.field, y: y})
		y++
	}
	return rows
}
