package main

import (
	"fmt"
	"math"
	"path/filepath"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/Bubbleman532/turing-sandbox/pkg/diagram"
	"github.com/Bubbleman532/turing-sandbox/pkg/editor"
)

// Styles
var (
	styleDefault    = tcell.StyleDefault
	styleState      = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleStateSel   = tcell.StyleDefault.Background(tcell.ColorGold).Foreground(tcell.ColorBlack)
	styleStateInit  = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleTrans      = tcell.StyleDefault.Foreground(tcell.ColorTeal)
	styleTransSel   = tcell.StyleDefault.Foreground(tcell.ColorGold).Bold(true)
	styleTransDrag  = tcell.StyleDefault.Foreground(tcell.NewRGBColor(200, 162, 200)) // Lilac
	styleLabel      = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleSidebar    = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleSidebarH   = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleDisabled   = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleFocus      = tcell.StyleDefault.Background(tcell.ColorBlue).Foreground(tcell.ColorWhite)
	styleStatus     = tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorNavy)
	styleMsgInfo    = tcell.StyleDefault.Foreground(tcell.ColorSilver).Background(tcell.ColorNavy)
	styleMsgError   = tcell.StyleDefault.Foreground(tcell.ColorRed).Background(tcell.ColorNavy).Bold(true)
	styleMsgSuccess = tcell.StyleDefault.Foreground(tcell.ColorSilver).Background(tcell.ColorNavy)
	styleHelp       = tcell.StyleDefault.Foreground(tcell.ColorGray) // Help bar on default background
	styleBorder     = tcell.StyleDefault.Foreground(tcell.ColorGray)
)

func (ed *Editor) draw() {
	ed.screen.Clear()
	w, h := ed.screen.Size()

	ed.drawCanvas()
	ed.drawSidebar(w, h)
	ed.drawStatusBar(w, h)
}

func (ed *Editor) drawCanvas() {
	g := ed.grid()

	for _, e := range ed.d.Edges {
		ed.drawEdge(g, e)
	}
	ed.drawPreview(g)

	for _, n := range ed.d.Nodes {
		style := styleState
		switch {
		case n.Selected || n == ed.session.SelectedNode():
			style = styleStateSel
		case n.Label == ed.def.StartState:
			style = styleStateInit
		}
		x, y := g.toCell(n.Pos())
		text := "(" + n.Label + ")"
		ed.drawClipped(g, x-len([]rune(text))/2, y, text, style)
	}
}

// drawEdge plots the sampled path, its arrowhead and its labels.
func (ed *Editor) drawEdge(g grid, e *diagram.Edge) {
	style := styleTrans
	if e == ed.session.SelectedEdge() {
		style = styleTransSel
	}

	// dense enough to leave no gaps between cells
	pts := e.Points(2 * (g.cols + g.rows))
	if len(pts) < 2 {
		return
	}
	ed.plot(g, pts, '·', style)

	tip, from := pts[len(pts)-1], pts[len(pts)-2]
	if e.Shape() == diagram.ShapeArc && e.Reversed() {
		tip, from = pts[0], pts[1]
	}
	x, y := g.toCell(tip)
	ed.setCell(g, x, y, arrowRune(tip.Sub(from)), style)

	e.RefreshLabels()
	for i, p := range e.Placements() {
		at, ok := e.LabelPosition(i, g.cellHeight())
		if !ok {
			continue
		}
		lx, ly := g.toCell(at)
		ed.drawClipped(g, lx-len([]rune(p.Text))/2, ly, p.Text, styleLabel)
	}
}

// drawPreview traces the connection being drawn in connect mode.
func (ed *Editor) drawPreview(g grid) {
	from := ed.session.DragFrom()
	if from == nil || ed.session.Preview() == "" {
		return
	}
	if over := ed.d.NodeAt(ed.pointer); over == from {
		x, y := g.toCell(from.Pos())
		ed.drawClipped(g, x-1, y-2, "↻", styleTransDrag)
		return
	}
	a, b := from.Pos(), ed.pointer
	n := int(b.Sub(a).Norm()/g.cellHeight())*2 + 2
	pts := make([]diagram.Vec, n+1)
	for i := range pts {
		pts[i] = a.Add(b.Sub(a).Scale(float64(i) / float64(n)))
	}
	ed.plot(g, pts, '·', styleTransDrag)
}

func (ed *Editor) plot(g grid, pts []diagram.Vec, r rune, style tcell.Style) {
	for _, p := range pts {
		x, y := g.toCell(p)
		ed.setCell(g, x, y, r, style)
	}
}

// arrowRune picks the arrow closest to direction d, screen y pointing down.
func arrowRune(d diagram.Vec) rune {
	arrows := []rune{'→', '↘', '↓', '↙', '←', '↖', '↑', '↗'}
	a := math.Atan2(d.Y, d.X)
	i := int(math.Round(a/(math.Pi/4))+8) % 8
	return arrows[i]
}

func (ed *Editor) setCell(g grid, x, y int, r rune, style tcell.Style) {
	if x < 0 || y < 0 || x >= g.cols || y >= g.rows {
		return
	}
	ed.screen.SetContent(x, y, r, nil, style)
}

func (ed *Editor) drawClipped(g grid, x, y int, s string, style tcell.Style) {
	for i, r := range []rune(s) {
		ed.setCell(g, x+i, y, r, style)
	}
}

func (ed *Editor) drawSidebar(w, h int) {
	dividerX := w - ed.sidebarWidth
	for y := 0; y < h-2; y++ {
		ed.screen.SetContent(dividerX, y, '│', nil, styleBorder)
	}
	x := dividerX + 2
	width := ed.sidebarWidth - 3

	ed.drawString(x, 0, truncate("tmedit: "+ed.name, width), styleSidebarH)
	ed.drawString(x, 1, truncate("Selection: "+ed.session.State().String(), width), styleSidebar)

	heading := "State"
	if ed.panel.Visible(editor.GroupEdgeControls) {
		heading = "Transition"
	}
	ed.drawString(x, sidebarFormTop-1, heading, styleSidebarH)

	for _, r := range ed.sidebarRows() {
		style := styleSidebar
		switch {
		case ed.focused && r.field == ed.focus:
			style = styleFocus
		case !ed.panel.Enabled(r.field):
			style = styleDisabled
		}
		text := ed.panel.rowText(r.field)
		if ed.focused && r.field == ed.focus && textField(r.field) {
			text += "_"
		}
		ed.drawString(x, r.y, truncate(text, width), style)
	}

	y := sidebarFormTop + len(ed.sidebarRows()) + 1
	ed.drawString(x, y, "States:", styleSidebarH)
	y++
	for _, name := range ed.def.StateNames() {
		if y >= h-3 {
			ed.drawString(x, y, "  ...", styleSidebar)
			return
		}
		prefix := "  "
		if name == ed.def.StartState {
			prefix = "→ "
		}
		ed.drawString(x, y, truncate(prefix+name, width), styleSidebar)
		y++
	}
}

func (ed *Editor) drawStatusBar(w, h int) {
	y := h - 1

	// Background
	for x := 0; x < w; x++ {
		ed.screen.SetContent(x, y, ' ', nil, styleStatus)
	}

	fileInfo := filepath.Base(ed.buf.path)
	ed.drawString(1, y, fileInfo, styleStatus)

	modeStr := ed.modeString()
	ed.drawString(w/2-len(modeStr)/2, y, modeStr, styleStatus)

	if ed.message != "" {
		style := styleMsgInfo
		switch ed.messageType {
		case MsgError, MsgWarning:
			style = styleMsgError
		case MsgSuccess:
			style = styleMsgSuccess
		}
		if flashes(ed.messageType) {
			elapsed := time.Now().UnixMilli() - ed.messageFlashStart.Load()
			if flashInverted(elapsed) {
				style = style.Reverse(true)
			}
		}
		msg := truncate(ed.message, max(w/2-2, 4))
		ed.drawString(w-len([]rune(msg))-2, y, msg, style)
	}

	// Help bar
	y = h - 2
	for x := 0; x < w; x++ {
		ed.screen.SetContent(x, y, ' ', nil, styleDefault)
	}
	ed.drawString(1, y, ed.helpString(), styleHelp)
}

func (ed *Editor) drawString(x, y int, s string, style tcell.Style) {
	for i, r := range []rune(s) {
		ed.screen.SetContent(x+i, y, r, nil, style)
	}
}

func (ed *Editor) modeString() string {
	switch {
	case ed.linkMode:
		return "CONNECT"
	case ed.session.State() == editor.Dragging:
		return "MOVE"
	case ed.focused:
		return "EDIT " + ed.focus.String()
	}
	if ed.d.Layout().Running() {
		return fmt.Sprintf("LAYOUT %.3f", ed.d.Layout().Alpha())
	}
	return ""
}

func (ed *Editor) helpString() string {
	if ed.focused {
		return "Type text  Enter/Space:Apply  Tab:Next field  Esc:Canvas"
	}
	return "Drag:Move  c:Connect  DblClick/n:Add state  Del:Delete  Tab:Edit fields  r:Reload file  q:Quit"
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
