package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Bubbleman532/turing-sandbox/pkg/editor"
	"github.com/Bubbleman532/turing-sandbox/pkg/machine"
)

// fileBuffer is the definition text, backed by the file being edited.
type fileBuffer struct {
	path string
	text string
}

// openBuffer reads path, creating a one-state machine when it does not
// exist yet.
func openBuffer(path string) (*fileBuffer, error) {
	b := &fileBuffer{path: path}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		def := machine.New("State1")
		def.AddState("State1")
		text, err := def.Serialize()
		if err != nil {
			return nil, err
		}
		return b, b.SetText(text)
	}
	if err != nil {
		return nil, err
	}
	b.text = string(data)
	return b, nil
}

func (b *fileBuffer) Text() string { return b.text }

// SetText replaces the file through a temp file so a failed write leaves
// the old text in place.
func (b *fileBuffer) SetText(text string) error {
	tmp, err := os.CreateTemp(filepath.Dir(b.path), ".tmedit-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.WriteString(text); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), b.path); err != nil {
		return err
	}
	b.text = text
	return nil
}

// reread picks up changes made to the file outside the editor.
func (b *fileBuffer) reread() (bool, error) {
	data, err := os.ReadFile(b.path)
	if err != nil {
		return false, err
	}
	changed := string(data) != b.text
	b.text = string(data)
	return changed, nil
}

// termPanel is the sidebar form. Alerts go to the status bar.
type termPanel struct {
	*editor.MemoryPanel
	alert func(msg string)
}

func newTermPanel(alert func(string)) *termPanel {
	return &termPanel{MemoryPanel: editor.NewMemoryPanel(), alert: alert}
}

func (p *termPanel) Alert(msg string) {
	p.MemoryPanel.Alert(msg)
	p.alert(msg)
}

// textField reports whether f takes typed input.
func textField(f editor.Field) bool {
	switch f {
	case editor.FieldNodeLabel, editor.FieldRead, editor.FieldWrite:
		return true
	}
	return false
}

// panelRow is one line of the sidebar form.
type panelRow struct {
	field editor.Field
	group editor.Group
}

var panelRows = []panelRow{
	{editor.FieldNodeLabel, editor.GroupNodeControls},
	{editor.FieldStartState, editor.GroupNodeControls},
	{editor.FieldDeleteNode, editor.GroupNodeControls},
	{editor.FieldRead, editor.GroupEdgeControls},
	{editor.FieldWrite, editor.GroupEdgeControls},
	{editor.FieldMoveL, editor.GroupEdgeControls},
	{editor.FieldMoveR, editor.GroupEdgeControls},
	{editor.FieldDeleteEdge, editor.GroupEdgeControls},
}

// focusable lists the fields that can take focus, in sidebar order.
func (p *termPanel) focusable() []editor.Field {
	var fields []editor.Field
	for _, r := range panelRows {
		if p.Visible(r.group) && p.Enabled(r.field) {
			fields = append(fields, r.field)
		}
	}
	return fields
}

// rowText renders a form line.
func (p *termPanel) rowText(f editor.Field) string {
	switch f {
	case editor.FieldNodeLabel:
		return "Label: " + p.Value(f)
	case editor.FieldRead:
		return "Read:  " + p.Value(f)
	case editor.FieldWrite:
		return "Write: " + p.Value(f)
	case editor.FieldStartState:
		box := "[ ]"
		if p.Checked(f) {
			box = "[x]"
		}
		return box + " Start state"
	case editor.FieldMoveL:
		return "[ Move L ]"
	case editor.FieldMoveR:
		return "[ Move R ]"
	case editor.FieldDeleteNode:
		return "[ Delete node ]"
	case editor.FieldDeleteEdge:
		return "[ Delete edge ]"
	}
	return fmt.Sprint(f)
}
