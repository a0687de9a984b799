package editor

// Field is one control of the edit panel.
type Field int

const (
	FieldNodeLabel Field = iota
	FieldStartState
	FieldDeleteNode
	FieldRead
	FieldWrite
	FieldMoveL
	FieldMoveR
	FieldDeleteEdge
	numFields
)

var fieldNames = [...]string{
	FieldNodeLabel:  "node label",
	FieldStartState: "start state",
	FieldDeleteNode: "delete node",
	FieldRead:       "read",
	FieldWrite:      "write",
	FieldMoveL:      "move L",
	FieldMoveR:      "move R",
	FieldDeleteEdge: "delete edge",
}

func (f Field) String() string {
	if f < 0 || f >= numFields {
		return "unknown"
	}
	return fieldNames[f]
}

// Group is a set of controls shown or hidden together.
type Group int

const (
	GroupNodeControls Group = iota
	GroupEdgeControls
)

// EditPanel is the form that reflects the selection. The session sets
// enablement, values and visibility; the host owns the widgets.
type EditPanel interface {
	SetEnabled(f Field, enabled bool)
	Enabled(f Field) bool
	SetValue(f Field, v string)
	Value(f Field) string
	SetChecked(f Field, checked bool)
	Checked(f Field) bool
	SetVisible(g Group, visible bool)
	Alert(msg string)
}

// MemoryPanel is an EditPanel without widgets. Hosts that draw their own
// form read it back; tests inspect it.
type MemoryPanel struct {
	enabled [numFields]bool
	values  [numFields]string
	checked [numFields]bool
	visible [2]bool

	Alerts []string
}

// NewMemoryPanel returns a panel with everything disabled and the edge
// controls hidden.
func NewMemoryPanel() *MemoryPanel {
	p := &MemoryPanel{}
	p.visible[GroupNodeControls] = true
	return p
}

func (p *MemoryPanel) SetEnabled(f Field, enabled bool) { p.enabled[f] = enabled }
func (p *MemoryPanel) Enabled(f Field) bool             { return p.enabled[f] }
func (p *MemoryPanel) SetValue(f Field, v string)       { p.values[f] = v }
func (p *MemoryPanel) Value(f Field) string             { return p.values[f] }
func (p *MemoryPanel) SetChecked(f Field, checked bool) { p.checked[f] = checked }
func (p *MemoryPanel) Checked(f Field) bool             { return p.checked[f] }
func (p *MemoryPanel) SetVisible(g Group, visible bool) { p.visible[g] = visible }

// Visible reports whether group g is shown.
func (p *MemoryPanel) Visible(g Group) bool { return p.visible[g] }

func (p *MemoryPanel) Alert(msg string) { p.Alerts = append(p.Alerts, msg) }

// LastAlert returns the most recent alert, or "".
func (p *MemoryPanel) LastAlert() string {
	if len(p.Alerts) == 0 {
		return ""
	}
	return p.Alerts[len(p.Alerts)-1]
}
