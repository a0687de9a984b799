package machine

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ParseError reports a malformed definition document.
type ParseError struct {
	Path string // location inside the document, e.g. "table.q0"
	Err  error
}

func (e *ParseError) Error() string {
	if e.Path == "" {
		return "parse machine: " + e.Err.Error()
	}
	return fmt.Sprintf("parse machine: %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func parseErr(path, format string, args ...any) error {
	return &ParseError{Path: path, Err: fmt.Errorf(format, args...)}
}

// Parse reads a definition from YAML text.
func Parse(text string) (*Definition, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(text), &doc); err != nil {
		return nil, &ParseError{Err: err}
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, &ParseError{Err: errors.New("empty document")}
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, parseErr("", "top level must be a mapping")
	}

	d := New("")
	for i := 0; i+1 < len(root.Content); i += 2 {
		k, v := root.Content[i], root.Content[i+1]
		key := k.Value
		d.order = append(d.order, key)
		switch key {
		case KeyTable:
			if err := d.parseTable(v); err != nil {
				return nil, err
			}
			d.hasTable = true
		case KeyStartState:
			if v.Kind != yaml.ScalarNode {
				return nil, parseErr(key, "must be a scalar")
			}
			d.StartState = scalarValue(v)
		case KeyInput, KeyBlank:
			if v.Kind != yaml.ScalarNode {
				return nil, parseErr(key, "must be a scalar")
			}
			if key == KeyInput {
				d.Input = scalarValue(v)
			} else {
				d.Blank = scalarValue(v)
			}
			d.raw[key] = v
		default:
			d.raw[key] = v
		}
	}
	return d, nil
}

func (d *Definition) parseTable(n *yaml.Node) error {
	if isNull(n) {
		return nil
	}
	if n.Kind != yaml.MappingNode {
		return parseErr(KeyTable, "must be a mapping")
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		name := scalarValue(n.Content[i])
		path := KeyTable + "." + name
		if d.HasState(name) {
			return parseErr(path, "duplicate state")
		}
		s := &State{Name: name}
		body := n.Content[i+1]
		if !isNull(body) {
			if body.Kind != yaml.MappingNode {
				return parseErr(path, "must be a mapping of read symbols to instructions")
			}
			for j := 0; j+1 < len(body.Content); j += 2 {
				read, err := readKey(body.Content[j])
				if err != nil {
					return &ParseError{Path: path, Err: err}
				}
				if s.Transition(read) != nil {
					return parseErr(path+"."+read, "duplicate read symbols")
				}
				t, err := parseInstruction(body.Content[j+1])
				if err != nil {
					return &ParseError{Path: path + "." + read, Err: err}
				}
				t.Read = read
				s.Transitions = append(s.Transitions, t)
			}
		}
		d.Table = append(d.Table, s)
	}
	return nil
}

func readKey(n *yaml.Node) (string, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		return scalarValue(n), nil
	case yaml.SequenceNode:
		syms := make([]string, 0, len(n.Content))
		for _, c := range n.Content {
			if c.Kind != yaml.ScalarNode {
				return "", errors.New("read symbols must be scalars")
			}
			syms = append(syms, scalarValue(c))
		}
		return strings.Join(syms, ","), nil
	}
	return "", errors.New("read key must be a symbol or a list of symbols")
}

func parseInstruction(n *yaml.Node) (*Transition, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		switch Direction(n.Value) {
		case Left, Right:
			return &Transition{Move: Direction(n.Value)}, nil
		}
		return nil, fmt.Errorf("instruction %q is not L or R", n.Value)
	case yaml.MappingNode:
		t := &Transition{}
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, v := n.Content[i].Value, n.Content[i+1]
			switch k {
			case "write":
				if v.Kind != yaml.ScalarNode {
					return nil, errors.New("write must be a symbol")
				}
				w := scalarValue(v)
				t.Write = &w
			case string(Left), string(Right):
				if t.Move != "" {
					return nil, errors.New("instruction has both L and R")
				}
				t.Move = Direction(k)
				if !isNull(v) {
					if v.Kind != yaml.ScalarNode {
						return nil, errors.New("next state must be a name")
					}
					t.Next = scalarValue(v)
				}
			default:
				return nil, fmt.Errorf("unknown instruction key %q", k)
			}
		}
		if t.Move == "" {
			return nil, errors.New("instruction has no move (L or R)")
		}
		return t, nil
	}
	return nil, errors.New("instruction must be L, R or a mapping")
}

func isNull(n *yaml.Node) bool {
	return n == nil || (n.Kind == yaml.ScalarNode && n.ShortTag() == "!!null")
}

func scalarValue(n *yaml.Node) string {
	if isNull(n) {
		return ""
	}
	return n.Value
}

// Serialize writes the definition back to YAML, keeping the document order
// of top-level keys and any keys this package does not interpret.
func (d *Definition) Serialize() (string, error) {
	root := &yaml.Node{Kind: yaml.MappingNode}
	seen := make(map[string]bool)
	emit := func(key string) {
		if seen[key] {
			return
		}
		seen[key] = true
		var v *yaml.Node
		switch key {
		case KeyStartState:
			v = scalar(d.StartState)
		case KeyTable:
			v = d.tableNode()
		case KeyInput:
			v = d.keptScalar(key, d.Input)
		case KeyBlank:
			v = d.keptScalar(key, d.Blank)
		default:
			v = d.raw[key]
		}
		if v == nil {
			return
		}
		root.Content = append(root.Content, scalar(key), v)
	}
	for _, key := range d.order {
		emit(key)
	}
	for _, key := range []string{KeyInput, KeyBlank, KeyStartState, KeyTable} {
		emit(key)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{root}}); err != nil {
		return "", fmt.Errorf("failed to encode YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("failed to encode YAML: %w", err)
	}
	return buf.String(), nil
}

// keptScalar reuses the source node when the value is unchanged so quoting
// and style survive a round trip.
func (d *Definition) keptScalar(key, value string) *yaml.Node {
	if n, ok := d.raw[key]; ok && scalarValue(n) == value {
		return n
	}
	return scalar(value)
}

func (d *Definition) tableNode() *yaml.Node {
	n := &yaml.Node{Kind: yaml.MappingNode}
	for _, s := range d.Table {
		var body *yaml.Node
		if len(s.Transitions) == 0 {
			body = null()
		} else {
			body = &yaml.Node{Kind: yaml.MappingNode}
			for _, t := range s.Transitions {
				body.Content = append(body.Content, readKeyNode(t.Read), instructionNode(t))
			}
		}
		n.Content = append(n.Content, scalar(s.Name), body)
	}
	return n
}

func readKeyNode(read string) *yaml.Node {
	syms := strings.Split(read, ",")
	if len(syms) == 1 {
		return scalar(read)
	}
	seq := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
	for _, s := range syms {
		seq.Content = append(seq.Content, scalar(s))
	}
	return seq
}

func instructionNode(t *Transition) *yaml.Node {
	if t.Write == nil && t.Next == "" {
		return scalar(string(t.Move))
	}
	m := &yaml.Node{Kind: yaml.MappingNode, Style: yaml.FlowStyle}
	if t.Write != nil {
		m.Content = append(m.Content, scalar("write"), scalar(*t.Write))
	}
	next := null()
	if t.Next != "" {
		next = scalar(t.Next)
	}
	m.Content = append(m.Content, scalar(string(t.Move)), next)
	return m
}

// scalar leaves the tag empty so the encoder picks plain style for most
// values. Strings that would read back as null are single-quoted.
func scalar(v string) *yaml.Node {
	n := &yaml.Node{Kind: yaml.ScalarNode, Value: v}
	if readsAsNull(v) {
		n.Style = yaml.SingleQuotedStyle
	}
	return n
}

func readsAsNull(v string) bool {
	switch v {
	case "", "~", "null", "Null", "NULL":
		return true
	}
	return false
}

func null() *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
}
