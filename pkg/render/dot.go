package render

import (
	"fmt"
	"strings"

	"github.com/Bubbleman532/turing-sandbox/pkg/diagram"
)

// GenerateDOT converts a diagram to Graphviz DOT. Node positions are
// emitted as pinned pos attributes so neato -n reproduces the layout.
func GenerateDOT(d *diagram.Diagram, start, title string) string {
	var sb strings.Builder
	_, h := d.Size()

	sb.WriteString("digraph TM {\n")
	sb.WriteString("    node [shape=circle, fontname=\"Helvetica\", fontsize=11];\n")
	sb.WriteString("    edge [fontname=\"Helvetica\", fontsize=10];\n")
	sb.WriteString("\n")

	if title != "" {
		sb.WriteString("    labelloc=\"t\";\n")
		sb.WriteString(fmt.Sprintf("    label=\"%s\";\n", escapeDOT(title)))
		sb.WriteString("\n")
	}

	// Invisible start node
	if start != "" && d.Node(start) != nil {
		sb.WriteString("    __start [shape=none, label=\"\", width=0, height=0];\n")
		sb.WriteString(fmt.Sprintf("    __start -> \"%s\";\n", escapeDOT(start)))
		sb.WriteString("\n")
	}

	for i, n := range d.Nodes {
		// DOT's y axis points up
		sb.WriteString(fmt.Sprintf("    \"%s\" [pos=\"%.1f,%.1f!\", style=filled, fillcolor=\"%s\"];\n",
			escapeDOT(n.Label), n.X, h-n.Y, hexColor(NodeColor(i))))
	}
	sb.WriteString("\n")

	for _, e := range d.Edges {
		labels := make([]string, len(e.Labels))
		for i, l := range e.Labels {
			labels[i] = escapeDOT(l)
		}
		sb.WriteString(fmt.Sprintf("    \"%s\" -> \"%s\" [label=\"%s\"];\n",
			escapeDOT(e.Source.Label), escapeDOT(e.Target.Label), strings.Join(labels, "\\n")))
	}

	sb.WriteString("}\n")
	return sb.String()
}

func escapeDOT(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "<", "\\<")
	s = strings.ReplaceAll(s, ">", "\\>")
	return s
}
