package render

import (
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/Bubbleman532/turing-sandbox/pkg/diagram"
)

// SVGOptions controls SVG output.
type SVGOptions struct {
	Title    string // rendered as <title>
	FontSize int    // pixel size of one em for label anchors (default 14)
}

var markerIDs = []string{"arrowhead", "active-arrowhead", "reversed-arrowhead", "reversed-active-arrowhead"}

const svgCSS = `.edgepath { fill: none; stroke: #333; stroke-width: 3px; marker-end: url(#arrowhead); }
.edgepath.selected-edge { stroke: gold; }
.edgepath.active-edge { marker-end: url(#active-arrowhead); }
.edgepath.reversed-arc { marker-start: url(#reversed-arrowhead); marker-end: none; }
.edgepath.active-edge.reversed-arc { marker-start: url(#reversed-active-arrowhead); marker-end: none; }
.edgelabel { font: 14px sans-serif; text-anchor: middle; }
.node { stroke: #333; stroke-width: 2px; }
.node.selected-node { stroke: gold; stroke-width: 4px; }
.node.start-state { stroke-dasharray: 4 2; }
.nodelabel { font: 14px sans-serif; text-anchor: middle; pointer-events: none; }
`

func f64(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// GenerateSVG renders the diagram's current geometry. start names the
// start state, which gets a dashed outline.
func GenerateSVG(d *diagram.Diagram, start string, opts SVGOptions) string {
	if opts.FontSize == 0 {
		opts.FontSize = 14
	}
	w, h := d.Size()
	em := float64(opts.FontSize)

	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	sb.WriteString(fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" version="1.1" viewBox="0 0 %s %s" width="%s" height="%s">`+"\n",
		f64(w), f64(h), f64(w), f64(h)))
	if opts.Title != "" {
		sb.WriteString(fmt.Sprintf("  <title>%s</title>\n", html.EscapeString(opts.Title)))
	}

	// Arrowheads
	sb.WriteString("  <defs>\n")
	for _, id := range markerIDs {
		reversed := strings.HasPrefix(id, "reversed-")
		refX := "10"
		transform := ""
		if reversed {
			refX = "0"
			transform = ` transform="rotate(180 5 0)"`
		}
		sb.WriteString(fmt.Sprintf(`    <marker id="%s" viewBox="0 -5 10 10" refX="%s" orient="auto" markerWidth="3" markerHeight="3"><path d="M 0 -5 L 10 0 L 0 5 Z"%s/></marker>`+"\n",
			id, refX, transform))
	}
	sb.WriteString("  </defs>\n")
	sb.WriteString("  <style>\n" + svgCSS + "  </style>\n")

	// Edges first so nodes paint over excess line ends
	for i, e := range d.Edges {
		e.RefreshLabels()
		classes := []string{"edgepath", "transition"}
		if e.Selected {
			classes = append(classes, "selected-edge")
		}
		if e.Shape() == diagram.ShapeArc && e.Reversed() {
			classes = append(classes, "reversed-arc")
		}
		sb.WriteString("  <g>\n")
		sb.WriteString(fmt.Sprintf(`    <path class="%s" id="edgepath%d" d="%s"/>`+"\n",
			strings.Join(classes, " "), i, e.Path()))
		for j, p := range e.Placements() {
			attrs := fmt.Sprintf(`class="edgelabel" dy="%sem"`, f64(p.Dy))
			if p.Rotate180 {
				if c, ok := e.LabelPosition(j, em); ok {
					attrs += fmt.Sprintf(` transform="rotate(180 %s %s)"`, f64(c.X), f64(c.Y))
				}
			}
			if !p.Translate.IsZero() {
				attrs += fmt.Sprintf(` transform="translate(%s %s)"`, f64(p.Translate.X), f64(p.Translate.Y))
			}
			sb.WriteString(fmt.Sprintf(`    <text %s><textPath xlink:href="#edgepath%d" startOffset="50%%">%s</textPath></text>`+"\n",
				attrs, i, html.EscapeString(p.Text)))
		}
		sb.WriteString("  </g>\n")
	}

	for i, n := range d.Nodes {
		classes := []string{"node"}
		if n.Selected {
			classes = append(classes, "selected-node")
		}
		if n.Label == start {
			classes = append(classes, "start-state")
		}
		sb.WriteString(fmt.Sprintf(`  <circle class="%s" r="%s" cx="%s" cy="%s" style="fill: %s"/>`+"\n",
			strings.Join(classes, " "), f64(d.Radius()), f64(n.X), f64(n.Y), hexColor(NodeColor(i))))
	}
	for _, n := range d.Nodes {
		sb.WriteString(fmt.Sprintf(`  <text class="nodelabel" dy="0.25em" x="%s" y="%s">%s</text>`+"\n",
			f64(n.X), f64(n.Y), html.EscapeString(n.Label)))
	}

	sb.WriteString("</svg>\n")
	return sb.String()
}
