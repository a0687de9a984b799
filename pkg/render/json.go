package render

import (
	"encoding/json"
	"io"

	"github.com/Bubbleman532/turing-sandbox/pkg/diagram"
)

// jsonGraph is a laid-out diagram in the node/link shape used by D3 force
// graphs, with positions and path data filled in.
type jsonGraph struct {
	Width    float64    `json:"width"`
	Height   float64    `json:"height"`
	Directed bool       `json:"directed"`
	Start    string     `json:"start,omitempty"`
	Nodes    []jsonNode `json:"nodes"`
	Links    []jsonLink `json:"links"`
}

type jsonNode struct {
	ID    string  `json:"id"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Fixed bool    `json:"fixed,omitempty"`
	Color string  `json:"color"`
}

type jsonLink struct {
	Source string   `json:"source"`
	Target string   `json:"target"`
	Labels []string `json:"labels"`
	Shape  string   `json:"shape"`
	Path   string   `json:"path"`
}

// GenerateJSON writes the diagram's nodes and links with their current
// geometry.
func GenerateJSON(d *diagram.Diagram, w io.Writer, start string) error {
	width, height := d.Size()
	g := jsonGraph{
		Width:    width,
		Height:   height,
		Directed: true,
		Start:    start,
		Nodes:    make([]jsonNode, 0, len(d.Nodes)),
		Links:    make([]jsonLink, 0, len(d.Edges)),
	}
	for _, n := range d.Nodes {
		g.Nodes = append(g.Nodes, jsonNode{
			ID:    n.Label,
			X:     n.X,
			Y:     n.Y,
			Fixed: n.Fixed,
			Color: hexColor(NodeColor(n.Index())),
		})
	}
	for _, e := range d.Edges {
		g.Links = append(g.Links, jsonLink{
			Source: e.Source.Label,
			Target: e.Target.Label,
			Labels: e.Labels,
			Shape:  e.Shape().String(),
			Path:   e.Path(),
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(g)
}
