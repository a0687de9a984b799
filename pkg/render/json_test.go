package render

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestGenerateJSON(t *testing.T) {
	d, def := buildDiagram(t)

	var buf bytes.Buffer
	if err := GenerateJSON(d, &buf, def.StartState); err != nil {
		t.Fatalf("GenerateJSON failed: %v", err)
	}

	var g jsonGraph
	if err := json.Unmarshal(buf.Bytes(), &g); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, buf.String())
	}
	if g.Start != "right" || !g.Directed {
		t.Errorf("unexpected header: start %q directed %v", g.Start, g.Directed)
	}
	if len(g.Nodes) != len(d.Nodes) || len(g.Links) != len(d.Edges) {
		t.Fatalf("expected %d nodes and %d links, got %d and %d",
			len(d.Nodes), len(d.Edges), len(g.Nodes), len(g.Links))
	}
	if g.Nodes[0].ID != "right" || g.Nodes[0].X != d.Nodes[0].X {
		t.Errorf("expected first node right at its layout position, got %+v", g.Nodes[0])
	}

	shapes := map[string]int{}
	for _, l := range g.Links {
		shapes[l.Shape]++
		if l.Path == "" {
			t.Errorf("link %s -> %s has no path", l.Source, l.Target)
		}
	}
	if shapes["loop"] != 2 || shapes["straight"] != 2 {
		t.Errorf("expected 2 loops and 2 straight links, got %v", shapes)
	}
}
