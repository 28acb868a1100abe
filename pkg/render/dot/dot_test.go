package dot

import (
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/strata/pkg/geo"
	"github.com/matzehuels/strata/pkg/graph"
	"github.com/matzehuels/strata/pkg/layout"
)

func sample() *layout.Result {
	return &layout.Result{
		Direction: graph.DirDown,
		Bounds:    geo.Rect{W: 100, H: 80},
		Nodes: []layout.Node{
			{ID: "a", Layer: 0, X: 0, Y: 0, Width: 36, Height: 18,
				Ports: []layout.Port{{ID: "a#out", Implicit: true}},
				Meta:  map[string]any{"label": "Alpha", "team": "core"}},
			{ID: "b", Layer: 1, X: 0, Y: 62, Width: 36, Height: 18,
				Ports: []layout.Port{{ID: "b#in", Implicit: true}}},
		},
		Edges: []layout.Edge{{ID: "e0", Source: "a#out", Target: "b#in"}},
	}
}

func TestToDOT(t *testing.T) {
	out := ToDOT(sample(), Options{})

	for _, want := range []string{
		"digraph G {",
		"rankdir=TB",
		"splines=polyline",
		`"a" [label="Alpha", pos="18,71!", width=0.5, height=0.25];`,
		`"b" [label="b", pos="18,9!", width=0.5, height=0.25];`,
		`"a" -> "b" [id="e0"];`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("DOT lacks %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "team") {
		t.Error("metadata shown without Detailed")
	}
}

func TestToDOTDetailed(t *testing.T) {
	out := ToDOT(sample(), Options{Detailed: true, Orthogonal: true})
	if !strings.Contains(out, `Alpha\nlayer: 0\norder: 0\nteam: core`) {
		t.Errorf("detailed label missing:\n%s", out)
	}
	if !strings.Contains(out, "splines=ortho") {
		t.Error("orthogonal splines not requested")
	}
}

func TestRenderSVG(t *testing.T) {
	if testing.Short() {
		t.Skip("graphviz rendering is slow")
	}
	out, err := RenderSVG(context.Background(), ToDOT(sample(), Options{}))
	if err != nil {
		t.Fatalf("RenderSVG() error: %v", err)
	}
	if !strings.Contains(string(out), "<svg") {
		t.Errorf("output is not SVG: %.200s", out)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="10pt" height="20pt" viewBox="0.00 0.00 10.00 20.00" xmlns="x"><g/></svg>`)
	got := string(normalizeViewBox(in))
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 10.00 20.00" width="10" height="20"><g/></svg>`
	if got != want {
		t.Errorf("normalizeViewBox() = %s, want %s", got, want)
	}
}
