package placement

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"testing"

	"github.com/matzehuels/strata/pkg/crossing"
	"github.com/matzehuels/strata/pkg/cycle"
	"github.com/matzehuels/strata/pkg/geo"
	"github.com/matzehuels/strata/pkg/graph"
	"github.com/matzehuels/strata/pkg/graph/lgraph"
	"github.com/matzehuels/strata/pkg/layering"
)

var defaults = Options{NodeSpacing: 20, LayerSpacing: 40, EdgeSpacing: 10}

func ordered(t *testing.T, dir graph.Direction, sizes map[string][2]float64, nodes []string, edges ...[2]string) *lgraph.View {
	t.Helper()
	g := graph.New()
	for _, n := range nodes {
		w, h := 30.0, 20.0
		if s, ok := sizes[n]; ok {
			w, h = s[0], s[1]
		}
		if _, err := g.AddNode(n, w, h); err != nil {
			t.Fatal(err)
		}
	}
	for _, e := range edges {
		if _, err := g.Connect("", e[0], e[1]); err != nil {
			t.Fatal(err)
		}
	}
	cycle.Break(g, cycle.DFS)
	if err := layering.Assign(g, layering.Options{}); err != nil {
		t.Fatal(err)
	}
	f := lgraph.Frame{Dir: dir}
	lgraph.PreparePorts(g, f)
	v, err := lgraph.Build(g, f)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := crossing.Minimize(context.Background(), v, crossing.Options{Iterations: 8}); err != nil {
		t.Fatal(err)
	}
	return v
}

func wide() ([]string, [][2]string) {
	nodes := []string{"root"}
	var edges [][2]string
	for i := range 5 {
		mid := fmt.Sprintf("m%d", i)
		nodes = append(nodes, mid)
		edges = append(edges, [2]string{"root", mid})
		for j := range i % 3 {
			leaf := fmt.Sprintf("l%d_%d", i, j)
			nodes = append(nodes, leaf)
			edges = append(edges, [2]string{mid, leaf})
		}
	}
	edges = append(edges, [2]string{"root", "l4_0"}, [2]string{"m0", "l2_1"})
	return nodes, edges
}

func TestPlace_Spacing(t *testing.T) {
	nodes, edges := wide()
	sizes := map[string][2]float64{"m2": {60, 45}, "l4_1": {20, 70}}
	for _, dir := range []graph.Direction{graph.DirRight, graph.DirDown, graph.DirLeft, graph.DirUp} {
		t.Run(dir.String(), func(t *testing.T) {
			v := ordered(t, dir, sizes, nodes, edges...)
			if err := Place(v, defaults); err != nil {
				t.Fatalf("Place() error: %v", err)
			}
			if err := Check(v, defaults); err != nil {
				t.Error(err)
			}

			// no two real nodes overlap in the drawing
			g := v.Graph
			for a := range g.NodeCount() {
				for b := a + 1; b < g.NodeCount(); b++ {
					ra, rb := g.Node(graph.NodeID(a)).Rect(), g.Node(graph.NodeID(b)).Rect()
					if ra.Overlaps(rb) {
						t.Errorf("%s %v overlaps %s %v", g.Node(graph.NodeID(a)).Name, ra,
							g.Node(graph.NodeID(b)).Name, rb)
					}
				}
			}
		})
	}
}

func TestPlace_LayerBands(t *testing.T) {
	sizes := map[string][2]float64{"b": {80, 20}}
	v := ordered(t, graph.DirRight, sizes, []string{"a", "b", "c", "d"},
		[2]string{"a", "b"}, [2]string{"a", "c"}, [2]string{"b", "d"}, [2]string{"c", "d"})
	if err := Place(v, defaults); err != nil {
		t.Fatal(err)
	}

	x := func(name string) float64 {
		id, _ := v.Graph.NodeByName(name)
		return v.Graph.Node(id).Pos.X
	}
	if got := x("a"); !geo.Near(got, 0) {
		t.Errorf("a.x = %v, want 0", got)
	}
	// layer 1 is as deep as b (80); c is centered in it
	if got := x("b"); !geo.Near(got, 70) {
		t.Errorf("b.x = %v, want 70", got)
	}
	if got := x("c"); !geo.Near(got, 95) {
		t.Errorf("c.x = %v, want 95", got)
	}
	if got := x("d"); !geo.Near(got, 190) {
		t.Errorf("d.x = %v, want 190", got)
	}
}

func TestPlace_ChainIsStraight(t *testing.T) {
	v := ordered(t, graph.DirDown, nil, []string{"a", "b", "c"},
		[2]string{"a", "b"}, [2]string{"b", "c"})
	if err := Place(v, defaults); err != nil {
		t.Fatal(err)
	}
	g := v.Graph
	for i := 1; i < g.NodeCount(); i++ {
		if got, want := g.Node(graph.NodeID(i)).Pos.X, g.Node(0).Pos.X; !geo.Near(got, want) {
			t.Errorf("%s.x = %v, want %v", g.Node(graph.NodeID(i)).Name, got, want)
		}
	}
}

func TestPlace_PortsAlign(t *testing.T) {
	// b's input port sits near its top, so b moves up to meet a's output.
	g := graph.New()
	a, _ := g.AddNode("a", 30, 20)
	b, _ := g.AddNode("b", 30, 60)
	_, _ = g.AddPort(a, "a.out", graph.SideEast, geo.Pt(30, 10))
	_, _ = g.AddPort(b, "b.in", graph.SideWest, geo.Pt(0, 45))
	if _, err := g.Connect("", "a.out", "b.in"); err != nil {
		t.Fatal(err)
	}
	if err := layering.Assign(g, layering.Options{}); err != nil {
		t.Fatal(err)
	}
	v, err := lgraph.Build(g, lgraph.Frame{Dir: graph.DirRight})
	if err != nil {
		t.Fatal(err)
	}
	if err := Place(v, defaults); err != nil {
		t.Fatal(err)
	}
	ya := g.Node(a).Pos.Y + 10
	yb := g.Node(b).Pos.Y + 45
	if !geo.Near(ya, yb) {
		t.Errorf("port heights %v and %v differ", ya, yb)
	}
}

func TestPlace_DummiesKeepEdgeSpacing(t *testing.T) {
	nodes := []string{"s", "t", "u", "x"}
	edges := [][2]string{{"s", "t"}, {"t", "u"}, {"s", "u"}, {"s", "u"}, {"s", "x"}}
	v := ordered(t, graph.DirRight, nil, nodes, edges...)
	if err := Place(v, defaults); err != nil {
		t.Fatal(err)
	}
	if v.DummyCount() != 2 {
		t.Fatalf("DummyCount() = %d, want 2", v.DummyCount())
	}
	if err := Check(v, defaults); err != nil {
		t.Error(err)
	}
}

func TestPlace_BlocksPackTight(t *testing.T) {
	// Unconnected nodes form single-node blocks; longest-path compaction
	// leaves exactly one separation between neighbours.
	sizes := map[string][2]float64{"b": {30, 50}}
	v := ordered(t, graph.DirRight, sizes, []string{"a", "b", "c", "d"})
	if err := Place(v, defaults); err != nil {
		t.Fatalf("Place() error: %v", err)
	}

	g := v.Graph
	rects := make([]geo.Rect, g.NodeCount())
	for i := range rects {
		rects[i] = g.Node(graph.NodeID(i)).Rect()
	}
	slices.SortFunc(rects, func(a, b geo.Rect) int { return cmp.Compare(a.Y, b.Y) })
	for i := 1; i < len(rects); i++ {
		if gap := rects[i].Y - rects[i-1].Bottom(); !geo.Near(gap, defaults.NodeSpacing) {
			t.Errorf("gap between %v and %v = %g, want %g", rects[i-1], rects[i], gap, defaults.NodeSpacing)
		}
	}
}
