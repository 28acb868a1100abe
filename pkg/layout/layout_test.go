package layout

import (
	"context"
	"fmt"
	"testing"

	"github.com/matzehuels/strata/pkg/errors"
	"github.com/matzehuels/strata/pkg/geo"
	"github.com/matzehuels/strata/pkg/graph"
	"github.com/matzehuels/strata/pkg/routing"
)

func build(t *testing.T, nodes []string, edges ...[2]string) *graph.Graph {
	t.Helper()
	g := graph.New()
	for _, n := range nodes {
		if _, err := g.AddNode(n, 30, 20); err != nil {
			t.Fatal(err)
		}
	}
	for _, e := range edges {
		if _, err := g.Connect("", e[0], e[1]); err != nil {
			t.Fatal(err)
		}
	}
	return g
}

func mesh(t *testing.T) *graph.Graph {
	return build(t, []string{"a", "b", "c", "d", "e", "f", "g"},
		[2]string{"a", "b"}, [2]string{"a", "c"}, [2]string{"a", "g"},
		[2]string{"b", "d"}, [2]string{"c", "d"}, [2]string{"c", "e"},
		[2]string{"d", "f"}, [2]string{"e", "f"}, [2]string{"b", "f"},
		[2]string{"f", "a"}, [2]string{"e", "e"}, [2]string{"g", "d"})
}

func mustLayout(t *testing.T, g *graph.Graph, opts Options) *Result {
	t.Helper()
	res, err := Layout(context.Background(), g, opts)
	if err != nil {
		t.Fatalf("Layout() error: %v", err)
	}
	return res
}

func node(t *testing.T, res *Result, id string) *Node {
	t.Helper()
	n, ok := res.NodeByID(id)
	if !ok {
		t.Fatalf("node %q missing from result", id)
	}
	return n
}

func TestLayout_BrokenCycle(t *testing.T) {
	g := build(t, []string{"A", "B", "C", "D"},
		[2]string{"A", "B"}, [2]string{"B", "C"}, [2]string{"C", "A"}, [2]string{"C", "D"})
	res := mustLayout(t, g, Options{})

	for id, want := range map[string]int{"A": 0, "B": 1, "C": 2, "D": 3} {
		if got := node(t, res, id).Layer; got != want {
			t.Errorf("layer(%s) = %d, want %d", id, got, want)
		}
	}
	if res.Stats.Reversed != 1 {
		t.Errorf("Reversed = %d, want 1", res.Stats.Reversed)
	}
	if res.Stats.Crossings != 0 {
		t.Errorf("Crossings = %d, want 0", res.Stats.Crossings)
	}

	var into []Edge
	for _, e := range res.Edges {
		if e.Target == "D#in" {
			into = append(into, e)
		}
		if e.Reversed && e.ID != "e2" {
			t.Errorf("edge %s reversed, want only C→A", e.ID)
		}
	}
	if len(into) != 1 || into[0].Source != "C#out" {
		t.Fatalf("edges into D = %+v, want one from C", into)
	}

	// The reversed edge is still reported from C to A.
	e, _ := res.EdgeByID("e2")
	c, a := node(t, res, "C").Rect(), node(t, res, "A").Rect()
	if !onBoundary(c, e.Route[0]) || !onBoundary(a, e.Route[len(e.Route)-1]) {
		t.Errorf("route of C→A = %v, want it to run from C %v to A %v", e.Route, c, a)
	}
}

func TestLayout_ParallelEdges(t *testing.T) {
	g := build(t, []string{"a", "b"}, [2]string{"a", "b"}, [2]string{"a", "b"}, [2]string{"a", "b"})
	res := mustLayout(t, g, Options{})

	if node(t, res, "a").Layer != 0 || node(t, res, "b").Layer != 1 {
		t.Errorf("layers = %d,%d, want 0,1", node(t, res, "a").Layer, node(t, res, "b").Layer)
	}
	if res.Stats.Crossings != 0 {
		t.Errorf("Crossings = %d, want 0", res.Stats.Crossings)
	}
	seen := make(map[string]bool)
	for _, e := range res.Edges {
		key := fmt.Sprint(e.Route)
		if seen[key] {
			t.Errorf("edge %s shares its route %v with another edge", e.ID, e.Route)
		}
		seen[key] = true
	}
}

func TestLayout_Geometry(t *testing.T) {
	for _, mode := range []routing.Mode{routing.Orthogonal, routing.Polyline} {
		for _, dir := range []graph.Direction{graph.DirRight, graph.DirDown, graph.DirLeft, graph.DirUp} {
			t.Run(fmt.Sprintf("%s/%s", mode, dir), func(t *testing.T) {
				res := mustLayout(t, mesh(t), Options{Direction: dir, Routing: mode})

				if !geo.Near(res.Bounds.X, 0) || !geo.Near(res.Bounds.Y, 0) {
					t.Errorf("Bounds = %v, want origin at 0,0", res.Bounds)
				}
				for i := range res.Nodes {
					a := res.Nodes[i].Rect()
					if a.X < -geo.Epsilon || a.Y < -geo.Epsilon {
						t.Errorf("node %s at %v lies outside the bounds", res.Nodes[i].ID, a)
					}
					for j := i + 1; j < len(res.Nodes); j++ {
						if a.Overlaps(res.Nodes[j].Rect()) {
							t.Errorf("nodes %s and %s overlap", res.Nodes[i].ID, res.Nodes[j].ID)
						}
					}
				}
				for _, e := range res.Edges {
					if mode == routing.Orthogonal && !geo.IsOrthogonal(e.Route) {
						t.Errorf("edge %s route %v is not orthogonal", e.ID, e.Route)
					}
					for _, b := range e.Bends {
						for _, n := range res.Nodes {
							if n.Rect().Contains(b) {
								t.Errorf("bend %v of edge %s lies inside node %s", b, e.ID, n.ID)
							}
						}
					}
				}
				checkFlow(t, res)
				checkOrders(t, res)
			})
		}
	}
}

// checkFlow verifies that layers advance along the layout direction.
func checkFlow(t *testing.T, res *Result) {
	t.Helper()
	for _, a := range res.Nodes {
		for _, b := range res.Nodes {
			if a.Layer >= b.Layer {
				continue
			}
			var ok bool
			switch res.Direction {
			case graph.DirRight:
				ok = a.X+a.Width <= b.X+geo.Epsilon
			case graph.DirLeft:
				ok = b.X+b.Width <= a.X+geo.Epsilon
			case graph.DirDown:
				ok = a.Y+a.Height <= b.Y+geo.Epsilon
			case graph.DirUp:
				ok = b.Y+b.Height <= a.Y+geo.Epsilon
			}
			if !ok {
				t.Errorf("%s: node %s (layer %d) does not precede %s (layer %d)",
					res.Direction, a.ID, a.Layer, b.ID, b.Layer)
			}
		}
	}
}

func checkOrders(t *testing.T, res *Result) {
	t.Helper()
	seen := make(map[[2]int]string)
	for _, n := range res.Nodes {
		key := [2]int{n.Layer, n.Order}
		if other, dup := seen[key]; dup {
			t.Errorf("nodes %s and %s share layer %d order %d", other, n.ID, n.Layer, n.Order)
		}
		seen[key] = n.ID
	}
}

func TestLayout_Components(t *testing.T) {
	nodes := []string{"a", "b", "c", "x", "y", "lonely"}
	edges := [][2]string{{"a", "b"}, {"b", "c"}, {"x", "y"}}

	res := mustLayout(t, build(t, nodes, edges...), Options{})
	if res.Stats.Components != 3 {
		t.Errorf("Components = %d, want 3", res.Stats.Components)
	}
	for i := range res.Nodes {
		for j := i + 1; j < len(res.Nodes); j++ {
			if res.Nodes[i].Rect().Overlaps(res.Nodes[j].Rect()) {
				t.Errorf("nodes %s and %s overlap", res.Nodes[i].ID, res.Nodes[j].ID)
			}
		}
	}
	checkOrders(t, res)

	together := false
	res = mustLayout(t, build(t, nodes, edges...), Options{SeparateComponents: &together})
	if res.Stats.Components != 1 {
		t.Errorf("Components = %d, want 1", res.Stats.Components)
	}
}

func TestLayout_Deterministic(t *testing.T) {
	opts := Options{Restarts: 4, Seed: 7}
	want := mustLayout(t, mesh(t), opts)

	for _, parallel := range []bool{false, true} {
		o := opts
		o.Parallel = parallel
		got := mustLayout(t, mesh(t), o)
		for i := range want.Nodes {
			if want.Nodes[i].X != got.Nodes[i].X || want.Nodes[i].Y != got.Nodes[i].Y {
				t.Errorf("parallel=%v: node %s at %v,%v, want %v,%v", parallel, got.Nodes[i].ID,
					got.Nodes[i].X, got.Nodes[i].Y, want.Nodes[i].X, want.Nodes[i].Y)
			}
		}
		for i := range want.Edges {
			if fmt.Sprint(want.Edges[i].Route) != fmt.Sprint(got.Edges[i].Route) {
				t.Errorf("parallel=%v: edge %s route differs", parallel, got.Edges[i].ID)
			}
		}
	}
}

func TestLayout_LeavesInputUntouched(t *testing.T) {
	g := mesh(t)
	mustLayout(t, g, Options{})
	for i := range g.NodeCount() {
		if n := g.Node(graph.NodeID(i)); n.Placed || n.Layer != graph.Unassigned {
			t.Errorf("node %s was modified: layer %d placed %v", n.Name, n.Layer, n.Placed)
		}
	}
	for i := range g.EdgeCount() {
		if e := g.Edge(graph.EdgeID(i)); e.Routed || e.Reversed {
			t.Errorf("edge %s was modified", e.Name)
		}
	}
}

func TestLayout_ClampsDegenerateSizes(t *testing.T) {
	g := graph.New()
	if _, err := g.AddNode("flat", 0, -5); err != nil {
		t.Fatal(err)
	}
	if _, err := g.AddNode("ok", 30, 20); err != nil {
		t.Fatal(err)
	}
	if _, err := g.Connect("", "flat", "ok"); err != nil {
		t.Fatal(err)
	}
	res := mustLayout(t, g, Options{MinNodeSize: 4})
	if n := node(t, res, "flat"); n.Width != 4 || n.Height != 4 {
		t.Errorf("flat = %gx%g, want 4x4", n.Width, n.Height)
	}
}

func TestLayout_EmptyGraph(t *testing.T) {
	res := mustLayout(t, graph.New(), Options{})
	if len(res.Nodes) != 0 || len(res.Edges) != 0 || res.Stats.Components != 0 {
		t.Errorf("Layout(empty) = %+v, want an empty result", res)
	}
}

func TestLayout_Errors(t *testing.T) {
	conflict := func(t *testing.T) *graph.Graph {
		g := build(t, []string{"a", "b"})
		a, _ := g.NodeByName("a")
		if _, err := g.AddPort(a, "a.out", graph.SideNorth, geo.Pt(15, 10)); err != nil {
			t.Fatal(err)
		}
		if _, err := g.Connect("", "a.out", "b"); err != nil {
			t.Fatal(err)
		}
		return g
	}
	sameLayer := func(t *testing.T) *graph.Graph {
		g := build(t, []string{"a", "b"}, [2]string{"a", "b"})
		g.Node(0).Layer, g.Node(1).Layer = 0, 0
		return g
	}

	tests := []struct {
		name  string
		graph func(*testing.T) *graph.Graph
		opts  Options
		want  errors.Code
	}{
		{"unknown routing", mesh, Options{Routing: "spline"}, errors.ErrCodeInvalidOptions},
		{"unknown layering", mesh, Options{Layering: "coffman"}, errors.ErrCodeInvalidOptions},
		{"bad direction", mesh, Options{Direction: graph.Direction(9)}, errors.ErrCodeInvalidOptions},
		{"port off its side", conflict, Options{}, errors.ErrCodePortSideConflict},
		{"fixed layers on one layer", sameLayer, Options{Layering: "fixed"}, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Layout(context.Background(), tt.graph(t), tt.opts)
			if !errors.Is(err, tt.want) {
				t.Errorf("Layout() error = %v, want %s", err, tt.want)
			}
		})
	}
}

func TestLayout_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for _, parallel := range []bool{false, true} {
		_, err := Layout(ctx, mesh(t), Options{Parallel: parallel})
		if !errors.Is(err, errors.ErrCodeCanceled) {
			t.Errorf("parallel=%v: Layout() error = %v, want canceled", parallel, err)
		}
	}
}

func TestOptions_ValidateAndSetDefaults(t *testing.T) {
	o := Options{NodeSpacing: -3, Restarts: -1}
	if err := o.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if o.NodeSpacing != MinSpacing {
		t.Errorf("NodeSpacing = %g, want %g", o.NodeSpacing, MinSpacing)
	}
	if o.LayerSpacing != DefaultLayerSpacing || o.EdgeSpacing != DefaultEdgeSpacing {
		t.Errorf("spacings = %g/%g, want defaults", o.LayerSpacing, o.EdgeSpacing)
	}
	if o.Restarts != 1 || o.CrossingMinimizationIterations != DefaultIterations || o.Seed != DefaultSeed {
		t.Errorf("restarts/iterations/seed = %d/%d/%d", o.Restarts, o.CrossingMinimizationIterations, o.Seed)
	}
	if o.Routing != routing.Orthogonal || o.Ordering != Sweep || !o.Separate() {
		t.Errorf("enums not defaulted: %+v", o)
	}
	if o.Logger == nil {
		t.Error("Logger not set")
	}

	fixed := o.FixedLayout()
	if err := fixed.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if fixed.Layering != "fixed" || fixed.Ordering != FixedOrder || !fixed.FixedPortOrder {
		t.Errorf("FixedLayout() = %+v", fixed)
	}
}

func TestParseOrdering(t *testing.T) {
	for in, want := range map[string]Ordering{"": Sweep, "sweep": Sweep, "fixed": FixedOrder} {
		if got, err := ParseOrdering(in); err != nil || got != want {
			t.Errorf("ParseOrdering(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseOrdering("random"); !errors.Is(err, errors.ErrCodeInvalidOptions) {
		t.Errorf("ParseOrdering(random) error = %v", err)
	}
}

func TestLayout_LayerConstraints(t *testing.T) {
	g := build(t, []string{"a", "b", "c", "in", "out"},
		[2]string{"a", "b"}, [2]string{"b", "c"}, [2]string{"b", "in"}, [2]string{"out", "a"})
	in, _ := g.NodeByName("in")
	out, _ := g.NodeByName("out")
	g.Node(in).Constraint = graph.ConstraintFirst
	g.Node(out).Constraint = graph.ConstraintLast

	res := mustLayout(t, g, Options{})

	for id, want := range map[string]int{"a": 0, "in": 0, "b": 1, "c": 2, "out": 2} {
		if got := node(t, res, id).Layer; got != want {
			t.Errorf("layer(%s) = %d, want %d", id, got, want)
		}
	}
	if res.Stats.Reversed != 2 {
		t.Errorf("Reversed = %d, want 2", res.Stats.Reversed)
	}
}

func onBoundary(r geo.Rect, p geo.Point) bool {
	return r.Grow(2*geo.Epsilon).Contains(p) && !r.Grow(-2*geo.Epsilon).Contains(p)
}

func ExampleLayout() {
	g := graph.New()
	g.AddNode("parse", 40, 20)
	g.AddNode("check", 40, 20)
	g.AddNode("emit", 40, 20)
	g.Connect("", "parse", "check")
	g.Connect("", "check", "emit")
	g.Connect("", "parse", "emit")

	res, err := Layout(context.Background(), g, Options{Direction: graph.DirDown})
	if err != nil {
		panic(err)
	}
	for _, n := range res.Nodes {
		fmt.Printf("%s layer=%d\n", n.ID, n.Layer)
	}
	fmt.Println("crossings:", res.Stats.Crossings)
	// Output:
	// parse layer=0
	// check layer=1
	// emit layer=2
	// crossings: 0
}
