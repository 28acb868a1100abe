package cycle

import (
	"fmt"
	"testing"

	"github.com/matzehuels/strata/pkg/graph"
)

func build(t *testing.T, nodes int, edges ...[2]int) *graph.Graph {
	t.Helper()
	g := graph.New()
	for i := range nodes {
		if _, err := g.AddNode(fmt.Sprintf("n%d", i), 10, 10); err != nil {
			t.Fatal(err)
		}
	}
	for _, e := range edges {
		if _, err := g.Connect("", fmt.Sprintf("n%d", e[0]), fmt.Sprintf("n%d", e[1])); err != nil {
			t.Fatal(err)
		}
	}
	return g
}

func TestBreak_NoCycles(t *testing.T) {
	for _, s := range []Strategy{DFS, Greedy} {
		t.Run(string(s), func(t *testing.T) {
			g := build(t, 3, [2]int{0, 1}, [2]int{1, 2}, [2]int{0, 2})
			res := Break(g, s)
			if len(res.Reversed) != 0 {
				t.Errorf("Break() reversed %v, want none", res.Reversed)
			}
		})
	}
}

func TestBreak_DFSReversesClosingEdge(t *testing.T) {
	// a→b, b→c, c→a, c→d
	g := build(t, 4, [2]int{0, 1}, [2]int{1, 2}, [2]int{2, 0}, [2]int{2, 3})

	res := Break(g, DFS)

	if len(res.Reversed) != 1 || res.Reversed[0] != 2 {
		t.Fatalf("Reversed = %v, want [2] (c→a)", res.Reversed)
	}
	if !g.Edge(2).Reversed {
		t.Error("edge c→a should be marked reversed")
	}
	if ok, cyc := IsAcyclic(g); !ok {
		t.Errorf("graph still has cycle %v", cyc)
	}
}

func TestBreak_SelfLoops(t *testing.T) {
	g := build(t, 2, [2]int{0, 0}, [2]int{0, 1}, [2]int{1, 1})

	for _, s := range []Strategy{DFS, Greedy} {
		res := Break(g, s)
		if len(res.SelfLoops) != 2 {
			t.Errorf("%s: SelfLoops = %v, want 2 entries", s, res.SelfLoops)
		}
		if len(res.Reversed) != 0 {
			t.Errorf("%s: self-loops must not be reversed, got %v", s, res.Reversed)
		}
		for _, e := range res.SelfLoops {
			if g.Edge(e).Reversed {
				t.Errorf("%s: self-loop %d marked reversed", s, e)
			}
		}
	}
}

func TestBreak_LayerConstraints(t *testing.T) {
	// n0→n1, n1→n2, n2→n0, n3→n0, n2→n4, n4→n4 with n0 first and n4 last:
	// every edge into n0 is pinned, and n4 keeps its incoming edge.
	edges := [][2]int{{0, 1}, {1, 2}, {2, 0}, {3, 0}, {2, 4}, {4, 4}}

	for _, s := range []Strategy{DFS, Greedy} {
		t.Run(string(s), func(t *testing.T) {
			g := build(t, 5, edges...)
			g.Node(0).Constraint = graph.ConstraintFirst
			g.Node(4).Constraint = graph.ConstraintLast

			res := Break(g, s)

			want := []graph.EdgeID{2, 3}
			if fmt.Sprint(res.Reversed) != fmt.Sprint(want) {
				t.Errorf("Reversed = %v, want %v", res.Reversed, want)
			}
			if g.Edge(5).Reversed {
				t.Error("self-loop on a constrained node marked reversed")
			}
			if in := g.ViewIn(0); len(in) != 0 {
				t.Errorf("first node has view in-edges %v", in)
			}
			if out := g.ViewOut(4); len(out) != 0 {
				t.Errorf("last node has view out-edges %v", out)
			}
			if ok, cyc := IsAcyclic(g); !ok {
				t.Errorf("graph still has cycle %v", cyc)
			}
		})
	}
}

func TestBreak_LayersIgnoresConstraints(t *testing.T) {
	g := build(t, 2, [2]int{0, 1})
	g.Node(1).Constraint = graph.ConstraintFirst
	g.Node(0).Layer, g.Node(1).Layer = 0, 1

	if res := Break(g, Layers); len(res.Reversed) != 0 {
		t.Errorf("Reversed = %v, want none with preset layers", res.Reversed)
	}
}

func TestBreak_Deterministic(t *testing.T) {
	edges := [][2]int{{0, 1}, {1, 2}, {2, 0}, {2, 3}, {3, 1}, {3, 4}, {4, 0}}
	for _, s := range []Strategy{DFS, Greedy} {
		first := Break(build(t, 5, edges...), s).Reversed
		for range 5 {
			again := Break(build(t, 5, edges...), s).Reversed
			if fmt.Sprint(again) != fmt.Sprint(first) {
				t.Fatalf("%s: Break() not deterministic: %v vs %v", s, first, again)
			}
		}
	}
}

func TestBreak_AlwaysAcyclic(t *testing.T) {
	tests := []struct {
		name  string
		nodes int
		edges [][2]int
	}{
		{"two cycle", 2, [][2]int{{0, 1}, {1, 0}}},
		{"parallel cycle", 2, [][2]int{{0, 1}, {0, 1}, {1, 0}}},
		{"nested", 4, [][2]int{{0, 1}, {1, 2}, {2, 3}, {3, 0}, {2, 0}, {3, 1}}},
		{"disconnected", 6, [][2]int{{0, 1}, {1, 0}, {2, 3}, {3, 4}, {4, 2}}},
	}

	complete := tests[0]
	complete.name = "complete"
	complete.nodes = 5
	complete.edges = nil
	for i := range 5 {
		for j := range 5 {
			if i != j {
				complete.edges = append(complete.edges, [2]int{i, j})
			}
		}
	}
	tests = append(tests, complete)

	for _, tt := range tests {
		for _, s := range []Strategy{DFS, Greedy} {
			t.Run(tt.name+"/"+string(s), func(t *testing.T) {
				g := build(t, tt.nodes, tt.edges...)
				Break(g, s)
				if ok, cyc := IsAcyclic(g); !ok {
					t.Errorf("cycle remains: %v in %v", cyc, g)
				}
			})
		}
	}
}

func TestBreak_Layers(t *testing.T) {
	g := build(t, 3, [2]int{0, 1}, [2]int{2, 0})
	g.Node(0).Layer, g.Node(1).Layer, g.Node(2).Layer = 1, 2, 0
	g.Edge(0).Reversed = true // stale mark is cleared

	res := Break(g, Layers)
	if len(res.Reversed) != 0 {
		t.Errorf("Reversed = %v, want none", res.Reversed)
	}

	g.Node(2).Layer = 3
	res = Break(g, Layers)
	if len(res.Reversed) != 1 || res.Reversed[0] != 1 {
		t.Errorf("Reversed = %v, want [1]", res.Reversed)
	}
}

func TestIsAcyclicReportsCycle(t *testing.T) {
	g := build(t, 3, [2]int{0, 1}, [2]int{1, 2}, [2]int{2, 0})

	ok, cyc := IsAcyclic(g)
	if ok {
		t.Fatal("IsAcyclic() = true for a triangle")
	}
	if len(cyc) != 3 {
		t.Errorf("cycle = %v, want 3 edges", cyc)
	}
}

func TestParseStrategy(t *testing.T) {
	if s, err := ParseStrategy(""); err != nil || s != DFS {
		t.Errorf("ParseStrategy(\"\") = %q, %v", s, err)
	}
	if _, err := ParseStrategy("random"); err == nil {
		t.Error("ParseStrategy(random) should fail")
	}
}
