package lgraph

import (
	"testing"

	"github.com/matzehuels/strata/pkg/geo"
	"github.com/matzehuels/strata/pkg/graph"
)

func layered(t *testing.T, layers map[string]int, edges ...[2]string) *graph.Graph {
	t.Helper()
	g := graph.New()
	for _, name := range []string{"a", "b", "c", "d"} {
		l, ok := layers[name]
		if !ok {
			continue
		}
		id, err := g.AddNode(name, 30, 10)
		if err != nil {
			t.Fatal(err)
		}
		g.Node(id).Layer = l
	}
	for _, e := range edges {
		if _, err := g.Connect("", e[0], e[1]); err != nil {
			t.Fatal(err)
		}
	}
	return g
}

func TestBuildInsertsDummies(t *testing.T) {
	g := layered(t, map[string]int{"a": 0, "b": 1, "c": 2, "d": 3},
		[2]string{"a", "b"}, [2]string{"b", "c"}, [2]string{"a", "d"})

	v, err := Build(g, Frame{Dir: graph.DirRight})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	if got := v.DummyCount(); got != 2 {
		t.Errorf("DummyCount() = %d, want 2", got)
	}
	if len(v.Layers) != 4 {
		t.Fatalf("len(Layers) = %d, want 4", len(v.Layers))
	}
	chain := v.Chains[2]
	if len(chain) != 3 {
		t.Fatalf("chain of a→d has %d segments, want 3", len(chain))
	}
	for i, s := range chain {
		seg := v.Segments[s]
		if seg.Hop != i {
			t.Errorf("segment %d hop = %d", i, seg.Hop)
		}
		if v.Nodes[seg.To].Layer != v.Nodes[seg.From].Layer+1 {
			t.Errorf("segment %d spans layers %d→%d", i, v.Nodes[seg.From].Layer, v.Nodes[seg.To].Layer)
		}
	}
	first, last := v.Segments[chain[0]], v.Segments[chain[2]]
	if first.SrcPort == graph.NoPort || first.DstPort != graph.NoPort {
		t.Error("first segment should start at a real port and end at a dummy")
	}
	if last.DstPort == graph.NoPort {
		t.Error("last segment should end at a real port")
	}

	seen := make(map[int]bool)
	for _, layer := range v.Layers {
		for _, n := range layer {
			if seen[n] {
				t.Errorf("vnode %d in more than one layer", n)
			}
			seen[n] = true
		}
	}
	if len(seen) != len(v.Nodes) {
		t.Errorf("layers hold %d vnodes, want %d", len(seen), len(v.Nodes))
	}
}

func TestBuildRejectsBackwardEdge(t *testing.T) {
	g := layered(t, map[string]int{"a": 1, "b": 0}, [2]string{"a", "b"})

	if _, err := Build(g, Frame{}); err == nil {
		t.Error("Build() should reject an edge pointing to a lower layer")
	}

	g.Edge(0).Reversed = true
	if _, err := Build(g, Frame{}); err != nil {
		t.Errorf("Build() with reversed edge: %v", err)
	}
}

func TestBuildKeepsSelfLoopsOut(t *testing.T) {
	g := layered(t, map[string]int{"a": 0}, [2]string{"a", "a"})

	v, err := Build(g, Frame{})
	if err != nil {
		t.Fatal(err)
	}
	if len(v.SelfLoops) != 1 || len(v.Segments) != 0 {
		t.Errorf("self loops = %v, segments = %d", v.SelfLoops, len(v.Segments))
	}
}

func TestPreparePorts(t *testing.T) {
	g := layered(t, map[string]int{"a": 0, "b": 1}, [2]string{"a", "b"}, [2]string{"b", "a"})
	g.Edge(1).Reversed = true

	PreparePorts(g, Frame{Dir: graph.DirDown})

	a, _ := g.NodeByName("a")
	out := g.Port(g.OutputPort(a))
	in := g.Port(g.InputPort(a))
	if out.Side != graph.SideSouth {
		t.Errorf("a's output side = %s, want south", out.Side)
	}
	// both of a's ports face south and split its 30 wide bottom side
	if want := geo.Pt(10, 10); !out.Offset.Equals(want) {
		t.Errorf("a's output offset = %v, want %v", out.Offset, want)
	}
	// the reversed edge b→a leaves a in layout direction
	if in.Side != graph.SideSouth {
		t.Errorf("a's input side = %s, want south", in.Side)
	}
}

func TestFrameRoundTrip(t *testing.T) {
	for _, dir := range []graph.Direction{graph.DirRight, graph.DirDown, graph.DirLeft, graph.DirUp} {
		t.Run(dir.String(), func(t *testing.T) {
			f := Frame{Dir: dir}
			p := geo.Pt(3, 7)
			if got := f.ToCanonical(f.ToDrawing(p)); !got.Equals(p) {
				t.Errorf("ToCanonical(ToDrawing(%v)) = %v", p, got)
			}
			o := geo.Pt(40, 5)
			if got := f.LocalOffset(f.Offset(o, 40, 20), 40, 20); !got.Equals(o) {
				t.Errorf("offset round trip = %v, want %v", got, o)
			}
			for _, s := range []CSide{Front, Back, Low, High} {
				if got := f.SideOf(f.DrawingSide(s)); got != s {
					t.Errorf("side round trip %s = %s", s, got)
				}
			}

			// a canonical port position lands on the drawn node at the
			// same local offset
			origin := geo.Pt(100, 50)
			sl, sw := f.Size(40, 20)
			r := f.RectToDrawing(origin, sl, sw)
			abs := f.ToDrawing(origin.Add(f.Offset(o, 40, 20)))
			if want := geo.Pt(r.X+o.X, r.Y+o.Y); !abs.Equals(want) {
				t.Errorf("port at %v, want %v", abs, want)
			}
			if !f.RectToCanonical(r).Equals(origin) {
				t.Errorf("RectToCanonical = %v, want %v", f.RectToCanonical(r), origin)
			}
		})
	}
}
