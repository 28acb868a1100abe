package graph

import (
	"testing"

	"github.com/matzehuels/strata/pkg/errors"
	"github.com/matzehuels/strata/pkg/geo"
)

func mustNode(t *testing.T, g *Graph, name string) NodeID {
	t.Helper()
	id, err := g.AddNode(name, 40, 20)
	if err != nil {
		t.Fatalf("AddNode(%q): %v", name, err)
	}
	return id
}

func mustConnect(t *testing.T, g *Graph, from, to string) EdgeID {
	t.Helper()
	id, err := g.Connect("", from, to)
	if err != nil {
		t.Fatalf("Connect(%q, %q): %v", from, to, err)
	}
	return id
}

func TestAddNode(t *testing.T) {
	g := New()
	a := mustNode(t, g, "a")

	if g.NodeCount() != 1 {
		t.Errorf("NodeCount() = %d, want 1", g.NodeCount())
	}
	n := g.Node(a)
	if n.Layer != Unassigned || n.Order != Unassigned {
		t.Errorf("new node layer/order = %d/%d, want unassigned", n.Layer, n.Order)
	}
	if n.Meta == nil {
		t.Error("Meta should be initialized")
	}

	tests := []struct {
		name string
		id   string
		w, h float64
		code errors.Code
	}{
		{"duplicate", "a", 1, 1, errors.ErrCodeDuplicateID},
		{"empty", "", 1, 1, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := g.AddNode(tt.id, tt.w, tt.h)
			if !errors.Is(err, tt.code) {
				t.Errorf("AddNode(%q) error = %v, want code %s", tt.id, err, tt.code)
			}
		})
	}
}

func TestConnectResolvesPortsAndNodes(t *testing.T) {
	g := New()
	a := mustNode(t, g, "a")
	b := mustNode(t, g, "b")
	pa, err := g.AddPort(a, "a.out", SideEast, geo.Pt(40, 10))
	if err != nil {
		t.Fatal(err)
	}

	e1 := mustConnect(t, g, "a.out", "b")
	e2 := mustConnect(t, g, "a", "b")

	if got := g.Edge(e1).Source; got != pa {
		t.Errorf("edge 1 source = %d, want explicit port %d", got, pa)
	}
	if got := g.Edge(e2).Source; got != g.OutputPort(a) {
		t.Errorf("edge 2 source = %d, want implicit output port", got)
	}
	if g.Edge(e1).Target != g.Edge(e2).Target {
		t.Error("both edges should share b's implicit input port")
	}
	if !g.Port(g.InputPort(b)).Implicit {
		t.Error("input port should be implicit")
	}
	if g.Edge(e1).Name != "e0" || g.Edge(e2).Name != "e1" {
		t.Errorf("generated names = %q, %q", g.Edge(e1).Name, g.Edge(e2).Name)
	}
}

func TestConnectUnknownEndpoint(t *testing.T) {
	g := New()
	mustNode(t, g, "a")

	_, err := g.Connect("x", "a", "missing")
	if !errors.Is(err, errors.ErrCodeUnknownPort) {
		t.Errorf("Connect() error = %v, want UNKNOWN_PORT", err)
	}
}

func TestViewEndsRespectReversal(t *testing.T) {
	g := New()
	a := mustNode(t, g, "a")
	b := mustNode(t, g, "b")
	e := mustConnect(t, g, "a", "b")

	if s, d := g.ViewEnds(e); s != a || d != b {
		t.Errorf("ViewEnds() = %d,%d, want %d,%d", s, d, a, b)
	}
	g.Edge(e).Reversed = true
	if s, d := g.ViewEnds(e); s != b || d != a {
		t.Errorf("reversed ViewEnds() = %d,%d, want %d,%d", s, d, b, a)
	}
	if got := g.ViewOut(b); len(got) != 1 || got[0] != e {
		t.Errorf("ViewOut(b) = %v, want [%d]", got, e)
	}
	if got := g.ViewOut(a); len(got) != 0 {
		t.Errorf("ViewOut(a) = %v, want []", got)
	}
}

func TestSelfLoopExcludedFromViewAdjacency(t *testing.T) {
	g := New()
	a := mustNode(t, g, "a")
	e := mustConnect(t, g, "a", "a")

	if !g.IsSelfLoop(e) {
		t.Error("IsSelfLoop() = false")
	}
	if len(g.ViewOut(a)) != 0 || len(g.ViewIn(a)) != 0 {
		t.Error("self-loops should not appear in view adjacency")
	}
}

func TestComponentsAndExtract(t *testing.T) {
	g := New()
	for _, n := range []string{"a", "b", "c", "d", "e"} {
		mustNode(t, g, n)
	}
	mustConnect(t, g, "a", "b")
	mustConnect(t, g, "c", "d")
	mustConnect(t, g, "d", "c")

	comps := g.Components()
	if len(comps) != 3 {
		t.Fatalf("Components() = %v, want 3 components", comps)
	}
	if len(comps[0]) != 2 || len(comps[1]) != 2 || len(comps[2]) != 1 {
		t.Errorf("component sizes = %d,%d,%d", len(comps[0]), len(comps[1]), len(comps[2]))
	}

	sub, m := g.Extract(comps[1])
	if sub.NodeCount() != 2 || sub.EdgeCount() != 2 {
		t.Fatalf("Extract() = %v", sub)
	}
	if m.Nodes[0] != comps[1][0] {
		t.Errorf("mapping node 0 = %d, want %d", m.Nodes[0], comps[1][0])
	}
	if _, ok := sub.NodeByName("c"); !ok {
		t.Error("extracted graph should keep node names")
	}
	if id, ok := sub.EdgeByName(g.Edge(m.Edges[1]).Name); !ok || id != 1 {
		t.Error("extracted graph should keep edge names")
	}
	// implicit ports stay shared after extraction
	c, _ := sub.NodeByName("c")
	if p := sub.OutputPort(c); sub.Edge(0).Source != p {
		t.Error("implicit output port should be preserved")
	}
}

func TestValidatePortSides(t *testing.T) {
	tests := []struct {
		name       string
		side       Side
		offset     geo.Point
		orthogonal bool
		wantErr    bool
	}{
		{"east on boundary", SideEast, geo.Pt(40, 5), true, false},
		{"north on boundary", SideNorth, geo.Pt(10, 0), true, false},
		{"east inside", SideEast, geo.Pt(20, 5), true, true},
		{"south beyond corner", SideSouth, geo.Pt(50, 20), true, true},
		{"polyline accepts any offset", SideEast, geo.Pt(20, 5), false, false},
		{"undefined side", SideUndefined, geo.Pt(3, 3), true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New()
			a := mustNode(t, g, "a")
			if _, err := g.AddPort(a, "p", tt.side, tt.offset); err != nil {
				t.Fatal(err)
			}
			err := g.Validate(tt.orthogonal)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errors.ErrCodePortSideConflict) {
				t.Errorf("code = %s, want PORT_SIDE_CONFLICT", errors.GetCode(err))
			}
		})
	}
}

func TestParseSide(t *testing.T) {
	for in, want := range map[string]Side{"": SideUndefined, "North": SideNorth, "e": SideEast, "bottom": SideSouth, "west": SideWest} {
		got, err := ParseSide(in)
		if err != nil || got != want {
			t.Errorf("ParseSide(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseSide("up"); err == nil {
		t.Error("ParseSide(up) should fail")
	}
}

func TestClone(t *testing.T) {
	g := New()
	mustNode(t, g, "a")
	mustNode(t, g, "b")
	e := mustConnect(t, g, "a", "b")

	c := g.Clone()
	c.Edge(e).Reversed = true
	c.Node(0).Meta["k"] = 1

	if g.Edge(e).Reversed {
		t.Error("Clone should not share edges")
	}
	if _, ok := g.Node(0).Meta["k"]; ok {
		t.Error("Clone should not share metadata")
	}
}

func TestPinned(t *testing.T) {
	g := New()
	for _, n := range []string{"first", "mid", "last", "first2"} {
		mustNode(t, g, n)
	}
	g.Node(0).Constraint = ConstraintFirst
	g.Node(2).Constraint = ConstraintLast
	g.Node(3).Constraint = ConstraintFirst

	tests := []struct {
		from, to string
		want     bool
	}{
		{"mid", "first", true},
		{"first", "mid", false},
		{"last", "mid", true},
		{"mid", "last", false},
		{"last", "first", true},
		{"first", "last", false},
		{"first2", "first", false},
		{"first", "first", false},
	}
	for _, tt := range tests {
		e := mustConnect(t, g, tt.from, tt.to)
		if got := g.Pinned(e); got != tt.want {
			t.Errorf("Pinned(%s→%s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestParseLayerConstraint(t *testing.T) {
	for in, want := range map[string]LayerConstraint{"": ConstraintNone, "none": ConstraintNone, "FIRST": ConstraintFirst, "last": ConstraintLast} {
		got, err := ParseLayerConstraint(in)
		if err != nil || got != want {
			t.Errorf("ParseLayerConstraint(%q) = %s, %v; want %s", in, got, err, want)
		}
	}
	if _, err := ParseLayerConstraint("middle"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("ParseLayerConstraint(middle) error = %v, want INVALID_INPUT", err)
	}
}
