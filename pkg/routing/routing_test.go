package routing

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/strata/pkg/crossing"
	"github.com/matzehuels/strata/pkg/cycle"
	"github.com/matzehuels/strata/pkg/geo"
	"github.com/matzehuels/strata/pkg/graph"
	"github.com/matzehuels/strata/pkg/graph/lgraph"
	"github.com/matzehuels/strata/pkg/layering"
	"github.com/matzehuels/strata/pkg/placement"
)

func opts(mode Mode) Options {
	return Options{Mode: mode, NodeSpacing: 20, LayerSpacing: 40, EdgeSpacing: 10}
}

func placed(t *testing.T, dir graph.Direction, nodes []string, edges ...[2]string) *lgraph.View {
	t.Helper()
	g := graph.New()
	for _, n := range nodes {
		_, err := g.AddNode(n, 30, 20)
		require.NoError(t, err)
	}
	for _, e := range edges {
		_, err := g.Connect("", e[0], e[1])
		require.NoError(t, err)
	}
	cycle.Break(g, cycle.DFS)
	require.NoError(t, layering.Assign(g, layering.Options{}))
	f := lgraph.Frame{Dir: dir}
	lgraph.PreparePorts(g, f)
	v, err := lgraph.Build(g, f)
	require.NoError(t, err)
	_, err = crossing.Minimize(context.Background(), v, crossing.Options{Iterations: 8})
	require.NoError(t, err)
	require.NoError(t, placement.Place(v, placement.Options{NodeSpacing: 20, LayerSpacing: 40, EdgeSpacing: 10}))
	return v
}

func route(e *graph.Edge) []geo.Point {
	pts := append([]geo.Point{e.Start}, e.Bends...)
	return append(pts, e.End)
}

func edge(t *testing.T, g *graph.Graph, name string) *graph.Edge {
	t.Helper()
	id, ok := g.EdgeByName(name)
	require.True(t, ok, "edge %s", name)
	return g.Edge(id)
}

func mesh() ([]string, [][2]string) {
	nodes := []string{"a", "b", "c", "d", "e", "f", "g"}
	edges := [][2]string{
		{"a", "b"}, {"a", "c"}, {"a", "g"}, {"b", "d"}, {"c", "d"},
		{"c", "e"}, {"d", "f"}, {"e", "f"}, {"b", "f"}, {"f", "a"},
		{"e", "e"}, {"g", "d"},
	}
	return nodes, edges
}

func TestRoute_BendsOutsideNodes(t *testing.T) {
	nodes, edges := mesh()
	for _, mode := range []Mode{Orthogonal, Polyline} {
		for _, dir := range []graph.Direction{graph.DirRight, graph.DirDown, graph.DirLeft, graph.DirUp} {
			t.Run(fmt.Sprintf("%s/%s", mode, dir), func(t *testing.T) {
				v := placed(t, dir, nodes, edges...)
				stats, err := Route(v, opts(mode))
				require.NoError(t, err)
				assert.Equal(t, len(edges), stats.Edges)
				assert.Equal(t, 1, stats.SelfLoops)
				assert.NoError(t, Check(v.Graph))

				if mode != Orthogonal {
					return
				}
				for i := range v.Graph.EdgeCount() {
					e := v.Graph.Edge(graph.EdgeID(i))
					assert.True(t, geo.IsOrthogonal(route(e)), "edge %s: %v", e.Name, route(e))
				}
			})
		}
	}
}

func TestRoute_ParallelEdges(t *testing.T) {
	for _, mode := range []Mode{Orthogonal, Polyline} {
		t.Run(string(mode), func(t *testing.T) {
			v := placed(t, graph.DirRight, []string{"a", "b"},
				[2]string{"a", "b"}, [2]string{"a", "b"}, [2]string{"a", "b"})
			_, err := Route(v, opts(mode))
			require.NoError(t, err)
			require.NoError(t, Check(v.Graph))

			g := v.Graph
			routes := make([][]geo.Point, g.EdgeCount())
			for i := range g.EdgeCount() {
				routes[i] = route(g.Edge(graph.EdgeID(i)))
			}
			for i := range routes {
				for j := i + 1; j < len(routes); j++ {
					assert.NotEqual(t, routes[i], routes[j], "edges %d and %d share a route", i, j)
				}
			}
			if mode == Orthogonal {
				// all three run straight, evenly spaced within the 20-high side
				for i := range routes {
					assert.Len(t, routes[i], 2)
				}
				assert.InDelta(t, routes[0][0].Y+5, routes[1][0].Y, geo.Epsilon)
				assert.InDelta(t, routes[1][0].Y+5, routes[2][0].Y, geo.Epsilon)
			}
		})
	}
}

func TestRoute_ParallelEndsAvoidCorners(t *testing.T) {
	tests := []struct {
		name  string
		count int
	}{
		{"two", 2},
		{"three", 3},
		{"five", 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			edges := make([][2]string, tt.count)
			for i := range edges {
				edges[i] = [2]string{"a", "b"}
			}
			v := placed(t, graph.DirRight, []string{"a", "b"}, edges...)
			_, err := Route(v, opts(Orthogonal))
			require.NoError(t, err)

			g := v.Graph
			a, _ := g.NodeByName("a")
			b, _ := g.NodeByName("b")
			ra, rb := g.Node(a).Rect(), g.Node(b).Rect()
			for i := range g.EdgeCount() {
				e := g.Edge(graph.EdgeID(i))
				assert.Greater(t, e.Start.Y, ra.Y+geo.Epsilon, "edge %s start at top corner", e.Name)
				assert.Less(t, e.Start.Y, ra.Bottom()-geo.Epsilon, "edge %s start at bottom corner", e.Name)
				assert.Greater(t, e.End.Y, rb.Y+geo.Epsilon, "edge %s end at top corner", e.Name)
				assert.Less(t, e.End.Y, rb.Bottom()-geo.Epsilon, "edge %s end at bottom corner", e.Name)
			}
		})
	}
}

func TestRoute_ReversedEdgeRunsFromSource(t *testing.T) {
	v := placed(t, graph.DirDown, []string{"a", "b"}, [2]string{"a", "b"}, [2]string{"b", "a"})
	_, err := Route(v, opts(Orthogonal))
	require.NoError(t, err)

	g := v.Graph
	back := edge(t, g, "e1")
	require.True(t, back.Reversed)

	src, dst := g.Port(back.Source), g.Port(back.Target)
	assert.True(t, back.Start.Equals(g.Node(src.Node).Pos.Add(src.Offset)), "start %v", back.Start)
	assert.True(t, back.End.Equals(g.Node(dst.Node).Pos.Add(dst.Offset)), "end %v", back.End)
	assert.True(t, geo.IsOrthogonal(route(back)))
	assert.NoError(t, Check(g))
}

func TestRoute_SelfLoopsNest(t *testing.T) {
	v := placed(t, graph.DirRight, []string{"a", "b"},
		[2]string{"a", "a"}, [2]string{"a", "a"}, [2]string{"a", "b"})
	stats, err := Route(v, opts(Orthogonal))
	require.NoError(t, err)
	assert.Equal(t, 2, stats.SelfLoops)
	require.NoError(t, Check(v.Graph))

	g := v.Graph
	a, _ := g.NodeByName("a")
	box := g.Node(a).Rect()
	// distance of the farthest bend from the node box
	reach := func(e *graph.Edge) float64 {
		d := 0.0
		for _, b := range e.Bends {
			d = max(d, box.X-b.X, b.X-box.Right(), box.Y-b.Y, b.Y-box.Bottom())
		}
		return d
	}
	inner, outer := reach(edge(t, g, "e0")), reach(edge(t, g, "e1"))
	assert.Greater(t, inner, 0.0)
	assert.Greater(t, outer, inner)
	assert.Less(t, outer, 10.0, "loops stay within half the node spacing")
	for _, name := range []string{"e0", "e1"} {
		assert.True(t, geo.IsOrthogonal(route(edge(t, g, name))))
	}
}

func TestRoute_OverlappingJogsGetSlots(t *testing.T) {
	v := placed(t, graph.DirRight, []string{"a", "b", "c", "d"},
		[2]string{"a", "c"}, [2]string{"a", "d"}, [2]string{"b", "c"}, [2]string{"b", "d"})
	stats, err := Route(v, opts(Orthogonal))
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Slots)

	// every edge with a jog bends at one of two distinct L coordinates
	g := v.Graph
	jogs := make(map[float64]bool)
	for i := range g.EdgeCount() {
		if b := g.Edge(graph.EdgeID(i)).Bends; len(b) > 0 {
			jogs[b[0].X] = true
		}
	}
	assert.Len(t, jogs, 2)
}

func TestRoute_FanSharesJogLine(t *testing.T) {
	v := placed(t, graph.DirRight, []string{"r", "x", "y", "z"},
		[2]string{"r", "x"}, [2]string{"r", "y"}, [2]string{"r", "z"})
	stats, err := Route(v, opts(Orthogonal))
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Slots)
}

func TestRoute_PolylinePassesDummies(t *testing.T) {
	v := placed(t, graph.DirRight, []string{"a", "b", "c"},
		[2]string{"a", "b"}, [2]string{"b", "c"}, [2]string{"a", "c"})
	require.Equal(t, 1, v.DummyCount())
	var dummy geo.Point
	for _, vn := range v.Nodes {
		if vn.IsDummy() {
			dummy = v.Frame.ToDrawing(vn.Pos)
		}
	}

	_, err := Route(v, opts(Polyline))
	require.NoError(t, err)
	long := edge(t, v.Graph, "e2")
	assert.True(t, passes(route(long), dummy), "route %v misses dummy %v", route(long), dummy)
}

// passes reports whether the polyline pts runs through p.
func passes(pts []geo.Point, p geo.Point) bool {
	for i := 1; i < len(pts); i++ {
		a, b := pts[i-1], pts[i]
		cross := (b.X-a.X)*(p.Y-a.Y) - (b.Y-a.Y)*(p.X-a.X)
		inside := min(a.X, b.X)-geo.Epsilon <= p.X && p.X <= max(a.X, b.X)+geo.Epsilon &&
			min(a.Y, b.Y)-geo.Epsilon <= p.Y && p.Y <= max(a.Y, b.Y)+geo.Epsilon
		if inside && geo.Near(cross, 0) {
			return true
		}
	}
	return false
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, Orthogonal, m)

	m, err = ParseMode("polyline")
	require.NoError(t, err)
	assert.Equal(t, Polyline, m)

	_, err = ParseMode("spline")
	assert.Error(t, err)
}
