// Package cycle makes a graph acyclic by marking edges as reversed.
//
// Edges are never removed. [Break] sets [graph.Edge.Reversed] on a set of
// edges such that viewing every reversed edge as pointing the other way
// yields a directed acyclic graph. Later stages lay the graph out in that
// view; exporters report routes in the original direction, so reversal is
// invisible in the final drawing apart from the route shape.
//
// Self-loops are left alone. They cannot be made acyclic by reversal, are
// excluded from acyclicity checks, and are routed separately.
package cycle

import (
	"slices"

	"github.com/matzehuels/strata/pkg/errors"
	"github.com/matzehuels/strata/pkg/graph"
)

// Strategy selects the cycle breaking algorithm.
type Strategy string

const (
	// DFS reverses the back edges of a depth-first traversal in insertion
	// order.
	DFS Strategy = "dfs"
	// Greedy uses the Eades–Lin–Smyth heuristic, which tends to reverse
	// fewer edges on dense graphs.
	Greedy Strategy = "greedy"
	// Layers reverses exactly the edges pointing from a higher to a lower
	// preset layer. It is used when layers are fixed by the caller.
	Layers Strategy = "layers"
)

// ParseStrategy validates a strategy name. The empty string is DFS.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case "":
		return DFS, nil
	case DFS, Greedy, Layers:
		return Strategy(s), nil
	}
	return "", errors.New(errors.ErrCodeInvalidOptions, "unknown cycle breaking strategy %q", s)
}

// Result summarizes a run of [Break].
type Result struct {
	Reversed  []graph.EdgeID
	SelfLoops []graph.EdgeID
}

// Break marks edges of g as reversed so that the reversed view is acyclic.
// Any previous reversal marks are cleared first. Break always succeeds.
//
// Self-loops are recorded in Result.SelfLoops and never marked reversed.
// Unless s is Layers, edges that run against a node's layer constraint (see
// [graph.Graph.Pinned]) are reversed before the strategy runs, and the
// strategy only considers the remaining edges.
func Break(g *graph.Graph, s Strategy) Result {
	var res Result
	pinned := make([]bool, g.EdgeCount())
	for i := range g.EdgeCount() {
		e := graph.EdgeID(i)
		g.Edge(e).Reversed = false
		if g.IsSelfLoop(e) {
			res.SelfLoops = append(res.SelfLoops, e)
		}
		if s != Layers && g.Pinned(e) {
			pinned[e] = true
			res.Reversed = append(res.Reversed, e)
		}
	}
	skip := func(e graph.EdgeID) bool { return pinned[e] || g.IsSelfLoop(e) }

	switch s {
	case Greedy:
		res.Reversed = append(res.Reversed, greedy(g, skip)...)
	case Layers:
		res.Reversed = byLayers(g)
	default:
		res.Reversed = append(res.Reversed, dfs(g, skip)...)
	}
	slices.Sort(res.Reversed)
	for _, e := range res.Reversed {
		g.Edge(e).Reversed = true
	}
	return res
}

// dfs walks from every unvisited node in insertion order, following
// out-edges in insertion order. An edge into a node still on the traversal
// stack closes a cycle and is reversed. Edges for which skip reports true
// are not followed.
func dfs(g *graph.Graph, skip func(graph.EdgeID) bool) []graph.EdgeID {
	const (
		white = iota
		gray
		black
	)

	color := make([]int, g.NodeCount())
	var back []graph.EdgeID

	var visit func(n graph.NodeID)
	visit = func(n graph.NodeID) {
		color[n] = gray
		for _, e := range g.Out(n) {
			if skip(e) {
				continue
			}
			_, child := g.Ends(e)
			switch color[child] {
			case white:
				visit(child)
			case gray:
				back = append(back, e)
			}
		}
		color[n] = black
	}

	for n := range g.NodeCount() {
		if color[n] == white {
			visit(graph.NodeID(n))
		}
	}
	return back
}

// byLayers reverses edges whose declared direction runs against the preset
// layer indices. Edges within one layer are left for validation to reject.
func byLayers(g *graph.Graph) []graph.EdgeID {
	var rev []graph.EdgeID
	for i := range g.EdgeCount() {
		e := graph.EdgeID(i)
		s, d := g.Ends(e)
		if g.Node(s).Layer > g.Node(d).Layer {
			rev = append(rev, e)
		}
	}
	return rev
}

// IsAcyclic reports whether the reversed view of g, ignoring self-loops, has
// no directed cycle. It returns the edges of one cycle when it finds one.
func IsAcyclic(g *graph.Graph) (bool, []graph.EdgeID) {
	const (
		white = iota
		gray
		black
	)
	color := make([]int, g.NodeCount())
	via := make([]graph.EdgeID, g.NodeCount())
	var cycle []graph.EdgeID

	var visit func(n graph.NodeID) bool
	visit = func(n graph.NodeID) bool {
		color[n] = gray
		for _, e := range g.ViewOut(n) {
			_, child := g.ViewEnds(e)
			switch color[child] {
			case white:
				via[child] = e
				if !visit(child) {
					return false
				}
			case gray:
				cycle = append(cycle, e)
				for cur := n; cur != child; {
					cycle = append(cycle, via[cur])
					cur, _ = g.ViewEnds(via[cur])
				}
				slices.Reverse(cycle)
				return false
			}
		}
		color[n] = black
		return true
	}

	for n := range g.NodeCount() {
		if color[n] == white && !visit(graph.NodeID(n)) {
			return false, cycle
		}
	}
	return true, nil
}
