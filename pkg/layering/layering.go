// Package layering assigns every node of an acyclic-viewed graph to a
// discrete layer.
//
// After [Assign] every non-self-loop edge points, in its view direction (see
// [graph.Graph.ViewEnds]), from a lower to a strictly higher layer. Edges
// spanning several layers are not split here; the layered view built by
// [lgraph.Build] inserts one dummy per intermediate layer.
//
// # Strategies
//
// [LongestPath] places each node one layer below its deepest predecessor.
// Sources sit on layer 0 and the drawing has the minimum number of layers.
//
// [MinWidth] trades height for width with the Nikolov–Tarassov–Branke
// heuristic, taking node sizes and estimated dummy widths into account.
//
// [Fixed] keeps layer indices set by the caller, for instance when laying out
// a previous result again.
//
// # Layer constraints
//
// With LongestPath and MinWidth, nodes with [graph.ConstraintFirst] end on
// layer 0 and nodes with [graph.ConstraintLast] on the highest layer. An edge
// between two distinct nodes with the same constraint is rejected. Fixed
// layering ignores constraints.
//
// [lgraph.Build]: github.com/matzehuels/strata/pkg/graph/lgraph.Build
package layering

import (
	"github.com/matzehuels/strata/pkg/errors"
	"github.com/matzehuels/strata/pkg/graph"
)

// Strategy selects the layer assignment algorithm.
type Strategy string

const (
	LongestPath Strategy = "longest-path"
	MinWidth    Strategy = "min-width"
	Fixed       Strategy = "fixed"
)

// ParseStrategy validates a strategy name. The empty string is LongestPath.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case "":
		return LongestPath, nil
	case LongestPath, MinWidth, Fixed:
		return Strategy(s), nil
	}
	return "", errors.New(errors.ErrCodeInvalidOptions, "unknown layering strategy %q", s)
}

// Options configures [Assign].
type Options struct {
	Strategy Strategy
	// Direction decides which node extent counts as width for MinWidth.
	Direction graph.Direction
	// EdgeSpacing estimates the width of a dummy node for MinWidth.
	EdgeSpacing float64
}

// Assign writes Node.Layer for every node of g. Cycles must have been broken
// before; Assign reports an invariant violation when the view still has one.
func Assign(g *graph.Graph, opts Options) error {
	if g.NodeCount() == 0 {
		return nil
	}
	if opts.Strategy == Fixed {
		return fixed(g)
	}
	constrained, err := checkConstraints(g)
	if err != nil {
		return err
	}
	if opts.Strategy == MinWidth {
		err = minWidth(g, opts)
	} else {
		err = longestPath(g)
	}
	if err != nil || !constrained {
		return err
	}
	applyConstraints(g)
	return nil
}

// checkConstraints reports whether any node of g carries a layer constraint
// and rejects edges whose ends would have to share the outermost layer.
func checkConstraints(g *graph.Graph) (bool, error) {
	constrained := false
	for i := range g.NodeCount() {
		if g.Node(graph.NodeID(i)).Constraint != graph.ConstraintNone {
			constrained = true
			break
		}
	}
	if !constrained {
		return false, nil
	}
	for i := range g.EdgeCount() {
		e := graph.EdgeID(i)
		if g.IsSelfLoop(e) {
			continue
		}
		s, d := g.Ends(e)
		if c := g.Node(s).Constraint; c != graph.ConstraintNone && c == g.Node(d).Constraint {
			return true, errors.New(errors.ErrCodeInvalidInput,
				"edge %q connects %q and %q, both constrained to the %s layer",
				g.Edge(e).Name, g.Node(s).Name, g.Node(d).Name, c)
		}
	}
	return true, nil
}

// applyConstraints moves First nodes to layer 0 and Last nodes to the
// highest layer, then renumbers layers to close the gaps this leaves.
// Cycle breaking has left First nodes without incoming and Last nodes
// without outgoing view edges, so every edge still points downward.
func applyConstraints(g *graph.Graph) {
	last := Count(g) - 1
	for i := range g.NodeCount() {
		node := g.Node(graph.NodeID(i))
		switch node.Constraint {
		case graph.ConstraintFirst:
			node.Layer = 0
		case graph.ConstraintLast:
			node.Layer = last
		}
	}

	used := make([]bool, last+1)
	for i := range g.NodeCount() {
		used[g.Node(graph.NodeID(i)).Layer] = true
	}
	index := make([]int, last+1)
	next := 0
	for l, ok := range used {
		index[l] = next
		if ok {
			next++
		}
	}
	for i := range g.NodeCount() {
		node := g.Node(graph.NodeID(i))
		node.Layer = index[node.Layer]
	}
}

// longestPath runs Kahn's algorithm over view edges, pushing each node to one
// plus the maximum layer of its predecessors.
func longestPath(g *graph.Graph) error {
	n := g.NodeCount()
	inDegree := make([]int, n)
	layers := make([]int, n)
	queue := make([]graph.NodeID, 0, n)

	for i := range n {
		id := graph.NodeID(i)
		inDegree[i] = len(g.ViewIn(id))
		if inDegree[i] == 0 {
			queue = append(queue, id)
		}
	}

	done := 0
	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]
		done++

		for _, e := range g.ViewOut(curr) {
			_, child := g.ViewEnds(e)
			if l := layers[curr] + 1; l > layers[child] {
				layers[child] = l
			}
			inDegree[child]--
			if inDegree[child] == 0 {
				queue = append(queue, child)
			}
		}
	}
	if done < n {
		return errors.Invariant("layering", "acyclic", "%d nodes lie on a cycle", n-done)
	}

	for i := range n {
		g.Node(graph.NodeID(i)).Layer = layers[i]
	}
	return nil
}

// fixed checks caller-provided layers and shifts them to start at 0.
func fixed(g *graph.Graph) error {
	low := -1
	for i := range g.NodeCount() {
		node := g.Node(graph.NodeID(i))
		if node.Layer < 0 {
			return errors.New(errors.ErrCodeInvalidInput, "node %q has no layer", node.Name)
		}
		if low < 0 || node.Layer < low {
			low = node.Layer
		}
	}
	for i := range g.EdgeCount() {
		e := graph.EdgeID(i)
		if g.IsSelfLoop(e) {
			continue
		}
		s, d := g.ViewEnds(e)
		ls, ld := g.Node(s).Layer, g.Node(d).Layer
		switch {
		case ls == ld:
			return errors.New(errors.ErrCodeInvalidInput,
				"edge %q connects two nodes of layer %d", g.Edge(e).Name, ls)
		case ls > ld:
			return errors.New(errors.ErrCodeInvalidInput,
				"edge %q points from layer %d back to layer %d", g.Edge(e).Name, ls, ld)
		}
	}
	for i := range g.NodeCount() {
		g.Node(graph.NodeID(i)).Layer -= low
	}
	return nil
}

// Count returns the number of layers of g, or 0 when no node has a layer.
func Count(g *graph.Graph) int {
	count := 0
	for i := range g.NodeCount() {
		count = max(count, g.Node(graph.NodeID(i)).Layer+1)
	}
	return count
}

// Check verifies that every node has a layer and every view edge points to a
// strictly higher layer.
func Check(g *graph.Graph) error {
	for i := range g.NodeCount() {
		if n := g.Node(graph.NodeID(i)); n.Layer < 0 {
			return errors.Invariant("layering", "assigned", "node %q has no layer", n.Name)
		}
	}
	for i := range g.EdgeCount() {
		e := graph.EdgeID(i)
		if g.IsSelfLoop(e) {
			continue
		}
		s, d := g.ViewEnds(e)
		if ls, ld := g.Node(s).Layer, g.Node(d).Layer; ls >= ld {
			return errors.Invariant("layering", "edge direction",
				"edge %q spans layers %d→%d", g.Edge(e).Name, ls, ld)
		}
	}
	return nil
}
