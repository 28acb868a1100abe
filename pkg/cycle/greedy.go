package cycle

import "github.com/matzehuels/strata/pkg/graph"

// greedy computes a linear order of the nodes with the Eades–Lin–Smyth
// heuristic and reverses every edge pointing backwards in that order.
//
// Sinks are peeled off to the right end and sources to the left end of the
// order. When neither exists, the unranked node with the largest
// out-degree minus in-degree is placed left; ties go to the node inserted
// last, which keeps the result independent of map iteration. Edges for
// which skip reports true are left out of the order entirely.
func greedy(g *graph.Graph, skip func(graph.EdgeID) bool) []graph.EdgeID {
	n := g.NodeCount()
	indeg := make([]int, n)
	outdeg := make([]int, n)
	for i := range g.EdgeCount() {
		e := graph.EdgeID(i)
		if skip(e) {
			continue
		}
		s, d := g.Ends(e)
		outdeg[s]++
		indeg[d]++
	}

	mark := make([]int, n) // 0 = unranked
	var sinks, sources []graph.NodeID
	unresolved := make(map[graph.NodeID]bool)
	for i := range n {
		id := graph.NodeID(i)
		switch {
		case indeg[i] > 0 && outdeg[i] == 0:
			sinks = append(sinks, id)
		case indeg[i] == 0 && outdeg[i] > 0:
			sources = append(sources, id)
		default:
			unresolved[id] = true
		}
	}

	// remove simulates deleting node from the graph, updating the degrees of
	// its unranked neighbours and promoting new sources and sinks.
	remove := func(node graph.NodeID) {
		for _, e := range g.Out(node) {
			if skip(e) {
				continue
			}
			_, other := g.Ends(e)
			if mark[other] != 0 {
				continue
			}
			indeg[other]--
			if indeg[other] <= 0 && outdeg[other] > 0 && unresolved[other] {
				delete(unresolved, other)
				sources = append(sources, other)
			}
		}
		for _, e := range g.In(node) {
			if skip(e) {
				continue
			}
			other, _ := g.Ends(e)
			if mark[other] != 0 {
				continue
			}
			outdeg[other]--
			if outdeg[other] <= 0 && indeg[other] > 0 && unresolved[other] {
				delete(unresolved, other)
				sinks = append(sinks, other)
			}
		}
	}

	nextLeft, nextRight := 1, -1
	pop := func(list *[]graph.NodeID) graph.NodeID {
		l := *list
		node := l[len(l)-1]
		*list = l[:len(l)-1]
		return node
	}
	for len(sinks) > 0 || len(sources) > 0 || len(unresolved) > 0 {
		for len(sinks) > 0 {
			node := pop(&sinks)
			if mark[node] != 0 {
				continue
			}
			mark[node] = nextRight
			nextRight--
			remove(node)
		}
		for len(sources) > 0 {
			node := pop(&sources)
			if mark[node] != 0 {
				continue
			}
			mark[node] = nextLeft
			nextLeft++
			remove(node)
		}
		if len(sinks) == 0 && len(sources) == 0 && len(unresolved) > 0 {
			best := graph.NodeID(-1)
			for cand := range unresolved {
				if best < 0 {
					best = cand
					continue
				}
				dc, db := outdeg[cand]-indeg[cand], outdeg[best]-indeg[best]
				if dc > db || (dc == db && cand > best) {
					best = cand
				}
			}
			delete(unresolved, best)
			mark[best] = nextLeft
			nextLeft++
			remove(best)
		}
	}

	// Sinks were ranked from the right with negative marks; shift them
	// behind every positive mark.
	for i := range mark {
		if mark[i] < 0 {
			mark[i] += n + 1
		}
	}

	var rev []graph.EdgeID
	for i := range g.EdgeCount() {
		e := graph.EdgeID(i)
		if skip(e) {
			continue
		}
		s, d := g.Ends(e)
		if mark[s] > mark[d] {
			rev = append(rev, e)
		}
	}
	return rev
}
