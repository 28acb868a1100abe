package crossing

import (
	"cmp"
	"slices"

	"github.com/matzehuels/strata/pkg/graph"
	"github.com/matzehuels/strata/pkg/graph/lgraph"
)

type portMove struct {
	port graph.PortID
	from float64
	to   float64
}

// distributePorts permutes the free ports on the front and back side of
// every real vnode among the W offsets already used on that side, ordering
// them by the mean key of the segment ends they connect to. Ports without
// segments keep their offset. The permutation is reverted when it increases
// the crossing count. It returns the resulting count and whether any port
// moved.
func distributePorts(v *lgraph.View, crossings int) (int, bool) {
	m := newMinimizer(v)

	var moves []portMove
	for _, n := range v.Real {
		for _, side := range []lgraph.CSide{lgraph.Front, lgraph.Back} {
			moves = append(moves, m.distribute(n, side)...)
		}
	}
	if len(moves) == 0 {
		return crossings, false
	}

	apply := func(to bool) {
		for _, mv := range moves {
			w := mv.from
			if to {
				w = mv.to
			}
			setPortW(v, mv.port, w)
		}
		m.rankPorts()
		for k := range v.Layers {
			m.reindex(k)
		}
	}

	apply(true)
	if after := m.total(); after <= crossings {
		return after, true
	}
	apply(false)
	return crossings, false
}

// distribute computes new W offsets for the free ports of vnode n on side.
func (m *minimizer) distribute(n int, side lgraph.CSide) []portMove {
	v := m.v
	node := v.Graph.Node(v.Nodes[n].Node)

	var group []graph.PortID
	for _, p := range node.Ports {
		if v.Graph.Port(p).Free && v.Ports[p].Side == side {
			group = append(group, p)
		}
	}
	if len(group) < 2 {
		return nil
	}
	slices.SortStableFunc(group, func(a, b graph.PortID) int {
		return cmp.Compare(v.Ports[a].Off.Y, v.Ports[b].Off.Y)
	})

	means := make(map[graph.PortID]float64, len(group))
	var movable []graph.PortID
	for _, p := range group {
		sum, count := 0.0, 0
		for _, s := range v.Out[n] {
			if seg := &v.Segments[s]; seg.SrcPort == p {
				sum += float64(m.key(seg.To, seg.DstPort))
				count++
			}
		}
		for _, s := range v.In[n] {
			if seg := &v.Segments[s]; seg.DstPort == p {
				sum += float64(m.key(seg.From, seg.SrcPort))
				count++
			}
		}
		if count > 0 {
			means[p] = sum / float64(count)
			movable = append(movable, p)
		}
	}
	slices.SortStableFunc(movable, func(a, b graph.PortID) int {
		return cmp.Compare(means[a], means[b])
	})

	var moves []portMove
	next := 0
	for _, slot := range group {
		if _, ok := means[slot]; !ok {
			continue
		}
		p := movable[next]
		next++
		if from, to := v.Ports[p].Off.Y, v.Ports[slot].Off.Y; from != to {
			moves = append(moves, portMove{port: p, from: from, to: to})
		}
	}
	return moves
}

// setPortW moves port p along its side and mirrors the change onto the
// graph port.
func setPortW(v *lgraph.View, p graph.PortID, w float64) {
	v.Ports[p].Off.Y = w
	port := v.Graph.Port(p)
	node := v.Graph.Node(port.Node)
	port.Offset = v.Frame.LocalOffset(v.Ports[p].Off, node.Width, node.Height)
}
