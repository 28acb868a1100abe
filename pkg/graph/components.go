package graph

import "github.com/matzehuels/strata/pkg/geo"

// Components returns the weakly connected components of g. Components are
// ordered by their first node in insertion order, and nodes within a
// component keep insertion order.
func (g *Graph) Components() [][]NodeID {
	comp := make([]int, len(g.nodes))
	for i := range comp {
		comp[i] = -1
	}

	count := 0
	var stack []NodeID
	for start := range g.nodes {
		if comp[start] >= 0 {
			continue
		}
		comp[start] = count
		stack = append(stack[:0], NodeID(start))
		for len(stack) > 0 {
			n := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			for _, e := range g.out[n] {
				_, d := g.Ends(e)
				if comp[d] < 0 {
					comp[d] = count
					stack = append(stack, d)
				}
			}
			for _, e := range g.in[n] {
				s, _ := g.Ends(e)
				if comp[s] < 0 {
					comp[s] = count
					stack = append(stack, s)
				}
			}
		}
		count++
	}

	res := make([][]NodeID, count)
	for n, c := range comp {
		res[c] = append(res[c], NodeID(n))
	}
	return res
}

// Mapping relates the entities of an extracted sub-graph to the graph they
// were copied from. Each slice is indexed by the sub-graph identifier and
// holds the original identifier.
type Mapping struct {
	Nodes []NodeID
	Ports []PortID
	Edges []EdgeID
}

// Extract copies the given nodes, all their ports and every edge with both
// ends among them into a new graph. Names, sizes, layout annotations and
// metadata are preserved. Nodes are added in the order given.
func (g *Graph) Extract(nodes []NodeID) (*Graph, *Mapping) {
	sub := New()
	m := &Mapping{}

	nodeMap := make(map[NodeID]NodeID, len(nodes))
	portMap := make(map[PortID]PortID)
	for _, n := range nodes {
		src := &g.nodes[n]
		id := NodeID(len(sub.nodes))
		cp := *src
		cp.Ports = nil
		cp.Meta = copyMeta(src.Meta)
		cp.inPort, cp.outPort = NoPort, NoPort
		sub.nodes = append(sub.nodes, cp)
		sub.nodeByName[cp.Name] = id
		sub.out = append(sub.out, nil)
		sub.in = append(sub.in, nil)
		nodeMap[n] = id
		m.Nodes = append(m.Nodes, n)

		for _, p := range src.Ports {
			port := g.ports[p]
			port.Node = id
			pid := sub.addPort(port)
			portMap[p] = pid
			m.Ports = append(m.Ports, p)
			switch {
			case port.Implicit && p == src.inPort:
				sub.nodes[id].inPort = pid
			case port.Implicit && p == src.outPort:
				sub.nodes[id].outPort = pid
			case !port.Implicit:
				sub.portByName[port.Name] = pid
			}
		}
	}

	for i := range g.edges {
		e := g.edges[i]
		sp, okS := portMap[e.Source]
		dp, okD := portMap[e.Target]
		if !okS || !okD {
			continue
		}
		id := EdgeID(len(sub.edges))
		e.Source, e.Target = sp, dp
		e.Bends = append([]geo.Point(nil), e.Bends...)
		sub.edges = append(sub.edges, e)
		sub.edgeByName[e.Name] = id
		sn, dn := sub.ports[sp].Node, sub.ports[dp].Node
		sub.out[sn] = append(sub.out[sn], id)
		sub.in[dn] = append(sub.in[dn], id)
		m.Edges = append(m.Edges, EdgeID(i))
	}
	return sub, m
}
