// Package lgraph provides the proper layered view of a graph used between
// layer assignment and edge routing.
//
// The view is derived from a [graph.Graph] whose nodes carry layer indices.
// Every edge that spans more than one layer is split into single-hop
// [Segment]s joined by dummy [VNode]s, one per intermediate layer. The
// original graph is never modified structurally: dummies exist only in the
// view, and every segment remembers the edge it belongs to, so routes can be
// collapsed back onto the original edges once routing is done.
//
// All geometry in the view is expressed in the canonical frame described in
// frame.go.
package lgraph

import (
	"fmt"
	"slices"

	"github.com/matzehuels/strata/pkg/geo"
	"github.com/matzehuels/strata/pkg/graph"
)

// NoNode marks an absent view node reference.
const NoNode = -1

// VNode is a node of the layered view: either a real graph node or a dummy
// standing in for an edge crossing a layer.
type VNode struct {
	// Node is the graph node for real vnodes and -1 for dummies.
	Node graph.NodeID
	// Edge is the owning edge for dummies and -1 for real vnodes.
	Edge graph.EdgeID

	Layer int
	Order int

	// SizeL and SizeW are the extents along the layer and within-layer axes.
	// Dummies have zero size.
	SizeL, SizeW float64

	// Pos is the canonical top-left corner, written by placement.
	Pos geo.Point

	// Hint orders the vnode within its layer when ordering is fixed.
	Hint float64
}

// IsDummy reports whether v represents part of a long edge.
func (v *VNode) IsDummy() bool { return v.Node < 0 }

// Segment is a single-hop piece of an edge between adjacent layers.
type Segment struct {
	Edge graph.EdgeID
	// From is in layer k and To in layer k+1.
	From, To int
	// SrcPort and DstPort are the graph ports at real ends, NoPort at
	// dummy ends.
	SrcPort, DstPort graph.PortID
	// Hop is the index of the segment along its edge.
	Hop int
}

// PortGeom is the canonical side and offset of a port.
type PortGeom struct {
	Side CSide
	// Off is relative to the owning node's canonical top-left corner.
	Off geo.Point
}

// View is a proper layered graph derived from a layered [graph.Graph].
type View struct {
	Graph *graph.Graph
	Frame Frame

	Nodes    []VNode
	Segments []Segment
	// Layers holds vnode indices per layer. After crossing minimization the
	// slice order is the visual order.
	Layers [][]int

	// Out and In list segment indices per vnode.
	Out [][]int
	In  [][]int

	// Chains lists the segments of every non-self-loop edge in hop order.
	Chains map[graph.EdgeID][]int
	// SelfLoops lists the edges whose ends share a node. They do not take
	// part in the view.
	SelfLoops []graph.EdgeID

	// Real maps a graph node to its vnode index.
	Real []int
	// Ports holds the canonical geometry of every graph port.
	Ports []PortGeom
}

// Build derives the layered view of g. Every node must have a layer and
// every non-self-loop edge must point from a lower to a higher layer in its
// view direction; Build returns an error otherwise.
func Build(g *graph.Graph, f Frame) (*View, error) {
	layerCount := 0
	for i := range g.NodeCount() {
		n := g.Node(graph.NodeID(i))
		if n.Layer < 0 {
			return nil, fmt.Errorf("node %q has no layer", n.Name)
		}
		layerCount = max(layerCount, n.Layer+1)
	}

	v := &View{
		Graph:  g,
		Frame:  f,
		Layers: make([][]int, layerCount),
		Chains: make(map[graph.EdgeID][]int),
		Real:   make([]int, g.NodeCount()),
		Ports:  make([]PortGeom, g.PortCount()),
	}

	for i := range g.NodeCount() {
		n := g.Node(graph.NodeID(i))
		sl, sw := f.Size(n.Width, n.Height)
		v.Real[i] = v.addNode(VNode{Node: graph.NodeID(i), Edge: -1, Layer: n.Layer, SizeL: sl, SizeW: sw})
	}
	for p := range g.PortCount() {
		port := g.Port(graph.PortID(p))
		n := g.Node(port.Node)
		v.Ports[p] = PortGeom{
			Side: f.SideOf(port.Side),
			Off:  f.Offset(port.Offset, n.Width, n.Height),
		}
	}

	for i := range g.EdgeCount() {
		e := graph.EdgeID(i)
		if g.IsSelfLoop(e) {
			v.SelfLoops = append(v.SelfLoops, e)
			continue
		}
		s, d := g.ViewEnds(e)
		sp, dp := g.ViewPorts(e)
		ls, ld := g.Node(s).Layer, g.Node(d).Layer
		if ls >= ld {
			return nil, fmt.Errorf("edge %q spans layers %d→%d", g.Edge(e).Name, ls, ld)
		}
		prev, prevPort := v.Real[s], sp
		hop := 0
		for k := ls + 1; k < ld; k++ {
			dummy := v.addNode(VNode{Node: -1, Edge: e, Layer: k})
			v.addSegment(Segment{Edge: e, From: prev, To: dummy, SrcPort: prevPort, DstPort: graph.NoPort, Hop: hop})
			prev, prevPort = dummy, graph.NoPort
			hop++
		}
		v.addSegment(Segment{Edge: e, From: prev, To: v.Real[d], SrcPort: prevPort, DstPort: dp, Hop: hop})
	}

	v.Reindex()
	return v, nil
}

func (v *View) addNode(n VNode) int {
	id := len(v.Nodes)
	v.Nodes = append(v.Nodes, n)
	v.Out = append(v.Out, nil)
	v.In = append(v.In, nil)
	v.Layers[n.Layer] = append(v.Layers[n.Layer], id)
	return id
}

func (v *View) addSegment(s Segment) {
	id := len(v.Segments)
	v.Segments = append(v.Segments, s)
	v.Out[s.From] = append(v.Out[s.From], id)
	v.In[s.To] = append(v.In[s.To], id)
	v.Chains[s.Edge] = append(v.Chains[s.Edge], id)
}

// Reindex writes each vnode's Order from its position in Layers.
func (v *View) Reindex() {
	for _, layer := range v.Layers {
		for i, n := range layer {
			v.Nodes[n].Order = i
		}
	}
}

// DummyCount returns the number of dummy vnodes.
func (v *View) DummyCount() int {
	return len(v.Nodes) - len(v.Real)
}

// PortW returns the within-layer offset of a segment end: the port offset
// for real ends and zero for dummy ends.
func (v *View) PortW(p graph.PortID) float64 {
	if p == graph.NoPort {
		return 0
	}
	return v.Ports[p].Off.Y
}

// PortAbs returns the canonical absolute position of a segment end at vnode
// n. Dummy ends sit on the dummy's position.
func (v *View) PortAbs(n int, p graph.PortID) geo.Point {
	if p == graph.NoPort {
		return v.Nodes[n].Pos
	}
	return v.Nodes[n].Pos.Add(v.Ports[p].Off)
}

// PortRanks returns, for each port of real vnode n, its rank along the
// within-layer axis. Ports are ranked by W offset, then by L offset.
func (v *View) PortRanks(n int) map[graph.PortID]int {
	vn := &v.Nodes[n]
	if vn.IsDummy() {
		return nil
	}
	ports := slices.Clone(v.Graph.Node(vn.Node).Ports)
	slices.SortStableFunc(ports, func(a, b graph.PortID) int {
		pa, pb := v.Ports[a].Off, v.Ports[b].Off
		switch {
		case pa.Y < pb.Y:
			return -1
		case pa.Y > pb.Y:
			return 1
		case pa.X < pb.X:
			return -1
		case pa.X > pb.X:
			return 1
		}
		return 0
	})
	ranks := make(map[graph.PortID]int, len(ports))
	for i, p := range ports {
		ranks[p] = i
	}
	return ranks
}

// Clone copies the mutable ordering state of v: vnode records and layer
// orders. Structure (segments, adjacency, ports) is shared.
func (v *View) Clone() *View {
	c := *v
	c.Nodes = slices.Clone(v.Nodes)
	c.Layers = make([][]int, len(v.Layers))
	for i, l := range v.Layers {
		c.Layers[i] = slices.Clone(l)
	}
	return &c
}
