package graph

import (
	"fmt"
	"math"
	"strings"

	"github.com/matzehuels/strata/pkg/errors"
	"github.com/matzehuels/strata/pkg/geo"
)

// NodeID identifies a node within a [Graph].
type NodeID int

// PortID identifies a port within a [Graph].
type PortID int

// EdgeID identifies an edge within a [Graph].
type EdgeID int

// NoPort marks an absent port reference.
const NoPort PortID = -1

// Unassigned is the value of [Node.Layer] and [Node.Order] before the
// corresponding stage has run.
const Unassigned = -1

// Metadata stores arbitrary key-value pairs attached to nodes. It is carried
// through layout untouched so exporters can use it for labels and styling.
type Metadata map[string]any

// Node is a vertex with a size and a set of ports.
type Node struct {
	Name   string
	Width  float64
	Height float64
	Ports  []PortID
	Meta   Metadata

	// Layer and Order are the node's layer index and its position within
	// the layer. Both are Unassigned until the respective stage runs, or
	// preset by the caller for fixed layering and ordering.
	Layer int
	Order int

	// Constraint pins the node to the first or last layer.
	Constraint LayerConstraint

	// Pos is the top-left corner of the node after placement. Placed is set
	// when Pos holds a position, either from placement or from a previous
	// layout read back as input.
	Pos    geo.Point
	Placed bool

	inPort  PortID
	outPort PortID
}

// Rect returns the node's bounding box at its current position.
func (n *Node) Rect() geo.Rect {
	return geo.Rect{X: n.Pos.X, Y: n.Pos.Y, W: n.Width, H: n.Height}
}

// Port is a connection point on the boundary of a node.
type Port struct {
	Name string
	Node NodeID
	Side Side

	// Offset is the port position relative to the owning node's top-left
	// corner. For ports with SideUndefined it is chosen during layout.
	Offset geo.Point

	// Implicit marks ports created by [Graph.Connect] when an edge names a
	// node instead of a port.
	Implicit bool

	// Free is set by layout on ports whose side and offset it chose. Only
	// free ports are redistributed along their side.
	Free bool
}

// Edge is a directed connection from a source port to a target port.
type Edge struct {
	Name   string
	Source PortID
	Target PortID

	// Reversed is set when cycle breaking decided the edge points against
	// the layout flow. Layout treats it as Target→Source; Bends are always
	// reported from Source to Target.
	Reversed bool

	// Bends holds the intermediate route points from Source to Target.
	Bends []geo.Point

	// Start and End are the route's end points. They lie on the port, or
	// next to it along the port's side when parallel edges share the port.
	// Routed is set once they hold a route.
	Start, End geo.Point
	Routed     bool
}

// Graph is an arena of nodes, ports and edges addressed by stable integer
// identifiers.
//
// The zero value is not usable; create graphs with [New]. Pointers returned
// by [Graph.Node], [Graph.Port] and [Graph.Edge] are invalidated when
// entities of the same kind are added. Graph is not safe for concurrent use.
type Graph struct {
	nodes []Node
	ports []Port
	edges []Edge

	nodeByName map[string]NodeID
	portByName map[string]PortID
	edgeByName map[string]EdgeID

	out [][]EdgeID // by source node, raw direction
	in  [][]EdgeID // by target node, raw direction
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodeByName: make(map[string]NodeID),
		portByName: make(map[string]PortID),
		edgeByName: make(map[string]EdgeID),
	}
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// PortCount returns the number of ports, including implicit ones.
func (g *Graph) PortCount() int { return len(g.ports) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Node returns the node with the given id.
func (g *Graph) Node(id NodeID) *Node { return &g.nodes[id] }

// Port returns the port with the given id.
func (g *Graph) Port(id PortID) *Port { return &g.ports[id] }

// Edge returns the edge with the given id.
func (g *Graph) Edge(id EdgeID) *Edge { return &g.edges[id] }

// NodeByName looks up a node by its unique name.
func (g *Graph) NodeByName(name string) (NodeID, bool) {
	id, ok := g.nodeByName[name]
	return id, ok
}

// PortByName looks up an explicit port by its unique name.
func (g *Graph) PortByName(name string) (PortID, bool) {
	id, ok := g.portByName[name]
	return id, ok
}

// EdgeByName looks up an edge by its unique name.
func (g *Graph) EdgeByName(name string) (EdgeID, bool) {
	id, ok := g.edgeByName[name]
	return id, ok
}

// AddNode adds a node with the given name and size. Names must be unique and
// non-empty. Sizes are stored as given; degenerate sizes are clamped by the
// layout pipeline, not here.
func (g *Graph) AddNode(name string, width, height float64) (NodeID, error) {
	if err := errors.ValidateName("node", name); err != nil {
		return 0, err
	}
	if _, ok := g.nodeByName[name]; ok {
		return 0, errors.New(errors.ErrCodeDuplicateID, "duplicate node id %q", name)
	}
	if math.IsNaN(width) || math.IsNaN(height) || math.IsInf(width, 0) || math.IsInf(height, 0) {
		return 0, errors.New(errors.ErrCodeInvalidInput, "node %q has a non-finite size", name)
	}
	id := NodeID(len(g.nodes))
	g.nodes = append(g.nodes, Node{
		Name:    name,
		Width:   width,
		Height:  height,
		Meta:    Metadata{},
		Layer:   Unassigned,
		Order:   Unassigned,
		inPort:  NoPort,
		outPort: NoPort,
	})
	g.nodeByName[name] = id
	g.out = append(g.out, nil)
	g.in = append(g.in, nil)
	return id, nil
}

// AddPort adds a named port to node n. Port names are unique across the graph.
func (g *Graph) AddPort(n NodeID, name string, side Side, offset geo.Point) (PortID, error) {
	if int(n) < 0 || int(n) >= len(g.nodes) {
		return NoPort, errors.New(errors.ErrCodeInvalidInput, "port %q: unknown node %d", name, n)
	}
	if err := errors.ValidateName("port", name); err != nil {
		return NoPort, err
	}
	if _, ok := g.portByName[name]; ok {
		return NoPort, errors.New(errors.ErrCodeDuplicateID, "duplicate port id %q", name)
	}
	id := g.addPort(Port{Name: name, Node: n, Side: side, Offset: offset})
	g.portByName[name] = id
	return id, nil
}

func (g *Graph) addPort(p Port) PortID {
	id := PortID(len(g.ports))
	g.ports = append(g.ports, p)
	g.nodes[p.Node].Ports = append(g.nodes[p.Node].Ports, id)
	return id
}

// InputPort returns the implicit input port of n, creating it on first use.
func (g *Graph) InputPort(n NodeID) PortID {
	if p := g.nodes[n].inPort; p != NoPort {
		return p
	}
	p := g.addPort(Port{Name: g.nodes[n].Name + "#in", Node: n, Implicit: true})
	g.nodes[n].inPort = p
	return p
}

// OutputPort returns the implicit output port of n, creating it on first use.
func (g *Graph) OutputPort(n NodeID) PortID {
	if p := g.nodes[n].outPort; p != NoPort {
		return p
	}
	p := g.addPort(Port{Name: g.nodes[n].Name + "#out", Node: n, Implicit: true})
	g.nodes[n].outPort = p
	return p
}

// AddEdge adds a directed edge between two existing ports. An empty name is
// replaced by a generated one ("e0", "e1", ...).
func (g *Graph) AddEdge(name string, src, dst PortID) (EdgeID, error) {
	if name == "" {
		name = g.generateEdgeName()
	} else if err := errors.ValidateName("edge", name); err != nil {
		return 0, err
	}
	if _, ok := g.edgeByName[name]; ok {
		return 0, errors.New(errors.ErrCodeDuplicateID, "duplicate edge id %q", name)
	}
	if !g.validPort(src) {
		return 0, errors.New(errors.ErrCodeUnknownPort, "edge %q: unknown source port %d", name, src)
	}
	if !g.validPort(dst) {
		return 0, errors.New(errors.ErrCodeUnknownPort, "edge %q: unknown target port %d", name, dst)
	}
	id := EdgeID(len(g.edges))
	g.edges = append(g.edges, Edge{Name: name, Source: src, Target: dst})
	g.edgeByName[name] = id
	sn, tn := g.ports[src].Node, g.ports[dst].Node
	g.out[sn] = append(g.out[sn], id)
	g.in[tn] = append(g.in[tn], id)
	return id, nil
}

func (g *Graph) generateEdgeName() string {
	for i := len(g.edges); ; i++ {
		name := fmt.Sprintf("e%d", i)
		if _, ok := g.edgeByName[name]; !ok {
			return name
		}
	}
}

func (g *Graph) validPort(p PortID) bool {
	return int(p) >= 0 && int(p) < len(g.ports)
}

// Connect adds an edge between two endpoints given by name. Each endpoint
// names either an explicit port or a node; a node name resolves to that
// node's implicit output (for from) or input (for to) port.
func (g *Graph) Connect(name, from, to string) (EdgeID, error) {
	src, err := g.resolve(name, from, true)
	if err != nil {
		return 0, err
	}
	dst, err := g.resolve(name, to, false)
	if err != nil {
		return 0, err
	}
	return g.AddEdge(name, src, dst)
}

func (g *Graph) resolve(edge, endpoint string, output bool) (PortID, error) {
	if p, ok := g.portByName[endpoint]; ok {
		return p, nil
	}
	if n, ok := g.nodeByName[endpoint]; ok {
		if output {
			return g.OutputPort(n), nil
		}
		return g.InputPort(n), nil
	}
	role := "target"
	if output {
		role = "source"
	}
	label := edge
	if label == "" {
		label = "#" + fmt.Sprint(len(g.edges))
	}
	return NoPort, errors.New(errors.ErrCodeUnknownPort, "edge %s: unknown %s %q", label, role, endpoint)
}

// NodeOf returns the node owning port p.
func (g *Graph) NodeOf(p PortID) NodeID { return g.ports[p].Node }

// Ends returns the source and target nodes of e as declared.
func (g *Graph) Ends(e EdgeID) (src, dst NodeID) {
	ed := &g.edges[e]
	return g.ports[ed.Source].Node, g.ports[ed.Target].Node
}

// ViewPorts returns the endpoints of e in layout direction, swapping them
// for reversed edges.
func (g *Graph) ViewPorts(e EdgeID) (src, dst PortID) {
	ed := &g.edges[e]
	if ed.Reversed {
		return ed.Target, ed.Source
	}
	return ed.Source, ed.Target
}

// ViewEnds is like [Graph.Ends] but respects [Edge.Reversed].
func (g *Graph) ViewEnds(e EdgeID) (src, dst NodeID) {
	sp, dp := g.ViewPorts(e)
	return g.ports[sp].Node, g.ports[dp].Node
}

// IsSelfLoop reports whether both ends of e are on the same node.
func (g *Graph) IsSelfLoop(e EdgeID) bool {
	s, d := g.Ends(e)
	return s == d
}

// Out returns the edges declared with n as source, in insertion order. The
// returned slice must not be modified.
func (g *Graph) Out(n NodeID) []EdgeID { return g.out[n] }

// In returns the edges declared with n as target, in insertion order. The
// returned slice must not be modified.
func (g *Graph) In(n NodeID) []EdgeID { return g.in[n] }

// ViewOut returns the edges leaving n in layout direction, excluding
// self-loops, in insertion order.
func (g *Graph) ViewOut(n NodeID) []EdgeID {
	var res []EdgeID
	for _, e := range g.incident(n) {
		if s, d := g.ViewEnds(e); s == n && d != n {
			res = append(res, e)
		}
	}
	return res
}

// ViewIn returns the edges entering n in layout direction, excluding
// self-loops, in insertion order.
func (g *Graph) ViewIn(n NodeID) []EdgeID {
	var res []EdgeID
	for _, e := range g.incident(n) {
		if s, d := g.ViewEnds(e); d == n && s != n {
			res = append(res, e)
		}
	}
	return res
}

// incident returns all edges touching n sorted by id, each once.
func (g *Graph) incident(n NodeID) []EdgeID {
	res := make([]EdgeID, 0, len(g.out[n])+len(g.in[n]))
	i, j := 0, 0
	outs, ins := g.out[n], g.in[n]
	for i < len(outs) || j < len(ins) {
		switch {
		case j >= len(ins) || (i < len(outs) && outs[i] < ins[j]):
			res = append(res, outs[i])
			i++
		case i >= len(outs) || ins[j] < outs[i]:
			res = append(res, ins[j])
			j++
		default: // self-loop listed in both
			res = append(res, outs[i])
			i++
			j++
		}
	}
	return res
}

// Clone returns a deep copy of g.
func (g *Graph) Clone() *Graph {
	c := &Graph{
		nodes:      make([]Node, len(g.nodes)),
		ports:      make([]Port, len(g.ports)),
		edges:      make([]Edge, len(g.edges)),
		nodeByName: make(map[string]NodeID, len(g.nodeByName)),
		portByName: make(map[string]PortID, len(g.portByName)),
		edgeByName: make(map[string]EdgeID, len(g.edgeByName)),
		out:        make([][]EdgeID, len(g.out)),
		in:         make([][]EdgeID, len(g.in)),
	}
	for i, n := range g.nodes {
		n.Ports = append([]PortID(nil), n.Ports...)
		n.Meta = copyMeta(n.Meta)
		c.nodes[i] = n
	}
	copy(c.ports, g.ports)
	for i, e := range g.edges {
		e.Bends = append([]geo.Point(nil), e.Bends...)
		c.edges[i] = e
	}
	for k, v := range g.nodeByName {
		c.nodeByName[k] = v
	}
	for k, v := range g.portByName {
		c.portByName[k] = v
	}
	for k, v := range g.edgeByName {
		c.edgeByName[k] = v
	}
	for i := range g.out {
		c.out[i] = append([]EdgeID(nil), g.out[i]...)
		c.in[i] = append([]EdgeID(nil), g.in[i]...)
	}
	return c
}

func copyMeta(m Metadata) Metadata {
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// String returns a compact description, mostly useful in test failures.
func (g *Graph) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "graph(%d nodes, %d edges)", len(g.nodes), len(g.edges))
	for i := range g.edges {
		s, d := g.Ends(EdgeID(i))
		arrow := "->"
		if g.edges[i].Reversed {
			arrow = "<-"
		}
		fmt.Fprintf(&sb, " %s%s%s", g.nodes[s].Name, arrow, g.nodes[d].Name)
	}
	return sb.String()
}
