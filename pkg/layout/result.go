package layout

import (
	"maps"
	"slices"
	"time"

	"github.com/matzehuels/strata/pkg/geo"
	"github.com/matzehuels/strata/pkg/graph"
)

// Result is a snapshot of a finished layout. It holds no references into
// the graph it was computed from.
type Result struct {
	Direction graph.Direction `json:"direction"`
	Nodes     []Node          `json:"nodes"`
	Edges     []Edge          `json:"edges"`
	// Bounds encloses every node and route, with its top-left corner at the
	// origin.
	Bounds geo.Rect `json:"bounds"`
	Stats  Stats    `json:"stats"`
}

// Node is a positioned node.
type Node struct {
	ID     string         `json:"id"`
	Layer  int            `json:"layer"`
	Order  int            `json:"order"`
	X      float64        `json:"x"`
	Y      float64        `json:"y"`
	Width  float64        `json:"width"`
	Height float64        `json:"height"`
	Ports  []Port         `json:"ports,omitempty"`
	Meta   map[string]any `json:"meta,omitempty"`
}

// Rect returns the node's bounding box.
func (n *Node) Rect() geo.Rect {
	return geo.Rect{X: n.X, Y: n.Y, W: n.Width, H: n.Height}
}

// Port is a port with its final side and offset from the node's top-left
// corner.
type Port struct {
	ID   string     `json:"id"`
	Side graph.Side `json:"side"`
	X    float64    `json:"x"`
	Y    float64    `json:"y"`
	// Implicit marks the ports created for edges that named a node.
	Implicit bool `json:"implicit,omitempty"`
}

// Edge is a routed edge. Route runs from Source to Target even when the
// edge was reversed for layout.
type Edge struct {
	ID       string      `json:"id"`
	Source   string      `json:"source"`
	Target   string      `json:"target"`
	Reversed bool        `json:"reversed,omitempty"`
	Bends    []geo.Point `json:"bends"`
	Route    []geo.Point `json:"route"`
}

// Stats summarizes a layout run.
type Stats struct {
	Nodes      int `json:"nodes"`
	Edges      int `json:"edges"`
	Components int `json:"components"`
	Reversed   int `json:"reversed"`
	SelfLoops  int `json:"self_loops"`
	Dummies    int `json:"dummies"`
	// Layers is the largest layer count of any component.
	Layers    int `json:"layers"`
	Crossings int `json:"crossings"`
	Bends     int `json:"bends"`
	Perturbed int `json:"perturbed"`

	// Stages holds the time spent per stage, summed over components.
	Stages   map[string]time.Duration `json:"stages"`
	Duration time.Duration            `json:"duration"`
}

func (s *Stats) merge(o Stats) {
	s.Reversed += o.Reversed
	s.SelfLoops += o.SelfLoops
	s.Dummies += o.Dummies
	s.Layers = max(s.Layers, o.Layers)
	s.Crossings += o.Crossings
	s.Bends += o.Bends
	s.Perturbed += o.Perturbed
	if s.Stages == nil {
		s.Stages = make(map[string]time.Duration)
	}
	for stage, d := range o.Stages {
		s.Stages[stage] += d
	}
}

// snapshot copies the layout annotations of g into a Result.
func snapshot(g *graph.Graph, dir graph.Direction, stats Stats) *Result {
	res := &Result{
		Direction: dir,
		Nodes:     make([]Node, g.NodeCount()),
		Edges:     make([]Edge, g.EdgeCount()),
		Stats:     stats,
	}
	for i := range g.NodeCount() {
		n := g.Node(graph.NodeID(i))
		rn := Node{
			ID:     n.Name,
			Layer:  n.Layer,
			Order:  n.Order,
			X:      n.Pos.X,
			Y:      n.Pos.Y,
			Width:  n.Width,
			Height: n.Height,
		}
		if len(n.Meta) > 0 {
			rn.Meta = maps.Clone(map[string]any(n.Meta))
		}
		for _, p := range n.Ports {
			port := g.Port(p)
			rn.Ports = append(rn.Ports, Port{
				ID:       port.Name,
				Side:     port.Side,
				X:        port.Offset.X,
				Y:        port.Offset.Y,
				Implicit: port.Implicit,
			})
		}
		res.Nodes[i] = rn
		res.Bounds = res.Bounds.Union(rn.Rect())
	}
	for i := range g.EdgeCount() {
		e := g.Edge(graph.EdgeID(i))
		re := Edge{
			ID:       e.Name,
			Source:   g.Port(e.Source).Name,
			Target:   g.Port(e.Target).Name,
			Reversed: e.Reversed,
			Bends:    slices.Clone(e.Bends),
		}
		if re.Bends == nil {
			re.Bends = []geo.Point{}
		}
		re.Route = append(append([]geo.Point{e.Start}, e.Bends...), e.End)
		for _, p := range re.Route {
			res.Bounds = res.Bounds.ExtendTo(p)
		}
		res.Edges[i] = re
	}
	return res
}

// NodeByID returns the node with the given id.
func (r *Result) NodeByID(id string) (*Node, bool) {
	for i := range r.Nodes {
		if r.Nodes[i].ID == id {
			return &r.Nodes[i], true
		}
	}
	return nil, false
}

// EdgeByID returns the edge with the given id.
func (r *Result) EdgeByID(id string) (*Edge, bool) {
	for i := range r.Edges {
		if r.Edges[i].ID == id {
			return &r.Edges[i], true
		}
	}
	return nil, false
}

// PortNodes maps every port id to the id of its node.
func (r *Result) PortNodes() map[string]string {
	owners := make(map[string]string)
	for _, n := range r.Nodes {
		for _, p := range n.Ports {
			owners[p.ID] = n.ID
		}
	}
	return owners
}
