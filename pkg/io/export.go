package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/strata/pkg/graph"
)

type document struct {
	Nodes []node `json:"nodes"`
	Edges []edge `json:"edges"`
}

type node struct {
	ID         string                `json:"id"`
	Width      float64               `json:"width"`
	Height     float64               `json:"height"`
	Ports      []port                `json:"ports,omitempty"`
	Constraint graph.LayerConstraint `json:"constraint,omitempty"`
	Layer      *int                  `json:"layer,omitempty"`
	Order      *int                  `json:"order,omitempty"`
	X          *float64              `json:"x,omitempty"`
	Y          *float64              `json:"y,omitempty"`
	Meta       graph.Metadata        `json:"meta,omitempty"`
}

type port struct {
	ID   string     `json:"id"`
	Side graph.Side `json:"side,omitempty"`
	X    float64    `json:"x"`
	Y    float64    `json:"y"`
}

type edge struct {
	ID     string `json:"id,omitempty"`
	Source string `json:"source"`
	Target string `json:"target"`
}

// WriteGraph encodes g as a JSON graph description.
//
// Implicit ports are not written; edges attached to them name their node
// instead, which recreates the same ports on [ReadGraph]. Layers, orders and
// positions are written when set, so a laid out graph reads back with its
// layout preset.
func WriteGraph(g *graph.Graph, w io.Writer) error {
	out := document{
		Nodes: make([]node, g.NodeCount()),
		Edges: make([]edge, g.EdgeCount()),
	}
	for i := range g.NodeCount() {
		n := g.Node(graph.NodeID(i))
		nd := node{ID: n.Name, Width: n.Width, Height: n.Height, Constraint: n.Constraint}
		if len(n.Meta) > 0 {
			nd.Meta = n.Meta
		}
		if n.Layer != graph.Unassigned {
			layer := n.Layer
			nd.Layer = &layer
		}
		if n.Order != graph.Unassigned {
			order := n.Order
			nd.Order = &order
		}
		if n.Placed {
			x, y := n.Pos.X, n.Pos.Y
			nd.X, nd.Y = &x, &y
		}
		for _, p := range n.Ports {
			if port := g.Port(p); !port.Implicit {
				nd.Ports = append(nd.Ports, portOf(port))
			}
		}
		out.Nodes[i] = nd
	}
	for i := range g.EdgeCount() {
		e := g.Edge(graph.EdgeID(i))
		out.Edges[i] = edge{ID: e.Name, Source: endpoint(g, e.Source), Target: endpoint(g, e.Target)}
	}
	return encode(w, out)
}

func portOf(p *graph.Port) port {
	return port{ID: p.Name, Side: p.Side, X: p.Offset.X, Y: p.Offset.Y}
}

func endpoint(g *graph.Graph, p graph.PortID) string {
	port := g.Port(p)
	if port.Implicit {
		return g.Node(port.Node).Name
	}
	return port.Name
}

// ExportGraph writes g as a JSON graph description to the file at path.
func ExportGraph(g *graph.Graph, path string) error {
	return create(path, func(w io.Writer) error { return WriteGraph(g, w) })
}

func encode(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

func create(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
