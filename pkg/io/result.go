package io

import (
	"encoding/json"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/matzehuels/strata/pkg/errors"
	"github.com/matzehuels/strata/pkg/geo"
	"github.com/matzehuels/strata/pkg/graph"
	"github.com/matzehuels/strata/pkg/layout"
)

// WriteResult encodes a layout result as indented JSON.
func WriteResult(res *layout.Result, w io.Writer) error {
	return encode(w, res)
}

// ExportResult writes a layout result to the file at path.
func ExportResult(res *layout.Result, path string) error {
	return create(path, func(w io.Writer) error { return WriteResult(res, w) })
}

// ReadResult decodes a layout result written by [WriteResult].
func ReadResult(r io.Reader) (*layout.Result, error) {
	var res layout.Result
	if err := json.NewDecoder(r).Decode(&res); err != nil {
		return nil, decodeError(err, "decode result")
	}
	return &res, nil
}

// LoadResult reads a layout result from the file at path.
func LoadResult(path string) (*layout.Result, error) {
	f, err := open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadResult(f)
}

// ImportResult rebuilds the graph a result was computed from, with the
// result's layers, orders, positions, port sides and offsets, and bends
// preset. Laying it out in res.Direction with [layout.Options.FixedLayout]
// reproduces res.
//
// Implicit ports are recreated as the implicit ports of their node, so edges
// written against a node name keep attaching to the same ports.
func ImportResult(res *layout.Result) (*graph.Graph, error) {
	g := graph.New()
	ports := make(map[string]graph.PortID)

	for _, n := range res.Nodes {
		id, err := g.AddNode(n.ID, n.Width, n.Height)
		if err != nil {
			return nil, err
		}
		node := g.Node(id)
		node.Layer, node.Order = n.Layer, n.Order
		node.Pos, node.Placed = geo.Pt(n.X, n.Y), true
		if len(n.Meta) > 0 {
			node.Meta = maps.Clone(graph.Metadata(n.Meta))
		}

		for _, p := range n.Ports {
			offset := geo.Pt(p.X, p.Y)
			if !p.Implicit {
				pid, err := g.AddPort(id, p.ID, p.Side, offset)
				if err != nil {
					return nil, err
				}
				ports[p.ID] = pid
				continue
			}
			var pid graph.PortID
			switch {
			case strings.HasSuffix(p.ID, "#in"):
				pid = g.InputPort(id)
			case strings.HasSuffix(p.ID, "#out"):
				pid = g.OutputPort(id)
			default:
				return nil, errors.New(errors.ErrCodeInvalidInput,
					"implicit port %q of node %q is neither an input nor an output", p.ID, n.ID)
			}
			port := g.Port(pid)
			port.Side, port.Offset = p.Side, offset
			ports[p.ID] = pid
		}
	}

	for _, e := range res.Edges {
		src, ok := ports[e.Source]
		if !ok {
			return nil, errors.New(errors.ErrCodeUnknownPort, "edge %q: unknown source port %q", e.ID, e.Source)
		}
		dst, ok := ports[e.Target]
		if !ok {
			return nil, errors.New(errors.ErrCodeUnknownPort, "edge %q: unknown target port %q", e.ID, e.Target)
		}
		id, err := g.AddEdge(e.ID, src, dst)
		if err != nil {
			return nil, err
		}
		g.Edge(id).Bends = slices.Clone(e.Bends)
	}
	return g, nil
}
