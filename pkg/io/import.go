package io

import (
	"encoding/json"
	"io"
	"os"

	"github.com/matzehuels/strata/pkg/errors"
	"github.com/matzehuels/strata/pkg/geo"
	"github.com/matzehuels/strata/pkg/graph"
)

// ReadGraph decodes a JSON graph description from r.
//
// Nodes and their ports are added first, then edges in the order given, so
// edges may reference nodes and ports declared anywhere in the document.
// ReadGraph returns an INVALID_FORMAT error for malformed JSON and the
// graph's own coded errors for duplicate ids, unknown endpoints or bad
// names. It does not close r.
func ReadGraph(r io.Reader) (*graph.Graph, error) {
	var data document
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, decodeError(err, "decode graph")
	}

	g := graph.New()
	for _, n := range data.Nodes {
		id, err := g.AddNode(n.ID, n.Width, n.Height)
		if err != nil {
			return nil, err
		}
		node := g.Node(id)
		node.Constraint = n.Constraint
		if n.Layer != nil {
			node.Layer = *n.Layer
		}
		if n.Order != nil {
			node.Order = *n.Order
		}
		if n.X != nil && n.Y != nil {
			node.Pos = geo.Pt(*n.X, *n.Y)
			node.Placed = true
		}
		for k, v := range n.Meta {
			node.Meta[k] = v
		}
		for _, p := range n.Ports {
			if _, err := g.AddPort(id, p.ID, p.Side, geo.Pt(p.X, p.Y)); err != nil {
				return nil, err
			}
		}
	}
	for _, e := range data.Edges {
		if _, err := g.Connect(e.ID, e.Source, e.Target); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// ImportGraph reads a JSON graph description from the file at path.
func ImportGraph(path string) (*graph.Graph, error) {
	f, err := open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadGraph(f)
}

func open(path string) (*os.File, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "open %s", path)
	}
	return f, nil
}

// decodeError keeps coded errors raised while decoding (unknown port sides
// or directions) and marks everything else as malformed input.
func decodeError(err error, what string) error {
	if errors.GetCode(err) != "" {
		return err
	}
	return errors.Wrap(errors.ErrCodeInvalidFormat, err, "%s", what)
}
