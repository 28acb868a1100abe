package layout

import (
	"github.com/matzehuels/strata/pkg/geo"
	"github.com/matzehuels/strata/pkg/graph"
	"github.com/matzehuels/strata/pkg/graph/lgraph"
)

// pack places laid-out components next to each other along the within-layer
// axis, in component order, NodeSpacing apart. Every component starts at
// layer coordinate zero so that equal layers line up.
func pack(subs []*graph.Graph, opts *Options) {
	f := lgraph.Frame{Dir: opts.Direction}
	offset := 0.0
	for _, sub := range subs {
		box, ok := canonicalBounds(sub, f)
		if !ok {
			continue
		}
		translate(sub, f.ToDrawing(geo.Pt(-box.X, offset-box.Y)))
		offset += box.H + opts.NodeSpacing
	}
}

// canonicalBounds returns the bounding box of g in the canonical frame: X and
// W along the layer axis, Y and H within the layer.
func canonicalBounds(g *graph.Graph, f lgraph.Frame) (geo.Rect, bool) {
	var box geo.Rect
	ok := false
	add := func(r geo.Rect) {
		if !ok {
			box, ok = r, true
			return
		}
		box = box.Union(r)
	}
	for i := range g.NodeCount() {
		n := g.Node(graph.NodeID(i))
		origin := f.RectToCanonical(n.Rect())
		sizeL, sizeW := f.Size(n.Width, n.Height)
		add(geo.Rect{X: origin.X, Y: origin.Y, W: sizeL, H: sizeW})
	}
	for i := range g.EdgeCount() {
		for _, p := range route(g.Edge(graph.EdgeID(i))) {
			c := f.ToCanonical(p)
			add(geo.Rect{X: c.X, Y: c.Y})
		}
	}
	return box, ok
}
