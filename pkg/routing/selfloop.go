package routing

import (
	"math"

	"github.com/matzehuels/strata/pkg/geo"
	"github.com/matzehuels/strata/pkg/graph"
	"github.com/matzehuels/strata/pkg/graph/lgraph"
)

// selfLoops routes every self-loop clockwise around its node. The j-th loop
// of a node with k loops keeps a clearance of (j+1)·base from the node, with
// base small enough that the outermost loop stays within half the node and
// layer spacing.
func (r *router) selfLoops() map[graph.EdgeID][]geo.Point {
	v := r.v
	byNode := make(map[graph.NodeID][]graph.EdgeID)
	for _, e := range v.SelfLoops {
		n, _ := v.Graph.Ends(e)
		byNode[n] = append(byNode[n], e)
	}

	routes := make(map[graph.EdgeID][]geo.Point, len(v.SelfLoops))
	for n, loops := range byNode {
		k := float64(len(loops))
		base := min(r.opts.EdgeSpacing, min(r.opts.NodeSpacing, r.opts.LayerSpacing)/(2*(k+1)))
		vn := v.Real[n]
		for j, e := range loops {
			edge := v.Graph.Edge(e)
			routes[e] = r.loop(vn, edge.Source, edge.Target, base*float64(j+1))
		}
	}
	return routes
}

// loop walks the boundary of the box of vnode n grown by c, clockwise from
// the source port to the target port.
func (r *router) loop(n int, src, dst graph.PortID, c float64) []geo.Point {
	box := r.box(n).Grow(c)
	ps, pt := r.v.PortAbs(n, src), r.v.PortAbs(n, dst)
	os, ot := r.onBox(box, src, ps), r.onBox(box, dst, pt)
	ts, tt := perimeter(box, os), perimeter(box, ot)
	total := 2 * (box.W + box.H)
	if tt <= ts+geo.Epsilon {
		tt += total
	}

	pts := []geo.Point{ps, os}
	corners := [4]struct {
		t float64
		p geo.Point
	}{
		{box.W, geo.Pt(box.Right(), box.Y)},
		{box.W + box.H, geo.Pt(box.Right(), box.Bottom())},
		{2*box.W + box.H, geo.Pt(box.X, box.Bottom())},
		{total, geo.Pt(box.X, box.Y)},
	}
	for lap := 0.0; lap <= total; lap += total {
		for _, cr := range corners {
			if t := cr.t + lap; t > ts+geo.Epsilon && t < tt-geo.Epsilon {
				pts = append(pts, cr.p)
			}
		}
	}
	return append(pts, ot, pt)
}

// onBox projects port position p outwards onto the grown box.
func (r *router) onBox(box geo.Rect, port graph.PortID, p geo.Point) geo.Point {
	switch r.v.Ports[port].Side {
	case lgraph.Front:
		return geo.Pt(box.Right(), p.Y)
	case lgraph.Back:
		return geo.Pt(box.X, p.Y)
	case lgraph.Low:
		return geo.Pt(p.X, box.Y)
	}
	return geo.Pt(p.X, box.Bottom())
}

// perimeter returns the clockwise distance of boundary point p from the
// box's low-back corner, with L to the right and W downwards.
func perimeter(box geo.Rect, p geo.Point) float64 {
	switch {
	case geo.Near(p.Y, box.Y):
		return p.X - box.X
	case geo.Near(p.X, box.Right()):
		return box.W + p.Y - box.Y
	case geo.Near(p.Y, box.Bottom()):
		return box.W + box.H + box.Right() - p.X
	}
	return math.Mod(2*box.W+box.H+box.Bottom()-p.Y, 2*(box.W+box.H))
}
