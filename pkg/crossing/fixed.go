package crossing

import (
	"cmp"
	"slices"

	"github.com/matzehuels/strata/pkg/geo"
	"github.com/matzehuels/strata/pkg/graph"
	"github.com/matzehuels/strata/pkg/graph/lgraph"
)

// Hints writes VNode.Hint for fixed ordering.
//
// When every real node carries a position, a real vnode's hint is the W
// coordinate of its center and a dummy's hint is the W coordinate where its
// edge's route crosses the center line of the dummy's layer. Layer center
// lines are recovered from node extents and layerSpacing, anchored on the
// first real node. Without positions, real vnodes use their given Order and
// dummies interpolate between the hints of their edge's ends.
func Hints(v *lgraph.View, layerSpacing float64) {
	placed := len(v.Real) > 0
	for _, n := range v.Real {
		placed = placed && v.Graph.Node(v.Nodes[n].Node).Placed
	}
	if placed {
		positionHints(v, layerSpacing)
		return
	}

	for _, layer := range v.Layers {
		for i, n := range layer {
			vn := &v.Nodes[n]
			if vn.IsDummy() {
				continue
			}
			vn.Hint = float64(i)
			if o := v.Graph.Node(vn.Node).Order; o >= 0 {
				vn.Hint = float64(o)
			}
		}
	}
	for _, chain := range v.Chains {
		first, last := v.Segments[chain[0]], v.Segments[chain[len(chain)-1]]
		src, dst := &v.Nodes[first.From], &v.Nodes[last.To]
		span := float64(dst.Layer - src.Layer)
		for _, s := range chain[1:] {
			d := &v.Nodes[v.Segments[s].From]
			t := float64(d.Layer-src.Layer) / span
			d.Hint = src.Hint + t*(dst.Hint-src.Hint)
		}
	}
}

func positionHints(v *lgraph.View, layerSpacing float64) {
	g, f := v.Graph, v.Frame

	extent := make([]float64, len(v.Layers))
	for _, n := range v.Real {
		vn := &v.Nodes[n]
		extent[vn.Layer] = max(extent[vn.Layer], vn.SizeL)
	}
	start := make([]float64, len(v.Layers))
	for k := 1; k < len(v.Layers); k++ {
		start[k] = start[k-1] + extent[k-1] + layerSpacing
	}

	var anchor float64
	for i, n := range v.Real {
		vn := &v.Nodes[n]
		origin := f.RectToCanonical(g.Node(vn.Node).Rect())
		vn.Hint = origin.Y + vn.SizeW/2
		if i == 0 {
			anchor = origin.X - start[vn.Layer] - (extent[vn.Layer]-vn.SizeL)/2
		}
	}

	for e, chain := range v.Chains {
		if len(chain) < 2 {
			continue
		}
		route := canonicalRoute(g, f, e)
		for _, s := range chain[1:] {
			d := &v.Nodes[v.Segments[s].From]
			center := anchor + start[d.Layer] + extent[d.Layer]/2
			d.Hint = crossAt(route, center)
		}
	}
}

// canonicalRoute returns the drawn route of e in canonical coordinates,
// oriented along the layout flow.
func canonicalRoute(g *graph.Graph, f lgraph.Frame, e graph.EdgeID) []geo.Point {
	edge := g.Edge(e)
	ends := func(p graph.PortID) geo.Point {
		port := g.Port(p)
		return f.ToCanonical(g.Node(port.Node).Pos.Add(port.Offset))
	}

	route := make([]geo.Point, 0, len(edge.Bends)+2)
	route = append(route, ends(edge.Source))
	for _, b := range edge.Bends {
		route = append(route, f.ToCanonical(b))
	}
	route = append(route, ends(edge.Target))
	if edge.Reversed {
		slices.Reverse(route)
	}
	return route
}

// crossAt returns the W coordinate where route first reaches L = l. Routes
// that never reach it are interpolated between their ends.
func crossAt(route []geo.Point, l float64) float64 {
	for i := 0; i+1 < len(route); i++ {
		a, b := route[i], route[i+1]
		lo, hi := min(a.X, b.X), max(a.X, b.X)
		if l < lo-geo.Epsilon || l > hi+geo.Epsilon {
			continue
		}
		if hi-lo < geo.Epsilon {
			return a.Y
		}
		return a.Y + (l-a.X)/(b.X-a.X)*(b.Y-a.Y)
	}
	a, b := route[0], route[len(route)-1]
	if geo.Near(a.X, b.X) {
		return (a.Y + b.Y) / 2
	}
	return a.Y + (l-a.X)/(b.X-a.X)*(b.Y-a.Y)
}

func sortByHint(v *lgraph.View) {
	for _, layer := range v.Layers {
		slices.SortStableFunc(layer, func(a, b int) int {
			return cmp.Compare(v.Nodes[a].Hint, v.Nodes[b].Hint)
		})
	}
	v.Reindex()
}
