// Package routing computes the bend points of every edge of a placed
// layered view and collapses them onto the original graph edges.
//
// Routes are built in the canonical frame in layout direction, one chain of
// segments per edge, and written to [graph.Edge] in drawing coordinates and
// original direction: reversed edges get their points reversed, so a route
// always runs from the edge's source port to its target port.
//
// # Modes
//
// [Orthogonal] routes use only segments parallel to the axes. A segment
// leaves its source band at the port's within-layer coordinate and enters
// the next band at the target's; when the two differ it jogs once inside the
// layer gap. Segments from one port share a jog line, and jog lines whose
// spans overlap are given distinct slots across the gap.
//
// [Polyline] routes run straight from port to port through the centers of
// the dummies of long edges.
//
// In both modes ports facing away from the flow get a short stub out of the
// node, parallel edges between the same pair of ports are spread laterally,
// and self-loops detour around their node at a clearance that grows with
// each loop on the same node.
package routing

import (
	"fmt"
	"slices"

	"github.com/matzehuels/strata/pkg/errors"
	"github.com/matzehuels/strata/pkg/geo"
	"github.com/matzehuels/strata/pkg/graph"
	"github.com/matzehuels/strata/pkg/graph/lgraph"
	"github.com/matzehuels/strata/pkg/placement"
)

// Mode selects the routing style.
type Mode string

const (
	Orthogonal Mode = "orthogonal"
	Polyline   Mode = "polyline"
)

// ParseMode validates a routing mode name. The empty string is Orthogonal.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "":
		return Orthogonal, nil
	case Orthogonal, Polyline:
		return Mode(s), nil
	}
	return "", errors.New(errors.ErrCodeInvalidOptions, "unknown routing mode %q", s)
}

// Options configures [Route].
type Options struct {
	Mode         Mode
	NodeSpacing  float64
	LayerSpacing float64
	EdgeSpacing  float64
}

// Stats reports what [Route] did.
type Stats struct {
	Edges     int
	Bends     int
	SelfLoops int
	// Slots is the largest number of jog slots used in one layer gap.
	Slots int
	// Perturbed counts bend points moved out of a node by the clearance
	// pass.
	Perturbed int
}

// router carries the geometry shared by all routes of one view.
type router struct {
	v      *lgraph.View
	opts   Options
	start  []float64 // band start per layer
	extent []float64 // band depth per layer
	stub   float64
	// lateral holds the offset of each edge's ends along their port side.
	lateral map[graph.EdgeID]float64
	// mid holds the offset of the mid-gap bend of parallel polylines.
	mid      map[graph.EdgeID]float64
	maxSlots int
}

// Route computes routes for all edges of the graph underlying v, including
// self-loops, and stores them on the graph edges.
func Route(v *lgraph.View, opts Options) (Stats, error) {
	start, extent := placement.Bands(v, opts.LayerSpacing)
	r := &router{
		v:       v,
		opts:    opts,
		start:   start,
		extent:  extent,
		stub:    min(opts.EdgeSpacing, opts.NodeSpacing/2, opts.LayerSpacing/2),
		lateral: make(map[graph.EdgeID]float64),
		mid:     make(map[graph.EdgeID]float64),
	}

	routes := make(map[graph.EdgeID][]geo.Point, len(v.Chains)+len(v.SelfLoops))
	switch opts.Mode {
	case Polyline:
		r.spreadParallel(false)
		for e := range v.Chains {
			routes[e] = r.polyline(e)
		}
	default:
		r.spreadParallel(true)
		for e, pts := range r.orthogonal() {
			routes[e] = pts
		}
	}
	for e, pts := range r.selfLoops() {
		routes[e] = pts
	}

	stats := Stats{Edges: len(routes), SelfLoops: len(v.SelfLoops), Slots: r.maxSlots}
	edges := make([]graph.EdgeID, 0, len(routes))
	for e := range routes {
		edges = append(edges, e)
	}
	slices.Sort(edges)
	for _, e := range edges {
		pts, moved := r.clear(routes[e])
		stats.Perturbed += moved
		r.collapse(e, pts)
		stats.Bends += len(v.Graph.Edge(e).Bends)
	}
	return stats, nil
}

// collapse writes a canonical view-direction route onto its graph edge.
func (r *router) collapse(e graph.EdgeID, pts []geo.Point) {
	edge := r.v.Graph.Edge(e)
	out := make([]geo.Point, len(pts))
	for i, p := range pts {
		out[i] = r.v.Frame.ToDrawing(p)
	}
	out = geo.Simplify(out)
	if len(out) == 1 {
		out = append(out, out[0])
	}
	if edge.Reversed {
		slices.Reverse(out)
	}
	edge.Start = out[0]
	edge.End = out[len(out)-1]
	edge.Bends = slices.Clone(out[1 : len(out)-1])
	edge.Routed = true
}

// port returns the canonical attachment point of port p on real vnode n,
// moved along its side by the edge's lateral offset.
func (r *router) port(n int, p graph.PortID, e graph.EdgeID) geo.Point {
	pt := r.v.PortAbs(n, p)
	d := r.lateral[e]
	switch r.v.Ports[p].Side {
	case lgraph.Low, lgraph.High:
		pt.X += d
	default:
		pt.Y += d
	}
	return pt
}

func (r *router) bandEnd(k int) float64 { return r.start[k] + r.extent[k] }

// box returns the canonical rectangle of vnode n.
func (r *router) box(n int) geo.Rect {
	vn := &r.v.Nodes[n]
	return geo.Rect{X: vn.Pos.X, Y: vn.Pos.Y, W: vn.SizeL, H: vn.SizeW}
}

// exitLead returns the points from the source port of a segment to the
// point where the route leaves the source band. Ports not facing the next
// layer step out of the node first.
func (r *router) exitLead(n int, p graph.PortID, e graph.EdgeID) []geo.Point {
	P := r.port(n, p, e)
	b := r.box(n)
	end := r.bandEnd(r.v.Nodes[n].Layer)
	switch r.v.Ports[p].Side {
	case lgraph.Low:
		w := b.Y - r.stub
		return []geo.Point{P, geo.Pt(P.X, w), geo.Pt(end, w)}
	case lgraph.High:
		w := b.Bottom() + r.stub
		return []geo.Point{P, geo.Pt(P.X, w), geo.Pt(end, w)}
	case lgraph.Back:
		w := r.around(b, P.Y)
		l := P.X - r.stub
		return []geo.Point{P, geo.Pt(l, P.Y), geo.Pt(l, w), geo.Pt(end, w)}
	}
	return []geo.Point{P, geo.Pt(end, P.Y)}
}

// entryLead returns the points from where the route enters the target band
// to the target port of a segment.
func (r *router) entryLead(n int, p graph.PortID, e graph.EdgeID) []geo.Point {
	P := r.port(n, p, e)
	b := r.box(n)
	begin := r.start[r.v.Nodes[n].Layer]
	switch r.v.Ports[p].Side {
	case lgraph.Low:
		w := b.Y - r.stub
		return []geo.Point{geo.Pt(begin, w), geo.Pt(P.X, w), P}
	case lgraph.High:
		w := b.Bottom() + r.stub
		return []geo.Point{geo.Pt(begin, w), geo.Pt(P.X, w), P}
	case lgraph.Front:
		w := r.around(b, P.Y)
		l := P.X + r.stub
		return []geo.Point{geo.Pt(begin, w), geo.Pt(l, w), geo.Pt(l, P.Y), P}
	}
	return []geo.Point{geo.Pt(begin, P.Y), P}
}

// around picks the within-layer coordinate just outside box b on the side
// nearer to w.
func (r *router) around(b geo.Rect, w float64) float64 {
	if w-b.Y <= b.Bottom()-w {
		return b.Y - r.stub
	}
	return b.Bottom() + r.stub
}

// Check verifies that every routed edge of g has its bends outside all node
// rectangles.
func Check(g *graph.Graph) error {
	for i := range g.EdgeCount() {
		e := g.Edge(graph.EdgeID(i))
		for _, b := range e.Bends {
			for j := range g.NodeCount() {
				n := g.Node(graph.NodeID(j))
				if n.Rect().Contains(b) {
					return errors.Invariant("routing", "clearance",
						"edge %q bends at %s inside node %q", e.Name, b, n.Name)
				}
			}
		}
		if !e.Routed {
			return errors.Invariant("routing", "complete", "edge %q has no route", e.Name)
		}
	}
	return nil
}

func (s Stats) String() string {
	return fmt.Sprintf("%d edges, %d bends, %d self-loops, %d slots, %d perturbed",
		s.Edges, s.Bends, s.SelfLoops, s.Slots, s.Perturbed)
}
