package routing

import (
	"slices"

	"github.com/matzehuels/strata/pkg/geo"
	"github.com/matzehuels/strata/pkg/graph"
	"github.com/matzehuels/strata/pkg/graph/lgraph"
)

// polyline routes e straight through the centers of its dummies.
func (r *router) polyline(e graph.EdgeID) []geo.Point {
	v := r.v
	chain := v.Chains[e]
	first := &v.Segments[chain[0]]

	var pts []geo.Point
	if v.Ports[first.SrcPort].Side == lgraph.Front {
		pts = append(pts, r.port(first.From, first.SrcPort, e))
	} else {
		pts = append(pts, r.exitLead(first.From, first.SrcPort, e)...)
	}
	for _, s := range chain {
		seg := &v.Segments[s]
		if v.Nodes[seg.To].IsDummy() {
			pts = append(pts, v.Nodes[seg.To].Pos)
			continue
		}
		var entry []geo.Point
		if v.Ports[seg.DstPort].Side == lgraph.Back {
			entry = []geo.Point{r.port(seg.To, seg.DstPort, e)}
		} else {
			entry = r.entryLead(seg.To, seg.DstPort, e)
		}
		if d, ok := r.mid[e]; ok {
			k := v.Nodes[seg.From].Layer
			a, b := pts[len(pts)-1], entry[0]
			pts = append(pts, geo.Pt((r.bandEnd(k)+r.start[k+1])/2, (a.Y+b.Y)/2+d))
		}
		pts = append(pts, entry...)
	}
	return pts
}

type portPair struct {
	src, dst graph.PortID
}

// spreadParallel offsets edges that share both view ports. With ends set
// the edge ends move apart along the port side; otherwise single-hop
// edges get a mid-gap bend offset instead.
func (r *router) spreadParallel(ends bool) {
	v := r.v
	groups := make(map[portPair][]graph.EdgeID)
	var pairs []portPair
	for e := range v.Chains {
		sp, dp := v.Graph.ViewPorts(e)
		key := portPair{sp, dp}
		if _, ok := groups[key]; !ok {
			pairs = append(pairs, key)
		}
		groups[key] = append(groups[key], e)
	}

	for _, key := range pairs {
		edges := groups[key]
		k := len(edges)
		if k < 2 {
			continue
		}
		slices.Sort(edges)
		center := float64(k-1) / 2
		if ends {
			room := min(r.room(key.src), r.room(key.dst))
			// k edges split 2*room into k+1 gaps so the outer ends stay
			// off the node corners
			inc := min(r.opts.EdgeSpacing, 2*room/float64(k+1))
			for i, e := range edges {
				r.lateral[e] = (float64(i) - center) * inc
			}
			continue
		}
		for i, e := range edges {
			if len(v.Chains[e]) == 1 {
				r.mid[e] = (float64(i) - center) * r.opts.EdgeSpacing
			}
		}
	}
}

// room returns how far an edge end may move from port p along its side
// without leaving the node.
func (r *router) room(p graph.PortID) float64 {
	pg := r.v.Ports[p]
	vn := &r.v.Nodes[r.v.Real[r.v.Graph.NodeOf(p)]]
	switch pg.Side {
	case lgraph.Low, lgraph.High:
		return max(min(pg.Off.X, vn.SizeL-pg.Off.X), 0)
	}
	return max(min(pg.Off.Y, vn.SizeW-pg.Off.Y), 0)
}
