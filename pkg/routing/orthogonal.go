package routing

import (
	"cmp"
	"slices"

	"github.com/matzehuels/strata/pkg/geo"
	"github.com/matzehuels/strata/pkg/graph"
)

// hyper groups the segments that leave one port at one within-layer
// coordinate. They share a single jog line across the gap.
type hyper struct {
	from   int
	port   graph.PortID
	wa     float64
	lo, hi float64
	pull   float64 // summed direction of the members
	slot   int
	segs   []int
}

type hyperKey struct {
	from int
	port graph.PortID
	wa   float64
}

func (h *hyper) overlaps(o *hyper) bool {
	return h.lo <= o.hi+geo.Epsilon && o.lo <= h.hi+geo.Epsilon
}

// exit returns the lead-out of segment end n: the port stub for real
// vnodes and the point leaving the band for dummies.
func (r *router) exit(n int, p graph.PortID, e graph.EdgeID) []geo.Point {
	if vn := &r.v.Nodes[n]; vn.IsDummy() {
		return []geo.Point{geo.Pt(r.bandEnd(vn.Layer), vn.Pos.Y)}
	}
	return r.exitLead(n, p, e)
}

func (r *router) entry(n int, p graph.PortID, e graph.EdgeID) []geo.Point {
	if vn := &r.v.Nodes[n]; vn.IsDummy() {
		return []geo.Point{geo.Pt(r.start[vn.Layer], vn.Pos.Y)}
	}
	return r.entryLead(n, p, e)
}

// orthogonal routes every non-self-loop edge with axis-parallel segments.
func (r *router) orthogonal() map[graph.EdgeID][]geo.Point {
	v := r.v
	exits := make([][]geo.Point, len(v.Segments))
	entries := make([][]geo.Point, len(v.Segments))
	gaps := make([][]int, max(len(v.Layers)-1, 0))
	for s := range v.Segments {
		seg := &v.Segments[s]
		exits[s] = r.exit(seg.From, seg.SrcPort, seg.Edge)
		entries[s] = r.entry(seg.To, seg.DstPort, seg.Edge)
		k := v.Nodes[seg.From].Layer
		gaps[k] = append(gaps[k], s)
	}

	jog := make([]float64, len(v.Segments))
	for k, segs := range gaps {
		r.assignSlots(k, segs, exits, entries, jog)
	}

	routes := make(map[graph.EdgeID][]geo.Point, len(v.Chains))
	for e, chain := range v.Chains {
		var pts []geo.Point
		for _, s := range chain {
			pts = append(pts, exits[s]...)
			wa, wb := exits[s][len(exits[s])-1].Y, entries[s][0].Y
			if !geo.Near(wa, wb) {
				pts = append(pts, geo.Pt(jog[s], wa), geo.Pt(jog[s], wb))
			}
			// a dummy's entry is followed by its exit in the next hop
			pts = append(pts, entries[s]...)
		}
		routes[e] = pts
	}
	return routes
}

// assignSlots places the jog line of every segment of gap k that changes
// its within-layer coordinate. Hyperedges heading to higher W take slots
// from the start of the gap in descending source order, those heading to
// lower W in ascending order, so that jogs of one direction never cross
// each other's horizontal runs.
func (r *router) assignSlots(k int, segs []int, exits, entries [][]geo.Point, jog []float64) {
	v := r.v
	byKey := make(map[hyperKey]*hyper)
	var all []*hyper
	for _, s := range segs {
		seg := &v.Segments[s]
		wa, wb := exits[s][len(exits[s])-1].Y, entries[s][0].Y
		if geo.Near(wa, wb) {
			continue
		}
		key := hyperKey{from: seg.From, port: seg.SrcPort, wa: wa}
		h, ok := byKey[key]
		if !ok {
			h = &hyper{from: seg.From, port: seg.SrcPort, wa: wa, lo: wa, hi: wa}
			byKey[key] = h
			all = append(all, h)
		}
		h.lo, h.hi = min(h.lo, wb), max(h.hi, wb)
		h.pull += wb - wa
		h.segs = append(h.segs, s)
	}
	if len(all) == 0 {
		return
	}

	var down, up []*hyper
	for _, h := range all {
		if h.pull > 0 {
			down = append(down, h)
		} else {
			up = append(up, h)
		}
	}
	slices.SortStableFunc(down, func(a, b *hyper) int {
		if c := cmp.Compare(b.wa, a.wa); c != 0 {
			return c
		}
		return cmp.Compare(a.hi, b.hi)
	})
	slices.SortStableFunc(up, func(a, b *hyper) int {
		if c := cmp.Compare(a.wa, b.wa); c != 0 {
			return c
		}
		return cmp.Compare(b.lo, a.lo)
	})

	slots := 0
	placed := make([]*hyper, 0, len(all))
	for _, h := range append(down, up...) {
		for _, q := range placed {
			if h.overlaps(q) {
				h.slot = max(h.slot, q.slot+1)
			}
		}
		placed = append(placed, h)
		slots = max(slots, h.slot+1)
	}
	r.maxSlots = max(r.maxSlots, slots)

	from := r.bandEnd(k)
	width := r.start[k+1] - from
	spacing := min(r.opts.EdgeSpacing, width/float64(slots+1))
	mid := from + width/2
	for _, h := range placed {
		l := mid + (float64(h.slot)-float64(slots-1)/2)*spacing
		for _, s := range h.segs {
			jog[s] = l
		}
	}
}
