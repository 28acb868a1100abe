package placement

import (
	"cmp"
	"math"
	"slices"

	"github.com/matzehuels/strata/pkg/errors"
	"github.com/matzehuels/strata/pkg/graph"
	"github.com/matzehuels/strata/pkg/graph/lgraph"
)

// variant is one of the four sweeps. Succ aligns vnodes with their
// successors and visits layers from last to first; mirror visits each layer
// from its high end and measures coordinates from there.
type variant struct {
	succ   bool
	mirror bool
}

var variants = [4]variant{{false, false}, {false, true}, {true, false}, {true, true}}

type link struct {
	node int
	seg  int
}

type placer struct {
	v      *lgraph.View
	opts   Options
	marked []bool // type-1 conflicts, by segment
}

func newPlacer(v *lgraph.View, opts Options) *placer {
	p := &placer{v: v, opts: opts, marked: make([]bool, len(v.Segments))}
	p.markConflicts()
	return p
}

// inner reports whether segment s joins two dummies.
func (p *placer) inner(s int) bool {
	seg := &p.v.Segments[s]
	return p.v.Nodes[seg.From].IsDummy() && p.v.Nodes[seg.To].IsDummy()
}

// markConflicts marks every non-inner segment that crosses an inner segment
// between the same two layers, so that long edges stay straight.
func (p *placer) markConflicts() {
	v := p.v
	for k := 0; k+1 < len(v.Layers); k++ {
		var inner, other []int
		for _, n := range v.Layers[k] {
			for _, s := range v.Out[n] {
				if p.inner(s) {
					inner = append(inner, s)
				} else {
					other = append(other, s)
				}
			}
		}
		for _, s := range other {
			a := &v.Segments[s]
			for _, t := range inner {
				b := &v.Segments[t]
				du := v.Nodes[a.From].Order - v.Nodes[b.From].Order
				dl := v.Nodes[a.To].Order - v.Nodes[b.To].Order
				if (du < 0 && dl > 0) || (du > 0 && dl < 0) {
					p.marked[s] = true
					break
				}
			}
		}
	}
}

func (p *placer) pos(n int, mirror bool) int {
	o := p.v.Nodes[n].Order
	if mirror {
		return len(p.v.Layers[p.v.Nodes[n].Layer]) - 1 - o
	}
	return o
}

// portOff returns the offset of port along the within-layer axis of vnode n,
// measured from the side the variant starts from.
func (p *placer) portOff(n int, port graph.PortID, mirror bool) float64 {
	w := p.v.PortW(port)
	if mirror {
		return p.v.Nodes[n].SizeW - w
	}
	return w
}

// end returns the port offset of segment s at its end on vnode n.
func (p *placer) end(s, n int, mirror bool) float64 {
	seg := &p.v.Segments[s]
	if seg.From == n {
		return p.portOff(n, seg.SrcPort, mirror)
	}
	return p.portOff(n, seg.DstPort, mirror)
}

// links lists the neighbours n is aligned against, ordered by position.
func (p *placer) links(n int, vr variant) []link {
	var ls []link
	if vr.succ {
		for _, s := range p.v.Out[n] {
			ls = append(ls, link{node: p.v.Segments[s].To, seg: s})
		}
	} else {
		for _, s := range p.v.In[n] {
			ls = append(ls, link{node: p.v.Segments[s].From, seg: s})
		}
	}
	slices.SortStableFunc(ls, func(a, b link) int {
		if c := cmp.Compare(p.pos(a.node, vr.mirror), p.pos(b.node, vr.mirror)); c != 0 {
			return c
		}
		return cmp.Compare(p.end(a.seg, a.node, vr.mirror), p.end(b.seg, b.node, vr.mirror))
	})
	return ls
}

// layer returns layer k in the variant's visiting order.
func (p *placer) layer(k int, mirror bool) []int {
	l := p.v.Layers[k]
	if !mirror {
		return l
	}
	r := slices.Clone(l)
	slices.Reverse(r)
	return r
}

// place runs the four variants and balances them. It returns the low-side
// W coordinate of every vnode.
func (p *placer) place() ([]float64, error) {
	n := len(p.v.Nodes)
	var candidates [4][]float64
	for i, vr := range variants {
		w, err := p.run(vr)
		if err != nil {
			return nil, err
		}
		candidates[i] = w
	}

	lo := make([]float64, 4)
	hi := make([]float64, 4)
	narrowest := 0
	for i, w := range candidates {
		lo[i], hi[i] = math.Inf(1), math.Inf(-1)
		for j, x := range w {
			lo[i] = min(lo[i], x)
			hi[i] = max(hi[i], x+p.v.Nodes[j].SizeW)
		}
		if hi[i]-lo[i] < hi[narrowest]-lo[narrowest] {
			narrowest = i
		}
	}
	for i, w := range candidates {
		delta := lo[narrowest] - lo[i]
		if variants[i].mirror {
			delta = hi[narrowest] - hi[i]
		}
		for j := range w {
			w[j] += delta
		}
	}

	res := make([]float64, n)
	var vals [4]float64
	for j := range n {
		for i := range candidates {
			vals[i] = candidates[i][j]
		}
		slices.Sort(vals[:])
		res[j] = (vals[1] + vals[2]) / 2
	}

	p.compact(res)
	return res, nil
}

// compact pushes vnodes towards the high side until every layer honours
// its spacing, then moves the drawing to start at 0.
func (p *placer) compact(w []float64) {
	v := p.v
	low := math.Inf(1)
	for _, layer := range v.Layers {
		for i := 1; i < len(layer); i++ {
			u, x := layer[i-1], layer[i]
			w[x] = max(w[x], w[u]+v.Nodes[u].SizeW+p.opts.sep(v, u, x))
		}
		for _, n := range layer {
			low = min(low, w[n])
		}
	}
	for i := range w {
		w[i] -= low
	}
}

// run computes one candidate placement.
func (p *placer) run(vr variant) ([]float64, error) {
	v := p.v
	n := len(v.Nodes)
	root := make([]int, n)
	align := make([]int, n)
	via := make([]int, n) // segment joining a vnode to its block predecessor
	for i := range n {
		root[i], align[i], via[i] = i, i, -1
	}

	layers := make([]int, len(v.Layers))
	for k := range layers {
		layers[k] = k
	}
	if vr.succ {
		slices.Reverse(layers)
	}

	for _, k := range layers {
		r := -1
		for _, x := range p.layer(k, vr.mirror) {
			ls := p.links(x, vr)
			d := len(ls)
			for m := (d - 1) / 2; m <= d/2 && d > 0; m++ {
				if align[x] != x {
					break
				}
				u := ls[m]
				if pu := p.pos(u.node, vr.mirror); !p.marked[u.seg] && r < pu {
					align[u.node] = x
					root[x] = root[u.node]
					align[x] = root[x]
					via[x] = u.seg
					r = pu
				}
			}
		}
	}

	shift := p.innerShifts(root, align, via, vr)
	return p.compactBlocks(root, shift, vr)
}

// innerShifts offsets the vnodes of each block against each other so that
// the segments inside the block run straight between their ports.
func (p *placer) innerShifts(root, align, via []int, vr variant) []float64 {
	v := p.v
	shift := make([]float64, len(v.Nodes))
	for r := range v.Nodes {
		if root[r] != r {
			continue
		}
		above := 0.0
		for cur, next := r, align[r]; next != r; cur, next = next, align[next] {
			s := via[next]
			shift[next] = shift[cur] + p.end(s, cur, vr.mirror) - p.end(s, next, vr.mirror)
			above = max(above, -shift[next])
		}
		for cur := r; ; {
			shift[cur] += above
			cur = align[cur]
			if cur == r {
				break
			}
		}
	}
	return shift
}

// compactBlocks places blocks as far towards the variant's start side as
// the separation constraints between neighbouring vnodes allow, by a
// longest path over the block graph.
func (p *placer) compactBlocks(root []int, shift []float64, vr variant) ([]float64, error) {
	v := p.v
	type arc struct {
		to  int
		sep float64
	}
	arcs := make(map[int][]arc)
	indeg := make([]int, len(v.Nodes))
	for k := range v.Layers {
		layer := p.layer(k, vr.mirror)
		for i := 1; i < len(layer); i++ {
			u, w := layer[i-1], layer[i]
			sep := shift[u] + v.Nodes[u].SizeW + p.opts.sep(v, u, w) - shift[w]
			arcs[root[u]] = append(arcs[root[u]], arc{to: root[w], sep: sep})
			indeg[root[w]]++
		}
	}

	x := make([]float64, len(v.Nodes))
	var queue []int
	roots := 0
	for i := range v.Nodes {
		if root[i] == i {
			roots++
			if indeg[i] == 0 {
				queue = append(queue, i)
			}
		}
	}
	done := 0
	for len(queue) > 0 {
		b := queue[0]
		queue = queue[1:]
		done++
		for _, a := range arcs[b] {
			x[a.to] = max(x[a.to], x[b]+a.sep)
			indeg[a.to]--
			if indeg[a.to] == 0 {
				queue = append(queue, a.to)
			}
		}
	}
	if done < roots {
		return nil, errors.Invariant("placement", "block order", "%d blocks are ordered cyclically", roots-done)
	}

	w := make([]float64, len(v.Nodes))
	for i := range v.Nodes {
		xi := x[root[i]] + shift[i]
		if vr.mirror {
			xi = -xi - v.Nodes[i].SizeW
		}
		w[i] = xi
	}
	return w, nil
}
