package crossing

import (
	"cmp"
	"context"
	"math/rand/v2"
	"slices"

	"github.com/matzehuels/strata/pkg/graph"
	"github.com/matzehuels/strata/pkg/graph/lgraph"
)

// minimizer holds the position keys of one view. Each vnode owns a run of
// consecutive keys in its layer, one per port (or one for dummies and
// port-less nodes); base is the first key of that run.
type minimizer struct {
	v     *lgraph.View
	rank  []int // by port
	slots []int // by vnode
	base  []int // by vnode
	ws    graph.CrossingWorkspace
}

func newMinimizer(v *lgraph.View) *minimizer {
	m := &minimizer{
		v:     v,
		rank:  make([]int, len(v.Ports)),
		slots: make([]int, len(v.Nodes)),
		base:  make([]int, len(v.Nodes)),
	}
	m.rankPorts()
	for k := range v.Layers {
		m.reindex(k)
	}
	return m
}

func (m *minimizer) rankPorts() {
	for n := range m.v.Nodes {
		m.slots[n] = 1
		ranks := m.v.PortRanks(n)
		if len(ranks) == 0 {
			continue
		}
		m.slots[n] = len(ranks)
		for p, r := range ranks {
			m.rank[p] = r
		}
	}
}

// reindex refreshes Order and keys of layer k after it was permuted.
func (m *minimizer) reindex(k int) {
	key := 0
	for i, n := range m.v.Layers[k] {
		m.v.Nodes[n].Order = i
		m.base[n] = key
		key += m.slots[n]
	}
}

func (m *minimizer) key(n int, p graph.PortID) int {
	if p == graph.NoPort {
		return m.base[n]
	}
	return m.base[n] + m.rank[p]
}

// neighbours returns the keys of the far ends of n's segments towards the
// previous layer (up) or the next layer.
func (m *minimizer) neighbours(n int, up bool) []int {
	var keys []int
	if up {
		for _, s := range m.v.In[n] {
			seg := &m.v.Segments[s]
			keys = append(keys, m.key(seg.From, seg.SrcPort))
		}
		return keys
	}
	for _, s := range m.v.Out[n] {
		seg := &m.v.Segments[s]
		keys = append(keys, m.key(seg.To, seg.DstPort))
	}
	return keys
}

// between counts crossings of the segments from layer k to layer k+1.
func (m *minimizer) between(k int) int {
	pairs := m.ws.Pairs()
	for _, n := range m.v.Layers[k] {
		for _, s := range m.v.Out[n] {
			seg := &m.v.Segments[s]
			pairs = append(pairs, graph.Pair{
				Upper: m.key(seg.From, seg.SrcPort),
				Lower: m.key(seg.To, seg.DstPort),
			})
		}
	}
	c := graph.CountCrossings(pairs, &m.ws)
	m.ws.Keep(pairs)
	return c
}

func (m *minimizer) total() int {
	sum := 0
	for k := 0; k+1 < len(m.v.Layers); k++ {
		sum += m.between(k)
	}
	return sum
}

// initialOrder rebuilds every layer by a depth-first walk along segments,
// starting from the vnodes of layer 0 in their current order. A vnode is
// appended to its layer when first reached.
func (m *minimizer) initialOrder() {
	v := m.v
	visited := make([]bool, len(v.Nodes))
	order := make([][]int, len(v.Layers))

	var visit func(n int)
	visit = func(n int) {
		visited[n] = true
		k := v.Nodes[n].Layer
		order[k] = append(order[k], n)
		for _, s := range v.Out[n] {
			if to := v.Segments[s].To; !visited[to] {
				visit(to)
			}
		}
	}
	for _, layer := range v.Layers {
		for _, n := range layer {
			if !visited[n] {
				visit(n)
			}
		}
	}

	for k := range v.Layers {
		copy(v.Layers[k], order[k])
		m.reindex(k)
	}
}

func (m *minimizer) shuffle(rng *rand.Rand) {
	for k, layer := range m.v.Layers {
		rng.Shuffle(len(layer), func(i, j int) { layer[i], layer[j] = layer[j], layer[i] })
		m.reindex(k)
	}
}

func (m *minimizer) snapshot() [][]int {
	s := make([][]int, len(m.v.Layers))
	for k, layer := range m.v.Layers {
		s[k] = slices.Clone(layer)
	}
	return s
}

func (m *minimizer) restore(s [][]int) {
	for k := range m.v.Layers {
		copy(m.v.Layers[k], s[k])
		m.reindex(k)
	}
}

// sweep runs up to iterations down/up sweep pairs starting from an ordering
// with the given crossing count, restores the best ordering seen and returns
// its crossing count and the number of sweeps made.
func (m *minimizer) sweep(ctx context.Context, crossings, iterations int) (int, int, error) {
	best, snap := crossings, m.snapshot()
	layers := len(m.v.Layers)
	sweeps := 0

	keep := func() {
		if c := m.total(); c < best {
			best, snap = c, m.snapshot()
		}
	}

	if err := ctx.Err(); err != nil {
		return 0, 0, err
	}

	for it := 0; it < iterations && best > 0; it++ {
		changed := false
		for k := 1; k < layers; k++ {
			changed = m.reorder(k, true) || changed
		}
		changed = m.switchAll() || changed
		sweeps++
		keep()
		if best == 0 {
			break
		}

		for k := layers - 2; k >= 0; k-- {
			changed = m.reorder(k, false) || changed
		}
		changed = m.switchAll() || changed
		sweeps++
		keep()
		if !changed {
			break
		}
		if err := ctx.Err(); err != nil {
			return 0, sweeps, err
		}
	}

	m.restore(snap)
	return best, sweeps, nil
}

// median returns the median of keys; for an even count it is the mean of
// the two middle values.
func median(keys []int) float64 {
	slices.Sort(keys)
	mid := len(keys) / 2
	if len(keys)%2 == 1 {
		return float64(keys[mid])
	}
	return float64(keys[mid-1]+keys[mid]) / 2
}

// reorder sorts layer k by the median key of each vnode's neighbours in the
// previous (up) or next layer. Vnodes without such neighbours keep their
// slot; the others fill the remaining slots in median order.
func (m *minimizer) reorder(k int, up bool) bool {
	layer := m.v.Layers[k]
	medians := make(map[int]float64, len(layer))
	var movable []int
	for _, n := range layer {
		if keys := m.neighbours(n, up); len(keys) > 0 {
			medians[n] = median(keys)
			movable = append(movable, n)
		}
	}
	if len(movable) < 2 {
		return false
	}
	slices.SortStableFunc(movable, func(a, b int) int {
		return cmp.Compare(medians[a], medians[b])
	})

	changed := false
	next := 0
	for i, n := range layer {
		if _, ok := medians[n]; !ok {
			continue
		}
		if layer[i] != movable[next] {
			changed = true
		}
		layer[i] = movable[next]
		next++
	}
	m.reindex(k)
	return changed
}

func (m *minimizer) switchAll() bool {
	changed := false
	for k := range m.v.Layers {
		changed = m.switchLayer(k) || changed
	}
	return changed
}

// switchLayer swaps adjacent vnodes of layer k as long as a swap strictly
// reduces the crossings with both neighbour layers.
func (m *minimizer) switchLayer(k int) bool {
	layer := m.v.Layers[k]
	changed := false
	for {
		swapped := false
		for i := 0; i+1 < len(layer); i++ {
			u, w := layer[i], layer[i+1]
			before, after := 0, 0
			for _, up := range []bool{true, false} {
				ku, kw := m.neighbours(u, up), m.neighbours(w, up)
				before += graph.CountPairCrossings(ku, kw)
				after += graph.CountPairCrossings(kw, ku)
			}
			if after < before {
				layer[i], layer[i+1] = w, u
				swapped = true
			}
		}
		if !swapped {
			break
		}
		changed = true
	}
	if changed {
		m.reindex(k)
	}
	return changed
}
