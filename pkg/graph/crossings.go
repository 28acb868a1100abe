package graph

import "slices"

// Segment endpoints are compared by position keys: small integers that order
// the attachment points of one layer from left to right. Two segments
// (u1,v1) and (u2,v2) between the same pair of layers cross if and only if
//
//	key(u1) < key(u2) AND key(v1) > key(v2)
//
// Segments sharing an endpoint key never cross.

// Pair holds the upper and lower endpoint keys of one segment.
type Pair struct {
	Upper int
	Lower int
}

// CrossingWorkspace provides reusable buffers for crossing counts so that
// repeated evaluations during a sweep do not allocate. The zero value is
// ready to use. A workspace is not safe for concurrent use; each goroutine
// should have its own.
type CrossingWorkspace struct {
	ft    []int
	pairs []Pair
}

// CountCrossings counts pairwise crossings among the given segments using a
// Fenwick tree (binary indexed tree) in O(E log V). The pairs slice is sorted
// in place. A nil workspace allocates a temporary one.
func CountCrossings(pairs []Pair, ws *CrossingWorkspace) int {
	if len(pairs) < 2 {
		return 0
	}
	if ws == nil {
		ws = &CrossingWorkspace{}
	}

	// Sort by upper key, then by lower key, so segments sharing an upper
	// endpoint never count against each other.
	slices.SortFunc(pairs, func(a, b Pair) int {
		if a.Upper != b.Upper {
			return a.Upper - b.Upper
		}
		return a.Lower - b.Lower
	})

	maxLower := 0
	for _, p := range pairs {
		maxLower = max(maxLower, p.Lower)
	}
	size := maxLower + 2
	if cap(ws.ft) < size {
		ws.ft = make([]int, size)
	}
	ft := ws.ft[:size]
	clear(ft)

	crossings, total := 0, 0
	for _, p := range pairs {
		// Query: count segments seen so far with lower <= p.Lower
		lessOrEqual := 0
		for q := p.Lower + 1; q > 0; q -= q & (-q) {
			lessOrEqual += ft[q]
		}
		// Crossings = segments seen so far with lower > p.Lower
		crossings += total - lessOrEqual

		total++
		for idx := p.Lower + 1; idx < size; idx += idx & (-idx) {
			ft[idx]++
		}
	}
	return crossings
}

// Pairs returns the workspace's scratch slice, emptied, for building input to
// [CountCrossings] without allocating.
func (ws *CrossingWorkspace) Pairs() []Pair {
	return ws.pairs[:0]
}

// Keep stores buf so its capacity is reused by the next call to Pairs.
func (ws *CrossingWorkspace) Keep(buf []Pair) {
	ws.pairs = buf
}

// CountPairCrossings counts crossings between the segments of two adjacent
// nodes, left and right, given the keys of their neighbours in one adjacent
// layer. A neighbour of left positioned after a neighbour of right produces
// a crossing. Swapping the arguments gives the count after swapping the two
// nodes.
func CountPairCrossings(left, right []int) int {
	crossings := 0
	for _, l := range left {
		for _, r := range right {
			if l > r {
				crossings++
			}
		}
	}
	return crossings
}
