package layering

import (
	"math"
	"slices"

	"github.com/matzehuels/strata/pkg/errors"
	"github.com/matzehuels/strata/pkg/graph"
	"github.com/matzehuels/strata/pkg/graph/lgraph"
)

// The heuristic is tried for every upper bound on width and compensator in
// these ranges; the narrowest layering wins.
var (
	upperBoundRange  = [2]int{1, 4}
	compensatorRange = [2]int{1, 2}
)

type minWidthState struct {
	order      []graph.NodeID // by descending out-degree
	successors [][]graph.NodeID
	indeg      []int
	outdeg     []int
	size       []float64 // normalized by the narrowest node
	avgSize    float64
	dummySize  float64
}

// minWidth builds layers bottom-up. A node is placed in the current layer
// once all of its successors lie in layers finished earlier. A new layer is
// started when the current one grows past the width bound and cannot shrink
// any further, or when the estimated width of the layers above does.
func minWidth(g *graph.Graph, opts Options) error {
	st := newMinWidthState(g, opts)

	var (
		best      [][]graph.NodeID
		bestWidth = math.Inf(1)
	)
	for ubw := upperBoundRange[0]; ubw <= upperBoundRange[1]; ubw++ {
		for c := compensatorRange[0]; c <= compensatorRange[1]; c++ {
			width, layers, err := st.layering(float64(ubw), float64(c))
			if err != nil {
				return err
			}
			if width < bestWidth || (width == bestWidth && len(layers) < len(best)) {
				bestWidth, best = width, layers
			}
		}
	}

	for i, layer := range best {
		for _, n := range layer {
			g.Node(n).Layer = len(best) - 1 - i
		}
	}
	return nil
}

func newMinWidthState(g *graph.Graph, opts Options) *minWidthState {
	n := g.NodeCount()
	st := &minWidthState{
		order:      make([]graph.NodeID, n),
		successors: make([][]graph.NodeID, n),
		indeg:      make([]int, n),
		outdeg:     make([]int, n),
		size:       make([]float64, n),
	}
	f := lgraph.Frame{Dir: opts.Direction}

	minSize := math.Inf(1)
	for i := range n {
		node := g.Node(graph.NodeID(i))
		_, w := f.Size(node.Width, node.Height)
		st.size[i] = w
		minSize = min(minSize, w)
	}
	minSize = max(1, minSize)

	total := 0.0
	for i := range n {
		id := graph.NodeID(i)
		st.order[i] = id
		st.size[i] /= minSize
		total += st.size[i]

		out := g.ViewOut(id)
		st.outdeg[i] = len(out)
		st.indeg[i] = len(g.ViewIn(id))
		for _, e := range out {
			_, d := g.ViewEnds(e)
			if !slices.Contains(st.successors[i], d) {
				st.successors[i] = append(st.successors[i], d)
			}
		}
	}
	st.avgSize = total / float64(n)
	st.dummySize = opts.EdgeSpacing / minSize

	slices.SortStableFunc(st.order, func(a, b graph.NodeID) int {
		return st.outdeg[b] - st.outdeg[a]
	})
	return st
}

// layering computes one bottom-up layering and its maximum width, counting
// estimated dummies.
func (st *minWidthState) layering(ubw, compensator float64) (float64, [][]graph.NodeID, error) {
	n := len(st.order)
	bound := ubw * st.avgSize

	unplaced := slices.Clone(st.order)
	placedBefore := make([]bool, n) // in a finished layer
	var (
		layers  [][]graph.NodeID
		current []graph.NodeID

		widthCurrent, widthUp float64
		maxWidth, realWidth   float64
		spanning, goingOut    float64
	)

	for len(unplaced) > 0 {
		idx := slices.IndexFunc(unplaced, func(node graph.NodeID) bool {
			for _, s := range st.successors[node] {
				if !placedBefore[s] {
					return false
				}
			}
			return true
		})

		var outDeg float64
		selected := graph.NodeID(-1)
		if idx >= 0 {
			selected = unplaced[idx]
			unplaced = slices.Delete(unplaced, idx, idx+1)
			current = append(current, selected)

			outDeg = float64(st.outdeg[selected])
			widthCurrent += st.size[selected] - outDeg*st.dummySize
			widthUp += float64(st.indeg[selected]) * st.dummySize
			goingOut += outDeg * st.dummySize
			realWidth += st.size[selected]
		} else if len(current) == 0 {
			return 0, nil, errors.Invariant("layering", "acyclic",
				"%d nodes cannot be placed below their successors", len(unplaced))
		}

		goUp := selected < 0 || len(unplaced) == 0 ||
			(widthCurrent >= bound && st.size[selected] > outDeg*st.dummySize) ||
			widthUp >= compensator*bound
		if !goUp {
			continue
		}

		layers = append(layers, current)
		for _, node := range current {
			placedBefore[node] = true
		}
		current = nil

		spanning -= goingOut
		maxWidth = max(maxWidth, spanning*st.dummySize+realWidth)
		spanning += widthUp

		widthCurrent, widthUp = widthUp, 0
		goingOut, realWidth = 0, 0
	}
	return maxWidth, layers, nil
}
