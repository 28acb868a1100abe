// Package placement assigns coordinates to the vnodes of an ordered layered
// view.
//
// The layer axis is fixed per layer: layer k occupies a band that starts
// after the bands of all earlier layers plus one LayerSpacing each, and is as
// deep as the deepest node of the layer. Nodes are centered in their band.
//
// The within-layer axis follows Brandes and Köpf, "Fast and Simple
// Horizontal Coordinate Assignment" (GD 2001), extended with node sizes and
// port offsets. Four candidate placements are computed, aligning each vnode
// with the median of its predecessors or successors while sweeping the
// layers in either in-layer direction. Candidates are aligned to the
// narrowest one and every vnode takes the mean of its two median candidate
// coordinates. A final left-to-right pass restores the spacing the average
// may have violated.
//
// All coordinates are canonical (see lgraph.Frame). [Place] writes
// VNode.Pos and, for real vnodes, the drawing position of the graph node.
package placement

import (
	"github.com/matzehuels/strata/pkg/errors"
	"github.com/matzehuels/strata/pkg/geo"
	"github.com/matzehuels/strata/pkg/graph/lgraph"
)

// Options configures [Place].
type Options struct {
	// NodeSpacing separates neighbouring vnodes within a layer.
	NodeSpacing float64
	// LayerSpacing separates neighbouring layer bands.
	LayerSpacing float64
	// EdgeSpacing separates two neighbouring dummies.
	EdgeSpacing float64
}

func (o Options) sep(v *lgraph.View, a, b int) float64 {
	if v.Nodes[a].IsDummy() && v.Nodes[b].IsDummy() {
		return o.EdgeSpacing
	}
	return o.NodeSpacing
}

// Place computes the canonical position of every vnode of v and the
// drawing position of every real node.
func Place(v *lgraph.View, opts Options) error {
	if len(v.Nodes) == 0 {
		return nil
	}
	w, err := newPlacer(v, opts).place()
	if err != nil {
		return err
	}

	start, extent := Bands(v, opts.LayerSpacing)
	for i := range v.Nodes {
		vn := &v.Nodes[i]
		vn.Pos = geo.Pt(start[vn.Layer]+(extent[vn.Layer]-vn.SizeL)/2, w[i])
	}

	for _, n := range v.Real {
		vn := &v.Nodes[n]
		node := v.Graph.Node(vn.Node)
		r := v.Frame.RectToDrawing(vn.Pos, vn.SizeL, vn.SizeW)
		node.Pos = geo.Pt(r.X, r.Y)
		node.Placed = true
	}
	return nil
}

// Bands returns the start and depth of every layer band along the layer
// axis.
func Bands(v *lgraph.View, layerSpacing float64) (start, extent []float64) {
	start = make([]float64, len(v.Layers))
	extent = make([]float64, len(v.Layers))
	for _, n := range v.Nodes {
		extent[n.Layer] = max(extent[n.Layer], n.SizeL)
	}
	for k := 1; k < len(v.Layers); k++ {
		start[k] = start[k-1] + extent[k-1] + layerSpacing
	}
	return start, extent
}

// Check verifies that neighbouring vnodes of a layer keep their spacing and
// that neighbouring non-empty layers are at least LayerSpacing apart.
func Check(v *lgraph.View, opts Options) error {
	const slack = 1e-6
	prevEnd, prevLayer := 0.0, -1
	for k, layer := range v.Layers {
		if len(layer) == 0 {
			continue
		}
		lo := v.Nodes[layer[0]].Pos.X
		hi := lo
		for i, n := range layer {
			vn := &v.Nodes[n]
			lo = min(lo, vn.Pos.X)
			hi = max(hi, vn.Pos.X+vn.SizeL)
			if i == 0 {
				continue
			}
			u := &v.Nodes[layer[i-1]]
			if need := u.Pos.Y + u.SizeW + opts.sep(v, layer[i-1], n); vn.Pos.Y < need-slack {
				return errors.Invariant("placement", "node spacing",
					"layer %d: vnode %d at %.2f overlaps its neighbour ending at %.2f",
					k, n, vn.Pos.Y, need)
			}
		}
		if prevLayer >= 0 && lo < prevEnd+opts.LayerSpacing-slack {
			return errors.Invariant("placement", "layer spacing",
				"layer %d starts at %.2f, layer %d ends at %.2f", k, lo, prevLayer, prevEnd)
		}
		prevEnd, prevLayer = hi, k
	}
	return nil
}
