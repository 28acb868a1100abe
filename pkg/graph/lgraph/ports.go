package lgraph

import (
	"github.com/matzehuels/strata/pkg/geo"
	"github.com/matzehuels/strata/pkg/graph"
)

// PreparePorts chooses a side and an offset for every port declared with
// [graph.SideUndefined], including implicit ports. Ports mostly used as
// layout-direction sources go on the front side, the rest on the back side.
// Ports sharing a side of one node are spread evenly along it in port order.
//
// PreparePorts must run after cycle breaking, since the choice depends on
// which way each edge points in the layout.
func PreparePorts(g *graph.Graph, f Frame) {
	outs := make([]int, g.PortCount())
	ins := make([]int, g.PortCount())
	for i := range g.EdgeCount() {
		sp, dp := g.ViewPorts(graph.EdgeID(i))
		outs[sp]++
		ins[dp]++
	}

	for n := range g.NodeCount() {
		node := g.Node(graph.NodeID(n))
		sizeL, sizeW := f.Size(node.Width, node.Height)

		var front, back []graph.PortID
		for _, p := range node.Ports {
			if g.Port(p).Side != graph.SideUndefined {
				continue
			}
			if outs[p] >= ins[p] {
				front = append(front, p)
			} else {
				back = append(back, p)
			}
		}
		place := func(ports []graph.PortID, side CSide, l float64) {
			for i, p := range ports {
				w := sizeW * float64(i+1) / float64(len(ports)+1)
				port := g.Port(p)
				port.Side = f.DrawingSide(side)
				port.Free = true
				port.Offset = f.LocalOffset(geo.Pt(l, w), node.Width, node.Height)
			}
		}
		place(front, Front, sizeL)
		place(back, Back, 0)
	}
}
