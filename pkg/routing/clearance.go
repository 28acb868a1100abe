package routing

import (
	"github.com/matzehuels/strata/pkg/geo"
)

// clear pushes interior route points that ended up inside a node out along
// the within-layer axis. In orthogonal mode the neighbours that ran parallel
// to the layer axis with a moved point move along with it. It returns the
// route and the number of points moved.
func (r *router) clear(pts []geo.Point) ([]geo.Point, int) {
	moved := 0
	for i := 1; i+1 < len(pts); i++ {
		for _, n := range r.v.Real {
			box := r.box(n)
			if !box.Contains(pts[i]) {
				continue
			}
			old := pts[i].Y
			pts[i] = box.PushOutY(pts[i], r.stub)
			moved++
			if r.opts.Mode == Polyline {
				continue
			}
			for _, j := range [2]int{i - 1, i + 1} {
				if j > 0 && j+1 < len(pts) && geo.Near(pts[j].Y, old) {
					pts[j].Y = pts[i].Y
				}
			}
		}
	}
	return pts, moved
}
