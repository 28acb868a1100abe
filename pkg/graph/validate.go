package graph

import "github.com/matzehuels/strata/pkg/errors"

// Validate checks the graph for malformed input before layout.
//
// Names and endpoints are already checked when entities are added, so
// Validate looks at what can only be judged as a whole: in orthogonal mode
// every port with a declared side must lie on that side of its node's
// boundary, since orthogonal routes leave a port perpendicular to its side.
func (g *Graph) Validate(orthogonal bool) error {
	for i := range g.ports {
		p := &g.ports[i]
		if int(p.Node) < 0 || int(p.Node) >= len(g.nodes) {
			return errors.New(errors.ErrCodeInvalidInput, "port %q references unknown node %d", p.Name, p.Node)
		}
		if !orthogonal || p.Side == SideUndefined {
			continue
		}
		n := &g.nodes[p.Node]
		if !p.Side.OnBoundary(p.Offset, n.Width, n.Height) {
			return errors.New(errors.ErrCodePortSideConflict,
				"port %q of node %q: offset %v is not on its %s side (node is %gx%g)",
				p.Name, n.Name, p.Offset, p.Side, n.Width, n.Height)
		}
	}
	for i := range g.edges {
		e := &g.edges[i]
		if !g.validPort(e.Source) || !g.validPort(e.Target) {
			return errors.New(errors.ErrCodeUnknownPort, "edge %q references an unknown port", e.Name)
		}
	}
	return nil
}
