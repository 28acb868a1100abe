// Package layout runs the layered layout pipeline on a graph.
//
// # Pipeline
//
// [Layout] validates the input, clamps degenerate node sizes and splits the
// graph into weakly connected components. Each component goes through the
// same stages:
//
//  1. cycle: break cycles by marking edges reversed
//  2. layering: assign every node to a layer
//  3. view: choose port sides and build the proper layered view with dummies
//  4. crossing: order the layers to reduce crossings
//  5. placement: assign coordinates
//  6. routing: compute edge routes and fold dummies back into bends
//
// Every stage is followed by a check of what it guarantees; a failed check
// is reported as an INVARIANT_VIOLATION naming the stage and no result is
// returned. Components are then packed side by side along the within-layer
// axis and the drawing is moved so that its bounding box starts at the
// origin.
//
// # Determinism
//
// The same graph and options always produce the same coordinates, whether or
// not components and restarts run in parallel. Laying out a result read back
// with io.ImportResult under [Options.FixedLayout] reproduces it.
package layout

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/strata/pkg/crossing"
	"github.com/matzehuels/strata/pkg/cycle"
	"github.com/matzehuels/strata/pkg/errors"
	"github.com/matzehuels/strata/pkg/geo"
	"github.com/matzehuels/strata/pkg/graph"
	"github.com/matzehuels/strata/pkg/graph/lgraph"
	"github.com/matzehuels/strata/pkg/layering"
	"github.com/matzehuels/strata/pkg/observability"
	"github.com/matzehuels/strata/pkg/placement"
	"github.com/matzehuels/strata/pkg/routing"
)

// Stage names, as reported to observability hooks and in Stats.Stages.
const (
	StageCycle     = "cycle"
	StageLayering  = "layering"
	StageView      = "view"
	StageCrossing  = "crossing"
	StagePlacement = "placement"
	StageRouting   = "routing"
)

// Layout computes a layered drawing of g. The graph itself is not modified;
// the drawing is returned as a [Result].
func Layout(ctx context.Context, g *graph.Graph, opts Options) (*Result, error) {
	start := time.Now()
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	observability.Layout().OnLayoutStart(ctx, g.NodeCount(), g.EdgeCount())

	res, err := run(ctx, g, &opts)
	observability.Layout().OnLayoutComplete(ctx, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	res.Stats.Duration = time.Since(start)
	opts.Logger.Debug("layout complete",
		"nodes", res.Stats.Nodes,
		"edges", res.Stats.Edges,
		"components", res.Stats.Components,
		"crossings", res.Stats.Crossings,
		"duration", res.Stats.Duration)
	return res, nil
}

func run(ctx context.Context, g *graph.Graph, opts *Options) (*Result, error) {
	if err := g.Validate(opts.Orthogonal()); err != nil {
		return nil, err
	}
	work := g.Clone()
	clampSizes(work, opts)

	var comps [][]graph.NodeID
	if opts.Separate() {
		comps = work.Components()
	} else if work.NodeCount() > 0 {
		all := make([]graph.NodeID, work.NodeCount())
		for i := range all {
			all[i] = graph.NodeID(i)
		}
		comps = [][]graph.NodeID{all}
	}

	subs := make([]*graph.Graph, len(comps))
	mappings := make([]*graph.Mapping, len(comps))
	for i, c := range comps {
		subs[i], mappings[i] = work.Extract(c)
	}

	stats := make([]Stats, len(comps))
	lay := func(ctx context.Context, i int) error {
		s, err := layoutComponent(ctx, subs[i], opts)
		if err != nil {
			return fmt.Errorf("component %d: %w", i, err)
		}
		stats[i] = s
		return nil
	}
	if opts.Parallel && len(comps) > 1 {
		eg, egctx := errgroup.WithContext(ctx)
		for i := range comps {
			eg.Go(func() error { return lay(egctx, i) })
		}
		if err := eg.Wait(); err != nil {
			return nil, err
		}
	} else {
		for i := range comps {
			if err := checkCanceled(ctx); err != nil {
				return nil, err
			}
			if err := lay(ctx, i); err != nil {
				return nil, err
			}
		}
	}

	pack(subs, opts)
	for i := range subs {
		copyBack(work, subs[i], mappings[i])
	}
	assignOrders(work, lgraph.Frame{Dir: opts.Direction})
	normalize(work)

	total := Stats{
		Nodes:      work.NodeCount(),
		Edges:      work.EdgeCount(),
		Components: len(comps),
		Stages:     make(map[string]time.Duration),
	}
	for _, s := range stats {
		total.merge(s)
	}
	return snapshot(work, opts.Direction, total), nil
}

// layoutComponent runs every stage on one connected graph and leaves the
// results on its nodes, ports and edges.
func layoutComponent(ctx context.Context, g *graph.Graph, opts *Options) (Stats, error) {
	st := Stats{Stages: make(map[string]time.Duration)}
	hooks := observability.Layout()
	f := lgraph.Frame{Dir: opts.Direction}

	stage := func(name string, fn func() error) error {
		if err := checkCanceled(ctx); err != nil {
			return err
		}
		hooks.OnStageStart(ctx, name)
		start := time.Now()
		err := fn()
		d := time.Since(start)
		st.Stages[name] += d
		hooks.OnStageComplete(ctx, name, d, err)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		opts.Logger.Debug("stage complete", "stage", name, "nodes", g.NodeCount(), "duration", d)
		return nil
	}

	strategy := opts.CycleBreaking
	if opts.Layering == layering.Fixed {
		strategy = cycle.Layers
	}
	err := stage(StageCycle, func() error {
		r := cycle.Break(g, strategy)
		st.Reversed, st.SelfLoops = len(r.Reversed), len(r.SelfLoops)
		if strategy == cycle.Layers {
			// same-layer edges are rejected by fixed layering
			return nil
		}
		if ok, edges := cycle.IsAcyclic(g); !ok {
			return errors.Invariant(StageCycle, "acyclic", "edges %v still form a cycle", edges)
		}
		return nil
	})
	if err != nil {
		return st, err
	}

	err = stage(StageLayering, func() error {
		if err := layering.Assign(g, layering.Options{
			Strategy:    opts.Layering,
			Direction:   opts.Direction,
			EdgeSpacing: opts.EdgeSpacing,
		}); err != nil {
			return err
		}
		st.Layers = layering.Count(g)
		return layering.Check(g)
	})
	if err != nil {
		return st, err
	}

	var v *lgraph.View
	err = stage(StageView, func() error {
		lgraph.PreparePorts(g, f)
		var err error
		if v, err = lgraph.Build(g, f); err != nil {
			return err
		}
		st.Dummies = v.DummyCount()
		return nil
	})
	if err != nil {
		return st, err
	}

	err = stage(StageCrossing, func() error {
		cs, err := crossing.Minimize(ctx, v, crossing.Options{
			Iterations:     opts.CrossingMinimizationIterations,
			FixedPortOrder: opts.FixedPortOrder,
			Restarts:       opts.Restarts,
			Seed:           opts.Seed,
			Parallel:       opts.Parallel,
			Fixed:          opts.Ordering == FixedOrder,
			LayerSpacing:   opts.LayerSpacing,
		})
		if err != nil {
			return err
		}
		st.Crossings = cs.Crossings
		return crossing.Check(v)
	})
	if err != nil {
		return st, err
	}

	pl := placement.Options{
		NodeSpacing:  opts.NodeSpacing,
		LayerSpacing: opts.LayerSpacing,
		EdgeSpacing:  opts.EdgeSpacing,
	}
	err = stage(StagePlacement, func() error {
		if err := placement.Place(v, pl); err != nil {
			return err
		}
		return placement.Check(v, pl)
	})
	if err != nil {
		return st, err
	}

	err = stage(StageRouting, func() error {
		rs, err := routing.Route(v, routing.Options{
			Mode:         opts.Routing,
			NodeSpacing:  opts.NodeSpacing,
			LayerSpacing: opts.LayerSpacing,
			EdgeSpacing:  opts.EdgeSpacing,
		})
		if err != nil {
			return err
		}
		st.Bends, st.Perturbed = rs.Bends, rs.Perturbed
		if rs.Perturbed > 0 {
			opts.Logger.Warn("moved bends out of nodes", "count", rs.Perturbed)
		}
		return routing.Check(g)
	})
	return st, err
}

func checkCanceled(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrap(errors.ErrCodeCanceled, err, "layout canceled")
	}
	return nil
}

// clampSizes replaces zero, negative and NaN node extents by MinNodeSize.
func clampSizes(g *graph.Graph, opts *Options) {
	for i := range g.NodeCount() {
		n := g.Node(graph.NodeID(i))
		if n.Width > 0 && n.Height > 0 {
			continue
		}
		opts.Logger.Warn("clamping degenerate node size",
			"node", n.Name, "width", n.Width, "height", n.Height, "min", opts.MinNodeSize)
		if !(n.Width > 0) {
			n.Width = opts.MinNodeSize
		}
		if !(n.Height > 0) {
			n.Height = opts.MinNodeSize
		}
	}
}

// copyBack writes the layout of an extracted component onto the graph it
// was extracted from.
func copyBack(g, sub *graph.Graph, m *graph.Mapping) {
	for i, orig := range m.Nodes {
		src, dst := sub.Node(graph.NodeID(i)), g.Node(orig)
		dst.Layer, dst.Order = src.Layer, src.Order
		dst.Pos, dst.Placed = src.Pos, src.Placed
	}
	for i, orig := range m.Ports {
		src, dst := sub.Port(graph.PortID(i)), g.Port(orig)
		dst.Side, dst.Offset, dst.Free = src.Side, src.Offset, src.Free
	}
	for i, orig := range m.Edges {
		src, dst := sub.Edge(graph.EdgeID(i)), g.Edge(orig)
		dst.Reversed = src.Reversed
		dst.Bends = slices.Clone(src.Bends)
		dst.Start, dst.End, dst.Routed = src.Start, src.End, src.Routed
	}
}

// assignOrders ranks the nodes of every layer by their within-layer
// position, across all components.
func assignOrders(g *graph.Graph, f lgraph.Frame) {
	type entry struct {
		node graph.NodeID
		w    float64
	}
	layers := make(map[int][]entry)
	for i := range g.NodeCount() {
		n := g.Node(graph.NodeID(i))
		w := f.RectToCanonical(n.Rect()).Y
		layers[n.Layer] = append(layers[n.Layer], entry{graph.NodeID(i), w})
	}
	for _, l := range layers {
		slices.SortStableFunc(l, func(a, b entry) int { return cmp.Compare(a.w, b.w) })
		for k, e := range l {
			g.Node(e.node).Order = k
		}
	}
}

// bounds returns the drawing bounding box of every node and route point.
func bounds(g *graph.Graph) (geo.Rect, bool) {
	var box geo.Rect
	ok := false
	add := func(r geo.Rect) {
		if !ok {
			box, ok = r, true
			return
		}
		box = box.Union(r)
	}
	for i := range g.NodeCount() {
		add(g.Node(graph.NodeID(i)).Rect())
	}
	for i := range g.EdgeCount() {
		e := g.Edge(graph.EdgeID(i))
		for _, p := range route(e) {
			add(geo.Rect{X: p.X, Y: p.Y})
		}
	}
	return box, ok
}

func route(e *graph.Edge) []geo.Point {
	if !e.Routed {
		return e.Bends
	}
	pts := make([]geo.Point, 0, len(e.Bends)+2)
	pts = append(pts, e.Start)
	pts = append(pts, e.Bends...)
	return append(pts, e.End)
}

func translate(g *graph.Graph, d geo.Point) {
	for i := range g.NodeCount() {
		n := g.Node(graph.NodeID(i))
		n.Pos = n.Pos.Add(d)
	}
	for i := range g.EdgeCount() {
		e := g.Edge(graph.EdgeID(i))
		e.Start, e.End = e.Start.Add(d), e.End.Add(d)
		for j := range e.Bends {
			e.Bends[j] = e.Bends[j].Add(d)
		}
	}
}

// normalize moves the drawing so that its bounding box starts at the origin.
func normalize(g *graph.Graph) {
	if box, ok := bounds(g); ok {
		translate(g, geo.Pt(-box.X, -box.Y))
	}
}
