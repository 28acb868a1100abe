// Package crossing orders the vnodes of every layer of a layered view so that
// few segments cross.
//
// # Layer Sweep
//
// [Minimize] starts from a depth-first order and alternates downward and
// upward sweeps. A sweep reorders each layer by the median position of its
// vnodes' neighbours in the layer just visited, then a greedy switch pass
// swaps adjacent vnodes while that strictly reduces crossings with both
// neighbour layers. Sweeps do not always improve the count, so the best
// ordering seen is kept and restored at the end. The result never has more
// crossings than the initial order.
//
// Positions are port-aware: a segment end is keyed by its vnode's slot in the
// layer plus the rank of its port along the vnode's side, so two segments
// leaving the same node through different ports are ordered as drawn.
//
// # Restarts
//
// With Options.Restarts > 1 further runs start from shuffled layers, seeded
// deterministically from Options.Seed and the restart index. Restarts may
// run concurrently; the run with the fewest crossings wins and ties go to
// the lowest restart index, so the outcome does not depend on scheduling.
//
// # Port Distribution
//
// Unless Options.FixedPortOrder is set, free ports (those whose side and
// offset were chosen by layout) are then permuted among the offsets already
// used on their side, following the mean position of what they connect to.
// The permutation is undone if it would add crossings.
//
// # Fixed Ordering
//
// With Options.Fixed the sweep is skipped and each layer is sorted by
// [Hints], which read node positions and edge routes from a previous layout
// or fall back to given orders.
package crossing

import (
	"context"
	"math/rand/v2"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/strata/pkg/errors"
	"github.com/matzehuels/strata/pkg/graph/lgraph"
)

// Options configures [Minimize].
type Options struct {
	// Iterations bounds the number of down/up sweep pairs per run.
	Iterations int
	// FixedPortOrder forbids moving ports along their node side.
	FixedPortOrder bool
	// Restarts is the number of independent runs, at least 1.
	Restarts int
	// Seed seeds the shuffles of restarts after the first.
	Seed uint64
	// Parallel runs restarts concurrently.
	Parallel bool
	// Fixed keeps the order given by vnode hints.
	Fixed bool
	// LayerSpacing is used to recover layer positions for fixed hints.
	LayerSpacing float64
}

// Stats reports what [Minimize] did.
type Stats struct {
	// Initial is the crossing count of the deterministic initial order.
	Initial int
	// Crossings is the final crossing count.
	Crossings int
	// Sweeps counts the sweeps of the winning run.
	Sweeps int
	// Restart is the index of the winning run.
	Restart int
	// PortsMoved is set when port distribution changed some offsets.
	PortsMoved bool
}

type run struct {
	view      *lgraph.View
	initial   int
	crossings int
	sweeps    int
}

// Minimize reorders the layers of v and writes each vnode's Order. It returns
// an error only when ctx is canceled.
func Minimize(ctx context.Context, v *lgraph.View, opts Options) (Stats, error) {
	if opts.Fixed {
		Hints(v, opts.LayerSpacing)
		sortByHint(v)
		n := Count(v)
		return Stats{Initial: n, Crossings: n}, nil
	}

	restarts := max(opts.Restarts, 1)
	runs := make([]run, restarts)
	attempt := func(ctx context.Context, r int) error {
		c := v.Clone()
		m := newMinimizer(c)
		m.initialOrder()
		if r > 0 {
			m.shuffle(rand.New(rand.NewPCG(opts.Seed, uint64(r))))
		}
		initial := m.total()
		crossings, sweeps, err := m.sweep(ctx, initial, opts.Iterations)
		if err != nil {
			return err
		}
		runs[r] = run{view: c, initial: initial, crossings: crossings, sweeps: sweeps}
		return nil
	}

	if opts.Parallel && restarts > 1 {
		g, gctx := errgroup.WithContext(ctx)
		for r := range restarts {
			g.Go(func() error { return attempt(gctx, r) })
		}
		if err := g.Wait(); err != nil {
			return Stats{}, canceled(err)
		}
	} else {
		for r := range restarts {
			if err := attempt(ctx, r); err != nil {
				return Stats{}, canceled(err)
			}
		}
	}

	best := 0
	for r := 1; r < restarts; r++ {
		if runs[r].crossings < runs[best].crossings {
			best = r
		}
	}
	win := runs[best]
	for k := range v.Layers {
		copy(v.Layers[k], win.view.Layers[k])
	}
	v.Reindex()

	stats := Stats{
		Initial:   runs[0].initial,
		Crossings: win.crossings,
		Sweeps:    win.sweeps,
		Restart:   best,
	}
	if !opts.FixedPortOrder {
		stats.Crossings, stats.PortsMoved = distributePorts(v, stats.Crossings)
	}
	return stats, nil
}

func canceled(err error) error {
	return errors.Wrap(errors.ErrCodeCanceled, err, "crossing minimization canceled")
}

// Count returns the number of crossings of v in its current order.
func Count(v *lgraph.View) int {
	return newMinimizer(v).total()
}

// Check verifies that every layer of v is a permutation of the vnodes
// assigned to it and that Order matches the slice position.
func Check(v *lgraph.View) error {
	seen := make([]bool, len(v.Nodes))
	for k, layer := range v.Layers {
		for i, n := range layer {
			if n < 0 || n >= len(v.Nodes) || seen[n] {
				return errors.Invariant("crossing", "permutation", "layer %d lists vnode %d twice or out of range", k, n)
			}
			seen[n] = true
			if vn := v.Nodes[n]; vn.Layer != k || vn.Order != i {
				return errors.Invariant("crossing", "permutation",
					"vnode %d at layer %d slot %d records layer %d order %d", n, k, i, vn.Layer, vn.Order)
			}
		}
	}
	for n, ok := range seen {
		if !ok {
			return errors.Invariant("crossing", "permutation", "vnode %d is in no layer", n)
		}
	}
	return nil
}
