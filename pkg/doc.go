// Package pkg provides the libraries behind strata, a layered graph layout
// engine.
//
// # Overview
//
// Strata computes hierarchical drawings of directed graphs. Nodes are placed
// on parallel layers so that edges point in one direction, nodes within a
// layer are ordered to reduce crossings, and edges are drawn as polylines or
// orthogonal paths between ports on node boundaries. The pkg directory is
// organized into three areas:
//
//  1. Engine - the graph model and the layout stages
//  2. Input/output - graph descriptions, results and renderers
//  3. Tooling - caching, the pipeline runner and the HTTP server
//
// # Architecture
//
// The data flow of one layout:
//
//	JSON graph description
//	         ↓
//	    [io] package (read nodes, ports and edges)
//	         ↓
//	    [layout] package, per connected component:
//	        [cycle] → [layering] → [graph/lgraph] → [crossing] → [placement] → [routing]
//	         ↓
//	    [layout.Result] (positions, routes, statistics)
//	         ↓
//	    [render/svg], [render/dot] or result JSON
//
// # Quick Start
//
//	g, _ := strataio.ImportGraph("graph.json")
//	res, err := layout.Layout(ctx, g, layout.Options{
//	    Direction: graph.DirDown,
//	    Routing:   routing.Orthogonal,
//	})
//	if err != nil {
//	    return err
//	}
//	os.WriteFile("graph.svg", svg.Render(res), 0o644)
//
// # Main Packages
//
// ## Engine
//
// [graph] - Arena-based graph model. Nodes, ports and edges are addressed by
// stable integer IDs; layout stages write their results onto these entities.
//
// [graph/lgraph] - The proper layered view: long edges are split into dummy
// nodes so that every segment connects adjacent layers. All stages work in a
// canonical frame where layers grow along X, independent of the drawing
// direction.
//
// [cycle] - Makes the graph acyclic by reversing edges (DFS, greedy).
//
// [layering] - Assigns layers (longest path, minimum width, fixed).
//
// [crossing] - Orders nodes within layers by median sweeps with greedy
// switching and optional randomized restarts.
//
// [placement] - Assigns coordinates with four-way alignment and balancing.
//
// [routing] - Routes edges orthogonally with slots between layers, or as
// polylines, and handles self-loops and parallel edges.
//
// [layout] - Runs the stages, checks their postconditions and packs
// components.
//
// ## Input/Output
//
// [io] - JSON graph descriptions and layout results, and re-import of a
// result to reproduce it.
//
// [render/svg] - SVG drawing of a result.
//
// [render/dot] - Graphviz export with pinned positions.
//
// ## Tooling
//
// [pipeline] - Layout and render with caching; shared by the CLI and the
// server.
//
// [cache] - File, Redis and null cache backends keyed by content hash.
//
// [server] - HTTP API.
//
// [observability] - Hooks for metrics and tracing.
//
// [errors] - Coded errors shared by all packages.
//
// # Testing
//
//	go test ./pkg/...            # All tests
//	go test ./pkg/routing/...    # Specific package
//	go test -run Example ./...   # Examples only
//
// [graph]: https://pkg.go.dev/github.com/matzehuels/strata/pkg/graph
// [graph/lgraph]: https://pkg.go.dev/github.com/matzehuels/strata/pkg/graph/lgraph
// [cycle]: https://pkg.go.dev/github.com/matzehuels/strata/pkg/cycle
// [layering]: https://pkg.go.dev/github.com/matzehuels/strata/pkg/layering
// [crossing]: https://pkg.go.dev/github.com/matzehuels/strata/pkg/crossing
// [placement]: https://pkg.go.dev/github.com/matzehuels/strata/pkg/placement
// [routing]: https://pkg.go.dev/github.com/matzehuels/strata/pkg/routing
// [layout]: https://pkg.go.dev/github.com/matzehuels/strata/pkg/layout
// [layout.Result]: https://pkg.go.dev/github.com/matzehuels/strata/pkg/layout#Result
// [io]: https://pkg.go.dev/github.com/matzehuels/strata/pkg/io
// [render/svg]: https://pkg.go.dev/github.com/matzehuels/strata/pkg/render/svg
// [render/dot]: https://pkg.go.dev/github.com/matzehuels/strata/pkg/render/dot
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/strata/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/strata/pkg/cache
// [server]: https://pkg.go.dev/github.com/matzehuels/strata/pkg/server
// [observability]: https://pkg.go.dev/github.com/matzehuels/strata/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/strata/pkg/errors
package pkg
