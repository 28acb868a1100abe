// Package render groups the renderers for layout results.
//
// # Overview
//
// Renderers draw a [layout.Result] and never lay anything out themselves:
// every coordinate comes from the result, so all outputs of one layout agree.
//
//   - [svg]: self-contained SVG with nodes, optional ports and edge routes
//   - [dot]: Graphviz export with pinned positions, plus Graphviz-rendered
//     SVG and PNG
//
// # Usage
//
//	res, _ := layout.Layout(ctx, g, opts)
//	out := svg.Render(res, svg.WithPorts())
//	src := dot.ToDOT(res, dot.Options{})
//
// Most callers go through [pipeline.Runner], which adds caching and format
// selection on top of these packages.
//
// [layout.Result]: https://pkg.go.dev/github.com/matzehuels/strata/pkg/layout#Result
// [svg]: https://pkg.go.dev/github.com/matzehuels/strata/pkg/render/svg
// [dot]: https://pkg.go.dev/github.com/matzehuels/strata/pkg/render/dot
// [pipeline.Runner]: https://pkg.go.dev/github.com/matzehuels/strata/pkg/pipeline#Runner
package render
