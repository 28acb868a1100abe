// Package pipeline runs layout and rendering with caching for the CLI and the
// HTTP server.
//
// # Architecture
//
// The pipeline has two stages:
//
//  1. Layout: compute a [layout.Result] for a graph
//  2. Render: turn a result into an artifact (JSON, SVG, DOT or a Graphviz
//     rendering)
//
// Both stages are keyed by content: a layout by the hash of the graph's
// canonical JSON and the options that change the drawing, an artifact by the
// hash of the result and the render settings. Both entry points share one
// [Runner] so they cache identically.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	res, hit, err := runner.Layout(ctx, g, layout.Options{Direction: graph.DirDown})
//	if err != nil {
//	    return err
//	}
//	svg, _, err := runner.Render(ctx, res, pipeline.RenderOptions{Format: pipeline.FormatSVG})
package pipeline

import (
	"slices"

	"github.com/matzehuels/strata/pkg/cache"
	"github.com/matzehuels/strata/pkg/errors"
	"github.com/matzehuels/strata/pkg/layout"
)

// Output formats.
const (
	// FormatJSON is the layout result as JSON.
	FormatJSON = "json"
	// FormatSVG is drawn from the computed routes.
	FormatSVG = "svg"
	// FormatDOT is Graphviz source with pinned node positions.
	FormatDOT = "dot"
	// FormatGraphviz is SVG drawn by Graphviz from the DOT export.
	FormatGraphviz = "graphviz"
	// FormatPNG is a PNG drawn by Graphviz from the DOT export.
	FormatPNG = "png"
)

// ValidFormats lists the supported output formats.
var ValidFormats = []string{FormatJSON, FormatSVG, FormatDOT, FormatGraphviz, FormatPNG}

// ValidateFormat checks that a format is supported.
func ValidateFormat(format string) error {
	if !slices.Contains(ValidFormats, format) {
		return errors.New(errors.ErrCodeInvalidOptions,
			"invalid format %q (must be one of: json, svg, dot, graphviz, png)", format)
	}
	return nil
}

// ContentType returns the MIME type of a format.
func ContentType(format string) string {
	switch format {
	case FormatJSON:
		return "application/json"
	case FormatSVG, FormatGraphviz:
		return "image/svg+xml"
	case FormatPNG:
		return "image/png"
	}
	return "text/vnd.graphviz"
}

// RenderOptions configures the render stage.
type RenderOptions struct {
	Format string `json:"format" toml:"format"`
	// Ports marks ports in SVG output.
	Ports bool `json:"ports,omitempty" toml:"ports"`
	// Detailed adds layers, orders and metadata to Graphviz labels.
	Detailed bool `json:"detailed,omitempty" toml:"detailed"`
}

func (o RenderOptions) keyOpts() cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{Format: o.Format, Ports: o.Ports, Detailed: o.Detailed}
}

// LayoutKeyOpts returns the cache key options of validated layout options.
func LayoutKeyOpts(o *layout.Options) cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Direction:          o.Direction.String(),
		Routing:            string(o.Routing),
		CycleBreaking:      string(o.CycleBreaking),
		Layering:           string(o.Layering),
		Ordering:           string(o.Ordering),
		NodeSpacing:        o.NodeSpacing,
		LayerSpacing:       o.LayerSpacing,
		EdgeSpacing:        o.EdgeSpacing,
		Iterations:         o.CrossingMinimizationIterations,
		Restarts:           o.Restarts,
		Seed:               o.Seed,
		FixedPortOrder:     o.FixedPortOrder,
		SeparateComponents: o.Separate(),
		MinNodeSize:        o.MinNodeSize,
	}
}
