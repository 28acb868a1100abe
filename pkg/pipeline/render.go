package pipeline

import (
	"bytes"
	"context"
	"fmt"

	"github.com/matzehuels/strata/pkg/geo"
	strataio "github.com/matzehuels/strata/pkg/io"
	"github.com/matzehuels/strata/pkg/layout"
	"github.com/matzehuels/strata/pkg/render/dot"
	"github.com/matzehuels/strata/pkg/render/svg"
)

// Render produces an artifact for res without caching.
func Render(ctx context.Context, res *layout.Result, opts RenderOptions) ([]byte, error) {
	if err := ValidateFormat(opts.Format); err != nil {
		return nil, err
	}

	var (
		data []byte
		err  error
	)
	switch opts.Format {
	case FormatJSON:
		var buf bytes.Buffer
		err = strataio.WriteResult(res, &buf)
		data = buf.Bytes()
	case FormatSVG:
		var svgOpts []svg.Option
		if opts.Ports {
			svgOpts = append(svgOpts, svg.WithPorts())
		}
		data = svg.Render(res, svgOpts...)
	case FormatDOT:
		data = []byte(dot.ToDOT(res, dotOptions(res, opts)))
	case FormatGraphviz:
		data, err = dot.RenderSVG(ctx, dot.ToDOT(res, dotOptions(res, opts)))
	case FormatPNG:
		data, err = dot.RenderPNG(ctx, dot.ToDOT(res, dotOptions(res, opts)))
	}
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", opts.Format, err)
	}
	return data, nil
}

// dotOptions asks Graphviz for orthogonal edges when the result was routed
// orthogonally.
func dotOptions(res *layout.Result, opts RenderOptions) dot.Options {
	orthogonal := true
	for _, e := range res.Edges {
		orthogonal = orthogonal && geo.IsOrthogonal(e.Route)
	}
	return dot.Options{Detailed: opts.Detailed, Orthogonal: orthogonal}
}
