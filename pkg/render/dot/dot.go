// Package dot exports layout results as Graphviz DOT and renders them with
// Graphviz.
//
// Node positions are pinned, so Graphviz keeps the computed placement and
// only draws the edges. Coordinates are converted to Graphviz points with the
// y axis pointing up.
package dot

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/strata/pkg/graph"
	"github.com/matzehuels/strata/pkg/layout"
	"github.com/matzehuels/strata/pkg/render/svg"
)

// pointsPerInch converts layout units, taken as points, to Graphviz's inch
// based node sizes.
const pointsPerInch = 72.0

// Options configures DOT export.
type Options struct {
	// Detailed adds the layer, order and metadata to node labels.
	Detailed bool
	// Orthogonal asks Graphviz for axis-parallel edges.
	Orthogonal bool
}

// ToDOT converts a layout result to DOT with pinned node positions.
func ToDOT(res *layout.Result, opts Options) string {
	var buf bytes.Buffer
	splines := "polyline"
	if opts.Orthogonal {
		splines = "ortho"
	}
	buf.WriteString("digraph G {\n")
	fmt.Fprintf(&buf, "  graph [bgcolor=\"transparent\", splines=%s, rankdir=%s];\n", splines, rankdir(res.Direction))
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fixedsize=true, fontsize=12];\n")
	buf.WriteString("\n")

	for _, n := range res.Nodes {
		cx := n.X + n.Width/2
		cy := res.Bounds.H - (n.Y + n.Height/2)
		attrs := []string{
			fmt.Sprintf("label=%q", fmtLabel(n, opts.Detailed)),
			fmt.Sprintf("pos=\"%s,%s!\"", num(cx), num(cy)),
			fmt.Sprintf("width=%s", num(n.Width/pointsPerInch)),
			fmt.Sprintf("height=%s", num(n.Height/pointsPerInch)),
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	owners := res.PortNodes()
	for _, e := range res.Edges {
		attrs := []string{fmt.Sprintf("id=%q", e.ID)}
		if e.Reversed {
			attrs = append(attrs, "style=dashed")
		}
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", owners[e.Source], owners[e.Target], strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func rankdir(d graph.Direction) string {
	switch d {
	case graph.DirDown:
		return "TB"
	case graph.DirLeft:
		return "RL"
	case graph.DirUp:
		return "BT"
	}
	return "LR"
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func fmtLabel(n layout.Node, detailed bool) string {
	label := svg.Label(n)
	if !detailed {
		return label
	}

	parts := []string{fmt.Sprintf("layer: %d", n.Layer), fmt.Sprintf("order: %d", n.Order)}
	for _, k := range slices.Sorted(maps.Keys(n.Meta)) {
		if k == "label" {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %v", k, n.Meta[k]))
	}
	return label + "\n" + strings.Join(parts, "\n")
}

// RenderSVG renders DOT to SVG with the neato engine, which keeps pinned
// positions.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	out, err := render(ctx, dot, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(out), nil
}

// RenderPNG renders DOT to PNG with the neato engine.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	return render(ctx, dot, graphviz.PNG)
}

func render(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render %s: %w", format, err)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's svg tag with one sized in pixels and
// anchored at the origin.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
