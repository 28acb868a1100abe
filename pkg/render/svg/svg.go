// Package svg draws a layout result as a standalone SVG document.
//
// Nodes are drawn as rounded boxes labeled with their "label" metadata or
// their id, and edges as polylines with an arrowhead at the target. Hovering
// a node highlights it together with its incident edges.
package svg

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/matzehuels/strata/pkg/geo"
	"github.com/matzehuels/strata/pkg/layout"
)

const interactionCSS = `
    .node rect { fill: #fff; stroke: #333; stroke-width: 1.5; transition: stroke-width 0.2s ease; }
    .node text { font: 12px sans-serif; fill: #222; pointer-events: none; }
    .edge { fill: none; stroke: #555; stroke-width: 1.2; }
    .edge.reversed { stroke-dasharray: 4 2; }
    .port { fill: #333; }
    .highlight rect, rect.highlight { stroke-width: 3; }
    .edge.highlight { stroke: #d0452f; stroke-width: 2.4; }`

const interactionJS = `
    function highlight(id, on) {
      document.getElementById('node-' + id).classList.toggle('highlight', on);
      document.querySelectorAll('[data-ends~="' + id + '"]').forEach(e => e.classList.toggle('highlight', on));
    }
    document.querySelectorAll('.node').forEach(el => {
      const id = el.dataset.node;
      el.addEventListener('mouseenter', () => highlight(id, true));
      el.addEventListener('mouseleave', () => highlight(id, false));
    });`

// Option configures rendering.
type Option func(*renderer)

type renderer struct {
	padding     float64
	ports       bool
	labels      bool
	interactive bool
}

// WithPadding sets the margin around the drawing. The default is 10.
func WithPadding(p float64) Option { return func(r *renderer) { r.padding = p } }

// WithPorts marks every port with a small dot.
func WithPorts() Option { return func(r *renderer) { r.ports = true } }

// WithoutLabels leaves nodes unlabeled.
func WithoutLabels() Option { return func(r *renderer) { r.labels = false } }

// WithoutInteraction omits the hover script.
func WithoutInteraction() Option { return func(r *renderer) { r.interactive = false } }

// Render returns res as an SVG document.
func Render(res *layout.Result, opts ...Option) []byte {
	r := renderer{padding: 10, labels: true, interactive: true}
	for _, opt := range opts {
		opt(&r)
	}

	w, h := res.Bounds.W+2*r.padding, res.Bounds.H+2*r.padding
	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		w, h, w, h)
	buf.WriteString(`  <defs><marker id="arrow" viewBox="0 0 10 10" refX="10" refY="5" markerWidth="8" markerHeight="8" orient="auto-start-reverse"><path d="M0,0 L10,5 L0,10 z" fill="#555"/></marker></defs>` + "\n")
	fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", interactionCSS)

	off := geo.Pt(r.padding-res.Bounds.X, r.padding-res.Bounds.Y)
	fmt.Fprintf(&buf, `  <g transform="translate(%.2f %.2f)">`+"\n", off.X, off.Y)
	ports := res.PortNodes()
	for _, e := range res.Edges {
		renderEdge(&buf, e, ports)
	}
	for _, n := range res.Nodes {
		r.renderNode(&buf, n)
	}
	buf.WriteString("  </g>\n")

	if r.interactive {
		fmt.Fprintf(&buf, "  <script type=\"text/javascript\"><![CDATA[%s\n  ]]></script>\n", interactionJS)
	}
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func (r *renderer) renderNode(buf *bytes.Buffer, n layout.Node) {
	id := html.EscapeString(n.ID)
	fmt.Fprintf(buf, `    <g class="node" id="node-%s" data-node="%s">`+"\n", id, id)
	fmt.Fprintf(buf, `      <rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" rx="3"/>`+"\n",
		n.X, n.Y, n.Width, n.Height)
	if r.labels {
		fmt.Fprintf(buf, `      <text x="%.2f" y="%.2f" text-anchor="middle" dominant-baseline="central">%s</text>`+"\n",
			n.X+n.Width/2, n.Y+n.Height/2, html.EscapeString(Label(n)))
	}
	if r.ports {
		for _, p := range n.Ports {
			fmt.Fprintf(buf, `      <circle class="port" cx="%.2f" cy="%.2f" r="2"/>`+"\n", n.X+p.X, n.Y+p.Y)
		}
	}
	buf.WriteString("    </g>\n")
}

func renderEdge(buf *bytes.Buffer, e layout.Edge, owners map[string]string) {
	if len(e.Route) < 2 {
		return
	}
	pts := make([]string, len(e.Route))
	for i, p := range e.Route {
		pts[i] = fmt.Sprintf("%.2f,%.2f", p.X, p.Y)
	}
	class := "edge"
	if e.Reversed {
		class += " reversed"
	}
	fmt.Fprintf(buf, `    <polyline class="%s" id="edge-%s" data-ends="%s %s" points="%s" marker-end="url(#arrow)"/>`+"\n",
		class, html.EscapeString(e.ID),
		html.EscapeString(owners[e.Source]), html.EscapeString(owners[e.Target]),
		strings.Join(pts, " "))
}

// Label returns the text shown for a node: its "label" metadata when that
// is a non-empty string, else its id.
func Label(n layout.Node) string {
	if s, ok := n.Meta["label"].(string); ok && s != "" {
		return s
	}
	return n.ID
}
