// Package dot renders networks as Graphviz node-link diagrams.
//
// Unlike the banded scene layout, a DOT diagram lets Graphviz place
// nodes freely, which works better for untangling dense citation
// clusters. Roles keep their theme marker colors and edge kinds their
// stroke colors, so both views of a network share one visual language.
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

	"github.com/impactgraph/impactgraph/pkg/errors"
	"github.com/impactgraph/impactgraph/pkg/graph"
	"github.com/impactgraph/impactgraph/pkg/style"
)

// Options configures DOT generation.
type Options struct {
	// Detailed includes node metadata in labels. When false, only the
	// label (or id) is shown.
	Detailed bool
}

// roleShapes maps each role to a Graphviz node shape.
var roleShapes = map[graph.Role]string{
	graph.RoleGrant:            "box",
	graph.RoleGrantFundedPub:   "ellipse",
	graph.RoleEcosystemPub:     "ellipse",
	graph.RoleTreatmentPathPub: "ellipse",
	graph.RoleTreatment:        "hexagon",
}

// ToDOT converts a network to Graphviz DOT format. The resulting string
// can be rendered with [RenderSVG] or [RenderPNG].
func ToDOT(net *graph.Network, theme style.Theme, opts Options) (string, error) {
	var buf bytes.Buffer
	buf.WriteString("digraph impact {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [style=\"filled\", fontcolor=white, fontsize=12, margin=\"0.15,0.08\"];\n")
	buf.WriteString("  edge [arrowsize=0.6];\n")
	buf.WriteString("  ranksep=1.2;\n")
	buf.WriteString("  nodesep=0.25;\n")
	buf.WriteString("\n")

	for i := range net.Nodes {
		node := &net.Nodes[i]
		marker, err := theme.Marker(node.Role)
		if err != nil {
			return "", err
		}
		label := fmtLabel(node, opts.Detailed)
		fmt.Fprintf(&buf, "  %q [label=%q, shape=%s, fillcolor=%q];\n",
			node.ID, label, roleShapes[node.Role], dotColor(marker.Color))
	}

	buf.WriteString("\n")
	for i := range net.Edges {
		edge := &net.Edges[i]
		stroke, err := theme.Stroke(edge.Kind)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&buf, "  %q -> %q [color=%q, penwidth=%.2f];\n",
			edge.Source, edge.Target, dotColor(stroke.Color), stroke.Width)
	}

	buf.WriteString("}\n")
	return buf.String(), nil
}

func fmtLabel(n *graph.Node, detailed bool) string {
	label := n.Label
	if label == "" {
		label = n.ID
	}
	if !detailed || len(n.Meta) == 0 {
		return label
	}

	parts := []string{label}
	for _, k := range slices.Sorted(maps.Keys(n.Meta)) {
		parts = append(parts, fmt.Sprintf("%s: %s", k, n.Meta[k]))
	}
	return strings.Join(parts, "\n")
}

// dotColor converts a theme color to a form Graphviz accepts. CSS
// rgba() turns into #RRGGBBAA hex; anything else passes through.
func dotColor(c string) string {
	var r, g, b int
	var a float64
	// The %d and %f verbs skip spaces, so both rgba(1,2,3,0.5) and the
	// spaced CSS form parse.
	if _, err := fmt.Sscanf(c, "rgba(%d,%d,%d,%f)", &r, &g, &b, &a); err != nil {
		return c
	}
	alpha := int(a*255 + 0.5)
	return fmt.Sprintf("#%02X%02X%02X%02X", r, g, b, alpha)
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	data, err := render(ctx, dot, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(data), nil
}

// RenderPNG renders a DOT graph to PNG using Graphviz.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	return render(ctx, dot, graphviz.PNG)
}

func render(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render %s", format)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the Graphviz svg element so the document
// scales cleanly when embedded.
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

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
