// Package svg renders scenes as standalone SVG documents.
//
// The output needs no JavaScript runtime or plotting library: edges are
// path elements, nodes are circles, and hover details ride on native
// SVG title elements. Node markers keep their scene styles, so the SVG
// matches what a plotly front end would show for the same scene.
package svg

import (
	"bytes"
	"fmt"
	"math"

	"github.com/impactgraph/impactgraph/pkg/scene"
)

const nodeInteractionCSS = `
    .node { transition: stroke-width 0.15s ease; stroke: #e2e8f0; stroke-width: 1; }
    .node:hover { stroke-width: 3; }
    .node-label { font-family: Inter, sans-serif; fill: #e2e8f0; }`

// Option configures SVG rendering via [Render].
type Option func(*renderer)

type renderer struct {
	scale      float64
	pad        float64
	background string
	labels     bool
	title      string
}

// WithScale sets pixels per scene unit. Default 80.
func WithScale(s float64) Option { return func(r *renderer) { r.scale = s } }

// WithBackground fills the canvas with a color. Default is the dark
// page background; pass "none" for transparency.
func WithBackground(color string) Option { return func(r *renderer) { r.background = color } }

// WithLabels draws text labels next to grant and treatment nodes.
func WithLabels() Option { return func(r *renderer) { r.labels = true } }

// WithTitle renders a heading above the network.
func WithTitle(title string) Option { return func(r *renderer) { r.title = title } }

// Render produces a complete SVG document for the scene.
func Render(s *scene.Scene, opts ...Option) []byte {
	r := renderer{
		scale:      80,
		pad:        60,
		background: "#0e1117",
	}
	for _, opt := range opts {
		opt(&r)
	}

	minX, minY, maxX, maxY := sceneBounds(s)
	width := (maxX-minX)*r.scale + 2*r.pad
	height := (maxY-minY)*r.scale + 2*r.pad
	if r.title != "" {
		height += 40
	}

	// World y grows up, SVG y grows down.
	toX := func(x float64) float64 { return (x-minX)*r.scale + r.pad }
	toY := func(y float64) float64 { return height - ((y-minY)*r.scale + r.pad) }

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		width, height, width, height)
	fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", nodeInteractionCSS)

	if r.background != "none" {
		fmt.Fprintf(&buf, `  <rect width="100%%" height="100%%" fill=%q/>`+"\n", r.background)
	}
	if r.title != "" {
		fmt.Fprintf(&buf, `  <text x="%.1f" y="28" text-anchor="middle" class="node-label" font-size="20">%s</text>`+"\n",
			width/2, escape(r.title))
	}

	if s == nil {
		buf.WriteString("</svg>\n")
		return buf.Bytes()
	}

	// Edges first so nodes draw on top.
	for _, tr := range s.EdgeTraces {
		renderEdgeTrace(&buf, tr, toX, toY)
	}
	for _, tr := range s.NodeTraces {
		renderNodeTrace(&buf, &r, tr, toX, toY)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func renderEdgeTrace(buf *bytes.Buffer, tr scene.EdgeTrace, toX, toY func(float64) float64) {
	fmt.Fprintf(buf, `  <g stroke=%q stroke-width="%.2f" fill="none">`+"\n", tr.Stroke.Color, tr.Stroke.Width)
	for i := 0; i+1 < len(tr.X); i += 3 {
		fmt.Fprintf(buf, `    <path d="M %.1f %.1f L %.1f %.1f"/>`+"\n",
			toX(tr.X[i]), toY(tr.Y[i]), toX(tr.X[i+1]), toY(tr.Y[i+1]))
	}
	buf.WriteString("  </g>\n")
}

func renderNodeTrace(buf *bytes.Buffer, r *renderer, tr scene.NodeTrace, toX, toY func(float64) float64) {
	fmt.Fprintf(buf, `  <g fill=%q>`+"\n", tr.Marker.Color)
	for i := range tr.IDs {
		x, y := toX(tr.X[i]), toY(tr.Y[i])
		fmt.Fprintf(buf, `    <circle id="node-%s" class="node" cx="%.1f" cy="%.1f" r="%.1f">`,
			escape(tr.IDs[i]), x, y, tr.Marker.Size/2)
		label := tr.Labels[i]
		if label == "" {
			label = tr.IDs[i]
		}
		fmt.Fprintf(buf, "<title>%s</title></circle>\n", escape(label))

		if r.labels && labeledRole(tr) {
			fmt.Fprintf(buf, `    <text x="%.1f" y="%.1f" text-anchor="middle" class="node-label" font-size="13">%s</text>`+"\n",
				x, y-tr.Marker.Size/2-8, escape(label))
		}
	}
	buf.WriteString("  </g>\n")
}

// labeledRole reports whether a trace's nodes are prominent enough to
// carry visible labels. Small ecosystem markers would just smear.
func labeledRole(tr scene.NodeTrace) bool {
	return tr.Marker.Size >= 15
}

// sceneBounds returns the world-coordinate extent of all traces,
// ignoring NaN separators.
func sceneBounds(s *scene.Scene) (minX, minY, maxX, maxY float64) {
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)

	grow := func(x, y float64) {
		if math.IsNaN(x) || math.IsNaN(y) {
			return
		}
		minX, maxX = math.Min(minX, x), math.Max(maxX, x)
		minY, maxY = math.Min(minY, y), math.Max(maxY, y)
	}
	if s != nil {
		for _, tr := range s.NodeTraces {
			for i := range tr.X {
				grow(tr.X[i], tr.Y[i])
			}
		}
		for _, tr := range s.EdgeTraces {
			for i := range tr.X {
				grow(tr.X[i], tr.Y[i])
			}
		}
	}

	if math.IsInf(minX, 1) {
		return 0, 0, 1, 1
	}
	if minX == maxX {
		maxX++
	}
	if minY == maxY {
		maxY++
	}
	return minX, minY, maxX, maxY
}

// escape replaces characters with special meaning in XML.
func escape(s string) string {
	var buf bytes.Buffer
	for _, r := range s {
		switch r {
		case '&':
			buf.WriteString("&amp;")
		case '<':
			buf.WriteString("&lt;")
		case '>':
			buf.WriteString("&gt;")
		case '"':
			buf.WriteString("&quot;")
		default:
			buf.WriteRune(r)
		}
	}
	return buf.String()
}
