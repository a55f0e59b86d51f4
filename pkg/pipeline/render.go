package pipeline

import (
	"context"
	"fmt"

	"github.com/impactgraph/impactgraph/pkg/graph"
	"github.com/impactgraph/impactgraph/pkg/render"
	"github.com/impactgraph/impactgraph/pkg/render/dot"
	"github.com/impactgraph/impactgraph/pkg/render/figure"
	"github.com/impactgraph/impactgraph/pkg/render/svg"
	"github.com/impactgraph/impactgraph/pkg/scene"
	"github.com/impactgraph/impactgraph/pkg/style"
)

// pngZoom is the raster zoom applied when converting the SVG artifact to PNG.
const pngZoom = 2.0

// RenderArtifacts renders a composed scene into each requested format.
// The network and theme are needed by the DOT sink, which draws from the
// table rows rather than the scene traces.
func RenderArtifacts(ctx context.Context, net *graph.Network, s *scene.Scene, theme style.Theme, opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte)

	for _, format := range opts.Formats {
		data, err := renderFormat(ctx, net, s, theme, format, opts)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}

// renderFormat renders a single output format.
func renderFormat(ctx context.Context, net *graph.Network, s *scene.Scene, theme style.Theme, format string, opts Options) ([]byte, error) {
	switch format {
	case FormatScene:
		return scene.Marshal(s)

	case FormatFigure:
		f, err := figure.Build(s, figureOptions(opts)...)
		if err != nil {
			return nil, err
		}
		return figure.Marshal(f)

	case FormatSVG:
		return svg.Render(s, svgOptions(opts)...), nil

	case FormatPNG:
		data := svg.Render(s, svgOptions(opts)...)
		return render.ToPNG(ctx, data, pngZoom)

	case FormatPDF:
		data := svg.Render(s, svgOptions(opts)...)
		return render.ToPDF(ctx, data)

	case FormatDOT:
		text, err := dot.ToDOT(net, theme, dot.Options{Detailed: opts.Detailed})
		if err != nil {
			return nil, err
		}
		return []byte(text), nil

	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// svgOptions builds SVG rendering options.
func svgOptions(opts Options) []svg.Option {
	var svgOpts []svg.Option

	if opts.Scale > 0 {
		svgOpts = append(svgOpts, svg.WithScale(opts.Scale))
	}
	if opts.Title != "" {
		svgOpts = append(svgOpts, svg.WithTitle(opts.Title))
	}
	if opts.Labels {
		svgOpts = append(svgOpts, svg.WithLabels())
	}
	if opts.Background != "" {
		svgOpts = append(svgOpts, svg.WithBackground(opts.Background))
	}

	return svgOpts
}

// figureOptions builds figure document options.
func figureOptions(opts Options) []figure.Option {
	var figOpts []figure.Option

	if opts.Title != "" {
		figOpts = append(figOpts, figure.WithTitle(opts.Title))
	}

	return figOpts
}
