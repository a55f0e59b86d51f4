package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/impactgraph/impactgraph/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	data       string  // store locator
	networkID  int     // network to render
	output     string  // output path ("-" for stdout, base path for multiple formats)
	theme      string  // theme TOML path
	refresh    bool    // bypass cache reads
	noCache    bool    // disable the artifact cache entirely
	title      string  // figure/SVG title
	scale      float64 // SVG pixels per layout unit
	labels     bool    // draw node labels in the SVG
	background string  // SVG background color
	detailed   bool    // include metadata in DOT output
}

// formatExt maps each pipeline format to its output file extension.
var formatExt = map[string]string{
	pipeline.FormatScene:  ".scene.json",
	pipeline.FormatFigure: ".figure.json",
	pipeline.FormatSVG:    ".svg",
	pipeline.FormatPNG:    ".png",
	pipeline.FormatPDF:    ".pdf",
	pipeline.FormatDOT:    ".dot",
}

// newRenderCmd creates the render command for generating network artifacts.
//
// Default settings:
//   - data: demo (generated in-memory tables)
//   - format: svg
//   - output: network_<id>.<ext> in the working directory
func newRenderCmd() *cobra.Command {
	var formatsStr string
	opts := renderOpts{data: demoLocator}

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render an impact network to scene, figure, SVG, PNG, PDF, or DOT",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			formats := parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(formats); err != nil {
				return err
			}
			if opts.output == "-" && len(formats) > 1 {
				return fmt.Errorf("writing to stdout needs exactly one format, got %d", len(formats))
			}
			return runRender(cmd.Context(), formats, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.data, "data", "d", opts.data, "store locator: demo, CSV directory, SQLite file, or mongodb:// URI")
	cmd.Flags().IntVarP(&opts.networkID, "network", "n", 1, "network id to render")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format), base path (multiple), or - for stdout")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), scene, figure, png, pdf, dot (comma-separated)")
	cmd.Flags().StringVar(&opts.theme, "theme", "", "theme TOML file (default: built-in theme)")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute even when cached results exist")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the artifact cache")
	cmd.Flags().StringVar(&opts.title, "title", "", "figure/SVG title")
	cmd.Flags().Float64Var(&opts.scale, "scale", 0, "SVG pixels per layout unit")
	cmd.Flags().BoolVar(&opts.labels, "labels", false, "draw node labels in the SVG")
	cmd.Flags().StringVar(&opts.background, "background", "", "SVG background color")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "include node metadata in DOT output")

	return cmd
}

// parseFormats parses a comma-separated format string into a slice.
// If empty, defaults to ["svg"].
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	return strings.Split(s, ",")
}

// runRender executes the pipeline for one network and writes the artifacts.
func runRender(ctx context.Context, formats []string, opts *renderOpts) error {
	logger := loggerFromContext(ctx)

	st, err := openStore(ctx, opts.data)
	if err != nil {
		return err
	}
	defer st.Close()

	c, err := newCache(opts.noCache)
	if err != nil {
		return err
	}
	runner := pipeline.NewRunner(st, c, nil, logger)
	defer runner.Close()

	pipeOpts := pipeline.Options{
		NetworkID:  opts.networkID,
		Formats:    formats,
		ThemePath:  opts.theme,
		Refresh:    opts.refresh,
		Title:      opts.title,
		Scale:      opts.scale,
		Labels:     opts.labels,
		Background: opts.background,
		Detailed:   opts.detailed,
	}

	toStdout := opts.output == "-"

	var spin *Spinner
	if !toStdout {
		spin = newSpinnerWithContext(ctx, fmt.Sprintf("Rendering network %d", opts.networkID))
		spin.Start()
	}

	result, err := runner.Execute(ctx, pipeOpts)
	if spin != nil {
		spin.Stop()
	}
	if err != nil {
		return err
	}

	if toStdout {
		return writeArtifact("-", result.Artifacts[formats[0]])
	}

	printStats(result.Stats.NodeCount, result.Stats.EdgeCount, result.CacheInfo.RenderHit)
	for _, format := range formats {
		path := outputPath(opts.output, opts.networkID, format, len(formats) > 1)
		if err := writeArtifact(path, result.Artifacts[format]); err != nil {
			return fmt.Errorf("write %s: %w", format, err)
		}
		printFile(path)
	}
	printSuccess("Rendered network %d", opts.networkID)
	return nil
}

// outputPath derives the file path for one format. A single format uses
// the output path verbatim when one was given; multiple formats append
// per-format extensions to the base.
func outputPath(output string, networkID int, format string, multi bool) string {
	if output == "" {
		return fmt.Sprintf("network_%d%s", networkID, formatExt[format])
	}
	if !multi {
		return output
	}
	base := strings.TrimSuffix(output, filepath.Ext(output))
	return base + formatExt[format]
}

func writeArtifact(path string, data []byte) error {
	out, err := openOutput(path)
	if err != nil {
		return err
	}
	defer out.Close()
	_, err = out.Write(data)
	return err
}
