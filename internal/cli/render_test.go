package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/impactgraph/impactgraph/pkg/errors"
	"github.com/impactgraph/impactgraph/pkg/pipeline"
)

func renderTestContext(t *testing.T) context.Context {
	t.Helper()
	logger := log.New(io.Discard)
	return withLogger(context.Background(), logger)
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"", []string{pipeline.FormatSVG}},
		{"scene", []string{"scene"}},
		{"svg,dot", []string{"svg", "dot"}},
		{"scene,figure,svg", []string{"scene", "figure", "svg"}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := parseFormats(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseFormats(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		name      string
		output    string
		networkID int
		format    string
		multi     bool
		want      string
	}{
		{"default svg", "", 3, pipeline.FormatSVG, false, "network_3.svg"},
		{"default scene", "", 1, pipeline.FormatScene, true, "network_1.scene.json"},
		{"explicit single", "out.svg", 1, pipeline.FormatSVG, false, "out.svg"},
		{"multi without ext", "report", 1, pipeline.FormatSVG, true, "report.svg"},
		{"multi strips ext", "report.svg", 1, pipeline.FormatDOT, true, "report.dot"},
		{"multi compound ext", "report.svg", 2, pipeline.FormatFigure, true, "report.figure.json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := outputPath(tt.output, tt.networkID, tt.format, tt.multi)
			if got != tt.want {
				t.Errorf("outputPath(%q, %d, %q, %v) = %q, want %q",
					tt.output, tt.networkID, tt.format, tt.multi, got, tt.want)
			}
		})
	}
}

func TestRunRenderWritesFiles(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	ctx := renderTestContext(t)

	dir := t.TempDir()
	opts := renderOpts{
		data:      demoLocator,
		networkID: 1,
		output:    filepath.Join(dir, "net.svg"),
	}
	formats := []string{
		pipeline.FormatScene,
		pipeline.FormatFigure,
		pipeline.FormatSVG,
		pipeline.FormatDOT,
	}

	if err := runRender(ctx, formats, &opts); err != nil {
		t.Fatalf("runRender() error: %v", err)
	}

	wantFiles := []string{"net.scene.json", "net.figure.json", "net.svg", "net.dot"}
	for _, name := range wantFiles {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			t.Errorf("missing artifact %s: %v", name, err)
			continue
		}
		if len(data) == 0 {
			t.Errorf("artifact %s is empty", name)
		}
	}

	svg, err := os.ReadFile(filepath.Join(dir, "net.svg"))
	if err != nil {
		t.Fatalf("read svg: %v", err)
	}
	if !strings.Contains(string(svg), "<svg") {
		t.Error("svg artifact has no <svg element")
	}
}

func TestRunRenderDefaultOutputName(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	ctx := renderTestContext(t)

	dir := t.TempDir()
	oldWd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir: %v", err)
	}
	defer os.Chdir(oldWd)

	opts := renderOpts{data: demoLocator, networkID: 2}
	if err := runRender(ctx, []string{pipeline.FormatDOT}, &opts); err != nil {
		t.Fatalf("runRender() error: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "network_2.dot")); err != nil {
		t.Errorf("default output file not written: %v", err)
	}
}

func TestRunRenderUnknownNetwork(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	ctx := renderTestContext(t)

	opts := renderOpts{
		data:      demoLocator,
		networkID: 99,
		output:    filepath.Join(t.TempDir(), "net.svg"),
	}

	err := runRender(ctx, []string{pipeline.FormatSVG}, &opts)
	if err == nil {
		t.Fatal("expected error for unknown network")
	}
	if code := errors.GetCode(err); code != errors.ErrCodeEmptyNetwork {
		t.Errorf("error code = %q, want %q", code, errors.ErrCodeEmptyNetwork)
	}
}

func TestRenderCmdRejectsBadFormat(t *testing.T) {
	cmd := newRenderCmd()
	cmd.SetArgs([]string{"--format", "tiff"})
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)

	if err := cmd.Execute(); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestRenderCmdRejectsMultiFormatStdout(t *testing.T) {
	cmd := newRenderCmd()
	cmd.SetArgs([]string{"--format", "svg,dot", "--output", "-"})
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)

	if err := cmd.Execute(); err == nil {
		t.Fatal("expected error for multiple formats to stdout")
	}
}
