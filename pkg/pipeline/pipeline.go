// Package pipeline provides the core rendering pipeline for impactgraph.
//
// This package implements the complete load → layout → compose → render
// pipeline that can be used by CLI and API components. By centralizing this
// logic, we ensure consistent behavior across all entry points and avoid
// code duplication.
//
// # Architecture
//
// The pipeline consists of three cached stages:
//
//  1. Load: Select one network's rows out of the store tables and validate
//     referential integrity
//  2. Compose: Position the network on the role bands and assemble the
//     styled scene (layout and composition always run together)
//  3. Render: Generate output in various formats (scene/figure JSON, SVG,
//     PNG, PDF, DOT)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Caching
//
// Stage results are cached under content-addressed keys: the load stage key
// embeds the dataset fingerprint, the compose stage key embeds the loaded
// network's hash, and the render stage key embeds the scene's hash. A change
// in the underlying tables therefore produces new keys for everything
// downstream, so memoized results never outlive the data they were computed
// from.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(st, c, nil, logger)
//	opts := pipeline.Options{
//	    NetworkID: 1,
//	    Formats:   []string{"svg"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	// Load only
//	net, err := runner.Load(ctx, opts)
//
//	// Compose with an existing network
//	s, err := runner.Compose(ctx, net, opts)
//
//	// Render with an existing scene
//	artifacts, err := runner.Render(ctx, net, s, opts)
package pipeline

import (
	"fmt"
	"time"

	"github.com/impactgraph/impactgraph/pkg/cache"
	"github.com/impactgraph/impactgraph/pkg/graph"
	"github.com/impactgraph/impactgraph/pkg/layout"
	"github.com/impactgraph/impactgraph/pkg/scene"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

// Format constants for output formats.
const (
	FormatScene  = "scene"
	FormatFigure = "figure"
	FormatSVG    = "svg"
	FormatPNG    = "png"
	FormatPDF    = "pdf"
	FormatDOT    = "dot"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatScene:  true,
	FormatFigure: true,
	FormatSVG:    true,
	FormatPNG:    true,
	FormatPDF:    true,
	FormatDOT:    true,
}

// DefaultFormat is the format rendered when none is requested.
const DefaultFormat = FormatSVG

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the rendering pipeline.
// This struct supports JSON serialization for API requests.
//
// Zero values fall back to the standard defaults: the default band geometry,
// the built-in theme, and SVG output.
type Options struct {
	// Select options
	NetworkID int `json:"network_id"`

	// Refresh bypasses cache reads so every stage recomputes.
	// Fresh results are still written back to the cache.
	Refresh bool `json:"refresh,omitempty"`

	// Layout options. X overrides replace the default band coordinate for
	// one role; EcoOffsets replaces the ecosystem offset cycle; VStep
	// replaces the vertical spacing.
	GrantX     float64   `json:"grant_x,omitempty"`
	FundedX    float64   `json:"funded_x,omitempty"`
	EcosystemX float64   `json:"ecosystem_x,omitempty"`
	PathwayX   float64   `json:"pathway_x,omitempty"`
	TreatmentX float64   `json:"treatment_x,omitempty"`
	EcoOffsets []float64 `json:"eco_offsets,omitempty"`
	VStep      float64   `json:"v_step,omitempty"`

	// ThemePath points at a TOML theme file. Empty uses the built-in theme.
	ThemePath string `json:"theme,omitempty"`

	// Render options
	Formats    []string `json:"formats,omitempty"`
	Title      string   `json:"title,omitempty"`
	Scale      float64  `json:"scale,omitempty"`      // SVG pixels per scene unit
	Labels     bool     `json:"labels,omitempty"`     // draw node labels in SVG output
	Background string   `json:"background,omitempty"` // SVG background color, "none" for transparent
	Detailed   bool     `json:"detailed,omitempty"`   // verbose node labels in DOT output

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Network is the loaded, validated network.
	Network *graph.Network

	// NetworkHash is the content hash of the loaded network.
	NetworkHash string

	// Scene is the composed scene.
	Scene *scene.Scene

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Fingerprint identifies the dataset snapshot this run was computed
	// from. It changes whenever the tables change.
	Fingerprint string

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount   int
	EdgeCount   int
	LoadTime    time.Duration
	ComposeTime time.Duration
	RenderTime  time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LoadHit   bool // Whether the loaded network came from cache
	SceneHit  bool // Whether the composed scene came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return fmt.Errorf("invalid format: %q (must be one of: scene, figure, svg, png, pdf, dot)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the full pipeline.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLoad(); err != nil {
		return err
	}
	if err := o.ValidateForCompose(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForLoad checks required fields for loading a network.
func (o *Options) ValidateForLoad() error {
	if o.NetworkID <= 0 {
		return fmt.Errorf("network_id is required")
	}
	return nil
}

// ValidateForCompose checks that the band geometry is usable.
func (o *Options) ValidateForCompose() error {
	if o.VStep < 0 {
		return fmt.Errorf("v_step must not be negative")
	}
	return o.Bands().Validate()
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	if len(o.Formats) == 0 {
		o.Formats = []string{DefaultFormat}
	}
	if o.Scale < 0 {
		return fmt.Errorf("scale must not be negative")
	}
	return ValidateFormats(o.Formats)
}

// Bands resolves the layout band geometry: the standard bands with any
// configured overrides applied.
func (o *Options) Bands() layout.Bands {
	b := layout.DefaultBands()
	if o.GrantX != 0 {
		b.X[graph.RoleGrant] = o.GrantX
	}
	if o.FundedX != 0 {
		b.X[graph.RoleGrantFundedPub] = o.FundedX
	}
	if o.EcosystemX != 0 {
		b.X[graph.RoleEcosystemPub] = o.EcosystemX
	}
	if o.PathwayX != 0 {
		b.X[graph.RoleTreatmentPathPub] = o.PathwayX
	}
	if o.TreatmentX != 0 {
		b.X[graph.RoleTreatment] = o.TreatmentX
	}
	if o.EcoOffsets != nil {
		b.EcoOffsets = o.EcoOffsets
	}
	if o.VStep > 0 {
		b.VStep = o.VStep
	}
	return b
}

// SceneKeyOpts returns cache key options for scene composition. The theme
// fingerprint ties the key to the active theme's content.
func (o *Options) SceneKeyOpts(themeFingerprint string) cache.SceneKeyOpts {
	b := o.Bands()
	return cache.SceneKeyOpts{
		GrantX:     b.X[graph.RoleGrant],
		FundedX:    b.X[graph.RoleGrantFundedPub],
		EcosystemX: b.X[graph.RoleEcosystemPub],
		PathwayX:   b.X[graph.RoleTreatmentPathPub],
		TreatmentX: b.X[graph.RoleTreatment],
		EcoOffsets: b.EcoOffsets,
		VStep:      b.VStep,
		Theme:      themeFingerprint,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:     format,
		Title:      o.Title,
		Scale:      o.Scale,
		Labels:     o.Labels,
		Background: o.Background,
		Detailed:   o.Detailed,
	}
}
