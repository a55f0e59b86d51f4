package pipeline

import (
	"context"
	"io"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/impactgraph/impactgraph/pkg/cache"
	"github.com/impactgraph/impactgraph/pkg/errors"
	"github.com/impactgraph/impactgraph/pkg/gen"
	"github.com/impactgraph/impactgraph/pkg/graph"
	"github.com/impactgraph/impactgraph/pkg/observability"
	"github.com/impactgraph/impactgraph/pkg/store"
)

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"scene", false},
		{"figure", false},
		{"svg", false},
		{"png", false},
		{"pdf", false},
		{"dot", false},
		{"invalid", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "figure"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}

	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}

	// Empty slice is valid
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestOptionsValidateForLoad(t *testing.T) {
	opts := Options{}
	if err := opts.ValidateForLoad(); err == nil {
		t.Error("Missing network id should fail")
	}

	opts.NetworkID = 1
	if err := opts.ValidateForLoad(); err != nil {
		t.Errorf("Valid options should pass: %v", err)
	}
}

func TestOptionsValidateForRender(t *testing.T) {
	opts := Options{NetworkID: 1}
	if err := opts.ValidateForRender(); err != nil {
		t.Fatalf("Valid options should pass: %v", err)
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != FormatSVG {
		t.Errorf("Formats should default to [svg], got %v", opts.Formats)
	}

	opts = Options{NetworkID: 1, Scale: -1}
	if err := opts.ValidateForRender(); err == nil {
		t.Error("Negative scale should fail")
	}
}

func TestOptionsValidateForCompose(t *testing.T) {
	opts := Options{NetworkID: 1}
	if err := opts.ValidateForCompose(); err != nil {
		t.Errorf("Default bands should pass: %v", err)
	}

	opts = Options{NetworkID: 1, VStep: -0.5}
	if err := opts.ValidateForCompose(); err == nil {
		t.Error("Negative vertical step should fail")
	}
}

func TestOptionsValidateAndSetDefaultsIdempotent(t *testing.T) {
	opts := Options{NetworkID: 1}

	// First call
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("First validation failed: %v", err)
	}
	originalFormats := len(opts.Formats)

	// Second call should be idempotent
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("Second validation failed: %v", err)
	}
	if len(opts.Formats) != originalFormats {
		t.Error("Formats changed on second call")
	}
}

func TestOptionsBands(t *testing.T) {
	opts := Options{NetworkID: 1}
	b := opts.Bands()
	if got := b.X[graph.RoleGrant]; got != -5 {
		t.Errorf("default grant x = %g, want -5", got)
	}

	opts = Options{NetworkID: 1, GrantX: -8, TreatmentX: 9, VStep: 2}
	b = opts.Bands()
	if got := b.X[graph.RoleGrant]; got != -8 {
		t.Errorf("grant x override = %g, want -8", got)
	}
	if got := b.X[graph.RoleTreatment]; got != 9 {
		t.Errorf("treatment x override = %g, want 9", got)
	}
	if got := b.X[graph.RoleGrantFundedPub]; got != -2.5 {
		t.Errorf("funded x should keep default, got %g", got)
	}
	if b.VStep != 2 {
		t.Errorf("v step override = %g, want 2", b.VStep)
	}

	// An explicit empty offset cycle flattens the ecosystem band
	opts = Options{NetworkID: 1, EcoOffsets: []float64{}}
	if got := opts.Bands().EcoOffsets; len(got) != 0 {
		t.Errorf("empty offsets should override the default cycle, got %v", got)
	}
}

func TestSceneKeyOptsReflectBands(t *testing.T) {
	opts := Options{NetworkID: 1, GrantX: -8}
	ko := opts.SceneKeyOpts("theme-fp")
	if ko.GrantX != -8 {
		t.Errorf("key opts grant x = %g, want -8", ko.GrantX)
	}
	if ko.FundedX != -2.5 {
		t.Errorf("key opts funded x = %g, want -2.5", ko.FundedX)
	}
	if ko.Theme != "theme-fp" {
		t.Errorf("key opts theme = %q", ko.Theme)
	}
}

// =============================================================================
// Runner
// =============================================================================

func newTestRunner(t *testing.T) (*Runner, store.Store) {
	t.Helper()

	tables, err := gen.Generate(gen.Options{Seed: 42})
	if err != nil {
		t.Fatalf("generate tables: %v", err)
	}
	st := store.NewMemory(tables)

	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("create cache: %v", err)
	}

	logger := log.NewWithOptions(io.Discard, log.Options{})
	return NewRunner(st, c, nil, logger), st
}

// pureFormats avoids png/pdf, which shell out to rsvg-convert.
var pureFormats = []string{FormatScene, FormatFigure, FormatSVG, FormatDOT}

func TestRunnerExecute(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRunner(t)
	defer r.Close()

	opts := Options{NetworkID: 1, Formats: pureFormats}
	result, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}

	if result.Network == nil || result.Scene == nil {
		t.Fatal("result should carry network and scene")
	}
	if result.Stats.NodeCount != result.Network.NodeCount() {
		t.Errorf("stats nodes = %d, want %d", result.Stats.NodeCount, result.Network.NodeCount())
	}
	if result.Fingerprint == "" || result.NetworkHash == "" {
		t.Error("fingerprint and network hash should be set")
	}
	for _, format := range pureFormats {
		if len(result.Artifacts[format]) == 0 {
			t.Errorf("missing artifact for format %s", format)
		}
	}
	if !result.Scene.Summary.PathwayComplete {
		t.Error("generated network 1 should have a complete pathway")
	}
	if result.CacheInfo.LoadHit || result.CacheInfo.SceneHit || result.CacheInfo.RenderHit {
		t.Error("first run should not hit the cache")
	}
}

func TestRunnerExecuteCachesAndInvalidates(t *testing.T) {
	ctx := context.Background()
	r, st := newTestRunner(t)
	defer r.Close()

	opts := Options{NetworkID: 1, Formats: pureFormats}
	first, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("first Execute error: %v", err)
	}

	// Second run over unchanged tables is served from cache
	second, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("second Execute error: %v", err)
	}
	if !second.CacheInfo.LoadHit || !second.CacheInfo.SceneHit || !second.CacheInfo.RenderHit {
		t.Errorf("second run should hit every stage: %+v", second.CacheInfo)
	}
	if second.Fingerprint != first.Fingerprint {
		t.Error("fingerprint should be stable across runs on unchanged tables")
	}

	// Changing a row changes the fingerprint, so every stage recomputes
	tables, err := st.Tables(ctx)
	if err != nil {
		t.Fatalf("fetch tables: %v", err)
	}
	tables.Nodes[0].Label = "Renamed Grant"
	if err := st.Replace(ctx, tables); err != nil {
		t.Fatalf("replace tables: %v", err)
	}

	third, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("third Execute error: %v", err)
	}
	if third.Fingerprint == first.Fingerprint {
		t.Error("fingerprint should change when a row changes")
	}
	if third.CacheInfo.LoadHit {
		t.Errorf("changed tables should not serve the stale network: %+v", third.CacheInfo)
	}
}

func TestRunnerExecuteRefresh(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRunner(t)
	defer r.Close()

	opts := Options{NetworkID: 1, Formats: pureFormats}
	if _, err := r.Execute(ctx, opts); err != nil {
		t.Fatalf("first Execute error: %v", err)
	}

	opts.Refresh = true
	result, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("refresh Execute error: %v", err)
	}
	if result.CacheInfo.LoadHit || result.CacheInfo.SceneHit || result.CacheInfo.RenderHit {
		t.Errorf("refresh should bypass cache reads: %+v", result.CacheInfo)
	}
}

func TestRunnerExecuteUnknownNetwork(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRunner(t)
	defer r.Close()

	_, err := r.Execute(ctx, Options{NetworkID: 99, Formats: pureFormats})
	if err == nil {
		t.Fatal("unknown network should fail")
	}
	if !errors.Is(err, errors.ErrCodeEmptyNetwork) {
		t.Errorf("error should carry the empty-network code: %v", err)
	}
}

func TestRunnerExecuteInvalidOptions(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRunner(t)
	defer r.Close()

	if _, err := r.Execute(ctx, Options{}); err == nil {
		t.Error("missing network id should fail")
	}
	if _, err := r.Execute(ctx, Options{NetworkID: 1, Formats: []string{"gif"}}); err == nil {
		t.Error("unknown format should fail")
	}
}

func TestRunnerStages(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRunner(t)
	defer r.Close()

	opts := Options{NetworkID: 2, Formats: []string{FormatScene}}

	net, err := r.Load(ctx, opts)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if net.ID != 2 {
		t.Errorf("loaded network id = %d, want 2", net.ID)
	}

	s, err := r.Compose(ctx, net, opts)
	if err != nil {
		t.Fatalf("Compose error: %v", err)
	}
	if len(s.NodeTraces) == 0 {
		t.Fatal("composed scene should carry node traces")
	}

	artifacts, err := r.Render(ctx, net, s, opts)
	if err != nil {
		t.Fatalf("Render error: %v", err)
	}
	if len(artifacts[FormatScene]) == 0 {
		t.Error("scene artifact missing")
	}

	// A second compose of the same network is a cache hit
	_, hit, err := r.ComposeWithCacheInfo(ctx, net, opts)
	if err != nil {
		t.Fatalf("ComposeWithCacheInfo error: %v", err)
	}
	if !hit {
		t.Error("second compose should hit the cache")
	}
}

func TestRunnerReport(t *testing.T) {
	ctx := context.Background()
	r, st := newTestRunner(t)
	defer r.Close()

	metrics, hit, err := r.ReportWithCacheInfo(ctx)
	if err != nil {
		t.Fatalf("report error: %v", err)
	}
	if hit {
		t.Error("first report should miss the cache")
	}
	if metrics.TotalTreatments != 3 {
		t.Errorf("treatments = %d, want 3", metrics.TotalTreatments)
	}

	cached, hit, err := r.ReportWithCacheInfo(ctx)
	if err != nil {
		t.Fatalf("second report error: %v", err)
	}
	if !hit {
		t.Error("second report should hit the cache")
	}
	if cached.TotalFunding != metrics.TotalFunding {
		t.Error("cached report should match")
	}

	// Table change invalidates the report key
	tables, err := st.Tables(ctx)
	if err != nil {
		t.Fatalf("fetch tables: %v", err)
	}
	tables.Summaries[0].FundingAmount += 1000
	if err := st.Replace(ctx, tables); err != nil {
		t.Fatalf("replace tables: %v", err)
	}

	fresh, hit, err := r.ReportWithCacheInfo(ctx)
	if err != nil {
		t.Fatalf("third report error: %v", err)
	}
	if hit {
		t.Error("report after table change should miss the cache")
	}
	if fresh.TotalFunding == metrics.TotalFunding {
		t.Error("report should reflect the funding change")
	}
}

func TestRunnerNilDefaults(t *testing.T) {
	tables, err := gen.Generate(gen.Options{Seed: 42})
	if err != nil {
		t.Fatalf("generate tables: %v", err)
	}
	r := NewRunner(store.NewMemory(tables), nil, nil, nil)
	defer r.Close()

	if r.Cache == nil || r.Keyer == nil || r.Logger == nil {
		t.Fatal("nil dependencies should be defaulted")
	}

	// NullCache means every run recomputes
	ctx := context.Background()
	opts := Options{NetworkID: 1, Formats: []string{FormatScene}}
	if _, err := r.Execute(ctx, opts); err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	result, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("second Execute error: %v", err)
	}
	if result.CacheInfo.SceneHit {
		t.Error("null cache should never hit")
	}
}

// =============================================================================
// Observability
// =============================================================================

type recordingPipelineHooks struct {
	observability.NoopPipelineHooks
	loads, composes, renders int
}

func (h *recordingPipelineHooks) OnLoadStart(context.Context, int)             { h.loads++ }
func (h *recordingPipelineHooks) OnComposeStart(context.Context, int)          { h.composes++ }
func (h *recordingPipelineHooks) OnRenderStart(context.Context, int, []string) { h.renders++ }

type recordingCacheHooks struct {
	observability.NoopCacheHooks
	hits, misses, sets int
}

func (h *recordingCacheHooks) OnCacheHit(context.Context, string)      { h.hits++ }
func (h *recordingCacheHooks) OnCacheMiss(context.Context, string)     { h.misses++ }
func (h *recordingCacheHooks) OnCacheSet(context.Context, string, int) { h.sets++ }

func TestRunnerEmitsHooks(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRunner(t)
	defer r.Close()

	observability.Reset()
	t.Cleanup(observability.Reset)

	ph := &recordingPipelineHooks{}
	ch := &recordingCacheHooks{}
	observability.SetPipelineHooks(ph)
	observability.SetCacheHooks(ch)

	opts := Options{NetworkID: 1, Formats: pureFormats}
	if _, err := r.Execute(ctx, opts); err != nil {
		t.Fatalf("Execute error: %v", err)
	}

	if ph.loads != 1 || ph.composes != 1 || ph.renders != 1 {
		t.Errorf("stage starts = %d/%d/%d, want 1/1/1", ph.loads, ph.composes, ph.renders)
	}
	if ch.hits != 0 {
		t.Errorf("first run hits = %d, want 0", ch.hits)
	}
	if ch.misses == 0 || ch.sets == 0 {
		t.Error("first run should record cache misses and writes")
	}

	if _, err := r.Execute(ctx, opts); err != nil {
		t.Fatalf("second Execute error: %v", err)
	}
	if ch.hits == 0 {
		t.Error("second run should record cache hits")
	}
}
