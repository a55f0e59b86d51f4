package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/impactgraph/impactgraph/pkg/cache"
	"github.com/impactgraph/impactgraph/pkg/graph"
	"github.com/impactgraph/impactgraph/pkg/observability"
	"github.com/impactgraph/impactgraph/pkg/report"
	"github.com/impactgraph/impactgraph/pkg/scene"
	"github.com/impactgraph/impactgraph/pkg/store"
	"github.com/impactgraph/impactgraph/pkg/style"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for its store, cache, and logger - it
// doesn't hold pipeline results. Multiple goroutines can safely use the
// same Runner with different options.
type Runner struct {
	Store  store.Store
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner over the given store.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(st store.Store, c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Store:  st,
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete load → compose → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	// One snapshot read feeds every stage; its fingerprint scopes all keys.
	tables, err := r.Store.Tables(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch tables: %w", err)
	}
	fingerprint := tables.Fingerprint()

	result := &Result{
		Artifacts:   make(map[string][]byte),
		Fingerprint: fingerprint,
	}

	obs := observability.Pipeline()

	// Stage 1: Load
	obs.OnLoadStart(ctx, opts.NetworkID)
	loadStart := time.Now()
	net, loadHit, err := r.loadNetwork(ctx, tables, fingerprint, opts)
	if err != nil {
		obs.OnLoadComplete(ctx, opts.NetworkID, 0, 0, time.Since(loadStart), err)
		return nil, fmt.Errorf("load: %w", err)
	}
	result.Network = net
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.NodeCount = net.NodeCount()
	result.Stats.EdgeCount = net.EdgeCount()
	result.CacheInfo.LoadHit = loadHit
	obs.OnLoadComplete(ctx, opts.NetworkID, net.NodeCount(), net.EdgeCount(), result.Stats.LoadTime, nil)

	// Compute network hash for cache keys and API responses
	if networkData, err := graph.MarshalNetwork(net); err == nil {
		result.NetworkHash = cache.Hash(networkData)
	}

	r.Logger.Info("loaded network",
		"network", opts.NetworkID,
		"nodes", net.NodeCount(),
		"edges", net.EdgeCount(),
		"duration", result.Stats.LoadTime)

	// Stage 2: Compose (layout + scene assembly)
	theme, themeFP, err := LoadTheme(opts)
	if err != nil {
		return nil, fmt.Errorf("compose: %w", err)
	}
	obs.OnComposeStart(ctx, opts.NetworkID)
	composeStart := time.Now()
	s, sceneHit, err := r.composeScene(ctx, net, result.NetworkHash, theme, themeFP, opts)
	if err != nil {
		obs.OnComposeComplete(ctx, opts.NetworkID, 0, time.Since(composeStart), err)
		return nil, fmt.Errorf("compose: %w", err)
	}
	result.Scene = s
	result.Stats.ComposeTime = time.Since(composeStart)
	result.CacheInfo.SceneHit = sceneHit
	obs.OnComposeComplete(ctx, opts.NetworkID,
		len(s.NodeTraces)+len(s.EdgeTraces), result.Stats.ComposeTime, nil)

	r.Logger.Info("composed scene",
		"node_traces", len(s.NodeTraces),
		"edge_traces", len(s.EdgeTraces),
		"pathway_complete", s.Summary.PathwayComplete,
		"duration", result.Stats.ComposeTime)

	// Stage 3: Render
	obs.OnRenderStart(ctx, opts.NetworkID, opts.Formats)
	renderStart := time.Now()
	artifacts, renderHit, err := r.renderScene(ctx, net, s, theme, opts)
	if err != nil {
		obs.OnRenderComplete(ctx, opts.NetworkID, opts.Formats, time.Since(renderStart), err)
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit
	obs.OnRenderComplete(ctx, opts.NetworkID, opts.Formats, result.Stats.RenderTime, nil)

	r.Logger.Info("rendered artifacts",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// LoadWithCacheInfo loads one network with caching and returns cache hit info.
func (r *Runner) LoadWithCacheInfo(ctx context.Context, opts Options) (*graph.Network, bool, error) {
	if err := opts.ValidateForLoad(); err != nil {
		return nil, false, err
	}

	tables, err := r.Store.Tables(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("fetch tables: %w", err)
	}

	return r.loadNetwork(ctx, tables, tables.Fingerprint(), opts)
}

// Load is a convenience wrapper that calls LoadWithCacheInfo and discards the cache hit info.
func (r *Runner) Load(ctx context.Context, opts Options) (*graph.Network, error) {
	net, _, err := r.LoadWithCacheInfo(ctx, opts)
	return net, err
}

// loadNetwork loads one network out of an already-fetched snapshot.
func (r *Runner) loadNetwork(ctx context.Context, tables *store.Tables, fingerprint string, opts Options) (*graph.Network, bool, error) {
	cacheKey := r.Keyer.NetworkKey(fingerprint, opts.NetworkID)

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			net, err := graph.ReadNetwork(bytes.NewReader(data))
			if err == nil {
				observability.Cache().OnCacheHit(ctx, "network")
				return net, true, nil // Cache hit
			}
		}
		observability.Cache().OnCacheMiss(ctx, "network")
	}

	net, err := LoadNetwork(tables, opts)
	if err != nil {
		return nil, false, err
	}

	// Cache the result
	if data, err := graph.MarshalNetwork(net); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLNetwork)
		observability.Cache().OnCacheSet(ctx, "network", len(data))
	}

	return net, false, nil // Cache miss
}

// ComposeWithCacheInfo composes a scene with caching and returns cache hit info.
func (r *Runner) ComposeWithCacheInfo(ctx context.Context, net *graph.Network, opts Options) (*scene.Scene, bool, error) {
	if err := opts.ValidateForCompose(); err != nil {
		return nil, false, err
	}

	theme, themeFP, err := LoadTheme(opts)
	if err != nil {
		return nil, false, err
	}

	networkData, err := graph.MarshalNetwork(net)
	if err != nil {
		return nil, false, fmt.Errorf("serialize network for cache key: %w", err)
	}

	return r.composeScene(ctx, net, cache.Hash(networkData), theme, themeFP, opts)
}

// Compose is a convenience wrapper that calls ComposeWithCacheInfo and discards the cache hit info.
func (r *Runner) Compose(ctx context.Context, net *graph.Network, opts Options) (*scene.Scene, error) {
	s, _, err := r.ComposeWithCacheInfo(ctx, net, opts)
	return s, err
}

// composeScene composes a scene for a network whose hash is already known.
func (r *Runner) composeScene(ctx context.Context, net *graph.Network, networkHash string, theme style.Theme, themeFP string, opts Options) (*scene.Scene, bool, error) {
	cacheKey := r.Keyer.SceneKey(networkHash, opts.SceneKeyOpts(themeFP))

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			cached, err := scene.Unmarshal(data)
			if err == nil {
				observability.Cache().OnCacheHit(ctx, "scene")
				return cached, true, nil // Cache hit
			}
			// If deserialization fails, fall through to recompute
		}
		observability.Cache().OnCacheMiss(ctx, "scene")
	}

	s, err := ComposeScene(net, theme, opts)
	if err != nil {
		return nil, false, err
	}

	// Cache the result
	if data, err := scene.Marshal(s); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLScene)
		observability.Cache().OnCacheSet(ctx, "scene", len(data))
	}

	return s, false, nil // Cache miss
}

// RenderWithCacheInfo renders artifacts with caching and returns cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, net *graph.Network, s *scene.Scene, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	theme, _, err := LoadTheme(opts)
	if err != nil {
		return nil, false, err
	}

	return r.renderScene(ctx, net, s, theme, opts)
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, net *graph.Network, s *scene.Scene, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, net, s, opts)
	return artifacts, err
}

// renderScene renders every requested format, serving from cache when all of
// them are present.
func (r *Runner) renderScene(ctx context.Context, net *graph.Network, s *scene.Scene, theme style.Theme, opts Options) (map[string][]byte, bool, error) {
	sceneData, err := scene.Marshal(s)
	if err != nil {
		return nil, false, fmt.Errorf("serialize scene for cache key: %w", err)
	}
	sceneHash := cache.Hash(sceneData)

	// Try to get all formats from cache
	if !opts.Refresh {
		allCached := true
		artifacts := make(map[string][]byte)

		for _, format := range opts.Formats {
			cacheKey := r.Keyer.ArtifactKey(sceneHash, opts.ArtifactKeyOpts(format))
			if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
				artifacts[format] = data
			} else {
				allCached = false
				break
			}
		}

		if allCached && len(artifacts) == len(opts.Formats) {
			observability.Cache().OnCacheHit(ctx, "artifact")
			return artifacts, true, nil // All artifacts from cache
		}
		observability.Cache().OnCacheMiss(ctx, "artifact")
	}

	// Render all formats
	rendered, err := RenderArtifacts(ctx, net, s, theme, opts)
	if err != nil {
		return nil, false, err
	}

	// Cache each format
	for format, data := range rendered {
		cacheKey := r.Keyer.ArtifactKey(sceneHash, opts.ArtifactKeyOpts(format))
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLArtifact)
		observability.Cache().OnCacheSet(ctx, "artifact", len(data))
	}

	return rendered, false, nil // Cache miss
}

// ReportWithCacheInfo builds portfolio metrics over the whole dataset with
// caching and returns cache hit info.
func (r *Runner) ReportWithCacheInfo(ctx context.Context) (*report.Metrics, bool, error) {
	tables, err := r.Store.Tables(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("fetch tables: %w", err)
	}

	cacheKey := r.Keyer.ReportKey(tables.Fingerprint())
	if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
		var cached report.Metrics
		if err := json.Unmarshal(data, &cached); err == nil {
			observability.Cache().OnCacheHit(ctx, "report")
			return &cached, true, nil // Cache hit
		}
	}
	observability.Cache().OnCacheMiss(ctx, "report")

	metrics, err := report.Build(ctx, tables)
	if err != nil {
		return nil, false, err
	}

	if data, err := json.Marshal(metrics); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLReport)
		observability.Cache().OnCacheSet(ctx, "report", len(data))
	}

	return metrics, false, nil // Cache miss
}

// Report is a convenience wrapper that calls ReportWithCacheInfo and discards the cache hit info.
func (r *Runner) Report(ctx context.Context) (*report.Metrics, error) {
	metrics, _, err := r.ReportWithCacheInfo(ctx)
	return metrics, err
}

// Close releases resources held by the runner (primarily the cache).
// The store's lifetime belongs to whoever constructed it.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
