// Package cache provides pluggable caching for pipeline results.
//
// This package defines the Cache interface for byte-level storage and the
// Keyer interface for building cache keys, with implementations for
// different backends:
//   - file: File-based storage for CLI usage
//   - redis: Redis-backed storage for multi-instance server deployments
//   - null: A no-op cache for tests and for disabling caching
//
// # Keys
//
// Every key embeds either the dataset fingerprint or the content hash of the
// upstream stage's output, so a change in the underlying tables produces new
// keys rather than stale hits. TTLs bound storage growth, not freshness.
//
// The key hierarchy mirrors the pipeline stages:
//   - NetworkKey: a loaded network, keyed by dataset fingerprint + network id
//   - SceneKey: a composed scene, keyed by network hash + layout/theme options
//   - ArtifactKey: a rendered artifact, keyed by scene hash + render options
//   - ReportKey: portfolio metrics, keyed by dataset fingerprint
//
// # Usage
//
// Create a cache and keyer:
//
//	c, err := cache.NewFileCache(dir)
//	if err != nil {
//	    return err
//	}
//	defer c.Close()
//	keyer := cache.NewDefaultKeyer()
//
//	key := keyer.SceneKey(networkHash, opts)
//	if data, hit, err := c.Get(ctx, key); err == nil && hit {
//	    // use cached scene
//	}
package cache

import (
	"context"
	"time"
)

// Cache is the interface for cache storage backends.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get retrieves a value. The second return value reports whether the
	// key was present; a miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with the given TTL. A non-positive TTL stores
	// the value without expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// TTLs per entry kind. Keys are content-addressed (see package doc), so these
// control how long unused entries occupy storage, not how long they stay
// correct.
const (
	// TTLNetwork is the lifetime of cached loaded networks.
	TTLNetwork = 24 * time.Hour

	// TTLScene is the lifetime of cached composed scenes.
	TTLScene = 24 * time.Hour

	// TTLArtifact is the lifetime of cached rendered artifacts. Artifacts
	// are the most expensive entries to rebuild, so they live longest.
	TTLArtifact = 7 * 24 * time.Hour

	// TTLReport is the lifetime of cached portfolio reports.
	TTLReport = 24 * time.Hour
)

// SceneKeyOpts captures every input besides the network rows that changes a
// composed scene: the band geometry and the active theme.
type SceneKeyOpts struct {
	GrantX     float64   `json:"grant_x"`
	FundedX    float64   `json:"funded_x"`
	EcosystemX float64   `json:"ecosystem_x"`
	PathwayX   float64   `json:"pathway_x"`
	TreatmentX float64   `json:"treatment_x"`
	EcoOffsets []float64 `json:"eco_offsets,omitempty"`
	VStep      float64   `json:"v_step"`

	// Theme is the fingerprint of the active theme, not its file path:
	// restyling a theme file must produce new keys.
	Theme string `json:"theme,omitempty"`
}

// ArtifactKeyOpts captures the render options that change an artifact built
// from an otherwise identical scene.
type ArtifactKeyOpts struct {
	Format     string  `json:"format"`
	Title      string  `json:"title,omitempty"`
	Scale      float64 `json:"scale,omitempty"`
	Labels     bool    `json:"labels,omitempty"`
	Background string  `json:"background,omitempty"`
	Detailed   bool    `json:"detailed,omitempty"`
}

// Keyer builds cache keys for pipeline stages.
type Keyer interface {
	// NetworkKey returns the key for a loaded network. The fingerprint is
	// the dataset fingerprint of the backing tables.
	NetworkKey(fingerprint string, networkID int) string

	// SceneKey returns the key for a composed scene. The networkHash is
	// the content hash of the serialized network.
	SceneKey(networkHash string, opts SceneKeyOpts) string

	// ArtifactKey returns the key for a rendered artifact. The sceneHash
	// is the content hash of the serialized scene.
	ArtifactKey(sceneHash string, opts ArtifactKeyOpts) string

	// ReportKey returns the key for portfolio metrics over the whole
	// dataset identified by fingerprint.
	ReportKey(fingerprint string) string
}

// DefaultKeyer is the standard key builder.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard key builder.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// NetworkKey generates a key for a loaded network.
func (k *DefaultKeyer) NetworkKey(fingerprint string, networkID int) string {
	return hashKey("network", fingerprint, networkID)
}

// SceneKey generates a key for a composed scene.
func (k *DefaultKeyer) SceneKey(networkHash string, opts SceneKeyOpts) string {
	return hashKey("scene", networkHash, opts)
}

// ArtifactKey generates a key for a rendered artifact.
func (k *DefaultKeyer) ArtifactKey(sceneHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", sceneHash, opts)
}

// ReportKey generates a key for portfolio metrics.
func (k *DefaultKeyer) ReportKey(fingerprint string) string {
	return hashKey("report", fingerprint)
}

// Ensure DefaultKeyer implements Keyer.
var _ Keyer = (*DefaultKeyer)(nil)
