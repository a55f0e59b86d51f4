package cache

// ScopedKeyer wraps a Keyer with a prefix for namespace isolation.
// This keeps caches shared by several deployments (one Redis instance,
// several datasets) from colliding.
//
// Example usage:
//
//	// Per-dataset keys when one Redis serves several stores
//	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), "trials:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// NetworkKey generates a prefixed key for a loaded network.
func (k *ScopedKeyer) NetworkKey(fingerprint string, networkID int) string {
	return k.prefix + k.inner.NetworkKey(fingerprint, networkID)
}

// SceneKey generates a prefixed key for a composed scene.
func (k *ScopedKeyer) SceneKey(networkHash string, opts SceneKeyOpts) string {
	return k.prefix + k.inner.SceneKey(networkHash, opts)
}

// ArtifactKey generates a prefixed key for a rendered artifact.
func (k *ScopedKeyer) ArtifactKey(sceneHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(sceneHash, opts)
}

// ReportKey generates a prefixed key for portfolio metrics.
func (k *ScopedKeyer) ReportKey(fingerprint string) string {
	return k.prefix + k.inner.ReportKey(fingerprint)
}

// Ensure ScopedKeyer implements Keyer.
var _ Keyer = (*ScopedKeyer)(nil)
