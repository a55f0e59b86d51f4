package pipeline

import (
	"encoding/json"
	"fmt"

	"github.com/impactgraph/impactgraph/pkg/cache"
	"github.com/impactgraph/impactgraph/pkg/graph"
	"github.com/impactgraph/impactgraph/pkg/layout"
	"github.com/impactgraph/impactgraph/pkg/scene"
	"github.com/impactgraph/impactgraph/pkg/store"
	"github.com/impactgraph/impactgraph/pkg/style"
)

// LoadNetwork selects one validated network out of the table snapshot.
func LoadNetwork(tables *store.Tables, opts Options) (*graph.Network, error) {
	return graph.Load(tables.Nodes, tables.Edges, opts.NetworkID)
}

// ComposeScene positions one network on its role bands and assembles the
// styled scene. Layout and composition always run together: positions are
// meaningless on their own and cheap to recompute.
func ComposeScene(net *graph.Network, theme style.Theme, opts Options) (*scene.Scene, error) {
	bands := opts.Bands()
	if err := bands.Validate(); err != nil {
		return nil, err
	}
	pos, err := layout.Position(net, bands)
	if err != nil {
		return nil, err
	}
	return scene.Compose(net, pos, theme)
}

// LoadTheme resolves the active theme: the TOML file at opts.ThemePath, or
// the built-in theme when unset. The second return value is the theme
// fingerprint used in scene cache keys, so restyling a theme file
// invalidates scenes composed under the old styling.
func LoadTheme(opts Options) (style.Theme, string, error) {
	theme := style.Default()
	if opts.ThemePath != "" {
		t, err := style.Load(opts.ThemePath)
		if err != nil {
			return style.Theme{}, "", fmt.Errorf("load theme %s: %w", opts.ThemePath, err)
		}
		theme = t
	}
	// Map keys marshal in sorted order, so the fingerprint is stable.
	data, err := json.Marshal(theme)
	if err != nil {
		return style.Theme{}, "", fmt.Errorf("fingerprint theme: %w", err)
	}
	return theme, cache.Hash(data), nil
}
