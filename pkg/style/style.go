// Package style holds the static visual tables for research-impact scenes:
// marker color and size per node role, stroke color and width per edge kind.
//
// A [Theme] is immutable configuration. Lookups never fall back silently; a
// missing key is a [*LookupError] so a half-configured theme fails loudly at
// compose time instead of rendering a wrong picture.
//
// Themes load from TOML files (see [Load]) so deployments can restyle scenes
// without recompiling. [Default] returns the built-in tables.
package style

import (
	"fmt"

	"github.com/impactgraph/impactgraph/pkg/errors"
	"github.com/impactgraph/impactgraph/pkg/graph"
)

// Style table names used in lookup errors.
const (
	TableMarkers = "markers"
	TableStrokes = "strokes"
)

// Marker is the visual style of a node trace.
type Marker struct {
	Color string  `json:"color" toml:"color"`
	Size  float64 `json:"size" toml:"size"`
}

// Stroke is the visual style of an edge trace.
type Stroke struct {
	Color string  `json:"color" toml:"color"`
	Width float64 `json:"width" toml:"width"`
}

// Theme bundles the marker and stroke tables for one visual style.
// Construct with [Default] or [Load]; treat as immutable afterwards.
type Theme struct {
	Markers map[graph.Role]Marker     `json:"markers" toml:"markers"`
	Strokes map[graph.EdgeKind]Stroke `json:"strokes" toml:"strokes"`
}

// LookupError is returned when a role or edge kind has no entry in its
// style table. The error names the table and the missing key.
type LookupError struct {
	Table string // TableMarkers or TableStrokes
	Key   string // The role or kind that missed
}

// Error implements the error interface.
func (e *LookupError) Error() string {
	return fmt.Sprintf("style table %q: no entry for key %q", e.Table, e.Key)
}

// Code returns the error code for this error type.
func (e *LookupError) Code() errors.Code { return errors.ErrCodeStyleLookup }

// Marker returns the marker style for a role.
// A missing role is a *LookupError, never a default.
func (t Theme) Marker(role graph.Role) (Marker, error) {
	m, ok := t.Markers[role]
	if !ok {
		return Marker{}, &LookupError{Table: TableMarkers, Key: string(role)}
	}
	return m, nil
}

// Stroke returns the stroke style for an edge kind.
// A missing kind is a *LookupError, never a default.
func (t Theme) Stroke(kind graph.EdgeKind) (Stroke, error) {
	s, ok := t.Strokes[kind]
	if !ok {
		return Stroke{}, &LookupError{Table: TableStrokes, Key: string(kind)}
	}
	return s, nil
}

// Validate checks that the theme covers every known role and edge kind.
// Load calls this; call it yourself when building a Theme by hand.
func (t Theme) Validate() error {
	for _, role := range graph.Roles() {
		if _, ok := t.Markers[role]; !ok {
			return errors.New(errors.ErrCodeInvalidTheme, "markers table missing role %q", role)
		}
	}
	for _, kind := range graph.EdgeKinds() {
		if _, ok := t.Strokes[kind]; !ok {
			return errors.New(errors.ErrCodeInvalidTheme, "strokes table missing edge kind %q", kind)
		}
	}
	return nil
}

// Default returns the built-in theme.
// The returned maps are fresh on every call.
func Default() Theme {
	return Theme{
		Markers: map[graph.Role]Marker{
			graph.RoleGrant:            {Color: "#4299e1", Size: 30},
			graph.RoleGrantFundedPub:   {Color: "#718096", Size: 12},
			graph.RoleEcosystemPub:     {Color: "#718096", Size: 8},
			graph.RoleTreatmentPathPub: {Color: "#ed8936", Size: 15},
			graph.RoleTreatment:        {Color: "#38b2ac", Size: 35},
		},
		Strokes: map[graph.EdgeKind]Stroke{
			graph.KindFundedBy:         {Color: "rgba(74,85,104,0.8)", Width: 3},
			graph.KindCites:            {Color: "rgba(160,174,192,0.25)", Width: 0.8},
			graph.KindLeadsToTreatment: {Color: "rgba(99,179,237,0.9)", Width: 3},
			graph.KindEnablesTreatment: {Color: "rgba(56,178,172,0.8)", Width: 2},
		},
	}
}
