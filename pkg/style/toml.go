package style

import (
	"os"

	"github.com/BurntSushi/toml"

	"github.com/impactgraph/impactgraph/pkg/errors"
	"github.com/impactgraph/impactgraph/pkg/graph"
)

// themeFile is the on-disk TOML shape of a theme.
//
//	[markers.grant]
//	color = "#4299e1"
//	size = 30
//
//	[strokes.funded_by]
//	color = "rgba(74,85,104,0.8)"
//	width = 3
type themeFile struct {
	Markers map[string]Marker `toml:"markers"`
	Strokes map[string]Stroke `toml:"strokes"`
}

// Load reads a theme from a TOML file and validates it.
// The file must cover every known role and edge kind; unknown keys are
// rejected so typos fail at load time.
func Load(path string) (Theme, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Theme{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "read theme %s", path)
	}
	return Parse(data)
}

// Parse decodes and validates a theme from TOML bytes.
func Parse(data []byte) (Theme, error) {
	var file themeFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return Theme{}, errors.Wrap(errors.ErrCodeInvalidTheme, err, "decode theme")
	}

	t := Theme{
		Markers: make(map[graph.Role]Marker, len(file.Markers)),
		Strokes: make(map[graph.EdgeKind]Stroke, len(file.Strokes)),
	}
	for key, m := range file.Markers {
		role := graph.Role(key)
		if !graph.ValidRole(role) {
			return Theme{}, errors.New(errors.ErrCodeInvalidTheme, "markers table: unknown role %q", key)
		}
		t.Markers[role] = m
	}
	for key, s := range file.Strokes {
		kind := graph.EdgeKind(key)
		if !graph.ValidKind(kind) {
			return Theme{}, errors.New(errors.ErrCodeInvalidTheme, "strokes table: unknown edge kind %q", key)
		}
		t.Strokes[kind] = s
	}

	if err := t.Validate(); err != nil {
		return Theme{}, err
	}
	return t, nil
}
