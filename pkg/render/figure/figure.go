// Package figure serializes scenes as plotly-style figure documents.
//
// A figure is the JSON a plotly-compatible front end feeds straight to
// Plotly.newPlot: scatter traces under data, axis and chrome config
// under layout. Edge traces come first so markers draw on top of lines,
// and NaN segment separators appear as JSON nulls, which plotly treats
// as line breaks.
package figure

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/impactgraph/impactgraph/pkg/errors"
	"github.com/impactgraph/impactgraph/pkg/graph"
	"github.com/impactgraph/impactgraph/pkg/scene"
)

// =============================================================================
// Document Types
// =============================================================================

// Line is a plotly line style.
type Line struct {
	Width float64 `json:"width"`
	Color string  `json:"color"`
}

// Marker is a plotly marker style.
type Marker struct {
	Size  float64 `json:"size"`
	Color string  `json:"color"`
	Line  *Line   `json:"line,omitempty"`
}

// Trace is one plotly scatter trace.
type Trace struct {
	X          scene.Coords `json:"x"`
	Y          scene.Coords `json:"y"`
	Mode       string       `json:"mode"`
	Name       string       `json:"name,omitempty"`
	Text       []string     `json:"text,omitempty"`
	HoverInfo  string       `json:"hoverinfo,omitempty"`
	ShowLegend bool         `json:"showlegend"`
	Line       *Line        `json:"line,omitempty"`
	Marker     *Marker      `json:"marker,omitempty"`
}

// Title is the figure title block.
type Title struct {
	Text    string  `json:"text"`
	X       float64 `json:"x"`
	XAnchor string  `json:"xanchor"`
	Font    Font    `json:"font"`
}

// Font selects the title typeface.
type Font struct {
	Size   int    `json:"size,omitempty"`
	Color  string `json:"color,omitempty"`
	Family string `json:"family,omitempty"`
}

// Margin is the plot margin in pixels.
type Margin struct {
	B int `json:"b"`
	L int `json:"l"`
	R int `json:"r"`
	T int `json:"t"`
}

// Axis configures one plot axis.
type Axis struct {
	ShowGrid       bool        `json:"showgrid"`
	ZeroLine       bool        `json:"zeroline"`
	ShowTickLabels bool        `json:"showticklabels"`
	Range          *[2]float64 `json:"range,omitempty"`
}

// Legend configures the trace legend.
type Legend struct {
	YAnchor     string  `json:"yanchor"`
	Y           float64 `json:"y"`
	XAnchor     string  `json:"xanchor"`
	X           float64 `json:"x"`
	BGColor     string  `json:"bgcolor"`
	BorderColor string  `json:"bordercolor"`
	BorderWidth int     `json:"borderwidth"`
	Font        Font    `json:"font"`
}

// Layout is the plotly layout block.
type Layout struct {
	Title        Title  `json:"title"`
	ShowLegend   bool   `json:"showlegend"`
	HoverMode    string `json:"hovermode"`
	Margin       Margin `json:"margin"`
	XAxis        Axis   `json:"xaxis"`
	YAxis        Axis   `json:"yaxis"`
	Height       int    `json:"height"`
	PlotBGColor  string `json:"plot_bgcolor"`
	PaperBGColor string `json:"paper_bgcolor"`
	Font         Font   `json:"font"`
	Legend       Legend `json:"legend"`
}

// Figure is a complete plotly figure document.
type Figure struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

// =============================================================================
// Display Vocabulary
// =============================================================================

var roleNames = map[graph.Role]string{
	graph.RoleGrant:            "Research Grant",
	graph.RoleGrantFundedPub:   "Grant-Funded Research",
	graph.RoleEcosystemPub:     "Research Ecosystem",
	graph.RoleTreatmentPathPub: "Treatment Development",
	graph.RoleTreatment:        "Approved Treatment",
}

var roleBlurbs = map[graph.Role]string{
	graph.RoleGrant:            "Funding Source",
	graph.RoleGrantFundedPub:   "Direct Impact",
	graph.RoleEcosystemPub:     "Supporting Literature",
	graph.RoleTreatmentPathPub: "Research Papers",
	graph.RoleTreatment:        "Clinical Application",
}

// kindNames holds legend labels for edge kinds. Citation edges stay out
// of the legend; an empty name marks that.
var kindNames = map[graph.EdgeKind]string{
	graph.KindFundedBy:         "Grant Funding",
	graph.KindCites:            "",
	graph.KindLeadsToTreatment: "Research Impact Pathway",
	graph.KindEnablesTreatment: "Treatment Development",
}

// markerOutlines gives each role's marker its rim. Ecosystem markers get
// a hairline so they recede; everything else gets the standard light rim.
var markerOutlines = map[graph.Role]Line{
	graph.RoleGrant:            {Width: 2, Color: "#e2e8f0"},
	graph.RoleGrantFundedPub:   {Width: 1, Color: "#e2e8f0"},
	graph.RoleEcosystemPub:     {Width: 0.5, Color: "#a0aec0"},
	graph.RoleTreatmentPathPub: {Width: 2, Color: "#e2e8f0"},
	graph.RoleTreatment:        {Width: 2, Color: "#e2e8f0"},
}

// =============================================================================
// Building
// =============================================================================

// Option configures figure building via [Build].
type Option func(*builder)

type builder struct {
	title  string
	height int
	xRange [2]float64
	yRange [2]float64
}

// WithTitle overrides the default "Research Impact Network - Network N"
// title.
func WithTitle(title string) Option { return func(b *builder) { b.title = title } }

// WithHeight sets the plot height in pixels.
func WithHeight(px int) Option { return func(b *builder) { b.height = px } }

// WithXRange sets the x axis range.
func WithXRange(lo, hi float64) Option { return func(b *builder) { b.xRange = [2]float64{lo, hi} } }

// WithYRange sets the y axis range.
func WithYRange(lo, hi float64) Option { return func(b *builder) { b.yRange = [2]float64{lo, hi} } }

// Build converts a composed scene into a figure document.
func Build(s *scene.Scene, opts ...Option) (*Figure, error) {
	if s == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "nil scene")
	}

	b := builder{
		title:  fmt.Sprintf("Research Impact Network - Network %d", s.NetworkID),
		height: 600,
		xRange: [2]float64{-6, 7},
		yRange: [2]float64{-3, 3},
	}
	for _, opt := range opts {
		opt(&b)
	}

	fig := &Figure{Layout: b.layout()}

	for _, tr := range s.EdgeTraces {
		name := kindNames[tr.Kind]
		fig.Data = append(fig.Data, Trace{
			X:          tr.X,
			Y:          tr.Y,
			Mode:       "lines",
			Name:       name,
			HoverInfo:  "none",
			ShowLegend: name != "",
			Line:       &Line{Width: tr.Stroke.Width, Color: tr.Stroke.Color},
		})
	}

	for _, tr := range s.NodeTraces {
		text := make([]string, len(tr.IDs))
		for i := range tr.IDs {
			label := tr.Labels[i]
			if label == "" {
				label = tr.IDs[i]
			}
			text[i] = label + "<br>" + roleBlurbs[tr.Role]
		}

		marker := &Marker{
			Size:  tr.Marker.Size,
			Color: tr.Marker.Color,
		}
		if outline, ok := markerOutlines[tr.Role]; ok {
			marker.Line = &outline
		}

		fig.Data = append(fig.Data, Trace{
			X:          tr.X,
			Y:          tr.Y,
			Mode:       "markers",
			Name:       roleNames[tr.Role],
			Text:       text,
			HoverInfo:  "text",
			ShowLegend: true,
			Marker:     marker,
		})
	}

	return fig, nil
}

func (b *builder) layout() Layout {
	xRange, yRange := b.xRange, b.yRange
	return Layout{
		Title: Title{
			Text:    b.title,
			X:       0.5,
			XAnchor: "center",
			Font:    Font{Size: 20, Color: "#e2e8f0", Family: "Inter, sans-serif"},
		},
		ShowLegend: true,
		HoverMode:  "closest",
		Margin:     Margin{B: 40, L: 40, R: 40, T: 70},
		XAxis:      Axis{Range: &xRange},
		YAxis:      Axis{Range: &yRange},
		Height:     b.height,
		// Transparent backgrounds so the page theme shows through.
		PlotBGColor:  "rgba(14, 17, 23, 0)",
		PaperBGColor: "rgba(14, 17, 23, 0)",
		Font:         Font{Color: "#e2e8f0"},
		Legend: Legend{
			YAnchor:     "top",
			Y:           0.98,
			XAnchor:     "left",
			X:           0.02,
			BGColor:     "rgba(45, 55, 72, 0.9)",
			BorderColor: "rgba(74, 85, 104, 0.5)",
			BorderWidth: 1,
			Font:        Font{Size: 11, Color: "#e2e8f0"},
		},
	}
}

// Marshal encodes the figure as indented JSON.
func Marshal(f *Figure) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(f); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode figure")
	}
	return buf.Bytes(), nil
}
