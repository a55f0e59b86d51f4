package scene

import (
	"math"

	"github.com/impactgraph/impactgraph/pkg/errors"
	"github.com/impactgraph/impactgraph/pkg/graph"
	"github.com/impactgraph/impactgraph/pkg/layout"
	"github.com/impactgraph/impactgraph/pkg/style"
)

// Compose builds the scene for a loaded, positioned network.
//
// Nodes group into one trace per role present, in canonical role order;
// within a trace, nodes keep their table order. Edges group into one trace
// per kind present, ordered by [Salience]. Styles come from the theme's
// tables; any role or kind without an entry fails the whole composition
// with a [*style.LookupError], never a silent default.
//
// Compose performs no I/O and never mutates its inputs. Identical inputs
// produce deeply equal scenes.
func Compose(net *graph.Network, pos []layout.PositionedNode, theme style.Theme) (*Scene, error) {
	if len(pos) != len(net.Nodes) {
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"positioned nodes (%d) do not cover network nodes (%d)", len(pos), len(net.Nodes))
	}

	coords := make(map[string][2]float64, len(pos))
	for _, p := range pos {
		coords[p.ID] = [2]float64{p.X, p.Y}
	}

	s := &Scene{NetworkID: net.ID}

	// Node traces in canonical role order.
	for _, role := range graph.Roles() {
		trace, err := nodeTrace(role, pos, theme)
		if err != nil {
			return nil, err
		}
		if trace != nil {
			s.NodeTraces = append(s.NodeTraces, *trace)
		}
	}

	// Edge traces in salience order, least salient first.
	for _, kind := range Salience() {
		trace, err := edgeTrace(kind, net.Edges, coords, theme)
		if err != nil {
			return nil, err
		}
		if trace != nil {
			s.EdgeTraces = append(s.EdgeTraces, *trace)
		}
	}

	s.Summary = Summarize(net)
	return s, nil
}

// nodeTrace collects the positioned nodes of one role.
// Returns nil if the role is absent from the network.
func nodeTrace(role graph.Role, pos []layout.PositionedNode, theme style.Theme) (*NodeTrace, error) {
	var trace *NodeTrace
	for i := range pos {
		if pos[i].Role != role {
			continue
		}
		if trace == nil {
			marker, err := theme.Marker(role)
			if err != nil {
				return nil, err
			}
			trace = &NodeTrace{Role: role, Marker: marker}
		}
		trace.IDs = append(trace.IDs, pos[i].ID)
		trace.Labels = append(trace.Labels, pos[i].DisplayLabel())
		trace.X = append(trace.X, pos[i].X)
		trace.Y = append(trace.Y, pos[i].Y)
	}
	return trace, nil
}

// edgeTrace collects the segments of one edge kind as (start, end, NaN)
// coordinate triples. Returns nil if the kind is absent from the network.
func edgeTrace(kind graph.EdgeKind, edges []graph.Edge, coords map[string][2]float64, theme style.Theme) (*EdgeTrace, error) {
	var trace *EdgeTrace
	for _, e := range edges {
		if e.Kind != kind {
			continue
		}
		src, ok := coords[e.Source]
		if !ok {
			return nil, errors.New(errors.ErrCodeInternal,
				"edge %s→%s: no position for source", e.Source, e.Target)
		}
		dst, ok := coords[e.Target]
		if !ok {
			return nil, errors.New(errors.ErrCodeInternal,
				"edge %s→%s: no position for target", e.Source, e.Target)
		}
		if trace == nil {
			stroke, err := theme.Stroke(kind)
			if err != nil {
				return nil, err
			}
			trace = &EdgeTrace{Kind: kind, Stroke: stroke}
		}
		trace.X = append(trace.X, src[0], dst[0], math.NaN())
		trace.Y = append(trace.Y, src[1], dst[1], math.NaN())
	}
	return trace, nil
}
