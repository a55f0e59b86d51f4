// Package scene composes positioned research-impact networks into fully
// styled scene descriptions: one node trace per role, one edge trace per
// edge kind, plus summary metrics.
//
// A scene is the complete drawing instruction set for a network. Render
// sinks (figure JSON, SVG, DOT) consume scenes without touching the
// underlying tables, and the scene itself carries no behavior: it is plain
// data safe to serialize, cache, and ship to clients.
//
// # Trace Ordering
//
// Node traces appear in canonical role order (grant, funded publications,
// ecosystem, pathway publications, treatment). Edge traces appear in
// salience order, least salient first, so renderers that draw in slice
// order paint the treatment pathway on top of the citation haze:
//
//	cites < funded_by < enables_treatment < leads_to_treatment
package scene

import (
	"bytes"
	"encoding/json"
	"math"

	"github.com/impactgraph/impactgraph/pkg/graph"
	"github.com/impactgraph/impactgraph/pkg/style"
)

// Coords is a coordinate array using NaN as the separator between line
// segments, so one edge trace draws many disconnected segments.
//
// JSON marshaling converts NaN to null and back, matching the wire format
// plotting front ends expect for gap values.
type Coords []float64

// MarshalJSON encodes the coordinates with null in place of NaN.
func (c Coords) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, v := range c {
		if i > 0 {
			buf.WriteByte(',')
		}
		if math.IsNaN(v) {
			buf.WriteString("null")
			continue
		}
		num, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		buf.Write(num)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes null entries back to NaN.
func (c *Coords) UnmarshalJSON(data []byte) error {
	var raw []*float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Coords, len(raw))
	for i, v := range raw {
		if v == nil {
			out[i] = math.NaN()
		} else {
			out[i] = *v
		}
	}
	*c = out
	return nil
}

// NodeTrace groups all nodes of one role into a single drawable trace.
// The i-th entries of IDs, Labels, X, and Y describe the same node.
type NodeTrace struct {
	Role   graph.Role   `json:"role"`
	IDs    []string     `json:"ids"`
	Labels []string     `json:"labels"`
	X      Coords       `json:"x"`
	Y      Coords       `json:"y"`
	Marker style.Marker `json:"marker"`
}

// Len returns the number of nodes in the trace.
func (t *NodeTrace) Len() int { return len(t.IDs) }

// EdgeTrace groups all edges of one kind into a single drawable trace.
// Each edge contributes the triple (x0, x1, NaN) to X and (y0, y1, NaN)
// to Y, so the trace is a sequence of disconnected segments.
type EdgeTrace struct {
	Kind   graph.EdgeKind `json:"kind"`
	X      Coords         `json:"x"`
	Y      Coords         `json:"y"`
	Stroke style.Stroke   `json:"stroke"`
}

// Len returns the number of edge segments in the trace.
func (t *EdgeTrace) Len() int { return len(t.X) / 3 }

// Summary carries the computed metrics of a composed scene.
type Summary struct {
	NodeCount       int                    `json:"node_count"`
	EdgeCount       int                    `json:"edge_count"`
	CountsByRole    map[graph.Role]int     `json:"counts_by_role"`
	CountsByKind    map[graph.EdgeKind]int `json:"counts_by_kind"`
	PathwayComplete bool                   `json:"pathway_complete"`
}

// Scene is the fully positioned, fully styled description of one network.
type Scene struct {
	NetworkID  int         `json:"network_id"`
	NodeTraces []NodeTrace `json:"node_traces"`
	EdgeTraces []EdgeTrace `json:"edge_traces"`
	Summary    Summary     `json:"summary"`
}

// NodeTraceFor returns the node trace for a role, if present.
func (s *Scene) NodeTraceFor(role graph.Role) (*NodeTrace, bool) {
	for i := range s.NodeTraces {
		if s.NodeTraces[i].Role == role {
			return &s.NodeTraces[i], true
		}
	}
	return nil, false
}

// EdgeTraceFor returns the edge trace for an edge kind, if present.
func (s *Scene) EdgeTraceFor(kind graph.EdgeKind) (*EdgeTrace, bool) {
	for i := range s.EdgeTraces {
		if s.EdgeTraces[i].Kind == kind {
			return &s.EdgeTraces[i], true
		}
	}
	return nil, false
}

// Salience returns the edge kinds ordered least salient first. Renderers
// drawing traces in this order paint important edges last, on top.
func Salience() []graph.EdgeKind {
	return []graph.EdgeKind{
		graph.KindCites,
		graph.KindFundedBy,
		graph.KindEnablesTreatment,
		graph.KindLeadsToTreatment,
	}
}

// Marshal converts a Scene to JSON bytes.
func Marshal(s *Scene) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes a Scene from JSON bytes.
func Unmarshal(data []byte) (*Scene, error) {
	var s Scene
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}
