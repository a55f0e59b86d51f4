// Package layout positions the nodes of a research-impact network.
//
// The layout is closed-form: every role occupies a fixed vertical band at a
// configured X coordinate, and the nodes within a band spread symmetrically
// around y=0 in input order, first node on top. No iteration, no randomness;
// identical input always yields identical positions.
//
// # Geometry
//
// With [DefaultBands], a network reads left to right:
//
//	x=-5      x=-2.5     x≈0        x=3.5      x=6
//	grant  →  funded  →  citation → pathway →  treatment
//	          pubs       ecosystem  pubs
//
// Ecosystem publications additionally cycle through small X offsets so the
// citation cloud reads as a loose cluster instead of a vertical line.
package layout

import (
	"github.com/impactgraph/impactgraph/pkg/errors"
	"github.com/impactgraph/impactgraph/pkg/graph"
)

// PositionedNode is a network node with its computed coordinates.
type PositionedNode struct {
	graph.Node
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// Position assigns coordinates to every node of the network.
//
// Nodes are bucketed by role; within a band the k nodes spread symmetrically
// around zero with the configured vertical step:
//
//	y_i = ((k-1)/2 - i) * step
//
// so the per-band mean Y is exactly zero, a single node sits at y=0, and the
// first node in table order takes the topmost slot.
//
// The output preserves the network's node order. A node whose role has no
// configured band fails the whole layout with an UNKNOWN_ROLE error; there
// is no silent default position.
func Position(net *graph.Network, bands Bands) ([]PositionedNode, error) {
	if err := bands.Validate(); err != nil {
		return nil, err
	}

	// Count band occupancy first: the Y spread needs the final size of each
	// band before the first node can be placed.
	counts := make(map[graph.Role]int)
	for i := range net.Nodes {
		role := net.Nodes[i].Role
		if _, ok := bands.X[role]; !ok {
			return nil, errors.New(errors.ErrCodeUnknownRole,
				"node %s: no band configured for role %q", net.Nodes[i].ID, role)
		}
		counts[role]++
	}

	pos := make([]PositionedNode, len(net.Nodes))
	placed := make(map[graph.Role]int)
	for i, node := range net.Nodes {
		k := counts[node.Role]
		j := placed[node.Role]
		placed[node.Role]++

		pos[i] = PositionedNode{
			Node: node,
			X:    bands.xFor(node.Role, j),
			Y:    (float64(k-1)/2 - float64(j)) * bands.VStep,
		}
	}
	return pos, nil
}

// Bounds returns the bounding box of the positioned nodes as
// (minX, minY, maxX, maxY). Render sinks use it to size their canvas.
// Returns zeros for an empty slice.
func Bounds(pos []PositionedNode) (minX, minY, maxX, maxY float64) {
	if len(pos) == 0 {
		return 0, 0, 0, 0
	}
	minX, maxX = pos[0].X, pos[0].X
	minY, maxY = pos[0].Y, pos[0].Y
	for _, p := range pos[1:] {
		minX = min(minX, p.X)
		maxX = max(maxX, p.X)
		minY = min(minY, p.Y)
		maxY = max(maxY, p.Y)
	}
	return minX, minY, maxX, maxY
}
