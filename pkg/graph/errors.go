package graph

import (
	"fmt"
	"strings"

	"github.com/impactgraph/impactgraph/pkg/errors"
)

// Endpoint names for dangling references.
const (
	EndpointSource = "source"
	EndpointTarget = "target"
)

// EmptyNetworkError is returned by [Load] when the requested network id
// matches no rows in the node table.
//
// Use errors.As to distinguish it from other failures:
//
//	_, err := graph.Load(nodes, edges, 99)
//	var empty *graph.EmptyNetworkError
//	if errors.As(err, &empty) {
//	    // Unknown network id
//	}
type EmptyNetworkError struct {
	NetworkID int
}

// Error implements the error interface.
func (e *EmptyNetworkError) Error() string {
	return fmt.Sprintf("network %d: no nodes in table", e.NetworkID)
}

// Code returns the error code for this error type.
func (e *EmptyNetworkError) Code() errors.Code { return errors.ErrCodeEmptyNetwork }

// DanglingRef identifies one edge endpoint that references a node id absent
// from the network's node set.
type DanglingRef struct {
	EdgeIndex int    // Index of the edge within the network's edge rows
	Endpoint  string // EndpointSource or EndpointTarget
	NodeID    string // The missing node id
}

// String formats the reference as "edge 3 target TREAT_X".
func (d DanglingRef) String() string {
	return fmt.Sprintf("edge %d %s %s", d.EdgeIndex, d.Endpoint, d.NodeID)
}

// IntegrityError is returned by [Load] when edges of the requested network
// reference node ids that are not part of that network. It aggregates every
// dangling reference in table order, so one load reports all violations at
// once rather than failing on the first.
type IntegrityError struct {
	NetworkID int
	Dangling  []DanglingRef
}

// Error implements the error interface.
func (e *IntegrityError) Error() string {
	refs := make([]string, len(e.Dangling))
	for i, d := range e.Dangling {
		refs[i] = d.String()
	}
	return fmt.Sprintf("network %d: %d dangling edge reference(s): %s",
		e.NetworkID, len(e.Dangling), strings.Join(refs, "; "))
}

// Code returns the error code for this error type.
func (e *IntegrityError) Code() errors.Code { return errors.ErrCodeIntegrity }
