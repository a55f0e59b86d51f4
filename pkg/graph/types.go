package graph

import "strings"

// =============================================================================
// Constants - Single Source of Truth
// =============================================================================

// Role classifies a node within a research-impact network.
type Role string

// Node roles.
const (
	RoleGrant            Role = "grant"
	RoleGrantFundedPub   Role = "grant_funded_pub"
	RoleEcosystemPub     Role = "ecosystem_pub"
	RoleTreatmentPathPub Role = "treatment_pathway_pub"
	RoleTreatment        Role = "treatment"
)

// EdgeKind classifies a directed edge within a research-impact network.
type EdgeKind string

// Edge kinds.
const (
	KindFundedBy         EdgeKind = "funded_by"
	KindCites            EdgeKind = "cites"
	KindLeadsToTreatment EdgeKind = "leads_to_treatment"
	KindEnablesTreatment EdgeKind = "enables_treatment"
)

// Node ID prefixes used by the data generators and role inference.
// Order matters for inference: longer prefixes are checked before their
// shorter siblings (TREAT_PUB_ before TREAT_).
const (
	PrefixGrant            = "GRANT_"
	PrefixGrantFundedPub   = "PUB_"
	PrefixEcosystemPub     = "ECO_"
	PrefixTreatmentPathPub = "TREAT_PUB_"
	PrefixTreatment        = "TREAT_"
)

// Roles returns all node roles in canonical display order:
// funding flows left to right, from grant to treatment.
func Roles() []Role {
	return []Role{
		RoleGrant,
		RoleGrantFundedPub,
		RoleEcosystemPub,
		RoleTreatmentPathPub,
		RoleTreatment,
	}
}

// EdgeKinds returns all edge kinds in declaration order.
func EdgeKinds() []EdgeKind {
	return []EdgeKind{
		KindFundedBy,
		KindCites,
		KindLeadsToTreatment,
		KindEnablesTreatment,
	}
}

// ValidRole reports whether r is a known node role.
func ValidRole(r Role) bool {
	switch r {
	case RoleGrant, RoleGrantFundedPub, RoleEcosystemPub, RoleTreatmentPathPub, RoleTreatment:
		return true
	}
	return false
}

// ValidKind reports whether k is a known edge kind.
func ValidKind(k EdgeKind) bool {
	switch k {
	case KindFundedBy, KindCites, KindLeadsToTreatment, KindEnablesTreatment:
		return true
	}
	return false
}

// RoleFromID infers a node's role from its ID prefix.
// Returns false if the ID matches no known prefix. Table imports use this
// when the role column is absent; explicitly stored roles always win.
func RoleFromID(id string) (Role, bool) {
	switch {
	case strings.HasPrefix(id, PrefixTreatmentPathPub):
		return RoleTreatmentPathPub, true
	case strings.HasPrefix(id, PrefixTreatment):
		return RoleTreatment, true
	case strings.HasPrefix(id, PrefixGrant):
		return RoleGrant, true
	case strings.HasPrefix(id, PrefixGrantFundedPub):
		return RoleGrantFundedPub, true
	case strings.HasPrefix(id, PrefixEcosystemPub):
		return RoleEcosystemPub, true
	}
	return "", false
}

// =============================================================================
// Node - Network Table Row
// =============================================================================

// Node is one row of the node table.
// Used for loading, serialization, and storage.
type Node struct {
	ID        string            `json:"id" bson:"id"`
	NetworkID int               `json:"network_id" bson:"network_id"`
	Role      Role              `json:"role" bson:"role"`
	Label     string            `json:"label,omitempty" bson:"label,omitempty"` // Display label (defaults to ID)
	Meta      map[string]string `json:"meta,omitempty" bson:"meta,omitempty"`
}

// DisplayLabel returns the label if set, otherwise the ID.
func (n *Node) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// =============================================================================
// Edge - Directed Relation Row
// =============================================================================

// Edge is one row of the edge table: a directed relation between two nodes.
type Edge struct {
	Source    string   `json:"source" bson:"source"`
	Target    string   `json:"target" bson:"target"`
	NetworkID int      `json:"network_id" bson:"network_id"`
	Kind      EdgeKind `json:"kind" bson:"kind"`
}

// =============================================================================
// Network - One Loaded Network
// =============================================================================

// Network is the validated result of loading one network's rows out of the
// node and edge tables. Row order matches the input tables, which downstream
// stages rely on for deterministic output.
type Network struct {
	ID    int    `json:"id" bson:"id"`
	Nodes []Node `json:"nodes" bson:"nodes"`
	Edges []Edge `json:"edges" bson:"edges"`
}

// NodeCount returns the number of nodes in the network.
func (n *Network) NodeCount() int { return len(n.Nodes) }

// EdgeCount returns the number of edges in the network.
func (n *Network) EdgeCount() int { return len(n.Edges) }

// Node returns the node with the given ID, if present.
func (n *Network) Node(id string) (*Node, bool) {
	for i := range n.Nodes {
		if n.Nodes[i].ID == id {
			return &n.Nodes[i], true
		}
	}
	return nil, false
}
