package scene

import (
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/impactgraph/impactgraph/pkg/graph"
)

// Summarize computes the summary metrics for a loaded network without
// building traces. Compose attaches the same summary to its scene.
//
// PathwayComplete means the funding actually reached an approved treatment:
// the network carries at least one pathway edge (leads_to_treatment or
// enables_treatment), and some treatment node shares an undirected connected
// component with a grant-funded publication when all edges count as
// connections. Citation edges alone can bridge the two, which is the point:
// completeness asks whether a path of any kind links the money to the
// medicine.
func Summarize(net *graph.Network) Summary {
	s := Summary{
		NodeCount:    net.NodeCount(),
		EdgeCount:    net.EdgeCount(),
		CountsByRole: make(map[graph.Role]int),
		CountsByKind: make(map[graph.EdgeKind]int),
	}

	for i := range net.Nodes {
		s.CountsByRole[net.Nodes[i].Role]++
	}
	hasPathwayEdge := false
	for i := range net.Edges {
		s.CountsByKind[net.Edges[i].Kind]++
		switch net.Edges[i].Kind {
		case graph.KindLeadsToTreatment, graph.KindEnablesTreatment:
			hasPathwayEdge = true
		}
	}

	s.PathwayComplete = hasPathwayEdge && treatmentReachesFunding(net)
	return s
}

// treatmentReachesFunding reports whether any treatment node shares an
// undirected connected component with a grant-funded publication.
func treatmentReachesFunding(net *graph.Network) bool {
	g := simple.NewUndirectedGraph()

	ids := make(map[string]int64, len(net.Nodes))
	roles := make(map[int64]graph.Role, len(net.Nodes))
	for i := range net.Nodes {
		id := int64(i)
		ids[net.Nodes[i].ID] = id
		roles[id] = net.Nodes[i].Role
		g.AddNode(simple.Node(id))
	}

	for i := range net.Edges {
		src, ok := ids[net.Edges[i].Source]
		if !ok {
			continue
		}
		dst, ok := ids[net.Edges[i].Target]
		if !ok || src == dst {
			continue
		}
		g.SetEdge(simple.Edge{F: simple.Node(src), T: simple.Node(dst)})
	}

	for _, component := range topo.ConnectedComponents(g) {
		hasTreatment, hasFundedPub := false, false
		for _, n := range component {
			switch roles[n.ID()] {
			case graph.RoleTreatment:
				hasTreatment = true
			case graph.RoleGrantFundedPub:
				hasFundedPub = true
			}
		}
		if hasTreatment && hasFundedPub {
			return true
		}
	}
	return false
}
