package graph

// Load selects one network's rows out of the node and edge tables and
// validates referential integrity.
//
// Both tables are filtered by network id with row order preserved. Edges
// belonging to other networks are excluded before any integrity check, so a
// dangling reference in network 2 never fails a load of network 1.
//
// Load returns:
//   - [*EmptyNetworkError] if no node row carries the requested network id.
//     A network with nodes but no edges is valid (a lone grant is a network).
//   - [*IntegrityError] if any surviving edge references a node id outside
//     the surviving node set. All dangling references are collected in table
//     order before returning.
//
// The input slices are never mutated; the returned Network holds fresh
// copies of the matching rows.
func Load(nodes []Node, edges []Edge, networkID int) (*Network, error) {
	n := &Network{ID: networkID}

	ids := make(map[string]struct{})
	for _, node := range nodes {
		if node.NetworkID != networkID {
			continue
		}
		n.Nodes = append(n.Nodes, node)
		ids[node.ID] = struct{}{}
	}
	if len(n.Nodes) == 0 {
		return nil, &EmptyNetworkError{NetworkID: networkID}
	}

	var dangling []DanglingRef
	for _, edge := range edges {
		if edge.NetworkID != networkID {
			continue
		}
		idx := len(n.Edges)
		if _, ok := ids[edge.Source]; !ok {
			dangling = append(dangling, DanglingRef{EdgeIndex: idx, Endpoint: EndpointSource, NodeID: edge.Source})
		}
		if _, ok := ids[edge.Target]; !ok {
			dangling = append(dangling, DanglingRef{EdgeIndex: idx, Endpoint: EndpointTarget, NodeID: edge.Target})
		}
		n.Edges = append(n.Edges, edge)
	}
	if len(dangling) > 0 {
		return nil, &IntegrityError{NetworkID: networkID, Dangling: dangling}
	}

	return n, nil
}

// NetworkIDs returns the distinct network ids present in the node table,
// in first-appearance order.
func NetworkIDs(nodes []Node) []int {
	seen := make(map[int]struct{})
	var ids []int
	for _, n := range nodes {
		if _, ok := seen[n.NetworkID]; ok {
			continue
		}
		seen[n.NetworkID] = struct{}{}
		ids = append(ids, n.NetworkID)
	}
	return ids
}
