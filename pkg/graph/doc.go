// Package graph defines the node and edge tables of research-impact networks
// and the loader that selects one validated network out of them.
//
// # Data Model
//
// A network describes how a funding grant ripples through the research
// ecosystem: the grant funds publications, publications accumulate citations,
// and some publication chains lead to an approved treatment. Nodes carry a
// [Role] (grant, grant_funded_pub, ecosystem_pub, treatment_pathway_pub,
// treatment) and edges carry an [EdgeKind] (funded_by, cites,
// leads_to_treatment, enables_treatment).
//
// Many networks share the node and edge tables; every row carries a network
// id. [Load] filters both tables down to one network and validates that no
// surviving edge references a node outside the surviving node set.
//
// # Loading
//
//	net, err := graph.Load(nodes, edges, 1)
//	if err != nil {
//	    var empty *graph.EmptyNetworkError
//	    var integrity *graph.IntegrityError
//	    switch {
//	    case errors.As(err, &empty):
//	        // Unknown network id
//	    case errors.As(err, &integrity):
//	        // Dangling edge references, all listed in integrity.Dangling
//	    }
//	}
//
// # Serialization
//
// Networks round-trip through a simple JSON format with row order preserved:
//
//	net, _ := graph.ReadNetworkFile("network.json")   // File → Network
//	graph.WriteNetworkFile(net, "output.json")        // Network → File
//	data, _ := graph.MarshalNetwork(net)              // Network → []byte
//
// # Concurrency
//
// Load is a pure function: it never mutates its inputs and returns fresh
// slices, so concurrent loads over shared tables are safe.
package graph
