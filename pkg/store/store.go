// Package store persists the node, edge, and summary tables that back
// impact networks.
//
// A Store hands out complete tables; filtering a single network out of
// them is graph.Load's job. Implementations exist for in-memory use
// (Memory), CSV directories (CSV), SQLite (store/sqlite), and MongoDB
// (store/mongo).
//
// # Fingerprints
//
// Tables.Fingerprint returns a digest over every row. Downstream caches
// key derived artifacts by this digest, so any change to the tables
// invalidates everything computed from them.
package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/impactgraph/impactgraph/pkg/graph"
)

// =============================================================================
// Tables
// =============================================================================

// SummaryRow is one row of the network summary table: per-network grant
// and outcome metadata that never appears in the node or edge tables.
type SummaryRow struct {
	NetworkID         int    `json:"network_id" bson:"network_id"`
	Disease           string `json:"disease" bson:"disease"`
	TreatmentName     string `json:"treatment_name" bson:"treatment_name"`
	GrantID           string `json:"grant_id" bson:"grant_id"`
	GrantYear         int    `json:"grant_year" bson:"grant_year"`
	ApprovalYear      int    `json:"approval_year" bson:"approval_year"`
	FundingAmount     int64  `json:"funding_amount" bson:"funding_amount"`
	TotalPublications int    `json:"total_publications" bson:"total_publications"`
	ResearchDuration  int    `json:"research_duration" bson:"research_duration"`
}

// Tables is a complete dataset: every network's nodes, edges, and
// summary rows.
type Tables struct {
	Nodes     []graph.Node `json:"nodes"`
	Edges     []graph.Edge `json:"edges"`
	Summaries []SummaryRow `json:"summaries"`
}

// Fingerprint returns a SHA-256 digest over all rows. Two table sets
// have the same fingerprint iff they hold the same rows in the same
// order.
func (t *Tables) Fingerprint() string {
	data, _ := json.Marshal(t)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// NetworkIDs returns the distinct network ids in order of first
// appearance in the node table.
func (t *Tables) NetworkIDs() []int {
	return graph.NetworkIDs(t.Nodes)
}

// Summary returns the summary row for a network, if one exists.
func (t *Tables) Summary(networkID int) (SummaryRow, bool) {
	for _, row := range t.Summaries {
		if row.NetworkID == networkID {
			return row, true
		}
	}
	return SummaryRow{}, false
}

// =============================================================================
// Store
// =============================================================================

// Store is a backend holding the three tables.
//
// Tables returns the full dataset; Replace swaps it wholesale. Stores
// never enforce referential integrity between edges and nodes. That
// check belongs to graph.Load, which must be able to observe dangling
// references and report them.
type Store interface {
	// Tables reads the complete dataset.
	Tables(ctx context.Context) (*Tables, error)

	// Replace atomically replaces the dataset.
	Replace(ctx context.Context, t *Tables) error

	// Close releases backend resources.
	Close() error
}
