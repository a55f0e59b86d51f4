// Package report computes funding impact metrics across a dataset.
//
// The headline numbers treat the dataset as a portfolio: total funding
// across all grants, what a publication or an approved treatment cost
// on average, how long research took to reach approval, and what share
// of networks got there at all. Per-network rows break the same figures
// down and flag whether each network's pathway is complete.
package report

import (
	"context"

	"gonum.org/v1/gonum/stat"

	"github.com/impactgraph/impactgraph/pkg/graph"
	"github.com/impactgraph/impactgraph/pkg/scene"
	"github.com/impactgraph/impactgraph/pkg/store"
)

// Metrics is the portfolio-wide report.
type Metrics struct {
	TotalFunding        int64            `json:"total_funding"`
	TotalPublications   int              `json:"total_publications"`
	TotalTreatments     int              `json:"total_treatments"`
	CostPerPublication  float64          `json:"cost_per_publication"`
	CostPerTreatment    float64          `json:"cost_per_treatment"`
	AvgResearchDuration float64          `json:"avg_research_duration"`
	SuccessRate         float64          `json:"success_rate"`
	Networks            []NetworkMetrics `json:"networks"`
}

// NetworkMetrics is the per-network breakdown.
type NetworkMetrics struct {
	NetworkID        int    `json:"network_id"`
	Disease          string `json:"disease"`
	TreatmentName    string `json:"treatment_name,omitempty"`
	GrantID          string `json:"grant_id"`
	FundingAmount    int64  `json:"funding_amount"`
	Publications     int    `json:"publications"`
	ResearchDuration int    `json:"research_duration"`
	PathwayComplete  bool   `json:"pathway_complete"`
}

// Build computes metrics over the dataset. One row per summary-table
// entry; networks present in the node table but missing a summary row
// are not reported.
func Build(ctx context.Context, tables *store.Tables) (*Metrics, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m := &Metrics{}
	for i := range tables.Nodes {
		switch tables.Nodes[i].Role {
		case graph.RoleGrantFundedPub, graph.RoleEcosystemPub, graph.RoleTreatmentPathPub:
			m.TotalPublications++
		case graph.RoleTreatment:
			m.TotalTreatments++
		}
	}

	var durations []float64
	for _, row := range tables.Summaries {
		net, err := graph.Load(tables.Nodes, tables.Edges, row.NetworkID)
		if err != nil {
			return nil, err
		}
		summary := scene.Summarize(net)

		pubs := summary.CountsByRole[graph.RoleGrantFundedPub] +
			summary.CountsByRole[graph.RoleEcosystemPub] +
			summary.CountsByRole[graph.RoleTreatmentPathPub]

		m.TotalFunding += row.FundingAmount
		if row.ApprovalYear > 0 {
			durations = append(durations, float64(row.ResearchDuration))
		}

		m.Networks = append(m.Networks, NetworkMetrics{
			NetworkID:        row.NetworkID,
			Disease:          row.Disease,
			TreatmentName:    row.TreatmentName,
			GrantID:          row.GrantID,
			FundingAmount:    row.FundingAmount,
			Publications:     pubs,
			ResearchDuration: row.ResearchDuration,
			PathwayComplete:  summary.PathwayComplete,
		})
	}

	if m.TotalPublications > 0 {
		m.CostPerPublication = float64(m.TotalFunding) / float64(m.TotalPublications)
	}
	if m.TotalTreatments > 0 {
		m.CostPerTreatment = float64(m.TotalFunding) / float64(m.TotalTreatments)
	}
	if len(durations) > 0 {
		m.AvgResearchDuration = stat.Mean(durations, nil)
	}
	if n := len(tables.Summaries); n > 0 {
		m.SuccessRate = float64(m.TotalTreatments) / float64(n) * 100
	}
	return m, nil
}
