package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/impactgraph/impactgraph/pkg/report"
)

// newStatsCmd creates the stats command printing portfolio metrics.
func newStatsCmd() *cobra.Command {
	var data string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print per-network summaries and portfolio metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(cmd.Context(), data)
		},
	}

	cmd.Flags().StringVarP(&data, "data", "d", demoLocator, "store locator: demo, CSV directory, SQLite file, or mongodb:// URI")

	return cmd
}

func runStats(ctx context.Context, data string) error {
	st, err := openStore(ctx, data)
	if err != nil {
		return err
	}
	defer st.Close()

	tables, err := st.Tables(ctx)
	if err != nil {
		return err
	}
	metrics, err := report.Build(ctx, tables)
	if err != nil {
		return err
	}

	fmt.Println(StyleTitle.Render("Research Impact Portfolio"))
	printNewline()

	for _, n := range metrics.Networks {
		name := fmt.Sprintf("Network %d: %s", n.NetworkID, n.Disease)
		fmt.Println(StyleHighlight.Render(name))
		if n.TreatmentName != "" {
			printKeyValue("treatment", n.TreatmentName)
		}
		printKeyValue("grant", n.GrantID)
		printKeyValue("funding", formatMoney(n.FundingAmount))
		printKeyValue("pubs", fmt.Sprintf("%d", n.Publications))
		printKeyValue("duration", fmt.Sprintf("%d years", n.ResearchDuration))
		printKeyValue("pathway", pathwayStatus(n.PathwayComplete))
		printNewline()
	}

	fmt.Println(StyleTitle.Render("Portfolio"))
	printKeyValue("funding", formatMoney(metrics.TotalFunding))
	printKeyValue("pubs", fmt.Sprintf("%d", metrics.TotalPublications))
	printKeyValue("treatments", fmt.Sprintf("%d", metrics.TotalTreatments))
	printKeyValue("cost/pub", formatMoney(int64(metrics.CostPerPublication)))
	if metrics.TotalTreatments > 0 {
		printKeyValue("cost/treat", formatMoney(int64(metrics.CostPerTreatment)))
	}
	printKeyValue("success", fmt.Sprintf("%.0f%%", metrics.SuccessRate))
	printKeyValue("avg years", fmt.Sprintf("%.1f", metrics.AvgResearchDuration))
	return nil
}

// formatMoney renders a dollar amount compactly ($2.5M, $850K, $120).
func formatMoney(amount int64) string {
	switch {
	case amount >= 1_000_000:
		return fmt.Sprintf("$%.1fM", float64(amount)/1_000_000)
	case amount >= 1_000:
		return fmt.Sprintf("$%.0fK", float64(amount)/1_000)
	default:
		return fmt.Sprintf("$%d", amount)
	}
}

func pathwayStatus(complete bool) string {
	if complete {
		return StyleSuccess.Render("complete")
	}
	return StyleWarning.Render("in progress")
}
