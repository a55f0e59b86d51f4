package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/impactgraph/impactgraph/pkg/gen"
)

// seedOpts holds the command-line flags for the seed command.
type seedOpts struct {
	data          string // target store locator
	seed          int64  // generator seed
	fundedPubs    int    // funded publications per grant
	ecosystemPubs int    // citation ecosystem size per network
	pathwayPubs   int    // pathway publications per finished network
}

// newSeedCmd creates the seed command for writing generated demo tables
// into a store.
func newSeedCmd() *cobra.Command {
	opts := seedOpts{seed: gen.DefaultSeed}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Write generated demo tables into a store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.data == "" || opts.data == demoLocator {
				return fmt.Errorf("seed needs a persistent store; pass --data with a CSV directory, SQLite file, or mongodb:// URI")
			}
			return runSeed(cmd.Context(), &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.data, "data", "d", "", "target store: CSV directory, SQLite file, or mongodb:// URI")
	cmd.Flags().Int64Var(&opts.seed, "seed", opts.seed, "generator seed")
	cmd.Flags().IntVar(&opts.fundedPubs, "funded-pubs", 0, "funded publications per grant (default 4)")
	cmd.Flags().IntVar(&opts.ecosystemPubs, "ecosystem-pubs", 0, "citation ecosystem size per network (default 25)")
	cmd.Flags().IntVar(&opts.pathwayPubs, "pathway-pubs", 0, "pathway publications per finished network (default 3)")

	return cmd
}

func runSeed(ctx context.Context, opts *seedOpts) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	tables, err := gen.Generate(gen.Options{
		Seed:          opts.seed,
		FundedPubs:    opts.fundedPubs,
		EcosystemPubs: opts.ecosystemPubs,
		PathwayPubs:   opts.pathwayPubs,
	})
	if err != nil {
		return err
	}

	st, err := openStore(ctx, opts.data)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.Replace(ctx, tables); err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Seeded %s", opts.data))

	printSuccess("Wrote %d nodes, %d edges, %d summaries",
		len(tables.Nodes), len(tables.Edges), len(tables.Summaries))
	for _, id := range tables.NetworkIDs() {
		if row, ok := tables.Summary(id); ok {
			printDetail("network %d: %s (%s)", id, row.Disease, row.TreatmentName)
		} else {
			printDetail("network %d", id)
		}
	}
	printNextStep("Render one", fmt.Sprintf("%s render --data %s --network %d", appName, opts.data, tables.NetworkIDs()[0]))
	return nil
}
