package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/impactgraph/impactgraph/pkg/buildinfo"
)

// newVersionCmd creates the version command printing build information.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version, commit, and build date",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(buildinfo.String())
		},
	}
}
