package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newTreeCmd implements "tree [rev]" (§4.5.6).
func newTreeCmd(f *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "tree [REV]",
		Short: "Print the dependency graph as a breadth-first ancestry listing",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inv, err := openInvocation(cmd, f)
			if err != nil {
				return err
			}

			rev := ""
			if len(args) == 1 {
				rev = args[0]
			}

			nodes, err := inv.Resolver.Tree(rev)
			if err != nil {
				return err
			}

			for _, n := range nodes {
				fmt.Fprintln(cmd.OutOrStdout(), n.String())
			}
			return nil
		},
	}
}
