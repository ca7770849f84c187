package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newReleaseCmd implements "release rev" (§4.5.4).
func newReleaseCmd(f *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "release REV",
		Short: "Freeze the current HEAD dependency graph as a release snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inv, err := openInvocation(cmd, f)
			if err != nil {
				return err
			}

			if err := inv.Resolver.Release(inv.Path, args[0], f.message); err != nil {
				return err
			}

			if !f.quiet {
				fmt.Fprintf(cmd.OutOrStdout(), "released %s as %s\n", inv.Root, args[0])
			}
			return nil
		},
	}
}
