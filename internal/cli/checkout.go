package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/longknot/git-pkgs/internal/pkgerrors"
)

// newCheckoutCmd implements "checkout rev" (§4.5.5). REV may also be
// supplied via --pkg-revision.
func newCheckoutCmd(f *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "checkout [REV]",
		Short: "Switch the working tree to a release snapshot",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inv, err := openInvocation(cmd, f)
			if err != nil {
				return err
			}

			rev := f.pkgRevision
			if len(args) == 1 {
				rev = args[0]
			}
			if rev == "" {
				return fmt.Errorf("%w: checkout requires a revision", pkgerrors.ErrBadArgs)
			}

			if err := inv.Resolver.Checkout(rev); err != nil {
				return err
			}

			if !f.quiet {
				fmt.Fprintf(cmd.OutOrStdout(), "checked out %s\n", rev)
			}
			return nil
		},
	}
}
