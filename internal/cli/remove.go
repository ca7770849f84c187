package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/longknot/git-pkgs/internal/pkgerrors"
)

// newRemoveCmd implements "remove pkg" (§4.5.2). PKG may also be supplied
// via --pkg-name, letting scripted callers that already hold the name in a
// flag (e.g. chained after show) skip re-quoting it positionally.
func newRemoveCmd(f *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "remove [PKG]",
		Short: "Remove a direct dependency and any transitive edges it alone provided",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inv, err := openInvocation(cmd, f)
			if err != nil {
				return err
			}

			pkg := f.pkgName
			if len(args) == 1 {
				pkg = args[0]
			}
			if pkg == "" {
				return fmt.Errorf("%w: remove requires a package name", pkgerrors.ErrBadArgs)
			}

			results, err := inv.Resolver.Remove(pkg, namespace(f))
			if err != nil {
				return err
			}

			if !f.quiet {
				for _, r := range results {
					fmt.Fprintln(cmd.OutOrStdout(), r.String())
				}
			}

			return inv.saveManifest()
		},
	}
}
