package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/longknot/git-pkgs/internal/pkgerrors"
)

// newConfigCmd is a supplemented command for reading and writing arbitrary
// manifest fields via internal/manifest.Get/Set, covering the "run: git
// pkgs config add name <name>" guidance named by ErrNoPkgName.
func newConfigCmd(f *globalFlags) *cobra.Command {
	root := &cobra.Command{
		Use:   "config",
		Short: "Read or write manifest fields (name, config.*, extra.*, scripts.*, engines.*)",
	}

	root.AddCommand(&cobra.Command{
		Use:   "get KEY",
		Short: "Print a manifest field",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inv, err := openInvocation(cmd, f)
			if err != nil {
				return err
			}
			v, ok := inv.Manifest.Get(args[0])
			if !ok {
				return fmt.Errorf("%w: %s is unset", pkgerrors.ErrBadArgs, args[0])
			}
			fmt.Fprintln(cmd.OutOrStdout(), v)
			return nil
		},
	})

	setRunE := func(cmd *cobra.Command, args []string) error {
		inv, err := openInvocation(cmd, f)
		if err != nil {
			return err
		}
		if err := inv.Manifest.Set(args[0], args[1]); err != nil {
			return err
		}
		return inv.saveManifest()
	}

	root.AddCommand(&cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Write a manifest field",
		Args:  cobra.ExactArgs(2),
		RunE:  setRunE,
	})
	root.AddCommand(&cobra.Command{
		Use:   "add KEY VALUE",
		Short: "Alias for set, matching the guidance printed by ErrNoPkgName",
		Args:  cobra.ExactArgs(2),
		RunE:  setRunE,
	})

	return root
}
