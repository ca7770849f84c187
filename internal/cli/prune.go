package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/longknot/git-pkgs/internal/refs"
)

// newPruneCmd is a supplemented command: delete every refs/pkgs/<pkg>/...
// ref whose package is not named anywhere in the dependency tree walked
// from HEAD. The root's own refs are never deleted, and no worktree
// directories are removed. Unlike remove, prune never touches the
// manifest — it only deletes refs.
func newPruneCmd(f *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Delete dependency namespaces no longer reachable from HEAD",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			inv, err := openInvocation(cmd, f)
			if err != nil {
				return err
			}

			live := map[string]bool{inv.Root: true}
			nodes, err := inv.Resolver.Tree("HEAD")
			if err != nil {
				return err
			}
			for _, n := range nodes {
				live[n.Name] = true
			}

			entries, err := inv.Adapter.ListRefs(refs.Root + "/")
			if err != nil {
				return err
			}

			removed := 0
			for _, e := range entries {
				p, err := refs.Parse(e.Name.String())
				if err != nil {
					continue
				}
				if p.Owner == inv.Root {
					continue // the root's own HEAD/* and <rev>/* namespaces are never pruned
				}
				if live[p.Owner] {
					continue
				}
				if err := inv.Adapter.DeleteRef(e.Name); err != nil {
					return fmt.Errorf("pruning %s: %w", e.Name, err)
				}
				removed++
			}

			if !f.quiet {
				fmt.Fprintf(cmd.OutOrStdout(), "pruned %d unreachable ref(s)\n", removed)
			}
			return nil
		},
	}
}
