package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/longknot/git-pkgs/internal/manifest"
	"github.com/longknot/git-pkgs/internal/refs"
	"github.com/longknot/git-pkgs/internal/store"
	"github.com/longknot/git-pkgs/internal/versionsort"
)

// newStatusCmd implements "status" (§4.5.7): a projection over the
// manifest's direct dependencies against what is actually installed at
// HEAD, flagging any that have drifted.
func newStatusCmd(f *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show direct dependencies and whether HEAD matches the manifest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			inv, err := openInvocation(cmd, f)
			if err != nil {
				return err
			}

			keys := make([]string, 0, len(inv.Manifest.Dependencies))
			for k := range inv.Manifest.Dependencies {
				keys = append(keys, k)
			}
			sort.Strings(keys)

			for _, key := range keys {
				name, ns := manifest.SplitDepKey(key)
				wantRev := inv.Manifest.Dependencies[key]

				headRef := refs.RootHead(inv.Root, name, refs.Namespace(ns))
				hash, ok, err := inv.Adapter.Resolve(headRef.Name())
				if err != nil {
					return err
				}

				state := "missing"
				if ok {
					trailers, err := inv.Adapter.ReadTrailers(hash, []string{store.TrailerRevision})
					if err != nil {
						return err
					}
					if trailers[store.TrailerRevision] == wantRev {
						state = "up to date"
					} else {
						state = fmt.Sprintf("drifted (have %s)", trailers[store.TrailerRevision])
					}
				}

				fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %s\n", key, wantRev, state)
			}
			return nil
		},
	}
}

// newShowCmd implements "show" (§4.5.7): print a node's full provenance.
func newShowCmd(f *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show [PKG]",
		Short: "Show provenance for the root package or one of its dependencies",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inv, err := openInvocation(cmd, f)
			if err != nil {
				return err
			}

			name := inv.Root
			if len(args) == 1 {
				name = args[0]
			}

			headRef := refs.RootHead(inv.Root, name, "")
			hash, ok, err := inv.Adapter.Resolve(headRef.Name())
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: not installed\n", name)
				return nil
			}

			trailers, err := inv.Adapter.ReadTrailers(hash, nil)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "name: %s\n", trailers[store.TrailerName])
			fmt.Fprintf(cmd.OutOrStdout(), "revision: %s\n", trailers[store.TrailerRevision])
			fmt.Fprintf(cmd.OutOrStdout(), "type: %s\n", trailers[store.TrailerType])
			fmt.Fprintf(cmd.OutOrStdout(), "url: %s\n", trailers[store.TrailerURL])
			fmt.Fprintf(cmd.OutOrStdout(), "origin commit: %s\n", trailers[store.TrailerCommit])
			fmt.Fprintf(cmd.OutOrStdout(), "snapshot: %s\n", hash.String())
			return nil
		},
	}
}

// newLsReleasesCmd is a supplemented command enumerating every release
// revision frozen under refs/pkgs/<R>/*, distinct from the live HEAD graph.
func newLsReleasesCmd(f *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "ls-releases",
		Short: "List release revisions previously recorded with release",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			inv, err := openInvocation(cmd, f)
			if err != nil {
				return err
			}

			prefix := refs.Root + "/" + inv.Root + "/"
			entries, err := inv.Adapter.ListRefs(prefix)
			if err != nil {
				return err
			}

			seen := map[string]bool{}
			var revs []string
			for _, e := range entries {
				p, err := refs.Parse(e.Name.String())
				if err != nil {
					continue
				}
				if p.Revision == "HEAD" || seen[p.Revision] {
					continue
				}
				seen[p.Revision] = true
				revs = append(revs, p.Revision)
			}
			sort.Slice(revs, func(i, j int) bool {
				return versionsort.Compare(revs[i], revs[j]) > 0
			})

			for _, rev := range revs {
				fmt.Fprintln(cmd.OutOrStdout(), rev)
			}
			return nil
		},
	}
}
