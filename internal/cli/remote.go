package cli

import (
	"fmt"
	"io"

	"github.com/go-git/go-git/v5/config"
	"github.com/spf13/cobra"

	"github.com/longknot/git-pkgs/internal/manifest"
	"github.com/longknot/git-pkgs/internal/pkgerrors"
	"github.com/longknot/git-pkgs/internal/refs"
	"github.com/longknot/git-pkgs/internal/store"
)

// pkgsRefSpecs returns the refspecs that transfer the full package-manager
// state: HEAD's branches, tags, and everything under refs/pkgs/*, per
// §4.5.7's "push ships HEAD, the release tag, and everything under
// refs/pkgs/*".
func pkgsRefSpecs() []config.RefSpec {
	all := refs.Root + "/*"
	return []config.RefSpec{
		config.RefSpec("refs/heads/*:refs/heads/*"),
		config.RefSpec("refs/tags/*:refs/tags/*"),
		config.RefSpec(fmt.Sprintf("%s:%s", all, all)),
	}
}

// progressWriter returns cmd's stdout unless -q suppressed it.
func progressWriter(cmd *cobra.Command, f *globalFlags) io.Writer {
	if f.quiet {
		return nil
	}
	return cmd.OutOrStdout()
}

// newFetchCmd implements "fetch" (§4.5.7). With --all, URL is omitted and
// every direct dependency is instead re-fetched from the URL already
// recorded on its refs/pkgs/<R>/HEAD[/<ns>]/<pkg> trailer, refreshing the whole
// manifest in one invocation rather than one remote at a time.
func newFetchCmd(f *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "fetch [URL]",
		Short: "Fetch every refs/pkgs/* ref plus HEAD and tags from a remote",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inv, err := openInvocation(cmd, f)
			if err != nil {
				return err
			}

			if f.all {
				if len(args) == 1 {
					return fmt.Errorf("%w: --all fetches every direct dependency's recorded URL and takes no URL argument", pkgerrors.ErrBadArgs)
				}
				return fetchAllDirect(cmd, f, inv)
			}
			if len(args) != 1 {
				return fmt.Errorf("%w: fetch requires a URL unless --all is set", pkgerrors.ErrBadArgs)
			}

			updates, err := inv.Adapter.Fetch(cmd.Context(), args[0], pkgsRefSpecs(), store.FetchOptions{
				Depth:    f.depth,
				Progress: progressWriter(cmd, f),
			})
			if err != nil {
				return fmt.Errorf("%w: %v", pkgerrors.ErrRemoteFailed, err)
			}

			if !f.quiet {
				for _, u := range updates {
					fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", u.Status, u.Name)
				}
			}
			return nil
		},
	}
}

// fetchAllDirect re-fetches every manifest dependency from the URL already
// recorded on its refs/pkgs/<R>/HEAD[/<ns>]/<pkg> trailer, skipping any dependency
// that has never been fetched (and so has no HEAD ref to read a URL from).
func fetchAllDirect(cmd *cobra.Command, f *globalFlags, inv *invocation) error {
	for key := range inv.Manifest.Dependencies {
		name, ns := manifest.SplitDepKey(key)

		headRef := refs.RootHead(inv.Root, name, refs.Namespace(ns))
		hash, ok, err := inv.Adapter.Resolve(headRef.Name())
		if err != nil {
			return err
		}
		if !ok {
			continue
		}

		trailers, err := inv.Adapter.ReadTrailers(hash, []string{store.TrailerURL})
		if err != nil {
			return err
		}
		url := trailers[store.TrailerURL]
		if url == "" {
			continue
		}

		if _, err := inv.Adapter.Fetch(cmd.Context(), url, pkgsRefSpecs(), store.FetchOptions{
			Depth:    f.depth,
			Progress: progressWriter(cmd, f),
		}); err != nil {
			return fmt.Errorf("%w: %s: %v", pkgerrors.ErrRemoteFailed, name, err)
		}
		if !f.quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "fetched %s from %s\n", key, url)
		}
	}
	return nil
}

// newPushCmd implements "push" (§4.5.7).
func newPushCmd(f *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "push URL",
		Short: "Push HEAD, tags, and every refs/pkgs/* ref to a remote",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inv, err := openInvocation(cmd, f)
			if err != nil {
				return err
			}

			if err := inv.Adapter.Push(cmd.Context(), args[0], pkgsRefSpecs(), progressWriter(cmd, f)); err != nil {
				return fmt.Errorf("%w: %v", pkgerrors.ErrRemoteFailed, err)
			}
			return nil
		},
	}
}

// newPullCmd implements "pull": fetch then fast-forward the current HEAD
// graph from the just-fetched refs/pkgs/* namespace of the given remote.
func newPullCmd(f *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "pull URL",
		Short: "Fetch then fast-forward refs/pkgs/*/HEAD/* from a remote",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inv, err := openInvocation(cmd, f)
			if err != nil {
				return err
			}

			if _, err := inv.Adapter.Fetch(cmd.Context(), args[0], pkgsRefSpecs(), store.FetchOptions{
				Progress: progressWriter(cmd, f),
			}); err != nil {
				return fmt.Errorf("%w: %v", pkgerrors.ErrRemoteFailed, err)
			}

			return inv.Resolver.Checkout("HEAD")
		},
	}
}

// newCloneCmd implements "clone": the one verb that bootstraps a working
// tree instead of requiring one. It reads the root package name from the
// cloned tip's git-pkgs-name trailer and writes each of that root's HEAD
// edges to DIR/<dep>. The manifest is not rewritten, paths routing is not
// applied, and when the tip carries no name trailer nothing is written.
func newCloneCmd(f *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "clone URL DIR",
		Short: "Clone a remote and check out its HEAD dependency graph",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			url, dst := args[0], args[1]

			a, err := store.Clone(cmd.Context(), url, dst, progressWriter(cmd, f))
			if err != nil {
				return fmt.Errorf("%w: %v", pkgerrors.ErrRemoteFailed, err)
			}

			head, err := a.Repository().Head()
			if err != nil {
				return fmt.Errorf("resolving cloned HEAD: %w", err)
			}

			trailers, err := a.ReadTrailers(head.Hash(), []string{store.TrailerName})
			if err != nil {
				return err
			}
			root := trailers[store.TrailerName]
			if root == "" {
				return nil
			}

			headPrefix := refs.RootHeadPrefix(root, "").String() + "/"
			entries, err := a.ListRefs(headPrefix)
			if err != nil {
				return err
			}

			for _, e := range entries {
				dep := e.Name.String()[len(headPrefix):]
				if dep == root {
					continue
				}
				if err := a.WorktreeMaterialize(dst+"/"+dep, e.Name, false); err != nil {
					return fmt.Errorf("materializing %s: %w", dep, err)
				}
			}

			if !f.quiet {
				fmt.Fprintf(cmd.OutOrStdout(), "cloned %s into %s\n", root, dst)
			}
			return nil
		},
	}
}
