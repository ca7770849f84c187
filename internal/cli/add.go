package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/longknot/git-pkgs/internal/pkgctx"
	"github.com/longknot/git-pkgs/internal/pkgerrors"
	"github.com/longknot/git-pkgs/internal/refs"
	"github.com/longknot/git-pkgs/internal/resolver"
	"github.com/longknot/git-pkgs/internal/store"
)

// newAddCmd implements "add pkg rev [url]" (§4.5.1).
func newAddCmd(f *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "add PKG REV [URL]",
		Short: "Fetch and record a dependency edge",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			inv, err := openInvocation(cmd, f)
			if err != nil {
				return err
			}

			pkg, rev := args[0], args[1]
			url := ""
			if len(args) == 3 {
				url = args[2]
			} else if hash, ok, err := inv.Adapter.Resolve(refs.RootHead(inv.Root, pkg, refs.Namespace(namespace(f))).Name()); err == nil && ok {
				trailers, err := inv.Adapter.ReadTrailers(hash, []string{store.TrailerURL})
				if err != nil {
					return err
				}
				url = trailers[store.TrailerURL]
			}
			if url == "" {
				return fmt.Errorf("%w: %s has no known URL, pass one explicitly", pkgerrors.ErrBadArgs, pkg)
			}

			results, err := inv.Resolver.Add(cmd.Context(), pkg, rev, url, namespace(f))
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

// newAddDirCmd implements "add-dir pkg rev localPath" (§4.5.3).
func newAddDirCmd(f *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "add-dir PKG REV LOCAL_PATH",
		Short: "Import a local directory as a dependency without fetching",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			inv, err := openInvocation(cmd, f)
			if err != nil {
				return err
			}

			pkg, rev, localPath := args[0], args[1], args[2]
			manifestName := inv.Ctx.ManifestName
			if manifestName == "" {
				manifestName = pkgctx.Defaults.ManifestName
			}

			results, err := inv.Resolver.AddDir(pkg, rev, localPath, resolver.AddDirOptions{
				ManifestJSON: pkgctx.ImportConfigJSON(),
				ManifestName: manifestName,
				Type:         f.pkgType,
				URL:          f.pkgURL,
				Namespace:    namespace(f),
			})
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
