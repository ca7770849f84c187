package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/longknot/git-pkgs/internal/jsonio"
)

// newJSONExportCmd implements "json-export" (§6): the Export document
// described in the specification's JSON export shape.
func newJSONExportCmd(f *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "json-export",
		Short: "Print the dependency graph as the json-export document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			inv, err := openInvocation(cmd, f)
			if err != nil {
				return err
			}

			revision := inv.Manifest.Version
			if revision == "" {
				revision = "HEAD"
			}

			out, err := jsonio.Build(inv.Adapter, inv.Manifest, inv.Root, revision)
			if err != nil {
				return err
			}

			data, err := out.Marshal()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

// newJSONImportCmd implements "json-import" (§6): read an Import document
// from stdin (or the file named by args[0]) and replay add for each entry.
func newJSONImportCmd(f *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "json-import [FILE]",
		Short: "Read a json-import document and replay add for each package",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inv, err := openInvocation(cmd, f)
			if err != nil {
				return err
			}

			var src io.Reader = cmd.InOrStdin()
			if len(args) == 1 {
				file, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("opening import document %s: %w", args[0], err)
				}
				defer file.Close()
				src = file
			}

			data, err := io.ReadAll(src)
			if err != nil {
				return fmt.Errorf("reading import document: %w", err)
			}

			im, err := jsonio.Unmarshal(data)
			if err != nil {
				return err
			}

			err = jsonio.Replay(cmd.Context(), im, func(ctx context.Context, pkg, rev, url string) error {
				_, err := inv.Resolver.Add(ctx, pkg, rev, url, namespace(f))
				return err
			})
			if err != nil {
				return err
			}

			return inv.saveManifest()
		},
	}
}
