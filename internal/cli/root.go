// Package cli implements the Command Surface (C6): a spf13/cobra tree, one
// subcommand file per verb, wired against internal/resolver and
// internal/pkgctx. Every verb's RunE returns a plain error; fatalize wraps
// each verb's RunE so that error is printed as "fatal: <cause>", matching
// the propagation policy in the specification's error handling design.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// globalFlags holds the persistent flags every subcommand shares, read
// once by openInvocation per invocation.
type globalFlags struct {
	quiet       bool
	configPath  string
	prefix      string
	namespace   string
	strategy    string
	depth       int
	all         bool
	message     string
	pkgName     string
	pkgRevision string
	pkgType     string
	pkgURL      string
}

// NewCLI creates the base git-pkgs command and registers every verb.
func NewCLI(version string) *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:           "git-pkgs",
		Short:         "A decentralized, git-native package manager.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: logLevel(flags),
			})))
		},
	}

	root.PersistentFlags().BoolVarP(&flags.quiet, "quiet", "q", false, "suppress informational output")
	root.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "path to a config file or directory")
	root.PersistentFlags().StringVarP(&flags.prefix, "prefix", "P", "", "override the worktree path prefix")
	root.PersistentFlags().StringVarP(&flags.namespace, "namespace", "n", "", "dependency namespace (e.g. dev)")
	root.PersistentFlags().StringVarP(&flags.strategy, "strategy", "s", "", "conflict resolution strategy: max, min, keep, update, interactive")
	root.PersistentFlags().IntVar(&flags.depth, "depth", 0, "shallow-fetch depth")
	root.PersistentFlags().BoolVar(&flags.all, "all", false, "apply to every direct dependency")
	root.PersistentFlags().StringVarP(&flags.message, "message", "m", "", "release message")
	root.PersistentFlags().StringVar(&flags.pkgName, "pkg-name", "", "override package name")
	root.PersistentFlags().StringVar(&flags.pkgRevision, "pkg-revision", "", "override package revision")
	root.PersistentFlags().StringVar(&flags.pkgType, "pkg-type", "", "override package type")
	root.PersistentFlags().StringVar(&flags.pkgURL, "pkg-url", "", "override package url")

	for _, sub := range []*cobra.Command{
		newAddCmd(flags),
		newAddDirCmd(flags),
		newReleaseCmd(flags),
		newCheckoutCmd(flags),
		newRemoveCmd(flags),
		newTreeCmd(flags),
		newStatusCmd(flags),
		newShowCmd(flags),
		newLsReleasesCmd(flags),
		newFetchCmd(flags),
		newPushCmd(flags),
		newPullCmd(flags),
		newCloneCmd(flags),
		newJSONExportCmd(flags),
		newJSONImportCmd(flags),
		newConfigCmd(flags),
		newPruneCmd(flags),
	} {
		fatalize(sub)
		root.AddCommand(sub)
	}

	return root
}

// fatalize wraps cmd's RunE, and every descendant's, so any error returned
// from a verb is printed as a single "fatal: <cause>" line and surfaces as
// a non-zero exit, the idiom named by the error handling design (§7).
// Cobra's own SilenceErrors is set on the root command, so cobra does not
// print errors itself; errors cobra raises before a verb runs (unknown
// command, bad flags) are returned from Execute to main.
func fatalize(cmd *cobra.Command) {
	if cmd.RunE != nil {
		inner := cmd.RunE
		cmd.RunE = func(cmd *cobra.Command, args []string) error {
			if err := inner(cmd, args); err != nil {
				fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
				os.Exit(1)
			}
			return nil
		}
	}
	for _, child := range cmd.Commands() {
		fatalize(child)
	}
}

// logLevel returns the slog level a command should log at, honoring -q.
func logLevel(f *globalFlags) slog.Level {
	if f.quiet {
		return slog.LevelError
	}
	return slog.LevelInfo
}
