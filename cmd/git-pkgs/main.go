// Command git-pkgs is a decentralized, git-native package manager: it
// stores dependencies as commits under refs/pkgs/* in the consuming
// repository's own object store rather than a central registry.
package main

import (
	"fmt"
	"os"

	"github.com/longknot/git-pkgs/internal/cli"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// RunE errors are already reported as "fatal: <cause>" by the root
	// command's own wrapper (which exits directly); anything reaching here
	// is a cobra-level failure such as an unknown flag or bad arg count,
	// which SilenceErrors leaves for us to print.
	if err := cli.NewCLI(version).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}
