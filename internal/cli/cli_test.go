package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/longknot/git-pkgs/internal/manifest"
	"github.com/longknot/git-pkgs/internal/testutils"
)

// testRepo initializes a bare git-pkgs project in a temp directory, writes
// a pkgs.json owned by rootName, and chdirs the test process into it,
// restoring the original working directory on cleanup. Tests in this
// package cannot run in parallel because they share the process's cwd.
func testRepo(t *testing.T, rootName string) string {
	t.Helper()

	dir := t.TempDir()
	_, err := testutils.NewRepoBuilder(dir)
	require.NoError(t, err)

	m := manifest.New()
	m.Name = rootName
	require.NoError(t, m.Save(filepath.Join(dir, "pkgs.json")))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	return dir
}

// run executes cmd with args, capturing stdout/stderr, and returns the
// combined output and any error RunE returned. It swaps in a fresh
// globalFlags-free command tree built by the caller, so flags don't leak
// state across subtests.
func run(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}
