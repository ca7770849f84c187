package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/longknot/git-pkgs/internal/manifest"
	"github.com/longknot/git-pkgs/internal/refs"
	"github.com/longknot/git-pkgs/internal/store"
)

func TestStatusReportsMissingDependency(t *testing.T) {
	dir := testRepo(t, "myapp")

	m, err := manifest.Load(filepath.Join(dir, "pkgs.json"))
	require.NoError(t, err)
	m.AddDep("left-pad", "1.0.0", "")
	require.NoError(t, m.Save(filepath.Join(dir, "pkgs.json")))

	out, err := run(t, newStatusCmd(&globalFlags{}))
	require.NoError(t, err)
	assert.Contains(t, out, "left-pad 1.0.0: missing")
}

func TestStatusReportsUpToDate(t *testing.T) {
	dir := testRepo(t, "myapp")

	a, err := store.Open(dir)
	require.NoError(t, err)

	tree, err := a.WriteTreeFromDir(t.TempDir(), nil)
	require.NoError(t, err)
	hash, err := a.CommitTree(tree, "import left-pad@1.0.0", store.Trailers{
		store.TrailerName:     "left-pad",
		store.TrailerRevision: "1.0.0",
		store.TrailerType:     "pkg",
	})
	require.NoError(t, err)

	require.NoError(t, a.UpdateRef(refs.RootHead("myapp", "left-pad", "").Name(), hash))

	m, err := manifest.Load(filepath.Join(dir, "pkgs.json"))
	require.NoError(t, err)
	m.AddDep("left-pad", "1.0.0", "")
	require.NoError(t, m.Save(filepath.Join(dir, "pkgs.json")))

	out, err := run(t, newStatusCmd(&globalFlags{}))
	require.NoError(t, err)
	assert.Contains(t, out, "left-pad 1.0.0: up to date")
}

func TestShowReportsNotInstalledForUnknownPackage(t *testing.T) {
	testRepo(t, "myapp")

	out, err := run(t, newShowCmd(&globalFlags{}), "no-such-dep")
	require.NoError(t, err)
	assert.Contains(t, out, "no-such-dep: not installed")
}
