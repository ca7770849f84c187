package jsonio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/longknot/git-pkgs/internal/manifest"
	"github.com/longknot/git-pkgs/internal/refs"
	"github.com/longknot/git-pkgs/internal/store"
	"github.com/longknot/git-pkgs/internal/testutils"
)

func newTestAdapter(t *testing.T) *store.Adapter {
	t.Helper()
	dir := t.TempDir()
	_, err := testutils.NewRepoBuilder(dir)
	require.NoError(t, err)
	a, err := store.Open(dir)
	require.NoError(t, err)
	return a
}

func TestBuildEnrichesFromDependencyManifest(t *testing.T) {
	a := newTestAdapter(t)

	tree, err := a.WriteTreeFromDir(t.TempDir(), map[string][]byte{
		"pkgs.json": []byte(`{"name":"left-pad","author":"someone","description":"pads strings"}`),
	})
	require.NoError(t, err)
	hash, err := a.CommitTree(tree, "left-pad@1.0.0", store.Trailers{
		store.TrailerName:     "left-pad",
		store.TrailerRevision: "1.0.0",
		store.TrailerType:     "pkg",
		store.TrailerCommit:   "upstreamsha",
		store.TrailerURL:      "file:///left-pad",
	})
	require.NoError(t, err)
	require.NoError(t, a.UpdateRef(refs.PkgOrphan("left-pad", "1.0.0").Name(), hash))

	m := manifest.New()
	m.Name = "myapp"
	m.AddDep("left-pad", "1.0.0", "")

	out, err := Build(a, m, "myapp", "HEAD")
	require.NoError(t, err)

	require.Len(t, out.Packages, 1)
	pkg := out.Packages[0]
	assert.Equal(t, "left-pad", pkg.Name)
	assert.Equal(t, "1.0.0", pkg.Revision)
	assert.Equal(t, "someone", pkg.Author)
	assert.Equal(t, "pads strings", pkg.Description)
	assert.Equal(t, "upstreamsha", pkg.Reference)
	assert.Equal(t, "file:///left-pad", pkg.URL)
	assert.Equal(t, hash.String(), pkg.Snapshot)
}

func TestBuildSkipsDependenciesMissingOrphanRef(t *testing.T) {
	a := newTestAdapter(t)

	m := manifest.New()
	m.Name = "myapp"
	m.AddDep("ghost", "1.0.0", "")

	out, err := Build(a, m, "myapp", "HEAD")
	require.NoError(t, err)
	assert.Empty(t, out.Packages)
}

func TestBuildToleratesMissingSubManifest(t *testing.T) {
	a := newTestAdapter(t)

	tree, err := a.WriteTreeFromDir(t.TempDir(), nil)
	require.NoError(t, err)
	hash, err := a.CommitTree(tree, "nodoc@1.0.0", store.Trailers{
		store.TrailerName:     "nodoc",
		store.TrailerRevision: "1.0.0",
		store.TrailerType:     "pkg",
		store.TrailerURL:      "file:///nodoc",
	})
	require.NoError(t, err)
	require.NoError(t, a.UpdateRef(refs.PkgOrphan("nodoc", "1.0.0").Name(), hash))

	m := manifest.New()
	m.Name = "myapp"
	m.AddDep("nodoc", "1.0.0", "")

	out, err := Build(a, m, "myapp", "HEAD")
	require.NoError(t, err)
	require.Len(t, out.Packages, 1)
	assert.Empty(t, out.Packages[0].Author)
}
