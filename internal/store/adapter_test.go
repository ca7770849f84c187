package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/longknot/git-pkgs/internal/testutils"
)

func newTestAdapter(t *testing.T) (*Adapter, *testutils.RepoBuilder) {
	t.Helper()
	dir := t.TempDir()
	rb, err := testutils.NewRepoBuilder(dir)
	require.NoError(t, err)

	a, err := Open(dir)
	require.NoError(t, err)
	return a, rb
}

func TestRefLifecycle(t *testing.T) {
	a, rb := newTestAdapter(t)
	hash, err := rb.CreateOrphanCommit(map[string]string{"a.txt": "hello"}, "initial")
	require.NoError(t, err)

	name := plumbing.ReferenceName("refs/pkgs/demo/HEAD/demo")
	assert.False(t, a.RefExists(name))

	require.NoError(t, a.UpdateRef(name, hash))
	assert.True(t, a.RefExists(name))

	got, ok, err := a.Resolve(name)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, hash, got)

	require.NoError(t, a.DeleteRef(name))
	assert.False(t, a.RefExists(name))
}

func TestIterRefs(t *testing.T) {
	a, rb := newTestAdapter(t)
	hash, err := rb.CreateOrphanCommit(map[string]string{"a.txt": "hello"}, "initial")
	require.NoError(t, err)

	require.NoError(t, a.UpdateRef("refs/pkgs/demo/HEAD/a", hash))
	require.NoError(t, a.UpdateRef("refs/pkgs/demo/HEAD/b", hash))
	require.NoError(t, a.UpdateRef("refs/pkgs/other/HEAD/c", hash))

	entries, err := a.ListRefs("refs/pkgs/demo/")
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestWriteTreeFromDirAndCommitTree(t *testing.T) {
	a, _ := newTestAdapter(t)

	src := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(src, "sub"), 0o777))
	require.NoError(t, os.WriteFile(filepath.Join(src, "root.txt"), []byte("root"), 0o666))
	require.NoError(t, os.WriteFile(filepath.Join(src, "sub", "nested.txt"), []byte("nested"), 0o666))

	treeHash, err := a.WriteTreeFromDir(src, map[string][]byte{
		"pkgs.json": []byte(`{"name":"demo"}`),
	})
	require.NoError(t, err)
	assert.False(t, treeHash.IsZero())

	commitHash, err := a.CommitTree(treeHash, "import", Trailers{
		TrailerName:     "demo",
		TrailerRevision: "1.0.0",
		TrailerType:     "pkg",
		TrailerURL:      "file:///src",
	})
	require.NoError(t, err)

	trailers, err := a.ReadTrailers(commitHash, nil)
	require.NoError(t, err)
	assert.Equal(t, "demo", trailers[TrailerName])
	assert.Equal(t, "1.0.0", trailers[TrailerRevision])

	c, err := a.CommitObject(commitHash)
	require.NoError(t, err)
	assert.Empty(t, c.ParentHashes, "orphan commit must have no parents")
}

func TestCommitTreeIdempotentTrailers(t *testing.T) {
	a, _ := newTestAdapter(t)
	src := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(src, "f.txt"), []byte("x"), 0o666))
	tree, err := a.WriteTreeFromDir(src, nil)
	require.NoError(t, err)

	h1, err := a.CommitTree(tree, "msg", Trailers{TrailerName: "demo"})
	require.NoError(t, err)
	c1, err := a.CommitObject(h1)
	require.NoError(t, err)

	// re-applying the identical trailer over the previous commit's own
	// message should not introduce a duplicate line.
	h2, err := a.CommitTree(tree, c1.Message, Trailers{TrailerName: "demo"})
	require.NoError(t, err)
	c2, err := a.CommitObject(h2)
	require.NoError(t, err)

	trailers, err := a.ReadTrailers(h2, []string{TrailerName})
	require.NoError(t, err)
	assert.Equal(t, "demo", trailers[TrailerName])
	assert.Equal(t, 1, countOccurrences(c2.Message, "git-pkgs-name="))
}

func countOccurrences(s, substr string) int {
	count := 0
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			count++
		}
	}
	return count
}

func TestTagRef(t *testing.T) {
	a, rb := newTestAdapter(t)
	hash, err := rb.CreateOrphanCommit(map[string]string{"a.txt": "x"}, "c")
	require.NoError(t, err)

	require.NoError(t, a.TagRef("1.0.0", hash, false))
	err = a.TagRef("1.0.0", hash, false)
	assert.Error(t, err, "re-creating an existing tag without force must fail")
	require.NoError(t, a.TagRef("1.0.0", hash, true))
}

func TestFetchLocalWildcard(t *testing.T) {
	a, rb := newTestAdapter(t)
	hash, err := rb.CreateOrphanCommit(map[string]string{"a.txt": "x"}, "c")
	require.NoError(t, err)

	require.NoError(t, a.UpdateRef("refs/pkgs/dep/1.0.0/dep", hash))
	require.NoError(t, a.UpdateRef("refs/pkgs/dep/1.0.0/child", hash))

	updates, err := a.FetchLocal([]config.RefSpec{
		config.RefSpec("refs/pkgs/dep/1.0.0/*:refs/pkgs/demo/HEAD/*"),
	}, LocalFetchOptions{})
	require.NoError(t, err)
	assert.Len(t, updates, 2)

	got, ok, err := a.Resolve("refs/pkgs/demo/HEAD/child")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, hash, got)

	// re-running is idempotent: no updates the second time.
	updates, err = a.FetchLocal([]config.RefSpec{
		config.RefSpec("refs/pkgs/dep/1.0.0/*:refs/pkgs/demo/HEAD/*"),
	}, LocalFetchOptions{})
	require.NoError(t, err)
	assert.Empty(t, updates)
}

func TestFetchLocalPrune(t *testing.T) {
	a, rb := newTestAdapter(t)
	hash, err := rb.CreateOrphanCommit(map[string]string{"a.txt": "x"}, "c")
	require.NoError(t, err)

	require.NoError(t, a.UpdateRef("refs/pkgs/demo/HEAD/stale", hash))
	require.NoError(t, a.UpdateRef("refs/pkgs/demo/1.0.0/kept", hash))

	_, err = a.FetchLocal([]config.RefSpec{
		config.RefSpec("refs/pkgs/demo/1.0.0/*:refs/pkgs/demo/HEAD/*"),
	}, LocalFetchOptions{Prune: true, Force: true})
	require.NoError(t, err)

	assert.False(t, a.RefExists("refs/pkgs/demo/HEAD/stale"))
	assert.True(t, a.RefExists("refs/pkgs/demo/HEAD/kept"))
}

func TestWorktreeMaterialize(t *testing.T) {
	a, rb := newTestAdapter(t)
	hash, err := rb.CreateOrphanCommit(map[string]string{
		"a.txt":        "hello",
		"nested/b.txt": "world",
	}, "c")
	require.NoError(t, err)
	require.NoError(t, a.UpdateRef("refs/pkgs/demo/HEAD/dep", hash))

	dst := filepath.Join(t.TempDir(), "dep")
	require.NoError(t, a.WorktreeMaterialize(dst, "refs/pkgs/demo/HEAD/dep", false))

	got, err := os.ReadFile(filepath.Join(dst, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(got))

	got, err = os.ReadFile(filepath.Join(dst, "nested", "b.txt"))
	require.NoError(t, err)
	assert.Equal(t, "world", string(got))

	require.NoError(t, a.WorktreeRemove(dst, true))
	_, err = os.Stat(dst)
	assert.True(t, os.IsNotExist(err))
}
