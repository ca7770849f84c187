package resolver

import (
	"testing"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/longknot/git-pkgs/internal/refs"
	"github.com/longknot/git-pkgs/internal/store"
)

// commitAtRev builds an orphan commit the same way commitAt does but tagged
// with the given pkg name and revision, so foldOne's trailerRevision lookups
// resolve to a specific version rather than the fixed "dep"/rev pair commitAt
// produces.
func commitAtRev(t *testing.T, a *store.Adapter, name, rev string) plumbing.Hash {
	t.Helper()
	tree, err := a.WriteTreeFromDir(t.TempDir(), map[string][]byte{"marker.txt": []byte(name + "@" + rev)})
	require.NoError(t, err)
	hash, err := a.CommitTree(tree, "fixture", store.Trailers{
		store.TrailerName:     name,
		store.TrailerRevision: rev,
		store.TrailerType:     "pkg",
	})
	require.NoError(t, err)
	return hash
}

// TestAddDirDiamondResolutionPicksMaxAcrossBothParents drives spec §8's
// diamond-resolution scenario through the real Resolver.AddDir/fold path:
// a@1.0 depends on c@1.0 and d@1.0; b@1.0 depends on c@1.1 and d@1.1. Adding
// both under the max strategy must leave HEAD holding a@1.0, b@1.0, c@1.1,
// and d@1.1 — the newer shared revisions win regardless of which parent is
// added first.
//
// AddDir's local-path import has no real remote to announce c and d as
// transitive edges, so the upstream announcement that a real Add's wildcard
// fetch would have copied into refs/pkgs/<pkg>/<rev>/* is simulated directly
// with UpdateRef, exactly as TestFoldInstallsNewEdge already does for a
// single edge.
func TestAddDirDiamondResolutionPicksMaxAcrossBothParents(t *testing.T) {
	r, a := newTestResolver(t)
	r.Strategy = StrategyMax

	c10 := commitAtRev(t, a, "c", "1.0")
	d10 := commitAtRev(t, a, "d", "1.0")
	c11 := commitAtRev(t, a, "c", "1.1")
	d11 := commitAtRev(t, a, "d", "1.1")

	require.NoError(t, a.UpdateRef(refs.PkgTransitive("a", "1.0", "c").Name(), c10))
	require.NoError(t, a.UpdateRef(refs.PkgTransitive("a", "1.0", "d").Name(), d10))
	require.NoError(t, a.UpdateRef(refs.PkgTransitive("b", "1.0", "c").Name(), c11))
	require.NoError(t, a.UpdateRef(refs.PkgTransitive("b", "1.0", "d").Name(), d11))

	_, err := r.AddDir("a", "1.0", t.TempDir(), AddDirOptions{})
	require.NoError(t, err)
	_, err = r.AddDir("b", "1.0", t.TempDir(), AddDirOptions{})
	require.NoError(t, err)

	aOrphan, ok, err := a.Resolve(refs.PkgOrphan("a", "1.0").Name())
	require.NoError(t, err)
	require.True(t, ok)
	bOrphan, ok, err := a.Resolve(refs.PkgOrphan("b", "1.0").Name())
	require.NoError(t, err)
	require.True(t, ok)

	cases := []struct {
		dep  string
		want plumbing.Hash
	}{
		{"a", aOrphan},
		{"b", bOrphan},
		{"c", c11},
		{"d", d11},
	}
	for _, c := range cases {
		got, ok, err := a.Resolve(refs.RootHead("myapp", c.dep, "").Name())
		require.NoError(t, err)
		require.True(t, ok, "HEAD/%s must be installed", c.dep)
		assert.Equal(t, c.want, got, "HEAD/%s picked the wrong revision", c.dep)
	}
}

// TestAddDirCyclicGuardKeepsNewerRevisionOnBackEdge drives spec §8's cyclic
// guard scenario: e@1.1 depends on a@1.0, and a@1.0 itself transitively
// depends back on e, but at the older e@1.0. Adding e@1.1 and then a@1.0
// must complete (the resolver never recurses into a dependency's own
// transitive set while folding, so there is no cycle to detect at all —
// each add only folds the edges the package being added announces) and must
// leave e's own orphan entry, and HEAD's edge to e, at 1.1: the max
// strategy keeps the newer revision already installed over the older one
// a's back-edge proposes.
func TestAddDirCyclicGuardKeepsNewerRevisionOnBackEdge(t *testing.T) {
	r, a := newTestResolver(t)
	r.Strategy = StrategyMax

	a10 := commitAtRev(t, a, "a", "1.0")
	e10 := commitAtRev(t, a, "e", "1.0")

	// e@1.1 announces a dependency on a@1.0.
	require.NoError(t, a.UpdateRef(refs.PkgTransitive("e", "1.1", "a").Name(), a10))
	_, err := r.AddDir("e", "1.1", t.TempDir(), AddDirOptions{})
	require.NoError(t, err)

	e11Orphan, ok, err := a.Resolve(refs.PkgOrphan("e", "1.1").Name())
	require.NoError(t, err)
	require.True(t, ok)

	// a@1.0 announces a back-edge to e@1.0, closing the cycle.
	require.NoError(t, a.UpdateRef(refs.PkgTransitive("a", "1.0", "e").Name(), e10))
	_, err = r.AddDir("a", "1.0", t.TempDir(), AddDirOptions{})
	require.NoError(t, err)

	stillE11, ok, err := a.Resolve(refs.PkgOrphan("e", "1.1").Name())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, e11Orphan, stillE11, "refs/pkgs/e/1.1/e must remain untouched by a's fold")

	headE, ok, err := a.Resolve(refs.RootHead("myapp", "e", "").Name())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, e11Orphan, headE, "HEAD/e must stay on the newer 1.1, not regress to a's 1.0 back-edge")
}
