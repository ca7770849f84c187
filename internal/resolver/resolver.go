package resolver

import (
	"context"
	"fmt"
	"log/slog"

	securejoin "github.com/cyphar/filepath-securejoin"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/longknot/git-pkgs/internal/manifest"
	"github.com/longknot/git-pkgs/internal/orphan"
	"github.com/longknot/git-pkgs/internal/pkgerrors"
	"github.com/longknot/git-pkgs/internal/refs"
	"github.com/longknot/git-pkgs/internal/router"
	"github.com/longknot/git-pkgs/internal/store"
)

// Resolver owns the mutations described by the Graph Resolver component:
// adding/removing dependency edges, folding transitive edges, releasing
// and checking out snapshots, and walking the dependency tree.
type Resolver struct {
	Adapter      *store.Adapter
	Manifest     *manifest.Manifest
	Root         string // root package name R
	WorktreeRoot string // filesystem root worktrees are materialized under
	Strategy     Strategy
	RefSuffix    string
	Prompt       Prompter
}

// EdgeResult is one decision record emitted while folding transitive edges,
// surfaced to the command layer for [keep]/[update]/[skip] logging. A newly
// installed edge and a replaced one are both reported as [update].
type EdgeResult struct {
	Pkg    string
	Rev    string
	Status status
}

func (r EdgeResult) String() string {
	return fmt.Sprintf("[%s] %s %s", r.Status, r.Pkg, r.Rev)
}

// Add implements "Adding an edge": fetch the dependency's own refs,
// orphanize its direct ref if needed, record the direct edge, and fold
// every transitive edge that revision announces into HEAD.
func (r *Resolver) Add(ctx context.Context, pkg, rev, url string, ns string) ([]EdgeResult, error) {
	if r.Manifest.Name == "" {
		return nil, pkgerrors.ErrNoPkgName
	}

	pkgOrphanRef := refs.PkgOrphan(pkg, rev)
	stagingPrefix := fmt.Sprintf("%s/%s/%s", refs.Root, pkg, rev)

	fetchSpec := config.RefSpec(fmt.Sprintf("%s/*:%s/*", stagingPrefix, stagingPrefix))
	if _, err := r.Adapter.Fetch(ctx, url, []config.RefSpec{fetchSpec}, store.FetchOptions{}); err != nil {
		return nil, fmt.Errorf("%w: %v", pkgerrors.ErrRemoteFailed, err)
	}

	already, err := orphan.IsOrphanized(r.Adapter, pkgOrphanRef.Name(), pkg, rev)
	if err != nil {
		return nil, err
	}
	if !already {
		shallowSpec := config.RefSpec(fmt.Sprintf("%s:%s", rev, pkgOrphanRef.String()))
		if _, err := r.Adapter.Fetch(ctx, url, []config.RefSpec{shallowSpec}, store.FetchOptions{Depth: 1}); err != nil {
			return nil, fmt.Errorf("%w: %v", pkgerrors.ErrRemoteFailed, err)
		}
		prov := orphan.Provenance{Name: pkg, Type: "pkg", Revision: rev, URL: url}
		if _, err := orphan.Orphanize(r.Adapter, pkgOrphanRef.Name(), pkgOrphanRef.Name(), prov); err != nil {
			return nil, err
		}
	}

	r.Manifest.AddDep(pkg, rev, ns)

	results, err := r.fold(pkg, rev, ns)
	if err != nil {
		return nil, err
	}

	return results, nil
}

// fold installs every transitive edge refs/pkgs/<pkg>/<rev>/<dep> announced
// by pkg@rev into refs/pkgs/<R>/HEAD[/<ns>]/<dep>, resolving conflicts
// against whatever is already there under the resolver's strategy.
func (r *Resolver) fold(pkg, rev string, ns string) ([]EdgeResult, error) {
	srcPrefix := refs.PkgTransitivePrefix(pkg, rev).String() + "/"
	dstPrefix := refs.RootHeadPrefix(r.Root, refs.Namespace(ns)).String() + "/"

	entries, err := r.Adapter.ListRefs(srcPrefix)
	if err != nil {
		return nil, err
	}

	var results []EdgeResult
	for _, e := range entries {
		dep := e.Name.String()[len(srcPrefix):]
		if dep == r.Root {
			results = append(results, EdgeResult{Pkg: dep, Status: statusSkippedSelf})
			continue
		}

		res, err := r.foldOne(dstPrefix, dep, e.Hash)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, nil
}

func (r *Resolver) foldOne(dstPrefix, dep string, newHash plumbing.Hash) (EdgeResult, error) {
	dstRef := plumbing.ReferenceName(dstPrefix + dep)

	oldHash, existed, err := r.Adapter.Resolve(dstRef)
	if err != nil {
		return EdgeResult{}, err
	}

	revB, err := r.trailerRevision(newHash)
	if err != nil {
		return EdgeResult{}, err
	}

	revA := "none"
	if existed {
		revA, err = r.trailerRevision(oldHash)
		if err != nil {
			return EdgeResult{}, err
		}
	}

	chosenRev, st, err := pick(r.Strategy, dep, revA, revB, r.Prompt)
	if err != nil {
		return EdgeResult{}, err
	}

	if st&statusKept != 0 {
		if existed && revA == revB && oldHash != newHash {
			st |= statusWarnedEqualRevision
			slog.Warn("two candidate edges agree on revision but disagree on commit",
				"pkg", dep, "rev", revA, "kept", oldHash, "candidate", newHash)
		}
		return EdgeResult{Pkg: dep, Rev: chosenRev, Status: st}, nil
	}

	chosenHash := newHash
	if chosenRev == revA && existed {
		chosenHash = oldHash
	}

	if err := r.Adapter.UpdateRef(dstRef, chosenHash); err != nil {
		return EdgeResult{}, err
	}
	if err := r.materialize(dep, dstRef); err != nil {
		return EdgeResult{}, err
	}

	return EdgeResult{Pkg: dep, Rev: chosenRev, Status: st}, nil
}

func (r *Resolver) trailerRevision(hash plumbing.Hash) (string, error) {
	t, err := r.Adapter.ReadTrailers(hash, []string{store.TrailerRevision})
	if err != nil {
		return "", err
	}
	return t[store.TrailerRevision], nil
}

// materialize routes dep through the Path Router and writes the tree of
// ref as its worktree (or does nothing, if routing chose to skip
// materialization).
func (r *Resolver) materialize(dep string, ref plumbing.ReferenceName) error {
	if r.WorktreeRoot == "" {
		return nil
	}

	route := router.Route(r.Manifest, dep, "", r.RefSuffix)

	if route.Skip {
		return nil
	}

	dst, err := securejoin.SecureJoin(r.WorktreeRoot, route.Path)
	if err != nil {
		return fmt.Errorf("resolving worktree path for %s: %w", dep, err)
	}

	slog.Debug("materializing worktree", "pkg", dep, "path", dst)
	return r.Adapter.WorktreeMaterialize(dst, ref, false)
}
