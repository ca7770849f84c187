package resolver

import (
	"fmt"

	securejoin "github.com/cyphar/filepath-securejoin"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/longknot/git-pkgs/internal/manifest"
	"github.com/longknot/git-pkgs/internal/pkgerrors"
	"github.com/longknot/git-pkgs/internal/refs"
	"github.com/longknot/git-pkgs/internal/router"
)

// Remove implements "Removing an edge": refuse unless pkg is a direct
// dependency in namespace ns, tear down its transitive edges from HEAD,
// attempt to re-source each just-removed dep from another remaining direct
// dependency, then drop pkg from the manifest.
func (r *Resolver) Remove(pkg, ns string) ([]EdgeResult, error) {
	if !r.Manifest.HasDep(pkg, ns) {
		return nil, fmt.Errorf("%w: %s", pkgerrors.ErrNotDirectDep, pkg)
	}

	rev := r.Manifest.Dependencies[manifest.DepKey(pkg, ns)]
	srcPrefix := refs.PkgTransitivePrefix(pkg, rev).String() + "/"

	entries, err := r.Adapter.ListRefs(srcPrefix)
	if err != nil {
		return nil, err
	}

	dstPrefix := refs.RootHeadPrefix(r.Root, refs.Namespace(ns)).String() + "/"

	var removed []string
	for _, e := range entries {
		dep := e.Name.String()[len(srcPrefix):]
		if dep == pkg || dep == r.Root {
			continue
		}

		dstRef := dstPrefix + dep
		if err := r.teardown(dep, dstRef); err != nil {
			return nil, err
		}
		removed = append(removed, dep)
	}

	if err := r.teardown(pkg, dstPrefix+pkg); err != nil {
		return nil, err
	}

	r.Manifest.RemoveDep(pkg, ns)

	var results []EdgeResult
	for _, dep := range removed {
		res, err := r.resubstitute(pkg, dep, dstPrefix)
		if err != nil {
			return nil, err
		}
		if res != nil {
			results = append(results, *res)
		}
	}
	return results, nil
}

func (r *Resolver) teardown(dep, dstRef string) error {
	if r.WorktreeRoot != "" {
		route := router.Route(r.Manifest, dep, "", r.RefSuffix)
		if !route.Skip && route.Path != "" {
			dst, err := securejoin.SecureJoin(r.WorktreeRoot, route.Path)
			if err != nil {
				return fmt.Errorf("resolving worktree path for %s: %w", dep, err)
			}
			if err := r.Adapter.WorktreeRemove(dst, true); err != nil {
				return err
			}
		}
	}
	return r.Adapter.DeleteRef(plumbing.ReferenceName(dstRef))
}

// resubstitute walks the root's remaining direct dependencies looking for
// one that still announces dep, restoring it into HEAD via the normal
// add-path conflict resolution if found.
func (r *Resolver) resubstitute(removedPkg, dep, dstPrefix string) (*EdgeResult, error) {
	for otherKey, otherRev := range r.Manifest.Dependencies {
		name, _ := manifest.SplitDepKey(otherKey)
		if name == removedPkg {
			continue
		}

		candidateRef := refs.PkgTransitive(name, otherRev, dep)
		hash, ok, err := r.Adapter.Resolve(candidateRef.Name())
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}

		res, err := r.foldOne(dstPrefix, dep, hash)
		if err != nil {
			return nil, err
		}
		return &res, nil
	}
	return nil, nil
}
