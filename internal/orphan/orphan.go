// Package orphan implements the Orphanizer (C4): converting a fetched
// dependency revision into a single parentless commit carrying provenance
// trailers, idempotently.
package orphan

import (
	"fmt"

	"github.com/go-git/go-git/v5/plumbing"

	"github.com/longknot/git-pkgs/internal/store"
)

// Provenance describes the origin of a revision being orphanized.
type Provenance struct {
	Name     string // PkgName
	Type     string // ecosystem/dependency type tag
	Revision string // Rev as known to the caller (tag name, branch, or HEAD)
	URL      string // origin remote URL
}

// Orphanize reads the commit at srcRef, producing a new parentless commit
// with the same tree and message, stamped with provenance trailers, then
// replaces dstRef to point at it. It is safe to call repeatedly on a ref
// that already points at a prior orphanization of the same content: the
// trailer merge policy is add-if-different, so no trailer key is
// duplicated. Each call writes a new commit, with the current time and the
// source commit's hash as its git-pkgs-commit trailer, so the resulting
// hash differs between calls; callers that need a no-op on repeat check
// IsOrphanized first.
//
// No worktree is materialized: unlike the real `git worktree add
// --no-checkout <path>; git checkout --orphan` dance, go-git lets a commit
// be built directly against the object store from the source tree hash, so
// orphanization never touches the filesystem.
func Orphanize(a *store.Adapter, srcRef, dstRef plumbing.ReferenceName, prov Provenance) (plumbing.Hash, error) {
	srcHash, ok, err := a.Resolve(srcRef)
	if err != nil {
		return plumbing.ZeroHash, err
	}
	if !ok {
		return plumbing.ZeroHash, fmt.Errorf("orphanizing %s: source ref does not exist", srcRef)
	}

	c, err := a.CommitObject(srcHash)
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("orphanizing %s: %w", srcRef, err)
	}

	trailers := store.Trailers{
		store.TrailerName:     prov.Name,
		store.TrailerType:     prov.Type,
		store.TrailerRevision: prov.Revision,
		store.TrailerCommit:   srcHash.String(),
		store.TrailerURL:      prov.URL,
	}

	orphanHash, err := a.CommitTree(c.TreeHash, c.Message, trailers)
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("committing orphan for %s: %w", srcRef, err)
	}

	if err := a.UpdateRef(dstRef, orphanHash); err != nil {
		return plumbing.ZeroHash, fmt.Errorf("updating orphan ref %s: %w", dstRef, err)
	}
	return orphanHash, nil
}

// IsOrphanized reports whether ref already names a parentless commit
// carrying the expected name and revision trailers, so callers can skip
// re-fetching the upstream revision entirely (step 2 of "Adding an edge").
func IsOrphanized(a *store.Adapter, ref plumbing.ReferenceName, name, revision string) (bool, error) {
	hash, ok, err := a.Resolve(ref)
	if err != nil || !ok {
		return false, err
	}

	c, err := a.CommitObject(hash)
	if err != nil {
		return false, err
	}
	if len(c.ParentHashes) != 0 {
		return false, nil
	}

	trailers, err := a.ReadTrailers(hash, []string{store.TrailerName, store.TrailerRevision})
	if err != nil {
		return false, err
	}
	return trailers[store.TrailerName] == name && trailers[store.TrailerRevision] == revision, nil
}
