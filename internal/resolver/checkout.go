package resolver

import (
	"fmt"

	securejoin "github.com/cyphar/filepath-securejoin"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/longknot/git-pkgs/internal/pkgerrors"
	"github.com/longknot/git-pkgs/internal/refs"
	"github.com/longknot/git-pkgs/internal/router"
	"github.com/longknot/git-pkgs/internal/store"
)

// Checkout implements "checkout rev": reject if the snapshot doesn't
// exist, switch the project working tree to the release tag, tear down
// the current HEAD worktrees/refs (unless rev is already "HEAD"), copy
// the snapshot namespace into HEAD, and re-materialize every worktree.
func (r *Resolver) Checkout(rev string) error {
	snapshotPrefix := refs.RootSnapshotPrefix(r.Root, rev).String() + "/"
	existing, err := r.Adapter.ListRefs(snapshotPrefix)
	if err != nil {
		return err
	}
	if len(existing) == 0 {
		return fmt.Errorf("%w: refs/pkgs/%s/%s", pkgerrors.ErrRefMissing, r.Root, rev)
	}

	if rev != "HEAD" {
		wt, err := r.Adapter.Repository().Worktree()
		if err != nil {
			return fmt.Errorf("opening worktree for checkout: %w", err)
		}
		if err := wt.Checkout(&git.CheckoutOptions{Branch: plumbing.NewTagReferenceName(rev)}); err != nil {
			return fmt.Errorf("checking out tag %s: %w", rev, err)
		}

		headPrefix := refs.RootHeadPrefix(r.Root, "").String() + "/"
		current, err := r.Adapter.ListRefs(headPrefix)
		if err != nil {
			return err
		}
		for _, e := range current {
			dep := e.Name.String()[len(headPrefix):]
			if err := r.teardown(dep, e.Name.String()); err != nil {
				return err
			}
		}
	}

	headPrefix := refs.RootHeadPrefix(r.Root, "").String() + "/"
	copySpec := config.RefSpec(snapshotPrefix + "*:" + headPrefix + "*")
	if _, err := r.Adapter.FetchLocal([]config.RefSpec{copySpec}, store.LocalFetchOptions{Force: true, Prune: true}); err != nil {
		return fmt.Errorf("restoring HEAD from snapshot %s: %w", rev, err)
	}

	newHead, err := r.Adapter.ListRefs(headPrefix)
	if err != nil {
		return err
	}
	for _, e := range newHead {
		dep := e.Name.String()[len(headPrefix):]
		if dep == r.Root {
			continue
		}
		if err := r.checkoutOne(dep); err != nil {
			return err
		}
	}

	return nil
}

func (r *Resolver) checkoutOne(dep string) error {
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

	ref := refs.RootHead(r.Root, dep, "")
	return r.Adapter.WorktreeMaterialize(dst, ref.Name(), false)
}
