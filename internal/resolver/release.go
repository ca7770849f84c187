package resolver

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/longknot/git-pkgs/internal/orphan"
	"github.com/longknot/git-pkgs/internal/refs"
	"github.com/longknot/git-pkgs/internal/store"
)

// Release implements "release rev": persist the manifest at version=rev,
// commit and tag it, copy the HEAD namespace into the <rev> namespace, and
// orphanize the root's own entry the same way a dependency is orphanized.
// message overrides the default "release <rev>" commit message when
// non-empty (-m/--message).
func (r *Resolver) Release(manifestPath, rev, message string) error {
	if message == "" {
		message = fmt.Sprintf("release %s", rev)
	}

	r.Manifest.Version = rev
	if err := r.Manifest.Save(manifestPath); err != nil {
		return fmt.Errorf("saving manifest for release: %w", err)
	}

	wt, err := r.Adapter.Repository().Worktree()
	if err != nil {
		return fmt.Errorf("opening worktree for release commit: %w", err)
	}

	manifestRel := manifestPath
	if root := r.Adapter.Root(); strings.HasPrefix(manifestPath, root) {
		manifestRel = strings.TrimPrefix(strings.TrimPrefix(manifestPath, root), "/")
	}
	if _, err := wt.Add(manifestRel); err != nil {
		return fmt.Errorf("staging manifest for release: %w", err)
	}

	sig := object.Signature{Name: "git-pkgs", Email: "git-pkgs@localhost", When: time.Now()}
	commitHash, err := wt.Commit(message, &git.CommitOptions{
		Author:            &sig,
		Committer:         &sig,
		AllowEmptyCommits: true,
	})
	if err != nil {
		return fmt.Errorf("committing release: %w", err)
	}

	if err := r.Adapter.TagRef(rev, commitHash, true); err != nil {
		return fmt.Errorf("tagging release %s: %w", rev, err)
	}

	headPrefix := refs.RootHeadPrefix(r.Root, "").String() + "/"
	snapshotPrefix := refs.RootSnapshotPrefix(r.Root, rev).String() + "/"
	copySpec := config.RefSpec(headPrefix + "*:" + snapshotPrefix + "*")
	if _, err := r.Adapter.FetchLocal([]config.RefSpec{copySpec}, store.LocalFetchOptions{Force: true}); err != nil {
		return fmt.Errorf("copying HEAD into snapshot %s: %w", rev, err)
	}

	rootSnapshotRef := refs.RootSnapshot(r.Root, rev, r.Root)
	if err := r.Adapter.UpdateRef(rootSnapshotRef.Name(), commitHash); err != nil {
		return fmt.Errorf("pointing snapshot root ref at release commit: %w", err)
	}

	prov := orphan.Provenance{Name: r.Root, Type: "pkg", Revision: rev, URL: r.Adapter.Root()}
	headRootRef := refs.RootHead(r.Root, r.Root, "")
	if _, err := orphan.Orphanize(r.Adapter, rootSnapshotRef.Name(), headRootRef.Name(), prov); err != nil {
		return fmt.Errorf("orphanizing root release entry: %w", err)
	}

	return nil
}
