package store

import (
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	securejoin "github.com/cyphar/filepath-securejoin"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"

	"github.com/longknot/git-pkgs/internal/progress"
)

// WorktreeMaterialize writes ref's tree contents to dstPath, creating
// dstPath if needed and reusing it (overwriting conflicting paths) if it
// already exists. Unlike `git worktree add`, this does not create a
// linked .git metadata directory: dstPath holds only the materialized
// file contents a dependent package's files should appear as in the
// working tree, which is all the Path Router (C3) and the checkout/add
// operations need from a "worktree".
//
// noCheckout skips writing file contents, creating only dstPath itself;
// used when the caller only needs the directory reserved (mirroring
// `git worktree add --no-checkout`, which the orphanizer historically
// used purely to obtain a detached working area to commit from — not
// needed here since CommitTree operates directly on the object store).
func (a *Adapter) WorktreeMaterialize(dstPath string, ref plumbing.ReferenceName, noCheckout bool) error {
	hash, ok, err := a.Resolve(ref)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("ref %s does not exist", ref)
	}

	if err := os.MkdirAll(dstPath, 0o777); err != nil {
		return fmt.Errorf("creating worktree directory %s: %w", dstPath, err)
	}
	if noCheckout {
		return nil
	}

	c, err := a.CommitObject(hash)
	if err != nil {
		return err
	}
	tree, err := c.Tree()
	if err != nil {
		return fmt.Errorf("resolving tree for %s: %w", ref, err)
	}

	walker := tree.Files()
	defer walker.Close()

	var filesWritten, bytesWritten int

	for {
		f, err := walker.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("walking tree for %s: %w", ref, err)
		}

		target, err := securejoin.SecureJoin(dstPath, f.Name)
		if err != nil {
			return fmt.Errorf("resolving materialized path for %s: %w", f.Name, err)
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o777); err != nil {
			return fmt.Errorf("creating directory for %s: %w", f.Name, err)
		}

		r, err := f.Reader()
		if err != nil {
			return fmt.Errorf("opening %s: %w", f.Name, err)
		}

		perm := fs.FileMode(0o666)
		if f.Mode == filemode.Executable {
			perm = 0o777
		}

		out, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, perm)
		if err != nil {
			r.Close()
			return fmt.Errorf("creating %s: %w", target, err)
		}
		tracked := progress.NewReader(r)
		_, copyErr := io.Copy(out, tracked)
		r.Close()
		closeErr := out.Close()
		if copyErr != nil {
			return fmt.Errorf("writing %s: %w", target, copyErr)
		}
		if closeErr != nil {
			return fmt.Errorf("closing %s: %w", target, closeErr)
		}

		soFar, _, _ := tracked.Progress()
		filesWritten++
		bytesWritten += soFar
	}

	slog.Debug("materialized worktree", "ref", ref, "path", dstPath, "files", filesWritten, "bytes", bytesWritten)
	return nil
}

// WorktreeRemove deletes dstPath entirely. force is accepted for symmetry
// with the real `git worktree remove --force` but has no additional effect
// here: a materialized worktree carries no uncommitted state of its own.
func (a *Adapter) WorktreeRemove(dstPath string, force bool) error {
	if err := os.RemoveAll(dstPath); err != nil {
		return fmt.Errorf("removing worktree %s: %w", dstPath, err)
	}
	return nil
}

// WorktreePrune removes any of candidatePaths that no longer exist on disk
// from bookkeeping; materialized worktrees here have no separate
// administrative metadata to reconcile, so this is a direct existence
// filter rather than git's internal worktree-registry prune.
func (a *Adapter) WorktreePrune(candidatePaths []string) (pruned []string, err error) {
	for _, p := range candidatePaths {
		if _, statErr := os.Stat(p); os.IsNotExist(statErr) {
			pruned = append(pruned, p)
		}
	}
	return pruned, nil
}
