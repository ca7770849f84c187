// Package store implements the Ref Store Adapter: a typed wrapper over a
// go-git repository exposing exactly the ref/commit/tree/worktree
// primitives the rest of git-pkgs needs. Isolating this surface keeps
// every other package pure data manipulation, testable against a
// temp-directory repository instead of a live clone.
package store

import (
	"context"
	"fmt"
	"io"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Adapter wraps a *git.Repository with the capability surface named in the
// Ref Store Adapter component design.
type Adapter struct {
	repo *git.Repository
	// root is the path the repository was opened, initialized or cloned
	// at, used to resolve worktree placement paths.
	root string
}

// Open opens an existing repository rooted at root.
func Open(root string) (*Adapter, error) {
	repo, err := git.PlainOpen(root)
	if err != nil {
		return nil, fmt.Errorf("opening repository at %s: %w", root, err)
	}
	return &Adapter{repo: repo, root: root}, nil
}

// Init creates a new repository rooted at root.
func Init(root string) (*Adapter, error) {
	repo, err := git.PlainInit(root, false)
	if err != nil {
		return nil, fmt.Errorf("initializing repository at %s: %w", root, err)
	}
	return &Adapter{repo: repo, root: root}, nil
}

// Clone clones url into dst and returns an Adapter over the result.
func Clone(ctx context.Context, url, dst string, progress io.Writer) (*Adapter, error) {
	repo, err := git.PlainCloneContext(ctx, dst, false, &git.CloneOptions{
		URL:      url,
		Progress: progress,
	})
	if err != nil {
		return nil, fmt.Errorf("cloning %s: %w", url, err)
	}
	return &Adapter{repo: repo, root: dst}, nil
}

// Root returns the repository's working tree root.
func (a *Adapter) Root() string {
	return a.root
}

// Repository exposes the underlying *git.Repository for operations this
// package does not wrap (e.g. Worktree for the root project's own checkout).
func (a *Adapter) Repository() *git.Repository {
	return a.repo
}

// RefExists reports whether name resolves to an object.
func (a *Adapter) RefExists(name plumbing.ReferenceName) bool {
	_, err := a.repo.Reference(name, true)
	return err == nil
}

// Resolve resolves name to its hash. ok is false if the ref does not exist.
func (a *Adapter) Resolve(name plumbing.ReferenceName) (hash plumbing.Hash, ok bool, err error) {
	ref, err := a.repo.Reference(name, true)
	switch {
	case err == plumbing.ErrReferenceNotFound:
		return plumbing.ZeroHash, false, nil
	case err != nil:
		return plumbing.ZeroHash, false, fmt.Errorf("resolving %s: %w", name, err)
	default:
		return ref.Hash(), true, nil
	}
}

// UpdateRef sets name to point at hash, creating it if absent.
func (a *Adapter) UpdateRef(name plumbing.ReferenceName, hash plumbing.Hash) error {
	if err := a.repo.Storer.SetReference(plumbing.NewHashReference(name, hash)); err != nil {
		return fmt.Errorf("updating ref %s: %w", name, err)
	}
	return nil
}

// DeleteRef removes name. It is not an error for name to already be absent.
func (a *Adapter) DeleteRef(name plumbing.ReferenceName) error {
	if err := a.repo.Storer.RemoveReference(name); err != nil {
		return fmt.Errorf("deleting ref %s: %w", name, err)
	}
	return nil
}

// RefEntry is one (ref name, hash) pair yielded by IterRefs.
type RefEntry struct {
	Name plumbing.ReferenceName
	Hash plumbing.Hash
}

// IterRefs calls fn for every reference whose name begins with prefix, in
// storer iteration order. A non-nil error from fn halts iteration.
func (a *Adapter) IterRefs(prefix string, fn func(RefEntry) error) error {
	it, err := a.repo.Storer.IterReferences()
	if err != nil {
		return fmt.Errorf("listing references: %w", err)
	}
	defer it.Close()

	return it.ForEach(func(ref *plumbing.Reference) error {
		name := ref.Name().String()
		if len(name) < len(prefix) || name[:len(prefix)] != prefix {
			return nil
		}
		if ref.Type() != plumbing.HashReference {
			return nil
		}
		return fn(RefEntry{Name: ref.Name(), Hash: ref.Hash()})
	})
}

// ListRefs is a convenience wrapper over IterRefs that collects every
// matching entry.
func (a *Adapter) ListRefs(prefix string) ([]RefEntry, error) {
	var out []RefEntry
	err := a.IterRefs(prefix, func(e RefEntry) error {
		out = append(out, e)
		return nil
	})
	return out, err
}

// CommitObject resolves a commit, surfacing plumbing.ErrObjectNotFound for
// missing commits so callers can use errors.Is.
func (a *Adapter) CommitObject(hash plumbing.Hash) (*object.Commit, error) {
	c, err := a.repo.CommitObject(hash)
	if err != nil {
		return nil, fmt.Errorf("resolving commit %s: %w", hash, err)
	}
	return c, nil
}
