// Package testutils provides utility functions for building testdata.
package testutils

import (
	"crypto/rand"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// RepoBuilder provides methods for building a git repository.
type RepoBuilder struct {
	repo *git.Repository
}

// NewRepoBuilder initializes a RepoBuilder.
func NewRepoBuilder(dir string) (*RepoBuilder, error) {
	// will create if dir dne
	repo, err := git.PlainInit(dir, false)
	if err != nil {
		return nil, fmt.Errorf("initializing plain git repository: %w", err)
	}

	return &RepoBuilder{repo: repo}, nil
}

// Repo returns the underlying git repository.
func (b *RepoBuilder) Repo() *git.Repository {
	return b.repo
}

// CreateRandomCommit creates a commit with random file data of given size.
func (b *RepoBuilder) CreateRandomCommit(size int64) (plumbing.Hash, error) {
	if size < 0 {
		return plumbing.ZeroHash, fmt.Errorf("invalid file size %d expected >= 0", size)
	}
	wt, err := b.repo.Worktree()
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("getting repository worktree: %w", err)
	}

	filename := fmt.Sprintf("file_%s.txt", rand.Text())
	f, err := wt.Filesystem.OpenFile(wt.Filesystem.Join(filename), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0666)
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, io.LimitReader(rand.Reader, size)); err != nil {
		return plumbing.ZeroHash, fmt.Errorf("writing random data to file: %w", err)
	}
	if err := f.Close(); err != nil {
		return plumbing.ZeroHash, fmt.Errorf("closing file: %w", err)
	}

	if _, err := wt.Add(filename); err != nil {
		return plumbing.ZeroHash, fmt.Errorf("adding file to worktree: %w", err)
	}

	hash, err := wt.Commit("test commit", &git.CommitOptions{
		Author: &object.Signature{
			Name:  "Test User",
			Email: "test@example.com",
			When:  time.Now(),
		},
	})
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("committing file: %w", err)
	}

	return hash, nil
}

// CreateFileCommit commits the given tree-relative path -> contents map,
// generalizing CreateRandomCommit to named, fixed content so tests can
// assert on file placement and blob bytes.
func (b *RepoBuilder) CreateFileCommit(files map[string]string, message string) (plumbing.Hash, error) {
	wt, err := b.repo.Worktree()
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("getting repository worktree: %w", err)
	}

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		full := wt.Filesystem.Join(strings.Split(name, "/")...)
		if dir := filepath.Dir(full); dir != "." {
			if err := wt.Filesystem.MkdirAll(dir, 0o777); err != nil {
				return plumbing.ZeroHash, fmt.Errorf("creating directory for %s: %w", name, err)
			}
		}

		f, err := wt.Filesystem.OpenFile(full, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o666)
		if err != nil {
			return plumbing.ZeroHash, fmt.Errorf("opening %s: %w", name, err)
		}
		if _, err := io.WriteString(f, files[name]); err != nil {
			f.Close()
			return plumbing.ZeroHash, fmt.Errorf("writing %s: %w", name, err)
		}
		if err := f.Close(); err != nil {
			return plumbing.ZeroHash, fmt.Errorf("closing %s: %w", name, err)
		}
		if _, err := wt.Add(name); err != nil {
			return plumbing.ZeroHash, fmt.Errorf("adding %s to worktree: %w", name, err)
		}
	}

	hash, err := wt.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  "Test User",
			Email: "test@example.com",
			When:  time.Now(),
		},
	})
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("committing files: %w", err)
	}

	return hash, nil
}

// CreateOrphanCommit writes files directly into the object store (no
// working-copy interaction, no parent) and returns the resulting commit
// hash, for building orphan fixtures that mirror what the Orphanizer
// produces without the test needing to depend on package orphan.
func (b *RepoBuilder) CreateOrphanCommit(files map[string]string, message string) (plumbing.Hash, error) {
	var entries []object.TreeEntry
	for name, content := range files {
		obj := b.repo.Storer.NewEncodedObject()
		obj.SetType(plumbing.BlobObject)
		w, err := obj.Writer()
		if err != nil {
			return plumbing.ZeroHash, fmt.Errorf("opening blob writer for %s: %w", name, err)
		}
		if _, err := io.WriteString(w, content); err != nil {
			return plumbing.ZeroHash, fmt.Errorf("writing blob for %s: %w", name, err)
		}
		if err := w.Close(); err != nil {
			return plumbing.ZeroHash, fmt.Errorf("closing blob writer for %s: %w", name, err)
		}
		hash, err := b.repo.Storer.SetEncodedObject(obj)
		if err != nil {
			return plumbing.ZeroHash, fmt.Errorf("storing blob for %s: %w", name, err)
		}
		entries = append(entries, object.TreeEntry{Name: name, Mode: filemode.Regular, Hash: hash})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })

	tree := &object.Tree{Entries: entries}
	treeObj := b.repo.Storer.NewEncodedObject()
	if err := tree.Encode(treeObj); err != nil {
		return plumbing.ZeroHash, fmt.Errorf("encoding tree: %w", err)
	}
	treeHash, err := b.repo.Storer.SetEncodedObject(treeObj)
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("storing tree: %w", err)
	}

	sig := object.Signature{Name: "Test User", Email: "test@example.com", When: time.Now()}
	commit := &object.Commit{
		Author:    sig,
		Committer: sig,
		Message:   message,
		TreeHash:  treeHash,
	}
	commitObj := b.repo.Storer.NewEncodedObject()
	if err := commit.Encode(commitObj); err != nil {
		return plumbing.ZeroHash, fmt.Errorf("encoding commit: %w", err)
	}
	hash, err := b.repo.Storer.SetEncodedObject(commitObj)
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("storing commit: %w", err)
	}

	return hash, nil
}

// CreateBranch creates a new branch.
func (b *RepoBuilder) CreateBranch(branchName string, commit plumbing.Hash) (*plumbing.Reference, error) {
	ref := plumbing.NewHashReference(plumbing.NewBranchReferenceName(branchName), commit)
	if err := b.repo.Storer.SetReference(ref); err != nil {
		return nil, fmt.Errorf("creating branch reference: %w", err)
	}
	return ref, nil
}

// DeleteBranch deletes a branch.
func (b *RepoBuilder) DeleteBranch(branchName string) error {
	refName := plumbing.NewBranchReferenceName(branchName)
	if err := b.repo.Storer.RemoveReference(refName); err != nil {
		return fmt.Errorf("deleting branch reference: %w", err)
	}
	return nil
}

// CreateTag creates a lightweight tag.
func (b *RepoBuilder) CreateTag(tagName string, commit plumbing.Hash) (*plumbing.Reference, error) {
	ref := plumbing.NewHashReference(plumbing.NewTagReferenceName(tagName), commit)
	if err := b.repo.Storer.SetReference(ref); err != nil {
		return nil, fmt.Errorf("creating tag reference: %w", err)
	}
	return ref, nil
}

// DeleteTag deletes a tag.
func (b *RepoBuilder) DeleteTag(tagName string) error {
	refName := plumbing.NewTagReferenceName(tagName)
	if err := b.repo.Storer.RemoveReference(refName); err != nil {
		return fmt.Errorf("deleting tag reference: %w", err)
	}
	return nil
}
