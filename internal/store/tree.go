package store

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/opencontainers/go-digest"
)

// writeBlob stores data as a blob object and returns its hash. It also logs
// data's OCI-style content digest (sha256, independent of git's own object
// hashing) at Debug, so a package later mirrored to an OCI registry can be
// cross-referenced by digest without recomputing it from the git object.
func (a *Adapter) writeBlob(data []byte) (plumbing.Hash, error) {
	obj := a.repo.Storer.NewEncodedObject()
	obj.SetType(plumbing.BlobObject)

	w, err := obj.Writer()
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("opening blob writer: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return plumbing.ZeroHash, fmt.Errorf("writing blob contents: %w", err)
	}
	if err := w.Close(); err != nil {
		return plumbing.ZeroHash, fmt.Errorf("closing blob writer: %w", err)
	}

	hash, err := a.repo.Storer.SetEncodedObject(obj)
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("storing blob: %w", err)
	}
	slog.Debug("wrote blob", "githash", hash.String(), "digest", digest.FromBytes(data).String())
	return hash, nil
}

// treeNode is an in-progress directory used while building a tree bottom-up
// from a walked filesystem path.
type treeNode struct {
	entries map[string]object.TreeEntry
	dirs    map[string]*treeNode
}

func newTreeNode() *treeNode {
	return &treeNode{
		entries: make(map[string]object.TreeEntry),
		dirs:    make(map[string]*treeNode),
	}
}

func (n *treeNode) child(name string) *treeNode {
	c, ok := n.dirs[name]
	if !ok {
		c = newTreeNode()
		n.dirs[name] = c
	}
	return c
}

// writeTree recursively encodes n and its children as tree objects,
// returning the hash of n's own tree object.
func (a *Adapter) writeTree(n *treeNode) (plumbing.Hash, error) {
	t := &object.Tree{}

	names := make([]string, 0, len(n.entries)+len(n.dirs))
	for name := range n.entries {
		names = append(names, name)
	}
	for name := range n.dirs {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if e, ok := n.entries[name]; ok {
			t.Entries = append(t.Entries, e)
			continue
		}
		childHash, err := a.writeTree(n.dirs[name])
		if err != nil {
			return plumbing.ZeroHash, err
		}
		t.Entries = append(t.Entries, object.TreeEntry{
			Name: name,
			Mode: filemode.Dir,
			Hash: childHash,
		})
	}

	obj := a.repo.Storer.NewEncodedObject()
	if err := t.Encode(obj); err != nil {
		return plumbing.ZeroHash, fmt.Errorf("encoding tree: %w", err)
	}
	hash, err := a.repo.Storer.SetEncodedObject(obj)
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("storing tree: %w", err)
	}
	return hash, nil
}

// WriteTreeFromDir builds a git tree from the contents of dir without
// touching dir's working copy or requiring it to contain a .git directory
// (an "ephemeral index"): every regular file and symlink under dir is read
// and stored as a blob directly in the repository's object store, then
// assembled into tree objects bottom-up.
//
// extraBlobs injects additional content at the given tree-relative paths
// (e.g. a synthetic pkgs.json for add-dir), overriding any file already
// present at that path in dir.
func (a *Adapter) WriteTreeFromDir(dir string, extraBlobs map[string][]byte) (plumbing.Hash, error) {
	root := newTreeNode()

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if path == dir {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return fmt.Errorf("computing relative path for %s: %w", path, err)
		}
		rel = filepath.ToSlash(rel)

		if strings.HasPrefix(rel, ".git/") || rel == ".git" {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if info.IsDir() {
			return nil
		}

		mode := filemode.Regular
		if info.Mode()&os.ModeSymlink != 0 {
			mode = filemode.Symlink
		} else if info.Mode()&0o111 != 0 {
			mode = filemode.Executable
		}

		data, err := readFileOrLink(path, info)
		if err != nil {
			return err
		}

		hash, err := a.writeBlob(data)
		if err != nil {
			return fmt.Errorf("writing blob for %s: %w", rel, err)
		}

		placeEntry(root, rel, object.TreeEntry{Name: filepath.Base(rel), Mode: mode, Hash: hash})
		return nil
	})
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("walking %s: %w", dir, err)
	}

	for relPath, data := range extraBlobs {
		hash, err := a.writeBlob(data)
		if err != nil {
			return plumbing.ZeroHash, fmt.Errorf("writing injected blob %s: %w", relPath, err)
		}
		placeEntry(root, relPath, object.TreeEntry{Name: filepath.Base(relPath), Mode: filemode.Regular, Hash: hash})
	}

	return a.writeTree(root)
}

func readFileOrLink(path string, info os.FileInfo) ([]byte, error) {
	if info.Mode()&os.ModeSymlink != 0 {
		target, err := os.Readlink(path)
		if err != nil {
			return nil, fmt.Errorf("reading symlink %s: %w", path, err)
		}
		return []byte(target), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}

// placeEntry walks root by relPath's directory components, creating
// intermediate treeNodes, and places entry at the final segment.
func placeEntry(root *treeNode, relPath string, entry object.TreeEntry) {
	segs := strings.Split(relPath, "/")
	n := root
	for _, seg := range segs[:len(segs)-1] {
		n = n.child(seg)
	}
	n.entries[segs[len(segs)-1]] = entry
}

// CommitTree creates a commit with the given tree, message, and provenance
// trailers, parented on parents (nil/empty for an orphan commit). Trailers
// already present in an existing message are merged with the new ones
// (add-if-different), so re-committing a message never duplicates a
// trailer key. Author and committer times are the current time, so two
// calls with identical inputs do not produce the same commit hash.
func (a *Adapter) CommitTree(tree plumbing.Hash, message string, trailers Trailers, parents ...plumbing.Hash) (plumbing.Hash, error) {
	body, existing := splitExistingTrailers(message)
	merged := mergeTrailersAddIfDifferent(existing, trailers)

	full := strings.TrimRight(body, "\n")
	if full != "" {
		full += "\n\n"
	}
	full += renderTrailerBlock(merged)

	sig := object.Signature{
		Name:  "git-pkgs",
		Email: "git-pkgs@localhost",
		When:  time.Now(),
	}

	c := &object.Commit{
		Author:       sig,
		Committer:    sig,
		Message:      full,
		TreeHash:     tree,
		ParentHashes: parents,
	}

	obj := a.repo.Storer.NewEncodedObject()
	if err := c.Encode(obj); err != nil {
		return plumbing.ZeroHash, fmt.Errorf("encoding commit: %w", err)
	}
	hash, err := a.repo.Storer.SetEncodedObject(obj)
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("storing commit: %w", err)
	}
	return hash, nil
}

// splitExistingTrailers separates a commit message into its body and any
// existing trailer block, per the same paragraph rule used by parseTrailers.
func splitExistingTrailers(message string) (body string, trailers Trailers) {
	lines := strings.Split(strings.TrimRight(message, "\n"), "\n")

	end := len(lines)
	start := end
	for start > 0 && trailerLineRE.MatchString(strings.TrimSpace(lines[start-1])) {
		start--
	}
	if start > 0 && start < end && strings.TrimSpace(lines[start-1]) != "" {
		return message, Trailers{}
	}

	return strings.Join(lines[:start], "\n"), parseTrailers(message)
}

// TagRef creates (or, if force, replaces) a lightweight tag named name at hash.
func (a *Adapter) TagRef(name string, hash plumbing.Hash, force bool) error {
	tagName := plumbing.NewTagReferenceName(name)
	if !force {
		if _, ok, _ := a.Resolve(tagName); ok {
			return fmt.Errorf("tag %s already exists", name)
		}
	}
	return a.UpdateRef(tagName, hash)
}
