package resolver

import (
	"encoding/json"
	"fmt"

	"github.com/longknot/git-pkgs/internal/manifest"
	"github.com/longknot/git-pkgs/internal/refs"
)

// TreeNode is one entry emitted by Tree: an ancestry-keyed line describing
// a single package reached during the breadth-first walk.
type TreeNode struct {
	Ancestry []string // e.g. ["R", "a", "c"]
	Name     string
	Rev      string
	Deduped  bool // true if this name was already visited elsewhere, at any revision
}

// String renders the node as an ancestry-keyed line suitable for a
// downstream tree formatter, e.g. "R:a:c 1.0.0".
func (n TreeNode) String() string {
	line := n.Ancestry[0]
	for _, a := range n.Ancestry[1:] {
		line += ":" + a
	}
	line += " " + n.Rev
	if n.Deduped {
		line += " (deduped)"
	}
	return line
}

// Tree performs a breadth-first traversal of the dependency graph starting
// at (R, rev) (rev defaults to "HEAD"), reading each node's manifest blob
// out of refs/pkgs/<name>/<rev>/<name>:pkgs.json to discover its children.
// A node already visited at any revision is reported once as deduped and
// not expanded further.
func (r *Resolver) Tree(rev string) ([]TreeNode, error) {
	if rev == "" {
		rev = "HEAD"
	}

	visited := make(map[string]bool)
	var out []TreeNode

	type queued struct {
		name, rev string
		ancestry  []string
	}
	queue := []queued{{name: r.Root, rev: rev, ancestry: []string{r.Root}}}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		key := cur.name
		node := TreeNode{Ancestry: cur.ancestry, Name: cur.name, Rev: cur.rev}
		if visited[key] {
			node.Deduped = true
			out = append(out, node)
			continue
		}
		visited[key] = true
		out = append(out, node)

		deps, err := r.readDeps(cur.name, cur.rev)
		if err != nil {
			return nil, fmt.Errorf("reading dependencies of %s@%s: %w", cur.name, cur.rev, err)
		}

		for depKey, depRev := range deps {
			depName, _ := manifest.SplitDepKey(depKey)
			queue = append(queue, queued{
				name:     depName,
				rev:      depRev,
				ancestry: append(append([]string{}, cur.ancestry...), depName),
			})
		}
	}

	return out, nil
}

// readDeps reads pkgs.json out of the orphan commit refs/pkgs/<name>/<rev>/<name>
// and returns its dependency map, or an empty map if the blob is absent.
func (r *Resolver) readDeps(name, rev string) (map[string]string, error) {
	ref := refs.PkgOrphan(name, rev)
	hash, ok, err := r.Adapter.Resolve(ref.Name())
	if err != nil {
		return nil, err
	}
	if !ok {
		return map[string]string{}, nil
	}

	c, err := r.Adapter.CommitObject(hash)
	if err != nil {
		return nil, err
	}
	tree, err := c.Tree()
	if err != nil {
		return nil, err
	}

	f, err := tree.File("pkgs.json")
	if err != nil {
		return map[string]string{}, nil
	}
	contents, err := f.Contents()
	if err != nil {
		return nil, fmt.Errorf("reading pkgs.json blob: %w", err)
	}

	var raw struct {
		Dependencies map[string]string `json:"dependencies"`
	}
	if err := json.Unmarshal([]byte(contents), &raw); err != nil {
		return map[string]string{}, nil
	}
	if raw.Dependencies == nil {
		return map[string]string{}, nil
	}
	return raw.Dependencies, nil
}
