package jsonio

import (
	"fmt"
	"regexp"

	"github.com/go-git/go-git/v5/plumbing"

	"github.com/longknot/git-pkgs/internal/manifest"
	"github.com/longknot/git-pkgs/internal/refs"
	"github.com/longknot/git-pkgs/internal/store"
)

// authorEmailRE extracts the "<email>" portion of an npm-style author
// string, e.g. "Ada Lovelace <ada@example.com> (https://example.com)".
var authorEmailRE = regexp.MustCompile(`<([^<>@\s]+@[^<>\s]+)>`)

// Build assembles an Export document describing root's direct dependencies
// as currently recorded in m, reading each dependency's author/email/
// description out of its own orphan commit's pkgs.json blob when present.
// mirror is stamped onto every entry as the root package's own URL (R-url
// per spec §6), the address a consumer of the export falls back to if a
// dependency's own origin URL becomes unreachable.
func Build(a *store.Adapter, m *manifest.Manifest, root, revision string) (Export, error) {
	out := Export{Name: root, Revision: revision, Packages: []Package{}}
	mirror := m.URL

	for key, rev := range m.Dependencies {
		name, _ := manifest.SplitDepKey(key)

		orphanRef := refs.PkgOrphan(name, rev)
		hash, ok, err := a.Resolve(orphanRef.Name())
		if !ok || err != nil {
			continue
		}

		trailers, err := a.ReadTrailers(hash, nil)
		if err != nil {
			return Export{}, fmt.Errorf("reading trailers for %s@%s: %w", name, rev, err)
		}

		pkg := Package{
			Name:      name,
			Revision:  rev,
			Snapshot:  hash.String(),
			Reference: trailers[store.TrailerCommit],
			URL:       trailers[store.TrailerURL],
			Mirror:    mirror,
		}

		if sub, err := readSubManifest(a, hash); err == nil && sub != nil {
			pkg.Author = sub.Author
			pkg.Description = sub.Description
			if match := authorEmailRE.FindStringSubmatch(sub.Author); match != nil {
				pkg.Email = match[1]
			}
		}

		out.Packages = append(out.Packages, pkg)
	}

	return out, nil
}

// readSubManifest reads pkgs.json out of the tree at hash, returning nil
// (not an error) if the blob is absent or invalid.
func readSubManifest(a *store.Adapter, hash plumbing.Hash) (*manifest.Manifest, error) {
	c, err := a.CommitObject(hash)
	if err != nil {
		return nil, err
	}
	tree, err := c.Tree()
	if err != nil {
		return nil, err
	}
	f, err := tree.File("pkgs.json")
	if err != nil {
		return nil, nil
	}
	contents, err := f.Contents()
	if err != nil {
		return nil, err
	}

	m, err := manifest.Parse([]byte(contents))
	if err != nil {
		return nil, nil
	}
	return m, nil
}
