package resolver

import (
	"fmt"

	"github.com/longknot/git-pkgs/internal/orphan"
	"github.com/longknot/git-pkgs/internal/pkgerrors"
	"github.com/longknot/git-pkgs/internal/refs"
	"github.com/longknot/git-pkgs/internal/store"
)

// AddDirOptions carries the --pkg-type/--pkg-url overrides the command
// surface exposes for add-dir, layered over the positional arguments.
type AddDirOptions struct {
	ManifestJSON string // synthetic pkgs.json payload, empty to skip
	ManifestName string
	Type         string // defaults to "pkg"
	URL          string // defaults to localPath
	Namespace    string
}

// AddDir implements "add-dir pkg rev localPath" (§4.5.3): a non-mutating
// import of a local directory. Unlike Add, no remote fetch occurs — the
// tree is built directly from localPath and committed as a parentless
// orphan, optionally carrying a synthetic pkgs.json blob supplied by an
// ecosystem importer.
func (r *Resolver) AddDir(pkg, rev, localPath string, opts AddDirOptions) ([]EdgeResult, error) {
	if r.Manifest.Name == "" {
		return nil, pkgerrors.ErrNoPkgName
	}

	pkgType := opts.Type
	if pkgType == "" {
		pkgType = "pkg"
	}
	url := opts.URL
	if url == "" {
		url = localPath
	}

	extra := map[string][]byte{}
	if opts.ManifestJSON != "" {
		name := opts.ManifestName
		if name == "" {
			name = "pkgs.json"
		}
		extra[name] = []byte(opts.ManifestJSON)
	}

	tree, err := r.Adapter.WriteTreeFromDir(localPath, extra)
	if err != nil {
		return nil, fmt.Errorf("building tree from %s: %w", localPath, err)
	}

	// AddDir has no real origin commit to record: the tree is built
	// directly from localPath rather than fetched from a remote. The
	// tree hash stands in for git-pkgs-commit, giving downstream
	// consumers (e.g. "show") a deterministic, content-addressed value
	// instead of a blank trailer.
	trailers := store.Trailers{
		store.TrailerName:     pkg,
		store.TrailerType:     pkgType,
		store.TrailerRevision: rev,
		store.TrailerCommit:   tree.String(),
		store.TrailerURL:      url,
	}
	commitHash, err := r.Adapter.CommitTree(tree, fmt.Sprintf("import %s@%s", pkg, rev), trailers)
	if err != nil {
		return nil, fmt.Errorf("committing imported tree for %s@%s: %w", pkg, rev, err)
	}

	pkgOrphanRef := refs.PkgOrphan(pkg, rev)
	if err := r.Adapter.UpdateRef(pkgOrphanRef.Name(), commitHash); err != nil {
		return nil, err
	}

	already, err := orphan.IsOrphanized(r.Adapter, pkgOrphanRef.Name(), pkg, rev)
	if err != nil {
		return nil, err
	}
	if !already {
		return nil, fmt.Errorf("imported commit for %s@%s is not a valid orphan", pkg, rev)
	}

	r.Manifest.AddDep(pkg, rev, opts.Namespace)

	return r.fold(pkg, rev, opts.Namespace)
}
