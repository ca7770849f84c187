// Package refs defines the typed ref-namespace layout used to store
// dependency edges, release snapshots, and package provenance inside
// refs/pkgs/*.
//
// See the "Primary ref layout" section of the package manager's
// specification for the string forms each constructor produces.
package refs

import (
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5/plumbing"
)

// Namespace scopes a dependency group (e.g. "dev"). The empty string is the
// unnamespaced group.
type Namespace string

// Root is the namespace prefix every ref produced by this package lives
// under.
const Root = "refs/pkgs"

// Ref is a fully qualified reference name within the refs/pkgs/* namespace.
//
// Stringly-typed ref construction is deliberately confined to this package;
// everything else in the module builds refs through the constructors below.
type Ref struct {
	name plumbing.ReferenceName
}

// String returns the ref's full name, e.g. "refs/pkgs/myapp/HEAD/left-pad".
func (r Ref) String() string {
	return r.name.String()
}

// Name returns the underlying go-git reference name.
func (r Ref) Name() plumbing.ReferenceName {
	return r.name
}

// IsZero reports whether r was never assigned a name.
func (r Ref) IsZero() bool {
	return r.name == ""
}

func join(parts ...string) Ref {
	return Ref{name: plumbing.ReferenceName(strings.Join(parts, "/"))}
}

// RootHead returns the ref for the root package R's active edge to pkg,
// optionally scoped by namespace: refs/pkgs/<R>/HEAD[/<ns>]/<pkg>.
func RootHead(root, pkg string, ns Namespace) Ref {
	if ns == "" {
		return join(Root, root, "HEAD", pkg)
	}
	return join(Root, root, "HEAD", string(ns), pkg)
}

// RootHeadPrefix returns the ref prefix for all of R's active edges,
// optionally scoped by namespace: refs/pkgs/<R>/HEAD[/<ns>].
func RootHeadPrefix(root string, ns Namespace) Ref {
	if ns == "" {
		return join(Root, root, "HEAD")
	}
	return join(Root, root, "HEAD", string(ns))
}

// RootSnapshot returns the ref for package pkg as frozen by root R's release
// rev: refs/pkgs/<R>/<rev>/<pkg>.
func RootSnapshot(root, rev, pkg string) Ref {
	return join(Root, root, rev, pkg)
}

// RootSnapshotPrefix returns the ref prefix for every edge frozen by root R's
// release rev: refs/pkgs/<R>/<rev>.
func RootSnapshotPrefix(root, rev string) Ref {
	return join(Root, root, rev)
}

// PkgOrphan returns the ref for the orphan commit of pkg@rev:
// refs/pkgs/<pkg>/<rev>/<pkg>.
func PkgOrphan(pkg, rev string) Ref {
	return join(Root, pkg, rev, pkg)
}

// PkgTransitive returns the ref for a transitive edge declared by pkg@rev:
// refs/pkgs/<pkg>/<rev>/<dep>.
func PkgTransitive(pkg, rev, dep string) Ref {
	return join(Root, pkg, rev, dep)
}

// PkgTransitivePrefix returns the ref prefix for all edges (direct orphan
// included) declared by pkg@rev: refs/pkgs/<pkg>/<rev>.
func PkgTransitivePrefix(pkg, rev string) Ref {
	return join(Root, pkg, rev)
}

// PkgHead returns the ref recording the most-recently-imported revision of
// pkg: refs/pkgs/<pkg>/HEAD/<pkg>.
func PkgHead(pkg string) Ref {
	return join(Root, pkg, "HEAD", pkg)
}

// Parsed is the decomposition of a ref under refs/pkgs/* produced by Parse.
type Parsed struct {
	Owner    string // the <R> or <pkg> segment immediately after refs/pkgs/
	Revision string // the <rev> or "HEAD" segment
	Leaf     string // the final path segment, after namespace stripping
	NS       Namespace
}

// Parse decomposes a ref string of the form refs/pkgs/<owner>/<rev>/[<ns>/]<leaf>.
//
// Namespace detection is positional: for rev == "HEAD" a 4-segment ref
// (owner/HEAD/ns/leaf) is namespaced; all other forms are unnamespaced.
func Parse(ref string) (Parsed, error) {
	const prefix = Root + "/"
	if !strings.HasPrefix(ref, prefix) {
		return Parsed{}, fmt.Errorf("ref %q is not under %s", ref, Root)
	}
	rest := strings.TrimPrefix(ref, prefix)
	segs := strings.Split(rest, "/")
	if len(segs) < 3 {
		return Parsed{}, fmt.Errorf("ref %q has too few segments", ref)
	}

	p := Parsed{Owner: segs[0], Revision: segs[1]}
	switch {
	case p.Revision == "HEAD" && len(segs) == 4:
		p.NS = Namespace(segs[2])
		p.Leaf = segs[3]
	case len(segs) == 3:
		p.Leaf = segs[2]
	default:
		// extra segments belong to a leaf containing "/" (PkgName may
		// contain slashes); rejoin everything after the namespace slot.
		p.Leaf = strings.Join(segs[2:], "/")
	}
	return p, nil
}
