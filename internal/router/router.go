// Package router implements the Path Router (C3): mapping a package
// reference to the filesystem location its worktree should be materialized
// at, given the root manifest's prefix and paths patterns.
package router

import (
	"path"
	"strings"

	"github.com/longknot/git-pkgs/internal/manifest"
)

// Route is the outcome of routing a package reference: either a worktree
// path to materialize, or Skip if the matching pattern mapped to "false".
type Route struct {
	Path string
	Skip bool
}

// Route computes the worktree path for pkg (optionally namespaced by ns)
// given root's prefix/paths configuration. refSuffix, when non-empty, is
// stripped from the trailing path segment of pkg before matching or
// joining (e.g. a constant "/PKG" leaf some ecosystems append).
func Route(m *manifest.Manifest, pkg string, ns string, refSuffix string) Route {
	pkg = strings.TrimSuffix(pkg, refSuffix)

	prefix := m.Prefix
	if prefix == "" {
		prefix = "."
	}

	if len(m.Paths) == 0 {
		return Route{Path: path.Join(prefix, pkg)}
	}

	for _, entry := range m.Paths {
		patNS, glob := splitPattern(entry.Pattern)
		if patNS != "" && patNS != ns {
			continue
		}
		if !globMatch(glob, pkg) {
			continue
		}

		if entry.Prefix == "false" {
			return Route{Skip: true}
		}
		return Route{Path: path.Join(entry.Prefix, pkg)}
	}

	return Route{Path: path.Join(prefix, pkg)}
}

// splitPattern decomposes a "[<ns>:]<glob>" pattern into its optional
// namespace and the glob itself.
func splitPattern(pattern string) (ns string, glob string) {
	if idx := strings.IndexByte(pattern, ':'); idx >= 0 {
		return pattern[:idx], pattern[idx+1:]
	}
	return "", pattern
}

// globMatch reports whether name matches glob, supporting a single "*"
// wildcard (matching any run of characters, including "/") since path.Match
// treats "/" as a path separator boundary, which the pkg patterns here do
// not want.
func globMatch(glob, name string) bool {
	if glob == "*" {
		return true
	}
	idx := strings.IndexByte(glob, '*')
	if idx < 0 {
		return glob == name
	}
	prefix, suffix := glob[:idx], glob[idx+1:]
	return strings.HasPrefix(name, prefix) && strings.HasSuffix(name, suffix) &&
		len(name) >= len(prefix)+len(suffix)
}
