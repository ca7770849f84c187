package store

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5/plumbing"
)

// Trailers is a typed view of the "git-pkgs-*" trailer lines carried in a
// commit message, e.g. git-pkgs-name=left-pad, git-pkgs-revision=1.0.0.
type Trailers map[string]string

// trailerLineRE matches a single "key=value" trailer line. git-pkgs trailers
// never contain "=" in the key, so a simple split is sufficient.
var trailerLineRE = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9-]*=.*$`)

// Provenance trailer keys, per the ref layout invariants.
const (
	TrailerName     = "git-pkgs-name"
	TrailerType     = "git-pkgs-type"
	TrailerRevision = "git-pkgs-revision"
	TrailerCommit   = "git-pkgs-commit"
	TrailerURL      = "git-pkgs-url"
)

// ReadTrailers reads hash's commit message and returns the subset of
// trailers named by keys. A missing key is simply absent from the result;
// it is not an error.
func (a *Adapter) ReadTrailers(hash plumbing.Hash, keys []string) (Trailers, error) {
	c, err := a.CommitObject(hash)
	if err != nil {
		return nil, err
	}

	all := parseTrailers(c.Message)
	if keys == nil {
		return all, nil
	}

	out := make(Trailers, len(keys))
	for _, k := range keys {
		if v, ok := all[k]; ok {
			out[k] = v
		}
	}
	return out, nil
}

// parseTrailers extracts the trailing block of "key=value" lines from a
// commit message: the longest contiguous run of trailer-shaped lines
// ending the message, separated from the body by a blank line (or
// comprising the whole message).
func parseTrailers(message string) Trailers {
	lines := strings.Split(strings.TrimRight(message, "\n"), "\n")

	end := len(lines)
	start := end
	for start > 0 && trailerLineRE.MatchString(strings.TrimSpace(lines[start-1])) {
		start--
	}
	// Require the trailer block to be its own paragraph, unless it is the
	// entire message.
	if start > 0 && start < end && strings.TrimSpace(lines[start-1]) != "" {
		return Trailers{}
	}

	out := make(Trailers, end-start)
	for _, line := range lines[start:end] {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		idx := strings.IndexByte(line, '=')
		if idx < 0 {
			continue
		}
		out[line[:idx]] = line[idx+1:]
	}
	return out
}

// renderTrailerBlock renders trailers in the provenance key order followed
// by any remaining keys sorted lexicographically, one "key=value" per line.
func renderTrailerBlock(t Trailers) string {
	order := []string{TrailerName, TrailerType, TrailerRevision, TrailerCommit, TrailerURL}
	seen := make(map[string]bool, len(order))

	var b strings.Builder
	for _, k := range order {
		if v, ok := t[k]; ok {
			fmt.Fprintf(&b, "%s=%s\n", k, v)
			seen[k] = true
		}
	}

	var rest []string
	for k := range t {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	for _, k := range rest {
		fmt.Fprintf(&b, "%s=%s\n", k, t[k])
	}

	return b.String()
}

// mergeTrailersAddIfDifferent returns existing with every key of add set to
// add's value: a key absent from existing is added, and a key present with
// a different value has that value replaced, so no key appears twice. This
// is the "add-if-different" policy used when orphanizing an
// already-orphanized revision.
func mergeTrailersAddIfDifferent(existing Trailers, add Trailers) Trailers {
	out := make(Trailers, len(existing)+len(add))
	for k, v := range existing {
		out[k] = v
	}
	for k, v := range add {
		if cur, ok := out[k]; !ok || cur != v {
			out[k] = v
		}
	}
	return out
}
