package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
)

// UpdateStatus classifies how a ref changed as the result of a fetch or
// local ref-copy operation.
type UpdateStatus int

// Update statuses, mirroring git's own fetch/push porcelain output
// (new / updated / up-to-date / deleted / rejected).
const (
	StatusUpToDate UpdateStatus = iota
	StatusNew
	StatusUpdated
	StatusDeleted
	StatusRejected
)

// String renders a human-readable form, used in log lines and porcelain
// output.
func (s UpdateStatus) String() string {
	switch s {
	case StatusUpToDate:
		return "up-to-date"
	case StatusNew:
		return "new"
	case StatusUpdated:
		return "updated"
	case StatusDeleted:
		return "deleted"
	case StatusRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// RefUpdate is one record produced by Fetch or FetchLocal: the status of
// a single destination ref before and after the operation.
type RefUpdate struct {
	Status UpdateStatus
	Old    plumbing.Hash // ZeroHash if the ref did not previously exist
	New    plumbing.Hash // ZeroHash if the ref was deleted
	Name   plumbing.ReferenceName
}

// FetchOptions controls a remote fetch.
type FetchOptions struct {
	Depth    int // 0 means full history
	Force    bool
	NoTags   bool
	Progress io.Writer
}

// Fetch retrieves refs matching refspecs from url into this repository,
// returning one RefUpdate per affected local ref. The records are built by
// comparing snapshots of the destination refs taken before and after the
// transfer, so their order is not defined and does not follow the order in
// which the remote sent the updates.
func (a *Adapter) Fetch(ctx context.Context, url string, refspecs []config.RefSpec, opts FetchOptions) ([]RefUpdate, error) {
	dstPrefixes := destinationPrefixes(refspecs)
	before, err := a.snapshot(dstPrefixes)
	if err != nil {
		return nil, fmt.Errorf("snapshotting refs before fetch: %w", err)
	}

	remote := git.NewRemote(a.repo.Storer, &config.RemoteConfig{
		Name: "git-pkgs-fetch",
		URLs: []string{url},
	})

	tags := git.AllTags
	if opts.NoTags {
		tags = git.NoTags
	}

	err = remote.FetchContext(ctx, &git.FetchOptions{
		RefSpecs: refspecs,
		Depth:    opts.Depth,
		Force:    opts.Force,
		Tags:     tags,
		Progress: opts.Progress,
	})
	switch {
	case errors.Is(err, git.NoErrAlreadyUpToDate):
		// fall through: still diff, in case some refspecs did change
	case err != nil:
		return nil, fmt.Errorf("fetching from %s: %w", url, err)
	}

	after, err := a.snapshot(dstPrefixes)
	if err != nil {
		return nil, fmt.Errorf("snapshotting refs after fetch: %w", err)
	}

	return diffSnapshots(before, after), nil
}

// LocalFetchOptions controls a same-repository ref copy.
type LocalFetchOptions struct {
	Prune bool
	Force bool
}

// FetchLocal copies refs matching refspecs where both source and
// destination live in this repository (origin = this repository), the
// primitive the graph resolver uses to freeze a release snapshot and to
// restore HEAD on checkout.
func (a *Adapter) FetchLocal(refspecs []config.RefSpec, opts LocalFetchOptions) ([]RefUpdate, error) {
	var updates []RefUpdate

	for _, rs := range refspecs {
		rsUpdates, err := a.applyLocalRefSpec(rs, opts)
		if err != nil {
			return nil, fmt.Errorf("applying refspec %s: %w", rs.String(), err)
		}
		updates = append(updates, rsUpdates...)
	}

	return updates, nil
}

func (a *Adapter) applyLocalRefSpec(rs config.RefSpec, opts LocalFetchOptions) ([]RefUpdate, error) {
	var updates []RefUpdate

	if !rs.IsWildcard() {
		src := plumbing.ReferenceName(rs.Src())
		dst := plumbing.ReferenceName(rawDst(rs))
		u, err := a.copyRef(src, dst, opts.Force || rs.IsForceUpdate())
		if err != nil {
			return nil, err
		}
		if u != nil {
			updates = append(updates, *u)
		}
		return updates, nil
	}

	srcPrefix := strings.TrimSuffix(rs.Src(), "*")
	dstPrefix := strings.TrimSuffix(rawDst(rs), "*")

	seenDst := make(map[plumbing.ReferenceName]bool)

	matches, err := a.ListRefs(srcPrefix)
	if err != nil {
		return nil, fmt.Errorf("listing source refs %s*: %w", srcPrefix, err)
	}
	for _, m := range matches {
		dst := rs.Dst(m.Name)
		seenDst[dst] = true
		u, err := a.copyRef(m.Name, dst, opts.Force || rs.IsForceUpdate())
		if err != nil {
			return nil, err
		}
		if u != nil {
			updates = append(updates, *u)
		}
	}

	if opts.Prune {
		existing, err := a.ListRefs(dstPrefix)
		if err != nil {
			return nil, fmt.Errorf("listing destination refs %s* for prune: %w", dstPrefix, err)
		}
		for _, e := range existing {
			if seenDst[e.Name] {
				continue
			}
			if err := a.DeleteRef(e.Name); err != nil {
				return nil, err
			}
			updates = append(updates, RefUpdate{Status: StatusDeleted, Old: e.Hash, Name: e.Name})
		}
	}

	return updates, nil
}

// copyRef sets dst to src's hash, returning nil if no change resulted.
func (a *Adapter) copyRef(src, dst plumbing.ReferenceName, force bool) (*RefUpdate, error) {
	newHash, ok, err := a.Resolve(src)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("source ref %s does not exist", src)
	}

	oldHash, existed, err := a.Resolve(dst)
	if err != nil {
		return nil, err
	}
	if existed && oldHash == newHash {
		return nil, nil
	}
	if existed && !force {
		isAncestor, err := a.isAncestor(oldHash, newHash)
		if err != nil {
			return nil, err
		}
		if !isAncestor {
			return &RefUpdate{Status: StatusRejected, Old: oldHash, New: newHash, Name: dst}, nil
		}
	}

	if err := a.UpdateRef(dst, newHash); err != nil {
		return nil, err
	}

	status := StatusUpdated
	if !existed {
		status = StatusNew
	}
	return &RefUpdate{Status: status, Old: oldHash, New: newHash, Name: dst}, nil
}

func (a *Adapter) isAncestor(ancestor, descendant plumbing.Hash) (bool, error) {
	if ancestor == descendant {
		return true, nil
	}
	oldC, err := a.CommitObject(ancestor)
	if err != nil {
		// not every ref points at a commit (e.g. annotated tags); treat as
		// non-fast-forward rather than failing the whole operation.
		return false, nil //nolint:nilerr
	}
	newC, err := a.CommitObject(descendant)
	if err != nil {
		return false, nil //nolint:nilerr
	}
	return oldC.IsAncestor(newC)
}

func (a *Adapter) snapshot(prefixes []string) (map[plumbing.ReferenceName]plumbing.Hash, error) {
	out := make(map[plumbing.ReferenceName]plumbing.Hash)
	for _, p := range prefixes {
		entries, err := a.ListRefs(p)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			out[e.Name] = e.Hash
		}
	}
	return out, nil
}

func diffSnapshots(before, after map[plumbing.ReferenceName]plumbing.Hash) []RefUpdate {
	var updates []RefUpdate

	for name, newHash := range after {
		oldHash, existed := before[name]
		switch {
		case !existed:
			updates = append(updates, RefUpdate{Status: StatusNew, New: newHash, Name: name})
		case oldHash != newHash:
			updates = append(updates, RefUpdate{Status: StatusUpdated, Old: oldHash, New: newHash, Name: name})
		}
	}
	for name, oldHash := range before {
		if _, still := after[name]; !still {
			updates = append(updates, RefUpdate{Status: StatusDeleted, Old: oldHash, Name: name})
		}
	}

	return updates
}

func destinationPrefixes(refspecs []config.RefSpec) []string {
	prefixes := make([]string, 0, len(refspecs))
	for _, rs := range refspecs {
		prefixes = append(prefixes, strings.TrimSuffix(rawDst(rs), "*"))
	}
	return prefixes
}

// rawDst returns a refspec's raw destination pattern (the substring after
// the first unescaped ":"), stripping a leading "+" force marker. Unlike
// config.RefSpec.Dst, this does not require a matched source name, so it
// is safe to call when only the pattern prefix is needed.
func rawDst(rs config.RefSpec) string {
	s := strings.TrimPrefix(rs.String(), "+")
	idx := strings.IndexByte(s, ':')
	if idx < 0 {
		return s
	}
	return s[idx+1:]
}
