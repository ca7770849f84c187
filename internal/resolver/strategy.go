// Package resolver implements the Graph Resolver (C5): adding and removing
// dependency edges, folding transitive edges announced by a package's own
// snapshot into the HEAD graph, releasing and checking out snapshots, and
// walking the dependency tree.
package resolver

import (
	"fmt"

	"github.com/longknot/git-pkgs/internal/versionsort"
)

// Strategy is one of the five conflict-resolution policies applied when a
// transitive edge folded from a dependency's snapshot disagrees with the
// revision already installed at HEAD.
type Strategy string

const (
	StrategyMax         Strategy = "max"
	StrategyMin         Strategy = "min"
	StrategyKeep        Strategy = "keep"
	StrategyUpdate      Strategy = "update"
	StrategyInteractive Strategy = "interactive"
)

// status is a bitmask describing the decision the resolver reached for one
// folded edge, mirroring the teacher's iota-declared ref-comparison status
// flags (statusDelete/statusUpdateRef/statusAddCommit/statusForce) but
// generalized to the resolver's own outcomes instead of push/fetch
// fast-forward bits.
type status int

const (
	// statusKept indicates the existing HEAD revision was retained.
	statusKept status = 1 << iota
	// statusInstalled indicates a new or updated edge was written to HEAD.
	statusInstalled
	// statusSkippedSelf indicates the edge targeted the root package itself
	// and was ignored.
	statusSkippedSelf
	// statusWarnedEqualRevision indicates two candidate commits both
	// claimed the same recorded revision but disagree on commit hash.
	statusWarnedEqualRevision
)

func (s status) String() string {
	switch {
	case s&statusSkippedSelf != 0:
		return "skip"
	case s&statusInstalled != 0:
		return "update"
	case s&statusKept != 0 && s&statusWarnedEqualRevision != 0:
		return "keep (warn: same revision, different commit)"
	case s&statusKept != 0:
		return "keep"
	default:
		return "unknown"
	}
}

// Prompter resolves an interactive strategy's conflict. Implementations
// that cannot prompt (non-interactive command invocations, tests) should
// default to keeping the existing revision, matching the spec's documented
// fallback.
type Prompter interface {
	// PromptKeepOrUpdate asks whether to keep the existing revision
	// existing in favor of candidate, returning true to keep.
	PromptKeepOrUpdate(pkg, existing, candidate string) bool
}

// defaultPrompter always keeps the existing revision, used when no
// Prompter is supplied.
type defaultPrompter struct{}

func (defaultPrompter) PromptKeepOrUpdate(pkg, existing, candidate string) bool { return true }

// pick chooses between revA (the revision already recorded, possibly
// empty/"none" if there was no existing edge) and revB (the candidate
// revision) under strategy, returning the winning revision and the status
// it corresponds to.
func pick(strategy Strategy, pkg, revA, revB string, prompt Prompter) (string, status, error) {
	if revA == "" || revA == "none" {
		return revB, statusInstalled, nil
	}
	if revA == revB {
		return revA, statusKept, nil
	}

	if prompt == nil {
		prompt = defaultPrompter{}
	}

	switch strategy {
	case StrategyMax:
		if versionsort.Compare(revA, revB) >= 0 {
			return revA, statusKept, nil
		}
		return revB, statusInstalled, nil
	case StrategyMin:
		if versionsort.Compare(revA, revB) <= 0 {
			return revA, statusKept, nil
		}
		return revB, statusInstalled, nil
	case StrategyKeep:
		return revA, statusKept, nil
	case StrategyUpdate:
		return revB, statusInstalled, nil
	case StrategyInteractive:
		if prompt.PromptKeepOrUpdate(pkg, revA, revB) {
			return revA, statusKept, nil
		}
		return revB, statusInstalled, nil
	default:
		return "", 0, fmt.Errorf("unknown resolution strategy %q", strategy)
	}
}
