package store

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
)

// Push pushes refspecs to url.
func (a *Adapter) Push(ctx context.Context, url string, refspecs []config.RefSpec, progress io.Writer) error {
	remote := git.NewRemote(a.repo.Storer, &config.RemoteConfig{
		Name: "git-pkgs-push",
		URLs: []string{url},
	})

	err := remote.PushContext(ctx, &git.PushOptions{
		RefSpecs: refspecs,
		Progress: progress,
	})
	switch {
	case errors.Is(err, git.NoErrAlreadyUpToDate):
		return nil
	case err != nil:
		return fmt.Errorf("pushing to %s: %w", url, err)
	default:
		return nil
	}
}
