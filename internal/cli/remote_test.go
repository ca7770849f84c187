package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/longknot/git-pkgs/internal/pkgerrors"
)

func TestFetchAllRejectsAnExplicitURL(t *testing.T) {
	testRepo(t, "myapp")

	f := &globalFlags{all: true}
	_, err := run(t, newFetchCmd(f), "https://example.invalid/repo.git")
	require.Error(t, err)
	assert.ErrorIs(t, err, pkgerrors.ErrBadArgs)
}

func TestFetchWithoutURLOrAllFails(t *testing.T) {
	testRepo(t, "myapp")

	_, err := run(t, newFetchCmd(&globalFlags{}))
	require.Error(t, err)
	assert.ErrorIs(t, err, pkgerrors.ErrBadArgs)
}

func TestFetchAllOnAFreshProjectFetchesNothing(t *testing.T) {
	testRepo(t, "myapp")

	out, err := run(t, newFetchCmd(&globalFlags{all: true}))
	require.NoError(t, err)
	assert.Empty(t, out)
}
