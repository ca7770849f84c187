package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/longknot/git-pkgs/internal/pkgerrors"
)

func TestCheckoutRequiresARevision(t *testing.T) {
	testRepo(t, "myapp")

	_, err := run(t, newCheckoutCmd(&globalFlags{}))
	require.Error(t, err)
	assert.ErrorIs(t, err, pkgerrors.ErrBadArgs)
}

func TestCheckoutAcceptsPkgRevisionFlagInLieuOfPositional(t *testing.T) {
	testRepo(t, "myapp")

	f := &globalFlags{pkgRevision: "1.0.0"}
	_, err := run(t, newCheckoutCmd(f))
	// no release snapshot exists yet, so Checkout itself errors; this test
	// only asserts the flag got the command past the "requires a revision"
	// validation and into Checkout.
	require.Error(t, err)
	assert.ErrorIs(t, err, pkgerrors.ErrRefMissing)
}
