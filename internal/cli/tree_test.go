package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTreeOnAFreshProjectPrintsOnlyTheRoot(t *testing.T) {
	testRepo(t, "myapp")

	out, err := run(t, newTreeCmd(&globalFlags{}))
	require.NoError(t, err)
	assert.Equal(t, "myapp HEAD\n", out)
}
