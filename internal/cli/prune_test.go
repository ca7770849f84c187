package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPruneReportsZeroOnAFreshProject(t *testing.T) {
	testRepo(t, "myapp")

	out, err := run(t, newPruneCmd(&globalFlags{}))
	require.NoError(t, err)
	assert.Contains(t, out, "pruned 0 unreachable ref(s)")
}
