package pkgctx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveFallsBackToDefaults(t *testing.T) {
	c, err := Resolve(Context{}, Context{}, Context{})
	require.NoError(t, err)
	assert.Equal(t, Defaults, c)
}

func TestResolveEnvironmentOverridesDefaults(t *testing.T) {
	c, err := Resolve(Context{}, Context{}, Context{Strategy: "update"})
	require.NoError(t, err)
	assert.Equal(t, "update", c.Strategy)
	assert.Equal(t, Defaults.Revision, c.Revision)
}

func TestResolveManifestOverridesEnvironment(t *testing.T) {
	c, err := Resolve(Context{}, Context{Prefix: "vendor"}, Context{Prefix: "fromenv"})
	require.NoError(t, err)
	assert.Equal(t, "vendor", c.Prefix)
}

func TestResolveCLIOverridesEverything(t *testing.T) {
	c, err := Resolve(
		Context{Strategy: "min"},
		Context{Strategy: "update"},
		Context{Strategy: "max"},
	)
	require.NoError(t, err)
	assert.Equal(t, "min", c.Strategy)
}

func TestFromEnvironmentReadsVariables(t *testing.T) {
	t.Setenv("PKGS_DEFAULT_STRATEGY", "min")
	t.Setenv("PKGS_DEFAULT_PREFIX", "vendor")

	c := FromEnvironment()
	assert.Equal(t, "min", c.Strategy)
	assert.Equal(t, "vendor", c.Prefix)
}
