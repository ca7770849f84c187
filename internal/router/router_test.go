package router

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/longknot/git-pkgs/internal/manifest"
)

func TestRouteNoPathsUsesPrefix(t *testing.T) {
	m := manifest.New()
	m.Prefix = "vendor"

	r := Route(m, "left-pad", "", "")
	assert.Equal(t, "vendor/left-pad", r.Path)
	assert.False(t, r.Skip)
}

func TestRouteDefaultPrefixIsDot(t *testing.T) {
	m := manifest.New()
	r := Route(m, "left-pad", "", "")
	assert.Equal(t, "left-pad", r.Path)
}

func TestRouteFirstMatchWins(t *testing.T) {
	m := manifest.New()
	m.Prefix = "vendor"
	m.Paths = manifest.PathList{
		{Pattern: "left-*", Prefix: "special"},
		{Pattern: "*", Prefix: "generic"},
	}

	r := Route(m, "left-pad", "", "")
	assert.Equal(t, "special/left-pad", r.Path)
}

func TestRouteFallsThroughOnNoMatch(t *testing.T) {
	m := manifest.New()
	m.Prefix = "vendor"
	m.Paths = manifest.PathList{
		{Pattern: "acme:*", Prefix: "third_party"},
	}

	r := Route(m, "left-pad", "", "")
	assert.Equal(t, "vendor/left-pad", r.Path)
}

func TestRouteNamespaceScopesPattern(t *testing.T) {
	m := manifest.New()
	m.Paths = manifest.PathList{
		{Pattern: "acme:*", Prefix: "third_party"},
		{Pattern: "*", Prefix: "vendor"},
	}

	r := Route(m, "widget", "acme", "")
	assert.Equal(t, "third_party/widget", r.Path)

	r = Route(m, "widget", "", "")
	assert.Equal(t, "vendor/widget", r.Path)
}

func TestRouteFalsePrefixSkips(t *testing.T) {
	m := manifest.New()
	m.Paths = manifest.PathList{
		{Pattern: "dev:*", Prefix: "false"},
	}

	r := Route(m, "mocklib", "dev", "")
	assert.True(t, r.Skip)
	assert.Empty(t, r.Path)
}

func TestRouteStripsRefSuffix(t *testing.T) {
	m := manifest.New()
	m.Prefix = "vendor"

	r := Route(m, "widget/PKG", "", "/PKG")
	assert.Equal(t, "vendor/widget", r.Path)
}

func TestGlobMatchWildcardMiddle(t *testing.T) {
	assert.True(t, globMatch("left-*", "left-pad"))
	assert.False(t, globMatch("left-*", "right-pad"))
	assert.True(t, globMatch("*", "anything/with/slashes"))
	assert.True(t, globMatch("exact", "exact"))
	assert.False(t, globMatch("exact", "exactly"))
}
