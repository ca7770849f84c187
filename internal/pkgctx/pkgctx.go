// Package pkgctx implements the Context & Config Layering (C7): building
// the immutable set of operational defaults a command runs with, merged
// from CLI overrides, the manifest, the environment, and hard-coded
// fallbacks, in that priority order.
package pkgctx

import (
	"os"
	"path/filepath"

	"dario.cat/mergo"
	"github.com/adrg/xdg"

	"github.com/longknot/git-pkgs/internal/manifest"
	"github.com/longknot/git-pkgs/internal/resolver"
)

// Defaults are the hard-coded fallbacks used when neither a CLI flag, the
// manifest, nor an environment variable supplies a value.
var Defaults = Context{
	Prefix:         "",
	Revision:       "HEAD",
	Type:           "pkg",
	Strategy:       string(resolver.StrategyMax),
	RefSuffix:      "",
	StripRefSuffix: false,
	ManifestName:   "pkgs.json",
}

// Context is the layered configuration a command invocation runs with.
// Every field is a plain value (no pointers) so mergo's override merge can
// treat a field's zero value as "unset" and fall through to the next
// layer, mirroring the ambiguity inherent in the "CLI override -> manifest
// -> environment -> hard-coded" layering the spec describes.
type Context struct {
	Prefix         string
	Revision       string
	Type           string
	Strategy       string
	RefSuffix      string
	StripRefSuffix bool
	ManifestName   string
}

// FromEnvironment reads the PKGS_DEFAULT_* / PKGS_REF_SUFFIX /
// PKGS_STRIP_REF_SUFFIX / GIT_PKGS_JSON environment variables into a
// Context, leaving fields whose variable is unset at their zero value.
func FromEnvironment() Context {
	var c Context
	c.Prefix = os.Getenv("PKGS_DEFAULT_PREFIX")
	c.Revision = os.Getenv("PKGS_DEFAULT_REVISION")
	c.Type = os.Getenv("PKGS_DEFAULT_TYPE")
	c.Strategy = os.Getenv("PKGS_DEFAULT_STRATEGY")
	c.RefSuffix = os.Getenv("PKGS_REF_SUFFIX")
	c.StripRefSuffix = os.Getenv("PKGS_STRIP_REF_SUFFIX") == "true"
	c.ManifestName = os.Getenv("GIT_PKGS_JSON")
	return c
}

// FromManifest extracts the subset of Context the manifest itself can
// supply (currently just prefix; the manifest is silent on the rest).
func FromManifest(m *manifest.Manifest) Context {
	return Context{Prefix: m.Prefix}
}

// Resolve layers cliOverride (highest priority) over manifest config over
// environment config over Defaults (lowest), via repeated
// mergo.WithOverride merges applied from lowest to highest priority.
func Resolve(cliOverride, fromManifest, fromEnv Context) (Context, error) {
	result := Defaults
	for _, layer := range []Context{fromEnv, fromManifest, cliOverride} {
		if err := mergo.Merge(&result, layer, mergo.WithOverride); err != nil {
			return Context{}, err
		}
	}
	return result, nil
}

// ImportConfigPath returns the path of a git-pkgs configuration file under
// the XDG config home. No code in this module reads or writes that file.
func ImportConfigPath() string {
	return filepath.Join(xdg.ConfigHome, "git-pkgs", "config.json")
}

// ImportConfigJSON returns the inline manifest payload an ecosystem
// importer provides for add-dir via PKGS_IMPORT_CONFIG_JSON, or "" if
// unset.
func ImportConfigJSON() string {
	return os.Getenv("PKGS_IMPORT_CONFIG_JSON")
}
