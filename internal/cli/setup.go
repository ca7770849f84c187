package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/longknot/git-pkgs/internal/manifest"
	"github.com/longknot/git-pkgs/internal/pkgctx"
	"github.com/longknot/git-pkgs/internal/resolver"
	"github.com/longknot/git-pkgs/internal/store"
)

// invocation bundles everything a verb needs after loading the working
// tree, the manifest, and the layered Context: the repository adapter, the
// manifest itself, the resolved Context, and a ready-to-use Resolver
// configured from that Context.
type invocation struct {
	Adapter  *store.Adapter
	Manifest *manifest.Manifest
	Ctx      pkgctx.Context
	Resolver *resolver.Resolver
	Root     string
	Path     string
}

// openInvocation opens the repository rooted at the current working
// directory, loads pkgs.json (named per GIT_PKGS_JSON / ManifestName), and
// layers CLI flags over the manifest over the environment over the
// hard-coded defaults, per the Context & Config Layering component.
func openInvocation(cmd *cobra.Command, f *globalFlags) (*invocation, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("resolving working directory: %w", err)
	}

	a, err := store.Open(wd)
	if err != nil {
		return nil, err
	}

	env := pkgctx.FromEnvironment()
	manifestName := env.ManifestName
	if manifestName == "" {
		manifestName = pkgctx.Defaults.ManifestName
	}

	manifestPath := filepath.Join(wd, manifestName)
	if f.configPath != "" {
		manifestPath = f.configPath
		if info, err := os.Stat(f.configPath); err == nil && info.IsDir() {
			manifestPath = filepath.Join(f.configPath, manifestName)
		}
	}

	m, err := manifest.Load(manifestPath)
	if err != nil {
		return nil, err
	}

	cliOverride := pkgctx.Context{
		Prefix:   f.prefix,
		Strategy: f.strategy,
	}
	fromManifest := pkgctx.FromManifest(m)

	ctx, err := pkgctx.Resolve(cliOverride, fromManifest, env)
	if err != nil {
		return nil, err
	}

	res := &resolver.Resolver{
		Adapter:      a,
		Manifest:     m,
		Root:         m.Name,
		WorktreeRoot: wd,
		Strategy:     resolver.Strategy(ctx.Strategy),
		RefSuffix:    ctx.RefSuffix,
	}

	return &invocation{
		Adapter:  a,
		Manifest: m,
		Ctx:      ctx,
		Resolver: res,
		Root:     m.Name,
		Path:     manifestPath,
	}, nil
}

// saveManifest persists inv's manifest back to its original path.
func (inv *invocation) saveManifest() error {
	return inv.Manifest.Save(inv.Path)
}

// namespace resolves the -n/--namespace flag, defaulting to the
// unnamespaced group.
func namespace(f *globalFlags) string {
	return f.namespace
}
