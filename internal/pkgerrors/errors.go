// Package pkgerrors defines the sentinel error taxonomy shared by every
// layer of git-pkgs, so the command surface can classify a failure with
// errors.Is instead of string matching.
package pkgerrors

import "errors"

var (
	// ErrBadArgs indicates a missing required argument or an unknown flag.
	ErrBadArgs = errors.New("bad arguments")

	// ErrNoPkgName indicates the root package name is unset in the manifest.
	ErrNoPkgName = errors.New("no package name configured, run: git pkgs config add name <name>")

	// ErrManifestInvalid indicates pkgs.json is malformed JSON.
	ErrManifestInvalid = errors.New("manifest is invalid")

	// ErrRefMissing indicates a ref that must exist is absent.
	ErrRefMissing = errors.New("ref is missing")

	// ErrRemoteFailed indicates a fetch, push, or clone operation failed.
	ErrRemoteFailed = errors.New("remote operation failed")

	// ErrGitVersion indicates the underlying git implementation is older
	// than the minimum supported version.
	ErrGitVersion = errors.New("git version too old")

	// ErrNotDirectDep indicates remove was invoked on a transitive
	// dependency rather than a direct one.
	ErrNotDirectDep = errors.New("package is not a direct dependency")
)
