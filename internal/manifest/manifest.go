// Package manifest implements the Manifest Store (C2): a typed,
// canonicalized representation of the pkgs.json document committed into
// the working tree alongside the ref namespace.
package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/longknot/git-pkgs/internal/pkgerrors"
)

// fieldOrder is the canonical top-level key order pkgs.json is written in.
// Keys not present here are dropped silently on write.
var fieldOrder = []string{
	"name", "description", "version", "author", "authors", "contributors",
	"license", "repository", "url", "homepage", "funding", "prefix",
	"dependencies", "paths", "engines", "files", "config", "extra", "scripts",
}

// Manifest is the in-memory form of pkgs.json.
type Manifest struct {
	Name         string
	Description  string
	Version      string
	Author       string
	Authors      []string
	Contributors []string
	License      string
	Repository   string
	URL          string
	Homepage     string
	Funding      string
	Prefix       string
	Dependencies map[string]string // "[<ns>:]<pkg>" -> Rev
	Paths        PathList
	Engines      map[string]string
	Files        []string
	Config       map[string]any
	Extra        map[string]any
	Scripts      map[string]string
}

// New returns an empty Manifest, the value used when pkgs.json does not
// yet exist.
func New() *Manifest {
	return &Manifest{
		Dependencies: map[string]string{},
		Engines:      map[string]string{},
		Config:       map[string]any{},
		Extra:        map[string]any{},
		Scripts:      map[string]string{},
	}
}

// Load reads and parses path. A missing file yields an empty Manifest, not
// an error. A syntactically invalid file is fatal.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}

	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", pkgerrors.ErrManifestInvalid, path, err)
	}
	return m, nil
}

// Parse decodes data as a manifest document, independent of any file on
// disk — used to read pkgs.json blobs out of git tree objects (e.g. a
// dependency's own orphan commit) rather than the working tree.
func Parse(data []byte) (*Manifest, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", pkgerrors.ErrManifestInvalid, err)
	}

	m := New()
	if err := m.unmarshalFields(raw); err != nil {
		return nil, fmt.Errorf("%w: %v", pkgerrors.ErrManifestInvalid, err)
	}
	return m, nil
}

func (m *Manifest) unmarshalFields(raw map[string]json.RawMessage) error {
	str := func(key string, dst *string) error {
		v, ok := raw[key]
		if !ok {
			return nil
		}
		return json.Unmarshal(v, dst)
	}
	strSlice := func(key string, dst *[]string) error {
		v, ok := raw[key]
		if !ok {
			return nil
		}
		return json.Unmarshal(v, dst)
	}
	strMap := func(key string, dst *map[string]string) error {
		v, ok := raw[key]
		if !ok {
			return nil
		}
		return json.Unmarshal(v, dst)
	}
	anyMap := func(key string, dst *map[string]any) error {
		v, ok := raw[key]
		if !ok {
			return nil
		}
		return json.Unmarshal(v, dst)
	}

	for _, step := range []func() error{
		func() error { return str("name", &m.Name) },
		func() error { return str("description", &m.Description) },
		func() error { return str("version", &m.Version) },
		func() error { return str("author", &m.Author) },
		func() error { return strSlice("authors", &m.Authors) },
		func() error { return strSlice("contributors", &m.Contributors) },
		func() error { return str("license", &m.License) },
		func() error { return str("repository", &m.Repository) },
		func() error { return str("url", &m.URL) },
		func() error { return str("homepage", &m.Homepage) },
		func() error { return str("funding", &m.Funding) },
		func() error { return str("prefix", &m.Prefix) },
		func() error { return strMap("dependencies", &m.Dependencies) },
		func() error {
			if v, ok := raw["paths"]; ok {
				return json.Unmarshal(v, &m.Paths)
			}
			return nil
		},
		func() error { return strMap("engines", &m.Engines) },
		func() error { return strSlice("files", &m.Files) },
		func() error { return anyMap("config", &m.Config) },
		func() error { return anyMap("extra", &m.Extra) },
		func() error { return strMap("scripts", &m.Scripts) },
	} {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

// Save writes the manifest to path in canonical field order, atomically
// (write to a sibling temp file, then rename).
func (m *Manifest) Save(path string) error {
	data, err := m.MarshalCanonical()
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".pkgs.json.tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file for manifest: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing manifest: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing manifest temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming manifest into place: %w", err)
	}
	return nil
}

// MarshalCanonical renders the manifest in fixed field order with
// dependencies sorted unnamespaced-first. Empty/zero fields are omitted;
// no null-valued keys are ever emitted.
func (m *Manifest) MarshalCanonical() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("{\n")

	type kv struct {
		key   string
		value any
		omit  bool
	}
	fields := map[string]kv{
		"name":         {"name", m.Name, m.Name == ""},
		"description":  {"description", m.Description, m.Description == ""},
		"version":      {"version", m.Version, m.Version == ""},
		"author":       {"author", m.Author, m.Author == ""},
		"authors":      {"authors", m.Authors, len(m.Authors) == 0},
		"contributors": {"contributors", m.Contributors, len(m.Contributors) == 0},
		"license":      {"license", m.License, m.License == ""},
		"repository":   {"repository", m.Repository, m.Repository == ""},
		"url":          {"url", m.URL, m.URL == ""},
		"homepage":     {"homepage", m.Homepage, m.Homepage == ""},
		"funding":      {"funding", m.Funding, m.Funding == ""},
		"prefix":       {"prefix", m.Prefix, m.Prefix == ""},
		"engines":      {"engines", m.Engines, len(m.Engines) == 0},
		"files":        {"files", m.Files, len(m.Files) == 0},
		"config":       {"config", m.Config, len(m.Config) == 0},
		"extra":        {"extra", m.Extra, len(m.Extra) == 0},
		"scripts":      {"scripts", m.Scripts, len(m.Scripts) == 0},
	}

	var written []string
	for _, key := range fieldOrder {
		switch key {
		case "dependencies":
			if len(m.Dependencies) == 0 {
				continue
			}
			written = append(written, key)
		case "paths":
			if len(m.Paths) == 0 {
				continue
			}
			written = append(written, key)
		default:
			f, ok := fields[key]
			if !ok || f.omit {
				continue
			}
			written = append(written, key)
		}
	}

	for i, key := range written {
		fmt.Fprintf(&buf, "  %q: ", key)

		switch key {
		case "dependencies":
			if err := writeDependencies(&buf, m.Dependencies); err != nil {
				return nil, err
			}
		case "paths":
			if err := m.Paths.writeIndented(&buf, "  "); err != nil {
				return nil, err
			}
		default:
			enc, err := json.Marshal(fields[key].value)
			if err != nil {
				return nil, fmt.Errorf("encoding field %s: %w", key, err)
			}
			buf.Write(enc)
		}

		if i < len(written)-1 {
			buf.WriteByte(',')
		}
		buf.WriteByte('\n')
	}

	buf.WriteString("}\n")
	return buf.Bytes(), nil
}

// writeDependencies renders dependencies with unnamespaced keys first, then
// namespaced keys, each block in lexicographic order.
func writeDependencies(buf *bytes.Buffer, deps map[string]string) error {
	var unnamespaced, namespaced []string
	for k := range deps {
		if strings.Contains(k, ":") {
			namespaced = append(namespaced, k)
		} else {
			unnamespaced = append(unnamespaced, k)
		}
	}
	sort.Strings(unnamespaced)
	sort.Strings(namespaced)
	ordered := append(unnamespaced, namespaced...)

	buf.WriteString("{\n")
	for i, k := range ordered {
		fmt.Fprintf(buf, "    %q: %q", k, deps[k])
		if i < len(ordered)-1 {
			buf.WriteByte(',')
		}
		buf.WriteByte('\n')
	}
	buf.WriteString("  }")
	return nil
}

// DepKey formats a dependency map key from a package name and optional
// namespace: "pkg" or "ns:pkg".
func DepKey(name string, ns string) string {
	if ns == "" {
		return name
	}
	return ns + ":" + name
}

// SplitDepKey reverses DepKey.
func SplitDepKey(key string) (name, ns string) {
	if idx := strings.IndexByte(key, ':'); idx >= 0 {
		return key[idx+1:], key[:idx]
	}
	return key, ""
}

// AddDep upserts the direct-dependency edge "[<ns>:]<name>" -> rev.
func (m *Manifest) AddDep(name, rev, ns string) {
	if m.Dependencies == nil {
		m.Dependencies = map[string]string{}
	}
	m.Dependencies[DepKey(name, ns)] = rev
}

// RemoveDep removes the direct-dependency edge for name/ns, if present.
func (m *Manifest) RemoveDep(name, ns string) {
	delete(m.Dependencies, DepKey(name, ns))
}

// HasDep reports whether name/ns is a direct dependency.
func (m *Manifest) HasDep(name, ns string) bool {
	_, ok := m.Dependencies[DepKey(name, ns)]
	return ok
}
