package manifest

import (
	"fmt"
	"strconv"
	"strings"
)

// scalarField maps a dotted top-level key to accessors for Get/Set on the
// fixed string fields. config./extra. are handled separately, since those
// two fields hold arbitrary nested JSON.
func (m *Manifest) scalarField(key string) (get func() string, set func(string), ok bool) {
	switch key {
	case "name":
		return func() string { return m.Name }, func(v string) { m.Name = v }, true
	case "description":
		return func() string { return m.Description }, func(v string) { m.Description = v }, true
	case "version":
		return func() string { return m.Version }, func(v string) { m.Version = v }, true
	case "author":
		return func() string { return m.Author }, func(v string) { m.Author = v }, true
	case "license":
		return func() string { return m.License }, func(v string) { m.License = v }, true
	case "repository":
		return func() string { return m.Repository }, func(v string) { m.Repository = v }, true
	case "url":
		return func() string { return m.URL }, func(v string) { m.URL = v }, true
	case "homepage":
		return func() string { return m.Homepage }, func(v string) { m.Homepage = v }, true
	case "funding":
		return func() string { return m.Funding }, func(v string) { m.Funding = v }, true
	case "prefix":
		return func() string { return m.Prefix }, func(v string) { m.Prefix = v }, true
	default:
		return nil, nil, false
	}
}

// Get reads a dotted-path key ("name", "config.registry.token", ...),
// returning ok=false if the key (or an intermediate segment) is unset.
func (m *Manifest) Get(key string) (string, bool) {
	segs := strings.Split(key, ".")

	if get, _, ok := m.scalarField(segs[0]); ok && len(segs) == 1 {
		v := get()
		return v, v != ""
	}

	switch segs[0] {
	case "config":
		return getNested(m.Config, segs[1:])
	case "extra":
		return getNested(m.Extra, segs[1:])
	case "scripts":
		if len(segs) == 2 {
			v, ok := m.Scripts[segs[1]]
			return v, ok
		}
	case "engines":
		if len(segs) == 2 {
			v, ok := m.Engines[segs[1]]
			return v, ok
		}
	}

	return "", false
}

// Set writes a dotted-path key. value is either a string or one of the
// booleans true/false; scalar sets are idempotent (setting the same value
// twice leaves the manifest unchanged).
func (m *Manifest) Set(key string, value any) error {
	str, err := coerceScalar(value)
	if err != nil {
		return err
	}

	segs := strings.Split(key, ".")

	if _, set, ok := m.scalarField(segs[0]); ok && len(segs) == 1 {
		set(str)
		return nil
	}

	switch segs[0] {
	case "config":
		if m.Config == nil {
			m.Config = map[string]any{}
		}
		return setNested(m.Config, segs[1:], str)
	case "extra":
		if m.Extra == nil {
			m.Extra = map[string]any{}
		}
		return setNested(m.Extra, segs[1:], str)
	case "scripts":
		if len(segs) != 2 {
			return fmt.Errorf("scripts.<name> requires exactly one subkey, got %q", key)
		}
		if m.Scripts == nil {
			m.Scripts = map[string]string{}
		}
		m.Scripts[segs[1]] = str
		return nil
	case "engines":
		if len(segs) != 2 {
			return fmt.Errorf("engines.<name> requires exactly one subkey, got %q", key)
		}
		if m.Engines == nil {
			m.Engines = map[string]string{}
		}
		m.Engines[segs[1]] = str
		return nil
	default:
		return fmt.Errorf("unknown manifest key %q", key)
	}
}

func coerceScalar(value any) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case bool:
		return strconv.FormatBool(v), nil
	default:
		return "", fmt.Errorf("value must be a string or bool, got %T", value)
	}
}

func getNested(m map[string]any, segs []string) (string, bool) {
	if len(segs) == 0 {
		return "", false
	}
	cur := any(m)
	for i, seg := range segs {
		asMap, ok := cur.(map[string]any)
		if !ok {
			return "", false
		}
		v, ok := asMap[seg]
		if !ok {
			return "", false
		}
		if i == len(segs)-1 {
			return fmt.Sprintf("%v", v), true
		}
		cur = v
	}
	return "", false
}

func setNested(m map[string]any, segs []string, value string) error {
	if len(segs) == 0 {
		return fmt.Errorf("missing subkey")
	}
	cur := m
	for _, seg := range segs[:len(segs)-1] {
		next, ok := cur[seg].(map[string]any)
		if !ok {
			next = map[string]any{}
			cur[seg] = next
		}
		cur = next
	}
	cur[segs[len(segs)-1]] = value
	return nil
}
