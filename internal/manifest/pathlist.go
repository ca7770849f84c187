package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// PathEntry is one "[<ns>:]<name-pattern>" -> prefix mapping from the
// manifest's paths object. Prefix is either a filesystem prefix string or
// the literal "false" (suppress checkout for matching packages).
type PathEntry struct {
	Pattern string
	Prefix  string
}

// PathList is an ordered sequence of PathEntry, since the Path Router
// evaluates patterns in declaration order and the first match wins —
// information a plain Go map cannot preserve across a JSON round trip.
type PathList []PathEntry

// UnmarshalJSON decodes a JSON object into an order-preserving PathList by
// driving json.Decoder's token stream directly, rather than through
// encoding/json's (unordered) map decoding.
func (p *PathList) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("reading paths object start: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("paths must be a JSON object, got %v", tok)
	}

	var out PathList
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("reading paths key: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("paths key must be a string, got %v", keyTok)
		}

		valTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("reading paths value for %s: %w", key, err)
		}

		var value string
		switch v := valTok.(type) {
		case string:
			value = v
		case bool:
			value = fmt.Sprintf("%t", v)
		default:
			return fmt.Errorf("paths value for %s must be a string or boolean, got %v", key, valTok)
		}

		out = append(out, PathEntry{Pattern: key, Prefix: value})
	}

	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("reading paths object end: %w", err)
	}

	*p = out
	return nil
}

// MarshalJSON renders the list back into a JSON object, preserving
// declaration order (valid per the JSON spec, which does not mandate
// sorted keys, and is what every consumer of this file — including this
// package's own Path Router — depends on).
func (p PathList) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := p.writeIndented(&buf, ""); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writeIndented writes the object body using indent as the base indentation
// for nested lines, matching MarshalCanonical's hand-rolled formatting.
func (p PathList) writeIndented(buf *bytes.Buffer, indent string) error {
	if len(p) == 0 {
		buf.WriteString("{}")
		return nil
	}

	buf.WriteString("{\n")
	for i, e := range p {
		fmt.Fprintf(buf, "%s  %q: %q", indent, e.Pattern, e.Prefix)
		if i < len(p)-1 {
			buf.WriteByte(',')
		}
		buf.WriteByte('\n')
	}
	fmt.Fprintf(buf, "%s}", indent)
	return nil
}
