// Package jsonio implements the json-export / json-import wire shapes used
// to move a dependency graph between tooling that doesn't speak the ref
// namespace directly (e.g. a CI system summarizing what was built).
package jsonio

import (
	"encoding/json"
	"fmt"
)

// Package is one entry in an Export's packages array.
type Package struct {
	Name        string `json:"name"`
	Revision    string `json:"revision"`
	Author      string `json:"author,omitempty"`
	Email       string `json:"email,omitempty"`
	Description string `json:"description,omitempty"`
	Snapshot    string `json:"snapshot"`
	Reference   string `json:"reference"`
	URL         string `json:"url"`
	Mirror      string `json:"mirror,omitempty"`
}

// Export is the document produced by `git pkgs json-export`.
type Export struct {
	Name     string    `json:"name"`
	Revision string    `json:"revision"`
	Packages []Package `json:"packages"`
}

// Marshal renders e as indented JSON.
func (e Export) Marshal() ([]byte, error) {
	data, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding export document: %w", err)
	}
	return append(data, '\n'), nil
}

// ImportEntry is one entry in an Import's packages array: the minimal
// (name, revision, url) triple needed to replay `add`.
type ImportEntry struct {
	Name     string `json:"name"`
	Revision string `json:"revision"`
	URL      string `json:"url"`
}

// Import is the document consumed by `git pkgs json-import`.
type Import struct {
	Packages []ImportEntry `json:"packages"`
}

// Unmarshal parses an Import document from data.
func Unmarshal(data []byte) (Import, error) {
	var im Import
	if err := json.Unmarshal(data, &im); err != nil {
		return Import{}, fmt.Errorf("decoding import document: %w", err)
	}
	return im, nil
}
