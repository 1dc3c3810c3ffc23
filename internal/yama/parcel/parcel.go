// Package parcel implements the parcel/install registry (spec.md §3/§4.2):
// parcel metadata, environments, and atomic install-batch validation.
package parcel

import "github.com/tiriscoded/yama/internal/yama/model"

// SelfName is the reserved environment key every parcel's own install-name
// is available under.
const SelfName = "self"

// Metadata is a parcel's stable self-description (§6).
type Metadata struct {
	SelfName string
	DepNames []string
}

// Valid reports whether the metadata is self-consistent: self-name must not
// appear among dep-names (spec.md §3 "Parcel metadata").
func (m Metadata) Valid() bool {
	if m.SelfName == "" {
		return false
	}
	for _, d := range m.DepNames {
		if d == m.SelfName {
			return false
		}
	}
	return true
}

// ImportResult is the tri-state outcome of Parcel.Import (§6): exactly one
// of NotFound, Module, or Source is populated.
type ImportResult struct {
	NotFound bool
	Module   *model.Module
	Source   *SourceBlob
}

// SourceBlob is source code to be compiled by the external compiler
// collaborator before it can be verified and memoised.
type SourceBlob struct {
	Text           string
	SourceImportID string // diagnostic label, e.g. a file path
}

// Parcel is the external collaborator that supplies modules (§6).
type Parcel interface {
	Metadata() Metadata
	// Import resolves relativePath (parcel-relative, "" denotes the root
	// module) to one of the three ImportResult states.
	Import(relativePath string) (ImportResult, error)
}

// Environment is the immutable, per-parcel mapping from {dep-name, self} to
// install-name, frozen once install succeeds (spec.md §3 "Environment").
type Environment struct {
	m map[string]string
}

func newEnvironment() Environment {
	return Environment{m: make(map[string]string)}
}

// Resolve looks up depOrSelf ("self" or one of the parcel's dep-names) and
// returns the install-name it resolves to.
func (e Environment) Resolve(depOrSelf string) (string, bool) {
	n, ok := e.m[depOrSelf]
	return n, ok
}
