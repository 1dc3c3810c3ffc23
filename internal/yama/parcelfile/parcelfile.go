// Package parcelfile implements a YAML-described Parcel (spec.md §6): a
// fixed-layout file naming a parcel's metadata and its path -> source-text
// mapping, for driving the importer without a real front end attached to
// each path. Grounded on internal/eval_harness/spec.go's LoadSpec
// (read-file-then-yaml.Unmarshal-then-validate pattern).
package parcelfile

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tiriscoded/yama/internal/yama/parcel"
)

// Spec is the on-disk shape of a parcel file.
type Spec struct {
	Self    string            `yaml:"self"`
	Deps    []string          `yaml:"deps"`
	Modules map[string]string `yaml:"modules"` // parcel-relative path -> source text
}

// LoadSpec reads and parses a parcel file from path.
func LoadSpec(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("parcelfile: read %s: %w", path, err)
	}
	var spec Spec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("parcelfile: parse %s: %w", path, err)
	}
	if spec.Self == "" {
		return nil, fmt.Errorf("parcelfile: %s: missing required field %q", path, "self")
	}
	return &spec, nil
}

// Parcel adapts a Spec to parcel.Parcel. Every named module path resolves to
// a SourceBlob; anything else is NotFound.
type Parcel struct {
	spec *Spec
}

// New wraps spec as a parcel.Parcel.
func New(spec *Spec) Parcel {
	return Parcel{spec: spec}
}

// Load reads path and wraps the result as a parcel.Parcel in one step.
func Load(path string) (Parcel, error) {
	spec, err := LoadSpec(path)
	if err != nil {
		return Parcel{}, err
	}
	return New(spec), nil
}

func (p Parcel) Metadata() parcel.Metadata {
	return parcel.Metadata{SelfName: p.spec.Self, DepNames: p.spec.Deps}
}

func (p Parcel) Import(relativePath string) (parcel.ImportResult, error) {
	text, ok := p.spec.Modules[relativePath]
	if !ok {
		return parcel.ImportResult{NotFound: true}, nil
	}
	label := p.spec.Self
	if relativePath != "" {
		label += ":" + relativePath
	}
	return parcel.ImportResult{Source: &parcel.SourceBlob{
		Text:           text,
		SourceImportID: label,
	}}, nil
}
