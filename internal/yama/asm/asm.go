// Package asm implements a minimal textual bytecode assembly format and the
// Compiler collaborator (spec.md §6) that turns it into a *model.Module.
// There is no real source language in scope here (spec.md §1 places the
// concrete parser/grammar outside the core) — this format exists purely to
// drive the importer's SourceBlob path from tests and the CLI demo.
package asm

import (
	"github.com/tiriscoded/yama/internal/yama/importer"
	"github.com/tiriscoded/yama/internal/yama/model"
)

// Compiler implements importer.Compiler over the assembly format described
// in parser.go's doc comment. It never needs the Services collaborator: the
// assembly format names referenced types by their fully-qualified string
// directly in type-constants, so nothing during "compilation" needs to
// recursively import — resolution of those names happens later, when the
// type loader links the resulting module's constant tables (spec.md §4.4).
type Compiler struct{}

// New returns the assembly Compiler.
func New() Compiler { return Compiler{} }

// Compile parses source into a module. services is accepted to satisfy the
// importer.Compiler interface but unused (see the package doc comment).
func (Compiler) Compile(_ importer.Services, source, _ string) (*model.Module, error) {
	return newParser(source).Parse()
}
