// Package importer implements the importer component (spec.md §4.3): given a
// fully-qualified import path, finds or creates a verified module and
// memoises it for the life of the domain.
package importer

import (
	"fmt"

	"github.com/tiriscoded/yama/internal/yama/fqn"
	"github.com/tiriscoded/yama/internal/yama/model"
	"github.com/tiriscoded/yama/internal/yama/parcel"
	"github.com/tiriscoded/yama/internal/yama/signal"
	"github.com/tiriscoded/yama/internal/yama/verify"
)

// memoKey is the persistent memoisation key: (install-name, parcel-relative
// tail), not the requester-relative path used to reach it (spec.md §4.3
// step 2/5 — memoisation is "by full path", and two different requesters'
// environments can resolve the same install-name for different dep-names).
type memoKey struct {
	installName string
	tail        string
}

// Registry is the subset of *parcel.Registry the importer needs: resolving
// an install-name to its parcel and environment.
type Registry interface {
	Lookup(installName string) (parcel.Parcel, parcel.Environment, bool)
}

// Importer resolves import paths to verified, memoised modules (spec.md
// §4.3). It is not itself safe for concurrent mutation without an external
// lock — the domain serialises all importer calls under its new-data lock,
// matching the teacher's habit (internal/loader.ModuleLoader) of keeping the
// loader's own cache unsynchronized and letting a caller own concurrency.
type Importer struct {
	registry Registry
	compiler Compiler
	sink     signal.Sink

	memo map[memoKey]*model.Module

	hits, misses int
}

// New returns an importer backed by registry, using compiler to turn source
// blobs into modules. sink may be nil.
func New(registry Registry, compiler Compiler, sink signal.Sink) *Importer {
	return &Importer{
		registry: registry,
		compiler: compiler,
		sink:     sink,
		memo:     make(map[memoKey]*model.Module),
	}
}

// Stats returns the memo table's cumulative hit/miss counts (SPEC_FULL.md
// §C.5), used to test the "memoisation" property (spec.md §8).
func (imp *Importer) Stats() (hits, misses int) {
	return imp.hits, imp.misses
}

// Import resolves path, relative to env, to a module. path's head is either
// "self" or one of env's dep-names; the remaining segments are
// parcel-relative (spec.md §4.3 step 1).
func (imp *Importer) Import(path fqn.ImportPath, env parcel.Environment) (*model.Module, error) {
	installName, ok := env.Resolve(path.Head)
	if !ok {
		return nil, imp.raise(signal.ImportModuleNotFound,
			fmt.Sprintf("%q does not resolve in the current environment", path.Head),
			map[string]any{"head": path.Head})
	}
	return imp.importByInstallName(installName, path.Tail())
}

// ImportAbsolute resolves path directly by install-name, bypassing any
// parcel's environment. Fully-qualified names on the wire (spec.md §6) name
// an install-name in their head segment directly — unlike the compiler
// collaborator's "self.X"/"dep.X" paths, there is no dep-name indirection to
// resolve. The type loader uses this form.
func (imp *Importer) ImportAbsolute(path fqn.ImportPath) (*model.Module, error) {
	return imp.importByInstallName(path.Head, path.Tail())
}

func (imp *Importer) importByInstallName(installName, tail string) (*model.Module, error) {
	key := memoKey{installName: installName, tail: tail}
	if mod, ok := imp.memo[key]; ok {
		imp.hits++
		return mod, nil
	}
	imp.misses++

	p, parcelEnv, ok := imp.registry.Lookup(installName)
	if !ok {
		return nil, imp.raise(signal.ImportModuleNotFound,
			fmt.Sprintf("install-name %q is not registered", installName),
			map[string]any{"install_name": installName})
	}

	result, err := p.Import(tail)
	if err != nil {
		return nil, err
	}

	var mod *model.Module
	switch {
	case result.NotFound:
		return nil, imp.raise(signal.ImportModuleNotFound,
			fmt.Sprintf("parcel %q has no module at %q", installName, tail),
			map[string]any{"install_name": installName, "path": tail})

	case result.Module != nil:
		mod = result.Module

	case result.Source != nil:
		services := &services{imp: imp, env: parcelEnv}
		mod, err = imp.compiler.Compile(services, result.Source.Text, result.Source.SourceImportID)
		if err != nil {
			return nil, err
		}

	default:
		return nil, imp.raise(signal.ImportModuleNotFound,
			fmt.Sprintf("parcel %q returned an empty import result for %q", installName, tail),
			map[string]any{"install_name": installName, "path": tail})
	}

	mod.Finalize()
	if err := verify.Module(mod, imp.sink); err != nil {
		return nil, imp.raise(signal.ImportInvalidModule,
			fmt.Sprintf("module %q failed verification: %v", tail, err),
			map[string]any{"install_name": installName, "path": tail})
	}

	imp.memo[key] = mod
	if imp.sink != nil && imp.sink.Enabled(signal.CatImport) {
		imp.sink.Log(signal.CatImport, fmt.Sprintf("imported %s.%s", installName, tail))
	}
	return mod, nil
}

func (imp *Importer) raise(sig signal.Signal, msg string, data map[string]any) error {
	return signal.Raise(imp.sink, signal.CatImport, signal.New(sig, msg, data))
}

// services implements the Services collaborator contract handed to the
// compiler (§6), scoping recursive "self.X"/"dep.X" imports to the parcel
// whose source blob is being compiled.
type services struct {
	imp *Importer
	env parcel.Environment
}

// Import resolves path (e.g. "self.foo" or "dep.bar.baz") against the
// compiling parcel's own environment, recursively invoking the same
// importer — this is how a compile can itself trigger further imports
// (spec.md §4.3 "For source-code, the compiler collaborator is invoked,
// which itself may recursively import").
func (s *services) Import(path string) (*model.Module, error) {
	ip, err := fqn.ParseImportPath(path)
	if err != nil {
		return nil, err
	}
	return s.imp.Import(ip, s.env)
}

func (s *services) Env() parcel.Environment { return s.env }
