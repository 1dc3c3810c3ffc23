// Package domain wires the module model, parcel registry, importer, and
// type loader into the single-writer/multi-reader orchestrator spec.md §5
// describes: a domain owns one shared/exclusive lock over published state
// and one recursive "new-data" lock serialising every operation that can add
// new types or modules.
package domain

import (
	"sync"

	"github.com/tiriscoded/yama/internal/yama/builtin"
	"github.com/tiriscoded/yama/internal/yama/fqn"
	"github.com/tiriscoded/yama/internal/yama/importer"
	"github.com/tiriscoded/yama/internal/yama/model"
	"github.com/tiriscoded/yama/internal/yama/parcel"
	"github.com/tiriscoded/yama/internal/yama/signal"
	"github.com/tiriscoded/yama/internal/yama/typeload"
)

// Domain is the top-level handle a host program holds: install parcels into
// it, then Import or Load against it. A zero Domain is not usable; construct
// one with New or NewDefault.
type Domain struct {
	newData *reentrantLock // serializes install/import/load/compile (§5)
	// mu is the shared/exclusive lock over already-published state (§5): a
	// reader that only consults memoised results (Stats) takes RLock; every
	// mutating operation (Install/Import/Load) takes it for writing, nested
	// inside newData, so Stats can never observe state mid-mutation.
	mu sync.RWMutex

	registry *parcel.Registry
	importer *importer.Importer
	loader   *typeload.Loader
	sink     signal.Sink
}

// Option configures a Domain at construction time (functional-options
// pattern, matching the teacher's habit of small With*-style configuration
// — see cmd/ailang/main.go's flag-driven construction — generalized here to
// an explicit Option type since Domain has more than one optional
// collaborator).
type Option func(*settings)

type settings struct {
	sink     signal.Sink
	compiler importer.Compiler
}

// WithSink attaches a debug sink. The default is signal.NullSink{}.
func WithSink(sink signal.Sink) Option {
	return func(s *settings) { s.sink = sink }
}

// WithCompiler attaches the compiler collaborator (§6) used to turn
// SourceBlob import results into modules. A domain with no compiler can
// still install parcels and import ready-made *model.Module results; it
// fails any import that resolves to a SourceBlob.
func WithCompiler(c importer.Compiler) Option {
	return func(s *settings) { s.compiler = c }
}

// New constructs an empty domain with no pre-installed parcels.
func New(opts ...Option) *Domain {
	s := &settings{sink: signal.NullSink{}, compiler: noCompiler{}}
	for _, opt := range opts {
		opt(s)
	}

	reg := parcel.New()
	imp := importer.New(reg, s.compiler, s.sink)
	return &Domain{
		newData:  newReentrantLock(),
		registry: reg,
		importer: imp,
		loader:   typeload.New(imp, s.sink),
		sink:     s.sink,
	}
}

// NewDefault constructs a domain with the builtin parcel pre-installed under
// builtin.InstallName, matching spec.md §4.2's "a built-in parcel ... is
// pre-installed under a fixed name".
func NewDefault(opts ...Option) *Domain {
	d := New(opts...)
	batch := parcel.Batch{
		Entries: []parcel.Entry{{InstallName: builtin.InstallName, Parcel: builtin.New()}},
	}
	if err := d.Install(batch); err != nil {
		// The builtin parcel's own metadata is fixed and self-consistent, and
		// installing into a fresh registry can never hit a name conflict or
		// dep-mapping failure — this can only fail if builtin.New() itself is
		// broken.
		panic("domain: pre-installing the builtin parcel failed: " + err.Error())
	}
	return d
}

// Install validates and commits batch (spec.md §4.2), serialized by the
// new-data lock.
func (d *Domain) Install(batch parcel.Batch) error {
	d.newData.Lock()
	defer d.newData.Unlock()
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.registry.Install(batch, d.sink)
}

// Import resolves a fully-qualified import path's head directly as an
// install-name (spec.md §6's wire format), returning the module it names.
func (d *Domain) Import(importPath string) (*model.Module, error) {
	ip, err := fqn.ParseImportPath(importPath)
	if err != nil {
		return nil, err
	}
	d.newData.Lock()
	defer d.newData.Unlock()
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.importer.ImportAbsolute(ip)
}

// Load resolves a fully-qualified item name to a linked TypeRef (spec.md
// §4.4).
func (d *Domain) Load(fqName string) (typeload.TypeRef, error) {
	d.newData.Lock()
	defer d.newData.Unlock()
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.loader.Load(fqName)
}

// Stats exposes the importer's cumulative memo hit/miss counts
// (SPEC_FULL.md §C.5).
func (d *Domain) Stats() (hits, misses int) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.importer.Stats()
}

// noCompiler is the zero-value Compiler used when a domain is constructed
// without WithCompiler: any SourceBlob import result fails loudly instead of
// nil-pointer-panicking deep inside the importer.
type noCompiler struct{}

func (noCompiler) Compile(_ importer.Services, _ string, sourceImportPath string) (*model.Module, error) {
	return nil, signal.New(signal.ImportInvalidModule,
		"no compiler collaborator is attached to this domain; cannot compile "+sourceImportPath,
		map[string]any{"source_import_path": sourceImportPath})
}
