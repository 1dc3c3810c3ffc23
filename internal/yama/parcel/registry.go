package parcel

import (
	"fmt"
	"sort"

	"github.com/tiriscoded/yama/internal/yama/signal"
)

// DepMapping is one (installer-name, dep-name) -> target-install-name entry
// in an install batch (spec.md §3 "Install batch").
type DepMapping struct {
	InstallerName string
	DepName       string
	Target        string
}

// Entry names one parcel to install under InstallName, plus its own
// metadata/implementation.
type Entry struct {
	InstallName string
	Parcel      Parcel
}

// Batch names a set of parcels to install together, plus the dep-mappings
// that resolve every installer's every dep-name to an install-name.
type Batch struct {
	Entries  []Entry
	Mappings []DepMapping
}

// installed is the registry's record of one already-installed parcel.
type installed struct {
	parcel Parcel
	env    Environment
	deps   []string // install-names this parcel's environment resolves to (excluding self)
}

// Registry holds every installed parcel, keyed by install-name, and the
// dep-name -> install-name environment each was frozen with at install time
// (spec.md §4.2).
type Registry struct {
	byName map[string]*installed
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{byName: make(map[string]*installed)}
}

// Has reports whether installName is already registered.
func (r *Registry) Has(installName string) bool {
	_, ok := r.byName[installName]
	return ok
}

// Lookup returns the parcel and environment registered under installName.
func (r *Registry) Lookup(installName string) (Parcel, Environment, bool) {
	e, ok := r.byName[installName]
	if !ok {
		return nil, Environment{}, false
	}
	return e.parcel, e.env, true
}

// Install validates batch against the current registry state and, only if
// every check passes, commits every entry atomically (spec.md §4.2, §3
// "Install batch" invariants, §8 "Install atomicity").
//
// On failure the registry is left byte-for-byte as it was before the call —
// no entry is partially committed.
func (r *Registry) Install(batch Batch, sink signal.Sink) error {
	if sink != nil && sink.Enabled(signal.CatInstall) {
		sink.Log(signal.CatInstall, fmt.Sprintf("installing batch of %d parcel(s)", len(batch.Entries)))
	}

	// 1. Validate each parcel's own metadata.
	metaByInstallName := make(map[string]Metadata, len(batch.Entries))
	for _, e := range batch.Entries {
		md := e.Parcel.Metadata()
		if !md.Valid() {
			return raise(sink, signal.InstallInvalidParcel,
				fmt.Sprintf("parcel %q has self-inconsistent metadata", e.InstallName),
				map[string]any{"install_name": e.InstallName})
		}
		metaByInstallName[e.InstallName] = md
	}

	// 2. Install-name uniqueness: no collision with existing installs, and
	// no duplicate within the batch itself.
	seenInBatch := make(map[string]bool, len(batch.Entries))
	for _, e := range batch.Entries {
		if r.Has(e.InstallName) || seenInBatch[e.InstallName] {
			return raise(sink, signal.InstallInstallNameConflict,
				fmt.Sprintf("install-name %q already in use", e.InstallName),
				map[string]any{"install_name": e.InstallName})
		}
		seenInBatch[e.InstallName] = true
	}

	// 3. Dep-mapping completeness: every (installer, dep-name) pair named by
	// a batched parcel's metadata must have at least one mapping; when the
	// same pair is mapped more than once, the last mapping in the batch wins.
	mappingIndex := make(map[string]string) // "installer\x00depname" -> target
	for _, dm := range batch.Mappings {
		mappingIndex[dm.InstallerName+"\x00"+dm.DepName] = dm.Target
	}
	for _, e := range batch.Entries {
		md := metaByInstallName[e.InstallName]
		for _, dep := range md.DepNames {
			if _, ok := mappingIndex[e.InstallName+"\x00"+dep]; !ok {
				return raise(sink, signal.InstallMissingDepMapping,
					fmt.Sprintf("parcel %q has no mapping for dep-name %q", e.InstallName, dep),
					map[string]any{"install_name": e.InstallName, "dep_name": dep})
			}
		}
	}

	// 4. Dep-mapping target validity: every mapping's target must name a
	// parcel in the batch or already installed.
	for _, dm := range batch.Mappings {
		if !seenInBatch[dm.Target] && !r.Has(dm.Target) {
			return raise(sink, signal.InstallInvalidDepMapping,
				fmt.Sprintf("dep-mapping (%s, %s) targets unknown parcel %q", dm.InstallerName, dm.DepName, dm.Target),
				map[string]any{"installer_name": dm.InstallerName, "dep_name": dm.DepName, "target": dm.Target})
		}
	}

	// Build each batched parcel's prospective environment.
	newEnvs := make(map[string]Environment, len(batch.Entries))
	newDeps := make(map[string][]string, len(batch.Entries))
	for _, e := range batch.Entries {
		md := metaByInstallName[e.InstallName]
		env := newEnvironment()
		env.m[SelfName] = e.InstallName
		var deps []string
		for _, dep := range md.DepNames {
			target := mappingIndex[e.InstallName+"\x00"+dep]
			env.m[dep] = target
			deps = append(deps, target)
		}
		newEnvs[e.InstallName] = env
		newDeps[e.InstallName] = deps
	}

	// 5. Acyclicity of the union graph (old installs + batch), via DFS with
	// gray/black colouring — adapted from the teacher's single-root
	// TopoSortFromRoot (internal/link/topo.go) generalized to check every
	// node in the union graph rather than one root's reachable set.
	if cyclePath, ok := r.findCycle(newDeps); !ok {
		return raise(sink, signal.InstallDepGraphCycle,
			fmt.Sprintf("dependency graph cycle: %v", cyclePath),
			map[string]any{"cycle": cyclePath})
	}

	// All checks passed: commit atomically.
	for _, e := range batch.Entries {
		r.byName[e.InstallName] = &installed{
			parcel: e.Parcel,
			env:    newEnvs[e.InstallName],
			deps:   newDeps[e.InstallName],
		}
	}
	if sink != nil && sink.Enabled(signal.CatInstall) {
		names := make([]string, 0, len(batch.Entries))
		for _, e := range batch.Entries {
			names = append(names, e.InstallName)
		}
		sort.Strings(names)
		sink.Log(signal.CatInstall, fmt.Sprintf("installed: %v", names))
	}
	return nil
}

// color used during DFS cycle detection.
type color int

const (
	white color = iota
	gray
	black
)

// findCycle runs gray/black DFS over the union of already-installed parcels
// and the prospective batch (newDeps). It returns (nil, true) if acyclic, or
// (path, false) naming one discovered cycle.
func (r *Registry) findCycle(newDeps map[string][]string) ([]string, bool) {
	depsOf := func(name string) []string {
		if d, ok := newDeps[name]; ok {
			return d
		}
		if e, ok := r.byName[name]; ok {
			return e.deps
		}
		return nil
	}

	colors := make(map[string]color)
	var path []string
	var cycle []string

	var visit func(name string) bool
	visit = func(name string) bool {
		switch colors[name] {
		case black:
			return true
		case gray:
			// Found a cycle; record the path from its first occurrence.
			start := 0
			for i, n := range path {
				if n == name {
					start = i
					break
				}
			}
			cycle = append(append([]string(nil), path[start:]...), name)
			return false
		}
		colors[name] = gray
		path = append(path, name)
		for _, dep := range depsOf(name) {
			if !visit(dep) {
				return false
			}
		}
		path = path[:len(path)-1]
		colors[name] = black
		return true
	}

	all := make(map[string]bool)
	for name := range newDeps {
		all[name] = true
	}
	for name := range r.byName {
		all[name] = true
	}
	names := make([]string, 0, len(all))
	for name := range all {
		names = append(names, name)
	}
	sort.Strings(names) // deterministic traversal order

	for _, name := range names {
		if colors[name] == white {
			if !visit(name) {
				return cycle, false
			}
		}
	}
	return nil, true
}

func raise(sink signal.Sink, sig signal.Signal, msg string, data map[string]any) error {
	return signal.Raise(sink, signal.CatInstall, signal.New(sig, msg, data))
}
