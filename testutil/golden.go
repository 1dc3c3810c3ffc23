// Package testutil's golden helpers structurally diff Yama's own domain
// types — *model.Module and typeload.TypeRef — adapted from the teacher's
// internal/parser/testutil.go, which uses go-cmp to diff parsed ASTs.
// Neither Module nor TypeRef can be handed to cmp.Diff directly: Module's
// fields are entirely unexported (spec.md §4.1's facet maps), and TypeRef
// wraps a single unexported *node pointer carrying handle identity (spec.md
// §9). Snapshot projects each through its public accessor surface into a
// plain, exported-field value that cmp can walk; CallSigRef, which embeds
// TypeRef values directly, is compared with cmpopts.IgnoreUnexported so its
// shape (arity, order) diffs cleanly without cmp panicking on TypeRef's
// internal pointer.
package testutil

import (
	"sort"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/tiriscoded/yama/internal/yama/model"
	"github.com/tiriscoded/yama/internal/yama/typeload"
)

// ItemSnapshot is the cmp-friendly, exported-field view of one module item.
type ItemSnapshot struct {
	Name   string
	Kind   model.ItemKind
	Prim   model.PrimKind
	Params []int
	Return int
}

// ModuleSnapshot is a structural view of a *model.Module's items, sorted by
// name so the comparison is independent of ItemID assignment order.
type ModuleSnapshot struct {
	Items []ItemSnapshot
}

// SnapshotModule projects m through its public query surface (View,
// NameByID, MustItem, Prim, Call) into a ModuleSnapshot.
func SnapshotModule(m *model.Module) ModuleSnapshot {
	ids := m.View()
	items := make([]ItemSnapshot, 0, len(ids))
	for _, id := range ids {
		name, _ := m.NameByID(id)
		snap := ItemSnapshot{Name: name, Kind: m.MustItem(id).Kind}
		if prim, ok := m.Prim(id); ok {
			snap.Prim = prim.Prim
		}
		if call, ok := m.Call(id); ok {
			snap.Params = call.Sig.ParamTypeIndices
			snap.Return = call.Sig.ReturnTypeIndex
		}
		items = append(items, snap)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return ModuleSnapshot{Items: items}
}

// DiffModules returns a human-readable structural diff between two modules,
// empty if their item sets are equivalent.
func DiffModules(a, b *model.Module) string {
	return cmp.Diff(SnapshotModule(a), SnapshotModule(b))
}

// TypeRefSnapshot is the cmp-friendly view of a loaded type: its identity
// read through FQName/Kind/PrimKind rather than through its internal node
// pointer, so two TypeRefs produced by independent Loader instances compare
// equal when they denote the same linked type.
type TypeRefSnapshot struct {
	FQName string
	Kind   model.ItemKind
	Prim   model.PrimKind
	Params []string
	Return string
}

// SnapshotTypeRef builds a TypeRefSnapshot for r. The zero TypeRef snapshots
// to the zero TypeRefSnapshot.
func SnapshotTypeRef(r typeload.TypeRef) TypeRefSnapshot {
	if r.IsZero() {
		return TypeRefSnapshot{}
	}
	snap := TypeRefSnapshot{FQName: r.FQName(), Kind: r.Kind(), Prim: r.PrimKind()}
	if r.Kind().IsCallable() {
		sig := r.Sig()
		snap.Params = make([]string, len(sig.Params))
		for i, p := range sig.Params {
			snap.Params[i] = p.FQName()
		}
		snap.Return = sig.Return.FQName()
	}
	return snap
}

// DiffTypeRefs returns a human-readable structural diff between two loaded
// types, empty if they denote the same linked shape.
func DiffTypeRefs(a, b typeload.TypeRef) string {
	return cmp.Diff(SnapshotTypeRef(a), SnapshotTypeRef(b))
}

// DiffCallSigShape structurally diffs two resolved call signatures'
// arity and ordering, ignoring each parameter/return TypeRef's internal
// node pointer (cmpopts.IgnoreUnexported) — useful when two signatures are
// expected to have the same shape without caring which Loader produced
// their TypeRefs.
func DiffCallSigShape(a, b typeload.CallSigRef) string {
	return cmp.Diff(a, b, cmpopts.IgnoreUnexported(typeload.TypeRef{}))
}
