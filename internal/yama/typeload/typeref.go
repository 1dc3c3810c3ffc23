// Package typeload implements the type loader (spec.md §4.4): resolving a
// fully-qualified item name to a fully-linked, immutable loaded-type handle
// by walking its constant table's type-constants transitively, tolerating
// cycles via two-phase stub-then-link construction (spec.md §9 "Cyclic type
// graphs").
package typeload

import "github.com/tiriscoded/yama/internal/yama/model"

// TypeRef is an immutable, shared handle to a loaded type (spec.md §3
// "Loaded type (item_ref)"). Two TypeRefs are equal (by ==) iff they refer to
// the same loaded-type instance — TypeRef wraps a single pointer, so Go's
// built-in struct equality already gives handle-identity comparison for
// free; no separate Equal method is needed.
type TypeRef struct {
	n *node
}

// node is the mutable backing store filled in during two-phase linking.
// Never exposed directly — only TypeRef (an opaque wrapper) escapes the
// loader, matching spec.md §9's "opaque type handles whose link targets are
// filled in after the handle is created".
type node struct {
	fqName   string
	kind     model.ItemKind
	primKind model.PrimKind
	consts   *model.ConstTable
	sig      CallSigRef
}

// CallSigRef is a callsig whose parameter/return type indices have been
// resolved to concrete TypeRefs (contrast model.CallSig, which stores raw
// constant-table indices).
type CallSigRef struct {
	Params []TypeRef
	Return TypeRef
}

// IsZero reports whether r is the unresolved zero value (never produced by
// Loader.Load on success; useful in tests).
func (r TypeRef) IsZero() bool { return r.n == nil }

func (r TypeRef) FQName() string          { return r.n.fqName }
func (r TypeRef) Kind() model.ItemKind    { return r.n.kind }
func (r TypeRef) PrimKind() model.PrimKind { return r.n.primKind }
func (r TypeRef) Consts() *model.ConstTable { return r.n.consts }

// Sig returns the resolved call signature; only meaningful when Kind() is
// callable.
func (r TypeRef) Sig() CallSigRef { return r.n.sig }
