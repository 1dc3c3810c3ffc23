package model

import "github.com/tiriscoded/yama/internal/yama/bcode"

// The descriptor types below are the orthogonal facets an item can carry
// (spec.md §3/§4.1). Each is stored in its own sparse map off Module, keyed
// by ItemID, rather than folded into one tagged-union item struct — adding a
// new descriptor must never require touching code that only cares about the
// existing ones (spec.md §9 "Descriptor facets vs. kind sum type").

// ItemDesc is present on every item.
type ItemDesc struct {
	Name   string
	Kind   ItemKind
	Consts *ConstTable
}

// OwnerDesc is present on items that own methods (structs, primitives).
type OwnerDesc struct {
	Members map[string]ItemID
}

// MemberDesc is present on methods, pointing back to their owner.
type MemberDesc struct {
	Owner ItemID
}

// PrimDesc is present on primitive items.
type PrimDesc struct {
	Prim PrimKind
}

// CallDesc is present on functions and methods.
type CallDesc struct {
	Sig       CallSig
	MaxLocals int
	CallFn    CallFn
}

// BcodeDesc is present on callables whose CallFn is the reserved bcode
// token.
type BcodeDesc struct {
	Program *bcode.Program
}
