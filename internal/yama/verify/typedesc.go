// Package verify implements the bytecode static verifier (spec.md §4.5): a
// per-block symbolic register-type interpreter that rejects any callable
// body that could misbehave at runtime.
//
// The verifier is deliberately self-contained: every type it reasons about
// either comes from one of the seven builtin sentinel kinds (produced
// directly by certain opcodes) or from a type-constant already present in
// the very constant table being verified. It never consults the type loader
// or any other module — by the time a module reaches verification it has
// not yet been published, so nothing outside its own constant table is safe
// to resolve (spec.md §4.3 orders verification before the loader ever sees
// the module). Cross-module kind/callsig agreement is the loader's job
// (§4.4), not the verifier's. A primitive_type constant whose unqualified
// name is one of the seven builtin names (None, Int, UInt, Float, Bool,
// Char, Type) denotes that builtin sentinel, whatever install name qualifies
// it.
package verify

import (
	"strings"

	"github.com/tiriscoded/yama/internal/yama/model"
)

// tag closes the set of shapes a TypeDesc can take.
type tag int

const (
	tagNone tag = iota
	tagInt
	tagUInt
	tagFloat
	tagBool
	tagChar
	tagTypeMeta // the builtin "Type" (a type-of-a-type)
	tagNamed    // a type-constant drawn from the constant table
)

// TypeDesc is a symbolic register type. Builtin tags need no further data;
// tagNamed carries the denoted type-constant's own shape verbatim.
type TypeDesc struct {
	tag  tag
	name string          // tagNamed only: fully-qualified name the constant denotes
	kind model.ConstKind // tagNamed only: which of the 4 type-const kinds
	sig  model.CallSig   // tagNamed + callable kind only
}

var (
	descNone  = TypeDesc{tag: tagNone}
	descInt   = TypeDesc{tag: tagInt}
	descUInt  = TypeDesc{tag: tagUInt}
	descFloat = TypeDesc{tag: tagFloat}
	descBool  = TypeDesc{tag: tagBool}
	descChar  = TypeDesc{tag: tagChar}
	descType  = TypeDesc{tag: tagTypeMeta}
)

func namedFromConst(c model.Const) TypeDesc {
	if c.Kind == model.ConstPrimitiveType {
		builtin := map[string]TypeDesc{"None": descNone, "Int": descInt, "UInt": descUInt,
			"Float": descFloat, "Bool": descBool, "Char": descChar, "Type": descType}
		if b, ok := builtin[c.TypeName[strings.LastIndex(c.TypeName, ":")+1:]]; ok {
			return b
		}
	}
	d := TypeDesc{tag: tagNamed, name: c.TypeName, kind: c.Kind}
	if c.Sig != nil {
		d.sig = *c.Sig
	}
	return d
}

// Equal is the strict structural equality join/compare rule (§4.5: "joined
// by strict equality; any mismatch triggers violates_register_coherence",
// and every "types differ" per-opcode rule).
func (d TypeDesc) Equal(o TypeDesc) bool {
	if d.tag != o.tag {
		return false
	}
	if d.tag != tagNamed {
		return true
	}
	if d.name != o.name || d.kind != o.kind {
		return false
	}
	if d.kind != model.ConstFunctionType && d.kind != model.ConstMethodType {
		return true
	}
	return sigEqual(d.sig, o.sig)
}

func sigEqual(a, b model.CallSig) bool {
	if a.ReturnTypeIndex != b.ReturnTypeIndex {
		return false
	}
	if len(a.ParamTypeIndices) != len(b.ParamTypeIndices) {
		return false
	}
	for i := range a.ParamTypeIndices {
		if a.ParamTypeIndices[i] != b.ParamTypeIndices[i] {
			return false
		}
	}
	return true
}

func (d TypeDesc) IsBool() bool { return d.tag == tagBool }

func (d TypeDesc) IsCallable() bool {
	return d.tag == tagNamed && (d.kind == model.ConstFunctionType || d.kind == model.ConstMethodType)
}

// Sig returns the callsig carried by a callable tagNamed descriptor.
func (d TypeDesc) Sig() model.CallSig { return d.sig }
