package model

// ItemID is a module-internal identity for an item, distinct from its name —
// spec.md §4.1 calls out identity/existence/facets as three separate
// concerns; ItemID carries only identity.
type ItemID int

// ItemKind is the closed set of item kinds a module can hold.
type ItemKind int

const (
	KindPrimitive ItemKind = iota
	KindFunction
	KindMethod
	KindStruct
)

func (k ItemKind) String() string {
	switch k {
	case KindPrimitive:
		return "primitive"
	case KindFunction:
		return "function"
	case KindMethod:
		return "method"
	case KindStruct:
		return "struct"
	default:
		return "unknown"
	}
}

func (k ItemKind) IsCallable() bool {
	return k == KindFunction || k == KindMethod
}

// PrimKind tags the builtin primitive a primitive item denotes.
type PrimKind int

const (
	PrimNone PrimKind = iota
	PrimInt
	PrimUInt
	PrimFloat
	PrimBool
	PrimChar
	PrimType
)

func (k PrimKind) String() string {
	switch k {
	case PrimNone:
		return "none"
	case PrimInt:
		return "int"
	case PrimUInt:
		return "uint"
	case PrimFloat:
		return "float"
	case PrimBool:
		return "bool"
	case PrimChar:
		return "char"
	case PrimType:
		return "type"
	default:
		return "unknown"
	}
}

// CallFn is an opaque callable token (§3 "call_desc"). BcodeToken is the one
// reserved value the core understands; any other value names a host-provided
// native implementation the core never inspects.
type CallFn struct {
	// Native, when non-empty, names a host-provided native implementation.
	// Empty means BcodeToken: the callable's body lives in the module's
	// bcode_desc.
	Native string
}

// BcodeToken is the reserved CallFn value meaning "this callable's body is
// the bcode_desc attached to the same item".
var BcodeToken = CallFn{}

func (f CallFn) IsBcode() bool { return f.Native == "" }
