package model

// ConstKind tags the nine constant kinds a const table entry can carry
// (spec.md §3 "Constant table").
type ConstKind int

const (
	ConstInt ConstKind = iota
	ConstUInt
	ConstFloat
	ConstBool
	ConstChar
	ConstPrimitiveType
	ConstFunctionType
	ConstMethodType
	ConstStructType
)

func (k ConstKind) IsTypeConst() bool {
	switch k {
	case ConstPrimitiveType, ConstFunctionType, ConstMethodType, ConstStructType:
		return true
	default:
		return false
	}
}

func (k ConstKind) IsObjectConst() bool {
	return !k.IsTypeConst()
}

func (k ConstKind) String() string {
	switch k {
	case ConstInt:
		return "int"
	case ConstUInt:
		return "uint"
	case ConstFloat:
		return "float"
	case ConstBool:
		return "bool"
	case ConstChar:
		return "char"
	case ConstPrimitiveType:
		return "primitive_type"
	case ConstFunctionType:
		return "function_type"
	case ConstMethodType:
		return "method_type"
	case ConstStructType:
		return "struct_type"
	default:
		return "unknown"
	}
}

// CallSig is (param_type_indices, return_type_index) into the containing
// constant table (spec.md §3 "Call signature").
type CallSig struct {
	ParamTypeIndices []int
	ReturnTypeIndex  int
}

func (c CallSig) Arity() int { return len(c.ParamTypeIndices) }

// Const is one constant-table slot. Only the fields relevant to Kind are
// meaningful; the rest are zero. Kept as a single struct (not an interface)
// because the kind set is small and closed — this is the "tagged union
// inside a facet" escape hatch spec.md §9 explicitly allows.
type Const struct {
	Kind ConstKind

	// Object constants.
	IntVal   int64
	UIntVal  uint64
	FloatVal float64
	BoolVal  bool
	CharVal  rune

	// Type constants.
	TypeName string   // fully-qualified name this type-constant denotes
	Sig      *CallSig // non-nil for function_type / method_type
}

func Int(v int64) Const     { return Const{Kind: ConstInt, IntVal: v} }
func UInt(v uint64) Const   { return Const{Kind: ConstUInt, UIntVal: v} }
func Float(v float64) Const { return Const{Kind: ConstFloat, FloatVal: v} }
func Bool(v bool) Const     { return Const{Kind: ConstBool, BoolVal: v} }
func Char(v rune) Const     { return Const{Kind: ConstChar, CharVal: v} }

func PrimitiveType(fqName string) Const {
	return Const{Kind: ConstPrimitiveType, TypeName: fqName}
}
func StructType(fqName string) Const {
	return Const{Kind: ConstStructType, TypeName: fqName}
}
func FunctionType(fqName string, sig CallSig) Const {
	return Const{Kind: ConstFunctionType, TypeName: fqName, Sig: &sig}
}
func MethodType(fqName string, sig CallSig) Const {
	return Const{Kind: ConstMethodType, TypeName: fqName, Sig: &sig}
}

// ConstTable is an ordered sequence of constants, with typed accessors that
// return a (value, ok) pair rather than panicking on a kind mismatch —
// grounded on original_source's const_table-tests.cpp round-trip expectations
// (SPEC_FULL.md §C.1).
type ConstTable struct {
	entries []Const
}

func NewConstTable(entries ...Const) *ConstTable {
	ct := &ConstTable{entries: append([]Const(nil), entries...)}
	return ct
}

func (ct *ConstTable) Len() int { return len(ct.entries) }

func (ct *ConstTable) InBounds(i int) bool { return i >= 0 && i < len(ct.entries) }

func (ct *ConstTable) At(i int) (Const, bool) {
	if !ct.InBounds(i) {
		return Const{}, false
	}
	return ct.entries[i], true
}

func (ct *ConstTable) Int(i int) (int64, bool) {
	c, ok := ct.At(i)
	if !ok || c.Kind != ConstInt {
		return 0, false
	}
	return c.IntVal, true
}

func (ct *ConstTable) UInt(i int) (uint64, bool) {
	c, ok := ct.At(i)
	if !ok || c.Kind != ConstUInt {
		return 0, false
	}
	return c.UIntVal, true
}

func (ct *ConstTable) Float(i int) (float64, bool) {
	c, ok := ct.At(i)
	if !ok || c.Kind != ConstFloat {
		return 0, false
	}
	return c.FloatVal, true
}

func (ct *ConstTable) Bool(i int) (bool, bool) {
	c, ok := ct.At(i)
	if !ok || c.Kind != ConstBool {
		return false, false
	}
	return c.BoolVal, true
}

func (ct *ConstTable) Char(i int) (rune, bool) {
	c, ok := ct.At(i)
	if !ok || c.Kind != ConstChar {
		return 0, false
	}
	return c.CharVal, true
}

// TypeConst returns the entry at i if it is any of the four type-constant
// kinds, along with its denoted fully-qualified name.
func (ct *ConstTable) TypeConst(i int) (Const, bool) {
	c, ok := ct.At(i)
	if !ok || !c.Kind.IsTypeConst() {
		return Const{}, false
	}
	return c, true
}

// Append adds a constant and returns its index.
func (ct *ConstTable) Append(c Const) int {
	ct.entries = append(ct.entries, c)
	return len(ct.entries) - 1
}
