package model

import (
	"strconv"

	"github.com/tiriscoded/yama/internal/yama/bcode"
)

// DescKind names one of the six descriptor facets, used by the All/Any/None
// query surface (spec.md §4.1: all_of/any_of/none_of/view).
type DescKind int

const (
	DescItem DescKind = iota
	DescOwner
	DescMember
	DescPrim
	DescCall
	DescBcode
)

// Module is a bag of items, each identified by ItemID, with descriptors
// stored in per-facet sparse maps (spec.md §4.1, §9 "facet map, not a
// monolithic tagged union"). Grounded on internal/iface/iface.go's habit of
// keeping Exports/Constructors/Types as independent maps off one struct
// rather than folding every export kind into one sum type.
type Module struct {
	nextID ItemID
	byName map[string]ItemID

	items   map[ItemID]*ItemDesc
	owners  map[ItemID]*OwnerDesc
	members map[ItemID]*MemberDesc
	prims   map[ItemID]*PrimDesc
	calls   map[ItemID]*CallDesc
	bcodes  map[ItemID]*BcodeDesc

	// pendingOwner maps a not-yet-finalized method's ItemID to its owner's
	// name, so AddMethod can run before its owner exists. Resolved by
	// Finalize into owners/members.
	pendingOwner map[ItemID]string
}

// New returns an empty, mutable module.
func New() *Module {
	return &Module{
		byName:       make(map[string]ItemID),
		items:        make(map[ItemID]*ItemDesc),
		owners:       make(map[ItemID]*OwnerDesc),
		members:      make(map[ItemID]*MemberDesc),
		prims:        make(map[ItemID]*PrimDesc),
		calls:        make(map[ItemID]*CallDesc),
		bcodes:       make(map[ItemID]*BcodeDesc),
		pendingOwner: make(map[ItemID]string),
	}
}

func (m *Module) nameTaken(name string) bool {
	_, ok := m.byName[name]
	return ok
}

func (m *Module) newID(name string) ItemID {
	id := m.nextID
	m.nextID++
	m.byName[name] = id
	return id
}

// AddPrimitive adds a primitive item. ok is false if name is already used in
// this module.
func (m *Module) AddPrimitive(name string, consts *ConstTable, prim PrimKind) (id ItemID, ok bool) {
	if m.nameTaken(name) {
		return 0, false
	}
	id = m.newID(name)
	m.items[id] = &ItemDesc{Name: name, Kind: KindPrimitive, Consts: consts}
	m.prims[id] = &PrimDesc{Prim: prim}
	return id, true
}

// AddFunction adds a function item.
func (m *Module) AddFunction(name string, consts *ConstTable, sig CallSig, maxLocals int, callFn CallFn) (id ItemID, ok bool) {
	if m.nameTaken(name) {
		return 0, false
	}
	id = m.newID(name)
	m.items[id] = &ItemDesc{Name: name, Kind: KindFunction, Consts: consts}
	m.calls[id] = &CallDesc{Sig: sig, MaxLocals: maxLocals, CallFn: callFn}
	return id, true
}

// AddMethod adds a method item owned by owner. owner need not already exist
// in the module — cross-linking of owner<->member descriptors happens at
// Finalize (spec.md §3: "adding a method with owner A before A itself is
// allowed").
func (m *Module) AddMethod(owner, member string, consts *ConstTable, sig CallSig, maxLocals int, callFn CallFn) (id ItemID, ok bool) {
	qualified := owner + "::" + member
	if m.nameTaken(qualified) {
		return 0, false
	}
	id = m.newID(qualified)
	m.items[id] = &ItemDesc{Name: qualified, Kind: KindMethod, Consts: consts}
	m.calls[id] = &CallDesc{Sig: sig, MaxLocals: maxLocals, CallFn: callFn}
	m.pendingOwner[id] = owner
	return id, true
}

// AddStruct adds a struct item.
func (m *Module) AddStruct(name string, consts *ConstTable) (id ItemID, ok bool) {
	if m.nameTaken(name) {
		return 0, false
	}
	id = m.newID(name)
	m.items[id] = &ItemDesc{Name: name, Kind: KindStruct, Consts: consts}
	return id, true
}

// BindBcode attaches a bcode_desc to an existing callable. ok is false if no
// such callable exists or one is already bound.
func (m *Module) BindBcode(name string, prog *bcode.Program) bool {
	id, found := m.byName[name]
	if !found {
		return false
	}
	item := m.items[id]
	if item == nil || !item.Kind.IsCallable() {
		return false
	}
	if _, exists := m.bcodes[id]; exists {
		return false
	}
	m.bcodes[id] = &BcodeDesc{Program: prog}
	return true
}

// Finalize cross-links owner_desc/member_desc for every method added so
// far. Safe to call more than once (idempotent). A method whose owner name
// does not resolve to an item in this module at that point gets neither a
// member_desc nor an entry on any owner_desc, and it is dropped from the
// pending set, so a later Finalize does not link it either. Since a method
// may be added before its owner, Finalize must run after all
// AddPrimitive/AddFunction/AddMethod/AddStruct calls for the module and
// before the module is handed to the importer for verification.
func (m *Module) Finalize() {
	for id, ownerName := range m.pendingOwner {
		ownerID, ok := m.byName[ownerName]
		if !ok {
			continue
		}
		m.members[id] = &MemberDesc{Owner: ownerID}
		od, ok := m.owners[ownerID]
		if !ok {
			od = &OwnerDesc{Members: make(map[string]ItemID)}
			m.owners[ownerID] = od
		}
		item := m.items[id]
		memberName := item.Name
		if idx := lastIndexOf(memberName, "::"); idx >= 0 {
			memberName = memberName[idx+2:]
		}
		od.Members[memberName] = id
	}
	m.pendingOwner = make(map[ItemID]string)
}

func lastIndexOf(s, sep string) int {
	for i := len(s) - len(sep); i >= 0; i-- {
		if s[i:i+len(sep)] == sep {
			return i
		}
	}
	return -1
}

// --- Query surface (spec.md §4.1) ---

// Exists reports whether name is a known item in this module.
func (m *Module) Exists(name string) bool {
	return m.nameTaken(name)
}

// IDByName resolves an item's name to its ItemID.
func (m *Module) IDByName(name string) (ItemID, bool) {
	id, ok := m.byName[name]
	return id, ok
}

// NameByID resolves an ItemID back to its name.
func (m *Module) NameByID(id ItemID) (string, bool) {
	it, ok := m.items[id]
	if !ok {
		return "", false
	}
	return it.Name, true
}

func (m *Module) has(id ItemID, kind DescKind) bool {
	switch kind {
	case DescItem:
		_, ok := m.items[id]
		return ok
	case DescOwner:
		_, ok := m.owners[id]
		return ok
	case DescMember:
		_, ok := m.members[id]
		return ok
	case DescPrim:
		_, ok := m.prims[id]
		return ok
	case DescCall:
		_, ok := m.calls[id]
		return ok
	case DescBcode:
		_, ok := m.bcodes[id]
		return ok
	default:
		return false
	}
}

// AllOf reports whether id carries every descriptor in kinds.
func (m *Module) AllOf(id ItemID, kinds ...DescKind) bool {
	for _, k := range kinds {
		if !m.has(id, k) {
			return false
		}
	}
	return true
}

// AnyOf reports whether id carries at least one descriptor in kinds.
func (m *Module) AnyOf(id ItemID, kinds ...DescKind) bool {
	for _, k := range kinds {
		if m.has(id, k) {
			return true
		}
	}
	return false
}

// NoneOf reports whether id carries none of the descriptors in kinds.
func (m *Module) NoneOf(id ItemID, kinds ...DescKind) bool {
	return !m.AnyOf(id, kinds...)
}

// View iterates every item bearing all of kinds, in ascending ItemID order.
func (m *Module) View(kinds ...DescKind) []ItemID {
	var out []ItemID
	for id := ItemID(0); id < m.nextID; id++ {
		if !m.has(id, DescItem) {
			continue
		}
		if m.AllOf(id, kinds...) {
			out = append(out, id)
		}
	}
	return out
}

// Item returns the item_desc for id, the try_get<item_desc> form.
func (m *Module) Item(id ItemID) (*ItemDesc, bool) {
	d, ok := m.items[id]
	return d, ok
}

// MustItem returns the item_desc for id or panics — the get<item_desc> form,
// which spec.md §4.1 specifies throws on a missing item or descriptor.
func (m *Module) MustItem(id ItemID) *ItemDesc {
	d, ok := m.items[id]
	if !ok {
		panic("model: item_desc missing for item id")
	}
	return d
}

func (m *Module) Owner(id ItemID) (*OwnerDesc, bool) {
	d, ok := m.owners[id]
	return d, ok
}

func (m *Module) MustOwner(id ItemID) *OwnerDesc {
	d, ok := m.owners[id]
	if !ok {
		panic("model: owner_desc missing for item id")
	}
	return d
}

func (m *Module) Member(id ItemID) (*MemberDesc, bool) {
	d, ok := m.members[id]
	return d, ok
}

func (m *Module) MustMember(id ItemID) *MemberDesc {
	d, ok := m.members[id]
	if !ok {
		panic("model: member_desc missing for item id")
	}
	return d
}

func (m *Module) Prim(id ItemID) (*PrimDesc, bool) {
	d, ok := m.prims[id]
	return d, ok
}

func (m *Module) MustPrim(id ItemID) *PrimDesc {
	d, ok := m.prims[id]
	if !ok {
		panic("model: prim_desc missing for item id")
	}
	return d
}

func (m *Module) Call(id ItemID) (*CallDesc, bool) {
	d, ok := m.calls[id]
	return d, ok
}

func (m *Module) MustCall(id ItemID) *CallDesc {
	d, ok := m.calls[id]
	if !ok {
		panic("model: call_desc missing for item id")
	}
	return d
}

func (m *Module) Bcode(id ItemID) (*BcodeDesc, bool) {
	d, ok := m.bcodes[id]
	return d, ok
}

func (m *Module) MustBcode(id ItemID) *BcodeDesc {
	d, ok := m.bcodes[id]
	if !ok {
		panic("model: bcode_desc missing for item id")
	}
	return d
}

// Describe dumps every descriptor attached to id as a human string, for the
// CLI's inspect command (SPEC_FULL.md §C.4).
func (m *Module) Describe(id ItemID) string {
	it, ok := m.Item(id)
	if !ok {
		return "<no such item>"
	}
	s := it.Name + " (" + it.Kind.String() + ")"
	if pd, ok := m.Prim(id); ok {
		s += " prim=" + pd.Prim.String()
	}
	if cd, ok := m.Call(id); ok {
		s += " callsig=" + formatCallSig(cd.Sig)
	}
	if _, ok := m.Bcode(id); ok {
		s += " +bcode"
	}
	if md, ok := m.Member(id); ok {
		if ownerName, ok := m.NameByID(md.Owner); ok {
			s += " owner=" + ownerName
		}
	}
	if od, ok := m.Owner(id); ok {
		s += " members=" + strconv.Itoa(len(od.Members))
	}
	return s
}

func formatCallSig(sig CallSig) string {
	s := "fn("
	for i, idx := range sig.ParamTypeIndices {
		if i > 0 {
			s += ", "
		}
		s += "K" + strconv.Itoa(idx)
	}
	s += ") -> K" + strconv.Itoa(sig.ReturnTypeIndex)
	return s
}
