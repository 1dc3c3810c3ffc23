package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddItemsRejectsDuplicateNames(t *testing.T) {
	m := New()
	_, ok := m.AddStruct("Point", NewConstTable())
	require.True(t, ok)

	_, ok = m.AddStruct("Point", NewConstTable())
	assert.False(t, ok, "duplicate item name must be rejected")

	_, ok = m.AddPrimitive("Point", NewConstTable(), PrimInt)
	assert.False(t, ok, "duplicate name across different item kinds must also be rejected")
}

func TestAddMethodBeforeOwnerExists(t *testing.T) {
	m := New()

	// A method may be added before its owner item (spec.md §3).
	_, ok := m.AddMethod("Point", "norm", NewConstTable(), CallSig{}, 1, BcodeToken)
	require.True(t, ok)

	ownerID, ok := m.AddStruct("Point", NewConstTable())
	require.True(t, ok)

	m.Finalize()

	methodID, ok := m.IDByName("Point::norm")
	require.True(t, ok)

	md := m.MustMember(methodID)
	assert.Equal(t, ownerID, md.Owner)

	od := m.MustOwner(ownerID)
	memberID, ok := od.Members["norm"]
	require.True(t, ok)
	assert.Equal(t, methodID, memberID)
}

func TestFinalizeIsIdempotent(t *testing.T) {
	m := New()
	_, _ = m.AddStruct("Point", NewConstTable())
	_, _ = m.AddMethod("Point", "norm", NewConstTable(), CallSig{}, 1, BcodeToken)

	m.Finalize()
	m.Finalize() // must not panic or double-link

	ownerID, _ := m.IDByName("Point")
	od := m.MustOwner(ownerID)
	assert.Len(t, od.Members, 1)
}

func TestBindBcodeRejectsNonCallableAndDuplicate(t *testing.T) {
	m := New()
	structID, _ := m.AddStruct("Point", NewConstTable())
	fnID, _ := m.AddFunction("f", NewConstTable(), CallSig{}, 1, BcodeToken)

	assert.False(t, m.BindBcode(m.MustItem(structID).Name, nil), "a struct has no call_desc to bind bcode onto")
	assert.True(t, m.BindBcode(m.MustItem(fnID).Name, nil))
	assert.False(t, m.BindBcode(m.MustItem(fnID).Name, nil), "binding bcode twice must fail")
}

func TestViewAndDescriptorQueries(t *testing.T) {
	m := New()
	primID, _ := m.AddPrimitive("Int", NewConstTable(), PrimInt)
	fnID, _ := m.AddFunction("f", NewConstTable(), CallSig{ReturnTypeIndex: 0}, 2, BcodeToken)
	m.BindBcode("f", nil)
	m.Finalize()

	assert.True(t, m.Exists("Int"))
	assert.False(t, m.Exists("nope"))

	assert.True(t, m.AllOf(primID, DescItem, DescPrim))
	assert.False(t, m.AllOf(primID, DescItem, DescCall))
	assert.True(t, m.AnyOf(fnID, DescPrim, DescCall))
	assert.True(t, m.NoneOf(primID, DescCall, DescBcode))

	callables := m.View(DescCall, DescBcode)
	require.Len(t, callables, 1)
	assert.Equal(t, fnID, callables[0])

	desc := m.Describe(fnID)
	assert.Contains(t, desc, "f (function)")
	assert.Contains(t, desc, "+bcode")

	assert.Equal(t, "<no such item>", m.Describe(ItemID(999)))
}

func TestMustAccessorsPanicOnMissingDescriptor(t *testing.T) {
	m := New()
	id, _ := m.AddStruct("Point", NewConstTable())

	assert.Panics(t, func() { m.MustCall(id) })
	assert.Panics(t, func() { m.MustPrim(id) })
	assert.Panics(t, func() { m.MustItem(ItemID(999)) })
}
