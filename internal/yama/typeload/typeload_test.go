package typeload

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tiriscoded/yama/internal/yama/fqn"
	"github.com/tiriscoded/yama/internal/yama/model"
	"github.com/tiriscoded/yama/internal/yama/signal"
)

// fakeImporter resolves every head directly to a pre-built module, bypassing
// parcels entirely — the loader only ever calls ImportAbsolute.
type fakeImporter struct {
	modules map[string]*model.Module
	calls   int
}

func (f *fakeImporter) ImportAbsolute(path fqn.ImportPath) (*model.Module, error) {
	f.calls++
	mod, ok := f.modules[path.Head]
	if !ok {
		return nil, signal.New(signal.ImportModuleNotFound, "no such module", nil)
	}
	return mod, nil
}

func TestLoadResolvesAPrimitiveAndMemoises(t *testing.T) {
	m := model.New()
	m.AddPrimitive("Int", model.NewConstTable(), model.PrimInt)
	m.Finalize()

	l := New(&fakeImporter{modules: map[string]*model.Module{"m": m}}, nil)

	tr, err := l.Load("m:Int")
	require.NoError(t, err)
	assert.Equal(t, "m:Int", tr.FQName())
	assert.Equal(t, model.KindPrimitive, tr.Kind())
	assert.Equal(t, model.PrimInt, tr.PrimKind())

	tr2, err := l.Load("m:Int")
	require.NoError(t, err)
	assert.True(t, tr == tr2, "a second Load of the same name must return the memoised handle")
}

func TestLoadLinksFunctionParamsAndReturnTransitively(t *testing.T) {
	m := model.New()
	m.AddPrimitive("Int", model.NewConstTable(), model.PrimInt)

	fConsts := model.NewConstTable(model.PrimitiveType("m:Int"))
	m.AddFunction("f", fConsts, model.CallSig{ParamTypeIndices: []int{0}, ReturnTypeIndex: 0}, 1, model.BcodeToken)
	m.Finalize()

	imp := &fakeImporter{modules: map[string]*model.Module{"m": m}}
	l := New(imp, nil)

	tr, err := l.Load("m:f")
	require.NoError(t, err)
	assert.Equal(t, model.KindFunction, tr.Kind())
	require.Len(t, tr.Sig().Params, 1)
	assert.Equal(t, "m:Int", tr.Sig().Params[0].FQName())
	assert.Equal(t, "m:Int", tr.Sig().Return.FQName())
	// The param and return type-constants both name "m:Int": one resolve call
	// must satisfy both, not two independent handles.
	assert.True(t, tr.Sig().Params[0] == tr.Sig().Return)
}

func TestLoadRejectsUnknownItemName(t *testing.T) {
	m := model.New()
	m.Finalize()
	l := New(&fakeImporter{modules: map[string]*model.Module{"m": m}}, nil)

	_, err := l.Load("m:NoSuchItem")
	require.Error(t, err)
	d, ok := signal.As(err)
	require.True(t, ok)
	assert.Equal(t, signal.LoadTypeNotFound, d.Signal)
}

func TestLoadRejectsKindMismatch(t *testing.T) {
	m := model.New()
	// "Thing" is a struct, but f's const table advertises it as a primitive.
	m.AddStruct("Thing", model.NewConstTable())
	fConsts := model.NewConstTable(model.PrimitiveType("m:Thing"))
	m.AddFunction("f", fConsts, model.CallSig{ReturnTypeIndex: 0}, 1, model.BcodeToken)
	m.Finalize()

	l := New(&fakeImporter{modules: map[string]*model.Module{"m": m}}, nil)

	_, err := l.Load("m:f")
	require.Error(t, err)
	d, ok := signal.As(err)
	require.True(t, ok)
	assert.Equal(t, signal.LoadKindMismatch, d.Signal)
}

func TestLoadRejectsCallsigMismatch(t *testing.T) {
	m := model.New()
	m.AddPrimitive("Int", model.NewConstTable(), model.PrimInt)
	m.AddPrimitive("Bool", model.NewConstTable(), model.PrimBool)

	// g's const table advertises f as taking zero params, but f actually
	// takes one.
	gConsts := model.NewConstTable(model.FunctionType("m:f", model.CallSig{ReturnTypeIndex: 0}))
	m.AddFunction("g", gConsts, model.CallSig{ParamTypeIndices: []int{0}, ReturnTypeIndex: 0}, 1, model.BcodeToken)

	fConsts := model.NewConstTable(model.PrimitiveType("m:Bool"))
	m.AddFunction("f", fConsts, model.CallSig{ParamTypeIndices: []int{0}, ReturnTypeIndex: 0}, 1, model.BcodeToken)
	m.Finalize()

	l := New(&fakeImporter{modules: map[string]*model.Module{"m": m}}, nil)

	_, err := l.Load("m:g")
	require.Error(t, err)
	d, ok := signal.As(err)
	require.True(t, ok)
	assert.Equal(t, signal.LoadCallsigMismatch, d.Signal)
}

// A function whose own advertised type references itself as a parameter
// terminates with a clean diagnostic rather than recursing forever — the
// stub published in resolve's in-flight set has a zero callsig until linking
// completes, so a self-reference with a non-empty parameter list can never
// agree with it by value.
func TestLoadSelfReferentialFunctionTypeTerminatesWithoutInfiniteRecursion(t *testing.T) {
	m := model.New()
	selfConsts := model.NewConstTable()
	selfTypeIdx := selfConsts.Append(model.FunctionType("m:f", model.CallSig{ParamTypeIndices: []int{0}, ReturnTypeIndex: 0}))
	m.AddFunction("f", selfConsts, model.CallSig{ParamTypeIndices: []int{selfTypeIdx}, ReturnTypeIndex: selfTypeIdx}, 1, model.BcodeToken)
	m.Finalize()

	l := New(&fakeImporter{modules: map[string]*model.Module{"m": m}}, nil)

	_, err := l.Load("m:f")
	require.Error(t, err)
	d, ok := signal.As(err)
	require.True(t, ok)
	assert.Equal(t, signal.LoadCallsigMismatch, d.Signal)
}

func TestLoadPropagatesImportFailure(t *testing.T) {
	l := New(&fakeImporter{modules: map[string]*model.Module{}}, nil)

	_, err := l.Load("missing:Foo")
	require.Error(t, err)
	d, ok := signal.As(err)
	require.True(t, ok)
	assert.Equal(t, signal.ImportModuleNotFound, d.Signal)
}
