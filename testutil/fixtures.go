package testutil

import (
	"github.com/tiriscoded/yama/internal/yama/bcode"
	"github.com/tiriscoded/yama/internal/yama/builtin"
	"github.com/tiriscoded/yama/internal/yama/model"
	"github.com/tiriscoded/yama/internal/yama/parcel"
)

// StubParcel is a minimal in-memory parcel.Parcel for tests that need a
// collaborator implementation without compiling anything — each relative
// path either resolves to a canned *model.Module or is NotFound.
type StubParcel struct {
	Meta    parcel.Metadata
	Modules map[string]*model.Module
}

func (p StubParcel) Metadata() parcel.Metadata { return p.Meta }

func (p StubParcel) Import(relativePath string) (parcel.ImportResult, error) {
	mod, ok := p.Modules[relativePath]
	if !ok {
		return parcel.ImportResult{NotFound: true}, nil
	}
	return parcel.ImportResult{Module: mod}, nil
}

// IdentityFunction returns a one-function module whose sole item, "identity",
// takes one Int parameter and returns it unchanged: put_arg 0 into a fresh
// register, ret it. intTypeConstIdx is the index within the returned
// module's const table where the Int primitive type-constant lives (callers
// that need to reference this function's callsig from elsewhere should read
// it off the const table rather than assume a fixed index).
func IdentityFunction() (*model.Module, int) {
	m := model.New()
	consts := model.NewConstTable()
	intIdx := consts.Append(model.PrimitiveType(builtin.FQName("Int")))
	sig := model.CallSig{ParamTypeIndices: []int{intIdx}, ReturnTypeIndex: intIdx}

	id, _ := m.AddFunction("identity", consts, sig, 1, model.BcodeToken)
	m.BindBcode(m.MustItem(id).Name, &bcode.Program{
		Instructions: []bcode.Instruction{
			{Op: bcode.OpPutArg, RA: bcode.NewTop, ArgB: 0},
			{Op: bcode.OpRet, RA: 0},
		},
	})
	m.Finalize()
	return m, intIdx
}

// TwoParcelBatch returns a parcel.Batch installing two parcels, "producer"
// (no deps, exports IdentityFunction's module at its root) and "consumer"
// (dep-name "base" mapped to "producer") — a minimal acyclic two-node dep
// graph for install/importer tests.
func TwoParcelBatch() parcel.Batch {
	mod, _ := IdentityFunction()
	producer := StubParcel{
		Meta:    parcel.Metadata{SelfName: "producer"},
		Modules: map[string]*model.Module{"": mod},
	}
	consumer := StubParcel{
		Meta:    parcel.Metadata{SelfName: "consumer", DepNames: []string{"base"}},
		Modules: map[string]*model.Module{"": model.New()},
	}
	return parcel.Batch{
		Entries: []parcel.Entry{
			{InstallName: "producer", Parcel: producer},
			{InstallName: "consumer", Parcel: consumer},
		},
		Mappings: []parcel.DepMapping{
			{InstallerName: "consumer", DepName: "base", Target: "producer"},
		},
	}
}
